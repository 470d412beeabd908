package passes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/hosteline/epass-server/internal/auth"
	"github.com/hosteline/epass-server/internal/binding"
	"github.com/hosteline/epass-server/internal/notify"
	"github.com/hosteline/epass-server/internal/token"
)

// MaxReasonLength bounds the human-readable reason, matching the request
// form's limit.
const MaxReasonLength = 100

// movementRetries bounds re-application of a guarded transition after a
// version conflict from an out-of-process writer.
const movementRetries = 3

type CreateInput struct {
	Reason    string
	StartTime time.Time
	EndTime   time.Time
}

// Service owns the authoritative pass lifecycle. All mutation of a pass
// record flows through its guarded transitions; per-pass serialization comes
// from the keyed lock plus the store's versioned update.
type Service struct {
	store  Store
	binder *binding.Binder
	hub    *notify.Hub
	locks  *keyedLocks
	now    func() time.Time
}

func NewService(store Store, binder *binding.Binder, hub *notify.Hub) *Service {
	return &Service{
		store:  store,
		binder: binder,
		hub:    hub,
		locks:  newKeyedLocks(),
		now:    time.Now,
	}
}

// Create validates and records a new pending pass for the identity's own
// account. Overlap against the owner's other non-terminal passes is policy
// enforced here, not by the store.
func (s *Service) Create(ctx context.Context, identity auth.Identity, input CreateInput) (*Pass, error) {
	if identity.Role != auth.RoleStudent {
		return nil, ErrNotPermitted
	}
	if err := s.validateInput(input); err != nil {
		return nil, err
	}

	existing, err := s.store.ListPassesByOwner(ctx, identity.UserID)
	if err != nil {
		return nil, fmt.Errorf("list passes for overlap check: %w", err)
	}
	for i := range existing {
		p := &existing[i]
		if p.Status.Terminal() {
			continue
		}
		if p.Overlaps(input.StartTime, input.EndTime) {
			return nil, ErrOverlappingPass
		}
	}

	pass, err := s.store.CreatePass(ctx, &Pass{
		ID:        uuid.NewString(),
		OwnerID:   identity.UserID,
		Reason:    input.Reason,
		Status:    StatusPending,
		StartTime: input.StartTime,
		EndTime:   input.EndTime,
		CreatedAt: s.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("create pass: %w", err)
	}

	slog.Info("Pass created",
		"pass_id", pass.ID,
		"owner_id", pass.OwnerID,
		"window_start", pass.StartTime,
		"window_end", pass.EndTime)

	s.hub.Publish(notify.Event{
		PassID:  pass.ID,
		OwnerID: pass.OwnerID,
		Origin:  notify.OriginRequester,
		Kind:    notify.KindCreated,
		Status:  string(pass.Status),
	})

	return pass, nil
}

// Decide applies the approver's decision. Approval derives the binding
// secret exactly once, from the record's own owner and reason.
func (s *Service) Decide(ctx context.Context, identity auth.Identity, passID string, decision Status) (*Pass, error) {
	if identity.Role != auth.RoleWarden {
		return nil, ErrNotPermitted
	}

	unlock := s.locks.lock(passID)
	defer unlock()

	pass, err := s.store.GetPassByID(ctx, passID)
	if err != nil {
		return nil, err
	}
	if err := validateDecision(pass, decision); err != nil {
		return nil, err
	}

	update := Update{Status: &decision}
	if decision == StatusApproved {
		secret, err := s.binder.Derive(pass.OwnerID, pass.Reason)
		if err != nil {
			return nil, fmt.Errorf("derive binding secret: %w", err)
		}
		update.BindingSecret = &secret
	}

	updated, err := s.store.UpdatePass(ctx, passID, pass.Version, update)
	if err != nil {
		if errors.Is(err, ErrVersionConflict) {
			// The record changed under us despite the lock, which means
			// another writer decided it first.
			return nil, ErrInvalidTransition
		}
		return nil, fmt.Errorf("persist decision: %w", err)
	}

	slog.Info("Pass decided",
		"pass_id", updated.ID,
		"owner_id", updated.OwnerID,
		"decision", decision,
		"decided_by", identity.UserID)

	s.hub.Publish(notify.Event{
		PassID:  updated.ID,
		OwnerID: updated.OwnerID,
		Origin:  notify.OriginApprover,
		Kind:    notify.KindDecided,
		Status:  string(updated.Status),
	})

	return updated, nil
}

// RecordMovement applies a physical exit or entry against an approved pass.
// Exactly one of two racing calls for the same movement succeeds; the other
// observes the already-set timestamp.
func (s *Service) RecordMovement(ctx context.Context, passID string, mode Movement) (*Pass, time.Time, error) {
	unlock := s.locks.lock(passID)
	defer unlock()

	var lastErr error
	for attempt := 0; attempt < movementRetries; attempt++ {
		pass, err := s.store.GetPassByID(ctx, passID)
		if err != nil {
			return nil, time.Time{}, err
		}

		at := s.now()
		update, err := movementUpdate(pass, mode, at)
		if err != nil {
			return nil, time.Time{}, err
		}

		updated, err := s.store.UpdatePass(ctx, passID, pass.Version, update)
		if err != nil {
			if errors.Is(err, ErrVersionConflict) {
				lastErr = err
				continue
			}
			return nil, time.Time{}, fmt.Errorf("persist movement: %w", err)
		}

		kind := notify.KindExited
		if mode == MovementEntry {
			kind = notify.KindEntered
		}
		slog.Info("Movement recorded",
			"pass_id", updated.ID,
			"owner_id", updated.OwnerID,
			"movement", mode,
			"at", at)

		s.hub.Publish(notify.Event{
			PassID:  updated.ID,
			OwnerID: updated.OwnerID,
			Origin:  notify.OriginVerifier,
			Kind:    kind,
			Status:  string(updated.Status),
		})

		return updated, at, nil
	}

	return nil, time.Time{}, fmt.Errorf("movement not applied after %d attempts: %w", movementRetries, lastErr)
}

// RenderToken produces the scannable payload for an approved pass. Only the
// owner may render it, and only while the pass is approved.
func (s *Service) RenderToken(ctx context.Context, identity auth.Identity, passID string) ([]byte, error) {
	pass, err := s.store.GetPassByID(ctx, passID)
	if err != nil {
		return nil, err
	}
	if pass.OwnerID != identity.UserID {
		return nil, ErrNotPermitted
	}
	if pass.Status != StatusApproved {
		return nil, ErrNotApproved
	}
	payload, err := token.Encode(pass.ID, pass.OwnerID, pass.Reason)
	if err != nil {
		return nil, fmt.Errorf("render token: %w", err)
	}
	return payload, nil
}

// Get fetches a single pass. Students may only see their own records.
func (s *Service) Get(ctx context.Context, identity auth.Identity, passID string) (*Pass, error) {
	pass, err := s.store.GetPassByID(ctx, passID)
	if err != nil {
		return nil, err
	}
	if identity.Role == auth.RoleStudent && pass.OwnerID != identity.UserID {
		return nil, ErrNotPermitted
	}
	return pass, nil
}

// ListOwn returns the identity's passes, newest first, so clients can locate
// the active pass at the head.
func (s *Service) ListOwn(ctx context.Context, identity auth.Identity) ([]Pass, error) {
	list, err := s.store.ListPassesByOwner(ctx, identity.UserID)
	if err != nil {
		return nil, fmt.Errorf("list passes: %w", err)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return list, nil
}

// ListPending returns the approver's queue.
func (s *Service) ListPending(ctx context.Context, identity auth.Identity) ([]Pass, error) {
	if identity.Role != auth.RoleWarden {
		return nil, ErrNotPermitted
	}
	list, err := s.store.ListPendingPasses(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pending passes: %w", err)
	}
	return list, nil
}

func (s *Service) validateInput(input CreateInput) error {
	if input.Reason == "" {
		return ErrEmptyReason
	}
	if len(input.Reason) > MaxReasonLength {
		return ErrReasonTooLong
	}
	if !input.StartTime.Before(input.EndTime) {
		return ErrInvalidWindow
	}

	// The window must begin today or tomorrow, in the window's own location.
	now := s.now().In(input.StartTime.Location())
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, input.StartTime.Location())
	dayAfterTomorrow := today.AddDate(0, 0, 2)
	if input.StartTime.Before(today) || !input.StartTime.Before(dayAfterTomorrow) {
		return ErrWindowTooFar
	}
	return nil
}
