// Package gate orchestrates a scan event end to end: decode the payload,
// fetch the authoritative record, re-check the binding, and apply the
// movement. Every check produces a distinct outcome for the verifier, and an
// unreachable store fails closed: a scan is never reported successful on
// ambiguity.
package gate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/hosteline/epass-server/internal/passes"
	"github.com/hosteline/epass-server/internal/token"
)

// ErrVerificationUnavailable is returned when the storage collaborator could
// not be consulted within the scan's deadline. Fail closed.
var ErrVerificationUnavailable = errors.New("verification unavailable")

// ErrFakePass marks a payload whose owner and reason do not match the secret
// derived at approval. Possible tampering; logged apart from ordinary policy
// outcomes.
var ErrFakePass = errors.New("payload does not match the approved pass")

const defaultFetchTimeout = 3 * time.Second

type Engine struct {
	store        passes.Store
	binder       binder
	service      *passes.Service
	fetchTimeout time.Duration
}

// binder is the comparison primitive the engine needs from the secret
// binder.
type binder interface {
	Verify(ownerID, reason, storedSecret string) bool
}

func NewEngine(store passes.Store, b binder, service *passes.Service, fetchTimeout time.Duration) *Engine {
	if fetchTimeout <= 0 {
		fetchTimeout = defaultFetchTimeout
	}
	return &Engine{
		store:        store,
		binder:       b,
		service:      service,
		fetchTimeout: fetchTimeout,
	}
}

// Result is the outcome of a successful scan.
type Result struct {
	PassID     string
	OwnerID    string
	Movement   passes.Movement
	RecordedAt time.Time
}

// Scan runs the ordered verification checks against a scanned payload and,
// if every check passes, records the requested movement. Checks
// short-circuit on first failure.
func (e *Engine) Scan(ctx context.Context, payload []byte, mode passes.Movement) (Result, error) {
	claims, err := token.Decode(payload)
	if err != nil {
		return Result{}, err
	}

	pass, err := e.fetchPass(ctx, claims.PassID)
	if err != nil {
		return Result{}, err
	}

	if pass.Status != passes.StatusApproved {
		slog.Info("Scan rejected, pass not approved",
			"pass_id", pass.ID,
			"status", pass.Status,
			"movement", mode)
		return Result{}, passes.ErrNotApproved
	}

	// The comparison material comes from the scanned owner and reason, never
	// the stored copies: a forged payload has to reproduce the original pair
	// to match the stored secret.
	if !e.binder.Verify(claims.OwnerID, claims.Reason, pass.BindingSecret) {
		slog.Warn("Scan rejected, binding verification failed",
			"pass_id", pass.ID,
			"scanned_owner_id", claims.OwnerID,
			"movement", mode)
		return Result{}, ErrFakePass
	}

	updated, at, err := e.service.RecordMovement(ctx, pass.ID, mode)
	if err != nil {
		return Result{}, err
	}

	return Result{
		PassID:     updated.ID,
		OwnerID:    updated.OwnerID,
		Movement:   mode,
		RecordedAt: at,
	}, nil
}

// fetchPass reads the authoritative record under a bounded deadline. The
// read is idempotent, so transient store errors are retried with capped
// backoff; a missing record is permanent and surfaces as a fake-pass signal,
// not an infrastructure fault.
func (e *Engine) fetchPass(ctx context.Context, passID string) (*passes.Pass, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, e.fetchTimeout)
	defer cancel()

	var pass *passes.Pass
	operation := func() error {
		p, err := e.store.GetPassByID(fetchCtx, passID)
		if err != nil {
			if errors.Is(err, passes.ErrPassNotFound) {
				return backoff.Permanent(err)
			}
			return err
		}
		pass = p
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 100 * time.Millisecond
	policy.MaxElapsedTime = e.fetchTimeout

	err := backoff.Retry(operation, backoff.WithContext(policy, fetchCtx))
	if err != nil {
		if errors.Is(err, passes.ErrPassNotFound) {
			slog.Info("Scan rejected, no such pass", "pass_id", passID)
			return nil, passes.ErrPassNotFound
		}
		slog.Error("Pass fetch failed during scan", "pass_id", passID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrVerificationUnavailable, err)
	}
	return pass, nil
}
