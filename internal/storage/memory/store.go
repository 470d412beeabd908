// Package memory is an in-process implementation of the storage
// collaborators, used in development mode and unit tests. It honors the same
// versioned-update contract as the Postgres store.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hosteline/epass-server/internal/passes"
	"github.com/hosteline/epass-server/internal/users"
)

type Store struct {
	mu          sync.RWMutex
	passRecords map[string]*passes.Pass
	userRecords map[string]*users.User
	usernames   map[string]string
}

func NewStore() *Store {
	return &Store{
		passRecords: make(map[string]*passes.Pass),
		userRecords: make(map[string]*users.User),
		usernames:   make(map[string]string),
	}
}

func (s *Store) CreatePass(ctx context.Context, pass *passes.Pass) (*passes.Pass, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record := *pass
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	record.Version = 1

	s.passRecords[record.ID] = &record
	out := record
	return &out, nil
}

func (s *Store) GetPassByID(ctx context.Context, id string) (*passes.Pass, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.passRecords[id]
	if !ok {
		return nil, passes.ErrPassNotFound
	}
	out := clonePass(record)
	return &out, nil
}

func (s *Store) UpdatePass(ctx context.Context, id string, expectedVersion int64, update passes.Update) (*passes.Pass, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.passRecords[id]
	if !ok {
		return nil, passes.ErrPassNotFound
	}
	if record.Version != expectedVersion {
		return nil, passes.ErrVersionConflict
	}

	if update.Status != nil {
		record.Status = *update.Status
	}
	if update.BindingSecret != nil {
		record.BindingSecret = *update.BindingSecret
	}
	if update.ActualStart != nil {
		t := *update.ActualStart
		record.ActualStart = &t
	}
	if update.ActualEnd != nil {
		t := *update.ActualEnd
		record.ActualEnd = &t
	}
	record.Version++

	out := clonePass(record)
	return &out, nil
}

func (s *Store) ListPassesByOwner(ctx context.Context, ownerID string) ([]passes.Pass, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []passes.Pass
	for _, record := range s.passRecords {
		if record.OwnerID == ownerID {
			result = append(result, clonePass(record))
		}
	}
	return result, nil
}

func (s *Store) ListPendingPasses(ctx context.Context) ([]passes.Pass, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []passes.Pass
	for _, record := range s.passRecords {
		if record.Status == passes.StatusPending {
			result = append(result, clonePass(record))
		}
	}
	return result, nil
}

func (s *Store) CreateUser(ctx context.Context, user *users.User) (*users.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.usernames[user.Username]; taken {
		return nil, users.ErrUsernameExists
	}

	record := *user
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	s.userRecords[record.ID] = &record
	s.usernames[record.Username] = record.ID
	out := record
	return &out, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*users.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.usernames[username]
	if !ok {
		return nil, users.ErrUserNotFound
	}
	out := *s.userRecords[id]
	return &out, nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*users.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.userRecords[id]
	if !ok {
		return nil, users.ErrUserNotFound
	}
	out := *record
	return &out, nil
}

func clonePass(p *passes.Pass) passes.Pass {
	out := *p
	if p.ActualStart != nil {
		t := *p.ActualStart
		out.ActualStart = &t
	}
	if p.ActualEnd != nil {
		t := *p.ActualEnd
		out.ActualEnd = &t
	}
	return out
}
