package passes

import (
	"context"
	"time"
)

// Update carries the mutation of a single guarded transition. Nil fields are
// left untouched by the store.
type Update struct {
	Status        *Status
	BindingSecret *string
	ActualStart   *time.Time
	ActualEnd     *time.Time
}

// Store is the storage collaborator for pass records. UpdatePass applies the
// mutation only if the stored version still equals expectedVersion and
// returns ErrVersionConflict otherwise, so lost-update races surface instead
// of silently overwriting.
type Store interface {
	CreatePass(ctx context.Context, pass *Pass) (*Pass, error)
	GetPassByID(ctx context.Context, id string) (*Pass, error)
	UpdatePass(ctx context.Context, id string, expectedVersion int64, update Update) (*Pass, error)
	ListPassesByOwner(ctx context.Context, ownerID string) ([]Pass, error)
	ListPendingPasses(ctx context.Context) ([]Pass, error)
}
