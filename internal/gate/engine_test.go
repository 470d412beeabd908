package gate_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hosteline/epass-server/internal/auth"
	"github.com/hosteline/epass-server/internal/binding"
	"github.com/hosteline/epass-server/internal/gate"
	"github.com/hosteline/epass-server/internal/notify"
	"github.com/hosteline/epass-server/internal/passes"
	"github.com/hosteline/epass-server/internal/storage/memory"
	"github.com/hosteline/epass-server/internal/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var (
	student = auth.Identity{UserID: "owner-42", Username: "vishesh", Role: auth.RoleStudent}
	warden  = auth.Identity{UserID: "warden-1", Username: "warden", Role: auth.RoleWarden}
)

type fixture struct {
	store   *memory.Store
	service *passes.Service
	engine  *gate.Engine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	binder := binding.NewBinder(bcrypt.MinCost)
	service := passes.NewService(store, binder, notify.NewHub())
	engine := gate.NewEngine(store, binder, service, time.Second)
	return &fixture{store: store, service: service, engine: engine}
}

// approvedPass creates and approves a pass, returning it with its rendered
// token payload.
func (f *fixture) approvedPass(t *testing.T) (*passes.Pass, []byte) {
	t.Helper()
	ctx := context.Background()

	now := time.Now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 18, 0, 0, 0, now.Location())
	pass, err := f.service.Create(ctx, student, passes.CreateInput{
		Reason:    "Medical",
		StartTime: start,
		EndTime:   start.Add(2 * time.Hour),
	})
	require.NoError(t, err)

	pass, err = f.service.Decide(ctx, warden, pass.ID, passes.StatusApproved)
	require.NoError(t, err)

	payload, err := f.service.RenderToken(ctx, student, pass.ID)
	require.NoError(t, err)
	return pass, payload
}

func TestScanExitThenEntry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pass, payload := f.approvedPass(t)

	result, err := f.engine.Scan(ctx, payload, passes.MovementExit)
	require.NoError(t, err)
	assert.Equal(t, pass.ID, result.PassID)
	assert.Equal(t, pass.OwnerID, result.OwnerID)
	assert.False(t, result.RecordedAt.IsZero())

	stored, err := f.store.GetPassByID(ctx, pass.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.ActualStart)
	assert.Nil(t, stored.ActualEnd)

	// Second exit with the same token.
	_, err = f.engine.Scan(ctx, payload, passes.MovementExit)
	assert.ErrorIs(t, err, passes.ErrAlreadyCheckedOut)

	result, err = f.engine.Scan(ctx, payload, passes.MovementEntry)
	require.NoError(t, err)
	assert.False(t, result.RecordedAt.IsZero())

	stored, err = f.store.GetPassByID(ctx, pass.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.ActualEnd)
	assert.Equal(t, passes.StatusClosed, stored.Status)
}

func TestScanMalformedPayload(t *testing.T) {
	f := newFixture(t)

	_, err := f.engine.Scan(context.Background(), []byte("not a token"), passes.MovementExit)
	assert.ErrorIs(t, err, token.ErrMalformedPayload)
}

func TestScanMissingField(t *testing.T) {
	f := newFixture(t)

	_, err := f.engine.Scan(context.Background(), []byte(`{"pass_id":"x","reason":"Medical"}`), passes.MovementExit)
	assert.ErrorIs(t, err, token.ErrMissingField)
}

func TestScanUnknownPass(t *testing.T) {
	f := newFixture(t)

	payload, err := token.Encode("no-such-pass", "owner-42", "Medical")
	require.NoError(t, err)

	// A payload naming a nonexistent pass is a fake-pass signal, not a
	// system fault.
	_, err = f.engine.Scan(context.Background(), payload, passes.MovementExit)
	assert.ErrorIs(t, err, passes.ErrPassNotFound)
}

func TestScanPendingPass(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	start := time.Now().Add(time.Hour)
	pass, err := f.service.Create(ctx, student, passes.CreateInput{
		Reason:    "Medical",
		StartTime: start,
		EndTime:   start.Add(time.Hour),
	})
	require.NoError(t, err)

	payload, err := token.Encode(pass.ID, pass.OwnerID, pass.Reason)
	require.NoError(t, err)

	_, err = f.engine.Scan(ctx, payload, passes.MovementExit)
	assert.ErrorIs(t, err, passes.ErrNotApproved)
}

func TestScanForgedPayload(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pass, _ := f.approvedPass(t)

	// Consistent-looking payload with a mutated reason: decodes fine,
	// points at a real approved pass, fails the binding.
	forged, err := token.Encode(pass.ID, pass.OwnerID, "Shopping")
	require.NoError(t, err)

	_, err = f.engine.Scan(ctx, forged, passes.MovementExit)
	assert.ErrorIs(t, err, gate.ErrFakePass)

	// Mutated owner fails the same way.
	forged, err = token.Encode(pass.ID, "owner-43", pass.Reason)
	require.NoError(t, err)

	_, err = f.engine.Scan(ctx, forged, passes.MovementExit)
	assert.ErrorIs(t, err, gate.ErrFakePass)
}

func TestScanEntryBeforeExit(t *testing.T) {
	f := newFixture(t)
	_, payload := f.approvedPass(t)

	_, err := f.engine.Scan(context.Background(), payload, passes.MovementEntry)
	assert.ErrorIs(t, err, passes.ErrNotCheckedOutYet)
}

// unreachableStore simulates a storage collaborator that cannot be reached.
type unreachableStore struct{}

var errStoreDown = errors.New("connection refused")

func (unreachableStore) CreatePass(context.Context, *passes.Pass) (*passes.Pass, error) {
	return nil, errStoreDown
}
func (unreachableStore) GetPassByID(context.Context, string) (*passes.Pass, error) {
	return nil, errStoreDown
}
func (unreachableStore) UpdatePass(context.Context, string, int64, passes.Update) (*passes.Pass, error) {
	return nil, errStoreDown
}
func (unreachableStore) ListPassesByOwner(context.Context, string) ([]passes.Pass, error) {
	return nil, errStoreDown
}
func (unreachableStore) ListPendingPasses(context.Context) ([]passes.Pass, error) {
	return nil, errStoreDown
}

func TestScanFailsClosedWhenStoreUnavailable(t *testing.T) {
	binder := binding.NewBinder(bcrypt.MinCost)
	store := unreachableStore{}
	service := passes.NewService(store, binder, notify.NewHub())
	engine := gate.NewEngine(store, binder, service, 50*time.Millisecond)

	payload, err := token.Encode("pass-1", "owner-42", "Medical")
	require.NoError(t, err)

	_, err = engine.Scan(context.Background(), payload, passes.MovementExit)
	assert.ErrorIs(t, err, gate.ErrVerificationUnavailable)
}
