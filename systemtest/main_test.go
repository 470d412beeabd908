package systemtest

import (
	"context"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	internalhttp "github.com/hosteline/epass-server/internal/api/http"
	"github.com/hosteline/epass-server/internal/auth"
	"github.com/hosteline/epass-server/internal/binding"
	"github.com/hosteline/epass-server/internal/gate"
	"github.com/hosteline/epass-server/internal/notify"
	"github.com/hosteline/epass-server/internal/passes"
	"github.com/hosteline/epass-server/internal/storage/postgres"
	tcpostgres "github.com/hosteline/epass-server/systemtest/postgres"
	"github.com/hosteline/epass-server/systemtest/tests"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	dbSchema  = "epass"
	jwtSecret = "system-test-secret"
)

func TestSystemIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping system test in short mode")
	}
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	container, err := tcpostgres.StartPostgres(ctx, "epass", "epass", "epass")
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := tcpostgres.TerminatePostgres(context.Background(), container); err != nil {
			t.Logf("terminate postgres: %v", err)
		}
	})

	dbURL, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	require.NoError(t, postgres.RunMigrations(dbURL, dbSchema))

	pool, err := postgres.InitDB(ctx, dbURL, dbSchema)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	store := postgres.NewStore(pool)
	hub := notify.NewHub()
	t.Cleanup(hub.Stop)

	binder := binding.NewBinder(bcrypt.MinCost)
	passService := passes.NewService(store, binder, hub)
	gateEngine := gate.NewEngine(store, binder, passService, 3*time.Second)
	authService := auth.NewService(store, auth.JWTConfig{Secret: jwtSecret, ExpiryHours: 1})

	engine := gin.New()
	internalhttp.SetupRoute(engine, &internalhttp.Services{
		Auth:      authService,
		Passes:    passService,
		Gate:      gateEngine,
		Hub:       hub,
		JWTSecret: jwtSecret,
	})

	t.Run("HealthCheck", func(t *testing.T) { tests.TestHealthCheck(t, engine) })
	t.Run("Register", func(t *testing.T) { tests.TestRegister(t, engine) })
	t.Run("Login", func(t *testing.T) { tests.TestLogin(t, engine, jwtSecret) })
	t.Run("PassLifecycle", func(t *testing.T) { tests.TestPassLifecycle(t, engine) })
	t.Run("GateRejections", func(t *testing.T) { tests.TestGateRejections(t, engine) })
}
