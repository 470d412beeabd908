package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	internalhttp "github.com/hosteline/epass-server/internal/api/http"
	"github.com/hosteline/epass-server/internal/auth"
	"github.com/hosteline/epass-server/internal/binding"
	"github.com/hosteline/epass-server/internal/gate"
	"github.com/hosteline/epass-server/internal/notify"
	"github.com/hosteline/epass-server/internal/passes"
	"github.com/hosteline/epass-server/internal/storage/memory"
	"github.com/hosteline/epass-server/internal/storage/postgres"
	"github.com/hosteline/epass-server/internal/users"
)

var AppVersion string

// stores groups the storage collaborators behind one value so main can swap
// Postgres for the in-memory implementation in development.
type stores interface {
	passes.Store
	users.Store
}

// seedStaffAccounts mirrors the migration seed for the in-memory store, so
// the warden and guard flows are usable without a database.
func seedStaffAccounts(ctx context.Context, store stores) {
	hash, err := users.HashPassword("changeme")
	if err != nil {
		slog.Error("Failed to hash seed password", "error", err)
		return
	}
	for _, u := range []users.User{
		{Username: "warden", PasswordHash: hash, Role: auth.RoleWarden, Name: "Default Warden"},
		{Username: "guard", PasswordHash: hash, Role: auth.RoleGuard, Name: "Default Guard"},
	} {
		if _, err := store.CreateUser(ctx, &u); err != nil {
			slog.Error("Failed to seed staff account", "username", u.Username, "error", err)
		}
	}
}

func main() {
	InitConfig()

	slog.Info("E-Pass Server", "version", AppVersion)

	ctx := context.Background()

	var store stores
	if config.Db.Url != "" {
		if err := postgres.RunMigrations(config.Db.Url, config.Db.Schema); err != nil {
			slog.Error("Database migration failed", "error", err)
			os.Exit(1)
		}
		pool, err := postgres.InitDB(ctx, config.Db.Url, config.Db.Schema)
		if err != nil {
			slog.Error("Database connection failed", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		store = postgres.NewStore(pool)
	} else {
		slog.Warn("No database configured, using in-memory store; all data is lost on restart")
		store = memory.NewStore()
		seedStaffAccounts(ctx, store)
	}

	hub := notify.NewHub()
	binder := binding.NewBinder(config.Binding.Cost)
	passService := passes.NewService(store, binder, hub)
	gateEngine := gate.NewEngine(store, binder, passService, config.Gate.FetchTimeout)
	authService := auth.NewService(store, config.Jwt)

	services := &internalhttp.Services{
		Auth:      authService,
		Passes:    passService,
		Gate:      gateEngine,
		Hub:       hub,
		JWTSecret: config.Jwt.Secret,
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"PUT", "PATCH", "GET", "POST", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(gin.Recovery())
	internalhttp.SetupRoute(engine, services)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", config.Http.Port),
		Handler: engine,
	}

	errChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		slog.Error("Server error", "error", err)
	case sig := <-sigChan:
		slog.Info("Received shutdown signal", "signal", sig)
	}

	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	hub.Stop()
	slog.Info("Shutdown complete")
}
