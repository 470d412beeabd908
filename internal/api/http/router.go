package http

import (
	"github.com/gin-gonic/gin"
	"github.com/hosteline/epass-server/internal/api/http/handler"
	"github.com/hosteline/epass-server/internal/api/http/middleware"
	"github.com/hosteline/epass-server/internal/auth"
	"github.com/hosteline/epass-server/internal/gate"
	"github.com/hosteline/epass-server/internal/notify"
	"github.com/hosteline/epass-server/internal/passes"
)

type Services struct {
	Auth      *auth.Service
	Passes    *passes.Service
	Gate      *gate.Engine
	Hub       *notify.Hub
	JWTSecret string
}

func SetupRoute(engine *gin.Engine, srvs *Services) {
	engine.Use(middleware.RequestLogger())

	healthHandler := handler.NewHealthHandler()
	engine.GET("/health", healthHandler.Check)

	authHandler := handler.NewAuthHandler(srvs.Auth)
	engine.POST("/auth/register", authHandler.Register)
	engine.POST("/auth/login", authHandler.Login)

	passHandler := handler.NewPassHandler(srvs.Passes)
	gateHandler := handler.NewGateHandler(srvs.Gate)
	eventsHandler := handler.NewEventsHandler(srvs.Hub)

	api := engine.Group("/api", middleware.JWTAuth(srvs.JWTSecret))
	{
		api.GET("/profile", authHandler.Profile)
		api.GET("/events", eventsHandler.Stream)

		api.POST("/passes", middleware.RequireRole(auth.RoleStudent), passHandler.Create)
		api.GET("/passes", middleware.RequireRole(auth.RoleStudent), passHandler.ListOwn)
		api.GET("/passes/pending", middleware.RequireRole(auth.RoleWarden), passHandler.ListPending)
		api.GET("/passes/:id", passHandler.Get)
		api.PUT("/passes/:id/decision", middleware.RequireRole(auth.RoleWarden), passHandler.Decide)
		api.GET("/passes/:id/token", middleware.RequireRole(auth.RoleStudent), passHandler.RenderToken)

		api.POST("/gate/scan", middleware.RequireRole(auth.RoleGuard), gateHandler.Scan)
	}
}
