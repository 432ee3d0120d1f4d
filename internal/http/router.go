package http

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/prodsmart/backend/internal/config"
	"github.com/prodsmart/backend/internal/domain/resource"
	"github.com/prodsmart/backend/internal/http/handlers"
	"github.com/prodsmart/backend/internal/http/middlewares"
	"github.com/prodsmart/backend/internal/identity"
	"github.com/prodsmart/backend/internal/observability"
	"github.com/prodsmart/backend/internal/repo"
	"github.com/prodsmart/backend/internal/session"
	"github.com/prodsmart/backend/internal/store"
)

// Deps carries the externally-constructed collaborators so tests can swap
// the memory implementations in.
type Deps struct {
	Docs     store.Store
	Sessions session.Store
	Prom     *observability.Prom
	Registry *prometheus.Registry
	// readiness checks for the backing services, may be nil
	PingDB    func() error
	PingRedis func() error
}

func NewRouter(log *slog.Logger, cfg config.Config, deps Deps) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware("prodsmart-api"))
	r.Use(RequestID())
	r.Use(RequestLogger(log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.AllowedOrigins))
	r.Use(middlewares.MaxBodyBytes(1 << 20))

	if deps.Prom != nil {
		r.Use(deps.Prom.GinHandleMiddleware())
	}

	// health + metrics
	h := handlers.NewHealthHandler(deps.PingDB, deps.PingRedis)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	if deps.Registry != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})))
	}

	// static login/signup pages
	static := handlers.NewStaticHandler(cfg.StaticDir)
	r.GET("/", static.Login)
	r.GET("/signup", static.SignUp)

	// wire up the identity and session layer
	users := identity.NewUsers(deps.Docs)
	authHandler := handlers.NewAuthHandler(users, deps.Sessions, cfg)
	authMW := middlewares.NewAuthMiddleware(deps.Sessions, users)

	credentialLimiter := middlewares.NewRateLimiter(20, time.Minute)

	authGroup := r.Group("/api/auth")
	authGroup.POST("/signup", credentialLimiter.RateLimiterMiddleware(middlewares.KeyByIP), authHandler.SignUp)
	authGroup.POST("/login", credentialLimiter.RateLimiterMiddleware(middlewares.KeyByIP), authHandler.Login)
	authGroup.POST("/logout", authHandler.Logout)
	authGroup.GET("/session", authHandler.Session)

	// one generic engine per collection, all behind the session check
	api := r.Group("/api", authMW.RequireAuth())

	for _, desc := range resource.All() {
		rh := handlers.NewResourcesHandler(repo.New(deps.Docs, desc), desc.Label)

		api.GET("/"+desc.Name, rh.List)
		api.POST("/"+desc.Name, rh.Create)
		api.PUT("/"+desc.Name+"/:id", rh.Update)
		api.DELETE("/"+desc.Name+"/:id", rh.Delete)
		api.DELETE("/"+desc.Name, rh.DeleteAll)
	}

	return r
}
