package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/blockport/trade-finance-api/internal/api/handler"
	"github.com/blockport/trade-finance-api/internal/api/middleware"
	"github.com/blockport/trade-finance-api/internal/core/domain"
	"github.com/blockport/trade-finance-api/internal/core/ports"
	redisdb "github.com/blockport/trade-finance-api/internal/infrastructure/db/redis"
	"github.com/blockport/trade-finance-api/internal/infrastructure/memory"
)

// RouterDeps carries everything the HTTP surface composes around.
type RouterDeps struct {
	Auth  ports.AuthService
	Users handler.UserDirectory
	Mongo *mongo.Database
	// Redis may be nil; the rate limiter then runs purely in-process.
	Redis *redis.Client

	LoginLimit    middleware.Limit
	RegisterLimit middleware.Limit

	Log zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps RouterDeps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("tradefinance_http"))

	// --- Rate limit stores: shared backend with in-process fallback ---
	fallbackStore := memory.NewRateLimitStore()
	var primaryStore middleware.RateLimitStore = fallbackStore
	if deps.Redis != nil {
		primaryStore = redisdb.NewRateLimitStore(deps.Redis)
	}
	limited := func(l middleware.Limit) echo.MiddlewareFunc {
		return middleware.RateLimit(primaryStore, fallbackStore, l, deps.Log)
	}

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.Auth)
	userHandler := handler.NewUserHandler(deps.Users)
	dashHandler := handler.NewDashboardHandler()
	authn := middleware.Auth(deps.Auth)

	// --- Auth routes ---
	auth := e.Group("/v1/auth")
	auth.POST("/register", authHandler.Register, limited(deps.RegisterLimit))
	auth.POST("/login", authHandler.Login, limited(deps.LoginLimit))
	auth.POST("/refresh", authHandler.Refresh)
	auth.POST("/logout", authHandler.Logout)

	// --- User routes ---
	users := e.Group("/v1/users", authn)
	users.GET("/me", userHandler.Me, middleware.RequirePermission(domain.PermViewProfile))
	users.PATCH("/me", userHandler.UpdateMe, middleware.RequirePermission(domain.PermUpdateProfile))
	users.GET("", userHandler.List, middleware.RequirePermission(domain.PermViewUsers))

	// --- Dashboards (role-gated protected resources) ---
	dash := e.Group("/v1/dashboard", authn, middleware.RequirePermission(domain.PermReadContract))
	dash.GET("/importer", dashHandler.Importer, middleware.RequireRole(domain.RoleImporter))
	dash.GET("/exporter", dashHandler.Exporter, middleware.RequireRole(domain.RoleExporter))
	dash.GET("/logistics", dashHandler.Logistics, middleware.RequireRole(domain.RoleLogistics))
	dash.GET("/admin", dashHandler.Admin, middleware.RequireRole(domain.RoleAdmin))

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(deps.Mongo, deps.Redis)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
