// Package router assembles the gin engines for each service binary.
package router

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/PRASHANTSWAROOP001/Appointment-Booking-Microservice/internal/gateway"
	"github.com/PRASHANTSWAROOP001/Appointment-Booking-Microservice/internal/handler"
	"github.com/PRASHANTSWAROOP001/Appointment-Booking-Microservice/internal/middleware"
	"github.com/PRASHANTSWAROOP001/Appointment-Booking-Microservice/internal/models"
	"github.com/PRASHANTSWAROOP001/Appointment-Booking-Microservice/internal/service"
	"github.com/PRASHANTSWAROOP001/Appointment-Booking-Microservice/pkg/config"
	"github.com/PRASHANTSWAROOP001/Appointment-Booking-Microservice/pkg/logger"
	corsmiddleware "github.com/PRASHANTSWAROOP001/Appointment-Booking-Microservice/pkg/middleware/cors"
	reqidmiddleware "github.com/PRASHANTSWAROOP001/Appointment-Booking-Microservice/pkg/middleware/requestid"
)

func newEngine(cfg *config.Config, logr *zap.Logger, metrics *service.MetricsService) *gin.Engine {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS))
	r.Use(middleware.Metrics(metrics))
	return r
}

func mountOps(r *gin.Engine, cfg *config.Config, metricsHandler *handler.MetricsHandler) {
	r.GET("/health", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}
}

// IdentityDeps holds the wiring for the identity service.
type IdentityDeps struct {
	Auth    *handler.AuthHandler
	Metrics *service.MetricsService
}

// NewIdentity builds the identity service engine: signup, login, refresh
// and logout.
func NewIdentity(cfg *config.Config, logr *zap.Logger, deps IdentityDeps) *gin.Engine {
	r := newEngine(cfg, logr, deps.Metrics)
	mountOps(r, cfg, handler.NewMetricsHandler(deps.Metrics))

	auth := r.Group("/auth")
	{
		auth.POST("/signup", deps.Auth.Signup)
		auth.POST("/login", deps.Auth.Login)
		auth.POST("/refresh", deps.Auth.Refresh)
		auth.POST("/logout", deps.Auth.Logout)
	}
	return r
}

// ListingDeps holds the wiring for the listing service.
type ListingDeps struct {
	Catalog   *handler.CatalogHandler
	Search    *handler.SearchHandler
	Validator middleware.TokenValidator
	Metrics   *service.MetricsService
}

// NewListing builds the listing service engine: seller catalog management
// plus the public search.
func NewListing(cfg *config.Config, logr *zap.Logger, deps ListingDeps) *gin.Engine {
	r := newEngine(cfg, logr, deps.Metrics)
	mountOps(r, cfg, handler.NewMetricsHandler(deps.Metrics))

	r.GET("/search", deps.Search.Search)

	seller := r.Group("/")
	seller.Use(middleware.JWT(deps.Validator))
	seller.Use(middleware.RequireRoles(models.RoleSeller))
	{
		seller.POST("/shops", deps.Catalog.CreateShop)
		seller.GET("/shops", deps.Catalog.GetShop)
		seller.DELETE("/shops", deps.Catalog.DeleteShop)

		seller.POST("/locations", deps.Catalog.AddLocation)
		seller.GET("/locations", deps.Catalog.GetLocation)
		seller.PUT("/locations/:id", deps.Catalog.UpdateLocation)
		seller.DELETE("/locations/:id", deps.Catalog.DeleteLocation)

		seller.POST("/services", deps.Catalog.AddService)
		seller.GET("/services", deps.Catalog.ListServices)
		seller.PUT("/services/:id", deps.Catalog.UpdateService)
		seller.DELETE("/services/:id", deps.Catalog.DeleteService)
	}
	return r
}

// UserDeps holds the wiring for the user service.
type UserDeps struct {
	Booking   *handler.BookingHandler
	Validator middleware.TokenValidator
	Metrics   *service.MetricsService
}

// NewUser builds the user service engine: booking, listing, cancellation
// and receipts for authenticated customers.
func NewUser(cfg *config.Config, logr *zap.Logger, deps UserDeps) *gin.Engine {
	r := newEngine(cfg, logr, deps.Metrics)
	mountOps(r, cfg, handler.NewMetricsHandler(deps.Metrics))

	authed := r.Group("/")
	authed.Use(middleware.JWT(deps.Validator))
	authed.Use(middleware.RequireRoles(models.RoleUser, models.RoleSeller))
	{
		authed.POST("/bookings", deps.Booking.Create)
		authed.GET("/bookings", deps.Booking.List)
		authed.GET("/bookings/:id", deps.Booking.Get)
		authed.GET("/bookings/:id/receipt", deps.Booking.Receipt)
		authed.POST("/bookings/cancel", deps.Booking.Cancel)
	}
	return r
}

// GatewayDeps holds the wiring for the API gateway.
type GatewayDeps struct {
	Proxy     *gateway.Proxy
	Redis     *redis.Client
	Validator middleware.TokenValidator
	Metrics   *service.MetricsService
}

// NewGateway builds the public entrypoint: rate limiting, an access token
// check on protected prefixes, then reverse proxying onto the backend
// services. The stricter auth limiter guards login and signup against
// credential stuffing. The bearer token is forwarded untouched; each
// backend re-verifies it and derives identity from the claims.
func NewGateway(cfg *config.Config, logr *zap.Logger, deps GatewayDeps) *gin.Engine {
	r := newEngine(cfg, logr, deps.Metrics)
	mountOps(r, cfg, handler.NewMetricsHandler(deps.Metrics))

	global := middleware.RateLimit(middleware.RateLimitConfig{
		Enabled:  cfg.Gateway.RateLimitEnabled,
		Prefix:   "rl:global",
		Points:   cfg.Gateway.GlobalLimit,
		Window:   cfg.Gateway.GlobalWindow,
		BlockFor: cfg.Gateway.GlobalBlockFor,
	}, deps.Redis, logr)

	strict := middleware.RateLimit(middleware.RateLimitConfig{
		Enabled:  cfg.Gateway.RateLimitEnabled,
		Prefix:   "rl:auth",
		Points:   cfg.Gateway.StrictLimit,
		Window:   cfg.Gateway.StrictWindow,
		BlockFor: cfg.Gateway.StrictBlockFor,
	}, deps.Redis, logr)

	forward := deps.Proxy.Handler()

	r.Use(global)
	r.Use(gatewayAuthGuard(deps.Validator))
	r.POST("/auth-route/auth/login", strict, forward)
	r.POST("/auth-route/auth/signup", strict, forward)
	r.NoRoute(forward)

	return r
}

// gatewayAuthGuard rejects requests to protected prefixes that do not
// carry a valid access token. The token itself stays on the request.
func gatewayAuthGuard(validator middleware.TokenValidator) gin.HandlerFunc {
	check := middleware.JWT(validator)
	return func(c *gin.Context) {
		if requiresToken(c.Request.URL.Path) {
			check(c)
			return
		}
		c.Next()
	}
}

func requiresToken(path string) bool {
	if strings.HasPrefix(path, "/user-route/") {
		return true
	}
	if strings.HasPrefix(path, "/seller-route/") {
		return path != "/seller-route/search"
	}
	return false
}
