package router

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/shipdesk/backend/docs"
	"github.com/shipdesk/backend/internal/infrastructure/logger"
	"github.com/shipdesk/backend/internal/infrastructure/telemetry"
	"github.com/shipdesk/backend/internal/interfaces/http/middleware"
)

// RouteRegistrar defines the interface for registering routes
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router manages HTTP route registration
type Router struct {
	engine     *gin.Engine
	apiVersion string
	registrars []RouteRegistrar
}

// RouterOption is a functional option for Router configuration
type RouterOption func(*Router)

// WithAPIVersion sets the API version prefix (e.g., "v1", "v2")
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// NewRouter creates a new Router instance
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{
		engine:     engine,
		apiVersion: "v1",
		registrars: make([]RouteRegistrar, 0),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Register adds a RouteRegistrar to be registered later
func (r *Router) Register(registrar RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrar)
	return r
}

// Setup registers all routes with the engine
func (r *Router) Setup() {
	api := r.engine.Group("/api/" + r.apiVersion)

	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}
}

// EngineConfig selects the global middleware of the HTTP engine
type EngineConfig struct {
	Release          bool
	ServiceName      string
	TracingEnabled   bool
	MeterProvider    *telemetry.MeterProvider
	CORSAllowOrigins []string
	TrustedProxies   []string
	MaxBodySize      int64
	// RateLimiter is applied per client IP; nil disables rate limiting
	RateLimiter    *middleware.RateLimiter
	RequestTimeout time.Duration
	// Health is served at /health outside the versioned API group
	Health gin.HandlerFunc
	// Swagger guards the API documentation at /swagger/*any
	Swagger middleware.SwaggerConfig
}

// NewEngine builds the gin engine with the global middleware chain:
// request id, recovery, tracing, metrics, access log, security headers, CORS,
// body limit, rate limit and request timeout. It also mounts /health and the Swagger UI.
func NewEngine(cfg EngineConfig, log *zap.Logger) (*gin.Engine, error) {
	if cfg.Release {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
			return nil, fmt.Errorf("set trusted proxies: %w", err)
		}
	} else if err := engine.SetTrustedProxies(nil); err != nil {
		return nil, fmt.Errorf("set trusted proxies: %w", err)
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))

	tracing := middleware.DefaultTracingConfig()
	tracing.Enabled = cfg.TracingEnabled
	if cfg.ServiceName != "" {
		tracing.ServiceName = cfg.ServiceName
	}
	engine.Use(middleware.TracingWithConfig(tracing))
	if cfg.TracingEnabled {
		engine.Use(middleware.TracingAttributeInjector(), middleware.SpanErrorMarker())
	}
	engine.Use(middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
		MeterProvider: cfg.MeterProvider,
		Enabled:       cfg.MeterProvider != nil,
	}))

	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	cors := middleware.DefaultCORSConfig()
	if len(cfg.CORSAllowOrigins) > 0 {
		cors.AllowOrigins = cfg.CORSAllowOrigins
	}
	engine.Use(middleware.CORSWithConfig(cors))

	if cfg.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(cfg.MaxBodySize))
	}
	if cfg.RateLimiter != nil {
		engine.Use(middleware.RateLimit(cfg.RateLimiter))
	}
	engine.Use(middleware.Timeout(cfg.RequestTimeout))

	if cfg.Health != nil {
		engine.GET("/health", cfg.Health)
	}
	engine.GET("/swagger/*any", middleware.SwaggerProtection(cfg.Swagger), ginSwagger.WrapHandler(swaggerFiles.Handler))

	return engine, nil
}
