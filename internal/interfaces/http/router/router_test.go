package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shipdesk/backend/internal/interfaces/http/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type pingRegistrar struct {
	path string
}

func (p pingRegistrar) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET(p.path, func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
}

func serve(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	engine.ServeHTTP(w, req)
	return w
}

func TestNewRouter(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	assert.NotNil(t, r)
	assert.Equal(t, "v1", r.apiVersion)
	assert.Empty(t, r.registrars)
}

func TestRouterWithAPIVersion(t *testing.T) {
	r := NewRouter(gin.New(), WithAPIVersion("v2"))
	assert.Equal(t, "v2", r.apiVersion)
}

func TestRouter_SetupMountsRegistrarsUnderVersion(t *testing.T) {
	engine := gin.New()
	NewRouter(engine, WithAPIVersion("v2")).
		Register(pingRegistrar{path: "/a"}).
		Register(pingRegistrar{path: "/b"}).
		Setup()

	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/api/v2/a").Code)
	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/api/v2/b").Code)
	assert.Equal(t, http.StatusNotFound, serve(engine, http.MethodGet, "/api/v1/a").Code)
}

func TestNewEngine_AppliesGlobalMiddleware(t *testing.T) {
	engine, err := NewEngine(EngineConfig{MaxBodySize: 1 << 10}, zap.NewNop())
	require.NoError(t, err)
	NewRouter(engine).Register(pingRegistrar{path: "/ping"}).Setup()

	w := serve(engine, http.MethodGet, "/api/v1/ping")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func TestNewEngine_Health(t *testing.T) {
	engine, err := NewEngine(EngineConfig{
		Health: func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "healthy"}) },
	}, zap.NewNop())
	require.NoError(t, err)

	w := serve(engine, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}

func TestNewEngine_RateLimit(t *testing.T) {
	engine, err := NewEngine(EngineConfig{RateLimiter: middleware.NewRateLimiter(0.001, 1)}, zap.NewNop())
	require.NoError(t, err)
	NewRouter(engine).Register(pingRegistrar{path: "/ping"}).Setup()

	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/api/v1/ping").Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(engine, http.MethodGet, "/api/v1/ping").Code)
}

func TestNewEngine_RecoversPanics(t *testing.T) {
	engine, err := NewEngine(EngineConfig{}, zap.NewNop())
	require.NoError(t, err)
	engine.GET("/boom", func(*gin.Context) { panic("boom") })

	assert.Equal(t, http.StatusInternalServerError, serve(engine, http.MethodGet, "/boom").Code)
}

func TestNewEngine_InvalidTrustedProxy(t *testing.T) {
	_, err := NewEngine(EngineConfig{TrustedProxies: []string{"not-an-ip"}}, zap.NewNop())
	assert.Error(t, err)
}

func TestNewEngine_Swagger(t *testing.T) {
	t.Run("serves the generated document", func(t *testing.T) {
		engine, err := NewEngine(EngineConfig{Swagger: middleware.SwaggerConfig{Enabled: true}}, zap.NewNop())
		require.NoError(t, err)

		w := serve(engine, http.MethodGet, "/swagger/doc.json")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "listMarketplaceOrders")
		assert.Contains(t, w.Body.String(), "/scans")
	})

	t.Run("hidden while disabled", func(t *testing.T) {
		engine, err := NewEngine(EngineConfig{}, zap.NewNop())
		require.NoError(t, err)

		assert.Equal(t, http.StatusNotFound, serve(engine, http.MethodGet, "/swagger/doc.json").Code)
	})
}
