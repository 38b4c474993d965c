package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// setupTestTracer installs a recording tracer provider for the test.
func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	t.Cleanup(func() {
		_ = tp.Shutdown(t.Context())
	})
	return sr
}

func findSpan(t *testing.T, sr *tracetest.SpanRecorder, name string) sdktrace.ReadOnlySpan {
	t.Helper()
	for _, span := range sr.Ended() {
		if span.Name() == name {
			return span
		}
	}
	require.Failf(t, "span not found", "no ended span named %q", name)
	return nil
}

func spanAttrs(span sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	out := make(map[attribute.Key]attribute.Value)
	for _, kv := range span.Attributes() {
		out[kv.Key] = kv.Value
	}
	return out
}

func newTracedRouter(status int, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID(), Tracing())
	router.Use(extra...)
	router.GET("/api/v1/marketplace/orders", func(c *gin.Context) {
		c.JSON(status, gin.H{})
	})
	return router
}

func TestTracingWithConfig_Disabled(t *testing.T) {
	sr := setupTestTracer(t)
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(TracingWithConfig(TracingConfig{Enabled: false, ServiceName: "test"}))
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, sr.Ended())
}

func TestTracing_CreatesRouteNamedSpan(t *testing.T) {
	sr := setupTestTracer(t)
	router := newTracedRouter(http.StatusOK)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/marketplace/orders", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	findSpan(t, sr, "GET /api/v1/marketplace/orders")
}

func TestTracingAttributeInjector(t *testing.T) {
	sr := setupTestTracer(t)
	router := newTracedRouter(http.StatusOK, TracingAttributeInjector())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/marketplace/orders?account=shop-a&page=2", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	router.ServeHTTP(httptest.NewRecorder(), req)

	attrs := spanAttrs(findSpan(t, sr, "GET /api/v1/marketplace/orders"))
	assert.Equal(t, "req-123", attrs["request_id"].AsString())
	assert.Equal(t, "shop-a", attrs["marketplace.account"].AsString())
}

func TestTracingAttributeInjector_SkipsOversizedAccount(t *testing.T) {
	sr := setupTestTracer(t)
	router := newTracedRouter(http.StatusOK, TracingAttributeInjector())

	url := "/api/v1/marketplace/orders?account=" + strings.Repeat("a", MaxAccountLength+1)
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, url, nil))

	attrs := spanAttrs(findSpan(t, sr, "GET /api/v1/marketplace/orders"))
	assert.NotContains(t, attrs, attribute.Key("marketplace.account"))
}

func TestTracingAttributeInjector_WithNoSpan(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(TracingAttributeInjector())
	router.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test?account=shop-a", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSpanErrorMarker(t *testing.T) {
	tests := []struct {
		status      int
		wantCode    codes.Code
		description string
	}{
		{http.StatusOK, codes.Unset, ""},
		{http.StatusBadRequest, codes.Error, "Client Error"},
		{http.StatusNotFound, codes.Error, "Not Found"},
		{http.StatusTooManyRequests, codes.Error, "Too Many Requests"},
		{http.StatusBadGateway, codes.Error, "Upstream Error"},
		{http.StatusGatewayTimeout, codes.Error, "Upstream Timeout"},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			sr := setupTestTracer(t)
			router := newTracedRouter(tt.status, SpanErrorMarker())

			router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/marketplace/orders", nil))

			span := findSpan(t, sr, "GET /api/v1/marketplace/orders")
			if tt.wantCode == codes.Unset {
				assert.NotEqual(t, codes.Error, span.Status().Code)
				return
			}
			assert.Equal(t, tt.wantCode, span.Status().Code)
			if tt.status < http.StatusInternalServerError {
				// otelgin re-sets 5xx statuses without a description once the chain returns
				assert.Equal(t, tt.description, span.Status().Description)
			}
		})
	}
}

func TestSpanErrorMarker_WithNoSpan(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(SpanErrorMarker())
	router.GET("/test", func(c *gin.Context) {
		c.String(http.StatusInternalServerError, "boom")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestGetRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("context value wins", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		c.Request.Header.Set(RequestIDHeader, "from-header")
		c.Set(RequestIDKey, "from-context")
		assert.Equal(t, "from-context", getRequestID(c))
	})

	t.Run("header is truncated", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		c.Request.Header.Set(RequestIDHeader, strings.Repeat("r", MaxRequestIDLength+10))
		assert.Len(t, getRequestID(c), MaxRequestIDLength)
	})
}
