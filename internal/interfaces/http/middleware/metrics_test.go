package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func setupTestMeter(t *testing.T) (*sdkmetric.MeterProvider, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() {
		_ = mp.Shutdown(context.Background())
	})
	return mp, reader
}

func findMetricByName(t *testing.T, reader *sdkmetric.ManualReader, name string) *metricdata.Metrics {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func TestHTTPMetrics_DisabledOrMissingProvider(t *testing.T) {
	gin.SetMode(gin.TestMode)

	for _, cfg := range []HTTPMetricsConfig{{Enabled: false}, {Enabled: true}} {
		router := gin.New()
		router.Use(HTTPMetrics(cfg))
		router.GET("/test", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "ok"})
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestHTTPMetricsWithMeter_RecordsRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mp, reader := setupTestMeter(t)

	router := gin.New()
	router.Use(HTTPMetricsWithMeter(mp.Meter("test")))
	router.GET("/api/v1/marketplace/orders/:orderId", func(c *gin.Context) {
		c.JSON(http.StatusBadGateway, gin.H{"success": false})
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/marketplace/orders/A123", nil))
	require.Equal(t, http.StatusBadGateway, w.Code)

	total := findMetricByName(t, reader, "http_server_request_total")
	require.NotNil(t, total)
	sum, ok := total.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)
	dp := sum.DataPoints[0]
	assert.Equal(t, int64(1), dp.Value)

	route, _ := dp.Attributes.Value(attrHTTPRoute)
	assert.Equal(t, "/api/v1/marketplace/orders/:orderId", route.AsString())
	status, _ := dp.Attributes.Value(attrHTTPStatusCode)
	assert.Equal(t, int64(http.StatusBadGateway), status.AsInt64())
	group, _ := dp.Attributes.Value(attrHTTPStatusGrp)
	assert.Equal(t, "5xx", group.AsString())

	duration := findMetricByName(t, reader, "http_server_request_duration_seconds")
	require.NotNil(t, duration)
	hist, ok := duration.Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(1), hist.DataPoints[0].Count)
	_, hasStatus := hist.DataPoints[0].Attributes.Value(attrHTTPStatusCode)
	assert.False(t, hasStatus, "duration is labelled by method and route only")
}

func TestHTTPMetricsWithMeter_UnmatchedRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mp, reader := setupTestMeter(t)

	router := gin.New()
	router.Use(HTTPMetricsWithMeter(mp.Meter("test")))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	total := findMetricByName(t, reader, "http_server_request_total")
	require.NotNil(t, total)
	sum := total.Data.(metricdata.Sum[int64])
	require.Len(t, sum.DataPoints, 1)
	assert.True(t, sum.DataPoints[0].Attributes.HasValue(attrHTTPRoute))
	route, _ := sum.DataPoints[0].Attributes.Value(attrHTTPRoute)
	assert.Equal(t, attribute.StringValue("unknown"), route)
}

func TestStatusGroup(t *testing.T) {
	tests := map[int]string{
		200: "2xx",
		202: "2xx",
		304: "3xx",
		400: "4xx",
		429: "4xx",
		502: "5xx",
		100: "other",
	}
	for code, want := range tests {
		assert.Equal(t, want, StatusGroup(code), "status %d", code)
	}
}
