package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap/zaptest"

	"github.com/shipdesk/backend/internal/infrastructure/telemetry"
)

func newManualMeter(t *testing.T) (*sdkmetric.ManualReader, *sdkmetric.MeterProvider) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })
	return reader, provider
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func TestNewMeterProvider_Disabled(t *testing.T) {
	ctx := context.Background()
	cfg := telemetry.MetricsConfig{
		Enabled:           false,
		CollectorEndpoint: "localhost:14317",
		ExportInterval:    60 * time.Second,
		ServiceName:       "test-service",
	}

	mp, err := telemetry.NewMeterProvider(ctx, cfg, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.False(t, mp.IsEnabled())
	assert.Equal(t, "test-service", mp.GetConfig().ServiceName)
	assert.NotNil(t, mp.Meter("test"))
	assert.NoError(t, mp.ForceFlush(ctx))
	assert.NoError(t, mp.Shutdown(ctx))
}

func TestNewMeterProvider_Enabled(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping collector test in short mode")
	}
	ctx := context.Background()
	cfg := telemetry.MetricsConfig{
		Enabled:           true,
		CollectorEndpoint: "localhost:14317",
		ExportInterval:    time.Second,
		ServiceName:       "test-service",
		Insecure:          true,
	}

	mp, err := telemetry.NewMeterProvider(ctx, cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.True(t, mp.IsEnabled())
	assert.NotNil(t, mp.Meter("test"))

	shutdownCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	_ = mp.Shutdown(shutdownCtx)
}

func TestCounter_AddAndInc(t *testing.T) {
	reader, provider := newManualMeter(t)
	counter, err := telemetry.NewCounter(provider.Meter("test"), "test.counter", "test", "1")
	require.NoError(t, err)

	ctx := context.Background()
	counter.Add(ctx, 4, attribute.String("k", "v"))
	counter.Inc(ctx, attribute.String("k", "v"))

	m := collect(t, reader)["test.counter"]
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(5), sum.DataPoints[0].Value)
}

func TestHistogram_RecordDuration(t *testing.T) {
	reader, provider := newManualMeter(t)
	h, err := telemetry.NewHistogram(provider.Meter("test"), telemetry.HistogramOpts{
		Name:       "test.duration",
		Unit:       "s",
		Boundaries: telemetry.ReconcileDurationBuckets,
	})
	require.NoError(t, err)

	h.RecordDuration(context.Background(), 1500*time.Millisecond)

	m := collect(t, reader)["test.duration"]
	hist, ok := m.Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(1), hist.DataPoints[0].Count)
	assert.InDelta(t, 1.5, hist.DataPoints[0].Sum, 0.0001)
	assert.Equal(t, telemetry.ReconcileDurationBuckets, hist.DataPoints[0].Bounds)
}

func TestHelpers_WithNoopMeter(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")

	c, err := telemetry.NewCounter(meter, "noop.counter", "", "1")
	require.NoError(t, err)
	h, err := telemetry.NewHistogram(meter, telemetry.HistogramOpts{Name: "noop.histogram"})
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		c.Inc(context.Background())
		h.Record(context.Background(), 1)
	})
}
