package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/shipdesk/backend/internal/infrastructure/telemetry"
)

func TestNewTracerProvider_Disabled(t *testing.T) {
	ctx := context.Background()
	cfg := telemetry.Config{
		Enabled:           false,
		CollectorEndpoint: "localhost:14317",
		SamplingRatio:     1.0,
		ServiceName:       "test-service",
	}

	tp, err := telemetry.NewTracerProvider(ctx, cfg, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.False(t, tp.IsEnabled())
	assert.Equal(t, cfg, tp.GetConfig())
	assert.NotNil(t, tp.Tracer("test"))
	assert.NoError(t, tp.ForceFlush(ctx))
	assert.NoError(t, tp.Shutdown(ctx))
}

func TestNewTracerProvider_SamplingRatios(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping collector test in short mode")
	}

	for _, ratio := range []float64{0.0, 0.5, 1.0} {
		cfg := telemetry.Config{
			Enabled:           true,
			CollectorEndpoint: "localhost:14317",
			SamplingRatio:     ratio,
			ServiceName:       "test-service",
			Insecure:          true,
		}
		tp, err := telemetry.NewTracerProvider(context.Background(), cfg, zaptest.NewLogger(t))
		require.NoError(t, err)
		assert.True(t, tp.IsEnabled())

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		_ = tp.Shutdown(ctx)
		cancel()
	}
}
