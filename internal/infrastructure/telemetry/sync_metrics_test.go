package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/shipdesk/backend/internal/domain/marketplace"
	"github.com/shipdesk/backend/internal/infrastructure/telemetry"
)

func sumByAttr(t *testing.T, m metricdata.Metrics, key attribute.Key) map[string]int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", m.Name)
	out := make(map[string]int64)
	for _, dp := range sum.DataPoints {
		v, _ := dp.Attributes.Value(key)
		out[v.Emit()] += dp.Value
	}
	return out
}

func TestSyncMetrics_Counters(t *testing.T) {
	reader, provider := newManualMeter(t)
	m, err := telemetry.NewSyncMetrics(provider.Meter(telemetry.MeterName))
	require.NoError(t, err)

	ctx := context.Background()
	shopA := marketplace.Account("shop-a")
	shopB := marketplace.Account("shop-b")

	m.RecordOrdersFetched(ctx, shopA, 2)
	m.RecordOrdersFetched(ctx, shopB, 1)
	m.RecordItemsPersisted(ctx, shopA, 5)
	m.RecordUpstreamFailure(ctx, "get_order")
	m.RecordUpstreamFailure(ctx, "get_order")
	m.RecordUpstreamFailure(ctx, "list_shipments")
	m.RecordLabelsUpdated(ctx, shopB, 3)
	m.RecordScan(ctx, false)
	m.RecordScan(ctx, true)
	m.RecordScan(ctx, true)

	metrics := collect(t, reader)

	assert.Equal(t, map[string]int64{"shop-a": 2, "shop-b": 1},
		sumByAttr(t, metrics["marketplace.orders.fetched"], telemetry.AttrAccount))
	assert.Equal(t, map[string]int64{"shop-a": 5},
		sumByAttr(t, metrics["marketplace.items.persisted"], telemetry.AttrAccount))
	assert.Equal(t, map[string]int64{"get_order": 2, "list_shipments": 1},
		sumByAttr(t, metrics["marketplace.upstream.failures"], telemetry.AttrOperation))
	assert.Equal(t, map[string]int64{"shop-b": 3},
		sumByAttr(t, metrics["marketplace.labels.updated"], telemetry.AttrAccount))
	assert.Equal(t, map[string]int64{"false": 1, "true": 2},
		sumByAttr(t, metrics["marketplace.scans.registered"], telemetry.AttrRescan))
}

func TestSyncMetrics_ReconcileDuration(t *testing.T) {
	reader, provider := newManualMeter(t)
	m, err := telemetry.NewSyncMetrics(provider.Meter(telemetry.MeterName))
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordReconcileDuration(ctx, "shop-a", 2*time.Second, true)
	m.RecordReconcileDuration(ctx, "shop-a", 4*time.Second, false)

	data := collect(t, reader)["marketplace.reconcile.duration"]
	hist, ok := data.Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 2)

	var total float64
	for _, dp := range hist.DataPoints {
		assert.Equal(t, uint64(1), dp.Count)
		account, _ := dp.Attributes.Value(telemetry.AttrAccount)
		assert.Equal(t, "shop-a", account.AsString())
		total += dp.Sum
	}
	assert.InDelta(t, 6.0, total, 0.0001)
}

func TestSyncMetrics_NoopMeter(t *testing.T) {
	m, err := telemetry.NewSyncMetrics(noop.NewMeterProvider().Meter("test"))
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		m.RecordScan(context.Background(), true)
		m.RecordReconcileDuration(context.Background(), "shop", time.Second, true)
	})
}
