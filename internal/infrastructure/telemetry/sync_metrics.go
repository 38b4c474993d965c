package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/metric"

	appmarketplace "github.com/shipdesk/backend/internal/application/marketplace"
	"github.com/shipdesk/backend/internal/domain/marketplace"
)

// MeterName is the instrumentation scope of the sync metrics
const MeterName = "shipdesk/marketplace"

// SyncMetrics records the counters of the marketplace sync services on an OpenTelemetry meter.
type SyncMetrics struct {
	ordersFetched     *Counter
	itemsPersisted    *Counter
	upstreamFailures  *Counter
	labelsUpdated     *Counter
	scansRegistered   *Counter
	reconcileDuration *Histogram
}

var _ appmarketplace.Metrics = (*SyncMetrics)(nil)

// NewSyncMetrics creates all sync instruments on the given meter.
func NewSyncMetrics(meter metric.Meter) (*SyncMetrics, error) {
	m := &SyncMetrics{}
	var err error

	if m.ordersFetched, err = NewCounter(meter,
		"marketplace.orders.fetched", "Order details fetched from the marketplace", "{order}"); err != nil {
		return nil, err
	}
	if m.itemsPersisted, err = NewCounter(meter,
		"marketplace.items.persisted", "Order items written to the local store", "{item}"); err != nil {
		return nil, err
	}
	if m.upstreamFailures, err = NewCounter(meter,
		"marketplace.upstream.failures", "Failed upstream or store operations", "{failure}"); err != nil {
		return nil, err
	}
	if m.labelsUpdated, err = NewCounter(meter,
		"marketplace.labels.updated", "Labels written by shipment reconciliation", "{label}"); err != nil {
		return nil, err
	}
	if m.scansRegistered, err = NewCounter(meter,
		"marketplace.scans.registered", "Label scans registered", "{scan}"); err != nil {
		return nil, err
	}
	if m.reconcileDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "marketplace.reconcile.duration",
		Description: "Duration of one account reconciliation",
		Unit:        "s",
		Boundaries:  ReconcileDurationBuckets,
	}); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *SyncMetrics) RecordOrdersFetched(ctx context.Context, account marketplace.Account, n int) {
	m.ordersFetched.Add(ctx, int64(n), AttrAccount.String(account.String()))
}

func (m *SyncMetrics) RecordItemsPersisted(ctx context.Context, account marketplace.Account, n int) {
	m.itemsPersisted.Add(ctx, int64(n), AttrAccount.String(account.String()))
}

func (m *SyncMetrics) RecordUpstreamFailure(ctx context.Context, operation string) {
	m.upstreamFailures.Inc(ctx, AttrOperation.String(operation))
}

func (m *SyncMetrics) RecordLabelsUpdated(ctx context.Context, account marketplace.Account, n int) {
	m.labelsUpdated.Add(ctx, int64(n), AttrAccount.String(account.String()))
}

func (m *SyncMetrics) RecordScan(ctx context.Context, rescan bool) {
	m.scansRegistered.Inc(ctx, AttrRescan.Bool(rescan))
}

func (m *SyncMetrics) RecordReconcileDuration(ctx context.Context, account marketplace.Account, d time.Duration, success bool) {
	m.reconcileDuration.RecordDuration(ctx, d, AttrAccount.String(account.String()), AttrSuccess.Bool(success))
}
