package marketplace

import (
	"context"
	"time"

	"github.com/shipdesk/backend/internal/domain/marketplace"
)

// Upstream operation names used when recording failures
const (
	OpIssueToken     = "issue_token"
	OpListOrders     = "list_orders"
	OpGetOrder       = "get_order"
	OpProductAssets  = "product_assets"
	OpListShipments  = "list_shipments"
	OpGetShipment    = "get_shipment"
	OpPersistItems   = "persist_items"
	OpUpsertLabel    = "upsert_label"
	OpMarkFulfilled  = "mark_fulfilled"
	OpRefreshItem    = "refresh_item"
	OpResolveImage   = "resolve_image"
	OpMapLineItem    = "map_line_item"
	OpLoadLocalItems = "load_local_items"
)

// Metrics receives the counters of the sync services. Implementations must be safe for
// concurrent use.
type Metrics interface {
	RecordOrdersFetched(ctx context.Context, account marketplace.Account, n int)
	RecordItemsPersisted(ctx context.Context, account marketplace.Account, n int)
	RecordUpstreamFailure(ctx context.Context, operation string)
	RecordLabelsUpdated(ctx context.Context, account marketplace.Account, n int)
	RecordScan(ctx context.Context, rescan bool)
	RecordReconcileDuration(ctx context.Context, account marketplace.Account, d time.Duration, success bool)
}

// NopMetrics discards everything
type NopMetrics struct{}

var _ Metrics = NopMetrics{}

func (NopMetrics) RecordOrdersFetched(context.Context, marketplace.Account, int) {}

func (NopMetrics) RecordItemsPersisted(context.Context, marketplace.Account, int) {}

func (NopMetrics) RecordUpstreamFailure(context.Context, string) {}

func (NopMetrics) RecordLabelsUpdated(context.Context, marketplace.Account, int) {}

func (NopMetrics) RecordScan(context.Context, bool) {}

func (NopMetrics) RecordReconcileDuration(context.Context, marketplace.Account, time.Duration, bool) {}
