package marketplace

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/shipdesk/backend/internal/domain/marketplace"
	"github.com/shipdesk/backend/internal/infrastructure/logger"
)

// Reconciliation bounds used when the configuration leaves them unset
const (
	DefaultMaxShipmentPages = 3
	DefaultMaxOrders        = 500
	shipmentConcurrency     = 4
)

// ReconcilerConfig bounds one reconciliation pass
type ReconcilerConfig struct {
	Accounts         []marketplace.Account
	MaxShipmentPages int
	MaxOrders        int
}

// ShipmentReconciler attaches carrier barcodes from confirmed shipments to the labels of
// stored order items
type ShipmentReconciler struct {
	tokens    *TokenProvider
	shipments marketplace.ShipmentSource
	items     marketplace.OrderItemRepository
	labels    marketplace.LabelRepository
	cfg       ReconcilerConfig
	metrics   Metrics
	logger    *zap.Logger
	now       func() time.Time
}

// NewShipmentReconciler creates a ShipmentReconciler
func NewShipmentReconciler(
	tokens *TokenProvider,
	shipments marketplace.ShipmentSource,
	items marketplace.OrderItemRepository,
	labels marketplace.LabelRepository,
	cfg ReconcilerConfig,
	metrics Metrics,
	log *zap.Logger,
) *ShipmentReconciler {
	if cfg.MaxShipmentPages <= 0 {
		cfg.MaxShipmentPages = DefaultMaxShipmentPages
	}
	if cfg.MaxOrders <= 0 {
		cfg.MaxOrders = DefaultMaxOrders
	}
	if metrics == nil {
		metrics = NopMetrics{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ShipmentReconciler{
		tokens:    tokens,
		shipments: shipments,
		items:     items,
		labels:    labels,
		cfg:       cfg,
		metrics:   metrics,
		logger:    log,
		now:       time.Now,
	}
}

// ReconcileAll reconciles every configured account in parallel. One account's failure
// never stops the others.
func (r *ShipmentReconciler) ReconcileAll(ctx context.Context) *marketplace.ReconcileSummary {
	startedAt := r.now()
	results := make([]marketplace.AccountReconcileResult, len(r.cfg.Accounts))

	var g errgroup.Group
	for i, account := range r.cfg.Accounts {
		g.Go(func() error {
			results[i] = r.ReconcileAccount(ctx, account)
			return nil
		})
	}
	_ = g.Wait()

	summary := marketplace.NewReconcileSummary(results, startedAt, r.now())
	logger.WithLogger(ctx, r.logger).Info("Shipment reconciliation finished",
		zap.Bool("success", summary.Success),
		zap.Int("accounts", len(results)),
		zap.Int("matched", summary.Matched),
		zap.Int("updated", summary.Updated),
	)
	return summary
}

// ReconcileAccount runs one pass for an account over its stored items that have no
// barcode yet, newest first and bounded by MaxOrders
func (r *ShipmentReconciler) ReconcileAccount(ctx context.Context, account marketplace.Account) marketplace.AccountReconcileResult {
	return r.reconcile(ctx, account, func(ctx context.Context) ([]marketplace.OrderItem, error) {
		return r.items.FindWithoutBarcode(ctx, account, r.cfg.MaxOrders)
	})
}

// ReconcileOrders runs one pass restricted to the given business orders of an account.
// Their stored items are considered whether or not they already carry a barcode.
func (r *ShipmentReconciler) ReconcileOrders(ctx context.Context, orderIDs []string, account marketplace.Account) (*marketplace.AccountReconcileResult, error) {
	if account.IsBlank() {
		return nil, fmt.Errorf("%w: account is required", marketplace.ErrInvalidArgument)
	}
	ids := uniqueNonBlank(orderIDs)
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: at least one order id is required", marketplace.ErrInvalidArgument)
	}

	result := r.reconcile(ctx, account, func(ctx context.Context) ([]marketplace.OrderItem, error) {
		return r.items.FindByOrderIDs(ctx, account, ids)
	})
	return &result, nil
}

func (r *ShipmentReconciler) reconcile(
	ctx context.Context,
	account marketplace.Account,
	loadLocal func(context.Context) ([]marketplace.OrderItem, error),
) (result marketplace.AccountReconcileResult) {
	started := r.now()
	result.Account = account
	ctx, _ = logger.WithAccount(ctx, r.logger, account.String())
	log := logger.WithLogger(ctx, r.logger)

	defer func() {
		r.metrics.RecordReconcileDuration(ctx, account, r.now().Sub(started), result.Success)
		r.metrics.RecordLabelsUpdated(ctx, account, result.Updated)
		log.Info("Account reconciliation finished",
			zap.Bool("success", result.Success),
			zap.Bool("nothing_to_do", result.NothingToDo),
			zap.Int("orders_considered", result.OrdersConsidered),
			zap.Int("shipments_found", result.ShipmentsFound),
			zap.Int("matched", result.Matched),
			zap.Int("updated", result.Updated),
		)
	}()

	if account.IsBlank() {
		result.Message = "account is required"
		return result
	}

	token, err := r.tokens.GetToken(ctx, account)
	if err != nil {
		result.Message = "authentication failed: " + err.Error()
		return result
	}

	shipmentByOrder, found := r.collectShipments(ctx, token.Token, log)
	result.ShipmentsFound = found

	local, err := loadLocal(ctx)
	if err != nil {
		r.metrics.RecordUpstreamFailure(ctx, OpLoadLocalItems)
		result.Message = "failed to load stored orders: " + err.Error()
		return result
	}
	result.OrdersConsidered = len(local)
	if len(local) == 0 {
		result.Success = true
		result.NothingToDo = true
		result.Message = "no orders awaiting a barcode"
		return result
	}
	if len(shipmentByOrder) == 0 {
		result.Success = true
		result.NothingToDo = true
		result.Message = "no shipments found upstream"
		return result
	}

	groups := make(map[string][]marketplace.OrderItem)
	var shipmentIDs []string
	for _, item := range local {
		shipmentID, ok := shipmentByOrder[item.OrderID]
		if !ok {
			continue
		}
		if _, seen := groups[shipmentID]; !seen {
			shipmentIDs = append(shipmentIDs, shipmentID)
		}
		groups[shipmentID] = append(groups[shipmentID], item)
		result.Matched++
	}

	updated := make([]int, len(shipmentIDs))
	var g errgroup.Group
	g.SetLimit(shipmentConcurrency)
	for i, shipmentID := range shipmentIDs {
		g.Go(func() error {
			updated[i] = r.applyShipment(ctx, token.Token, shipmentID, groups[shipmentID], log)
			return nil
		})
	}
	_ = g.Wait()

	for _, n := range updated {
		result.Updated += n
	}
	result.Success = true
	result.Message = fmt.Sprintf("matched %d of %d order item(s), updated %d label(s)",
		result.Matched, result.OrdersConsidered, result.Updated)
	return result
}

// collectShipments pages through the shipment index up to MaxShipmentPages and returns the
// first shipment id seen per business order, with the number of shipment records listed.
// A page that fails is skipped. An empty page ends the scan.
func (r *ShipmentReconciler) collectShipments(ctx context.Context, token string, log *logger.ContextLogger) (map[string]string, int) {
	byOrder := make(map[string]string)
	found := 0
	for page := 1; page <= r.cfg.MaxShipmentPages; page++ {
		summaries, err := r.shipments.ListShipments(ctx, token, page)
		if err != nil {
			r.metrics.RecordUpstreamFailure(ctx, OpListShipments)
			log.Warn("Skipping shipment page", zap.Int("page", page), zap.Error(err))
			continue
		}
		if len(summaries) == 0 {
			break
		}
		found += len(summaries)
		for i := range summaries {
			orderID := summaries[i].OrderID()
			if orderID == "" {
				continue
			}
			if _, exists := byOrder[orderID]; !exists {
				byOrder[orderID] = summaries[i].ShipmentID
			}
		}
	}
	return byOrder, found
}

// applyShipment fetches the shipment's barcode and writes it to the label of every item.
// Nothing is written when the shipment cannot be fetched or carries no barcode.
func (r *ShipmentReconciler) applyShipment(
	ctx context.Context,
	token, shipmentID string,
	items []marketplace.OrderItem,
	log *logger.ContextLogger,
) int {
	log = log.With(zap.String("shipment_id", shipmentID))

	shipment, err := r.shipments.GetShipment(ctx, token, shipmentID)
	if err != nil {
		r.metrics.RecordUpstreamFailure(ctx, OpGetShipment)
		log.Warn("Skipping shipment that failed to fetch", zap.Error(err))
		return 0
	}
	barcode := strings.TrimSpace(shipment.Barcode())
	if barcode == "" {
		log.Info("Skipping shipment without barcode")
		return 0
	}

	updated := 0
	for i := range items {
		item := &items[i]
		label, err := marketplace.NewLabelForItem(item, barcode)
		if err != nil {
			log.Warn("Failed to build label", zap.String("order_item_id", item.OrderItemID), zap.Error(err))
			continue
		}
		if err := r.labels.Upsert(ctx, label); err != nil {
			r.metrics.RecordUpstreamFailure(ctx, OpUpsertLabel)
			log.Warn("Failed to store label", zap.String("order_item_id", item.OrderItemID), zap.Error(err))
			continue
		}
		updated++
		if err := r.items.MarkFulfilled(ctx, item.OrderItemID); err != nil {
			r.metrics.RecordUpstreamFailure(ctx, OpMarkFulfilled)
			log.Warn("Failed to mark item fulfilled", zap.String("order_item_id", item.OrderItemID), zap.Error(err))
		}
	}
	return updated
}

func uniqueNonBlank(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
