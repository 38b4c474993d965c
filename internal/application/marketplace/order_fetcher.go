package marketplace

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/shipdesk/backend/internal/domain/marketplace"
	"github.com/shipdesk/backend/internal/infrastructure/logger"
)

// DefaultItemConcurrency bounds the line items of one order mapped in parallel
const DefaultItemConcurrency = 8

// OrderFetcher fetches one order's detail, maps its line items and persists them
type OrderFetcher struct {
	tokens      *TokenProvider
	orders      marketplace.OrderSource
	images      *ImageResolver
	items       marketplace.OrderItemRepository
	concurrency int
	metrics     Metrics
	logger      *zap.Logger
	now         func() time.Time
}

// OrderFetcherOption configures an OrderFetcher
type OrderFetcherOption func(*OrderFetcher)

// WithItemConcurrency bounds the parallel line item mapping
func WithItemConcurrency(n int) OrderFetcherOption {
	return func(f *OrderFetcher) {
		if n > 0 {
			f.concurrency = n
		}
	}
}

// WithFetcherMetrics sets the metrics recorder
func WithFetcherMetrics(m Metrics) OrderFetcherOption {
	return func(f *OrderFetcher) {
		if m != nil {
			f.metrics = m
		}
	}
}

// WithFetcherLogger sets the logger
func WithFetcherLogger(l *zap.Logger) OrderFetcherOption {
	return func(f *OrderFetcher) {
		if l != nil {
			f.logger = l
		}
	}
}

// NewOrderFetcher creates an OrderFetcher
func NewOrderFetcher(
	tokens *TokenProvider,
	orders marketplace.OrderSource,
	images *ImageResolver,
	items marketplace.OrderItemRepository,
	opts ...OrderFetcherOption,
) *OrderFetcher {
	f := &OrderFetcher{
		tokens:      tokens,
		orders:      orders,
		images:      images,
		items:       items,
		concurrency: DefaultItemConcurrency,
		metrics:     NopMetrics{},
		logger:      zap.NewNop(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FetchOrderDetail returns the items of one order. Items already stored are returned
// without any upstream call. Otherwise the order is fetched, its line items are mapped
// in parallel and the mapped items are stored in one batch, after which the stored rows are
// returned. Line items that fail to map are logged and left out.
func (f *OrderFetcher) FetchOrderDetail(ctx context.Context, orderID string, account marketplace.Account) ([]marketplace.OrderItem, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return nil, fmt.Errorf("%w: order id is required", marketplace.ErrInvalidArgument)
	}
	if account.IsBlank() {
		return nil, fmt.Errorf("%w: account is required", marketplace.ErrInvalidArgument)
	}

	stored, err := f.items.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load stored items of order %s: %w", orderID, err)
	}
	if len(stored) > 0 {
		return stored, nil
	}

	token, err := f.tokens.GetToken(ctx, account)
	if err != nil {
		return nil, err
	}

	mapped, err := f.fetchAndMap(ctx, token.Token, orderID, account)
	if err != nil {
		return nil, err
	}
	if len(mapped) == 0 {
		return mapped, nil
	}

	if err := f.items.CreateBatch(ctx, mapped); err != nil {
		f.metrics.RecordUpstreamFailure(ctx, OpPersistItems)
		return nil, fmt.Errorf("failed to store items of order %s: %w", orderID, err)
	}
	f.metrics.RecordItemsPersisted(ctx, account, len(mapped))

	// A concurrent fetch of the same order may have won the insert; return what is stored.
	stored, err = f.items.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload items of order %s: %w", orderID, err)
	}
	return stored, nil
}

// fetchAndMap fetches the order upstream and maps its line items. It never touches the store.
func (f *OrderFetcher) fetchAndMap(ctx context.Context, token, orderID string, account marketplace.Account) ([]marketplace.OrderItem, error) {
	order, err := f.orders.GetOrder(ctx, token, orderID)
	if err != nil {
		f.metrics.RecordUpstreamFailure(ctx, OpGetOrder)
		return nil, withSentinel(marketplace.ErrUpstreamFetchFailure, err)
	}
	f.metrics.RecordOrdersFetched(ctx, account, 1)

	if len(order.OrderItems) == 0 {
		return []marketplace.OrderItem{}, nil
	}

	log := logger.WithLogger(ctx, f.logger).With(
		zap.String("order_id", orderID),
		zap.String("account", account.String()),
	)
	processedAt := f.now()
	results := make([]*marketplace.OrderItem, len(order.OrderItems))

	var g errgroup.Group
	g.SetLimit(f.concurrency)
	for i := range order.OrderItems {
		line := &order.OrderItems[i]
		g.Go(func() error {
			ean := lineItemEAN(line)
			if ean == "" {
				log.Warn("Skipping line item without ean", zap.String("order_item_id", line.OrderItemID))
				return nil
			}
			image := f.images.Resolve(ctx, ean, account)
			item, err := MapLineItem(line, order, account, image, processedAt)
			if err != nil {
				if !errors.Is(err, marketplace.ErrMappingSkipped) {
					f.metrics.RecordUpstreamFailure(ctx, OpMapLineItem)
				}
				log.Warn("Skipping line item that failed to map",
					zap.String("order_item_id", line.OrderItemID),
					zap.Error(err),
				)
				return nil
			}
			results[i] = item
			return nil
		})
	}
	_ = g.Wait()

	mapped := make([]marketplace.OrderItem, 0, len(results))
	for _, item := range results {
		if item != nil {
			mapped = append(mapped, *item)
		}
	}
	return mapped, nil
}
