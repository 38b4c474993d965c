package marketplace

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/shipdesk/backend/internal/domain/marketplace"
	"github.com/shipdesk/backend/internal/infrastructure/logger"
)

// DefaultOrderConcurrency bounds the orders of one page fetched in parallel
const DefaultOrderConcurrency = 8

// OrderLister returns one page of an account's order index with every order's items
type OrderLister struct {
	tokens      *TokenProvider
	orders      marketplace.OrderSource
	fetcher     *OrderFetcher
	concurrency int
	metrics     Metrics
	logger      *zap.Logger
}

// NewOrderLister creates an OrderLister. concurrency <= 0 uses DefaultOrderConcurrency.
func NewOrderLister(
	tokens *TokenProvider,
	orders marketplace.OrderSource,
	fetcher *OrderFetcher,
	concurrency int,
	metrics Metrics,
	log *zap.Logger,
) *OrderLister {
	if concurrency <= 0 {
		concurrency = DefaultOrderConcurrency
	}
	if metrics == nil {
		metrics = NopMetrics{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &OrderLister{
		tokens:      tokens,
		orders:      orders,
		fetcher:     fetcher,
		concurrency: concurrency,
		metrics:     metrics,
		logger:      log,
	}
}

// ListOrdersPage fetches page of the order index and the details of every order on it.
// The result keeps the upstream order. An order whose details cannot be fetched keeps its
// slot with empty Details. Pages below 1 are read as page 1.
func (l *OrderLister) ListOrdersPage(ctx context.Context, page int, account marketplace.Account) ([]marketplace.OrderDetails, error) {
	if account.IsBlank() {
		return nil, fmt.Errorf("%w: account is required", marketplace.ErrInvalidArgument)
	}
	if page < 1 {
		page = 1
	}

	token, err := l.tokens.GetToken(ctx, account)
	if err != nil {
		return nil, err
	}

	summaries, err := l.orders.ListOrders(ctx, token.Token, page)
	if err != nil {
		l.metrics.RecordUpstreamFailure(ctx, OpListOrders)
		return nil, withSentinel(marketplace.ErrUpstreamListFailure, err)
	}
	if len(summaries) == 0 {
		return []marketplace.OrderDetails{}, nil
	}

	log := logger.WithLogger(ctx, l.logger).With(
		zap.String("account", account.String()),
		zap.Int("page", page),
	)
	results := make([]marketplace.OrderDetails, len(summaries))

	var g errgroup.Group
	g.SetLimit(l.concurrency)
	for i := range summaries {
		orderID := summaries[i].OrderID
		results[i] = marketplace.OrderDetails{OrderID: orderID, Details: []marketplace.OrderItem{}}
		g.Go(func() error {
			items, err := l.fetcher.FetchOrderDetail(ctx, orderID, account)
			if err != nil {
				log.Warn("Failed to fetch order detail", zap.String("order_id", orderID), zap.Error(err))
				return nil
			}
			results[i].Details = items
			return nil
		})
	}
	_ = g.Wait()

	log.Debug("Listed order page", zap.Int("orders", len(results)))
	return results, nil
}
