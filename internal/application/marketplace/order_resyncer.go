package marketplace

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/shipdesk/backend/internal/domain/marketplace"
	"github.com/shipdesk/backend/internal/infrastructure/logger"
)

// DefaultResyncPages bounds the order index pages read per account
const DefaultResyncPages = 5

// ResyncConfig bounds one re-sync run
type ResyncConfig struct {
	Accounts    []marketplace.Account
	MaxPages    int
	Concurrency int
}

// OrderResyncer refreshes stored order items from upstream and stores orders not seen before.
// Identifying fields and the fulfilled marker of stored items are never changed.
type OrderResyncer struct {
	tokens  *TokenProvider
	orders  marketplace.OrderSource
	fetcher *OrderFetcher
	items   marketplace.OrderItemRepository
	cfg     ResyncConfig
	metrics Metrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewOrderResyncer creates an OrderResyncer
func NewOrderResyncer(
	tokens *TokenProvider,
	orders marketplace.OrderSource,
	fetcher *OrderFetcher,
	items marketplace.OrderItemRepository,
	cfg ResyncConfig,
	metrics Metrics,
	log *zap.Logger,
) *OrderResyncer {
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = DefaultResyncPages
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultOrderConcurrency
	}
	if metrics == nil {
		metrics = NopMetrics{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &OrderResyncer{
		tokens:  tokens,
		orders:  orders,
		fetcher: fetcher,
		items:   items,
		cfg:     cfg,
		metrics: metrics,
		logger:  log,
		now:     time.Now,
	}
}

// ResyncAll re-syncs every configured account in parallel
func (s *OrderResyncer) ResyncAll(ctx context.Context) []*marketplace.SyncResult {
	results := make([]*marketplace.SyncResult, len(s.cfg.Accounts))
	var g errgroup.Group
	for i, account := range s.cfg.Accounts {
		g.Go(func() error {
			results[i] = s.ResyncAccount(ctx, account)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// ResyncAccount reads up to MaxPages of the account's order index and re-syncs every order
// on them. An order that fails is reported in FailedItems and does not stop the others.
func (s *OrderResyncer) ResyncAccount(ctx context.Context, account marketplace.Account) *marketplace.SyncResult {
	result := &marketplace.SyncResult{Account: account}
	if account.IsBlank() {
		return failedSync(result, "account is required", s.now())
	}

	ctx, _ = logger.WithAccount(ctx, s.logger, account.String())
	log := logger.WithLogger(ctx, s.logger)

	token, err := s.tokens.GetToken(ctx, account)
	if err != nil {
		return failedSync(result, "authentication failed: "+err.Error(), s.now())
	}

	orderIDs, err := s.collectOrderIDs(ctx, token.Token, log)
	if err != nil {
		return failedSync(result, err.Error(), s.now())
	}
	result.TotalCount = len(orderIDs)

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(s.cfg.Concurrency)
	for _, orderID := range orderIDs {
		g.Go(func() error {
			created, updated, err := s.resyncOrder(ctx, token.Token, orderID, account)
			mu.Lock()
			defer mu.Unlock()
			result.CreatedCount += created
			result.UpdatedCount += updated
			if err != nil {
				result.FailedCount++
				result.FailedItems = append(result.FailedItems, marketplace.SyncFailure{
					OrderID:      orderID,
					ErrorMessage: errorMessage(err),
				})
				log.Warn("Failed to re-sync order", zap.String("order_id", orderID), zap.Error(err))
			}
			return nil
		})
	}
	_ = g.Wait()

	result.Finish(s.now())
	result.Message = fmt.Sprintf("%d order(s): %d item(s) created, %d updated, %d order(s) failed",
		result.TotalCount, result.CreatedCount, result.UpdatedCount, result.FailedCount)
	log.Info("Order re-sync finished",
		zap.String("status", string(result.Status)),
		zap.Int("orders", result.TotalCount),
		zap.Int("created", result.CreatedCount),
		zap.Int("updated", result.UpdatedCount),
		zap.Int("failed", result.FailedCount),
	)
	return result
}

// collectOrderIDs reads the order index page by page. Only a failure of the first page
// fails the run; later failures end the scan with what was collected.
func (s *OrderResyncer) collectOrderIDs(ctx context.Context, token string, log *logger.ContextLogger) ([]string, error) {
	seen := make(map[string]struct{})
	var ids []string
	for page := 1; page <= s.cfg.MaxPages; page++ {
		summaries, err := s.orders.ListOrders(ctx, token, page)
		if err != nil {
			s.metrics.RecordUpstreamFailure(ctx, OpListOrders)
			if page == 1 {
				return nil, withSentinel(marketplace.ErrUpstreamListFailure, err)
			}
			log.Warn("Stopping order index scan", zap.Int("page", page), zap.Error(err))
			break
		}
		if len(summaries) == 0 {
			break
		}
		for i := range summaries {
			id := summaries[i].OrderID
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (s *OrderResyncer) resyncOrder(ctx context.Context, token, orderID string, account marketplace.Account) (created, updated int, err error) {
	fresh, err := s.fetcher.fetchAndMap(ctx, token, orderID, account)
	if err != nil {
		return 0, 0, err
	}
	if len(fresh) == 0 {
		return 0, 0, nil
	}

	stored, err := s.items.FindByOrderID(ctx, orderID)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to load stored items: %w", err)
	}
	byID := make(map[string]*marketplace.OrderItem, len(stored))
	for i := range stored {
		byID[stored[i].OrderItemID] = &stored[i]
	}

	var toCreate []marketplace.OrderItem
	for i := range fresh {
		existing, ok := byID[fresh[i].OrderItemID]
		if !ok {
			toCreate = append(toCreate, fresh[i])
			continue
		}
		if fresh[i].ImageURL == s.fetcher.images.Placeholder() {
			// keep the stored image when resolution degraded
			fresh[i].ImageURL = ""
		}
		existing.RefreshFrom(&fresh[i])
		if err := s.items.UpdateSyncedFields(ctx, existing); err != nil {
			s.metrics.RecordUpstreamFailure(ctx, OpRefreshItem)
			return created, updated, fmt.Errorf("failed to refresh item %s: %w", existing.OrderItemID, err)
		}
		updated++
	}

	if len(toCreate) > 0 {
		if err := s.items.CreateBatch(ctx, toCreate); err != nil {
			s.metrics.RecordUpstreamFailure(ctx, OpPersistItems)
			return created, updated, fmt.Errorf("failed to store new items: %w", err)
		}
		created = len(toCreate)
		s.metrics.RecordItemsPersisted(ctx, account, created)
	}
	return created, updated, nil
}

func failedSync(result *marketplace.SyncResult, message string, at time.Time) *marketplace.SyncResult {
	result.Status = marketplace.SyncStatusFailed
	result.Message = message
	result.SyncedAt = at
	return result
}
