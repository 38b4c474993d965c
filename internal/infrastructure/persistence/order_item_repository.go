package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shipdesk/backend/internal/domain/marketplace"
	"github.com/shipdesk/backend/internal/infrastructure/persistence/models"
)

// createBatchSize bounds the rows per INSERT statement in CreateBatch
const createBatchSize = 100

// GormOrderItemRepository implements marketplace.OrderItemRepository using GORM
type GormOrderItemRepository struct {
	db *gorm.DB
}

// NewGormOrderItemRepository creates a new GormOrderItemRepository
func NewGormOrderItemRepository(db *gorm.DB) *GormOrderItemRepository {
	return &GormOrderItemRepository{db: db}
}

var _ marketplace.OrderItemRepository = (*GormOrderItemRepository)(nil)

// FindByOrderID returns every stored item of a business order, oldest first
func (r *GormOrderItemRepository) FindByOrderID(ctx context.Context, orderID string) ([]marketplace.OrderItem, error) {
	var rows []models.OrderItemModel
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC, order_item_id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toOrderItems(rows), nil
}

// FindByOrderItemID finds one item by its upstream id
func (r *GormOrderItemRepository) FindByOrderItemID(ctx context.Context, orderItemID string) (*marketplace.OrderItem, error) {
	var model models.OrderItemModel
	if err := r.db.WithContext(ctx).Where("order_item_id = ?", orderItemID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order item %s", marketplace.ErrNotFound, orderItemID)
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByOrderIDs returns the stored items of the given orders for an account
func (r *GormOrderItemRepository) FindByOrderIDs(ctx context.Context, account marketplace.Account, orderIDs []string) ([]marketplace.OrderItem, error) {
	if len(orderIDs) == 0 {
		return []marketplace.OrderItem{}, nil
	}
	var rows []models.OrderItemModel
	if err := r.db.WithContext(ctx).
		Where("account = ? AND order_id IN ?", account.String(), orderIDs).
		Order("order_id ASC, order_item_id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toOrderItems(rows), nil
}

// FindWithoutBarcode returns up to limit items of the account whose label is missing or has no barcode.
// Newest items come first so that a bounded query favours recent orders.
func (r *GormOrderItemRepository) FindWithoutBarcode(ctx context.Context, account marketplace.Account, limit int) ([]marketplace.OrderItem, error) {
	var rows []models.OrderItemModel
	query := r.db.WithContext(ctx).
		Model(&models.OrderItemModel{}).
		Select("order_items.*").
		Joins("LEFT JOIN labels ON labels.order_item_id = order_items.order_item_id").
		Where("order_items.account = ?", account.String()).
		Where("(labels.barcode IS NULL OR labels.barcode = '')").
		Order("order_items.created_at DESC, order_items.order_item_id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toOrderItems(rows), nil
}

// CreateBatch inserts items in one transaction. Rows whose order_item_id already
// exists are left unchanged.
func (r *GormOrderItemRepository) CreateBatch(ctx context.Context, items []marketplace.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	rows := make([]*models.OrderItemModel, len(items))
	for i := range items {
		rows[i] = models.OrderItemModelFromDomain(&items[i])
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "order_item_id"}},
			DoNothing: true,
		}).CreateInBatches(rows, createBatchSize).Error
	})
}

// UpdateSyncedFields refreshes the re-syncable fields of an already stored item.
// Identifying fields and the fulfilled marker are never written here.
func (r *GormOrderItemRepository) UpdateSyncedFields(ctx context.Context, item *marketplace.OrderItem) error {
	updates := map[string]any{
		"title":                item.Title,
		"quantity":             item.Quantity,
		"unit_price":           item.UnitPrice,
		"commission":           item.Commission,
		"fulfilment_method":    item.Fulfilment.Method,
		"distribution_party":   item.Fulfilment.DistributionParty,
		"time_frame_type":      item.Fulfilment.TimeFrameType,
		"latest_delivery_date": item.Fulfilment.LatestDeliveryDate,
		"exact_delivery_date":  item.Fulfilment.ExactDeliveryDate,
		"expiry_date":          item.Fulfilment.ExpiryDate,
		"cancellation_request": models.FormatCancellation(item.CancellationRequested),
		"processed_at":         item.ProcessedAt,
		"updated_at":           time.Now(),
	}
	if item.ImageURL != "" {
		updates["image_url"] = item.ImageURL
	}

	result := r.db.WithContext(ctx).
		Model(&models.OrderItemModel{}).
		Where("order_item_id = ?", item.OrderItemID).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: order item %s", marketplace.ErrNotFound, item.OrderItemID)
	}
	return nil
}

// MarkFulfilled sets the fulfilled marker. An already fulfilled item is left as is.
func (r *GormOrderItemRepository) MarkFulfilled(ctx context.Context, orderItemID string) error {
	result := r.db.WithContext(ctx).
		Model(&models.OrderItemModel{}).
		Where("order_item_id = ? AND fulfilled <> ?", orderItemID, string(marketplace.FulfilledDone)).
		Updates(map[string]any{
			"fulfilled":  string(marketplace.FulfilledDone),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.OrderItemModel{}).
		Where("order_item_id = ?", orderItemID).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("%w: order item %s", marketplace.ErrNotFound, orderItemID)
	}
	return nil
}

func toOrderItems(rows []models.OrderItemModel) []marketplace.OrderItem {
	items := make([]marketplace.OrderItem, len(rows))
	for i := range rows {
		items[i] = *rows[i].ToDomain()
	}
	return items
}
