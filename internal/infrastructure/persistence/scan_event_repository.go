package persistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shipdesk/backend/internal/domain/marketplace"
	"github.com/shipdesk/backend/internal/infrastructure/persistence/models"
)

// GormScanEventRepository implements marketplace.ScanEventRepository using GORM
type GormScanEventRepository struct {
	db *gorm.DB
}

// NewGormScanEventRepository creates a new GormScanEventRepository
func NewGormScanEventRepository(db *gorm.DB) *GormScanEventRepository {
	return &GormScanEventRepository{db: db}
}

var _ marketplace.ScanEventRepository = (*GormScanEventRepository)(nil)

// FindByOrderItemID finds the latest scan of an order item
func (r *GormScanEventRepository) FindByOrderItemID(ctx context.Context, orderItemID string) (*marketplace.ScanEvent, error) {
	var model models.ScanEventModel
	if err := r.db.WithContext(ctx).Where("order_item_id = ?", orderItemID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order item %s was never scanned", marketplace.ErrNotFound, orderItemID)
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Upsert creates the event or overwrites barcode, timestamp and actor of the existing one
func (r *GormScanEventRepository) Upsert(ctx context.Context, event *marketplace.ScanEvent) error {
	model := models.ScanEventModelFromDomain(event)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "order_item_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"barcode",
			"scanned_at",
			"scanned_by",
			"status",
			"updated_at",
		}),
	}).Create(model).Error
}
