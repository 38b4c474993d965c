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

// GormLabelRepository implements marketplace.LabelRepository using GORM
type GormLabelRepository struct {
	db *gorm.DB
}

// NewGormLabelRepository creates a new GormLabelRepository
func NewGormLabelRepository(db *gorm.DB) *GormLabelRepository {
	return &GormLabelRepository{db: db}
}

var _ marketplace.LabelRepository = (*GormLabelRepository)(nil)

// FindByBarcode finds the label carrying a tracking barcode
func (r *GormLabelRepository) FindByBarcode(ctx context.Context, barcode string) (*marketplace.Label, error) {
	var model models.LabelModel
	if err := r.db.WithContext(ctx).Where("barcode = ?", barcode).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: no label with barcode %s", marketplace.ErrNotFound, barcode)
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Upsert creates the label or updates barcode and display fields of the existing one.
// The row is keyed by order_item_id, so concurrent writers converge on one label.
func (r *GormLabelRepository) Upsert(ctx context.Context, label *marketplace.Label) error {
	model := models.LabelModelFromDomain(label)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "order_item_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"order_id",
			"recipient_name",
			"recipient_address",
			"barcode",
			"updated_at",
		}),
	}).Create(model).Error
}
