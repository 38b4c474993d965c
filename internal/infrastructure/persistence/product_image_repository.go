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

// GormProductImageRepository implements marketplace.ProductImageRepository using GORM
type GormProductImageRepository struct {
	db *gorm.DB
}

// NewGormProductImageRepository creates a new GormProductImageRepository
func NewGormProductImageRepository(db *gorm.DB) *GormProductImageRepository {
	return &GormProductImageRepository{db: db}
}

var _ marketplace.ProductImageRepository = (*GormProductImageRepository)(nil)

// FindByEAN finds the stored image of a product
func (r *GormProductImageRepository) FindByEAN(ctx context.Context, ean string) (*marketplace.ProductImage, error) {
	var model models.ProductImageModel
	if err := r.db.WithContext(ctx).Where("ean = ?", ean).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: no image for ean %s", marketplace.ErrNotFound, ean)
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Upsert stores the image, overwriting the URL of an existing row
func (r *GormProductImageRepository) Upsert(ctx context.Context, image *marketplace.ProductImage) error {
	at := image.UpdatedAt
	if at.IsZero() {
		at = time.Now()
	}
	model := &models.ProductImageModel{
		BaseModel: models.BaseModel{CreatedAt: at, UpdatedAt: at},
		EAN:       image.EAN,
		ImageURL:  image.ImageURL,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "ean"}},
		DoUpdates: clause.AssignmentColumns([]string{"image_url", "updated_at"}),
	}).Create(model).Error
}
