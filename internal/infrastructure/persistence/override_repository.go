package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storelink/backend/internal/domain/distribution"
)

// GormOverrideRepository implements distribution.OverrideRepository
type GormOverrideRepository struct {
	db *gorm.DB
}

// NewGormOverrideRepository creates an override repository
func NewGormOverrideRepository(db *gorm.DB) *GormOverrideRepository {
	return &GormOverrideRepository{db: db}
}

// FindByVariantAndDestination loads the override for one pair
func (r *GormOverrideRepository) FindByVariantAndDestination(ctx context.Context, variantID, destinationID uuid.UUID) (*distribution.VariantOverride, error) {
	var override distribution.VariantOverride
	err := r.db.WithContext(ctx).
		Where("variant_id = ? AND destination_id = ?", variantID, destinationID).
		First(&override).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, distribution.ErrOverrideNotFound
		}
		return nil, err
	}
	return &override, nil
}

// FindByProductAndDestination loads the overrides for all of a product's
// variants at one destination
func (r *GormOverrideRepository) FindByProductAndDestination(ctx context.Context, productID, destinationID uuid.UUID) ([]distribution.VariantOverride, error) {
	var overrides []distribution.VariantOverride
	err := r.db.WithContext(ctx).
		Where("destination_id = ? AND variant_id IN (?)",
			destinationID,
			r.db.Model(&variantRow{}).Select("id").Where("product_id = ?", productID),
		).
		Find(&overrides).Error
	if err != nil {
		return nil, err
	}
	return overrides, nil
}

// Save creates or updates an override
func (r *GormOverrideRepository) Save(ctx context.Context, override *distribution.VariantOverride) error {
	return r.db.WithContext(ctx).Save(override).Error
}

// DeleteByDestination removes every override for a destination
func (r *GormOverrideRepository) DeleteByDestination(ctx context.Context, destinationID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("destination_id = ?", destinationID).
		Delete(&distribution.VariantOverride{}).Error
}

// variantRow is a minimal mapping onto the variants table for subqueries that
// only need ids
type variantRow struct {
	ID        uuid.UUID
	ProductID uuid.UUID
}

func (variantRow) TableName() string {
	return "variants"
}

var _ distribution.OverrideRepository = (*GormOverrideRepository)(nil)
