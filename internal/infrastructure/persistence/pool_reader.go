package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storelink/backend/internal/domain/catalog"
	"github.com/storelink/backend/internal/domain/distribution"
)

// GormVariantPoolReader answers pool totals straight from the variants
// table, keeping the inventory pool aligned with the catalog without an
// extra cache to invalidate.
type GormVariantPoolReader struct {
	db *gorm.DB
}

// NewGormVariantPoolReader creates a pool reader over the catalog tables
func NewGormVariantPoolReader(db *gorm.DB) *GormVariantPoolReader {
	return &GormVariantPoolReader{db: db}
}

// PoolTotal returns the variant's authoritative inventory quantity
func (r *GormVariantPoolReader) PoolTotal(ctx context.Context, variantID uuid.UUID) (int64, error) {
	var variant catalog.Variant
	err := r.db.WithContext(ctx).
		Select("inventory_quantity").
		First(&variant, "id = ?", variantID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, distribution.ErrVariantNotFound
		}
		return 0, err
	}
	return variant.InventoryQuantity, nil
}

var _ distribution.VariantPoolReader = (*GormVariantPoolReader)(nil)
