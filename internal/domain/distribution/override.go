package distribution

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storelink/backend/internal/domain/catalog"
	"github.com/storelink/backend/internal/domain/shared"
)

// VariantOverride carries per-destination attribute overrides for one
// variant. Nil fields mean "use the variant's base value"; a non-nil zero is
// an explicit value (price 0 is valid for free items).
type VariantOverride struct {
	shared.BaseEntity
	VariantID      uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_override_variant_destination,priority:1"`
	DestinationID  uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_override_variant_destination,priority:2"`
	Price          *decimal.Decimal `gorm:"type:decimal(18,4)"`
	CompareAtPrice *decimal.Decimal `gorm:"type:decimal(18,4)"`
	SKU            *string          `gorm:"type:varchar(100)"`
}

// TableName returns the table name for GORM
func (VariantOverride) TableName() string {
	return "variant_overrides"
}

// IsEmpty reports whether the override carries no explicit values
func (o *VariantOverride) IsEmpty() bool {
	return o.Price == nil && o.CompareAtPrice == nil && o.SKU == nil
}

// OverrideRepository provides access to persisted per-destination overrides
type OverrideRepository interface {
	FindByVariantAndDestination(ctx context.Context, variantID, destinationID uuid.UUID) (*VariantOverride, error)
	FindByProductAndDestination(ctx context.Context, productID, destinationID uuid.UUID) ([]VariantOverride, error)
	Save(ctx context.Context, override *VariantOverride) error
	DeleteByDestination(ctx context.Context, destinationID uuid.UUID) error
}

// ResolveVariant merges a variant's base attributes with an override.
// Pure function: same inputs always produce the same payload.
func ResolveVariant(variant catalog.Variant, override *VariantOverride) VariantPayload {
	payload := VariantPayload{
		VariantID:      variant.ID,
		Title:          variant.Title,
		SKU:            variant.SKU,
		Price:          variant.Price,
		CompareAtPrice: variant.CompareAtPrice,
		Position:       variant.Position,
	}
	if override == nil {
		return payload
	}
	if override.Price != nil {
		payload.Price = *override.Price
	}
	if override.CompareAtPrice != nil {
		payload.CompareAtPrice = *override.CompareAtPrice
	}
	if override.SKU != nil {
		payload.SKU = *override.SKU
	}
	return payload
}

// ResolveProduct builds the effective outbound payload for one destination.
// Overrides are keyed by variant id; variants without an entry keep their
// base attributes.
func ResolveProduct(product *catalog.Product, overrides map[uuid.UUID]*VariantOverride, collectionIDs []string) ProductPayload {
	payload := ProductPayload{
		ProductID:     product.ID,
		Title:         product.Title,
		BodyHTML:      product.BodyHTML,
		Vendor:        product.Vendor,
		ProductType:   product.ProductType,
		Tags:          product.Tags,
		CollectionIDs: collectionIDs,
		Variants:      make([]VariantPayload, 0, len(product.Variants)),
	}
	for _, variant := range product.Variants {
		payload.Variants = append(payload.Variants, ResolveVariant(variant, overrides[variant.ID]))
	}
	return payload
}
