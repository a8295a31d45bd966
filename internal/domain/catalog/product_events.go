package catalog

import (
	"github.com/google/uuid"

	"github.com/storelink/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeProduct = "Product"

// Event type constants
const (
	EventTypeProductCreated          = "catalog.product.created"
	EventTypeProductUpdated          = "catalog.product.updated"
	EventTypeVariantInventoryChanged = "catalog.variant.inventory_changed"
)

// ProductCreatedEvent is published when a new product is created
type ProductCreatedEvent struct {
	shared.BaseDomainEvent
	ProductID uuid.UUID `json:"product_id"`
	Title     string    `json:"title"`
}

// NewProductCreatedEvent creates a new ProductCreatedEvent
func NewProductCreatedEvent(product *Product) *ProductCreatedEvent {
	return &ProductCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductCreated, AggregateTypeProduct, product.ID),
		ProductID:       product.ID,
		Title:           product.Title,
	}
}

// ProductUpdatedEvent is published when a product is updated
type ProductUpdatedEvent struct {
	shared.BaseDomainEvent
	ProductID uuid.UUID `json:"product_id"`
	Title     string    `json:"title"`
}

// NewProductUpdatedEvent creates a new ProductUpdatedEvent
func NewProductUpdatedEvent(product *Product) *ProductUpdatedEvent {
	return &ProductUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductUpdated, AggregateTypeProduct, product.ID),
		ProductID:       product.ID,
		Title:           product.Title,
	}
}

// VariantInventoryChangedEvent is published when a variant's pool total changes
type VariantInventoryChangedEvent struct {
	shared.BaseDomainEvent
	ProductID uuid.UUID `json:"product_id"`
	VariantID uuid.UUID `json:"variant_id"`
	Quantity  int64     `json:"quantity"`
}

// NewVariantInventoryChangedEvent creates a new VariantInventoryChangedEvent
func NewVariantInventoryChangedEvent(product *Product, variant *Variant) *VariantInventoryChangedEvent {
	return &VariantInventoryChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeVariantInventoryChanged, AggregateTypeProduct, product.ID),
		ProductID:       product.ID,
		VariantID:       variant.ID,
		Quantity:        variant.InventoryQuantity,
	}
}
