package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storelink/backend/internal/domain/shared"
)

// ProductStatus represents the lifecycle status of a product in the catalog
type ProductStatus string

const (
	ProductStatusDraft    ProductStatus = "draft"
	ProductStatusActive   ProductStatus = "active"
	ProductStatusArchived ProductStatus = "archived"
)

// Product is the aggregate root for the merchant's internal catalog.
// It owns an ordered sequence of Variants and zero or more Options, and its
// lifecycle is independent of any connected storefront.
type Product struct {
	shared.BaseAggregateRoot
	Title       string        `gorm:"type:varchar(255);not null"`
	BodyHTML    string        `gorm:"type:text"`
	Vendor      string        `gorm:"type:varchar(255)"`
	ProductType string        `gorm:"type:varchar(255)"`
	Status      ProductStatus `gorm:"type:varchar(20);not null;default:'draft'"`
	Tags        string        `gorm:"type:text"`
	Variants    []Variant     `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Options     []Option      `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// Variant is a sellable variation of a Product. InventoryQuantity is the
// variant's pool: the single authoritative quantity that gets partitioned
// across connected storefronts.
type Variant struct {
	shared.BaseEntity
	ProductID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	Title             string          `gorm:"type:varchar(255);not null"`
	SKU               string          `gorm:"type:varchar(100);index"`
	Price             decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CompareAtPrice    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	InventoryQuantity int64           `gorm:"not null;default:0"`
	Position          int             `gorm:"not null;default:1"`
}

// TableName returns the table name for GORM
func (Variant) TableName() string {
	return "variants"
}

// Option describes a variant axis such as Size or Color
type Option struct {
	shared.BaseEntity
	ProductID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name      string    `gorm:"type:varchar(100);not null"`
	Position  int       `gorm:"not null;default:1"`
	Values    string    `gorm:"type:text"` // JSON array of option values
}

// TableName returns the table name for GORM
func (Option) TableName() string {
	return "product_options"
}

// NewProduct creates a new product in draft status
func NewProduct(title string) (*Product, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, shared.NewDomainError("INVALID_TITLE", "Product title is required")
	}
	if len(title) > 255 {
		return nil, shared.NewDomainError("INVALID_TITLE", "Product title must not exceed 255 characters")
	}

	product := &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Title:             title,
		Status:            ProductStatusDraft,
	}

	product.AddDomainEvent(NewProductCreatedEvent(product))

	return product, nil
}

// Update updates the product's basic information
func (p *Product) Update(title, bodyHTML, vendor, productType string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return shared.NewDomainError("INVALID_TITLE", "Product title is required")
	}

	p.Title = title
	p.BodyHTML = bodyHTML
	p.Vendor = vendor
	p.ProductType = productType
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductUpdatedEvent(p))

	return nil
}

// Activate moves the product out of draft
func (p *Product) Activate() error {
	if p.Status == ProductStatusArchived {
		return shared.ErrInvalidState
	}
	if len(p.Variants) == 0 {
		return shared.NewDomainError("NO_VARIANTS", "Product must have at least one variant before activation")
	}
	p.Status = ProductStatusActive
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// Archive retires the product from the catalog
func (p *Product) Archive() {
	p.Status = ProductStatusArchived
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// AddVariant appends a variant to the product. Variants keep their insertion
// order; Position is assigned from it.
func (p *Product) AddVariant(title, sku string, price, compareAtPrice decimal.Decimal, inventoryQuantity int64) (*Variant, error) {
	if strings.TrimSpace(title) == "" {
		return nil, shared.NewDomainError("INVALID_VARIANT", "Variant title is required")
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Variant price must not be negative")
	}
	if inventoryQuantity < 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Variant inventory quantity must not be negative")
	}
	for _, v := range p.Variants {
		if sku != "" && v.SKU == sku {
			return nil, shared.NewDomainError("DUPLICATE_SKU", "Variant SKU already exists on this product")
		}
	}

	variant := Variant{
		BaseEntity:        shared.NewBaseEntity(),
		ProductID:         p.ID,
		Title:             title,
		SKU:               sku,
		Price:             price,
		CompareAtPrice:    compareAtPrice,
		InventoryQuantity: inventoryQuantity,
		Position:          len(p.Variants) + 1,
	}
	p.Variants = append(p.Variants, variant)
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return &p.Variants[len(p.Variants)-1], nil
}

// VariantByID returns the variant with the given id, or nil
func (p *Product) VariantByID(variantID uuid.UUID) *Variant {
	for i := range p.Variants {
		if p.Variants[i].ID == variantID {
			return &p.Variants[i]
		}
	}
	return nil
}

// SetVariantInventory replaces a variant's pool total
func (p *Product) SetVariantInventory(variantID uuid.UUID, quantity int64) error {
	if quantity < 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Inventory quantity must not be negative")
	}
	variant := p.VariantByID(variantID)
	if variant == nil {
		return shared.ErrNotFound
	}
	variant.InventoryQuantity = quantity
	variant.UpdatedAt = time.Now()
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewVariantInventoryChangedEvent(p, variant))

	return nil
}

// AddOption appends an option axis to the product
func (p *Product) AddOption(name string, valuesJSON string) (*Option, error) {
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_OPTION", "Option name is required")
	}
	for _, o := range p.Options {
		if strings.EqualFold(o.Name, name) {
			return nil, shared.NewDomainError("DUPLICATE_OPTION", "Option name already exists on this product")
		}
	}

	option := Option{
		BaseEntity: shared.NewBaseEntity(),
		ProductID:  p.ID,
		Name:       name,
		Position:   len(p.Options) + 1,
		Values:     valuesJSON,
	}
	p.Options = append(p.Options, option)
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return &p.Options[len(p.Options)-1], nil
}
