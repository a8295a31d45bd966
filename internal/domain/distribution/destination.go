package distribution

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storelink/backend/internal/domain/shared"
)

// Destination is a connected external storefront. Connection credentials are
// opaque to the engine; the concrete wire protocol lives behind
// StorefrontClient.
type Destination struct {
	shared.BaseAggregateRoot
	Name        string `gorm:"type:varchar(255);not null"`
	ShopDomain  string `gorm:"type:varchar(255);not null;uniqueIndex"`
	Currency    string `gorm:"type:varchar(10);not null;default:'USD'"`
	Locale      string `gorm:"type:varchar(20);not null;default:'en'"`
	Credentials string `gorm:"type:text"` // opaque credential blob, owned by the adapter
	Active      bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Destination) TableName() string {
	return "destinations"
}

// NewDestination registers a connected storefront
func NewDestination(name, shopDomain, currency, credentials string) (*Destination, error) {
	name = strings.TrimSpace(name)
	shopDomain = strings.TrimSpace(shopDomain)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_DESTINATION", "Destination name is required")
	}
	if shopDomain == "" {
		return nil, shared.NewDomainError("INVALID_DESTINATION", "Destination shop domain is required")
	}
	if currency == "" {
		currency = "USD"
	}

	dest := &Destination{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		ShopDomain:        shopDomain,
		Currency:          currency,
		Locale:            "en",
		Credentials:       credentials,
		Active:            true,
	}

	dest.AddDomainEvent(NewDestinationConnectedEvent(dest))

	return dest, nil
}

// Disconnect deactivates the destination. Ledger records for it are
// invalidated by the caller; the destination row itself is kept for history.
func (d *Destination) Disconnect() {
	if !d.Active {
		return
	}
	d.Active = false
	d.UpdatedAt = time.Now()
	d.IncrementVersion()

	d.AddDomainEvent(NewDestinationDisconnectedEvent(d))
}

// DestinationRepository provides access to connected storefronts
type DestinationRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Destination, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Destination, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Destination, int64, error)
	Save(ctx context.Context, destination *Destination) error
}

// RemoteRef is the opaque identifier of a product previously created on a
// destination. Empty means the product has never been created there.
type RemoteRef string

// ProductPayload is the effective outbound representation of a product for
// one destination, with per-destination overrides already applied.
type ProductPayload struct {
	ProductID     uuid.UUID
	Title         string
	BodyHTML      string
	Vendor        string
	ProductType   string
	Tags          string
	CollectionIDs []string
	Variants      []VariantPayload
}

// VariantPayload is the effective outbound representation of one variant
type VariantPayload struct {
	VariantID      uuid.UUID
	Title          string
	SKU            string
	Price          decimal.Decimal
	CompareAtPrice decimal.Decimal
	Position       int
}

// InventoryLevel is one variant's committed quantity at a destination
// location. The adapter maps VariantID/SKU onto whatever the platform uses
// to address inventory.
type InventoryLevel struct {
	VariantID  uuid.UUID
	SKU        string
	LocationID string
	Available  int64
}

// StorefrontClient is the narrow capability port every destination platform
// must satisfy: create/update/delete a product and read/write inventory
// levels. Adapters for concrete platforms live in the infrastructure layer.
type StorefrontClient interface {
	// CreateProduct creates the product on the destination and returns its
	// remote reference
	CreateProduct(ctx context.Context, payload ProductPayload) (RemoteRef, error)

	// UpdateProduct updates an existing remote product in place. The returned
	// ref is normally unchanged; platforms that re-key on update may return a
	// new one.
	UpdateProduct(ctx context.Context, ref RemoteRef, payload ProductPayload) (RemoteRef, error)

	// DeleteProduct removes the product from the destination
	DeleteProduct(ctx context.Context, ref RemoteRef) error

	// ReadInventory reads current inventory levels for a remote product,
	// keyed by SKU
	ReadInventory(ctx context.Context, ref RemoteRef) (map[string]int64, error)

	// WriteInventory pushes committed inventory levels for a remote product
	WriteInventory(ctx context.Context, ref RemoteRef, levels []InventoryLevel) error
}

// ClientRegistry resolves a destination to its storefront client. The
// registry checks connection validity; a disconnected destination yields
// ErrDestinationDisconnected.
type ClientRegistry interface {
	ClientFor(destination *Destination) (StorefrontClient, error)
}
