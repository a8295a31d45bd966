package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/storelink/backend/internal/domain/shared"
)

// ProductRepository provides access to the product catalog
type ProductRepository interface {
	// FindByID loads a product with its variants and options
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindByIDs loads multiple products; missing ids are silently skipped
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Product, error)

	// FindAll lists products with pagination
	FindAll(ctx context.Context, filter shared.Filter) ([]Product, int64, error)

	// Save persists the product aggregate including variants and options
	Save(ctx context.Context, product *Product) error

	// Delete removes a product and its owned entities
	Delete(ctx context.Context, id uuid.UUID) error
}
