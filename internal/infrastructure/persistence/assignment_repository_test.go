package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storelink/backend/internal/domain/distribution"
	"github.com/storelink/backend/internal/domain/shared"
)

func newAssignment(variantID, destinationID uuid.UUID, qty int64) *distribution.InventoryAssignment {
	return &distribution.InventoryAssignment{
		BaseEntity:    shared.NewBaseEntity(),
		VariantID:     variantID,
		DestinationID: destinationID,
		Quantity:      qty,
	}
}

func TestGormAssignmentRepositoryPairLookup(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormAssignmentRepository(db)
	ctx := context.Background()

	variantID, destinationID := uuid.New(), uuid.New()

	_, err := repo.FindByVariantAndDestination(ctx, variantID, destinationID)
	assert.ErrorIs(t, err, distribution.ErrAssignmentNotFound)

	require.NoError(t, repo.Save(ctx, newAssignment(variantID, destinationID, 40)))

	loaded, err := repo.FindByVariantAndDestination(ctx, variantID, destinationID)
	require.NoError(t, err)
	assert.Equal(t, int64(40), loaded.Quantity)
}

func TestGormAssignmentRepositoryFindByVariant(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormAssignmentRepository(db)
	ctx := context.Background()

	variantID := uuid.New()
	require.NoError(t, repo.Save(ctx, newAssignment(variantID, uuid.New(), 10)))
	require.NoError(t, repo.Save(ctx, newAssignment(variantID, uuid.New(), 20)))
	require.NoError(t, repo.Save(ctx, newAssignment(uuid.New(), uuid.New(), 30)))

	assignments, err := repo.FindByVariant(ctx, variantID)
	require.NoError(t, err)
	assert.Len(t, assignments, 2)
}

func TestGormAssignmentRepositoryFindByProductAndDestination(t *testing.T) {
	db := setupTestDB(t)
	products := NewGormProductRepository(db)
	repo := NewGormAssignmentRepository(db)
	ctx := context.Background()

	product := newStoredProduct(t, "Bundle", "B-1", "B-2")
	require.NoError(t, products.Save(ctx, product))

	destinationID := uuid.New()
	require.NoError(t, repo.Save(ctx, newAssignment(product.Variants[0].ID, destinationID, 5)))
	require.NoError(t, repo.Save(ctx, newAssignment(product.Variants[1].ID, destinationID, 7)))
	// same destination, unrelated variant
	require.NoError(t, repo.Save(ctx, newAssignment(uuid.New(), destinationID, 9)))
	// same variant, other destination
	require.NoError(t, repo.Save(ctx, newAssignment(product.Variants[0].ID, uuid.New(), 11)))

	assignments, err := repo.FindByProductAndDestination(ctx, product.ID, destinationID)
	require.NoError(t, err)
	assert.Len(t, assignments, 2)
}

func TestGormAssignmentRepositoryDeleteByDestination(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormAssignmentRepository(db)
	ctx := context.Background()

	destinationID := uuid.New()
	require.NoError(t, repo.Save(ctx, newAssignment(uuid.New(), destinationID, 5)))
	require.NoError(t, repo.Save(ctx, newAssignment(uuid.New(), destinationID, 6)))
	keep := newAssignment(uuid.New(), uuid.New(), 7)
	require.NoError(t, repo.Save(ctx, keep))

	require.NoError(t, repo.DeleteByDestination(ctx, destinationID))

	remaining, err := repo.FindByVariant(ctx, keep.VariantID)
	require.NoError(t, err)
	assert.Len(t, remaining, 1)
}

func TestGormOverrideRepository(t *testing.T) {
	db := setupTestDB(t)
	products := NewGormProductRepository(db)
	repo := NewGormOverrideRepository(db)
	ctx := context.Background()

	product := newStoredProduct(t, "Overridden", "O-1", "O-2")
	require.NoError(t, products.Save(ctx, product))

	destinationID := uuid.New()
	price := decimal.NewFromInt(35)
	sku := "O-1-EU"
	override := &distribution.VariantOverride{
		BaseEntity:    shared.NewBaseEntity(),
		VariantID:     product.Variants[0].ID,
		DestinationID: destinationID,
		Price:         &price,
		SKU:           &sku,
	}
	require.NoError(t, repo.Save(ctx, override))

	t.Run("pair lookup", func(t *testing.T) {
		loaded, err := repo.FindByVariantAndDestination(ctx, product.Variants[0].ID, destinationID)
		require.NoError(t, err)
		require.NotNil(t, loaded.Price)
		assert.True(t, loaded.Price.Equal(price))
		require.NotNil(t, loaded.SKU)
		assert.Equal(t, "O-1-EU", *loaded.SKU)
		assert.Nil(t, loaded.CompareAtPrice)
	})

	t.Run("missing pair", func(t *testing.T) {
		_, err := repo.FindByVariantAndDestination(ctx, product.Variants[1].ID, destinationID)
		assert.ErrorIs(t, err, distribution.ErrOverrideNotFound)
	})

	t.Run("by product and destination", func(t *testing.T) {
		overrides, err := repo.FindByProductAndDestination(ctx, product.ID, destinationID)
		require.NoError(t, err)
		assert.Len(t, overrides, 1)
	})

	t.Run("delete by destination", func(t *testing.T) {
		require.NoError(t, repo.DeleteByDestination(ctx, destinationID))
		_, err := repo.FindByVariantAndDestination(ctx, product.Variants[0].ID, destinationID)
		assert.ErrorIs(t, err, distribution.ErrOverrideNotFound)
	})
}
