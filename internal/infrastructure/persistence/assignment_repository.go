package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storelink/backend/internal/domain/distribution"
)

// GormAssignmentRepository implements distribution.AssignmentRepository
type GormAssignmentRepository struct {
	db *gorm.DB
}

// NewGormAssignmentRepository creates an assignment repository
func NewGormAssignmentRepository(db *gorm.DB) *GormAssignmentRepository {
	return &GormAssignmentRepository{db: db}
}

// FindByVariant loads all of a variant's assignments across destinations
func (r *GormAssignmentRepository) FindByVariant(ctx context.Context, variantID uuid.UUID) ([]distribution.InventoryAssignment, error) {
	var assignments []distribution.InventoryAssignment
	if err := r.db.WithContext(ctx).
		Where("variant_id = ?", variantID).
		Find(&assignments).Error; err != nil {
		return nil, err
	}
	return assignments, nil
}

// FindByVariantAndDestination loads the assignment for one pair
func (r *GormAssignmentRepository) FindByVariantAndDestination(ctx context.Context, variantID, destinationID uuid.UUID) (*distribution.InventoryAssignment, error) {
	var assignment distribution.InventoryAssignment
	err := r.db.WithContext(ctx).
		Where("variant_id = ? AND destination_id = ?", variantID, destinationID).
		First(&assignment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, distribution.ErrAssignmentNotFound
		}
		return nil, err
	}
	return &assignment, nil
}

// FindByProductAndDestination loads the assignments of all of a product's
// variants at one destination
func (r *GormAssignmentRepository) FindByProductAndDestination(ctx context.Context, productID, destinationID uuid.UUID) ([]distribution.InventoryAssignment, error) {
	var assignments []distribution.InventoryAssignment
	err := r.db.WithContext(ctx).
		Where("destination_id = ? AND variant_id IN (?)",
			destinationID,
			r.db.Model(&variantRow{}).Select("id").Where("product_id = ?", productID),
		).
		Find(&assignments).Error
	if err != nil {
		return nil, err
	}
	return assignments, nil
}

// Save creates or updates an assignment
func (r *GormAssignmentRepository) Save(ctx context.Context, assignment *distribution.InventoryAssignment) error {
	return r.db.WithContext(ctx).Save(assignment).Error
}

// DeleteByDestination removes every assignment for a destination, returning
// its share of each pool
func (r *GormAssignmentRepository) DeleteByDestination(ctx context.Context, destinationID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("destination_id = ?", destinationID).
		Delete(&distribution.InventoryAssignment{}).Error
}

var _ distribution.AssignmentRepository = (*GormAssignmentRepository)(nil)
