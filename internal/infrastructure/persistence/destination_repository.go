package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storelink/backend/internal/domain/distribution"
	"github.com/storelink/backend/internal/domain/shared"
)

// GormDestinationRepository implements distribution.DestinationRepository
type GormDestinationRepository struct {
	db *gorm.DB
}

// NewGormDestinationRepository creates a destination repository
func NewGormDestinationRepository(db *gorm.DB) *GormDestinationRepository {
	return &GormDestinationRepository{db: db}
}

// FindByID loads a destination by id
func (r *GormDestinationRepository) FindByID(ctx context.Context, id uuid.UUID) (*distribution.Destination, error) {
	var dest distribution.Destination
	if err := r.db.WithContext(ctx).First(&dest, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, distribution.ErrDestinationNotFound
		}
		return nil, err
	}
	return &dest, nil
}

// FindByIDs loads multiple destinations; missing ids are skipped
func (r *GormDestinationRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]distribution.Destination, error) {
	if len(ids) == 0 {
		return []distribution.Destination{}, nil
	}
	var dests []distribution.Destination
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&dests).Error; err != nil {
		return nil, err
	}
	return dests, nil
}

// FindAll lists destinations with pagination
func (r *GormDestinationRepository) FindAll(ctx context.Context, filter shared.Filter) ([]distribution.Destination, int64, error) {
	query := r.db.WithContext(ctx).Model(&distribution.Destination{})

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name LIKE ? OR shop_domain LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orderBy := ValidateSortField(filter.OrderBy, DestinationSortFields, "created_at")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	var dests []distribution.Destination
	if err := query.Find(&dests).Error; err != nil {
		return nil, 0, err
	}
	return dests, total, nil
}

// Save creates or updates a destination
func (r *GormDestinationRepository) Save(ctx context.Context, destination *distribution.Destination) error {
	return r.db.WithContext(ctx).Save(destination).Error
}

var _ distribution.DestinationRepository = (*GormDestinationRepository)(nil)
