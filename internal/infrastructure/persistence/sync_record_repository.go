package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storelink/backend/internal/domain/distribution"
)

// GormSyncRecordRepository implements distribution.SyncRecordRepository
type GormSyncRecordRepository struct {
	db *gorm.DB
}

// NewGormSyncRecordRepository creates a sync record repository
func NewGormSyncRecordRepository(db *gorm.DB) *GormSyncRecordRepository {
	return &GormSyncRecordRepository{db: db}
}

// FindByProductAndDestination loads the record for one pair
func (r *GormSyncRecordRepository) FindByProductAndDestination(ctx context.Context, productID, destinationID uuid.UUID) (*distribution.SyncRecord, error) {
	var record distribution.SyncRecord
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND destination_id = ?", productID, destinationID).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, distribution.ErrSyncRecordNotFound
		}
		return nil, err
	}
	return &record, nil
}

// FindByProduct loads all records for a product across destinations
func (r *GormSyncRecordRepository) FindByProduct(ctx context.Context, productID uuid.UUID) ([]distribution.SyncRecord, error) {
	var records []distribution.SyncRecord
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// FindStalePending returns pending records whose last attempt predates the
// cutoff. Used by the sweeper to resolve records orphaned by a crash.
func (r *GormSyncRecordRepository) FindStalePending(ctx context.Context, olderThan time.Time) ([]distribution.SyncRecord, error) {
	var records []distribution.SyncRecord
	if err := r.db.WithContext(ctx).
		Where("status = ? AND last_attempt_at < ?", distribution.SyncStatusPending, olderThan).
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// Save creates or updates a record. The unique (product_id, destination_id)
// index backs the one-record-per-pair invariant.
func (r *GormSyncRecordRepository) Save(ctx context.Context, record *distribution.SyncRecord) error {
	return r.db.WithContext(ctx).Save(record).Error
}

// InvalidateByDestination flags every record of a disconnected destination
// and returns how many rows changed
func (r *GormSyncRecordRepository) InvalidateByDestination(ctx context.Context, destinationID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&distribution.SyncRecord{}).
		Where("destination_id = ? AND invalidated = ?", destinationID, false).
		Updates(map[string]interface{}{
			"invalidated": true,
			"updated_at":  time.Now(),
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

var _ distribution.SyncRecordRepository = (*GormSyncRecordRepository)(nil)
