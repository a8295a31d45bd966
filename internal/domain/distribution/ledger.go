package distribution

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/storelink/backend/internal/domain/shared"
)

// SyncStatus is the per-(product, destination) synchronization state
type SyncStatus string

const (
	SyncStatusNeverSynced SyncStatus = "never_synced"
	SyncStatusPending     SyncStatus = "pending"
	SyncStatusSynced      SyncStatus = "synced"
	SyncStatusError       SyncStatus = "error"
)

// IsValid returns true if the status is valid
func (s SyncStatus) IsValid() bool {
	switch s {
	case SyncStatusNeverSynced, SyncStatusPending, SyncStatusSynced, SyncStatusError:
		return true
	default:
		return false
	}
}

// String returns the string representation of SyncStatus
func (s SyncStatus) String() string {
	return string(s)
}

// SyncRecord is the durable trace of synchronization outcome for one
// (product, destination) pair. Created on the first attempt, mutated by every
// subsequent one, and kept for history even after the destination is
// disconnected.
type SyncRecord struct {
	shared.BaseEntity
	ProductID     uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_sync_record_pair,priority:1"`
	DestinationID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_sync_record_pair,priority:2"`
	RemoteRef     string     `gorm:"type:varchar(255)"`
	Status        SyncStatus `gorm:"type:varchar(20);not null;default:'never_synced'"`
	LastError     string     `gorm:"type:text"`
	LastAttemptAt *time.Time
	LastSuccessAt *time.Time
	Invalidated   bool `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (SyncRecord) TableName() string {
	return "sync_records"
}

// NewSyncRecord creates a fresh, never-synced ledger entry
func NewSyncRecord(productID, destinationID uuid.UUID) *SyncRecord {
	return &SyncRecord{
		BaseEntity:    shared.NewBaseEntity(),
		ProductID:     productID,
		DestinationID: destinationID,
		Status:        SyncStatusNeverSynced,
	}
}

// BeginAttempt moves the record into pending. Every status can re-enter
// pending: never_synced on first push, error on retry, synced on re-push. A
// pending left behind by a crash is stale and simply superseded here.
func (r *SyncRecord) BeginAttempt() {
	now := time.Now()
	r.Status = SyncStatusPending
	r.LastAttemptAt = &now
	r.UpdatedAt = now
}

// MarkSynced records a successful outcome and the remote reference
func (r *SyncRecord) MarkSynced(ref RemoteRef) {
	now := time.Now()
	r.Status = SyncStatusSynced
	r.RemoteRef = string(ref)
	r.LastError = ""
	r.LastSuccessAt = &now
	r.UpdatedAt = now
	r.Invalidated = false
}

// MarkError records a failed outcome. A remote ref obtained before the
// failure (product created, inventory write failed) is kept so the next
// attempt updates instead of creating a duplicate.
func (r *SyncRecord) MarkError(message string, ref RemoteRef) {
	now := time.Now()
	r.Status = SyncStatusError
	r.LastError = message
	if ref != "" {
		r.RemoteRef = string(ref)
	}
	r.UpdatedAt = now
}

// Invalidate marks the record unusable for future update decisions after its
// destination was disconnected. The row is retained for history.
func (r *SyncRecord) Invalidate() {
	r.Invalidated = true
	r.UpdatedAt = time.Now()
}

// EffectiveRemoteRef returns the remote reference usable for the
// create-or-update decision. Invalidated records behave as never synced.
func (r *SyncRecord) EffectiveRemoteRef() RemoteRef {
	if r.Invalidated {
		return ""
	}
	return RemoteRef(r.RemoteRef)
}

// IsStalePending reports whether a pending record is older than the cutoff.
// An unconfirmed pending is never trusted as evidence of success or failure.
func (r *SyncRecord) IsStalePending(cutoff time.Time) bool {
	return r.Status == SyncStatusPending &&
		r.LastAttemptAt != nil &&
		r.LastAttemptAt.Before(cutoff)
}

// SyncRecordRepository is the durable store behind the ledger
type SyncRecordRepository interface {
	FindByProductAndDestination(ctx context.Context, productID, destinationID uuid.UUID) (*SyncRecord, error)
	FindByProduct(ctx context.Context, productID uuid.UUID) ([]SyncRecord, error)
	FindStalePending(ctx context.Context, olderThan time.Time) ([]SyncRecord, error)
	Save(ctx context.Context, record *SyncRecord) error
	InvalidateByDestination(ctx context.Context, destinationID uuid.UUID) (int64, error)
}

// Ledger is the source of truth for "is this product in sync" queries. One
// record per (product, destination); records are written only by the job
// responsible for that pair, so there is no cross-job contention.
type Ledger struct {
	records SyncRecordRepository
}

// NewLedger creates a ledger over the given record store
func NewLedger(records SyncRecordRepository) *Ledger {
	return &Ledger{records: records}
}

// Lookup returns the record for a pair, or a fresh never-synced record if
// none exists yet. The fresh record is not persisted until an attempt is
// recorded.
func (l *Ledger) Lookup(ctx context.Context, productID, destinationID uuid.UUID) (*SyncRecord, error) {
	record, err := l.records.FindByProductAndDestination(ctx, productID, destinationID)
	if err != nil {
		if errors.Is(err, ErrSyncRecordNotFound) {
			return NewSyncRecord(productID, destinationID), nil
		}
		return nil, err
	}
	return record, nil
}

// RecordAttempt marks the pair pending and persists the record
func (l *Ledger) RecordAttempt(ctx context.Context, productID, destinationID uuid.UUID) (*SyncRecord, error) {
	record, err := l.Lookup(ctx, productID, destinationID)
	if err != nil {
		return nil, err
	}
	record.BeginAttempt()
	if err := l.records.Save(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// RecordOutcome applies a job result to the pair's record and persists it
func (l *Ledger) RecordOutcome(ctx context.Context, result SyncResult) (*SyncRecord, error) {
	record, err := l.Lookup(ctx, result.ProductID, result.DestinationID)
	if err != nil {
		return nil, err
	}
	if result.Success {
		record.MarkSynced(result.RemoteRef)
	} else {
		record.MarkError(result.ErrorMessage, result.RemoteRef)
	}
	if err := l.records.Save(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// StatusFor returns all ledger records for a product, keyed by destination
func (l *Ledger) StatusFor(ctx context.Context, productID uuid.UUID) (map[uuid.UUID]SyncRecord, error) {
	records, err := l.records.FindByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	result := make(map[uuid.UUID]SyncRecord, len(records))
	for _, record := range records {
		result[record.DestinationID] = record
	}
	return result, nil
}

// IsConnected reports whether the product is live on at least one
// destination: a synced record holding a valid remote reference.
func (l *Ledger) IsConnected(ctx context.Context, productID uuid.UUID) (bool, error) {
	records, err := l.records.FindByProduct(ctx, productID)
	if err != nil {
		return false, err
	}
	for _, record := range records {
		if record.Status == SyncStatusSynced && record.EffectiveRemoteRef() != "" {
			return true, nil
		}
	}
	return false, nil
}

// InvalidateDestination marks every record for a disconnected destination as
// unusable for update decisions. History is retained, nothing is deleted.
func (l *Ledger) InvalidateDestination(ctx context.Context, destinationID uuid.UUID) (int64, error) {
	return l.records.InvalidateByDestination(ctx, destinationID)
}
