package distribution

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/storelink/backend/internal/domain/distribution"
)

// StalePendingService resolves ledger records stuck in pending. A pending
// survives a crash only as a transient artifact: nothing confirmed the push,
// so the record is settled to error and the merchant retries deliberately.
type StalePendingService struct {
	records distribution.SyncRecordRepository
	maxAge  time.Duration
	logger  *zap.Logger
}

// NewStalePendingService creates a new StalePendingService. maxAge is how old
// a pending must be before it is considered abandoned; it should comfortably
// exceed the orchestrator's job timeout.
func NewStalePendingService(records distribution.SyncRecordRepository, maxAge time.Duration, logger *zap.Logger) *StalePendingService {
	if maxAge <= 0 {
		maxAge = 5 * time.Minute
	}
	return &StalePendingService{
		records: records,
		maxAge:  maxAge,
		logger:  logger,
	}
}

// SweepStats contains statistics about one sweep
type SweepStats struct {
	TotalStale  int       `json:"total_stale"`
	Resolved    int       `json:"resolved"`
	Failed      int       `json:"failed"`
	ProcessedAt time.Time `json:"processed_at"`
}

// Sweep finds pending records older than the cutoff and settles them to error
func (s *StalePendingService) Sweep(ctx context.Context) (*SweepStats, error) {
	stats := &SweepStats{
		ProcessedAt: time.Now(),
	}
	cutoff := time.Now().Add(-s.maxAge)

	stale, err := s.records.FindStalePending(ctx, cutoff)
	if err != nil {
		s.logger.Error("failed to find stale pending records", zap.Error(err))
		return nil, err
	}

	stats.TotalStale = len(stale)
	if stats.TotalStale == 0 {
		s.logger.Debug("no stale pending sync records found")
		return stats, nil
	}

	s.logger.Info("found stale pending sync records",
		zap.Int("count", stats.TotalStale),
		zap.Time("cutoff", cutoff),
	)

	for i := range stale {
		record := &stale[i]
		// The ref is left untouched: if an earlier push created the remote
		// product, the retry still updates it.
		record.MarkError("sync interrupted before completion", "")
		if err := s.records.Save(ctx, record); err != nil {
			s.logger.Error("failed to resolve stale pending record",
				zap.String("product_id", record.ProductID.String()),
				zap.String("destination_id", record.DestinationID.String()),
				zap.Error(err),
			)
			stats.Failed++
			continue
		}
		stats.Resolved++
	}

	s.logger.Info("completed stale pending sweep",
		zap.Int("total", stats.TotalStale),
		zap.Int("resolved", stats.Resolved),
		zap.Int("failed", stats.Failed),
	)

	return stats, nil
}
