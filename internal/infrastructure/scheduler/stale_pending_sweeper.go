package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	appdistribution "github.com/storelink/backend/internal/application/distribution"
	"github.com/storelink/backend/internal/infrastructure/config"
)

var (
	// ErrSweeperAlreadyRunning is returned when Start is called twice
	ErrSweeperAlreadyRunning = errors.New("scheduler: sweeper is already running")
	// ErrSweeperNotRunning is returned when Stop is called on a stopped sweeper
	ErrSweeperNotRunning = errors.New("scheduler: sweeper is not running")
)

const defaultSweepInterval = 1 * time.Minute

// StaleSweeper is the subset of the stale-pending service the sweeper drives.
type StaleSweeper interface {
	Sweep(ctx context.Context) (*appdistribution.SweepStats, error)
}

// StalePendingSweeper periodically settles sync records that are stuck in
// pending, typically left behind by a crash mid-push. It owns the interval
// loop only; the settle semantics live in the application service.
type StalePendingSweeper struct {
	service  StaleSweeper
	interval time.Duration
	logger   *zap.Logger

	mu        sync.Mutex
	isRunning bool
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

// NewStalePendingSweeper creates a sweeper from the scheduler configuration.
func NewStalePendingSweeper(service StaleSweeper, cfg config.SchedulerConfig, logger *zap.Logger) *StalePendingSweeper {
	interval := cfg.SweepInterval
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	return &StalePendingSweeper{
		service:  service,
		interval: interval,
		logger:   logger,
	}
}

// Start launches the sweep loop. The first sweep runs immediately so a
// restart after a crash does not wait a full interval to clear leftovers.
func (s *StalePendingSweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return ErrSweeperAlreadyRunning
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.isRunning = true

	s.wg.Add(1)
	go s.runLoop(ctx)

	s.logger.Info("stale pending sweeper started",
		zap.Duration("interval", s.interval),
	)
	return nil
}

// Stop cancels the loop and waits for an in-flight sweep to finish, bounded
// by the caller's context.
func (s *StalePendingSweeper) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return ErrSweeperNotRunning
	}
	s.isRunning = false
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("stale pending sweeper stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsRunning reports whether the loop is active.
func (s *StalePendingSweeper) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

func (s *StalePendingSweeper) runLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *StalePendingSweeper) sweep(ctx context.Context) {
	stats, err := s.service.Sweep(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		s.logger.Error("stale pending sweep failed", zap.Error(err))
		return
	}
	if stats.TotalStale > 0 {
		s.logger.Info("stale pending sweep finished",
			zap.Int("total", stats.TotalStale),
			zap.Int("resolved", stats.Resolved),
			zap.Int("failed", stats.Failed),
		)
	}
}
