package service

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Flamchu/Slack-like-backend/internal/auth/store"
)

// Sweeper drops expired entries from an in-process cache.
type Sweeper interface {
	Sweep() int
}

// HousekeepingService periodically removes expired revocations and activity
// rows older than the retention window.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Interval time.Duration

	// Cache is swept when the memory revocation backend is in use.
	Cache Sweeper

	// ActivityRetention of zero keeps activity forever.
	ActivityRetention time.Duration

	Now func() time.Time

	// Internal channels for lifecycle management
	stopCh   chan struct{}
	doneCh   chan struct{}
	started  atomic.Bool
	stopOnce sync.Once
}

// NewHousekeepingService creates a new housekeeping service with the given interval.
// If interval is 0 or negative, defaults to 1 hour.
func NewHousekeepingService(store store.Store, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}

	return &HousekeepingService{
		Store:    store,
		Logger:   logger,
		Interval: interval,
		Now:      time.Now,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background worker that periodically runs cleanup.
// Call Stop() to shut it down.
func (s *HousekeepingService) Start() {
	if s.started.Swap(true) {
		return
	}
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop blocks until an in-progress cleanup has finished.
func (s *HousekeepingService) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
		if s.started.Load() {
			<-s.doneCh
		}
		s.Logger.Info("housekeeping service stopped")
	})
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Run cleanup immediately on startup
	s.Cleanup(context.Background())

	for {
		select {
		case <-ticker.C:
			s.Cleanup(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// Cleanup runs one pass. Each step is independent; a failure in one does
// not stop the others.
func (s *HousekeepingService) Cleanup(ctx context.Context) {
	now := s.Now().UTC()
	s.Logger.Debug("starting housekeeping cleanup")

	var successful int

	if n, err := s.Store.RevokedTokens().DeleteExpiredRevokedTokens(ctx, now); err != nil {
		s.Logger.Error("failed to delete expired revoked tokens", "error", err)
	} else {
		s.Logger.Debug("deleted expired revoked tokens", "count", n)
		successful++
	}

	if s.Cache != nil {
		n := s.Cache.Sweep()
		s.Logger.Debug("swept revocation cache", "count", n)
		successful++
	}

	if s.ActivityRetention > 0 {
		if n, err := s.Store.ActivityLogs().DeleteActivityBefore(ctx, now.Add(-s.ActivityRetention)); err != nil {
			s.Logger.Error("failed to delete old activity logs", "error", err)
		} else {
			s.Logger.Debug("deleted old activity logs", "count", n)
			successful++
		}
	}

	s.Logger.Info("housekeeping cleanup completed", "successful_cleanups", successful)
}
