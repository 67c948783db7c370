package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/lettrehq/lettre/internal/workspace/store"
)

// HousekeepingService periodically removes stale records: expired
// invitations, spent or expired recovery tokens, and confirmation tokens of
// senders that never verified.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Interval time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates the service; a non-positive interval
// defaults to 1 hour.
func NewHousekeepingService(st store.Store, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}

	return &HousekeepingService{
		Store:    st,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background worker. Non-blocking; call Stop to shut down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop shuts the worker down and blocks until any in-progress cleanup ends.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Run cleanup immediately on startup
	s.cleanup()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopCh:
			return
		}
	}
}

// cleanup performs the deletions. Each one is independent; a failure in one
// does not stop the others.
func (s *HousekeepingService) cleanup() {
	ctx := context.Background()
	s.Logger.Info("starting housekeeping cleanup")

	var completed int

	if err := s.Store.Invitations().DeleteExpiredInvitations(ctx); err != nil {
		s.Logger.Error("failed to delete expired invitations", "error", err)
	} else {
		completed++
	}

	if err := s.Store.RecoveryTokens().DeleteExpiredRecoveryTokens(ctx); err != nil {
		s.Logger.Error("failed to delete expired recovery tokens", "error", err)
	} else {
		completed++
	}

	if err := s.Store.Senders().ClearExpiredTokens(ctx); err != nil {
		s.Logger.Error("failed to clear expired sender tokens", "error", err)
	} else {
		completed++
	}

	s.Logger.Info("housekeeping cleanup completed", "successful_cleanups", completed)
}
