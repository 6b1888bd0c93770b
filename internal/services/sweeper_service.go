package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/benmeehan/status-monitor/internal/presence"
	"github.com/rs/zerolog"
)

// SweeperService periodically removes systems whose heartbeats have expired.
type SweeperService struct {
	Registry *presence.Registry
	Interval time.Duration
	Clock    presence.Clock
	Logger   zerolog.Logger

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSweeperService initializes a new SweeperService.
func NewSweeperService(registry *presence.Registry, interval time.Duration, clock presence.Clock,
	logger zerolog.Logger) *SweeperService {
	if clock == nil {
		clock = presence.SystemClock
	}
	return &SweeperService{
		Registry: registry,
		Interval: interval,
		Clock:    clock,
		Logger:   logger,
	}
}

// Start launches the sweep loop in a separate goroutine.
func (s *SweeperService) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ctx != nil {
		s.Logger.Warn().Msg("SweeperService is already running")
		return errors.New("sweeper service is already running")
	}
	if s.Interval <= 0 {
		return errors.New("sweep interval must be positive")
	}

	s.ctx, s.cancel = context.WithCancel(context.Background())

	s.wg.Add(1)
	go func(ctx context.Context) {
		defer s.wg.Done()
		s.runSweepLoop(ctx)
	}(s.ctx)

	s.Logger.Info().
		Dur("interval", s.Interval).
		Dur("timeout", s.Registry.Timeout()).
		Msg("SweeperService started successfully")
	return nil
}

// Stop stops the sweep loop and waits for an in-progress sweep to finish.
func (s *SweeperService) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ctx == nil {
		s.Logger.Warn().Msg("SweeperService is not running")
		return errors.New("sweeper service is not running")
	}

	s.cancel()
	s.wg.Wait()

	s.ctx = nil
	s.cancel = nil

	s.Logger.Info().Msg("SweeperService stopped successfully")
	return nil
}

// runSweepLoop sweeps the registry at the configured interval.
func (s *SweeperService) runSweepLoop(ctx context.Context) {
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			removed := s.Registry.Sweep(s.Clock())
			if len(removed) > 0 {
				s.Logger.Debug().
					Int("removed", len(removed)).
					Int("online", s.Registry.Count()).
					Msg("Sweep removed expired systems")
			}

		case <-ctx.Done():
			return
		}
	}
}
