package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/benmeehan/status-monitor/internal/models"
	"github.com/benmeehan/status-monitor/pkg/identity"
	"github.com/rs/zerolog"
)

// HeartbeatService sends periodic heartbeats on behalf of this system.
type HeartbeatService struct {
	Interval   time.Duration
	Timeout    time.Duration
	Password   string
	SystemInfo identity.SystemInfoInterface
	Publisher  Publisher
	Logger     zerolog.Logger

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewHeartbeatService initializes a new HeartbeatService.
func NewHeartbeatService(interval, timeout time.Duration, password string, systemInfo identity.SystemInfoInterface,
	publisher Publisher, logger zerolog.Logger) *HeartbeatService {

	return &HeartbeatService{
		Interval:   interval,
		Timeout:    timeout,
		Password:   password,
		SystemInfo: systemInfo,
		Publisher:  publisher,
		Logger:     logger,
	}
}

// Start launches the heartbeat loop in a separate goroutine. The first
// heartbeat is sent immediately.
func (h *HeartbeatService) Start() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.ctx != nil {
		h.Logger.Warn().Msg("HeartbeatService is already running")
		return errors.New("heartbeat service is already running")
	}
	if h.Interval <= 0 {
		return errors.New("heartbeat interval must be positive")
	}

	h.ctx, h.cancel = context.WithCancel(context.Background())

	h.wg.Add(1)
	go func(ctx context.Context) {
		defer h.wg.Done()
		h.runHeartbeatLoop(ctx)
	}(h.ctx)

	h.Logger.Info().
		Str("system_id", h.SystemInfo.GetSystemID()).
		Dur("interval", h.Interval).
		Msg("HeartbeatService started successfully")
	return nil
}

// Stop gracefully stops the heartbeat service.
func (h *HeartbeatService) Stop() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.ctx == nil {
		h.Logger.Warn().Msg("HeartbeatService is not running")
		return errors.New("heartbeat service is not running")
	}

	h.cancel()
	h.wg.Wait()

	h.ctx = nil
	h.cancel = nil

	h.Logger.Info().Msg("HeartbeatService stopped successfully")
	return nil
}

// runHeartbeatLoop sends a heartbeat now and then at every tick.
func (h *HeartbeatService) runHeartbeatLoop(ctx context.Context) {
	ticker := time.NewTicker(h.Interval)
	defer ticker.Stop()

	h.sendHeartbeat(ctx)

	for {
		select {
		case <-ticker.C:
			h.sendHeartbeat(ctx)

		case <-ctx.Done():
			h.Logger.Info().Msg("HeartbeatService stopping gracefully")
			return
		}
	}
}

func (h *HeartbeatService) sendHeartbeat(ctx context.Context) {
	req := models.PingRequest{
		Password:   h.Password,
		SystemID:   h.SystemInfo.GetSystemID(),
		SystemName: h.SystemInfo.GetSystemName(),
		SystemType: h.SystemInfo.GetSystemType(),
	}

	if h.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.Timeout)
		defer cancel()
	}

	resp, err := h.Publisher.Publish(ctx, req)
	if err != nil {
		if ctx.Err() != nil && errors.Is(err, context.Canceled) {
			return
		}
		h.Logger.Error().Err(err).Msg("Failed to publish heartbeat")
		return
	}

	event := h.Logger.Debug()
	if resp != nil {
		nextPingIn := time.Duration(resp.NextPingIn) * time.Millisecond
		event = event.Dur("server_timeout", nextPingIn)
		if nextPingIn > 0 && h.Interval >= nextPingIn {
			h.Logger.Warn().
				Dur("interval", h.Interval).
				Dur("server_timeout", nextPingIn).
				Msg("Heartbeat interval is not shorter than the server timeout; system will flap offline")
		}
	}
	event.Msg("Heartbeat published successfully")
}
