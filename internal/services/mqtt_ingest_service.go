package services

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/benmeehan/status-monitor/internal/ingest"
	"github.com/benmeehan/status-monitor/internal/utils"
	"github.com/benmeehan/status-monitor/pkg/mqtt"
	mqttLib "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"
)

// MQTTIngestService accepts heartbeats published to an MQTT topic. Payloads
// use the same JSON shape and validation as the HTTP ping endpoint.
type MQTTIngestService struct {
	SubTopic   string
	QOS        int
	Workers    int
	MqttClient mqtt.MQTTClient
	Processor  *ingest.Processor
	Logger     zerolog.Logger

	mu      sync.Mutex
	running bool

	// pool is read without mu by handleMessage. The client may deliver
	// messages before a SUBACK, while Start or Resubscribe waits on it.
	pool atomic.Pointer[utils.WorkerPool]
}

// NewMQTTIngestService initializes a new MQTTIngestService.
func NewMQTTIngestService(subTopic string, qos, workers int, mqttClient mqtt.MQTTClient,
	processor *ingest.Processor, logger zerolog.Logger) *MQTTIngestService {
	return &MQTTIngestService{
		SubTopic:   subTopic,
		QOS:        qos,
		Workers:    workers,
		MqttClient: mqttClient,
		Processor:  processor,
		Logger:     logger,
	}
}

// Start subscribes to the heartbeat topic.
func (s *MQTTIngestService) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.Logger.Warn().Msg("MQTTIngestService is already running")
		return errors.New("mqtt ingest service is already running")
	}
	pool := utils.NewWorkerPool(s.Workers, s.Workers*16)
	s.pool.Store(pool)
	s.running = true
	s.mu.Unlock()

	if err := s.subscribe(); err != nil {
		s.mu.Lock()
		s.running = false
		s.pool.Store(nil)
		s.mu.Unlock()
		pool.Shutdown()
		return err
	}

	s.Logger.Info().Str("topic", s.SubTopic).Int("workers", s.Workers).Msg("MQTTIngestService started successfully")
	return nil
}

// Resubscribe restores the subscription after the client reconnects.
func (s *MQTTIngestService) Resubscribe() {
	s.mu.Lock()
	running := s.running
	s.mu.Unlock()

	if !running {
		return
	}
	if err := s.subscribe(); err != nil {
		s.Logger.Error().Err(err).Msg("Failed to restore heartbeat subscription")
	}
}

func (s *MQTTIngestService) subscribe() error {
	token := s.MqttClient.Subscribe(s.SubTopic, byte(s.QOS), s.handleMessage)
	token.Wait()
	if err := token.Error(); err != nil {
		s.Logger.Error().Err(err).Str("topic", s.SubTopic).Msg("Failed to subscribe to heartbeat topic")
		return fmt.Errorf("failed to subscribe to %s: %w", s.SubTopic, err)
	}
	return nil
}

// Stop unsubscribes and waits for queued heartbeats to be applied.
func (s *MQTTIngestService) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		s.Logger.Warn().Msg("MQTTIngestService is not running")
		return errors.New("mqtt ingest service is not running")
	}
	pool := s.pool.Swap(nil)
	s.running = false
	s.mu.Unlock()

	token := s.MqttClient.Unsubscribe(s.SubTopic)
	token.Wait()
	err := token.Error()
	if err != nil {
		s.Logger.Warn().Err(err).Msg("Failed to unsubscribe from heartbeat topic")
	}

	pool.Shutdown()

	s.Logger.Info().Msg("MQTTIngestService stopped successfully")
	return err
}

// handleMessage hands the payload to the worker pool so the MQTT client's
// delivery goroutine is never blocked by registry work.
func (s *MQTTIngestService) handleMessage(_ mqttLib.Client, msg mqttLib.Message) {
	pool := s.pool.Load()
	if pool == nil {
		return
	}

	payload := msg.Payload()
	topic := msg.Topic()
	if !pool.Submit(func() { s.process(topic, payload) }) {
		s.Logger.Debug().Str("topic", topic).Msg("Dropping heartbeat received during shutdown")
	}
}

func (s *MQTTIngestService) process(topic string, payload []byte) {
	req, isNew, err := s.Processor.Process(payload)
	if err != nil {
		s.Logger.Warn().
			Err(err).
			Str("topic", topic).
			Str("system_id", req.SystemID).
			Msg("Heartbeat rejected")
		return
	}

	s.Logger.Debug().
		Str("system_id", req.SystemID).
		Bool("new", isNew).
		Msg("Heartbeat received over MQTT")
}
