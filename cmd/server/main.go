package main

import (
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/benmeehan/status-monitor/internal/api"
	"github.com/benmeehan/status-monitor/internal/auth"
	"github.com/benmeehan/status-monitor/internal/ingest"
	"github.com/benmeehan/status-monitor/internal/metrics"
	"github.com/benmeehan/status-monitor/internal/presence"
	"github.com/benmeehan/status-monitor/internal/service_registry"
	"github.com/benmeehan/status-monitor/internal/services"
	"github.com/benmeehan/status-monitor/internal/utils"
	"github.com/benmeehan/status-monitor/pkg/file"
	"github.com/benmeehan/status-monitor/pkg/mqtt"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

func main() {
	bootLog := zerolog.New(os.Stderr).With().Timestamp().Logger()

	configFile := os.Getenv("CONFIG_FILE")
	if configFile == "" {
		configFile = "configs/server.yaml"
	}

	fileClient := file.NewFileService()

	// Load configuration from file
	config, err := utils.LoadConfig(configFile, fileClient)
	if err != nil {
		bootLog.Fatal().Err(err).Str("file", configFile).Msg("Failed to load configuration")
	}

	log, err := utils.NewLogger(config.Log, os.Stdout)
	if err != nil {
		bootLog.Fatal().Err(err).Msg("Invalid log configuration")
	}

	verifier, err := auth.NewVerifier(config.Auth.Password, config.Auth.PasswordHash)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to configure shared secret")
	}

	startTime := time.Now()
	registry := presence.NewRegistry(config.Presence.Timeout)
	registry.AddListener(presence.NewLogListener(log))
	processor := ingest.NewProcessor(registry, verifier, presence.SystemClock)

	serverOptions := []func(*api.Server){
		api.WithStartTime(startTime),
		api.WithStaticDir(config.Server.StaticDir),
	}
	if config.Metrics.Enabled {
		promRegistry := prometheus.NewRegistry()
		presenceMetrics := metrics.NewPresenceMetrics(promRegistry, "")
		registry.AddListener(presenceMetrics)
		processor.Recorder = presenceMetrics
		serverOptions = append(serverOptions,
			api.WithMetricsHandler(config.Metrics.Path, promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{})))
	}

	server := api.NewServer(registry, processor, log, serverOptions...)

	deps := service_registry.ServerDeps{
		Registry:  registry,
		Processor: processor,
		Handler:   server,
		Clock:     presence.SystemClock,
	}

	// Initialize the shared MQTT connection when MQTT heartbeats are enabled
	var mqttClient *mqtt.MqttService
	var ingestService atomic.Pointer[services.MQTTIngestService]
	if config.MQTT.Enabled {
		clientID := config.MQTT.ClientID + "-" + uuid.New().String()
		log.Info().Str("client_id", clientID).Msg("Using MQTT Client ID")

		mqttClient = mqtt.NewMqttService(fileClient)
		err = mqttClient.Initialize(mqtt.Options{
			Broker:        config.MQTT.Broker,
			ClientID:      clientID,
			CACertificate: config.MQTT.CACertificate,
			Username:      config.MQTT.Username,
			Password:      config.MQTT.Password,
			OnConnect: func() {
				// Clean sessions drop subscriptions on reconnect.
				if svc := ingestService.Load(); svc != nil {
					svc.Resubscribe()
				}
			},
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize MQTT connection")
		}
		deps.MqttClient = mqttClient
	}

	serviceRegistry := service_registry.NewServiceRegistry(log)
	if err := serviceRegistry.RegisterServerServices(config, deps); err != nil {
		log.Fatal().Err(err).Msg("Failed to register services")
	}
	if svc, ok := serviceRegistry.Get("mqtt_ingest"); ok {
		ingestService.Store(svc.(*services.MQTTIngestService))
	}

	if err := serviceRegistry.StartServices(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start services")
	}
	log.Info().
		Int("port", config.Server.Port).
		Dur("ping_timeout", config.Presence.Timeout).
		Dur("sweep_interval", config.Presence.SweepInterval).
		Msg("Status monitor server running")

	// Handle graceful shutdown
	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)
	<-stopCh

	log.Info().Msg("Shutting down gracefully...")
	if err := serviceRegistry.StopServices(); err != nil {
		log.Error().Err(err).Msg("Some services failed to stop cleanly")
	}
	if mqttClient != nil {
		mqttClient.Disconnect(250)
	}
	log.Info().Msg("Server closed")
}
