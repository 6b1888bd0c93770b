package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/benmeehan/status-monitor/internal/constants"
	"github.com/benmeehan/status-monitor/internal/services"
	"github.com/benmeehan/status-monitor/internal/utils"
	"github.com/benmeehan/status-monitor/pkg/file"
	"github.com/benmeehan/status-monitor/pkg/identity"
	"github.com/benmeehan/status-monitor/pkg/mqtt"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

func main() {
	bootLog := zerolog.New(os.Stderr).With().Timestamp().Logger()

	configFile := os.Getenv("CONFIG_FILE")
	if configFile == "" {
		configFile = "configs/agent.yaml"
	}

	fileClient := file.NewFileService()

	// Load configuration from file
	config, err := utils.LoadAgentConfig(configFile, fileClient)
	if err != nil {
		bootLog.Fatal().Err(err).Str("file", configFile).Msg("Failed to load configuration")
	}

	log, err := utils.NewLogger(config.Log, os.Stdout)
	if err != nil {
		bootLog.Fatal().Err(err).Msg("Invalid log configuration")
	}

	// Initialize SystemInfo
	systemInfo := identity.NewSystemInfo(
		config.Identity.File,
		config.Identity.SystemName,
		config.Identity.SystemType,
		fileClient,
		identity.GopsutilHost,
	)
	if err := systemInfo.LoadSystemInfo(); err != nil {
		log.Fatal().Err(err).Msg("Failed to load system information")
	}
	log.Info().
		Str("system_id", systemInfo.GetSystemID()).
		Str("system_name", systemInfo.GetSystemName()).
		Str("system_type", systemInfo.GetSystemType()).
		Msg("Loaded system identity")

	var publisher services.Publisher
	var mqttClient *mqtt.MqttService
	switch config.Transport {
	case constants.TransportMQTT:
		clientID := config.MQTT.ClientID + "-" + uuid.New().String()
		mqttClient = mqtt.NewMqttService(fileClient)
		err = mqttClient.Initialize(mqtt.Options{
			Broker:        config.MQTT.Broker,
			ClientID:      clientID,
			CACertificate: config.MQTT.CACertificate,
			Username:      config.MQTT.Username,
			Password:      config.MQTT.Password,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize MQTT connection")
		}
		publisher = services.NewMQTTPublisher(config.MQTT.Topic, config.MQTT.QOS, mqttClient)
	default:
		publisher = services.NewHTTPPublisher(config.ServerURL, config.RequestTimeout)
	}

	heartbeat := services.NewHeartbeatService(
		config.Interval,
		config.RequestTimeout,
		config.Password,
		systemInfo,
		publisher,
		log,
	)
	if err := heartbeat.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start heartbeat service")
	}

	// Handle graceful shutdown
	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)
	<-stopCh

	log.Info().Msg("Shutting down gracefully...")
	if err := heartbeat.Stop(); err != nil {
		log.Error().Err(err).Msg("Failed to stop heartbeat service")
	}
	if mqttClient != nil {
		mqttClient.Disconnect(250)
	}
}
