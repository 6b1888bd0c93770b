package service_registry

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/benmeehan/status-monitor/internal/ingest"
	"github.com/benmeehan/status-monitor/internal/presence"
	"github.com/benmeehan/status-monitor/internal/services"
	"github.com/benmeehan/status-monitor/internal/utils"
	"github.com/benmeehan/status-monitor/pkg/mqtt"
	"github.com/rs/zerolog"
)

// ServiceRegistry manages the lifecycle of the process's services.
type ServiceRegistry struct {
	services    map[string]services.Service // Stores registered services
	serviceKeys []string                    // Maintains order of service registration
	Logger      zerolog.Logger
}

// ServerDeps are the shared components the server services are built from.
type ServerDeps struct {
	Registry   *presence.Registry
	Processor  *ingest.Processor
	Handler    http.Handler
	MqttClient mqtt.MQTTClient // Only required when MQTT is enabled
	Clock      presence.Clock
}

// NewServiceRegistry initializes an empty service registry.
func NewServiceRegistry(logger zerolog.Logger) *ServiceRegistry {
	return &ServiceRegistry{
		services: make(map[string]services.Service),
		Logger:   logger,
	}
}

// RegisterService adds a new service to the registry.
func (sr *ServiceRegistry) RegisterService(name string, svc services.Service) {
	if _, exists := sr.services[name]; exists {
		sr.Logger.Warn().Msgf("Service %s is already registered", name)
		return
	}
	sr.services[name] = svc
	sr.serviceKeys = append(sr.serviceKeys, name)
	sr.Logger.Info().Msgf("Registered service: %s", name)
}

// Get returns the service registered under name.
func (sr *ServiceRegistry) Get(name string) (services.Service, bool) {
	svc, ok := sr.services[name]
	return svc, ok
}

// Names returns the registered service names in start order.
func (sr *ServiceRegistry) Names() []string {
	return append([]string(nil), sr.serviceKeys...)
}

// StartServices initiates all registered services in order.
// If a service fails to start, it stops already started services.
func (sr *ServiceRegistry) StartServices() error {
	startedServices := []string{}

	for _, name := range sr.serviceKeys {
		svc := sr.services[name]
		sr.Logger.Info().Msgf("Starting service: %s", name)
		if err := svc.Start(); err != nil {
			sr.Logger.Error().Err(err).Msgf("Failed to start service: %s", name)

			sr.Logger.Warn().Msg("Stopping already started services due to startup failure...")
			for i := len(startedServices) - 1; i >= 0; i-- {
				if stopErr := sr.services[startedServices[i]].Stop(); stopErr != nil {
					sr.Logger.Warn().Err(stopErr).Msgf("Failed to stop service: %s", startedServices[i])
				}
			}
			return fmt.Errorf("failed to start %s: %w", name, err)
		}
		startedServices = append(startedServices, name)
	}

	return nil
}

// StopServices stops all services in reverse order.
func (sr *ServiceRegistry) StopServices() error {
	var stopErrors []error
	for i := len(sr.serviceKeys) - 1; i >= 0; i-- {
		name := sr.serviceKeys[i]
		if err := sr.services[name].Stop(); err != nil {
			stopErrors = append(stopErrors, fmt.Errorf("failed to stop %s: %w", name, err))
		}
	}
	if len(stopErrors) > 0 {
		for _, e := range stopErrors {
			sr.Logger.Error().Err(e).Msg("Service stop failure")
		}
		return errors.Join(stopErrors...)
	}
	return nil
}

// RegisterServerServices builds and registers the status server's services.
func (sr *ServiceRegistry) RegisterServerServices(config *utils.Config, deps ServerDeps) error {
	servicesInOrder := []struct {
		name        string
		enabled     bool
		constructor func() (services.Service, error)
	}{
		{
			name:    "sweeper",
			enabled: true,
			constructor: func() (services.Service, error) {
				return services.NewSweeperService(
					deps.Registry,
					config.Presence.SweepInterval,
					deps.Clock,
					sr.Logger,
				), nil
			},
		},
		{
			name:    "http",
			enabled: true,
			constructor: func() (services.Service, error) {
				return services.NewHTTPService(
					config.Addr(),
					deps.Handler,
					config.Server.ReadTimeout,
					config.Server.WriteTimeout,
					config.Server.IdleTimeout,
					config.Server.ShutdownTimeout,
					sr.Logger,
				), nil
			},
		},
		{
			name:    "mqtt_ingest",
			enabled: config.MQTT.Enabled,
			constructor: func() (services.Service, error) {
				if deps.MqttClient == nil {
					return nil, errors.New("mqtt ingest requires an MQTT client")
				}
				return services.NewMQTTIngestService(
					config.MQTT.Topic,
					config.MQTT.QOS,
					config.MQTT.Workers,
					deps.MqttClient,
					deps.Processor,
					sr.Logger,
				), nil
			},
		},
	}

	registeredServices := []string{}
	for _, svc := range servicesInOrder {
		if !svc.enabled {
			sr.Logger.Debug().Str("service", svc.name).Msg("Service is disabled, skipping")
			continue
		}
		serviceInstance, err := svc.constructor()
		if err != nil {
			sr.Logger.Error().Err(err).Msgf("Failed to create %s service", svc.name)
			return err
		}
		sr.RegisterService(svc.name, serviceInstance)
		registeredServices = append(registeredServices, svc.name)
	}

	sr.Logger.Info().Msgf("Registered services in order: %v", registeredServices)
	return nil
}
