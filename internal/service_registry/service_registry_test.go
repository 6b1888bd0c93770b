package service_registry_test

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/benmeehan/status-monitor/internal/mocks"
	"github.com/benmeehan/status-monitor/internal/presence"
	"github.com/benmeehan/status-monitor/internal/service_registry"
	"github.com/benmeehan/status-monitor/internal/services"
	"github.com/benmeehan/status-monitor/internal/utils"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// orderedService records the order of Start and Stop calls across services.
func orderedService(name string, calls *[]string, startErr error) *mocks.Service {
	svc := new(mocks.Service)
	svc.On("Start").Run(func(_ mock.Arguments) { *calls = append(*calls, "start:"+name) }).Return(startErr)
	svc.On("Stop").Run(func(_ mock.Arguments) { *calls = append(*calls, "stop:"+name) }).Return(nil)
	return svc
}

func TestRegisterService_IgnoresDuplicates(t *testing.T) {
	sr := service_registry.NewServiceRegistry(zerolog.Nop())
	first := new(mocks.Service)
	second := new(mocks.Service)

	sr.RegisterService("a", first)
	sr.RegisterService("a", second)

	svc, ok := sr.Get("a")
	require.True(t, ok)
	assert.Same(t, first, svc)
	assert.Equal(t, []string{"a"}, sr.Names())
}

func TestStartServices_RollsBackInReverseOrder(t *testing.T) {
	var calls []string
	sr := service_registry.NewServiceRegistry(zerolog.Nop())
	sr.RegisterService("a", orderedService("a", &calls, nil))
	sr.RegisterService("b", orderedService("b", &calls, nil))
	failing := orderedService("c", &calls, errors.New("boom"))
	sr.RegisterService("c", failing)

	err := sr.StartServices()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.Equal(t, []string{"start:a", "start:b", "start:c", "stop:b", "stop:a"}, calls)
	failing.AssertNotCalled(t, "Stop")
}

func TestStopServices_ReverseOrderAndJoinedErrors(t *testing.T) {
	var calls []string
	sr := service_registry.NewServiceRegistry(zerolog.Nop())
	sr.RegisterService("a", orderedService("a", &calls, nil))

	errFirst := errors.New("first failed")
	errSecond := errors.New("second failed")
	b := new(mocks.Service)
	b.On("Stop").Run(func(_ mock.Arguments) { calls = append(calls, "stop:b") }).Return(errFirst)
	c := new(mocks.Service)
	c.On("Stop").Run(func(_ mock.Arguments) { calls = append(calls, "stop:c") }).Return(errSecond)
	sr.RegisterService("b", b)
	sr.RegisterService("c", c)

	err := sr.StopServices()

	assert.Equal(t, []string{"stop:c", "stop:b", "stop:a"}, calls)
	assert.ErrorIs(t, err, errFirst)
	assert.ErrorIs(t, err, errSecond)
}

func TestRegisterServerServices(t *testing.T) {
	cfg := utils.DefaultConfig()
	deps := service_registry.ServerDeps{
		Registry: presence.NewRegistry(time.Minute),
		Handler:  http.NotFoundHandler(),
	}

	t.Run("mqtt disabled", func(t *testing.T) {
		sr := service_registry.NewServiceRegistry(zerolog.Nop())
		require.NoError(t, sr.RegisterServerServices(cfg, deps))
		assert.Equal(t, []string{"sweeper", "http"}, sr.Names())

		sweeper, _ := sr.Get("sweeper")
		require.IsType(t, &services.SweeperService{}, sweeper)
		assert.Equal(t, cfg.Presence.SweepInterval, sweeper.(*services.SweeperService).Interval)
	})

	t.Run("mqtt enabled", func(t *testing.T) {
		mqttCfg := *cfg
		mqttCfg.MQTT.Enabled = true
		withClient := deps
		withClient.MqttClient = new(mocks.MQTTClient)

		sr := service_registry.NewServiceRegistry(zerolog.Nop())
		require.NoError(t, sr.RegisterServerServices(&mqttCfg, withClient))
		assert.Equal(t, []string{"sweeper", "http", "mqtt_ingest"}, sr.Names())
	})

	t.Run("mqtt enabled without client", func(t *testing.T) {
		mqttCfg := *cfg
		mqttCfg.MQTT.Enabled = true

		sr := service_registry.NewServiceRegistry(zerolog.Nop())
		assert.Error(t, sr.RegisterServerServices(&mqttCfg, deps))
	})
}
