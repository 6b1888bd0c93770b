package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/benmeehan/status-monitor/internal/api"
	"github.com/benmeehan/status-monitor/internal/mocks"
	"github.com/benmeehan/status-monitor/internal/models"
	"github.com/benmeehan/status-monitor/internal/services"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testPing = models.PingRequest{
	Password:   "secret",
	SystemID:   "s1",
	SystemName: "Agent1",
	SystemType: "TypeA",
}

func TestHTTPPublisher_AgainstServer(t *testing.T) {
	registry, processor := newIngestFixture(t)
	ts := httptest.NewServer(api.NewServer(registry, processor, zerolog.Nop()))
	defer ts.Close()

	publisher := services.NewHTTPPublisher(ts.URL+"/", time.Second)

	resp, err := publisher.Publish(context.Background(), testPing)
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "Ping received", resp.Message)
	assert.Equal(t, time.Minute.Milliseconds(), resp.NextPingIn)
	assert.Equal(t, 1, registry.Count())

	wrong := testPing
	wrong.Password = "wrong"
	_, err = publisher.Publish(context.Background(), wrong)
	assert.EqualError(t, err, "server rejected heartbeat (401): Invalid password")
}

func TestHTTPPublisher_NonJSONError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/ping", r.URL.Path)
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, "upstream down")
	}))
	defer ts.Close()

	_, err := services.NewHTTPPublisher(ts.URL, time.Second).Publish(context.Background(), testPing)
	assert.ErrorContains(t, err, "502")
}

func TestMQTTPublisher_PublishesJSON(t *testing.T) {
	mqttClient := new(mocks.MQTTClient)
	mqttClient.On("Publish", "status-monitor/ping", byte(1), false, mock.MatchedBy(func(payload []byte) bool {
		var got models.PingRequest
		return json.Unmarshal(payload, &got) == nil && got == testPing
	})).Return(mocks.NewCompletedToken(nil))

	resp, err := services.NewMQTTPublisher("status-monitor/ping", 1, mqttClient).Publish(context.Background(), testPing)

	require.NoError(t, err)
	assert.Nil(t, resp)
	mqttClient.AssertExpectations(t)
}

func TestMQTTPublisher_PublishError(t *testing.T) {
	mqttClient := new(mocks.MQTTClient)
	mqttClient.On("Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(mocks.NewCompletedToken(errors.New("not connected")))

	_, err := services.NewMQTTPublisher("t", 0, mqttClient).Publish(context.Background(), testPing)
	assert.ErrorContains(t, err, "not connected")
}
