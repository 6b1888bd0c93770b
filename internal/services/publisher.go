package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/benmeehan/status-monitor/internal/models"
	http_utils "github.com/benmeehan/status-monitor/pkg/httpUtils"
	"github.com/benmeehan/status-monitor/pkg/mqtt"
)

// Publisher delivers one heartbeat to the status server. Publishers that get
// an acknowledgement return it; fire-and-forget publishers return nil.
type Publisher interface {
	Publish(ctx context.Context, req models.PingRequest) (*models.PingResponse, error)
}

// HTTPPublisher posts heartbeats to the server's ping endpoint.
type HTTPPublisher struct {
	URL    string
	Client *http.Client
}

// NewHTTPPublisher creates a publisher for the server at baseURL.
func NewHTTPPublisher(baseURL string, timeout time.Duration) *HTTPPublisher {
	return &HTTPPublisher{
		URL:    strings.TrimRight(baseURL, "/") + "/api/ping",
		Client: &http.Client{Timeout: timeout},
	}
}

// Publish sends req and returns the server's acknowledgement. A rejection is
// reported with the server's error message.
func (p *HTTPPublisher) Publish(ctx context.Context, req models.PingRequest) (*models.PingResponse, error) {
	var resp models.PingResponse
	err := http_utils.PostJSON(ctx, p.Client, p.URL, req, &resp)
	if err == nil {
		return &resp, nil
	}

	var statusErr *http_utils.StatusError
	if errors.As(err, &statusErr) {
		var body models.ErrorResponse
		if json.Unmarshal(statusErr.Body, &body) == nil && body.Error != "" {
			return nil, fmt.Errorf("server rejected heartbeat (%d): %s", statusErr.StatusCode, body.Error)
		}
	}
	return nil, err
}

// MQTTPublisher publishes heartbeats to the server's MQTT topic.
type MQTTPublisher struct {
	PubTopic   string
	QOS        int
	MqttClient mqtt.MQTTClient
}

// NewMQTTPublisher creates a publisher for topic.
func NewMQTTPublisher(pubTopic string, qos int, mqttClient mqtt.MQTTClient) *MQTTPublisher {
	return &MQTTPublisher{
		PubTopic:   pubTopic,
		QOS:        qos,
		MqttClient: mqttClient,
	}
}

// Publish sends req. MQTT gives no application level acknowledgement, so the
// response is always nil.
func (p *MQTTPublisher) Publish(ctx context.Context, req models.PingRequest) (*models.PingResponse, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize heartbeat message: %w", err)
	}

	token := p.MqttClient.Publish(p.PubTopic, byte(p.QOS), false, payload)
	select {
	case <-token.Done():
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("failed to publish heartbeat message: %w", err)
	}
	return nil, nil
}
