package constants

import "time"

const (
	// DefaultPort is the HTTP listening port when neither config nor PORT set one.
	DefaultPort = 3000

	// DefaultShutdownTimeout bounds how long Stop waits for in-flight requests.
	DefaultShutdownTimeout = 5 * time.Second

	DefaultReadTimeout  = 10 * time.Second
	DefaultWriteTimeout = 10 * time.Second
	DefaultIdleTimeout  = 60 * time.Second

	// MaxPingBodySize caps the size of a heartbeat payload.
	MaxPingBodySize = 1 << 20 // 1MB
)

const (
	// DefaultMQTTTopic is the topic heartbeats are published to over MQTT.
	DefaultMQTTTopic = "status-monitor/ping"

	// DefaultMQTTWorkers is the number of workers processing MQTT heartbeats.
	DefaultMQTTWorkers = 4
)

const (
	// DefaultAgentInterval is the agent's heartbeat period, a third of the server timeout.
	DefaultAgentInterval = 30 * time.Second

	// DefaultRequestTimeout bounds one HTTP heartbeat round trip from the agent.
	DefaultRequestTimeout = 10 * time.Second

	// Agent transports
	TransportHTTP = "http"
	TransportMQTT = "mqtt"
)
