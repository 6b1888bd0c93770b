package utils

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/benmeehan/status-monitor/internal/constants"
	"github.com/benmeehan/status-monitor/pkg/file"
)

// MQTTConfig holds broker connection settings shared by the server and the agent.
type MQTTConfig struct {
	Enabled       bool   `yaml:"enabled"`        // Enable/disable MQTT heartbeats
	Broker        string `yaml:"broker"`         // MQTT broker address
	ClientID      string `yaml:"client_id"`      // MQTT client ID prefix
	CACertificate string `yaml:"ca_certificate"` // Path to the CA certificate, empty for plain TCP
	Username      string `yaml:"username"`       // Broker username
	Password      string `yaml:"password"`       // Broker password
	Topic         string `yaml:"topic"`          // Heartbeat topic
	QOS           int    `yaml:"qos"`            // MQTT QoS level for heartbeat messages
	Workers       int    `yaml:"workers"`        // Workers processing received heartbeats (server only)
}

// LogConfig selects the log level and format.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn or error
	Pretty bool   `yaml:"pretty"` // Human readable console output instead of JSON
}

// Config represents the structure of the server configuration file.
type Config struct {
	Server struct {
		Port            int           `yaml:"port"`             // HTTP listening port
		StaticDir       string        `yaml:"static_dir"`       // Serve the dashboard from disk instead of the embedded copy
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"` // Upper bound on graceful HTTP shutdown
		ReadTimeout     time.Duration `yaml:"read_timeout"`     // Timeout for reading a request
		WriteTimeout    time.Duration `yaml:"write_timeout"`    // Timeout for writing a response
		IdleTimeout     time.Duration `yaml:"idle_timeout"`     // Keep-alive idle timeout
	} `yaml:"server"`

	Auth struct {
		Password     string `yaml:"password"`      // Shared secret every heartbeat must carry
		PasswordHash string `yaml:"password_hash"` // bcrypt hash of the shared secret, wins over password
	} `yaml:"auth"`

	Presence struct {
		Timeout       time.Duration `yaml:"timeout"`        // Systems without a heartbeat for longer are offline
		SweepInterval time.Duration `yaml:"sweep_interval"` // How often offline systems are removed
	} `yaml:"presence"`

	Metrics struct {
		Enabled bool   `yaml:"enabled"` // Expose Prometheus metrics
		Path    string `yaml:"path"`    // Route for the metrics endpoint
	} `yaml:"metrics"`

	MQTT MQTTConfig `yaml:"mqtt"`
	Log  LogConfig  `yaml:"log"`
}

// DefaultConfig returns the server configuration used when no file is present.
func DefaultConfig() *Config {
	var c Config
	c.Server.Port = constants.DefaultPort
	c.Server.ShutdownTimeout = constants.DefaultShutdownTimeout
	c.Server.ReadTimeout = constants.DefaultReadTimeout
	c.Server.WriteTimeout = constants.DefaultWriteTimeout
	c.Server.IdleTimeout = constants.DefaultIdleTimeout
	c.Presence.Timeout = constants.DefaultPingTimeout
	c.Presence.SweepInterval = constants.DefaultSweepInterval
	c.Metrics.Enabled = true
	c.Metrics.Path = "/metrics"
	c.MQTT.ClientID = "status-monitor"
	c.MQTT.Topic = constants.DefaultMQTTTopic
	c.MQTT.QOS = 1
	c.MQTT.Workers = constants.DefaultMQTTWorkers
	c.Log.Level = "info"
	return &c
}

// LoadConfig loads the YAML configuration from the specified file on top of
// DefaultConfig, then applies environment overrides. A missing file is not an error.
func LoadConfig(filename string, fileClient file.FileOperations) (*Config, error) {
	config := DefaultConfig()

	exists, err := fileClient.IsFileExists(filename)
	if err != nil {
		return nil, err
	}
	if exists {
		if err := fileClient.ReadYamlFile(filename, config); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filename, err)
		}
	}

	if err := config.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return config, config.Validate()
}

// applyEnv overrides file values with environment variables.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		c.Server.Port = port
	}
	if v, ok := lookup("STATUS_PASSWORD"); ok && v != "" {
		c.Auth.Password = v
	}
	if v, ok := lookup("STATUS_PASSWORD_HASH"); ok && v != "" {
		c.Auth.PasswordHash = v
	}
	if v, ok := lookup("PING_TIMEOUT"); ok && v != "" {
		d, err := parseDurationOrMillis(v)
		if err != nil {
			return fmt.Errorf("invalid PING_TIMEOUT %q: %w", v, err)
		}
		c.Presence.Timeout = d
	}
	if v, ok := lookup("SWEEP_INTERVAL"); ok && v != "" {
		d, err := parseDurationOrMillis(v)
		if err != nil {
			return fmt.Errorf("invalid SWEEP_INTERVAL %q: %w", v, err)
		}
		c.Presence.SweepInterval = d
	}
	if v, ok := lookup("LOG_LEVEL"); ok && v != "" {
		c.Log.Level = v
	}
	return nil
}

// Validate rejects configurations the server cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Server.Port)
	}
	if c.Presence.Timeout <= 0 {
		return fmt.Errorf("presence timeout must be positive, got %s", c.Presence.Timeout)
	}
	if c.Presence.SweepInterval <= 0 {
		return fmt.Errorf("sweep interval must be positive, got %s", c.Presence.SweepInterval)
	}
	if c.Auth.Password == "" && c.Auth.PasswordHash == "" {
		return fmt.Errorf("auth.password or auth.password_hash must be set")
	}
	if c.MQTT.Enabled && (c.MQTT.Broker == "" || c.MQTT.Topic == "") {
		return fmt.Errorf("mqtt.broker and mqtt.topic are required when mqtt is enabled")
	}
	return nil
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

// parseDurationOrMillis accepts Go durations ("90s") or bare milliseconds ("90000").
func parseDurationOrMillis(v string) (time.Duration, error) {
	if ms, err := strconv.ParseInt(v, 10, 64); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	return time.ParseDuration(v)
}
