package utils

import (
	"fmt"
	"os"
	"time"

	"github.com/benmeehan/status-monitor/internal/constants"
	"github.com/benmeehan/status-monitor/pkg/file"
)

// AgentConfig represents the structure of the agent configuration file.
type AgentConfig struct {
	ServerURL      string        `yaml:"server_url"`      // Base URL of the status server
	Password       string        `yaml:"password"`        // Shared secret
	Interval       time.Duration `yaml:"interval"`        // Interval between heartbeats
	RequestTimeout time.Duration `yaml:"request_timeout"` // Timeout for one HTTP heartbeat
	Transport      string        `yaml:"transport"`       // http or mqtt

	Identity struct {
		File       string `yaml:"file"`        // Path to the system identity file
		SystemName string `yaml:"system_name"` // Overrides the host name
		SystemType string `yaml:"system_type"` // Overrides the detected platform
	} `yaml:"identity"`

	MQTT MQTTConfig `yaml:"mqtt"`
	Log  LogConfig  `yaml:"log"`
}

// DefaultAgentConfig returns the agent configuration used when no file is present.
func DefaultAgentConfig() *AgentConfig {
	var c AgentConfig
	c.ServerURL = fmt.Sprintf("http://localhost:%d", constants.DefaultPort)
	c.Interval = constants.DefaultAgentInterval
	c.RequestTimeout = constants.DefaultRequestTimeout
	c.Transport = constants.TransportHTTP
	c.Identity.File = "configs/identity.json"
	c.MQTT.ClientID = "status-agent"
	c.MQTT.Topic = constants.DefaultMQTTTopic
	c.MQTT.QOS = 1
	c.Log.Level = "info"
	return &c
}

// LoadAgentConfig loads the agent YAML configuration, then applies environment overrides.
func LoadAgentConfig(filename string, fileClient file.FileOperations) (*AgentConfig, error) {
	config := DefaultAgentConfig()

	exists, err := fileClient.IsFileExists(filename)
	if err != nil {
		return nil, err
	}
	if exists {
		if err := fileClient.ReadYamlFile(filename, config); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filename, err)
		}
	}

	if v := os.Getenv("STATUS_SERVER_URL"); v != "" {
		config.ServerURL = v
	}
	if v := os.Getenv("STATUS_PASSWORD"); v != "" {
		config.Password = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		config.Log.Level = v
	}
	return config, config.Validate()
}

// Validate rejects configurations the agent cannot run with.
func (c *AgentConfig) Validate() error {
	if c.Interval <= 0 {
		return fmt.Errorf("interval must be positive, got %s", c.Interval)
	}
	switch c.Transport {
	case constants.TransportHTTP:
		if c.ServerURL == "" {
			return fmt.Errorf("server_url is required for the http transport")
		}
	case constants.TransportMQTT:
		if c.MQTT.Broker == "" || c.MQTT.Topic == "" {
			return fmt.Errorf("mqtt.broker and mqtt.topic are required for the mqtt transport")
		}
	default:
		return fmt.Errorf("unknown transport %q", c.Transport)
	}
	return nil
}
