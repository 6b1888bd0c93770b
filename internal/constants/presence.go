package constants

import "time"

const (
	// DefaultPingTimeout is how long a system stays online without a heartbeat.
	DefaultPingTimeout = 90 * time.Second

	// DefaultSweepInterval is how often expired systems are removed.
	DefaultSweepInterval = 30 * time.Second

	// UnknownSystemType is stored when a heartbeat carries no system type.
	UnknownSystemType = "Unknown"
)

// Health statuses
const (
	// HealthStatusHealthy is reported by the health endpoint while the process serves requests
	HealthStatusHealthy = "healthy"
)
