package models

// SystemStatus describes one online system. Times are Unix milliseconds,
// durations are milliseconds.
type SystemStatus struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	LastPing int64  `json:"lastPing"`
	Uptime   int64  `json:"uptime"`
}

// StatusResponse is returned by the status endpoint.
type StatusResponse struct {
	Systems     []SystemStatus `json:"systems"`
	LastUpdate  int64          `json:"lastUpdate"`
	TotalOnline int            `json:"totalOnline"`
}

// HealthResponse is returned by the health endpoint.
type HealthResponse struct {
	Status string `json:"status"`

	// Uptime is the process uptime in seconds.
	Uptime        float64 `json:"uptime"`
	OnlineSystems int     `json:"onlineSystems"`
}
