package models

// PingRequest is the heartbeat payload a system sends, over HTTP or MQTT.
type PingRequest struct {
	Password   string `json:"password"`
	SystemID   string `json:"systemId"`
	SystemName string `json:"systemName"`
	SystemType string `json:"systemType,omitempty"`
}

// PingResponse acknowledges an accepted heartbeat.
type PingResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`

	// NextPingIn is the server's expiry window in milliseconds.
	NextPingIn int64 `json:"nextPingIn"`
}

// ErrorResponse is the body of every rejected request.
type ErrorResponse struct {
	Error string `json:"error"`
}
