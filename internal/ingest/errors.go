package ingest

import (
	"errors"
	"net/http"
)

// Messages returned to the caller for rejected heartbeats.
const (
	MsgInvalidBody     = "Invalid or missing JSON body"
	MsgInvalidPassword = "Invalid password"
	MsgMissingFields   = "systemId and systemName are required"
)

// ValidationError reports a malformed body or missing required fields.
type ValidationError struct {
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *ValidationError) Unwrap() error { return e.Err }

// AuthError reports a heartbeat carrying the wrong shared secret.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string { return e.Message }

// StatusCode maps an ingest error to the HTTP status the caller should see.
func StatusCode(err error) int {
	var verr *ValidationError
	var aerr *AuthError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.As(err, &aerr):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the message safe to send back to the caller.
func PublicMessage(err error) string {
	var verr *ValidationError
	var aerr *AuthError
	switch {
	case errors.As(err, &verr):
		return verr.Message
	case errors.As(err, &aerr):
		return aerr.Message
	default:
		return "Internal server error"
	}
}

// Result labels the outcome of a heartbeat for metrics.
func Result(err error) string {
	switch StatusCode(err) {
	case http.StatusOK:
		return "accepted"
	case http.StatusBadRequest:
		return "invalid"
	case http.StatusUnauthorized:
		return "unauthorized"
	default:
		return "error"
	}
}
