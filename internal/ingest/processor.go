// Package ingest validates heartbeat payloads and applies them to the
// presence registry. The HTTP ping endpoint and the MQTT subscriber share it so
// both transports accept and reject exactly the same payloads.
package ingest

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/benmeehan/status-monitor/internal/auth"
	"github.com/benmeehan/status-monitor/internal/models"
	"github.com/benmeehan/status-monitor/internal/presence"
)

var errNotObject = errors.New("body is not a JSON object")

// Recorder observes the outcome of every processed heartbeat.
type Recorder interface {
	RecordHeartbeat(result string)
}

// Processor turns raw heartbeat payloads into registry updates.
type Processor struct {
	Registry *presence.Registry
	Verifier auth.Verifier
	Clock    presence.Clock
	Recorder Recorder // optional
}

// NewProcessor creates a Processor. A nil clock uses presence.SystemClock.
func NewProcessor(registry *presence.Registry, verifier auth.Verifier, clock presence.Clock) *Processor {
	if clock == nil {
		clock = presence.SystemClock
	}
	return &Processor{
		Registry: registry,
		Verifier: verifier,
		Clock:    clock,
	}
}

// Decode parses body as a ping request. Anything other than a JSON object is
// a ValidationError. Fields are read leniently: a field that is not a JSON
// string is treated as absent, so a numeric password fails authentication and
// a numeric systemId fails the required-fields check.
func Decode(body []byte) (models.PingRequest, error) {
	var req models.PingRequest

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return req, &ValidationError{Message: MsgInvalidBody, Err: errNotObject}
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return req, &ValidationError{Message: MsgInvalidBody, Err: err}
	}

	req.Password = stringField(fields, "password")
	req.SystemID = stringField(fields, "systemId")
	req.SystemName = stringField(fields, "systemName")
	req.SystemType = stringField(fields, "systemType")
	return req, nil
}

// stringField returns fields[key] if it holds a JSON string, else "".
func stringField(fields map[string]json.RawMessage, key string) string {
	raw, ok := fields[key]
	if !ok {
		return ""
	}
	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		return ""
	}
	return v
}

// Process decodes and applies one heartbeat. It reports whether the system
// came online with this heartbeat. The registry is untouched on any error.
func (p *Processor) Process(body []byte) (models.PingRequest, bool, error) {
	req, err := Decode(body)
	if err != nil {
		p.record(err)
		return req, false, err
	}
	isNew, err := p.Apply(req)
	p.record(err)
	return req, isNew, err
}

func (p *Processor) record(err error) {
	if p.Recorder != nil {
		p.Recorder.RecordHeartbeat(Result(err))
	}
}

// Apply checks the secret and required fields of an already decoded request
// and records the heartbeat. The secret is checked first.
func (p *Processor) Apply(req models.PingRequest) (bool, error) {
	if !p.Verifier.Verify(req.Password) {
		return false, &AuthError{Message: MsgInvalidPassword}
	}
	if req.SystemID == "" || req.SystemName == "" {
		return false, &ValidationError{Message: MsgMissingFields}
	}

	isNew, err := p.Registry.Touch(req.SystemID, req.SystemName, req.SystemType, p.Clock())
	if err != nil {
		return false, &ValidationError{Message: MsgMissingFields, Err: err}
	}
	return isNew, nil
}
