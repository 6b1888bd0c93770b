package ingest_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/benmeehan/status-monitor/internal/auth"
	"github.com/benmeehan/status-monitor/internal/constants"
	"github.com/benmeehan/status-monitor/internal/ingest"
	"github.com/benmeehan/status-monitor/internal/presence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func newTestProcessor(t *testing.T) (*ingest.Processor, *presence.Registry) {
	t.Helper()
	verifier, err := auth.NewVerifier("secret", "")
	require.NoError(t, err)

	registry := presence.NewRegistry(90 * time.Second)
	return ingest.NewProcessor(registry, verifier, func() time.Time { return fixedNow }), registry
}

func TestProcessor_Process_Success(t *testing.T) {
	p, registry := newTestProcessor(t)

	req, isNew, err := p.Process([]byte(`{"password":"secret","systemId":"s1","systemName":"Agent1","systemType":"TypeA"}`))
	require.NoError(t, err)
	assert.True(t, isNew)
	assert.Equal(t, "s1", req.SystemID)

	rec, ok := registry.Lookup("s1")
	require.True(t, ok)
	assert.Equal(t, "Agent1", rec.Name)
	assert.Equal(t, "TypeA", rec.Kind)
	assert.Equal(t, fixedNow, rec.LastPing)

	_, isNew, err = p.Process([]byte(`{"password":"secret","systemId":"s1","systemName":"Agent1"}`))
	require.NoError(t, err)
	assert.False(t, isNew)
}

func TestProcessor_Process_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		status  int
		message string
	}{
		{"empty body", ``, http.StatusBadRequest, ingest.MsgInvalidBody},
		{"malformed json", `{"password":`, http.StatusBadRequest, ingest.MsgInvalidBody},
		{"array body", `[1,2]`, http.StatusBadRequest, ingest.MsgInvalidBody},
		{"null body", `null`, http.StatusBadRequest, ingest.MsgInvalidBody},
		{"numeric systemId", `{"password":"secret","systemId":7,"systemName":"A"}`, http.StatusBadRequest, ingest.MsgMissingFields},
		{"object systemName", `{"password":"secret","systemId":"s1","systemName":{"x":1}}`, http.StatusBadRequest, ingest.MsgMissingFields},
		{"numeric password", `{"password":123,"systemId":"s1","systemName":"A"}`, http.StatusUnauthorized, ingest.MsgInvalidPassword},
		{"null password", `{"password":null,"systemId":"s1","systemName":"A"}`, http.StatusUnauthorized, ingest.MsgInvalidPassword},
		{"wrong password", `{"password":"nope","systemId":"s1","systemName":"A"}`, http.StatusUnauthorized, ingest.MsgInvalidPassword},
		{"missing password", `{"systemId":"s1","systemName":"A"}`, http.StatusUnauthorized, ingest.MsgInvalidPassword},
		{"password checked before fields", `{"password":"nope"}`, http.StatusUnauthorized, ingest.MsgInvalidPassword},
		{"empty systemId", `{"password":"secret","systemId":"","systemName":"A"}`, http.StatusBadRequest, ingest.MsgMissingFields},
		{"missing systemName", `{"password":"secret","systemId":"s1"}`, http.StatusBadRequest, ingest.MsgMissingFields},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, registry := newTestProcessor(t)

			_, isNew, err := p.Process([]byte(tt.body))
			require.Error(t, err)
			assert.False(t, isNew)
			assert.Equal(t, tt.status, ingest.StatusCode(err))
			assert.Equal(t, tt.message, ingest.PublicMessage(err))
			assert.Equal(t, 0, registry.Count())
		})
	}
}

func TestStatusCode_Unknown(t *testing.T) {
	assert.Equal(t, http.StatusOK, ingest.StatusCode(nil))
	assert.Equal(t, http.StatusInternalServerError, ingest.StatusCode(assert.AnError))
	assert.Equal(t, "Internal server error", ingest.PublicMessage(assert.AnError))
}

type resultRecorder struct {
	results []string
}

func (r *resultRecorder) RecordHeartbeat(result string) {
	r.results = append(r.results, result)
}

func TestProcessor_Process_RecordsOutcome(t *testing.T) {
	p, _ := newTestProcessor(t)
	rec := &resultRecorder{}
	p.Recorder = rec

	_, _, _ = p.Process([]byte(`{"password":"secret","systemId":"s1","systemName":"Agent1"}`))
	_, _, _ = p.Process([]byte(`{"password":"bad","systemId":"s1","systemName":"Agent1"}`))
	_, _, _ = p.Process([]byte(`{"password":"secret","systemId":"","systemName":"Agent1"}`))
	_, _, _ = p.Process([]byte(`[1,2]`))

	assert.Equal(t, []string{"accepted", "unauthorized", "invalid", "invalid"}, rec.results)
	assert.Equal(t, "error", ingest.Result(assert.AnError))
}

func TestProcessor_Process_NonStringSystemTypeIsUnknown(t *testing.T) {
	p, registry := newTestProcessor(t)

	_, isNew, err := p.Process([]byte(`{"password":"secret","systemId":"s1","systemName":"Agent1","systemType":5}`))
	require.NoError(t, err)
	assert.True(t, isNew)

	rec, ok := registry.Lookup("s1")
	require.True(t, ok)
	assert.Equal(t, constants.UnknownSystemType, rec.Kind)
}
