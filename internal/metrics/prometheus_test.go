package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/benmeehan/status-monitor/internal/auth"
	"github.com/benmeehan/status-monitor/internal/ingest"
	"github.com/benmeehan/status-monitor/internal/metrics"
	"github.com/benmeehan/status-monitor/internal/presence"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, reg *prometheus.Registry) string {
	t.Helper()
	rr := httptest.NewRecorder()
	promhttp.HandlerFor(reg, promhttp.HandlerOpts{}).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	return rr.Body.String()
}

func TestPresenceMetrics_TracksTransitionsAndHeartbeats(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewPresenceMetrics(reg, "")

	verifier, err := auth.NewVerifier("secret", "")
	require.NoError(t, err)

	now := time.UnixMilli(1_700_000_000_000)
	registry := presence.NewRegistry(time.Second)
	registry.AddListener(m)
	processor := ingest.NewProcessor(registry, verifier, func() time.Time { return now })
	processor.Recorder = m

	_, _, err = processor.Process([]byte(`{"password":"secret","systemId":"a","systemName":"A"}`))
	require.NoError(t, err)
	_, _, err = processor.Process([]byte(`{"password":"secret","systemId":"a","systemName":"A"}`))
	require.NoError(t, err)
	_, _, err = processor.Process([]byte(`{"password":"secret","systemId":"b","systemName":"B"}`))
	require.NoError(t, err)
	_, _, err = processor.Process([]byte(`{"password":"nope","systemId":"c","systemName":"C"}`))
	require.Error(t, err)
	_, _, err = processor.Process([]byte(`garbage`))
	require.Error(t, err)

	body := scrape(t, reg)
	assert.Contains(t, body, "status_monitor_systems_online 2")
	assert.Contains(t, body, "status_monitor_systems_came_online_total 2")
	assert.Contains(t, body, `status_monitor_heartbeats_total{result="accepted"} 3`)
	assert.Contains(t, body, `status_monitor_heartbeats_total{result="unauthorized"} 1`)
	assert.Contains(t, body, `status_monitor_heartbeats_total{result="invalid"} 1`)

	registry.Sweep(now.Add(2 * time.Second))

	body = scrape(t, reg)
	assert.Contains(t, body, "status_monitor_systems_online 0")
	assert.Contains(t, body, "status_monitor_systems_went_offline_total 2")
}
