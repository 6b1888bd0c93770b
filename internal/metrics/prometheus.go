// Package metrics exports presence and heartbeat counters to Prometheus.
package metrics

import (
	"github.com/benmeehan/status-monitor/internal/presence"
	"github.com/prometheus/client_golang/prometheus"
)

// PresenceMetrics follows registry transitions and heartbeat outcomes.
// It is both a presence.Listener and an ingest.Recorder.
type PresenceMetrics struct {
	online      prometheus.Gauge
	cameOnline  prometheus.Counter
	wentOffline prometheus.Counter
	heartbeats  *prometheus.CounterVec
}

var _ presence.Listener = (*PresenceMetrics)(nil)

// NewPresenceMetrics creates the collectors and registers them with reg
// (prometheus.DefaultRegisterer if nil) under namespace ("status_monitor" if empty).
func NewPresenceMetrics(reg prometheus.Registerer, namespace string) *PresenceMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "status_monitor"
	}

	m := &PresenceMetrics{
		online: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "systems_online",
			Help:      "Number of systems currently online.",
		}),
		cameOnline: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "systems_came_online_total",
			Help:      "Total offline to online transitions.",
		}),
		wentOffline: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "systems_went_offline_total",
			Help:      "Total systems removed after their heartbeat timed out.",
		}),
		heartbeats: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "heartbeats_total",
			Help:      "Heartbeats received by outcome.",
		}, []string{"result"}),
	}

	reg.MustRegister(m.online, m.cameOnline, m.wentOffline, m.heartbeats)
	return m
}

func (m *PresenceMetrics) SystemOnline(presence.Record) {
	m.online.Inc()
	m.cameOnline.Inc()
}

func (m *PresenceMetrics) SystemOffline(presence.Record) {
	m.online.Dec()
	m.wentOffline.Inc()
}

// RecordHeartbeat counts one processed heartbeat.
func (m *PresenceMetrics) RecordHeartbeat(result string) {
	m.heartbeats.WithLabelValues(result).Inc()
}
