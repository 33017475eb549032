// Package metric exposes Prometheus metrics for commands, maneuvers and
// joint writes.
package metric

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Command statuses.
const (
	StatusOK        = "ok"
	StatusSkipped   = "skipped"
	StatusUnknown   = "unknown"
	StatusMalformed = "malformed"
	StatusCancelled = "cancelled"
	StatusError     = "error"
)

// Metrics holds the hexapod's collectors.
type Metrics struct {
	CommandsTotal     *prometheus.CounterVec
	ManeuverDuration  *prometheus.HistogramVec
	JointSkips        *prometheus.CounterVec
	JointWrites       *prometheus.CounterVec
	ActiveConnections *prometheus.GaugeVec
}

// NewMetrics creates the collectors without registering them.
func NewMetrics() *Metrics {
	return &Metrics{
		CommandsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "hexapod",
				Subsystem: "commands",
				Name:      "total",
				Help:      "Total number of commands handled",
			},
			[]string{"command", "status"},
		),

		ManeuverDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "hexapod",
				Subsystem: "maneuver",
				Name:      "duration_seconds",
				Help:      "Scripted maneuver duration in seconds",
				Buckets:   []float64{0.05, 0.25, 0.5, 1, 2, 4, 8, 16, 32},
			},
			[]string{"maneuver"},
		),

		JointSkips: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "hexapod",
				Subsystem: "joint",
				Name:      "skips_total",
				Help:      "Joint moves skipped during maneuvers",
			},
			[]string{"command"},
		),

		JointWrites: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "hexapod",
				Subsystem: "joint",
				Name:      "writes_total",
				Help:      "PWM writes per joint",
			},
			[]string{"joint"},
		),

		ActiveConnections: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "hexapod",
				Subsystem: "transport",
				Name:      "active_connections",
				Help:      "Open client connections",
			},
			[]string{"transport"},
		),
	}
}

// Collectors returns every collector for registration.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.CommandsTotal,
		m.ManeuverDuration,
		m.JointSkips,
		m.JointWrites,
		m.ActiveConnections,
	}
}

// RecordCommand counts a handled command.
func (m *Metrics) RecordCommand(command, status string) {
	m.CommandsTotal.WithLabelValues(command, status).Inc()
}

// RecordManeuver records how long a maneuver ran.
func (m *Metrics) RecordManeuver(maneuver string, d time.Duration) {
	m.ManeuverDuration.WithLabelValues(maneuver).Observe(d.Seconds())
}

// RecordSkips adds n skipped joint moves for command.
func (m *Metrics) RecordSkips(command string, n int) {
	if n > 0 {
		m.JointSkips.WithLabelValues(command).Add(float64(n))
	}
}

// RecordWrite counts one joint write.
func (m *Metrics) RecordWrite(joint string) {
	m.JointWrites.WithLabelValues(joint).Inc()
}

// ConnectionOpened counts an open transport session.
func (m *Metrics) ConnectionOpened(transport string) {
	m.ActiveConnections.WithLabelValues(transport).Inc()
}

// ConnectionClosed uncounts a session opened with ConnectionOpened.
func (m *Metrics) ConnectionClosed(transport string) {
	m.ActiveConnections.WithLabelValues(transport).Dec()
}

// Registry is a Prometheus registry carrying the hexapod metrics plus Go
// runtime and process collectors.
type Registry struct {
	registry *prometheus.Registry
	Metrics  *Metrics
}

// NewRegistry creates a registry with all metrics registered.
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
		Metrics:  NewMetrics(),
	}
	r.registry.MustRegister(r.Metrics.Collectors()...)
	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
