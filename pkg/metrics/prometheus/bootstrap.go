// Package prometheus implements pkg/metrics interfaces with client_golang.
//
// Import it for side effects to enable the constructors:
//
//	import _ "github.com/marmos91/appfx/pkg/metrics/prometheus"
package prometheus

import (
	"sync"
	"time"

	"github.com/marmos91/appfx/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Startup phases, mirrored from pkg/app so the gauge can zero the others.
var knownPhases = []string{"Created", "Starting", "MetaCreated", "Running", "Exited"}

func init() {
	metrics.RegisterBootstrapMetricsConstructor(NewBootstrapMetrics)
}

// bootstrapMetrics is the Prometheus implementation of metrics.BootstrapMetrics.
type bootstrapMetrics struct {
	phase             *prometheus.GaugeVec
	stepDuration      *prometheus.HistogramVec
	stepFailures      *prometheus.CounterVec
	events            *prometheus.CounterVec
	pluginsLoaded     *prometheus.CounterVec
	lateRegistrations *prometheus.CounterVec
	catalogSize       *prometheus.GaugeVec
	overlays          prometheus.Gauge
}

var (
	bootstrapMu    sync.Mutex
	bootstrapByReg = map[*prometheus.Registry]*bootstrapMetrics{}
)

// NewBootstrapMetrics returns the bootstrap metrics bound to the active
// registry. Every application instance shares one set per registry, since a
// restart creates a new instance against the same process registry.
//
// Returns nil if metrics are not enabled.
func NewBootstrapMetrics() metrics.BootstrapMetrics {
	reg := metrics.GetRegistry()
	if reg == nil {
		return nil
	}

	bootstrapMu.Lock()
	defer bootstrapMu.Unlock()

	if m, ok := bootstrapByReg[reg]; ok {
		return m
	}

	m := &bootstrapMetrics{
		phase: promauto.With(reg).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "appfx_app_phase",
				Help: "Current application phase (1 for the active phase, 0 otherwise)",
			},
			[]string{"phase"},
		),
		stepDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "appfx_startup_step_duration_milliseconds",
				Help: "Duration of startup steps in milliseconds",
				Buckets: []float64{
					0.1,  // in-memory resets
					1,    // 1ms
					5,    // 5ms
					10,   // 10ms
					50,   // 50ms
					100,  // 100ms
					500,  // 500ms - plugin initialization
					1000, // 1s
					5000, // 5s - directory scans on slow disks
				},
			},
			[]string{"step"},
		),
		stepFailures: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "appfx_startup_step_failures_total",
				Help: "Total number of failed startup steps",
			},
			[]string{"step"},
		),
		events: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "appfx_lifecycle_events_total",
				Help: "Total number of lifecycle events fired",
			},
			[]string{"event"},
		),
		pluginsLoaded: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "appfx_plugins_loaded_total",
				Help: "Total number of plugins loaded",
			},
			[]string{"stage"}, // startup, runtime
		),
		lateRegistrations: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "appfx_late_command_registrations_total",
				Help: "Commands contributed by plugins loaded after startup",
			},
			[]string{"catalog", "result"}, // result: accepted, rejected
		),
		catalogSize: promauto.With(reg).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "appfx_command_catalog_size",
				Help: "Number of commands registered per catalog",
			},
			[]string{"catalog"},
		),
		overlays: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "appfx_customization_overlays",
				Help: "Number of customization overlays currently loaded",
			},
		),
	}

	bootstrapByReg[reg] = m
	return m
}

func (m *bootstrapMetrics) SetPhase(phase string) {
	for _, p := range knownPhases {
		if p == phase {
			m.phase.WithLabelValues(p).Set(1)
		} else {
			m.phase.WithLabelValues(p).Set(0)
		}
	}
}

func (m *bootstrapMetrics) ObserveStep(step string, duration time.Duration, err error) {
	m.stepDuration.WithLabelValues(step).Observe(float64(duration.Microseconds()) / 1000.0)
	if err != nil {
		m.stepFailures.WithLabelValues(step).Inc()
	}
}

func (m *bootstrapMetrics) RecordEvent(event string) {
	m.events.WithLabelValues(event).Inc()
}

func (m *bootstrapMetrics) RecordPluginLoaded(stage string) {
	m.pluginsLoaded.WithLabelValues(stage).Inc()
}

func (m *bootstrapMetrics) RecordLateRegistration(catalog string, rejected bool) {
	result := "accepted"
	if rejected {
		result = "rejected"
	}
	m.lateRegistrations.WithLabelValues(catalog, result).Inc()
}

func (m *bootstrapMetrics) SetCatalogSize(catalog string, n int) {
	m.catalogSize.WithLabelValues(catalog).Set(float64(n))
}

func (m *bootstrapMetrics) SetOverlayCount(n int) {
	m.overlays.Set(float64(n))
}
