package metrics

import "time"

// BootstrapMetrics records application startup behavior.
type BootstrapMetrics interface {
	// SetPhase marks phase as the current phase of the application.
	SetPhase(phase string)

	// ObserveStep records the duration and outcome of one startup step.
	ObserveStep(step string, duration time.Duration, err error)

	// RecordEvent counts a fired lifecycle event.
	RecordEvent(event string)

	// RecordPluginLoaded counts a plugin loaded at startup or at runtime.
	RecordPluginLoaded(stage string)

	// RecordLateRegistration counts commands contributed after startup.
	// rejected is true when the target catalog was frozen.
	RecordLateRegistration(catalog string, rejected bool)

	// SetCatalogSize records the number of commands in a catalog.
	SetCatalogSize(catalog string, n int)

	// SetOverlayCount records the number of loaded customization overlays.
	SetOverlayCount(n int)
}

// NewBootstrapMetrics creates a Prometheus-backed BootstrapMetrics.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
func NewBootstrapMetrics() BootstrapMetrics {
	if !IsEnabled() || newPrometheusBootstrapMetrics == nil {
		return nil
	}
	return newPrometheusBootstrapMetrics()
}

// newPrometheusBootstrapMetrics is implemented in pkg/metrics/prometheus.
var newPrometheusBootstrapMetrics func() BootstrapMetrics

// RegisterBootstrapMetricsConstructor registers the Prometheus constructor.
// Called by pkg/metrics/prometheus during package initialization.
func RegisterBootstrapMetricsConstructor(constructor func() BootstrapMetrics) {
	newPrometheusBootstrapMetrics = constructor
}

// SetPhase records the current phase if m is non-nil.
func SetPhase(m BootstrapMetrics, phase string) {
	if m != nil {
		m.SetPhase(phase)
	}
}

// ObserveStep records a startup step if m is non-nil.
func ObserveStep(m BootstrapMetrics, step string, duration time.Duration, err error) {
	if m != nil {
		m.ObserveStep(step, duration, err)
	}
}

// RecordEvent counts a lifecycle event if m is non-nil.
func RecordEvent(m BootstrapMetrics, event string) {
	if m != nil {
		m.RecordEvent(event)
	}
}

// RecordPluginLoaded counts a plugin load if m is non-nil.
func RecordPluginLoaded(m BootstrapMetrics, stage string) {
	if m != nil {
		m.RecordPluginLoaded(stage)
	}
}

// RecordLateRegistration counts a late command registration if m is non-nil.
func RecordLateRegistration(m BootstrapMetrics, catalog string, rejected bool) {
	if m != nil {
		m.RecordLateRegistration(catalog, rejected)
	}
}

// SetCatalogSize records a catalog size if m is non-nil.
func SetCatalogSize(m BootstrapMetrics, catalog string, n int) {
	if m != nil {
		m.SetCatalogSize(catalog, n)
	}
}

// SetOverlayCount records the overlay count if m is non-nil.
func SetOverlayCount(m BootstrapMetrics, n int) {
	if m != nil {
		m.SetOverlayCount(n)
	}
}
