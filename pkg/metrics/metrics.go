// Package metrics exposes optional Prometheus instrumentation.
//
// Metrics are disabled until InitRegistry is called. While disabled every
// constructor returns nil and every helper is a no-op, so instrumented code
// pays nothing. Implementations live in pkg/metrics/prometheus and register
// their constructors here, which keeps callers free of the client library.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	mu       sync.RWMutex
	registry *prometheus.Registry
)

// InitRegistry enables metrics with a fresh registry that also carries the
// Go runtime and process collectors.
func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	UseRegistry(reg)
	return reg
}

// UseRegistry enables metrics backed by reg. Tests pass a bare registry.
func UseRegistry(reg *prometheus.Registry) {
	mu.Lock()
	defer mu.Unlock()
	registry = reg
}

// Disable turns metrics off. Existing metric instances keep working against
// the old registry.
func Disable() {
	mu.Lock()
	defer mu.Unlock()
	registry = nil
}

// IsEnabled reports whether InitRegistry or UseRegistry was called.
func IsEnabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return registry != nil
}

// GetRegistry returns the active registry, or nil when disabled.
func GetRegistry() *prometheus.Registry {
	mu.RLock()
	defer mu.RUnlock()
	return registry
}

// Handler serves the active registry in the Prometheus exposition format.
// It returns nil when metrics are disabled.
func Handler() http.Handler {
	reg := GetRegistry()
	if reg == nil {
		return nil
	}
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}
