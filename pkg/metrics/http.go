package metrics

import "time"

// HTTPMetrics records requests served by the web host.
type HTTPMetrics interface {
	ObserveRequest(route, method string, status int, duration time.Duration)
}

// NewHTTPMetrics creates a Prometheus-backed HTTPMetrics.
//
// Returns nil if metrics are not enabled.
func NewHTTPMetrics() HTTPMetrics {
	if !IsEnabled() || newPrometheusHTTPMetrics == nil {
		return nil
	}
	return newPrometheusHTTPMetrics()
}

var newPrometheusHTTPMetrics func() HTTPMetrics

// RegisterHTTPMetricsConstructor registers the Prometheus constructor.
func RegisterHTTPMetricsConstructor(constructor func() HTTPMetrics) {
	newPrometheusHTTPMetrics = constructor
}
