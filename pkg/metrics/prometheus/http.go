package prometheus

import (
	"strconv"
	"sync"
	"time"

	"github.com/marmos91/appfx/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func init() {
	metrics.RegisterHTTPMetricsConstructor(NewHTTPMetrics)
}

// httpMetrics is the Prometheus implementation of metrics.HTTPMetrics.
type httpMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

var (
	httpMu    sync.Mutex
	httpByReg = map[*prometheus.Registry]*httpMetrics{}
)

// NewHTTPMetrics returns the web host request metrics bound to the active
// registry, or nil if metrics are not enabled.
func NewHTTPMetrics() metrics.HTTPMetrics {
	reg := metrics.GetRegistry()
	if reg == nil {
		return nil
	}

	httpMu.Lock()
	defer httpMu.Unlock()

	if m, ok := httpByReg[reg]; ok {
		return m
	}

	m := &httpMetrics{
		requests: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "appfx_http_requests_total",
				Help: "Total number of HTTP requests served by the web host",
			},
			[]string{"route", "method", "status"},
		),
		duration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "appfx_http_request_duration_milliseconds",
				Help:    "Duration of HTTP requests in milliseconds",
				Buckets: []float64{0.5, 1, 5, 10, 50, 100, 500, 1000},
			},
			[]string{"route"},
		),
	}

	httpByReg[reg] = m
	return m
}

func (m *httpMetrics) ObserveRequest(route, method string, status int, duration time.Duration) {
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(route).Observe(float64(duration.Microseconds()) / 1000.0)
}
