package prometheus

import (
	"errors"
	"testing"
	"time"

	"github.com/marmos91/appfx/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useTestRegistry(t *testing.T) *prometheus.Registry {
	t.Helper()
	reg := prometheus.NewRegistry()
	metrics.UseRegistry(reg)
	t.Cleanup(metrics.Disable)
	return reg
}

func TestNewBootstrapMetricsDisabled(t *testing.T) {
	metrics.Disable()
	assert.Nil(t, NewBootstrapMetrics())
	assert.Nil(t, metrics.NewBootstrapMetrics())
}

func TestBootstrapMetricsSharedPerRegistry(t *testing.T) {
	useTestRegistry(t)

	first := metrics.NewBootstrapMetrics()
	second := metrics.NewBootstrapMetrics()
	require.NotNil(t, first)
	assert.Same(t, first, second)
}

func TestBootstrapMetricsRecords(t *testing.T) {
	useTestRegistry(t)

	m, ok := NewBootstrapMetrics().(*bootstrapMetrics)
	require.True(t, ok)

	m.SetPhase("Starting")
	m.SetPhase("Running")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.phase.WithLabelValues("Running")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.phase.WithLabelValues("Starting")))

	m.ObserveStep("plugins", 3*time.Millisecond, nil)
	m.ObserveStep("plugins", time.Millisecond, errors.New("boom"))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.stepFailures.WithLabelValues("plugins")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.stepDuration))

	m.RecordEvent("MetaCreated")
	m.RecordEvent("MetaCreated")
	assert.Equal(t, 2.0, testutil.ToFloat64(m.events.WithLabelValues("MetaCreated")))

	m.RecordPluginLoaded("runtime")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.pluginsLoaded.WithLabelValues("runtime")))

	m.RecordLateRegistration("web", true)
	m.RecordLateRegistration("desktop", false)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.lateRegistrations.WithLabelValues("web", "rejected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.lateRegistrations.WithLabelValues("desktop", "accepted")))

	m.SetCatalogSize("web", 4)
	assert.Equal(t, 4.0, testutil.ToFloat64(m.catalogSize.WithLabelValues("web")))

	m.SetOverlayCount(2)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.overlays))
}

func TestHTTPMetricsRecords(t *testing.T) {
	useTestRegistry(t)

	m, ok := metrics.NewHTTPMetrics().(*httpMetrics)
	require.True(t, ok)

	m.ObserveRequest("/health", "GET", 200, time.Millisecond)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("/health", "GET", "200")))
}
