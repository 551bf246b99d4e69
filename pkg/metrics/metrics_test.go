package metrics

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingMetrics struct {
	phases []string
	events []string
}

func (r *recordingMetrics) SetPhase(phase string) { r.phases = append(r.phases, phase) }
func (r *recordingMetrics) ObserveStep(string, time.Duration, error) {}
func (r *recordingMetrics) RecordEvent(event string) { r.events = append(r.events, event) }
func (r *recordingMetrics) RecordPluginLoaded(string) {}
func (r *recordingMetrics) RecordLateRegistration(string, bool) {}
func (r *recordingMetrics) SetCatalogSize(string, int) {}
func (r *recordingMetrics) SetOverlayCount(int) {}

func TestRegistryLifecycle(t *testing.T) {
	Disable()
	assert.False(t, IsEnabled())
	assert.Nil(t, GetRegistry())
	assert.Nil(t, Handler())

	reg := prometheus.NewRegistry()
	UseRegistry(reg)
	defer Disable()

	assert.True(t, IsEnabled())
	assert.Same(t, reg, GetRegistry())

	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "appfx_test_total", Help: "test"})
	reg.MustRegister(counter)
	counter.Inc()

	h := Handler()
	require.NotNil(t, h)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Contains(t, rec.Body.String(), "appfx_test_total 1")
}

func TestNilSafeHelpers(t *testing.T) {
	assert.NotPanics(t, func() {
		SetPhase(nil, "Running")
		ObserveStep(nil, "prepare", time.Millisecond, nil)
		RecordEvent(nil, "Exit")
		RecordPluginLoaded(nil, "startup")
		RecordLateRegistration(nil, "web", true)
		SetCatalogSize(nil, "web", 1)
		SetOverlayCount(nil, 1)
	})

	r := &recordingMetrics{}
	SetPhase(r, "Starting")
	RecordEvent(r, "MetaCreated")
	assert.Equal(t, []string{"Starting"}, r.phases)
	assert.Equal(t, []string{"MetaCreated"}, r.events)
}
