package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// useRecorder installs an in-memory span recorder and restores the no-op
// tracer when the test finishes.
func useRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	UseProvider(tp)
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		mu.Lock()
		tracer = nil
		tracerProvider = nil
		enabled = false
		mu.Unlock()
	})
	return rec
}

func attrValue(attrs []attribute.KeyValue, key string) (attribute.Value, bool) {
	for _, kv := range attrs {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.False(t, cfg.Enabled)
	assert.Equal(t, "appfx", cfg.ServiceName)
	assert.Equal(t, "dev", cfg.ServiceVersion)
	assert.Equal(t, "localhost:4317", cfg.Endpoint)
	assert.True(t, cfg.Insecure)
	assert.Equal(t, 1.0, cfg.SampleRate)
}

func TestInitDisabled(t *testing.T) {
	ctx := context.Background()
	cfg := DefaultConfig()
	cfg.Enabled = false

	shutdown, err := Init(ctx, cfg)
	require.NoError(t, err)
	require.NotNil(t, shutdown)

	assert.NoError(t, shutdown(ctx))
	assert.False(t, IsEnabled())
}

func TestTracerReturnsNoOp(t *testing.T) {
	mu.Lock()
	tracer = nil
	enabled = false
	mu.Unlock()

	require.NotNil(t, Tracer())
}

func TestNoOpHelpersDoNotPanic(t *testing.T) {
	ctx := context.Background()

	newCtx, span := StartSpan(ctx, "test.operation")
	require.NotNil(t, newCtx)
	require.NotNil(t, span)
	span.End()

	require.NotNil(t, SpanFromContext(ctx))
	require.NotPanics(t, func() {
		AddEvent(ctx, "test.event")
		RecordError(ctx, nil)
		RecordError(ctx, errors.New("test error"))
		SetStatus(ctx, codes.Ok, "success")
		SetAttributes(ctx, Phase("Running"))
	})

	assert.Equal(t, "", TraceID(ctx))
	assert.Equal(t, "", SpanID(ctx))
}

func TestAttributeHelpers(t *testing.T) {
	tests := []struct {
		name string
		attr attribute.KeyValue
		key  string
		want any
	}{
		{"InstanceID", InstanceID("inst-1"), AttrInstanceID, "inst-1"},
		{"Phase", Phase("MetaCreated"), AttrPhase, "MetaCreated"},
		{"Event", Event("Started"), AttrEvent, "Started"},
		{"Topology", Topology("web"), AttrTopology, "web"},
		{"Plugin", Plugin("sales"), AttrPlugin, "sales"},
		{"PluginCount", PluginCount(2), AttrPluginCount, int64(2)},
		{"Catalog", Catalog("desktop"), AttrCatalog, "desktop"},
		{"CommandCount", CommandCount(7), AttrCommandCount, int64(7)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.key, string(tt.attr.Key))
			assert.Equal(t, tt.want, tt.attr.Value.AsInterface())
		})
	}
}

func TestStepSpansNestUnderStartup(t *testing.T) {
	rec := useRecorder(t)
	ctx := context.Background()

	assert.True(t, IsEnabled())

	ctx, root := StartStartupSpan(ctx, "inst-1", Topology("web"))
	assert.NotEmpty(t, TraceID(ctx))
	assert.NotEmpty(t, SpanID(ctx))

	stepCtx, step := StartStepSpan(ctx, "plugins", PluginCount(2))
	_, pluginSpan := StartPluginSpan(stepCtx, "create", "sales")
	pluginSpan.End()
	RecordError(stepCtx, errors.New("boom"))
	step.End()
	root.End()

	ended := rec.Ended()
	require.Len(t, ended, 3)

	byName := map[string]sdktrace.ReadOnlySpan{}
	for _, s := range ended {
		byName[s.Name()] = s
	}

	rootSpan := byName["app.startup"]
	require.NotNil(t, rootSpan)
	v, ok := attrValue(rootSpan.Attributes(), AttrInstanceID)
	require.True(t, ok)
	assert.Equal(t, "inst-1", v.AsString())

	stepSpan := byName["app.plugins"]
	require.NotNil(t, stepSpan)
	assert.Equal(t, rootSpan.SpanContext().SpanID(), stepSpan.Parent().SpanID())
	assert.Equal(t, codes.Error, stepSpan.Status().Code)
	v, ok = attrValue(stepSpan.Attributes(), AttrStep)
	require.True(t, ok)
	assert.Equal(t, "plugins", v.AsString())

	created := byName["plugin.create"]
	require.NotNil(t, created)
	assert.Equal(t, stepSpan.SpanContext().SpanID(), created.Parent().SpanID())
}
