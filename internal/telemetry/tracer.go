package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys for bootstrap spans.
const (
	AttrInstanceID = "app.instance_id"
	AttrPhase      = "app.phase"
	AttrStep       = "app.step"
	AttrEvent      = "app.event"
	AttrTopology   = "app.topology"
	AttrCulture    = "app.culture"

	AttrPlugin      = "plugin.id"
	AttrPluginCount = "plugin.count"

	AttrCatalog      = "meta.catalog"
	AttrCommandCount = "meta.command_count"
)

// InstanceID returns an attribute for the application instance id.
func InstanceID(id string) attribute.KeyValue {
	return attribute.String(AttrInstanceID, id)
}

// Phase returns an attribute for a startup phase.
func Phase(p string) attribute.KeyValue {
	return attribute.String(AttrPhase, p)
}

// Event returns an attribute for a lifecycle event.
func Event(name string) attribute.KeyValue {
	return attribute.String(AttrEvent, name)
}

// Topology returns an attribute for the runtime topology.
func Topology(t string) attribute.KeyValue {
	return attribute.String(AttrTopology, t)
}

// Culture returns an attribute for the UI culture.
func Culture(name string) attribute.KeyValue {
	return attribute.String(AttrCulture, name)
}

// Plugin returns an attribute for a plugin id.
func Plugin(id string) attribute.KeyValue {
	return attribute.String(AttrPlugin, id)
}

// PluginCount returns an attribute for a number of plugins.
func PluginCount(n int) attribute.KeyValue {
	return attribute.Int(AttrPluginCount, n)
}

// Catalog returns an attribute naming a command catalog.
func Catalog(name string) attribute.KeyValue {
	return attribute.String(AttrCatalog, name)
}

// CommandCount returns an attribute for a number of commands.
func CommandCount(n int) attribute.KeyValue {
	return attribute.Int(AttrCommandCount, n)
}

// StartStartupSpan starts the root span covering one application startup.
func StartStartupSpan(ctx context.Context, instanceID string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append([]attribute.KeyValue{InstanceID(instanceID)}, attrs...)
	return Tracer().Start(ctx, "app.startup",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}

// StartStepSpan starts a child span for a single startup step
// (prepare, environment, plugins, create_meta, main_process, ...).
func StartStepSpan(ctx context.Context, step string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append([]attribute.KeyValue{attribute.String(AttrStep, step)}, attrs...)
	return Tracer().Start(ctx, "app."+step, trace.WithAttributes(attrs...))
}

// StartPluginSpan starts a span around creating or initializing one plugin.
func StartPluginSpan(ctx context.Context, operation, pluginID string) (context.Context, trace.Span) {
	return Tracer().Start(ctx, "plugin."+operation, trace.WithAttributes(Plugin(pluginID)))
}
