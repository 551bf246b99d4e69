package logger

import (
	"log/slog"
)

// Standard field keys for structured logging.
// Use these keys consistently so startup logs can be aggregated and queried.
const (
	// Distributed tracing
	KeyTraceID = "trace_id"
	KeySpanID  = "span_id"

	// Application lifecycle
	KeyInstanceID = "instance_id" // Application instance (one per startup attempt)
	KeyPhase      = "phase"       // Created, Starting, MetaCreated, Running, Exited
	KeyEvent      = "event"       // Lifecycle event name
	KeyStep       = "step"        // Startup step (prepare, environment, plugins, ...)
	KeyComponent  = "component"

	// Plugins
	KeyPlugin      = "plugin"
	KeyModule      = "module"
	KeyPluginCount = "plugin_count"

	// Metadata registry
	KeyCommand  = "command"
	KeyCatalog  = "catalog" // web, desktop
	KeyCount    = "count"
	KeyEntity   = "entity"
	KeyBlock    = "block"
	KeyView     = "view"
	KeyPath     = "path"
	KeyOverlay  = "overlay"
	KeyFrozen   = "frozen"
	KeyTopology = "topology"
	KeyCulture  = "culture"

	// Identity and requests
	KeyIdentity  = "identity"
	KeyRequestID = "request_id"
	KeyRemote    = "remote_addr"

	// Operation metadata
	KeyDurationMs = "duration_ms"
	KeyError      = "error"
)

// InstanceID returns an attribute for the application instance id.
func InstanceID(id string) slog.Attr {
	return slog.String(KeyInstanceID, id)
}

// Phase returns an attribute for a startup phase.
func Phase(p string) slog.Attr {
	return slog.String(KeyPhase, p)
}

// Event returns an attribute for a lifecycle event name.
func Event(name string) slog.Attr {
	return slog.String(KeyEvent, name)
}

// Plugin returns an attribute for a plugin id.
func Plugin(id string) slog.Attr {
	return slog.String(KeyPlugin, id)
}

// Command returns an attribute for a command name.
func Command(name string) slog.Attr {
	return slog.String(KeyCommand, name)
}

// Catalog returns an attribute naming a command catalog.
func Catalog(name string) slog.Attr {
	return slog.String(KeyCatalog, name)
}

// Topology returns an attribute for the runtime topology.
func Topology(t string) slog.Attr {
	return slog.String(KeyTopology, t)
}

// Culture returns an attribute for a culture name.
func Culture(name string) slog.Attr {
	return slog.String(KeyCulture, name)
}

// DurationMs returns an attribute for a duration in milliseconds.
func DurationMs(ms float64) slog.Attr {
	return slog.Float64(KeyDurationMs, ms)
}

// Err returns an attribute for an error. A nil error yields an empty attr.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}
