package plugin

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/marmos91/appfx/internal/logger"
	"github.com/marmos91/appfx/internal/telemetry"
	"github.com/marmos91/appfx/pkg/metrics"
)

// Load stages reported to metrics.
const (
	StageStartup = "startup"
	StageRuntime = "runtime"
)

// Directory enumerates registered plugins and drives their lifecycle.
//
// Factories are registered before startup and survive Reset. Plugin
// instances and runtime-load subscribers belong to one startup and are
// cleared by Reset.
//
// Thread safety:
// All methods are safe for concurrent use. Runtime loads are serialized so
// subscribers observe plugins one at a time, in load order.
type Directory struct {
	mu          sync.RWMutex
	factories   []Factory
	plugins     []Plugin
	ids         map[string]struct{}
	subscribers []RuntimeLoadedFunc
	metrics     metrics.BootstrapMetrics

	// loadMu serializes LoadRuntimePlugin without holding mu while plugin
	// code and subscribers run.
	loadMu sync.Mutex
}

// NewDirectory creates a directory with the given factories registered.
func NewDirectory(factories ...Factory) *Directory {
	d := &Directory{ids: make(map[string]struct{})}
	for _, f := range factories {
		d.Register(f)
	}
	return d
}

// Register adds a plugin factory. Nil factories are ignored.
func (d *Directory) Register(f Factory) {
	if f == nil {
		return
	}
	d.mu.Lock()
	d.factories = append(d.factories, f)
	d.mu.Unlock()
}

// SetMetrics sets the metrics sink for plugin loads. nil disables metrics.
func (d *Directory) SetMetrics(m metrics.BootstrapMetrics) {
	d.mu.Lock()
	d.metrics = m
	d.mu.Unlock()
}

// CreateStartupPlugins instantiates every registered factory in
// registration order, replacing any previously created plugins.
func (d *Directory) CreateStartupPlugins(ctx context.Context) error {
	d.mu.RLock()
	factories := make([]Factory, len(d.factories))
	copy(factories, d.factories)
	d.mu.RUnlock()

	plugins := make([]Plugin, 0, len(factories))
	ids := make(map[string]struct{}, len(factories))
	for i, f := range factories {
		if err := ctx.Err(); err != nil {
			return err
		}
		p, err := f()
		if err != nil {
			return fmt.Errorf("create plugin #%d: %w", i, err)
		}
		if err := validate(p); err != nil {
			return fmt.Errorf("create plugin #%d: %w", i, err)
		}
		if _, dup := ids[p.ID()]; dup {
			return fmt.Errorf("create plugin %q: %w", p.ID(), ErrDuplicatePlugin)
		}
		ids[p.ID()] = struct{}{}
		plugins = append(plugins, p)
		logger.DebugCtx(ctx, "Plugin created", logger.Plugin(p.ID()))
	}

	d.mu.Lock()
	d.plugins = plugins
	d.ids = ids
	d.mu.Unlock()
	return nil
}

// InitExtensions calls RegisterExtensions on every startup plugin that is an
// ExtensionProvider, in order.
func (d *Directory) InitExtensions(ctx context.Context, host Host) error {
	for _, p := range d.AllPlugins() {
		ext, ok := p.(ExtensionProvider)
		if !ok {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		spanCtx, span := telemetry.StartPluginSpan(ctx, "extensions", p.ID())
		err := ext.RegisterExtensions(spanCtx, host)
		if err != nil {
			telemetry.RecordError(spanCtx, err)
		}
		span.End()
		if err != nil {
			return fmt.Errorf("register extensions of plugin %q: %w", p.ID(), err)
		}
	}
	return nil
}

// InitializeStartupPlugins calls Initialize on every startup plugin in
// creation order. The first failure stops initialization.
func (d *Directory) InitializeStartupPlugins(ctx context.Context, host Host) error {
	d.mu.RLock()
	m := d.metrics
	d.mu.RUnlock()

	for _, p := range d.AllPlugins() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := initialize(ctx, p, host); err != nil {
			return err
		}
		metrics.RecordPluginLoaded(m, StageStartup)
	}
	return nil
}

// AllPlugins returns a snapshot of the loaded plugins, startup plugins first
// followed by runtime plugins in load order.
func (d *Directory) AllPlugins() []Plugin {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]Plugin, len(d.plugins))
	copy(out, d.plugins)
	return out
}

// Get returns the loaded plugin with the given id.
func (d *Directory) Get(id string) (Plugin, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, p := range d.plugins {
		if p.ID() == id {
			return p, true
		}
	}
	return nil, false
}

// Len returns the number of loaded plugins.
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.plugins)
}

// OnRuntimePluginLoaded subscribes fn to runtime plugin loads. Subscribers
// run in subscription order.
func (d *Directory) OnRuntimePluginLoaded(fn RuntimeLoadedFunc) {
	if fn == nil {
		return
	}
	d.mu.Lock()
	d.subscribers = append(d.subscribers, fn)
	d.mu.Unlock()
}

// LoadRuntimePlugin loads a plugin after startup.
//
// The plugin is initialized (extensions first), appended to the directory,
// and then every subscriber is notified. Subscriber failures do not unload
// the plugin; they are joined and returned so the caller learns which
// contributions were refused.
func (d *Directory) LoadRuntimePlugin(ctx context.Context, p Plugin, host Host) error {
	if err := validate(p); err != nil {
		return err
	}

	d.loadMu.Lock()
	defer d.loadMu.Unlock()

	d.mu.RLock()
	_, dup := d.ids[p.ID()]
	m := d.metrics
	d.mu.RUnlock()
	if dup {
		return fmt.Errorf("load plugin %q: %w", p.ID(), ErrDuplicatePlugin)
	}

	if ext, ok := p.(ExtensionProvider); ok {
		if err := ext.RegisterExtensions(ctx, host); err != nil {
			return fmt.Errorf("register extensions of plugin %q: %w", p.ID(), err)
		}
	}
	if err := initialize(ctx, p, host); err != nil {
		return err
	}

	d.mu.Lock()
	d.plugins = append(d.plugins, p)
	d.ids[p.ID()] = struct{}{}
	subscribers := make([]RuntimeLoadedFunc, len(d.subscribers))
	copy(subscribers, d.subscribers)
	d.mu.Unlock()

	metrics.RecordPluginLoaded(m, StageRuntime)
	logger.InfoCtx(ctx, "Runtime plugin loaded", logger.Plugin(p.ID()),
		logger.KeyCount, len(subscribers))

	var errs []error
	for _, fn := range subscribers {
		if err := fn(ctx, p); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Reset forgets all plugin instances and subscribers. Registered factories
// are kept.
func (d *Directory) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.plugins = nil
	d.ids = make(map[string]struct{})
	d.subscribers = nil
}

func validate(p Plugin) error {
	if p == nil {
		return ErrNilPlugin
	}
	if p.ID() == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidPlugin)
	}
	return nil
}

func initialize(ctx context.Context, p Plugin, host Host) error {
	if lc := logger.FromContext(ctx); lc != nil {
		ctx = logger.WithContext(ctx, lc.WithPlugin(p.ID()))
	}
	spanCtx, span := telemetry.StartPluginSpan(ctx, "initialize", p.ID())
	defer span.End()

	if err := p.Initialize(spanCtx, host); err != nil {
		telemetry.RecordError(spanCtx, err)
		return fmt.Errorf("initialize plugin %q: %w", p.ID(), err)
	}
	logger.DebugCtx(spanCtx, "Plugin initialized")
	return nil
}
