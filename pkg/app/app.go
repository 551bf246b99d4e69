// Package app drives application startup: it resets the registry store and
// environment, resolves culture and identity strategy, creates and
// initializes plugins, builds metadata, freezes the web-command catalog and
// starts the main process, firing ordered lifecycle events along the way.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/marmos91/appfx/internal/logger"
	"github.com/marmos91/appfx/pkg/config"
	"github.com/marmos91/appfx/pkg/env"
	"github.com/marmos91/appfx/pkg/meta"
	"github.com/marmos91/appfx/pkg/metrics"
	"github.com/marmos91/appfx/pkg/plugin"
)

var (
	// ErrAlreadyStarted is returned by Start on an instance that is not in
	// PhaseCreated. Restarting requires a new instance.
	ErrAlreadyStarted = errors.New("app: instance already started")

	// ErrAlreadyExited is returned by Exit after the first call.
	ErrAlreadyExited = errors.New("app: instance already exited")

	// ErrNilConfig is returned by New without a configuration.
	ErrNilConfig = errors.New("app: config is required")

	// ErrUnknownEvent is returned by On for events outside the closed set.
	ErrUnknownEvent = errors.New("app: unknown event")

	// ErrNilCallback is returned by On for nil callbacks.
	ErrNilCallback = errors.New("app: callback must not be nil")
)

// Callback handles a lifecycle event. A non-nil error aborts startup.
type Callback func(ctx context.Context, a *App) error

// Hook customizes one startup step.
type Hook func(ctx context.Context, a *App) error

// Context is everything one application instance works with. Consumers
// receive it explicitly instead of reaching for process-wide state.
type Context struct {
	Store   *meta.Store
	Env     *env.Environment
	Plugins *plugin.Directory
	Config  *config.Config
}

// Options configure an App.
type Options struct {
	// Config is required.
	Config *config.Config

	// Context reuses an existing store, environment and plugin directory,
	// for instance those of a previous instance being replaced. Startup
	// resets them. When nil, a fresh Context is built from Config.
	Context *Context

	// Plugins are registered with the plugin directory. A reused Context
	// keeps the registrations made by earlier instances.
	Plugins []plugin.Factory

	// Prepare runs after the base reset of PrepareToStartup.
	Prepare Hook

	// CreateMeta builds metadata that plugins did not register themselves.
	CreateMeta Hook

	// StartMainProcess starts the application's main work. It should not
	// block for the application's lifetime.
	StartMainProcess Hook

	// Metrics overrides the metrics sink. When nil, Prometheus metrics are
	// used if the registry is enabled.
	Metrics metrics.BootstrapMetrics
}

// App is one startup attempt of an application.
//
// An App starts at most once. After a failed or finished startup, build a
// new App; pass the old instance's Context in Options to keep using the same
// store and environment.
//
// Thread safety:
// Start runs on the caller's goroutine. Phase, On and OnPhaseChange are safe
// to call concurrently with it.
type App struct {
	id      string
	opts    Options
	appCtx  *Context
	metrics metrics.BootstrapMetrics
	phase   atomic.Int32

	mu        sync.Mutex
	callbacks map[Event][]Callback
	observers []func(Phase)
	exited    bool
}

// New creates an application in PhaseCreated.
func New(opts Options) (*App, error) {
	if opts.Config == nil {
		return nil, ErrNilConfig
	}

	appCtx := opts.Context
	if appCtx == nil {
		topology, err := env.ParseTopology(opts.Config.App.Topology)
		if err != nil {
			return nil, err
		}
		appCtx = &Context{
			Store:   meta.NewStore(),
			Env:     env.New(topology, opts.Config.App.RootDir),
			Plugins: plugin.NewDirectory(),
		}
	}
	appCtx.Config = opts.Config
	for _, f := range opts.Plugins {
		appCtx.Plugins.Register(f)
	}

	m := opts.Metrics
	if m == nil {
		m = metrics.NewBootstrapMetrics()
	}
	appCtx.Store.SetMetrics(m)
	appCtx.Plugins.SetMetrics(m)

	a := &App{
		id:        uuid.NewString(),
		opts:      opts,
		appCtx:    appCtx,
		metrics:   m,
		callbacks: make(map[Event][]Callback),
	}
	metrics.SetPhase(m, PhaseCreated.String())
	return a, nil
}

// InstanceID returns the unique id of this instance.
func (a *App) InstanceID() string { return a.id }

// Phase returns the current phase.
func (a *App) Phase() Phase { return Phase(a.phase.Load()) }

// Context returns the instance's context.
func (a *App) Context() *Context { return a.appCtx }

// Store returns the registry store.
func (a *App) Store() *meta.Store { return a.appCtx.Store }

// Plugins returns the plugin directory.
func (a *App) Plugins() *plugin.Directory { return a.appCtx.Plugins }

// Config returns the configuration.
func (a *App) Config() *config.Config { return a.appCtx.Config }

// Environment implements plugin.Host.
func (a *App) Environment() *env.Environment { return a.appCtx.Env }

// Metadata implements plugin.Host.
func (a *App) Metadata() plugin.Registry { return a.appCtx.Store }

// On subscribes cb to event. Callbacks for one event run in subscription
// order.
func (a *App) On(event Event, cb Callback) error {
	if !event.valid() {
		return fmt.Errorf("%w: %d", ErrUnknownEvent, int(event))
	}
	if cb == nil {
		return ErrNilCallback
	}
	a.mu.Lock()
	a.callbacks[event] = append(a.callbacks[event], cb)
	a.mu.Unlock()
	return nil
}

// OnPhaseChange registers fn to observe phase transitions. Observers run
// synchronously on the goroutine driving the transition.
func (a *App) OnPhaseChange(fn func(Phase)) {
	if fn == nil {
		return
	}
	a.mu.Lock()
	a.observers = append(a.observers, fn)
	a.mu.Unlock()
}

// LoadPlugin loads a plugin into the running application. Commands it
// contributes to a frozen catalog are refused and reported in the returned
// error; the plugin itself stays loaded.
func (a *App) LoadPlugin(ctx context.Context, p plugin.Plugin) error {
	return a.appCtx.Plugins.LoadRuntimePlugin(ctx, p, a)
}

// Exit fires the Exit event and moves to PhaseExited. Exit can be called
// once, whether or not the instance was started; later calls return
// ErrAlreadyExited. Callback errors are returned but do not prevent the
// transition.
func (a *App) Exit(ctx context.Context) error {
	a.mu.Lock()
	if a.exited {
		a.mu.Unlock()
		return ErrAlreadyExited
	}
	a.exited = true
	a.mu.Unlock()

	ctx = logger.WithContext(ctx, logger.NewLogContext(a.id).WithPhase(a.Phase().String()))
	err := a.fire(ctx, EventExit)
	a.setPhase(ctx, PhaseExited)
	if err != nil {
		logger.WarnCtx(ctx, "Exit callback failed", logger.Err(err))
	}
	return err
}

func (a *App) fire(ctx context.Context, event Event) error {
	a.mu.Lock()
	cbs := make([]Callback, len(a.callbacks[event]))
	copy(cbs, a.callbacks[event])
	a.mu.Unlock()

	metrics.RecordEvent(a.metrics, event.String())
	logger.DebugCtx(ctx, "Firing event", logger.Event(event.String()), logger.KeyCount, len(cbs))

	for i, cb := range cbs {
		if err := cb(ctx, a); err != nil {
			return fmt.Errorf("%s callback #%d: %w", event, i, err)
		}
	}
	return nil
}

// setPhase advances to p. Transitions to an earlier or equal phase are
// ignored, which keeps phases monotonic when Exit races with Start.
func (a *App) setPhase(ctx context.Context, p Phase) {
	for {
		cur := a.phase.Load()
		if int32(p) <= cur {
			return
		}
		if a.phase.CompareAndSwap(cur, int32(p)) {
			break
		}
	}
	a.phaseChanged(ctx, p)
}

func (a *App) phaseChanged(ctx context.Context, p Phase) {
	a.mu.Lock()
	observers := make([]func(Phase), len(a.observers))
	copy(observers, a.observers)
	a.mu.Unlock()

	metrics.SetPhase(a.metrics, p.String())
	logger.InfoCtx(ctx, "Application phase changed", logger.Phase(p.String()))
	for _, fn := range observers {
		fn(p)
	}
}
