package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/marmos91/appfx/internal/logger"
	"github.com/marmos91/appfx/internal/telemetry"
	"github.com/marmos91/appfx/pkg/env"
	"github.com/marmos91/appfx/pkg/i18n"
	"github.com/marmos91/appfx/pkg/identity"
	"github.com/marmos91/appfx/pkg/meta"
	"github.com/marmos91/appfx/pkg/metrics"
)

// Startup step names used in errors, spans, logs and metrics.
const (
	StepPrepare     = "prepare"
	StepEnvironment = "environment"
	StepPlugins     = "plugins"
	StepCreateMeta  = "create_meta"
	StepFreeze      = "freeze"
	StepRuntime     = "runtime"
	StepMainProcess = "main_process"
	StepCompleted   = "completed"
)

type step struct {
	name string
	run  func(ctx context.Context) error
}

// Start runs the startup sequence on the calling goroutine:
//
//  1. Phase becomes Starting
//  2. PrepareToStartup resets the environment, store and plugin directory
//  3. InitEnvironment resolves culture and identity strategy
//  4. Startup plugins are created and initialized; StartupPluginsInitialized fires
//  5. The CreateMeta hook runs; MetaCreating fires
//  6. The web-command catalog is frozen; MetaCreated fires; phase becomes MetaCreated
//  7. RuntimeStarting fires
//  8. The StartMainProcess hook runs
//  9. StartupCompleted fires; phase becomes Running
//
// Start may be called once, on an instance in PhaseCreated; otherwise it
// returns ErrAlreadyStarted. A failing step aborts startup: the error names
// the step and the phase stays at the last one reached. ctx is checked
// before every step.
func (a *App) Start(ctx context.Context) (err error) {
	if !a.phase.CompareAndSwap(int32(PhaseCreated), int32(PhaseStarting)) {
		return ErrAlreadyStarted
	}

	topology := a.appCtx.Env.Topology().String()
	ctx, span := telemetry.StartStartupSpan(ctx, a.id, telemetry.Topology(topology))
	defer func() {
		if err != nil {
			telemetry.RecordError(ctx, err)
		}
		span.End()
	}()

	lc := logger.NewLogContext(a.id).WithTrace(telemetry.TraceID(ctx), telemetry.SpanID(ctx))
	a.phaseChanged(logger.WithContext(ctx, lc.WithPhase(PhaseStarting.String())), PhaseStarting)
	logger.InfoCtx(logger.WithContext(ctx, lc), "Starting application", logger.Topology(topology))

	steps := []step{
		{StepPrepare, a.PrepareToStartup},
		{StepEnvironment, a.InitEnvironment},
		{StepPlugins, a.startPlugins},
		{StepCreateMeta, a.createMeta},
		{StepFreeze, a.freezeMeta},
		{StepRuntime, func(ctx context.Context) error { return a.fire(ctx, EventRuntimeStarting) }},
		{StepMainProcess, a.startMainProcess},
		{StepCompleted, a.completeStartup},
	}

	for _, s := range steps {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("startup step %s: %w", s.name, err)
		}
		stepCtx := logger.WithContext(ctx, lc.WithPhase(a.Phase().String()))
		if err := a.runStep(stepCtx, s); err != nil {
			return err
		}
	}

	logger.InfoCtx(logger.WithContext(ctx, lc.WithPhase(a.Phase().String())), "Application started",
		logger.DurationMs(lc.DurationMs()), logger.KeyPluginCount, a.appCtx.Plugins.Len())
	return nil
}

func (a *App) runStep(ctx context.Context, s step) error {
	start := time.Now()
	ctx, span := telemetry.StartStepSpan(ctx, s.name)
	defer span.End()

	err := s.run(ctx)
	metrics.ObserveStep(a.metrics, s.name, time.Since(start), err)
	if err != nil {
		telemetry.RecordError(ctx, err)
		logger.ErrorCtx(ctx, "Startup step failed", logger.KeyStep, s.name, logger.Err(err))
		return fmt.Errorf("startup step %s: %w", s.name, err)
	}
	logger.DebugCtx(ctx, "Startup step completed", logger.KeyStep, s.name,
		logger.KeyDurationMs, logger.Duration(start))
	return nil
}

// PrepareToStartup resets the environment, the registry store and the
// plugin directory's instances and subscribers, then runs the Prepare hook.
//
// It is also the recovery path after a failed startup: call it on the old
// instance, then start a new instance sharing the same Context.
func (a *App) PrepareToStartup(ctx context.Context) error {
	a.appCtx.Env.Reset()
	a.appCtx.Store.Reset()
	a.appCtx.Plugins.Reset()

	if a.opts.Prepare != nil {
		return a.opts.Prepare(ctx, a)
	}
	return nil
}

// InitEnvironment prepares the environment before plugins run:
//   - the configured culture is applied; unrecognized names are ignored
//   - the identity strategy is chosen from the topology
//   - customization overlays are loaded from the customization path
//   - this instance becomes the environment's active application
//   - the translator is enabled unless the culture is i18n.DevCulture
func (a *App) InitEnvironment(ctx context.Context) error {
	e := a.appCtx.Env
	cfg := a.appCtx.Config.App

	if name := strings.TrimSpace(cfg.CurrentCulture); name != "" {
		if err := e.SetUICulture(name); err != nil {
			logger.DebugCtx(ctx, "Ignoring configured culture", logger.Culture(name), logger.Err(err))
		}
	}

	if err := e.SetIdentityProvider(identityProviderFor(e.Topology())); err != nil {
		return err
	}

	e.SetCustomizationPath(cfg.CustomizationPath)
	overlays := a.appCtx.Store.Overlays()
	overlays.SetDir(e.CustomizationPath())
	if err := overlays.Load(); err != nil {
		return fmt.Errorf("load customization overlays: %w", err)
	}

	if err := e.SetApp(a); err != nil {
		return err
	}

	culture := e.UICulture()
	if !i18n.IsDevCulture(culture) {
		tr := e.Translator()
		if err := tr.SetCurrentCulture(culture); err != nil {
			return fmt.Errorf("configure translator: %w", err)
		}
		tr.SetEnabled(true)
	}

	telemetry.SetAttributes(ctx, telemetry.Culture(culture))
	logger.DebugCtx(ctx, "Environment initialized",
		logger.Culture(culture),
		logger.KeyIdentity, e.IdentityProvider().Kind().String(),
		logger.KeyPath, e.CustomizationPath())
	return nil
}

// identityProviderFor picks the identity strategy of a topology: one shared
// context on the desktop, one per request on the web, one per goroutine
// binding otherwise.
func identityProviderFor(t env.Topology) identity.Provider {
	switch t {
	case env.Desktop:
		return identity.NewShared()
	case env.Web:
		return identity.NewPerRequest()
	default:
		return identity.NewPerBinding()
	}
}

func (a *App) startPlugins(ctx context.Context) error {
	dir := a.appCtx.Plugins
	if err := dir.CreateStartupPlugins(ctx); err != nil {
		return err
	}
	if err := dir.InitExtensions(ctx, a); err != nil {
		return err
	}
	if err := dir.InitializeStartupPlugins(ctx, a); err != nil {
		return err
	}

	telemetry.SetAttributes(ctx, telemetry.PluginCount(dir.Len()))
	logger.InfoCtx(ctx, "Startup plugins initialized", logger.KeyPluginCount, dir.Len())
	return a.fire(ctx, EventStartupPluginsInitialized)
}

func (a *App) createMeta(ctx context.Context) error {
	if a.opts.CreateMeta != nil {
		if err := a.opts.CreateMeta(ctx, a); err != nil {
			return err
		}
	}
	return a.fire(ctx, EventMetaCreating)
}

func (a *App) freezeMeta(ctx context.Context) error {
	snap := a.appCtx.Store.Freeze()
	telemetry.SetAttributes(ctx, telemetry.Catalog(meta.CatalogWeb), telemetry.CommandCount(snap.Len()))
	logger.DebugCtx(ctx, "Web command catalog frozen", logger.KeyCount, snap.Len())

	if err := a.fire(ctx, EventMetaCreated); err != nil {
		return err
	}
	a.setPhase(ctx, PhaseMetaCreated)
	return nil
}

func (a *App) startMainProcess(ctx context.Context) error {
	if a.opts.StartMainProcess == nil {
		return nil
	}
	return a.opts.StartMainProcess(ctx, a)
}

func (a *App) completeStartup(ctx context.Context) error {
	if err := a.fire(ctx, EventStartupCompleted); err != nil {
		return err
	}
	a.setPhase(ctx, PhaseRunning)
	return nil
}
