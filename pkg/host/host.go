// Package host runs an application to completion: it drives the startup
// sequence, builds the metadata catalogs, serves the web surface when the
// topology is web, and keeps overlay and plugin watchers alive until exit.
package host

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sync"

	"github.com/marmos91/appfx/internal/logger"
	"github.com/marmos91/appfx/pkg/app"
	"github.com/marmos91/appfx/pkg/config"
	"github.com/marmos91/appfx/pkg/identity"
	"github.com/marmos91/appfx/pkg/meta"
	"github.com/marmos91/appfx/pkg/metrics"
	"github.com/marmos91/appfx/pkg/plugin"
)

// CommandsDirSetting is the app setting that overrides the web commands
// directory.
const CommandsDirSetting = "CommandsDir"

// Options configures a Host.
type Options struct {
	// Version is reported in logs.
	Version string

	// Plugins are compiled-in plugin factories, created before any
	// discovered directory plugin.
	Plugins []plugin.Factory

	// Inspect runs the startup sequence without the main process: no
	// watchers and no HTTP server. Used by the listing commands.
	Inspect bool
}

// Host owns one App and the processes it starts.
type Host struct {
	cfg     *config.Config
	version string
	inspect bool
	app     *app.App
	http    metrics.HTTPMetrics
	tokens  *TokenVerifier

	mu       sync.Mutex
	handler  http.Handler
	server   *Server
	cancel   context.CancelFunc
	watchers sync.WaitGroup
}

// New creates a host for cfg. Directory plugins under app.plugins_dir are
// discovered here so the startup sequence sees them with the compiled-in
// ones.
func New(cfg *config.Config, opts Options) (*Host, error) {
	h := &Host{
		cfg:     cfg,
		version: opts.Version,
		inspect: opts.Inspect,
		http:    metrics.NewHTTPMetrics(),
	}

	if secret := cfg.Server.JWTSecret; secret != "" {
		tokens, err := NewTokenVerifier(secret, cfg.Server.JWTIssuer)
		if err != nil {
			return nil, fmt.Errorf("server.jwt_secret: %w", err)
		}
		h.tokens = tokens
	}

	a, err := app.New(app.Options{
		Config:           cfg,
		Plugins:          opts.Plugins,
		CreateMeta:       h.createMeta,
		StartMainProcess: h.startMainProcess,
	})
	if err != nil {
		return nil, err
	}
	h.app = a

	if dir := h.pluginsDir(); dir != "" {
		factories, err := plugin.Discover(dir)
		if err != nil {
			return nil, fmt.Errorf("discover plugins: %w", err)
		}
		for _, f := range factories {
			a.Plugins().Register(f)
		}
		logger.Debug("Discovered directory plugins", logger.KeyPath, dir, logger.KeyPluginCount, len(factories))
	}

	if err := a.On(app.EventExit, h.shutdown); err != nil {
		return nil, err
	}
	return h, nil
}

// App returns the hosted application.
func (h *Host) App() *app.App { return h.app }

// Handler returns the HTTP surface, building it on first use.
func (h *Host) Handler() http.Handler {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.handler == nil {
		h.handler = NewRouter(h.app, h.http, h.tokens)
	}
	return h.handler
}

// Addr returns the HTTP listen address, or "" when no server is running.
func (h *Host) Addr() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.server == nil {
		return ""
	}
	return h.server.Addr()
}

// Run starts the application and blocks until ctx is done or the HTTP
// server fails, then exits the application.
func (h *Host) Run(ctx context.Context) error {
	logger.Info("Starting appfx",
		"version", h.version,
		logger.KeyInstanceID, h.app.InstanceID(),
		logger.KeyTopology, h.cfg.App.Topology)

	if err := h.app.Start(ctx); err != nil {
		// A failed start leaves background processes half-started.
		exitErr := h.app.Exit(context.WithoutCancel(ctx))
		return errors.Join(fmt.Errorf("startup failed: %w", err), exitErr)
	}

	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case serveErr = <-h.serverErrors():
	}

	exitErr := h.app.Exit(context.WithoutCancel(ctx))
	return errors.Join(serveErr, exitErr)
}

func (h *Host) serverErrors() <-chan error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.server == nil {
		return nil
	}
	return h.server.Errors()
}

func (h *Host) pluginsDir() string {
	if h.cfg.App.PluginsDir == "" {
		return ""
	}
	return h.app.Environment().MapAbsolutePath(h.cfg.App.PluginsDir)
}

// createMeta fills the command catalogs and checks every registered view.
func (h *Host) createMeta(ctx context.Context, a *app.App) error {
	dir := a.Config().GetAppSettingOrDefault(CommandsDirSetting, meta.DefaultCommandsDir)
	if err := a.Store().InitCommandMetas(ctx, a.Environment(), a.Plugins(), dir); err != nil {
		return err
	}
	views, err := a.Store().Views().CreateAll()
	if err != nil {
		return fmt.Errorf("create views: %w", err)
	}

	logger.InfoCtx(ctx, "Metadata created",
		"web_commands", a.Store().WebCommands().Len(),
		"desktop_commands", a.Store().DesktopCommands().Len(),
		"blocks", a.Store().AggtBlocks().Len(),
		"views", len(views))
	return nil
}

// startMainProcess launches the watchers and, for the web topology, the
// HTTP server. Watchers outlive the startup context and stop on exit.
func (h *Host) startMainProcess(ctx context.Context, a *app.App) error {
	if h.inspect {
		return nil
	}
	wctx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	h.mu.Lock()
	h.cancel = cancel
	h.mu.Unlock()

	overlays := a.Store().Overlays()
	if dir := overlays.Dir(); dir != "" && isDir(dir) {
		h.goWatch("overlays", func() error { return overlays.Watch(wctx) })
	}
	if dir := h.pluginsDir(); dir != "" && h.cfg.App.WatchPlugins {
		if !isDir(dir) {
			logger.WarnCtx(ctx, "Plugins directory does not exist, not watching", logger.KeyPath, dir)
		} else {
			h.goWatch("plugins", func() error { return a.Plugins().WatchDir(wctx, dir, a) })
		}
	}

	if !a.Environment().Topology().IsWeb() {
		return nil
	}

	if p, ok := a.Environment().IdentityProvider().(*identity.PerRequest); ok && p.PrincipalFunc == nil {
		p.PrincipalFunc = requestPrincipal
	}

	srv := NewServer(h.cfg.Server, h.Handler())
	if err := srv.Start(); err != nil {
		return err
	}
	h.mu.Lock()
	h.server = srv
	h.mu.Unlock()
	return nil
}

func (h *Host) goWatch(name string, fn func() error) {
	h.watchers.Add(1)
	go func() {
		defer h.watchers.Done()
		if err := fn(); err != nil {
			logger.Warn("Watcher stopped", logger.KeyComponent, name, logger.Err(err))
		}
	}()
}

// shutdown runs on EventExit.
func (h *Host) shutdown(ctx context.Context, _ *app.App) error {
	h.mu.Lock()
	cancel, srv := h.cancel, h.server
	h.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	h.watchers.Wait()

	if srv == nil {
		return nil
	}
	sctx, done := context.WithTimeout(ctx, h.cfg.ShutdownTimeout)
	defer done()
	return srv.Stop(sctx)
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
