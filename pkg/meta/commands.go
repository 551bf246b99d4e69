package meta

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/marmos91/appfx/internal/logger"
	"github.com/marmos91/appfx/pkg/env"
	"github.com/marmos91/appfx/pkg/meta/command"
	"github.com/marmos91/appfx/pkg/metrics"
	"github.com/marmos91/appfx/pkg/plugin"
)

// DefaultCommandsDir is where application-level web command scripts live,
// relative to the environment root.
const DefaultCommandsDir = "Scripts/Commands/"

// AppCommandSource is the source recorded for application-level commands.
const AppCommandSource = "app"

// InitCommandMetas populates the command catalogs.
//
// In the web topology, scripts below commandsDir (DefaultCommandsDir when
// empty) are added first, if that directory exists, followed by the
// Commands/ resources of every loaded plugin. In every other topology the
// desktop catalog is populated from the plugins' declared desktop
// commands.
//
// It then subscribes to runtime plugin loads. Each load re-reads the
// topology and merges the plugin's commands into the matching catalog
// current at that moment. Web commands arriving after Freeze are refused
// with command.ErrCatalogFrozen; the refusal is logged, counted and
// returned to the runtime loader.
func (s *Store) InitCommandMetas(ctx context.Context, e *env.Environment, plugins *plugin.Directory, commandsDir string) error {
	if e.Topology().IsWeb() {
		if commandsDir == "" {
			commandsDir = DefaultCommandsDir
		}
		dir := e.MapAbsolutePath(commandsDir)
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			n, err := s.WebCommands().AddByDirectory(dir, AppCommandSource)
			if err != nil {
				return fmt.Errorf("load commands from %s: %w", dir, err)
			}
			logger.DebugCtx(ctx, "Application web commands loaded", logger.KeyPath, dir, logger.KeyCount, n)
		}
	}

	for _, p := range plugins.AllPlugins() {
		if err := s.addPluginCommands(ctx, e.Topology(), p); err != nil {
			return err
		}
	}

	m := s.getMetrics()
	metrics.SetCatalogSize(m, CatalogWeb, s.WebCommands().Len())
	metrics.SetCatalogSize(m, CatalogDesktop, s.DesktopCommands().Len())

	plugins.OnRuntimePluginLoaded(func(ctx context.Context, p plugin.Plugin) error {
		return s.addRuntimeCommands(ctx, e, p)
	})
	return nil
}

func (s *Store) addPluginCommands(ctx context.Context, topology env.Topology, p plugin.Plugin) error {
	mod := p.Module()
	if mod == nil {
		return nil
	}

	if topology.IsWeb() {
		n, err := s.WebCommands().AddByFS(mod.Resources(), p.ID())
		if err != nil {
			return fmt.Errorf("add web commands of plugin %q: %w", p.ID(), err)
		}
		if n > 0 {
			logger.DebugCtx(ctx, "Plugin web commands added", logger.Plugin(p.ID()), logger.KeyCount, n)
		}
		return nil
	}

	provider, ok := mod.(plugin.DesktopCommandProvider)
	if !ok {
		return nil
	}
	cmds := provider.DesktopCommands()
	for i := range cmds {
		if cmds[i].Source == "" {
			cmds[i].Source = p.ID()
		}
	}
	if err := s.DesktopCommands().Add(cmds...); err != nil {
		return fmt.Errorf("add desktop commands of plugin %q: %w", p.ID(), err)
	}
	if len(cmds) > 0 {
		logger.DebugCtx(ctx, "Plugin desktop commands added", logger.Plugin(p.ID()), logger.KeyCount, len(cmds))
	}
	return nil
}

func (s *Store) addRuntimeCommands(ctx context.Context, e *env.Environment, p plugin.Plugin) error {
	topology := e.Topology()
	catalog := CatalogDesktop
	if topology.IsWeb() {
		catalog = CatalogWeb
	}
	m := s.getMetrics()

	err := s.addPluginCommands(ctx, topology, p)
	switch {
	case errors.Is(err, command.ErrCatalogFrozen):
		metrics.RecordLateRegistration(m, catalog, true)
		logger.WarnCtx(ctx, "Refused commands of runtime plugin: catalog is frozen",
			logger.Plugin(p.ID()), logger.Catalog(catalog))
		return err
	case err != nil:
		return err
	}

	metrics.RecordLateRegistration(m, catalog, false)
	if topology.IsWeb() {
		metrics.SetCatalogSize(m, CatalogWeb, s.WebCommands().Len())
	} else {
		metrics.SetCatalogSize(m, CatalogDesktop, s.DesktopCommands().Len())
	}
	return nil
}
