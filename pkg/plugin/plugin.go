package plugin

import (
	"context"
	"errors"
	"io/fs"

	"github.com/marmos91/appfx/pkg/env"
	"github.com/marmos91/appfx/pkg/meta/block"
	"github.com/marmos91/appfx/pkg/meta/command"
	"github.com/marmos91/appfx/pkg/meta/view"
)

var (
	// ErrNilPlugin is returned when a factory yields a nil plugin or a nil
	// plugin is loaded at runtime.
	ErrNilPlugin = errors.New("plugin: nil plugin")

	// ErrDuplicatePlugin is returned when two plugins share an id.
	ErrDuplicatePlugin = errors.New("plugin: duplicate plugin id")

	// ErrInvalidPlugin is returned for plugins with an empty id.
	ErrInvalidPlugin = errors.New("plugin: invalid plugin")
)

// Module is the code unit behind a plugin.
//
// Resources exposes the module's bundled files. Web command scripts live
// under command.CommandsDir ("Commands/"). A nil filesystem means the module
// ships no resources.
type Module interface {
	Name() string
	Resources() fs.FS
}

// DesktopCommandProvider is implemented by modules that declare desktop
// commands.
type DesktopCommandProvider interface {
	DesktopCommands() []command.DesktopCommand
}

// Registry is the registry store as seen by plugins.
type Registry interface {
	AggtBlocks() *block.Repository
	Views() *view.Factory
	WebCommands() *command.WebRepository
	DesktopCommands() *command.DesktopRepository
}

// Host is what a plugin sees of the running application.
type Host interface {
	Environment() *env.Environment
	Metadata() Registry
}

// Plugin is a unit of functionality loaded at startup or at runtime.
//
// Lifecycle:
//  1. Creation: a Factory returns the plugin
//  2. Extensions: RegisterExtensions runs if the plugin is an ExtensionProvider
//  3. Initialization: Initialize registers blocks, views and commands
//     through host.Metadata()
//
// Initialize is called exactly once per plugin instance.
type Plugin interface {
	// ID is the stable, unique plugin identifier.
	ID() string

	// Module returns the code unit holding the plugin's resources.
	Module() Module

	// Initialize registers the plugin's metadata into the host.
	Initialize(ctx context.Context, host Host) error
}

// ExtensionProvider is implemented by plugins that extend metadata declared
// by other plugins. RegisterExtensions runs for every startup plugin before
// any plugin is initialized.
type ExtensionProvider interface {
	RegisterExtensions(ctx context.Context, host Host) error
}

// Factory creates a plugin instance.
type Factory func() (Plugin, error)

// RuntimeLoadedFunc is notified after a plugin is loaded at runtime.
type RuntimeLoadedFunc func(ctx context.Context, p Plugin) error

// Basic is a Plugin assembled from parts. It is handy for plugins that only
// ship resources, and in tests.
type Basic struct {
	PluginID string
	Mod      Module
	Init     func(ctx context.Context, host Host) error
}

// ID implements Plugin.
func (b *Basic) ID() string { return b.PluginID }

// Module implements Plugin.
func (b *Basic) Module() Module { return b.Mod }

// Initialize implements Plugin.
func (b *Basic) Initialize(ctx context.Context, host Host) error {
	if b.Init == nil {
		return nil
	}
	return b.Init(ctx, host)
}

// FSModule is a Module backed by a filesystem and an optional list of
// desktop commands.
type FSModule struct {
	ModuleName string
	FS         fs.FS
	Desktop    []command.DesktopCommand
}

// Name implements Module.
func (m *FSModule) Name() string { return m.ModuleName }

// Resources implements Module.
func (m *FSModule) Resources() fs.FS { return m.FS }

// DesktopCommands implements DesktopCommandProvider.
func (m *FSModule) DesktopCommands() []command.DesktopCommand {
	out := make([]command.DesktopCommand, len(m.Desktop))
	copy(out, m.Desktop)
	return out
}
