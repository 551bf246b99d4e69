package plugin

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/marmos91/appfx/pkg/meta/block"
	"github.com/marmos91/appfx/pkg/meta/command"
	"github.com/marmos91/appfx/pkg/meta/view"
)

// ManifestFile is the file that marks a directory as a plugin.
const ManifestFile = "plugin.yaml"

// Manifest declares a directory-backed plugin.
//
// Example plugin.yaml:
//
//	id: sales
//	name: Sales
//	desktop_commands:
//	  - name: sales.open
//	    label: Open orders
//	    shortcut: Ctrl+O
//	blocks:
//	  - name: Order
//	    main_entity: Order
//	    children:
//	      - entity: OrderLine
//	entities:
//	  - entity: Order
//	    properties:
//	      - name: Number
//	      - name: Customer
//
// Web command scripts are picked up from the directory's Commands/ folder.
type Manifest struct {
	ID              string                   `yaml:"id"`
	Name            string                   `yaml:"name,omitempty"`
	DesktopCommands []command.DesktopCommand `yaml:"desktop_commands,omitempty"`
	Blocks          []block.Block            `yaml:"blocks,omitempty"`
	Entities        []view.EntityDescriptor  `yaml:"entities,omitempty"`
}

// DirPlugin is a plugin loaded from a directory holding a manifest.
type DirPlugin struct {
	dir      string
	manifest Manifest
	module   *FSModule
}

// OpenDir reads the manifest in dir. The plugin id defaults to the
// directory name.
func OpenDir(dir string) (*DirPlugin, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if err != nil {
		return nil, fmt.Errorf("read plugin manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse plugin manifest %s: %w", dir, err)
	}
	if m.ID == "" {
		m.ID = filepath.Base(dir)
	}
	if m.Name == "" {
		m.Name = m.ID
	}

	desktop := make([]command.DesktopCommand, len(m.DesktopCommands))
	for i, c := range m.DesktopCommands {
		c.Source = m.ID
		desktop[i] = c
	}

	return &DirPlugin{
		dir:      dir,
		manifest: m,
		module:   &FSModule{ModuleName: m.Name, FS: os.DirFS(dir), Desktop: desktop},
	}, nil
}

// ID implements Plugin.
func (p *DirPlugin) ID() string { return p.manifest.ID }

// Module implements Plugin.
func (p *DirPlugin) Module() Module { return p.module }

// Dir returns the plugin directory.
func (p *DirPlugin) Dir() string { return p.dir }

// Manifest returns the parsed manifest.
func (p *DirPlugin) Manifest() Manifest { return p.manifest }

// Initialize registers the manifest's blocks and entities. A failure
// removes everything this call registered, so the plugin can be loaded
// again once the conflict is gone.
func (p *DirPlugin) Initialize(_ context.Context, host Host) (err error) {
	reg := host.Metadata()
	blocks, views := reg.AggtBlocks(), reg.Views()

	var addedBlocks, addedEntities []string
	defer func() {
		if err == nil {
			return
		}
		for _, name := range addedBlocks {
			blocks.Unregister(name)
		}
		for _, name := range addedEntities {
			views.Unregister(name)
		}
	}()

	for _, b := range p.manifest.Blocks {
		b.Source = p.manifest.ID
		if err := blocks.Register(b); err != nil {
			return err
		}
		addedBlocks = append(addedBlocks, b.Name)
	}
	for _, e := range p.manifest.Entities {
		e.Source = p.manifest.ID
		if err := views.Register(e); err != nil {
			return err
		}
		addedEntities = append(addedEntities, e.Entity)
	}
	return nil
}

// Discover returns one factory per plugin directory directly under root,
// sorted by directory name. Subdirectories without a manifest are skipped.
// A missing root yields no factories.
func Discover(root string) ([]Factory, error) {
	dirs, err := pluginDirs(root)
	if err != nil {
		return nil, err
	}
	factories := make([]Factory, 0, len(dirs))
	for _, dir := range dirs {
		factories = append(factories, func() (Plugin, error) { return OpenDir(dir) })
	}
	return factories, nil
}

func pluginDirs(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read plugins directory: %w", err)
	}

	var dirs []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		dir := filepath.Join(root, e.Name())
		if _, err := os.Stat(filepath.Join(dir, ManifestFile)); err == nil {
			dirs = append(dirs, dir)
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}
