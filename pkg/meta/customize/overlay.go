// Package customize loads YAML overlays that customize block and view
// metadata without touching plugin code.
//
// Overlay files live in the customization directory and may hold several
// YAML documents each:
//
//	kind: view
//	target: Sales.Order
//	label: Sales order
//	properties:
//	  - name: Amount
//	    label: Total
//	    order: 1
//	  - name: InternalCode
//	    hidden: true
//	---
//	kind: block
//	target: Sales.OrderWithLines
//	children: [Sales.OrderLine]
package customize

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"gopkg.in/yaml.v3"
)

// Kind is the metadata kind an overlay targets.
type Kind string

const (
	KindView  Kind = "view"
	KindBlock Kind = "block"
)

// ErrInvalidOverlay is returned for overlay documents missing kind or target.
var ErrInvalidOverlay = errors.New("invalid overlay")

// PropertyOverlay customizes one property of a view.
type PropertyOverlay struct {
	Name   string `yaml:"name"`
	Label  string `yaml:"label,omitempty"`
	Hidden *bool  `yaml:"hidden,omitempty"`
	Order  *int   `yaml:"order,omitempty"`
}

// Overlay customizes one view or block.
type Overlay struct {
	Kind       Kind              `yaml:"kind"`
	Target     string            `yaml:"target"`
	Label      string            `yaml:"label,omitempty"`
	Properties []PropertyOverlay `yaml:"properties,omitempty"`
	Children   []string          `yaml:"children,omitempty"`

	// File is the overlay's source file, relative to the directory.
	File string `yaml:"-"`
}

// Property returns the overlay for the named property.
func (o Overlay) Property(name string) (PropertyOverlay, bool) {
	for _, p := range o.Properties {
		if p.Name == name {
			return p, true
		}
	}
	return PropertyOverlay{}, false
}

type overlayKey struct {
	kind   Kind
	target string
}

// Manager holds the overlays of one customization directory. Overlays are
// replaced wholesale on every Load; Version increases each time.
type Manager struct {
	mu       sync.RWMutex
	dir      string
	overlays map[overlayKey]Overlay

	version   atomic.Uint64
	listeners []func()
}

// NewManager returns a manager reading from dir. An empty dir disables
// customization.
func NewManager(dir string) *Manager {
	return &Manager{dir: dir, overlays: map[overlayKey]Overlay{}}
}

// Dir returns the customization directory.
func (m *Manager) Dir() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.dir
}

// SetDir changes the customization directory. Call Load afterwards.
func (m *Manager) SetDir(dir string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dir = dir
}

// Version returns a counter that changes whenever overlays are reloaded.
func (m *Manager) Version() uint64 { return m.version.Load() }

// OnChange registers fn to run after every successful Load.
func (m *Manager) OnChange(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

// Lookup returns the overlay for kind and target.
func (m *Manager) Lookup(kind Kind, target string) (Overlay, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.overlays[overlayKey{kind, target}]
	return o, ok
}

// Len returns the number of loaded overlays.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.overlays)
}

// Load reads every *.yaml and *.yml file in the directory. A missing
// directory loads nothing. On error the previous overlays are kept.
func (m *Manager) Load() error {
	dir := m.Dir()
	overlays := map[overlayKey]Overlay{}

	if dir != "" {
		files, err := overlayFiles(dir)
		if err != nil {
			return err
		}
		for _, f := range files {
			if err := readOverlayFile(dir, f, overlays); err != nil {
				return err
			}
		}
	}

	m.mu.Lock()
	m.overlays = overlays
	listeners := append([]func(){}, m.listeners...)
	m.mu.Unlock()

	m.version.Add(1)
	for _, fn := range listeners {
		fn()
	}
	return nil
}

func isOverlayFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}

func overlayFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read customization dir: %w", err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && isOverlayFile(e.Name()) {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

func readOverlayFile(dir, name string, into map[overlayKey]Overlay) error {
	f, err := os.Open(filepath.Join(dir, name))
	if err != nil {
		return fmt.Errorf("open overlay %s: %w", name, err)
	}
	defer func() { _ = f.Close() }()

	dec := yaml.NewDecoder(f)
	for i := 0; ; i++ {
		var o Overlay
		err := dec.Decode(&o)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("parse overlay %s (document %d): %w", name, i, err)
		}
		if o.Kind == "" && o.Target == "" {
			continue
		}
		if (o.Kind != KindView && o.Kind != KindBlock) || o.Target == "" {
			return fmt.Errorf("%w: %s (document %d): kind %q target %q", ErrInvalidOverlay, name, i, o.Kind, o.Target)
		}
		o.File = name
		// Later files win, so overlays can be layered by file name.
		into[overlayKey{o.Kind, o.Target}] = o
	}
}
