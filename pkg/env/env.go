// Package env holds the process environment an application runs in: its
// topology, root directory, active application, identity strategy, UI
// culture and translator.
package env

import (
	"errors"
	"path/filepath"
	"sync"

	"github.com/marmos91/appfx/pkg/i18n"
	"github.com/marmos91/appfx/pkg/identity"
)

// Errors returned by Environment setters.
var (
	ErrNilApplication = errors.New("env: application must not be nil")
	ErrNilProvider    = errors.New("env: identity provider must not be nil")
)

// Application is the active application as seen by the environment.
type Application interface {
	InstanceID() string
}

// Environment is safe for concurrent use.
type Environment struct {
	topology Topology
	rootDir  string

	mu                sync.RWMutex
	customizationPath string
	app               Application
	provider          identity.Provider
	translator        *i18n.Translator
	culture           string
}

// New returns an environment for topology rooted at rootDir. An empty
// rootDir means the current working directory.
func New(topology Topology, rootDir string) *Environment {
	if rootDir == "" {
		rootDir = "."
	}
	if abs, err := filepath.Abs(rootDir); err == nil {
		rootDir = abs
	}
	e := &Environment{topology: topology, rootDir: rootDir}
	e.Reset()
	return e
}

// Topology returns the runtime topology.
func (e *Environment) Topology() Topology { return e.topology }

// RootDir returns the absolute root directory.
func (e *Environment) RootDir() string { return e.rootDir }

// MapAbsolutePath maps a path relative to the root directory to an absolute
// path. Absolute paths are returned cleaned.
func (e *Environment) MapAbsolutePath(rel string) string {
	if filepath.IsAbs(rel) {
		return filepath.Clean(rel)
	}
	return filepath.Join(e.rootDir, filepath.FromSlash(rel))
}

// CustomizationPath returns the absolute customization directory, or ""
// if none was set.
func (e *Environment) CustomizationPath() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.customizationPath
}

// SetCustomizationPath maps p against the root directory and stores it.
func (e *Environment) SetCustomizationPath(p string) {
	mapped := ""
	if p != "" {
		mapped = e.MapAbsolutePath(p)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.customizationPath = mapped
}

// App returns the active application, or nil.
func (e *Environment) App() Application {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.app
}

// SetApp registers the active application.
func (e *Environment) SetApp(app Application) error {
	if app == nil {
		return ErrNilApplication
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.app = app
	return nil
}

// IdentityProvider returns the active identity strategy, or nil before
// InitEnvironment ran.
func (e *Environment) IdentityProvider() identity.Provider {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.provider
}

// SetIdentityProvider installs the identity strategy.
func (e *Environment) SetIdentityProvider(p identity.Provider) error {
	if p == nil {
		return ErrNilProvider
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.provider = p
	return nil
}

// Translator returns the translator. It is never nil.
func (e *Environment) Translator() *i18n.Translator {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.translator
}

// UICulture returns the current UI culture name.
func (e *Environment) UICulture() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.culture
}

// SetUICulture changes the UI culture. Unknown names return an error and
// leave the culture unchanged.
func (e *Environment) SetUICulture(name string) error {
	tag, err := i18n.ParseCulture(name)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.culture = tag.String()
	return nil
}

// Reset clears the active application and identity provider, restores the
// system culture and installs a fresh disabled translator. Topology and
// root directory are fixed for the environment's lifetime.
func (e *Environment) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.app = nil
	e.provider = nil
	e.customizationPath = ""
	e.translator = i18n.NewTranslator()
	e.culture = i18n.SystemCulture()
}
