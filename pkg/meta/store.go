// Package meta holds the registry store: the four metadata registries
// populated by plugins during startup.
package meta

import (
	"errors"
	"sync"

	"github.com/marmos91/appfx/internal/logger"
	"github.com/marmos91/appfx/pkg/meta/block"
	"github.com/marmos91/appfx/pkg/meta/command"
	"github.com/marmos91/appfx/pkg/meta/customize"
	"github.com/marmos91/appfx/pkg/meta/view"
	"github.com/marmos91/appfx/pkg/metrics"
)

// ErrNilRegistry is returned when a nil registry is assigned to a slot.
var ErrNilRegistry = errors.New("meta: registry must not be nil")

// Catalog names used in logs and metrics.
const (
	CatalogWeb     = "web"
	CatalogDesktop = "desktop"
)

// Store holds the aggregate-block repository, the view factory and the web
// and desktop command catalogs.
//
// No slot is ever nil. Setters reject nil and leave the slot unchanged.
// Reset installs fresh empty registries; the customization overlays are
// shared by every generation of registries and survive Reset.
//
// Thread safety:
// All methods are safe for concurrent use.
type Store struct {
	overlays *customize.Manager

	mu              sync.RWMutex
	aggtBlocks      *block.Repository
	views           *view.Factory
	webCommands     *command.WebRepository
	desktopCommands *command.DesktopRepository
	metrics         metrics.BootstrapMetrics
}

// NewStore returns a store with empty registries.
func NewStore() *Store {
	s := &Store{overlays: customize.NewManager("")}
	s.overlays.OnChange(s.overlaysReloaded)
	s.Reset()
	return s
}

func (s *Store) overlaysReloaded() {
	n := s.overlays.Len()
	metrics.SetOverlayCount(s.getMetrics(), n)
	logger.Info("Customization overlays loaded", logger.KeyPath, s.overlays.Dir(), logger.KeyCount, n)
}

// Overlays returns the customization overlays applied to blocks and views.
func (s *Store) Overlays() *customize.Manager { return s.overlays }

// SetMetrics sets the metrics sink. nil disables metrics.
func (s *Store) SetMetrics(m metrics.BootstrapMetrics) {
	s.mu.Lock()
	s.metrics = m
	s.mu.Unlock()
}

func (s *Store) getMetrics() metrics.BootstrapMetrics {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.metrics
}

// AggtBlocks returns the aggregate-block repository.
func (s *Store) AggtBlocks() *block.Repository {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.aggtBlocks
}

// SetAggtBlocks replaces the aggregate-block repository.
func (s *Store) SetAggtBlocks(r *block.Repository) error {
	if r == nil {
		return ErrNilRegistry
	}
	s.mu.Lock()
	s.aggtBlocks = r
	s.mu.Unlock()
	return nil
}

// Views returns the view-metadata factory.
func (s *Store) Views() *view.Factory {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.views
}

// SetViews replaces the view-metadata factory.
func (s *Store) SetViews(f *view.Factory) error {
	if f == nil {
		return ErrNilRegistry
	}
	s.mu.Lock()
	s.views = f
	s.mu.Unlock()
	return nil
}

// WebCommands returns the web-command catalog.
func (s *Store) WebCommands() *command.WebRepository {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.webCommands
}

// SetWebCommands replaces the web-command catalog.
func (s *Store) SetWebCommands(r *command.WebRepository) error {
	if r == nil {
		return ErrNilRegistry
	}
	s.mu.Lock()
	s.webCommands = r
	s.mu.Unlock()
	return nil
}

// DesktopCommands returns the desktop-command catalog.
func (s *Store) DesktopCommands() *command.DesktopRepository {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.desktopCommands
}

// SetDesktopCommands replaces the desktop-command catalog.
func (s *Store) SetDesktopCommands(r *command.DesktopRepository) error {
	if r == nil {
		return ErrNilRegistry
	}
	s.mu.Lock()
	s.desktopCommands = r
	s.mu.Unlock()
	return nil
}

// Reset replaces all four registries with fresh empty instances. The new
// web catalog is unfrozen.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.aggtBlocks = block.NewRepository(s.overlays)
	s.views = view.NewFactory(s.overlays)
	s.webCommands = command.NewWebRepository()
	s.desktopCommands = command.NewDesktopRepository()
}

// Freeze freezes the web-command catalog and returns its published
// snapshot. The freeze lasts until the next Reset.
func (s *Store) Freeze() *command.WebSnapshot {
	snap := s.WebCommands().Freeze()
	metrics.SetCatalogSize(s.getMetrics(), CatalogWeb, snap.Len())
	return snap
}
