package command

import (
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
)

// WebCommand is a client-side command backed by a script resource.
type WebCommand struct {
	Name   string `json:"name" yaml:"name"`
	Label  string `json:"label,omitempty" yaml:"label,omitempty"`
	Group  string `json:"group,omitempty" yaml:"group,omitempty"`
	Path   string `json:"path" yaml:"path"`
	Source string `json:"source" yaml:"source"`
	Script string `json:"-" yaml:"-"`
}

// WebSnapshot is the immutable, published form of a web catalog. It has no
// mutating methods and is safe for concurrent reads without locking.
type WebSnapshot struct {
	commands []WebCommand
	index    map[string]int
}

// Len returns the number of commands.
func (s *WebSnapshot) Len() int { return len(s.commands) }

// Get returns the command named name.
func (s *WebSnapshot) Get(name string) (WebCommand, bool) {
	i, ok := s.index[name]
	if !ok {
		return WebCommand{}, false
	}
	return s.commands[i], true
}

// All returns the commands in registration order. The slice is a copy.
func (s *WebSnapshot) All() []WebCommand {
	return slices.Clone(s.commands)
}

// WebRepository is a web command catalog. It is a mutable builder until
// Freeze publishes a WebSnapshot; afterwards every mutation returns
// ErrCatalogFrozen and reads go to the snapshot without locking.
type WebRepository struct {
	mu       sync.Mutex
	commands []WebCommand
	index    map[string]int

	frozen atomic.Pointer[WebSnapshot]
}

// NewWebRepository returns an empty, unfrozen catalog.
func NewWebRepository() *WebRepository {
	return &WebRepository{commands: []WebCommand{}, index: make(map[string]int)}
}

// Add registers commands atomically: either all are added or none.
func (r *WebRepository) Add(cmds ...WebCommand) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen.Load() != nil {
		return ErrCatalogFrozen
	}

	seen := make(map[string]struct{}, len(cmds))
	for _, c := range cmds {
		if c.Name == "" {
			return fmt.Errorf("%w: empty name (path %q)", ErrInvalidCommand, c.Path)
		}
		if _, ok := r.index[c.Name]; ok {
			return fmt.Errorf("%w: %q", ErrDuplicateCommand, c.Name)
		}
		if _, ok := seen[c.Name]; ok {
			return fmt.Errorf("%w: %q", ErrDuplicateCommand, c.Name)
		}
		seen[c.Name] = struct{}{}
	}

	for _, c := range cmds {
		r.index[c.Name] = len(r.commands)
		r.commands = append(r.commands, c)
	}
	return nil
}

// Freeze publishes the catalog and returns its snapshot. Calling it again
// returns the same snapshot.
func (r *WebRepository) Freeze() *WebSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s := r.frozen.Load(); s != nil {
		return s
	}
	s := &WebSnapshot{commands: r.commands, index: r.index}
	r.commands, r.index = nil, nil
	r.frozen.Store(s)
	return s
}

// Frozen reports whether Freeze was called.
func (r *WebRepository) Frozen() bool {
	return r.frozen.Load() != nil
}

// Snapshot returns the published snapshot, or nil before Freeze.
func (r *WebRepository) Snapshot() *WebSnapshot {
	return r.frozen.Load()
}

// Len returns the number of commands.
func (r *WebRepository) Len() int {
	if s := r.frozen.Load(); s != nil {
		return s.Len()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if s := r.frozen.Load(); s != nil {
		return s.Len()
	}
	return len(r.commands)
}

// Get returns the command named name.
func (r *WebRepository) Get(name string) (WebCommand, bool) {
	if s := r.frozen.Load(); s != nil {
		return s.Get(name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if s := r.frozen.Load(); s != nil {
		return s.Get(name)
	}
	i, ok := r.index[name]
	if !ok {
		return WebCommand{}, false
	}
	return r.commands[i], true
}

// List returns the commands in registration order.
func (r *WebRepository) List() []WebCommand {
	if s := r.frozen.Load(); s != nil {
		return s.All()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if s := r.frozen.Load(); s != nil {
		return s.All()
	}
	return slices.Clone(r.commands)
}
