package command

import (
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
)

// DesktopCommand is a command declared by a desktop module.
type DesktopCommand struct {
	Name     string `json:"name" yaml:"name"`
	Label    string `json:"label,omitempty" yaml:"label,omitempty"`
	Group    string `json:"group,omitempty" yaml:"group,omitempty"`
	Shortcut string `json:"shortcut,omitempty" yaml:"shortcut,omitempty"`
	Handler  string `json:"handler,omitempty" yaml:"handler,omitempty"`
	Source   string `json:"source" yaml:"source"`
}

type desktopSnapshot struct {
	commands []DesktopCommand
	index    map[string]int
}

// DesktopRepository is the desktop command catalog. It is never frozen:
// plugins loaded at runtime keep appending. Writers copy the current
// snapshot and swap it atomically, so readers never lock and never see a
// partially applied Add.
type DesktopRepository struct {
	mu   sync.Mutex // serializes writers
	snap atomic.Pointer[desktopSnapshot]
}

// NewDesktopRepository returns an empty catalog.
func NewDesktopRepository() *DesktopRepository {
	r := &DesktopRepository{}
	r.snap.Store(&desktopSnapshot{commands: []DesktopCommand{}, index: map[string]int{}})
	return r
}

// Add registers commands atomically: either all are added or none.
func (r *DesktopRepository) Add(cmds ...DesktopCommand) error {
	if len(cmds) == 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	cur := r.snap.Load()
	next := &desktopSnapshot{
		commands: make([]DesktopCommand, len(cur.commands), len(cur.commands)+len(cmds)),
		index:    make(map[string]int, len(cur.index)+len(cmds)),
	}
	copy(next.commands, cur.commands)
	for k, v := range cur.index {
		next.index[k] = v
	}

	for _, c := range cmds {
		if c.Name == "" {
			return fmt.Errorf("%w: empty name", ErrInvalidCommand)
		}
		if _, ok := next.index[c.Name]; ok {
			return fmt.Errorf("%w: %q", ErrDuplicateCommand, c.Name)
		}
		if c.Label == "" {
			c.Label = c.Name
		}
		next.index[c.Name] = len(next.commands)
		next.commands = append(next.commands, c)
	}

	r.snap.Store(next)
	return nil
}

// Len returns the number of commands.
func (r *DesktopRepository) Len() int {
	return len(r.snap.Load().commands)
}

// Get returns the command named name.
func (r *DesktopRepository) Get(name string) (DesktopCommand, bool) {
	s := r.snap.Load()
	i, ok := s.index[name]
	if !ok {
		return DesktopCommand{}, false
	}
	return s.commands[i], true
}

// List returns the commands in registration order.
func (r *DesktopRepository) List() []DesktopCommand {
	return slices.Clone(r.snap.Load().commands)
}
