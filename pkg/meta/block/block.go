// Package block holds aggregate block definitions: a main entity plus the
// child entities edited together with it.
package block

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/marmos91/appfx/pkg/meta/customize"
)

var (
	// ErrInvalidBlock is returned for blocks without a name or main entity.
	ErrInvalidBlock = errors.New("invalid block")

	// ErrDuplicateBlock is returned when a block name is already registered.
	ErrDuplicateBlock = errors.New("duplicate block")
)

// Child is a child entity shown inside an aggregate block.
type Child struct {
	Entity   string `json:"entity" yaml:"entity"`
	Property string `json:"property,omitempty" yaml:"property,omitempty"`
	Label    string `json:"label,omitempty" yaml:"label,omitempty"`
}

// Block is an aggregate block definition.
type Block struct {
	Name       string  `json:"name" yaml:"name"`
	Label      string  `json:"label,omitempty" yaml:"label,omitempty"`
	MainEntity string  `json:"main_entity" yaml:"main_entity"`
	Children   []Child `json:"children,omitempty" yaml:"children,omitempty"`
	Source     string  `json:"source,omitempty" yaml:"source,omitempty"`

	// Customized is set when an overlay changed the definition.
	Customized bool `json:"customized,omitempty" yaml:"customized,omitempty"`
}

// Repository stores aggregate blocks and applies customization overlays on
// read. It is safe for concurrent use.
type Repository struct {
	overlays *customize.Manager

	mu     sync.RWMutex
	blocks map[string]Block
	order  []string
}

// NewRepository returns an empty repository. overlays may be nil.
func NewRepository(overlays *customize.Manager) *Repository {
	return &Repository{overlays: overlays, blocks: map[string]Block{}}
}

// Register adds a block definition.
func (r *Repository) Register(b Block) error {
	if b.Name == "" || b.MainEntity == "" {
		return fmt.Errorf("%w: name %q main entity %q", ErrInvalidBlock, b.Name, b.MainEntity)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.blocks[b.Name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateBlock, b.Name)
	}
	b.Children = slices.Clone(b.Children)
	r.blocks[b.Name] = b
	r.order = append(r.order, b.Name)
	return nil
}

// Unregister removes the block named name. It reports whether the block
// was registered.
func (r *Repository) Unregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.blocks[name]; !ok {
		return false
	}
	delete(r.blocks, name)
	r.order = slices.DeleteFunc(r.order, func(n string) bool { return n == name })
	return true
}

// Get returns the block named name with any overlay applied.
func (r *Repository) Get(name string) (Block, bool) {
	r.mu.RLock()
	b, ok := r.blocks[name]
	r.mu.RUnlock()
	if !ok {
		return Block{}, false
	}
	b.Children = slices.Clone(b.Children)
	return r.customize(b), true
}

// Names returns block names in registration order.
func (r *Repository) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.order)
}

// Len returns the number of registered blocks.
func (r *Repository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.blocks)
}

// customize applies the block overlay: a label override and, when the
// overlay lists children, a filtered and reordered child list.
func (r *Repository) customize(b Block) Block {
	if r.overlays == nil {
		return b
	}
	o, ok := r.overlays.Lookup(customize.KindBlock, b.Name)
	if !ok {
		return b
	}

	b.Customized = true
	if o.Label != "" {
		b.Label = o.Label
	}
	if len(o.Children) > 0 {
		byEntity := make(map[string]Child, len(b.Children))
		for _, c := range b.Children {
			byEntity[c.Entity] = c
		}
		children := make([]Child, 0, len(o.Children))
		for _, entity := range o.Children {
			if c, ok := byEntity[entity]; ok {
				children = append(children, c)
			}
		}
		b.Children = children
	}
	return b
}
