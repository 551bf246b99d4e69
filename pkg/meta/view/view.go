// Package view builds entity view metadata from registered entity
// descriptors and customization overlays.
package view

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/marmos91/appfx/pkg/meta/customize"
)

var (
	// ErrUnknownEntity is returned by Create for unregistered entities.
	ErrUnknownEntity = errors.New("unknown entity")

	// ErrInvalidDescriptor is returned for descriptors without an entity name.
	ErrInvalidDescriptor = errors.New("invalid entity descriptor")

	// ErrDuplicateEntity is returned when an entity is registered twice.
	ErrDuplicateEntity = errors.New("duplicate entity")
)

// Property describes one entity property.
type Property struct {
	Name  string `json:"name" yaml:"name"`
	Label string `json:"label,omitempty" yaml:"label,omitempty"`
	Type  string `json:"type,omitempty" yaml:"type,omitempty"`
}

// EntityDescriptor is what a plugin registers for each entity it owns.
type EntityDescriptor struct {
	Entity     string     `json:"entity" yaml:"entity"`
	Label      string     `json:"label,omitempty" yaml:"label,omitempty"`
	Properties []Property `json:"properties,omitempty" yaml:"properties,omitempty"`
	Source     string     `json:"source,omitempty" yaml:"source,omitempty"`
}

// PropertyViewMeta is the display metadata of one property.
type PropertyViewMeta struct {
	Name   string `json:"name" yaml:"name"`
	Label  string `json:"label" yaml:"label"`
	Type   string `json:"type,omitempty" yaml:"type,omitempty"`
	Order  int    `json:"order" yaml:"order"`
	Hidden bool   `json:"hidden,omitempty" yaml:"hidden,omitempty"`
}

// EntityViewMeta is the display metadata of an entity. Values returned by
// Factory.Create are shared and must be treated as read-only.
type EntityViewMeta struct {
	Entity     string             `json:"entity" yaml:"entity"`
	Label      string             `json:"label" yaml:"label"`
	Properties []PropertyViewMeta `json:"properties" yaml:"properties"`
	Customized bool               `json:"customized,omitempty" yaml:"customized,omitempty"`
}

// Visible returns the properties that are not hidden, in display order.
func (m *EntityViewMeta) Visible() []PropertyViewMeta {
	out := make([]PropertyViewMeta, 0, len(m.Properties))
	for _, p := range m.Properties {
		if !p.Hidden {
			out = append(out, p)
		}
	}
	return out
}

// Factory creates and caches EntityViewMeta. The cache is dropped whenever
// the overlay manager reloads.
type Factory struct {
	overlays *customize.Manager

	mu           sync.Mutex
	descriptors  map[string]EntityDescriptor
	order        []string
	cache        map[string]*EntityViewMeta
	cacheVersion uint64
}

// NewFactory returns an empty factory. overlays may be nil.
func NewFactory(overlays *customize.Manager) *Factory {
	return &Factory{
		overlays:    overlays,
		descriptors: map[string]EntityDescriptor{},
		cache:       map[string]*EntityViewMeta{},
	}
}

// Register adds an entity descriptor.
func (f *Factory) Register(d EntityDescriptor) error {
	if d.Entity == "" {
		return ErrInvalidDescriptor
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.descriptors[d.Entity]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateEntity, d.Entity)
	}
	d.Properties = slices.Clone(d.Properties)
	f.descriptors[d.Entity] = d
	f.order = append(f.order, d.Entity)
	return nil
}

// Unregister removes the descriptor of entity and its cached view. It
// reports whether the entity was registered.
func (f *Factory) Unregister(entity string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.descriptors[entity]; !ok {
		return false
	}
	delete(f.descriptors, entity)
	delete(f.cache, entity)
	f.order = slices.DeleteFunc(f.order, func(n string) bool { return n == entity })
	return true
}

// Entities returns registered entity names in registration order.
func (f *Factory) Entities() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.order)
}

// Len returns the number of registered entities.
func (f *Factory) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.descriptors)
}

// Create returns the view metadata for entity, building it on first use.
func (f *Factory) Create(entity string) (*EntityViewMeta, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.overlays != nil {
		if v := f.overlays.Version(); v != f.cacheVersion {
			f.cache = map[string]*EntityViewMeta{}
			f.cacheVersion = v
		}
	}

	if m, ok := f.cache[entity]; ok {
		return m, nil
	}

	d, ok := f.descriptors[entity]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEntity, entity)
	}

	m := f.build(d)
	f.cache[entity] = m
	return m, nil
}

// CreateAll builds view metadata for every registered entity.
func (f *Factory) CreateAll() ([]*EntityViewMeta, error) {
	entities := f.Entities()
	out := make([]*EntityViewMeta, 0, len(entities))
	for _, e := range entities {
		m, err := f.Create(e)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func (f *Factory) build(d EntityDescriptor) *EntityViewMeta {
	m := &EntityViewMeta{
		Entity:     d.Entity,
		Label:      d.Label,
		Properties: make([]PropertyViewMeta, 0, len(d.Properties)),
	}
	if m.Label == "" {
		m.Label = d.Entity
	}
	for i, p := range d.Properties {
		label := p.Label
		if label == "" {
			label = p.Name
		}
		m.Properties = append(m.Properties, PropertyViewMeta{
			Name:  p.Name,
			Label: label,
			Type:  p.Type,
			Order: (i + 1) * 10,
		})
	}

	if f.overlays == nil {
		return m
	}
	o, ok := f.overlays.Lookup(customize.KindView, d.Entity)
	if !ok {
		return m
	}

	m.Customized = true
	if o.Label != "" {
		m.Label = o.Label
	}
	for i := range m.Properties {
		po, ok := o.Property(m.Properties[i].Name)
		if !ok {
			continue
		}
		if po.Label != "" {
			m.Properties[i].Label = po.Label
		}
		if po.Hidden != nil {
			m.Properties[i].Hidden = *po.Hidden
		}
		if po.Order != nil {
			m.Properties[i].Order = *po.Order
		}
	}
	sort.SliceStable(m.Properties, func(i, j int) bool {
		return m.Properties[i].Order < m.Properties[j].Order
	})
	return m
}
