// Package identity provides the identity-context strategies used by the
// application environment.
//
// An identity context is the logical "current user" slot plus a bag of
// scoped values. How many contexts exist depends on the runtime topology:
// a desktop process shares one context across all goroutines, a web host
// creates one per inbound request, and generic hosts create one per explicit
// binding (typically one per worker goroutine).
package identity

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Kind identifies an identity-context strategy.
type Kind int

const (
	// KindShared uses one context for the whole process.
	KindShared Kind = iota
	// KindPerRequest uses one context per inbound web request.
	KindPerRequest
	// KindPerBinding uses one context per explicit binding.
	KindPerBinding
)

func (k Kind) String() string {
	switch k {
	case KindShared:
		return "shared"
	case KindPerRequest:
		return "per-request"
	case KindPerBinding:
		return "per-binding"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Context is one identity context. It is safe for concurrent use.
type Context struct {
	id      string
	created time.Time

	mu        sync.RWMutex
	principal string
	items     map[string]any
}

// NewContext returns an empty context with a fresh id.
func NewContext() *Context {
	return &Context{
		id:      uuid.NewString(),
		created: time.Now(),
		items:   make(map[string]any),
	}
}

// ID returns the context id.
func (c *Context) ID() string { return c.id }

// Created returns the creation time.
func (c *Context) Created() time.Time { return c.created }

// Principal returns the current principal name, empty when anonymous.
func (c *Context) Principal() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.principal
}

// SetPrincipal sets the current principal name.
func (c *Context) SetPrincipal(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.principal = name
}

// Get returns a scoped value.
func (c *Context) Get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.items[key]
	return v, ok
}

// Set stores a scoped value.
func (c *Context) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = value
}

// Provider resolves the identity context for a call.
type Provider interface {
	// Kind reports the strategy.
	Kind() Kind

	// Bind returns a context carrying the identity context for the unit of
	// work that ctx represents. Shared providers return ctx unchanged.
	Bind(ctx context.Context) context.Context

	// Current returns the identity context visible from ctx. It never
	// returns nil: unbound calls see the provider's root context.
	Current(ctx context.Context) *Context
}

type bindingKey struct{}

func bound(ctx context.Context) *Context {
	if ctx == nil {
		return nil
	}
	c, _ := ctx.Value(bindingKey{}).(*Context)
	return c
}

func bind(ctx context.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, bindingKey{}, NewContext())
}

// FromContext returns the identity context bound to ctx by a per-request or
// per-binding provider, or nil.
func FromContext(ctx context.Context) *Context {
	return bound(ctx)
}
