package identity

import (
	"context"
	"net/http"
)

// Shared is the desktop strategy: every goroutine sees the same context.
type Shared struct {
	root *Context
}

// NewShared returns a provider with a single process-wide context.
func NewShared() *Shared {
	return &Shared{root: NewContext()}
}

func (p *Shared) Kind() Kind { return KindShared }

func (p *Shared) Bind(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

func (p *Shared) Current(context.Context) *Context { return p.root }

// PerBinding is the generic strategy: each Bind creates a new context that
// follows the returned context.Context. Calls outside any binding share the
// root context.
type PerBinding struct {
	root *Context
}

// NewPerBinding returns a per-binding provider.
func NewPerBinding() *PerBinding {
	return &PerBinding{root: NewContext()}
}

func (p *PerBinding) Kind() Kind { return KindPerBinding }

func (p *PerBinding) Bind(ctx context.Context) context.Context { return bind(ctx) }

func (p *PerBinding) Current(ctx context.Context) *Context {
	if c := bound(ctx); c != nil {
		return c
	}
	return p.root
}

// Go runs fn on a new goroutine with its own binding.
func (p *PerBinding) Go(ctx context.Context, fn func(ctx context.Context)) {
	bctx := p.Bind(ctx)
	go fn(bctx)
}

// PerRequest is the web strategy: Middleware binds one context per inbound
// request. Work outside a request falls back to the root context.
type PerRequest struct {
	root *Context

	// PrincipalFunc, when set, names the principal of each request.
	PrincipalFunc func(r *http.Request) string
}

// NewPerRequest returns a per-request provider.
func NewPerRequest() *PerRequest {
	return &PerRequest{root: NewContext()}
}

func (p *PerRequest) Kind() Kind { return KindPerRequest }

func (p *PerRequest) Bind(ctx context.Context) context.Context { return bind(ctx) }

func (p *PerRequest) Current(ctx context.Context) *Context {
	if c := bound(ctx); c != nil {
		return c
	}
	return p.root
}

// Middleware binds a fresh identity context to every request. It has the
// func(http.Handler) http.Handler shape expected by chi.
func (p *PerRequest) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := p.Bind(r.Context())
		if p.PrincipalFunc != nil {
			p.Current(ctx).SetPrincipal(p.PrincipalFunc(r))
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

var (
	_ Provider = (*Shared)(nil)
	_ Provider = (*PerBinding)(nil)
	_ Provider = (*PerRequest)(nil)
)
