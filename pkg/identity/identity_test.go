package identity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindString(t *testing.T) {
	assert.Equal(t, "shared", KindShared.String())
	assert.Equal(t, "per-request", KindPerRequest.String())
	assert.Equal(t, "per-binding", KindPerBinding.String())
	assert.Equal(t, "Kind(9)", Kind(9).String())
}

func TestContextValues(t *testing.T) {
	c := NewContext()
	require.NotEmpty(t, c.ID())
	assert.False(t, c.Created().IsZero())

	c.SetPrincipal("alice")
	c.Set("tenant", 7)

	assert.Equal(t, "alice", c.Principal())
	v, ok := c.Get("tenant")
	require.True(t, ok)
	assert.Equal(t, 7, v)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestSharedProviderUsesOneContext(t *testing.T) {
	p := NewShared()
	ctx := context.Background()

	bound := p.Bind(ctx)
	assert.Equal(t, ctx, bound)
	assert.Same(t, p.Current(ctx), p.Current(bound))

	var wg sync.WaitGroup
	seen := make([]*Context, 8)
	for i := range seen {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			seen[i] = p.Current(p.Bind(context.Background()))
		}(i)
	}
	wg.Wait()
	for _, c := range seen {
		assert.Same(t, p.Current(context.Background()), c)
	}
}

func TestPerBindingIsolatesBindings(t *testing.T) {
	p := NewPerBinding()
	root := p.Current(context.Background())

	a := p.Bind(context.Background())
	b := p.Bind(context.Background())

	p.Current(a).SetPrincipal("alice")
	p.Current(b).SetPrincipal("bob")

	assert.NotSame(t, p.Current(a), p.Current(b))
	assert.Equal(t, "alice", p.Current(a).Principal())
	assert.Equal(t, "bob", p.Current(b).Principal())
	assert.Empty(t, root.Principal())
	assert.Same(t, p.Current(a), FromContext(a))
}

func TestPerBindingGo(t *testing.T) {
	p := NewPerBinding()
	done := make(chan *Context, 2)

	p.Go(context.Background(), func(ctx context.Context) { done <- p.Current(ctx) })
	p.Go(context.Background(), func(ctx context.Context) { done <- p.Current(ctx) })

	first, second := <-done, <-done
	assert.NotSame(t, first, second)
}

func TestPerRequestMiddleware(t *testing.T) {
	p := NewPerRequest()
	p.PrincipalFunc = func(r *http.Request) string { return r.Header.Get("X-User") }

	ids := make(chan string, 2)
	h := p.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c := p.Current(r.Context())
		ids <- c.ID()
		_, _ = w.Write([]byte(c.Principal()))
	}))

	for _, user := range []string{"alice", "bob"} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("X-User", user)
		h.ServeHTTP(rec, req)
		assert.Equal(t, user, rec.Body.String())
	}

	assert.NotEqual(t, <-ids, <-ids)
	assert.Empty(t, p.Current(context.Background()).Principal())
}
