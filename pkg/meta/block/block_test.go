package block

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/marmos91/appfx/pkg/meta/customize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func orderBlock() Block {
	return Block{
		Name:       "Sales.OrderWithLines",
		Label:      "Order",
		MainEntity: "Sales.Order",
		Children: []Child{
			{Entity: "Sales.OrderLine", Property: "Lines"},
			{Entity: "Sales.Payment", Property: "Payments"},
		},
	}
}

func TestRegisterAndGet(t *testing.T) {
	r := NewRepository(nil)
	require.NoError(t, r.Register(orderBlock()))

	b, ok := r.Get("Sales.OrderWithLines")
	require.True(t, ok)
	assert.Equal(t, "Order", b.Label)
	assert.Len(t, b.Children, 2)
	assert.False(t, b.Customized)

	assert.Equal(t, []string{"Sales.OrderWithLines"}, r.Names())
	assert.Equal(t, 1, r.Len())

	_, ok = r.Get("missing")
	assert.False(t, ok)
}

func TestRegisterRejectsInvalidAndDuplicates(t *testing.T) {
	r := NewRepository(nil)
	assert.ErrorIs(t, r.Register(Block{Name: "x"}), ErrInvalidBlock)
	assert.ErrorIs(t, r.Register(Block{MainEntity: "x"}), ErrInvalidBlock)

	require.NoError(t, r.Register(orderBlock()))
	assert.ErrorIs(t, r.Register(orderBlock()), ErrDuplicateBlock)
}

func TestGetReturnsCopies(t *testing.T) {
	r := NewRepository(nil)
	require.NoError(t, r.Register(orderBlock()))

	b, _ := r.Get("Sales.OrderWithLines")
	b.Children[0].Entity = "mutated"

	again, _ := r.Get("Sales.OrderWithLines")
	assert.Equal(t, "Sales.OrderLine", again.Children[0].Entity)
}

func TestOverlayApplied(t *testing.T) {
	dir := t.TempDir()
	overlay := "kind: block\ntarget: Sales.OrderWithLines\nlabel: Order with payments\nchildren: [Sales.Payment, Unknown]\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "blocks.yaml"), []byte(overlay), 0644))

	m := customize.NewManager(dir)
	require.NoError(t, m.Load())

	r := NewRepository(m)
	require.NoError(t, r.Register(orderBlock()))

	b, ok := r.Get("Sales.OrderWithLines")
	require.True(t, ok)
	assert.True(t, b.Customized)
	assert.Equal(t, "Order with payments", b.Label)
	require.Len(t, b.Children, 1)
	assert.Equal(t, "Sales.Payment", b.Children[0].Entity)
}

func TestUnregister(t *testing.T) {
	r := NewRepository(nil)
	require.NoError(t, r.Register(orderBlock()))

	assert.True(t, r.Unregister("Sales.OrderWithLines"))
	assert.False(t, r.Unregister("Sales.OrderWithLines"))
	assert.Empty(t, r.Names())
	assert.NoError(t, r.Register(orderBlock()))
}
