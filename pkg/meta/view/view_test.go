package view

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/marmos91/appfx/pkg/meta/customize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func orderDescriptor() EntityDescriptor {
	return EntityDescriptor{
		Entity: "Sales.Order",
		Label:  "Order",
		Properties: []Property{
			{Name: "Code", Type: "string"},
			{Name: "Amount", Label: "Amount", Type: "decimal"},
			{Name: "InternalCode", Type: "string"},
		},
	}
}

func TestCreateBuildsAndCaches(t *testing.T) {
	f := NewFactory(nil)
	require.NoError(t, f.Register(orderDescriptor()))

	m, err := f.Create("Sales.Order")
	require.NoError(t, err)
	assert.Equal(t, "Order", m.Label)
	require.Len(t, m.Properties, 3)
	assert.Equal(t, "Code", m.Properties[0].Label)
	assert.Equal(t, 10, m.Properties[0].Order)
	assert.False(t, m.Customized)

	again, err := f.Create("Sales.Order")
	require.NoError(t, err)
	assert.Same(t, m, again)
}

func TestCreateUnknownEntity(t *testing.T) {
	_, err := NewFactory(nil).Create("Nope")
	assert.ErrorIs(t, err, ErrUnknownEntity)
}

func TestRegisterValidation(t *testing.T) {
	f := NewFactory(nil)
	assert.ErrorIs(t, f.Register(EntityDescriptor{}), ErrInvalidDescriptor)
	require.NoError(t, f.Register(orderDescriptor()))
	assert.ErrorIs(t, f.Register(orderDescriptor()), ErrDuplicateEntity)
	assert.Equal(t, []string{"Sales.Order"}, f.Entities())
	assert.Equal(t, 1, f.Len())
}

func TestOverlayAppliedAndCacheInvalidated(t *testing.T) {
	dir := t.TempDir()
	m := customize.NewManager(dir)
	require.NoError(t, m.Load())

	f := NewFactory(m)
	require.NoError(t, f.Register(orderDescriptor()))

	plain, err := f.Create("Sales.Order")
	require.NoError(t, err)
	assert.False(t, plain.Customized)

	overlay := `kind: view
target: Sales.Order
label: Sales order
properties:
  - name: Amount
    label: Total
    order: 1
  - name: InternalCode
    hidden: true
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "views.yaml"), []byte(overlay), 0644))
	require.NoError(t, m.Load())

	custom, err := f.Create("Sales.Order")
	require.NoError(t, err)
	assert.NotSame(t, plain, custom)
	assert.True(t, custom.Customized)
	assert.Equal(t, "Sales order", custom.Label)
	assert.Equal(t, "Amount", custom.Properties[0].Name)
	assert.Equal(t, "Total", custom.Properties[0].Label)

	visible := custom.Visible()
	require.Len(t, visible, 2)
	for _, p := range visible {
		assert.NotEqual(t, "InternalCode", p.Name)
	}
}

func TestCreateAll(t *testing.T) {
	f := NewFactory(nil)
	require.NoError(t, f.Register(orderDescriptor()))
	require.NoError(t, f.Register(EntityDescriptor{Entity: "Sales.Customer"}))

	all, err := f.CreateAll()
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Sales.Customer", all[1].Label)
}

func TestUnregisterDropsCachedView(t *testing.T) {
	f := NewFactory(nil)
	require.NoError(t, f.Register(orderDescriptor()))
	_, err := f.Create("Sales.Order")
	require.NoError(t, err)

	assert.True(t, f.Unregister("Sales.Order"))
	assert.False(t, f.Unregister("Sales.Order"))
	assert.Empty(t, f.Entities())

	_, err = f.Create("Sales.Order")
	assert.ErrorIs(t, err, ErrUnknownEntity)
}
