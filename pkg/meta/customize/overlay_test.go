package customize

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const orderOverlay = `kind: view
target: Sales.Order
label: Sales order
properties:
  - name: Amount
    label: Total
    order: 1
  - name: InternalCode
    hidden: true
---
kind: block
target: Sales.OrderWithLines
children: [Sales.OrderLine]
`

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestLoadOverlays(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "sales.yaml", orderOverlay)
	writeFile(t, dir, "notes.txt", "ignored")

	m := NewManager(dir)
	var changes atomic.Int32
	m.OnChange(func() { changes.Add(1) })

	before := m.Version()
	require.NoError(t, m.Load())
	assert.Greater(t, m.Version(), before)
	assert.Equal(t, int32(1), changes.Load())
	assert.Equal(t, 2, m.Len())

	view, ok := m.Lookup(KindView, "Sales.Order")
	require.True(t, ok)
	assert.Equal(t, "Sales order", view.Label)
	assert.Equal(t, "sales.yaml", view.File)

	amount, ok := view.Property("Amount")
	require.True(t, ok)
	assert.Equal(t, "Total", amount.Label)
	require.NotNil(t, amount.Order)
	assert.Equal(t, 1, *amount.Order)

	code, ok := view.Property("InternalCode")
	require.True(t, ok)
	require.NotNil(t, code.Hidden)
	assert.True(t, *code.Hidden)

	block, ok := m.Lookup(KindBlock, "Sales.OrderWithLines")
	require.True(t, ok)
	assert.Equal(t, []string{"Sales.OrderLine"}, block.Children)

	_, ok = m.Lookup(KindBlock, "Sales.Order")
	assert.False(t, ok)
}

func TestLaterFilesWin(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "10-base.yaml", "kind: view\ntarget: A\nlabel: base\n")
	writeFile(t, dir, "20-site.yml", "kind: view\ntarget: A\nlabel: site\n")

	m := NewManager(dir)
	require.NoError(t, m.Load())

	o, ok := m.Lookup(KindView, "A")
	require.True(t, ok)
	assert.Equal(t, "site", o.Label)
}

func TestLoadMissingOrEmptyDir(t *testing.T) {
	require.NoError(t, NewManager("").Load())
	require.NoError(t, NewManager(filepath.Join(t.TempDir(), "missing")).Load())
}

func TestLoadErrorsKeepPreviousOverlays(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", "kind: view\ntarget: A\n")

	m := NewManager(dir)
	require.NoError(t, m.Load())

	writeFile(t, dir, "b.yaml", "kind: report\ntarget: B\n")
	err := m.Load()
	assert.ErrorIs(t, err, ErrInvalidOverlay)

	writeFile(t, dir, "b.yaml", "kind: [unterminated\n")
	assert.Error(t, m.Load())

	_, ok := m.Lookup(KindView, "A")
	assert.True(t, ok)
}

func TestWatchReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(dir)
	require.NoError(t, m.Load())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Watch(ctx) }()

	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)
	writeFile(t, dir, "late.yaml", "kind: view\ntarget: Late\nlabel: hot\n")

	assert.Eventually(t, func() bool {
		o, ok := m.Lookup(KindView, "Late")
		return ok && o.Label == "hot"
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}
