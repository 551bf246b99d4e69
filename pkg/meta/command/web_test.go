package command

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebRepositoryAddAndGet(t *testing.T) {
	r := NewWebRepository()

	require.NoError(t, r.Add(WebCommand{Name: "Save"}, WebCommand{Name: "Delete"}))
	assert.Equal(t, 2, r.Len())

	c, ok := r.Get("Save")
	require.True(t, ok)
	assert.Equal(t, "Save", c.Name)

	names := []string{}
	for _, c := range r.List() {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"Save", "Delete"}, names)
}

func TestWebRepositoryAddIsAtomic(t *testing.T) {
	r := NewWebRepository()
	require.NoError(t, r.Add(WebCommand{Name: "Save"}))

	err := r.Add(WebCommand{Name: "Print"}, WebCommand{Name: "Save"})
	assert.ErrorIs(t, err, ErrDuplicateCommand)
	assert.Equal(t, 1, r.Len())

	err = r.Add(WebCommand{Name: "A"}, WebCommand{Name: "A"})
	assert.ErrorIs(t, err, ErrDuplicateCommand)

	assert.ErrorIs(t, r.Add(WebCommand{Path: "x.js"}), ErrInvalidCommand)
	assert.Equal(t, 1, r.Len())
}

func TestWebRepositoryFreeze(t *testing.T) {
	r := NewWebRepository()
	require.NoError(t, r.Add(WebCommand{Name: "Save"}))
	assert.False(t, r.Frozen())
	assert.Nil(t, r.Snapshot())

	snap := r.Freeze()
	require.NotNil(t, snap)
	assert.True(t, r.Frozen())
	assert.Same(t, snap, r.Freeze())
	assert.Same(t, snap, r.Snapshot())

	assert.ErrorIs(t, r.Add(WebCommand{Name: "Late"}), ErrCatalogFrozen)

	fsys := fstest.MapFS{"Commands/Late.js": {Data: []byte("1")}}
	n, err := r.AddByFS(fsys, "late")
	assert.ErrorIs(t, err, ErrCatalogFrozen)
	assert.Zero(t, n)

	assert.Equal(t, 1, r.Len())
	assert.Equal(t, 1, snap.Len())
	_, ok := r.Get("Late")
	assert.False(t, ok)
}

func TestWebRepositoryFrozenEmptyModuleIsAccepted(t *testing.T) {
	r := NewWebRepository()
	r.Freeze()

	n, err := r.AddByFS(fstest.MapFS{"readme.txt": {Data: []byte("x")}}, "empty")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSnapshotReadsAreIndependentOfCaller(t *testing.T) {
	r := NewWebRepository()
	require.NoError(t, r.Add(WebCommand{Name: "Save"}))
	snap := r.Freeze()

	all := snap.All()
	all[0].Name = "Mutated"
	c, ok := snap.Get("Save")
	require.True(t, ok)
	assert.Equal(t, "Save", c.Name)
}

func TestFrozenSnapshotConcurrentReads(t *testing.T) {
	r := NewWebRepository()
	require.NoError(t, r.Add(WebCommand{Name: "Save"}, WebCommand{Name: "Delete"}))
	snap := r.Freeze()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_, _ = snap.Get("Save")
				_ = r.List()
				_ = r.Len()
			}
		}()
	}
	wg.Wait()
}

func TestParseScripts(t *testing.T) {
	fsys := fstest.MapFS{
		"Commands/Save.js":           {Data: []byte("// @label Save record\nfunction save() {}\n")},
		"Commands/Sales/Approve.js":  {Data: []byte("\n// @name sales.approve\n// @group Approvals\n// @label Approve\nrun();\n// @label ignored\n")},
		"Commands/Sales/notes.txt":   {Data: []byte("not a script")},
		"Commands/Reports/Export.JS": {Data: []byte("export()")},
		"Other/NotACommand.js":       {Data: []byte("x")},
	}

	cmds, err := ParseScripts(fsys, CommandsDir, "sales-plugin")
	require.NoError(t, err)
	require.Len(t, cmds, 3)

	byName := map[string]WebCommand{}
	for _, c := range cmds {
		byName[c.Name] = c
		assert.Equal(t, "sales-plugin", c.Source)
	}

	save := byName["Save"]
	assert.Equal(t, "Save record", save.Label)
	assert.Empty(t, save.Group)
	assert.Equal(t, "Save.js", save.Path)
	assert.Contains(t, save.Script, "function save()")

	approve := byName["sales.approve"]
	assert.Equal(t, "Approvals", approve.Group)
	assert.Equal(t, "Approve", approve.Label)
	assert.Equal(t, "Sales/Approve.js", approve.Path)

	export := byName["Export"]
	assert.Equal(t, "Reports", export.Group)
	assert.Equal(t, "Export", export.Label)
}

func TestParseScriptsMissingRoot(t *testing.T) {
	cmds, err := ParseScripts(fstest.MapFS{}, CommandsDir, "x")
	require.NoError(t, err)
	assert.Empty(t, cmds)
}

func TestAddByDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "Orders"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Refresh.js"), []byte("refresh()"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Orders", "Ship.js"), []byte("ship()"), 0644))

	r := NewWebRepository()
	n, err := r.AddByDirectory(dir, "dir")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	ship, ok := r.Get("Ship")
	require.True(t, ok)
	assert.Equal(t, "Orders", ship.Group)
}

func TestParseScriptsLongHeaderLine(t *testing.T) {
	long := "// " + strings.Repeat("x", 100*1024) + "\n// @label Minified\n" + strings.Repeat("y", 100*1024)
	fsys := fstest.MapFS{"Commands/Bundle.js": {Data: []byte(long)}}

	cmds, err := ParseScripts(fsys, CommandsDir, "bundle")
	require.NoError(t, err)
	require.Len(t, cmds, 1)
	assert.Equal(t, "Minified", cmds[0].Label)
}
