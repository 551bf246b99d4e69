package config

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/appfx/pkg/config"
)

func TestSchema_UsesFileKeys(t *testing.T) {
	data, err := Schema()
	require.NoError(t, err)

	var schema struct {
		Title      string                     `json:"title"`
		Properties map[string]json.RawMessage `json:"properties"`
	}
	require.NoError(t, json.Unmarshal(data, &schema))
	assert.Equal(t, "appfx Configuration", schema.Title)
	assert.Contains(t, schema.Properties, "app")
	assert.Contains(t, schema.Properties, "shutdown_timeout")
	assert.Contains(t, string(schema.Properties["app"]), "plugins_dir")
}

func TestWarnings(t *testing.T) {
	root := t.TempDir()
	cfg := config.GetDefaultConfig()
	cfg.App.RootDir = root
	cfg.App.PluginsDir = "plugins"
	cfg.Metrics.Enabled = true

	warnings := Warnings(cfg)
	assert.Len(t, warnings, 3)

	require.NoError(t, os.MkdirAll(filepath.Join(root, "plugins"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, cfg.App.CustomizationPath), 0o755))
	cfg.App.Topology = "web"
	assert.Empty(t, Warnings(cfg))

	cfg.App.PluginsDir = ""
	cfg.App.WatchPlugins = true
	assert.Equal(t, []string{"watch_plugins is set but plugins_dir is empty - nothing to watch"}, Warnings(cfg))
}

func TestShow_RedactsJWTSecret(t *testing.T) {
	const secret = "0123456789abcdef0123456789abcdef"
	cfg := config.GetDefaultConfig()
	cfg.Server.JWTSecret = secret
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, config.SaveConfig(cfg, path))

	if Cmd.PersistentFlags().Lookup("config") == nil {
		Cmd.PersistentFlags().String("config", "", "")
	}
	var buf bytes.Buffer
	Cmd.SetOut(&buf)
	Cmd.SetArgs([]string{"show", "--config", path, "-o", "yaml"})
	t.Cleanup(func() {
		Cmd.SetOut(nil)
		Cmd.SetArgs(nil)
	})

	require.NoError(t, Cmd.Execute())
	assert.NotContains(t, buf.String(), secret)
	assert.Contains(t, buf.String(), redacted)
}
