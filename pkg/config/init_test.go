package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestInitConfig_Success(t *testing.T) {
	// XDG_CONFIG_HOME rather than HOME: os.UserHomeDir reads USERPROFILE on Windows.
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	configPath, err := InitConfig(false)
	if err != nil {
		t.Fatalf("InitConfig failed: %v", err)
	}

	content, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatalf("Failed to read config file: %v", err)
	}

	contentStr := string(content)
	for _, section := range []string{
		"# appfx Configuration File",
		"logging:",
		"telemetry:",
		"metrics:",
		"app:",
		"server:",
	} {
		if !strings.Contains(contentStr, section) {
			t.Errorf("Config file missing section: %s", section)
		}
	}

	var parsed map[string]any
	if err := yaml.Unmarshal(content, &parsed); err != nil {
		t.Fatalf("Generated config is not valid YAML: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Generated config does not load: %v", err)
	}
	if cfg.App.Topology != DefaultTopology {
		t.Errorf("Expected topology %q, got %q", DefaultTopology, cfg.App.Topology)
	}
	if got := cfg.GetAppSettingOrDefault("CommandsDir", ""); got != "Scripts/Commands/" {
		t.Errorf("Expected CommandsDir 'Scripts/Commands/', got %q", got)
	}
}

func TestInitConfig_RefusesOverwrite(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	if _, err := InitConfig(false); err != nil {
		t.Fatalf("First InitConfig failed: %v", err)
	}
	_, err := InitConfig(false)
	if err == nil {
		t.Fatal("Expected error when config already exists")
	}
	if !strings.Contains(err.Error(), "already exists") {
		t.Errorf("Expected 'already exists' error, got: %v", err)
	}

	if _, err := InitConfig(true); err != nil {
		t.Errorf("Expected force to overwrite, got: %v", err)
	}
}

func TestInitConfigWithOptions(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(t.TempDir(), "nested", "dir", "config.yaml")

	err := InitConfigWithOptions(path, false, InitOptions{
		Culture:    "fr-FR",
		Topology:   "web",
		RootDir:    root,
		PluginsDir: "ext",
		Port:       9090,
	})
	if err != nil {
		t.Fatalf("InitConfigWithOptions failed: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Generated config does not load: %v", err)
	}
	if cfg.App.CurrentCulture != "fr-FR" {
		t.Errorf("Expected culture 'fr-FR', got %q", cfg.App.CurrentCulture)
	}
	if cfg.App.Topology != "web" {
		t.Errorf("Expected topology 'web', got %q", cfg.App.Topology)
	}
	if cfg.App.RootDir != root {
		t.Errorf("Expected root dir %q, got %q", root, cfg.App.RootDir)
	}
	if cfg.App.PluginsDir != "ext" {
		t.Errorf("Expected plugins dir 'ext', got %q", cfg.App.PluginsDir)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Expected port 9090, got %d", cfg.Server.Port)
	}
}

func TestInitOptions_Defaults(t *testing.T) {
	opts := InitOptions{}.withDefaults()

	if opts.Topology != DefaultTopology {
		t.Errorf("Expected topology %q, got %q", DefaultTopology, opts.Topology)
	}
	if opts.Port != 8080 {
		t.Errorf("Expected port 8080, got %d", opts.Port)
	}
	if opts.PluginsDir != "plugins" {
		t.Errorf("Expected plugins dir 'plugins', got %q", opts.PluginsDir)
	}
}
