package config

import (
	"testing"
	"time"
)

func TestApplyDefaults_Logging(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Logging.Level != "INFO" {
		t.Errorf("Expected default log level 'INFO', got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Expected default log format 'text', got %q", cfg.Logging.Format)
	}
	if cfg.Logging.Output != "stdout" {
		t.Errorf("Expected default log output 'stdout', got %q", cfg.Logging.Output)
	}
}

func TestApplyDefaults_ShutdownTimeout(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.ShutdownTimeout != 30*time.Second {
		t.Errorf("Expected default shutdown timeout 30s, got %v", cfg.ShutdownTimeout)
	}
}

func TestApplyDefaults_App(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.App.Topology != DefaultTopology {
		t.Errorf("Expected default topology %q, got %q", DefaultTopology, cfg.App.Topology)
	}
	if cfg.App.CustomizationPath != DefaultCustomizationPath {
		t.Errorf("Expected default customization path %q, got %q", DefaultCustomizationPath, cfg.App.CustomizationPath)
	}
	if cfg.App.CurrentCulture != "" {
		t.Errorf("Expected empty culture (system default), got %q", cfg.App.CurrentCulture)
	}
	if cfg.App.Settings == nil {
		t.Error("Expected settings map to be initialized")
	}
}

func TestApplyDefaults_Server(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Server.Port != 8080 {
		t.Errorf("Expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 10*time.Second {
		t.Errorf("Expected default read timeout 10s, got %v", cfg.Server.ReadTimeout)
	}
	if cfg.Server.WriteTimeout != 10*time.Second {
		t.Errorf("Expected default write timeout 10s, got %v", cfg.Server.WriteTimeout)
	}
	if cfg.Server.IdleTimeout != 60*time.Second {
		t.Errorf("Expected default idle timeout 60s, got %v", cfg.Server.IdleTimeout)
	}
}

func TestApplyDefaults_Telemetry(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Telemetry.Enabled {
		t.Error("Expected telemetry to be opt-in")
	}
	if cfg.Telemetry.Endpoint != "localhost:4317" {
		t.Errorf("Expected default endpoint 'localhost:4317', got %q", cfg.Telemetry.Endpoint)
	}
	if cfg.Telemetry.SampleRate != 1.0 {
		t.Errorf("Expected default sample rate 1.0, got %v", cfg.Telemetry.SampleRate)
	}
	if len(cfg.Telemetry.Profiling.ProfileTypes) == 0 {
		t.Error("Expected default profile types")
	}
}

func TestApplyDefaults_PreservesExplicitValues(t *testing.T) {
	cfg := &Config{
		Logging:         LoggingConfig{Level: "debug", Format: "json", Output: "stderr"},
		ShutdownTimeout: 5 * time.Second,
		App: AppConfig{
			Topology:          "  Desktop ",
			CustomizationPath: "Overlays",
			CurrentCulture:    "fr-FR",
		},
		Server: ServerConfig{Port: 9090},
	}
	ApplyDefaults(cfg)

	if cfg.Logging.Level != "DEBUG" {
		t.Errorf("Expected level normalized to 'DEBUG', got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Output != "stderr" {
		t.Errorf("Explicit logging values not preserved: %+v", cfg.Logging)
	}
	if cfg.ShutdownTimeout != 5*time.Second {
		t.Errorf("Expected shutdown timeout 5s, got %v", cfg.ShutdownTimeout)
	}
	if cfg.App.Topology != "desktop" {
		t.Errorf("Expected topology normalized to 'desktop', got %q", cfg.App.Topology)
	}
	if cfg.App.CustomizationPath != "Overlays" || cfg.App.CurrentCulture != "fr-FR" {
		t.Errorf("Explicit app values not preserved: %+v", cfg.App)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Expected port 9090, got %d", cfg.Server.Port)
	}
}
