package config

import (
	"strings"
	"testing"
)

func TestValidate_ValidConfig(t *testing.T) {
	cfg := GetDefaultConfig()

	if err := Validate(cfg); err != nil {
		t.Errorf("Expected valid config to pass validation, got error: %v", err)
	}
}

func TestValidate_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "log level",
			mutate:  func(c *Config) { c.Logging.Level = "INVALID" },
			wantErr: "oneof",
		},
		{
			name:    "log format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: "Format",
		},
		{
			name:    "topology",
			mutate:  func(c *Config) { c.App.Topology = "mobile" },
			wantErr: "Topology",
		},
		{
			name:    "port",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: "Port",
		},
		{
			name:    "short jwt secret",
			mutate:  func(c *Config) { c.Server.JWTSecret = "too-short" },
			wantErr: "JWTSecret",
		},
		{
			name:    "sample rate",
			mutate:  func(c *Config) { c.Telemetry.SampleRate = 1.5 },
			wantErr: "SampleRate",
		},
		{
			name:    "shutdown timeout",
			mutate:  func(c *Config) { c.ShutdownTimeout = 0 },
			wantErr: "ShutdownTimeout",
		},
		{
			name: "telemetry without endpoint",
			mutate: func(c *Config) {
				c.Telemetry.Enabled = true
				c.Telemetry.Endpoint = ""
			},
			wantErr: "telemetry.endpoint",
		},
		{
			name: "profiling without endpoint",
			mutate: func(c *Config) {
				c.Telemetry.Profiling.Enabled = true
				c.Telemetry.Profiling.Endpoint = ""
			},
			wantErr: "profiling.endpoint",
		},
		{
			name:    "watch without plugins dir",
			mutate:  func(c *Config) { c.App.WatchPlugins = true },
			wantErr: "app.plugins_dir",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := GetDefaultConfig()
			tt.mutate(cfg)

			err := Validate(cfg)
			if err == nil {
				t.Fatal("Expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got: %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidate_CultureNotValidated(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.App.CurrentCulture = "xx-INVALID"

	if err := Validate(cfg); err != nil {
		t.Errorf("Unrecognized cultures are tolerated at startup, got: %v", err)
	}
}

func TestValidate_DoesNotEchoJWTSecret(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Server.JWTSecret = "hunter2"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for short secret")
	}
	if strings.Contains(err.Error(), "hunter2") {
		t.Errorf("Validation error leaks the secret: %v", err)
	}
}
