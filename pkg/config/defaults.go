package config

import (
	"strings"
	"time"
)

// Default values for the app section.
const (
	DefaultTopology          = "generic"
	DefaultCustomizationPath = "Customization"
)

// ApplyDefaults sets default values for any unspecified configuration fields.
//
// Zero values (0, "", false, nil) are replaced with defaults; explicit values
// are preserved.
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyTelemetryDefaults(&cfg.Telemetry)
	applyShutdownTimeoutDefaults(cfg)
	applyAppDefaults(&cfg.App)
	applyServerDefaults(&cfg.Server)
}

// applyLoggingDefaults sets logging defaults and normalizes values.
func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	// Normalize log level to uppercase for consistent internal representation
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

// applyTelemetryDefaults sets OpenTelemetry defaults.
func applyTelemetryDefaults(cfg *TelemetryConfig) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "localhost:4317"
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 1.0
	}

	applyProfilingDefaults(&cfg.Profiling)
}

// applyProfilingDefaults sets Pyroscope profiling defaults.
func applyProfilingDefaults(cfg *ProfilingConfig) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "http://localhost:4040"
	}

	if len(cfg.ProfileTypes) == 0 {
		cfg.ProfileTypes = []string{
			"cpu",
			"alloc_objects",
			"alloc_space",
			"inuse_objects",
			"inuse_space",
			"goroutines",
		}
	}
}

// applyShutdownTimeoutDefaults sets shutdown timeout defaults.
func applyShutdownTimeoutDefaults(cfg *Config) {
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
}

// applyAppDefaults sets app section defaults. CurrentCulture is left empty
// so the system culture is used.
func applyAppDefaults(cfg *AppConfig) {
	cfg.Topology = strings.ToLower(strings.TrimSpace(cfg.Topology))
	if cfg.Topology == "" {
		cfg.Topology = DefaultTopology
	}
	if cfg.CustomizationPath == "" {
		cfg.CustomizationPath = DefaultCustomizationPath
	}
	if cfg.Settings == nil {
		cfg.Settings = map[string]string{}
	}
}

// applyServerDefaults sets web host HTTP server defaults.
func applyServerDefaults(cfg *ServerConfig) {
	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 10 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = 60 * time.Second
	}
}

// GetDefaultConfig returns a Config struct with all default values applied.
//
// This is useful for:
//   - Generating sample configuration files
//   - Testing
//   - Running without a config file
func GetDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}
