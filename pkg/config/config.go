package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config represents the appfx host configuration.
//
// It captures everything the bootstrap sequence consumes before plugins run:
//   - Logging configuration
//   - Telemetry/tracing configuration
//   - Metrics configuration
//   - The app section (culture, topology, paths, settings)
//   - The HTTP server used by the web topology main process
//
// Configuration sources (in order of precedence):
//  1. CLI flags (highest priority)
//  2. Environment variables (APPFX_*)
//  3. Configuration file (YAML or TOML)
//  4. Default values (lowest priority)
type Config struct {
	// Logging controls log output behavior
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Telemetry controls OpenTelemetry distributed tracing
	Telemetry TelemetryConfig `mapstructure:"telemetry" yaml:"telemetry"`

	// Metrics controls Prometheus bootstrap metrics
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`

	// ShutdownTimeout is the maximum time to wait for graceful shutdown
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required,gt=0" yaml:"shutdown_timeout"`

	// App is the section read by the bootstrap sequence
	App AppConfig `mapstructure:"app" yaml:"app"`

	// Server configures the HTTP surface of the web topology
	Server ServerConfig `mapstructure:"server" yaml:"server"`
}

// AppConfig is the application section consumed during startup.
type AppConfig struct {
	// CurrentCulture is the UI culture name (e.g. "en-US").
	// Empty keeps the system default. Unrecognized names are ignored at
	// startup, so this field is deliberately not validated.
	CurrentCulture string `mapstructure:"current_culture" yaml:"current_culture"`

	// Topology selects the runtime topology: generic, desktop or web.
	// Default: generic
	Topology string `mapstructure:"topology" validate:"required,oneof=generic desktop web" yaml:"topology"`

	// RootDir is the base directory relative paths are mapped against.
	// Default: the current working directory
	RootDir string `mapstructure:"root_dir" yaml:"root_dir"`

	// CustomizationPath is the directory holding YAML overlays for blocks
	// and views, relative to RootDir unless absolute.
	// Default: "Customization"
	CustomizationPath string `mapstructure:"customization_path" yaml:"customization_path"`

	// PluginsDir is the directory scanned for directory-backed plugins,
	// relative to RootDir unless absolute. Empty disables discovery.
	PluginsDir string `mapstructure:"plugins_dir" yaml:"plugins_dir,omitempty"`

	// WatchPlugins loads plugin directories that appear after startup.
	WatchPlugins bool `mapstructure:"watch_plugins" yaml:"watch_plugins"`

	// Settings is a free-form key/value map (see GetAppSettingOrDefault).
	Settings map[string]string `mapstructure:"settings" yaml:"settings,omitempty"`
}

// ServerConfig configures the HTTP server started by the web topology.
type ServerConfig struct {
	// Port is the HTTP listen port
	// Default: 8080
	Port int `mapstructure:"port" validate:"min=1,max=65535" yaml:"port"`

	// ReadTimeout is the maximum duration for reading a request
	ReadTimeout time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`

	// WriteTimeout is the maximum duration for writing a response
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`

	// IdleTimeout is the keep-alive idle timeout
	IdleTimeout time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout"`

	// JWTSecret is the HMAC key bearer tokens are verified with. When set,
	// requests carrying an Authorization header must present a valid
	// HS256 token; its subject becomes the request principal.
	// Must be at least 32 characters. Empty disables token checks.
	JWTSecret string `mapstructure:"jwt_secret" validate:"omitempty,min=32" yaml:"jwt_secret,omitempty"`

	// JWTIssuer, when set, is required in the iss claim of bearer tokens.
	JWTIssuer string `mapstructure:"jwt_issuer" yaml:"jwt_issuer,omitempty"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output
	// Valid values: DEBUG, INFO, WARN, ERROR (case-insensitive, normalized to uppercase)
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`

	// Format specifies the log output format
	// Valid values: text, json
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`

	// Output specifies where logs are written
	// Valid values: stdout, stderr, or a file path
	Output string `mapstructure:"output" validate:"required" yaml:"output"`
}

// TelemetryConfig controls OpenTelemetry distributed tracing.
// When enabled, one span per startup step is exported to an OTLP collector.
type TelemetryConfig struct {
	// Enabled controls whether distributed tracing is enabled
	// Default: false (opt-in for telemetry)
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Endpoint is the OTLP collector endpoint (host:port)
	// Default: "localhost:4317" (standard OTLP gRPC port)
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`

	// Insecure controls whether to use insecure (non-TLS) connection
	// Default: true (for local development)
	Insecure bool `mapstructure:"insecure" yaml:"insecure"`

	// SampleRate controls the trace sampling rate (0.0 to 1.0)
	// Default: 1.0 (sample all)
	SampleRate float64 `mapstructure:"sample_rate" validate:"omitempty,gte=0,lte=1" yaml:"sample_rate"`

	// Profiling contains Pyroscope continuous profiling configuration
	Profiling ProfilingConfig `mapstructure:"profiling" yaml:"profiling"`
}

// ProfilingConfig controls Pyroscope continuous profiling.
type ProfilingConfig struct {
	// Enabled controls whether continuous profiling is enabled
	// Default: false (opt-in for profiling)
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Endpoint is the Pyroscope server endpoint (URL)
	// Default: "http://localhost:4040" (standard Pyroscope port)
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`

	// ProfileTypes specifies which profile types to collect
	// Default: ["cpu", "alloc_objects", "alloc_space", "inuse_objects", "inuse_space", "goroutines"]
	ProfileTypes []string `mapstructure:"profile_types" yaml:"profile_types"`
}

// MetricsConfig configures Prometheus metrics.
// When Enabled is false, no metrics are collected (zero overhead).
type MetricsConfig struct {
	// Enabled controls whether metrics collection is enabled.
	// In the web topology the registry is served on /metrics.
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

// Load loads configuration from file, environment, and defaults.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (APPFX_*)
//  2. Configuration file
//  3. Default values
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setupViper(v, configPath)

	configFileFound, err := readConfigFile(v)
	if err != nil {
		return nil, err
	}

	if !configFileFound {
		cfg := GetDefaultConfig()
		return cfg, nil
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(configDecodeHooks())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration with helpful error messages.
// It checks if the config file exists and provides user-friendly instructions if not.
func MustLoad(configPath string) (*Config, error) {
	if configPath == "" {
		if !DefaultConfigExists() {
			return nil, fmt.Errorf("no configuration file found at default location: %s\n\n"+
				"Please initialize a configuration file first:\n"+
				"  appfx init\n\n"+
				"Or specify a custom config file:\n"+
				"  appfx <command> --config /path/to/config.yaml",
				GetDefaultConfigPath())
		}
		configPath = GetDefaultConfigPath()
	} else {
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("configuration file not found: %s\n\n"+
				"Please create the configuration file:\n"+
				"  appfx init --config %s",
				configPath, configPath)
		}
	}

	cfg, err := Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to the specified file path in YAML.
func SaveConfig(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// setupViper configures viper with environment variables and config file settings.
func setupViper(v *viper.Viper, configPath string) {
	// Example: APPFX_APP_TOPOLOGY=web
	v.SetEnvPrefix("APPFX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(getConfigDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

// readConfigFile reads the configuration file if it exists.
// Returns (fileFound, error) where fileFound indicates if a config file was found.
func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read config file: %w", err)
	}

	return true, nil
}

// configDecodeHooks returns a combined decode hook for all custom types.
func configDecodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		durationDecodeHook(),
		mapstructure.StringToSliceHookFunc(","),
	)
}

// durationDecodeHook returns a mapstructure decode hook that converts strings
// to time.Duration. This enables config files to use human-readable durations
// like "30s", "5m", "1h".
func durationDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			return time.ParseDuration(v)
		case int:
			// Raw integers are nanoseconds
			return time.Duration(v), nil
		case int64:
			return time.Duration(v), nil
		case float64:
			// YAML often deserializes numbers as float64
			return time.Duration(v), nil
		default:
			return data, nil
		}
	}
}

// getConfigDir returns the configuration directory path.
//
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config, or falls back to current
// directory (.) if home directory cannot be determined.
func getConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "appfx")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	return filepath.Join(home, ".config", "appfx")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// DefaultConfigExists checks if a config file exists at the default location.
func DefaultConfigExists() bool {
	_, err := os.Stat(GetDefaultConfigPath())
	return err == nil
}

// GetConfigDir returns the configuration directory path (exposed for init command).
func GetConfigDir() string {
	return getConfigDir()
}
