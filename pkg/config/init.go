package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// sampleConfig is written by InitConfig. It must stay loadable by Load.
const sampleConfig = `# appfx Configuration File
#
# Every value below can be overridden with an APPFX_* environment variable,
# e.g. APPFX_APP_TOPOLOGY=web or APPFX_LOGGING_LEVEL=DEBUG.

logging:
  level: INFO     # DEBUG, INFO, WARN, ERROR
  format: text    # text, json
  output: stdout  # stdout, stderr, or a file path

telemetry:
  enabled: false
  endpoint: localhost:4317
  insecure: true
  sample_rate: 1.0
  profiling:
    enabled: false
    endpoint: http://localhost:4040

metrics:
  enabled: false

shutdown_timeout: 30s

app:
  # UI culture, e.g. en-US. Empty uses the system default.
  current_culture: %q
  # generic, desktop or web
  topology: %s
  root_dir: %q
  customization_path: Customization
  plugins_dir: %q
  watch_plugins: false
  settings:
    CommandsDir: Scripts/Commands/

server:
  port: %d
  read_timeout: 10s
  write_timeout: 10s
  idle_timeout: 60s
  # HS256 key for bearer tokens (at least 32 characters). Empty disables
  # token checks and the X-Remote-User header names the principal.
  # jwt_secret: ""
`

// InitOptions customizes the generated sample configuration.
type InitOptions struct {
	Culture    string
	Topology   string
	RootDir    string
	PluginsDir string
	Port       int
}

func (o InitOptions) withDefaults() InitOptions {
	if o.Topology == "" {
		o.Topology = DefaultTopology
	}
	if o.Port == 0 {
		o.Port = 8080
	}
	if o.PluginsDir == "" {
		o.PluginsDir = "plugins"
	}
	return o
}

// InitConfig writes a sample configuration to the default location and
// returns its path. It refuses to overwrite an existing file unless force
// is set.
func InitConfig(force bool) (string, error) {
	path := GetDefaultConfigPath()
	if err := InitConfigToPath(path, force); err != nil {
		return "", err
	}
	return path, nil
}

// InitConfigToPath writes a sample configuration to path.
func InitConfigToPath(path string, force bool) error {
	return InitConfigWithOptions(path, force, InitOptions{})
}

// InitConfigWithOptions writes a sample configuration built from opts.
func InitConfigWithOptions(path string, force bool, opts InitOptions) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("configuration file already exists at %s (use --force to overwrite)", path)
		}
	}

	opts = opts.withDefaults()
	content := fmt.Sprintf(sampleConfig, opts.Culture, opts.Topology, opts.RootDir, opts.PluginsDir, opts.Port)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
