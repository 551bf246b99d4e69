package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/marmos91/appfx/internal/cli/output"
	"github.com/marmos91/appfx/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate the appfx configuration file.

Checks for syntax errors, missing required fields and invalid values, then
warns about directories that startup will not find.

Examples:
  # Validate default config
  appfx config validate

  # Validate specific config file
  appfx config validate --config /etc/appfx/config.yaml`,
	RunE: runConfigValidate,
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")

	cfg, err := config.MustLoad(configPath)
	if err != nil {
		return err
	}

	displayPath := configPath
	if displayPath == "" {
		displayPath = config.GetDefaultConfigPath()
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Configuration file: %s\n", displayPath)
	_, _ = fmt.Fprintln(out, "Validation: OK")

	if warnings := Warnings(cfg); len(warnings) > 0 {
		_, _ = fmt.Fprintln(out, "\nWarnings:")
		for _, w := range warnings {
			_, _ = fmt.Fprintf(out, "  - %s\n", w)
		}
	}

	_, _ = fmt.Fprintln(out, "\nConfiguration summary:")
	return output.PrintKeyValues(out, [][2]string{
		{"Topology", cfg.App.Topology},
		{"Culture", orDefault(cfg.App.CurrentCulture, "(system)")},
		{"Plugins dir", orDefault(cfg.App.PluginsDir, "(disabled)")},
		{"HTTP port", fmt.Sprint(cfg.Server.Port)},
		{"Log level", cfg.Logging.Level},
	})
}

// Warnings reports settings that load fine but will not behave as the
// user probably expects.
func Warnings(cfg *config.Config) []string {
	var warnings []string

	root := cfg.App.RootDir
	resolve := func(p string) string {
		if filepath.IsAbs(p) || root == "" {
			return p
		}
		return filepath.Join(root, p)
	}

	if cfg.App.PluginsDir != "" && !isDir(resolve(cfg.App.PluginsDir)) {
		warnings = append(warnings, fmt.Sprintf("Plugins directory %s does not exist - no directory plugins will load", resolve(cfg.App.PluginsDir)))
	}
	if cfg.App.WatchPlugins && cfg.App.PluginsDir == "" {
		warnings = append(warnings, "watch_plugins is set but plugins_dir is empty - nothing to watch")
	}
	if !isDir(resolve(cfg.App.CustomizationPath)) {
		warnings = append(warnings, fmt.Sprintf("Customization path %s does not exist - overlays are disabled", resolve(cfg.App.CustomizationPath)))
	}
	if cfg.App.Topology != "web" && cfg.Metrics.Enabled {
		warnings = append(warnings, "Metrics are only served over HTTP in the web topology")
	}
	return warnings
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
