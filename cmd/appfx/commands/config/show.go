package config

import (
	"github.com/spf13/cobra"

	"github.com/marmos91/appfx/internal/cli/output"
	"github.com/marmos91/appfx/pkg/config"
)

var showOutput string

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Display current configuration",
	Long: `Display the effective appfx configuration, defaults and APPFX_*
environment overrides included.

Examples:
  # Show default config as YAML
  appfx config show

  # Show as JSON
  appfx config show --output json`,
	RunE: runConfigShow,
}

func init() {
	showCmd.Flags().StringVarP(&showOutput, "output", "o", "yaml", "Output format (yaml|json)")
}

const redacted = "<redacted>"

func runConfigShow(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")

	cfg, err := config.MustLoad(configPath)
	if err != nil {
		return err
	}

	if cfg.Server.JWTSecret != "" {
		cfg.Server.JWTSecret = redacted
	}

	format, err := output.ParseFormat(showOutput)
	if err != nil {
		return err
	}
	if format == output.FormatJSON {
		return output.PrintJSON(cmd.OutOrStdout(), cfg)
	}
	return output.PrintYAML(cmd.OutOrStdout(), cfg)
}
