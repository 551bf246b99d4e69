package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/marmos91/appfx/internal/cli/prompt"
	"github.com/marmos91/appfx/pkg/config"
)

var (
	initForce       bool
	initInteractive bool
	initOpts        config.InitOptions
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a sample configuration file",
	Long: `Initialize a sample appfx configuration file.

By default, the configuration file is created at $XDG_CONFIG_HOME/appfx/config.yaml.
Use --config to specify a custom path.

Examples:
  # Initialize with default location
  appfx init

  # Answer the questions interactively
  appfx init --interactive

  # Web topology on port 9090
  appfx init --topology web --port 9090

  # Force overwrite existing config
  appfx init --force`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Force overwrite existing config file")
	initCmd.Flags().BoolVarP(&initInteractive, "interactive", "i", false, "Prompt for each setting")
	initCmd.Flags().StringVar(&initOpts.Topology, "topology", config.DefaultTopology, "Runtime topology (generic|desktop|web)")
	initCmd.Flags().StringVar(&initOpts.Culture, "culture", "", "UI culture, e.g. en-US (default: system)")
	initCmd.Flags().StringVar(&initOpts.RootDir, "root-dir", "", "Application root directory (default: working directory)")
	initCmd.Flags().StringVar(&initOpts.PluginsDir, "plugins-dir", "plugins", "Directory scanned for plugins, relative to the root")
	initCmd.Flags().IntVar(&initOpts.Port, "port", 8080, "HTTP port of the web topology")
}

func runInit(cmd *cobra.Command, args []string) error {
	opts := initOpts
	if initInteractive {
		var err error
		if opts, err = promptInitOptions(opts); err != nil {
			return err
		}
	}

	configPath := GetConfigFile()
	if configPath == "" {
		configPath = config.GetDefaultConfigPath()
	}
	if err := config.InitConfigWithOptions(configPath, initForce, opts); err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Configuration file created at: %s\n", configPath)
	_, _ = fmt.Fprintln(out, "\nNext steps:")
	_, _ = fmt.Fprintln(out, "  1. Drop plugin directories (each with a plugin.yaml) into the plugins directory")
	_, _ = fmt.Fprintln(out, "  2. Start the application with: appfx start")
	_, _ = fmt.Fprintf(out, "  3. Or specify custom config: appfx start --config %s\n", configPath)
	return nil
}

func promptInitOptions(opts config.InitOptions) (config.InitOptions, error) {
	var err error
	if opts.Topology, err = prompt.Select("Topology", []string{"generic", "desktop", "web"}); err != nil {
		return opts, err
	}
	if opts.Culture, err = prompt.InputWithValidation("UI culture (empty for system)", opts.Culture, validateCulture); err != nil {
		return opts, err
	}
	if opts.PluginsDir, err = prompt.Input("Plugins directory", opts.PluginsDir); err != nil {
		return opts, err
	}
	if opts.Topology == "web" {
		if opts.Port, err = prompt.InputPort("HTTP port", opts.Port); err != nil {
			return opts, err
		}
	}
	return opts, nil
}

func validateCulture(s string) error {
	if s == "" {
		return nil
	}
	if _, err := language.Parse(s); err != nil {
		return fmt.Errorf("not a culture name: %s", s)
	}
	return nil
}
