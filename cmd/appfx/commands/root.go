// Package commands implements the appfx CLI.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/marmos91/appfx/cmd/appfx/commands/config"
)

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"

	// Global flags.
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "appfx",
	Short: "appfx - plugin-driven application host",
	Long: `appfx boots a plugin-driven application: it resolves culture and identity
for the configured topology, loads and initializes plugins, builds the
command, block and view metadata, and runs the main process. In the web
topology the frozen catalogs are served over HTTP.

Use "appfx [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// GetRootCmd returns the root command for testing purposes.
func GetRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/appfx/config.yaml)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(commandsCmd)
	rootCmd.AddCommand(pluginsCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(config.Cmd)
	rootCmd.AddCommand(completionCmd)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// GetConfigFile returns the config file path from the global flag.
func GetConfigFile() string {
	return cfgFile
}
