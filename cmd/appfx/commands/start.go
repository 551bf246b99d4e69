package commands

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/marmos91/appfx/internal/logger"
	"github.com/marmos91/appfx/pkg/host"
)

var startTopology string

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the application",
	Long: `Start the application in the foreground and run until interrupted.

The startup sequence resolves culture and identity for the topology, loads
compiled-in and directory plugins, builds the metadata catalogs and runs
the main process. In the web topology this serves the catalogs over HTTP.

Examples:
  # Start with the default config
  appfx start

  # Start with a custom config file
  appfx start --config /etc/appfx/config.yaml

  # Override the topology
  appfx start --topology web

  # Environment variable overrides
  APPFX_LOGGING_LEVEL=DEBUG appfx start`,
	RunE: runStart,
}

func init() {
	startCmd.Flags().StringVar(&startTopology, "topology", "", "Override app.topology (generic|desktop|web)")
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if startTopology != "" {
		cfg.App.Topology = startTopology
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdown, err := initObservability(ctx, cfg)
	if err != nil {
		return err
	}
	defer shutdown()

	logger.Info("Log level", "level", cfg.Logging.Level, "format", cfg.Logging.Format)

	h, err := host.New(cfg, host.Options{Version: Version})
	if err != nil {
		return err
	}
	return h.Run(ctx)
}
