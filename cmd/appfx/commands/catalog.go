package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/marmos91/appfx/internal/cli/output"
	"github.com/marmos91/appfx/pkg/app"
	"github.com/marmos91/appfx/pkg/config"
	"github.com/marmos91/appfx/pkg/host"
	"github.com/marmos91/appfx/pkg/meta/command"
)

var (
	listOutput   string
	listTopology string
)

var commandsCmd = &cobra.Command{
	Use:   "commands",
	Short: "List the command catalog",
	Long: `Run the startup sequence without the main process and list the
commands it builds. The web topology lists web commands, the others list
desktop commands.

Examples:
  # Web catalog as a table
  appfx commands --topology web

  # Desktop catalog as JSON
  appfx commands --topology desktop -o json`,
	RunE: runCommands,
}

var pluginsCmd = &cobra.Command{
	Use:   "plugins",
	Short: "List loaded plugins",
	Long: `Run the startup sequence without the main process and list every
plugin that was created and initialized, in initialization order.

Examples:
  appfx plugins
  appfx plugins -o yaml`,
	RunE: runPlugins,
}

func init() {
	for _, c := range []*cobra.Command{commandsCmd, pluginsCmd} {
		c.Flags().StringVarP(&listOutput, "output", "o", "table", "Output format (table|json|yaml)")
		c.Flags().StringVar(&listTopology, "topology", "", "Override app.topology (generic|desktop|web)")
	}
}

// inspect boots an application for listing and hands it to fn. The
// application is exited afterwards.
func inspect(ctx context.Context, fn func(*app.App) error) error {
	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}
	if listTopology != "" {
		cfg.App.Topology = listTopology
	}
	// Listing output goes to stdout; keep startup logs off it.
	cfg.Logging.Output = "stderr"
	if cfg.Logging.Level == "INFO" {
		cfg.Logging.Level = "WARN"
	}
	if err := InitLogger(cfg); err != nil {
		return err
	}

	h, err := host.New(cfg, host.Options{Version: Version, Inspect: true})
	if err != nil {
		return err
	}
	a := h.App()
	if err := a.Start(ctx); err != nil {
		_ = a.Exit(ctx)
		return fmt.Errorf("startup failed: %w", err)
	}
	defer func() { _ = a.Exit(ctx) }()
	return fn(a)
}

func runCommands(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(listOutput)
	if err != nil {
		return err
	}
	printer := output.NewPrinter(cmd.OutOrStdout(), format, false)

	return inspect(commandContext(cmd), func(a *app.App) error {
		if a.Environment().Topology().IsWeb() {
			return printer.Print(webCommandList(a.Store().WebCommands().Snapshot().All()))
		}
		return printer.Print(desktopCommandList(a.Store().DesktopCommands().List()))
	})
}

func runPlugins(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(listOutput)
	if err != nil {
		return err
	}
	printer := output.NewPrinter(cmd.OutOrStdout(), format, false)

	return inspect(commandContext(cmd), func(a *app.App) error {
		list := make(pluginList, 0, a.Plugins().Len())
		for _, p := range a.Plugins().AllPlugins() {
			row := host.PluginInfo{ID: p.ID()}
			if mod := p.Module(); mod != nil {
				row.Module = mod.Name()
			}
			list = append(list, row)
		}
		return printer.Print(list)
	})
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

type webCommandList []command.WebCommand

func (l webCommandList) Headers() []string { return []string{"Name", "Label", "Group", "Source", "Path"} }

func (l webCommandList) Rows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, c := range l {
		rows = append(rows, []string{c.Name, c.Label, c.Group, c.Source, c.Path})
	}
	return rows
}

type desktopCommandList []command.DesktopCommand

func (l desktopCommandList) Headers() []string {
	return []string{"Name", "Label", "Group", "Shortcut", "Source"}
}

func (l desktopCommandList) Rows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, c := range l {
		rows = append(rows, []string{c.Name, c.Label, c.Group, c.Shortcut, c.Source})
	}
	return rows
}

type pluginList []host.PluginInfo

func (l pluginList) Headers() []string { return []string{"#", "ID", "Module"} }

func (l pluginList) Rows() [][]string {
	rows := make([][]string, 0, len(l))
	for i, p := range l {
		rows = append(rows, []string{strconv.Itoa(i + 1), p.ID, p.Module})
	}
	return rows
}
