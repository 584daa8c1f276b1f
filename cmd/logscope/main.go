package main

import (
	"context"
	"log"
	"os"

	"github.com/spf13/cobra"

	"pkt.systems/psi"
	"pkt.systems/pslog"

	"github.com/five82/logscope/internal/app"
)

func main() {
	psi.Run(submain)
}

func submain(ctx context.Context) int {
	logger := pslog.LoggerFromEnv(
		pslog.WithEnvWriter(os.Stderr),
		pslog.WithEnvOptions(pslog.Options{Mode: pslog.ModeConsole}),
	)
	ctx = pslog.ContextWithLogger(ctx, logger)
	log.SetOutput(pslog.LogLogger(logger).Writer())
	log.SetFlags(0)

	root := newRootCmd()
	root.SetArgs(os.Args[1:])
	if err := root.ExecuteContext(ctx); err != nil {
		pslog.Ctx(ctx).With("err", err).Error("logscope failed")
		return 1
	}
	return 0
}

// globalFlags are shared by the TUI and the headless subcommands.
type globalFlags struct {
	configPath string
	server     string
	debug      bool
}

func (g *globalFlags) options() app.Options {
	return app.Options{ConfigPath: g.configPath, Server: g.server, Debug: g.debug}
}

func newRootCmd() *cobra.Command {
	var flags globalFlags
	root := &cobra.Command{
		Use:           "logscope",
		Short:         "Browse, tail and search log streams from a log server",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.Run(cmd.Context(), flags.options())
		},
	}
	root.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "path to config file")
	root.PersistentFlags().StringVarP(&flags.server, "server", "s", "", "log server address (overrides config)")
	root.PersistentFlags().BoolVar(&flags.debug, "debug", false, "enable debug logging")

	root.AddCommand(newStreamsCmd(&flags))
	root.AddCommand(newTailCmd(&flags))
	root.AddCommand(newSearchCmd(&flags))
	return root
}
