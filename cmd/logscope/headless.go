package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"pkt.systems/pslog"

	"github.com/five82/logscope/internal/app"
	"github.com/five82/logscope/internal/logapi"
	"github.com/five82/logscope/internal/session"
)

func newClient(cmd *cobra.Command, flags *globalFlags) (*logapi.Client, error) {
	cfg, err := app.LoadConfig(flags.options())
	if err != nil {
		return nil, err
	}
	if flags.debug {
		logger := pslog.NewWithOptions(cmd.ErrOrStderr(), pslog.Options{
			Mode:     pslog.ModeConsole,
			MinLevel: pslog.DebugLevel,
		})
		cmd.SetContext(pslog.ContextWithLogger(cmd.Context(), logger))
	}
	return app.NewClient(cfg)
}

func newStreamsCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "streams",
		Short: "List the streams the server offers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := newClient(cmd, flags)
			if err != nil {
				return err
			}
			return app.PrintStreams(cmd.Context(), cmd.OutOrStdout(), client)
		},
	}
}

func newTailCmd(flags *globalFlags) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "tail STREAM",
		Short: "Follow a stream and print lines as they arrive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 0 {
				return fmt.Errorf("--limit must not be negative")
			}
			client, err := newClient(cmd, flags)
			if err != nil {
				return err
			}
			return app.Tail(cmd.Context(), cmd.OutOrStdout(), client, args[0], limit)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "exit after this many lines (0 follows until interrupted)")
	return cmd
}

type searchFlags struct {
	start string
	end   string
	term  string
}

// params resolves the flags against now.
func (f searchFlags) params(stream string, now time.Time) (session.SearchParams, error) {
	start, err := logapi.ParseTime(f.start, now)
	if err != nil {
		return session.SearchParams{}, fmt.Errorf("--start: %w", err)
	}
	end, err := logapi.ParseTime(f.end, now)
	if err != nil {
		return session.SearchParams{}, fmt.Errorf("--end: %w", err)
	}
	return session.SearchParams{
		Stream: stream,
		Range:  logapi.TimeRange{Start: start, End: end},
		Term:   f.term,
	}, nil
}

func newSearchCmd(flags *globalFlags) *cobra.Command {
	var sf searchFlags
	cmd := &cobra.Command{
		Use:   "search STREAM",
		Short: "Print the lines of a stream within a time range",
		Long: "Print the lines of a stream within a time range.\n\n" +
			"Times accept \"now\", a duration before now (15m, 2h30m), RFC 3339,\n" +
			"or a local \"2006-01-02 15:04[:05]\" timestamp.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := sf.params(args[0], time.Now())
			if err != nil {
				return err
			}
			client, err := newClient(cmd, flags)
			if err != nil {
				return err
			}
			return app.Search(cmd.Context(), cmd.OutOrStdout(), client, params)
		},
	}
	cmd.Flags().StringVar(&sf.start, "start", "15m", "range start")
	cmd.Flags().StringVar(&sf.end, "end", "now", "range end")
	cmd.Flags().StringVarP(&sf.term, "term", "t", "", "only lines containing this text")
	return cmd
}
