package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/htmlconf/internal/journal"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Limit   int
	Suite   string
	Fixture string
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent recorded runs from the journal",
		Long: `Show pass/fail summaries of recent runs recorded with "run --journal",
newest first. With --suite and --fixture, show that fixture's recorded
rows instead. Requires a journal path in the configuration.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, opts)
		},
	}

	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "max runs to show")
	cmd.Flags().StringVar(&opts.Suite, "suite", "", "restrict to one suite (with --fixture)")
	cmd.Flags().StringVar(&opts.Fixture, "fixture", "", "restrict to one fixture (with --suite)")

	return cmd
}

func runHistory(cmd *cobra.Command, opts *HistoryOptions) error {
	cfg, err := opts.LoadConfig()
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	if cfg.JournalPath == "" {
		return NewExitError(ExitCommandError, "no journal configured (set journal: in the config file)")
	}

	j, err := journal.Open(cfg.JournalPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	defer j.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()
	if (opts.Suite == "") != (opts.Fixture == "") {
		return NewExitError(ExitCommandError, "--suite and --fixture go together")
	}
	if opts.Fixture != "" {
		stats, err := j.FixtureHistory(ctx, opts.Suite, opts.Fixture, opts.Limit)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read journal", err)
		}
		if len(stats) == 0 {
			fmt.Fprintln(out, "No recorded runs.")
			return nil
		}
		for _, s := range stats {
			fmt.Fprintf(out, "%s %s  passed=%d failed=%d skipped=%d total=%d\n",
				opts.Suite, s.Fixture, s.Passed, s.Failed, s.Skipped, s.Total)
		}
		return nil
	}

	runs, err := j.RecentRuns(ctx, opts.Limit)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read journal", err)
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, "No recorded runs.")
		return nil
	}
	for _, r := range runs {
		fmt.Fprintf(out, "%s  %s  passed=%d failed=%d skipped=%d total=%d fixtures=%d\n",
			r.CreatedAt, r.RunID, r.Passed, r.Failed, r.Skipped, r.Total, r.Fixtures)
	}
	return nil
}
