package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/htmlconf/internal/report"
)

// NewStatsCommand creates the stats command.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print coverage per fixture and in total",
		Long: `Print enabled counts, corpus totals and coverage percentages per suite
kind and per fixture. Fixtures with no allowlist entry are listed with
zero enabled cases so coverage gaps stay visible.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(cmd, rootOpts)
		},
	}
	return cmd
}

func runStats(cmd *cobra.Command, opts *RootOptions) error {
	cfg, err := opts.LoadConfig()
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	doc, err := opts.LoadAllowlist(cfg)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load allowlist", err)
	}
	totals, err := report.Collect(cfg.TreeDir, cfg.TokenizerDir)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to count fixtures", err)
	}

	report.Stats(cmd.OutOrStdout(), doc, totals)
	return nil
}
