package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/htmlconf/internal/allowlist"
	"github.com/roach88/htmlconf/internal/report"
)

// DiffPrevOptions holds flags for the diff-prev command.
type DiffPrevOptions struct {
	*RootOptions
	Rev            string
	All            bool
	FailOnDecrease bool
}

// NewDiffPrevCommand creates the diff-prev command.
func NewDiffPrevCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DiffPrevOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "diff-prev",
		Short: "Compare the allowlist against a historical git snapshot",
		Long: `Compare the working-tree allowlist against its content at a git
revision (default HEAD~1) and report per-kind and per-fixture deltas.
A revision that does not resolve (first commit, shallow fetch) only
warns: the current allowlist is compared against itself so the command
still produces stable output.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiffPrev(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Rev, "rev", "HEAD~1", "git revision to compare against")
	cmd.Flags().BoolVar(&opts.All, "all", false, "show all fixtures, not only changed ones")
	cmd.Flags().BoolVar(&opts.FailOnDecrease, "fail-on-decrease", false, "exit non-zero if any enabled count/percentage decreases")

	return cmd
}

func runDiffPrev(cmd *cobra.Command, opts *DiffPrevOptions) error {
	cfg, err := opts.LoadConfig()
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	cur, err := opts.LoadAllowlist(cfg)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load allowlist", err)
	}
	totals, err := report.Collect(cfg.TreeDir, cfg.TokenizerDir)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to count fixtures", err)
	}

	ctx := cmd.Context()
	errOut := cmd.ErrOrStderr()

	revLabel := opts.Rev
	if resolved, err := allowlist.ResolveRevision(ctx, cfg.Root, opts.Rev); err == nil {
		revLabel = resolved
	}

	relpath := allowlistLabel(cfg)
	prev, err := allowlist.LoadFromGit(ctx, cfg.Root, opts.Rev, filepath.ToSlash(relpath))
	if err != nil {
		// Common case: first commit in a repo or a shallow fetch.
		fmt.Fprintf(errOut, "warning: %v\n", err)
		fmt.Fprintln(errOut, "warning: treating previous allowlists as current (no diff baseline available)")
		prev = cur
	}

	regression := report.Diff(cmd.OutOrStdout(), prev, cur, totals, report.DiffOptions{
		RevLabel:  revLabel,
		FileLabel: relpath,
		All:       opts.All,
	})
	if regression && opts.FailOnDecrease {
		return NewExitError(ExitFailure, "coverage decreased")
	}
	return nil
}
