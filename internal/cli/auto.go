package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/htmlconf/internal/harness"
	"github.com/roach88/htmlconf/internal/suite"
)

// AutoOptions holds flags for the auto command.
type AutoOptions struct {
	*RootOptions
	Suite string
	Write bool
}

// NewAutoCommand creates the auto command.
func NewAutoCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AutoOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "auto",
		Short: "Regenerate allowlists from the engine's current behavior",
		Long: `Run every case of every discovered fixture and replace the allowlist
entries wholesale with the set of currently passing indices. Dry-run
unless --write is given.

Example:
  htmlconf auto --suite tokenizer
  htmlconf auto --suite tree --write`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAuto(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Suite, "suite", "", "suite to regenerate: tokenizer or tree")
	cmd.Flags().BoolVar(&opts.Write, "write", false, "persist changes to the allowlist file")
	_ = cmd.MarkFlagRequired("suite")

	return cmd
}

func runAuto(cmd *cobra.Command, opts *AutoOptions) error {
	if opts.Suite != "tokenizer" && opts.Suite != "tree" {
		return NewExitError(ExitCommandError, fmt.Sprintf("unknown suite %q (want tokenizer or tree)", opts.Suite))
	}

	cfg, err := opts.LoadConfig()
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	doc, err := opts.LoadAllowlist(cfg)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load allowlist", err)
	}

	logger := opts.Logger()
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	h := &harness.Harness{Engine: opts.EngineFor(cfg, logger), Logger: logger}

	out := cmd.OutOrStdout()
	if opts.Suite == "tokenizer" {
		deltas, err := h.AutoTokenizer(ctx, cfg.TokenizerDir, doc)
		if err != nil {
			return WrapExitError(ExitCommandError, "auto-allowlist failed", err)
		}
		for _, d := range deltas {
			fmt.Fprintf(out, "%s: Δ%+d (now %d)\n", d.Fixture, d.After-d.Before, d.After)
		}
	} else {
		deltas, err := h.AutoTree(ctx, cfg.TreeDir, doc)
		if err != nil {
			return WrapExitError(ExitCommandError, "auto-allowlist failed", err)
		}
		// Doc and frag deltas for one fixture arrive as adjacent pairs.
		for i := 0; i+1 < len(deltas); i += 2 {
			d, f := deltas[i], deltas[i+1]
			if d.Kind != suite.TreeDoc || f.Kind != suite.TreeFrag {
				return NewExitError(ExitCommandError, "unexpected delta ordering")
			}
			fmt.Fprintf(out, "%s: doc Δ%+d (now %d)  frag Δ%+d (now %d)\n",
				d.Fixture, d.After-d.Before, d.After, f.After-f.Before, f.After)
		}
	}

	if opts.Write {
		if err := doc.Save(cfg.AllowlistPath); err != nil {
			return WrapExitError(ExitCommandError, "failed to save allowlist", err)
		}
		fmt.Fprintf(out, "Wrote %s\n", cfg.AllowlistPath)
	} else {
		fmt.Fprintln(out, "Dry-run (pass --write to persist).")
	}
	return nil
}
