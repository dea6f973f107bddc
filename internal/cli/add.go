package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/htmlconf/internal/allowlist"
	"github.com/roach88/htmlconf/internal/suite"
)

// AddOptions holds flags for the add command.
type AddOptions struct {
	*RootOptions
	Kind    string
	Fixture string
	Add     []string
	Write   bool
}

// NewAddCommand creates the add command.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AddOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add indices/ranges to a fixture (dry-run by default)",
		Long: `Add case indices to one fixture's allowlist entry. Accepts plain
indices and ranges, repeatable:

  htmlconf add --kind tokenizer --fixture entities.test --add 12 --add "20-30" --add "1,2,5-7"

Changes are only persisted with --write.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Kind, "kind", "", "suite kind (tokenizer|tree-doc|tree-frag)")
	cmd.Flags().StringVar(&opts.Fixture, "fixture", "", "fixture basename")
	cmd.Flags().StringArrayVar(&opts.Add, "add", nil, `indices/ranges to add, e.g. --add "12" --add "20-30"`)
	cmd.Flags().BoolVar(&opts.Write, "write", false, "persist changes to the allowlist file")
	_ = cmd.MarkFlagRequired("kind")
	_ = cmd.MarkFlagRequired("fixture")

	return cmd
}

func runAdd(cmd *cobra.Command, opts *AddOptions) error {
	kind, err := suite.Parse(opts.Kind)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid --kind", err)
	}

	var toAdd []int
	for _, expr := range opts.Add {
		xs, err := allowlist.ParseRanges(expr)
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid --add", err)
		}
		toAdd = append(toAdd, xs...)
	}
	if len(toAdd) == 0 {
		return NewExitError(ExitCommandError, "nothing to add: provide --add ...")
	}

	cfg, err := opts.LoadConfig()
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	doc, err := opts.LoadAllowlist(cfg)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load allowlist", err)
	}

	before, after, err := doc.AddIndices(kind, opts.Fixture, toAdd)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to add indices", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %s: %d -> %d (+%d)\n", kind, opts.Fixture, before, after, after-before)

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
