package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/htmlconf/internal/allowlist"
	"github.com/roach88/htmlconf/internal/suite"
)

// ShowOptions holds flags for the show command.
type ShowOptions struct {
	*RootOptions
	Kind    string
	Fixture string
	Ranges  bool
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ShowOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show enabled indices per fixture",
		Long: `Show the enabled case indices recorded in the allowlist, optionally
restricted to one suite kind or one fixture, as plain indices or
compressed ranges.

Example:
  htmlconf show --kind tokenizer
  htmlconf show --kind tree-doc --fixture webkit01.dat --ranges`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Kind, "kind", "", "restrict to one kind (tokenizer|tree-doc|tree-frag)")
	cmd.Flags().StringVar(&opts.Fixture, "fixture", "", "restrict to one fixture")
	cmd.Flags().BoolVar(&opts.Ranges, "ranges", false, "show indices as compressed ranges (e.g. 1-5,7)")

	return cmd
}

func runShow(cmd *cobra.Command, opts *ShowOptions) error {
	cfg, err := opts.LoadConfig()
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	doc, err := opts.LoadAllowlist(cfg)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load allowlist", err)
	}

	kinds := suite.Kinds
	if opts.Kind != "" {
		kind, err := suite.Parse(opts.Kind)
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid --kind", err)
		}
		kinds = []suite.Kind{kind}
	}

	out := cmd.OutOrStdout()
	for _, kind := range kinds {
		fixtures := doc.Fixtures(kind)
		if opts.Fixture != "" {
			fixtures = []string{opts.Fixture}
		}
		for _, fx := range fixtures {
			indices := doc.Indices(kind, fx)
			shown := formatIndices(indices, opts.Ranges)
			fmt.Fprintf(out, "%s %s  count=%d\n", kind, fx, len(indices))
			fmt.Fprintf(out, "  %s\n", shown)
		}
	}
	return nil
}

func formatIndices(indices []int, ranges bool) string {
	if ranges {
		return allowlist.FormatRanges(indices)
	}
	parts := make([]string, len(indices))
	for i, x := range indices {
		parts[i] = strconv.Itoa(x)
	}
	return strings.Join(parts, " ")
}
