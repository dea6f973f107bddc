package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/htmlconf/internal/harness"
	"github.com/roach88/htmlconf/internal/journal"
	"github.com/roach88/htmlconf/internal/protocol"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Suites  []string
	Build   bool
	Journal bool
	Limit   int
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run enabled conformance cases against the engine",
		Long: `Run the allowlisted tokenizer and tree-construction cases, plus the
encoding suite, against the engine and report mismatches. A mismatch
means a case the allowlist records as passing no longer does.

Example:
  htmlconf run
  htmlconf run --suite tokenizer --build --verbose`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd, opts)
		},
	}

	cmd.Flags().StringArrayVar(&opts.Suites, "suite", nil, "suites to run: tokenizer, tree, encoding (default all)")
	cmd.Flags().BoolVar(&opts.Build, "build", false, "rebuild the engine before running")
	cmd.Flags().BoolVar(&opts.Journal, "journal", false, "record fixture results in the run journal")
	cmd.Flags().IntVar(&opts.Limit, "limit", 50, "max mismatches to print")

	return cmd
}

func runRun(cmd *cobra.Command, opts *RunOptions) error {
	cfg, err := opts.LoadConfig()
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	doc, err := opts.LoadAllowlist(cfg)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load allowlist", err)
	}

	suites, err := selectSuites(opts.Suites)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid --suite", err)
	}

	logger := opts.Logger()
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if opts.Engine == nil {
		if _, err := os.Stat(cfg.EngineExe); opts.Build || os.IsNotExist(err) {
			spec := protocol.BuildSpec{
				Exe:       cfg.EngineExe,
				Command:   cfg.BuildCommand,
				Dir:       cfg.Root,
				SourceDir: cfg.EngineSourceDir,
				SourceExt: cfg.EngineSourceExt,
				Output:    cmd.ErrOrStderr(),
			}
			if err := protocol.Build(ctx, spec, logger); err != nil {
				return WrapExitError(ExitCommandError, "failed to build engine", err)
			}
		}
	}

	h := &harness.Harness{Engine: opts.EngineFor(cfg, logger), Logger: logger}

	var stats []harness.FixtureStat
	var mismatches []harness.Mismatch
	for _, s := range suites {
		var st []harness.FixtureStat
		var mm []harness.Mismatch
		var err error
		switch s {
		case "tokenizer":
			st, mm, err = h.VerifyTokenizer(ctx, cfg.TokenizerDir, doc)
		case "tree":
			st, mm, err = h.VerifyTree(ctx, cfg.TreeDir, doc)
		case "encoding":
			st, mm, err = h.VerifyEncoding(ctx, cfg.EncodingDir, nil)
		}
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("%s suite failed", s), err)
		}
		stats = append(stats, st...)
		mismatches = append(mismatches, mm...)
	}

	if opts.Journal && cfg.JournalPath != "" {
		j, err := journal.Open(cfg.JournalPath)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open journal", err)
		}
		defer j.Close()
		runID, err := j.RecordRun(ctx, stats)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to record run", err)
		}
		logger.Debug("run recorded", "run", runID, "fixtures", len(stats))
	}

	errOut := cmd.ErrOrStderr()
	if len(mismatches) > 0 {
		limit := opts.Limit
		if limit <= 0 || limit > len(mismatches) {
			limit = len(mismatches)
		}
		for _, m := range mismatches[:limit] {
			fmt.Fprintln(errOut, m.String())
		}
		fmt.Fprintf(errOut, "%d failing cases\n", len(mismatches))
		// The summary already went to stderr; an empty message keeps main
		// from printing it a second time.
		return NewExitError(ExitFailure, "")
	}

	var passed, total int
	for _, s := range stats {
		passed += s.Passed
		total += s.Total
	}
	fmt.Fprintf(cmd.OutOrStdout(), "ok: %d/%d cases passing across %d fixtures\n", passed, total, len(stats))
	return nil
}

func selectSuites(requested []string) ([]string, error) {
	all := []string{"tokenizer", "tree", "encoding"}
	if len(requested) == 0 {
		return all, nil
	}
	valid := map[string]bool{}
	for _, s := range all {
		valid[s] = true
	}
	seen := map[string]bool{}
	var out []string
	for _, s := range requested {
		if !valid[s] {
			return nil, fmt.Errorf("unknown suite %q (want tokenizer, tree or encoding)", s)
		}
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out, nil
}
