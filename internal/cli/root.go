// Package cli wires the conformance harness into the htmlconf command
// tree. Commands stay thin: they load configuration and the allowlist,
// call into harness/report/allowlist, and map failures to exit codes.
package cli

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/htmlconf/internal/allowlist"
	"github.com/roach88/htmlconf/internal/config"
	"github.com/roach88/htmlconf/internal/protocol"
)

// RootOptions holds global flags shared by all commands.
type RootOptions struct {
	Verbose bool
	Root    string // repository root; defaults to the working directory
	Config  string // optional config file path
	File    string // allowlist path override

	// Engine overrides the configured engine subprocess (for testing).
	Engine protocol.Engine
}

// NewRootCommand creates the root command for the htmlconf CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "htmlconf",
		Short: "html5lib conformance harness and allowlist manager",
		Long: `htmlconf runs html5lib conformance fixtures against the HTML engine
and manages the allowlists that record which cases currently pass.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Root, "root", ".", "repository root")
	cmd.PersistentFlags().StringVar(&opts.Config, "config", "", "config file (default <root>/htmlconf.yaml)")
	cmd.PersistentFlags().StringVar(&opts.File, "file", "", "allowlist JSON path (default from config)")

	cmd.AddCommand(NewShowCommand(opts))
	cmd.AddCommand(NewStatsCommand(opts))
	cmd.AddCommand(NewAddCommand(opts))
	cmd.AddCommand(NewDiffPrevCommand(opts))
	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewAutoCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))

	return cmd
}

// Logger builds the command logger: text on stderr, debug level behind
// --verbose.
func (o *RootOptions) Logger() *slog.Logger {
	level := slog.LevelInfo
	if o.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// LoadConfig resolves the effective configuration from root, config file
// and the --file override.
func (o *RootOptions) LoadConfig() (config.Config, error) {
	root, err := filepath.Abs(o.Root)
	if err != nil {
		return config.Config{}, err
	}
	cfg, err := config.Load(root, o.Config)
	if err != nil {
		return config.Config{}, err
	}
	if o.File != "" {
		path := o.File
		if !filepath.IsAbs(path) {
			path = filepath.Join(root, path)
		}
		cfg.AllowlistPath = path
	}
	return cfg, nil
}

// LoadAllowlist loads and validates the configured allowlist document.
func (o *RootOptions) LoadAllowlist(cfg config.Config) (*allowlist.Document, error) {
	return allowlist.Load(cfg.AllowlistPath)
}

// EngineFor returns the engine to submit batches to: the injected test
// engine when set, otherwise a Runner for the configured executable.
func (o *RootOptions) EngineFor(cfg config.Config, logger *slog.Logger) protocol.Engine {
	if o.Engine != nil {
		return o.Engine
	}
	return &protocol.Runner{
		Exe:     cfg.EngineExe,
		Dir:     cfg.Root,
		Timeout: cfg.Timeout,
		Logger:  logger,
	}
}

// allowlistLabel renders the allowlist path relative to the repo root
// where possible, for stable display output.
func allowlistLabel(cfg config.Config) string {
	if rel, err := filepath.Rel(cfg.Root, cfg.AllowlistPath); err == nil && !filepath.IsAbs(rel) && rel != "" && !isDotDot(rel) {
		return rel
	}
	return cfg.AllowlistPath
}

func isDotDot(rel string) bool {
	return rel == ".." || len(rel) > 2 && rel[:3] == ".."+string(filepath.Separator)
}
