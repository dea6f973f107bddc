// Command jsonl-pp pretty-prints an agent JSONL transcript from stdin,
// optionally teeing the raw lines to files for later replay.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/roach88/htmlconf/internal/transcript"
)

func main() {
	if err := newCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "jsonl-pp: %v\n", err)
		os.Exit(1)
	}
}

func newCommand() *cobra.Command {
	var (
		appendMode    bool
		noColor       bool
		showCmdOutput string
		truncateText  int
		truncateCmd   int
	)

	cmd := &cobra.Command{
		Use:   "jsonl-pp [dest...]",
		Short: "Pretty-print an agent JSONL transcript from stdin",
		Long: `Read JSONL transcript events on stdin, render them for humans on
stdout, and tee the unmodified raw lines to each dest file.

Example:
  some-agent --json | jsonl-pp transcript.jsonl`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if noColor {
				color.NoColor = true
			}
			switch showCmdOutput {
			case transcript.ShowNever, transcript.ShowOnFail, transcript.ShowAlways:
			default:
				return fmt.Errorf("invalid --show-cmd-output %q (want never, on-fail or always)", showCmdOutput)
			}

			var tees []io.Writer
			flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
			if appendMode {
				flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
			}
			for _, dest := range args {
				f, err := os.OpenFile(dest, flags, 0644)
				if err != nil {
					return fmt.Errorf("open tee %s: %w", dest, err)
				}
				defer f.Close()
				tees = append(tees, f)
			}

			r := transcript.New(transcript.Options{
				TruncateText:  truncateText,
				TruncateCmd:   truncateCmd,
				ShowCmdOutput: showCmdOutput,
			})
			return transcript.Stream(cmd.InOrStdin(), cmd.OutOrStdout(), r, tees...)
		},
	}

	cmd.Flags().BoolVarP(&appendMode, "append", "a", false, "append to tee files instead of truncating")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable colored output")
	cmd.Flags().StringVar(&showCmdOutput, "show-cmd-output", transcript.ShowOnFail, "when to show command output: never, on-fail, always")
	cmd.Flags().IntVar(&truncateText, "truncate-text", 0, "truncate rendered text fields to N runes (0 = no limit)")
	cmd.Flags().IntVar(&truncateCmd, "truncate-cmd", 0, "truncate rendered command lines to N runes (0 = no limit)")

	return cmd
}
