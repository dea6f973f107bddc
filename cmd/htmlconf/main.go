// Command htmlconf runs html5lib conformance fixtures against the HTML
// engine and manages the allowlists recording which cases pass.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/htmlconf/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		// Commands that already reported on stderr return an empty message.
		if msg := err.Error(); msg != "" {
			fmt.Fprintf(os.Stderr, "htmlconf: %s\n", msg)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
