package transcript

import (
	"bufio"
	"fmt"
	"io"
)

// maxLineBytes bounds a single transcript line. Agent events can carry
// whole file diffs, so this is generous.
const maxLineBytes = 16 << 20

// Stream reads JSONL from in, tees every raw line (newline included) to
// each tee unmodified, and writes the rendered form to out.
func Stream(in io.Reader, out io.Writer, r *Renderer, tees ...io.Writer) error {
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)

	for sc.Scan() {
		raw := sc.Text()
		for _, tee := range tees {
			if _, err := io.WriteString(tee, raw+"\n"); err != nil {
				return fmt.Errorf("tee transcript: %w", err)
			}
		}
		for _, line := range r.RenderLine(raw) {
			if _, err := fmt.Fprintln(out, line); err != nil {
				return fmt.Errorf("render transcript: %w", err)
			}
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read transcript: %w", err)
	}
	return nil
}
