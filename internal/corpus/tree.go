package corpus

import (
	"fmt"
	"strings"
)

// TreeCase is one tree-construction test block.
type TreeCase struct {
	Input      string
	Expected   string // expected tree dump, trailing newline stripped
	ErrorCount int
	Fragment   bool
	Context    string // fragment context element; empty unless Fragment
	Scripting  string // "", "on" or "off"; empty means engine default
}

// treeDirectives terminate free-text sections inside a block.
var treeDirectives = map[string]bool{
	"#new-errors":        true,
	"#document-fragment": true,
	"#document":          true,
	"#script-off":        true,
	"#script-on":         true,
}

// SplitBlocks splits fixture text into blocks, one per line reading
// exactly "#data". Each block starts at its #data line; trailing blank
// lines are trimmed. CRLF line endings are normalized first.
func SplitBlocks(raw string) []string {
	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")
	var starts []int
	for i, line := range lines {
		if line == "#data" {
			starts = append(starts, i)
		}
	}
	if len(starts) == 0 {
		return nil
	}
	blocks := make([]string, 0, len(starts))
	for bi, lo := range starts {
		hi := len(lines) - 1
		if bi+1 < len(starts) {
			hi = starts[bi+1] - 1
		}
		for hi >= lo && lines[hi] == "" {
			hi--
		}
		blocks = append(blocks, strings.Join(lines[lo:hi+1], "\n"))
	}
	return blocks
}

// ParseTreeBlock parses one tree-construction block.
//
// Missing #data, #errors or #document is an error; the block cannot be
// skipped without desynchronizing case numbering for the rest of the file.
func ParseTreeBlock(block string) (TreeCase, error) {
	lines := strings.Split(strings.ReplaceAll(block, "\r\n", "\n"), "\n")
	if len(lines) == 0 || lines[0] != "#data" {
		return TreeCase{}, fmt.Errorf("malformed block: missing #data")
	}

	iErrors := -1
	for i, line := range lines {
		if line == "#errors" {
			iErrors = i
			break
		}
	}
	if iErrors < 0 {
		return TreeCase{}, fmt.Errorf("malformed block: missing #errors")
	}

	tc := TreeCase{Input: strings.Join(lines[1:iErrors], "\n")}

	// Every non-empty, non-directive line in the error sections counts as
	// one expected parse error.
	idx := iErrors + 1
	for idx < len(lines) && lines[idx] != "" && !treeDirectives[lines[idx]] {
		tc.ErrorCount++
		idx++
	}
	if idx < len(lines) && lines[idx] == "#new-errors" {
		idx++
		for idx < len(lines) && lines[idx] != "" && !treeDirectives[lines[idx]] {
			tc.ErrorCount++
			idx++
		}
	}

	if idx < len(lines) && lines[idx] == "#document-fragment" {
		idx++
		tc.Fragment = true
		if idx < len(lines) {
			tc.Context = lines[idx]
			idx++
		}
	}

	if idx < len(lines) && (lines[idx] == "#script-off" || lines[idx] == "#script-on") {
		if lines[idx] == "#script-off" {
			tc.Scripting = "off"
		} else {
			tc.Scripting = "on"
		}
		idx++
	}

	if idx >= len(lines) || lines[idx] != "#document" {
		return TreeCase{}, fmt.Errorf("malformed block: missing #document")
	}
	tc.Expected = strings.TrimRight(strings.Join(lines[idx+1:], "\n"), "\n")
	return tc, nil
}

// ReadTreeFixture parses every block of one tree-construction *.dat file.
// Cases keep file order; document and fragment numbering is derived by the
// caller from the Fragment flag.
func ReadTreeFixture(path string) ([]TreeCase, error) {
	raw, err := readFixtureText(path)
	if err != nil {
		return nil, fmt.Errorf("read tree fixture: %w", err)
	}
	blocks := SplitBlocks(raw)
	cases := make([]TreeCase, 0, len(blocks))
	for i, block := range blocks {
		tc, err := ParseTreeBlock(block)
		if err != nil {
			return nil, fmt.Errorf("tree fixture %s block %d: %w", path, i, err)
		}
		cases = append(cases, tc)
	}
	return cases, nil
}

// CountTreeCases returns the (document, fragment) case populations of one
// fixture. Counting is deliberately lenient: a block with no #document
// line is ignored rather than failing the totals, so coverage stays
// computable even when one fixture is broken.
func CountTreeCases(path string) (doc, frag int, err error) {
	raw, err := readFixtureText(path)
	if err != nil {
		return 0, 0, fmt.Errorf("read tree fixture: %w", err)
	}
	for _, block := range SplitBlocks(raw) {
		lines := strings.Split(block, "\n")
		docIdx, fragIdx := -1, -1
		for i, line := range lines {
			switch line {
			case "#document":
				if docIdx < 0 {
					docIdx = i
				}
			case "#document-fragment":
				if fragIdx < 0 {
					fragIdx = i
				}
			}
		}
		if docIdx < 0 {
			continue
		}
		if fragIdx >= 0 && fragIdx < docIdx {
			frag++
		} else {
			doc++
		}
	}
	return doc, frag, nil
}
