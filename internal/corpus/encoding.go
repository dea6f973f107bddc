package corpus

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
)

// EncodingCase is one encoding-sniffing test block.
type EncodingCase struct {
	Input    string // bytes fed to the sniffer, as read from the fixture
	Expected string // expected encoding label, as written in the fixture
}

// ParseEncodingBlock parses one #data/#encoding block.
func ParseEncodingBlock(block string) (EncodingCase, error) {
	lines := strings.Split(strings.ReplaceAll(block, "\r\n", "\n"), "\n")
	if len(lines) == 0 || lines[0] != "#data" {
		return EncodingCase{}, fmt.Errorf("malformed block: missing #data")
	}
	iEnc := -1
	for i, line := range lines {
		if line == "#encoding" {
			iEnc = i
			break
		}
	}
	if iEnc < 0 {
		return EncodingCase{}, fmt.Errorf("malformed block: missing #encoding")
	}
	return EncodingCase{
		Input:    strings.Join(lines[1:iEnc], "\n"),
		Expected: strings.TrimSpace(strings.Join(lines[iEnc+1:], "\n")),
	}, nil
}

// ReadEncodingFixture parses every block of one encoding *.dat file.
func ReadEncodingFixture(path string) ([]EncodingCase, error) {
	raw, err := readFixtureText(path)
	if err != nil {
		return nil, fmt.Errorf("read encoding fixture: %w", err)
	}
	blocks := SplitBlocks(raw)
	cases := make([]EncodingCase, 0, len(blocks))
	for i, block := range blocks {
		ec, err := ParseEncodingBlock(block)
		if err != nil {
			return nil, fmt.Errorf("encoding fixture %s block %d: %w", path, i, err)
		}
		cases = append(cases, ec)
	}
	return cases, nil
}

// CountEncodingCases returns the case population of one encoding fixture.
func CountEncodingCases(path string) (int, error) {
	cases, err := ReadEncodingFixture(path)
	if err != nil {
		return 0, err
	}
	return len(cases), nil
}

// labelAliases covers spellings the fixtures use that are not WHATWG
// encoding labels.
var labelAliases = map[string]string{
	"latin-1":     "latin1",
	"windows1252": "windows-1252",
}

// NormalizeLabel canonicalizes an encoding label for comparison.
//
// Labels resolve through the WHATWG encoding label registry
// (x/text/encoding/htmlindex), which already folds utf8 into utf-8 and the
// whole Latin-1 family into windows-1252. Labels the registry does not
// know fall back to their case-folded spelling so unknown-vs-unknown
// comparisons still behave sensibly.
func NormalizeLabel(label string) string {
	s := strings.ToLower(strings.TrimSpace(label))
	if alias, ok := labelAliases[s]; ok {
		s = alias
	}
	enc, err := htmlindex.Get(s)
	if err != nil {
		return s
	}
	name, err := htmlindex.Name(enc)
	if err != nil {
		return s
	}
	return name
}

// LabelsEqual reports whether two encoding labels name the same encoding
// under alias normalization.
func LabelsEqual(a, b string) bool {
	return NormalizeLabel(a) == NormalizeLabel(b)
}
