// Package suite defines the closed set of conformance suite kinds.
//
// Every allowlist entry, fixture and batch is tagged with exactly one Kind.
// Tree-construction fixtures contribute two kinds (doc and frag) because
// document and fragment cases are numbered independently within one file.
package suite

import "fmt"

// Kind identifies one conformance suite family.
type Kind int

const (
	// Tokenizer covers html5lib tokenizer JSON fixtures (*.test).
	Tokenizer Kind = iota

	// TreeDoc covers full-document tree-construction cases (*.dat).
	TreeDoc

	// TreeFrag covers fragment tree-construction cases (*.dat).
	TreeFrag

	// Encoding covers encoding-sniffing cases (*.dat). Encoding results
	// are not allowlisted, so Encoding is absent from Kinds and Parse.
	Encoding
)

// Kinds lists the allowlisted suite kinds in canonical display order.
var Kinds = []Kind{TreeDoc, TreeFrag, Tokenizer}

// String returns the stable CLI/JSON spelling of the kind.
func (k Kind) String() string {
	switch k {
	case Tokenizer:
		return "tokenizer"
	case TreeDoc:
		return "tree-doc"
	case TreeFrag:
		return "tree-frag"
	case Encoding:
		return "encoding"
	default:
		return fmt.Sprintf("suite.Kind(%d)", int(k))
	}
}

// Parse converts the CLI spelling back to a Kind.
func Parse(s string) (Kind, error) {
	switch s {
	case "tokenizer":
		return Tokenizer, nil
	case "tree-doc":
		return TreeDoc, nil
	case "tree-frag":
		return TreeFrag, nil
	default:
		return 0, fmt.Errorf("unknown suite kind %q (want tokenizer, tree-doc or tree-frag)", s)
	}
}
