// Package protocol drives the external HTML engine through its batch
// protocol.
//
// One engine invocation carries a whole fixture's worth of cases on
// stdin and returns one JSON array on stdout, one element per case in
// request order. The request grammar is line oriented:
//
//	<case count>
//	<field>\t<field>\t...\t<payload length>
//	<base64 payload, split into 900-character lines>
//	...
//
// Payloads are the raw bytes of the case input (generalized UTF-8, so
// unpaired surrogates pass through; see internal/wtf8), base64 encoded
// and chunked because the engine's line reader has a bounded per-line
// length. Anything short of a clean run - non-zero exit, unparseable
// output, a result count that disagrees with the request, or the
// wall-clock timeout - fails the whole batch; partial output is never
// trusted.
package protocol

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"strconv"
	"strings"
)

// Engine modes, passed as the subprocess's single argument.
const (
	ModeTokenizer    = "tokenizer-batch"
	ModeTokenizerXML = "tokenizer-batch-xml"
	ModeTree         = "tree-batch"
	ModeEncoding     = "encoding-batch"
)

// chunkSize bounds base64 payload lines. The engine's line reader caps
// lines at 1023 characters.
const chunkSize = 900

// Case is one unit of work in a batch: header fields (suite dependent)
// followed by the input payload.
type Case struct {
	Fields  []string
	Payload []byte
}

// TokenizerCase builds a tokenizer-batch case. An empty lastStartTag is
// sent as "-".
func TokenizerCase(state, lastStartTag, input string) Case {
	return Case{Fields: []string{state, dashDefault(lastStartTag)}, Payload: []byte(input)}
}

// TreeCase builds a tree-batch case. kind is "doc" or "frag"; empty
// context and scripting are sent as "-".
func TreeCase(kind, context, scripting, input string) Case {
	return Case{
		Fields:  []string{kind, dashDefault(context), dashDefault(scripting)},
		Payload: []byte(input),
	}
}

// EncodingCase builds an encoding-batch case. An empty transport hint is
// sent as "-".
func EncodingCase(transport string, data []byte) Case {
	return Case{Fields: []string{dashDefault(transport)}, Payload: data}
}

func dashDefault(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// EncodeBatch serializes cases into the request the engine reads from
// stdin.
func EncodeBatch(cases []Case) []byte {
	var b strings.Builder
	b.WriteString(strconv.Itoa(len(cases)))
	b.WriteByte('\n')
	for _, c := range cases {
		payload := base64.StdEncoding.EncodeToString(c.Payload)
		for _, f := range c.Fields {
			b.WriteString(f)
			b.WriteByte('\t')
		}
		b.WriteString(strconv.Itoa(len(payload)))
		b.WriteByte('\n')
		for len(payload) > 0 {
			n := min(chunkSize, len(payload))
			b.WriteString(payload[:n])
			b.WriteByte('\n')
			payload = payload[n:]
		}
	}
	return []byte(b.String())
}

// Engine submits batches and returns index-aligned raw results. The
// production implementation is Runner; Fake serves tests that must run
// without the external engine.
type Engine interface {
	Submit(ctx context.Context, mode string, cases []Case) ([]json.RawMessage, error)
}
