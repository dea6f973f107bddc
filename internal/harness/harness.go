// Package harness orchestrates conformance runs: it expands fixture cases
// into engine batches, compares engine results against fixture
// expectations, and derives passing-index sets for the allowlists.
package harness

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/htmlconf/internal/protocol"
	"github.com/roach88/htmlconf/internal/suite"
)

// DefaultPreviewLimit caps how many characters of comparison detail one
// mismatch carries.
const DefaultPreviewLimit = 600

// Harness drives one engine through fixture suites.
type Harness struct {
	Engine protocol.Engine

	// Logger receives skip warnings and per-fixture progress. Nil discards.
	Logger *slog.Logger

	// PreviewLimit bounds Mismatch.Detail; DefaultPreviewLimit when zero.
	PreviewLimit int
}

// Mismatch is one case whose engine result differed from the fixture
// expectation, or a fixture-level engine failure (Index < 0).
type Mismatch struct {
	Kind    suite.Kind
	Fixture string
	Index   int    // case index within its kind; -1 for fixture-level failures
	State   string // initial tokenizer state, when relevant
	Detail  string
}

func (m Mismatch) String() string {
	switch {
	case m.Index < 0:
		return fmt.Sprintf("%s %s: %s", m.Kind, m.Fixture, m.Detail)
	case m.State != "":
		return fmt.Sprintf("%s %s #%d (%s): %s", m.Kind, m.Fixture, m.Index, m.State, m.Detail)
	default:
		return fmt.Sprintf("%s %s #%d: %s", m.Kind, m.Fixture, m.Index, m.Detail)
	}
}

// FixtureStat summarizes one fixture's checked cases. Skipped counts
// enabled cases with no runnable initial state.
type FixtureStat struct {
	Kind    suite.Kind
	Fixture string
	Passed  int
	Failed  int
	Skipped int
	Total   int
}

func (h *Harness) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// preview bounds a comparison detail string.
func (h *Harness) preview(s string) string {
	limit := h.PreviewLimit
	if limit <= 0 {
		limit = DefaultPreviewLimit
	}
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "… (truncated)"
}
