package harness

import (
	"context"
	"path/filepath"

	"github.com/roach88/htmlconf/internal/allowlist"
	"github.com/roach88/htmlconf/internal/corpus"
	"github.com/roach88/htmlconf/internal/suite"
)

// AutoDelta records one fixture's allowlist change from regeneration.
type AutoDelta struct {
	Kind    suite.Kind
	Fixture string
	Before  int
	After   int
}

// AutoTokenizer recomputes the full passing set of every discovered
// tokenizer fixture and replaces the allowlist entries wholesale.
// The document is modified in place; persisting it is the caller's call.
func (h *Harness) AutoTokenizer(ctx context.Context, dir string, doc *allowlist.Document) ([]AutoDelta, error) {
	paths, err := corpus.DiscoverTokenizerFixtures(dir)
	if err != nil {
		return nil, err
	}
	var deltas []AutoDelta
	for _, path := range paths {
		fixture := filepath.Base(path)
		passing, err := h.PassingTokenizer(ctx, path)
		if err != nil {
			return nil, err
		}
		before := len(doc.Indices(suite.Tokenizer, fixture))
		if err := doc.SetIndices(suite.Tokenizer, fixture, passing); err != nil {
			return nil, err
		}
		deltas = append(deltas, AutoDelta{
			Kind: suite.Tokenizer, Fixture: fixture, Before: before, After: len(passing),
		})
	}
	return deltas, nil
}

// AutoTree recomputes the full doc and frag passing sets of every
// discovered tree-construction fixture and replaces the allowlist
// entries wholesale. Duplicate basenames resolve to the last path in
// sorted order, matching how allowlist entries are keyed.
func (h *Harness) AutoTree(ctx context.Context, dir string, doc *allowlist.Document) ([]AutoDelta, error) {
	paths, err := corpus.DiscoverTreeFixtures(dir)
	if err != nil {
		return nil, err
	}
	var deltas []AutoDelta
	for _, path := range paths {
		fixture := filepath.Base(path)
		docPassing, fragPassing, err := h.PassingTree(ctx, path)
		if err != nil {
			return nil, err
		}

		beforeDoc := len(doc.Indices(suite.TreeDoc, fixture))
		beforeFrag := len(doc.Indices(suite.TreeFrag, fixture))
		if err := doc.SetIndices(suite.TreeDoc, fixture, docPassing); err != nil {
			return nil, err
		}
		if err := doc.SetIndices(suite.TreeFrag, fixture, fragPassing); err != nil {
			return nil, err
		}
		deltas = append(deltas,
			AutoDelta{Kind: suite.TreeDoc, Fixture: fixture, Before: beforeDoc, After: len(docPassing)},
			AutoDelta{Kind: suite.TreeFrag, Fixture: fixture, Before: beforeFrag, After: len(fragPassing)},
		)
	}
	return deltas, nil
}
