// Package report computes coverage statistics and baseline diffs for the
// conformance allowlists.
package report

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/roach88/htmlconf/internal/corpus"
	"github.com/roach88/htmlconf/internal/suite"
)

// TreePair is the doc/frag case totals of one tree-construction basename.
type TreePair struct {
	Doc  int
	Frag int
}

// Totals holds per-fixture case counts derived from the fixture corpus.
// Tree-construction entries are keyed by basename and aggregated across
// duplicate names in subdirectories (e.g. scripted/webkit01.dat counts
// toward webkit01.dat).
type Totals struct {
	Tree      map[string]TreePair
	Tokenizer map[string]int
}

// Collect walks both fixture trees and counts every case.
func Collect(treeDir, tokenizerDir string) (*Totals, error) {
	t := &Totals{
		Tree:      map[string]TreePair{},
		Tokenizer: map[string]int{},
	}

	treePaths, err := corpus.DiscoverTreeFixtures(treeDir)
	if err != nil {
		return nil, err
	}
	for _, p := range treePaths {
		doc, frag, err := corpus.CountTreeCases(p)
		if err != nil {
			return nil, fmt.Errorf("count %s: %w", p, err)
		}
		fx := filepath.Base(p)
		pair := t.Tree[fx]
		pair.Doc += doc
		pair.Frag += frag
		t.Tree[fx] = pair
	}

	tokPaths, err := corpus.DiscoverTokenizerFixtures(tokenizerDir)
	if err != nil {
		return nil, err
	}
	for _, p := range tokPaths {
		n, err := corpus.CountTokenizerCases(p)
		if err != nil {
			return nil, fmt.Errorf("count %s: %w", p, err)
		}
		t.Tokenizer[filepath.Base(p)] += n
	}
	return t, nil
}

// Total sums the corpus case count for one suite kind.
func (t *Totals) Total(kind suite.Kind) int {
	var sum int
	switch kind {
	case suite.TreeDoc:
		for _, pair := range t.Tree {
			sum += pair.Doc
		}
	case suite.TreeFrag:
		for _, pair := range t.Tree {
			sum += pair.Frag
		}
	case suite.Tokenizer:
		for _, n := range t.Tokenizer {
			sum += n
		}
	}
	return sum
}

// Fixture returns the corpus total for one fixture basename.
func (t *Totals) Fixture(kind suite.Kind, fx string) int {
	switch kind {
	case suite.TreeDoc:
		return t.Tree[fx].Doc
	case suite.TreeFrag:
		return t.Tree[fx].Frag
	case suite.Tokenizer:
		return t.Tokenizer[fx]
	}
	return 0
}

// Fixtures returns the sorted basenames reported for a kind. Fragment
// rows are limited to fixtures that actually contain fragment cases.
func (t *Totals) Fixtures(kind suite.Kind) []string {
	var out []string
	switch kind {
	case suite.TreeDoc:
		for fx := range t.Tree {
			out = append(out, fx)
		}
	case suite.TreeFrag:
		for fx, pair := range t.Tree {
			if pair.Frag > 0 {
				out = append(out, fx)
			}
		}
	case suite.Tokenizer:
		for fx := range t.Tokenizer {
			out = append(out, fx)
		}
	}
	sort.Strings(out)
	return out
}
