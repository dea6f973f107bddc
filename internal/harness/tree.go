package harness

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/google/go-cmp/cmp"

	"github.com/roach88/htmlconf/internal/allowlist"
	"github.com/roach88/htmlconf/internal/corpus"
	"github.com/roach88/htmlconf/internal/protocol"
	"github.com/roach88/htmlconf/internal/suite"
)

// treeResult is the engine's answer for one tree case: the serialized
// tree dump and the number of parse errors.
type treeResult struct {
	Tree   string
	Errors int
}

// decodeTreeResult parses one [dump, error_count] result pair.
func decodeTreeResult(raw json.RawMessage) (treeResult, error) {
	var pair []json.RawMessage
	if err := json.Unmarshal(raw, &pair); err != nil || len(pair) != 2 {
		return treeResult{}, fmt.Errorf("invalid result shape: %s", raw)
	}
	var out treeResult
	if err := json.Unmarshal(pair[0], &out.Tree); err != nil {
		return treeResult{}, fmt.Errorf("invalid tree dump: %w", err)
	}
	if err := json.Unmarshal(pair[1], &out.Errors); err != nil {
		return treeResult{}, fmt.Errorf("invalid error count: %w", err)
	}
	return out, nil
}

// treeRun maps one batch entry back to its case.
type treeRun struct {
	kind suite.Kind
	idx  int
	want treeResult
}

func treeProtocolCase(tc corpus.TreeCase) protocol.Case {
	kind := "doc"
	context := ""
	if tc.Fragment {
		kind = "frag"
		context = tc.Context
	}
	return protocol.TreeCase(kind, context, tc.Scripting, tc.Input)
}

// VerifyTree runs every enabled tree-construction case of every fixture
// the allowlist names. Document and fragment cases are numbered
// independently within a fixture, in file order.
func (h *Harness) VerifyTree(ctx context.Context, dir string, doc *allowlist.Document) ([]FixtureStat, []Mismatch, error) {
	var stats []FixtureStat
	var mismatches []Mismatch

	for _, fixture := range unionSorted(doc.Fixtures(suite.TreeDoc), doc.Fixtures(suite.TreeFrag)) {
		enabledDoc := indexSet(doc.Indices(suite.TreeDoc, fixture))
		enabledFrag := indexSet(doc.Indices(suite.TreeFrag, fixture))
		if len(enabledDoc) == 0 && len(enabledFrag) == 0 {
			continue
		}

		cases, err := corpus.ReadTreeFixture(filepath.Join(dir, fixture))
		if err != nil {
			return nil, nil, err
		}

		var batch []protocol.Case
		var runs []treeRun
		docI, fragI := 0, 0
		for _, tc := range cases {
			kind, i := suite.TreeDoc, docI
			enabled := enabledDoc
			if tc.Fragment {
				kind, i = suite.TreeFrag, fragI
				enabled = enabledFrag
				fragI++
			} else {
				docI++
			}
			if !enabled[i] {
				continue
			}
			batch = append(batch, treeProtocolCase(tc))
			runs = append(runs, treeRun{kind: kind, idx: i, want: treeResult{Tree: tc.Expected, Errors: tc.ErrorCount}})
		}
		if len(batch) == 0 {
			continue
		}

		docStat := FixtureStat{Kind: suite.TreeDoc, Fixture: fixture, Total: len(enabledDoc)}
		fragStat := FixtureStat{Kind: suite.TreeFrag, Fixture: fixture, Total: len(enabledFrag)}

		results, err := h.Engine.Submit(ctx, protocol.ModeTree, batch)
		if err != nil {
			docStat.Failed, fragStat.Failed = docStat.Total, fragStat.Total
			mismatches = append(mismatches, Mismatch{
				Kind: suite.TreeDoc, Fixture: fixture, Index: -1,
				Detail: fmt.Sprintf("engine failed: %v", err),
			})
			stats = appendNonEmpty(stats, docStat, fragStat)
			continue
		}

		for i, run := range runs {
			got, err := decodeTreeResult(results[i])
			var detail string
			switch {
			case err != nil:
				detail = err.Error()
			case got != run.want:
				detail = h.preview(diffTree(run.want, got))
			}
			stat := &docStat
			if run.kind == suite.TreeFrag {
				stat = &fragStat
			}
			if detail == "" {
				stat.Passed++
				continue
			}
			stat.Failed++
			mismatches = append(mismatches, Mismatch{Kind: run.kind, Fixture: fixture, Index: run.idx, Detail: detail})
		}
		stats = appendNonEmpty(stats, docStat, fragStat)
	}
	return stats, mismatches, nil
}

// PassingTree computes the full passing-index sets of one fixture file,
// document and fragment cases numbered independently.
func (h *Harness) PassingTree(ctx context.Context, path string) (docPassing, fragPassing []int, err error) {
	cases, err := corpus.ReadTreeFixture(path)
	if err != nil {
		return nil, nil, err
	}

	var batch []protocol.Case
	var runs []treeRun
	docI, fragI := 0, 0
	for _, tc := range cases {
		run := treeRun{kind: suite.TreeDoc, idx: docI, want: treeResult{Tree: tc.Expected, Errors: tc.ErrorCount}}
		if tc.Fragment {
			run.kind, run.idx = suite.TreeFrag, fragI
			fragI++
		} else {
			docI++
		}
		batch = append(batch, treeProtocolCase(tc))
		runs = append(runs, run)
	}
	if len(batch) == 0 {
		return nil, nil, nil
	}

	results, err := h.Engine.Submit(ctx, protocol.ModeTree, batch)
	if err != nil {
		return nil, nil, err
	}
	for i, run := range runs {
		got, err := decodeTreeResult(results[i])
		if err != nil || got != run.want {
			continue
		}
		if run.kind == suite.TreeFrag {
			fragPassing = append(fragPassing, run.idx)
		} else {
			docPassing = append(docPassing, run.idx)
		}
	}
	sort.Ints(docPassing)
	sort.Ints(fragPassing)
	return docPassing, fragPassing, nil
}

func diffTree(want, got treeResult) string {
	if want.Tree != got.Tree {
		return "tree mismatch (-want +got)\n" + cmp.Diff(want.Tree, got.Tree)
	}
	return fmt.Sprintf("error-count mismatch: want %d, got %d", want.Errors, got.Errors)
}

func indexSet(xs []int) map[int]bool {
	set := make(map[int]bool, len(xs))
	for _, x := range xs {
		set[x] = true
	}
	return set
}

func unionSorted(a, b []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, s := range append(append([]string{}, a...), b...) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}

func appendNonEmpty(stats []FixtureStat, more ...FixtureStat) []FixtureStat {
	for _, s := range more {
		if s.Total > 0 {
			stats = append(stats, s)
		}
	}
	return stats
}
