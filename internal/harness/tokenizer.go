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
	"github.com/roach88/htmlconf/internal/jsonval"
	"github.com/roach88/htmlconf/internal/protocol"
	"github.com/roach88/htmlconf/internal/suite"
)

// tokRun maps one submitted batch entry back to its case.
type tokRun struct {
	idx      int
	state    string
	expected jsonval.Value
}

// expandTokenizer builds engine cases for the given indices, one per
// runnable initial state. Unknown initial states are skipped with a
// warning; indices whose case has no runnable state land in skipped.
func (h *Harness) expandTokenizer(fixture string, fx *corpus.TokenizerFixture, indices []int) (batch []protocol.Case, runs []tokRun, skipped []int, err error) {
	for _, idx := range indices {
		if idx < 0 || idx >= len(fx.Cases) {
			return nil, nil, nil, fmt.Errorf("tokenizer %s: case index %d out of range (fixture has %d cases)", fixture, idx, len(fx.Cases))
		}
		c := fx.Cases[idx]
		input, expected, last, err := c.Normalized()
		if err != nil {
			return nil, nil, nil, fmt.Errorf("tokenizer %s case %d: %w", fixture, idx, err)
		}

		runnable := 0
		for _, name := range c.States() {
			st, ok := corpus.EngineState(name)
			if !ok {
				h.logger().Warn("skipping unsupported initial state",
					"fixture", fixture, "case", idx, "state", name)
				continue
			}
			runnable++
			batch = append(batch, protocol.TokenizerCase(st, last, input))
			runs = append(runs, tokRun{idx: idx, state: st, expected: expected})
		}
		if runnable == 0 {
			skipped = append(skipped, idx)
		}
	}
	return batch, runs, skipped, nil
}

func tokenizerMode(fx *corpus.TokenizerFixture) string {
	if fx.XMLViolation {
		return protocol.ModeTokenizerXML
	}
	return protocol.ModeTokenizer
}

// VerifyTokenizer runs every enabled tokenizer case and reports cases
// whose engine output differs from the fixture expectation. An engine
// failure discards that fixture's whole batch and is reported as a
// fixture-level mismatch.
func (h *Harness) VerifyTokenizer(ctx context.Context, dir string, doc *allowlist.Document) ([]FixtureStat, []Mismatch, error) {
	var stats []FixtureStat
	var mismatches []Mismatch

	for _, fixture := range doc.Fixtures(suite.Tokenizer) {
		enabled := doc.Indices(suite.Tokenizer, fixture)
		if len(enabled) == 0 {
			continue
		}
		fx, err := corpus.ReadTokenizerFixture(filepath.Join(dir, fixture))
		if err != nil {
			return nil, nil, err
		}
		batch, runs, skipped, err := h.expandTokenizer(fixture, fx, enabled)
		if err != nil {
			return nil, nil, err
		}

		stat := FixtureStat{Kind: suite.Tokenizer, Fixture: fixture, Total: len(enabled), Skipped: len(skipped)}

		results, err := h.Engine.Submit(ctx, tokenizerMode(fx), batch)
		if err != nil {
			stat.Failed = len(enabled) - stat.Skipped
			stats = append(stats, stat)
			mismatches = append(mismatches, Mismatch{
				Kind: suite.Tokenizer, Fixture: fixture, Index: -1,
				Detail: fmt.Sprintf("engine failed: %v", err),
			})
			continue
		}

		failed := map[int]bool{}
		for i, run := range runs {
			got, err := jsonval.Decode(results[i])
			if err != nil {
				got = jsonval.String(string(results[i]))
			}
			if !jsonval.Equal(got, run.expected) {
				if !failed[run.idx] {
					mismatches = append(mismatches, Mismatch{
						Kind: suite.Tokenizer, Fixture: fixture, Index: run.idx, State: run.state,
						Detail: h.preview(diffValues(run.expected, got)),
					})
				}
				failed[run.idx] = true
			}
		}
		stat.Failed = len(failed)
		stat.Passed = stat.Total - stat.Failed - stat.Skipped
		stats = append(stats, stat)
	}
	return stats, mismatches, nil
}

// PassingTokenizer computes the full passing-index set of one fixture
// file. A case passes only if the engine matches the expectation under
// every runnable initial state and at least one state is runnable.
func (h *Harness) PassingTokenizer(ctx context.Context, path string) ([]int, error) {
	fx, err := corpus.ReadTokenizerFixture(path)
	if err != nil {
		return nil, err
	}
	all := make([]int, len(fx.Cases))
	for i := range all {
		all[i] = i
	}
	batch, runs, skipped, err := h.expandTokenizer(filepath.Base(path), fx, all)
	if err != nil {
		return nil, err
	}

	ok := make([]bool, len(fx.Cases))
	for i := range ok {
		ok[i] = true
	}
	for _, idx := range skipped {
		ok[idx] = false
	}

	if len(batch) > 0 {
		results, err := h.Engine.Submit(ctx, tokenizerMode(fx), batch)
		if err != nil {
			return nil, err
		}
		for i, run := range runs {
			got, err := jsonval.Decode(results[i])
			if err != nil || !jsonval.Equal(got, run.expected) {
				ok[run.idx] = false
			}
		}
	}

	var passing []int
	for idx, isOK := range ok {
		if isOK {
			passing = append(passing, idx)
		}
	}
	sort.Ints(passing)
	return passing, nil
}

// diffValues renders a readable structural diff between two token
// streams via their canonical JSON forms.
func diffValues(want, got jsonval.Value) string {
	var w, g any
	wb, _ := json.Marshal(want)
	gb, _ := json.Marshal(got)
	_ = json.Unmarshal(wb, &w)
	_ = json.Unmarshal(gb, &g)
	if d := cmp.Diff(w, g); d != "" {
		return "(-want +got)\n" + d
	}
	return fmt.Sprintf("want %s, got %s", wb, gb)
}
