package harness

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/roach88/htmlconf/internal/corpus"
	"github.com/roach88/htmlconf/internal/protocol"
	"github.com/roach88/htmlconf/internal/suite"
)

// DefaultEncodingFixtures is the stable subset of encoding fixtures the
// sniffer is expected to fully pass.
var DefaultEncodingFixtures = []string{"tests1.dat", "tests2.dat", "test-yahoo-jp.dat"}

// VerifyEncoding feeds every case of the named encoding fixtures to the
// sniffer and compares the detected label under WHATWG normalization.
// A nil fixture list means DefaultEncodingFixtures.
func (h *Harness) VerifyEncoding(ctx context.Context, dir string, fixtures []string) ([]FixtureStat, []Mismatch, error) {
	if len(fixtures) == 0 {
		fixtures = DefaultEncodingFixtures
	}

	var stats []FixtureStat
	var mismatches []Mismatch
	for _, fixture := range fixtures {
		cases, err := corpus.ReadEncodingFixture(filepath.Join(dir, fixture))
		if err != nil {
			return nil, nil, err
		}
		batch := make([]protocol.Case, len(cases))
		for i, c := range cases {
			// No transport-layer encoding declared; the sniffer sees only
			// the document bytes.
			batch[i] = protocol.EncodingCase("", []byte(c.Input))
		}

		stat := FixtureStat{Kind: suite.Encoding, Fixture: fixture, Total: len(cases)}
		results, err := h.Engine.Submit(ctx, protocol.ModeEncoding, batch)
		if err != nil {
			stat.Failed = stat.Total
			stats = append(stats, stat)
			mismatches = append(mismatches, Mismatch{
				Kind: suite.Encoding, Fixture: fixture, Index: -1,
				Detail: fmt.Sprintf("engine failed: %v", err),
			})
			continue
		}

		for i, c := range cases {
			got := unquoteLabel(results[i])
			if corpus.LabelsEqual(c.Expected, got) {
				stat.Passed++
				continue
			}
			stat.Failed++
			mismatches = append(mismatches, Mismatch{
				Kind: suite.Encoding, Fixture: fixture, Index: i,
				Detail: fmt.Sprintf("expected %q, got %q", c.Expected, got),
			})
		}
		stats = append(stats, stat)
	}
	return stats, mismatches, nil
}

// unquoteLabel extracts the label from one engine result, which is a
// JSON string. Anything else is kept verbatim so the mismatch shows it.
func unquoteLabel(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return string(raw)
	}
	return s
}
