package report

import (
	"fmt"
	"io"

	"github.com/roach88/htmlconf/internal/allowlist"
	"github.com/roach88/htmlconf/internal/suite"
)

// Percent renders enabled-of-total as a percentage, or "n/a" when the
// denominator is zero.
func Percent(enabled, total int) string {
	if total <= 0 {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", float64(enabled)*100/float64(total))
}

// Stats writes enabled totals, coverage totals and per-fixture coverage
// rows for every suite kind. Fixtures with no allowlist entry still get
// a row, so gaps in coverage are visible.
func Stats(w io.Writer, doc *allowlist.Document, totals *Totals) {
	fmt.Fprintln(w, "Enabled totals:")
	for _, kind := range suite.Kinds {
		fmt.Fprintf(w, "  %s: %d\n", kind, doc.EnabledTotal(kind))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Coverage totals:")
	for _, kind := range suite.Kinds {
		enabled, total := doc.EnabledTotal(kind), totals.Total(kind)
		fmt.Fprintf(w, "  %s: %d/%d (%s)\n", kind, enabled, total, Percent(enabled, total))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Per fixture:")
	for _, kind := range suite.Kinds {
		fmt.Fprintf(w, "%s:\n", kind)
		for _, fx := range totals.Fixtures(kind) {
			enabled, total := len(doc.Indices(kind, fx)), totals.Fixture(kind, fx)
			fmt.Fprintf(w, "  %s: %d/%d (%s)\n", fx, enabled, total, Percent(enabled, total))
		}
	}
}

// DiffOptions controls Diff rendering.
type DiffOptions struct {
	// RevLabel names the baseline in the header (resolved commit hash, or
	// the raw revision when it did not resolve).
	RevLabel string

	// FileLabel names the working-tree allowlist file in the header.
	FileLabel string

	// All includes unchanged fixtures in the per-fixture sections.
	All bool
}

// Diff writes baseline-vs-current coverage for every suite kind and
// reports whether any enabled count or percentage decreased. Fixture
// rows are limited to changed fixtures unless opts.All is set.
func Diff(w io.Writer, prev, cur *allowlist.Document, totals *Totals, opts DiffOptions) (regression bool) {
	fmt.Fprintf(w, "Comparing allowlists: %s -> working tree (%s)\n", opts.RevLabel, opts.FileLabel)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Totals:")
	for _, kind := range suite.Kinds {
		total := totals.Total(kind)
		line, worse := diffRow(kind.String(), prev.EnabledTotal(kind), cur.EnabledTotal(kind), total)
		fmt.Fprintln(w, line)
		regression = regression || worse
	}

	for _, kind := range suite.Kinds {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Per fixture (%s):\n", kind)
		for _, fx := range totals.Fixtures(kind) {
			before := len(prev.Indices(kind, fx))
			after := len(cur.Indices(kind, fx))
			if !opts.All && before == after {
				continue
			}
			line, worse := diffRow(fx, before, after, totals.Fixture(kind, fx))
			fmt.Fprintf(w, "  %s\n", line)
			regression = regression || worse
		}
	}
	return regression
}

// diffRow renders one before/after line and reports whether it shows a
// decrease in count or percentage points.
func diffRow(label string, before, after, total int) (string, bool) {
	delta := after - before
	pp := "n/a"
	worse := delta < 0
	if total > 0 {
		points := float64(delta) * 100 / float64(total)
		pp = fmt.Sprintf("%+.1fpp", points)
		worse = worse || points < 0
	}
	line := fmt.Sprintf("%s: %d/%d (%s) -> %d/%d (%s)  Δ%+d  %s",
		label, before, total, Percent(before, total), after, total, Percent(after, total), delta, pp)
	return line, worse
}
