package allowlist

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseRanges expands a comma-separated index expression such as
// "1,2,5-7" into [1 2 5 6 7]. Inverted ranges are rejected. Empty parts
// are skipped, so "1,,2" and trailing commas are fine.
func ParseRanges(expr string) ([]int, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, nil
	}
	var out []int
	for _, part := range strings.Split(expr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if lo, hi, ok := strings.Cut(part, "-"); ok {
			loN, err := strconv.Atoi(strings.TrimSpace(lo))
			if err != nil {
				return nil, fmt.Errorf("bad range %q: %w", part, err)
			}
			hiN, err := strconv.Atoi(strings.TrimSpace(hi))
			if err != nil {
				return nil, fmt.Errorf("bad range %q: %w", part, err)
			}
			if hiN < loN {
				return nil, fmt.Errorf("bad range %q (hi < lo)", part)
			}
			for i := loN; i <= hiN; i++ {
				out = append(out, i)
			}
		} else {
			n, err := strconv.Atoi(part)
			if err != nil {
				return nil, fmt.Errorf("bad index %q: %w", part, err)
			}
			out = append(out, n)
		}
	}
	return out, nil
}

// FormatRanges compresses indices into the expression ParseRanges reads.
// Runs of three or more consecutive indices collapse to "lo-hi"; shorter
// runs list their members individually, so 4,5 stays "4,5" rather than
// the longer "4-5".
func FormatRanges(indices []int) string {
	xs := uniqSorted(indices)
	if len(xs) == 0 {
		return ""
	}
	var parts []string
	for i := 0; i < len(xs); {
		j := i
		for j+1 < len(xs) && xs[j+1] == xs[j]+1 {
			j++
		}
		switch {
		case xs[j]-xs[i] >= 2:
			parts = append(parts, fmt.Sprintf("%d-%d", xs[i], xs[j]))
		case xs[j] == xs[i]:
			parts = append(parts, strconv.Itoa(xs[i]))
		default:
			parts = append(parts, strconv.Itoa(xs[i]), strconv.Itoa(xs[j]))
		}
		i = j + 1
	}
	return strings.Join(parts, ",")
}
