// Package allowlist persists the set of conformance cases the engine
// currently passes.
//
// The on-disk document is versioned JSON keyed by suite kind and fixture
// basename:
//
//	{
//	  "version": 1,
//	  "tree": {"doc": {"fixture.dat": [0, 1]}, "frag": {...}},
//	  "tokenizer": {"fixture.test": [2]}
//	}
//
// Loads are strict: any version other than 1, a missing tree/tokenizer
// key, or a non-integer entry fails outright rather than being repaired.
// Saves are canonical (fixed top-level order, sorted keys, normalized
// index lists, trailing newline) and atomic, so the file diffs cleanly in
// version control - which is also where historical baselines come from
// (see git.go).
package allowlist

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/natefinch/atomic"
	"github.com/tailscale/hujson"

	"github.com/roach88/htmlconf/internal/suite"
)

// Version is the only supported document version.
const Version = 1

// Document is the in-memory allowlist. One run loads it once, mutates it
// in memory and persists it only on explicit request.
type Document struct {
	Version   int
	Tree      TreeSections
	Tokenizer map[string][]int
}

// TreeSections splits tree-construction entries by case family, since
// document and fragment cases are numbered independently.
type TreeSections struct {
	Doc  map[string][]int
	Frag map[string][]int
}

// New returns an empty valid document.
func New() *Document {
	return &Document{
		Version: Version,
		Tree: TreeSections{
			Doc:  map[string][]int{},
			Frag: map[string][]int{},
		},
		Tokenizer: map[string][]int{},
	}
}

// Load reads and validates an allowlist file. The reader tolerates
// comments and trailing commas (hujson); everything else is strict.
func Load(path string) (*Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load allowlist: %w", err)
	}
	return Parse(raw)
}

// Parse validates and decodes allowlist JSON.
func Parse(raw []byte) (*Document, error) {
	std, err := hujson.Standardize(raw)
	if err != nil {
		return nil, fmt.Errorf("parse allowlist: %w", err)
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(std, &top); err != nil {
		return nil, fmt.Errorf("parse allowlist: top-level must be an object: %w", err)
	}

	version := 0
	if v, ok := top["version"]; ok {
		if err := json.Unmarshal(v, &version); err != nil {
			return nil, fmt.Errorf("parse allowlist: bad version: %w", err)
		}
	}
	if version != Version {
		return nil, fmt.Errorf("parse allowlist: unsupported version %d (want %d)", version, Version)
	}

	treeRaw, ok := top["tree"]
	if !ok {
		return nil, fmt.Errorf("parse allowlist: missing required key \"tree\"")
	}
	tokRaw, ok := top["tokenizer"]
	if !ok {
		return nil, fmt.Errorf("parse allowlist: missing required key \"tokenizer\"")
	}

	var tree map[string]json.RawMessage
	if err := json.Unmarshal(treeRaw, &tree); err != nil || tree == nil {
		return nil, fmt.Errorf("parse allowlist: tree must be an object")
	}
	docRaw, ok := tree["doc"]
	if !ok {
		return nil, fmt.Errorf("parse allowlist: tree must have a \"doc\" key")
	}
	fragRaw, ok := tree["frag"]
	if !ok {
		return nil, fmt.Errorf("parse allowlist: tree must have a \"frag\" key")
	}

	doc := &Document{Version: version}
	if doc.Tree.Doc, err = parseSection("tree.doc", docRaw); err != nil {
		return nil, err
	}
	if doc.Tree.Frag, err = parseSection("tree.frag", fragRaw); err != nil {
		return nil, err
	}
	if doc.Tokenizer, err = parseSection("tokenizer", tokRaw); err != nil {
		return nil, err
	}
	return doc, nil
}

func parseSection(name string, raw json.RawMessage) (map[string][]int, error) {
	var entries map[string]json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil || entries == nil {
		return nil, fmt.Errorf("parse allowlist: %s must be an object", name)
	}
	out := make(map[string][]int, len(entries))
	for fixture, v := range entries {
		trimmed := bytes.TrimSpace(v)
		if len(trimmed) == 0 || trimmed[0] != '[' {
			return nil, fmt.Errorf("parse allowlist: %s.%s must be a list of ints", name, fixture)
		}
		var xs []int
		if err := json.Unmarshal(trimmed, &xs); err != nil {
			return nil, fmt.Errorf("parse allowlist: %s.%s must be a list of ints: %w", name, fixture, err)
		}
		for _, x := range xs {
			if x < 0 {
				return nil, fmt.Errorf("parse allowlist: %s.%s contains negative index %d", name, fixture, x)
			}
		}
		out[fixture] = xs
	}
	return out, nil
}

// Validate checks the invariants Parse enforces, for documents mutated in
// memory before a save.
func (d *Document) Validate() error {
	if d.Version != Version {
		return fmt.Errorf("allowlist: unsupported version %d (want %d)", d.Version, Version)
	}
	if d.Tree.Doc == nil || d.Tree.Frag == nil || d.Tokenizer == nil {
		return fmt.Errorf("allowlist: missing required sections")
	}
	for _, sec := range []struct {
		name    string
		entries map[string][]int
	}{
		{"tree.doc", d.Tree.Doc},
		{"tree.frag", d.Tree.Frag},
		{"tokenizer", d.Tokenizer},
	} {
		for fixture, xs := range sec.entries {
			for _, x := range xs {
				if x < 0 {
					return fmt.Errorf("allowlist: %s.%s contains negative index %d", sec.name, fixture, x)
				}
			}
		}
	}
	return nil
}

type savedTree struct {
	Doc  map[string][]int `json:"doc"`
	Frag map[string][]int `json:"frag"`
}

type savedDocument struct {
	Version   int              `json:"version"`
	Tree      savedTree        `json:"tree"`
	Tokenizer map[string][]int `json:"tokenizer"`
}

// Save validates and writes the document atomically in canonical form:
// fixed top-level key order, fixture keys sorted, index lists normalized
// to sorted unique, two-space indent, trailing newline.
func (d *Document) Save(path string) error {
	if err := d.Validate(); err != nil {
		return err
	}
	out := savedDocument{
		Version:   d.Version,
		Tree:      savedTree{Doc: normalizeSection(d.Tree.Doc), Frag: normalizeSection(d.Tree.Frag)},
		Tokenizer: normalizeSection(d.Tokenizer),
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("save allowlist: %w", err)
	}
	data = append(data, '\n')
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("save allowlist: %w", err)
	}
	return nil
}

func normalizeSection(entries map[string][]int) map[string][]int {
	out := make(map[string][]int, len(entries))
	for fixture, xs := range entries {
		out[fixture] = uniqSorted(xs)
	}
	return out
}

func uniqSorted(xs []int) []int {
	seen := make(map[int]bool, len(xs))
	out := make([]int, 0, len(xs))
	for _, x := range xs {
		if !seen[x] {
			seen[x] = true
			out = append(out, x)
		}
	}
	sort.Ints(out)
	return out
}

func (d *Document) section(kind suite.Kind) (map[string][]int, error) {
	switch kind {
	case suite.TreeDoc:
		return d.Tree.Doc, nil
	case suite.TreeFrag:
		return d.Tree.Frag, nil
	case suite.Tokenizer:
		return d.Tokenizer, nil
	default:
		return nil, fmt.Errorf("allowlist: unknown suite kind %v", kind)
	}
}

// Indices returns the enabled indices for a fixture, sorted and unique.
// An unknown fixture yields an empty slice.
func (d *Document) Indices(kind suite.Kind, fixture string) []int {
	sec, err := d.section(kind)
	if err != nil {
		return nil
	}
	return uniqSorted(sec[fixture])
}

// SetIndices wholesale-replaces a fixture's enabled indices.
func (d *Document) SetIndices(kind suite.Kind, fixture string, indices []int) error {
	sec, err := d.section(kind)
	if err != nil {
		return err
	}
	sec[fixture] = uniqSorted(indices)
	return nil
}

// AddIndices merges indices into a fixture's enabled set and reports the
// enabled counts before and after. The count never decreases.
func (d *Document) AddIndices(kind suite.Kind, fixture string, indices []int) (before, after int, err error) {
	sec, err := d.section(kind)
	if err != nil {
		return 0, 0, err
	}
	prev := uniqSorted(sec[fixture])
	merged := uniqSorted(append(append([]int{}, prev...), indices...))
	sec[fixture] = merged
	return len(prev), len(merged), nil
}

// Fixtures returns the fixture names present in one section, sorted.
func (d *Document) Fixtures(kind suite.Kind) []string {
	sec, err := d.section(kind)
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(sec))
	for name := range sec {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// EnabledTotal sums the enabled counts across all fixtures of one kind.
func (d *Document) EnabledTotal(kind suite.Kind) int {
	sec, err := d.section(kind)
	if err != nil {
		return 0
	}
	total := 0
	for _, xs := range sec {
		total += len(uniqSorted(xs))
	}
	return total
}
