package corpus

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"
)

// DiscoverTokenizerFixtures returns all *.test files under dir, sorted.
// A missing directory yields an empty slice, keeping coverage reporting
// usable on partial checkouts.
func DiscoverTokenizerFixtures(dir string) ([]string, error) {
	return discover(dir, ".test")
}

// DiscoverTreeFixtures returns all *.dat files under dir, sorted.
// Subdirectories (e.g. scripted/) may repeat basenames; callers aggregate
// totals by basename.
func DiscoverTreeFixtures(dir string) ([]string, error) {
	return discover(dir, ".dat")
}

// DiscoverEncodingFixtures returns all *.dat files under dir, sorted.
func DiscoverEncodingFixtures(dir string) ([]string, error) {
	return discover(dir, ".dat")
}

func discover(dir, ext string) ([]string, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, nil
	}
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ext) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}

// readFixtureText reads a fixture file, replacing bytes that are not valid
// UTF-8 with U+FFFD one byte at a time. Encoding fixtures legitimately
// contain legacy-charset bytes; the text grammar itself is always ASCII.
func readFixtureText(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if utf8.Valid(raw) {
		return string(raw), nil
	}
	var b strings.Builder
	b.Grow(len(raw))
	for len(raw) > 0 {
		r, size := utf8.DecodeRune(raw)
		if r == utf8.RuneError && size == 1 {
			b.WriteRune('�')
		} else {
			b.WriteRune(r)
		}
		raw = raw[size:]
	}
	return b.String(), nil
}
