package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/htmlconf/internal/suite"
)

const treeFixture = `#data
<p>X
#errors
#document
| <html>
|   <head>
|   <body>
|     <p>
|       "X"

#data
<b>
#errors
#document-fragment
td
#document
| <b>
`

const tokenizerFixture = `{"tests": [
  {"description": "amp", "input": "&amp;", "output": [["Character", "&"]]},
  {"description": "char", "input": "a", "output": [["Character", "a"]]}
]}`

func TestCollectAggregatesByBasename(t *testing.T) {
	treeDir := t.TempDir()
	tokDir := t.TempDir()

	write := func(path, body string) {
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	}
	// Same basename at the top level and under scripted/: totals merge.
	write(filepath.Join(treeDir, "webkit01.dat"), treeFixture)
	write(filepath.Join(treeDir, "scripted", "webkit01.dat"), treeFixture)
	write(filepath.Join(tokDir, "entities.test"), tokenizerFixture)

	totals, err := Collect(treeDir, tokDir)
	require.NoError(t, err)

	assert.Equal(t, TreePair{Doc: 2, Frag: 2}, totals.Tree["webkit01.dat"])
	assert.Equal(t, 2, totals.Tokenizer["entities.test"])

	assert.Equal(t, 2, totals.Total(suite.TreeDoc))
	assert.Equal(t, 2, totals.Total(suite.TreeFrag))
	assert.Equal(t, 2, totals.Total(suite.Tokenizer))

	assert.Equal(t, []string{"webkit01.dat"}, totals.Fixtures(suite.TreeDoc))
	assert.Equal(t, []string{"webkit01.dat"}, totals.Fixtures(suite.TreeFrag))
}

func TestCollectMissingDirs(t *testing.T) {
	totals, err := Collect(filepath.Join(t.TempDir(), "nope"), filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Empty(t, totals.Tree)
	assert.Empty(t, totals.Tokenizer)
	assert.Empty(t, totals.Fixtures(suite.Tokenizer))
}

func TestFixturesFragOnlyWhereFragCasesExist(t *testing.T) {
	totals := &Totals{Tree: map[string]TreePair{
		"a.dat": {Doc: 3},
		"b.dat": {Doc: 1, Frag: 2},
	}}
	assert.Equal(t, []string{"a.dat", "b.dat"}, totals.Fixtures(suite.TreeDoc))
	assert.Equal(t, []string{"b.dat"}, totals.Fixtures(suite.TreeFrag))
}
