package allowlist

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/htmlconf/internal/suite"
)

func gitOrSkip(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
}

func runGitCmd(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(),
		"GIT_AUTHOR_NAME=test", "GIT_AUTHOR_EMAIL=test@example.com",
		"GIT_COMMITTER_NAME=test", "GIT_COMMITTER_EMAIL=test@example.com",
	)
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v: %s", args, out)
}

// initRepo creates a repo with two commits of data/allowlists.json: the
// first enables tokenizer index 0, the second indices 0 and 1.
func initRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	runGitCmd(t, dir, "init", "-q")

	rel := filepath.Join("data", "allowlists.json")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "data"), 0755))

	doc := New()
	require.NoError(t, doc.SetIndices(suite.Tokenizer, "t.test", []int{0}))
	require.NoError(t, doc.Save(filepath.Join(dir, rel)))
	runGitCmd(t, dir, "add", rel)
	runGitCmd(t, dir, "commit", "-q", "-m", "one")

	require.NoError(t, doc.SetIndices(suite.Tokenizer, "t.test", []int{0, 1}))
	require.NoError(t, doc.Save(filepath.Join(dir, rel)))
	runGitCmd(t, dir, "add", rel)
	runGitCmd(t, dir, "commit", "-q", "-m", "two")

	return dir
}

func TestLoadFromGitPreviousRevision(t *testing.T) {
	gitOrSkip(t)
	dir := initRepo(t)

	prev, err := LoadFromGit(context.Background(), dir, "HEAD~1", "data/allowlists.json")
	require.NoError(t, err)
	assert.Equal(t, []int{0}, prev.Indices(suite.Tokenizer, "t.test"))

	cur, err := LoadFromGit(context.Background(), dir, "HEAD", "data/allowlists.json")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, cur.Indices(suite.Tokenizer, "t.test"))
}

func TestLoadFromGitDoesNotTouchWorkingCopy(t *testing.T) {
	gitOrSkip(t)
	dir := initRepo(t)
	path := filepath.Join(dir, "data", "allowlists.json")
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	_, err = LoadFromGit(context.Background(), dir, "HEAD~1", "data/allowlists.json")
	require.NoError(t, err)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestResolveRevisionUnknown(t *testing.T) {
	gitOrSkip(t)
	dir := initRepo(t)

	_, err := ResolveRevision(context.Background(), dir, "no-such-rev")
	assert.Error(t, err)
}

func TestLoadFromGitNoParentRevision(t *testing.T) {
	gitOrSkip(t)
	dir := t.TempDir()
	runGitCmd(t, dir, "init", "-q")

	rel := filepath.Join("data", "allowlists.json")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "data"), 0755))
	require.NoError(t, New().Save(filepath.Join(dir, rel)))
	runGitCmd(t, dir, "add", rel)
	runGitCmd(t, dir, "commit", "-q", "-m", "only")

	// Single commit: HEAD~1 does not resolve. Callers treat this as
	// "no baseline" rather than an abort.
	_, err := LoadFromGit(context.Background(), dir, "HEAD~1", "data/allowlists.json")
	assert.Error(t, err)
}
