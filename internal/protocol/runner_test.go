package protocol

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeScript installs an executable shell script standing in for the
// engine binary.
func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell-script engine stub requires a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "engine")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0755))
	return path
}

func TestRunnerSubmitSuccess(t *testing.T) {
	exe := writeScript(t, `cat >/dev/null
echo '[[["Character","&"]],[["Character","a"]]]'
`)
	r := &Runner{Exe: exe}

	results, err := r.Submit(context.Background(), ModeTokenizer, []Case{
		TokenizerCase("Data", "", "&amp;"),
		TokenizerCase("Data", "", "a"),
	})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.JSONEq(t, `[["Character","&"]]`, string(results[0]))
}

func TestRunnerSubmitEmptyBatch(t *testing.T) {
	// No subprocess is spawned for an empty batch.
	r := &Runner{Exe: filepath.Join(t.TempDir(), "missing")}
	results, err := r.Submit(context.Background(), ModeTree, nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestRunnerSubmitNonZeroExit(t *testing.T) {
	exe := writeScript(t, `cat >/dev/null
echo "boom" >&2
exit 3
`)
	r := &Runner{Exe: exe}

	_, err := r.Submit(context.Background(), ModeTree, []Case{TreeCase("doc", "", "", "<p>")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestRunnerSubmitBadOutput(t *testing.T) {
	exe := writeScript(t, `cat >/dev/null
echo 'not json'
`)
	r := &Runner{Exe: exe}

	_, err := r.Submit(context.Background(), ModeEncoding, []Case{EncodingCase("", []byte("x"))})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a JSON array")
}

func TestRunnerSubmitShortOutputFailsWholeBatch(t *testing.T) {
	exe := writeScript(t, `cat >/dev/null
echo '[["ok",0]]'
`)
	r := &Runner{Exe: exe}

	_, err := r.Submit(context.Background(), ModeTree, []Case{
		TreeCase("doc", "", "", "<p>a"),
		TreeCase("doc", "", "", "<p>b"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "got 1 results for 2 cases")
}

func TestRunnerSubmitTimeout(t *testing.T) {
	exe := writeScript(t, `sleep 5
`)
	r := &Runner{Exe: exe, Timeout: 100 * time.Millisecond}

	start := time.Now()
	_, err := r.Submit(context.Background(), ModeTokenizer, []Case{TokenizerCase("Data", "", "x")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timed out")
	assert.Less(t, time.Since(start), 3*time.Second)
}

func TestRunnerSubmitFeedsRequestOnStdin(t *testing.T) {
	// The stub reflects the first request line (the case count) back as
	// a JSON array element per case.
	exe := writeScript(t, `read count
cat >/dev/null
printf '['
i=0
while [ $i -lt $count ]; do
  [ $i -gt 0 ] && printf ','
  printf '"%s"' "$count"
  i=$((i+1))
done
printf ']'
`)
	r := &Runner{Exe: exe}

	results, err := r.Submit(context.Background(), ModeTokenizer, []Case{
		TokenizerCase("Data", "", "a"),
		TokenizerCase("Data", "", "b"),
		TokenizerCase("Data", "", "c"),
	})
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, `"3"`, string(results[0]))
}
