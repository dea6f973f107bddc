package protocol

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeBatchTokenizer(t *testing.T) {
	cases := []Case{
		TokenizerCase("Data", "", "&amp;"),
		TokenizerCase("RCDATA", "xmp", "<x>"),
	}
	got := string(EncodeBatch(cases))

	p1 := base64.StdEncoding.EncodeToString([]byte("&amp;"))
	p2 := base64.StdEncoding.EncodeToString([]byte("<x>"))
	want := strings.Join([]string{
		"2",
		"Data\t-\t8",
		p1,
		"RCDATA\txmp\t4",
		p2,
	}, "\n") + "\n"
	assert.Equal(t, want, got)
	assert.Len(t, p1, 8)
	assert.Len(t, p2, 4)
}

func TestEncodeBatchTreeAndEncodingHeaders(t *testing.T) {
	got := string(EncodeBatch([]Case{
		TreeCase("frag", "td", "off", "<b>"),
		TreeCase("doc", "", "", "<p>"),
	}))
	lines := strings.Split(got, "\n")
	assert.Equal(t, "2", lines[0])
	assert.Equal(t, "frag\ttd\toff\t4", lines[1])
	assert.Equal(t, "doc\t-\t-\t4", lines[3])

	got = string(EncodeBatch([]Case{EncodingCase("", []byte("<html>"))}))
	lines = strings.Split(got, "\n")
	assert.Equal(t, "-\t8", lines[1])
}

func TestEncodeBatchChunksLongPayloads(t *testing.T) {
	input := strings.Repeat("a", 1000)
	b64len := base64.StdEncoding.EncodedLen(1000) // 1336

	got := string(EncodeBatch([]Case{TokenizerCase("Data", "", input)}))
	lines := strings.Split(strings.TrimSuffix(got, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "1", lines[0])
	assert.Equal(t, "Data\t-\t1336", lines[1])
	assert.Len(t, lines[2], chunkSize)
	assert.Len(t, lines[3], b64len-chunkSize)

	// Reassembled chunks decode back to the input.
	decoded, err := base64.StdEncoding.DecodeString(lines[2] + lines[3])
	require.NoError(t, err)
	assert.Equal(t, input, string(decoded))
}

func TestEncodeBatchEmptyPayload(t *testing.T) {
	got := string(EncodeBatch([]Case{TokenizerCase("Data", "", "")}))
	assert.Equal(t, "1\nData\t-\t0\n", got)
}

func TestFakeEngineQueue(t *testing.T) {
	f := &Fake{}
	f.Queue(`[["Character","&"]]`, `[["Character","a"]]`)
	f.QueueErr(assert.AnError)

	results, err := f.Submit(context.Background(), ModeTokenizer, []Case{{}, {}})
	require.NoError(t, err)
	require.Len(t, results, 2)

	_, err = f.Submit(context.Background(), ModeTree, nil)
	assert.ErrorIs(t, err, assert.AnError)

	_, err = f.Submit(context.Background(), ModeTree, nil)
	require.Error(t, err)

	require.Len(t, f.Calls, 3)
	assert.Equal(t, ModeTokenizer, f.Calls[0].Mode)
	assert.Equal(t, ModeTree, f.Calls[1].Mode)
}
