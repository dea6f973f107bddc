package jsonval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/htmlconf/internal/wtf8"
)

func TestUnescapeSingleLayer(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "abc", "abc"},
		{"null_escape", "\\u0000", "\x00"},
		{"escaped_backslash_stays_literal", "\\\\u0000", "\\u0000"},
		{"newline_tab", `a\nb\tc`, "a\nb\tc"},
		{"hex", `\x41`, "A"},
		{"hex_high_is_code_point", `\xe9`, "é"},
		{"hex_high_in_word", `caf\xe9`, "café"},
		{"octal", `\101`, "A"},
		{"big_u", `\U0001F600`, "\U0001F600"},
		{"unknown_escape_kept", `\q`, `\q`},
		{"quote", `\"x\"`, `"x"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Unescape(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUnescapeDoesNotCombineSurrogatePairs(t *testing.T) {
	// Each \uXXXX unit decodes on its own; a high/low pair stays two
	// generalized-UTF-8 surrogates rather than one astral code point.
	got, err := Unescape("\\uD83D\\uDE00")
	require.NoError(t, err)

	want := string(wtf8.EncodeRunes([]rune{0xD83D, 0xDE00}))
	assert.Equal(t, want, got)
	assert.NotEqual(t, "\U0001F600", got)
}

func TestUnescapeErrors(t *testing.T) {
	for _, in := range []string{`\`, `\u12`, `\uZZZZ`, `\x4`, `\U00110000`, `\UFFFFFFFF`} {
		_, err := Unescape(in)
		assert.Error(t, err, "input %q", in)
	}
}

func TestUnescapeValueWalksTree(t *testing.T) {
	v, err := Decode([]byte(`{"k\\u0041":["\\u0000",1,null]}`))
	require.NoError(t, err)

	got, err := UnescapeValue(v)
	require.NoError(t, err)

	obj := got.(Object)
	arr, ok := obj["kA"].(Array)
	require.True(t, ok)
	assert.Equal(t, String("\x00"), arr[0])
	assert.Equal(t, Number("1"), arr[1])
	assert.Equal(t, Null{}, arr[2])
}
