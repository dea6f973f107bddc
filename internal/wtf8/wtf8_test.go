package wtf8

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeValidSequences(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want string
	}{
		{"ascii", []byte("hello"), "hello"},
		{"two_byte", []byte{0xC3, 0xA9}, "é"},
		{"three_byte", []byte{0xE2, 0x82, 0xAC}, "€"},
		{"four_byte", []byte{0xF0, 0x9F, 0x98, 0x80}, "\U0001F600"},
		{"e0_boundary_valid", []byte{0xE0, 0xA0, 0x80}, "ࠀ"},
		{"ed_boundary_valid", []byte{0xED, 0x9F, 0xBF}, "퟿"},
		{"f4_boundary_valid", []byte{0xF4, 0x8F, 0xBF, 0xBF}, "\U0010FFFF"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decode(tt.in))
		})
	}
}

func TestDecodeInvalidBytesArePUARemapped(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want []rune
	}{
		{"lone_continuation", []byte{0x80}, []rune{InvalidBase + 0x80}},
		{"c0_overlong_lead", []byte{0xC0, 0xAF}, []rune{InvalidBase + 0xC0, InvalidBase + 0xAF}},
		{"truncated_two_byte", []byte{0xC3}, []rune{InvalidBase + 0xC3}},
		{"e0_overlong", []byte{0xE0, 0x9F, 0xBF}, []rune{InvalidBase + 0xE0, InvalidBase + 0x9F, InvalidBase + 0xBF}},
		{"surrogate_encoding", []byte{0xED, 0xA0, 0x80}, []rune{InvalidBase + 0xED, InvalidBase + 0xA0, InvalidBase + 0x80}},
		{"f0_overlong", []byte{0xF0, 0x8F, 0xBF, 0xBF}, []rune{InvalidBase + 0xF0, InvalidBase + 0x8F, InvalidBase + 0xBF, InvalidBase + 0xBF}},
		{"f4_out_of_range", []byte{0xF4, 0x90, 0x80, 0x80}, []rune{InvalidBase + 0xF4, InvalidBase + 0x90, InvalidBase + 0x80, InvalidBase + 0x80}},
		{"f5_invalid_lead", []byte{0xF5, 0x80, 0x80, 0x80}, []rune{InvalidBase + 0xF5, InvalidBase + 0x80, InvalidBase + 0x80, InvalidBase + 0x80}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, string(tt.want), Decode(tt.in))
		})
	}
}

func TestDecodeResynchronizesAfterInvalidByte(t *testing.T) {
	// A stray continuation byte between two valid sequences must not
	// desynchronize the rest of the scan.
	in := append([]byte("a"), 0xBF)
	in = append(in, []byte("é")...)
	want := "a" + string(rune(InvalidBase+0xBF)) + "é"
	assert.Equal(t, want, Decode(in))
}

func TestEncodeAppendSurrogatePassThrough(t *testing.T) {
	// Unpaired surrogates encode as plain three-byte sequences.
	got := EncodeAppend(nil, 0xD800)
	assert.Equal(t, []byte{0xED, 0xA0, 0x80}, got)

	got = EncodeAppend(nil, 0xDFFF)
	assert.Equal(t, []byte{0xED, 0xBF, 0xBF}, got)
}

func TestEncodeAppendOutOfRangeIsReplacementChar(t *testing.T) {
	// Negative and > U+10FFFF values both yield U+FFFD's full three-byte
	// encoding, never a stray low byte.
	for _, r := range []rune{-1, 0x110000, -0x80000000} {
		assert.Equal(t, []byte{0xEF, 0xBF, 0xBD}, EncodeAppend(nil, r), "rune %#x", r)
	}
}

func TestEncodeRunesMatchesStandardForScalars(t *testing.T) {
	in := []rune("aé€\U0001F600")
	assert.Equal(t, []byte("aé€\U0001F600"), EncodeRunes(in))
}

func TestRoundTripExactForValidText(t *testing.T) {
	for _, s := range []string{"", "plain", "café", "€\U0001F600", "&amp;"} {
		assert.Equal(t, s, RoundTrip(s), "input %q", s)
	}
}

func TestRoundTripRemapsSurrogates(t *testing.T) {
	// A string carrying a lone surrogate (built via EncodeRunes) comes back
	// with each of its three bytes PUA-remapped.
	s := string(EncodeRunes([]rune{0xD83D}))
	got := RoundTrip(s)

	want := string([]rune{InvalidBase + 0xED, InvalidBase + 0xA0, InvalidBase + 0xBD})
	require.Equal(t, want, got)

	// A second round trip is stable: the PUA code points are valid scalars.
	assert.Equal(t, got, RoundTrip(got))
}
