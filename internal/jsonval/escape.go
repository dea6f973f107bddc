package jsonval

import (
	"fmt"
	"strconv"

	"github.com/roach88/htmlconf/internal/wtf8"
)

// Unescape decodes exactly one layer of backslash escapes.
//
// Tokenizer fixtures marked doubleEscaped store strings like "\\u0000" whose
// JSON decoding still contains a literal escape; this applies that second
// layer. \uXXXX decodes each unit individually (surrogate pairs are NOT
// combined), so the result may hold unpaired surrogates in generalized
// UTF-8. An escape that names nothing (e.g. "\q") keeps the backslash and
// the character, matching the upstream fixtures' expectations.
func Unescape(s string) (string, error) {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); {
		c := s[i]
		if c != '\\' {
			out = append(out, c)
			i++
			continue
		}
		if i+1 >= len(s) {
			return "", fmt.Errorf("unescape: trailing backslash")
		}
		esc := s[i+1]
		i += 2
		switch esc {
		case '\\':
			out = append(out, '\\')
		case '\'':
			out = append(out, '\'')
		case '"':
			out = append(out, '"')
		case 'a':
			out = append(out, '\a')
		case 'b':
			out = append(out, '\b')
		case 'f':
			out = append(out, '\f')
		case 'n':
			out = append(out, '\n')
		case 'r':
			out = append(out, '\r')
		case 't':
			out = append(out, '\t')
		case 'v':
			out = append(out, '\v')
		case '\n':
			// Line continuation: backslash-newline vanishes.
		case 'x':
			// \xXX names a code point, not a raw byte: \xe9 is U+00E9.
			r, n, err := hexRune(s[i:], 2)
			if err != nil {
				return "", fmt.Errorf("unescape: bad \\x escape: %w", err)
			}
			out = wtf8.EncodeAppend(out, r)
			i += n
		case 'u':
			r, n, err := hexRune(s[i:], 4)
			if err != nil {
				return "", fmt.Errorf("unescape: bad \\u escape: %w", err)
			}
			out = wtf8.EncodeAppend(out, r)
			i += n
		case 'U':
			r, n, err := hexRune(s[i:], 8)
			if err != nil {
				return "", fmt.Errorf("unescape: bad \\U escape: %w", err)
			}
			// Values >= 0x80000000 wrap negative through rune conversion.
			if r < 0 || r > 0x10FFFF {
				return "", fmt.Errorf("unescape: \\U escape out of range: %s", s[i:i+n])
			}
			out = wtf8.EncodeAppend(out, r)
			i += n
		case '0', '1', '2', '3', '4', '5', '6', '7':
			// Octal escape, up to three digits including the first.
			v := rune(esc - '0')
			for n := 0; n < 2 && i < len(s) && s[i] >= '0' && s[i] <= '7'; n++ {
				v = v<<3 | rune(s[i]-'0')
				i++
			}
			out = wtf8.EncodeAppend(out, v)
		default:
			out = append(out, '\\', esc)
		}
	}
	return string(out), nil
}

func hexRune(s string, digits int) (rune, int, error) {
	if len(s) < digits {
		return 0, 0, fmt.Errorf("want %d hex digits, have %d", digits, len(s))
	}
	v, err := strconv.ParseUint(s[:digits], 16, 32)
	if err != nil {
		return 0, 0, err
	}
	return rune(v), digits, nil
}

// UnescapeValue applies Unescape to every string in the tree, keys included.
// The first escape error aborts the transform.
func UnescapeValue(v Value) (Value, error) {
	var firstErr error
	out := MapStrings(v, func(s string) string {
		u, err := Unescape(s)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			return s
		}
		return u
	})
	if firstErr != nil {
		return nil, firstErr
	}
	return out, nil
}
