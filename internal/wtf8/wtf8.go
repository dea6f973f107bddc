// Package wtf8 reproduces the engine's forgiving UTF-8 decoding.
//
// The engine decodes its base64 payloads with a lenient scanner: any byte
// that does not start or continue a valid UTF-8 sequence is mapped to the
// private-use code point 0xEE000+byte instead of aborting the decode. To
// compare engine output against fixture expectations byte-exactly, the
// harness must apply the same transformation to its own inputs first.
//
// Text that has passed through EncodeAppend may contain unpaired surrogate
// code points encoded in generalized UTF-8 ("WTF-8"). Such strings are only
// ever handed to the engine as raw bytes; the raw bytes of a WTF-8 string
// are exactly the surrogate-pass-through encoding the wire protocol needs.
package wtf8

// InvalidBase is the code point assigned to an invalid byte value 0x00.
// An invalid byte b decodes to rune(InvalidBase + b).
const InvalidBase = 0xEE000

// Decode converts raw bytes to a string using the engine's forgiving rules.
//
// Valid sequences decode normally. Overlong encodings, surrogate encodings
// (0xED 0xA0..0xBF ..), out-of-range 4-byte sequences and stray bytes are
// each rejected one byte at a time: the offending lead byte becomes
// rune(InvalidBase+b) and scanning resumes at the next byte.
func Decode(data []byte) string {
	out := make([]byte, 0, len(data))
	n := len(data)
	for i := 0; i < n; {
		b0 := data[i]

		if b0 < 0x80 {
			out = append(out, b0)
			i++
			continue
		}

		if b0 >= 0xC2 && b0 <= 0xDF && i+1 < n {
			b1 := data[i+1]
			if b1 >= 0x80 && b1 <= 0xBF {
				out = EncodeAppend(out, rune(b0&0x1F)<<6|rune(b1&0x3F))
				i += 2
				continue
			}
		}

		if b0 >= 0xE0 && b0 <= 0xEF && i+2 < n {
			b1, b2 := data[i+1], data[i+2]
			ok := b1 >= 0x80 && b1 <= 0xBF && b2 >= 0x80 && b2 <= 0xBF
			if ok {
				switch b0 {
				case 0xE0:
					ok = b1 >= 0xA0 // reject overlong
				case 0xED:
					ok = b1 <= 0x9F // reject surrogates
				}
			}
			if ok {
				out = EncodeAppend(out, rune(b0&0x0F)<<12|rune(b1&0x3F)<<6|rune(b2&0x3F))
				i += 3
				continue
			}
		}

		if b0 >= 0xF0 && b0 <= 0xF4 && i+3 < n {
			b1, b2, b3 := data[i+1], data[i+2], data[i+3]
			ok := b1 >= 0x80 && b1 <= 0xBF && b2 >= 0x80 && b2 <= 0xBF && b3 >= 0x80 && b3 <= 0xBF
			if ok {
				switch b0 {
				case 0xF0:
					ok = b1 >= 0x90 // reject overlong
				case 0xF4:
					ok = b1 <= 0x8F // reject > U+10FFFF
				}
			}
			if ok {
				out = EncodeAppend(out, rune(b0&0x07)<<18|rune(b1&0x3F)<<12|rune(b2&0x3F)<<6|rune(b3&0x3F))
				i += 4
				continue
			}
		}

		// Invalid lead byte or malformed sequence; consume exactly one byte.
		out = EncodeAppend(out, InvalidBase+rune(b0))
		i++
	}
	return string(out)
}

// EncodeAppend appends the generalized UTF-8 encoding of r to dst.
//
// Unlike utf8.AppendRune it encodes unpaired surrogates as ordinary
// three-byte sequences instead of substituting U+FFFD. This is the encode
// direction of the wire protocol's surrogate pass-through.
func EncodeAppend(dst []byte, r rune) []byte {
	switch {
	case r < 0:
		return append(dst, 0xEF, 0xBF, 0xBD) // U+FFFD
	case r < 0x80:
		return append(dst, byte(r))
	case r < 0x800:
		return append(dst, 0xC0|byte(r>>6), 0x80|byte(r&0x3F))
	case r < 0x10000:
		return append(dst, 0xE0|byte(r>>12), 0x80|byte(r>>6&0x3F), 0x80|byte(r&0x3F))
	case r <= 0x10FFFF:
		return append(dst, 0xF0|byte(r>>18), 0x80|byte(r>>12&0x3F), 0x80|byte(r>>6&0x3F), 0x80|byte(r&0x3F))
	default:
		return append(dst, 0xEF, 0xBF, 0xBD) // U+FFFD
	}
}

// EncodeRunes encodes a rune sequence with surrogate pass-through.
func EncodeRunes(rs []rune) []byte {
	out := make([]byte, 0, len(rs))
	for _, r := range rs {
		out = EncodeAppend(out, r)
	}
	return out
}

// RoundTrip pushes s through encode-then-forgiving-decode.
//
// The raw bytes of s are its pass-through encoding (strings here are kept
// in generalized UTF-8), so this is exactly what the engine sees after it
// base64-decodes a payload built from s. Surrogates that s carried come
// back PUA-remapped byte by byte; everything else is unchanged.
func RoundTrip(s string) string {
	return Decode([]byte(s))
}
