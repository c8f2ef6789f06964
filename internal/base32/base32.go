// Package base32 implements the compact identifier encoding used for app IDs.
//
// The alphabet is the ten digits followed by the lowercase letters, minus
// the four letters most easily confused with digits (b, i, l, o). Decoding
// accepts both cases and maps the excluded letters onto the digits they are
// usually mistaken for, so hand-transcribed IDs survive the common typos.
package base32

import (
	"errors"
	"fmt"
)

// Alphabet is the canonical 32-symbol encoding alphabet.
const Alphabet = "0123456789acdefghjkmnpqrstuvwxyz"

// ErrInvalidEncoding is returned when input contains a character outside
// the accepted symbol set or carries non-zero trailing padding bits.
var ErrInvalidEncoding = errors.New("spk: invalid base32 encoding")

const invalid = 0xff

var decodeTable [256]byte

func init() {
	for i := range decodeTable {
		decodeTable[i] = invalid
	}
	for i := 0; i < len(Alphabet); i++ {
		c := Alphabet[i]
		decodeTable[c] = byte(i)
		if 'a' <= c && c <= 'z' {
			decodeTable[c-'a'+'A'] = byte(i)
		}
	}

	// Alias the excluded letters to the digits they resemble.
	decodeTable['o'], decodeTable['O'] = 0, 0
	decodeTable['i'], decodeTable['I'] = 1, 1
	decodeTable['l'], decodeTable['L'] = 1, 1
	decodeTable['b'], decodeTable['B'] = 8, 8

	// Every letter and digit must decode to something; a gap here means the
	// alphabet and the alias set fell out of sync.
	for c := '0'; c <= '9'; c++ {
		mustDecode(byte(c))
	}
	for c := 'a'; c <= 'z'; c++ {
		mustDecode(byte(c))
		mustDecode(byte(c) - 'a' + 'A')
	}
}

func mustDecode(c byte) {
	if decodeTable[c] == invalid {
		panic(fmt.Sprintf("base32: no decoding for %q", c))
	}
}

// EncodedLen returns the number of symbols produced for n input bytes.
func EncodedLen(n int) int {
	return (n*8 + 4) / 5
}

// DecodedLen returns the number of bytes recovered from n input symbols.
func DecodedLen(n int) int {
	return n * 5 / 8
}

// Encode returns the textual encoding of data.
//
// The input is treated as a single big-endian bit string emitted five bits
// per symbol, with the final partial group zero-padded on the right. Empty
// input encodes to the empty string.
func Encode(data []byte) string {
	if len(data) == 0 {
		return ""
	}

	out := make([]byte, 0, EncodedLen(len(data)))
	buffer := uint(data[0])
	next := 1
	bitsLeft := uint(8)
	for bitsLeft > 0 || next < len(data) {
		if bitsLeft < 5 {
			if next < len(data) {
				buffer = buffer<<8 | uint(data[next])
				next++
				bitsLeft += 8
			} else {
				pad := 5 - bitsLeft
				buffer <<= pad
				bitsLeft += pad
			}
		}
		bitsLeft -= 5
		out = append(out, Alphabet[0x1f&(buffer>>bitsLeft)])
	}

	return string(out)
}

// Decode reverses Encode.
//
// Both cases are accepted, along with the alias characters o/O for 0,
// i/I/l/L for 1, and b/B for 8. Trailing bits beyond the last whole byte
// must be zero; anything else indicates truncated or corrupted input.
func Decode(encoded string) ([]byte, error) {
	out := make([]byte, 0, DecodedLen(len(encoded)))

	buffer := uint(0)
	bitsLeft := uint(0)
	for i := 0; i < len(encoded); i++ {
		decoded := decodeTable[encoded[i]]
		if decoded == invalid {
			return nil, fmt.Errorf("%w: bad character %q", ErrInvalidEncoding, encoded[i])
		}

		buffer = buffer<<5 | uint(decoded)
		bitsLeft += 5
		if bitsLeft >= 8 {
			bitsLeft -= 8
			out = append(out, byte(buffer>>bitsLeft))
		}
	}

	if buffer&(1<<bitsLeft-1) != 0 {
		return nil, fmt.Errorf("%w: extra bits at end", ErrInvalidEncoding)
	}

	return out, nil
}
