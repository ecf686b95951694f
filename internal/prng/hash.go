package prng

import (
	"crypto/sha256"
	"encoding/hex"
	"unicode/utf16"
)

// Hash32 maps a string to a seed with the 31-multiplier fold used by browser
// verifiers: h = h*31 + c over UTF-16 code units in int32 arithmetic, then
// the absolute value. |-2^31| is 2^31, which still fits in a uint32.
func Hash32(s string) uint32 {
	var h int32
	for _, c := range utf16.Encode([]rune(s)) {
		h = h*31 + int32(c)
	}
	if h < 0 {
		return uint32(-int64(h))
	}
	return uint32(h)
}

// SHA256Hex returns the lowercase hex SHA-256 digest of s
func SHA256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
