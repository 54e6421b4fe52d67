package validate

import (
	"strconv"
	"strings"
)

const digits = "0123456789"

// idWeights are the per-position weights of the 18-digit resident ID checksum.
var idWeights = [17]int{7, 9, 10, 5, 8, 4, 2, 1, 6, 3, 7, 9, 10, 5, 8, 4, 2}

// Birth-year window accepted for ID numbers.
const (
	MinIDYear = 1900
	MaxIDYear = 2025
)

// LengthBetween returns true if n is within [min,max].
func LengthBetween(s string, min, max int) bool {
	n := len(s)
	return n >= min && n <= max
}

// IsAlphabet returns true if all characters in s are in allowed set.
func IsAlphabet(s, allowed string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !strings.ContainsRune(allowed, rune(s[i])) {
			return false
		}
	}
	return true
}

// IDChecksumChar computes the expected trailing character for the first 17
// digits of an ID number: '0'..'9', or 'X' when the checksum is 10.
func IDChecksumChar(first17 string) (byte, bool) {
	if len(first17) != 17 || !IsAlphabet(first17, digits) {
		return 0, false
	}
	sum := 0
	for i := 0; i < 17; i++ {
		sum += int(first17[i]-'0') * idWeights[i]
	}
	c := (12 - sum%11) % 11
	if c == 10 {
		return 'X', true
	}
	return byte('0' + c), true
}

// LooksLikeIDCard checks an 18-character resident ID candidate: plausible
// birth date and a matching checksum character ('x' accepted for 'X').
func LooksLikeIDCard(s string) bool {
	if len(s) != 18 {
		return false
	}
	if !inRange(s[6:10], MinIDYear, MaxIDYear) {
		return false
	}
	if !inRange(s[10:12], 1, 12) {
		return false
	}
	if !inRange(s[12:14], 1, 31) {
		return false
	}
	want, ok := IDChecksumChar(s[:17])
	if !ok {
		return false
	}
	got := s[17]
	if want == 'X' {
		return got == 'X' || got == 'x'
	}
	return got == want
}

// QuotedBothSides reports whether the value after the first '=' or ':' in s
// is wrapped in matching quote characters.
func QuotedBothSides(s string) bool {
	i := strings.IndexAny(s, "=:")
	if i < 0 {
		return false
	}
	v := strings.TrimLeft(s[i+1:], "=: \t")
	if len(v) < 2 {
		return false
	}
	q := v[0]
	if q != '"' && q != '\'' {
		return false
	}
	return v[len(v)-1] == q
}

func inRange(s string, lo, hi int) bool {
	n, err := strconv.Atoi(s)
	if err != nil {
		return false
	}
	return n >= lo && n <= hi
}
