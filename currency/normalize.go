package currency

import (
	"strings"
)

// DefaultMaxDigits is the digit limit (integer + fractional) of the amount field
const DefaultMaxDigits = 9

// maxFractionDigits is the number of digits allowed after the separator
const maxFractionDigits = 2

// Normalize sanitizes a free-typed amount while the user is still typing.
//
// Only digits and a single '.' survive; ',' is accepted as a separator and
// rewritten to '.'. At most two fractional digits and maxDigits digits in
// total are kept (maxDigits <= 0 disables the limit). A trailing separator
// typed by the user is preserved so they can go on with the fraction.
// Normalize never fails: bad input degrades to a shorter string or "".
func Normalize(raw string, maxDigits int) string {
	hadTrailingSep := endsWithSeparator(raw)

	var b strings.Builder
	b.Grow(len(raw))
	seenDot := false
	for i := 0; i < len(raw); i++ {
		ch := raw[i]
		switch {
		case ch >= '0' && ch <= '9':
			b.WriteByte(ch)
		case ch == '.' || ch == ',':
			// only the first separator counts, later ones are dropped
			if !seenDot {
				b.WriteByte('.')
				seenDot = true
			}
		}
	}
	s := b.String()

	if dot := strings.IndexByte(s, '.'); dot >= 0 {
		intPart, frac := s[:dot], s[dot+1:]
		if len(frac) > maxFractionDigits {
			frac = frac[:maxFractionDigits]
		}
		switch {
		case frac != "":
			s = intPart + "." + frac
		case hadTrailingSep:
			s = intPart + "."
		default:
			s = intPart
		}
	}

	if maxDigits > 0 && countDigits(s) > maxDigits {
		buf := []byte(s)
		for over := countDigits(s) - maxDigits; over > 0; over-- {
			i := len(buf) - 1
			for i >= 0 && !isDigit(buf[i]) {
				i--
			}
			if i < 0 {
				break
			}
			buf = append(buf[:i], buf[i+1:]...)
		}
		s = string(buf)
		if strings.HasSuffix(s, ".") && !hadTrailingSep {
			s = s[:len(s)-1]
		}
	}

	return s
}

func endsWithSeparator(s string) bool {
	return strings.HasSuffix(s, ".") || strings.HasSuffix(s, ",")
}

func countDigits(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		if isDigit(s[i]) {
			n++
		}
	}
	return n
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}
