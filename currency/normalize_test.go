package currency

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		maxDigits int
		want      string
	}{
		{"empty", "", 9, ""},
		{"plain integer", "123", 9, "123"},
		{"trailing comma kept as dot", "12,", 9, "12."},
		{"trailing dot kept", "12.", 9, "12."},
		{"extra dots dropped", "1.2.3", 9, "1.23"},
		{"comma decimal", "3,5", 9, "3.5"},
		{"fraction truncated to two digits", "3.14159", 9, "3.14"},
		{"noise stripped", "zł 1 234,5x", 9, "1234.5"},
		{"only noise", "abc", 9, ""},
		{"lone separator", ",", 9, "."},
		{"leading separator", ".5", 9, ".5"},
		{"trailing separator after fraction", "1.25,", 9, "1.25"},
		{"sign stripped", "-42", 9, "42"},
		{"digit limit on integer", "1234567890", 9, "123456789"},
		{"digit limit eats fraction", "12345678.99", 9, "12345678.9"},
		{"digit limit drops dangling dot", "123456789.12", 9, "123456789"},
		{"digit limit keeps typed dot", "1234567890.", 9, "123456789."},
		{"digit limit across dot", "123.45", 3, "123"},
		{"no limit", "123456789012345", 0, "123456789012345"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.raw, tt.maxDigits))
		})
	}
}

func TestNormalize_OutputShape(t *testing.T) {
	inputs := []string{
		"", "0", "1,2,3", "..,,", "12a.b3,4", "9999999999,999", "€ 10.000,50",
		"1.2.3.4.5", ",,,1", "007", "  42 ", "1e5", "++--", "12,34,", "0.0.0,",
	}

	for _, in := range inputs {
		out := Normalize(in, DefaultMaxDigits)

		for _, ch := range out {
			assert.True(t, (ch >= '0' && ch <= '9') || ch == '.', "unexpected %q in %q", ch, out)
		}
		assert.LessOrEqual(t, strings.Count(out, "."), 1, "input %q", in)
		assert.LessOrEqual(t, countDigits(out), DefaultMaxDigits, "input %q", in)

		assert.Equal(t, out, Normalize(out, DefaultMaxDigits), "normalize must be idempotent for %q", in)
	}
}
