package currency

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"
)

var testRates = RateTable{
	"PLN": 1.0,
	"USD": 4.0,
	"EUR": 4.3,
}

func TestConvert(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		from, to Code
		want     string
	}{
		{"usd to pln", "100", "USD", "PLN", "400,00"},
		{"pln to usd", "100", "PLN", "USD", "25,00"},
		{"cross rate", "100", "EUR", "USD", "107,50"},
		{"comma separator", "2,5", "USD", "PLN", "10,00"},
		{"trailing separator", "12.", "USD", "PLN", "48,00"},
		{"blank", "", "USD", "PLN", ""},
		{"whitespace only", "   ", "USD", "PLN", ""},
		{"unparsable", "abc", "USD", "PLN", ""},
		{"lone separator", ".", "USD", "PLN", ""},
		{"numeric prefix", "1.2.3", "PLN", "PLN", "1,20"},
		{"empty codes mean base", "5", "", "USD", "1,25"},
		{"half rounds away from zero", "0.125", "PLN", "PLN", "0,13"},
		{"float representation rounds down", "1.005", "PLN", "PLN", "1,00"},
		{"over max amount", "1000000000000", "PLN", "PLN", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Convert(tt.amount, tt.from, tt.to, testRates))
		})
	}
}

func TestConvert_UnknownCodeIsIdentity(t *testing.T) {
	assert.Equal(t,
		Convert("10", "PLN", "PLN", testRates),
		Convert("10", "XXX", "PLN", testRates),
	)
	assert.Equal(t, "2,50", Convert("10", "XXX", "USD", testRates))
}

func TestConvert_Grouping(t *testing.T) {
	got := Convert("1234567", "PLN", "PLN", testRates)

	compact := stripGrouping(got)
	assert.Equal(t, "1234567,00", compact)
	assert.NotEqual(t, compact, got, "expected thousands grouping in %q", got)
}

func TestConvert_MinimumGroupingDigits(t *testing.T) {
	tests := []struct {
		amount string
		want   string
	}{
		{"999", "999,00"},
		{"1234", "1234,00"},
		{"999.995", "1000,00"},
		{"9999.99", "9999,99"},
		{"12345", "12\u00a0345,00"},
		{"9999.999", "10\u00a0000,00"},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			assert.Equal(t, tt.want, Convert(tt.amount, "PLN", "PLN", testRates))
		})
	}

	// English groups from the fourth digit
	en := NewConverter(testRates, WithLanguage(language.English))
	assert.Equal(t, "1,234.00", en.Convert("1234", "PLN", "PLN"))
}

func TestConverter_MaxAmount(t *testing.T) {
	limited := NewConverter(testRates, WithMaxAmount(1000))
	assert.Equal(t, "", limited.Convert("1000.01", "PLN", "PLN"))
	assert.Equal(t, "1000,00", stripGrouping(limited.Convert("1000", "PLN", "PLN")))

	unlimited := NewConverter(testRates, WithMaxAmount(0))
	assert.NotEmpty(t, unlimited.Convert("1000000000000", "PLN", "PLN"))
}

func TestConverter_TrailingSeparatorEcho(t *testing.T) {
	// with a locale whose decimal mark is not a comma the echo becomes visible
	conv := NewConverter(testRates, WithLanguage(language.English))

	assert.Equal(t, "12.00,", conv.Convert("12.", "PLN", "PLN"))
	assert.Equal(t, "12.00", conv.Convert("12", "PLN", "PLN"))
}

func TestRound2(t *testing.T) {
	assert.InDelta(t, 0.13, Round2(0.125), 1e-9)
	assert.InDelta(t, -0.13, Round2(-0.125), 1e-9)
	assert.InDelta(t, 1.0, Round2(1.005), 1e-9)
	assert.InDelta(t, 107.5, Round2(107.5), 1e-9)
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"12", 12, true},
		{"12.", 12, true},
		{"12,5", 12.5, true},
		{".5", 0.5, true},
		{"1.2x", 1.2, true},
		{"1e3", 1000, true},
		{"x1", 0, false},
		{".", 0, false},
		{"1e999", 0, false},
	}

	for _, tt := range tests {
		got, ok := parseAmount(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		if tt.ok {
			assert.InDelta(t, tt.want, got, 1e-9, tt.in)
		}
	}
}

// stripGrouping removes the space-like thousands separators of the Polish locale
func stripGrouping(s string) string {
	return strings.NewReplacer(" ", "", "\u00a0", "", "\u202f", "").Replace(s)
}
