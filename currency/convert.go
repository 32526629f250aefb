package currency

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// DefaultMaxAmount is the largest amount the calculator converts
const DefaultMaxAmount = 999999999999

// leadingFloat matches the numeric prefix a browser's parseFloat would accept
var leadingFloat = regexp.MustCompile(`^[+-]?(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?`)

// Converter converts amounts between currencies using a static RateTable
// and formats the result for display
type Converter struct {
	rates     RateTable
	maxAmount float64
	lang      language.Tag
}

// Option configures a Converter
type Option func(*Converter)

// WithMaxAmount sets the largest convertible amount; 0 disables the check
func WithMaxAmount(max float64) Option {
	return func(c *Converter) {
		c.maxAmount = max
	}
}

// WithLanguage sets the locale used to format results (Polish by default)
func WithLanguage(tag language.Tag) Option {
	return func(c *Converter) {
		c.lang = tag
	}
}

// NewConverter creates a converter over the given rates
func NewConverter(rates RateTable, opts ...Option) *Converter {
	c := &Converter{
		rates:     rates,
		maxAmount: DefaultMaxAmount,
		lang:      language.Polish,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Convert converts amount using rates with the default converter settings
func Convert(amount string, from, to Code, rates RateTable) string {
	return NewConverter(rates).Convert(amount, from, to)
}

// Rates returns the converter's rate table
func (c *Converter) Rates() RateTable {
	return c.rates
}

// Convert converts a typed amount from one currency to another and returns
// the display value. It returns "" when there is nothing to show yet: blank,
// unparsable or out-of-range input. Unknown codes convert at rate 1 and
// empty codes mean the Base currency.
//
// When the amount ends in a separator and the formatted value has no
// decimal comma, a trailing comma is appended so the result tracks the
// "still typing a fraction" state of the amount field.
func (c *Converter) Convert(amount string, from, to Code) string {
	raw := strings.TrimSpace(amount)
	if raw == "" {
		return ""
	}
	hasTrailingSep := endsWithSeparator(raw)

	a, ok := parseAmount(raw)
	if !ok {
		return ""
	}
	if c.maxAmount > 0 && a > c.maxAmount {
		return ""
	}

	if from == "" {
		from = Base
	}
	if to == "" {
		to = Base
	}

	res := a * c.rates.Rate(from) / c.rates.Rate(to)
	if math.IsNaN(res) || math.IsInf(res, 0) {
		return ""
	}

	formatted := c.Format(Round2(res))
	if hasTrailingSep && !strings.Contains(formatted, ",") {
		formatted += ","
	}
	return formatted
}

// minGrouping2 lists the languages whose CLDR minimumGroupingDigits is 2:
// four-digit integer parts are written without a group separator
var minGrouping2 = map[string]bool{"pl": true, "es": true}

// Format renders v with exactly two decimals in the converter's locale
func (c *Converter) Format(v float64) string {
	opts := []number.Option{number.Scale(2)}
	if math.Abs(v) < 10000 && usesMinGrouping2(c.lang) {
		opts = append(opts, number.NoSeparator())
	}
	p := message.NewPrinter(c.lang)
	return p.Sprintf("%v", number.Decimal(v, opts...))
}

func usesMinGrouping2(tag language.Tag) bool {
	base, _ := tag.Base()
	return minGrouping2[base.String()]
}

// Round2 rounds to 2 decimal places with round(x*100)/100 semantics,
// halves going away from zero
func Round2(x float64) float64 {
	scaled := x * 100
	if math.IsNaN(scaled) || math.IsInf(scaled, 0) {
		return x
	}
	return decimal.NewFromFloat(scaled).Round(0).Shift(-2).InexactFloat64()
}

// parseAmount parses the leading number of s after turning the first ','
// into '.', ignoring anything that follows it
func parseAmount(s string) (float64, bool) {
	s = strings.Replace(s, ",", ".", 1)
	m := leadingFloat.FindString(s)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		// out of float64 range
		return 0, false
	}
	return v, true
}
