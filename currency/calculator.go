package currency

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Selection is the pair of codes chosen in the "from" and "to" selectors
type Selection struct {
	From Code `json:"from"`
	To   Code `json:"to"`
}

// Calculator holds the state of the currency calculator widget: the amount
// field, the selector values and the codes both selectors offer. Every
// mutation recomputes the display value; concurrent callers are serialized
// and the last write wins.
type Calculator struct {
	mu        sync.Mutex
	converter *Converter
	codes     *CodeSet
	maxDigits int
	logger    *zap.Logger

	amount    string
	selection Selection
	display   string
}

// CalculatorOption configures a Calculator
type CalculatorOption func(*Calculator)

// WithMaxDigits sets the digit limit of the amount field
func WithMaxDigits(n int) CalculatorOption {
	return func(c *Calculator) {
		c.maxDigits = n
	}
}

// WithCodes shares an existing code set with the calculator
func WithCodes(codes *CodeSet) CalculatorOption {
	return func(c *Calculator) {
		c.codes = codes
	}
}

// WithSelection sets the initial selector values as rendered by the page.
// They are not checked against the code set.
func WithSelection(sel Selection) CalculatorOption {
	return func(c *Calculator) {
		c.selection = sel
	}
}

// WithLogger sets the calculator's logger
func WithLogger(logger *zap.Logger) CalculatorOption {
	return func(c *Calculator) {
		c.logger = logger
	}
}

// NewCalculator creates a calculator converting with conv. Both selectors
// start on the Base currency and offer the rate table's codes unless a
// code set is supplied.
func NewCalculator(conv *Converter, opts ...CalculatorOption) *Calculator {
	c := &Calculator{
		converter: conv,
		maxDigits: DefaultMaxDigits,
		logger:    zap.NewNop(),
		selection: Selection{From: Base, To: Base},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.codes == nil {
		c.codes = NewCodeSet(conv.Rates().Codes()...)
	}
	c.codes.Ensure(Base)
	return c
}

// Codes returns the code set shared by both selectors
func (c *Calculator) Codes() *CodeSet {
	return c.codes
}

// Input handles a change of the amount field. It returns the normalized
// field value and the converted display value.
func (c *Calculator) Input(raw string) (field, display string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.amount = Normalize(raw, c.maxDigits)
	c.recompute()
	return c.amount, c.display
}

// Select sets both selectors. Codes the selectors do not offer are rejected.
func (c *Calculator) Select(from, to Code) error {
	for _, code := range []Code{from, to} {
		if !c.codes.Contains(code) {
			return fmt.Errorf("%w: %s", ErrUnknownCode, code)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.selection = Selection{From: from, To: to}
	c.recompute()
	return nil
}

// Swap exchanges the "from" and "to" codes and returns the new display
// value. A code missing from the shared set is added first so the swap
// cannot fail.
func (c *Calculator) Swap() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, code := range []Code{c.selection.To, c.selection.From} {
		if c.codes.Ensure(code) {
			c.logger.Debug("Added currency option for swap", zap.String("code", code.String()))
		}
	}
	c.selection.From, c.selection.To = c.selection.To, c.selection.From
	c.recompute()
	return c.display
}

// Display returns the current converted value
func (c *Calculator) Display() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.display
}

// Amount returns the current (normalized) amount field
func (c *Calculator) Amount() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.amount
}

// Selection returns the current selector values
func (c *Calculator) Selection() Selection {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selection
}

func (c *Calculator) recompute() {
	c.display = c.converter.Convert(c.amount, c.selection.From, c.selection.To)
}
