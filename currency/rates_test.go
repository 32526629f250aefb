package currency

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRates(t *testing.T) {
	table, err := LoadRates(strings.NewReader(`{"usd": 4.02, "EUR": 4.31, "GBP": 5.1}`))
	require.NoError(t, err)

	assert.InDelta(t, 4.02, table.Rate("USD"), 1e-9)
	assert.InDelta(t, 4.31, table.Rate("EUR"), 1e-9)
	assert.InDelta(t, 1.0, table.Rate(Base), 1e-9)
	assert.InDelta(t, 1.0, table.Rate("XXX"), 1e-9, "missing codes use the identity rate")
	assert.Equal(t, []Code{"PLN", "EUR", "GBP", "USD"}, table.Codes())
}

func TestLoadRates_BaseForcedToOne(t *testing.T) {
	table, err := LoadRates(strings.NewReader(`{"PLN": 2.0, "USD": 4.0}`))
	require.NoError(t, err)
	assert.InDelta(t, 1.0, table.Rate(Base), 1e-9)
}

func TestLoadRates_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"zero rate", `{"USD": 0}`, ErrInvalidRate},
		{"negative rate", `{"USD": -4}`, ErrInvalidRate},
		{"bad code", `{"DOLLAR": 4}`, ErrInvalidCode},
		{"digit code", `{"U5D": 4}`, ErrInvalidCode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadRates(strings.NewReader(tt.input))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	_, err := LoadRates(strings.NewReader(`not json`))
	assert.Error(t, err)
}

func TestLoadRatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rates.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"USD": 4.0}`), 0o600))

	table, err := LoadRatesFile(path)
	require.NoError(t, err)
	assert.Len(t, table, 2)

	_, err = LoadRatesFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestParseCode(t *testing.T) {
	c, err := ParseCode(" eur ")
	require.NoError(t, err)
	assert.Equal(t, Code("EUR"), c)

	_, err = ParseCode("EURO")
	assert.ErrorIs(t, err, ErrInvalidCode)
}

func TestCodeSet(t *testing.T) {
	set := NewCodeSet("PLN", "USD", "PLN")
	assert.Equal(t, 2, set.Len())

	assert.False(t, set.Ensure("USD"))
	assert.False(t, set.Ensure(""))
	assert.True(t, set.Ensure("CHF"))
	assert.Equal(t, []Code{"PLN", "USD", "CHF"}, set.Codes())

	codes := set.Codes()
	codes[0] = "XXX"
	assert.False(t, set.Contains("XXX"), "Codes must return a copy")
}
