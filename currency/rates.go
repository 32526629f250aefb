package currency

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
)

// RateTable maps a currency code to its rate against the Base currency.
// It is loaded once per page and never mutated afterwards.
type RateTable map[Code]float64

// Rate returns the rate for the code. Codes missing from the table are
// treated as the identity rate 1 rather than an error.
func (t RateTable) Rate(c Code) float64 {
	if r, ok := t[c]; ok {
		return r
	}
	return 1
}

// Codes returns the table's codes sorted alphabetically, Base first
func (t RateTable) Codes() []Code {
	codes := make([]Code, 0, len(t))
	for c := range t {
		if c != Base {
			codes = append(codes, c)
		}
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return append([]Code{Base}, codes...)
}

// LoadRates decodes a {"USD": 4.02, ...} rate object as injected into the
// economy page. Codes are upper-cased; the Base rate is always 1.
func LoadRates(r io.Reader) (RateTable, error) {
	var raw map[string]float64
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode rates: %w", err)
	}

	table := make(RateTable, len(raw)+1)
	for k, v := range raw {
		code, err := ParseCode(k)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", err, k)
		}
		if v <= 0 {
			return nil, fmt.Errorf("%w: %s=%v", ErrInvalidRate, code, v)
		}
		table[code] = v
	}
	table[Base] = 1

	return table, nil
}

// LoadRatesFile loads a rate table from a JSON file
func LoadRatesFile(filename string) (RateTable, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return LoadRates(file)
}
