package currency

import (
	"errors"
	"strings"
	"sync"
)

var (
	// ErrInvalidCode is returned when a currency code is not 3 ASCII letters
	ErrInvalidCode = errors.New("invalid currency code")

	// ErrInvalidRate is returned when a rate table holds a non-positive rate
	ErrInvalidRate = errors.New("invalid exchange rate")

	// ErrUnknownCode is returned when selecting a code the selectors do not offer
	ErrUnknownCode = errors.New("unknown currency code")
)

// Code is a 3-letter uppercase currency code (e.g. "PLN", "USD")
type Code string

// Base is the currency all rates are expressed against
const Base Code = "PLN"

// ParseCode upper-cases and validates a currency code
func ParseCode(s string) (Code, error) {
	c := Code(strings.ToUpper(strings.TrimSpace(s)))
	if !c.IsValid() {
		return "", ErrInvalidCode
	}
	return c, nil
}

// IsValid reports whether the code is exactly 3 uppercase ASCII letters
func (c Code) IsValid() bool {
	if len(c) != 3 {
		return false
	}
	for i := 0; i < 3; i++ {
		if c[i] < 'A' || c[i] > 'Z' {
			return false
		}
	}
	return true
}

func (c Code) String() string {
	return string(c)
}

// CodeSet is the ordered set of codes offered by both the "from" and "to"
// selectors. It is shared between them, so adding a code makes it
// selectable on either side.
type CodeSet struct {
	mu    sync.RWMutex
	order []Code
	index map[Code]struct{}
}

// NewCodeSet creates a set seeded with the given codes, in order, skipping duplicates
func NewCodeSet(codes ...Code) *CodeSet {
	s := &CodeSet{index: make(map[Code]struct{}, len(codes))}
	for _, c := range codes {
		s.add(c)
	}
	return s
}

// Contains reports whether the code is offered
func (s *CodeSet) Contains(c Code) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.index[c]
	return ok
}

// Ensure adds the code if it is missing. Empty codes are ignored.
// It returns true when the code was added.
func (s *CodeSet) Ensure(c Code) bool {
	if c == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.add(c)
}

func (s *CodeSet) add(c Code) bool {
	if _, ok := s.index[c]; ok {
		return false
	}
	s.index[c] = struct{}{}
	s.order = append(s.order, c)
	return true
}

// Codes returns a copy of the offered codes in insertion order
func (s *CodeSet) Codes() []Code {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Code, len(s.order))
	copy(out, s.order)
	return out
}

// Len returns the number of offered codes
func (s *CodeSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}
