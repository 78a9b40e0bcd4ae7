package main

import (
	"fmt"
	"strconv"
	"strings"
)

// Session holds one shopper's requested quantities against a loaded catalog.
// Every catalog product has an entry, starting at zero.
type Session struct {
	catalog    *Catalog
	quantities map[ItemKey]int
}

func NewSession(c *Catalog) *Session {
	s := &Session{
		catalog:    c,
		quantities: make(map[ItemKey]int, c.Len()),
	}
	for _, g := range c.Groups {
		for i := range g.Products {
			s.quantities[ItemKey{Group: g.Name, Index: i}] = 0
		}
	}
	return s
}

func (s *Session) Catalog() *Catalog {
	return s.catalog
}

func (s *Session) Quantity(key ItemKey) int {
	return s.quantities[key]
}

// MaxQuantity is the largest quantity a single line accepts. Larger values
// are treated like any other unusable input and stored as zero, which keeps
// quantity x rate well inside int64 paise.
const MaxQuantity = 99999

// Set stores qty for key. Negative quantities and quantities above
// MaxQuantity are stored as zero.
func (s *Session) Set(key ItemKey, qty int) error {
	if _, ok := s.quantities[key]; !ok {
		return fmt.Errorf("%w: %s #%d", ErrUnknownItem, key.Group, key.Index)
	}
	if qty < 0 || qty > MaxQuantity {
		qty = 0
	}
	s.quantities[key] = qty
	return nil
}

// SetInput applies a raw quantity as typed by the user.
func (s *Session) SetInput(key ItemKey, input string) error {
	return s.Set(key, ParseQuantity(input))
}

// Total recomputes quantity x final rate over the whole catalog.
func (s *Session) Total() Money {
	var total Money
	for _, g := range s.catalog.Groups {
		for i, p := range g.Products {
			total += p.FinalRate.Times(s.quantities[ItemKey{Group: g.Name, Index: i}])
		}
	}
	return total
}

// ParseQuantity normalises user input to a non-negative whole number.
// Empty, fractional, negative, non-numeric or out of range input yields 0.
func ParseQuantity(input string) int {
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || n < 0 || n > MaxQuantity {
		return 0
	}
	return n
}
