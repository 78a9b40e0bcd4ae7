package main

import (
	"errors"

	"github.com/google/uuid"
)

var ErrEmptySelection = errors.New("please select at least one product")

// Aggregate collects every product with a positive quantity, in catalog order,
// and sums the order total in minor units. It returns ErrEmptySelection when
// nothing is selected.
func Aggregate(s *Session) (*Order, error) {
	items, total := selectedItems(s)
	if len(items) == 0 {
		return nil, ErrEmptySelection
	}
	return &Order{
		ID:    uuid.NewString(),
		Items: items,
		Total: total,
	}, nil
}

func selectedItems(s *Session) ([]LineItem, Money) {
	var items []LineItem
	var total Money
	for _, g := range s.catalog.Groups {
		for i, p := range g.Products {
			key := ItemKey{Group: g.Name, Index: i}
			qty := s.quantities[key]
			if qty <= 0 {
				continue
			}
			item := LineItem{Key: key, Product: p, Quantity: qty}
			items = append(items, item)
			total += item.LineTotal()
		}
	}
	return items, total
}
