package main

import (
	"github.com/shopspring/decimal"
)

type Product struct {
	Code      string
	Name      string
	ListRate  Money
	Discount  decimal.Decimal
	FinalRate Money
	Image     string
}

type Group struct {
	Name     string
	Products []Product
}

// Catalog keeps groups in source order; the order is part of the receipt layout.
type Catalog struct {
	Groups []Group
}

// ItemKey identifies one catalog entry by group name and position within the group.
type ItemKey struct {
	Group string
	Index int
}

type LineItem struct {
	Key      ItemKey
	Product  Product
	Quantity int
}

func (li LineItem) LineTotal() Money {
	return li.Product.FinalRate.Times(li.Quantity)
}

type Order struct {
	ID    string
	Items []LineItem
	Total Money
}

type PriceAnomaly struct {
	Key     ItemKey
	Product Product
	Reason  string
}
