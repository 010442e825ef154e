package model

import (
	"fmt"
	"sort"
	"strings"
)

type Unit string

const (
	UnitGram  Unit = "gram"
	UnitPiece Unit = "adet"
)

// ProductType is a commodity tracked by quantity. CurrentPrice is only a
// suggestion for entry forms and never takes part in balance derivation.
type ProductType struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Unit         Unit    `json:"unit"`
	CurrentPrice float64 `json:"currentPrice"`
	Order        *int    `json:"order,omitempty"`
}

func (p ProductType) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: product type name is required", ErrValidation)
	}
	if p.Unit != UnitGram && p.Unit != UnitPiece {
		return fmt.Errorf("%w: unit must be %q or %q", ErrValidation, UnitGram, UnitPiece)
	}
	if p.CurrentPrice < 0 {
		return fmt.Errorf("%w: current price must not be negative", ErrValidation)
	}
	return nil
}

// SortProductTypes orders by Order ascending, entries without an order last,
// ties broken by name.
func SortProductTypes(pts []ProductType) {
	sort.SliceStable(pts, func(i, j int) bool {
		a, b := pts[i], pts[j]
		switch {
		case a.Order != nil && b.Order != nil && *a.Order != *b.Order:
			return *a.Order < *b.Order
		case a.Order != nil && b.Order == nil:
			return true
		case a.Order == nil && b.Order != nil:
			return false
		}
		return a.Name < b.Name
	})
}

func intPtr(v int) *int { return &v }

// DefaultProductTypes is the catalog offered to a user that has not defined
// any commodity yet.
func DefaultProductTypes() []ProductType {
	return []ProductType{
		{ID: "altin", Name: "Altın", Unit: UnitGram, CurrentPrice: 3500, Order: intPtr(1)},
		{ID: "ceyrek", Name: "Çeyrek", Unit: UnitPiece, CurrentPrice: 6500, Order: intPtr(2)},
		{ID: "yarim", Name: "Yarım", Unit: UnitPiece, CurrentPrice: 13000, Order: intPtr(3)},
		{ID: "tam", Name: "Tam Altın", Unit: UnitPiece, CurrentPrice: 26000, Order: intPtr(4)},
		{ID: "ata", Name: "Ata Lira", Unit: UnitPiece, CurrentPrice: 28000, Order: intPtr(5)},
		{ID: "resat", Name: "Reşat", Unit: UnitPiece, CurrentPrice: 29000, Order: intPtr(6)},
		{ID: "hurda", Name: "Hurda", Unit: UnitGram, CurrentPrice: 3400, Order: intPtr(7)},
		{ID: "dolar", Name: "Dolar", Unit: UnitPiece, CurrentPrice: 34, Order: intPtr(8)},
		{ID: "euro", Name: "Euro", Unit: UnitPiece, CurrentPrice: 36, Order: intPtr(9)},
	}
}
