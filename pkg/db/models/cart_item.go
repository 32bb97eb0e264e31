package models

import "github.com/grameenmart/storefront/pkg/enums"

// CartItem is a product line in a shopper's cart. Quantity counts how many
// times the line was added; ActualQuantity accumulates the physical amount in
// SelectedUnit (grams, kilograms, pieces or bunches).
type CartItem struct {
	Product
	Quantity       int                `json:"quantity"`
	SelectedUnit   enums.SelectedUnit `json:"selectedUnit"`
	ActualQuantity float64            `json:"actualQuantity"`
}

// SameLine reports whether two items occupy the same cart line.
func (c CartItem) SameLine(productID int64, unit enums.SelectedUnit) bool {
	return c.ID == productID && c.SelectedUnit == unit
}
