package enums

import "fmt"

// ProductCategory represents the catalog sections shown on the storefront.
type ProductCategory string

const (
	ProductCategoryVegetable ProductCategory = "vegetable"
	ProductCategoryFruit     ProductCategory = "fruit"
)

var validProductCategories = []ProductCategory{
	ProductCategoryVegetable,
	ProductCategoryFruit,
}

// String implements fmt.Stringer.
func (c ProductCategory) String() string {
	return string(c)
}

// IsValid reports whether the value is a known ProductCategory.
func (c ProductCategory) IsValid() bool {
	for _, candidate := range validProductCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseProductCategory converts raw input into a ProductCategory.
func ParseProductCategory(value string) (ProductCategory, error) {
	for _, candidate := range validProductCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product category %q", value)
}

// ProductUnit is the base unit a product is priced in.
type ProductUnit string

const (
	ProductUnitKg    ProductUnit = "kg"
	ProductUnitPiece ProductUnit = "piece"
	ProductUnitBunch ProductUnit = "bunch"
)

var validProductUnits = []ProductUnit{
	ProductUnitKg,
	ProductUnitPiece,
	ProductUnitBunch,
}

// String implements fmt.Stringer.
func (u ProductUnit) String() string {
	return string(u)
}

// IsValid reports whether the value is a known ProductUnit.
func (u ProductUnit) IsValid() bool {
	for _, candidate := range validProductUnits {
		if candidate == u {
			return true
		}
	}
	return false
}

// ParseProductUnit converts raw input into a ProductUnit.
func ParseProductUnit(value string) (ProductUnit, error) {
	for _, candidate := range validProductUnits {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product unit %q", value)
}

// SelectedUnit is the unit a shopper picks when adding a product to the cart.
// Weight-based products can be bought by the gram or by the kilogram.
type SelectedUnit string

const (
	SelectedUnitGram  SelectedUnit = "gram"
	SelectedUnitKg    SelectedUnit = "kg"
	SelectedUnitPiece SelectedUnit = "piece"
	SelectedUnitBunch SelectedUnit = "bunch"
)

// String implements fmt.Stringer.
func (u SelectedUnit) String() string {
	return string(u)
}

// UnitOptions lists the selectable units for a product's base unit.
func (u ProductUnit) UnitOptions() []SelectedUnit {
	switch u {
	case ProductUnitPiece:
		return []SelectedUnit{SelectedUnitPiece}
	case ProductUnitBunch:
		return []SelectedUnit{SelectedUnitBunch}
	default:
		return []SelectedUnit{SelectedUnitGram, SelectedUnitKg}
	}
}

// DefaultSelectedUnit is the unit preselected on the product card.
func (u ProductUnit) DefaultSelectedUnit() SelectedUnit {
	switch u {
	case ProductUnitPiece:
		return SelectedUnitPiece
	case ProductUnitBunch:
		return SelectedUnitBunch
	default:
		return SelectedUnitKg
	}
}

// Allows reports whether the selected unit is offered for the base unit.
func (u ProductUnit) Allows(selected SelectedUnit) bool {
	for _, option := range u.UnitOptions() {
		if option == selected {
			return true
		}
	}
	return false
}
