package catalog

import (
	"github.com/grameenmart/storefront/pkg/db/models"
	"github.com/grameenmart/storefront/pkg/enums"
)

// Filter narrows product listings. Besides the two categories the admin
// panel can list products still waiting for an uploaded image.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterNoImage   Filter = "no-image"
	FilterVegetable Filter = Filter(enums.ProductCategoryVegetable)
	FilterFruit     Filter = Filter(enums.ProductCategoryFruit)
)

// ParseFilter maps raw query input onto a Filter; empty means all.
func ParseFilter(value string) Filter {
	if value == "" {
		return FilterAll
	}
	return Filter(value)
}

func (f Filter) IsValid() bool {
	switch f {
	case FilterAll, FilterNoImage, FilterVegetable, FilterFruit:
		return true
	}
	return false
}

// Match reports whether the product belongs in the filtered listing.
func (f Filter) Match(product models.Product) bool {
	switch f {
	case FilterAll:
		return true
	case FilterNoImage:
		return !product.HasImage()
	default:
		return string(product.Category) == string(f)
	}
}
