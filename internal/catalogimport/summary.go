package catalogimport

import (
	"fmt"
	"io"

	"github.com/grameenmart/storefront/pkg/db/models"
	"github.com/grameenmart/storefront/pkg/enums"
)

// PriceRange counts products whose price falls in [Min, Max). Max of zero
// means unbounded.
type PriceRange struct {
	Label string
	Min   float64
	Max   float64
	Count int
}

type Summary struct {
	Total      int
	Vegetables int
	Fruits     int
	Ranges     []PriceRange
	Samples    map[enums.ProductCategory][]models.Product
}

const samplesPerCategory = 5

func Summarize(products []models.Product) Summary {
	summary := Summary{
		Total: len(products),
		Ranges: []PriceRange{
			{Label: "Under ₹50", Max: 50},
			{Label: "₹50-₹100", Min: 50, Max: 100},
			{Label: "₹100-₹200", Min: 100, Max: 200},
			{Label: "Above ₹200", Min: 200},
		},
		Samples: map[enums.ProductCategory][]models.Product{},
	}
	for _, product := range products {
		switch product.Category {
		case enums.ProductCategoryVegetable:
			summary.Vegetables++
		case enums.ProductCategoryFruit:
			summary.Fruits++
		}
		if len(summary.Samples[product.Category]) < samplesPerCategory {
			summary.Samples[product.Category] = append(summary.Samples[product.Category], product)
		}
		for i := range summary.Ranges {
			r := &summary.Ranges[i]
			if product.Price >= r.Min && (r.Max == 0 || product.Price < r.Max) {
				r.Count++
				break
			}
		}
	}
	return summary
}

// Write prints the summary as a human readable report.
func (s Summary) Write(w io.Writer) error {
	lines := []string{
		"🌿 Catalog import",
		fmt.Sprintf("Total Products: %d", s.Total),
		fmt.Sprintf("🥬 Vegetables: %d", s.Vegetables),
		fmt.Sprintf("🍎 Fruits: %d", s.Fruits),
		"",
		"📊 Price Range Analysis:",
	}
	for _, r := range s.Ranges {
		lines = append(lines, fmt.Sprintf("%s: %d products", r.Label, r.Count))
	}
	for _, section := range []struct {
		title    string
		category enums.ProductCategory
	}{
		{"🥬 Sample Vegetables:", enums.ProductCategoryVegetable},
		{"🍎 Sample Fruits:", enums.ProductCategoryFruit},
	} {
		samples := s.Samples[section.category]
		if len(samples) == 0 {
			continue
		}
		lines = append(lines, "", section.title)
		for _, p := range samples {
			lines = append(lines, fmt.Sprintf("%s (%s) - ₹%g/%s", p.Name, p.MalayalamName, p.Price, p.Unit))
		}
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
