package cart

import (
	"time"

	"github.com/grameenmart/storefront/pkg/db/models"
	"github.com/grameenmart/storefront/pkg/enums"
)

const (
	maxGramsPerAdd = 1000
	maxUnitsPerAdd = 10
)

// Cart is a shopper's session cart. Lines are keyed by product id and
// selected unit, so the same product bought by the gram and by the kilo
// gives two lines.
type Cart struct {
	SessionID string            `json:"sessionId"`
	Items     []models.CartItem `json:"items"`
	ExpiresAt time.Time         `json:"expiresAt"`
}

// Add puts one add-action of product on the cart. An existing line gets one
// more in quantity and accumulates actualQuantity; otherwise a new line starts
// at quantity 1.
func (c *Cart) Add(product models.Product, unit enums.SelectedUnit, actualQuantity float64) {
	for i := range c.Items {
		if c.Items[i].SameLine(product.ID, unit) {
			c.Items[i].Quantity++
			c.Items[i].ActualQuantity += actualQuantity
			return
		}
	}
	c.Items = append(c.Items, models.CartItem{
		Product:        product,
		Quantity:       1,
		SelectedUnit:   unit,
		ActualQuantity: actualQuantity,
	})
}

// Remove takes one add-action off the matching line, shrinking actualQuantity
// by its per-add average. The line goes away when quantity reaches zero.
// It reports whether a line matched.
func (c *Cart) Remove(productID int64, unit enums.SelectedUnit) bool {
	for i := range c.Items {
		line := &c.Items[i]
		if !line.SameLine(productID, unit) {
			continue
		}
		if line.Quantity > 1 {
			line.ActualQuantity -= line.ActualQuantity / float64(line.Quantity)
			line.Quantity--
			return true
		}
		c.Items = append(c.Items[:i], c.Items[i+1:]...)
		return true
	}
	return false
}

// Count is the number of add-actions across all lines.
func (c Cart) Count() int {
	total := 0
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}

func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

func maxPerAdd(unit enums.SelectedUnit) float64 {
	if unit == enums.SelectedUnitGram {
		return maxGramsPerAdd
	}
	return maxUnitsPerAdd
}
