package models

import (
	"time"

	"github.com/grameenmart/storefront/pkg/enums"
)

// Customer is the saved shopper profile. Mobile is the only identity a
// customer has; RowID exists for storage ordering only.
type Customer struct {
	RowID         int64      `gorm:"column:row_id;primaryKey;autoIncrement" json:"-"`
	Mobile        string     `gorm:"column:mobile;not null;index" json:"mobile"`
	Name          string     `gorm:"column:name;not null" json:"name"`
	Place         string     `gorm:"column:place;not null;default:''" json:"place"`
	Landmark      string     `gorm:"column:landmark;not null;default:''" json:"landmark"`
	LoyaltyPoints int        `gorm:"column:loyalty_points;not null;default:0" json:"loyaltyPoints"`
	OrderCount    int        `gorm:"column:order_count;not null;default:0" json:"orderCount"`
	CreatedAt     *time.Time `gorm:"column:created_at;autoCreateTime:false" json:"createdAt,omitempty"`
	LastOrderAt   *time.Time `gorm:"column:last_order_at" json:"lastOrderAt,omitempty"`
}

func (Customer) TableName() string { return enums.TableCustomers.String() }

// Key returns the identity customers are matched on.
func (c Customer) Key() string { return c.Mobile }

// CustomerPatch carries a partial customer update. Nil fields are left alone.
type CustomerPatch struct {
	Name          *string    `json:"name,omitempty"`
	Place         *string    `json:"place,omitempty"`
	Landmark      *string    `json:"landmark,omitempty"`
	LoyaltyPoints *int       `json:"loyaltyPoints,omitempty"`
	OrderCount    *int       `json:"orderCount,omitempty"`
	LastOrderAt   *time.Time `json:"lastOrderAt,omitempty"`
}

// Apply merges the patch into customer. Customers carry no updatedAt.
func (p CustomerPatch) Apply(customer *Customer, _ time.Time) {
	if customer == nil {
		return
	}
	if p.Name != nil {
		customer.Name = *p.Name
	}
	if p.Place != nil {
		customer.Place = *p.Place
	}
	if p.Landmark != nil {
		customer.Landmark = *p.Landmark
	}
	if p.LoyaltyPoints != nil {
		customer.LoyaltyPoints = *p.LoyaltyPoints
	}
	if p.OrderCount != nil {
		customer.OrderCount = *p.OrderCount
	}
	if p.LastOrderAt != nil {
		at := *p.LastOrderAt
		customer.LastOrderAt = &at
	}
}

// Columns maps the patch onto SQL columns.
func (p CustomerPatch) Columns(_ time.Time) map[string]any {
	cols := map[string]any{}
	if p.Name != nil {
		cols["name"] = *p.Name
	}
	if p.Place != nil {
		cols["place"] = *p.Place
	}
	if p.Landmark != nil {
		cols["landmark"] = *p.Landmark
	}
	if p.LoyaltyPoints != nil {
		cols["loyalty_points"] = *p.LoyaltyPoints
	}
	if p.OrderCount != nil {
		cols["order_count"] = *p.OrderCount
	}
	if p.LastOrderAt != nil {
		cols["last_order_at"] = *p.LastOrderAt
	}
	return cols
}
