package models

import (
	"time"

	"github.com/grameenmart/storefront/pkg/enums"
)

// PlaceholderImage is assigned to every product that has no uploaded picture.
const PlaceholderImage = "/placeholder.svg?height=200&width=200"

// Product is a catalog listing. RowID is a storage surrogate that keeps
// insertion order in SQL tables; it never leaves the process.
type Product struct {
	RowID         int64                 `gorm:"column:row_id;primaryKey;autoIncrement" json:"-"`
	ID            int64                 `gorm:"column:id;not null;index" json:"id"`
	Name          string                `gorm:"column:name;not null" json:"name"`
	MalayalamName string                `gorm:"column:malayalam_name;not null;default:''" json:"malayalamName"`
	Description   string                `gorm:"column:description;not null;default:''" json:"description"`
	Price         float64               `gorm:"column:price;not null" json:"price"`
	MarketPrice   float64               `gorm:"column:market_price;not null;default:0" json:"marketPrice"`
	Unit          enums.ProductUnit     `gorm:"column:unit;not null" json:"unit"`
	Category      enums.ProductCategory `gorm:"column:category;not null" json:"category"`
	InStock       bool                  `gorm:"column:in_stock;not null" json:"inStock"`
	Image         string                `gorm:"column:image;not null;default:''" json:"image"`
	ImageURL      string                `gorm:"column:image_url;not null;default:''" json:"imageUrl,omitempty"`
	CreatedAt     *time.Time            `gorm:"column:created_at;autoCreateTime:false" json:"createdAt,omitempty"`
	UpdatedAt     *time.Time            `gorm:"column:updated_at;autoUpdateTime:false" json:"updatedAt,omitempty"`
}

func (Product) TableName() string { return enums.TableProducts.String() }

// Key returns the identity products are matched on.
func (p Product) Key() int64 { return p.ID }

// Savings is the difference between the reference and selling price.
func (p Product) Savings() float64 { return p.MarketPrice - p.Price }

// HasImage reports whether an uploaded image replaces the placeholder.
func (p Product) HasImage() bool { return p.ImageURL != "" }

// ProductPatch carries a partial product update. Nil fields are left alone.
type ProductPatch struct {
	Name          *string                `json:"name,omitempty"`
	MalayalamName *string                `json:"malayalamName,omitempty"`
	Description   *string                `json:"description,omitempty"`
	Price         *float64               `json:"price,omitempty"`
	MarketPrice   *float64               `json:"marketPrice,omitempty"`
	Unit          *enums.ProductUnit     `json:"unit,omitempty"`
	Category      *enums.ProductCategory `json:"category,omitempty"`
	InStock       *bool                  `json:"inStock,omitempty"`
	Image         *string                `json:"image,omitempty"`
	ImageURL      *string                `json:"imageUrl,omitempty"`
}

// Apply merges the patch into product and stamps UpdatedAt.
func (p ProductPatch) Apply(product *Product, now time.Time) {
	if product == nil {
		return
	}
	if p.Name != nil {
		product.Name = *p.Name
	}
	if p.MalayalamName != nil {
		product.MalayalamName = *p.MalayalamName
	}
	if p.Description != nil {
		product.Description = *p.Description
	}
	if p.Price != nil {
		product.Price = *p.Price
	}
	if p.MarketPrice != nil {
		product.MarketPrice = *p.MarketPrice
	}
	if p.Unit != nil {
		product.Unit = *p.Unit
	}
	if p.Category != nil {
		product.Category = *p.Category
	}
	if p.InStock != nil {
		product.InStock = *p.InStock
	}
	if p.Image != nil {
		product.Image = *p.Image
	}
	if p.ImageURL != nil {
		product.ImageURL = *p.ImageURL
	}
	stamp := now
	product.UpdatedAt = &stamp
}

// Columns maps the patch onto SQL columns, including the refreshed updated_at.
func (p ProductPatch) Columns(now time.Time) map[string]any {
	cols := map[string]any{"updated_at": now}
	if p.Name != nil {
		cols["name"] = *p.Name
	}
	if p.MalayalamName != nil {
		cols["malayalam_name"] = *p.MalayalamName
	}
	if p.Description != nil {
		cols["description"] = *p.Description
	}
	if p.Price != nil {
		cols["price"] = *p.Price
	}
	if p.MarketPrice != nil {
		cols["market_price"] = *p.MarketPrice
	}
	if p.Unit != nil {
		cols["unit"] = *p.Unit
	}
	if p.Category != nil {
		cols["category"] = *p.Category
	}
	if p.InStock != nil {
		cols["in_stock"] = *p.InStock
	}
	if p.Image != nil {
		cols["image"] = *p.Image
	}
	if p.ImageURL != nil {
		cols["image_url"] = *p.ImageURL
	}
	return cols
}

// PatchFromProduct builds a full-field patch, used when an edited product is
// saved back as a whole.
func PatchFromProduct(product Product) ProductPatch {
	return ProductPatch{
		Name:          &product.Name,
		MalayalamName: &product.MalayalamName,
		Description:   &product.Description,
		Price:         &product.Price,
		MarketPrice:   &product.MarketPrice,
		Unit:          &product.Unit,
		Category:      &product.Category,
		InStock:       &product.InStock,
		Image:         &product.Image,
		ImageURL:      &product.ImageURL,
	}
}
