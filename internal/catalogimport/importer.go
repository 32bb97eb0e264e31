// Package catalogimport seeds the product catalog from a CSV file.
package catalogimport

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/grameenmart/storefront/pkg/db/models"
	"github.com/grameenmart/storefront/pkg/enums"
	"go.uber.org/multierr"
)

// Row is one CSV line. Numeric and boolean columns are kept as text so a bad
// cell is reported against its row instead of aborting the whole file.
type Row struct {
	ID            string `csv:"id"`
	Name          string `csv:"name"`
	MalayalamName string `csv:"malayalamName"`
	Description   string `csv:"description"`
	Price         string `csv:"price"`
	MarketPrice   string `csv:"marketPrice"`
	Unit          string `csv:"unit"`
	Category      string `csv:"category"`
	InStock       string `csv:"inStock"`
	Image         string `csv:"image"`
	ImageURL      string `csv:"imageUrl"`
}

type productWriter interface {
	SetAll(ctx context.Context, products []models.Product) error
}

// Parse decodes and validates every row. Rows without an id get one derived
// from now in milliseconds, offset by their position. All row errors are
// returned together.
func Parse(r io.Reader, now time.Time) ([]models.Product, error) {
	var rows []*Row
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("decode csv: %w", err)
	}

	stamp := now.UTC()
	products := make([]models.Product, 0, len(rows))
	var errs error
	for i, row := range rows {
		line := i + 2
		product, err := row.toProduct(stamp.UnixMilli()+int64(i), stamp)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("line %d: %w", line, err))
			continue
		}
		products = append(products, product)
	}
	if errs != nil {
		return nil, errs
	}
	return products, nil
}

func (r Row) toProduct(fallbackID int64, now time.Time) (models.Product, error) {
	var errs error
	product := models.Product{
		ID:            fallbackID,
		Name:          strings.TrimSpace(r.Name),
		MalayalamName: strings.TrimSpace(r.MalayalamName),
		Description:   strings.TrimSpace(r.Description),
		Unit:          enums.ProductUnitKg,
		Category:      enums.ProductCategoryVegetable,
		InStock:       true,
		Image:         strings.TrimSpace(r.Image),
		ImageURL:      strings.TrimSpace(r.ImageURL),
		CreatedAt:     &now,
	}
	if product.Image == "" {
		product.Image = models.PlaceholderImage
	}

	if id := strings.TrimSpace(r.ID); id != "" {
		parsed, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("invalid id %q", id))
		}
		product.ID = parsed
	}
	if product.Name == "" {
		errs = multierr.Append(errs, fmt.Errorf("name is required"))
	}
	if product.MalayalamName == "" {
		errs = multierr.Append(errs, fmt.Errorf("malayalamName is required"))
	}

	price, err := strconv.ParseFloat(strings.TrimSpace(r.Price), 64)
	if err != nil || price <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("price must be a positive number, got %q", r.Price))
	}
	product.Price = price

	if raw := strings.TrimSpace(r.MarketPrice); raw != "" {
		market, err := strconv.ParseFloat(raw, 64)
		if err != nil || market < 0 {
			errs = multierr.Append(errs, fmt.Errorf("invalid marketPrice %q", raw))
		}
		product.MarketPrice = market
	}
	if raw := strings.TrimSpace(r.Unit); raw != "" {
		unit, err := enums.ParseProductUnit(strings.ToLower(raw))
		errs = multierr.Append(errs, err)
		product.Unit = unit
	}
	if raw := strings.TrimSpace(r.Category); raw != "" {
		category, err := enums.ParseProductCategory(strings.ToLower(raw))
		errs = multierr.Append(errs, err)
		product.Category = category
	}
	if raw := strings.TrimSpace(r.InStock); raw != "" {
		inStock, err := strconv.ParseBool(raw)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("invalid inStock %q", raw))
		}
		product.InStock = inStock
	}
	return product, errs
}

// Import parses the CSV and replaces the catalog with its rows. Nothing is
// written when any row is invalid.
func Import(ctx context.Context, r io.Reader, products productWriter, now time.Time) ([]models.Product, error) {
	parsed, err := Parse(r, now)
	if err != nil {
		return nil, err
	}
	if len(parsed) == 0 {
		return nil, fmt.Errorf("csv contains no products")
	}
	if err := products.SetAll(ctx, parsed); err != nil {
		return nil, err
	}
	return parsed, nil
}
