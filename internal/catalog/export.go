package catalog

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/grameenmart/storefront/pkg/db/models"
)

const exportSheet = "Sheet1"

var exportHeader = []string{
	"ID", "Name", "Malayalam Name", "Category", "Unit",
	"Price", "Market Price", "In Stock", "Has Image", "Updated At",
}

// ExportXLSX writes the products as a single-sheet workbook, one row per
// product under a header row.
func ExportXLSX(w io.Writer, products []models.Product) error {
	book := excelize.NewFile()
	for col, title := range exportHeader {
		book.SetCellValue(exportSheet, cellName(col, 1), title)
	}
	for i, product := range products {
		row := i + 2
		values := []any{
			product.ID,
			product.Name,
			product.MalayalamName,
			product.Category.String(),
			product.Unit.String(),
			product.Price,
			product.MarketPrice,
			yesNo(product.InStock),
			yesNo(product.HasImage()),
			formatTime(product.UpdatedAt),
		}
		for col, value := range values {
			book.SetCellValue(exportSheet, cellName(col, row), value)
		}
	}
	if err := book.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// cellName converts a zero-based column and one-based row into A1 notation.
func cellName(col, row int) string {
	return excelize.ToAlphaString(col) + strconv.Itoa(row)
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
