package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/grameenmart/storefront/pkg/db/models"
	"github.com/grameenmart/storefront/pkg/enums"
	"gorm.io/gorm"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	client, err := NewSQLite(context.Background(), "file::memory:", nil)
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := client.DB().AutoMigrate(&models.Product{}, &models.Customer{}); err != nil {
		t.Fatalf("failed to migrate sqlite: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestWithTx_CommitsAndRollbacks(t *testing.T) {
	client := newTestClient(t)
	db := client.DB()

	ctx := context.Background()
	if err := client.WithTx(ctx, func(tx *gorm.DB) error {
		return tx.Create(&models.Customer{Mobile: "9000000001", Name: "committed"}).Error
	}); err != nil {
		t.Fatalf("WithTx commit failed: %v", err)
	}

	var count int64
	if err := db.Model(&models.Customer{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 record, got %d", count)
	}

	err := client.WithTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&models.Customer{Mobile: "9000000002", Name: "rolled"}).Error; err != nil {
			return err
		}
		return errors.New("boom")
	})
	if err == nil {
		t.Fatal("expected WithTx to return an error")
	}
	if err := db.Model(&models.Customer{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed after rollback: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected rollback to leave 1 record, got %d", count)
	}
}

func TestDuplicateKeysAreStoredSideBySide(t *testing.T) {
	client := newTestClient(t)
	db := client.DB()

	for _, name := range []string{"first", "second"} {
		if err := db.Create(&models.Product{ID: 7, Name: name, Price: 10, Unit: enums.ProductUnitPiece, Category: enums.ProductCategoryFruit, InStock: true}).Error; err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
	}

	var rows []models.Product
	if err := db.Where("id = ?", 7).Order("row_id").Find(&rows).Error; err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(rows) != 2 || rows[0].Name != "first" || rows[1].Name != "second" {
		t.Fatalf("expected both rows in insertion order, got %+v", rows)
	}
}

func TestTimestampsAreNotAutoFilled(t *testing.T) {
	client := newTestClient(t)
	db := client.DB()

	if err := db.Create(&models.Product{ID: 1, Name: "Tomato", Price: 40, Unit: enums.ProductUnitKg, Category: enums.ProductCategoryVegetable}).Error; err != nil {
		t.Fatalf("create: %v", err)
	}
	var got models.Product
	if err := db.First(&got).Error; err != nil {
		t.Fatalf("first: %v", err)
	}
	if got.CreatedAt != nil || got.UpdatedAt != nil {
		t.Fatalf("expected timestamps to stay unset, got %v %v", got.CreatedAt, got.UpdatedAt)
	}

	name := "Cherry Tomato"
	now := time.Now().UTC()
	if err := db.Model(&models.Product{}).Where("id = ?", 1).Updates(models.ProductPatch{Name: &name}.Columns(now)).Error; err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := db.First(&got).Error; err != nil {
		t.Fatalf("first: %v", err)
	}
	if got.Name != name || got.UpdatedAt == nil {
		t.Fatalf("expected patched name and updatedAt, got %+v", got)
	}
}

func TestPing(t *testing.T) {
	client := newTestClient(t)
	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected ping error: %v", err)
	}
}
