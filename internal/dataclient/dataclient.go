// Package dataclient defines the CRUD contract shared by every storage
// backend of the storefront, and the per-table descriptors backends use to
// stay generic over products and customers.
package dataclient

import (
	"context"
	"time"

	"github.com/grameenmart/storefront/pkg/db/models"
	"github.com/grameenmart/storefront/pkg/enums"
)

// Client is the uniform data access surface. Implementations must be
// behaviorally substitutable: the same serialized sequence of calls leaves
// the same records visible through GetAll.
type Client[T any, K comparable, P any] interface {
	// GetAll returns every record in backend (insertion) order.
	GetAll(ctx context.Context) ([]T, error)
	// GetByID returns the first record matching key, or nil when none does.
	GetByID(ctx context.Context, key K) (*T, error)
	// Add appends record without checking for key collisions.
	Add(ctx context.Context, record T) error
	// Update merges patch into every matching record. A missing key is a no-op.
	Update(ctx context.Context, key K, patch P) error
	// Delete removes every matching record. A missing key is a no-op.
	Delete(ctx context.Context, key K) error
	// SetAll replaces the whole collection with records, in order.
	SetAll(ctx context.Context, records []T) error
}

type (
	ProductClient  = Client[models.Product, int64, models.ProductPatch]
	CustomerClient = Client[models.Customer, string, models.CustomerPatch]
)

// Schema describes how a backend stores and matches one table.
type Schema[T any, K comparable, P any] struct {
	Table enums.Table
	// BlobKey is the key the whole collection lives under in a blob store.
	BlobKey string
	KeyOf   func(T) K
	// Apply merges a patch into a record in memory.
	Apply func(P, *T, time.Time)
	// Columns renders a patch as SQL column assignments.
	Columns func(P, time.Time) map[string]any
	// Stamp fills creation metadata on a record about to be added.
	Stamp func(*T, time.Time)
	// Detach clears storage-only identity so the record can be inserted afresh.
	Detach func(*T)
	// WireKey places key on a proxy request; KeyFromWire reads it back.
	WireKey     func(K, *ProxyRequest)
	KeyFromWire func(ProxyRequest) (K, bool)
}

const (
	ProductsBlobKey  = "grameenMartProducts"
	CustomersBlobKey = "grameenMartCustomers"
	BannerBlobKey    = "grameenMartBanner"
)

// ProductSchema matches products on id.
var ProductSchema = Schema[models.Product, int64, models.ProductPatch]{
	Table:   enums.TableProducts,
	BlobKey: ProductsBlobKey,
	KeyOf:   func(p models.Product) int64 { return p.ID },
	Apply: func(patch models.ProductPatch, p *models.Product, now time.Time) {
		patch.Apply(p, now)
	},
	Columns: func(patch models.ProductPatch, now time.Time) map[string]any {
		return patch.Columns(now)
	},
	Stamp: func(p *models.Product, now time.Time) {
		if p.CreatedAt == nil {
			at := now
			p.CreatedAt = &at
		}
	},
	Detach: func(p *models.Product) { p.RowID = 0 },
	WireKey: func(id int64, req *ProxyRequest) {
		req.ID = &id
	},
	KeyFromWire: func(req ProxyRequest) (int64, bool) {
		if req.ID == nil {
			return 0, false
		}
		return *req.ID, true
	},
}

// CustomerSchema matches customers on mobile.
var CustomerSchema = Schema[models.Customer, string, models.CustomerPatch]{
	Table:   enums.TableCustomers,
	BlobKey: CustomersBlobKey,
	KeyOf:   func(c models.Customer) string { return c.Mobile },
	Apply: func(patch models.CustomerPatch, c *models.Customer, now time.Time) {
		patch.Apply(c, now)
	},
	Columns: func(patch models.CustomerPatch, now time.Time) map[string]any {
		return patch.Columns(now)
	},
	Stamp: func(c *models.Customer, now time.Time) {
		if c.CreatedAt == nil {
			at := now
			c.CreatedAt = &at
		}
	},
	Detach: func(c *models.Customer) { c.RowID = 0 },
	WireKey: func(mobile string, req *ProxyRequest) {
		req.Mobile = &mobile
	},
	KeyFromWire: func(req ProxyRequest) (string, bool) {
		if req.Mobile == nil {
			return "", false
		}
		return *req.Mobile, true
	},
}
