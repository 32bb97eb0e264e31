// Package binding keeps an in-memory copy of a collection in sync with its
// data client. Every mutation is followed by a full reload; the cache never
// holds a locally patched record.
package binding

import (
	"context"
	"fmt"
	"sync"

	"github.com/grameenmart/storefront/internal/dataclient"
	"github.com/grameenmart/storefront/pkg/db/models"
)

// Collection caches the records of one data client. Operations are
// serialized, so a reload always reflects every mutation issued before it.
type Collection[T any, K comparable, P any] struct {
	client dataclient.Client[T, K, P]
	keyOf  func(T) K

	mu     sync.Mutex
	loaded bool
	items  []T
}

type (
	Products  = Collection[models.Product, int64, models.ProductPatch]
	Customers = Collection[models.Customer, string, models.CustomerPatch]
)

func NewCollection[T any, K comparable, P any](client dataclient.Client[T, K, P], schema dataclient.Schema[T, K, P]) (*Collection[T, K, P], error) {
	if client == nil {
		return nil, fmt.Errorf("data client required")
	}
	return &Collection[T, K, P]{client: client, keyOf: schema.KeyOf}, nil
}

func NewProducts(client dataclient.ProductClient) (*Products, error) {
	return NewCollection(client, dataclient.ProductSchema)
}

func NewCustomers(client dataclient.CustomerClient) (*Customers, error) {
	return NewCollection(client, dataclient.CustomerSchema)
}

// Items returns a copy of the cached records, loading them on first use.
func (c *Collection[T, K, P]) Items(ctx context.Context) ([]T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.loaded {
		if err := c.reloadLocked(ctx); err != nil {
			return nil, err
		}
	}
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out, nil
}

// Find returns the first cached record with key, or nil.
func (c *Collection[T, K, P]) Find(ctx context.Context, key K) (*T, error) {
	items, err := c.Items(ctx)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if c.keyOf(items[i]) == key {
			return &items[i], nil
		}
	}
	return nil, nil
}

// Reload replaces the cache with a fresh GetAll.
func (c *Collection[T, K, P]) Reload(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reloadLocked(ctx)
}

func (c *Collection[T, K, P]) Add(ctx context.Context, record T) error {
	return c.mutate(ctx, func() error { return c.client.Add(ctx, record) })
}

func (c *Collection[T, K, P]) Update(ctx context.Context, key K, patch P) error {
	return c.mutate(ctx, func() error { return c.client.Update(ctx, key, patch) })
}

func (c *Collection[T, K, P]) Remove(ctx context.Context, key K) error {
	return c.mutate(ctx, func() error { return c.client.Delete(ctx, key) })
}

func (c *Collection[T, K, P]) SetAll(ctx context.Context, records []T) error {
	return c.mutate(ctx, func() error { return c.client.SetAll(ctx, records) })
}

func (c *Collection[T, K, P]) mutate(ctx context.Context, call func() error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := call(); err != nil {
		return err
	}
	return c.reloadLocked(ctx)
}

func (c *Collection[T, K, P]) reloadLocked(ctx context.Context) error {
	items, err := c.client.GetAll(ctx)
	if err != nil {
		return err
	}
	c.items = items
	c.loaded = true
	return nil
}
