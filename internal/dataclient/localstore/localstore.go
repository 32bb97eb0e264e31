// Package localstore keeps each collection as one JSON array in a blob
// store. Every mutation reads the whole array, changes it in memory and
// writes it back.
package localstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/grameenmart/storefront/internal/dataclient"
	"github.com/grameenmart/storefront/pkg/storage"
)

// Client implements dataclient.Client over a storage.Store.
type Client[T any, K comparable, P any] struct {
	store  storage.Store
	schema dataclient.Schema[T, K, P]
	now    func() time.Time

	// mu serializes read-modify-write cycles issued through this client.
	// Other processes sharing the store still race; the last write wins.
	mu sync.Mutex
}

// Option configures optional client behavior.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func New[T any, K comparable, P any](store storage.Store, schema dataclient.Schema[T, K, P], opts ...Option) *Client[T, K, P] {
	o := options{now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return &Client[T, K, P]{store: store, schema: schema, now: o.now}
}

func NewProducts(store storage.Store, opts ...Option) dataclient.ProductClient {
	return New(store, dataclient.ProductSchema, opts...)
}

func NewCustomers(store storage.Store, opts ...Option) dataclient.CustomerClient {
	return New(store, dataclient.CustomerSchema, opts...)
}

func (c *Client[T, K, P]) GetAll(ctx context.Context) ([]T, error) {
	return c.read(ctx)
}

func (c *Client[T, K, P]) GetByID(ctx context.Context, key K) (*T, error) {
	records, err := c.read(ctx)
	if err != nil {
		return nil, err
	}
	for i := range records {
		if c.schema.KeyOf(records[i]) == key {
			found := records[i]
			return &found, nil
		}
	}
	return nil, nil
}

func (c *Client[T, K, P]) Add(ctx context.Context, record T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	records, err := c.read(ctx)
	if err != nil {
		return err
	}
	c.schema.Stamp(&record, c.now())
	return c.write(ctx, append(records, record))
}

func (c *Client[T, K, P]) Update(ctx context.Context, key K, patch P) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	records, err := c.read(ctx)
	if err != nil {
		return err
	}
	now := c.now()
	matched := false
	for i := range records {
		if c.schema.KeyOf(records[i]) == key {
			c.schema.Apply(patch, &records[i], now)
			matched = true
		}
	}
	if !matched {
		return nil
	}
	return c.write(ctx, records)
}

func (c *Client[T, K, P]) Delete(ctx context.Context, key K) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	records, err := c.read(ctx)
	if err != nil {
		return err
	}
	kept := records[:0]
	for _, record := range records {
		if c.schema.KeyOf(record) != key {
			kept = append(kept, record)
		}
	}
	if len(kept) == len(records) {
		return nil
	}
	return c.write(ctx, kept)
}

func (c *Client[T, K, P]) SetAll(ctx context.Context, records []T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if records == nil {
		records = []T{}
	}
	return c.write(ctx, records)
}

func (c *Client[T, K, P]) read(ctx context.Context) ([]T, error) {
	raw, found, err := c.store.Get(ctx, c.schema.BlobKey)
	if err != nil {
		return nil, fmt.Errorf("read %s blob: %w", c.schema.BlobKey, err)
	}
	records := []T{}
	if !found || len(raw) == 0 {
		return records, nil
	}
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decode %s blob: %w", c.schema.BlobKey, err)
	}
	if records == nil {
		records = []T{}
	}
	return records, nil
}

func (c *Client[T, K, P]) write(ctx context.Context, records []T) error {
	raw, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode %s blob: %w", c.schema.BlobKey, err)
	}
	if err := c.store.Put(ctx, c.schema.BlobKey, raw, 0); err != nil {
		return fmt.Errorf("write %s blob: %w", c.schema.BlobKey, err)
	}
	return nil
}
