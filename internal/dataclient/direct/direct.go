// Package direct talks to the hosted SQL database through gorm.
package direct

import (
	"context"
	"fmt"
	"time"

	"github.com/grameenmart/storefront/internal/dataclient"
	"github.com/grameenmart/storefront/pkg/db"
	"gorm.io/gorm"
)

// Client implements dataclient.Client over one SQL table. Rows are ordered by
// their surrogate row id, which follows insertion order.
type Client[T any, K comparable, P any] struct {
	db     *db.Client
	schema dataclient.Schema[T, K, P]
	now    func() time.Time
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

func New[T any, K comparable, P any](conn *db.Client, schema dataclient.Schema[T, K, P], opts ...Option) *Client[T, K, P] {
	o := options{now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return &Client[T, K, P]{db: conn, schema: schema, now: o.now}
}

func NewProducts(conn *db.Client, opts ...Option) dataclient.ProductClient {
	return New(conn, dataclient.ProductSchema, opts...)
}

func NewCustomers(conn *db.Client, opts ...Option) dataclient.CustomerClient {
	return New(conn, dataclient.CustomerSchema, opts...)
}

func (c *Client[T, K, P]) GetAll(ctx context.Context) ([]T, error) {
	records := []T{}
	if err := c.conn(ctx).Order("row_id").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("select %s: %w", c.schema.Table, err)
	}
	return records, nil
}

func (c *Client[T, K, P]) GetByID(ctx context.Context, key K) (*T, error) {
	var records []T
	err := c.conn(ctx).
		Where(c.keyClause(), key).
		Order("row_id").
		Limit(1).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("select %s by %s: %w", c.schema.Table, c.schema.Table.KeyColumn(), err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	return &records[0], nil
}

func (c *Client[T, K, P]) Add(ctx context.Context, record T) error {
	c.schema.Detach(&record)
	c.schema.Stamp(&record, c.now())
	if err := c.conn(ctx).Create(&record).Error; err != nil {
		return fmt.Errorf("insert %s: %w", c.schema.Table, err)
	}
	return nil
}

func (c *Client[T, K, P]) Update(ctx context.Context, key K, patch P) error {
	cols := c.schema.Columns(patch, c.now())
	if len(cols) == 0 {
		return nil
	}
	err := c.conn(ctx).
		Model(new(T)).
		Where(c.keyClause(), key).
		Updates(cols).Error
	if err != nil {
		return fmt.Errorf("update %s: %w", c.schema.Table, err)
	}
	return nil
}

func (c *Client[T, K, P]) Delete(ctx context.Context, key K) error {
	if err := c.conn(ctx).Where(c.keyClause(), key).Delete(new(T)).Error; err != nil {
		return fmt.Errorf("delete %s: %w", c.schema.Table, err)
	}
	return nil
}

// SetAll swaps the table contents inside one transaction.
func (c *Client[T, K, P]) SetAll(ctx context.Context, records []T) error {
	rows := make([]T, len(records))
	copy(rows, records)
	for i := range rows {
		c.schema.Detach(&rows[i])
	}

	err := c.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(new(T)).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return fmt.Errorf("replace %s: %w", c.schema.Table, err)
	}
	return nil
}

func (c *Client[T, K, P]) conn(ctx context.Context) *gorm.DB {
	return c.db.DB().WithContext(ctx)
}

func (c *Client[T, K, P]) keyClause() string {
	return c.schema.Table.KeyColumn() + " = ?"
}
