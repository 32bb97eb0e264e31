package dataclient

import (
	"context"
	"time"

	"github.com/grameenmart/storefront/pkg/enums"
	pkgerrors "github.com/grameenmart/storefront/pkg/errors"
	"github.com/grameenmart/storefront/pkg/logger"
	"github.com/grameenmart/storefront/pkg/metrics"
)

// Instrumented decorates a backend with logging, metrics and the mapping of
// raw failures to dependency errors.
type Instrumented[T any, K comparable, P any] struct {
	next    Client[T, K, P]
	backend string
	table   string
	logg    *logger.Logger
	metrics *metrics.DataClientMetrics
}

// Instrument wraps next. logg and m may be nil.
func Instrument[T any, K comparable, P any](next Client[T, K, P], backend string, schema Schema[T, K, P], logg *logger.Logger, m *metrics.DataClientMetrics) *Instrumented[T, K, P] {
	return &Instrumented[T, K, P]{
		next:    next,
		backend: backend,
		table:   schema.Table.String(),
		logg:    logg,
		metrics: m,
	}
}

func (c *Instrumented[T, K, P]) GetAll(ctx context.Context) ([]T, error) {
	var records []T
	err := c.observe(ctx, enums.DataActionGetAll, func() error {
		var err error
		records, err = c.next.GetAll(ctx)
		return err
	})
	return records, err
}

func (c *Instrumented[T, K, P]) GetByID(ctx context.Context, key K) (*T, error) {
	var record *T
	err := c.observe(ctx, enums.DataActionGetByID, func() error {
		var err error
		record, err = c.next.GetByID(ctx, key)
		return err
	})
	return record, err
}

func (c *Instrumented[T, K, P]) Add(ctx context.Context, record T) error {
	return c.observe(ctx, enums.DataActionAdd, func() error {
		return c.next.Add(ctx, record)
	})
}

func (c *Instrumented[T, K, P]) Update(ctx context.Context, key K, patch P) error {
	return c.observe(ctx, enums.DataActionUpdate, func() error {
		return c.next.Update(ctx, key, patch)
	})
}

func (c *Instrumented[T, K, P]) Delete(ctx context.Context, key K) error {
	return c.observe(ctx, enums.DataActionDelete, func() error {
		return c.next.Delete(ctx, key)
	})
}

func (c *Instrumented[T, K, P]) SetAll(ctx context.Context, records []T) error {
	return c.observe(ctx, enums.DataActionSetAll, func() error {
		return c.next.SetAll(ctx, records)
	})
}

func (c *Instrumented[T, K, P]) observe(ctx context.Context, action enums.DataAction, call func() error) error {
	start := time.Now()
	err := call()
	took := time.Since(start)
	c.metrics.Observe(c.backend, c.table, action.String(), took, err)

	if err == nil {
		if c.logg != nil {
			c.logg.Debug(c.logg.WithDataOp(ctx, c.backend, c.table, action.String()), "data client call")
		}
		return nil
	}

	err = pkgerrors.Backend(err, c.table+" "+action.String()+" failed")
	if c.logg != nil {
		c.logg.Error(c.logg.WithDataOp(ctx, c.backend, c.table, action.String()), "data client call failed", err)
	}
	return err
}
