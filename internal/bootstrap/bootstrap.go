// Package bootstrap opens the storage a process needs and builds the data
// clients for the configured backend. Commands share it so the API and the
// catalog importer always agree on where data lives.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/grameenmart/storefront/internal/dataclient"
	"github.com/grameenmart/storefront/internal/dataclient/direct"
	"github.com/grameenmart/storefront/internal/dataclient/localstore"
	"github.com/grameenmart/storefront/internal/dataclient/proxy"
	"github.com/grameenmart/storefront/pkg/config"
	"github.com/grameenmart/storefront/pkg/db"
	"github.com/grameenmart/storefront/pkg/logger"
	"github.com/grameenmart/storefront/pkg/metrics"
	"github.com/grameenmart/storefront/pkg/migrate"
	"github.com/grameenmart/storefront/pkg/redis"
	"github.com/grameenmart/storefront/pkg/storage"
)

// Resources is everything opened at boot. Close releases it in reverse
// order of opening.
type Resources struct {
	Blobs storage.Store
	DB    *db.Client
	Redis *redis.Client

	// Products and Customers talk to the configured backend.
	Products  dataclient.ProductClient
	Customers dataclient.CustomerClient

	// SQLProducts and SQLCustomers are set whenever a database is open;
	// the data proxy endpoint serves them.
	SQLProducts  dataclient.ProductClient
	SQLCustomers dataclient.CustomerClient

	closers []func() error
}

// Open connects Redis, the SQL database and the blob store as the config
// asks, then builds the instrumented data clients. reg may be nil. On
// failure everything already opened is closed again.
func Open(ctx context.Context, cfg *config.Config, logg *logger.Logger, reg prometheus.Registerer) (*Resources, error) {
	res := &Resources{}
	if err := res.open(ctx, cfg, logg, reg); err != nil {
		return nil, multierr.Append(err, res.Close())
	}
	return res, nil
}

func (res *Resources) open(ctx context.Context, cfg *config.Config, logg *logger.Logger, reg prometheus.Registerer) error {
	if cfg.NeedsRedis() {
		client, err := redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return fmt.Errorf("bootstrap redis: %w", err)
		}
		res.Redis = client
		res.closers = append(res.closers, client.Close)
	}

	if cfg.NeedsDB() {
		client, err := openDB(ctx, cfg, logg)
		if err != nil {
			return err
		}
		res.DB = client
		res.closers = append(res.closers, client.Close)
		if err := migrate.MaybeRunDev(ctx, cfg, logg, client); err != nil {
			return fmt.Errorf("dev migrations: %w", err)
		}
	}

	blobs, err := openBlobs(ctx, cfg, logg, res.Redis)
	if err != nil {
		return err
	}
	res.Blobs = blobs
	res.closers = append(res.closers, blobs.Close)

	m := metrics.NewDataClientMetrics(reg)
	backend := cfg.Data.Backend

	if res.DB != nil {
		res.SQLProducts = dataclient.Instrument(direct.NewProducts(res.DB), config.DataBackendDirect, dataclient.ProductSchema, logg, m)
		res.SQLCustomers = dataclient.Instrument(direct.NewCustomers(res.DB), config.DataBackendDirect, dataclient.CustomerSchema, logg, m)
	}

	switch backend {
	case config.DataBackendDirect:
		res.Products, res.Customers = res.SQLProducts, res.SQLCustomers
	case config.DataBackendProxy:
		products, err := proxy.NewProducts(cfg.Data.ProxyURL, proxy.WithTimeout(cfg.Data.ProxyTimeout))
		if err != nil {
			return fmt.Errorf("proxy products client: %w", err)
		}
		customers, err := proxy.NewCustomers(cfg.Data.ProxyURL, proxy.WithTimeout(cfg.Data.ProxyTimeout))
		if err != nil {
			return fmt.Errorf("proxy customers client: %w", err)
		}
		res.Products = dataclient.Instrument(products, backend, dataclient.ProductSchema, logg, m)
		res.Customers = dataclient.Instrument(customers, backend, dataclient.CustomerSchema, logg, m)
	default:
		res.Products = dataclient.Instrument(localstore.NewProducts(blobs), backend, dataclient.ProductSchema, logg, m)
		res.Customers = dataclient.Instrument(localstore.NewCustomers(blobs), backend, dataclient.CustomerSchema, logg, m)
	}

	if logg != nil {
		logg.Info(logg.WithFields(ctx, map[string]any{
			"backend":           backend,
			"localstore_driver": cfg.Data.LocalStoreDriver,
			"db":                res.DB != nil,
			"redis":             res.Redis != nil,
		}), "data backend ready")
	}
	return nil
}

// Close releases every opened resource and reports all failures.
func (r *Resources) Close() error {
	if r == nil {
		return nil
	}
	var err error
	for i := len(r.closers) - 1; i >= 0; i-- {
		err = multierr.Append(err, r.closers[i]())
	}
	r.closers = nil
	return err
}

func openDB(ctx context.Context, cfg *config.Config, logg *logger.Logger) (*db.Client, error) {
	if cfg.FeatureFlags.UseSQLite {
		client, err := db.NewSQLite(ctx, cfg.DB.SQLitePath, logg)
		if err != nil {
			return nil, fmt.Errorf("bootstrap sqlite: %w", err)
		}
		return client, nil
	}
	client, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return nil, fmt.Errorf("bootstrap database: %w", err)
	}
	return client, nil
}

// openBlobs picks the blob driver. Carts, the banner and admin sessions
// always live here, whatever the data backend is.
func openBlobs(ctx context.Context, cfg *config.Config, logg *logger.Logger, redisClient *redis.Client) (storage.Store, error) {
	if cfg.Data.LocalStoreDriver == config.LocalStoreDriverRedis {
		if redisClient == nil {
			return nil, fmt.Errorf("%s=%s requires redis settings", config.EnvLocalStoreDriver, config.LocalStoreDriverRedis)
		}
		return storage.NewRedisStore(redisClient), nil
	}
	blobs, err := storage.OpenBolt(ctx, cfg.Data.BoltPath, logg)
	if err != nil {
		return nil, fmt.Errorf("bootstrap bolt: %w", err)
	}
	return blobs, nil
}
