package bootstrap

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grameenmart/storefront/pkg/config"
	"github.com/grameenmart/storefront/pkg/db/models"
	"github.com/grameenmart/storefront/pkg/enums"
)

func baseConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		App: config.AppConfig{Env: config.AppEnvDev},
		Data: config.DataConfig{
			Backend:          config.DataBackendLocalStore,
			LocalStoreDriver: config.LocalStoreDriverBolt,
			BoltPath:         filepath.Join(t.TempDir(), "storefront.db"),
		},
	}
}

func TestOpenLocalStoreUsesBolt(t *testing.T) {
	ctx := context.Background()
	res, err := Open(ctx, baseConfig(t), nil, prometheus.NewRegistry())
	require.NoError(t, err)
	t.Cleanup(func() { _ = res.Close() })

	assert.Nil(t, res.DB)
	assert.Nil(t, res.Redis)
	assert.Nil(t, res.SQLProducts)

	require.NoError(t, res.Products.Add(ctx, models.Product{ID: 1, Name: "Tomato", Price: 40, Unit: enums.ProductUnitKg, Category: enums.ProductCategoryVegetable}))
	items, err := res.Products.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestOpenDirectOnSQLite(t *testing.T) {
	ctx := context.Background()
	cfg := baseConfig(t)
	cfg.Data.Backend = config.DataBackendDirect
	cfg.FeatureFlags = config.FeatureFlagsConfig{UseSQLite: true, AutoMigrate: true}
	cfg.DB.SQLitePath = filepath.Join(t.TempDir(), "storefront.sqlite")

	res, err := Open(ctx, cfg, nil, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = res.Close() })

	require.NotNil(t, res.DB)
	require.NoError(t, res.Customers.Add(ctx, models.Customer{Mobile: "9876543210", Name: "Anu"}))
	found, err := res.SQLCustomers.GetByID(ctx, "9876543210")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "Anu", found.Name)
}

func TestOpenRedisDriverWithoutRedisFails(t *testing.T) {
	cfg := baseConfig(t)
	cfg.Data.LocalStoreDriver = config.LocalStoreDriverRedis

	_, err := Open(context.Background(), cfg, nil, nil)
	require.Error(t, err)
}

func TestCloseIsIdempotent(t *testing.T) {
	res, err := Open(context.Background(), baseConfig(t), nil, nil)
	require.NoError(t, err)
	require.NoError(t, res.Close())
	require.NoError(t, res.Close())
}
