package dataproxy

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/grameenmart/storefront/internal/dataclient"
	"github.com/grameenmart/storefront/internal/dataclient/localstore"
	"github.com/grameenmart/storefront/pkg/db/models"
	"github.com/grameenmart/storefront/pkg/enums"
	pkgerrors "github.com/grameenmart/storefront/pkg/errors"
	"github.com/grameenmart/storefront/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	store, err := storage.OpenBolt(context.Background(), filepath.Join(t.TempDir(), "proxy.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	svc, err := NewService(localstore.NewProducts(store), localstore.NewCustomers(store))
	require.NoError(t, err)
	return svc
}

func int64Ptr(v int64) *int64 { return &v }

func strPtr(v string) *string { return &v }

func TestDispatchRejectsUnknownAction(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.Dispatch(context.Background(), dataclient.ProxyRequest{Action: "upsert", Table: "products"})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	assert.Contains(t, err.Error(), "Invalid action")
}

func TestDispatchRejectsUnknownTable(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.Dispatch(context.Background(), dataclient.ProxyRequest{Action: enums.DataActionGetAll, Table: "orders"})
	require.Error(t, err)
	assert.False(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestDispatchProductLifecycle(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	payload, err := json.Marshal(models.Product{ID: 3, Name: "Ginger", Price: 200, Unit: enums.ProductUnitKg})
	require.NoError(t, err)
	result, err := svc.Dispatch(ctx, dataclient.ProxyRequest{Action: enums.DataActionAdd, Table: "products", Payload: payload})
	require.NoError(t, err)
	assert.Nil(t, result)

	update := json.RawMessage(`{"updates":{"price":180}}`)
	_, err = svc.Dispatch(ctx, dataclient.ProxyRequest{Action: enums.DataActionUpdate, Table: "products", ID: int64Ptr(3), Payload: update})
	require.NoError(t, err)

	result, err = svc.Dispatch(ctx, dataclient.ProxyRequest{Action: enums.DataActionGetByID, Table: "products", ID: int64Ptr(3)})
	require.NoError(t, err)
	var got models.Product
	require.NoError(t, json.Unmarshal(result, &got))
	assert.Equal(t, 180.0, got.Price)
	assert.Equal(t, "Ginger", got.Name)

	result, err = svc.Dispatch(ctx, dataclient.ProxyRequest{Action: enums.DataActionGetByID, Table: "products", ID: int64Ptr(99)})
	require.NoError(t, err)
	assert.JSONEq(t, `null`, string(result))

	_, err = svc.Dispatch(ctx, dataclient.ProxyRequest{Action: enums.DataActionDelete, Table: "products", ID: int64Ptr(3)})
	require.NoError(t, err)
	result, err = svc.Dispatch(ctx, dataclient.ProxyRequest{Action: enums.DataActionGetAll, Table: "products"})
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(result))
}

func TestDispatchCustomersMatchOnMobile(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	payload := json.RawMessage(`[{"mobile":"9876543210","name":"Anu","loyaltyPoints":4}]`)
	_, err := svc.Dispatch(ctx, dataclient.ProxyRequest{Action: enums.DataActionSetAll, Table: "customers", Payload: payload})
	require.NoError(t, err)

	result, err := svc.Dispatch(ctx, dataclient.ProxyRequest{Action: enums.DataActionGetByID, Table: "customers", Mobile: strPtr("9876543210")})
	require.NoError(t, err)
	var got models.Customer
	require.NoError(t, json.Unmarshal(result, &got))
	assert.Equal(t, 4, got.LoyaltyPoints)

	_, err = svc.Dispatch(ctx, dataclient.ProxyRequest{Action: enums.DataActionGetByID, Table: "customers", ID: int64Ptr(1)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mobile is required")
}

func TestDispatchRequiresPayload(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.Dispatch(context.Background(), dataclient.ProxyRequest{Action: enums.DataActionAdd, Table: "products"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "payload is required")
}
