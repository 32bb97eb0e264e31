package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grameenmart/storefront/api/controllers"
	"github.com/grameenmart/storefront/internal/auth"
	"github.com/grameenmart/storefront/internal/binding"
	"github.com/grameenmart/storefront/internal/cart"
	"github.com/grameenmart/storefront/internal/catalog"
	"github.com/grameenmart/storefront/internal/checkout"
	"github.com/grameenmart/storefront/internal/customers"
	"github.com/grameenmart/storefront/internal/dataclient/localstore"
	"github.com/grameenmart/storefront/internal/dataproxy"
	"github.com/grameenmart/storefront/pkg/auth/session"
	"github.com/grameenmart/storefront/pkg/config"
	"github.com/grameenmart/storefront/pkg/db/models"
	"github.com/grameenmart/storefront/pkg/enums"
	"github.com/grameenmart/storefront/pkg/metrics"
	"github.com/grameenmart/storefront/pkg/security"
	"github.com/grameenmart/storefront/pkg/storage"
)

const adminPassword = "gMsecret@123"

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

type testApp struct {
	handler  http.Handler
	products *binding.Products
}

func newTestApp(t *testing.T, pingers map[string]controllers.Pinger) testApp {
	t.Helper()
	ctx := context.Background()

	blobs, err := storage.OpenBolt(ctx, filepath.Join(t.TempDir(), "storefront.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = blobs.Close() })

	productClient := localstore.NewProducts(blobs)
	customerClient := localstore.NewCustomers(blobs)
	products, err := binding.NewProducts(productClient)
	require.NoError(t, err)
	customerBinding, err := binding.NewCustomers(customerClient)
	require.NoError(t, err)
	banner, err := binding.NewBanner(blobs)
	require.NoError(t, err)

	catalogSvc, err := catalog.NewService(products, nil)
	require.NoError(t, err)
	customerSvc, err := customers.NewService(customerBinding)
	require.NoError(t, err)
	cartSvc, err := cart.NewService(cart.NewStore(blobs, time.Hour, time.Now), products)
	require.NoError(t, err)
	reg := prometheus.NewRegistry()
	checkoutSvc, err := checkout.NewService(cartSvc, customerBinding, checkout.Storefront{
		Name:           "Grameen Mart",
		WhatsAppNumber: "919744083698",
		DeliveryNote:   "Within 15 minutes",
	}, nil, checkout.WithMetrics(metrics.NewOrderMetrics(reg)))
	require.NoError(t, err)

	hash, err := security.HashPassword(adminPassword, config.PasswordConfig{ArgonMemoryKB: 8192, ArgonTime: 1, ArgonParallelism: 1, ArgonSaltLen: 16, ArgonKeyLen: 32})
	require.NoError(t, err)
	cfg := &config.Config{
		App:  config.AppConfig{Env: "dev"},
		Data: config.DataConfig{ProxyEndpointPath: "/api/data-proxy"},
		Admin: config.AdminConfig{
			Username:     "admin",
			PasswordHash: hash,
		},
		JWT: config.JWTConfig{Secret: "test-secret", Issuer: "grameenmart", ExpirationMinutes: 60},
	}
	sessions, err := session.NewManager(blobs, time.Hour)
	require.NoError(t, err)
	authSvc, err := auth.NewService(auth.ServiceParams{Admin: cfg.Admin, JWTConfig: cfg.JWT, SessionManager: sessions})
	require.NoError(t, err)
	proxySvc, err := dataproxy.NewService(productClient, customerClient)
	require.NoError(t, err)

	handler := NewRouter(Dependencies{
		Config:    cfg,
		Pingers:   pingers,
		Gatherer:  reg,
		Catalog:   catalogSvc,
		Customers: customerSvc,
		Banner:    banner,
		Carts:     cartSvc,
		Checkout:  checkoutSvc,
		Auth:      authSvc,
		Sessions:  sessions,
		ReloadTargets: map[string]controllers.Reloader{
			"products":  products,
			"customers": customerBinding,
			"banner":    banner,
		},
		DataProxy: proxySvc,
	})
	return testApp{handler: handler, products: products}
}

func (a testApp) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch v := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(v))
	default:
		raw, err := json.Marshal(v)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func (a testApp) login(t *testing.T) string {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/api/admin/v1/login", "", map[string]string{"username": "admin", "password": adminPassword})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var out struct {
		Data auth.LoginResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.NotEmpty(t, out.Data.AccessToken)
	return out.Data.AccessToken
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dest any) {
	t.Helper()
	envelope := struct {
		Data any `json:"data"`
	}{Data: dest}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope), rec.Body.String())
}

func seed(t *testing.T, app testApp, products ...models.Product) {
	t.Helper()
	require.NoError(t, app.products.SetAll(context.Background(), products))
}

func TestHealthRoutes(t *testing.T) {
	app := newTestApp(t, map[string]controllers.Pinger{"store": stubPinger{}})

	rec := app.do(t, http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "dev", rec.Header().Get("X-Storefront-Env"))

	rec = app.do(t, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	failing := newTestApp(t, map[string]controllers.Pinger{"redis": stubPinger{err: errors.New("connection refused")}})
	rec = failing.do(t, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "connection refused")
}

func TestStorefrontCatalog(t *testing.T) {
	app := newTestApp(t, nil)
	seed(t, app,
		models.Product{ID: 1, Name: "Tomato", MalayalamName: "തക്കാളി", Price: 40, MarketPrice: 50, Unit: enums.ProductUnitKg, Category: enums.ProductCategoryVegetable, InStock: true},
		models.Product{ID: 2, Name: "Banana", MalayalamName: "പഴം", Price: 8, Unit: enums.ProductUnitPiece, Category: enums.ProductCategoryFruit, InStock: true},
	)

	rec := app.do(t, http.MethodGet, "/api/v1/products?category=fruit", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var listed []models.Product
	decodeData(t, rec, &listed)
	require.Len(t, listed, 1)
	assert.Equal(t, "Banana", listed[0].Name)

	rec = app.do(t, http.MethodGet, "/api/v1/products?category=no-image", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.do(t, http.MethodGet, "/api/v1/products/99", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = app.do(t, http.MethodGet, "/api/v1/products/1/units", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var units struct {
		Options []string `json:"options"`
		Default string   `json:"default"`
	}
	decodeData(t, rec, &units)
	assert.Equal(t, []string{"gram", "kg"}, units.Options)
	assert.Equal(t, "kg", units.Default)

	rec = app.do(t, http.MethodGet, "/api/v1/banner", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Free delivery")
}

func TestCartCheckoutFlow(t *testing.T) {
	app := newTestApp(t, nil)
	seed(t, app,
		models.Product{ID: 1, Name: "Tomato", MalayalamName: "തക്കാളി", Price: 40, Unit: enums.ProductUnitKg, Category: enums.ProductCategoryVegetable, InStock: true},
		models.Product{ID: 2, Name: "Mango", MalayalamName: "മാങ്ങ", Price: 30, Unit: enums.ProductUnitPiece, Category: enums.ProductCategoryFruit, InStock: false},
	)

	rec := app.do(t, http.MethodPost, "/api/v1/carts", "", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		SessionID string `json:"sessionId"`
	}
	decodeData(t, rec, &created)
	require.NotEmpty(t, created.SessionID)
	base := "/api/v1/carts/" + created.SessionID

	rec = app.do(t, http.MethodPost, base+"/items", "", map[string]any{"productId": 1, "selectedUnit": "gram", "actualQuantity": 500})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = app.do(t, http.MethodPost, base+"/items", "", map[string]any{"productId": 2})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Mango is currently out of stock.")

	rec = app.do(t, http.MethodGet, base, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var quote struct {
		Subtotal  float64 `json:"subtotal"`
		ItemCount int     `json:"itemCount"`
	}
	decodeData(t, rec, &quote)
	assert.Equal(t, 20.0, quote.Subtotal)
	assert.Equal(t, 1, quote.ItemCount)

	rec = app.do(t, http.MethodPost, base+"/checkout", "", map[string]any{"name": "Anu", "mobile": "98765", "place": "Kochi"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.do(t, http.MethodPost, base+"/checkout", "", map[string]any{"name": "Anu", "mobile": "9876543210", "place": "Kochi"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var placed struct {
		Customer    models.Customer `json:"customer"`
		WhatsAppURL string          `json:"whatsappUrl"`
	}
	decodeData(t, rec, &placed)
	assert.Equal(t, 2, placed.Customer.LoyaltyPoints)
	assert.Equal(t, 1, placed.Customer.OrderCount)
	assert.True(t, strings.HasPrefix(placed.WhatsAppURL, "https://wa.me/919744083698?text="))

	rec = app.do(t, http.MethodGet, base, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &quote)
	assert.Equal(t, 0, quote.ItemCount, "checkout clears the cart")

	rec = app.do(t, http.MethodGet, "/api/v1/customers/9876543210", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"Anu"`)
}

func TestRemoveCartItemRequiresLineIdentity(t *testing.T) {
	app := newTestApp(t, nil)
	rec := app.do(t, http.MethodDelete, "/api/v1/carts/abc/items?productId=x&selectedUnit=kg", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = app.do(t, http.MethodDelete, "/api/v1/carts/abc/items?productId=1", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = app.do(t, http.MethodDelete, "/api/v1/carts/abc/items?productId=1&selectedUnit=kg", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminRoutesRequireToken(t *testing.T) {
	app := newTestApp(t, nil)

	rec := app.do(t, http.MethodGet, "/api/admin/v1/products", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = app.do(t, http.MethodPost, "/api/admin/v1/login", "", map[string]string{"username": "admin", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid credentials!")
}

func TestAdminProductLifecycle(t *testing.T) {
	app := newTestApp(t, nil)
	token := app.login(t)

	rec := app.do(t, http.MethodPost, "/api/admin/v1/products", token, map[string]any{"name": "Carrot"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Please fill in all required fields")

	rec = app.do(t, http.MethodPost, "/api/admin/v1/products", token, map[string]any{"name": "Carrot", "malayalamName": "കാരറ്റ്", "price": 60})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created models.Product
	decodeData(t, rec, &created)
	assert.Equal(t, models.PlaceholderImage, created.Image)
	assert.True(t, created.InStock)
	path := "/api/admin/v1/products/" + jsonNumber(created.ID)

	rec = app.do(t, http.MethodPatch, path, token, map[string]any{"price": 55})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated models.Product
	decodeData(t, rec, &updated)
	assert.Equal(t, 55.0, updated.Price)

	rec = app.do(t, http.MethodPost, path+"/toggle-stock", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &updated)
	assert.False(t, updated.InStock)

	png := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 32)...)
	req := httptest.NewRequest(http.MethodPut, path+"/image", bytes.NewReader(png))
	req.Header.Set("Content-Type", "image/png")
	req.Header.Set("Authorization", "Bearer "+token)
	imgRec := httptest.NewRecorder()
	app.handler.ServeHTTP(imgRec, req)
	require.Equal(t, http.StatusOK, imgRec.Code, imgRec.Body.String())
	decodeData(t, imgRec, &updated)
	assert.True(t, strings.HasPrefix(updated.ImageURL, "data:image/png;base64,"))

	rec = app.do(t, http.MethodGet, "/api/admin/v1/products?filter=no-image", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var missing []models.Product
	decodeData(t, rec, &missing)
	assert.Empty(t, missing)

	rec = app.do(t, http.MethodDelete, path+"/image", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = app.do(t, http.MethodGet, "/api/admin/v1/products/export.xlsx", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "grameen-mart-products-")
	assert.NotZero(t, rec.Body.Len())

	rec = app.do(t, http.MethodDelete, path, token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = app.do(t, http.MethodDelete, path, token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code, "deleting an absent product is a no-op")
}

func TestAdminBulkSaveBannerAndReload(t *testing.T) {
	app := newTestApp(t, nil)
	token := app.login(t)

	rec := app.do(t, http.MethodPut, "/api/admin/v1/products", token, map[string]any{
		"products": []models.Product{{ID: 7, Name: "Jackfruit", MalayalamName: "ചക്ക", Price: 250, Unit: enums.ProductUnitPiece, Category: enums.ProductCategoryFruit, InStock: true}},
	})
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = app.do(t, http.MethodGet, "/api/v1/products", "", nil)
	var listed []models.Product
	decodeData(t, rec, &listed)
	require.Len(t, listed, 1)
	assert.Equal(t, "Jackfruit", listed[0].Name)

	rec = app.do(t, http.MethodPut, "/api/admin/v1/banner", token, map[string]string{"text": "Onam sale"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = app.do(t, http.MethodGet, "/api/v1/banner", "", nil)
	assert.Contains(t, rec.Body.String(), "Onam sale")

	rec = app.do(t, http.MethodPost, "/api/admin/v1/reload", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var reloaded struct {
		Reloaded []string `json:"reloaded"`
	}
	decodeData(t, rec, &reloaded)
	assert.ElementsMatch(t, []string{"products", "customers", "banner"}, reloaded.Reloaded)

	rec = app.do(t, http.MethodGet, "/api/admin/v1/customers", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminProductListPaging(t *testing.T) {
	app := newTestApp(t, nil)
	token := app.login(t)

	batch := make([]models.Product, 0, 3)
	for i, name := range []string{"Beans", "Okra", "Papaya"} {
		batch = append(batch, models.Product{ID: int64(i + 1), Name: name, MalayalamName: name, Price: 30, Unit: enums.ProductUnitKg, Category: enums.ProductCategoryVegetable, InStock: true})
	}
	rec := app.do(t, http.MethodPut, "/api/admin/v1/products", token, map[string]any{"products": batch})
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = app.do(t, http.MethodGet, "/api/admin/v1/products?limit=2", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var page struct {
		Items      []models.Product `json:"items"`
		NextCursor string           `json:"nextCursor"`
		Total      int              `json:"total"`
	}
	decodeData(t, rec, &page)
	require.Len(t, page.Items, 2)
	assert.Equal(t, 3, page.Total)
	require.NotEmpty(t, page.NextCursor)

	rec = app.do(t, http.MethodGet, "/api/admin/v1/products?limit=2&cursor="+page.NextCursor, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page.NextCursor = ""
	decodeData(t, rec, &page)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Papaya", page.Items[0].Name)
	assert.Empty(t, page.NextCursor)

	rec = app.do(t, http.MethodGet, "/api/admin/v1/products?cursor=%21%21", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = app.do(t, http.MethodGet, "/api/admin/v1/products?limit=500", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminLogoutRevokesToken(t *testing.T) {
	app := newTestApp(t, nil)
	token := app.login(t)

	rec := app.do(t, http.MethodPost, "/api/admin/v1/logout", token, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = app.do(t, http.MethodGet, "/api/admin/v1/customers", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDataProxyEndpoint(t *testing.T) {
	app := newTestApp(t, nil)

	rec := app.do(t, http.MethodPost, "/api/data-proxy", "", `{"action":"drop","table":"products"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Invalid action"}`, rec.Body.String())

	rec = app.do(t, http.MethodPost, "/api/data-proxy", "", `{"action":"add","table":"products","payload":{"id":5,"name":"Okra","price":70,"unit":"kg","category":"vegetable","inStock":true}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = app.do(t, http.MethodPost, "/api/data-proxy", "", `{"action":"getById","table":"products","id":5}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Result models.Product `json:"result"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Okra", resp.Result.Name)

	rec = app.do(t, http.MethodPost, "/api/data-proxy", "", `{"action":"getAll","table":"orders"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	app := newTestApp(t, nil)
	rec := app.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func jsonNumber(id int64) string {
	raw, _ := json.Marshal(id)
	return string(raw)
}
