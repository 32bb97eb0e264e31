package checkout

import (
	"context"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/grameenmart/storefront/internal/binding"
	"github.com/grameenmart/storefront/internal/cart"
	"github.com/grameenmart/storefront/internal/dataclient/localstore"
	checkoutrules "github.com/grameenmart/storefront/pkg/checkout"
	"github.com/grameenmart/storefront/pkg/db/models"
	"github.com/grameenmart/storefront/pkg/enums"
	pkgerrors "github.com/grameenmart/storefront/pkg/errors"
	"github.com/grameenmart/storefront/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProducts map[int64]models.Product

func (s stubProducts) Find(_ context.Context, id int64) (*models.Product, error) {
	product, ok := s[id]
	if !ok {
		return nil, nil
	}
	return &product, nil
}

type fixture struct {
	svc       Service
	carts     cart.Service
	customers *binding.Customers
	now       time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	blobs, err := storage.OpenBolt(ctx, filepath.Join(t.TempDir(), "store.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = blobs.Close() })

	now := time.Date(2026, 6, 1, 8, 30, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	carts, err := cart.NewService(cart.NewStore(blobs, time.Hour, clock), stubProducts{
		1: {ID: 1, Name: "Tomato", MalayalamName: "തക്കാളി", Price: 100, Unit: enums.ProductUnitKg, InStock: true},
		2: {ID: 2, Name: "Banana", MalayalamName: "പഴം", Price: 10, Unit: enums.ProductUnitPiece, InStock: true},
	})
	require.NoError(t, err)

	customers, err := binding.NewCustomers(localstore.NewCustomers(blobs, localstore.WithClock(clock)))
	require.NoError(t, err)

	svc, err := NewService(carts, customers, Storefront{
		Name:           "Grameen Mart",
		WhatsAppNumber: "919744083698",
		DeliveryNote:   "Within 15 minutes",
	}, nil, WithClock(clock))
	require.NoError(t, err)

	return &fixture{svc: svc, carts: carts, customers: customers, now: now}
}

func (f *fixture) fillCart(t *testing.T, session string) {
	t.Helper()
	ctx := context.Background()
	_, err := f.carts.AddItem(ctx, session, cart.AddItemInput{ProductID: 1, SelectedUnit: enums.SelectedUnitGram, Quantity: 250})
	require.NoError(t, err)
	_, err = f.carts.AddItem(ctx, session, cart.AddItemInput{ProductID: 1, SelectedUnit: enums.SelectedUnitGram, Quantity: 250})
	require.NoError(t, err)
	_, err = f.carts.AddItem(ctx, session, cart.AddItemInput{ProductID: 2, Quantity: 1})
	require.NoError(t, err)
}

var anu = checkoutrules.CustomerDetails{Name: "Anu", Mobile: "9876543210", Place: "Thrissur", Landmark: "Near temple"}

func TestCheckoutNewCustomerEarnsPoints(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.fillCart(t, "s1")

	result, err := f.svc.Checkout(ctx, Input{SessionID: "s1", Customer: anu})
	require.NoError(t, err)

	// the gram line holds 500g after two adds: 50 per add, 2 adds
	assert.Equal(t, "110.00", result.Quote.Total.StringFixed(2))
	assert.Equal(t, 2, result.Customer.LoyaltyPoints)
	assert.Equal(t, 1, result.Customer.OrderCount)

	saved, err := f.customers.Find(ctx, anu.Mobile)
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, 2, saved.LoyaltyPoints)
	require.NotNil(t, saved.LastOrderAt)
	assert.True(t, saved.LastOrderAt.Equal(f.now))
	require.NotNil(t, saved.CreatedAt)

	current, err := f.carts.Get(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, current.IsEmpty())

	assert.True(t, strings.HasPrefix(result.WhatsAppURL, "https://wa.me/919744083698?text="))
	decoded, err := url.QueryUnescape(strings.TrimPrefix(result.WhatsAppURL, "https://wa.me/919744083698?text="))
	require.NoError(t, err)
	assert.Equal(t, result.Message, decoded)
	assert.Contains(t, result.Message, "Tomato (തക്കാളി) - 2 x 500gram @ ₹50.00 = ₹100.00")
	assert.Contains(t, result.Message, "Banana (പഴം) - 1 x 1piece @ ₹10.00 = ₹10.00")
	assert.Contains(t, result.Message, "*Total Amount: ₹110.00*")
	assert.Contains(t, result.Message, "Delivery Time: Within 15 minutes")
	assert.NotContains(t, result.Message, "Points Discount")
	assert.NotContains(t, result.WhatsAppURL, "+")
}

func TestCheckoutExistingCustomerRedeemsPoints(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.customers.Add(ctx, models.Customer{Mobile: anu.Mobile, Name: "Anu", Place: "Old place", LoyaltyPoints: 120, OrderCount: 7}))

	for i := 0; i < 2; i++ {
		_, err := f.carts.AddItem(ctx, "s2", cart.AddItemInput{ProductID: 1, Quantity: 1})
		require.NoError(t, err)
	}

	_, err := f.svc.Checkout(ctx, Input{SessionID: "s2", Customer: anu, PointsToRedeem: 110})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	result, err := f.svc.Checkout(ctx, Input{SessionID: "s2", Customer: anu, PointsToRedeem: 100})
	require.NoError(t, err)
	assert.Equal(t, 22, result.Customer.LoyaltyPoints)
	assert.Equal(t, 8, result.Customer.OrderCount)
	assert.Contains(t, result.Message, "Loyalty Points: 120")
	assert.Contains(t, result.Message, "Points Discount: -₹100.00")

	all, err := f.customers.Items(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Thrissur", all[0].Place)
	assert.Equal(t, 22, all[0].LoyaltyPoints)
}

func TestCheckoutValidationHappensBeforeAnyWrite(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Checkout(ctx, Input{SessionID: "s3", Customer: checkoutrules.CustomerDetails{Mobile: "9876543210"}})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = f.svc.Checkout(ctx, Input{SessionID: "s3", Customer: anu})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Please add items to cart")

	f.fillCart(t, "s3")
	_, err = f.svc.Checkout(ctx, Input{SessionID: "s3", Customer: anu, PointsToRedeem: 50})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	all, err := f.customers.Items(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestQuoteUsesSavedBalance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.customers.Add(ctx, models.Customer{Mobile: anu.Mobile, Name: "Anu", LoyaltyPoints: 75}))
	f.fillCart(t, "s4")

	quote, err := f.svc.Quote(ctx, "s4", anu.Mobile, 50)
	require.NoError(t, err)
	assert.Equal(t, 75, quote.PointsBalance)
	assert.Equal(t, 50, quote.MaxRedeemable)
	assert.Equal(t, "60.00", quote.Quote.Total.StringFixed(2))
}

func TestCheckoutCollapsesDuplicateProfiles(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.customers.Add(ctx, models.Customer{Mobile: anu.Mobile, Name: "Anu", LoyaltyPoints: 10, OrderCount: 1}))
	require.NoError(t, f.customers.Add(ctx, models.Customer{Mobile: anu.Mobile, Name: "Anu dup", LoyaltyPoints: 300}))
	require.NoError(t, f.customers.Add(ctx, models.Customer{Mobile: "9123456780", Name: "Biju", LoyaltyPoints: 4}))
	f.fillCart(t, "s5")

	result, err := f.svc.Checkout(ctx, Input{SessionID: "s5", Customer: anu})
	require.NoError(t, err)
	assert.Equal(t, 12, result.Customer.LoyaltyPoints)
	assert.Equal(t, 2, result.Customer.OrderCount)

	all, err := f.customers.Items(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)

	var matches []models.Customer
	for _, c := range all {
		if c.Mobile == anu.Mobile {
			matches = append(matches, c)
		}
	}
	require.Len(t, matches, 1)
	assert.Equal(t, "Anu", matches[0].Name)
	assert.Equal(t, "Thrissur", matches[0].Place)
	assert.Equal(t, 12, matches[0].LoyaltyPoints)
}
