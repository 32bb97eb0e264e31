package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/grameenmart/storefront/internal/cart"
	"github.com/grameenmart/storefront/internal/pricing"
	checkoutrules "github.com/grameenmart/storefront/pkg/checkout"
	"github.com/grameenmart/storefront/pkg/db/models"
	pkgerrors "github.com/grameenmart/storefront/pkg/errors"
	"github.com/grameenmart/storefront/pkg/logger"
	"github.com/grameenmart/storefront/pkg/metrics"
)

type cartService interface {
	Get(ctx context.Context, sessionID string) (*cart.Cart, error)
	Clear(ctx context.Context, sessionID string) error
}

type customerBinding interface {
	Find(ctx context.Context, mobile string) (*models.Customer, error)
	Add(ctx context.Context, customer models.Customer) error
	Remove(ctx context.Context, mobile string) error
}

// Service prices carts and settles orders.
type Service interface {
	Quote(ctx context.Context, sessionID, mobile string, pointsToRedeem int) (*QuoteResult, error)
	Checkout(ctx context.Context, input Input) (*Result, error)
}

// Input is a checkout request for one cart session.
type Input struct {
	SessionID      string
	Customer       checkoutrules.CustomerDetails
	PointsToRedeem int
}

// QuoteResult is a priced cart plus the points the shopper could redeem.
type QuoteResult struct {
	Cart          *cart.Cart
	Quote         pricing.Quote
	PointsBalance int
	MaxRedeemable int
}

// Result is a settled order ready to be handed to WhatsApp.
type Result struct {
	Customer    models.Customer
	Quote       pricing.Quote
	Message     string
	WhatsAppURL string
}

type service struct {
	carts     cartService
	customers customerBinding
	shop      Storefront
	logg      *logger.Logger
	metrics   *metrics.OrderMetrics
	now       func() time.Time
}

// Option configures optional service behavior.
type Option func(*service)

// WithClock overrides the time source used to stamp orders.
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

func WithMetrics(m *metrics.OrderMetrics) Option {
	return func(s *service) { s.metrics = m }
}

func NewService(carts cartService, customers customerBinding, shop Storefront, logg *logger.Logger, opts ...Option) (Service, error) {
	if carts == nil {
		return nil, fmt.Errorf("cart service required")
	}
	if customers == nil {
		return nil, fmt.Errorf("customer binding required")
	}
	if shop.WhatsAppNumber == "" {
		return nil, fmt.Errorf("whatsapp number required")
	}
	svc := &service{
		carts:     carts,
		customers: customers,
		shop:      shop,
		logg:      logg,
		now:       time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc, nil
}

func (s *service) Quote(ctx context.Context, sessionID, mobile string, pointsToRedeem int) (*QuoteResult, error) {
	current, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	balance := 0
	if checkoutrules.ValidMobile(mobile) {
		existing, err := s.customers.Find(ctx, mobile)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			balance = existing.LoyaltyPoints
		}
	}
	quote, err := pricing.NewQuote(current.Items, pointsToRedeem, balance)
	if err != nil {
		return nil, err
	}
	return &QuoteResult{
		Cart:          current,
		Quote:         quote,
		PointsBalance: balance,
		MaxRedeemable: pricing.MaxRedeemable(balance),
	}, nil
}

// Checkout validates the order, replaces every record for the mobile with
// one settled customer, then clears the cart. The writes are independent: a
// failed cart clear does not undo the settlement.
func (s *service) Checkout(ctx context.Context, input Input) (*Result, error) {
	details := input.Customer.Normalize()
	if err := checkoutrules.ValidateCustomerDetails(details); err != nil {
		s.metrics.IncRejected("customer_details")
		return nil, err
	}

	current, err := s.carts.Get(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}
	if current.IsEmpty() {
		s.metrics.IncRejected("empty_cart")
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Please add items to cart before placing order")
	}

	existing, err := s.customers.Find(ctx, details.Mobile)
	if err != nil {
		return nil, err
	}
	customer := models.Customer{Mobile: details.Mobile}
	if existing != nil {
		customer = *existing
	}
	balance := customer.LoyaltyPoints

	quote, err := pricing.NewQuote(current.Items, input.PointsToRedeem, balance)
	if err != nil {
		s.metrics.IncRejected("points")
		return nil, err
	}

	now := s.now().UTC()
	customer.Name = details.Name
	customer.Place = details.Place
	customer.Landmark = details.Landmark
	settled := pricing.Settle(customer, input.PointsToRedeem, now)

	if existing != nil {
		if err := s.customers.Remove(ctx, details.Mobile); err != nil {
			return nil, err
		}
	}
	if err := s.customers.Add(ctx, settled); err != nil {
		return nil, err
	}

	if err := s.carts.Clear(ctx, input.SessionID); err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithSessionID(ctx, input.SessionID), "order settled but cart was not cleared: "+err.Error())
	}
	s.metrics.IncPlaced(input.PointsToRedeem)

	message := BuildMessage(s.shop, details, balance, quote)
	return &Result{
		Customer:    settled,
		Quote:       quote,
		Message:     message,
		WhatsAppURL: WhatsAppURL(s.shop.WhatsAppNumber, message),
	}, nil
}
