// Package pricing holds the cart arithmetic: per-line prices, subtotal,
// loyalty point redemption and accrual.
package pricing

import (
	"fmt"
	"time"

	"github.com/grameenmart/storefront/pkg/db/models"
	"github.com/grameenmart/storefront/pkg/enums"
	pkgerrors "github.com/grameenmart/storefront/pkg/errors"
	"github.com/shopspring/decimal"
)

const (
	// PointsStep is the redemption granularity; one point is worth ₹1.
	PointsStep = 50
	// PointsPerOrder is accrued on every settled order regardless of size.
	PointsPerOrder = 2
)

var gramsPerKg = decimal.NewFromFloat(0.001)

// EffectiveUnitPrice is the price of one add-action of the line. Piece lines
// cost the base price; weight and bunch lines cost price × actualQuantity,
// with grams converted to kilograms first.
func EffectiveUnitPrice(item models.CartItem) decimal.Decimal {
	price := decimal.NewFromFloat(item.Price)
	if item.SelectedUnit == enums.SelectedUnitPiece {
		return price
	}
	amount := decimal.NewFromFloat(item.ActualQuantity)
	if item.SelectedUnit == enums.SelectedUnitGram {
		amount = amount.Mul(gramsPerKg)
	}
	return price.Mul(amount)
}

func LineTotal(item models.CartItem) decimal.Decimal {
	return EffectiveUnitPrice(item).Mul(decimal.NewFromInt(int64(item.Quantity)))
}

func Subtotal(items []models.CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(LineTotal(item))
	}
	return total
}

// MaxRedeemable is the largest redeemable amount for a balance.
func MaxRedeemable(balance int) int {
	if balance <= 0 {
		return 0
	}
	return balance / PointsStep * PointsStep
}

// ValidateRedemption accepts non-negative multiples of PointsStep that do not
// exceed the balance.
func ValidateRedemption(points, balance int) error {
	switch {
	case points < 0:
		return pkgerrors.New(pkgerrors.CodeValidation, "points to redeem cannot be negative")
	case points > balance:
		return pkgerrors.New(pkgerrors.CodeValidation, "You don't have enough loyalty points to redeem").
			WithDetails(map[string]any{"balance": balance, "requested": points})
	case points%PointsStep != 0:
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("points must be redeemed in multiples of %d", PointsStep)).
			WithDetails(map[string]any{"max_redeemable": MaxRedeemable(balance), "requested": points})
	}
	return nil
}

func RedemptionValue(points int) decimal.Decimal {
	return decimal.NewFromInt(int64(points))
}

// Line is a priced cart line.
type Line struct {
	Item      models.CartItem
	UnitPrice decimal.Decimal
	Total     decimal.Decimal
}

// Quote is the priced cart for a given redemption.
type Quote struct {
	Lines          []Line
	Subtotal       decimal.Decimal
	Discount       decimal.Decimal
	Total          decimal.Decimal
	PointsRedeemed int
	PointsEarned   int
}

// NewQuote prices items and applies the redemption. It rejects redemptions
// that fail ValidateRedemption and those that would make the total negative.
func NewQuote(items []models.CartItem, pointsToRedeem, balance int) (Quote, error) {
	if err := ValidateRedemption(pointsToRedeem, balance); err != nil {
		return Quote{}, err
	}

	quote := Quote{
		Lines:          make([]Line, 0, len(items)),
		Subtotal:       decimal.Zero,
		PointsRedeemed: pointsToRedeem,
		PointsEarned:   PointsPerOrder,
	}
	for _, item := range items {
		line := Line{Item: item, UnitPrice: EffectiveUnitPrice(item), Total: LineTotal(item)}
		quote.Lines = append(quote.Lines, line)
		quote.Subtotal = quote.Subtotal.Add(line.Total)
	}
	quote.Discount = RedemptionValue(pointsToRedeem)
	quote.Total = quote.Subtotal.Sub(quote.Discount)
	if quote.Total.IsNegative() {
		return Quote{}, pkgerrors.New(pkgerrors.CodeValidation, "points discount exceeds the order subtotal").
			WithDetails(map[string]any{"subtotal": quote.Subtotal.StringFixed(2), "discount": quote.Discount.StringFixed(2)})
	}
	return quote, nil
}

// Settle returns the customer after an order: points redeemed are taken,
// PointsPerOrder are added, the order is counted and stamped.
func Settle(customer models.Customer, pointsRedeemed int, now time.Time) models.Customer {
	at := now
	customer.LoyaltyPoints = customer.LoyaltyPoints - pointsRedeemed + PointsPerOrder
	customer.OrderCount++
	customer.LastOrderAt = &at
	return customer
}

// Money renders an amount with two decimals, as shown on receipts.
func Money(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}

// Float rounds an amount to paise for JSON responses.
func Float(amount decimal.Decimal) float64 {
	return amount.Round(2).InexactFloat64()
}
