package controllers

import (
	"time"

	"github.com/grameenmart/storefront/internal/cart"
	"github.com/grameenmart/storefront/internal/checkout"
	"github.com/grameenmart/storefront/internal/pricing"
	"github.com/grameenmart/storefront/pkg/db/models"
	"github.com/grameenmart/storefront/pkg/enums"
)

type createCartResponse struct {
	SessionID string `json:"sessionId"`
}

type addCartItemRequest struct {
	ProductID      int64              `json:"productId" validate:"required,gt=0"`
	SelectedUnit   enums.SelectedUnit `json:"selectedUnit" validate:"omitempty,oneof=gram kg piece bunch"`
	ActualQuantity float64            `json:"actualQuantity" validate:"gte=0"`
}

type checkoutRequest struct {
	Name           string `json:"name"`
	Mobile         string `json:"mobile"`
	Place          string `json:"place"`
	Landmark       string `json:"landmark"`
	PointsToRedeem int    `json:"pointsToRedeem" validate:"gte=0"`
}

type quoteLineResponse struct {
	ProductID      int64              `json:"productId"`
	Name           string             `json:"name"`
	MalayalamName  string             `json:"malayalamName"`
	Unit           enums.ProductUnit  `json:"unit"`
	SelectedUnit   enums.SelectedUnit `json:"selectedUnit"`
	Quantity       int                `json:"quantity"`
	ActualQuantity float64            `json:"actualQuantity"`
	Price          float64            `json:"price"`
	UnitPrice      float64            `json:"unitPrice"`
	Total          float64            `json:"total"`
}

type quoteResponse struct {
	SessionID      string              `json:"sessionId,omitempty"`
	Items          []quoteLineResponse `json:"items"`
	ItemCount      int                 `json:"itemCount"`
	Subtotal       float64             `json:"subtotal"`
	Discount       float64             `json:"discount"`
	Total          float64             `json:"total"`
	PointsRedeemed int                 `json:"pointsRedeemed"`
	PointsEarned   int                 `json:"pointsEarned"`
	PointsBalance  int                 `json:"pointsBalance"`
	MaxRedeemable  int                 `json:"maxRedeemable"`
	ExpiresAt      *time.Time          `json:"expiresAt,omitempty"`
}

type checkoutResponse struct {
	Customer    models.Customer `json:"customer"`
	Order       quoteResponse   `json:"order"`
	Message     string          `json:"message"`
	WhatsAppURL string          `json:"whatsappUrl"`
}

func newQuoteLines(q pricing.Quote) []quoteLineResponse {
	lines := make([]quoteLineResponse, 0, len(q.Lines))
	for _, line := range q.Lines {
		lines = append(lines, quoteLineResponse{
			ProductID:      line.Item.ID,
			Name:           line.Item.Name,
			MalayalamName:  line.Item.MalayalamName,
			Unit:           line.Item.Unit,
			SelectedUnit:   line.Item.SelectedUnit,
			Quantity:       line.Item.Quantity,
			ActualQuantity: line.Item.ActualQuantity,
			Price:          line.Item.Price,
			UnitPrice:      pricing.Float(line.UnitPrice),
			Total:          pricing.Float(line.Total),
		})
	}
	return lines
}

func newQuoteResponse(result *checkout.QuoteResult) quoteResponse {
	resp := quoteResponse{
		Items:          newQuoteLines(result.Quote),
		Subtotal:       pricing.Float(result.Quote.Subtotal),
		Discount:       pricing.Float(result.Quote.Discount),
		Total:          pricing.Float(result.Quote.Total),
		PointsRedeemed: result.Quote.PointsRedeemed,
		PointsEarned:   result.Quote.PointsEarned,
		PointsBalance:  result.PointsBalance,
		MaxRedeemable:  result.MaxRedeemable,
	}
	if result.Cart != nil {
		resp.SessionID = result.Cart.SessionID
		resp.ItemCount = result.Cart.Count()
		if !result.Cart.ExpiresAt.IsZero() {
			expires := result.Cart.ExpiresAt
			resp.ExpiresAt = &expires
		}
	}
	return resp
}

func newCartResponse(c *cart.Cart) quoteResponse {
	items := []models.CartItem{}
	if c != nil {
		items = c.Items
	}
	// an unredeemed quote cannot fail
	quote, _ := pricing.NewQuote(items, 0, 0)
	return newQuoteResponse(&checkout.QuoteResult{Cart: c, Quote: quote})
}

func newCheckoutResponse(result *checkout.Result) checkoutResponse {
	order := quoteResponse{
		Items:          newQuoteLines(result.Quote),
		Subtotal:       pricing.Float(result.Quote.Subtotal),
		Discount:       pricing.Float(result.Quote.Discount),
		Total:          pricing.Float(result.Quote.Total),
		PointsRedeemed: result.Quote.PointsRedeemed,
		PointsEarned:   result.Quote.PointsEarned,
		PointsBalance:  result.Customer.LoyaltyPoints,
	}
	for _, line := range result.Quote.Lines {
		order.ItemCount += line.Item.Quantity
	}
	return checkoutResponse{
		Customer:    result.Customer,
		Order:       order,
		Message:     result.Message,
		WhatsAppURL: result.WhatsAppURL,
	}
}
