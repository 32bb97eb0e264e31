package checkout

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/grameenmart/storefront/internal/pricing"
	checkoutrules "github.com/grameenmart/storefront/pkg/checkout"
)

const whatsAppBaseURL = "https://wa.me/"

// Storefront carries the shop identity printed on order messages.
type Storefront struct {
	Name           string
	WhatsAppNumber string
	DeliveryNote   string
}

// BuildMessage renders the human readable order summary sent over WhatsApp.
// pointsBalance is the balance before the order settles.
func BuildMessage(shop Storefront, customer checkoutrules.CustomerDetails, pointsBalance int, quote pricing.Quote) string {
	lines := make([]string, 0, len(quote.Lines))
	for _, line := range quote.Lines {
		lines = append(lines, fmt.Sprintf("%s (%s) - %d x %s%s @ ₹%s = ₹%s",
			line.Item.Name,
			line.Item.MalayalamName,
			line.Item.Quantity,
			strconv.FormatFloat(line.Item.ActualQuantity, 'f', -1, 64),
			line.Item.SelectedUnit,
			pricing.Money(line.UnitPrice),
			pricing.Money(line.Total),
		))
	}

	discount := ""
	if quote.Discount.IsPositive() {
		discount = "Points Discount: -₹" + pricing.Money(quote.Discount)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🛒 *%s Order*\n\n", shop.Name)
	b.WriteString("👤 *Customer Details:*\n")
	fmt.Fprintf(&b, "Name: %s\nMobile: %s\nPlace: %s\nLandmark: %s\nLoyalty Points: %d\n\n",
		customer.Name, customer.Mobile, customer.Place, customer.Landmark, pointsBalance)
	b.WriteString("📦 *Order Details:*\n")
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString("\n\n💰 *Bill Summary:*\n")
	fmt.Fprintf(&b, "Subtotal: ₹%s\n%s\n*Total Amount: ₹%s*\n\n", pricing.Money(quote.Subtotal), discount, pricing.Money(quote.Total))
	fmt.Fprintf(&b, "🎁 *Points Earned: +%d points*\n", quote.PointsEarned)
	fmt.Fprintf(&b, "🚚 *Delivery Time: %s*\n\n", shop.DeliveryNote)
	fmt.Fprintf(&b, "Thank you for choosing %s! 🌿", shop.Name)
	return b.String()
}

// WhatsAppURL builds the wa.me deep link carrying message.
func WhatsAppURL(number, message string) string {
	return whatsAppBaseURL + number + "?text=" + encodeComponent(message)
}

// encodeComponent escapes like a URI component: spaces become %20, not +.
func encodeComponent(value string) string {
	return strings.ReplaceAll(url.QueryEscape(value), "+", "%20")
}
