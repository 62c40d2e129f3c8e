package telegram

import (
	"fmt"
	"strings"
	"time"

	"github.com/euromart/storefront-notify/internal/notify"
	"github.com/euromart/storefront-notify/internal/orders"
)

// ShopName heads every receipt message.
const ShopName = "EuroMart"

// BuildReceipt renders the receipt-style Telegram message for a status
// notification: shop header, customer, order number, timestamp, itemized
// products, delivery address, total, and the status line with its
// description sentence from the shared text table.
func BuildReceipt(p RelayPayload, now time.Time) string {
	text := notify.TextFor(orders.Status(p.Status), p.Language, p.OrderNumber)

	var b strings.Builder
	fmt.Fprintf(&b, "🧾 <b>%s</b>\n", ShopName)
	b.WriteString("━━━━━━━━━━━━━━━\n")
	if p.CustomerName != "" || p.CustomerPhone != "" {
		fmt.Fprintf(&b, "👤 %s", p.CustomerName)
		if p.CustomerPhone != "" {
			fmt.Fprintf(&b, " (%s)", p.CustomerPhone)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "📦 Buyurtma: <b>%s</b>\n", p.OrderNumber)
	fmt.Fprintf(&b, "🕒 %s\n", now.Format("02.01.2006 15:04"))

	if len(p.Products) > 0 {
		b.WriteString("\n🛒 Mahsulotlar:\n")
		for _, pr := range p.Products {
			lineTotal := pr.Total
			if lineTotal == 0 {
				lineTotal = float64(pr.Quantity) * pr.Price
			}
			fmt.Fprintf(&b, "  • %s x%d — %s = %s\n",
				pr.Name, pr.Quantity, formatAmount(pr.Price), formatAmount(lineTotal))
		}
	}

	if p.DeliveryAddress != "" {
		fmt.Fprintf(&b, "\n📍 Manzil: %s\n", p.DeliveryAddress)
	}
	if p.TotalAmount > 0 {
		fmt.Fprintf(&b, "💰 Jami: %s\n", formatAmount(p.TotalAmount))
	}

	fmt.Fprintf(&b, "\n📣 <b>%s</b> — %s", text.Label, text.Description)
	if p.Message != "" {
		fmt.Fprintf(&b, "\n%s", p.Message)
	}
	return b.String()
}

// BuildKeyboard returns the two deep-link buttons shown under every receipt.
func BuildKeyboard(storefrontURL string) *InlineKeyboardMarkup {
	base := strings.TrimRight(storefrontURL, "/")
	return &InlineKeyboardMarkup{
		InlineKeyboard: [][]InlineKeyboardButton{
			{
				{Text: "🛍 Mening buyurtmalarim", URL: base + "/orders"},
				{Text: "🏠 Bosh sahifa", URL: base + "/"},
			},
		},
	}
}

// formatAmount renders sums in so'm without decimals for whole values.
func formatAmount(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d so'm", int64(v))
	}
	return fmt.Sprintf("%.2f so'm", v)
}
