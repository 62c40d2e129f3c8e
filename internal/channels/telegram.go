package channels

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/euromart/storefront-notify/internal/notify"
	"github.com/euromart/storefront-notify/internal/subscriptions"
	"github.com/euromart/storefront-notify/internal/telegram"
)

// Telegram forwards notifications to the Telegram relay function. The chat
// id is resolved from the customer's phone number; an unlinked phone is a
// silent skip.
type Telegram struct {
	subs     *subscriptions.Store
	relayURL string
	httpc    *http.Client
}

// NewTelegram builds the Telegram channel against a relay URL.
func NewTelegram(subs *subscriptions.Store, relayURL string) *Telegram {
	return &Telegram{
		subs:     subs,
		relayURL: relayURL,
		httpc:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Telegram) Name() string { return "telegram" }

// Send implements notify.Channel. One attempt, no retry.
func (c *Telegram) Send(ctx context.Context, n *notify.Notification) error {
	if n.Order.CustomerPhone == "" {
		return fmt.Errorf("order %s has no customer phone: %w", n.Order.OrderID, notify.ErrSkip)
	}
	tgUser, err := c.subs.GetTelegramByPhone(ctx, n.Order.CustomerPhone)
	if err != nil {
		return fmt.Errorf("telegram chat lookup: %w", err)
	}
	if tgUser == nil {
		return fmt.Errorf("no telegram chat linked for phone %s: %w", n.Order.CustomerPhone, notify.ErrSkip)
	}

	products := make([]telegram.RelayProduct, 0, len(n.Order.Items))
	for _, it := range n.Order.Items {
		products = append(products, telegram.RelayProduct{
			Name:     it.ProductName,
			Quantity: it.Quantity,
			Price:    it.UnitPrice,
			Total:    it.LineTotal,
		})
	}

	language := tgUser.Language
	if language == "" {
		language = n.Order.Language
	}

	payload := telegram.RelayPayload{
		ChatID:          tgUser.ChatID,
		OrderNumber:     n.Order.OrderNumber,
		CustomerName:    n.Order.CustomerName,
		CustomerPhone:   n.Order.CustomerPhone,
		Status:          string(n.To),
		Title:           n.Title,
		Message:         n.Body,
		TotalAmount:     n.Order.TotalAmount,
		DeliveryAddress: n.Order.DeliveryAddress,
		Products:        products,
		Language:        language,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal relay payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.relayURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build relay request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("call telegram relay: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("telegram relay status %d: %s", resp.StatusCode, respBody)
	}
	return nil
}
