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
)

// PushRequest is the payload posted to the push relay function.
type PushRequest struct {
	UserID string                 `json:"user_id" validate:"required"`
	Title  string                 `json:"title" validate:"required"`
	Body   string                 `json:"body" validate:"required"`
	Data   map[string]interface{} `json:"data,omitempty"`
}

// Push forwards notifications to the hosted push relay. A user without a
// registered subscription is a silent skip, not an error.
type Push struct {
	subs     *subscriptions.Store
	relayURL string
	httpc    *http.Client
}

// NewPush builds the push channel against a relay URL.
func NewPush(subs *subscriptions.Store, relayURL string) *Push {
	return &Push{
		subs:     subs,
		relayURL: relayURL,
		httpc:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Push) Name() string { return "push" }

// Send implements notify.Channel. One attempt, no retry.
func (c *Push) Send(ctx context.Context, n *notify.Notification) error {
	sub, err := c.subs.GetPush(ctx, n.Order.CustomerID)
	if err != nil {
		return fmt.Errorf("subscription lookup: %w", err)
	}
	if sub == nil {
		return fmt.Errorf("no push subscription for user %s: %w", n.Order.CustomerID, notify.ErrSkip)
	}

	body, err := json.Marshal(PushRequest{
		UserID: n.Order.CustomerID,
		Title:  n.Title,
		Body:   n.Body,
		Data: map[string]interface{}{
			"tag":          n.Tag,
			"order_id":     n.Order.OrderID,
			"order_number": n.Order.OrderNumber,
			"status":       string(n.To),
		},
	})
	if err != nil {
		return fmt.Errorf("marshal push request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.relayURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("call push relay: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("push relay status %d: %s", resp.StatusCode, respBody)
	}
	return nil
}
