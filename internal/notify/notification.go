package notify

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/euromart/storefront-notify/internal/orders"
	"github.com/euromart/storefront-notify/internal/transition"
)

// Notification is the transient tuple built from one detected status
// transition. It is constructed by Build, consumed immediately by the
// dispatcher and optionally persisted as a delivery audit record.
type Notification struct {
	ID    string
	Order orders.Order // new row image
	From  orders.Status
	To    orders.Status
	Title string
	Body  string
	// Tag is order-<orderNumber>; repeat notifications for the same order
	// replace rather than stack wherever the channel supports tags.
	Tag string
}

// Job is the payload carried from the feed worker through SQS to the
// notifier.
type Job struct {
	Order         orders.Order  `json:"order"`
	From          orders.Status `json:"from"`
	To            orders.Status `json:"to"`
	CorrelationID string        `json:"correlation_id,omitempty"`
}

// Build renders a Notification for a transition on an order, localized to
// the order's language with the Uzbek fallback.
func Build(order orders.Order, tr transition.Transition) *Notification {
	text := TextFor(tr.To, order.Language, order.OrderNumber)
	return &Notification{
		ID:    uuid.NewString(),
		Order: order,
		From:  tr.From,
		To:    tr.To,
		Title: text.Title,
		Body:  text.Body,
		Tag:   fmt.Sprintf("order-%s", order.OrderNumber),
	}
}

// DedupKey identifies a (order, new status) pair for the guard.
func (n *Notification) DedupKey() string {
	return fmt.Sprintf("%s:%s", n.Order.OrderID, n.To)
}
