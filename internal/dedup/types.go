package dedup

import (
	"time"

	"github.com/euromart/storefront-notify/internal/orders"
)

// Delivery states for notification delivery records.
const (
	StatusInProgress = "IN_PROGRESS"
	StatusDone       = "DONE"
	StatusFailed     = "FAILED"
)

// DeliveryRecord is the shape persisted in the notification_deliveries
// DynamoDB table. It is both the cross-process de-dup key for one
// (order, new status) pair and the audit trail of which channels succeeded.
type DeliveryRecord struct {
	DedupKey    string            `dynamodbav:"dedup_key"` // PK: <order_id>:<new_status>
	Status      string            `dynamodbav:"status"`
	OrderID     string            `dynamodbav:"order_id"`
	OrderNumber string            `dynamodbav:"order_number,omitempty"`
	NewStatus   orders.Status     `dynamodbav:"new_status"`
	Channels    map[string]string `dynamodbav:"channels,omitempty"` // channel -> delivered|skipped|failed
	CreatedAt   time.Time         `dynamodbav:"created_at"`
	UpdatedAt   time.Time         `dynamodbav:"updated_at"`
	ExpiresAt   int64             `dynamodbav:"expires_at"` // TTL epoch seconds
	Note        string            `dynamodbav:"note,omitempty"`

	// Replay fields for request idempotency (order creation): the stored
	// response is returned verbatim to duplicate requests.
	ResponseBody   string `dynamodbav:"response_body,omitempty"`
	ResponseStatus int    `dynamodbav:"response_status,omitempty"`
}

// Key builds the dedup key for an order id and its new status.
func Key(orderID string, status orders.Status) string {
	return orderID + ":" + string(status)
}
