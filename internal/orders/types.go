package orders

import (
	"fmt"
	"math/rand"
	"time"
)

// Status is the order lifecycle field the notification pipeline watches.
// The set is closed but transitions are not validated: the admin panel may
// move an order from any status to any other (including backwards).
type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusProcessing Status = "processing"
	StatusReady      Status = "ready"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// AllStatuses lists every valid order status.
var AllStatuses = []Status{
	StatusPending,
	StatusConfirmed,
	StatusProcessing,
	StatusReady,
	StatusShipped,
	StatusDelivered,
	StatusCancelled,
}

// Valid reports whether s is a member of the closed status set.
func (s Status) Valid() bool {
	for _, st := range AllStatuses {
		if s == st {
			return true
		}
	}
	return false
}

// Item is a single order line.
type Item struct {
	ProductName string  `dynamodbav:"product_name" json:"product_name"`
	Quantity    int     `dynamodbav:"quantity" json:"quantity"`
	UnitPrice   float64 `dynamodbav:"unit_price" json:"unit_price"`
	LineTotal   float64 `dynamodbav:"line_total" json:"line_total"`
}

// Order represents the item stored in the orders DynamoDB table.
type Order struct {
	OrderID         string    `dynamodbav:"order_id" json:"order_id"` // PK
	OrderNumber     string    `dynamodbav:"order_number" json:"order_number"`
	CustomerID      string    `dynamodbav:"customer_id,omitempty" json:"customer_id,omitempty"`
	Status          Status    `dynamodbav:"status" json:"status"`
	CustomerName    string    `dynamodbav:"customer_name,omitempty" json:"customer_name,omitempty"`
	CustomerPhone   string    `dynamodbav:"customer_phone,omitempty" json:"customer_phone,omitempty"`
	CustomerEmail   string    `dynamodbav:"customer_email,omitempty" json:"customer_email,omitempty"`
	DeliveryAddress string    `dynamodbav:"delivery_address,omitempty" json:"delivery_address,omitempty"`
	TotalAmount     float64   `dynamodbav:"total_amount" json:"total_amount"`
	Items           []Item    `dynamodbav:"items,omitempty" json:"items,omitempty"`
	Language        string    `dynamodbav:"language,omitempty" json:"language,omitempty"` // customer locale, e.g. "uz"
	CreatedAt       time.Time `dynamodbav:"created_at" json:"created_at"`
	UpdatedAt       time.Time `dynamodbav:"updated_at" json:"updated_at"`
}

// NewOrderNumber produces a human-readable order number like EURO-872475.
func NewOrderNumber() string {
	return fmt.Sprintf("EURO-%06d", rand.Intn(1000000))
}
