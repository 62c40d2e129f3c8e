package validation

// OrderItem is a single line item in an order creation request.
type OrderItem struct {
	ProductName string  `json:"product_name" validate:"required"`
	Quantity    int     `json:"quantity" validate:"required,min=1"`  // must be >= 1
	UnitPrice   float64 `json:"unit_price" validate:"required,gt=0"` // price per unit
}

// CreateOrderRequest is the payload for POST /orders.
type CreateOrderRequest struct {
	CustomerID      string      `json:"customer_id" validate:"required"`
	CustomerName    string      `json:"customer_name" validate:"required"`
	CustomerPhone   string      `json:"customer_phone" validate:"required"`
	CustomerEmail   string      `json:"customer_email,omitempty" validate:"omitempty,email"`
	DeliveryAddress string      `json:"delivery_address,omitempty"`
	Items           []OrderItem `json:"items" validate:"required,min=1,dive"`
	TotalAmount     float64     `json:"total_amount" validate:"required,gt=0"`
	Language        string      `json:"language,omitempty" validate:"omitempty,oneof=uz ru en"`
}

// UpdateStatusRequest is the payload for PATCH /orders/:id/status. The
// status set is closed but transitions are not: any status may follow any
// other.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending confirmed processing ready shipped delivered cancelled"`
}

// SubscriptionKeys carries the browser push encryption keys.
type SubscriptionKeys struct {
	P256dh string `json:"p256dh" validate:"required"`
	Auth   string `json:"auth" validate:"required"`
}

// RegisterSubscriptionRequest is the payload for POST /push/subscriptions.
type RegisterSubscriptionRequest struct {
	UserID   string           `json:"user_id" validate:"required"`
	Endpoint string           `json:"endpoint" validate:"required,url"`
	Keys     SubscriptionKeys `json:"keys" validate:"required"`
	Granted  bool             `json:"granted"`
}

// LinkTelegramRequest is the payload for POST /telegram/links.
type LinkTelegramRequest struct {
	ChatID      int64  `json:"chat_id" validate:"required"`
	UserID      string `json:"user_id,omitempty"`
	Phone       string `json:"phone" validate:"required"`
	DisplayName string `json:"display_name,omitempty"`
	Language    string `json:"language,omitempty" validate:"omitempty,oneof=uz ru en"`
}
