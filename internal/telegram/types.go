package telegram

// RelayProduct is one itemized line in the relay payload.
type RelayProduct struct {
	Name     string  `json:"name" validate:"required"`
	Quantity int     `json:"quantity" validate:"required,min=1"`
	Price    float64 `json:"price" validate:"required,gt=0"`
	Total    float64 `json:"total,omitempty"`
}

// RelayPayload is the structured notification accepted by the Telegram relay
// function. The client dispatcher builds the same shape when it forwards a
// transition to the relay.
type RelayPayload struct {
	ChatID          int64          `json:"chat_id" validate:"required"`
	OrderNumber     string         `json:"order_number" validate:"required"`
	CustomerName    string         `json:"customer_name,omitempty"`
	CustomerPhone   string         `json:"customer_phone,omitempty"`
	Status          string         `json:"status" validate:"required"`
	Title           string         `json:"title,omitempty"`
	Message         string         `json:"message" validate:"required"`
	TotalAmount     float64        `json:"total_amount,omitempty"`
	DeliveryAddress string         `json:"delivery_address,omitempty"`
	Products        []RelayProduct `json:"products,omitempty" validate:"omitempty,dive"`
	Language        string         `json:"language,omitempty"`
}

// InlineKeyboardButton is one deep-link button under the message.
type InlineKeyboardButton struct {
	Text string `json:"text"`
	URL  string `json:"url"`
}

// InlineKeyboardMarkup is the Bot API reply_markup shape.
type InlineKeyboardMarkup struct {
	InlineKeyboard [][]InlineKeyboardButton `json:"inline_keyboard"`
}

type sendMessageRequest struct {
	ChatID      int64                 `json:"chat_id"`
	Text        string                `json:"text"`
	ParseMode   string                `json:"parse_mode,omitempty"`
	ReplyMarkup *InlineKeyboardMarkup `json:"reply_markup,omitempty"`
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description,omitempty"`
	ErrorCode   int    `json:"error_code,omitempty"`
	Result      struct {
		MessageID int64 `json:"message_id"`
	} `json:"result"`
}
