package subscriptions

import "time"

// SubscriptionKeys are the browser-generated encryption keys for one push
// endpoint.
type SubscriptionKeys struct {
	P256dh string `dynamodbav:"p256dh" json:"p256dh"`
	Auth   string `dynamodbav:"auth" json:"auth"`
}

// PushSubscription is one user's push endpoint. The table is keyed by
// user_id alone: re-registration overwrites the row, so each user has at
// most one live subscription (multi-device push is not supported by this
// model).
type PushSubscription struct {
	UserID    string           `dynamodbav:"user_id" json:"user_id"` // PK
	Endpoint  string           `dynamodbav:"endpoint" json:"endpoint"`
	Keys      SubscriptionKeys `dynamodbav:"keys" json:"keys"`
	Granted   bool             `dynamodbav:"granted" json:"granted"` // notification permission state
	CreatedAt time.Time        `dynamodbav:"created_at" json:"created_at"`
}

// TelegramUser links a Telegram chat to a storefront customer. Created on
// first bot interaction, updated on language change.
type TelegramUser struct {
	ChatID            int64     `dynamodbav:"chat_id" json:"chat_id"` // PK
	UserID            string    `dynamodbav:"user_id,omitempty" json:"user_id,omitempty"`
	Phone             string    `dynamodbav:"phone" json:"phone"` // GSI phone-index
	DisplayName       string    `dynamodbav:"display_name,omitempty" json:"display_name,omitempty"`
	Language          string    `dynamodbav:"language,omitempty" json:"language,omitempty"`
	LanguageConfirmed bool      `dynamodbav:"language_confirmed" json:"language_confirmed"`
	CreatedAt         time.Time `dynamodbav:"created_at" json:"created_at"`
}
