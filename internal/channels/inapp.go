package channels

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/euromart/storefront-notify/internal/aws"
	"github.com/euromart/storefront-notify/internal/notify"
	"github.com/euromart/storefront-notify/internal/orders"
	"github.com/euromart/storefront-notify/internal/subscriptions"
)

// InAppRow is the row shown in the storefront's notification tray. The table
// is keyed (user_id, tag): a repeat notification for the same order
// overwrites the previous one instead of stacking, mirroring browser
// notification tag semantics.
type InAppRow struct {
	UserID             string        `dynamodbav:"user_id"` // PK
	Tag                string        `dynamodbav:"tag"`     // SK: order-<orderNumber>
	Title              string        `dynamodbav:"title"`
	Body               string        `dynamodbav:"body"`
	OrderID            string        `dynamodbav:"order_id"`
	OrderNumber        string        `dynamodbav:"order_number"`
	FromStatus         orders.Status `dynamodbav:"from_status"`
	ToStatus           orders.Status `dynamodbav:"to_status"`
	RequireInteraction bool          `dynamodbav:"require_interaction"`
	CreatedAt          time.Time     `dynamodbav:"created_at"`
}

// InApp delivers notifications to the in-app tray. Delivery is gated on the
// user's stored notification permission: without a granted registration the
// channel skips silently.
type InApp struct {
	dynamo    aws.DynamoDBAPI
	tableName string
	subs      *subscriptions.Store
	nowFunc   func() time.Time
}

// NewInApp builds the in-app channel over the tray table.
func NewInApp(dynamo aws.DynamoDBAPI, tableName string, subs *subscriptions.Store) *InApp {
	return &InApp{
		dynamo:    dynamo,
		tableName: tableName,
		subs:      subs,
		nowFunc:   time.Now,
	}
}

func (c *InApp) Name() string { return "inapp" }

// Send implements notify.Channel.
func (c *InApp) Send(ctx context.Context, n *notify.Notification) error {
	sub, err := c.subs.GetPush(ctx, n.Order.CustomerID)
	if err != nil {
		return fmt.Errorf("permission lookup: %w", err)
	}
	if sub == nil || !sub.Granted {
		return fmt.Errorf("notification permission not granted for user %s: %w", n.Order.CustomerID, notify.ErrSkip)
	}

	row := InAppRow{
		UserID:             n.Order.CustomerID,
		Tag:                n.Tag,
		Title:              n.Title,
		Body:               n.Body,
		OrderID:            n.Order.OrderID,
		OrderNumber:        n.Order.OrderNumber,
		FromStatus:         n.From,
		ToStatus:           n.To,
		RequireInteraction: true,
		CreatedAt:          c.nowFunc(),
	}
	item, err := attributevalue.MarshalMap(row)
	if err != nil {
		return fmt.Errorf("marshal tray row: %w", err)
	}
	// plain put: same (user, tag) replaces the previous notification
	if _, err := c.dynamo.PutItem(ctx, &dyn.PutItemInput{
		TableName: &c.tableName,
		Item:      item,
	}); err != nil {
		return fmt.Errorf("write tray row: %w", err)
	}
	return nil
}
