package subscriptions

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/euromart/storefront-notify/internal/aws"
)

// Store holds the push-subscription registry and the Telegram chat mapping.
type Store struct {
	client        aws.DynamoDBAPI
	pushTable     string
	telegramTable string
	nowFunc       func() time.Time
}

// NewStore creates the registry over the two tables.
func NewStore(client aws.DynamoDBAPI, pushTable, telegramTable string) *Store {
	return &Store{
		client:        client,
		pushTable:     pushTable,
		telegramTable: telegramTable,
		nowFunc:       time.Now,
	}
}

// UpsertPush writes the subscription row, replacing any existing one for the
// same user (PutItem overwrite = replace-on-conflict on user_id).
func (s *Store) UpsertPush(ctx context.Context, sub PushSubscription) error {
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = s.nowFunc()
	}
	item, err := attributevalue.MarshalMap(sub)
	if err != nil {
		return fmt.Errorf("marshal subscription: %w", err)
	}
	_, err = s.client.PutItem(ctx, &dyn.PutItemInput{
		TableName: &s.pushTable,
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("put subscription: %w", err)
	}
	return nil
}

// GetPush fetches a user's subscription. Returns (nil, nil) when the user
// never registered; callers treat that as a silent channel skip.
func (s *Store) GetPush(ctx context.Context, userID string) (*PushSubscription, error) {
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &s.pushTable,
		Key: map[string]types.AttributeValue{
			"user_id": &types.AttributeValueMemberS{Value: userID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get subscription: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var sub PushSubscription
	if err := attributevalue.UnmarshalMap(out.Item, &sub); err != nil {
		return nil, fmt.Errorf("unmarshal subscription: %w", err)
	}
	return &sub, nil
}

// DeletePush removes a user's subscription row.
func (s *Store) DeletePush(ctx context.Context, userID string) error {
	_, err := s.client.DeleteItem(ctx, &dyn.DeleteItemInput{
		TableName: &s.pushTable,
		Key: map[string]types.AttributeValue{
			"user_id": &types.AttributeValueMemberS{Value: userID},
		},
	})
	if err != nil {
		return fmt.Errorf("delete subscription: %w", err)
	}
	return nil
}

// UpsertTelegram writes the Telegram chat mapping, keyed by chat_id.
func (s *Store) UpsertTelegram(ctx context.Context, user TelegramUser) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = s.nowFunc()
	}
	item, err := attributevalue.MarshalMap(user)
	if err != nil {
		return fmt.Errorf("marshal telegram user: %w", err)
	}
	_, err = s.client.PutItem(ctx, &dyn.PutItemInput{
		TableName: &s.telegramTable,
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("put telegram user: %w", err)
	}
	return nil
}

// GetTelegramByChatID fetches a Telegram mapping. Returns (nil, nil) if absent.
func (s *Store) GetTelegramByChatID(ctx context.Context, chatID int64) (*TelegramUser, error) {
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &s.telegramTable,
		Key: map[string]types.AttributeValue{
			"chat_id": &types.AttributeValueMemberN{Value: strconv.FormatInt(chatID, 10)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get telegram user: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var user TelegramUser
	if err := attributevalue.UnmarshalMap(out.Item, &user); err != nil {
		return nil, fmt.Errorf("unmarshal telegram user: %w", err)
	}
	return &user, nil
}

// GetTelegramByPhone resolves a chat mapping from a customer phone number
// via the phone-index GSI. Returns (nil, nil) when the phone was never
// linked; the Telegram channel is then skipped.
func (s *Store) GetTelegramByPhone(ctx context.Context, phone string) (*TelegramUser, error) {
	out, err := s.client.Query(ctx, &dyn.QueryInput{
		TableName:              &s.telegramTable,
		IndexName:              awsString("phone-index"),
		KeyConditionExpression: awsString("phone = :p"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":p": &types.AttributeValueMemberS{Value: phone},
		},
		Limit: awsInt32(1),
	})
	if err != nil {
		return nil, fmt.Errorf("query telegram user by phone: %w", err)
	}
	if len(out.Items) == 0 {
		return nil, nil
	}
	var user TelegramUser
	if err := attributevalue.UnmarshalMap(out.Items[0], &user); err != nil {
		return nil, fmt.Errorf("unmarshal telegram user: %w", err)
	}
	return &user, nil
}

// UpdateTelegramLanguage persists a language change from the bot.
func (s *Store) UpdateTelegramLanguage(ctx context.Context, chatID int64, language string) error {
	_, err := s.client.UpdateItem(ctx, &dyn.UpdateItemInput{
		TableName: &s.telegramTable,
		Key: map[string]types.AttributeValue{
			"chat_id": &types.AttributeValueMemberN{Value: strconv.FormatInt(chatID, 10)},
		},
		UpdateExpression: awsString("SET #l = :lang, language_confirmed = :c"),
		ExpressionAttributeNames: map[string]string{
			"#l": "language",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":lang": &types.AttributeValueMemberS{Value: language},
			":c":    &types.AttributeValueMemberBOOL{Value: true},
		},
	})
	if err != nil {
		return fmt.Errorf("update telegram language: %w", err)
	}
	return nil
}

func awsString(s string) *string { return &s }
func awsInt32(i int32) *int32 { return &i }
