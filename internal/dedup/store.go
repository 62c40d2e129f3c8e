package dedup

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"

	"github.com/euromart/storefront-notify/internal/aws"
	"github.com/euromart/storefront-notify/internal/notify"
	"github.com/euromart/storefront-notify/internal/orders"
)

// Store encapsulates delivery-record operations against DynamoDB. It
// implements notify.Guard (conditional create as the cross-process de-dup
// check) and notify.Auditor (per-channel outcome persistence).
type Store struct {
	client    aws.DynamoDBAPI
	tableName string
	ttlWindow time.Duration // window after which a dedup key may fire again
	nowFunc   func() time.Time
}

// NewStore returns a configured Store.
func NewStore(client aws.DynamoDBAPI, tableName string, ttlWindow time.Duration) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
		ttlWindow: ttlWindow,
		nowFunc:   time.Now,
	}
}

// CreateIfNotExists creates a delivery record with status IN_PROGRESS if the
// dedup key does not exist.
// Returns (created=true, nil) if successfully created.
// Returns (created=false, nil) if the record already exists.
// Returns (created=false, err) on other errors.
func (s *Store) CreateIfNotExists(ctx context.Context, orderID string, newStatus orders.Status, orderNumber string) (bool, error) {
	now := s.nowFunc()
	rec := DeliveryRecord{
		DedupKey:    Key(orderID, newStatus),
		Status:      StatusInProgress,
		OrderID:     orderID,
		OrderNumber: orderNumber,
		NewStatus:   newStatus,
		CreatedAt:   now,
		UpdatedAt:   now,
		ExpiresAt:   now.Add(s.ttlWindow).Unix(),
	}

	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return false, fmt.Errorf("marshal record: %w", err)
	}

	input := &dyn.PutItemInput{
		TableName:           &s.tableName,
		Item:                item,
		ConditionExpression: awsString("attribute_not_exists(dedup_key)"),
	}

	_, err = s.client.PutItem(ctx, input)
	if err != nil {
		var ae smithy.APIError
		if errors.As(err, &ae) && ae.ErrorCode() == "ConditionalCheckFailedException" {
			return false, nil
		}
		return false, fmt.Errorf("put item: %w", err)
	}

	return true, nil
}

// FirstDelivery implements notify.Guard via the conditional create. On a
// store error it fails open: a duplicate notification is preferable to a
// silently dropped one.
func (s *Store) FirstDelivery(ctx context.Context, orderID string, status orders.Status) bool {
	created, err := s.CreateIfNotExists(ctx, orderID, status, "")
	if err != nil {
		log.Printf("[dedup] guard check failed order=%s status=%s: %v", orderID, status, err)
		return true
	}
	return created
}

// RecordOutcome implements notify.Auditor: it writes the per-channel result
// map onto the delivery record created by the guard check. The record is
// marked FAILED only when every attempted channel failed.
func (s *Store) RecordOutcome(ctx context.Context, n *notify.Notification, results []notify.ChannelResult) error {
	channels := make(map[string]string, len(results))
	attempted, failed := 0, 0
	for _, r := range results {
		channels[r.Channel] = r.Outcome()
		if !r.Skipped {
			attempted++
			if r.Err != nil {
				failed++
			}
		}
	}
	key := Key(n.Order.OrderID, n.To)
	if attempted > 0 && failed == attempted {
		return s.MarkFailed(ctx, key, channels, "all channels failed")
	}
	return s.MarkDone(ctx, key, channels)
}

// Get retrieves a delivery record by dedup key. If not found, returns (nil, nil).
func (s *Store) Get(ctx context.Context, key string) (*DeliveryRecord, error) {
	input := &dyn.GetItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"dedup_key": &types.AttributeValueMemberS{Value: key},
		},
	}
	out, err := s.client.GetItem(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var rec DeliveryRecord
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal item: %w", err)
	}
	return &rec, nil
}

// MarkResponse sets status to DONE and stores a small response body and
// HTTP status for replay to duplicate requests.
func (s *Store) MarkResponse(ctx context.Context, key, responseBody string, responseStatus int) error {
	now := s.nowFunc()
	input := &dyn.UpdateItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"dedup_key": &types.AttributeValueMemberS{Value: key},
		},
		UpdateExpression: awsString("SET #s = :done, response_body = :rb, response_status = :rs, updated_at = :ua"),
		ExpressionAttributeNames: map[string]string{
			"#s": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":done": &types.AttributeValueMemberS{Value: StatusDone},
			":rb":   &types.AttributeValueMemberS{Value: responseBody},
			":rs":   &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", responseStatus)},
			":ua":   &types.AttributeValueMemberS{Value: now.Format(time.RFC3339)},
		},
		ReturnValues: types.ReturnValueUpdatedNew,
	}
	if _, err := s.client.UpdateItem(ctx, input); err != nil {
		return fmt.Errorf("update item (mark response): %w", err)
	}
	return nil
}

// MarkDone sets status to DONE and stores the per-channel outcome map.
func (s *Store) MarkDone(ctx context.Context, key string, channels map[string]string) error {
	return s.mark(ctx, key, StatusDone, channels, "")
}

// MarkFailed marks the delivery record FAILED with a note.
func (s *Store) MarkFailed(ctx context.Context, key string, channels map[string]string, note string) error {
	return s.mark(ctx, key, StatusFailed, channels, note)
}

func (s *Store) mark(ctx context.Context, key, status string, channels map[string]string, note string) error {
	now := s.nowFunc()
	chanAttr, err := attributevalue.Marshal(channels)
	if err != nil {
		return fmt.Errorf("marshal channels: %w", err)
	}

	input := &dyn.UpdateItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"dedup_key": &types.AttributeValueMemberS{Value: key},
		},
		UpdateExpression: awsString("SET #s = :st, channels = :ch, note = :n, updated_at = :ua"),
		ExpressionAttributeNames: map[string]string{
			"#s": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":st": &types.AttributeValueMemberS{Value: status},
			":ch": chanAttr,
			":n":  &types.AttributeValueMemberS{Value: note},
			":ua": &types.AttributeValueMemberS{Value: now.Format(time.RFC3339)},
		},
		ReturnValues: types.ReturnValueUpdatedNew,
	}
	if _, err := s.client.UpdateItem(ctx, input); err != nil {
		return fmt.Errorf("update item (mark %s): %w", status, err)
	}
	return nil
}

// Helper
func awsString(s string) *string { return &s }
