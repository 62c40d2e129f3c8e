package subscriptions

import (
	"context"
	"errors"
	"sync"
	"testing"

	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// mockDynamo stores items per table keyed by the row's primary key value.
type mockDynamo struct {
	mu     sync.Mutex
	tables map[string]map[string]map[string]types.AttributeValue
}

func newMockDynamo() *mockDynamo {
	return &mockDynamo{
		tables: map[string]map[string]map[string]types.AttributeValue{},
	}
}

func (m *mockDynamo) ensureTable(tbl string) {
	if _, ok := m.tables[tbl]; !ok {
		m.tables[tbl] = map[string]map[string]types.AttributeValue{}
	}
}

func itemKey(item map[string]types.AttributeValue) (string, error) {
	if v, ok := item["user_id"]; ok {
		return v.(*types.AttributeValueMemberS).Value, nil
	}
	if v, ok := item["chat_id"]; ok {
		return v.(*types.AttributeValueMemberN).Value, nil
	}
	return "", errors.New("no primary key in item")
}

func (m *mockDynamo) PutItem(ctx context.Context, params *dyn.PutItemInput, optFns ...func(*dyn.Options)) (*dyn.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	table := *params.TableName
	m.ensureTable(table)
	pk, err := itemKey(params.Item)
	if err != nil {
		return nil, err
	}
	m.tables[table][pk] = params.Item
	return &dyn.PutItemOutput{}, nil
}

func (m *mockDynamo) GetItem(ctx context.Context, params *dyn.GetItemInput, optFns ...func(*dyn.Options)) (*dyn.GetItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	table := *params.TableName
	m.ensureTable(table)
	pk, err := itemKey(params.Key)
	if err != nil {
		return nil, err
	}
	item, ok := m.tables[table][pk]
	if !ok {
		return &dyn.GetItemOutput{}, nil
	}
	return &dyn.GetItemOutput{Item: item}, nil
}

func (m *mockDynamo) DeleteItem(ctx context.Context, params *dyn.DeleteItemInput, optFns ...func(*dyn.Options)) (*dyn.DeleteItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	table := *params.TableName
	m.ensureTable(table)
	pk, err := itemKey(params.Key)
	if err != nil {
		return nil, err
	}
	delete(m.tables[table], pk)
	return &dyn.DeleteItemOutput{}, nil
}

// Query only supports the phone-index lookup used by GetTelegramByPhone.
func (m *mockDynamo) Query(ctx context.Context, params *dyn.QueryInput, optFns ...func(*dyn.Options)) (*dyn.QueryOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	table := *params.TableName
	m.ensureTable(table)
	phone := params.ExpressionAttributeValues[":p"].(*types.AttributeValueMemberS).Value
	out := &dyn.QueryOutput{}
	for _, item := range m.tables[table] {
		if v, ok := item["phone"].(*types.AttributeValueMemberS); ok && v.Value == phone {
			out.Items = append(out.Items, item)
		}
	}
	return out, nil
}

func (m *mockDynamo) UpdateItem(ctx context.Context, params *dyn.UpdateItemInput, optFns ...func(*dyn.Options)) (*dyn.UpdateItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	table := *params.TableName
	m.ensureTable(table)
	pk, err := itemKey(params.Key)
	if err != nil {
		return nil, err
	}
	item, ok := m.tables[table][pk]
	if !ok {
		return nil, errors.New("item not found")
	}
	if v, ok := params.ExpressionAttributeValues[":lang"]; ok {
		item["language"] = v
	}
	if v, ok := params.ExpressionAttributeValues[":c"]; ok {
		item["language_confirmed"] = v
	}
	m.tables[table][pk] = item
	return &dyn.UpdateItemOutput{Attributes: item}, nil
}

func (m *mockDynamo) TransactWriteItems(ctx context.Context, params *dyn.TransactWriteItemsInput, optFns ...func(*dyn.Options)) (*dyn.TransactWriteItemsOutput, error) {
	return &dyn.TransactWriteItemsOutput{}, nil
}

func TestUpsertPush_ReplaceOnConflict(t *testing.T) {
	mock := newMockDynamo()
	s := NewStore(mock, "push_subscriptions", "telegram_users")
	ctx := context.Background()

	first := PushSubscription{
		UserID:   "U1",
		Endpoint: "https://push.example/ep-1",
		Keys:     SubscriptionKeys{P256dh: "pk-1", Auth: "auth-1"},
		Granted:  true,
	}
	if err := s.UpsertPush(ctx, first); err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	second := first
	second.Endpoint = "https://push.example/ep-2"
	if err := s.UpsertPush(ctx, second); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	if got := len(mock.tables["push_subscriptions"]); got != 1 {
		t.Fatalf("expected exactly one row for U1 after re-registration, got %d", got)
	}

	sub, err := s.GetPush(ctx, "U1")
	if err != nil {
		t.Fatalf("GetPush: %v", err)
	}
	if sub == nil || sub.Endpoint != "https://push.example/ep-2" {
		t.Fatalf("latest registration must win, got %+v", sub)
	}
}

func TestGetPush_MissingReturnsNilNil(t *testing.T) {
	mock := newMockDynamo()
	s := NewStore(mock, "push_subscriptions", "telegram_users")

	sub, err := s.GetPush(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sub != nil {
		t.Fatalf("expected nil subscription, got %+v", sub)
	}
}

func TestTelegram_PhoneLookup(t *testing.T) {
	mock := newMockDynamo()
	s := NewStore(mock, "push_subscriptions", "telegram_users")
	ctx := context.Background()

	user := TelegramUser{
		ChatID:      123456,
		Phone:       "+998901234567",
		DisplayName: "Aziza",
		Language:    "uz",
	}
	if err := s.UpsertTelegram(ctx, user); err != nil {
		t.Fatalf("UpsertTelegram: %v", err)
	}

	got, err := s.GetTelegramByPhone(ctx, "+998901234567")
	if err != nil {
		t.Fatalf("GetTelegramByPhone: %v", err)
	}
	if got == nil || got.ChatID != 123456 {
		t.Fatalf("expected chat 123456, got %+v", got)
	}

	missing, err := s.GetTelegramByPhone(ctx, "+998000000000")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if missing != nil {
		t.Fatalf("unlinked phone must resolve to nil, got %+v", missing)
	}
}

func TestTelegram_LanguageUpdate(t *testing.T) {
	mock := newMockDynamo()
	s := NewStore(mock, "push_subscriptions", "telegram_users")
	ctx := context.Background()

	if err := s.UpsertTelegram(ctx, TelegramUser{ChatID: 42, Phone: "+998911112233", Language: "uz"}); err != nil {
		t.Fatalf("UpsertTelegram: %v", err)
	}
	if err := s.UpdateTelegramLanguage(ctx, 42, "ru"); err != nil {
		t.Fatalf("UpdateTelegramLanguage: %v", err)
	}

	got, err := s.GetTelegramByChatID(ctx, 42)
	if err != nil {
		t.Fatalf("GetTelegramByChatID: %v", err)
	}
	if got.Language != "ru" || !got.LanguageConfirmed {
		t.Fatalf("language update not persisted: %+v", got)
	}
}
