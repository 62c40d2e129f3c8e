package channels

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/euromart/storefront-notify/internal/notify"
	"github.com/euromart/storefront-notify/internal/orders"
	"github.com/euromart/storefront-notify/internal/subscriptions"
	"github.com/euromart/storefront-notify/internal/telegram"
	"github.com/euromart/storefront-notify/internal/transition"
)

// mockDynamo supports the push/telegram registry tables plus the tray table
// keyed (user_id, tag).
type mockDynamo struct {
	mu     sync.Mutex
	tables map[string]map[string]map[string]types.AttributeValue
}

func newMockDynamo() *mockDynamo {
	return &mockDynamo{tables: map[string]map[string]map[string]types.AttributeValue{}}
}

func (m *mockDynamo) ensureTable(tbl string) {
	if _, ok := m.tables[tbl]; !ok {
		m.tables[tbl] = map[string]map[string]types.AttributeValue{}
	}
}

func itemKey(item map[string]types.AttributeValue) string {
	var pk string
	if v, ok := item["user_id"]; ok {
		pk = v.(*types.AttributeValueMemberS).Value
	} else if v, ok := item["chat_id"]; ok {
		pk = v.(*types.AttributeValueMemberN).Value
	}
	if v, ok := item["tag"]; ok {
		pk += "|" + v.(*types.AttributeValueMemberS).Value
	}
	return pk
}

func (m *mockDynamo) PutItem(ctx context.Context, params *dyn.PutItemInput, optFns ...func(*dyn.Options)) (*dyn.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	table := *params.TableName
	m.ensureTable(table)
	m.tables[table][itemKey(params.Item)] = params.Item
	return &dyn.PutItemOutput{}, nil
}

func (m *mockDynamo) GetItem(ctx context.Context, params *dyn.GetItemInput, optFns ...func(*dyn.Options)) (*dyn.GetItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	table := *params.TableName
	m.ensureTable(table)
	item, ok := m.tables[table][itemKey(params.Key)]
	if !ok {
		return &dyn.GetItemOutput{}, nil
	}
	return &dyn.GetItemOutput{Item: item}, nil
}

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
	return &dyn.UpdateItemOutput{}, nil
}

func (m *mockDynamo) DeleteItem(ctx context.Context, params *dyn.DeleteItemInput, optFns ...func(*dyn.Options)) (*dyn.DeleteItemOutput, error) {
	return &dyn.DeleteItemOutput{}, nil
}

func (m *mockDynamo) TransactWriteItems(ctx context.Context, params *dyn.TransactWriteItemsInput, optFns ...func(*dyn.Options)) (*dyn.TransactWriteItemsOutput, error) {
	return &dyn.TransactWriteItemsOutput{}, nil
}

func testOrder() orders.Order {
	return orders.Order{
		OrderID:         "o1",
		OrderNumber:     "EURO-872475",
		CustomerID:      "u1",
		CustomerName:    "Aziza Karimova",
		CustomerPhone:   "+998901234567",
		DeliveryAddress: "Toshkent, Chilonzor 9",
		TotalAmount:     450000,
		Language:        "uz",
		Items: []orders.Item{
			{ProductName: "Palto", Quantity: 2, UnitPrice: 150000, LineTotal: 300000},
		},
	}
}

func confirmedNotification() *notify.Notification {
	return notify.Build(testOrder(), transition.Transition{
		From: orders.StatusPending,
		To:   orders.StatusConfirmed,
	})
}

func grantPush(t *testing.T, subs *subscriptions.Store) {
	t.Helper()
	err := subs.UpsertPush(context.Background(), subscriptions.PushSubscription{
		UserID:   "u1",
		Endpoint: "https://push.example/ep",
		Keys:     subscriptions.SubscriptionKeys{P256dh: "pk", Auth: "auth"},
		Granted:  true,
	})
	if err != nil {
		t.Fatalf("grant push: %v", err)
	}
}

func TestInApp_SkipsWithoutPermission(t *testing.T) {
	mock := newMockDynamo()
	subs := subscriptions.NewStore(mock, "push_subscriptions", "telegram_users")
	ch := NewInApp(mock, "inapp_notifications", subs)

	err := ch.Send(context.Background(), confirmedNotification())
	if !errors.Is(err, notify.ErrSkip) {
		t.Fatalf("expected skip, got %v", err)
	}
	if len(mock.tables["inapp_notifications"]) != 0 {
		t.Fatal("no tray row must be written without permission")
	}
}

func TestInApp_TagReplacesPriorNotification(t *testing.T) {
	mock := newMockDynamo()
	subs := subscriptions.NewStore(mock, "push_subscriptions", "telegram_users")
	grantPush(t, subs)
	ch := NewInApp(mock, "inapp_notifications", subs)
	ctx := context.Background()

	n1 := confirmedNotification()
	if err := ch.Send(ctx, n1); err != nil {
		t.Fatalf("first send: %v", err)
	}
	n2 := notify.Build(testOrder(), transition.Transition{From: orders.StatusConfirmed, To: orders.StatusShipped})
	if err := ch.Send(ctx, n2); err != nil {
		t.Fatalf("second send: %v", err)
	}

	rows := mock.tables["inapp_notifications"]
	if len(rows) != 1 {
		t.Fatalf("same tag must replace, got %d rows", len(rows))
	}
	row := rows["u1|order-EURO-872475"]
	if row == nil {
		t.Fatal("expected row keyed by user and tag order-EURO-872475")
	}
	if v := row["to_status"].(*types.AttributeValueMemberS).Value; v != "shipped" {
		t.Fatalf("latest notification must win, got to_status=%s", v)
	}
	if ri, ok := row["require_interaction"].(*types.AttributeValueMemberBOOL); !ok || !ri.Value {
		t.Fatal("require_interaction must be set")
	}
}

func TestPush_SkipsWithoutSubscription(t *testing.T) {
	mock := newMockDynamo()
	subs := subscriptions.NewStore(mock, "push_subscriptions", "telegram_users")
	ch := NewPush(subs, "http://relay.invalid/push")

	err := ch.Send(context.Background(), confirmedNotification())
	if !errors.Is(err, notify.ErrSkip) {
		t.Fatalf("expected skip, got %v", err)
	}
}

func TestPush_PostsPayloadToRelay(t *testing.T) {
	var got PushRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, `{"message":"ok","results":[],"total":1,"successful":1}`)
	}))
	defer srv.Close()

	mock := newMockDynamo()
	subs := subscriptions.NewStore(mock, "push_subscriptions", "telegram_users")
	grantPush(t, subs)
	ch := NewPush(subs, srv.URL)

	if err := ch.Send(context.Background(), confirmedNotification()); err != nil {
		t.Fatalf("send: %v", err)
	}
	if got.UserID != "u1" || got.Title == "" || got.Body == "" {
		t.Fatalf("unexpected relay payload: %+v", got)
	}
	if got.Data["tag"] != "order-EURO-872475" {
		t.Fatalf("payload tag: got %v", got.Data["tag"])
	}
}

func TestPush_RelayFailureIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	mock := newMockDynamo()
	subs := subscriptions.NewStore(mock, "push_subscriptions", "telegram_users")
	grantPush(t, subs)
	ch := NewPush(subs, srv.URL)

	err := ch.Send(context.Background(), confirmedNotification())
	if err == nil || errors.Is(err, notify.ErrSkip) {
		t.Fatalf("relay failure must be an error, got %v", err)
	}
}

func TestTelegram_SkipsUnlinkedPhone(t *testing.T) {
	mock := newMockDynamo()
	subs := subscriptions.NewStore(mock, "push_subscriptions", "telegram_users")
	ch := NewTelegram(subs, "http://relay.invalid/telegram")

	err := ch.Send(context.Background(), confirmedNotification())
	if !errors.Is(err, notify.ErrSkip) {
		t.Fatalf("expected skip, got %v", err)
	}
}

func TestTelegram_PostsReceiptPayload(t *testing.T) {
	var got telegram.RelayPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, `{"success":true,"telegram_message_id":7,"chat_id":123456}`)
	}))
	defer srv.Close()

	mock := newMockDynamo()
	subs := subscriptions.NewStore(mock, "push_subscriptions", "telegram_users")
	if err := subs.UpsertTelegram(context.Background(), subscriptions.TelegramUser{
		ChatID:   123456,
		Phone:    "+998901234567",
		Language: "uz",
	}); err != nil {
		t.Fatalf("link telegram: %v", err)
	}
	ch := NewTelegram(subs, srv.URL)

	if err := ch.Send(context.Background(), confirmedNotification()); err != nil {
		t.Fatalf("send: %v", err)
	}
	if got.ChatID != 123456 {
		t.Fatalf("chat id: got %d, want 123456", got.ChatID)
	}
	if got.OrderNumber != "EURO-872475" || got.Status != "confirmed" {
		t.Fatalf("unexpected payload: %+v", got)
	}
	if len(got.Products) != 1 || got.Products[0].Name != "Palto" {
		t.Fatalf("products must be itemized: %+v", got.Products)
	}
}
