package validation

import "testing"

func TestCreateOrderRequest_Valid(t *testing.T) {
	v := New()

	req := CreateOrderRequest{
		CustomerID:    "u1",
		CustomerName:  "Aziza Karimova",
		CustomerPhone: "+998901234567",
		Items: []OrderItem{
			{ProductName: "Palto", Quantity: 2, UnitPrice: 150000},
			{ProductName: "Sharf", Quantity: 1, UnitPrice: 150000},
		},
		TotalAmount: 450000, // 2*150000 + 1*150000
		Language:    "uz",
	}

	if err := v.Struct(req); err != nil {
		t.Fatalf("expected valid, got error: %v", err)
	}
}

func TestCreateOrderRequest_AmountMismatch(t *testing.T) {
	v := New()

	req := CreateOrderRequest{
		CustomerID:    "u1",
		CustomerName:  "Aziza",
		CustomerPhone: "+998901234567",
		Items: []OrderItem{
			{ProductName: "Palto", Quantity: 1, UnitPrice: 150000},
		},
		TotalAmount: 149999,
	}

	if err := v.Struct(req); err == nil {
		t.Fatal("expected validation error for amount mismatch, got nil")
	}
}

func TestUpdateStatusRequest_ClosedSet(t *testing.T) {
	v := New()

	for _, status := range []string{"pending", "confirmed", "processing", "ready", "shipped", "delivered", "cancelled"} {
		if err := v.Struct(UpdateStatusRequest{Status: status}); err != nil {
			t.Fatalf("status %q must validate: %v", status, err)
		}
	}
	if err := v.Struct(UpdateStatusRequest{Status: "archived"}); err == nil {
		t.Fatal("expected validation error for unknown status")
	}
}

func TestRegisterSubscriptionRequest(t *testing.T) {
	v := New()

	ok := RegisterSubscriptionRequest{
		UserID:   "u1",
		Endpoint: "https://push.example/ep",
		Keys:     SubscriptionKeys{P256dh: "pk", Auth: "auth"},
		Granted:  true,
	}
	if err := v.Struct(ok); err != nil {
		t.Fatalf("expected valid, got %v", err)
	}

	missingKeys := ok
	missingKeys.Keys = SubscriptionKeys{}
	if err := v.Struct(missingKeys); err == nil {
		t.Fatal("expected validation error for missing keys")
	}
}

func TestLinkTelegramRequest(t *testing.T) {
	v := New()

	if err := v.Struct(LinkTelegramRequest{ChatID: 123456, Phone: "+998901234567", Language: "ru"}); err != nil {
		t.Fatalf("expected valid, got %v", err)
	}
	if err := v.Struct(LinkTelegramRequest{Phone: "+998901234567"}); err == nil {
		t.Fatal("expected validation error for missing chat id")
	}
}
