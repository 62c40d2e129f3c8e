package feed

import "github.com/euromart/storefront-notify/internal/orders"

// EventType mirrors the change-feed event names consumers see.
type EventType string

const (
	EventInsert EventType = "INSERT"
	EventUpdate EventType = "UPDATE"
	EventDelete EventType = "DELETE"
)

// ChangeEvent is one row-level change on the orders table. Old is nil for
// inserts, New is nil for deletes.
type ChangeEvent struct {
	Type EventType
	Old  *orders.Order
	New  *orders.Order
}

// Filter scopes a subscription: by customer for the storefront view, by
// order id for a detail view, or neither for the unfiltered admin view.
type Filter struct {
	CustomerID string
	OrderID    string
}

// Matches reports whether the event falls inside the filter's scope.
func (f Filter) Matches(ev ChangeEvent) bool {
	row := ev.New
	if row == nil {
		row = ev.Old
	}
	if row == nil {
		return false
	}
	if f.CustomerID != "" && row.CustomerID != f.CustomerID {
		return false
	}
	if f.OrderID != "" && row.OrderID != f.OrderID {
		return false
	}
	return true
}
