package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/euromart/storefront-notify/internal/orders"
)

// Guard decides whether a (order, new status) pair has already been
// dispatched within the guard's scope. It is injected into the dispatcher so
// the backing store can be swapped (process-local set, DynamoDB conditional
// write) without changing the dispatch contract. Best effort: duplicate
// deliveries across scopes remain possible.
type Guard interface {
	// FirstDelivery returns true exactly once per key within the guard's
	// scope and window.
	FirstDelivery(ctx context.Context, orderID string, status orders.Status) bool
}

// MemoryGuard is the process-local guard: a mutex-protected set with a TTL.
// It is not shared across processes or restarts.
type MemoryGuard struct {
	mu      sync.Mutex
	seen    map[string]time.Time
	ttl     time.Duration
	nowFunc func() time.Time
}

// NewMemoryGuard returns a guard whose entries expire after ttl.
func NewMemoryGuard(ttl time.Duration) *MemoryGuard {
	return &MemoryGuard{
		seen:    map[string]time.Time{},
		ttl:     ttl,
		nowFunc: time.Now,
	}
}

// FirstDelivery implements Guard.
func (g *MemoryGuard) FirstDelivery(_ context.Context, orderID string, status orders.Status) bool {
	key := fmt.Sprintf("%s:%s", orderID, status)
	now := g.nowFunc()

	g.mu.Lock()
	defer g.mu.Unlock()

	// drop expired entries so the set does not grow for the session lifetime
	for k, at := range g.seen {
		if now.Sub(at) > g.ttl {
			delete(g.seen, k)
		}
	}

	if _, ok := g.seen[key]; ok {
		return false
	}
	g.seen[key] = now
	return true
}
