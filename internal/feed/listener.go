package feed

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aws/aws-lambda-go/events"
)

// Handler consumes one in-scope change event.
type Handler func(ctx context.Context, ev ChangeEvent) error

// Listener feeds orders-table change events through a scope filter into a
// handler and tracks when it last saw the stream.
type Listener struct {
	filter  Filter
	handler Handler

	mu           sync.Mutex
	lastSyncedAt time.Time
	nowFunc      func() time.Time
}

// NewListener builds a listener. An empty filter passes every row (admin
// scope).
func NewListener(filter Filter, handler Handler) *Listener {
	return &Listener{
		filter:  filter,
		handler: handler,
		nowFunc: time.Now,
	}
}

// HandleStreamEvent processes one Lambda batch. A handler error is returned
// so the Lambda runtime redrives the batch; a record that cannot be decoded
// is also returned as an error rather than silently dropped.
func (l *Listener) HandleStreamEvent(ctx context.Context, ev events.DynamoDBEvent) error {
	for _, rec := range ev.Records {
		change, err := FromLambdaRecord(rec)
		if err != nil {
			return fmt.Errorf("decode stream record %s: %w", rec.EventID, err)
		}
		if err := l.deliver(ctx, change); err != nil {
			return err
		}
	}
	return nil
}

// Deliver runs one already-decoded event through the filter and handler.
// Used by the local poller.
func (l *Listener) Deliver(ctx context.Context, change ChangeEvent) error {
	return l.deliver(ctx, change)
}

func (l *Listener) deliver(ctx context.Context, change ChangeEvent) error {
	l.touch()
	if !l.filter.Matches(change) {
		return nil
	}
	return l.handler(ctx, change)
}

func (l *Listener) touch() {
	l.mu.Lock()
	l.lastSyncedAt = l.nowFunc()
	l.mu.Unlock()
}

// LastSyncedAt reports when the listener last observed the stream; zero if
// it never has. Surfaced to the UI as the "last synced" timestamp.
func (l *Listener) LastSyncedAt() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastSyncedAt
}
