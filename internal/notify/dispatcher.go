package notify

import (
	"context"
	"errors"
	"log"
	"sync"
)

// ErrSkip marks a channel delivery that was skipped rather than failed:
// a lookup miss (no push subscription, no Telegram chat mapping) or a
// permission that was never granted. Skips are not surfaced to the user.
var ErrSkip = errors.New("channel skipped")

// Channel delivers one notification over a single outbound integration.
type Channel interface {
	Name() string
	// Send delivers the notification. Return an error wrapping ErrSkip for
	// a silent skip; any other error counts as a failed delivery for this
	// channel only.
	Send(ctx context.Context, n *Notification) error
}

// ChannelResult is the per-channel outcome of one dispatch.
type ChannelResult struct {
	Channel string
	Skipped bool
	Err     error
}

// Outcome reports the delivery state as stored in the audit record.
func (r ChannelResult) Outcome() string {
	switch {
	case r.Skipped:
		return "skipped"
	case r.Err != nil:
		return "failed"
	default:
		return "delivered"
	}
}

// DispatchResult aggregates a full fan-out attempt.
type DispatchResult struct {
	Deduplicated bool
	Results      []ChannelResult
	Delivered    int
	Skipped      int
	Failed       int
}

// Auditor persists the per-channel outcome of a dispatch. Optional.
type Auditor interface {
	RecordOutcome(ctx context.Context, n *Notification, results []ChannelResult) error
}

// Metrics records per-channel dispatch outcomes. Optional.
type Metrics interface {
	RecordDispatch(ctx context.Context, channel, outcome string)
}

// Dispatcher fans one notification out across its channels. Channels run
// independently and are joined settle-all: every channel is attempted and
// every result collected; one channel failing never cancels another, and
// Dispatch itself never returns a delivery failure.
type Dispatcher struct {
	channels []Channel
	guard    Guard
	auditor  Auditor
	metrics  Metrics
}

// NewDispatcher wires a dispatcher. auditor and metrics may be nil.
func NewDispatcher(guard Guard, channels []Channel, auditor Auditor, metrics Metrics) *Dispatcher {
	return &Dispatcher{
		channels: channels,
		guard:    guard,
		auditor:  auditor,
		metrics:  metrics,
	}
}

// Dispatch delivers n over every channel. A repeated (order, status) pair
// within the guard's scope is a no-op.
func (d *Dispatcher) Dispatch(ctx context.Context, n *Notification) DispatchResult {
	if !d.guard.FirstDelivery(ctx, n.Order.OrderID, n.To) {
		log.Printf("[dispatch] duplicate suppressed order=%s status=%s", n.Order.OrderID, n.To)
		return DispatchResult{Deduplicated: true}
	}

	results := make([]ChannelResult, len(d.channels))
	var wg sync.WaitGroup
	for i, ch := range d.channels {
		wg.Add(1)
		go func(i int, ch Channel) {
			defer wg.Done()
			err := ch.Send(ctx, n)
			res := ChannelResult{Channel: ch.Name()}
			switch {
			case err == nil:
			case errors.Is(err, ErrSkip):
				res.Skipped = true
				log.Printf("[dispatch] channel=%s skipped order=%s: %v", ch.Name(), n.Order.OrderID, err)
			default:
				res.Err = err
				log.Printf("[dispatch] channel=%s failed order=%s: %v", ch.Name(), n.Order.OrderID, err)
			}
			results[i] = res
		}(i, ch)
	}
	wg.Wait()

	out := DispatchResult{Results: results}
	for _, r := range results {
		switch {
		case r.Skipped:
			out.Skipped++
		case r.Err != nil:
			out.Failed++
		default:
			out.Delivered++
		}
		if d.metrics != nil {
			d.metrics.RecordDispatch(ctx, r.Channel, r.Outcome())
		}
	}

	if d.auditor != nil {
		if err := d.auditor.RecordOutcome(ctx, n, results); err != nil {
			// audit is best effort: delivery already happened
			log.Printf("[dispatch] audit write failed order=%s: %v", n.Order.OrderID, err)
		}
	}

	return out
}
