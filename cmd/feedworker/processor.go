package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"github.com/euromart/storefront-notify/internal/aws"
	"github.com/euromart/storefront-notify/internal/feed"
	"github.com/euromart/storefront-notify/internal/notify"
	"github.com/euromart/storefront-notify/internal/transition"
)

// Processor watches the orders change feed, detects status transitions and
// enqueues one notification job per transition. Inserts, deletes and updates
// that leave the status untouched are dropped here.
type Processor struct {
	publisher *aws.Publisher
	listener  *feed.Listener
}

// NewProcessor wires the feed listener to the job queue. filter scopes the
// feed; an empty filter watches every order.
func NewProcessor(sqsClient aws.SQSAPI, queueURL string, filter feed.Filter) *Processor {
	p := &Processor{
		publisher: aws.NewPublisher(sqsClient, queueURL),
	}
	p.listener = feed.NewListener(filter, p.handleChange)
	return p
}

// Listener exposes the configured listener for the local poller.
func (p *Processor) Listener() *feed.Listener {
	return p.listener
}

// Handle is the Lambda entrypoint for orders-table stream batches.
func (p *Processor) Handle(ctx context.Context, ev events.DynamoDBEvent) error {
	return p.listener.HandleStreamEvent(ctx, ev)
}

func (p *Processor) handleChange(ctx context.Context, ev feed.ChangeEvent) error {
	if ev.Type != feed.EventUpdate || ev.Old == nil || ev.New == nil {
		return nil
	}

	tr := transition.Detect(ev.Old.Status, ev.New.Status)
	if tr == nil {
		return nil
	}
	log.Printf("[feedworker] transition order=%s %s -> %s", ev.New.OrderID, tr.From, tr.To)

	job := notify.Job{
		Order:         *ev.New,
		From:          tr.From,
		To:            tr.To,
		CorrelationID: uuid.NewString(),
	}
	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}

	attrs := map[string]string{
		"order_id":       job.Order.OrderID,
		"new_status":     string(job.To),
		"correlation_id": job.CorrelationID,
	}
	if err := p.publisher.SendNotificationJob(ctx, string(body), attrs); err != nil {
		// returned so the stream batch is redriven
		return fmt.Errorf("enqueue job order=%s: %w", job.Order.OrderID, err)
	}
	return nil
}
