package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-lambda-go/events"

	"github.com/euromart/storefront-notify/internal/aws"
	"github.com/euromart/storefront-notify/internal/channels"
	"github.com/euromart/storefront-notify/internal/dedup"
	"github.com/euromart/storefront-notify/internal/metrics"
	"github.com/euromart/storefront-notify/internal/notify"
	"github.com/euromart/storefront-notify/internal/subscriptions"
	"github.com/euromart/storefront-notify/internal/transition"
)

// NotifierConfig carries the table names and relay URLs the notifier fans
// out across.
type NotifierConfig struct {
	DeliveryTable    string
	InAppTable       string
	PushTable        string
	TelegramTable    string
	PushRelayURL     string
	TelegramRelayURL string
	TTLWindow        time.Duration
}

// Processor consumes notification jobs from SQS and fans each one out over
// the in-app, push and Telegram channels.
type Processor struct {
	dispatcher *notify.Dispatcher
}

// NewProcessor wires the full fan-out: the delivery-record store doubles as
// de-dup guard and audit sink, and channel outcomes are counted in
// CloudWatch.
func NewProcessor(clients *aws.AWSClients, cfg NotifierConfig) *Processor {
	subs := subscriptions.NewStore(clients.DynamoDB, cfg.PushTable, cfg.TelegramTable)
	deliveries := dedup.NewStore(clients.DynamoDB, cfg.DeliveryTable, cfg.TTLWindow)

	chs := []notify.Channel{
		channels.NewInApp(clients.DynamoDB, cfg.InAppTable, subs),
		channels.NewPush(subs, cfg.PushRelayURL),
		channels.NewTelegram(subs, cfg.TelegramRelayURL),
	}
	dispatcher := notify.NewDispatcher(deliveries, chs, deliveries, metrics.NewRecorder(clients.CloudWatch))

	return &Processor{dispatcher: dispatcher}
}

// Handle receives an SQS batch event and dispatches each job. A body that
// cannot be decoded is returned as an error so the Lambda runtime redrives
// it toward the DLQ; delivery failures inside the fan-out are not errors.
func (p *Processor) Handle(ctx context.Context, ev events.SQSEvent) error {
	for _, rec := range ev.Records {
		if err := p.processMessage(ctx, rec); err != nil {
			log.Printf("[notifier] error: %v", err)
			return err
		}
	}
	return nil
}

func (p *Processor) processMessage(ctx context.Context, rec events.SQSMessage) error {
	var job notify.Job
	if err := json.Unmarshal([]byte(rec.Body), &job); err != nil {
		return fmt.Errorf("invalid job body: %w", err)
	}

	n := notify.Build(job.Order, transition.Transition{From: job.From, To: job.To})
	res := p.dispatcher.Dispatch(ctx, n)
	if res.Deduplicated {
		log.Printf("[notifier] duplicate suppressed order=%s status=%s corr=%s",
			job.Order.OrderID, job.To, job.CorrelationID)
		return nil
	}
	log.Printf("[notifier] dispatched order=%s status=%s delivered=%d skipped=%d failed=%d corr=%s",
		job.Order.OrderID, job.To, res.Delivered, res.Skipped, res.Failed, job.CorrelationID)
	return nil
}
