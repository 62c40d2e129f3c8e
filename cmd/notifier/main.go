package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/euromart/storefront-notify/internal/aws"
	"github.com/euromart/storefront-notify/internal/notify"
	"github.com/euromart/storefront-notify/internal/orders"
)

func main() {
	clients, err := aws.NewAWSClients(context.Background())
	if err != nil {
		log.Fatalf("failed to init aws clients: %v", err)
	}

	p := NewProcessor(clients, NotifierConfig{
		DeliveryTable:    os.Getenv("DELIVERY_TABLE"),
		InAppTable:       os.Getenv("INAPP_TABLE"),
		PushTable:        os.Getenv("PUSH_TABLE"),
		TelegramTable:    os.Getenv("TELEGRAM_TABLE"),
		PushRelayURL:     os.Getenv("PUSH_RELAY_URL"),
		TelegramRelayURL: os.Getenv("TELEGRAM_RELAY_URL"),
		TTLWindow:        48 * time.Hour,
	})

	// If RUN_LOCAL=true, process a single simulated job and exit.
	if os.Getenv("RUN_LOCAL") == "true" {
		body := os.Getenv("LOCAL_SQS_BODY")
		if body == "" {
			job := notify.Job{
				Order: orders.Order{
					OrderID:     "local-order-1",
					OrderNumber: "EURO-000001",
					CustomerID:  "local-user",
					Status:      orders.StatusConfirmed,
				},
				From: orders.StatusPending,
				To:   orders.StatusConfirmed,
			}
			b, _ := json.Marshal(job)
			body = string(b)
		}
		ev := events.SQSEvent{Records: []events.SQSMessage{{Body: body}}}
		if err := p.Handle(context.Background(), ev); err != nil {
			log.Fatalf("local handler error: %v", err)
		}
		return
	}

	lambda.Start(p.Handle)
}
