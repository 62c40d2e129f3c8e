package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/euromart/storefront-notify/internal/aws"
	"github.com/euromart/storefront-notify/internal/feed"
)

func main() {
	clients, err := aws.NewAWSClients(context.Background())
	if err != nil {
		log.Fatalf("failed to init aws clients: %v", err)
	}

	filter := feed.Filter{
		CustomerID: os.Getenv("FEED_CUSTOMER_ID"),
		OrderID:    os.Getenv("FEED_ORDER_ID"),
	}
	p := NewProcessor(clients.SQS, os.Getenv("NOTIFY_QUEUE_URL"), filter)

	// If RUN_LOCAL=true, tail the stream directly instead of waiting for a
	// Lambda trigger. STREAM_ARN points at the orders-table stream.
	if os.Getenv("RUN_LOCAL") == "true" {
		poller := feed.NewPoller(clients.Streams, os.Getenv("STREAM_ARN"), p.Listener(), 2*time.Second)
		if err := poller.Run(context.Background()); err != nil {
			log.Fatalf("feed poller stopped: %v", err)
		}
		return
	}

	lambda.Start(p.Handle)
}
