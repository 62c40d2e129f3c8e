package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"

	"github.com/euromart/storefront-notify/internal/aws"
	"github.com/euromart/storefront-notify/internal/handlers"
)

func setupRouter(ordersCfg handlers.HandlerConfig, subsCfg handlers.SubscriptionsConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// health
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	handlers.RegisterOrdersRoutes(r, ordersCfg)
	handlers.RegisterSubscriptionRoutes(r, subsCfg)

	return r
}

func main() {
	clients, err := aws.NewAWSClients(context.Background())
	if err != nil {
		log.Fatalf("failed to init aws clients: %v", err)
	}

	ordersCfg := handlers.HandlerConfig{
		DynamoDBClient: clients.DynamoDB,
		DeliveryTable:  os.Getenv("DELIVERY_TABLE"),
		OrdersTable:    os.Getenv("ORDERS_TABLE"),
		TTLWindow:      48 * time.Hour,
	}
	subsCfg := handlers.SubscriptionsConfig{
		DynamoDBClient: clients.DynamoDB,
		PushTable:      os.Getenv("PUSH_TABLE"),
		TelegramTable:  os.Getenv("TELEGRAM_TABLE"),
	}

	r := setupRouter(ordersCfg, subsCfg)

	// if environment variable RUN_LOCAL is set to "true", run local HTTP server for development.
	if os.Getenv("RUN_LOCAL") == "true" {
		addr := ":8080"
		log.Printf("running local server on %s", addr)
		if err := r.Run(addr); err != nil {
			log.Fatalf("failed to run local server: %v", err)
		}
		return
	}

	// lambda adapter
	adapter := ginadapter.New(r)

	lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (interface{}, error) {
		return adapter.ProxyWithContext(ctx, req)
	})
}
