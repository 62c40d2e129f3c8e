package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"

	"github.com/euromart/storefront-notify/internal/handlers"
)

func main() {
	cfg := handlers.TelegramRelayConfig{
		BotToken:      os.Getenv("TELEGRAM_BOT_TOKEN"),
		APIBaseURL:    os.Getenv("TELEGRAM_API_BASE_URL"),
		StorefrontURL: os.Getenv("STOREFRONT_URL"),
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	handlers.RegisterTelegramRelay(r, cfg)

	if os.Getenv("RUN_LOCAL") == "true" {
		addr := ":8081"
		log.Printf("running local telegram relay on %s", addr)
		if err := r.Run(addr); err != nil {
			log.Fatalf("failed to run local server: %v", err)
		}
		return
	}

	adapter := ginadapter.New(r)
	lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (interface{}, error) {
		return adapter.ProxyWithContext(ctx, req)
	})
}
