package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/euromart/storefront-notify/internal/aws"
	"github.com/euromart/storefront-notify/internal/subscriptions"
	"github.com/euromart/storefront-notify/internal/validation"
)

// SubscriptionsConfig groups dependencies for the subscription registry
// routes.
type SubscriptionsConfig struct {
	DynamoDBClient aws.DynamoDBAPI
	PushTable      string
	TelegramTable  string
}

// RegisterSubscriptionRoutes registers the push-subscription and Telegram
// link endpoints. Both writes are plain upserts: re-registering replaces the
// previous row for the same key.
func RegisterSubscriptionRoutes(r *gin.Engine, cfg SubscriptionsConfig) {
	v := validation.New()
	store := subscriptions.NewStore(cfg.DynamoDBClient, cfg.PushTable, cfg.TelegramTable)

	r.POST("/push/subscriptions", func(c *gin.Context) {
		var req validation.RegisterSubscriptionRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}

		sub := subscriptions.PushSubscription{
			UserID:   req.UserID,
			Endpoint: req.Endpoint,
			Keys: subscriptions.SubscriptionKeys{
				P256dh: req.Keys.P256dh,
				Auth:   req.Keys.Auth,
			},
			Granted: req.Granted,
		}
		if err := store.UpsertPush(c.Request.Context(), sub); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "subscription_save_failed", "detail": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "subscription saved", "user_id": req.UserID})
	})

	r.DELETE("/push/subscriptions/:user_id", func(c *gin.Context) {
		if err := store.DeletePush(c.Request.Context(), c.Param("user_id")); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "subscription_delete_failed", "detail": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "subscription removed"})
	})

	r.POST("/telegram/links", func(c *gin.Context) {
		var req validation.LinkTelegramRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}

		user := subscriptions.TelegramUser{
			ChatID:            req.ChatID,
			UserID:            req.UserID,
			Phone:             req.Phone,
			DisplayName:       req.DisplayName,
			Language:          req.Language,
			LanguageConfirmed: req.Language != "",
		}
		if err := store.UpsertTelegram(c.Request.Context(), user); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "telegram_link_failed", "detail": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "telegram chat linked", "chat_id": req.ChatID})
	})
}
