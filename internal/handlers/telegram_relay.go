package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/euromart/storefront-notify/internal/telegram"
	"github.com/euromart/storefront-notify/internal/validation"
)

// TelegramRelayConfig configures the hosted Telegram relay function.
type TelegramRelayConfig struct {
	BotToken      string
	APIBaseURL    string // "" means the real Bot API
	StorefrontURL string
}

// RegisterTelegramRelay registers POST /relay/telegram. The relay renders the
// receipt message and forwards it to the Bot API in a single attempt; every
// upstream failure is passed through to the caller with the raw Bot API body.
func RegisterTelegramRelay(r *gin.Engine, cfg TelegramRelayConfig) {
	v := validation.New()

	r.POST("/relay/telegram", func(c *gin.Context) {
		// A missing token is a deployment fault. Fail before any outbound
		// call is attempted.
		if cfg.BotToken == "" {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "configuration_error",
				"details": "TELEGRAM_BOT_TOKEN is not set",
			})
			return
		}

		var payload telegram.RelayPayload
		if err := validation.BindAndValidate(c, &payload, v); err != nil {
			return
		}

		client := telegram.NewClient(cfg.BotToken, cfg.APIBaseURL)
		text := telegram.BuildReceipt(payload, time.Now())
		keyboard := telegram.BuildKeyboard(cfg.StorefrontURL)

		messageID, err := client.SendMessage(c.Request.Context(), payload.ChatID, text, keyboard)
		if err != nil {
			var apiErr *telegram.APIError
			if errors.As(err, &apiErr) {
				if apiErr.ChatNotFound() {
					c.JSON(http.StatusNotFound, gin.H{
						"error":   "chat_not_found",
						"details": apiErr.Body,
					})
					return
				}
				c.JSON(http.StatusInternalServerError, gin.H{
					"error":   "telegram_send_failed",
					"details": apiErr.Body,
				})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "telegram_send_failed",
				"details": err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":             true,
			"telegram_message_id": messageID,
			"chat_id":             payload.ChatID,
		})
	})
}
