package handlers

import (
	"encoding/json"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"

	"github.com/euromart/storefront-notify/internal/aws"
	"github.com/euromart/storefront-notify/internal/channels"
	"github.com/euromart/storefront-notify/internal/subscriptions"
	"github.com/euromart/storefront-notify/internal/validation"
)

// PushRelayConfig configures the hosted web-push relay function.
type PushRelayConfig struct {
	DynamoDBClient  aws.DynamoDBAPI
	PushTable       string
	TelegramTable   string
	VAPIDPublicKey  string
	VAPIDPrivateKey string
	Subscriber      string // mailto: contact required by the push service
}

type pushResult struct {
	Endpoint string `json:"endpoint"`
	Success  bool   `json:"success"`
	Status   int    `json:"status,omitempty"`
	Error    string `json:"error,omitempty"`
}

// RegisterPushRelay registers POST /relay/push. The relay looks up the
// user's stored subscription, encrypts the payload with the VAPID keys, and
// posts it to the browser push service. A user with no subscription is a
// successful no-op, not an error.
func RegisterPushRelay(r *gin.Engine, cfg PushRelayConfig) {
	v := validation.New()
	store := subscriptions.NewStore(cfg.DynamoDBClient, cfg.PushTable, cfg.TelegramTable)

	r.POST("/relay/push", func(c *gin.Context) {
		if cfg.VAPIDPublicKey == "" || cfg.VAPIDPrivateKey == "" {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "configuration_error",
				"details": "VAPID keys are not set",
			})
			return
		}

		var req channels.PushRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}

		sub, err := store.GetPush(c.Request.Context(), req.UserID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "subscription_lookup_failed", "detail": err.Error()})
			return
		}
		if sub == nil {
			c.JSON(http.StatusOK, gin.H{
				"message":    "no subscription for user",
				"results":    []pushResult{},
				"total":      0,
				"successful": 0,
			})
			return
		}

		payload, err := json.Marshal(gin.H{
			"title": req.Title,
			"body":  req.Body,
			"icon":  "/icons/icon-192.png",
			"data":  req.Data,
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "payload_marshal_failed", "detail": err.Error()})
			return
		}

		results := make([]pushResult, 0, 1)
		successful := 0

		resp, err := webpush.SendNotificationWithContext(c.Request.Context(), payload, &webpush.Subscription{
			Endpoint: sub.Endpoint,
			Keys: webpush.Keys{
				P256dh: sub.Keys.P256dh,
				Auth:   sub.Keys.Auth,
			},
		}, &webpush.Options{
			Subscriber:      cfg.Subscriber,
			VAPIDPublicKey:  cfg.VAPIDPublicKey,
			VAPIDPrivateKey: cfg.VAPIDPrivateKey,
			TTL:             60,
		})
		if err != nil {
			results = append(results, pushResult{Endpoint: sub.Endpoint, Success: false, Error: err.Error()})
		} else {
			defer resp.Body.Close()
			ok := resp.StatusCode < 300
			if ok {
				successful++
			}
			results = append(results, pushResult{Endpoint: sub.Endpoint, Success: ok, Status: resp.StatusCode})
		}

		c.JSON(http.StatusOK, gin.H{
			"message":    "push dispatched",
			"results":    results,
			"total":      len(results),
			"successful": successful,
		})
	})
}
