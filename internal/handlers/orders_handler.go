package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/euromart/storefront-notify/internal/aws"
	"github.com/euromart/storefront-notify/internal/dedup"
	"github.com/euromart/storefront-notify/internal/orders"
	"github.com/euromart/storefront-notify/internal/validation"
)

// HandlerConfig groups dependencies for the orders handler.
type HandlerConfig struct {
	DynamoDBClient aws.DynamoDBAPI
	DeliveryTable  string // notification_deliveries: doubles as the create-request idempotency table
	OrdersTable    string
	TTLWindow      time.Duration
}

// RegisterOrdersRoutes registers the storefront order API. Status change
// notifications are not sent from here: writes to the orders table surface on
// its change feed, and the feed worker owns transition detection.
func RegisterOrdersRoutes(r *gin.Engine, cfg HandlerConfig) {
	v := validation.New()
	dedupStore := dedup.NewStore(cfg.DynamoDBClient, cfg.DeliveryTable, cfg.TTLWindow)
	ordersStore := orders.NewStore(cfg.DynamoDBClient, cfg.OrdersTable)

	r.POST("/orders", func(c *gin.Context) {
		ctx := c.Request.Context()

		var req validation.CreateOrderRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			// BindAndValidate already wrote a 400
			return
		}

		idempKey := c.GetHeader("Idempotency-Key")
		if idempKey == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing_idempotency_key"})
			return
		}

		orderID := uuid.NewString()
		now := time.Now().UTC()

		idempItem := map[string]interface{}{
			"dedup_key":  idempKey,
			"status":     dedup.StatusInProgress,
			"order_id":   orderID,
			"created_at": now.Format(time.RFC3339),
			"updated_at": now.Format(time.RFC3339),
		}

		language := req.Language
		if language == "" {
			language = "uz"
		}
		order := orders.Order{
			OrderID:         orderID,
			OrderNumber:     orders.NewOrderNumber(),
			CustomerID:      req.CustomerID,
			Status:          orders.StatusPending,
			CustomerName:    req.CustomerName,
			CustomerPhone:   req.CustomerPhone,
			CustomerEmail:   req.CustomerEmail,
			DeliveryAddress: req.DeliveryAddress,
			TotalAmount:     req.TotalAmount,
			Language:        language,
			CreatedAt:       now,
		}
		items := make([]orders.Item, 0, len(req.Items))
		for _, it := range req.Items {
			items = append(items, orders.Item{
				ProductName: it.ProductName,
				Quantity:    it.Quantity,
				UnitPrice:   it.UnitPrice,
				LineTotal:   float64(it.Quantity) * it.UnitPrice,
			})
		}
		order.Items = items

		err := ordersStore.CreateWithIdempotencyTransaction(ctx, cfg.DeliveryTable, idempItem, order, cfg.TTLWindow)
		if err != nil {
			// The transaction cancels when the idempotency key already
			// exists. Fetch the record and decide from its status.
			rec, getErr := dedupStore.Get(ctx, idempKey)
			if getErr != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "idempotency_check_failed", "detail": getErr.Error()})
				return
			}
			if rec == nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "transaction_failed", "detail": err.Error()})
				return
			}
			switch rec.Status {
			case dedup.StatusDone:
				if rec.ResponseBody != "" {
					c.Data(rec.ResponseStatus, "application/json", []byte(rec.ResponseBody))
					return
				}
				c.JSON(http.StatusOK, gin.H{"order_id": rec.OrderID})
				return
			case dedup.StatusInProgress:
				c.JSON(http.StatusAccepted, gin.H{"message": "request already in progress", "order_id": rec.OrderID})
				return
			case dedup.StatusFailed:
				c.JSON(http.StatusInternalServerError, gin.H{"error": "previous_attempt_failed", "order_id": rec.OrderID})
				return
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"error": "unknown_idempotency_status"})
				return
			}
		}

		responseBody, _ := json.Marshal(gin.H{
			"order_id":     orderID,
			"order_number": order.OrderNumber,
			"status":       order.Status,
		})
		_ = dedupStore.MarkResponse(ctx, idempKey, string(responseBody), http.StatusCreated)

		c.Header("Location", fmt.Sprintf("/orders/%s", orderID))
		c.Data(http.StatusCreated, "application/json", responseBody)
	})

	r.GET("/orders/:id", func(c *gin.Context) {
		order, err := ordersStore.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "order_lookup_failed", "detail": err.Error()})
			return
		}
		if order == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "order_not_found"})
			return
		}
		c.JSON(http.StatusOK, order)
	})

	r.GET("/orders", func(c *gin.Context) {
		customerID := c.Query("customer_id")
		if customerID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing_customer_id"})
			return
		}
		list, err := ordersStore.ListByCustomer(c.Request.Context(), customerID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "order_list_failed", "detail": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"orders": list, "count": len(list)})
	})

	r.PATCH("/orders/:id/status", func(c *gin.Context) {
		ctx := c.Request.Context()

		var req validation.UpdateStatusRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}

		orderID := c.Param("id")
		if err := ordersStore.UpdateStatus(ctx, orderID, orders.Status(req.Status)); err != nil {
			if err == orders.ErrNotFound {
				c.JSON(http.StatusNotFound, gin.H{"error": "order_not_found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "status_update_failed", "detail": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"order_id": orderID, "status": req.Status})
	})
}
