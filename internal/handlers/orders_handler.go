package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harshitm/go-catalog-orders/internal/aws"
	"github.com/harshitm/go-catalog-orders/internal/orders"
	"github.com/harshitm/go-catalog-orders/internal/products"
	"github.com/harshitm/go-catalog-orders/internal/validation"
)

// RegisterOrderRoutes registers routes for the order API.
func RegisterOrderRoutes(r *gin.Engine, cfg HandlerConfig) {
	v := validation.New()
	productStore := products.NewStore(cfg.DynamoDBClient, cfg.ProductsTable, cfg.ProductNameIndex)
	orderStore := orders.NewStore(cfg.DynamoDBClient, cfg.OrdersTable, cfg.OrdersByUserIndex)
	placer := orders.NewPlacer(cfg.DynamoDBClient, productStore, orderStore)
	publisher := aws.NewPublisher(cfg.SQSClient, cfg.QueueURL)
	metrics := aws.NewMetrics(cfg.CloudWatchClient, cfg.MetricsNamespace)

	r.POST("/orders", func(c *gin.Context) {
		ctx := c.Request.Context()

		var req validation.CreateOrderRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			// BindAndValidate already wrote a 400
			return
		}

		// Owner identity comes from the auth layer in front of this service;
		// without one, fall back to the configured single-user identity.
		userID := c.GetHeader("X-User-Id")
		if userID == "" {
			userID = cfg.DefaultUserID
		}

		items := make([]orders.LineRequest, 0, len(req.Items))
		for _, it := range req.Items {
			items = append(items, orders.LineRequest{ProductID: it.ProductID, Quantity: it.BoughtQuantity})
		}

		order, err := placer.Place(ctx, userID, items, req.TotalAmount, req.UserAddress)
		if err != nil {
			if merr := metrics.Count(ctx, "OrdersRejected"); merr != nil {
				slog.Error("emit metric failed", "metric", "OrdersRejected", "err", merr)
			}
			writeOrderError(c, err)
			return
		}

		if merr := metrics.Count(ctx, "OrdersPlaced"); merr != nil {
			slog.Error("emit metric failed", "metric", "OrdersPlaced", "err", merr)
		}
		// The order is committed; a publish failure is logged, not surfaced.
		ev := aws.OrderPlacedEvent{OrderID: order.OrderID, UserID: order.UserID, TotalAmount: order.TotalAmount}
		if perr := publisher.PublishOrderPlaced(ctx, ev); perr != nil {
			slog.Error("publish order-placed event failed", "order_id", order.OrderID, "err", perr)
		}

		slog.Info("order placed", "order_id", order.OrderID, "user_id", order.UserID, "total_amount", order.TotalAmount)
		c.JSON(http.StatusCreated, toOrderResponse(order))
	})

	r.GET("/orders", func(c *gin.Context) {
		ctx := c.Request.Context()

		limit, offset, err := parsePagination(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		list, err := orderStore.ListAll(ctx, limit, offset)
		if err != nil {
			slog.Error("list orders failed", "err", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		c.JSON(http.StatusOK, toOrderResponses(list))
	})

	r.GET("/orders/:user_id", func(c *gin.Context) {
		ctx := c.Request.Context()

		limit, offset, err := parsePagination(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		list, err := orderStore.ListByUser(ctx, c.Param("user_id"), limit, offset)
		if err != nil {
			slog.Error("list user orders failed", "user_id", c.Param("user_id"), "err", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		c.JSON(http.StatusOK, toOrderResponses(list))
	})
}

// writeOrderError maps the domain error taxonomy to client statuses; anything
// unexpected stays opaque.
func writeOrderError(c *gin.Context, err error) {
	var (
		invalidID *orders.InvalidIdentifierError
		notFound  *orders.ProductNotFoundError
		stock     *orders.InsufficientStockError
		mismatch  *orders.TotalMismatchError
	)
	switch {
	case errors.As(err, &invalidID):
		c.JSON(http.StatusBadRequest, gin.H{"error": invalidID.Error()})
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFound.Error()})
	case errors.As(err, &stock):
		c.JSON(http.StatusBadRequest, gin.H{"error": stock.Error()})
	case errors.As(err, &mismatch):
		c.JSON(http.StatusBadRequest, gin.H{"error": mismatch.Error()})
	default:
		slog.Error("place order failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func toOrderResponse(o *orders.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, orderItemResponse{
			ProductID:      it.ProductID,
			BoughtQuantity: it.BoughtQuantity,
			Price:          it.Price,
		})
	}
	return orderResponse{
		ID:          o.OrderID,
		Items:       items,
		TotalAmount: o.TotalAmount,
		UserAddress: o.UserAddress,
		CreatedAt:   o.CreatedAt,
	}
}

func toOrderResponses(list []orders.Order) []orderResponse {
	resp := make([]orderResponse, 0, len(list))
	for i := range list {
		resp = append(resp, toOrderResponse(&list[i]))
	}
	return resp
}
