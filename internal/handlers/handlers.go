package handlers

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/harshitm/go-catalog-orders/internal/aws"
)

// HandlerConfig groups dependencies for the route handlers.
type HandlerConfig struct {
	DynamoDBClient    aws.DynamoDBAPI
	SQSClient         aws.SQSAPI
	CloudWatchClient  aws.CloudWatchAPI
	ProductsTable     string
	ProductNameIndex  string
	OrdersTable       string
	OrdersByUserIndex string
	QueueURL          string
	MetricsNamespace  string
	DefaultUserID     string
}

const (
	defaultLimit = 10
	maxLimit     = 100
)

// parsePagination reads limit/offset query params with the shared bounds:
// limit in [1,100] defaulting to 10, offset >= 0 defaulting to 0.
func parsePagination(c *gin.Context) (limit, offset int, err error) {
	limit = defaultLimit
	if s := c.Query("limit"); s != "" {
		n, perr := strconv.Atoi(s)
		if perr != nil || n < 1 || n > maxLimit {
			return 0, 0, fmt.Errorf("limit must be an integer between 1 and %d", maxLimit)
		}
		limit = n
	}
	if s := c.Query("offset"); s != "" {
		n, perr := strconv.Atoi(s)
		if perr != nil || n < 0 {
			return 0, 0, fmt.Errorf("offset must be a non-negative integer")
		}
		offset = n
	}
	return limit, offset, nil
}

type productResponse struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

type orderItemResponse struct {
	ProductID      string  `json:"product_id"`
	BoughtQuantity int     `json:"bought_quantity"`
	Price          float64 `json:"price"`
}

type orderResponse struct {
	ID          string                 `json:"id"`
	Items       []orderItemResponse    `json:"items"`
	TotalAmount float64                `json:"total_amount"`
	UserAddress map[string]interface{} `json:"user_address"`
	CreatedAt   time.Time              `json:"created_at"`
}
