package orders

import "time"

// OrderLine is a purchased item with the unit price captured at order time,
// decoupled from later product price changes.
type OrderLine struct {
	ProductID      string  `dynamodbav:"product_id"`
	BoughtQuantity int     `dynamodbav:"bought_quantity"`
	Price          float64 `dynamodbav:"price"`
}

// LineRequest is a caller-supplied item before validation.
type LineRequest struct {
	ProductID string
	Quantity  int
}

// Order is the item stored in the orders DynamoDB table. Once placed it is
// immutable; no update or delete operations exist.
type Order struct {
	OrderID     string                 `dynamodbav:"order_id"` // PK
	UserID      string                 `dynamodbav:"user_id"`  // hash key of user_id-index
	Items       []OrderLine            `dynamodbav:"items"`    // submission order preserved
	TotalAmount float64                `dynamodbav:"total_amount"`
	UserAddress map[string]interface{} `dynamodbav:"user_address"` // opaque to this service
	CreatedAt   time.Time              `dynamodbav:"created_at"`
}
