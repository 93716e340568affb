package validation

// CreateProductRequest is the payload for POST /products.
// Quantity is a pointer so an explicit zero passes required.
type CreateProductRequest struct {
	Name     string  `json:"name" validate:"required,min=1"`
	Price    float64 `json:"price" validate:"required,gt=0"`
	Quantity *int    `json:"quantity" validate:"required,gte=0"`
}

// OrderItemRequest is a single requested line of POST /orders.
type OrderItemRequest struct {
	ProductID      string `json:"product_id" validate:"required"`
	BoughtQuantity int    `json:"bought_quantity" validate:"required,gt=0"`
}

// CreateOrderRequest is the payload for POST /orders. TotalAmount is the
// caller's declared total, checked later against store prices; UserAddress is
// opaque free-form data.
type CreateOrderRequest struct {
	Items       []OrderItemRequest     `json:"items" validate:"required,min=1,dive"`
	TotalAmount float64                `json:"total_amount" validate:"required,gt=0"`
	UserAddress map[string]interface{} `json:"user_address" validate:"required"`
}
