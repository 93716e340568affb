package products

import "time"

// Product is the item stored in the products DynamoDB table.
// NameLC is a lowercased copy of Name kept for case-insensitive
// substring filtering, since contains() is case-sensitive.
type Product struct {
	ProductID string    `dynamodbav:"product_id"` // PK
	Name      string    `dynamodbav:"name"`       // unique, enforced via name-index lookup
	NameLC    string    `dynamodbav:"name_lc"`
	Price     float64   `dynamodbav:"price"`
	Quantity  int       `dynamodbav:"quantity"` // never negative; mutated only by conditional decrement
	CreatedAt time.Time `dynamodbav:"created_at"`
}

// Filter narrows a product listing. Name matches as a case-insensitive
// substring; the price bounds are inclusive.
type Filter struct {
	Name     string
	MinPrice *float64
	MaxPrice *float64
}
