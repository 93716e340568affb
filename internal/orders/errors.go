package orders

import "fmt"

// InvalidIdentifierError reports a malformed product id, detected before any
// store access.
type InvalidIdentifierError struct {
	ID string
}

func (e *InvalidIdentifierError) Error() string {
	return fmt.Sprintf("invalid product id: %s", e.ID)
}

// ProductNotFoundError reports a well-formed id with no matching product.
type ProductNotFoundError struct {
	ID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product not found: %s", e.ID)
}

// InsufficientStockError reports a line asking for more units than are on
// hand. It can surface at validation time or, after a lost race, at
// decrement time.
type InsufficientStockError struct {
	ProductID string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: available %d, requested %d",
		e.ProductID, e.Available, e.Requested)
}

// TotalMismatchError reports a declared total that differs from the computed
// total by more than the tolerance.
type TotalMismatchError struct {
	Computed float64
	Declared float64
}

func (e *TotalMismatchError) Error() string {
	return fmt.Sprintf("total amount mismatch: computed %.2f, declared %.2f",
		e.Computed, e.Declared)
}
