package orders

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/harshitm/go-catalog-orders/internal/products"
)

// totalTolerance absorbs float rounding between the caller-declared total and
// the computed one.
const totalTolerance = 0.01

// ProductResolver is the product lookup the validator needs.
type ProductResolver interface {
	Get(ctx context.Context, id string) (*products.Product, error)
}

// Validator resolves requested lines against the product store and computes
// the authoritative total from current store prices.
type Validator struct {
	products ProductResolver
}

// NewValidator creates a Validator backed by the given product lookup.
func NewValidator(p ProductResolver) *Validator {
	return &Validator{products: p}
}

// Validate checks each requested line in submission order and fails fast on
// the first bad one. On success it returns the resolved lines, each carrying
// the current unit price, and the running total.
//
// Quantities are checked against stock as seen now; a concurrent order can
// still consume stock between here and the decrement, where the conditional
// write is the authoritative gate.
func (v *Validator) Validate(ctx context.Context, items []LineRequest) ([]OrderLine, float64, error) {
	lines := make([]OrderLine, 0, len(items))
	var total float64

	for _, it := range items {
		if _, err := uuid.Parse(it.ProductID); err != nil {
			return nil, 0, &InvalidIdentifierError{ID: it.ProductID}
		}

		p, err := v.products.Get(ctx, it.ProductID)
		if err != nil {
			return nil, 0, fmt.Errorf("resolve product %s: %w", it.ProductID, err)
		}
		if p == nil {
			return nil, 0, &ProductNotFoundError{ID: it.ProductID}
		}

		if p.Quantity < it.Quantity {
			return nil, 0, &InsufficientStockError{
				ProductID: it.ProductID,
				Available: p.Quantity,
				Requested: it.Quantity,
			}
		}

		total += p.Price * float64(it.Quantity)
		lines = append(lines, OrderLine{
			ProductID:      p.ProductID,
			BoughtQuantity: it.Quantity,
			Price:          p.Price,
		})
	}

	return lines, total, nil
}

// CheckDeclaredTotal compares the caller-declared total against the computed
// one; the declared value is never trusted beyond this tolerance check.
func CheckDeclaredTotal(computed, declared float64) error {
	if math.Abs(computed-declared) > totalTolerance {
		return &TotalMismatchError{Computed: computed, Declared: declared}
	}
	return nil
}
