package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"github.com/harshitm/go-catalog-orders/internal/aws"
	"github.com/harshitm/go-catalog-orders/internal/products"
)

// Placer orchestrates order placement: validation, stock decrement and order
// persistence. The decrements and the order put commit in a single
// TransactWriteItems call, so stock is never left partially decremented when
// a multi-line order fails.
type Placer struct {
	client    aws.DynamoDBAPI
	products  *products.Store
	orders    *Store
	validator *Validator
	nowFunc   func() time.Time
}

// NewPlacer creates a Placer over the two stores.
func NewPlacer(client aws.DynamoDBAPI, productStore *products.Store, orderStore *Store) *Placer {
	return &Placer{
		client:    client,
		products:  productStore,
		orders:    orderStore,
		validator: NewValidator(productStore),
		nowFunc:   time.Now,
	}
}

// Place validates the requested items, checks the declared total, then
// commits the order. Validation failures abort with no side effects. A line
// that passed validation can still lose a race to concurrent orders; the
// transaction's conditional decrements are the authoritative gate and surface
// InsufficientStockError without committing anything.
func (pl *Placer) Place(ctx context.Context, userID string, items []LineRequest, declaredTotal float64, address map[string]interface{}) (*Order, error) {
	lines, total, err := pl.validator.Validate(ctx, items)
	if err != nil {
		return nil, err
	}
	if err := CheckDeclaredTotal(total, declaredTotal); err != nil {
		return nil, err
	}

	// One decrement per product: a transaction cannot touch the same item
	// twice, so repeated lines for a product are coalesced. The summed
	// condition also catches duplicates that individually fit the stock but
	// jointly exceed it.
	type decrement struct {
		productID string
		quantity  int
	}
	var decs []decrement
	byProduct := map[string]int{}
	for _, ln := range lines {
		if i, ok := byProduct[ln.ProductID]; ok {
			decs[i].quantity += ln.BoughtQuantity
			continue
		}
		byProduct[ln.ProductID] = len(decs)
		decs = append(decs, decrement{productID: ln.ProductID, quantity: ln.BoughtQuantity})
	}

	order := Order{
		OrderID:     uuid.NewString(),
		UserID:      userID,
		Items:       lines,
		TotalAmount: total,
		UserAddress: address,
		CreatedAt:   pl.nowFunc().UTC(),
	}

	tx := make([]types.TransactWriteItem, 0, len(decs)+1)
	for _, d := range decs {
		tx = append(tx, pl.products.DecrementTxItem(d.productID, d.quantity))
	}
	putItem, err := pl.orders.PutTxItem(order)
	if err != nil {
		return nil, err
	}
	tx = append(tx, putItem)

	_, err = pl.client.TransactWriteItems(ctx, &dyn.TransactWriteItemsInput{TransactItems: tx})
	if err != nil {
		var tce *types.TransactionCanceledException
		if errors.As(err, &tce) {
			// Cancellation reasons are positional: the first len(decs)
			// entries are the decrements, in order.
			for i, reason := range tce.CancellationReasons {
				if i >= len(decs) || reason.Code == nil || *reason.Code != "ConditionalCheckFailed" {
					continue
				}
				available := 0
				if p, gerr := pl.products.Get(ctx, decs[i].productID); gerr == nil && p != nil {
					available = p.Quantity
				}
				return nil, &InsufficientStockError{
					ProductID: decs[i].productID,
					Available: available,
					Requested: decs[i].quantity,
				}
			}
		}
		return nil, fmt.Errorf("commit order %s: %w", order.OrderID, err)
	}

	return &order, nil
}
