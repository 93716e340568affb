package orders

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/harshitm/go-catalog-orders/internal/dynamotest"
	"github.com/harshitm/go-catalog-orders/internal/products"
)

const (
	productsTable = "products"
	ordersTable   = "orders"
)

func newTestPlacer(mock *dynamotest.Mock) (*Placer, *products.Store, *Store) {
	productStore := products.NewStore(mock, productsTable, "name-index")
	orderStore := NewStore(mock, ordersTable, "user_id-index")
	return NewPlacer(mock, productStore, orderStore), productStore, orderStore
}

func mustCreateProduct(t *testing.T, s *products.Store, name string, price float64, qty int) *products.Product {
	t.Helper()
	p, err := s.Create(context.Background(), name, price, qty)
	if err != nil {
		t.Fatalf("create product %s: %v", name, err)
	}
	return p
}

var address = map[string]interface{}{
	"street":  "123 Main St",
	"city":    "New York",
	"zip":     "10001",
	"country": "USA",
}

func TestPlace_Success(t *testing.T) {
	mock := dynamotest.New()
	placer, productStore, orderStore := newTestPlacer(mock)
	ctx := context.Background()

	laptop := mustCreateProduct(t, productStore, "Laptop", 999.99, 10)

	order, err := placer.Place(ctx, "user123",
		[]LineRequest{{ProductID: laptop.ProductID, Quantity: 2}}, 1999.98, address)
	if err != nil {
		t.Fatalf("Place: %v", err)
	}
	if order.OrderID == "" || order.CreatedAt.IsZero() {
		t.Fatalf("order not materialized: %+v", order)
	}
	if order.TotalAmount != 1999.98 {
		t.Fatalf("expected total 1999.98, got %.2f", order.TotalAmount)
	}
	if len(order.Items) != 1 || order.Items[0].Price != 999.99 {
		t.Fatalf("unexpected items: %+v", order.Items)
	}

	got, err := productStore.Get(ctx, laptop.ProductID)
	if err != nil {
		t.Fatalf("Get product: %v", err)
	}
	if got.Quantity != 8 {
		t.Fatalf("expected stock 8 after placement, got %d", got.Quantity)
	}

	persisted, err := orderStore.Get(ctx, order.OrderID)
	if err != nil {
		t.Fatalf("Get order: %v", err)
	}
	if persisted == nil || persisted.UserID != "user123" {
		t.Fatalf("order not persisted correctly: %+v", persisted)
	}
}

func TestPlace_TotalMismatch_NoSideEffects(t *testing.T) {
	mock := dynamotest.New()
	placer, productStore, _ := newTestPlacer(mock)
	ctx := context.Background()

	laptop := mustCreateProduct(t, productStore, "Laptop", 999.99, 10)

	_, err := placer.Place(ctx, "user123",
		[]LineRequest{{ProductID: laptop.ProductID, Quantity: 2}}, 1500.00, address)
	var mismatch *TotalMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected TotalMismatchError, got %v", err)
	}

	got, _ := productStore.Get(ctx, laptop.ProductID)
	if got.Quantity != 10 {
		t.Fatalf("rejected order must not touch stock, got %d", got.Quantity)
	}
	if mock.Len(ordersTable) != 0 {
		t.Fatal("rejected order must not be persisted")
	}
}

func TestPlace_InsufficientStock_NoSideEffects(t *testing.T) {
	mock := dynamotest.New()
	placer, productStore, _ := newTestPlacer(mock)
	ctx := context.Background()

	laptop := mustCreateProduct(t, productStore, "Laptop", 999.99, 3)

	_, err := placer.Place(ctx, "user123",
		[]LineRequest{{ProductID: laptop.ProductID, Quantity: 5}}, 4999.95, address)
	var stock *InsufficientStockError
	if !errors.As(err, &stock) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if stock.Available != 3 || stock.Requested != 5 {
		t.Fatalf("unexpected error fields: %+v", stock)
	}

	got, _ := productStore.Get(ctx, laptop.ProductID)
	if got.Quantity != 3 {
		t.Fatalf("stock must stay 3, got %d", got.Quantity)
	}
	if mock.Len(ordersTable) != 0 {
		t.Fatal("rejected order must not be persisted")
	}
}

// Repeated lines for the same product pass per-line validation individually
// but are coalesced into one conditioned decrement, so their sum is still
// gated against stock.
func TestPlace_DuplicateLinesExceedingStock(t *testing.T) {
	mock := dynamotest.New()
	placer, productStore, _ := newTestPlacer(mock)
	ctx := context.Background()

	laptop := mustCreateProduct(t, productStore, "Laptop", 100.0, 8)

	_, err := placer.Place(ctx, "user123", []LineRequest{
		{ProductID: laptop.ProductID, Quantity: 5},
		{ProductID: laptop.ProductID, Quantity: 5},
	}, 1000.00, address)
	var stock *InsufficientStockError
	if !errors.As(err, &stock) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if stock.Available != 8 || stock.Requested != 10 {
		t.Fatalf("unexpected error fields: %+v", stock)
	}

	got, _ := productStore.Get(ctx, laptop.ProductID)
	if got.Quantity != 8 {
		t.Fatalf("stock must stay 8, got %d", got.Quantity)
	}
	if mock.Len(ordersTable) != 0 {
		t.Fatal("no partial order may be persisted")
	}
}

func TestPlace_MultiLine_AllOrNothing(t *testing.T) {
	mock := dynamotest.New()
	placer, productStore, _ := newTestPlacer(mock)
	ctx := context.Background()

	laptop := mustCreateProduct(t, productStore, "Laptop", 1000.0, 10)
	mouse := mustCreateProduct(t, productStore, "Mouse", 20.0, 1)

	// second line exceeds stock; first line's decrement must not stick
	_, err := placer.Place(ctx, "user123", []LineRequest{
		{ProductID: laptop.ProductID, Quantity: 2},
		{ProductID: mouse.ProductID, Quantity: 3},
	}, 2060.00, address)
	var stock *InsufficientStockError
	if !errors.As(err, &stock) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if stock.ProductID != mouse.ProductID {
		t.Fatalf("expected mouse to be the failing line, got %s", stock.ProductID)
	}

	gotLaptop, _ := productStore.Get(ctx, laptop.ProductID)
	if gotLaptop.Quantity != 10 {
		t.Fatalf("laptop stock must stay 10, got %d", gotLaptop.Quantity)
	}
	gotMouse, _ := productStore.Get(ctx, mouse.ProductID)
	if gotMouse.Quantity != 1 {
		t.Fatalf("mouse stock must stay 1, got %d", gotMouse.Quantity)
	}
}

func TestPlace_ConcurrentContention(t *testing.T) {
	mock := dynamotest.New()
	placer, productStore, _ := newTestPlacer(mock)
	ctx := context.Background()

	laptop := mustCreateProduct(t, productStore, "Laptop", 100.0, 10)

	quantities := []int{7, 6} // cannot both fit into 10
	results := make([]error, len(quantities))
	var wg sync.WaitGroup
	for i, q := range quantities {
		wg.Add(1)
		go func(i, q int) {
			defer wg.Done()
			_, err := placer.Place(ctx, "user123",
				[]LineRequest{{ProductID: laptop.ProductID, Quantity: q}},
				float64(q)*100.0, address)
			results[i] = err
		}(i, q)
	}
	wg.Wait()

	var succeeded []int
	for i, err := range results {
		if err == nil {
			succeeded = append(succeeded, quantities[i])
			continue
		}
		var stock *InsufficientStockError
		if !errors.As(err, &stock) {
			t.Fatalf("loser must observe InsufficientStockError, got %v", err)
		}
	}
	if len(succeeded) != 1 {
		t.Fatalf("exactly one order must succeed, got %d", len(succeeded))
	}

	got, _ := productStore.Get(ctx, laptop.ProductID)
	want := 10 - succeeded[0]
	if got.Quantity != want {
		t.Fatalf("expected stock %d, got %d", want, got.Quantity)
	}
	if got.Quantity < 0 {
		t.Fatal("stock must never go negative")
	}
}
