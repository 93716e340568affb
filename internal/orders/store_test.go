package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/harshitm/go-catalog-orders/internal/dynamotest"
)

func seedOrder(t *testing.T, s *Store, userID string, createdAt time.Time) *Order {
	t.Helper()
	o, err := s.Insert(context.Background(), Order{
		OrderID: uuid.NewString(),
		UserID:  userID,
		Items: []OrderLine{
			{ProductID: uuid.NewString(), BoughtQuantity: 1, Price: 10.0},
		},
		TotalAmount: 10.0,
		UserAddress: map[string]interface{}{"city": "New York"},
		CreatedAt:   createdAt,
	})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	return o
}

func TestInsert_Get_Roundtrip(t *testing.T) {
	mock := dynamotest.New()
	s := NewStore(mock, "orders", "user_id-index")

	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	o := seedOrder(t, s, "user123", created)

	got, err := s.Get(context.Background(), o.OrderID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil {
		t.Fatal("expected order, got nil")
	}
	if got.UserID != "user123" || got.TotalAmount != 10.0 || len(got.Items) != 1 {
		t.Fatalf("roundtrip mismatch: %+v", got)
	}
	if !got.CreatedAt.Equal(created) {
		t.Fatalf("created_at mismatch: %v", got.CreatedAt)
	}
	if got.UserAddress["city"] != "New York" {
		t.Fatalf("address mismatch: %+v", got.UserAddress)
	}
}

func TestListByUser_NewestFirst(t *testing.T) {
	mock := dynamotest.New()
	s := NewStore(mock, "orders", "user_id-index")

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	first := seedOrder(t, s, "alice", base)
	second := seedOrder(t, s, "alice", base.Add(time.Minute))
	seedOrder(t, s, "bob", base.Add(2*time.Minute))

	got, err := s.ListByUser(context.Background(), "alice", 10, 0)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 orders for alice, got %d", len(got))
	}
	if got[0].OrderID != second.OrderID || got[1].OrderID != first.OrderID {
		t.Fatalf("expected newest first, got %s then %s", got[0].OrderID, got[1].OrderID)
	}
}

func TestListByUser_NoOrders(t *testing.T) {
	mock := dynamotest.New()
	s := NewStore(mock, "orders", "user_id-index")

	got, err := s.ListByUser(context.Background(), "nobody", 10, 0)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty slice, got %v", got)
	}
}

func TestListAll_Pagination(t *testing.T) {
	mock := dynamotest.New()
	s := NewStore(mock, "orders", "user_id-index")

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ids := make([]string, 5)
	for i := 0; i < 5; i++ {
		ids[i] = seedOrder(t, s, "user123", base.Add(time.Duration(i)*time.Minute)).OrderID
	}

	page, err := s.ListAll(context.Background(), 2, 1)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(page))
	}
	// newest first: offset 1 skips ids[4]
	if page[0].OrderID != ids[3] || page[1].OrderID != ids[2] {
		t.Fatalf("unexpected page: %s, %s", page[0].OrderID, page[1].OrderID)
	}

	tail, err := s.ListAll(context.Background(), 10, 4)
	if err != nil {
		t.Fatalf("ListAll tail: %v", err)
	}
	if len(tail) != 1 || tail[0].OrderID != ids[0] {
		t.Fatalf("unexpected tail: %+v", tail)
	}
}
