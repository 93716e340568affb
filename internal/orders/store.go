package orders

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/harshitm/go-catalog-orders/internal/aws"
)

// Store encapsulates operations on the orders table.
type Store struct {
	client    aws.DynamoDBAPI
	tableName string
	userIndex string // GSI: user_id hash key, created_at range key
	nowFunc   func() time.Time
}

// NewStore creates a new orders Store.
func NewStore(client aws.DynamoDBAPI, tableName, userIndex string) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
		userIndex: userIndex,
		nowFunc:   time.Now,
	}
}

// Insert persists the order on its own, outside any transaction. The placer
// uses PutTxItem instead so the order put commits together with the stock
// decrements.
func (s *Store) Insert(ctx context.Context, order Order) (*Order, error) {
	if order.CreatedAt.IsZero() {
		order.CreatedAt = s.nowFunc().UTC()
	}
	item, err := attributevalue.MarshalMap(order)
	if err != nil {
		return nil, fmt.Errorf("marshal order: %w", err)
	}
	_, err = s.client.PutItem(ctx, &dyn.PutItemInput{
		TableName:           &s.tableName,
		Item:                item,
		ConditionExpression: awsString("attribute_not_exists(order_id)"),
	})
	if err != nil {
		return nil, fmt.Errorf("put order: %w", err)
	}
	return &order, nil
}

// PutTxItem returns the order put as a transaction element.
func (s *Store) PutTxItem(order Order) (types.TransactWriteItem, error) {
	item, err := attributevalue.MarshalMap(order)
	if err != nil {
		return types.TransactWriteItem{}, fmt.Errorf("marshal order: %w", err)
	}
	return types.TransactWriteItem{
		Put: &types.Put{
			TableName:           &s.tableName,
			Item:                item,
			ConditionExpression: awsString("attribute_not_exists(order_id)"),
		},
	}, nil
}

// Get fetches an order by order_id. Returns (nil, nil) if not found.
func (s *Store) Get(ctx context.Context, orderID string) (*Order, error) {
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"order_id": &types.AttributeValueMemberS{Value: orderID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var o Order
	if err := attributevalue.UnmarshalMap(out.Item, &o); err != nil {
		return nil, fmt.Errorf("unmarshal order: %w", err)
	}
	return &o, nil
}

// ListByUser returns the user's orders newest first. A user with no orders
// gets an empty slice, not an error.
func (s *Store) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Order, error) {
	input := &dyn.QueryInput{
		TableName:              &s.tableName,
		IndexName:              &s.userIndex,
		KeyConditionExpression: awsString("user_id = :uid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: userID},
		},
		ScanIndexForward: awsBool(false), // created_at range key, newest first
	}

	var items []map[string]types.AttributeValue
	for {
		out, err := s.client.Query(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("query orders by user: %w", err)
		}
		items = append(items, out.Items...)
		if len(out.LastEvaluatedKey) == 0 || len(items) >= offset+limit {
			break
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}

	orders := make([]Order, 0, len(items))
	if err := attributevalue.UnmarshalListOfMaps(items, &orders); err != nil {
		return nil, fmt.Errorf("unmarshal orders: %w", err)
	}
	return page(orders, limit, offset), nil
}

// ListAll returns all orders newest first. Like the product listing this
// reads the full set before sorting; offset pagination has no native
// DynamoDB form.
func (s *Store) ListAll(ctx context.Context, limit, offset int) ([]Order, error) {
	input := &dyn.ScanInput{TableName: &s.tableName}

	var items []map[string]types.AttributeValue
	for {
		out, err := s.client.Scan(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("scan orders: %w", err)
		}
		items = append(items, out.Items...)
		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}

	orders := make([]Order, 0, len(items))
	if err := attributevalue.UnmarshalListOfMaps(items, &orders); err != nil {
		return nil, fmt.Errorf("unmarshal orders: %w", err)
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].CreatedAt.After(orders[j].CreatedAt) })
	return page(orders, limit, offset), nil
}

func page(orders []Order, limit, offset int) []Order {
	if offset >= len(orders) {
		return []Order{}
	}
	end := offset + limit
	if end > len(orders) {
		end = len(orders)
	}
	return orders[offset:end]
}

func awsString(s string) *string { return &s }

func awsBool(b bool) *bool { return &b }
