package products

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/google/uuid"

	"github.com/harshitm/go-catalog-orders/internal/aws"
)

// ErrDuplicateName is returned by Create when a product with the same name exists.
var ErrDuplicateName = errors.New("product with this name already exists")

// ErrInsufficientStock is returned by DecrementQuantity when the conditional
// decrement fails because fewer units are on hand than requested.
var ErrInsufficientStock = errors.New("insufficient stock")

// Store encapsulates operations on the products table.
type Store struct {
	client    aws.DynamoDBAPI
	tableName string
	nameIndex string // GSI with name as hash key, backs the duplicate-name guard
	nowFunc   func() time.Time
}

// NewStore creates a new products Store.
func NewStore(client aws.DynamoDBAPI, tableName, nameIndex string) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
		nameIndex: nameIndex,
		nowFunc:   time.Now,
	}
}

// Create persists a new product. Names are unique: an existing product with
// the same name yields ErrDuplicateName. The existence check and the put are
// two separate calls, the same window the original system accepted.
func (s *Store) Create(ctx context.Context, name string, price float64, quantity int) (*Product, error) {
	out, err := s.client.Query(ctx, &dyn.QueryInput{
		TableName:                &s.tableName,
		IndexName:                &s.nameIndex,
		KeyConditionExpression:   awsString("#n = :name"),
		ExpressionAttributeNames: map[string]string{"#n": "name"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":name": &types.AttributeValueMemberS{Value: name},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("query name index: %w", err)
	}
	if out.Count > 0 {
		return nil, ErrDuplicateName
	}

	p := Product{
		ProductID: uuid.NewString(),
		Name:      name,
		NameLC:    strings.ToLower(name),
		Price:     price,
		Quantity:  quantity,
		CreatedAt: s.nowFunc().UTC(),
	}
	item, err := attributevalue.MarshalMap(p)
	if err != nil {
		return nil, fmt.Errorf("marshal product: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dyn.PutItemInput{
		TableName:           &s.tableName,
		Item:                item,
		ConditionExpression: awsString("attribute_not_exists(product_id)"),
	})
	if err != nil {
		return nil, fmt.Errorf("put product: %w", err)
	}
	return &p, nil
}

// Get fetches a product by product_id. Returns (nil, nil) if not found.
// Callers must validate id well-formedness before reaching the store.
func (s *Store) Get(ctx context.Context, id string) (*Product, error) {
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"product_id": &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var p Product
	if err := attributevalue.UnmarshalMap(out.Item, &p); err != nil {
		return nil, fmt.Errorf("unmarshal product: %w", err)
	}
	return &p, nil
}

// List scans the table with the given filter and returns products newest
// first, sliced by offset/limit. The full matching set is read before
// sorting; offset pagination has no native DynamoDB form.
func (s *Store) List(ctx context.Context, f Filter, limit, offset int) ([]Product, error) {
	var exprParts []string
	values := map[string]types.AttributeValue{}
	if f.Name != "" {
		exprParts = append(exprParts, "contains(name_lc, :name)")
		values[":name"] = &types.AttributeValueMemberS{Value: strings.ToLower(f.Name)}
	}
	if f.MinPrice != nil {
		exprParts = append(exprParts, "price >= :min")
		values[":min"] = &types.AttributeValueMemberN{Value: formatFloat(*f.MinPrice)}
	}
	if f.MaxPrice != nil {
		exprParts = append(exprParts, "price <= :max")
		values[":max"] = &types.AttributeValueMemberN{Value: formatFloat(*f.MaxPrice)}
	}

	input := &dyn.ScanInput{TableName: &s.tableName}
	if len(exprParts) > 0 {
		expr := strings.Join(exprParts, " AND ")
		input.FilterExpression = &expr
		input.ExpressionAttributeValues = values
	}

	var items []map[string]types.AttributeValue
	for {
		out, err := s.client.Scan(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("scan products: %w", err)
		}
		items = append(items, out.Items...)
		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}

	list := make([]Product, 0, len(items))
	if err := attributevalue.UnmarshalListOfMaps(items, &list); err != nil {
		return nil, fmt.Errorf("unmarshal products: %w", err)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })

	if offset >= len(list) {
		return []Product{}, nil
	}
	end := offset + limit
	if end > len(list) {
		end = len(list)
	}
	return list[offset:end], nil
}

// DecrementQuantity atomically subtracts n units, failing without effect when
// fewer than n are on hand. This is the single mutation point for stock; the
// condition is what prevents lost updates under concurrent orders.
func (s *Store) DecrementQuantity(ctx context.Context, id string, n int) error {
	_, err := s.client.UpdateItem(ctx, &dyn.UpdateItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"product_id": &types.AttributeValueMemberS{Value: id},
		},
		UpdateExpression:    awsString("SET quantity = quantity - :n"),
		ConditionExpression: awsString("quantity >= :n"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":n": &types.AttributeValueMemberN{Value: strconv.Itoa(n)},
		},
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "ConditionalCheckFailedException" {
			return ErrInsufficientStock
		}
		return fmt.Errorf("decrement quantity: %w", err)
	}
	return nil
}

// DecrementTxItem returns the conditional decrement as a transaction element,
// so an order placement can commit all of its line decrements together with
// the order put in one TransactWriteItems call.
func (s *Store) DecrementTxItem(id string, n int) types.TransactWriteItem {
	return types.TransactWriteItem{
		Update: &types.Update{
			TableName: &s.tableName,
			Key: map[string]types.AttributeValue{
				"product_id": &types.AttributeValueMemberS{Value: id},
			},
			UpdateExpression:    awsString("SET quantity = quantity - :n"),
			ConditionExpression: awsString("quantity >= :n"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":n": &types.AttributeValueMemberN{Value: strconv.Itoa(n)},
			},
		},
	}
}

func formatFloat(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

func awsString(s string) *string { return &s }
