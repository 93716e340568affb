// Package dynamotest provides an in-memory DynamoDB double for unit tests.
// It understands only the expressions the stores actually issue: conditional
// puts on the primary key, the quantity decrement, the name/user_id index
// queries and the product listing filters.
package dynamotest

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Mock stores items per table keyed by primary key value (product_id or
// order_id). All operations share one mutex, so TransactWriteItems is atomic
// with respect to concurrent callers, like the real service.
type Mock struct {
	mu     sync.Mutex
	tables map[string]map[string]map[string]types.AttributeValue

	// error injection for unavailability paths
	GetErr      error
	PutErr      error
	UpdateErr   error
	QueryErr    error
	ScanErr     error
	TransactErr error
}

// New returns an empty Mock.
func New() *Mock {
	return &Mock{tables: map[string]map[string]map[string]types.AttributeValue{}}
}

// Seed inserts an item directly, bypassing conditions.
func (m *Mock) Seed(table string, item map[string]types.AttributeValue) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensureTable(table)
	m.tables[table][pkOf(item)] = item
}

// Item returns a stored item or nil.
func (m *Mock) Item(table, pk string) map[string]types.AttributeValue {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensureTable(table)
	return m.tables[table][pk]
}

// Len returns the number of items in a table.
func (m *Mock) Len(table string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensureTable(table)
	return len(m.tables[table])
}

func (m *Mock) ensureTable(tbl string) {
	if _, ok := m.tables[tbl]; !ok {
		m.tables[tbl] = map[string]map[string]types.AttributeValue{}
	}
}

func pkOf(attrs map[string]types.AttributeValue) string {
	for _, k := range []string{"product_id", "order_id"} {
		if v, ok := attrs[k]; ok {
			return v.(*types.AttributeValueMemberS).Value
		}
	}
	return ""
}

func strAttr(item map[string]types.AttributeValue, name string) (string, bool) {
	v, ok := item[name].(*types.AttributeValueMemberS)
	if !ok {
		return "", false
	}
	return v.Value, true
}

func numAttr(item map[string]types.AttributeValue, name string) (float64, bool) {
	v, ok := item[name].(*types.AttributeValueMemberN)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(v.Value, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func (m *Mock) PutItem(ctx context.Context, params *dyn.PutItemInput, optFns ...func(*dyn.Options)) (*dyn.PutItemOutput, error) {
	if m.PutErr != nil {
		return nil, m.PutErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	table := *params.TableName
	m.ensureTable(table)

	pk := pkOf(params.Item)
	if pk == "" {
		return nil, errors.New("no primary key in put item")
	}
	if params.ConditionExpression != nil && strings.HasPrefix(*params.ConditionExpression, "attribute_not_exists(") {
		if _, exists := m.tables[table][pk]; exists {
			return nil, &types.ConditionalCheckFailedException{}
		}
	}
	m.tables[table][pk] = params.Item
	return &dyn.PutItemOutput{}, nil
}

func (m *Mock) GetItem(ctx context.Context, params *dyn.GetItemInput, optFns ...func(*dyn.Options)) (*dyn.GetItemOutput, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	table := *params.TableName
	m.ensureTable(table)

	pk := pkOf(params.Key)
	if pk == "" {
		return nil, errors.New("no key attribute")
	}
	item, ok := m.tables[table][pk]
	if !ok {
		return &dyn.GetItemOutput{}, nil
	}
	return &dyn.GetItemOutput{Item: item}, nil
}

func (m *Mock) UpdateItem(ctx context.Context, params *dyn.UpdateItemInput, optFns ...func(*dyn.Options)) (*dyn.UpdateItemOutput, error) {
	if m.UpdateErr != nil {
		return nil, m.UpdateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	table := *params.TableName
	m.ensureTable(table)

	pk := pkOf(params.Key)
	item, exists := m.tables[table][pk]
	if err := m.applyDecrement(item, exists, params.UpdateExpression, params.ConditionExpression, params.ExpressionAttributeValues); err != nil {
		return nil, err
	}
	return &dyn.UpdateItemOutput{Attributes: item}, nil
}

// applyDecrement handles "SET quantity = quantity - :n" under
// "quantity >= :n". Caller holds the lock.
func (m *Mock) applyDecrement(item map[string]types.AttributeValue, exists bool, updateExpr, condExpr *string, values map[string]types.AttributeValue) error {
	if updateExpr == nil || *updateExpr != "SET quantity = quantity - :n" {
		return errors.New("unsupported update expression")
	}
	if !exists {
		return &types.ConditionalCheckFailedException{}
	}
	cur, ok := numAttr(item, "quantity")
	if !ok {
		return errors.New("quantity attribute missing")
	}
	n, ok := numAttr(values, ":n")
	if !ok {
		return errors.New(":n value missing")
	}
	if condExpr != nil && *condExpr == "quantity >= :n" && cur < n {
		return &types.ConditionalCheckFailedException{}
	}
	item["quantity"] = &types.AttributeValueMemberN{Value: strconv.FormatFloat(cur-n, 'f', -1, 64)}
	return nil
}

func (m *Mock) Query(ctx context.Context, params *dyn.QueryInput, optFns ...func(*dyn.Options)) (*dyn.QueryOutput, error) {
	if m.QueryErr != nil {
		return nil, m.QueryErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	table := *params.TableName
	m.ensureTable(table)

	if params.KeyConditionExpression == nil {
		return nil, errors.New("missing key condition")
	}

	var keyAttr, valueRef string
	switch *params.KeyConditionExpression {
	case "#n = :name":
		keyAttr, valueRef = params.ExpressionAttributeNames["#n"], ":name"
	case "user_id = :uid":
		keyAttr, valueRef = "user_id", ":uid"
	default:
		return nil, errors.New("unsupported key condition")
	}
	want := params.ExpressionAttributeValues[valueRef].(*types.AttributeValueMemberS).Value

	var items []map[string]types.AttributeValue
	for _, item := range m.tables[table] {
		if got, ok := strAttr(item, keyAttr); ok && got == want {
			items = append(items, item)
		}
	}
	if params.ScanIndexForward != nil && !*params.ScanIndexForward {
		sort.Slice(items, func(i, j int) bool {
			return createdAt(items[i]).After(createdAt(items[j]))
		})
	}
	return &dyn.QueryOutput{Items: items, Count: int32(len(items))}, nil
}

func createdAt(item map[string]types.AttributeValue) time.Time {
	s, ok := strAttr(item, "created_at")
	if !ok {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func (m *Mock) Scan(ctx context.Context, params *dyn.ScanInput, optFns ...func(*dyn.Options)) (*dyn.ScanOutput, error) {
	if m.ScanErr != nil {
		return nil, m.ScanErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	table := *params.TableName
	m.ensureTable(table)

	var items []map[string]types.AttributeValue
	for _, item := range m.tables[table] {
		if matchesFilter(item, params.FilterExpression, params.ExpressionAttributeValues) {
			items = append(items, item)
		}
	}
	return &dyn.ScanOutput{Items: items, Count: int32(len(items))}, nil
}

func matchesFilter(item map[string]types.AttributeValue, filterExpr *string, values map[string]types.AttributeValue) bool {
	if filterExpr == nil {
		return true
	}
	for _, part := range strings.Split(*filterExpr, " AND ") {
		switch part {
		case "contains(name_lc, :name)":
			nameLC, _ := strAttr(item, "name_lc")
			want := values[":name"].(*types.AttributeValueMemberS).Value
			if !strings.Contains(nameLC, want) {
				return false
			}
		case "price >= :min":
			price, _ := numAttr(item, "price")
			min, _ := numAttr(values, ":min")
			if price < min {
				return false
			}
		case "price <= :max":
			price, _ := numAttr(item, "price")
			max, _ := numAttr(values, ":max")
			if price > max {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func (m *Mock) TransactWriteItems(ctx context.Context, params *dyn.TransactWriteItemsInput, optFns ...func(*dyn.Options)) (*dyn.TransactWriteItemsOutput, error) {
	if m.TransactErr != nil {
		return nil, m.TransactErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	// First pass: evaluate every condition. Any failure cancels the whole
	// transaction with positional reasons.
	reasons := make([]types.CancellationReason, len(params.TransactItems))
	canceled := false
	for i, it := range params.TransactItems {
		code := "None"
		switch {
		case it.Update != nil:
			if !m.updateConditionHolds(it.Update) {
				code = "ConditionalCheckFailed"
				canceled = true
			}
		case it.Put != nil:
			table := *it.Put.TableName
			m.ensureTable(table)
			if it.Put.ConditionExpression != nil && strings.HasPrefix(*it.Put.ConditionExpression, "attribute_not_exists(") {
				if _, exists := m.tables[table][pkOf(it.Put.Item)]; exists {
					code = "ConditionalCheckFailed"
					canceled = true
				}
			}
		}
		c := code
		reasons[i] = types.CancellationReason{Code: &c}
	}
	if canceled {
		return nil, &types.TransactionCanceledException{CancellationReasons: reasons}
	}

	// Second pass: apply.
	for _, it := range params.TransactItems {
		switch {
		case it.Update != nil:
			table := *it.Update.TableName
			item, exists := m.tables[table][pkOf(it.Update.Key)]
			if err := m.applyDecrement(item, exists, it.Update.UpdateExpression, it.Update.ConditionExpression, it.Update.ExpressionAttributeValues); err != nil {
				return nil, err
			}
		case it.Put != nil:
			table := *it.Put.TableName
			m.tables[table][pkOf(it.Put.Item)] = it.Put.Item
		}
	}
	return &dyn.TransactWriteItemsOutput{}, nil
}

func (m *Mock) updateConditionHolds(u *types.Update) bool {
	table := *u.TableName
	m.ensureTable(table)
	item, exists := m.tables[table][pkOf(u.Key)]
	if !exists {
		return false
	}
	if u.ConditionExpression == nil {
		return true
	}
	if *u.ConditionExpression != "quantity >= :n" {
		return false
	}
	cur, _ := numAttr(item, "quantity")
	n, _ := numAttr(u.ExpressionAttributeValues, ":n")
	return cur >= n
}
