package handlers

import (
	"context"
	"strings"
	"sync"

	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// mockDynamo is an in-memory DynamoDB with just enough expression parsing
// for the handler flows: conditional puts, transact writes, SET updates and
// single-attribute equality queries.
type mockDynamo struct {
	mu       sync.Mutex
	// keyAttrs maps table name to its pk attribute; tables maps
	// table -> pk -> item.
	keyAttrs map[string]string
	tables   map[string]map[string]map[string]types.AttributeValue
}

func newMockDynamo(keyAttrs map[string]string) *mockDynamo {
	tables := make(map[string]map[string]map[string]types.AttributeValue, len(keyAttrs))
	for table := range keyAttrs {
		tables[table] = map[string]map[string]types.AttributeValue{}
	}
	return &mockDynamo{keyAttrs: keyAttrs, tables: tables}
}

func attrString(v types.AttributeValue) string {
	switch av := v.(type) {
	case *types.AttributeValueMemberS:
		return av.Value
	case *types.AttributeValueMemberN:
		return av.Value
	}
	return ""
}

func (m *mockDynamo) pkOf(table string, item map[string]types.AttributeValue) string {
	return attrString(item[m.keyAttrs[table]])
}

func (m *mockDynamo) PutItem(ctx context.Context, in *dyn.PutItemInput, optFns ...func(*dyn.Options)) (*dyn.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	table := *in.TableName
	pk := m.pkOf(table, in.Item)
	if in.ConditionExpression != nil && strings.Contains(*in.ConditionExpression, "attribute_not_exists") {
		if _, exists := m.tables[table][pk]; exists {
			return nil, &types.ConditionalCheckFailedException{}
		}
	}
	m.tables[table][pk] = in.Item
	return &dyn.PutItemOutput{}, nil
}

func (m *mockDynamo) GetItem(ctx context.Context, in *dyn.GetItemInput, optFns ...func(*dyn.Options)) (*dyn.GetItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	table := *in.TableName
	item := m.tables[table][m.pkOf(table, in.Key)]
	return &dyn.GetItemOutput{Item: item}, nil
}

func (m *mockDynamo) UpdateItem(ctx context.Context, in *dyn.UpdateItemInput, optFns ...func(*dyn.Options)) (*dyn.UpdateItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	table := *in.TableName
	pk := m.pkOf(table, in.Key)
	item, exists := m.tables[table][pk]
	if in.ConditionExpression != nil && strings.Contains(*in.ConditionExpression, "attribute_exists") && !exists {
		return nil, &types.ConditionalCheckFailedException{}
	}
	if !exists {
		item = map[string]types.AttributeValue{}
		for k, v := range in.Key {
			item[k] = v
		}
		m.tables[table][pk] = item
	}
	applySet(item, *in.UpdateExpression, in.ExpressionAttributeNames, in.ExpressionAttributeValues)
	return &dyn.UpdateItemOutput{}, nil
}

// applySet handles "SET a = :x, #b = :y" expressions.
func applySet(item map[string]types.AttributeValue, expr string, names map[string]string, values map[string]types.AttributeValue) {
	expr = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(expr), "SET"))
	for _, assign := range strings.Split(expr, ",") {
		parts := strings.SplitN(assign, "=", 2)
		if len(parts) != 2 {
			continue
		}
		attr := strings.TrimSpace(parts[0])
		if resolved, ok := names[attr]; ok {
			attr = resolved
		}
		placeholder := strings.TrimSpace(parts[1])
		if v, ok := values[placeholder]; ok {
			item[attr] = v
		}
	}
}

func (m *mockDynamo) DeleteItem(ctx context.Context, in *dyn.DeleteItemInput, optFns ...func(*dyn.Options)) (*dyn.DeleteItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	table := *in.TableName
	delete(m.tables[table], m.pkOf(table, in.Key))
	return &dyn.DeleteItemOutput{}, nil
}

// Query supports single-attribute equality conditions ("attr = :ph"), which
// covers the customer_id-index and phone-index lookups.
func (m *mockDynamo) Query(ctx context.Context, in *dyn.QueryInput, optFns ...func(*dyn.Options)) (*dyn.QueryOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	parts := strings.SplitN(*in.KeyConditionExpression, "=", 2)
	attr := strings.TrimSpace(parts[0])
	want := attrString(in.ExpressionAttributeValues[strings.TrimSpace(parts[1])])

	var items []map[string]types.AttributeValue
	for _, item := range m.tables[*in.TableName] {
		if attrString(item[attr]) == want {
			items = append(items, item)
		}
	}
	return &dyn.QueryOutput{Items: items}, nil
}

func (m *mockDynamo) TransactWriteItems(ctx context.Context, in *dyn.TransactWriteItemsInput, optFns ...func(*dyn.Options)) (*dyn.TransactWriteItemsOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ti := range in.TransactItems {
		if ti.Put == nil {
			continue
		}
		table := *ti.Put.TableName
		pk := m.pkOf(table, ti.Put.Item)
		if ti.Put.ConditionExpression != nil && strings.Contains(*ti.Put.ConditionExpression, "attribute_not_exists") {
			if _, exists := m.tables[table][pk]; exists {
				return nil, &types.TransactionCanceledException{}
			}
		}
	}
	for _, ti := range in.TransactItems {
		if ti.Put == nil {
			continue
		}
		table := *ti.Put.TableName
		m.tables[table][m.pkOf(table, ti.Put.Item)] = ti.Put.Item
	}
	return &dyn.TransactWriteItemsOutput{}, nil
}
