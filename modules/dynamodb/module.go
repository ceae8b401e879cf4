// Copyright 2025 NL2Flow
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package dynamodb

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"nl2flow/platform/modules/base"
	"nl2flow/platform/modules/sdk"
)

// DynamoDBModule drives Amazon DynamoDB tables for generated flows. Items
// are plain maps; attribute value conversion is handled internally.
type DynamoDBModule struct {
	*sdk.BaseModule
	client       *dynamodb.Client
	defaultTable string
}

var _ base.Module = (*DynamoDBModule)(nil)

// New creates a DynamoDB module bound to the given configuration. The
// client is not built until Connect.
func New(cfg *base.ModuleConfig) *DynamoDBModule {
	return &DynamoDBModule{
		BaseModule: sdk.NewBaseModule("dynamodb", cfg),
	}
}

// Connect builds the DynamoDB client and verifies connectivity. With a
// default_table option set, connectivity is verified by describing that
// table; otherwise by listing tables.
func (m *DynamoDBModule) Connect(ctx context.Context) error {
	cfg := m.Config()
	if cfg == nil {
		return base.NewModuleError("dynamodb", "Connect", "module config is required", nil)
	}

	region := cfg.StringOption("region", "us-east-1")

	// ConnectionURL doubles as the custom endpoint for DynamoDB Local and
	// LocalStack.
	endpoint := cfg.ConnectionURL
	if endpoint == "" {
		endpoint = cfg.StringOption("endpoint", "")
	}
	if endpoint != "" {
		if err := base.ValidateEndpoint(endpoint, base.EndpointOptions{}); err != nil {
			return base.NewModuleError(m.Name(), "Connect", "invalid endpoint", err)
		}
	}

	optFns := []func(*config.LoadOptions) error{
		config.WithRegion(region),
	}

	accessKeyID := cfg.Credential("access_key_id")
	secretAccessKey := cfg.Credential("secret_access_key")
	if accessKeyID != "" && secretAccessKey != "" {
		creds := credentials.NewStaticCredentialsProvider(
			accessKeyID, secretAccessKey, cfg.Credential("session_token"))
		optFns = append(optFns, config.WithCredentialsProvider(creds))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, optFns...)
	if err != nil {
		return base.NewModuleError(m.Name(), "Connect", "failed to load AWS config", err)
	}

	ddbOptions := []func(*dynamodb.Options){}
	if endpoint != "" {
		ddbOptions = append(ddbOptions, func(o *dynamodb.Options) {
			o.BaseEndpoint = aws.String(endpoint)
		})
	}

	m.client = dynamodb.NewFromConfig(awsCfg, ddbOptions...)
	m.defaultTable = cfg.StringOption("default_table", cfg.StringOption("table", ""))

	if m.defaultTable != "" {
		_, err = m.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
			TableName: aws.String(m.defaultTable),
		})
	} else {
		_, err = m.client.ListTables(ctx, &dynamodb.ListTablesInput{
			Limit: aws.Int32(1),
		})
	}
	if err != nil {
		m.client = nil
		return base.NewModuleError(m.Name(), "Connect", "failed to verify DynamoDB connectivity", err)
	}

	m.SetConnected(true)
	m.Logf("Connected to DynamoDB (region: %s, table: %s)", region, m.defaultTable)
	return nil
}

// Close releases the DynamoDB client
func (m *DynamoDBModule) Close(ctx context.Context) error {
	m.client = nil
	if m.IsConnected() {
		m.SetConnected(false)
	}
	return nil
}

// HealthCheck verifies DynamoDB connectivity
func (m *DynamoDBModule) HealthCheck(ctx context.Context) (*base.HealthStatus, error) {
	if m.client == nil {
		return &base.HealthStatus{
			Healthy:   false,
			Error:     "DynamoDB client not initialized",
			Timestamp: time.Now(),
		}, nil
	}

	start := time.Now()
	var err error
	if m.defaultTable != "" {
		_, err = m.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
			TableName: aws.String(m.defaultTable),
		})
	} else {
		_, err = m.client.ListTables(ctx, &dynamodb.ListTablesInput{Limit: aws.Int32(1)})
	}
	latency := time.Since(start)

	if err != nil {
		return &base.HealthStatus{
			Healthy:   false,
			Error:     err.Error(),
			Latency:   latency,
			Timestamp: time.Now(),
		}, nil
	}

	return &base.HealthStatus{
		Healthy:   true,
		Latency:   latency,
		Timestamp: time.Now(),
		Details: map[string]string{
			"default_table": m.defaultTable,
			"region":        m.Config().StringOption("region", "us-east-1"),
		},
	}, nil
}

// PutItem stores an item in a table, replacing any existing item with the
// same key.
func (m *DynamoDBModule) PutItem(ctx context.Context, table string, item map[string]interface{}) error {
	if err := m.RequireConnected("PutItem"); err != nil {
		return err
	}
	if len(item) == 0 {
		return base.NewModuleError(m.Name(), "PutItem", "item is required", nil)
	}

	timer := sdk.NewTimer()
	defer timer.RecordTo(m.Metrics().RecordCall, nil)

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return base.NewModuleError(m.Name(), "PutItem", "failed to marshal item", err)
	}

	_, err = m.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(m.tableOrDefault(table)),
		Item:      av,
	})
	if err != nil {
		return base.NewModuleError(m.Name(), "PutItem", "failed to put item", err)
	}
	return nil
}

// GetItem fetches an item by key. The result is nil when no item matches.
func (m *DynamoDBModule) GetItem(ctx context.Context, table string, key map[string]interface{}) (map[string]interface{}, error) {
	if err := m.RequireConnected("GetItem"); err != nil {
		return nil, err
	}
	if len(key) == 0 {
		return nil, base.NewModuleError(m.Name(), "GetItem", "key is required", nil)
	}

	timer := sdk.NewTimer()
	defer timer.RecordTo(m.Metrics().RecordCall, nil)

	av, err := attributevalue.MarshalMap(key)
	if err != nil {
		return nil, base.NewModuleError(m.Name(), "GetItem", "failed to marshal key", err)
	}

	output, err := m.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(m.tableOrDefault(table)),
		Key:       av,
	})
	if err != nil {
		return nil, base.NewModuleError(m.Name(), "GetItem", "failed to get item", err)
	}
	if output.Item == nil {
		return nil, nil
	}

	var item map[string]interface{}
	if err := attributevalue.UnmarshalMap(output.Item, &item); err != nil {
		return nil, base.NewModuleError(m.Name(), "GetItem", "failed to unmarshal item", err)
	}
	return item, nil
}

// Query runs a key condition query, optionally against a secondary index.
// Expression values map placeholder names (":id") to plain Go values.
func (m *DynamoDBModule) Query(ctx context.Context, table, keyCondition string, exprValues map[string]interface{}, indexName string) ([]map[string]interface{}, error) {
	if err := m.RequireConnected("Query"); err != nil {
		return nil, err
	}
	if keyCondition == "" {
		return nil, base.NewModuleError(m.Name(), "Query", "key condition expression is required", nil)
	}

	timer := sdk.NewTimer()
	defer timer.RecordTo(m.Metrics().RecordCall, nil)

	input := &dynamodb.QueryInput{
		TableName:              aws.String(m.tableOrDefault(table)),
		KeyConditionExpression: aws.String(keyCondition),
	}
	if indexName != "" {
		input.IndexName = aws.String(indexName)
	}
	if len(exprValues) > 0 {
		av, err := marshalExpressionValues(exprValues)
		if err != nil {
			return nil, base.NewModuleError(m.Name(), "Query", "failed to marshal expression values", err)
		}
		input.ExpressionAttributeValues = av
	}

	output, err := m.client.Query(ctx, input)
	if err != nil {
		return nil, base.NewModuleError(m.Name(), "Query", "query failed", err)
	}

	items, err := unmarshalItems(output.Items)
	if err != nil {
		return nil, base.NewModuleError(m.Name(), "Query", "failed to unmarshal items", err)
	}

	m.Logf("Query on %s returned %d items", m.tableOrDefault(table), len(items))
	return items, nil
}

// Scan reads a whole table, optionally filtered. Prefer Query where a key
// condition exists; scans read every item and cost accordingly.
func (m *DynamoDBModule) Scan(ctx context.Context, table, filterExpression string, exprValues map[string]interface{}, limit int32) ([]map[string]interface{}, error) {
	if err := m.RequireConnected("Scan"); err != nil {
		return nil, err
	}

	timer := sdk.NewTimer()
	defer timer.RecordTo(m.Metrics().RecordCall, nil)

	input := &dynamodb.ScanInput{
		TableName: aws.String(m.tableOrDefault(table)),
	}
	if filterExpression != "" {
		input.FilterExpression = aws.String(filterExpression)
	}
	if limit > 0 {
		input.Limit = aws.Int32(limit)
	}
	if len(exprValues) > 0 {
		av, err := marshalExpressionValues(exprValues)
		if err != nil {
			return nil, base.NewModuleError(m.Name(), "Scan", "failed to marshal expression values", err)
		}
		input.ExpressionAttributeValues = av
	}

	output, err := m.client.Scan(ctx, input)
	if err != nil {
		return nil, base.NewModuleError(m.Name(), "Scan", "scan failed", err)
	}

	items, err := unmarshalItems(output.Items)
	if err != nil {
		return nil, base.NewModuleError(m.Name(), "Scan", "failed to unmarshal items", err)
	}
	return items, nil
}

// DeleteItem removes an item by key
func (m *DynamoDBModule) DeleteItem(ctx context.Context, table string, key map[string]interface{}) error {
	if err := m.RequireConnected("DeleteItem"); err != nil {
		return err
	}
	if len(key) == 0 {
		return base.NewModuleError(m.Name(), "DeleteItem", "key is required", nil)
	}

	timer := sdk.NewTimer()
	defer timer.RecordTo(m.Metrics().RecordCall, nil)

	av, err := attributevalue.MarshalMap(key)
	if err != nil {
		return base.NewModuleError(m.Name(), "DeleteItem", "failed to marshal key", err)
	}

	_, err = m.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(m.tableOrDefault(table)),
		Key:       av,
	})
	if err != nil {
		return base.NewModuleError(m.Name(), "DeleteItem", "failed to delete item", err)
	}
	return nil
}

// BatchPutItems writes up to 25 items per underlying request, chunking
// larger batches automatically.
func (m *DynamoDBModule) BatchPutItems(ctx context.Context, table string, items []map[string]interface{}) (int, error) {
	if err := m.RequireConnected("BatchPutItems"); err != nil {
		return 0, err
	}
	if len(items) == 0 {
		return 0, nil
	}

	timer := sdk.NewTimer()
	defer timer.RecordTo(m.Metrics().RecordCall, nil)

	const batchSize = 25 // DynamoDB BatchWriteItem limit
	tableName := m.tableOrDefault(table)
	written := 0

	for start := 0; start < len(items); start += batchSize {
		end := start + batchSize
		if end > len(items) {
			end = len(items)
		}

		requests := make([]types.WriteRequest, 0, end-start)
		for _, item := range items[start:end] {
			av, err := attributevalue.MarshalMap(item)
			if err != nil {
				return written, base.NewModuleError(m.Name(), "BatchPutItems",
					fmt.Sprintf("failed to marshal item %d", start+len(requests)), err)
			}
			requests = append(requests, types.WriteRequest{
				PutRequest: &types.PutRequest{Item: av},
			})
		}

		_, err := m.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{tableName: requests},
		})
		if err != nil {
			return written, base.NewModuleError(m.Name(), "BatchPutItems", "batch write failed", err)
		}
		written += len(requests)
	}

	m.Logf("Batch wrote %d items to %s", written, tableName)
	return written, nil
}

// tableOrDefault returns the given table or falls back to the configured
// default table.
func (m *DynamoDBModule) tableOrDefault(table string) string {
	if table != "" {
		return table
	}
	return m.defaultTable
}

// marshalExpressionValues converts plain Go values keyed by expression
// placeholder (":id") into DynamoDB attribute values.
func marshalExpressionValues(values map[string]interface{}) (map[string]types.AttributeValue, error) {
	out := make(map[string]types.AttributeValue, len(values))
	for name, value := range values {
		av, err := attributevalue.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("value %s: %w", name, err)
		}
		out[name] = av
	}
	return out, nil
}

// unmarshalItems converts DynamoDB items back into plain maps
func unmarshalItems(items []map[string]types.AttributeValue) ([]map[string]interface{}, error) {
	out := make([]map[string]interface{}, 0, len(items))
	for _, item := range items {
		var m map[string]interface{}
		if err := attributevalue.UnmarshalMap(item, &m); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}
