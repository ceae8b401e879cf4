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

import "nl2flow/platform/modules/base"

// Metadata identifies the DynamoDB module in the catalog
func (m *DynamoDBModule) Metadata() base.Metadata {
	return base.NewMetadata(
		"DynamoDB",
		"dynamodb",
		"Amazon DynamoDB NoSQL key-value store with item operations, key condition queries, filtered scans, and batch writes",
	).WithKeywords(
		"dynamodb", "aws", "amazon", "nosql", "key-value", "database",
		"serverless", "query", "scan",
	).WithDependencies(
		"github.com/aws/aws-sdk-go-v2/service/dynamodb",
		"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue",
	)
}

// UsageNotes returns operational guidance for generated flows
func (m *DynamoDBModule) UsageNotes() []string {
	return []string{
		"Credentials: use IAM roles, environment variables, or explicit access_key_id/secret_access_key credentials",
		"DynamoDB Local and LocalStack are supported via a custom endpoint",
		"A default table can be configured; the table parameter is then optional on every method",
		"Items and keys are plain maps; attribute value conversion is handled by the module",
		"Keys must include the partition key, and the sort key when the table has one",
		"dynamodb_get_item returns nothing when no item matches the key",
		"Query expressions use :placeholder syntax, e.g. 'id = :id' with expression values {':id': '123'}",
		"Prefer dynamodb_query over dynamodb_scan: scans read every item in the table",
		"dynamodb_batch_put_items chunks writes into the 25-item limit per request automatically",
	}
}

// Methods returns the documented method surface in presentation order
func (m *DynamoDBModule) Methods() []base.MethodInfo {
	return []base.MethodInfo{
		{
			Name:        "dynamodb_put_item",
			Description: "Put an item into a DynamoDB table, replacing any existing item with the same key",
			Parameters: []base.Parameter{
				{Name: "table_name", Description: "str (optional) - Table name, defaults to the configured table"},
				{Name: "item", Description: "map (required) - The item to store"},
			},
			Returns: "None - Errors when the write fails",
			Examples: []base.Example{
				{Text: "Put item with id {{123}}, name {{John}}, and age {{30}} into DynamoDB table {{users}}", Code: "dynamodb_put_item(table_name='{{users}}', item={{'id': '123', 'name': 'John', 'age': 30}})"},
				{Text: "Put item with user_id {{u001}} and email {{user@example.com}} using default table", Code: "dynamodb_put_item(item={{'user_id': 'u001', 'email': 'user@example.com'}})"},
			},
		},
		{
			Name:        "dynamodb_get_item",
			Description: "Get an item from a DynamoDB table by key",
			Parameters: []base.Parameter{
				{Name: "table_name", Description: "str (optional) - Table name, defaults to the configured table"},
				{Name: "key", Description: "map (required) - Partition key, plus sort key when the table has one"},
			},
			Returns: "map - The item, or nothing when no item matches",
			Examples: []base.Example{
				{Text: "Get item from DynamoDB table {{users}} by key {{123}}", Code: "dynamodb_get_item(table_name='{{users}}', key={{'id': '123'}})"},
				{Text: "Get item from DynamoDB table {{orders}} with composite key user_id {{u001}} and order_id {{o123}}", Code: "dynamodb_get_item(table_name='{{orders}}', key={{'user_id': 'u001', 'order_id': 'o123'}})"},
			},
		},
		{
			Name:        "dynamodb_query",
			Description: "Query a DynamoDB table with a key condition expression, optionally against a secondary index",
			Parameters: []base.Parameter{
				{Name: "table_name", Description: "str (optional) - Table name, defaults to the configured table"},
				{Name: "key_condition_expression", Description: "str (required) - Key condition, e.g. 'id = :id'"},
				{Name: "expression_attribute_values", Description: "map (optional) - Placeholder values, e.g. {':id': '123'}"},
				{Name: "index_name", Description: "str (optional) - GSI or LSI name"},
			},
			Returns: "list[map] - Items matching the query",
			Examples: []base.Example{
				{Text: "Query DynamoDB table {{users}} where id equals {{123}}", Code: "dynamodb_query(table_name='{{users}}', key_condition_expression='id = :id', expression_attribute_values={{':id': '123'}})"},
				{Text: "Query DynamoDB table {{orders}} where user_id equals {{user123}} using index {{user_id-index}}", Code: "dynamodb_query(table_name='{{orders}}', key_condition_expression='user_id = :uid', expression_attribute_values={{':uid': 'user123'}}, index_name='{{user_id-index}}')"},
			},
		},
		{
			Name:        "dynamodb_scan",
			Description: "Scan a DynamoDB table with an optional filter (reads every item, prefer dynamodb_query)",
			Parameters: []base.Parameter{
				{Name: "table_name", Description: "str (optional) - Table name, defaults to the configured table"},
				{Name: "filter_expression", Description: "str (optional) - Filter applied after the read, e.g. 'age > :age'"},
				{Name: "expression_attribute_values", Description: "map (optional) - Placeholder values for the filter"},
				{Name: "limit", Description: "int (optional) - Maximum items to evaluate"},
			},
			Returns: "list[map] - Items matching the scan",
			Examples: []base.Example{
				{Text: "Scan DynamoDB table {{products}}", Code: "dynamodb_scan(table_name='{{products}}')"},
				{Text: "Scan DynamoDB table {{users}} with filter expression age greater than {{18}}", Code: "dynamodb_scan(table_name='{{users}}', filter_expression='age > :age', expression_attribute_values={{':age': 18}})"},
			},
		},
		{
			Name:        "dynamodb_delete_item",
			Description: "Delete an item from a DynamoDB table by key",
			Parameters: []base.Parameter{
				{Name: "table_name", Description: "str (optional) - Table name, defaults to the configured table"},
				{Name: "key", Description: "map (required) - Partition key, plus sort key when the table has one"},
			},
			Returns: "None - Errors when the delete fails",
			Examples: []base.Example{
				{Text: "Delete item from DynamoDB table {{users}} with key {{123}}", Code: "dynamodb_delete_item(table_name='{{users}}', key={{'id': '123'}})"},
				{Text: "Delete item from DynamoDB table {{orders}} with composite key user_id {{u001}} and order_id {{o001}}", Code: "dynamodb_delete_item(table_name='{{orders}}', key={{'user_id': 'u001', 'order_id': 'o001'}})"},
			},
		},
		{
			Name:        "dynamodb_batch_put_items",
			Description: "Write many items efficiently, chunked into DynamoDB's 25-item batch limit",
			Parameters: []base.Parameter{
				{Name: "table_name", Description: "str (optional) - Table name, defaults to the configured table"},
				{Name: "items", Description: "list[map] (required) - Items to write"},
			},
			Returns: "int - Number of items written",
			Examples: []base.Example{
				{Text: "Batch put items {{records}} into DynamoDB table {{events}}", Code: "dynamodb_batch_put_items(table_name='{{events}}', items={{records}})"},
			},
		},
	}
}
