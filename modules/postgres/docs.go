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

package postgres

import "nl2flow/platform/modules/base"

// Metadata identifies the PostgreSQL module in the catalog
func (m *PostgresModule) Metadata() base.Metadata {
	return base.NewMetadata(
		"PostgreSQL",
		"postgres",
		"PostgreSQL relational database with connection pooling, parameterized SQL execution, batch operations, and set-returning function calls",
	).WithKeywords(
		"postgres", "postgresql", "sql", "database", "relational", "query",
		"connection-pool", "transactions", "returning",
	).WithDependencies("github.com/lib/pq")
}

// UsageNotes returns operational guidance for generated flows
func (m *PostgresModule) UsageNotes() []string {
	return []string{
		"Connection pooling is managed by the module: one pool per module instance",
		"Default pool limits: 25 open connections, 5 idle (configurable via max_open_conns and max_idle_conns options)",
		"Parameterized statements use $1, $2, ... placeholders; values are bound server-side to prevent SQL injection",
		"TLS defaults to sslmode=require; override with the sslmode option (disable, require, verify-ca, verify-full)",
		"postgres_query returns rows as maps keyed by column name",
		"PostgreSQL has no last-insert-id: use INSERT ... RETURNING id through postgres_query to read generated keys",
		"TIMESTAMP and TIMESTAMPTZ columns are returned as time values",
		"NUMERIC and DECIMAL columns are returned as strings to preserve precision",
		"postgres_execute_many wraps the whole batch in one transaction and rolls back on the first error",
		"Function names are validated before the SELECT * FROM statement is built",
		"Pool statistics are available via postgres_pool_status for monitoring and debugging",
	}
}

// Methods returns the documented method surface in presentation order
func (m *PostgresModule) Methods() []base.MethodInfo {
	return []base.MethodInfo{
		{
			Name:        "postgres_query",
			Description: "Execute a SELECT statement and return rows as a list of maps keyed by column name",
			Parameters: []base.Parameter{
				{Name: "query", Description: "str (required) - SQL SELECT statement with $1, $2, ... placeholders"},
				{Name: "args", Description: "list (optional) - Positional values for the placeholders"},
			},
			Returns: "list[map] - One map per row with column names as keys",
			Examples: []base.Example{
				{Text: "Select users older than {{age}}", Code: "postgres_query(query='SELECT * FROM users WHERE age > $1', args=[{{age}}])"},
				{Text: "Insert order and return its generated id", Code: "postgres_query(query='INSERT INTO orders (user_id, total) VALUES ($1, $2) RETURNING id', args=[{{user_id}}, {{total}}])"},
				{Text: "Get order totals grouped by name", Code: "postgres_query(query='SELECT name, SUM(amount) AS total FROM orders GROUP BY name')"},
			},
		},
		{
			Name:        "postgres_execute",
			Description: "Execute an INSERT, UPDATE, or DELETE statement and return the number of rows affected",
			Parameters: []base.Parameter{
				{Name: "query", Description: "str (required) - SQL statement with $1, $2, ... placeholders"},
				{Name: "args", Description: "list (optional) - Positional values for the placeholders"},
			},
			Returns: "int - Number of rows affected",
			Examples: []base.Example{
				{Text: "Insert user with name {{name}} and email {{email}}", Code: "postgres_execute(query='INSERT INTO users (name, email) VALUES ($1, $2)', args=[{{name}}, {{email}}])"},
				{Text: "Update user {{user_id}} with status {{status}}", Code: "postgres_execute(query='UPDATE users SET status = $1 WHERE id = $2', args=[{{status}}, {{user_id}}])"},
				{Text: "Delete user {{user_id}}", Code: "postgres_execute(query='DELETE FROM users WHERE id = $1', args=[{{user_id}}])"},
			},
		},
		{
			Name:        "postgres_execute_many",
			Description: "Execute the same statement once per argument set inside a single transaction for efficient batch operations",
			Parameters: []base.Parameter{
				{Name: "query", Description: "str (required) - SQL statement with $1, $2, ... placeholders"},
				{Name: "args_list", Description: "list[list] (required) - One argument list per execution"},
			},
			Returns: "None - Commits the whole batch or rolls back on the first error",
			Examples: []base.Example{
				{Text: "Batch insert users from {{users_list}}", Code: "postgres_execute_many(query='INSERT INTO users (name, age) VALUES ($1, $2)', args_list={{users_list}})"},
				{Text: "Batch update login times from {{login_updates}}", Code: "postgres_execute_many(query='UPDATE users SET last_login = $1 WHERE id = $2', args_list={{login_updates}})"},
			},
		},
		{
			Name:        "postgres_call_function",
			Description: "Call a set-returning function via SELECT * FROM and return the rows it produces",
			Parameters: []base.Parameter{
				{Name: "function", Description: "str (required) - Name of the function to call"},
				{Name: "args", Description: "list (optional) - Arguments to pass to the function"},
			},
			Returns: "list[map] - Rows produced by the function, empty when it returns none",
			Examples: []base.Example{
				{Text: "Call function user_orders with user_id {{user_id}}", Code: "postgres_call_function(function='user_orders', args=[{{user_id}}])"},
				{Text: "Call function refresh_rankings", Code: "postgres_call_function(function='refresh_rankings')"},
			},
		},
		{
			Name:        "postgres_pool_status",
			Description: "Get connection pool statistics for monitoring and debugging",
			Parameters:  []base.Parameter{},
			Returns:     "map - Open, in-use, and idle connection counts plus wait statistics",
			Examples: []base.Example{
				{Text: "Get connection pool status", Code: "postgres_pool_status()"},
			},
		},
	}
}
