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

package mysql

import "nl2flow/platform/modules/base"

// Metadata identifies the MySQL module in the catalog
func (m *MySQLModule) Metadata() base.Metadata {
	return base.NewMetadata(
		"MySQL",
		"mysql",
		"MySQL/MariaDB relational database with connection pooling, parameterized SQL execution, batch operations, and stored procedure support",
	).WithKeywords(
		"mysql", "mariadb", "sql", "database", "relational", "query",
		"connection-pool", "stored-procedure", "transactions",
	).WithDependencies("github.com/go-sql-driver/mysql")
}

// UsageNotes returns operational guidance for generated flows
func (m *MySQLModule) UsageNotes() []string {
	return []string{
		"Connection pooling is managed by the module: one pool per module instance",
		"Default pool limits: 25 open connections, 5 idle (configurable via max_open_conns and max_idle_conns options)",
		"Parameterized statements use ? placeholders; values are bound server-side to prevent SQL injection",
		"Character set defaults to utf8mb4 for full Unicode support including emojis",
		"mysql_query returns rows as maps keyed by column name",
		"DATE, DATETIME, and TIMESTAMP columns are returned as time values",
		"DECIMAL and NUMERIC columns are returned as strings to preserve precision",
		"mysql_execute reports the number of rows affected and logs the last insert id for INSERT statements",
		"mysql_execute_many wraps the whole batch in one transaction and rolls back on the first error",
		"Stored procedure names are validated before the CALL statement is built",
		"Pool statistics are available via mysql_pool_status for monitoring and debugging",
	}
}

// Methods returns the documented method surface in presentation order
func (m *MySQLModule) Methods() []base.MethodInfo {
	return []base.MethodInfo{
		{
			Name:        "mysql_query",
			Description: "Execute a SELECT statement and return rows as a list of maps keyed by column name",
			Parameters: []base.Parameter{
				{Name: "query", Description: "str (required) - SQL SELECT statement with ? placeholders"},
				{Name: "args", Description: "list (optional) - Positional values for the placeholders"},
			},
			Returns: "list[map] - One map per row with column names as keys",
			Examples: []base.Example{
				{Text: "Select users older than {{age}}", Code: "mysql_query(query='SELECT * FROM users WHERE age > ?', args=[{{age}}])"},
				{Text: "Get products in category {{category}}", Code: "mysql_query(query='SELECT * FROM products WHERE category = ?', args=[{{category}}])"},
				{Text: "Get order totals grouped by name", Code: "mysql_query(query='SELECT name, SUM(amount) AS total FROM orders GROUP BY name')"},
			},
		},
		{
			Name:        "mysql_execute",
			Description: "Execute an INSERT, UPDATE, or DELETE statement and return the number of rows affected",
			Parameters: []base.Parameter{
				{Name: "query", Description: "str (required) - SQL statement with ? placeholders"},
				{Name: "args", Description: "list (optional) - Positional values for the placeholders"},
			},
			Returns: "int - Number of rows affected",
			Examples: []base.Example{
				{Text: "Insert user with name {{name}} and email {{email}}", Code: "mysql_execute(query='INSERT INTO users (name, email) VALUES (?, ?)', args=[{{name}}, {{email}}])"},
				{Text: "Update user {{user_id}} with status {{status}}", Code: "mysql_execute(query='UPDATE users SET status = ? WHERE id = ?', args=[{{status}}, {{user_id}}])"},
				{Text: "Delete user {{user_id}}", Code: "mysql_execute(query='DELETE FROM users WHERE id = ?', args=[{{user_id}}])"},
			},
		},
		{
			Name:        "mysql_execute_many",
			Description: "Execute the same statement once per argument set inside a single transaction for efficient batch operations",
			Parameters: []base.Parameter{
				{Name: "query", Description: "str (required) - SQL statement with ? placeholders"},
				{Name: "args_list", Description: "list[list] (required) - One argument list per execution"},
			},
			Returns: "None - Commits the whole batch or rolls back on the first error",
			Examples: []base.Example{
				{Text: "Batch insert users from {{users_list}}", Code: "mysql_execute_many(query='INSERT INTO users (name, age) VALUES (?, ?)', args_list={{users_list}})"},
				{Text: "Batch update login times from {{login_updates}}", Code: "mysql_execute_many(query='UPDATE users SET last_login = ? WHERE id = ?', args_list={{login_updates}})"},
			},
		},
		{
			Name:        "mysql_call_procedure",
			Description: "Call a stored procedure with arguments and return any rows it produces",
			Parameters: []base.Parameter{
				{Name: "proc_name", Description: "str (required) - Name of the stored procedure to call"},
				{Name: "args", Description: "list (optional) - Arguments to pass to the procedure"},
			},
			Returns: "list[map] - Rows produced by the procedure, empty when it returns none",
			Examples: []base.Example{
				{Text: "Call procedure get_user_orders with user_id {{user_id}}", Code: "mysql_call_procedure(proc_name='get_user_orders', args=[{{user_id}}])"},
				{Text: "Call procedure cleanup_old_data", Code: "mysql_call_procedure(proc_name='cleanup_old_data')"},
			},
		},
		{
			Name:        "mysql_pool_status",
			Description: "Get connection pool statistics for monitoring and debugging",
			Parameters:  []base.Parameter{},
			Returns:     "map - Open, in-use, and idle connection counts plus wait statistics",
			Examples: []base.Example{
				{Text: "Get connection pool status", Code: "mysql_pool_status()"},
			},
		},
	}
}
