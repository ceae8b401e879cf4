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

package scylladb

import "nl2flow/platform/modules/base"

// Metadata describes the ScyllaDB module for catalog listings
func (m *ScyllaModule) Metadata() base.Metadata {
	return base.NewMetadata(
		"ScyllaDB",
		"scylladb",
		"High-performance wide-column NoSQL database (Cassandra-compatible) with CQL queries, tunable consistency, batch operations, and counter updates",
	).WithKeywords(
		"scylladb", "cassandra", "nosql", "cql", "wide-column",
		"distributed", "consistency", "batch", "counter", "time-series",
	).WithDependencies(
		"github.com/gocql/gocql",
	)
}

// UsageNotes returns operational guidance for flows that target ScyllaDB
func (m *ScyllaModule) UsageNotes() []string {
	return []string{
		"Connection URL format: scylla://host1:port,host2:port/keyspace (cassandra:// is also accepted).",
		"A keyspace is required, either in the connection URL or via the keyspace option.",
		"The consistency option accepts ANY, ONE, TWO, THREE, QUORUM, ALL, LOCAL_QUORUM, EACH_QUORUM, and LOCAL_ONE; the default is QUORUM.",
		"CQL statements use positional ? placeholders; never interpolate values into the statement text.",
		"Table and column names are validated before use and CQL reserved words are rejected.",
		"Writes do not report affected rows; a nil error is the only success signal.",
		"TTL values are in seconds and apply per insert or update, not per table.",
		"WHERE conditions are equality matches and must cover the partition key; filtering on non-key columns requires scylladb_query with ALLOW FILTERING.",
		"Logged batches are atomic but slower; set unlogged for bulk loads into a single partition.",
		"Every row in a batch insert must carry the same columns as the first row.",
		"Counter columns only support increments; pass a negative delta to decrement.",
		"Queries are routed token-aware, so single-partition reads hit a replica that owns the data.",
	}
}

// Methods lists the operations exposed to generated flows
func (m *ScyllaModule) Methods() []base.MethodInfo {
	return []base.MethodInfo{
		{
			Name:        "scylladb_query",
			Description: "Execute a CQL SELECT statement and return matching rows as maps",
			Parameters: []base.Parameter{
				{Name: "cql", Description: "CQL SELECT statement with ? placeholders"},
				{Name: "args", Description: "Positional values bound to the placeholders"},
			},
			Returns: "List of rows, each a map of column name to value",
			Examples: []base.Example{
				{
					Text: "Query: get recent events for a device",
					Code: "scylladb_query(cql='SELECT event_time, payload FROM events WHERE device_id = ? LIMIT 100', args=['{{device_id}}'])",
				},
				{
					Text: "Query: scan with explicit filtering",
					Code: "scylladb_query(cql='SELECT * FROM sensors WHERE region = ? ALLOW FILTERING', args=['{{region}}'])",
				},
			},
		},
		{
			Name:        "scylladb_execute",
			Description: "Execute a CQL statement that returns no rows (INSERT, UPDATE, DELETE, or DDL)",
			Parameters: []base.Parameter{
				{Name: "cql", Description: "CQL statement with ? placeholders"},
				{Name: "args", Description: "Positional values bound to the placeholders"},
			},
			Returns: "Nothing on success",
			Examples: []base.Example{
				{
					Text: "Query: create a table",
					Code: "scylladb_execute(cql='CREATE TABLE IF NOT EXISTS events (device_id text, event_time timestamp, payload text, PRIMARY KEY (device_id, event_time))')",
				},
			},
		},
		{
			Name:        "scylladb_insert",
			Description: "Insert one row into a table, optionally with a TTL",
			Parameters: []base.Parameter{
				{Name: "table", Description: "Table name in the bound keyspace"},
				{Name: "data", Description: "Map of column name to value"},
				{Name: "ttl", Description: "Optional row TTL in seconds (0 disables)"},
			},
			Returns: "Nothing on success",
			Examples: []base.Example{
				{
					Text: "Query: record a sensor reading that expires after a day",
					Code: "scylladb_insert(table='readings', data={'sensor_id': '{{sensor_id}}', 'ts': '{{timestamp}}', 'value': {{value}}}, ttl=86400)",
				},
			},
		},
		{
			Name:        "scylladb_select",
			Description: "Select rows from a table using equality conditions",
			Parameters: []base.Parameter{
				{Name: "table", Description: "Table name in the bound keyspace"},
				{Name: "columns", Description: "Columns to return (all columns when omitted)"},
				{Name: "where", Description: "Equality conditions keyed by column name"},
				{Name: "limit", Description: "Maximum number of rows (0 means no limit)"},
			},
			Returns: "List of rows, each a map of column name to value",
			Examples: []base.Example{
				{
					Text: "Query: fetch a user's sessions",
					Code: "scylladb_select(table='sessions', columns=['session_id', 'started_at'], where={'user_id': '{{user_id}}'}, limit=50)",
				},
			},
		},
		{
			Name:        "scylladb_update",
			Description: "Update columns on rows matched by equality conditions",
			Parameters: []base.Parameter{
				{Name: "table", Description: "Table name in the bound keyspace"},
				{Name: "set", Description: "Columns to assign, keyed by column name"},
				{Name: "where", Description: "Equality conditions keyed by column name"},
				{Name: "ttl", Description: "Optional TTL in seconds for the written values"},
			},
			Returns: "Nothing on success",
			Examples: []base.Example{
				{
					Text: "Query: mark a device as offline",
					Code: "scylladb_update(table='devices', set={'status': 'offline'}, where={'device_id': '{{device_id}}'})",
				},
			},
		},
		{
			Name:        "scylladb_delete",
			Description: "Delete rows matched by equality conditions",
			Parameters: []base.Parameter{
				{Name: "table", Description: "Table name in the bound keyspace"},
				{Name: "where", Description: "Equality conditions keyed by column name"},
			},
			Returns: "Nothing on success",
			Examples: []base.Example{
				{
					Text: "Query: remove a session",
					Code: "scylladb_delete(table='sessions', where={'user_id': '{{user_id}}', 'session_id': '{{session_id}}'})",
				},
			},
		},
		{
			Name:        "scylladb_batch_insert",
			Description: "Insert multiple rows in one logged or unlogged batch",
			Parameters: []base.Parameter{
				{Name: "table", Description: "Table name in the bound keyspace"},
				{Name: "rows", Description: "List of row maps; all rows must share the same columns"},
				{Name: "unlogged", Description: "Use an unlogged batch (faster, not atomic across partitions)"},
			},
			Returns: "Nothing on success",
			Examples: []base.Example{
				{
					Text: "Query: bulk-load readings for one sensor",
					Code: "scylladb_batch_insert(table='readings', rows={{rows}}, unlogged=True)",
				},
			},
		},
		{
			Name:        "scylladb_increment_counter",
			Description: "Add a delta to a counter column on the matched rows",
			Parameters: []base.Parameter{
				{Name: "table", Description: "Counter table name in the bound keyspace"},
				{Name: "counter_column", Description: "Counter column to adjust"},
				{Name: "delta", Description: "Amount to add (negative values decrement)"},
				{Name: "where", Description: "Equality conditions keyed by column name"},
			},
			Returns: "Nothing on success",
			Examples: []base.Example{
				{
					Text: "Query: count a page view",
					Code: "scylladb_increment_counter(table='page_views', counter_column='views', delta=1, where={'page_id': '{{page_id}}'})",
				},
			},
		},
		{
			Name:        "scylladb_list_tables",
			Description: "List the tables in the bound keyspace",
			Parameters:  []base.Parameter{},
			Returns:     "List of table names",
			Examples: []base.Example{
				{
					Text: "Query: what tables exist in this keyspace",
					Code: "scylladb_list_tables()",
				},
			},
		},
	}
}
