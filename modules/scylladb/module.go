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

import (
	"context"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/gocql/gocql" // Cassandra/Scylla driver

	"nl2flow/platform/modules/base"
)

const (
	// DefaultNumConns is the default number of connections per host
	DefaultNumConns = 2
	// DefaultTimeout is the default per-query timeout
	DefaultTimeout = 5 * time.Second
)

// ScyllaModule drives ScyllaDB and Apache Cassandra clusters for generated
// flows. It provides CQL execution, structured CRUD helpers, batch inserts,
// and counter updates with tunable consistency.
type ScyllaModule struct {
	config   *base.ModuleConfig
	cluster  *gocql.ClusterConfig
	session  *gocql.Session
	keyspace string
	logger   *log.Logger
}

var _ base.Module = (*ScyllaModule)(nil)

// New creates a ScyllaDB module bound to the given configuration. The
// session is not created until Connect.
func New(cfg *base.ModuleConfig) *ScyllaModule {
	return &ScyllaModule{
		config: cfg,
		logger: log.New(os.Stdout, "[NLF_SCYLLADB] ", log.LstdFlags),
	}
}

// Connect creates the cluster session. Contact points and keyspace come from
// the connection URL (scylla://host1,host2:9042/keyspace) or from the hosts
// and keyspace options.
func (m *ScyllaModule) Connect(ctx context.Context) error {
	if m.config == nil {
		return base.NewModuleError("scylladb", "Connect", "module config is required", nil)
	}

	hosts, keyspace, err := m.contactPoints()
	if err != nil {
		return base.NewModuleError(m.Name(), "Connect", "invalid contact points", err)
	}

	cluster := gocql.NewCluster(hosts...)
	cluster.Keyspace = keyspace

	consistency := m.config.StringOption("consistency", "QUORUM")
	cluster.Consistency = parseConsistency(consistency)

	if m.config.Timeout > 0 {
		cluster.Timeout = m.config.Timeout
	} else {
		cluster.Timeout = DefaultTimeout
	}

	if username := m.config.Credential("username"); username != "" {
		cluster.Authenticator = gocql.PasswordAuthenticator{
			Username: username,
			Password: m.config.Credential("password"),
		}
	}

	cluster.NumConns = m.config.IntOption("num_conns", DefaultNumConns)
	// Token-aware routing sends each query to a replica that owns the data
	cluster.PoolConfig.HostSelectionPolicy = gocql.TokenAwareHostPolicy(gocql.RoundRobinHostPolicy())

	session, err := cluster.CreateSession()
	if err != nil {
		return base.NewModuleError(m.Name(), "Connect", "failed to create session", err)
	}

	m.cluster = cluster
	m.session = session
	m.keyspace = keyspace
	m.logger.Printf("Connected to ScyllaDB: %s (keyspace=%s, consistency=%s)",
		m.Name(), keyspace, consistency)

	return nil
}

// contactPoints resolves the cluster hosts and keyspace from the config
func (m *ScyllaModule) contactPoints() ([]string, string, error) {
	if m.config.ConnectionURL != "" {
		return parseClusterURL(m.config.ConnectionURL)
	}

	hostList := m.config.StringOption("hosts", "")
	if hostList == "" {
		hostList = m.config.StringOption("host", "localhost:9042")
	}
	keyspace := m.config.StringOption("keyspace", "")
	if keyspace == "" {
		return nil, "", fmt.Errorf("keyspace option is required")
	}

	return strings.Split(hostList, ","), keyspace, nil
}

// Close shuts down the cluster session. Safe to call on an unconnected module.
func (m *ScyllaModule) Close(ctx context.Context) error {
	if m.session == nil {
		return nil
	}

	m.session.Close()
	m.session = nil
	m.logger.Printf("Disconnected from ScyllaDB: %s", m.Name())
	return nil
}

// HealthCheck verifies the cluster connection is healthy
func (m *ScyllaModule) HealthCheck(ctx context.Context) (*base.HealthStatus, error) {
	if m.session == nil {
		return &base.HealthStatus{
			Healthy:   false,
			Error:     "session not connected",
			Timestamp: time.Now(),
		}, nil
	}

	start := time.Now()
	var releaseVersion string
	err := m.session.Query("SELECT release_version FROM system.local").
		WithContext(ctx).Scan(&releaseVersion)
	latency := time.Since(start)

	if err != nil {
		return &base.HealthStatus{
			Healthy:   false,
			Latency:   latency,
			Timestamp: time.Now(),
			Error:     err.Error(),
		}, nil
	}

	return &base.HealthStatus{
		Healthy:   true,
		Latency:   latency,
		Timestamp: time.Now(),
		Details: map[string]string{
			"release_version": releaseVersion,
			"keyspace":        m.keyspace,
			"consistency":     m.cluster.Consistency.String(),
		},
	}, nil
}

// Query executes a CQL SELECT statement with positional ? placeholders and
// returns the rows as maps keyed by column name.
func (m *ScyllaModule) Query(ctx context.Context, cql string, args ...interface{}) ([]map[string]interface{}, error) {
	if m.session == nil {
		return nil, base.NewModuleError(m.Name(), "Query", "session not connected", nil)
	}

	start := time.Now()
	iter := m.session.Query(cql, args...).WithContext(ctx).Iter()

	results := make([]map[string]interface{}, 0)
	for {
		row := make(map[string]interface{})
		if !iter.MapScan(row) {
			break
		}
		results = append(results, row)
	}

	if err := iter.Close(); err != nil {
		return nil, base.NewModuleError(m.Name(), "Query", "query execution failed", err)
	}

	m.logger.Printf("CQL query executed: %d rows in %v", len(results), time.Since(start))
	return results, nil
}

// Exec runs a CQL INSERT, UPDATE, DELETE, or DDL statement. Cassandra does
// not report affected rows, so success is the only signal.
func (m *ScyllaModule) Exec(ctx context.Context, cql string, args ...interface{}) error {
	if m.session == nil {
		return base.NewModuleError(m.Name(), "Exec", "session not connected", nil)
	}

	start := time.Now()
	if err := m.session.Query(cql, args...).WithContext(ctx).Exec(); err != nil {
		return base.NewModuleError(m.Name(), "Exec", "statement execution failed", err)
	}

	m.logger.Printf("CQL statement executed in %v", time.Since(start))
	return nil
}

// Insert writes one row into a table. Column order is derived from the data
// map deterministically, and a positive ttl adds a USING TTL clause.
func (m *ScyllaModule) Insert(ctx context.Context, table string, data map[string]interface{}, ttl int) error {
	if m.session == nil {
		return base.NewModuleError(m.Name(), "Insert", "session not connected", nil)
	}

	cql, values, err := buildInsertCQL(m.keyspace, table, data, ttl)
	if err != nil {
		return base.NewModuleError(m.Name(), "Insert", "failed to build statement", err)
	}

	if err := m.session.Query(cql, values...).WithContext(ctx).Exec(); err != nil {
		return base.NewModuleError(m.Name(), "Insert", "insert failed", err)
	}
	return nil
}

// Select reads rows from a table with equality conditions. Columns defaults
// to * when empty, and a positive limit adds a LIMIT clause.
func (m *ScyllaModule) Select(ctx context.Context, table string, columns []string, where map[string]interface{}, limit int) ([]map[string]interface{}, error) {
	if m.session == nil {
		return nil, base.NewModuleError(m.Name(), "Select", "session not connected", nil)
	}

	cql, values, err := buildSelectCQL(m.keyspace, table, columns, where, limit)
	if err != nil {
		return nil, base.NewModuleError(m.Name(), "Select", "failed to build statement", err)
	}

	return m.Query(ctx, cql, values...)
}

// Update modifies columns on rows matched by equality conditions. A positive
// ttl adds a USING TTL clause.
func (m *ScyllaModule) Update(ctx context.Context, table string, set, where map[string]interface{}, ttl int) error {
	if m.session == nil {
		return base.NewModuleError(m.Name(), "Update", "session not connected", nil)
	}

	cql, values, err := buildUpdateCQL(m.keyspace, table, set, where, ttl)
	if err != nil {
		return base.NewModuleError(m.Name(), "Update", "failed to build statement", err)
	}

	if err := m.session.Query(cql, values...).WithContext(ctx).Exec(); err != nil {
		return base.NewModuleError(m.Name(), "Update", "update failed", err)
	}
	return nil
}

// Delete removes rows matched by equality conditions
func (m *ScyllaModule) Delete(ctx context.Context, table string, where map[string]interface{}) error {
	if m.session == nil {
		return base.NewModuleError(m.Name(), "Delete", "session not connected", nil)
	}

	cql, values, err := buildDeleteCQL(m.keyspace, table, where)
	if err != nil {
		return base.NewModuleError(m.Name(), "Delete", "failed to build statement", err)
	}

	if err := m.session.Query(cql, values...).WithContext(ctx).Exec(); err != nil {
		return base.NewModuleError(m.Name(), "Delete", "delete failed", err)
	}
	return nil
}

// BatchInsert writes multiple rows in one batch. Logged batches are atomic;
// unlogged batches are faster but not atomic across partitions. Every row
// must carry the same columns as the first.
func (m *ScyllaModule) BatchInsert(ctx context.Context, table string, rows []map[string]interface{}, unlogged bool) error {
	if m.session == nil {
		return base.NewModuleError(m.Name(), "BatchInsert", "session not connected", nil)
	}
	if len(rows) == 0 {
		return nil
	}

	cql, columns, err := buildBatchInsertCQL(m.keyspace, table, rows[0])
	if err != nil {
		return base.NewModuleError(m.Name(), "BatchInsert", "failed to build statement", err)
	}

	batchType := gocql.LoggedBatch
	if unlogged {
		batchType = gocql.UnloggedBatch
	}
	batch := m.session.NewBatch(batchType).WithContext(ctx)

	for i, row := range rows {
		values := make([]interface{}, len(columns))
		for j, col := range columns {
			val, ok := row[col]
			if !ok {
				return base.NewModuleError(m.Name(), "BatchInsert",
					fmt.Sprintf("row %d is missing column %q", i, col), nil)
			}
			values[j] = val
		}
		batch.Query(cql, values...)
	}

	start := time.Now()
	if err := m.session.ExecuteBatch(batch); err != nil {
		return base.NewModuleError(m.Name(), "BatchInsert", "batch execution failed", err)
	}

	m.logger.Printf("Batch insert executed: %d rows in %v", len(rows), time.Since(start))
	return nil
}

// IncrementCounter adds delta to a counter column on the rows matched by
// equality conditions. Counter columns only support increments.
func (m *ScyllaModule) IncrementCounter(ctx context.Context, table, counterColumn string, delta int64, where map[string]interface{}) error {
	if m.session == nil {
		return base.NewModuleError(m.Name(), "IncrementCounter", "session not connected", nil)
	}

	cql, values, err := buildCounterCQL(m.keyspace, table, counterColumn, where)
	if err != nil {
		return base.NewModuleError(m.Name(), "IncrementCounter", "failed to build statement", err)
	}

	args := append([]interface{}{delta}, values...)
	if err := m.session.Query(cql, args...).WithContext(ctx).Exec(); err != nil {
		return base.NewModuleError(m.Name(), "IncrementCounter", "counter update failed", err)
	}
	return nil
}

// ListTables lists the table names in the bound keyspace
func (m *ScyllaModule) ListTables(ctx context.Context) ([]string, error) {
	if m.session == nil {
		return nil, base.NewModuleError(m.Name(), "ListTables", "session not connected", nil)
	}

	rows, err := m.Query(ctx,
		"SELECT table_name FROM system_schema.tables WHERE keyspace_name = ?", m.keyspace)
	if err != nil {
		return nil, err
	}

	tables := make([]string, 0, len(rows))
	for _, row := range rows {
		if name, ok := row["table_name"].(string); ok {
			tables = append(tables, name)
		}
	}
	return tables, nil
}

// Name returns the configured instance name, or "scylladb" when unnamed
func (m *ScyllaModule) Name() string {
	if m.config == nil || m.config.Name == "" {
		return "scylladb"
	}
	return m.config.Name
}

// parseClusterURL parses a cluster connection URL of the form
// scylla://host1:port,host2:port/keyspace (cassandra:// works too).
func parseClusterURL(url string) ([]string, string, error) {
	url = strings.TrimPrefix(url, "scylla://")
	url = strings.TrimPrefix(url, "cassandra://")

	parts := strings.Split(url, "/")
	if len(parts) != 2 {
		return nil, "", fmt.Errorf("invalid connection URL format (expected: scylla://host:port/keyspace)")
	}

	hosts := strings.Split(parts[0], ",")
	keyspace := parts[1]

	if len(hosts) == 0 || hosts[0] == "" || keyspace == "" {
		return nil, "", fmt.Errorf("invalid connection URL: missing hosts or keyspace")
	}

	return hosts, keyspace, nil
}

// parseConsistency converts a consistency level name to gocql.Consistency,
// defaulting to QUORUM for unknown names.
func parseConsistency(level string) gocql.Consistency {
	switch strings.ToUpper(level) {
	case "ANY":
		return gocql.Any
	case "ONE":
		return gocql.One
	case "TWO":
		return gocql.Two
	case "THREE":
		return gocql.Three
	case "QUORUM":
		return gocql.Quorum
	case "ALL":
		return gocql.All
	case "LOCAL_QUORUM":
		return gocql.LocalQuorum
	case "EACH_QUORUM":
		return gocql.EachQuorum
	case "LOCAL_ONE":
		return gocql.LocalOne
	default:
		return gocql.Quorum
	}
}

// qualifyTable validates a table name and qualifies it with the keyspace
func qualifyTable(keyspace, table string) (string, error) {
	if err := base.ValidateIdentifier(table); err != nil {
		return "", fmt.Errorf("invalid table name: %w", err)
	}
	return keyspace + "." + table, nil
}

// sortedColumns validates the keys of a column map and returns them in a
// stable order. CQL identifiers cannot be bound as parameters, so they are
// validated before interpolation.
func sortedColumns(data map[string]interface{}) ([]string, error) {
	columns := make([]string, 0, len(data))
	for col := range data {
		if err := base.ValidateIdentifier(col); err != nil {
			return nil, fmt.Errorf("invalid column name: %w", err)
		}
		columns = append(columns, col)
	}
	sort.Strings(columns)
	return columns, nil
}

// buildWhereClause renders equality conditions in stable column order
func buildWhereClause(where map[string]interface{}) (string, []interface{}, error) {
	if len(where) == 0 {
		return "", nil, fmt.Errorf("at least one condition is required")
	}

	columns, err := sortedColumns(where)
	if err != nil {
		return "", nil, err
	}

	conditions := make([]string, len(columns))
	values := make([]interface{}, len(columns))
	for i, col := range columns {
		conditions[i] = col + " = ?"
		values[i] = where[col]
	}

	return strings.Join(conditions, " AND "), values, nil
}

func buildInsertCQL(keyspace, table string, data map[string]interface{}, ttl int) (string, []interface{}, error) {
	if len(data) == 0 {
		return "", nil, fmt.Errorf("data is required")
	}

	qualified, err := qualifyTable(keyspace, table)
	if err != nil {
		return "", nil, err
	}

	columns, err := sortedColumns(data)
	if err != nil {
		return "", nil, err
	}

	placeholders := make([]string, len(columns))
	values := make([]interface{}, len(columns))
	for i, col := range columns {
		placeholders[i] = "?"
		values[i] = data[col]
	}

	cql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		qualified, strings.Join(columns, ", "), strings.Join(placeholders, ", "))
	if ttl > 0 {
		cql += fmt.Sprintf(" USING TTL %d", ttl)
	}

	return cql, values, nil
}

func buildSelectCQL(keyspace, table string, columns []string, where map[string]interface{}, limit int) (string, []interface{}, error) {
	qualified, err := qualifyTable(keyspace, table)
	if err != nil {
		return "", nil, err
	}

	columnList := "*"
	if len(columns) > 0 {
		for _, col := range columns {
			if err := base.ValidateIdentifier(col); err != nil {
				return "", nil, fmt.Errorf("invalid column name: %w", err)
			}
		}
		columnList = strings.Join(columns, ", ")
	}

	cql := fmt.Sprintf("SELECT %s FROM %s", columnList, qualified)

	var values []interface{}
	if len(where) > 0 {
		clause, vals, err := buildWhereClause(where)
		if err != nil {
			return "", nil, err
		}
		cql += " WHERE " + clause
		values = vals
	}

	if limit > 0 {
		cql += fmt.Sprintf(" LIMIT %d", limit)
	}

	return cql, values, nil
}

func buildUpdateCQL(keyspace, table string, set, where map[string]interface{}, ttl int) (string, []interface{}, error) {
	if len(set) == 0 {
		return "", nil, fmt.Errorf("set values are required")
	}

	qualified, err := qualifyTable(keyspace, table)
	if err != nil {
		return "", nil, err
	}

	setColumns, err := sortedColumns(set)
	if err != nil {
		return "", nil, err
	}

	assignments := make([]string, len(setColumns))
	values := make([]interface{}, 0, len(set)+len(where))
	for i, col := range setColumns {
		assignments[i] = col + " = ?"
		values = append(values, set[col])
	}

	whereClause, whereValues, err := buildWhereClause(where)
	if err != nil {
		return "", nil, err
	}
	values = append(values, whereValues...)

	cql := "UPDATE " + qualified
	if ttl > 0 {
		cql += fmt.Sprintf(" USING TTL %d", ttl)
	}
	cql += " SET " + strings.Join(assignments, ", ") + " WHERE " + whereClause

	return cql, values, nil
}

func buildDeleteCQL(keyspace, table string, where map[string]interface{}) (string, []interface{}, error) {
	qualified, err := qualifyTable(keyspace, table)
	if err != nil {
		return "", nil, err
	}

	clause, values, err := buildWhereClause(where)
	if err != nil {
		return "", nil, err
	}

	return "DELETE FROM " + qualified + " WHERE " + clause, values, nil
}

func buildBatchInsertCQL(keyspace, table string, firstRow map[string]interface{}) (string, []string, error) {
	if len(firstRow) == 0 {
		return "", nil, fmt.Errorf("rows must not be empty")
	}

	qualified, err := qualifyTable(keyspace, table)
	if err != nil {
		return "", nil, err
	}

	columns, err := sortedColumns(firstRow)
	if err != nil {
		return "", nil, err
	}

	placeholders := make([]string, len(columns))
	for i := range columns {
		placeholders[i] = "?"
	}

	cql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		qualified, strings.Join(columns, ", "), strings.Join(placeholders, ", "))
	return cql, columns, nil
}

func buildCounterCQL(keyspace, table, counterColumn string, where map[string]interface{}) (string, []interface{}, error) {
	qualified, err := qualifyTable(keyspace, table)
	if err != nil {
		return "", nil, err
	}
	if err := base.ValidateIdentifier(counterColumn); err != nil {
		return "", nil, fmt.Errorf("invalid counter column: %w", err)
	}

	clause, values, err := buildWhereClause(where)
	if err != nil {
		return "", nil, err
	}

	cql := fmt.Sprintf("UPDATE %s SET %s = %s + ? WHERE %s",
		qualified, counterColumn, counterColumn, clause)
	return cql, values, nil
}
