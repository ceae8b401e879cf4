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

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver

	"nl2flow/platform/modules/base"
	"nl2flow/platform/modules/sdk"
)

const (
	// DefaultMaxOpenConns is the default maximum number of open connections
	DefaultMaxOpenConns = 25
	// DefaultMaxIdleConns is the default maximum number of idle connections
	DefaultMaxIdleConns = 5
	// DefaultConnMaxLifetime is the default maximum connection lifetime
	DefaultConnMaxLifetime = 5 * time.Minute
	// DefaultConnMaxIdleTime is the default maximum idle time for connections
	DefaultConnMaxIdleTime = 5 * time.Minute
)

// MySQLModule drives MySQL and MariaDB databases for generated flows. It
// provides connection pooling, parameterized queries, batch execution, and
// stored procedure calls for MySQL 5.7+ and 8.0+.
type MySQLModule struct {
	config *base.ModuleConfig
	db     *sql.DB
	logger *log.Logger
}

var _ base.Module = (*MySQLModule)(nil)

// New creates a MySQL module bound to the given configuration. The database
// pool is not opened until Connect.
func New(cfg *base.ModuleConfig) *MySQLModule {
	return &MySQLModule{
		config: cfg,
		logger: log.New(os.Stdout, "[NLF_MYSQL] ", log.LstdFlags),
	}
}

// Connect opens the connection pool and verifies connectivity with a ping.
// Transient ping failures are retried per the configured retry budget.
func (m *MySQLModule) Connect(ctx context.Context) error {
	if m.config == nil {
		return base.NewModuleError("mysql", "Connect", "module config is required", nil)
	}

	dsn, err := m.buildDSN()
	if err != nil {
		return base.NewModuleError(m.Name(), "Connect", "failed to build DSN", err)
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return base.NewModuleError(m.Name(), "Connect", "failed to open connection", err)
	}

	db.SetMaxOpenConns(m.config.IntOption("max_open_conns", DefaultMaxOpenConns))
	db.SetMaxIdleConns(m.config.IntOption("max_idle_conns", DefaultMaxIdleConns))
	db.SetConnMaxLifetime(durationOption(m.config, "conn_max_lifetime", DefaultConnMaxLifetime))
	db.SetConnMaxIdleTime(durationOption(m.config, "conn_max_idle_time", DefaultConnMaxIdleTime))

	err = sdk.RetryVoid(ctx, sdk.RetryConfigFor(m.config), func() error {
		pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		return db.PingContext(pingCtx)
	})
	if err != nil {
		_ = db.Close()
		return base.NewModuleError(m.Name(), "Connect", "failed to ping database", err)
	}

	m.db = db
	m.logger.Printf("Connected to MySQL: %s (max_open=%d, max_idle=%d)",
		m.Name(), m.config.IntOption("max_open_conns", DefaultMaxOpenConns),
		m.config.IntOption("max_idle_conns", DefaultMaxIdleConns))

	return nil
}

// buildDSN constructs the MySQL Data Source Name from the module config
func (m *MySQLModule) buildDSN() (string, error) {
	if m.config.ConnectionURL != "" {
		return m.enhanceDSN(m.config.ConnectionURL), nil
	}

	host := m.config.StringOption("host", "localhost")
	port := m.config.IntOption("port", 3306)
	database := m.config.StringOption("database", "")
	if database == "" {
		return "", fmt.Errorf("database name is required")
	}

	username := m.config.Credential("username")
	password := m.config.Credential("password")

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s", username, password, host, port, database)

	params := []string{
		"parseTime=true", // Parse TIME/DATE/DATETIME to time.Time
		"loc=UTC",
		"charset=utf8mb4", // Full UTF-8 support
		"collation=utf8mb4_unicode_ci",
		"timeout=10s",
		"readTimeout=30s",
		"writeTimeout=30s",
		"multiStatements=false",   // SQL injection prevention
		"interpolateParams=false", // Server-side prepared statements
	}
	if tls := m.config.StringOption("tls", ""); tls != "" {
		params = append(params, "tls="+tls)
	}

	return dsn + "?" + strings.Join(params, "&"), nil
}

// enhanceDSN ensures a user-supplied DSN parses time columns and carries the
// configured credentials when it does not embed its own.
func (m *MySQLModule) enhanceDSN(dsn string) string {
	if !strings.Contains(dsn, "parseTime") {
		if strings.Contains(dsn, "?") {
			dsn += "&parseTime=true"
		} else {
			dsn += "?parseTime=true"
		}
	}

	if m.config.Credential("username") != "" && !strings.Contains(dsn, "@") {
		dsn = fmt.Sprintf("%s:%s@%s", m.config.Credential("username"), m.config.Credential("password"), dsn)
	}

	return dsn
}

// Close shuts down the connection pool. Safe to call on an unconnected module.
func (m *MySQLModule) Close(ctx context.Context) error {
	if m.db == nil {
		return nil
	}

	if err := m.db.Close(); err != nil {
		return base.NewModuleError(m.Name(), "Close", "failed to close connection pool", err)
	}

	m.db = nil
	m.logger.Printf("Disconnected from MySQL: %s", m.Name())
	return nil
}

// HealthCheck verifies the database connection is healthy
func (m *MySQLModule) HealthCheck(ctx context.Context) (*base.HealthStatus, error) {
	if m.db == nil {
		return &base.HealthStatus{
			Healthy:   false,
			Error:     "database not connected",
			Timestamp: time.Now(),
		}, nil
	}

	start := time.Now()
	err := m.db.PingContext(ctx)
	latency := time.Since(start)

	if err != nil {
		return &base.HealthStatus{
			Healthy:   false,
			Latency:   latency,
			Timestamp: time.Now(),
			Error:     err.Error(),
		}, nil
	}

	stats := m.db.Stats()

	var version string
	row := m.db.QueryRowContext(ctx, "SELECT VERSION()")
	_ = row.Scan(&version)

	return &base.HealthStatus{
		Healthy:   true,
		Latency:   latency,
		Timestamp: time.Now(),
		Details: map[string]string{
			"open_connections": strconv.Itoa(stats.OpenConnections),
			"in_use":           strconv.Itoa(stats.InUse),
			"idle":             strconv.Itoa(stats.Idle),
			"wait_count":       strconv.FormatInt(stats.WaitCount, 10),
			"mysql_version":    version,
		},
	}, nil
}

// Query executes a SELECT statement and returns the rows as maps keyed by
// column name. Placeholders use ? and values are bound server-side.
func (m *MySQLModule) Query(ctx context.Context, query string, args ...interface{}) ([]map[string]interface{}, error) {
	if m.db == nil {
		return nil, base.NewModuleError(m.Name(), "Query", "database not connected", nil)
	}

	queryCtx, cancel := m.config.WithTimeout(ctx)
	defer cancel()

	start := time.Now()
	rows, err := m.db.QueryContext(queryCtx, query, args...)
	if err != nil {
		return nil, base.NewModuleError(m.Name(), "Query", "query execution failed", err)
	}
	defer func() { _ = rows.Close() }()

	results, err := m.scanRows(rows)
	if err != nil {
		return nil, base.NewModuleError(m.Name(), "Query", "failed to read result set", err)
	}

	m.logger.Printf("Query executed: %d rows in %v", len(results), time.Since(start))
	return results, nil
}

// Exec runs an INSERT, UPDATE, DELETE, or DDL statement and returns the
// number of rows affected.
func (m *MySQLModule) Exec(ctx context.Context, stmt string, args ...interface{}) (int64, error) {
	if m.db == nil {
		return 0, base.NewModuleError(m.Name(), "Exec", "database not connected", nil)
	}

	execCtx, cancel := m.config.WithTimeout(ctx)
	defer cancel()

	start := time.Now()
	result, err := m.db.ExecContext(execCtx, stmt, args...)
	if err != nil {
		return 0, base.NewModuleError(m.Name(), "Exec", "statement execution failed", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		m.logger.Printf("Warning: could not get rows affected: %v", err)
		rowsAffected = 0
	}

	if strings.HasPrefix(strings.ToUpper(strings.TrimSpace(stmt)), "INSERT") {
		if lastID, err := result.LastInsertId(); err == nil && lastID > 0 {
			m.logger.Printf("Statement executed: %d rows affected in %v (last_insert_id=%d)",
				rowsAffected, time.Since(start), lastID)
			return rowsAffected, nil
		}
	}

	m.logger.Printf("Statement executed: %d rows affected in %v", rowsAffected, time.Since(start))
	return rowsAffected, nil
}

// ExecMany runs the same statement once per argument set inside a single
// transaction. The whole batch commits together or rolls back on the first
// failure.
func (m *MySQLModule) ExecMany(ctx context.Context, stmt string, argSets [][]interface{}) error {
	if m.db == nil {
		return base.NewModuleError(m.Name(), "ExecMany", "database not connected", nil)
	}
	if len(argSets) == 0 {
		return nil
	}

	execCtx, cancel := m.config.WithTimeout(ctx)
	defer cancel()

	tx, err := m.db.BeginTx(execCtx, nil)
	if err != nil {
		return base.NewModuleError(m.Name(), "ExecMany", "failed to begin transaction", err)
	}

	prepared, err := tx.PrepareContext(execCtx, stmt)
	if err != nil {
		_ = tx.Rollback()
		return base.NewModuleError(m.Name(), "ExecMany", "failed to prepare statement", err)
	}
	defer func() { _ = prepared.Close() }()

	start := time.Now()
	for i, args := range argSets {
		if _, err := prepared.ExecContext(execCtx, args...); err != nil {
			_ = tx.Rollback()
			return base.NewModuleError(m.Name(), "ExecMany",
				fmt.Sprintf("batch execution failed at set %d", i), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return base.NewModuleError(m.Name(), "ExecMany", "failed to commit batch", err)
	}

	m.logger.Printf("Batch executed: %d statements in %v", len(argSets), time.Since(start))
	return nil
}

// CallProcedure invokes a stored procedure and returns any rows it produces.
// The procedure name lands in an identifier position, so it is validated
// before the CALL statement is built.
func (m *MySQLModule) CallProcedure(ctx context.Context, procName string, args ...interface{}) ([]map[string]interface{}, error) {
	if m.db == nil {
		return nil, base.NewModuleError(m.Name(), "CallProcedure", "database not connected", nil)
	}

	if err := base.ValidateIdentifier(procName); err != nil {
		return nil, base.NewModuleError(m.Name(), "CallProcedure", "invalid procedure name", err)
	}

	placeholders := make([]string, len(args))
	for i := range args {
		placeholders[i] = "?"
	}
	stmt := fmt.Sprintf("CALL %s(%s)", procName, strings.Join(placeholders, ", "))

	callCtx, cancel := m.config.WithTimeout(ctx)
	defer cancel()

	rows, err := m.db.QueryContext(callCtx, stmt, args...)
	if err != nil {
		return nil, base.NewModuleError(m.Name(), "CallProcedure", "procedure call failed", err)
	}
	defer func() { _ = rows.Close() }()

	results, err := m.scanRows(rows)
	if err != nil {
		return nil, base.NewModuleError(m.Name(), "CallProcedure", "failed to read procedure results", err)
	}

	m.logger.Printf("Procedure %s executed: %d rows", procName, len(results))
	return results, nil
}

// PoolStatus reports connection pool statistics for monitoring
func (m *MySQLModule) PoolStatus() map[string]interface{} {
	if m.db == nil {
		return map[string]interface{}{"connected": false}
	}

	stats := m.db.Stats()
	return map[string]interface{}{
		"connected":            true,
		"max_open_connections": stats.MaxOpenConnections,
		"open_connections":     stats.OpenConnections,
		"in_use":               stats.InUse,
		"idle":                 stats.Idle,
		"wait_count":           stats.WaitCount,
		"wait_duration":        stats.WaitDuration.String(),
	}
}

// Name returns the configured instance name, or "mysql" when unnamed
func (m *MySQLModule) Name() string {
	if m.config == nil || m.config.Name == "" {
		return "mysql"
	}
	return m.config.Name
}

// scanRows reads all rows into maps keyed by column name, converting driver
// values to plain Go types.
func (m *MySQLModule) scanRows(rows *sql.Rows) ([]map[string]interface{}, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}

	columnTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("failed to get column types: %w", err)
	}

	results := make([]map[string]interface{}, 0)
	for rows.Next() {
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		row := make(map[string]interface{})
		for i, col := range columns {
			row[col] = convertValue(values[i], columnTypes[i])
		}
		results = append(results, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}

	return results, nil
}

// convertValue converts database values to appropriate Go types. The MySQL
// driver returns text columns as []byte; those become strings, and DECIMAL
// stays a string to preserve precision.
func convertValue(val interface{}, colType *sql.ColumnType) interface{} {
	if val == nil {
		return nil
	}

	switch v := val.(type) {
	case []byte:
		typeName := strings.ToUpper(colType.DatabaseTypeName())
		switch {
		case strings.Contains(typeName, "CHAR"),
			strings.Contains(typeName, "TEXT"),
			strings.Contains(typeName, "ENUM"),
			strings.Contains(typeName, "SET"),
			typeName == "JSON":
			return string(v)
		case strings.Contains(typeName, "DECIMAL"),
			strings.Contains(typeName, "NUMERIC"):
			return string(v)
		default:
			// BLOB and other binary types stay as []byte
			return v
		}
	default:
		return v
	}
}

// durationOption reads a duration-formatted string option ("5m", "90s")
func durationOption(cfg *base.ModuleConfig, key string, defaultValue time.Duration) time.Duration {
	if val := cfg.StringOption(key, ""); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultValue
}
