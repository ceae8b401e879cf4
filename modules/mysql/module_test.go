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
	"errors"
	"io"
	"log"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"nl2flow/platform/modules/base"
)

func testModule(t *testing.T) (*MySQLModule, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	m := New(&base.ModuleConfig{
		Name:     "test-mysql",
		TaskType: "mysql",
		Timeout:  5 * time.Second,
	})
	m.db = db
	m.logger = log.New(io.Discard, "", 0)
	return m, mock
}

func TestNew(t *testing.T) {
	m := New(nil)
	if m == nil {
		t.Fatal("New returned nil")
	}
	if m.logger == nil {
		t.Error("expected logger to be initialized")
	}
}

func TestName(t *testing.T) {
	if got := New(nil).Name(); got != "mysql" {
		t.Errorf("Name() without config = %q, want %q", got, "mysql")
	}

	m := New(&base.ModuleConfig{Name: "orders-db"})
	if got := m.Name(); got != "orders-db" {
		t.Errorf("Name() with config = %q, want %q", got, "orders-db")
	}
}

func TestMetadata(t *testing.T) {
	md := New(nil).Metadata()

	if md.Name != "MySQL" {
		t.Errorf("Name = %q, want MySQL", md.Name)
	}
	if md.TaskType != "mysql" {
		t.Errorf("TaskType = %q, want mysql", md.TaskType)
	}
	if md.Version != base.DefaultVersion {
		t.Errorf("Version = %q, want %q", md.Version, base.DefaultVersion)
	}
	if len(md.Keywords) == 0 || md.Keywords[0] != "mysql" {
		t.Errorf("Keywords = %v, want mysql first", md.Keywords)
	}
	if len(md.Dependencies) != 1 || !strings.Contains(md.Dependencies[0], "go-sql-driver") {
		t.Errorf("Dependencies = %v, want the MySQL driver", md.Dependencies)
	}
}

func TestDocumentationSurface(t *testing.T) {
	m := New(nil)

	if len(m.UsageNotes()) == 0 {
		t.Error("expected non-empty usage notes")
	}

	methods := m.Methods()
	wantNames := []string{
		"mysql_query",
		"mysql_execute",
		"mysql_execute_many",
		"mysql_call_procedure",
		"mysql_pool_status",
	}
	if len(methods) != len(wantNames) {
		t.Fatalf("Methods() returned %d entries, want %d", len(methods), len(wantNames))
	}
	for i, want := range wantNames {
		if methods[i].Name != want {
			t.Errorf("method[%d] = %q, want %q", i, methods[i].Name, want)
		}
		if methods[i].Description == "" {
			t.Errorf("method %q has no description", want)
		}
		if methods[i].Returns == "" {
			t.Errorf("method %q has no returns", want)
		}
		if len(methods[i].Examples) == 0 {
			t.Errorf("method %q has no examples", want)
		}
	}

	doc := base.Describe(m)
	if doc.Metadata.TaskType != "mysql" {
		t.Errorf("Describe task type = %q, want mysql", doc.Metadata.TaskType)
	}
}

func TestBuildDSN(t *testing.T) {
	tests := []struct {
		name    string
		config  *base.ModuleConfig
		want    string
		wantErr bool
	}{
		{
			name: "connection URL gains parseTime",
			config: &base.ModuleConfig{
				ConnectionURL: "user:pass@tcp(localhost:3306)/testdb",
			},
			want: "user:pass@tcp(localhost:3306)/testdb?parseTime=true",
		},
		{
			name: "connection URL keeps existing params",
			config: &base.ModuleConfig{
				ConnectionURL: "user:pass@tcp(localhost:3306)/testdb?parseTime=true&loc=UTC",
			},
			want: "user:pass@tcp(localhost:3306)/testdb?parseTime=true&loc=UTC",
		},
		{
			name: "credentials injected into bare URL",
			config: &base.ModuleConfig{
				ConnectionURL: "tcp(localhost:3306)/testdb?parseTime=true",
				Credentials:   map[string]string{"username": "u", "password": "p"},
			},
			want: "u:p@tcp(localhost:3306)/testdb?parseTime=true",
		},
		{
			name: "built from options",
			config: &base.ModuleConfig{
				Options: map[string]interface{}{
					"host":     "db.internal",
					"port":     3307,
					"database": "orders",
				},
				Credentials: map[string]string{"username": "u", "password": "p"},
			},
			want: "u:p@tcp(db.internal:3307)/orders",
		},
		{
			name: "missing database",
			config: &base.ModuleConfig{
				Options: map[string]interface{}{"host": "localhost"},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New(tt.config)
			dsn, err := m.buildDSN()
			if (err != nil) != tt.wantErr {
				t.Fatalf("buildDSN() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if !strings.HasPrefix(dsn, tt.want) {
				t.Errorf("buildDSN() = %q, want prefix %q", dsn, tt.want)
			}
		})
	}
}

func TestConnectRequiresConfig(t *testing.T) {
	err := New(nil).Connect(context.Background())
	if err == nil {
		t.Fatal("expected error for nil config")
	}

	var modErr *base.ModuleError
	if !errors.As(err, &modErr) {
		t.Fatalf("expected ModuleError, got %T", err)
	}
	if modErr.Operation != "Connect" {
		t.Errorf("Operation = %q, want Connect", modErr.Operation)
	}
}

func TestOperationsWithoutConnect(t *testing.T) {
	m := New(&base.ModuleConfig{Name: "test"})
	ctx := context.Background()

	if _, err := m.Query(ctx, "SELECT 1"); err == nil {
		t.Error("expected Query error when not connected")
	}
	if _, err := m.Exec(ctx, "DELETE FROM t"); err == nil {
		t.Error("expected Exec error when not connected")
	}
	if err := m.ExecMany(ctx, "INSERT INTO t VALUES (?)", [][]interface{}{{1}}); err == nil {
		t.Error("expected ExecMany error when not connected")
	}
	if _, err := m.CallProcedure(ctx, "do_things"); err == nil {
		t.Error("expected CallProcedure error when not connected")
	}
}

func TestCloseWithoutConnect(t *testing.T) {
	if err := New(nil).Close(context.Background()); err != nil {
		t.Errorf("Close() error = %v, want nil", err)
	}
}

func TestHealthCheckWithoutConnect(t *testing.T) {
	status, err := New(nil).HealthCheck(context.Background())
	if err != nil {
		t.Fatalf("HealthCheck() error = %v", err)
	}
	if status.Healthy {
		t.Error("expected unhealthy status when not connected")
	}
	if status.Error != "database not connected" {
		t.Errorf("Error = %q, want 'database not connected'", status.Error)
	}
}

func TestQuery(t *testing.T) {
	m, mock := testModule(t)

	rows := sqlmock.NewRows([]string{"id", "name"}).
		AddRow(1, "Alice").
		AddRow(2, "Bob")
	mock.ExpectQuery("SELECT id, name FROM users").WillReturnRows(rows)

	results, err := m.Query(context.Background(), "SELECT id, name FROM users")
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(results))
	}
	if results[0]["name"] != "Alice" {
		t.Errorf("expected name Alice, got %v", results[0]["name"])
	}
	if results[1]["id"] != int64(2) {
		t.Errorf("expected id 2, got %v", results[1]["id"])
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestQueryWithArgs(t *testing.T) {
	m, mock := testModule(t)

	rows := sqlmock.NewRows([]string{"id"}).AddRow(7)
	mock.ExpectQuery("SELECT id FROM users WHERE age >").
		WithArgs(30).
		WillReturnRows(rows)

	results, err := m.Query(context.Background(), "SELECT id FROM users WHERE age > ?", 30)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 row, got %d", len(results))
	}
}

func TestQueryError(t *testing.T) {
	m, mock := testModule(t)

	mock.ExpectQuery("SELECT broken").WillReturnError(errors.New("syntax error"))

	_, err := m.Query(context.Background(), "SELECT broken")
	if err == nil {
		t.Fatal("expected query error")
	}

	var modErr *base.ModuleError
	if !errors.As(err, &modErr) {
		t.Fatalf("expected ModuleError, got %T", err)
	}
	if modErr.ModuleName != "test-mysql" {
		t.Errorf("ModuleName = %q, want test-mysql", modErr.ModuleName)
	}
}

func TestExec(t *testing.T) {
	m, mock := testModule(t)

	mock.ExpectExec("UPDATE users SET status").
		WithArgs("active", 7).
		WillReturnResult(sqlmock.NewResult(0, 3))

	affected, err := m.Exec(context.Background(), "UPDATE users SET status = ? WHERE group_id = ?", "active", 7)
	if err != nil {
		t.Fatalf("Exec() error = %v", err)
	}
	if affected != 3 {
		t.Errorf("rows affected = %d, want 3", affected)
	}
}

func TestExecInsertLogsLastID(t *testing.T) {
	m, mock := testModule(t)

	mock.ExpectExec("INSERT INTO users").
		WithArgs("Alice").
		WillReturnResult(sqlmock.NewResult(42, 1))

	affected, err := m.Exec(context.Background(), "INSERT INTO users (name) VALUES (?)", "Alice")
	if err != nil {
		t.Fatalf("Exec() error = %v", err)
	}
	if affected != 1 {
		t.Errorf("rows affected = %d, want 1", affected)
	}
}

func TestExecMany(t *testing.T) {
	m, mock := testModule(t)

	mock.ExpectBegin()
	prep := mock.ExpectPrepare("INSERT INTO users")
	prep.ExpectExec().WithArgs("Alice", 30).WillReturnResult(sqlmock.NewResult(1, 1))
	prep.ExpectExec().WithArgs("Bob", 25).WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	err := m.ExecMany(context.Background(), "INSERT INTO users (name, age) VALUES (?, ?)", [][]interface{}{
		{"Alice", 30},
		{"Bob", 25},
	})
	if err != nil {
		t.Fatalf("ExecMany() error = %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestExecManyRollsBackOnError(t *testing.T) {
	m, mock := testModule(t)

	mock.ExpectBegin()
	prep := mock.ExpectPrepare("INSERT INTO users")
	prep.ExpectExec().WithArgs("Alice", 30).WillReturnResult(sqlmock.NewResult(1, 1))
	prep.ExpectExec().WithArgs("Bob", 25).WillReturnError(errors.New("duplicate key"))
	mock.ExpectRollback()

	err := m.ExecMany(context.Background(), "INSERT INTO users (name, age) VALUES (?, ?)", [][]interface{}{
		{"Alice", 30},
		{"Bob", 25},
	})
	if err == nil {
		t.Fatal("expected batch error")
	}
	if !strings.Contains(err.Error(), "set 1") {
		t.Errorf("error should name the failing set, got: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestExecManyEmptyBatch(t *testing.T) {
	m, _ := testModule(t)

	if err := m.ExecMany(context.Background(), "INSERT INTO t VALUES (?)", nil); err != nil {
		t.Errorf("ExecMany() with empty batch = %v, want nil", err)
	}
}

func TestCallProcedure(t *testing.T) {
	m, mock := testModule(t)

	rows := sqlmock.NewRows([]string{"order_id", "total"}).
		AddRow(100, "19.99")
	mock.ExpectQuery("CALL get_user_orders").
		WithArgs(7).
		WillReturnRows(rows)

	results, err := m.CallProcedure(context.Background(), "get_user_orders", 7)
	if err != nil {
		t.Fatalf("CallProcedure() error = %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 row, got %d", len(results))
	}
}

func TestCallProcedureRejectsInvalidName(t *testing.T) {
	m, _ := testModule(t)

	tests := []string{
		"",
		"drop table; --",
		"1starts_with_digit",
		"SELECT",
	}
	for _, name := range tests {
		if _, err := m.CallProcedure(context.Background(), name); err == nil {
			t.Errorf("expected error for procedure name %q", name)
		}
	}
}

func TestHealthCheck(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	m := New(&base.ModuleConfig{Name: "test-mysql", Timeout: 5 * time.Second})
	m.db = db
	m.logger = log.New(io.Discard, "", 0)

	mock.ExpectPing()
	mock.ExpectQuery("SELECT VERSION").
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow("8.0.36"))

	status, err := m.HealthCheck(context.Background())
	if err != nil {
		t.Fatalf("HealthCheck() error = %v", err)
	}
	if !status.Healthy {
		t.Errorf("expected healthy status, got error: %s", status.Error)
	}
	if status.Details["mysql_version"] != "8.0.36" {
		t.Errorf("mysql_version = %q, want 8.0.36", status.Details["mysql_version"])
	}
}

func TestPoolStatus(t *testing.T) {
	m, _ := testModule(t)

	status := m.PoolStatus()
	if status["connected"] != true {
		t.Errorf("connected = %v, want true", status["connected"])
	}
	if _, ok := status["open_connections"]; !ok {
		t.Error("expected open_connections in pool status")
	}

	disconnected := New(nil).PoolStatus()
	if disconnected["connected"] != false {
		t.Errorf("connected = %v, want false", disconnected["connected"])
	}
}

func TestDurationOption(t *testing.T) {
	cfg := &base.ModuleConfig{
		Options: map[string]interface{}{
			"conn_max_lifetime": "10m",
			"bad_duration":      "not-a-duration",
		},
	}

	if got := durationOption(cfg, "conn_max_lifetime", time.Minute); got != 10*time.Minute {
		t.Errorf("durationOption = %v, want 10m", got)
	}
	if got := durationOption(cfg, "bad_duration", time.Minute); got != time.Minute {
		t.Errorf("durationOption with invalid value = %v, want default", got)
	}
	if got := durationOption(cfg, "missing", time.Minute); got != time.Minute {
		t.Errorf("durationOption with missing key = %v, want default", got)
	}
}

// Integration tests - run against a real MySQL when MYSQL_TEST_DSN is set

func skipIfNoMySQL(t *testing.T) *MySQLModule {
	dsn := os.Getenv("MYSQL_TEST_DSN")
	if dsn == "" {
		t.Skip("MYSQL_TEST_DSN not set")
		return nil
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Skipf("MySQL not available: %v", err)
		return nil
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		t.Skipf("MySQL not available: %v", err)
		return nil
	}

	m := New(&base.ModuleConfig{
		Name:          "test-mysql",
		TaskType:      "mysql",
		ConnectionURL: dsn,
		Timeout:       30 * time.Second,
	})
	if err := m.Connect(context.Background()); err != nil {
		t.Skipf("Failed to connect: %v", err)
		return nil
	}
	return m
}

func TestIntegrationRoundTrip(t *testing.T) {
	m := skipIfNoMySQL(t)
	if m == nil {
		return
	}
	defer m.Close(context.Background())

	ctx := context.Background()

	if _, err := m.Exec(ctx, "CREATE TABLE IF NOT EXISTS module_test (id INT PRIMARY KEY, name VARCHAR(255))"); err != nil {
		t.Fatalf("failed to create test table: %v", err)
	}
	defer func() { _, _ = m.Exec(ctx, "DROP TABLE IF EXISTS module_test") }()

	affected, err := m.Exec(ctx, "INSERT INTO module_test (id, name) VALUES (?, ?)", 1, "Alice")
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if affected != 1 {
		t.Errorf("expected 1 row affected, got %d", affected)
	}

	rows, err := m.Query(ctx, "SELECT id, name FROM module_test WHERE id = ?", 1)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(rows) != 1 || rows[0]["name"] != "Alice" {
		t.Errorf("unexpected rows: %v", rows)
	}

	status, err := m.HealthCheck(ctx)
	if err != nil {
		t.Fatalf("HealthCheck() error = %v", err)
	}
	if !status.Healthy {
		t.Errorf("expected healthy, got %s", status.Error)
	}
}
