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

package redis

import (
	"context"
	"io"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"nl2flow/platform/modules/base"
)

func testModule(t *testing.T) (*RedisModule, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)

	m := New(&base.ModuleConfig{
		Name:          "test-redis",
		TaskType:      "redis",
		ConnectionURL: "redis://" + mr.Addr(),
		Timeout:       5 * time.Second,
	})
	m.logger = log.New(io.Discard, "", 0)

	if err := m.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	t.Cleanup(func() { _ = m.Close(context.Background()) })

	return m, mr
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
	if got := New(nil).Name(); got != "redis" {
		t.Errorf("Name() without config = %q, want %q", got, "redis")
	}

	m := New(&base.ModuleConfig{Name: "session-cache"})
	if got := m.Name(); got != "session-cache" {
		t.Errorf("Name() with config = %q, want %q", got, "session-cache")
	}
}

func TestMetadata(t *testing.T) {
	md := New(nil).Metadata()

	if md.Name != "Redis" {
		t.Errorf("Name = %q, want Redis", md.Name)
	}
	if md.TaskType != "redis" {
		t.Errorf("TaskType = %q, want redis", md.TaskType)
	}
	if md.Version != base.DefaultVersion {
		t.Errorf("Version = %q, want %q", md.Version, base.DefaultVersion)
	}
	if len(md.Dependencies) != 1 || !strings.Contains(md.Dependencies[0], "go-redis") {
		t.Errorf("Dependencies = %v, want the Redis client", md.Dependencies)
	}
}

func TestDocumentationSurface(t *testing.T) {
	m := New(nil)

	if len(m.UsageNotes()) == 0 {
		t.Error("expected non-empty usage notes")
	}

	methods := m.Methods()
	if len(methods) == 0 {
		t.Fatal("expected documented methods")
	}
	for _, method := range methods {
		if !strings.HasPrefix(method.Name, "redis_") {
			t.Errorf("method %q should carry the redis_ prefix", method.Name)
		}
		if len(method.Examples) == 0 {
			t.Errorf("method %q has no examples", method.Name)
		}
	}

	doc := base.Describe(m)
	if doc.Metadata.TaskType != "redis" {
		t.Errorf("Describe task type = %q, want redis", doc.Metadata.TaskType)
	}
}

func TestConnectRequiresConfig(t *testing.T) {
	if err := New(nil).Connect(context.Background()); err == nil {
		t.Fatal("expected error for nil config")
	}
}

func TestConnectRejectsBadURL(t *testing.T) {
	m := New(&base.ModuleConfig{
		Name:          "test",
		ConnectionURL: "http://not-a-redis-url",
	})
	if err := m.Connect(context.Background()); err == nil {
		t.Fatal("expected error for invalid connection URL")
	}
}

func TestOperationsWithoutConnect(t *testing.T) {
	m := New(&base.ModuleConfig{Name: "test"})
	ctx := context.Background()

	if _, _, err := m.Get(ctx, "k"); err == nil {
		t.Error("expected Get error when not connected")
	}
	if err := m.Set(ctx, "k", "v", 0); err == nil {
		t.Error("expected Set error when not connected")
	}
	if _, err := m.Delete(ctx, "k"); err == nil {
		t.Error("expected Delete error when not connected")
	}
	if _, err := m.Exists(ctx, "k"); err == nil {
		t.Error("expected Exists error when not connected")
	}
	if _, err := m.Expire(ctx, "k", time.Minute); err == nil {
		t.Error("expected Expire error when not connected")
	}
	if _, err := m.TTL(ctx, "k"); err == nil {
		t.Error("expected TTL error when not connected")
	}
	if _, err := m.Increment(ctx, "k", 1); err == nil {
		t.Error("expected Increment error when not connected")
	}
	if _, err := m.Keys(ctx, "*", 10); err == nil {
		t.Error("expected Keys error when not connected")
	}
	if _, err := m.Stats(ctx); err == nil {
		t.Error("expected Stats error when not connected")
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
	if status.Error != "client not connected" {
		t.Errorf("Error = %q, want 'client not connected'", status.Error)
	}
}

func TestSetGet(t *testing.T) {
	m, _ := testModule(t)
	ctx := context.Background()

	if err := m.Set(ctx, "greeting", "hello", 0); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	val, exists, err := m.Get(ctx, "greeting")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !exists {
		t.Fatal("expected key to exist")
	}
	if val != "hello" {
		t.Errorf("value = %q, want hello", val)
	}
}

func TestGetMissingKey(t *testing.T) {
	m, _ := testModule(t)

	val, exists, err := m.Get(context.Background(), "missing")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if exists {
		t.Error("expected exists=false for missing key")
	}
	if val != "" {
		t.Errorf("value = %q, want empty", val)
	}
}

func TestSetEncodesComplexValues(t *testing.T) {
	m, _ := testModule(t)
	ctx := context.Background()

	err := m.Set(ctx, "user", map[string]interface{}{"name": "Alice"}, 0)
	if err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	val, _, err := m.Get(ctx, "user")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if val != `{"name":"Alice"}` {
		t.Errorf("value = %q, want JSON document", val)
	}
}

func TestSetWithTTL(t *testing.T) {
	m, mr := testModule(t)

	if err := m.Set(context.Background(), "session", "data", time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	if got := mr.TTL("session"); got != time.Minute {
		t.Errorf("TTL = %v, want 1m", got)
	}
}

func TestDelete(t *testing.T) {
	m, mr := testModule(t)

	mr.Set("a", "1")
	mr.Set("b", "2")

	count, err := m.Delete(context.Background(), "a", "b", "missing")
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if count != 2 {
		t.Errorf("deleted = %d, want 2", count)
	}

	count, err = m.Delete(context.Background())
	if err != nil {
		t.Fatalf("Delete() with no keys error = %v", err)
	}
	if count != 0 {
		t.Errorf("deleted = %d, want 0", count)
	}
}

func TestExists(t *testing.T) {
	m, mr := testModule(t)
	ctx := context.Background()

	mr.Set("present", "1")

	exists, err := m.Exists(ctx, "present")
	if err != nil {
		t.Fatalf("Exists() error = %v", err)
	}
	if !exists {
		t.Error("expected present key to exist")
	}

	exists, err = m.Exists(ctx, "absent")
	if err != nil {
		t.Fatalf("Exists() error = %v", err)
	}
	if exists {
		t.Error("expected absent key to not exist")
	}
}

func TestExpireAndTTL(t *testing.T) {
	m, mr := testModule(t)
	ctx := context.Background()

	mr.Set("k", "v")

	ok, err := m.Expire(ctx, "k", 30*time.Second)
	if err != nil {
		t.Fatalf("Expire() error = %v", err)
	}
	if !ok {
		t.Fatal("expected TTL to be set")
	}

	ttl, err := m.TTL(ctx, "k")
	if err != nil {
		t.Fatalf("TTL() error = %v", err)
	}
	if ttl != 30*time.Second {
		t.Errorf("TTL = %v, want 30s", ttl)
	}

	ok, err = m.Expire(ctx, "missing", 30*time.Second)
	if err != nil {
		t.Fatalf("Expire() on missing key error = %v", err)
	}
	if ok {
		t.Error("expected false for missing key")
	}

	if _, err := m.Expire(ctx, "k", 0); err == nil {
		t.Error("expected error for non-positive ttl")
	}
}

func TestTTLConventions(t *testing.T) {
	m, mr := testModule(t)
	ctx := context.Background()

	mr.Set("forever", "v")

	ttl, err := m.TTL(ctx, "forever")
	if err != nil {
		t.Fatalf("TTL() error = %v", err)
	}
	if ttl != -1 {
		t.Errorf("TTL without expiry = %v, want -1", ttl)
	}

	ttl, err = m.TTL(ctx, "missing")
	if err != nil {
		t.Fatalf("TTL() error = %v", err)
	}
	if ttl != -2 {
		t.Errorf("TTL of missing key = %v, want -2", ttl)
	}
}

func TestIncrement(t *testing.T) {
	m, _ := testModule(t)
	ctx := context.Background()

	val, err := m.Increment(ctx, "counter", 1)
	if err != nil {
		t.Fatalf("Increment() error = %v", err)
	}
	if val != 1 {
		t.Errorf("counter = %d, want 1", val)
	}

	val, err = m.Increment(ctx, "counter", 5)
	if err != nil {
		t.Fatalf("Increment() error = %v", err)
	}
	if val != 6 {
		t.Errorf("counter = %d, want 6", val)
	}
}

func TestKeys(t *testing.T) {
	m, mr := testModule(t)

	mr.Set("session:1", "a")
	mr.Set("session:2", "b")
	mr.Set("session:3", "c")
	mr.Set("other:1", "d")

	keys, err := m.Keys(context.Background(), "session:*", 0)
	if err != nil {
		t.Fatalf("Keys() error = %v", err)
	}
	if len(keys) != 3 {
		t.Fatalf("expected 3 keys, got %d: %v", len(keys), keys)
	}
	for _, key := range keys {
		if !strings.HasPrefix(key, "session:") {
			t.Errorf("unexpected key %q", key)
		}
	}
}

func TestKeysLimit(t *testing.T) {
	m, mr := testModule(t)

	for _, key := range []string{"a", "b", "c", "d", "e"} {
		mr.Set(key, "v")
	}

	keys, err := m.Keys(context.Background(), "*", 2)
	if err != nil {
		t.Fatalf("Keys() error = %v", err)
	}
	if len(keys) != 2 {
		t.Errorf("expected 2 keys, got %d", len(keys))
	}
}

func TestStats(t *testing.T) {
	m, mr := testModule(t)

	mr.Set("a", "1")
	mr.Set("b", "2")

	stats, err := m.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats["db_size"] != int64(2) {
		t.Errorf("db_size = %v, want 2", stats["db_size"])
	}
	if _, ok := stats["pool_total_conn"]; !ok {
		t.Error("expected pool stats in output")
	}
}

func TestHealthCheck(t *testing.T) {
	m, mr := testModule(t)

	mr.Set("k", "v")

	status, err := m.HealthCheck(context.Background())
	if err != nil {
		t.Fatalf("HealthCheck() error = %v", err)
	}
	if !status.Healthy {
		t.Fatalf("expected healthy, got error: %s", status.Error)
	}
	if status.Details["db_size"] != "1" {
		t.Errorf("db_size = %q, want 1", status.Details["db_size"])
	}
}

func TestEncodeValue(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  string
	}{
		{"string", "plain", "plain"},
		{"bytes", []byte("raw"), "raw"},
		{"int", 42, "42"},
		{"map", map[string]interface{}{"a": 1}, `{"a":1}`},
		{"slice", []string{"x", "y"}, `["x","y"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := encodeValue(tt.value)
			if err != nil {
				t.Fatalf("encodeValue() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("encodeValue() = %q, want %q", got, tt.want)
			}
		})
	}
}
