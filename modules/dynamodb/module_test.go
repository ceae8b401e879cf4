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
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"nl2flow/platform/modules/base"
)

func TestNew(t *testing.T) {
	m := New(nil)
	if m == nil {
		t.Fatal("New returned nil")
	}
	if m.TaskType() != "dynamodb" {
		t.Errorf("TaskType() = %q, want dynamodb", m.TaskType())
	}
	if m.IsConnected() {
		t.Error("new module must not report connected")
	}
}

func TestMetadata(t *testing.T) {
	md := New(nil).Metadata()

	if md.Name != "DynamoDB" {
		t.Errorf("Name = %q, want DynamoDB", md.Name)
	}
	if md.TaskType != "dynamodb" {
		t.Errorf("TaskType = %q, want dynamodb", md.TaskType)
	}
	if len(md.Dependencies) != 2 {
		t.Errorf("Dependencies = %v, want SDK and attributevalue", md.Dependencies)
	}
}

func TestDocumentationSurface(t *testing.T) {
	m := New(nil)

	if len(m.UsageNotes()) == 0 {
		t.Error("expected non-empty usage notes")
	}

	for _, method := range m.Methods() {
		if !strings.HasPrefix(method.Name, "dynamodb_") {
			t.Errorf("method %q does not carry the dynamodb_ prefix", method.Name)
		}
		if len(method.Examples) == 0 {
			t.Errorf("method %q has no examples", method.Name)
		}
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
}

func TestOperationsWithoutConnect(t *testing.T) {
	m := New(&base.ModuleConfig{Name: "test-ddb"})
	ctx := context.Background()

	if err := m.PutItem(ctx, "t", map[string]interface{}{"id": "1"}); err == nil {
		t.Error("expected PutItem error when not connected")
	}
	if _, err := m.GetItem(ctx, "t", map[string]interface{}{"id": "1"}); err == nil {
		t.Error("expected GetItem error when not connected")
	}
	if _, err := m.Query(ctx, "t", "id = :id", nil, ""); err == nil {
		t.Error("expected Query error when not connected")
	}
	if _, err := m.Scan(ctx, "t", "", nil, 0); err == nil {
		t.Error("expected Scan error when not connected")
	}
	if err := m.DeleteItem(ctx, "t", map[string]interface{}{"id": "1"}); err == nil {
		t.Error("expected DeleteItem error when not connected")
	}
	if _, err := m.BatchPutItems(ctx, "t", []map[string]interface{}{{"id": "1"}}); err == nil {
		t.Error("expected BatchPutItems error when not connected")
	}
}

func TestTableOrDefault(t *testing.T) {
	m := New(&base.ModuleConfig{Name: "test-ddb"})
	m.defaultTable = "sessions"

	if got := m.tableOrDefault("events"); got != "events" {
		t.Errorf("tableOrDefault(events) = %q", got)
	}
	if got := m.tableOrDefault(""); got != "sessions" {
		t.Errorf("tableOrDefault('') = %q, want sessions", got)
	}
}

func TestMarshalExpressionValues(t *testing.T) {
	av, err := marshalExpressionValues(map[string]interface{}{
		":id":  "123",
		":age": 18,
	})
	if err != nil {
		t.Fatalf("marshalExpressionValues() error = %v", err)
	}
	if len(av) != 2 {
		t.Fatalf("expected 2 attribute values, got %d", len(av))
	}

	idVal, ok := av[":id"].(*types.AttributeValueMemberS)
	if !ok {
		t.Fatalf("expected :id to be a string attribute, got %T", av[":id"])
	}
	if idVal.Value != "123" {
		t.Errorf(":id = %q, want 123", idVal.Value)
	}

	ageVal, ok := av[":age"].(*types.AttributeValueMemberN)
	if !ok {
		t.Fatalf("expected :age to be a number attribute, got %T", av[":age"])
	}
	if ageVal.Value != "18" {
		t.Errorf(":age = %q, want 18", ageVal.Value)
	}
}

func TestUnmarshalItems(t *testing.T) {
	items, err := unmarshalItems([]map[string]types.AttributeValue{
		{
			"id":   &types.AttributeValueMemberS{Value: "1"},
			"name": &types.AttributeValueMemberS{Value: "Alice"},
		},
		{
			"id":   &types.AttributeValueMemberS{Value: "2"},
			"name": &types.AttributeValueMemberS{Value: "Bob"},
		},
	})
	if err != nil {
		t.Fatalf("unmarshalItems() error = %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0]["name"] != "Alice" {
		t.Errorf("first item name = %v, want Alice", items[0]["name"])
	}
}

func TestHealthCheckWithoutConnect(t *testing.T) {
	status, err := New(nil).HealthCheck(context.Background())
	if err != nil {
		t.Fatalf("HealthCheck() error = %v", err)
	}
	if status.Healthy {
		t.Error("expected unhealthy status without connection")
	}
}

func TestCloseWithoutConnect(t *testing.T) {
	if err := New(nil).Close(context.Background()); err != nil {
		t.Errorf("Close() error = %v, want nil", err)
	}
}
