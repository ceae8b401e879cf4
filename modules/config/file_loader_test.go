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

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestExpandEnvVars(t *testing.T) {
	os.Setenv("TEST_VAR", "test_value")
	os.Setenv("OTHER_VAR", "other_value")
	defer os.Unsetenv("TEST_VAR")
	defer os.Unsetenv("OTHER_VAR")

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "dollar brace syntax",
			input:    "prefix ${TEST_VAR} suffix",
			expected: "prefix test_value suffix",
		},
		{
			name:     "dollar syntax",
			input:    "prefix $TEST_VAR suffix",
			expected: "prefix test_value suffix",
		},
		{
			name:     "default value - var exists",
			input:    "${TEST_VAR:-default}",
			expected: "test_value",
		},
		{
			name:     "default value - var not exists",
			input:    "${UNDEFINED_VAR:-default_val}",
			expected: "default_val",
		},
		{
			name:     "undefined var - empty result",
			input:    "${UNDEFINED_VAR}",
			expected: "",
		},
		{
			name:     "multiple vars",
			input:    "${TEST_VAR} and ${OTHER_VAR}",
			expected: "test_value and other_value",
		},
		{
			name:     "no vars",
			input:    "plain text without variables",
			expected: "plain text without variables",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := expandEnvVars(tt.input)
			if result != tt.expected {
				t.Errorf("expandEnvVars(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestValidateConfigFile(t *testing.T) {
	tests := []struct {
		name    string
		config  *ConfigFile
		wantErr bool
		errMsg  string
	}{
		{
			name: "valid config",
			config: &ConfigFile{
				Version: "1.0",
				Modules: map[string]ModuleFileConfig{
					"orders": {TaskType: "mysql", Enabled: true},
				},
			},
			wantErr: false,
		},
		{
			name:    "missing version",
			config:  &ConfigFile{},
			wantErr: true,
			errMsg:  "must specify a version",
		},
		{
			name: "module missing task type",
			config: &ConfigFile{
				Version: "1.0",
				Modules: map[string]ModuleFileConfig{
					"invalid": {Enabled: true},
				},
			},
			wantErr: true,
			errMsg:  "must specify a task_type",
		},
		{
			name: "module invalid task type",
			config: &ConfigFile{
				Version: "1.0",
				Modules: map[string]ModuleFileConfig{
					"bad": {TaskType: "oracle", Enabled: true},
				},
			},
			wantErr: true,
			errMsg:  "invalid task_type",
		},
		{
			name: "all valid task types",
			config: &ConfigFile{
				Version: "1.0",
				Modules: map[string]ModuleFileConfig{
					"a": {TaskType: "s3", Enabled: true},
					"b": {TaskType: "dynamodb", Enabled: true},
					"c": {TaskType: "mongodb", Enabled: true},
					"d": {TaskType: "mysql", Enabled: true},
					"e": {TaskType: "postgres", Enabled: true},
					"f": {TaskType: "scylladb", Enabled: true},
					"g": {TaskType: "neo4j", Enabled: true},
					"h": {TaskType: "opensearch", Enabled: true},
					"i": {TaskType: "prometheus", Enabled: true},
					"j": {TaskType: "redis", Enabled: true},
					"k": {TaskType: "azureblob", Enabled: true},
					"l": {TaskType: "gcs", Enabled: true},
					"m": {TaskType: "custom", Enabled: true},
				},
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateConfigFile(tt.config)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				} else if !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("error = %q, want to contain %q", err.Error(), tt.errMsg)
				}
			} else {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
			}
		})
	}
}

func TestGenerateExampleConfigFile(t *testing.T) {
	example := GenerateExampleConfigFile()

	expectedSections := []string{
		"version:",
		"modules:",
		"orders_db:",
		"reports_bucket:",
		"sessions_table:",
		"logs_search:",
		"${MYSQL_URL}",
		"${MYSQL_USER:-root}",
		"credentials_secret:",
	}

	for _, section := range expectedSections {
		if !strings.Contains(example, section) {
			t.Errorf("example config should contain %q", section)
		}
	}
}

func TestNewYAMLLoader_FileNotFound(t *testing.T) {
	_, err := NewYAMLLoader("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("expected error for nonexistent file")
	}
}

func TestNewYAMLLoader_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	tmpFile := filepath.Join(tmpDir, "invalid.yaml")
	err := os.WriteFile(tmpFile, []byte("invalid: yaml: content: ["), 0644)
	if err != nil {
		t.Fatal(err)
	}

	_, err = NewYAMLLoader(tmpFile)
	if err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestYAMLLoaderModules(t *testing.T) {
	os.Setenv("TEST_MYSQL_PASSWORD", "sekrit")
	defer os.Unsetenv("TEST_MYSQL_PASSWORD")

	tmpDir := t.TempDir()
	tmpFile := filepath.Join(tmpDir, "config.yaml")
	content := `
version: "1.0"
modules:
  orders_db:
    task_type: mysql
    enabled: true
    connection_url: mysql://localhost:3306/orders
    credentials:
      username: root
      password: ${TEST_MYSQL_PASSWORD}
    timeout_ms: 5000
    max_retries: 2
  archive:
    task_type: s3
    enabled: true
    credentials_secret: arn:aws:secretsmanager:us-east-1:1234:secret:archive
    options:
      region: eu-west-1
  disabled_one:
    task_type: redis
    enabled: false
    connection_url: redis://localhost:6379
`
	if err := os.WriteFile(tmpFile, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	loader, err := NewYAMLLoader(tmpFile)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	configs, err := loader.Modules()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(configs) != 2 {
		t.Fatalf("expected 2 enabled modules, got %d", len(configs))
	}

	// Sorted by name: archive before orders_db
	if configs[0].Name != "archive" || configs[1].Name != "orders_db" {
		t.Errorf("expected sorted order [archive orders_db], got [%s %s]", configs[0].Name, configs[1].Name)
	}

	archive := configs[0]
	if archive.TaskType != "s3" {
		t.Errorf("expected task type s3, got %s", archive.TaskType)
	}
	if got := archive.StringOption("credentials_secret", ""); !strings.HasSuffix(got, "secret:archive") {
		t.Errorf("expected credentials_secret option, got %q", got)
	}
	if got := archive.StringOption("region", ""); got != "eu-west-1" {
		t.Errorf("expected region option, got %q", got)
	}
	if archive.Timeout != 30*time.Second {
		t.Errorf("expected default timeout 30s, got %v", archive.Timeout)
	}
	if archive.MaxRetries != 3 {
		t.Errorf("expected default max retries 3, got %d", archive.MaxRetries)
	}

	orders := configs[1]
	if orders.Timeout != 5*time.Second {
		t.Errorf("expected timeout 5s, got %v", orders.Timeout)
	}
	if orders.MaxRetries != 2 {
		t.Errorf("expected max retries 2, got %d", orders.MaxRetries)
	}
	if orders.Credentials["password"] != "sekrit" {
		t.Errorf("expected expanded password, got %q", orders.Credentials["password"])
	}
}

func TestYAMLLoaderReload(t *testing.T) {
	tmpDir := t.TempDir()
	tmpFile := filepath.Join(tmpDir, "config.yaml")
	content := `
version: "1.0"
modules:
  cache:
    task_type: redis
    enabled: true
    connection_url: redis://localhost:6379
`
	if err := os.WriteFile(tmpFile, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	loader, err := NewYAMLLoader(tmpFile)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	updated := strings.Replace(content, "enabled: true", "enabled: false", 1)
	if err := os.WriteFile(tmpFile, []byte(updated), 0644); err != nil {
		t.Fatal(err)
	}

	if err := loader.Reload(); err != nil {
		t.Fatalf("reload failed: %v", err)
	}

	configs, err := loader.Modules()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(configs) != 0 {
		t.Errorf("expected no enabled modules after reload, got %d", len(configs))
	}
}
