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

package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"
	"time"
)

// TestNew tests logger initialization
func TestNew(t *testing.T) {
	tests := []struct {
		name           string
		component      string
		instanceID     string
		expectedComp   string
		expectedInstID string
	}{
		{
			name:           "with instance ID set",
			component:      "registry",
			instanceID:     "instance-123",
			expectedComp:   "registry",
			expectedInstID: "instance-123",
		},
		{
			name:           "without instance ID",
			component:      "catalog",
			instanceID:     "",
			expectedComp:   "catalog",
			expectedInstID: "unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.instanceID != "" {
				if err := os.Setenv("INSTANCE_ID", tt.instanceID); err != nil {
					t.Fatalf("Failed to set INSTANCE_ID: %v", err)
				}
				defer func() {
					if err := os.Unsetenv("INSTANCE_ID"); err != nil {
						t.Errorf("Failed to unset INSTANCE_ID: %v", err)
					}
				}()
			} else {
				if err := os.Unsetenv("INSTANCE_ID"); err != nil {
					t.Fatalf("Failed to unset INSTANCE_ID: %v", err)
				}
			}

			logger := New(tt.component)

			if logger.Component != tt.expectedComp {
				t.Errorf("Expected component %s, got %s", tt.expectedComp, logger.Component)
			}

			if logger.InstanceID != tt.expectedInstID {
				t.Errorf("Expected instance ID %s, got %s", tt.expectedInstID, logger.InstanceID)
			}

			if logger.Container == "" {
				t.Error("Expected container to be set from hostname")
			}
		})
	}
}

func parseEntry(t *testing.T, output string) LogEntry {
	t.Helper()

	jsonStart := strings.Index(output, "{")
	if jsonStart == -1 {
		t.Fatalf("No JSON found in log output: %q", output)
	}
	jsonStr := strings.TrimSpace(output[jsonStart:])

	var entry LogEntry
	if err := json.Unmarshal([]byte(jsonStr), &entry); err != nil {
		t.Fatalf("Failed to parse JSON log: %v\nOutput: %s", err, output)
	}
	return entry
}

// TestLogLevels tests all log level methods
func TestLogLevels(t *testing.T) {
	tests := []struct {
		name    string
		logFunc func(*Logger, string, string, string, map[string]interface{})
		level   LogLevel
		message string
		module  string
		scanID  string
		fields  map[string]interface{}
	}{
		{
			name:    "Info log",
			logFunc: (*Logger).Info,
			level:   INFO,
			message: "module documented",
			module:  "mysql",
			scanID:  "scan-456",
			fields:  map[string]interface{}{"task_type": "mysql"},
		},
		{
			name:    "Error log",
			logFunc: (*Logger).Error,
			level:   ERROR,
			message: "module build failed",
			module:  "neo4j",
			scanID:  "scan-012",
			fields:  map[string]interface{}{"attempt": 1},
		},
		{
			name:    "Warn log",
			logFunc: (*Logger).Warn,
			level:   WARN,
			message: "module skipped",
			module:  "opensearch",
			scanID:  "scan-def",
			fields:  nil,
		},
		{
			name:    "Debug log",
			logFunc: (*Logger).Debug,
			level:   DEBUG,
			message: "scan started",
			module:  "",
			scanID:  "scan-uvw",
			fields:  map[string]interface{}{"registered": 12},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := New("test-component")
			logger.SetOutput(&buf)

			tt.logFunc(logger, tt.module, tt.scanID, tt.message, tt.fields)

			entry := parseEntry(t, buf.String())

			if entry.Level != tt.level {
				t.Errorf("Expected level %s, got %s", tt.level, entry.Level)
			}

			if entry.Message != tt.message {
				t.Errorf("Expected message '%s', got '%s'", tt.message, entry.Message)
			}

			if entry.Module != tt.module {
				t.Errorf("Expected module '%s', got '%s'", tt.module, entry.Module)
			}

			if entry.ScanID != tt.scanID {
				t.Errorf("Expected scan ID '%s', got '%s'", tt.scanID, entry.ScanID)
			}

			if entry.Component != "test-component" {
				t.Errorf("Expected component 'test-component', got '%s'", entry.Component)
			}

			if _, err := time.Parse(time.RFC3339Nano, entry.Timestamp); err != nil {
				t.Errorf("Invalid timestamp format: %s", entry.Timestamp)
			}

			if tt.fields != nil {
				for key, expectedValue := range tt.fields {
					actualValue, ok := entry.Fields[key]
					if !ok {
						t.Errorf("Expected field '%s' not found", key)
						continue
					}
					// JSON unmarshals numbers as float64
					if expected, isInt := expectedValue.(int); isInt {
						if actual, isFloat := actualValue.(float64); !isFloat || int(actual) != expected {
							t.Errorf("Field '%s': expected %v, got %v", key, expectedValue, actualValue)
						}
						continue
					}
					if actualValue != expectedValue {
						t.Errorf("Field '%s': expected %v, got %v", key, expectedValue, actualValue)
					}
				}
			}
		})
	}
}

// TestWarnWithCause tests that the underlying error lands in the fields
func TestWarnWithCause(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		fields      map[string]interface{}
		expectError bool
	}{
		{
			name:        "with cause",
			err:         errors.New("uri option is required"),
			fields:      map[string]interface{}{"task_type": "neo4j"},
			expectError: true,
		},
		{
			name:        "without cause",
			err:         nil,
			fields:      nil,
			expectError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := New("registry")
			logger.SetOutput(&buf)

			logger.WarnWithCause("neo4j", "scan-1", "module skipped", tt.err, tt.fields)

			entry := parseEntry(t, buf.String())

			if entry.Level != WARN {
				t.Errorf("Expected WARN level, got %s", entry.Level)
			}

			errMsg, ok := entry.Fields["error"]
			if tt.expectError {
				if !ok {
					t.Fatal("Expected error field not found")
				}
				if errMsg != tt.err.Error() {
					t.Errorf("Expected error '%s', got '%v'", tt.err.Error(), errMsg)
				}
			} else if ok {
				t.Errorf("Did not expect error field, got '%v'", errMsg)
			}

			for key, expectedValue := range tt.fields {
				if actualValue := entry.Fields[key]; actualValue != expectedValue {
					t.Errorf("Field '%s': expected %v, got %v", key, expectedValue, actualValue)
				}
			}
		})
	}
}

// TestErrorWithCause tests the error-level variant
func TestErrorWithCause(t *testing.T) {
	var buf bytes.Buffer
	logger := New("registry")
	logger.SetOutput(&buf)

	logger.ErrorWithCause("mysql", "scan-9", "connect failed", errors.New("dial tcp: refused"), nil)

	entry := parseEntry(t, buf.String())

	if entry.Level != ERROR {
		t.Errorf("Expected ERROR level, got %s", entry.Level)
	}
	if entry.Fields["error"] != "dial tcp: refused" {
		t.Errorf("Expected cause in fields, got %v", entry.Fields["error"])
	}
}

// TestInfoWithDuration tests the InfoWithDuration helper method
func TestInfoWithDuration(t *testing.T) {
	var buf bytes.Buffer
	logger := New("registry")
	logger.SetOutput(&buf)

	logger.InfoWithDuration("", "scan-456", "scan completed", 123.45, map[string]interface{}{
		"documented": 8,
	})

	entry := parseEntry(t, buf.String())

	durationMS, ok := entry.Fields["duration_ms"]
	if !ok {
		t.Error("Expected duration_ms field not found")
	}

	if durationMS != 123.45 {
		t.Errorf("Expected duration_ms 123.45, got %v", durationMS)
	}

	documented, ok := entry.Fields["documented"]
	if !ok {
		t.Error("Expected documented field not found")
	}
	if count, isFloat := documented.(float64); !isFloat || int(count) != 8 {
		t.Errorf("Expected documented 8, got %v", documented)
	}

	if entry.Level != INFO {
		t.Errorf("Expected INFO level, got %s", entry.Level)
	}
}

// TestJSONMarshalError tests behavior when JSON marshaling fails
func TestJSONMarshalError(t *testing.T) {
	var buf bytes.Buffer
	logger := New("test-component")
	logger.SetOutput(&buf)

	// Channels cannot be marshaled to JSON
	ch := make(chan int)
	logger.Info("mysql", "scan-456", "Test message", map[string]interface{}{
		"channel": ch,
	})

	if !strings.Contains(buf.String(), "Failed to marshal log entry") {
		t.Error("Expected error message about JSON marshaling failure")
	}
}

// BenchmarkLog benchmarks the logging performance
func BenchmarkLog(b *testing.B) {
	logger := New("benchmark-component")
	var buf bytes.Buffer
	logger.SetOutput(&buf)

	fields := map[string]interface{}{
		"task_type":  "mysql",
		"documented": true,
		"methods":    7,
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		logger.Info("mysql", "scan-456", "module documented", fields)
	}
}
