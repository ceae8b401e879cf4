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

package base

import (
	"context"
	"time"
)

// Describer is the capability contract every catalog module implements.
// All three methods return static in-memory data: they must be cheap,
// deterministic, and safe to call on an unconnected module. No network
// access, no client state.
type Describer interface {
	// Metadata identifies the module. TaskType is the catalog key.
	Metadata() Metadata

	// UsageNotes returns operational guidance in presentation order.
	UsageNotes() []string

	// Methods returns the documented method surface in presentation order.
	Methods() []MethodInfo
}

// Describe assembles the full documentation bundle from the three contract
// methods. It performs no recovery: a misbehaving Describer fails its
// caller. Fault isolation belongs to the registry scan, not here.
func Describe(d Describer) Documentation {
	return Documentation{
		Metadata:   d.Metadata(),
		UsageNotes: d.UsageNotes(),
		Methods:    d.Methods(),
	}
}

// Module is the lifecycle interface for service-backed integration modules.
// Vendor clients are built eagerly in Connect; before Connect succeeds only
// the Describer methods may be used.
type Module interface {
	Describer

	// Connect builds the vendor client(s) and verifies connectivity.
	Connect(ctx context.Context) error

	// Close releases clients and pools. Safe on an unconnected module.
	Close(ctx context.Context) error

	// HealthCheck reports liveness of the underlying service connection.
	HealthCheck(ctx context.Context) (*HealthStatus, error)
}

// ModuleConfig holds the configuration for a module instance
type ModuleConfig struct {
	Name          string                 `json:"name" yaml:"name"`                     // Unique name for this module instance
	TaskType      string                 `json:"task_type" yaml:"task_type"`           // Catalog key: mysql, mongodb, s3, ...
	ConnectionURL string                 `json:"connection_url" yaml:"connection_url"` // Connection string (DSN)
	Credentials   map[string]string      `json:"credentials" yaml:"credentials"`       // Username, password, API keys
	Options       map[string]interface{} `json:"options" yaml:"options"`               // Module-specific options
	Timeout       time.Duration          `json:"timeout" yaml:"timeout"`               // Operation timeout (default: 30s)
	MaxRetries    int                    `json:"max_retries" yaml:"max_retries"`       // Retry count for transient failures
}

// Option retrieves an option value with a fallback default
func (c *ModuleConfig) Option(key string, defaultValue interface{}) interface{} {
	if c == nil || c.Options == nil {
		return defaultValue
	}
	if val, ok := c.Options[key]; ok {
		return val
	}
	return defaultValue
}

// StringOption retrieves a string option
func (c *ModuleConfig) StringOption(key, defaultValue string) string {
	if s, ok := c.Option(key, defaultValue).(string); ok {
		return s
	}
	return defaultValue
}

// IntOption retrieves an integer option. YAML and JSON decoders produce
// different numeric types, so int, int64, and float64 are all accepted.
func (c *ModuleConfig) IntOption(key string, defaultValue int) int {
	switch v := c.Option(key, defaultValue).(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return defaultValue
}

// BoolOption retrieves a boolean option
func (c *ModuleConfig) BoolOption(key string, defaultValue bool) bool {
	if b, ok := c.Option(key, defaultValue).(bool); ok {
		return b
	}
	return defaultValue
}

// Credential retrieves a credential value, or "" when unset
func (c *ModuleConfig) Credential(key string) string {
	if c == nil || c.Credentials == nil {
		return ""
	}
	return c.Credentials[key]
}

// OperationTimeout returns the configured timeout or the 30s default
func (c *ModuleConfig) OperationTimeout() time.Duration {
	if c != nil && c.Timeout > 0 {
		return c.Timeout
	}
	return 30 * time.Second
}

// WithTimeout creates a context bounded by the module's configured timeout
func (c *ModuleConfig) WithTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.OperationTimeout())
}

// HealthStatus represents the health of a module's service connection
type HealthStatus struct {
	Healthy   bool              `json:"healthy"`   // Overall health status
	Latency   time.Duration     `json:"latency"`   // Connection latency
	Details   map[string]string `json:"details"`   // Additional diagnostic info
	Timestamp time.Time         `json:"timestamp"` // When health check was performed
	Error     string            `json:"error"`     // Error message if unhealthy
}

// ModuleError represents errors specific to module operations
type ModuleError struct {
	ModuleName string
	Operation  string
	Message    string
	Cause      error
}

func (e *ModuleError) Error() string {
	if e.Cause != nil {
		return e.ModuleName + "." + e.Operation + ": " + e.Message + " (cause: " + e.Cause.Error() + ")"
	}
	return e.ModuleName + "." + e.Operation + ": " + e.Message
}

func (e *ModuleError) Unwrap() error {
	return e.Cause
}

// NewModuleError creates a new ModuleError
func NewModuleError(moduleName, operation, message string, cause error) *ModuleError {
	return &ModuleError{
		ModuleName: moduleName,
		Operation:  operation,
		Message:    message,
		Cause:      cause,
	}
}
