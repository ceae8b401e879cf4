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

package sdk

import (
	"context"
	"log"
	"os"
	"strings"
	"sync"

	"nl2flow/platform/modules/base"
)

// BaseModule carries the plumbing shared by integration modules: the module
// config, a prefixed operational logger, connection state, and call metrics.
// It implements none of the Describer contract; embedding modules own their
// documentation.
type BaseModule struct {
	name     string
	taskType string
	version  string
	config   *base.ModuleConfig
	logger   *log.Logger
	metrics  *ModuleMetrics

	connected bool
	mu        sync.RWMutex
}

// NewBaseModule creates the shared plumbing for a module of the given task
// type. The config may be nil; Describer methods and logging still work.
func NewBaseModule(taskType string, cfg *base.ModuleConfig) *BaseModule {
	name := taskType
	if cfg != nil && cfg.Name != "" {
		name = cfg.Name
	}
	return &BaseModule{
		name:     name,
		taskType: taskType,
		version:  base.DefaultVersion,
		config:   cfg,
		logger:   log.New(os.Stdout, "[NLF_"+strings.ToUpper(taskType)+"] ", log.LstdFlags),
		metrics:  NewModuleMetrics(taskType),
	}
}

// Name returns the configured instance name, or the task type when unnamed
func (m *BaseModule) Name() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.name
}

// TaskType returns the catalog key this module serves
func (m *BaseModule) TaskType() string {
	return m.taskType
}

// Version returns the module version
func (m *BaseModule) Version() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.version
}

// SetVersion overrides the framework default version
func (m *BaseModule) SetVersion(version string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.version = version
}

// Config returns the module configuration (may be nil)
func (m *BaseModule) Config() *base.ModuleConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// IsConnected reports whether Connect has completed successfully
func (m *BaseModule) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connected
}

// SetConnected flips connection state and records it in the metrics
func (m *BaseModule) SetConnected(connected bool) {
	m.mu.Lock()
	m.connected = connected
	m.mu.Unlock()

	if connected {
		m.metrics.RecordConnect()
	} else {
		m.metrics.RecordClose()
	}
}

// RequireConnected returns a ModuleError when the module has not been
// connected. Vendor methods call it before touching their client.
func (m *BaseModule) RequireConnected(op string) error {
	if !m.IsConnected() {
		return base.NewModuleError(m.Name(), op, "module is not connected", nil)
	}
	return nil
}

// Logf writes to the module's prefixed operational log
func (m *BaseModule) Logf(format string, args ...interface{}) {
	m.mu.RLock()
	logger := m.logger
	m.mu.RUnlock()
	if logger != nil {
		logger.Printf(format, args...)
	}
}

// SetLogger replaces the operational logger, primarily for tests
func (m *BaseModule) SetLogger(logger *log.Logger) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logger = logger
}

// Metrics returns the module's call metrics
func (m *BaseModule) Metrics() *ModuleMetrics {
	return m.metrics
}

// WithTimeout bounds a context by the configured operation timeout
func (m *BaseModule) WithTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return m.Config().WithTimeout(ctx)
}
