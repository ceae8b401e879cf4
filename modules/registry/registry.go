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

package registry

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"nl2flow/platform/modules/base"
	"nl2flow/platform/shared/logger"
)

// Builder constructs an unconnected module instance for a documentation
// scan. Builders must be cheap and deterministic: no network calls, no
// credential checks. A builder returning an error marks its module
// unavailable (missing configuration, unsupported platform) without
// failing the scan.
type Builder func() (base.Describer, error)

// ErrTaskTypeCollision marks a registration whose task type is already
// provided by an earlier registration
var ErrTaskTypeCollision = errors.New("task type already registered")

// Registry holds the statically declared module catalog and produces
// documentation scans over it
// Thread-safe for concurrent access
type Registry struct {
	order     []registration
	index     map[string]int
	taskTypes map[string]string // declared task type -> registration name
	mu        sync.RWMutex
	logger    *logger.Logger
}

type registration struct {
	name    string
	builder Builder
}

// New creates an empty registry
func New() *Registry {
	return NewWithLogger(logger.New("registry"))
}

// NewWithLogger creates an empty registry that reports scan diagnostics
// through the given logger
func NewWithLogger(log *logger.Logger) *Registry {
	return &Registry{
		index:     make(map[string]int),
		taskTypes: make(map[string]string),
		logger:    log,
	}
}

// Register adds a module builder under a unique name.
//
// The builder is probed once so that a task type collision or an empty
// task type surfaces here, at wiring time, as a configuration error. A
// builder that fails to build is still registered: that failure belongs
// to the scan report, like a module whose driver is absent at runtime.
func (r *Registry) Register(name string, builder Builder) error {
	if name == "" {
		return fmt.Errorf("module name is required")
	}
	if builder == nil {
		return fmt.Errorf("module '%s' has a nil builder", name)
	}

	doc, probeErr := describe(registration{name: name, builder: builder})

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.index[name]; exists {
		return fmt.Errorf("module '%s' already registered", name)
	}

	if probeErr == nil {
		taskType := doc.Metadata.TaskType
		if taskType == "" {
			return fmt.Errorf("module '%s' declares no task type", name)
		}
		if owner, taken := r.taskTypes[taskType]; taken {
			return fmt.Errorf("module '%s': task type '%s' already provided by module '%s': %w",
				name, taskType, owner, ErrTaskTypeCollision)
		}
		r.taskTypes[taskType] = name
	}

	r.index[name] = len(r.order)
	r.order = append(r.order, registration{name: name, builder: builder})

	return nil
}

// MustRegister is Register that panics on error. Intended for the static
// catalog declaration, where a collision is a programming error.
func (r *Registry) MustRegister(name string, builder Builder) {
	if err := r.Register(name, builder); err != nil {
		panic(err)
	}
}

// Names returns registered module names in registration order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.order))
	for _, reg := range r.order {
		names = append(names, reg.name)
	}

	return names
}

// Len returns the number of registered modules
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Scan builds and introspects every registered module, returning module
// documentation keyed by task type plus a per-module report.
//
// Scan never fails. A module whose builder errors, whose introspection
// panics, whose metadata lacks a task type, or whose task type collides
// with an earlier registration is recorded in the report, logged to
// stderr, and left out of the map. Registration already rejects declared
// collisions; the scan-time check backstops builders that report a
// different task type than they declared at registration. Registration
// order decides: the first module to claim a task type keeps it.
//
// The returned map is built fresh on every call; callers may mutate it.
func (r *Registry) Scan() (map[string]base.Documentation, *Report) {
	r.mu.RLock()
	regs := make([]registration, len(r.order))
	copy(regs, r.order)
	r.mu.RUnlock()

	report := &Report{
		ScanID:    uuid.New().String(),
		StartedAt: time.Now(),
		Results:   make([]Result, 0, len(regs)),
	}

	docs := make(map[string]base.Documentation, len(regs))
	owners := make(map[string]string, len(regs)) // task type -> winning module

	for _, reg := range regs {
		result := Result{Module: reg.name}

		doc, err := describe(reg)
		if err != nil {
			result.Err = err
			r.warnSkipped(report.ScanID, reg.name, err)
			report.Results = append(report.Results, result)
			continue
		}

		taskType := doc.Metadata.TaskType
		result.TaskType = taskType

		switch winner, taken := owners[taskType]; {
		case taskType == "":
			result.Err = fmt.Errorf("module reported empty task type")
			r.warnSkipped(report.ScanID, reg.name, result.Err)
		case taken:
			result.Err = fmt.Errorf("task type '%s' already provided by module '%s': %w",
				taskType, winner, ErrTaskTypeCollision)
			r.warnSkipped(report.ScanID, reg.name, result.Err)
		default:
			owners[taskType] = reg.name
			docs[taskType] = doc
		}

		report.Results = append(report.Results, result)
	}

	report.Duration = time.Since(report.StartedAt)

	r.logger.Info("", report.ScanID, "module scan complete", map[string]interface{}{
		"modules_total":  len(regs),
		"modules_ok":     len(docs),
		"modules_failed": len(regs) - len(docs),
		"duration_ms":    report.Duration.Milliseconds(),
	})

	return docs, report
}

// describe builds the module and assembles its documentation, converting a
// panic during introspection into an error so one faulty module cannot take
// down the scan.
func describe(reg registration) (doc base.Documentation, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("introspecting module: panic: %v", rec)
		}
	}()

	d, err := reg.builder()
	if err != nil {
		return base.Documentation{}, fmt.Errorf("constructing module: %w", err)
	}
	if d == nil {
		return base.Documentation{}, fmt.Errorf("builder returned nil module")
	}

	return base.Describe(d), nil
}

func (r *Registry) warnSkipped(scanID, module string, err error) {
	r.logger.WarnWithCause(base.SanitizeLogString(module), scanID, "module skipped", err, nil)
}
