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

package catalog

import (
	"errors"
	"fmt"

	"nl2flow/platform/modules/azureblob"
	"nl2flow/platform/modules/base"
	"nl2flow/platform/modules/dynamodb"
	"nl2flow/platform/modules/gcs"
	"nl2flow/platform/modules/mongodb"
	"nl2flow/platform/modules/mysql"
	"nl2flow/platform/modules/neo4j"
	"nl2flow/platform/modules/opensearch"
	"nl2flow/platform/modules/postgres"
	"nl2flow/platform/modules/prometheus"
	"nl2flow/platform/modules/redis"
	"nl2flow/platform/modules/registry"
	"nl2flow/platform/modules/s3"
	"nl2flow/platform/modules/scylladb"
)

// ErrNotConfigured marks a builtin module that has no enabled configuration.
// The registry scan downgrades it to a skipped module, the way the original
// catalog skipped modules whose optional dependency was absent.
var ErrNotConfigured = errors.New("module not configured")

// builtin pairs a task type with its module constructor. The list is the
// whole catalog: adding a module means adding a line here, checked by the
// compiler, instead of relying on naming-convention reflection.
type builtin struct {
	taskType string
	build    func(cfg *base.ModuleConfig) base.Describer
}

var builtins = []builtin{
	{"s3", func(cfg *base.ModuleConfig) base.Describer { return s3.New(cfg) }},
	{"dynamodb", func(cfg *base.ModuleConfig) base.Describer { return dynamodb.New(cfg) }},
	{"mongodb", func(cfg *base.ModuleConfig) base.Describer { return mongodb.New(cfg) }},
	{"mysql", func(cfg *base.ModuleConfig) base.Describer { return mysql.New(cfg) }},
	{"postgres", func(cfg *base.ModuleConfig) base.Describer { return postgres.New(cfg) }},
	{"scylladb", func(cfg *base.ModuleConfig) base.Describer { return scylladb.New(cfg) }},
	{"neo4j", func(cfg *base.ModuleConfig) base.Describer { return neo4j.New(cfg) }},
	{"opensearch", func(cfg *base.ModuleConfig) base.Describer { return opensearch.New(cfg) }},
	{"prometheus", func(cfg *base.ModuleConfig) base.Describer { return prometheus.New(cfg) }},
	{"redis", func(cfg *base.ModuleConfig) base.Describer { return redis.New(cfg) }},
	{"azureblob", func(cfg *base.ModuleConfig) base.Describer { return azureblob.New(cfg) }},
	{"gcs", func(cfg *base.ModuleConfig) base.Describer { return gcs.New(cfg) }},
}

// TaskTypes returns the task types the builtin catalog provides, in
// catalog order
func TaskTypes() []string {
	types := make([]string, 0, len(builtins))
	for _, b := range builtins {
		types = append(types, b.taskType)
	}
	return types
}

// Options controls how the builtin catalog is registered
type Options struct {
	// Configs holds per-module configurations, typically from
	// config.YAMLLoader.Modules(). A builtin whose task type appears here
	// is registered under the config's instance name and built with it.
	Configs []*base.ModuleConfig

	// DescribeUnconfigured registers builtins without a config as
	// documentation-only modules instead of scan failures. Their Describer
	// surface works fully; Connect would fail until configured.
	DescribeUnconfigured bool
}

// Register adds every builtin module to the registry. Builtins with a
// matching config build from it; the rest either describe themselves
// unconfigured or fail their scan with ErrNotConfigured, depending on
// opts.DescribeUnconfigured.
//
// Configs whose task type has no builtin constructor are ignored here;
// the embedding application registers custom modules directly on the
// registry. A duplicate instance name or task type collision surfaces as
// a registration error, per the registry's contract.
func Register(reg *registry.Registry, opts Options) error {
	byTaskType := make(map[string][]*base.ModuleConfig)
	for _, cfg := range opts.Configs {
		if cfg == nil {
			continue
		}
		byTaskType[cfg.TaskType] = append(byTaskType[cfg.TaskType], cfg)
	}

	for _, b := range builtins {
		configs := byTaskType[b.taskType]

		if len(configs) == 0 {
			if err := reg.Register(b.taskType, unconfiguredBuilder(b, opts.DescribeUnconfigured)); err != nil {
				return fmt.Errorf("registering builtin '%s': %w", b.taskType, err)
			}
			continue
		}

		for _, cfg := range configs {
			name := cfg.Name
			if name == "" {
				name = b.taskType
			}
			if err := reg.Register(name, configuredBuilder(b, cfg)); err != nil {
				return fmt.Errorf("registering module '%s': %w", name, err)
			}
		}
	}

	return nil
}

func configuredBuilder(b builtin, cfg *base.ModuleConfig) registry.Builder {
	return func() (base.Describer, error) {
		return b.build(cfg), nil
	}
}

func unconfiguredBuilder(b builtin, describe bool) registry.Builder {
	return func() (base.Describer, error) {
		if describe {
			return b.build(nil), nil
		}
		return nil, fmt.Errorf("task type '%s': %w", b.taskType, ErrNotConfigured)
	}
}
