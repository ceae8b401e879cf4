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
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
	"time"

	"nl2flow/platform/modules/base"

	"gopkg.in/yaml.v3"
)

// ConfigFile represents the root structure of a configuration file
type ConfigFile struct {
	Version string                      `yaml:"version"`
	Modules map[string]ModuleFileConfig `yaml:"modules,omitempty"`
}

// ModuleFileConfig represents one module instance in the config file
type ModuleFileConfig struct {
	TaskType          string                 `yaml:"task_type"`
	Enabled           bool                   `yaml:"enabled"`
	DisplayName       string                 `yaml:"display_name,omitempty"`
	Description       string                 `yaml:"description,omitempty"`
	ConnectionURL     string                 `yaml:"connection_url,omitempty"`
	Credentials       map[string]string      `yaml:"credentials,omitempty"`
	CredentialsSecret string                 `yaml:"credentials_secret,omitempty"`
	Options           map[string]interface{} `yaml:"options,omitempty"`
	TimeoutMs         int                    `yaml:"timeout_ms,omitempty"`
	MaxRetries        int                    `yaml:"max_retries,omitempty"`
}

// YAMLLoader loads module configurations from a YAML file
type YAMLLoader struct {
	filePath string
	config   *ConfigFile
}

// NewYAMLLoader creates a loader and parses the file immediately
func NewYAMLLoader(filePath string) (*YAMLLoader, error) {
	loader := &YAMLLoader{
		filePath: filePath,
	}

	if err := loader.reload(); err != nil {
		return nil, err
	}

	return loader, nil
}

// reload reads and parses the configuration file
func (l *YAMLLoader) reload() error {
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", l.filePath, err)
	}

	// Expand environment variables in the content
	expanded := expandEnvVars(string(data))

	var config ConfigFile
	if err := yaml.Unmarshal([]byte(expanded), &config); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	l.config = &config
	return nil
}

// Modules returns configs for every enabled module in the file, sorted by
// name so catalog registration order is stable across runs.
func (l *YAMLLoader) Modules() ([]*base.ModuleConfig, error) {
	if l.config == nil {
		return nil, fmt.Errorf("config not loaded")
	}

	var configs []*base.ModuleConfig

	for name, fileConfig := range l.config.Modules {
		if !fileConfig.Enabled {
			continue
		}

		timeout := time.Duration(fileConfig.TimeoutMs) * time.Millisecond
		if timeout == 0 {
			timeout = 30 * time.Second
		}

		maxRetries := fileConfig.MaxRetries
		if maxRetries == 0 {
			maxRetries = 3
		}

		options := fileConfig.Options
		if options == nil {
			options = make(map[string]interface{})
		}
		if fileConfig.CredentialsSecret != "" {
			options["credentials_secret"] = fileConfig.CredentialsSecret
		}

		credentials := fileConfig.Credentials
		if credentials == nil {
			credentials = make(map[string]string)
		}

		cfg := &base.ModuleConfig{
			Name:          name,
			TaskType:      fileConfig.TaskType,
			ConnectionURL: fileConfig.ConnectionURL,
			Credentials:   credentials,
			Options:       options,
			Timeout:       timeout,
			MaxRetries:    maxRetries,
		}

		configs = append(configs, cfg)
	}

	sort.Slice(configs, func(i, j int) bool { return configs[i].Name < configs[j].Name })

	return configs, nil
}

// Reload reloads the configuration file
func (l *YAMLLoader) Reload() error {
	return l.reload()
}

// envVarRegex matches ${VAR_NAME} or $VAR_NAME patterns
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}|\$([A-Za-z_][A-Za-z0-9_]*)`)

// expandEnvVars expands environment variable references in the string
// Supports both ${VAR_NAME} and $VAR_NAME syntax
// Returns empty string for undefined variables
func expandEnvVars(content string) string {
	return envVarRegex.ReplaceAllStringFunc(content, func(match string) string {
		var varName string
		if strings.HasPrefix(match, "${") {
			varName = match[2 : len(match)-1]
		} else {
			varName = match[1:]
		}

		// Handle default values: ${VAR_NAME:-default}
		defaultVal := ""
		if idx := strings.Index(varName, ":-"); idx != -1 {
			defaultVal = varName[idx+2:]
			varName = varName[:idx]
		}

		if value := os.Getenv(varName); value != "" {
			return value
		}

		if defaultVal != "" {
			return defaultVal
		}

		return ""
	})
}

// validTaskTypes lists every task type the catalog ships a module for
var validTaskTypes = map[string]bool{
	"s3":         true,
	"dynamodb":   true,
	"mongodb":    true,
	"mysql":      true,
	"postgres":   true,
	"scylladb":   true,
	"neo4j":      true,
	"opensearch": true,
	"prometheus": true,
	"redis":      true,
	"azureblob":  true,
	"gcs":        true,
	"custom":     true,
}

// ValidateConfigFile validates the structure of a config file
func ValidateConfigFile(config *ConfigFile) error {
	if config.Version == "" {
		return fmt.Errorf("config file must specify a version")
	}

	for name, module := range config.Modules {
		if module.TaskType == "" {
			return fmt.Errorf("module '%s' must specify a task_type", name)
		}

		if !validTaskTypes[module.TaskType] {
			return fmt.Errorf("module '%s' has invalid task_type '%s'", name, module.TaskType)
		}
	}

	return nil
}

// GenerateExampleConfigFile generates an example configuration file
func GenerateExampleConfigFile() string {
	return `# NL2Flow Module Catalog Configuration
# This file configures the integration modules available to generated flows.
# Environment variables can be referenced using ${VAR_NAME} or ${VAR_NAME:-default} syntax.

version: "1.0"

modules:
  # MySQL module example
  orders_db:
    task_type: mysql
    enabled: true
    display_name: "Orders Database"
    description: "Primary MySQL database for order data"
    connection_url: ${MYSQL_URL}
    credentials:
      username: ${MYSQL_USER:-root}
      password: ${MYSQL_PASSWORD}
    options:
      max_open_conns: 25
      max_idle_conns: 5
      conn_max_lifetime: "5m"
    timeout_ms: 30000
    max_retries: 3

  # S3 module example
  reports_bucket:
    task_type: s3
    enabled: true
    display_name: "Reports Bucket"
    options:
      region: ${AWS_REGION:-us-east-1}
      bucket: ${S3_BUCKET}
    timeout_ms: 60000

  # DynamoDB module example, credentials resolved from Secrets Manager
  sessions_table:
    task_type: dynamodb
    enabled: false  # Enable when configured
    display_name: "Session Store"
    credentials_secret: ${SESSIONS_SECRET_ARN}
    options:
      region: ${AWS_REGION:-us-east-1}
      table: sessions

  # OpenSearch module example
  logs_search:
    task_type: opensearch
    enabled: false  # Enable when configured
    display_name: "Log Search Cluster"
    connection_url: ${OPENSEARCH_URL:-https://localhost:9200}
    credentials:
      username: ${OPENSEARCH_USER:-admin}
      password: ${OPENSEARCH_PASSWORD}
    timeout_ms: 30000

  # Prometheus module example
  metrics:
    task_type: prometheus
    enabled: false  # Enable when configured
    connection_url: ${PROMETHEUS_URL:-http://localhost:9090}
    timeout_ms: 15000
`
}
