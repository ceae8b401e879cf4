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
	"strconv"
	"strings"
	"time"

	"nl2flow/platform/modules/base"
)

// LoadFromEnv loads a module configuration from environment variables
// Environment variables should be prefixed with NLF_<MODULE_NAME>_
// Example: NLF_ORDERS_URL, NLF_ORDERS_USERNAME, etc.
func LoadFromEnv(moduleName, taskType string) (*base.ModuleConfig, error) {
	prefix := "NLF_" + strings.ToUpper(moduleName) + "_"

	config := &base.ModuleConfig{
		Name:        moduleName,
		TaskType:    taskType,
		Credentials: make(map[string]string),
		Options:     make(map[string]interface{}),
	}

	// Connection URL (required)
	connectionURL := os.Getenv(prefix + "URL")
	if connectionURL == "" {
		return nil, fmt.Errorf("missing required environment variable: %sURL", prefix)
	}
	config.ConnectionURL = connectionURL

	// Timeout (optional, defaults to 30s)
	timeoutStr := os.Getenv(prefix + "TIMEOUT")
	if timeoutStr != "" {
		timeout, err := time.ParseDuration(timeoutStr)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout format: %s", timeoutStr)
		}
		config.Timeout = timeout
	} else {
		config.Timeout = 30 * time.Second
	}

	// Max retries (optional, defaults to 3)
	maxRetriesStr := os.Getenv(prefix + "MAX_RETRIES")
	if maxRetriesStr != "" {
		maxRetries, err := strconv.Atoi(maxRetriesStr)
		if err != nil {
			return nil, fmt.Errorf("invalid max_retries format: %s", maxRetriesStr)
		}
		config.MaxRetries = maxRetries
	} else {
		config.MaxRetries = 3
	}

	// Credentials (optional)
	if username := os.Getenv(prefix + "USERNAME"); username != "" {
		config.Credentials["username"] = username
	}
	if password := os.Getenv(prefix + "PASSWORD"); password != "" {
		config.Credentials["password"] = password
	}
	if apiKey := os.Getenv(prefix + "API_KEY"); apiKey != "" {
		config.Credentials["api_key"] = apiKey
	}

	return config, nil
}

// LoadPostgresConfig loads PostgreSQL module configuration
// Falls back to DATABASE_URL if no prefixed variables are set
func LoadPostgresConfig(moduleName string) (*base.ModuleConfig, error) {
	config, err := LoadFromEnv(moduleName, "postgres")
	if err == nil {
		return config, nil
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return nil, fmt.Errorf("no PostgreSQL configuration found (tried NLF_%s_URL and DATABASE_URL)", strings.ToUpper(moduleName))
	}

	config = &base.ModuleConfig{
		Name:          moduleName,
		TaskType:      "postgres",
		ConnectionURL: databaseURL,
		Credentials:   make(map[string]string),
		Timeout:       30 * time.Second,
		MaxRetries:    3,
		Options: map[string]interface{}{
			"max_open_conns":    25,
			"max_idle_conns":    5,
			"conn_max_lifetime": "5m",
		},
	}

	return config, nil
}

// LoadScyllaConfig loads ScyllaDB module configuration
func LoadScyllaConfig(moduleName string) (*base.ModuleConfig, error) {
	config, err := LoadFromEnv(moduleName, "scylladb")
	if err != nil {
		return nil, err
	}

	prefix := "NLF_" + strings.ToUpper(moduleName) + "_"

	// ScyllaDB-specific options
	if keyspace := os.Getenv(prefix + "KEYSPACE"); keyspace != "" {
		config.Options["keyspace"] = keyspace
	}
	if consistency := os.Getenv(prefix + "CONSISTENCY"); consistency != "" {
		config.Options["consistency"] = consistency
	} else {
		config.Options["consistency"] = "QUORUM"
	}

	return config, nil
}

// LoadS3Config loads S3 module configuration
// S3 needs no connection URL; the AWS SDK resolves endpoints from the region
func LoadS3Config(moduleName string) (*base.ModuleConfig, error) {
	prefix := "NLF_" + strings.ToUpper(moduleName) + "_"

	config := &base.ModuleConfig{
		Name:        moduleName,
		TaskType:    "s3",
		Credentials: make(map[string]string),
		Options:     make(map[string]interface{}),
		Timeout:     60 * time.Second, // large object transfers can be slow
		MaxRetries:  3,
	}

	region := os.Getenv(prefix + "REGION")
	if region == "" {
		region = getEnvOrDefault("AWS_REGION", "us-east-1")
	}
	config.Options["region"] = region

	if bucket := os.Getenv(prefix + "BUCKET"); bucket != "" {
		config.Options["bucket"] = bucket
	}
	if endpoint := os.Getenv(prefix + "ENDPOINT"); endpoint != "" {
		// Custom endpoint for S3-compatible stores (MinIO, LocalStack)
		config.ConnectionURL = endpoint
	}

	return config, nil
}

// getEnvOrDefault returns environment variable value or default if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// urlOptionalTaskTypes are task types whose SDKs assemble endpoints from
// options or the ambient credential chain rather than a connection URL
var urlOptionalTaskTypes = map[string]bool{
	"s3":        true,
	"dynamodb":  true,
	"azureblob": true,
	"gcs":       true,
}

// ValidateConfig validates a module configuration
func ValidateConfig(config *base.ModuleConfig) error {
	if config.Name == "" {
		return fmt.Errorf("module name is required")
	}
	if config.TaskType == "" {
		return fmt.Errorf("module task type is required")
	}
	if !urlOptionalTaskTypes[config.TaskType] && config.ConnectionURL == "" {
		return fmt.Errorf("connection URL is required for %s module", config.TaskType)
	}
	if config.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if config.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}
	return nil
}
