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

// Package config loads module configurations for the NL2Flow catalog.
//
// Configurations come from three sources, in order of typical use:
//
//   - A YAML file describing every module instance (see YAMLLoader).
//     Values may reference environment variables with ${VAR} or
//     ${VAR:-default} syntax; undefined variables expand to "".
//   - Environment variables prefixed NLF_<MODULE>_ for single-module
//     setups (see LoadFromEnv).
//   - A secrets manager for credentials that must not live in files
//     (see SecretsManager and ResolveCredentials).
//
// A minimal config file:
//
//	version: "1.0"
//	modules:
//	  orders_db:
//	    task_type: mysql
//	    enabled: true
//	    connection_url: ${MYSQL_URL}
//	    credentials:
//	      username: ${MYSQL_USER:-root}
//	      password: ${MYSQL_PASSWORD}
//	    timeout_ms: 30000
//
// Credentials can instead name a secret reference, resolved at startup:
//
//	credentials_secret: arn:aws:secretsmanager:us-east-1:123456789:secret:orders-db
package config
