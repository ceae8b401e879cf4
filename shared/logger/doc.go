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

/*
Package logger provides structured JSON logging for NL2Flow catalog
components.

# Overview

The logger writes single-line JSON entries to stderr. Catalog output
(prompt context, documentation bundles) goes to stdout, so keeping
diagnostics on stderr lets callers pipe the two independently while log
aggregation systems still pick everything up.

Each log entry includes:
  - Timestamp (RFC3339Nano format)
  - Log level (DEBUG, INFO, WARN, ERROR)
  - Component name (registry, catalog, a module task type, etc.)
  - Instance ID and container name (for distributed tracing)
  - Module name (which integration module the entry concerns)
  - Scan ID (for correlating entries from one registry scan)
  - Custom fields

# Usage

Create a logger for your component:

	log := logger.New("registry")

Log messages with module and scan context:

	log.Info("mysql", scanID, "module documented", map[string]interface{}{
	    "task_type": "mysql",
	})

Log warnings carrying an underlying error:

	log.WarnWithCause("neo4j", scanID, "module skipped", err, nil)

Log with duration tracking:

	start := time.Now()
	// ... scan ...
	log.InfoWithDuration("", scanID, "scan completed",
	    float64(time.Since(start).Milliseconds()), nil)

# Output Format

Log entries are output as single-line JSON:

	{"timestamp":"2025-01-15T10:30:00.123456789Z","level":"WARN",
	 "component":"registry","instance_id":"i-abc123","container":"cat-xyz",
	 "module":"neo4j","scan_id":"a9b1...","message":"module skipped",
	 "fields":{"error":"neo4j: uri option is required"}}

# Environment Variables

The logger reads these environment variables:

  - INSTANCE_ID: Deployment instance identifier
  - HOSTNAME: Container hostname (auto-detected)

# Thread Safety

Logger instances are safe for concurrent use from multiple goroutines.
*/
package logger
