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

package prometheus

import "nl2flow/platform/modules/base"

// Metadata describes the Prometheus module for catalog listings
func (m *PrometheusModule) Metadata() base.Metadata {
	return base.NewMetadata(
		"Prometheus",
		"prometheus",
		"Prometheus monitoring with metric collection (counter, gauge, histogram, summary), scrape exposition, PromQL queries, and Pushgateway support",
	).WithKeywords(
		"prometheus", "monitoring", "metrics", "observability", "counter",
		"gauge", "histogram", "summary", "promql", "pushgateway",
		"labels", "scraping", "time-series", "alerting",
	).WithDependencies(
		"github.com/prometheus/client_golang",
		"github.com/prometheus/common",
	)
}

// UsageNotes returns operational guidance for flows that record or query metrics
func (m *PrometheusModule) UsageNotes() []string {
	return []string{
		"Four metric types are supported: counter (monotonic), gauge (up/down), histogram (distributions), summary (client-side quantiles).",
		"Counters only increase; never use one for a value that can go down.",
		"Gauges track current values such as queue depth, temperature, or memory usage.",
		"Histogram buckets should match the expected value distribution; the defaults suit request latencies in seconds.",
		"Metric names are prefixed with the namespace option (default 'nl2flow') and optional subsystem; creation returns the fully qualified name, which all recording methods take.",
		"Labels are declared at creation time; recording with a different label set fails.",
		"Keep label cardinality low; every distinct label combination is a separate series.",
		"Metric names must match [a-zA-Z_:][a-zA-Z0-9_:]* and label names [a-zA-Z_][a-zA-Z0-9_]*.",
		"Each module instance owns an isolated registry; nothing is shared through process-global state.",
		"Set the exposition_addr option (e.g. ':8000') to serve /metrics for scraping, or start it later with prometheus_start_exposition.",
		"PromQL queries require the connection URL to point at a Prometheus server.",
		"Query requests pick up bearer_token, api_key, or username/password credentials when configured; the query_rate_limit option caps queries per second.",
		"prometheus_query returns current values; prometheus_query_range returns time series over a window.",
		"Pushgateway support is for short-lived batch jobs; long-running services should be scraped instead.",
		"Pushing replaces previously pushed metrics for the same job and grouping labels.",
	}
}

// Methods lists the operations exposed to generated flows
func (m *PrometheusModule) Methods() []base.MethodInfo {
	return []base.MethodInfo{
		{
			Name:        "prometheus_create_counter",
			Description: "Register a monotonically increasing counter and return its fully qualified name",
			Parameters: []base.Parameter{
				{Name: "name", Description: "Metric name without namespace prefix"},
				{Name: "help", Description: "Human-readable description of the metric"},
				{Name: "labels", Description: "Label names declared for this metric"},
			},
			Returns: "Fully qualified metric name",
			Examples: []base.Example{
				{
					Text: "Query: count processed orders by status",
					Code: "prometheus_create_counter(name='orders_processed_total', help='Orders processed', labels=['status'])",
				},
			},
		},
		{
			Name:        "prometheus_create_gauge",
			Description: "Register a gauge that can go up and down",
			Parameters: []base.Parameter{
				{Name: "name", Description: "Metric name without namespace prefix"},
				{Name: "help", Description: "Human-readable description of the metric"},
				{Name: "labels", Description: "Label names declared for this metric"},
			},
			Returns: "Fully qualified metric name",
			Examples: []base.Example{
				{
					Text: "Query: track queue depth per queue",
					Code: "prometheus_create_gauge(name='queue_depth', help='Jobs waiting in queue', labels=['queue'])",
				},
			},
		},
		{
			Name:        "prometheus_create_histogram",
			Description: "Register a histogram with configurable buckets",
			Parameters: []base.Parameter{
				{Name: "name", Description: "Metric name without namespace prefix"},
				{Name: "help", Description: "Human-readable description of the metric"},
				{Name: "labels", Description: "Label names declared for this metric"},
				{Name: "buckets", Description: "Upper bucket bounds (defaults suit latencies in seconds)"},
			},
			Returns: "Fully qualified metric name",
			Examples: []base.Example{
				{
					Text: "Query: measure request duration",
					Code: "prometheus_create_histogram(name='request_duration_seconds', help='Request duration', labels=['route'], buckets=[0.05, 0.1, 0.5, 1, 5])",
				},
			},
		},
		{
			Name:        "prometheus_create_summary",
			Description: "Register a summary with quantile objectives",
			Parameters: []base.Parameter{
				{Name: "name", Description: "Metric name without namespace prefix"},
				{Name: "help", Description: "Human-readable description of the metric"},
				{Name: "labels", Description: "Label names declared for this metric"},
				{Name: "objectives", Description: "Quantile to allowed-error map, e.g. {0.99: 0.001}"},
			},
			Returns: "Fully qualified metric name",
			Examples: []base.Example{
				{
					Text: "Query: track payload sizes with quantiles",
					Code: "prometheus_create_summary(name='payload_bytes', help='Payload size', labels=[], objectives={0.5: 0.05, 0.99: 0.001})",
				},
			},
		},
		{
			Name:        "prometheus_counter_inc",
			Description: "Add a non-negative value to a counter",
			Parameters: []base.Parameter{
				{Name: "metric", Description: "Fully qualified metric name returned at creation"},
				{Name: "value", Description: "Amount to add (default 1)"},
				{Name: "labels", Description: "Label values for the declared label names"},
			},
			Returns: "Nothing on success",
			Examples: []base.Example{
				{
					Text: "Query: record a completed order",
					Code: "prometheus_counter_inc(metric='nl2flow_orders_processed_total', value=1, labels={'status': 'completed'})",
				},
			},
		},
		{
			Name:        "prometheus_gauge_set",
			Description: "Set a gauge to an absolute value",
			Parameters: []base.Parameter{
				{Name: "metric", Description: "Fully qualified metric name returned at creation"},
				{Name: "value", Description: "Value to set"},
				{Name: "labels", Description: "Label values for the declared label names"},
			},
			Returns: "Nothing on success",
			Examples: []base.Example{
				{
					Text: "Query: record current queue depth",
					Code: "prometheus_gauge_set(metric='nl2flow_queue_depth', value={{depth}}, labels={'queue': 'orders'})",
				},
			},
		},
		{
			Name:        "prometheus_gauge_inc",
			Description: "Add a value to a gauge",
			Parameters: []base.Parameter{
				{Name: "metric", Description: "Fully qualified metric name returned at creation"},
				{Name: "value", Description: "Amount to add (default 1)"},
				{Name: "labels", Description: "Label values for the declared label names"},
			},
			Returns: "Nothing on success",
			Examples: []base.Example{
				{
					Text: "Query: a job entered the queue",
					Code: "prometheus_gauge_inc(metric='nl2flow_queue_depth', value=1, labels={'queue': 'orders'})",
				},
			},
		},
		{
			Name:        "prometheus_gauge_dec",
			Description: "Subtract a value from a gauge",
			Parameters: []base.Parameter{
				{Name: "metric", Description: "Fully qualified metric name returned at creation"},
				{Name: "value", Description: "Amount to subtract (default 1)"},
				{Name: "labels", Description: "Label values for the declared label names"},
			},
			Returns: "Nothing on success",
			Examples: []base.Example{
				{
					Text: "Query: a job left the queue",
					Code: "prometheus_gauge_dec(metric='nl2flow_queue_depth', value=1, labels={'queue': 'orders'})",
				},
			},
		},
		{
			Name:        "prometheus_histogram_observe",
			Description: "Record one observation in a histogram",
			Parameters: []base.Parameter{
				{Name: "metric", Description: "Fully qualified metric name returned at creation"},
				{Name: "value", Description: "Observed value"},
				{Name: "labels", Description: "Label values for the declared label names"},
			},
			Returns: "Nothing on success",
			Examples: []base.Example{
				{
					Text: "Query: record a request duration",
					Code: "prometheus_histogram_observe(metric='nl2flow_request_duration_seconds', value={{seconds}}, labels={'route': '/orders'})",
				},
			},
		},
		{
			Name:        "prometheus_summary_observe",
			Description: "Record one observation in a summary",
			Parameters: []base.Parameter{
				{Name: "metric", Description: "Fully qualified metric name returned at creation"},
				{Name: "value", Description: "Observed value"},
				{Name: "labels", Description: "Label values for the declared label names"},
			},
			Returns: "Nothing on success",
			Examples: []base.Example{
				{
					Text: "Query: record a payload size",
					Code: "prometheus_summary_observe(metric='nl2flow_payload_bytes', value={{bytes}})",
				},
			},
		},
		{
			Name:        "prometheus_start_exposition",
			Description: "Serve the /metrics scrape endpoint on the given address",
			Parameters: []base.Parameter{
				{Name: "addr", Description: "Listen address, e.g. ':8000'"},
			},
			Returns: "Nothing on success",
			Examples: []base.Example{
				{
					Text: "Query: expose metrics for scraping",
					Code: "prometheus_start_exposition(addr=':8000')",
				},
			},
		},
		{
			Name:        "prometheus_export_metrics",
			Description: "Render all registered metrics in the Prometheus text format",
			Parameters:  []base.Parameter{},
			Returns:     "Metrics exposition text",
			Examples: []base.Example{
				{
					Text: "Query: dump current metric values",
					Code: "prometheus_export_metrics()",
				},
			},
		},
		{
			Name:        "prometheus_push_to_gateway",
			Description: "Push all registered metrics to the Pushgateway",
			Parameters: []base.Parameter{
				{Name: "job", Description: "Job label (defaults to the pushgateway_job option)"},
				{Name: "grouping", Description: "Extra grouping labels, e.g. {'instance': 'worker-1'}"},
			},
			Returns: "Nothing on success",
			Examples: []base.Example{
				{
					Text: "Query: publish batch job metrics",
					Code: "prometheus_push_to_gateway(job='nightly-import', grouping={'instance': '{{hostname}}'})",
				},
			},
		},
		{
			Name:        "prometheus_delete_from_gateway",
			Description: "Delete pushed metrics for a job and grouping from the Pushgateway",
			Parameters: []base.Parameter{
				{Name: "job", Description: "Job label (defaults to the pushgateway_job option)"},
				{Name: "grouping", Description: "Grouping labels the metrics were pushed with"},
			},
			Returns: "Nothing on success",
			Examples: []base.Example{
				{
					Text: "Query: clean up after a finished batch job",
					Code: "prometheus_delete_from_gateway(job='nightly-import', grouping={'instance': '{{hostname}}'})",
				},
			},
		},
		{
			Name:        "prometheus_query",
			Description: "Run an instant PromQL query against the configured server",
			Parameters: []base.Parameter{
				{Name: "promql", Description: "PromQL expression"},
			},
			Returns: "List of samples with metric labels, value, and timestamp",
			Examples: []base.Example{
				{
					Text: "Query: current error rate",
					Code: "prometheus_query(promql='rate(http_requests_total{status=\"500\"}[5m])')",
				},
			},
		},
		{
			Name:        "prometheus_query_range",
			Description: "Run a range PromQL query and return time series over a window",
			Parameters: []base.Parameter{
				{Name: "promql", Description: "PromQL expression"},
				{Name: "start", Description: "Window start time"},
				{Name: "end", Description: "Window end time"},
				{Name: "step", Description: "Resolution step, e.g. 1m"},
			},
			Returns: "List of series, each with metric labels and timestamped points",
			Examples: []base.Example{
				{
					Text: "Query: request rate over the last hour",
					Code: "prometheus_query_range(promql='rate(http_requests_total[5m])', start='{{start}}', end='{{end}}', step='1m')",
				},
			},
		},
		{
			Name:        "prometheus_current_metric_value",
			Description: "Fetch the current samples of one metric, optionally narrowed by labels",
			Parameters: []base.Parameter{
				{Name: "metric", Description: "Metric name on the Prometheus server"},
				{Name: "labels", Description: "Label matchers, e.g. {'job': 'api'}"},
			},
			Returns: "List of samples with metric labels, value, and timestamp",
			Examples: []base.Example{
				{
					Text: "Query: current memory usage of the api job",
					Code: "prometheus_current_metric_value(metric='process_resident_memory_bytes', labels={'job': 'api'})",
				},
			},
		},
		{
			Name:        "prometheus_list_metrics",
			Description: "List the fully qualified names of locally registered metrics",
			Parameters:  []base.Parameter{},
			Returns:     "Sorted list of metric names",
			Examples: []base.Example{
				{
					Text: "Query: which metrics has this flow registered",
					Code: "prometheus_list_metrics()",
				},
			},
		},
	}
}
