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

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/api"
	apiv1 "github.com/prometheus/client_golang/api/prometheus/v1"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/prometheus/common/expfmt"
	"github.com/prometheus/common/model"
	"github.com/rs/cors"

	"nl2flow/platform/modules/base"
	"nl2flow/platform/modules/sdk"
)

const (
	// DefaultNamespace prefixes metric names unless overridden
	DefaultNamespace = "nl2flow"
	// DefaultPushgatewayURL is where batch jobs push metrics
	DefaultPushgatewayURL = "http://localhost:9091"
	// DefaultPushJob is the job label used when pushing metrics
	DefaultPushJob = "nl2flow"
)

var (
	// Prometheus naming conventions
	metricNamePattern = regexp.MustCompile(`^[a-zA-Z_:][a-zA-Z0-9_:]*$`)
	labelNamePattern  = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)
)

// PrometheusModule records application metrics (counters, gauges, histograms,
// summaries) in an isolated registry, exposes them for scraping or pushes
// them to a Pushgateway, and runs PromQL queries against a Prometheus server.
type PrometheusModule struct {
	config *base.ModuleConfig
	logger *log.Logger

	mu       sync.RWMutex
	registry *prom.Registry
	metrics  map[string]*metricEntry

	queryAPI apiv1.API
	server   *http.Server
}

var _ base.Module = (*PrometheusModule)(nil)

// metricEntry tracks one registered metric family
type metricEntry struct {
	kind      string
	help      string
	labels    []string
	counter   *prom.CounterVec
	gauge     *prom.GaugeVec
	histogram *prom.HistogramVec
	summary   *prom.SummaryVec
}

// QueryResult is one sample returned by an instant query
type QueryResult struct {
	Metric    map[string]string `json:"metric"`
	Value     float64           `json:"value"`
	Timestamp time.Time         `json:"timestamp"`
}

// SeriesPoint is one sample of a range query series
type SeriesPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// RangeResult is one series returned by a range query
type RangeResult struct {
	Metric map[string]string `json:"metric"`
	Points []SeriesPoint     `json:"points"`
}

// New creates a Prometheus module bound to the given configuration. The
// registry and query client are not created until Connect.
func New(cfg *base.ModuleConfig) *PrometheusModule {
	return &PrometheusModule{
		config: cfg,
		logger: log.New(os.Stdout, "[NLF_PROMETHEUS] ", log.LstdFlags),
	}
}

// Connect creates the metric registry and, when a connection URL is
// configured, the PromQL query client. Setting the exposition_addr option
// also starts the scrape endpoint.
func (m *PrometheusModule) Connect(ctx context.Context) error {
	if m.config == nil {
		return base.NewModuleError("prometheus", "Connect", "module config is required", nil)
	}

	m.mu.Lock()
	m.registry = prom.NewRegistry()
	m.metrics = make(map[string]*metricEntry)
	m.mu.Unlock()

	if m.config.ConnectionURL != "" {
		apiCfg := api.Config{Address: m.config.ConnectionURL}
		transport := &sdk.Transport{Auth: sdk.AuthFromConfig(m.config)}
		if rps := m.config.IntOption("query_rate_limit", 0); rps > 0 {
			transport.Limiter = sdk.NewRateLimiter(float64(rps), rps)
		}
		if transport.Auth != nil || transport.Limiter != nil {
			apiCfg.RoundTripper = transport
		}
		client, err := api.NewClient(apiCfg)
		if err != nil {
			return base.NewModuleError(m.Name(), "Connect", "failed to create query client", err)
		}
		m.queryAPI = apiv1.NewAPI(client)
	}

	if addr := m.config.StringOption("exposition_addr", ""); addr != "" {
		if err := m.StartExposition(addr); err != nil {
			return err
		}
	}

	mode := "local"
	if m.queryAPI != nil {
		mode = "connected"
	}
	m.logger.Printf("Prometheus module ready: %s (mode=%s)", m.Name(), mode)

	return nil
}

// Close stops the exposition endpoint and releases the registry
func (m *PrometheusModule) Close(ctx context.Context) error {
	if m.server != nil {
		if err := m.server.Shutdown(ctx); err != nil {
			return base.NewModuleError(m.Name(), "Close", "failed to stop exposition endpoint", err)
		}
		m.server = nil
	}

	m.mu.Lock()
	m.registry = nil
	m.metrics = nil
	m.mu.Unlock()
	m.queryAPI = nil

	m.logger.Printf("Prometheus module closed: %s", m.Name())
	return nil
}

// HealthCheck reports registry state and, when a query client is configured,
// round-trip latency to the Prometheus server.
func (m *PrometheusModule) HealthCheck(ctx context.Context) (*base.HealthStatus, error) {
	m.mu.RLock()
	registered := len(m.metrics)
	ready := m.registry != nil
	m.mu.RUnlock()

	if !ready {
		return &base.HealthStatus{
			Healthy:   false,
			Error:     "registry not initialized",
			Timestamp: time.Now(),
		}, nil
	}

	details := map[string]string{
		"registered_metrics": strconv.Itoa(registered),
		"mode":               "local",
	}

	var latency time.Duration
	if m.queryAPI != nil {
		details["mode"] = "connected"
		start := time.Now()
		_, _, err := m.queryAPI.Query(ctx, "vector(1)", time.Now())
		latency = time.Since(start)
		if err != nil {
			return &base.HealthStatus{
				Healthy:   false,
				Latency:   latency,
				Timestamp: time.Now(),
				Details:   details,
				Error:     err.Error(),
			}, nil
		}
	}

	return &base.HealthStatus{
		Healthy:   true,
		Latency:   latency,
		Timestamp: time.Now(),
		Details:   details,
	}, nil
}

// CreateCounter registers a monotonically increasing counter. The returned
// name is the fully qualified metric name including namespace and subsystem.
func (m *PrometheusModule) CreateCounter(name, help string, labels []string) (string, error) {
	fqName, err := m.register(name, help, labels, func(opts prom.Opts) (prom.Collector, *metricEntry) {
		vec := prom.NewCounterVec(prom.CounterOpts(opts), labels)
		return vec, &metricEntry{kind: "counter", counter: vec}
	})
	if err != nil {
		return "", base.NewModuleError(m.Name(), "CreateCounter", "failed to register counter", err)
	}
	return fqName, nil
}

// CreateGauge registers a gauge that can go up and down
func (m *PrometheusModule) CreateGauge(name, help string, labels []string) (string, error) {
	fqName, err := m.register(name, help, labels, func(opts prom.Opts) (prom.Collector, *metricEntry) {
		vec := prom.NewGaugeVec(prom.GaugeOpts(opts), labels)
		return vec, &metricEntry{kind: "gauge", gauge: vec}
	})
	if err != nil {
		return "", base.NewModuleError(m.Name(), "CreateGauge", "failed to register gauge", err)
	}
	return fqName, nil
}

// CreateHistogram registers a histogram with the given buckets. Default
// buckets are used when none are given.
func (m *PrometheusModule) CreateHistogram(name, help string, labels []string, buckets []float64) (string, error) {
	if len(buckets) == 0 {
		buckets = prom.DefBuckets
	}

	fqName, err := m.register(name, help, labels, func(opts prom.Opts) (prom.Collector, *metricEntry) {
		vec := prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: opts.Namespace,
			Subsystem: opts.Subsystem,
			Name:      opts.Name,
			Help:      opts.Help,
			Buckets:   buckets,
		}, labels)
		return vec, &metricEntry{kind: "histogram", histogram: vec}
	})
	if err != nil {
		return "", base.NewModuleError(m.Name(), "CreateHistogram", "failed to register histogram", err)
	}
	return fqName, nil
}

// CreateSummary registers a summary with the given quantile objectives, e.g.
// {0.5: 0.05, 0.99: 0.001}. Summaries compute quantiles client-side.
func (m *PrometheusModule) CreateSummary(name, help string, labels []string, objectives map[float64]float64) (string, error) {
	fqName, err := m.register(name, help, labels, func(opts prom.Opts) (prom.Collector, *metricEntry) {
		vec := prom.NewSummaryVec(prom.SummaryOpts{
			Namespace:  opts.Namespace,
			Subsystem:  opts.Subsystem,
			Name:       opts.Name,
			Help:       opts.Help,
			Objectives: objectives,
		}, labels)
		return vec, &metricEntry{kind: "summary", summary: vec}
	})
	if err != nil {
		return "", base.NewModuleError(m.Name(), "CreateSummary", "failed to register summary", err)
	}
	return fqName, nil
}

// register validates, builds, and stores one metric family
func (m *PrometheusModule) register(name, help string, labels []string, build func(prom.Opts) (prom.Collector, *metricEntry)) (string, error) {
	if !metricNamePattern.MatchString(name) {
		return "", fmt.Errorf("invalid metric name %q", name)
	}
	for _, label := range labels {
		if !labelNamePattern.MatchString(label) {
			return "", fmt.Errorf("invalid label name %q", label)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.registry == nil {
		return "", fmt.Errorf("module is not connected")
	}

	namespace := m.config.StringOption("namespace", DefaultNamespace)
	subsystem := m.config.StringOption("subsystem", "")
	fqName := prom.BuildFQName(namespace, subsystem, name)

	if _, exists := m.metrics[fqName]; exists {
		return "", fmt.Errorf("metric %q is already registered", fqName)
	}

	collector, entry := build(prom.Opts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      name,
		Help:      help,
	})
	if err := m.registry.Register(collector); err != nil {
		return "", err
	}

	entry.help = help
	entry.labels = labels
	m.metrics[fqName] = entry
	m.logger.Printf("Registered %s metric: %s", entry.kind, fqName)

	return fqName, nil
}

// lookup returns the entry for a fully qualified metric name
func (m *PrometheusModule) lookup(fqName, wantKind string) (*metricEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.metrics[fqName]
	if !ok {
		return nil, fmt.Errorf("metric %q not found (create it first)", fqName)
	}
	if entry.kind != wantKind {
		return nil, fmt.Errorf("metric %q is a %s, not a %s", fqName, entry.kind, wantKind)
	}
	return entry, nil
}

// CounterInc adds value to a counter. The value must not be negative.
func (m *PrometheusModule) CounterInc(fqName string, value float64, labels map[string]string) error {
	if value < 0 {
		return base.NewModuleError(m.Name(), "CounterInc", "counter increments must not be negative", nil)
	}

	entry, err := m.lookup(fqName, "counter")
	if err != nil {
		return base.NewModuleError(m.Name(), "CounterInc", "metric lookup failed", err)
	}

	counter, err := entry.counter.GetMetricWith(prom.Labels(labels))
	if err != nil {
		return base.NewModuleError(m.Name(), "CounterInc", "label resolution failed", err)
	}

	counter.Add(value)
	return nil
}

// GaugeSet sets a gauge to an absolute value
func (m *PrometheusModule) GaugeSet(fqName string, value float64, labels map[string]string) error {
	gauge, err := m.gaugeFor("GaugeSet", fqName, labels)
	if err != nil {
		return err
	}
	gauge.Set(value)
	return nil
}

// GaugeInc adds value to a gauge
func (m *PrometheusModule) GaugeInc(fqName string, value float64, labels map[string]string) error {
	gauge, err := m.gaugeFor("GaugeInc", fqName, labels)
	if err != nil {
		return err
	}
	gauge.Add(value)
	return nil
}

// GaugeDec subtracts value from a gauge
func (m *PrometheusModule) GaugeDec(fqName string, value float64, labels map[string]string) error {
	gauge, err := m.gaugeFor("GaugeDec", fqName, labels)
	if err != nil {
		return err
	}
	gauge.Sub(value)
	return nil
}

func (m *PrometheusModule) gaugeFor(op, fqName string, labels map[string]string) (prom.Gauge, error) {
	entry, err := m.lookup(fqName, "gauge")
	if err != nil {
		return nil, base.NewModuleError(m.Name(), op, "metric lookup failed", err)
	}

	gauge, err := entry.gauge.GetMetricWith(prom.Labels(labels))
	if err != nil {
		return nil, base.NewModuleError(m.Name(), op, "label resolution failed", err)
	}
	return gauge, nil
}

// HistogramObserve records one observation in a histogram
func (m *PrometheusModule) HistogramObserve(fqName string, value float64, labels map[string]string) error {
	entry, err := m.lookup(fqName, "histogram")
	if err != nil {
		return base.NewModuleError(m.Name(), "HistogramObserve", "metric lookup failed", err)
	}

	observer, err := entry.histogram.GetMetricWith(prom.Labels(labels))
	if err != nil {
		return base.NewModuleError(m.Name(), "HistogramObserve", "label resolution failed", err)
	}

	observer.Observe(value)
	return nil
}

// SummaryObserve records one observation in a summary
func (m *PrometheusModule) SummaryObserve(fqName string, value float64, labels map[string]string) error {
	entry, err := m.lookup(fqName, "summary")
	if err != nil {
		return base.NewModuleError(m.Name(), "SummaryObserve", "metric lookup failed", err)
	}

	observer, err := entry.summary.GetMetricWith(prom.Labels(labels))
	if err != nil {
		return base.NewModuleError(m.Name(), "SummaryObserve", "label resolution failed", err)
	}

	observer.Observe(value)
	return nil
}

// Handler returns the scrape handler for this module's registry. Mount it on
// /metrics when embedding the module in an existing server.
func (m *PrometheusModule) Handler() http.Handler {
	m.mu.RLock()
	registry := m.registry
	m.mu.RUnlock()

	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

// StartExposition serves /metrics on the given address until Close
func (m *PrometheusModule) StartExposition(addr string) error {
	m.mu.RLock()
	ready := m.registry != nil
	m.mu.RUnlock()
	if !ready {
		return base.NewModuleError(m.Name(), "StartExposition", "module is not connected", nil)
	}
	if m.server != nil {
		return base.NewModuleError(m.Name(), "StartExposition", "exposition endpoint already running", nil)
	}

	router := mux.NewRouter()
	router.Handle("/metrics", m.Handler()).Methods(http.MethodGet)
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"healthy"}`))
	}).Methods(http.MethodGet)

	// scrape endpoints get permissive CORS so browser dashboards can read them
	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	})

	m.server = &http.Server{Addr: addr, Handler: c.Handler(router)}
	go func(server *http.Server) {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			m.logger.Printf("Exposition endpoint error: %v", err)
		}
	}(m.server)

	m.logger.Printf("Exposition endpoint listening on %s/metrics", addr)
	return nil
}

// ExportMetrics renders the registry in the Prometheus text format
func (m *PrometheusModule) ExportMetrics() (string, error) {
	m.mu.RLock()
	registry := m.registry
	m.mu.RUnlock()

	if registry == nil {
		return "", base.NewModuleError(m.Name(), "ExportMetrics", "module is not connected", nil)
	}

	families, err := registry.Gather()
	if err != nil {
		return "", base.NewModuleError(m.Name(), "ExportMetrics", "gather failed", err)
	}

	var buf bytes.Buffer
	encoder := expfmt.NewEncoder(&buf, expfmt.FmtText)
	for _, family := range families {
		if err := encoder.Encode(family); err != nil {
			return "", base.NewModuleError(m.Name(), "ExportMetrics", "encoding failed", err)
		}
	}
	return buf.String(), nil
}

// PushToGateway pushes all registered metrics to the Pushgateway, replacing
// metrics previously pushed for the same job and grouping.
func (m *PrometheusModule) PushToGateway(ctx context.Context, job string, grouping map[string]string) error {
	pusher, err := m.pusher("PushToGateway", job, grouping)
	if err != nil {
		return err
	}

	if err := pusher.PushContext(ctx); err != nil {
		return base.NewModuleError(m.Name(), "PushToGateway", "push failed", err)
	}

	m.logger.Printf("Pushed metrics to gateway (job=%s)", job)
	return nil
}

// DeleteFromGateway deletes all metrics for a job and grouping from the
// Pushgateway. Use it to clean up after finished batch jobs.
func (m *PrometheusModule) DeleteFromGateway(job string, grouping map[string]string) error {
	pusher, err := m.pusher("DeleteFromGateway", job, grouping)
	if err != nil {
		return err
	}

	if err := pusher.Delete(); err != nil {
		return base.NewModuleError(m.Name(), "DeleteFromGateway", "delete failed", err)
	}

	m.logger.Printf("Deleted metrics from gateway (job=%s)", job)
	return nil
}

func (m *PrometheusModule) pusher(op, job string, grouping map[string]string) (*push.Pusher, error) {
	m.mu.RLock()
	registry := m.registry
	m.mu.RUnlock()

	if registry == nil {
		return nil, base.NewModuleError(m.Name(), op, "module is not connected", nil)
	}

	if job == "" {
		job = m.config.StringOption("pushgateway_job", DefaultPushJob)
	}
	gatewayURL := m.config.StringOption("pushgateway_url", DefaultPushgatewayURL)

	pusher := push.New(gatewayURL, job).Gatherer(registry)
	for _, key := range sortedKeys(grouping) {
		pusher = pusher.Grouping(key, grouping[key])
	}
	return pusher, nil
}

// Query runs an instant PromQL query against the configured server
func (m *PrometheusModule) Query(ctx context.Context, promql string) ([]QueryResult, error) {
	if m.queryAPI == nil {
		return nil, base.NewModuleError(m.Name(), "Query", "query API not configured (set the connection URL)", nil)
	}

	ctx, cancel := m.config.WithTimeout(ctx)
	defer cancel()

	value, warnings, err := m.queryAPI.Query(ctx, promql, time.Now())
	if err != nil {
		return nil, base.NewModuleError(m.Name(), "Query", "query failed", err)
	}
	m.logWarnings(warnings)

	return convertInstant(value)
}

// QueryRange runs a range PromQL query and returns one series per result
func (m *PrometheusModule) QueryRange(ctx context.Context, promql string, start, end time.Time, step time.Duration) ([]RangeResult, error) {
	if m.queryAPI == nil {
		return nil, base.NewModuleError(m.Name(), "QueryRange", "query API not configured (set the connection URL)", nil)
	}
	if step <= 0 {
		return nil, base.NewModuleError(m.Name(), "QueryRange", "step must be positive", nil)
	}

	ctx, cancel := m.config.WithTimeout(ctx)
	defer cancel()

	value, warnings, err := m.queryAPI.QueryRange(ctx, promql, apiv1.Range{
		Start: start,
		End:   end,
		Step:  step,
	})
	if err != nil {
		return nil, base.NewModuleError(m.Name(), "QueryRange", "range query failed", err)
	}
	m.logWarnings(warnings)

	matrix, ok := value.(model.Matrix)
	if !ok {
		return nil, base.NewModuleError(m.Name(), "QueryRange",
			fmt.Sprintf("unexpected result type %q", value.Type()), nil)
	}

	results := make([]RangeResult, 0, len(matrix))
	for _, series := range matrix {
		result := RangeResult{
			Metric: metricLabels(series.Metric),
			Points: make([]SeriesPoint, 0, len(series.Values)),
		}
		for _, pair := range series.Values {
			result.Points = append(result.Points, SeriesPoint{
				Timestamp: pair.Timestamp.Time(),
				Value:     float64(pair.Value),
			})
		}
		results = append(results, result)
	}
	return results, nil
}

// CurrentMetricValue fetches the current samples of one metric, optionally
// narrowed by label matchers.
func (m *PrometheusModule) CurrentMetricValue(ctx context.Context, metricName string, labels map[string]string) ([]QueryResult, error) {
	selector, err := buildSelector(metricName, labels)
	if err != nil {
		return nil, base.NewModuleError(m.Name(), "CurrentMetricValue", "invalid selector", err)
	}
	return m.Query(ctx, selector)
}

// ListMetrics lists the fully qualified names of locally registered metrics
func (m *PrometheusModule) ListMetrics() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.metrics))
	for name := range m.metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MetricExists reports whether a fully qualified metric name is registered
func (m *PrometheusModule) MetricExists(fqName string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.metrics[fqName]
	return ok
}

// Name returns the configured instance name, or "prometheus" when unnamed
func (m *PrometheusModule) Name() string {
	if m.config == nil || m.config.Name == "" {
		return "prometheus"
	}
	return m.config.Name
}

func (m *PrometheusModule) logWarnings(warnings apiv1.Warnings) {
	for _, warning := range warnings {
		m.logger.Printf("Query warning: %s", base.SanitizeLogString(warning))
	}
}

// convertInstant flattens an instant query result into samples
func convertInstant(value model.Value) ([]QueryResult, error) {
	switch v := value.(type) {
	case model.Vector:
		results := make([]QueryResult, 0, len(v))
		for _, sample := range v {
			results = append(results, QueryResult{
				Metric:    metricLabels(sample.Metric),
				Value:     float64(sample.Value),
				Timestamp: sample.Timestamp.Time(),
			})
		}
		return results, nil
	case *model.Scalar:
		return []QueryResult{{
			Metric:    map[string]string{},
			Value:     float64(v.Value),
			Timestamp: v.Timestamp.Time(),
		}}, nil
	default:
		return nil, fmt.Errorf("unsupported result type %q", value.Type())
	}
}

func metricLabels(metric model.Metric) map[string]string {
	labels := make(map[string]string, len(metric))
	for name, value := range metric {
		labels[string(name)] = string(value)
	}
	return labels
}

// buildSelector renders a PromQL series selector with label matchers in
// stable order.
func buildSelector(metricName string, labels map[string]string) (string, error) {
	if !metricNamePattern.MatchString(metricName) {
		return "", fmt.Errorf("invalid metric name %q", metricName)
	}
	if len(labels) == 0 {
		return metricName, nil
	}

	matchers := make([]string, 0, len(labels))
	for _, key := range sortedKeys(labels) {
		if !labelNamePattern.MatchString(key) {
			return "", fmt.Errorf("invalid label name %q", key)
		}
		matchers = append(matchers, fmt.Sprintf("%s=%s", key, strconv.Quote(labels[key])))
	}

	return metricName + "{" + strings.Join(matchers, ",") + "}", nil
}

func sortedKeys(values map[string]string) []string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
