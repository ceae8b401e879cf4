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
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// ModuleMetrics tracks call metrics for one integration module. Counters
// are lock-free; the latency histogram keeps a bounded sample window.
type ModuleMetrics struct {
	taskType string

	// Counters
	callsTotal    int64
	errorsTotal   int64
	connectsTotal int64
	closesTotal   int64

	// Durations (nanoseconds)
	callDurationTotal int64
	callCount         int64

	// Current state
	connected int32

	callLatencies *LatencyHistogram
}

// NewModuleMetrics creates a new metrics collector
func NewModuleMetrics(taskType string) *ModuleMetrics {
	return &ModuleMetrics{
		taskType:      taskType,
		callLatencies: NewLatencyHistogram(),
	}
}

// RecordCall records one vendor-SDK call
func (m *ModuleMetrics) RecordCall(duration time.Duration, err error) {
	atomic.AddInt64(&m.callsTotal, 1)
	atomic.AddInt64(&m.callDurationTotal, int64(duration))
	atomic.AddInt64(&m.callCount, 1)

	if err != nil {
		atomic.AddInt64(&m.errorsTotal, 1)
	}

	m.callLatencies.Record(duration)
}

// RecordConnect records a successful connect
func (m *ModuleMetrics) RecordConnect() {
	atomic.AddInt64(&m.connectsTotal, 1)
	atomic.StoreInt32(&m.connected, 1)
}

// RecordClose records a close
func (m *ModuleMetrics) RecordClose() {
	atomic.AddInt64(&m.closesTotal, 1)
	atomic.StoreInt32(&m.connected, 0)
}

// RecordError records an error outside a timed call
func (m *ModuleMetrics) RecordError() {
	atomic.AddInt64(&m.errorsTotal, 1)
}

// Snapshot returns current metrics
func (m *ModuleMetrics) Snapshot() *MetricsSnapshot {
	callCount := atomic.LoadInt64(&m.callCount)

	var avgCallLatency time.Duration
	if callCount > 0 {
		avgCallLatency = time.Duration(atomic.LoadInt64(&m.callDurationTotal) / callCount)
	}

	return &MetricsSnapshot{
		TaskType:       m.taskType,
		CallsTotal:     atomic.LoadInt64(&m.callsTotal),
		ErrorsTotal:    atomic.LoadInt64(&m.errorsTotal),
		ConnectsTotal:  atomic.LoadInt64(&m.connectsTotal),
		ClosesTotal:    atomic.LoadInt64(&m.closesTotal),
		Connected:      atomic.LoadInt32(&m.connected) == 1,
		AvgCallLatency: avgCallLatency,
		CallLatencyP50: m.callLatencies.Percentile(0.5),
		CallLatencyP95: m.callLatencies.Percentile(0.95),
		CallLatencyP99: m.callLatencies.Percentile(0.99),
	}
}

// Reset resets all metrics
func (m *ModuleMetrics) Reset() {
	atomic.StoreInt64(&m.callsTotal, 0)
	atomic.StoreInt64(&m.errorsTotal, 0)
	atomic.StoreInt64(&m.connectsTotal, 0)
	atomic.StoreInt64(&m.closesTotal, 0)
	atomic.StoreInt64(&m.callDurationTotal, 0)
	atomic.StoreInt64(&m.callCount, 0)

	m.callLatencies.Reset()
}

// MetricsSnapshot represents a point-in-time snapshot of module metrics
type MetricsSnapshot struct {
	TaskType       string        `json:"task_type"`
	CallsTotal     int64         `json:"calls_total"`
	ErrorsTotal    int64         `json:"errors_total"`
	ConnectsTotal  int64         `json:"connects_total"`
	ClosesTotal    int64         `json:"closes_total"`
	Connected      bool          `json:"connected"`
	AvgCallLatency time.Duration `json:"avg_call_latency"`
	CallLatencyP50 time.Duration `json:"call_latency_p50"`
	CallLatencyP95 time.Duration `json:"call_latency_p95"`
	CallLatencyP99 time.Duration `json:"call_latency_p99"`
}

// LatencyHistogram provides simple percentile calculations
type LatencyHistogram struct {
	samples []time.Duration
	maxSize int
	mu      sync.Mutex
}

// NewLatencyHistogram creates a new latency histogram
func NewLatencyHistogram() *LatencyHistogram {
	return &LatencyHistogram{
		samples: make([]time.Duration, 0, 1000),
		maxSize: 10000,
	}
}

// Record adds a latency sample
func (h *LatencyHistogram) Record(d time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.samples) >= h.maxSize {
		// Drop the older half to bound memory
		h.samples = h.samples[len(h.samples)/2:]
	}
	h.samples = append(h.samples, d)
}

// Percentile calculates the given percentile
func (h *LatencyHistogram) Percentile(p float64) time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.samples) == 0 {
		return 0
	}

	sorted := make([]time.Duration, len(h.samples))
	copy(sorted, h.samples)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	idx := int(float64(len(sorted)-1) * p)
	return sorted[idx]
}

// Reset clears all samples
func (h *LatencyHistogram) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.samples = h.samples[:0]
}

// Count returns the number of samples
func (h *LatencyHistogram) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.samples)
}

// OperationTimer provides convenient timing for module calls
type OperationTimer struct {
	start time.Time
}

// NewTimer starts a new timer
func NewTimer() *OperationTimer {
	return &OperationTimer{start: time.Now()}
}

// Duration returns the elapsed time since the timer was started
func (t *OperationTimer) Duration() time.Duration {
	return time.Since(t.start)
}

// RecordTo records the duration to the given callback
func (t *OperationTimer) RecordTo(record func(time.Duration, error), err error) {
	record(t.Duration(), err)
}
