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

package opensearch

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"sync"
	"testing"

	"nl2flow/platform/modules/base"
)

// clusterRecorder captures the most recent request for assertions
type clusterRecorder struct {
	mu     sync.Mutex
	method string
	path   string
	query  url.Values
	body   string
}

func (r *clusterRecorder) record(req *http.Request) string {
	body, _ := io.ReadAll(req.Body)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.method = req.Method
	r.path = req.URL.Path
	r.query = req.URL.Query()
	r.body = string(body)
	return r.body
}

func (r *clusterRecorder) last() (method, path string, query url.Values, body string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.method, r.path, r.query, r.body
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

// newTestCluster serves canned OpenSearch API responses
func newTestCluster(t *testing.T) (*httptest.Server, *clusterRecorder) {
	t.Helper()
	recorder := &clusterRecorder{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body := recorder.record(r)

		switch {
		case r.URL.Path == "/":
			writeJSON(w, http.StatusOK,
				`{"cluster_name":"test-cluster","version":{"number":"2.11.0","distribution":"opensearch"}}`)

		case r.URL.Path == "/_cluster/health":
			writeJSON(w, http.StatusOK,
				`{"cluster_name":"test-cluster","status":"yellow","number_of_nodes":1}`)

		case r.URL.Path == "/_bulk":
			var items []string
			for _, line := range strings.Split(strings.TrimSpace(body), "\n") {
				if strings.HasPrefix(line, `{"index":`) {
					items = append(items, `{"index":{"_id":"x","status":201}}`)
				} else if strings.HasPrefix(line, `{"delete":`) {
					items = append(items, `{"delete":{"_id":"x","status":200}}`)
				}
			}
			writeJSON(w, http.StatusOK, `{"took":7,"errors":false,"items":[`+strings.Join(items, ",")+`]}`)

		case r.URL.Path == "/broken/_search":
			writeJSON(w, http.StatusInternalServerError,
				`{"error":{"type":"search_phase_execution_exception"},"status":500}`)

		case strings.HasSuffix(r.URL.Path, "/_search"):
			if strings.Contains(body, `"aggs"`) {
				writeJSON(w, http.StatusOK,
					`{"took":3,"aggregations":{"by_category":{"buckets":[{"key":"tools","doc_count":3}]}}}`)
				return
			}
			writeJSON(w, http.StatusOK,
				`{"took":5,"hits":{"total":{"value":2,"relation":"eq"},"hits":[`+
					`{"_index":"products","_id":"sku-1","_score":1.5,"_source":{"name":"Widget","price":9.5}},`+
					`{"_index":"products","_id":"sku-2","_score":1.1,"_source":{"name":"Gadget","price":24.0}}]}}`)

		case strings.HasSuffix(r.URL.Path, "/_count"):
			writeJSON(w, http.StatusOK, `{"count":42}`)

		case r.URL.Path == "/products/_update/sku-1":
			writeJSON(w, http.StatusOK, `{"_index":"products","_id":"sku-1","_version":2,"result":"updated"}`)

		case r.URL.Path == "/products/_doc/sku-1" && r.Method == http.MethodPut:
			writeJSON(w, http.StatusCreated, `{"_index":"products","_id":"sku-1","_version":1,"result":"created"}`)

		case r.URL.Path == "/products/_doc/sku-1" && r.Method == http.MethodGet:
			writeJSON(w, http.StatusOK,
				`{"_index":"products","_id":"sku-1","found":true,"_source":{"name":"Widget","price":9.5}}`)

		case r.URL.Path == "/products/_doc/sku-1" && r.Method == http.MethodDelete:
			writeJSON(w, http.StatusOK, `{"_index":"products","_id":"sku-1","_version":3,"result":"deleted"}`)

		case r.URL.Path == "/products/_doc/missing":
			writeJSON(w, http.StatusNotFound, `{"_index":"products","_id":"missing","found":false}`)

		case r.URL.Path == "/products/_doc" && r.Method == http.MethodPost:
			writeJSON(w, http.StatusCreated, `{"_index":"products","_id":"gen-123","_version":1,"result":"created"}`)

		case r.URL.Path == "/products" && r.Method == http.MethodPut:
			writeJSON(w, http.StatusOK, `{"acknowledged":true,"shards_acknowledged":true,"index":"products"}`)

		case r.URL.Path == "/products" && r.Method == http.MethodDelete:
			writeJSON(w, http.StatusOK, `{"acknowledged":true}`)

		case r.URL.Path == "/products" && r.Method == http.MethodHead:
			w.WriteHeader(http.StatusOK)

		case r.URL.Path == "/missing" && r.Method == http.MethodHead:
			w.WriteHeader(http.StatusNotFound)

		case r.URL.Path == "/products/_refresh":
			writeJSON(w, http.StatusOK, `{"_shards":{"total":2,"successful":1,"failed":0}}`)

		default:
			writeJSON(w, http.StatusNotFound, `{"error":"no handler for `+r.Method+` `+r.URL.Path+`"}`)
		}
	}))
	t.Cleanup(server.Close)
	return server, recorder
}

func connectedModule(t *testing.T) (*OpenSearchModule, *clusterRecorder) {
	t.Helper()
	server, recorder := newTestCluster(t)

	m := New(&base.ModuleConfig{Name: "search-cluster", ConnectionURL: server.URL})
	m.SetLogger(log.New(io.Discard, "", 0))
	if err := m.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	t.Cleanup(func() { _ = m.Close(context.Background()) })
	return m, recorder
}

func TestNew(t *testing.T) {
	m := New(&base.ModuleConfig{Name: "search-cluster"})

	if m.TaskType() != "opensearch" {
		t.Errorf("TaskType() = %q, want %q", m.TaskType(), "opensearch")
	}
	if m.Name() != "search-cluster" {
		t.Errorf("Name() = %q, want %q", m.Name(), "search-cluster")
	}
	if m.client != nil {
		t.Error("client should be nil before Connect")
	}
}

func TestNameFallsBackToTaskType(t *testing.T) {
	m := New(&base.ModuleConfig{})
	if m.Name() != "opensearch" {
		t.Errorf("Name() = %q, want %q", m.Name(), "opensearch")
	}
}

func TestMetadata(t *testing.T) {
	m := New(nil)
	meta := m.Metadata()

	if meta.Name != "OpenSearch" {
		t.Errorf("Name = %q, want %q", meta.Name, "OpenSearch")
	}
	if meta.TaskType != "opensearch" {
		t.Errorf("TaskType = %q, want %q", meta.TaskType, "opensearch")
	}
	if meta.Version != base.DefaultVersion {
		t.Errorf("Version = %q, want %q", meta.Version, base.DefaultVersion)
	}

	foundKeyword := false
	for _, kw := range meta.Keywords {
		if kw == "full-text" {
			foundKeyword = true
		}
	}
	if !foundKeyword {
		t.Error("Keywords should include full-text")
	}

	foundDep := false
	for _, dep := range meta.Dependencies {
		if dep == "github.com/opensearch-project/opensearch-go/v2" {
			foundDep = true
		}
	}
	if !foundDep {
		t.Error("Dependencies should include the OpenSearch client")
	}
}

func TestDocumentationSurface(t *testing.T) {
	m := New(nil)

	if len(m.UsageNotes()) == 0 {
		t.Fatal("UsageNotes() should not be empty")
	}

	wantNames := []string{
		"opensearch_create_index",
		"opensearch_delete_index",
		"opensearch_index_exists",
		"opensearch_refresh_index",
		"opensearch_index_document",
		"opensearch_get_document",
		"opensearch_update_document",
		"opensearch_delete_document",
		"opensearch_search",
		"opensearch_search_match",
		"opensearch_count",
		"opensearch_aggregate",
		"opensearch_bulk_index",
		"opensearch_bulk_delete",
		"opensearch_cluster_health",
	}
	methods := m.Methods()
	if len(methods) != len(wantNames) {
		t.Fatalf("Methods() returned %d methods, want %d", len(methods), len(wantNames))
	}
	for i, want := range wantNames {
		if methods[i].Name != want {
			t.Errorf("Methods()[%d].Name = %q, want %q", i, methods[i].Name, want)
		}
	}

	doc := base.Describe(m)
	if doc.Metadata.TaskType != "opensearch" {
		t.Errorf("Describe task type = %q, want opensearch", doc.Metadata.TaskType)
	}
}

func TestAddresses(t *testing.T) {
	m := New(nil)

	tests := []struct {
		name string
		cfg  *base.ModuleConfig
		want []string
	}{
		{
			name: "connection URL wins",
			cfg:  &base.ModuleConfig{ConnectionURL: "https://search.example.com:9200"},
			want: []string{"https://search.example.com:9200"},
		},
		{
			name: "addresses option is split and trimmed",
			cfg: &base.ModuleConfig{Options: map[string]interface{}{
				"addresses": "http://node-1:9200, http://node-2:9200",
			}},
			want: []string{"http://node-1:9200", "http://node-2:9200"},
		},
		{
			name: "default",
			cfg:  &base.ModuleConfig{},
			want: []string{DefaultAddress},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := m.addresses(tt.cfg)
			if len(got) != len(tt.want) {
				t.Fatalf("addresses() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("addresses()[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestConnectRequiresConfig(t *testing.T) {
	m := New(nil)

	err := m.Connect(context.Background())
	if err == nil {
		t.Fatal("Connect() should fail without config")
	}

	var modErr *base.ModuleError
	if !errors.As(err, &modErr) {
		t.Fatalf("error should be a ModuleError, got %T", err)
	}
	if modErr.Operation != "Connect" {
		t.Errorf("Operation = %q, want %q", modErr.Operation, "Connect")
	}
}

func TestConnectRejectsBadScheme(t *testing.T) {
	m := New(&base.ModuleConfig{ConnectionURL: "ftp://search.example.com:9200"})
	m.SetLogger(log.New(io.Discard, "", 0))

	err := m.Connect(context.Background())
	if err == nil {
		t.Fatal("Connect() should reject non-HTTP schemes")
	}
	if !strings.Contains(err.Error(), "invalid cluster address") {
		t.Errorf("error = %q, want mention of invalid cluster address", err)
	}
}

func TestConnectClusterError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, `{"error":"boom"}`)
	}))
	defer server.Close()

	m := New(&base.ModuleConfig{ConnectionURL: server.URL})
	m.SetLogger(log.New(io.Discard, "", 0))

	if err := m.Connect(context.Background()); err == nil {
		t.Fatal("Connect() should fail when the cluster returns an error")
	}
	if m.IsConnected() {
		t.Error("module should not be marked connected after a failed Connect")
	}
}

func TestConnectAndHealthCheck(t *testing.T) {
	m, _ := connectedModule(t)

	if !m.IsConnected() {
		t.Fatal("IsConnected() should be true after Connect")
	}

	health, err := m.HealthCheck(context.Background())
	if err != nil {
		t.Fatalf("HealthCheck() error = %v", err)
	}
	if !health.Healthy {
		t.Errorf("Healthy = false, want true: %s", health.Error)
	}
	if health.Details["cluster_name"] != "test-cluster" {
		t.Errorf("cluster_name = %q, want %q", health.Details["cluster_name"], "test-cluster")
	}
	if health.Details["version"] != "2.11.0" {
		t.Errorf("version = %q, want %q", health.Details["version"], "2.11.0")
	}
	if health.Details["cluster_status"] != "yellow" {
		t.Errorf("cluster_status = %q, want %q", health.Details["cluster_status"], "yellow")
	}
}

func TestIndexLifecycle(t *testing.T) {
	m, recorder := connectedModule(t)
	ctx := context.Background()

	settings := map[string]interface{}{
		"settings": map[string]interface{}{"number_of_shards": 1},
	}
	if err := m.CreateIndex(ctx, "products", settings); err != nil {
		t.Fatalf("CreateIndex() error = %v", err)
	}
	method, path, _, body := recorder.last()
	if method != http.MethodPut || path != "/products" {
		t.Errorf("CreateIndex sent %s %s, want PUT /products", method, path)
	}
	if !strings.Contains(body, "number_of_shards") {
		t.Errorf("CreateIndex body = %q, want settings included", body)
	}

	exists, err := m.IndexExists(ctx, "products")
	if err != nil {
		t.Fatalf("IndexExists() error = %v", err)
	}
	if !exists {
		t.Error("IndexExists(products) = false, want true")
	}

	exists, err = m.IndexExists(ctx, "missing")
	if err != nil {
		t.Fatalf("IndexExists() error = %v", err)
	}
	if exists {
		t.Error("IndexExists(missing) = true, want false")
	}

	if err := m.RefreshIndex(ctx, "products"); err != nil {
		t.Fatalf("RefreshIndex() error = %v", err)
	}
	_, path, _, _ = recorder.last()
	if path != "/products/_refresh" {
		t.Errorf("RefreshIndex path = %q, want /products/_refresh", path)
	}

	if err := m.DeleteIndex(ctx, "products"); err != nil {
		t.Fatalf("DeleteIndex() error = %v", err)
	}
	method, path, _, _ = recorder.last()
	if method != http.MethodDelete || path != "/products" {
		t.Errorf("DeleteIndex sent %s %s, want DELETE /products", method, path)
	}
}

func TestIndexDocument(t *testing.T) {
	m, recorder := connectedModule(t)

	doc := map[string]interface{}{"name": "Widget", "price": 9.5}
	result, err := m.IndexDocument(context.Background(), "products", doc, "sku-1", true)
	if err != nil {
		t.Fatalf("IndexDocument() error = %v", err)
	}

	if result.ID != "sku-1" {
		t.Errorf("ID = %q, want %q", result.ID, "sku-1")
	}
	if result.Result != "created" {
		t.Errorf("Result = %q, want %q", result.Result, "created")
	}
	if result.Version != 1 {
		t.Errorf("Version = %d, want 1", result.Version)
	}

	method, path, query, _ := recorder.last()
	if method != http.MethodPut || path != "/products/_doc/sku-1" {
		t.Errorf("sent %s %s, want PUT /products/_doc/sku-1", method, path)
	}
	if query.Get("refresh") != "true" {
		t.Errorf("refresh param = %q, want %q", query.Get("refresh"), "true")
	}
}

func TestIndexDocumentGeneratedID(t *testing.T) {
	m, recorder := connectedModule(t)

	doc := map[string]interface{}{"name": "Widget"}
	result, err := m.IndexDocument(context.Background(), "products", doc, "", false)
	if err != nil {
		t.Fatalf("IndexDocument() error = %v", err)
	}

	if result.ID != "gen-123" {
		t.Errorf("ID = %q, want generated %q", result.ID, "gen-123")
	}

	method, path, query, _ := recorder.last()
	if method != http.MethodPost || path != "/products/_doc" {
		t.Errorf("sent %s %s, want POST /products/_doc", method, path)
	}
	if query.Get("refresh") != "" {
		t.Errorf("refresh param = %q, want empty", query.Get("refresh"))
	}
}

func TestIndexDocumentValidation(t *testing.T) {
	m, _ := connectedModule(t)
	ctx := context.Background()

	if _, err := m.IndexDocument(ctx, "", map[string]interface{}{"a": 1}, "", false); err == nil {
		t.Error("IndexDocument() should reject an empty index")
	}
	if _, err := m.IndexDocument(ctx, "products", nil, "", false); err == nil {
		t.Error("IndexDocument() should reject an empty document")
	}
}

func TestGetDocument(t *testing.T) {
	m, _ := connectedModule(t)
	ctx := context.Background()

	source, err := m.GetDocument(ctx, "products", "sku-1")
	if err != nil {
		t.Fatalf("GetDocument() error = %v", err)
	}
	if source["name"] != "Widget" {
		t.Errorf("source name = %v, want Widget", source["name"])
	}
	if source["price"] != 9.5 {
		t.Errorf("source price = %v, want 9.5", source["price"])
	}

	source, err = m.GetDocument(ctx, "products", "missing")
	if err != nil {
		t.Fatalf("GetDocument(missing) error = %v", err)
	}
	if source != nil {
		t.Errorf("GetDocument(missing) = %v, want nil", source)
	}

	if _, err := m.GetDocument(ctx, "products", ""); err == nil {
		t.Error("GetDocument() should reject an empty document ID")
	}
}

func TestUpdateDocument(t *testing.T) {
	m, recorder := connectedModule(t)

	result, err := m.UpdateDocument(context.Background(), "products", "sku-1",
		map[string]interface{}{"price": 12.5}, false)
	if err != nil {
		t.Fatalf("UpdateDocument() error = %v", err)
	}

	if result.Result != "updated" {
		t.Errorf("Result = %q, want %q", result.Result, "updated")
	}
	if result.Version != 2 {
		t.Errorf("Version = %d, want 2", result.Version)
	}

	_, path, _, body := recorder.last()
	if path != "/products/_update/sku-1" {
		t.Errorf("path = %q, want /products/_update/sku-1", path)
	}
	if !strings.Contains(body, `"doc":{"price":12.5}`) {
		t.Errorf("body = %q, want partial document wrapped in doc", body)
	}
}

func TestDeleteDocument(t *testing.T) {
	m, recorder := connectedModule(t)

	result, err := m.DeleteDocument(context.Background(), "products", "sku-1", false)
	if err != nil {
		t.Fatalf("DeleteDocument() error = %v", err)
	}
	if result.Result != "deleted" {
		t.Errorf("Result = %q, want %q", result.Result, "deleted")
	}

	method, path, _, _ := recorder.last()
	if method != http.MethodDelete || path != "/products/_doc/sku-1" {
		t.Errorf("sent %s %s, want DELETE /products/_doc/sku-1", method, path)
	}
}

func TestSearch(t *testing.T) {
	m, recorder := connectedModule(t)

	query := map[string]interface{}{
		"match": map[string]interface{}{"description": "wireless"},
	}
	result, err := m.Search(context.Background(), "products", query, SearchOptions{
		Sort: []string{"created_at:desc"},
	})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	if result.Total != 2 {
		t.Errorf("Total = %d, want 2", result.Total)
	}
	if len(result.Hits) != 2 {
		t.Fatalf("len(Hits) = %d, want 2", len(result.Hits))
	}
	if result.Hits[0].ID != "sku-1" {
		t.Errorf("Hits[0].ID = %q, want %q", result.Hits[0].ID, "sku-1")
	}
	if result.Hits[0].Score != 1.5 {
		t.Errorf("Hits[0].Score = %v, want 1.5", result.Hits[0].Score)
	}
	if result.Hits[0].Source["name"] != "Widget" {
		t.Errorf("Hits[0].Source name = %v, want Widget", result.Hits[0].Source["name"])
	}

	_, _, queryParams, body := recorder.last()
	if queryParams.Get("size") != "10" {
		t.Errorf("size param = %q, want default 10", queryParams.Get("size"))
	}
	if queryParams.Get("sort") != "created_at:desc" {
		t.Errorf("sort param = %q, want created_at:desc", queryParams.Get("sort"))
	}
	if !strings.Contains(body, `"match"`) {
		t.Errorf("body = %q, want the match query", body)
	}
}

func TestSearchDefaultsToMatchAll(t *testing.T) {
	m, recorder := connectedModule(t)

	if _, err := m.Search(context.Background(), "products", nil, SearchOptions{}); err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	_, _, _, body := recorder.last()
	if !strings.Contains(body, `"match_all"`) {
		t.Errorf("body = %q, want match_all for a nil query", body)
	}
}

func TestSearchMatch(t *testing.T) {
	m, recorder := connectedModule(t)

	sources, err := m.SearchMatch(context.Background(), "products", "name", "widget", 5)
	if err != nil {
		t.Fatalf("SearchMatch() error = %v", err)
	}
	if len(sources) != 2 {
		t.Fatalf("len(sources) = %d, want 2", len(sources))
	}
	if sources[0]["name"] != "Widget" {
		t.Errorf("sources[0] name = %v, want Widget", sources[0]["name"])
	}

	_, _, query, body := recorder.last()
	if query.Get("size") != "5" {
		t.Errorf("size param = %q, want 5", query.Get("size"))
	}
	if !strings.Contains(body, `"match":{"name":"widget"}`) {
		t.Errorf("body = %q, want a match query on name", body)
	}

	if _, err := m.SearchMatch(context.Background(), "products", "", "widget", 5); err == nil {
		t.Error("SearchMatch() should reject an empty field")
	}
}

func TestSearchServerError(t *testing.T) {
	m, _ := connectedModule(t)

	_, err := m.Search(context.Background(), "broken", nil, SearchOptions{})
	if err == nil {
		t.Fatal("Search() should surface cluster errors")
	}

	var modErr *base.ModuleError
	if !errors.As(err, &modErr) {
		t.Fatalf("error should be a ModuleError, got %T", err)
	}
	if modErr.Operation != "Search" {
		t.Errorf("Operation = %q, want %q", modErr.Operation, "Search")
	}
}

func TestCount(t *testing.T) {
	m, recorder := connectedModule(t)

	count, err := m.Count(context.Background(), "products", nil)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 42 {
		t.Errorf("Count() = %d, want 42", count)
	}

	_, path, _, body := recorder.last()
	if path != "/products/_count" {
		t.Errorf("path = %q, want /products/_count", path)
	}
	if !strings.Contains(body, `"match_all"`) {
		t.Errorf("body = %q, want match_all for a nil query", body)
	}
}

func TestAggregate(t *testing.T) {
	m, recorder := connectedModule(t)

	aggs := map[string]interface{}{
		"by_category": map[string]interface{}{
			"terms": map[string]interface{}{"field": "category"},
		},
	}
	result, err := m.Aggregate(context.Background(), "products", aggs, nil)
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}

	if _, ok := result["by_category"]; !ok {
		t.Errorf("result = %v, want by_category aggregation", result)
	}

	_, _, query, body := recorder.last()
	if query.Get("size") != "0" {
		t.Errorf("size param = %q, want 0", query.Get("size"))
	}
	if !strings.Contains(body, `"aggs"`) {
		t.Errorf("body = %q, want the aggs block", body)
	}

	if _, err := m.Aggregate(context.Background(), "products", nil, nil); err == nil {
		t.Error("Aggregate() should reject empty aggregations")
	}
}

func TestBulkIndex(t *testing.T) {
	m, recorder := connectedModule(t)

	docs := []map[string]interface{}{
		{"name": "Widget", "price": 9.5},
		{"name": "Gadget", "price": 24.0},
	}
	result, err := m.BulkIndex(context.Background(), "products", docs, nil, false)
	if err != nil {
		t.Fatalf("BulkIndex() error = %v", err)
	}

	if result.Succeeded != 2 || result.Failed != 0 {
		t.Errorf("Succeeded/Failed = %d/%d, want 2/0", result.Succeeded, result.Failed)
	}
	if result.Errors {
		t.Error("Errors = true, want false")
	}

	_, path, _, body := recorder.last()
	if path != "/_bulk" {
		t.Errorf("path = %q, want /_bulk", path)
	}
	if lines := strings.Split(strings.TrimSpace(body), "\n"); len(lines) != 4 {
		t.Errorf("bulk body has %d lines, want 4", len(lines))
	}
}

func TestBulkIndexEmptyInput(t *testing.T) {
	m, recorder := connectedModule(t)

	result, err := m.BulkIndex(context.Background(), "products", nil, nil, false)
	if err != nil {
		t.Fatalf("BulkIndex() error = %v", err)
	}
	if result.Succeeded != 0 || result.Failed != 0 {
		t.Errorf("empty input should report zero outcomes, got %+v", result)
	}

	_, path, _, _ := recorder.last()
	if strings.HasSuffix(path, "/_bulk") {
		t.Error("empty input should not hit the cluster")
	}
}

func TestBulkIndexIDLengthMismatch(t *testing.T) {
	m, _ := connectedModule(t)

	docs := []map[string]interface{}{{"a": 1}, {"b": 2}}
	_, err := m.BulkIndex(context.Background(), "products", docs, []string{"only-one"}, false)
	if err == nil {
		t.Fatal("BulkIndex() should reject mismatched doc_ids")
	}
	if !strings.Contains(err.Error(), "must match") {
		t.Errorf("error = %q, want length mismatch mention", err)
	}
}

func TestBulkDelete(t *testing.T) {
	m, recorder := connectedModule(t)

	result, err := m.BulkDelete(context.Background(), "products", []string{"sku-1", "sku-2"}, true)
	if err != nil {
		t.Fatalf("BulkDelete() error = %v", err)
	}
	if result.Succeeded != 2 {
		t.Errorf("Succeeded = %d, want 2", result.Succeeded)
	}

	_, path, query, _ := recorder.last()
	if path != "/_bulk" {
		t.Errorf("path = %q, want /_bulk", path)
	}
	if query.Get("refresh") != "true" {
		t.Errorf("refresh param = %q, want true", query.Get("refresh"))
	}

	empty, err := m.BulkDelete(context.Background(), "products", nil, false)
	if err != nil {
		t.Fatalf("BulkDelete(empty) error = %v", err)
	}
	if empty.Succeeded != 0 {
		t.Errorf("empty input should report zero outcomes, got %+v", empty)
	}
}

func TestBuildBulkIndexBody(t *testing.T) {
	docs := []map[string]interface{}{
		{"name": "a", "qty": 1},
		{"name": "b"},
	}

	body, err := buildBulkIndexBody("items", docs, []string{"1", "2"})
	if err != nil {
		t.Fatalf("buildBulkIndexBody() error = %v", err)
	}

	want := `{"index":{"_index":"items","_id":"1"}}
{"name":"a","qty":1}
{"index":{"_index":"items","_id":"2"}}
{"name":"b"}
`
	if body != want {
		t.Errorf("body = %q, want %q", body, want)
	}
}

func TestBuildBulkIndexBodyWithoutIDs(t *testing.T) {
	body, err := buildBulkIndexBody("items", []map[string]interface{}{{"name": "a"}}, nil)
	if err != nil {
		t.Fatalf("buildBulkIndexBody() error = %v", err)
	}

	want := `{"index":{"_index":"items"}}
{"name":"a"}
`
	if body != want {
		t.Errorf("body = %q, want %q", body, want)
	}
}

func TestBuildBulkDeleteBody(t *testing.T) {
	body, err := buildBulkDeleteBody("items", []string{"1", "2"})
	if err != nil {
		t.Fatalf("buildBulkDeleteBody() error = %v", err)
	}

	want := `{"delete":{"_index":"items","_id":"1"}}
{"delete":{"_index":"items","_id":"2"}}
`
	if body != want {
		t.Errorf("body = %q, want %q", body, want)
	}

	if _, err := buildBulkDeleteBody("items", []string{""}); err == nil {
		t.Error("buildBulkDeleteBody() should reject empty IDs")
	}
}

func TestRefreshValue(t *testing.T) {
	if got := refreshValue(true); got != "true" {
		t.Errorf("refreshValue(true) = %q, want %q", got, "true")
	}
	if got := refreshValue(false); got != "" {
		t.Errorf("refreshValue(false) = %q, want empty", got)
	}
}

func TestClusterHealth(t *testing.T) {
	m, _ := connectedModule(t)

	health, err := m.ClusterHealth(context.Background())
	if err != nil {
		t.Fatalf("ClusterHealth() error = %v", err)
	}
	if health["status"] != "yellow" {
		t.Errorf("status = %v, want yellow", health["status"])
	}
	if health["cluster_name"] != "test-cluster" {
		t.Errorf("cluster_name = %v, want test-cluster", health["cluster_name"])
	}
}

func TestOperationsWithoutConnect(t *testing.T) {
	m := New(&base.ModuleConfig{Name: "search-cluster"})
	m.SetLogger(log.New(io.Discard, "", 0))
	ctx := context.Background()

	doc := map[string]interface{}{"a": 1}
	aggs := map[string]interface{}{"x": map[string]interface{}{}}

	operations := map[string]func() error{
		"CreateIndex":    func() error { return m.CreateIndex(ctx, "idx", nil) },
		"DeleteIndex":    func() error { return m.DeleteIndex(ctx, "idx") },
		"IndexExists":    func() error { _, err := m.IndexExists(ctx, "idx"); return err },
		"RefreshIndex":   func() error { return m.RefreshIndex(ctx, "idx") },
		"IndexDocument":  func() error { _, err := m.IndexDocument(ctx, "idx", doc, "", false); return err },
		"GetDocument":    func() error { _, err := m.GetDocument(ctx, "idx", "1"); return err },
		"UpdateDocument": func() error { _, err := m.UpdateDocument(ctx, "idx", "1", doc, false); return err },
		"DeleteDocument": func() error { _, err := m.DeleteDocument(ctx, "idx", "1", false); return err },
		"Search":         func() error { _, err := m.Search(ctx, "idx", nil, SearchOptions{}); return err },
		"SearchMatch":    func() error { _, err := m.SearchMatch(ctx, "idx", "f", "v", 1); return err },
		"Count":          func() error { _, err := m.Count(ctx, "idx", nil); return err },
		"Aggregate":      func() error { _, err := m.Aggregate(ctx, "idx", aggs, nil); return err },
		"BulkIndex":      func() error { _, err := m.BulkIndex(ctx, "idx", []map[string]interface{}{doc}, nil, false); return err },
		"BulkDelete":     func() error { _, err := m.BulkDelete(ctx, "idx", []string{"1"}, false); return err },
		"ClusterHealth":  func() error { _, err := m.ClusterHealth(ctx); return err },
	}

	for name, op := range operations {
		t.Run(name, func(t *testing.T) {
			err := op()
			if err == nil {
				t.Fatalf("%s should fail before Connect", name)
			}
			var modErr *base.ModuleError
			if !errors.As(err, &modErr) {
				t.Fatalf("error should be a ModuleError, got %T", err)
			}
		})
	}
}

func TestCloseWithoutConnect(t *testing.T) {
	m := New(&base.ModuleConfig{})
	if err := m.Close(context.Background()); err != nil {
		t.Errorf("Close() error = %v, want nil", err)
	}
}

func TestHealthCheckWithoutConnect(t *testing.T) {
	m := New(&base.ModuleConfig{})

	health, err := m.HealthCheck(context.Background())
	if err != nil {
		t.Fatalf("HealthCheck() error = %v", err)
	}
	if health.Healthy {
		t.Error("Healthy = true, want false before Connect")
	}
	if health.Error != "client not initialized" {
		t.Errorf("Error = %q, want %q", health.Error, "client not initialized")
	}
}

func skipIfNoOpenSearch(t *testing.T) string {
	t.Helper()
	endpoint := os.Getenv("OPENSEARCH_TEST_URL")
	if endpoint == "" {
		t.Skip("OPENSEARCH_TEST_URL not set; skipping integration test")
	}
	return endpoint
}

func TestIntegrationRoundTrip(t *testing.T) {
	endpoint := skipIfNoOpenSearch(t)
	ctx := context.Background()

	m := New(&base.ModuleConfig{
		Name:          "integration",
		ConnectionURL: endpoint,
		Options:       map[string]interface{}{"insecure_skip_verify": true},
	})
	if err := m.Connect(ctx); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer func() { _ = m.Close(ctx) }()

	index := "nlf-integration-test"
	_ = m.DeleteIndex(ctx, index)

	if err := m.CreateIndex(ctx, index, nil); err != nil {
		t.Fatalf("CreateIndex() error = %v", err)
	}
	defer func() { _ = m.DeleteIndex(ctx, index) }()

	docs := []map[string]interface{}{
		{"name": "alpha", "rank": 1},
		{"name": "beta", "rank": 2},
	}
	bulk, err := m.BulkIndex(ctx, index, docs, []string{"a", "b"}, true)
	if err != nil {
		t.Fatalf("BulkIndex() error = %v", err)
	}
	if bulk.Succeeded != 2 {
		t.Fatalf("BulkIndex succeeded = %d, want 2", bulk.Succeeded)
	}

	count, err := m.Count(ctx, index, nil)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 2 {
		t.Errorf("Count() = %d, want 2", count)
	}

	sources, err := m.SearchMatch(ctx, index, "name", "alpha", 10)
	if err != nil {
		t.Fatalf("SearchMatch() error = %v", err)
	}
	if len(sources) != 1 {
		t.Errorf("SearchMatch() returned %d documents, want 1", len(sources))
	}

	if _, err := m.UpdateDocument(ctx, index, "a", map[string]interface{}{"rank": 10}, true); err != nil {
		t.Fatalf("UpdateDocument() error = %v", err)
	}
	source, err := m.GetDocument(ctx, index, "a")
	if err != nil {
		t.Fatalf("GetDocument() error = %v", err)
	}
	if source["rank"] != float64(10) {
		t.Errorf("rank = %v, want 10", source["rank"])
	}

	if _, err := m.DeleteDocument(ctx, index, "b", true); err != nil {
		t.Fatalf("DeleteDocument() error = %v", err)
	}

	health, err := m.HealthCheck(ctx)
	if err != nil {
		t.Fatalf("HealthCheck() error = %v", err)
	}
	if !health.Healthy {
		t.Errorf("Healthy = false: %s", health.Error)
	}
}
