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
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	opensearchgo "github.com/opensearch-project/opensearch-go/v2"
	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"
	awssigner "github.com/opensearch-project/opensearch-go/v2/signer/awsv2"

	"nl2flow/platform/modules/base"
	"nl2flow/platform/modules/sdk"
)

// DefaultAddress is used when no cluster address is configured
const DefaultAddress = "http://localhost:9200"

// OpenSearchModule drives OpenSearch clusters for generated flows: index
// management, document CRUD, full-text search, aggregations, and bulk
// operations. AWS OpenSearch Service is supported through SigV4 signing.
type OpenSearchModule struct {
	*sdk.BaseModule
	client      *opensearchgo.Client
	clusterName string
	version     string
}

var _ base.Module = (*OpenSearchModule)(nil)

// DocumentResult reports the outcome of a single-document write
type DocumentResult struct {
	ID      string `json:"id"`
	Index   string `json:"index"`
	Result  string `json:"result"`
	Version int64  `json:"version"`
}

// Hit is one search match
type Hit struct {
	ID     string                 `json:"id"`
	Index  string                 `json:"index"`
	Score  float64                `json:"score"`
	Source map[string]interface{} `json:"source"`
}

// SearchResult carries search matches and the total hit count
type SearchResult struct {
	Total int64 `json:"total"`
	Took  int64 `json:"took"`
	Hits  []Hit `json:"hits"`
}

// SearchOptions tune pagination, ordering, and field selection
type SearchOptions struct {
	Size         int      // number of hits to return (default 10)
	From         int      // starting offset for pagination
	Sort         []string // sort directives in field:order form, e.g. "price:desc"
	SourceFields []string // restrict returned _source fields
}

// BulkResult summarizes a bulk request
type BulkResult struct {
	Took      int64 `json:"took"`
	Errors    bool  `json:"errors"`
	Succeeded int   `json:"succeeded"`
	Failed    int   `json:"failed"`
}

// New creates an OpenSearch module bound to the given configuration. The
// client is not built until Connect.
func New(cfg *base.ModuleConfig) *OpenSearchModule {
	return &OpenSearchModule{
		BaseModule: sdk.NewBaseModule("opensearch", cfg),
	}
}

// Connect builds the cluster client and verifies connectivity. Addresses
// come from the connection URL or the comma-separated addresses option.
// Setting the aws_auth option signs requests with SigV4 for AWS OpenSearch
// Service; insecure_skip_verify disables TLS verification for self-signed
// development clusters.
func (m *OpenSearchModule) Connect(ctx context.Context) error {
	cfg := m.Config()
	if cfg == nil {
		return base.NewModuleError("opensearch", "Connect", "module config is required", nil)
	}

	addresses := m.addresses(cfg)
	for _, addr := range addresses {
		if err := base.ValidateEndpoint(addr, base.EndpointOptions{}); err != nil {
			return base.NewModuleError(m.Name(), "Connect", "invalid cluster address", err)
		}
	}

	osCfg := opensearchgo.Config{
		Addresses:     addresses,
		Username:      cfg.Credential("username"),
		Password:      cfg.Credential("password"),
		RetryOnStatus: []int{429, 502, 503, 504},
	}
	if cfg.MaxRetries > 0 {
		osCfg.MaxRetries = cfg.MaxRetries
	}

	if cfg.BoolOption("insecure_skip_verify", false) {
		m.Logf("TLS certificate verification disabled")
		osCfg.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}

	if cfg.BoolOption("aws_auth", false) {
		region := cfg.StringOption("aws_region", "us-east-1")
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
		if err != nil {
			return base.NewModuleError(m.Name(), "Connect", "failed to load AWS config", err)
		}
		signer, err := awssigner.NewSignerWithService(awsCfg, "es")
		if err != nil {
			return base.NewModuleError(m.Name(), "Connect", "failed to create request signer", err)
		}
		osCfg.Signer = signer
	}

	client, err := opensearchgo.NewClient(osCfg)
	if err != nil {
		return base.NewModuleError(m.Name(), "Connect", "failed to create client", err)
	}

	res, err := opensearchapi.InfoRequest{}.Do(ctx, client)
	if err != nil {
		return base.NewModuleError(m.Name(), "Connect", "failed to reach cluster", err)
	}
	info, err := decodeResponse(res)
	if err != nil {
		return base.NewModuleError(m.Name(), "Connect", "unexpected cluster info response", err)
	}

	m.client = client
	m.clusterName, _ = info["cluster_name"].(string)
	if version, ok := info["version"].(map[string]interface{}); ok {
		m.version, _ = version["number"].(string)
	}

	m.SetConnected(true)
	m.Logf("Connected to OpenSearch cluster: %s (v%s)", m.clusterName, m.version)
	return nil
}

func (m *OpenSearchModule) addresses(cfg *base.ModuleConfig) []string {
	if cfg.ConnectionURL != "" {
		return []string{cfg.ConnectionURL}
	}
	if list := cfg.StringOption("addresses", ""); list != "" {
		parts := strings.Split(list, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return []string{DefaultAddress}
}

// Close releases the cluster client
func (m *OpenSearchModule) Close(ctx context.Context) error {
	m.client = nil
	if m.IsConnected() {
		m.SetConnected(false)
	}
	return nil
}

// HealthCheck reports cluster health. Yellow clusters are considered healthy
// (single-node clusters never reach green); red clusters are not.
func (m *OpenSearchModule) HealthCheck(ctx context.Context) (*base.HealthStatus, error) {
	if m.client == nil {
		return &base.HealthStatus{
			Healthy:   false,
			Error:     "client not initialized",
			Timestamp: time.Now(),
		}, nil
	}

	start := time.Now()
	res, err := opensearchapi.ClusterHealthRequest{}.Do(ctx, m.client)
	latency := time.Since(start)
	if err != nil {
		return &base.HealthStatus{
			Healthy:   false,
			Latency:   latency,
			Timestamp: time.Now(),
			Error:     err.Error(),
		}, nil
	}

	health, err := decodeResponse(res)
	if err != nil {
		return &base.HealthStatus{
			Healthy:   false,
			Latency:   latency,
			Timestamp: time.Now(),
			Error:     err.Error(),
		}, nil
	}

	status, _ := health["status"].(string)
	return &base.HealthStatus{
		Healthy:   status == "green" || status == "yellow",
		Latency:   latency,
		Timestamp: time.Now(),
		Details: map[string]string{
			"cluster_name":   m.clusterName,
			"version":        m.version,
			"cluster_status": status,
		},
	}, nil
}

// CreateIndex creates an index, optionally with settings and mappings
func (m *OpenSearchModule) CreateIndex(ctx context.Context, index string, settings map[string]interface{}) error {
	if err := m.requireIndex("CreateIndex", index); err != nil {
		return err
	}

	timer := sdk.NewTimer()
	defer timer.RecordTo(m.Metrics().RecordCall, nil)

	req := opensearchapi.IndicesCreateRequest{Index: index}
	if len(settings) > 0 {
		body, err := jsonBody(settings)
		if err != nil {
			return base.NewModuleError(m.Name(), "CreateIndex", "invalid settings", err)
		}
		req.Body = body
	}

	res, err := req.Do(ctx, m.client)
	if err != nil {
		return base.NewModuleError(m.Name(), "CreateIndex", "request failed", err)
	}
	if _, err := decodeResponse(res); err != nil {
		return base.NewModuleError(m.Name(), "CreateIndex", fmt.Sprintf("failed to create index %s", index), err)
	}

	m.Logf("Created index: %s", index)
	return nil
}

// DeleteIndex deletes an index and all its documents
func (m *OpenSearchModule) DeleteIndex(ctx context.Context, index string) error {
	if err := m.requireIndex("DeleteIndex", index); err != nil {
		return err
	}

	timer := sdk.NewTimer()
	defer timer.RecordTo(m.Metrics().RecordCall, nil)

	res, err := opensearchapi.IndicesDeleteRequest{Index: []string{index}}.Do(ctx, m.client)
	if err != nil {
		return base.NewModuleError(m.Name(), "DeleteIndex", "request failed", err)
	}
	if _, err := decodeResponse(res); err != nil {
		return base.NewModuleError(m.Name(), "DeleteIndex", fmt.Sprintf("failed to delete index %s", index), err)
	}

	m.Logf("Deleted index: %s", index)
	return nil
}

// IndexExists reports whether an index exists
func (m *OpenSearchModule) IndexExists(ctx context.Context, index string) (bool, error) {
	if err := m.requireIndex("IndexExists", index); err != nil {
		return false, err
	}

	timer := sdk.NewTimer()
	defer timer.RecordTo(m.Metrics().RecordCall, nil)

	res, err := opensearchapi.IndicesExistsRequest{Index: []string{index}}.Do(ctx, m.client)
	if err != nil {
		return false, base.NewModuleError(m.Name(), "IndexExists", "request failed", err)
	}
	defer func() { _ = res.Body.Close() }()

	switch res.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, base.NewModuleError(m.Name(), "IndexExists",
			fmt.Sprintf("unexpected status %d", res.StatusCode), nil)
	}
}

// RefreshIndex makes recent writes searchable immediately
func (m *OpenSearchModule) RefreshIndex(ctx context.Context, index string) error {
	if err := m.requireIndex("RefreshIndex", index); err != nil {
		return err
	}

	timer := sdk.NewTimer()
	defer timer.RecordTo(m.Metrics().RecordCall, nil)

	res, err := opensearchapi.IndicesRefreshRequest{Index: []string{index}}.Do(ctx, m.client)
	if err != nil {
		return base.NewModuleError(m.Name(), "RefreshIndex", "request failed", err)
	}
	if _, err := decodeResponse(res); err != nil {
		return base.NewModuleError(m.Name(), "RefreshIndex", fmt.Sprintf("failed to refresh index %s", index), err)
	}
	return nil
}

// IndexDocument stores one document. With an empty docID the cluster
// generates one. Refresh makes the document searchable immediately at the
// cost of indexing throughput.
func (m *OpenSearchModule) IndexDocument(ctx context.Context, index string, document map[string]interface{}, docID string, refresh bool) (*DocumentResult, error) {
	if err := m.requireIndex("IndexDocument", index); err != nil {
		return nil, err
	}
	if len(document) == 0 {
		return nil, base.NewModuleError(m.Name(), "IndexDocument", "document is required", nil)
	}

	timer := sdk.NewTimer()
	defer timer.RecordTo(m.Metrics().RecordCall, nil)

	body, err := jsonBody(document)
	if err != nil {
		return nil, base.NewModuleError(m.Name(), "IndexDocument", "invalid document", err)
	}

	res, err := opensearchapi.IndexRequest{
		Index:      index,
		DocumentID: docID,
		Body:       body,
		Refresh:    refreshValue(refresh),
	}.Do(ctx, m.client)
	if err != nil {
		return nil, base.NewModuleError(m.Name(), "IndexDocument", "request failed", err)
	}

	return decodeDocumentResult(m.Name(), "IndexDocument", res)
}

// GetDocument fetches a document by ID. A missing document returns nil
// without an error.
func (m *OpenSearchModule) GetDocument(ctx context.Context, index, docID string) (map[string]interface{}, error) {
	if err := m.requireIndex("GetDocument", index); err != nil {
		return nil, err
	}
	if docID == "" {
		return nil, base.NewModuleError(m.Name(), "GetDocument", "document ID is required", nil)
	}

	timer := sdk.NewTimer()
	defer timer.RecordTo(m.Metrics().RecordCall, nil)

	res, err := opensearchapi.GetRequest{Index: index, DocumentID: docID}.Do(ctx, m.client)
	if err != nil {
		return nil, base.NewModuleError(m.Name(), "GetDocument", "request failed", err)
	}
	if res.StatusCode == http.StatusNotFound {
		_ = res.Body.Close()
		return nil, nil
	}

	out, err := decodeResponse(res)
	if err != nil {
		return nil, base.NewModuleError(m.Name(), "GetDocument", fmt.Sprintf("failed to get document %s", docID), err)
	}

	source, _ := out["_source"].(map[string]interface{})
	return source, nil
}

// UpdateDocument applies a partial update to a document
func (m *OpenSearchModule) UpdateDocument(ctx context.Context, index, docID string, document map[string]interface{}, refresh bool) (*DocumentResult, error) {
	if err := m.requireIndex("UpdateDocument", index); err != nil {
		return nil, err
	}
	if docID == "" {
		return nil, base.NewModuleError(m.Name(), "UpdateDocument", "document ID is required", nil)
	}
	if len(document) == 0 {
		return nil, base.NewModuleError(m.Name(), "UpdateDocument", "document is required", nil)
	}

	timer := sdk.NewTimer()
	defer timer.RecordTo(m.Metrics().RecordCall, nil)

	body, err := jsonBody(map[string]interface{}{"doc": document})
	if err != nil {
		return nil, base.NewModuleError(m.Name(), "UpdateDocument", "invalid document", err)
	}

	res, err := opensearchapi.UpdateRequest{
		Index:      index,
		DocumentID: docID,
		Body:       body,
		Refresh:    refreshValue(refresh),
	}.Do(ctx, m.client)
	if err != nil {
		return nil, base.NewModuleError(m.Name(), "UpdateDocument", "request failed", err)
	}

	return decodeDocumentResult(m.Name(), "UpdateDocument", res)
}

// DeleteDocument deletes a document by ID
func (m *OpenSearchModule) DeleteDocument(ctx context.Context, index, docID string, refresh bool) (*DocumentResult, error) {
	if err := m.requireIndex("DeleteDocument", index); err != nil {
		return nil, err
	}
	if docID == "" {
		return nil, base.NewModuleError(m.Name(), "DeleteDocument", "document ID is required", nil)
	}

	timer := sdk.NewTimer()
	defer timer.RecordTo(m.Metrics().RecordCall, nil)

	res, err := opensearchapi.DeleteRequest{
		Index:      index,
		DocumentID: docID,
		Refresh:    refreshValue(refresh),
	}.Do(ctx, m.client)
	if err != nil {
		return nil, base.NewModuleError(m.Name(), "DeleteDocument", "request failed", err)
	}

	return decodeDocumentResult(m.Name(), "DeleteDocument", res)
}

// Search runs a Query DSL search against an index or index pattern. A nil
// query matches all documents.
func (m *OpenSearchModule) Search(ctx context.Context, index string, query map[string]interface{}, opts SearchOptions) (*SearchResult, error) {
	if err := m.requireIndex("Search", index); err != nil {
		return nil, err
	}

	timer := sdk.NewTimer()
	defer timer.RecordTo(m.Metrics().RecordCall, nil)

	if query == nil {
		query = map[string]interface{}{"match_all": map[string]interface{}{}}
	}
	body, err := jsonBody(map[string]interface{}{"query": query})
	if err != nil {
		return nil, base.NewModuleError(m.Name(), "Search", "invalid query", err)
	}

	size := opts.Size
	if size <= 0 {
		size = 10
	}
	req := opensearchapi.SearchRequest{
		Index: []string{index},
		Body:  body,
		Size:  &size,
		Sort:  opts.Sort,
	}
	if opts.From > 0 {
		from := opts.From
		req.From = &from
	}
	if len(opts.SourceFields) > 0 {
		req.SourceIncludes = opts.SourceFields
	}

	res, err := req.Do(ctx, m.client)
	if err != nil {
		return nil, base.NewModuleError(m.Name(), "Search", "request failed", err)
	}

	return decodeSearchResult(m.Name(), res)
}

// SearchMatch is a convenience full-text match on one field, returning only
// document sources.
func (m *OpenSearchModule) SearchMatch(ctx context.Context, index, field, value string, size int) ([]map[string]interface{}, error) {
	if field == "" {
		return nil, base.NewModuleError(m.Name(), "SearchMatch", "field is required", nil)
	}

	query := map[string]interface{}{
		"match": map[string]interface{}{field: value},
	}
	result, err := m.Search(ctx, index, query, SearchOptions{Size: size})
	if err != nil {
		return nil, err
	}

	sources := make([]map[string]interface{}, 0, len(result.Hits))
	for _, hit := range result.Hits {
		sources = append(sources, hit.Source)
	}
	return sources, nil
}

// Count counts documents matching a query (all documents when query is nil)
func (m *OpenSearchModule) Count(ctx context.Context, index string, query map[string]interface{}) (int64, error) {
	if err := m.requireIndex("Count", index); err != nil {
		return 0, err
	}

	timer := sdk.NewTimer()
	defer timer.RecordTo(m.Metrics().RecordCall, nil)

	if query == nil {
		query = map[string]interface{}{"match_all": map[string]interface{}{}}
	}
	body, err := jsonBody(map[string]interface{}{"query": query})
	if err != nil {
		return 0, base.NewModuleError(m.Name(), "Count", "invalid query", err)
	}

	res, err := opensearchapi.CountRequest{Index: []string{index}, Body: body}.Do(ctx, m.client)
	if err != nil {
		return 0, base.NewModuleError(m.Name(), "Count", "request failed", err)
	}

	out, err := decodeResponse(res)
	if err != nil {
		return 0, base.NewModuleError(m.Name(), "Count", "count failed", err)
	}

	count, _ := out["count"].(float64)
	return int64(count), nil
}

// Aggregate runs aggregations, optionally filtered by a query, and returns
// the aggregation results. No documents are returned.
func (m *OpenSearchModule) Aggregate(ctx context.Context, index string, aggregations, query map[string]interface{}) (map[string]interface{}, error) {
	if err := m.requireIndex("Aggregate", index); err != nil {
		return nil, err
	}
	if len(aggregations) == 0 {
		return nil, base.NewModuleError(m.Name(), "Aggregate", "aggregations are required", nil)
	}

	timer := sdk.NewTimer()
	defer timer.RecordTo(m.Metrics().RecordCall, nil)

	request := map[string]interface{}{"aggs": aggregations}
	if query != nil {
		request["query"] = query
	}
	body, err := jsonBody(request)
	if err != nil {
		return nil, base.NewModuleError(m.Name(), "Aggregate", "invalid aggregation", err)
	}

	size := 0
	res, err := opensearchapi.SearchRequest{
		Index: []string{index},
		Body:  body,
		Size:  &size,
	}.Do(ctx, m.client)
	if err != nil {
		return nil, base.NewModuleError(m.Name(), "Aggregate", "request failed", err)
	}

	out, err := decodeResponse(res)
	if err != nil {
		return nil, base.NewModuleError(m.Name(), "Aggregate", "aggregation failed", err)
	}

	aggs, _ := out["aggregations"].(map[string]interface{})
	if aggs == nil {
		aggs = map[string]interface{}{}
	}
	return aggs, nil
}

// BulkIndex indexes many documents in one request. docIDs is optional; when
// given it must be the same length as documents.
func (m *OpenSearchModule) BulkIndex(ctx context.Context, index string, documents []map[string]interface{}, docIDs []string, refresh bool) (*BulkResult, error) {
	if err := m.requireIndex("BulkIndex", index); err != nil {
		return nil, err
	}
	if len(documents) == 0 {
		return &BulkResult{}, nil
	}

	timer := sdk.NewTimer()
	defer timer.RecordTo(m.Metrics().RecordCall, nil)

	payload, err := buildBulkIndexBody(index, documents, docIDs)
	if err != nil {
		return nil, base.NewModuleError(m.Name(), "BulkIndex", "failed to build bulk body", err)
	}

	return m.executeBulk(ctx, "BulkIndex", payload, refresh)
}

// BulkDelete deletes many documents by ID in one request
func (m *OpenSearchModule) BulkDelete(ctx context.Context, index string, docIDs []string, refresh bool) (*BulkResult, error) {
	if err := m.requireIndex("BulkDelete", index); err != nil {
		return nil, err
	}
	if len(docIDs) == 0 {
		return &BulkResult{}, nil
	}

	timer := sdk.NewTimer()
	defer timer.RecordTo(m.Metrics().RecordCall, nil)

	payload, err := buildBulkDeleteBody(index, docIDs)
	if err != nil {
		return nil, base.NewModuleError(m.Name(), "BulkDelete", "failed to build bulk body", err)
	}

	return m.executeBulk(ctx, "BulkDelete", payload, refresh)
}

func (m *OpenSearchModule) executeBulk(ctx context.Context, op, payload string, refresh bool) (*BulkResult, error) {
	res, err := opensearchapi.BulkRequest{
		Body:    strings.NewReader(payload),
		Refresh: refreshValue(refresh),
	}.Do(ctx, m.client)
	if err != nil {
		return nil, base.NewModuleError(m.Name(), op, "request failed", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return nil, base.NewModuleError(m.Name(), op, res.String(), nil)
	}

	var envelope struct {
		Took   int64 `json:"took"`
		Errors bool  `json:"errors"`
		Items  []map[string]struct {
			Status int `json:"status"`
		} `json:"items"`
	}
	if err := json.NewDecoder(res.Body).Decode(&envelope); err != nil {
		return nil, base.NewModuleError(m.Name(), op, "unexpected bulk response", err)
	}

	result := &BulkResult{Took: envelope.Took, Errors: envelope.Errors}
	for _, item := range envelope.Items {
		for _, action := range item {
			if action.Status < 300 {
				result.Succeeded++
			} else {
				result.Failed++
			}
		}
	}

	m.Logf("Bulk request finished: %d succeeded, %d failed", result.Succeeded, result.Failed)
	return result, nil
}

// ClusterHealth returns the raw cluster health document
func (m *OpenSearchModule) ClusterHealth(ctx context.Context) (map[string]interface{}, error) {
	if err := m.RequireConnected("ClusterHealth"); err != nil {
		return nil, err
	}

	timer := sdk.NewTimer()
	defer timer.RecordTo(m.Metrics().RecordCall, nil)

	res, err := opensearchapi.ClusterHealthRequest{}.Do(ctx, m.client)
	if err != nil {
		return nil, base.NewModuleError(m.Name(), "ClusterHealth", "request failed", err)
	}

	health, err := decodeResponse(res)
	if err != nil {
		return nil, base.NewModuleError(m.Name(), "ClusterHealth", "health request failed", err)
	}
	return health, nil
}

func (m *OpenSearchModule) requireIndex(op, index string) error {
	if err := m.RequireConnected(op); err != nil {
		return err
	}
	if index == "" {
		return base.NewModuleError(m.Name(), op, "index name is required", nil)
	}
	return nil
}

// bulk action metadata, marshaled in declaration order
type bulkMeta struct {
	Index string `json:"_index"`
	ID    string `json:"_id,omitempty"`
}

func buildBulkIndexBody(index string, documents []map[string]interface{}, docIDs []string) (string, error) {
	if len(docIDs) > 0 && len(docIDs) != len(documents) {
		return "", fmt.Errorf("doc_ids length (%d) must match documents length (%d)", len(docIDs), len(documents))
	}

	var builder strings.Builder
	for i, doc := range documents {
		meta := bulkMeta{Index: index}
		if len(docIDs) > 0 {
			meta.ID = docIDs[i]
		}
		action, err := json.Marshal(map[string]bulkMeta{"index": meta})
		if err != nil {
			return "", err
		}
		source, err := json.Marshal(doc)
		if err != nil {
			return "", fmt.Errorf("document %d: %w", i, err)
		}

		builder.Write(action)
		builder.WriteByte('\n')
		builder.Write(source)
		builder.WriteByte('\n')
	}
	return builder.String(), nil
}

func buildBulkDeleteBody(index string, docIDs []string) (string, error) {
	var builder strings.Builder
	for _, id := range docIDs {
		if id == "" {
			return "", fmt.Errorf("document IDs must not be empty")
		}
		action, err := json.Marshal(map[string]bulkMeta{"delete": {Index: index, ID: id}})
		if err != nil {
			return "", err
		}
		builder.Write(action)
		builder.WriteByte('\n')
	}
	return builder.String(), nil
}

// decodeResponse drains one API response, converting error statuses into errors
func decodeResponse(res *opensearchapi.Response) (map[string]interface{}, error) {
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return nil, fmt.Errorf("%s", res.String())
	}

	var out map[string]interface{}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

func decodeDocumentResult(module, op string, res *opensearchapi.Response) (*DocumentResult, error) {
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return nil, base.NewModuleError(module, op, res.String(), nil)
	}

	var envelope struct {
		ID      string `json:"_id"`
		Index   string `json:"_index"`
		Result  string `json:"result"`
		Version int64  `json:"_version"`
	}
	if err := json.NewDecoder(res.Body).Decode(&envelope); err != nil {
		return nil, base.NewModuleError(module, op, "unexpected response", err)
	}

	return &DocumentResult{
		ID:      envelope.ID,
		Index:   envelope.Index,
		Result:  envelope.Result,
		Version: envelope.Version,
	}, nil
}

func decodeSearchResult(module string, res *opensearchapi.Response) (*SearchResult, error) {
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return nil, base.NewModuleError(module, "Search", res.String(), nil)
	}

	var envelope struct {
		Took int64 `json:"took"`
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				ID     string                 `json:"_id"`
				Index  string                 `json:"_index"`
				Score  float64                `json:"_score"`
				Source map[string]interface{} `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&envelope); err != nil {
		return nil, base.NewModuleError(module, "Search", "unexpected search response", err)
	}

	result := &SearchResult{
		Total: envelope.Hits.Total.Value,
		Took:  envelope.Took,
		Hits:  make([]Hit, 0, len(envelope.Hits.Hits)),
	}
	for _, hit := range envelope.Hits.Hits {
		result.Hits = append(result.Hits, Hit{
			ID:     hit.ID,
			Index:  hit.Index,
			Score:  hit.Score,
			Source: hit.Source,
		})
	}
	return result, nil
}

func jsonBody(v interface{}) (io.Reader, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(data), nil
}

func refreshValue(refresh bool) string {
	if refresh {
		return "true"
	}
	return ""
}
