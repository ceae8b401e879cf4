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

import "nl2flow/platform/modules/base"

// Metadata describes the OpenSearch module for catalog listings
func (m *OpenSearchModule) Metadata() base.Metadata {
	return base.NewMetadata(
		"OpenSearch",
		"opensearch",
		"OpenSearch search and analytics engine with full-text search, indexing, aggregations, and AWS support",
	).WithKeywords(
		"opensearch", "elasticsearch", "search", "analytics", "full-text",
		"indexing", "aggregations", "aws", "iam", "bulk-operations",
	).WithDependencies(
		"github.com/opensearch-project/opensearch-go/v2",
		"github.com/aws/aws-sdk-go-v2/config",
	)
}

// UsageNotes returns operational guidance for generated flows
func (m *OpenSearchModule) UsageNotes() []string {
	return []string{
		"Set the connection URL to the cluster endpoint, e.g. https://search.example.com:9200; it defaults to http://localhost:9200.",
		"Multiple nodes can be given through the addresses option as a comma-separated list.",
		"Authenticate with the username and password credentials, or set the aws_auth option (with aws_region) to sign requests for AWS OpenSearch Service.",
		"Set insecure_skip_verify only for development clusters with self-signed certificates.",
		"Index names accept patterns in search operations: 'logs-*' searches all matching indices.",
		"Queries use the OpenSearch Query DSL: match for full-text, term for exact values, bool to combine, range for numeric and date bounds.",
		"A nil query matches all documents.",
		"Indexing with refresh=true makes the document searchable immediately but slows throughput; leave it off for bulk loads and call opensearch_refresh_index once at the end.",
		"opensearch_get_document returns no result (and no error) when the document does not exist.",
		"opensearch_update_document applies a partial update; only the supplied fields change.",
		"Bulk operations are much faster than per-document calls for large volumes; check the succeeded and failed counts in the result.",
		"Aggregations (terms, stats, histogram, date_histogram) run without returning documents; use opensearch_search when hits are needed too.",
		"Sort directives use field:order form, e.g. 'price:desc'.",
		"Restrict returned fields with source_fields to cut response size on wide documents.",
	}
}

// Methods lists callable operations with examples
func (m *OpenSearchModule) Methods() []base.MethodInfo {
	return []base.MethodInfo{
		{
			Name:        "opensearch_create_index",
			Description: "Create an index, optionally with settings and mappings",
			Parameters: []base.Parameter{
				{Name: "index", Description: "Index name"},
				{Name: "settings", Description: "Optional settings and mappings document"},
			},
			Returns: "Error if the index could not be created",
			Examples: []base.Example{
				{
					Text: "Create a products index with one shard",
					Code: "opensearch_create_index(index='products', settings={'settings': {'number_of_shards': 1}})",
				},
			},
		},
		{
			Name:        "opensearch_delete_index",
			Description: "Delete an index and all its documents",
			Parameters: []base.Parameter{
				{Name: "index", Description: "Index name"},
			},
			Returns: "Error if the index could not be deleted",
			Examples: []base.Example{
				{
					Text: "Drop the staging index",
					Code: "opensearch_delete_index(index='products-staging')",
				},
			},
		},
		{
			Name:        "opensearch_index_exists",
			Description: "Check whether an index exists",
			Parameters: []base.Parameter{
				{Name: "index", Description: "Index name"},
			},
			Returns: "True if the index exists",
			Examples: []base.Example{
				{
					Text: "Query: check if the products index exists",
					Code: "opensearch_index_exists(index='products')",
				},
			},
		},
		{
			Name:        "opensearch_refresh_index",
			Description: "Make recent writes searchable immediately",
			Parameters: []base.Parameter{
				{Name: "index", Description: "Index name"},
			},
			Returns: "Error if the refresh failed",
			Examples: []base.Example{
				{
					Text: "Refresh after a bulk load",
					Code: "opensearch_refresh_index(index='products')",
				},
			},
		},
		{
			Name:        "opensearch_index_document",
			Description: "Store a single document",
			Parameters: []base.Parameter{
				{Name: "index", Description: "Index name"},
				{Name: "document", Description: "Document fields"},
				{Name: "doc_id", Description: "Optional document ID; generated when empty"},
				{Name: "refresh", Description: "Make the document searchable immediately"},
			},
			Returns: "Document ID, index, result, and version",
			Examples: []base.Example{
				{
					Text: "Index a product",
					Code: "opensearch_index_document(index='products', document={'name': '{{name}}', 'price': {{price}}}, doc_id='{{sku}}')",
				},
			},
		},
		{
			Name:        "opensearch_get_document",
			Description: "Fetch a document by ID",
			Parameters: []base.Parameter{
				{Name: "index", Description: "Index name"},
				{Name: "doc_id", Description: "Document ID"},
			},
			Returns: "Document source, or nothing if it does not exist",
			Examples: []base.Example{
				{
					Text: "Query: get product {{sku}}",
					Code: "opensearch_get_document(index='products', doc_id='{{sku}}')",
				},
			},
		},
		{
			Name:        "opensearch_update_document",
			Description: "Apply a partial update to a document",
			Parameters: []base.Parameter{
				{Name: "index", Description: "Index name"},
				{Name: "doc_id", Description: "Document ID"},
				{Name: "document", Description: "Fields to change"},
				{Name: "refresh", Description: "Make the change searchable immediately"},
			},
			Returns: "Document ID, index, result, and version",
			Examples: []base.Example{
				{
					Text: "Update a product price",
					Code: "opensearch_update_document(index='products', doc_id='{{sku}}', document={'price': {{price}}})",
				},
			},
		},
		{
			Name:        "opensearch_delete_document",
			Description: "Delete a document by ID",
			Parameters: []base.Parameter{
				{Name: "index", Description: "Index name"},
				{Name: "doc_id", Description: "Document ID"},
				{Name: "refresh", Description: "Make the deletion visible immediately"},
			},
			Returns: "Document ID, index, result, and version",
			Examples: []base.Example{
				{
					Text: "Delete a discontinued product",
					Code: "opensearch_delete_document(index='products', doc_id='{{sku}}')",
				},
			},
		},
		{
			Name:        "opensearch_search",
			Description: "Run a Query DSL search",
			Parameters: []base.Parameter{
				{Name: "index", Description: "Index name or pattern"},
				{Name: "query", Description: "Query DSL document; matches all when omitted"},
				{Name: "size", Description: "Number of hits to return (default 10)"},
				{Name: "from", Description: "Starting offset for pagination"},
				{Name: "sort", Description: "Sort directives in field:order form"},
				{Name: "source_fields", Description: "Restrict returned source fields"},
			},
			Returns: "Total hit count and matching documents with scores",
			Examples: []base.Example{
				{
					Text: "Query: find products mentioning wireless, newest first",
					Code: "opensearch_search(index='products', query={'match': {'description': 'wireless'}}, sort=['created_at:desc'], size=20)",
				},
			},
		},
		{
			Name:        "opensearch_search_match",
			Description: "Full-text match on a single field, returning document sources",
			Parameters: []base.Parameter{
				{Name: "index", Description: "Index name or pattern"},
				{Name: "field", Description: "Field to match against"},
				{Name: "value", Description: "Text to match"},
				{Name: "size", Description: "Number of documents to return (default 10)"},
			},
			Returns: "List of matching document sources",
			Examples: []base.Example{
				{
					Text: "Query: search product names for {{term}}",
					Code: "opensearch_search_match(index='products', field='name', value='{{term}}')",
				},
			},
		},
		{
			Name:        "opensearch_count",
			Description: "Count documents matching a query",
			Parameters: []base.Parameter{
				{Name: "index", Description: "Index name or pattern"},
				{Name: "query", Description: "Query DSL document; counts all when omitted"},
			},
			Returns: "Number of matching documents",
			Examples: []base.Example{
				{
					Text: "Query: how many products are out of stock",
					Code: "opensearch_count(index='products', query={'term': {'in_stock': False}})",
				},
			},
		},
		{
			Name:        "opensearch_aggregate",
			Description: "Run aggregations without returning documents",
			Parameters: []base.Parameter{
				{Name: "index", Description: "Index name or pattern"},
				{Name: "aggregations", Description: "Aggregation DSL document"},
				{Name: "query", Description: "Optional query to filter aggregated documents"},
			},
			Returns: "Aggregation results keyed by aggregation name",
			Examples: []base.Example{
				{
					Text: "Query: average price per category",
					Code: "opensearch_aggregate(index='products', aggregations={'by_category': {'terms': {'field': 'category'}, 'aggs': {'avg_price': {'avg': {'field': 'price'}}}}})",
				},
			},
		},
		{
			Name:        "opensearch_bulk_index",
			Description: "Index many documents in one request",
			Parameters: []base.Parameter{
				{Name: "index", Description: "Index name"},
				{Name: "documents", Description: "Documents to index"},
				{Name: "doc_ids", Description: "Optional IDs, one per document"},
				{Name: "refresh", Description: "Make the documents searchable immediately"},
			},
			Returns: "Succeeded and failed counts",
			Examples: []base.Example{
				{
					Text: "Load a product batch",
					Code: "opensearch_bulk_index(index='products', documents={{products}})",
				},
			},
		},
		{
			Name:        "opensearch_bulk_delete",
			Description: "Delete many documents by ID in one request",
			Parameters: []base.Parameter{
				{Name: "index", Description: "Index name"},
				{Name: "doc_ids", Description: "Document IDs to delete"},
				{Name: "refresh", Description: "Make the deletions visible immediately"},
			},
			Returns: "Succeeded and failed counts",
			Examples: []base.Example{
				{
					Text: "Remove expired sessions",
					Code: "opensearch_bulk_delete(index='sessions', doc_ids={{expired_ids}})",
				},
			},
		},
		{
			Name:        "opensearch_cluster_health",
			Description: "Fetch the cluster health document",
			Parameters:  []base.Parameter{},
			Returns:     "Cluster status, node counts, and shard statistics",
			Examples: []base.Example{
				{
					Text: "Query: is the search cluster healthy",
					Code: "opensearch_cluster_health()",
				},
			},
		},
	}
}
