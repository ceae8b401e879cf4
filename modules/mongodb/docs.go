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

package mongodb

import "nl2flow/platform/modules/base"

// Metadata identifies the MongoDB module in the catalog
func (m *MongoModule) Metadata() base.Metadata {
	return base.NewMetadata(
		"MongoDB",
		"mongodb",
		"MongoDB document-oriented NoSQL database with CRUD operations, aggregation pipelines, and distinct/count queries",
	).WithKeywords(
		"mongodb", "nosql", "document", "database", "crud", "aggregation",
		"query", "collection", "bson",
	).WithDependencies("go.mongodb.org/mongo-driver")
}

// UsageNotes returns operational guidance for generated flows
func (m *MongoModule) UsageNotes() []string {
	return []string{
		"Supports MongoDB connection strings (mongodb://) or individual host/port/credentials options",
		"The database option is required; collections are chosen per call",
		"MongoDB creates databases and collections on first write operation",
		"Document _id values are returned as hex strings; filters on _id accept those strings directly",
		"Connection pool is configurable with max_pool_size and min_pool_size options",
		"Retryable writes and reads are enabled for replica set deployments",
		"Update documents use MongoDB operators such as $set and $inc",
		"Upsert option inserts the document when no match is found",
		"Sort, limit, and skip support query result pagination",
		"Projection controls which fields are returned (1=include, 0=exclude)",
		"Aggregation pipelines support complex transformations and analytics",
		"mongodb_delete_one requires a non-empty filter; mongodb_delete_many with an empty filter clears the collection",
	}
}

// Methods returns the documented method surface in presentation order
func (m *MongoModule) Methods() []base.MethodInfo {
	return []base.MethodInfo{
		{
			Name:        "mongodb_insert_one",
			Description: "Insert a single document into a collection",
			Parameters: []base.Parameter{
				{Name: "collection", Description: "str (required) - Collection name"},
				{Name: "document", Description: "dict (required) - Document to insert as key-value pairs"},
			},
			Returns: "str - Inserted document ID as a hex string",
			Examples: []base.Example{
				{Text: "Insert a user document into collection {{users}}", Code: "mongodb_insert_one(collection='{{users}}', document={'name': '{{name}}', 'age': {{age}}})"},
				{Text: "Insert a project document into collection {{projects}}", Code: "mongodb_insert_one(collection='{{projects}}', document={'title': '{{title}}', 'status': 'active'})"},
			},
		},
		{
			Name:        "mongodb_insert_many",
			Description: "Insert multiple documents into a collection in a single operation",
			Parameters: []base.Parameter{
				{Name: "collection", Description: "str (required) - Collection name"},
				{Name: "documents", Description: "list[dict] (required) - List of documents to insert"},
			},
			Returns: "list[str] - Inserted document IDs as hex strings",
			Examples: []base.Example{
				{Text: "Bulk insert user documents into collection {{users}}", Code: "mongodb_insert_many(collection='{{users}}', documents={{documents}})"},
			},
		},
		{
			Name:        "mongodb_find_one",
			Description: "Find and return a single document matching the filter criteria",
			Parameters: []base.Parameter{
				{Name: "collection", Description: "str (required) - Collection name"},
				{Name: "filter", Description: "dict (optional) - Query filter (empty filter returns any document)"},
				{Name: "projection", Description: "dict (optional) - Fields to include/exclude (1=include, 0=exclude)"},
			},
			Returns: "dict or None - First matching document, None when nothing matches",
			Examples: []base.Example{
				{Text: "Find user by name {{name}} in collection {{users}}", Code: "mongodb_find_one(collection='{{users}}', filter={'name': '{{name}}'})"},
				{Text: "Find document by id {{doc_id}}", Code: "mongodb_find_one(collection='{{users}}', filter={'_id': '{{doc_id}}'})"},
			},
		},
		{
			Name:        "mongodb_find",
			Description: "Find multiple documents matching the filter with sort, limit, and skip options",
			Parameters: []base.Parameter{
				{Name: "collection", Description: "str (required) - Collection name"},
				{Name: "filter", Description: "dict (optional) - Query filter (empty filter returns all)"},
				{Name: "projection", Description: "dict (optional) - Fields to include/exclude"},
				{Name: "sort", Description: "list (optional) - Sort specification [(field, 1|-1), ...]"},
				{Name: "limit", Description: "int (optional) - Maximum documents to return (0=unlimited)"},
				{Name: "skip", Description: "int (optional) - Documents to skip for pagination"},
			},
			Returns: "list[dict] - Matching documents",
			Examples: []base.Example{
				{Text: "Find all documents in collection {{users}}", Code: "mongodb_find(collection='{{users}}')"},
				{Text: "Find users older than {{age}}", Code: "mongodb_find(collection='{{users}}', filter={'age': {'$gte': {{age}}}})"},
				{Text: "Find active users sorted by name with a limit", Code: "mongodb_find(collection='{{users}}', filter={'status': 'active'}, sort=[('name', 1)], limit={{limit}})"},
			},
		},
		{
			Name:        "mongodb_update_one",
			Description: "Update a single document matching the filter with update operators",
			Parameters: []base.Parameter{
				{Name: "collection", Description: "str (required) - Collection name"},
				{Name: "filter", Description: "dict (required) - Query filter to find the document"},
				{Name: "update", Description: "dict (required) - Update operators, e.g. {'$set': {...}} or {'$inc': {...}}"},
				{Name: "upsert", Description: "bool (optional) - Insert when no document matches (default False)"},
			},
			Returns: "dict - matched_count, modified_count, and upserted_id",
			Examples: []base.Example{
				{Text: "Update age for user {{name}} in collection {{users}}", Code: "mongodb_update_one(collection='{{users}}', filter={'name': '{{name}}'}, update={'$set': {'age': {{age}}}})"},
				{Text: "Upsert counter {{counter}} in collection {{counters}}", Code: "mongodb_update_one(collection='{{counters}}', filter={'name': '{{counter}}'}, update={'$inc': {'count': 1}}, upsert=True)"},
			},
		},
		{
			Name:        "mongodb_update_many",
			Description: "Update every document matching the filter",
			Parameters: []base.Parameter{
				{Name: "collection", Description: "str (required) - Collection name"},
				{Name: "filter", Description: "dict (required) - Query filter"},
				{Name: "update", Description: "dict (required) - Update operators"},
				{Name: "upsert", Description: "bool (optional) - Insert when no document matches"},
			},
			Returns: "dict - matched_count, modified_count, and upserted_id",
			Examples: []base.Example{
				{Text: "Approve all pending users in collection {{users}}", Code: "mongodb_update_many(collection='{{users}}', filter={'status': 'pending'}, update={'$set': {'status': 'approved'}})"},
			},
		},
		{
			Name:        "mongodb_delete_one",
			Description: "Delete a single document matching the filter",
			Parameters: []base.Parameter{
				{Name: "collection", Description: "str (required) - Collection name"},
				{Name: "filter", Description: "dict (required) - Query filter"},
			},
			Returns: "int - Number of deleted documents (0 or 1)",
			Examples: []base.Example{
				{Text: "Delete user {{name}} from collection {{users}}", Code: "mongodb_delete_one(collection='{{users}}', filter={'name': '{{name}}'})"},
			},
		},
		{
			Name:        "mongodb_delete_many",
			Description: "Delete every document matching the filter",
			Parameters: []base.Parameter{
				{Name: "collection", Description: "str (required) - Collection name"},
				{Name: "filter", Description: "dict (required) - Query filter (empty filter deletes all documents)"},
			},
			Returns: "int - Number of deleted documents",
			Examples: []base.Example{
				{Text: "Delete inactive users from collection {{users}}", Code: "mongodb_delete_many(collection='{{users}}', filter={'status': 'inactive'})"},
			},
		},
		{
			Name:        "mongodb_aggregate",
			Description: "Run an aggregation pipeline for complex data transformations and analytics",
			Parameters: []base.Parameter{
				{Name: "collection", Description: "str (required) - Collection name"},
				{Name: "pipeline", Description: "list[dict] (required) - Aggregation stages ($match, $group, $sort, ...)"},
				{Name: "allow_disk_use", Description: "bool (optional) - Allow disk use for large operations (default False)"},
			},
			Returns: "list[dict] - Aggregation results",
			Examples: []base.Example{
				{Text: "Total order amounts per customer in collection {{orders}}", Code: "mongodb_aggregate(collection='{{orders}}', pipeline=[{'$group': {'_id': '$customer', 'total': {'$sum': '$amount'}}}])"},
				{Text: "Count {{year}} sales per product", Code: "mongodb_aggregate(collection='{{sales}}', pipeline=[{'$match': {'year': {{year}}}}, {'$group': {'_id': '$product', 'count': {'$sum': 1}}}])"},
			},
		},
		{
			Name:        "mongodb_count_documents",
			Description: "Count documents matching the filter",
			Parameters: []base.Parameter{
				{Name: "collection", Description: "str (required) - Collection name"},
				{Name: "filter", Description: "dict (optional) - Query filter (empty filter counts all)"},
			},
			Returns: "int - Number of matching documents",
			Examples: []base.Example{
				{Text: "Count active users in collection {{users}}", Code: "mongodb_count_documents(collection='{{users}}', filter={'status': 'active'})"},
			},
		},
		{
			Name:        "mongodb_distinct",
			Description: "Get distinct values for a field across matching documents",
			Parameters: []base.Parameter{
				{Name: "collection", Description: "str (required) - Collection name"},
				{Name: "field", Description: "str (required) - Field to collect distinct values from"},
				{Name: "filter", Description: "dict (optional) - Query filter applied before collecting values"},
			},
			Returns: "list - Distinct values",
			Examples: []base.Example{
				{Text: "Get distinct categories from collection {{products}}", Code: "mongodb_distinct(collection='{{products}}', field='category')"},
			},
		},
		{
			Name:        "mongodb_list_collections",
			Description: "List all collection names in the configured database",
			Parameters:  []base.Parameter{},
			Returns:     "list[str] - Collection names",
			Examples: []base.Example{
				{Text: "List all collections", Code: "mongodb_list_collections()"},
			},
		},
	}
}
