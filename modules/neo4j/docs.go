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

package neo4j

import "nl2flow/platform/modules/base"

// Metadata describes the Neo4j module for catalog listings
func (m *Neo4jModule) Metadata() base.Metadata {
	return base.NewMetadata(
		"Neo4j",
		"neo4j",
		"Neo4j graph database for storing and querying highly connected data with the Cypher query language",
	).WithKeywords(
		"neo4j", "graph", "database", "cypher", "nodes", "relationships",
		"graph-database", "path-finding", "network", "connected-data",
	).WithDependencies(
		"github.com/neo4j/neo4j-go-driver/v5",
	)
}

// UsageNotes returns operational guidance for flows that target Neo4j
func (m *Neo4jModule) UsageNotes() []string {
	return []string{
		"Connection URLs accept the bolt://, neo4j://, bolt+s://, and neo4j+s:// schemes; the default is bolt://localhost:7687.",
		"The database option selects the target database; the default is 'neo4j'.",
		"Connection pooling is managed by the driver with a default of 50 connections and a one-hour connection lifetime.",
		"Cypher statements use $name parameters; labels and relationship types cannot be parameterized and are validated instead.",
		"Labels, relationship types, and property names must start with a letter or underscore and contain only letters, digits, and underscores.",
		"neo4j_query returns records for read statements; neo4j_write returns counters for nodes, relationships, properties, labels, indexes, and constraints.",
		"All write operations run inside managed transactions and are retried on transient failures.",
		"Deleting with detach removes the node's relationships as well; without it the delete fails while relationships remain.",
		"Path finding uses the shortestPath algorithm with a configurable maximum depth (default 5 hops).",
		"neo4j_batch_create_nodes is far more efficient than repeated single creates for bulk loads.",
		"Index and constraint creation use IF NOT EXISTS, so repeating them is safe.",
		"Constraint types are UNIQUE (property values must be unique per label) and EXISTS (property must be present).",
		"Property values can be strings, numbers, booleans, or lists; nested maps are not valid node properties.",
	}
}

// Methods lists the operations exposed to generated flows
func (m *Neo4jModule) Methods() []base.MethodInfo {
	return []base.MethodInfo{
		{
			Name:        "neo4j_query",
			Description: "Execute a read Cypher statement and return records as maps",
			Parameters: []base.Parameter{
				{Name: "cypher", Description: "Cypher statement with $name parameters"},
				{Name: "params", Description: "Parameter values keyed by name"},
			},
			Returns: "List of records, each a map keyed by the RETURN aliases",
			Examples: []base.Example{
				{
					Text: "Query: find people who know each other",
					Code: "neo4j_query(cypher='MATCH (a:Person)-[:KNOWS]->(b:Person) WHERE a.name = $name RETURN b.name AS friend', params={'name': '{{name}}'})",
				},
				{
					Text: "Query: count products by category",
					Code: "neo4j_query(cypher='MATCH (p:Product) RETURN p.category AS category, count(*) AS total')",
				},
			},
		},
		{
			Name:        "neo4j_write",
			Description: "Execute a write Cypher statement in a transaction and return its counters",
			Parameters: []base.Parameter{
				{Name: "cypher", Description: "Cypher write statement (CREATE, MERGE, SET, DELETE)"},
				{Name: "params", Description: "Parameter values keyed by name"},
			},
			Returns: "Write summary with nodes/relationships created and deleted, properties set, and schema changes",
			Examples: []base.Example{
				{
					Text: "Query: merge a user node",
					Code: "neo4j_write(cypher='MERGE (u:User {email: $email}) SET u.last_seen = $now', params={'email': '{{email}}', 'now': '{{timestamp}}'})",
				},
			},
		},
		{
			Name:        "neo4j_create_node",
			Description: "Create one node with a label and properties",
			Parameters: []base.Parameter{
				{Name: "label", Description: "Node label, e.g. Person or Product"},
				{Name: "properties", Description: "Node properties keyed by name"},
			},
			Returns: "The stored properties of the created node",
			Examples: []base.Example{
				{
					Text: "Query: add a person",
					Code: "neo4j_create_node(label='Person', properties={'name': '{{name}}', 'email': '{{email}}'})",
				},
			},
		},
		{
			Name:        "neo4j_find_nodes",
			Description: "Find nodes by label and equality conditions on properties",
			Parameters: []base.Parameter{
				{Name: "label", Description: "Node label to match"},
				{Name: "properties", Description: "Equality conditions keyed by property name"},
				{Name: "limit", Description: "Maximum number of nodes (0 means no limit)"},
			},
			Returns: "List of matching nodes as property maps",
			Examples: []base.Example{
				{
					Text: "Query: find active users",
					Code: "neo4j_find_nodes(label='User', properties={'status': 'active'}, limit=100)",
				},
			},
		},
		{
			Name:        "neo4j_update_nodes",
			Description: "Set properties on nodes matched by label and conditions",
			Parameters: []base.Parameter{
				{Name: "label", Description: "Node label to match"},
				{Name: "match", Description: "Equality conditions selecting the nodes"},
				{Name: "update", Description: "Properties to set on the matched nodes"},
			},
			Returns: "Write summary with the number of properties set",
			Examples: []base.Example{
				{
					Text: "Query: deactivate a user",
					Code: "neo4j_update_nodes(label='User', match={'email': '{{email}}'}, update={'status': 'inactive'})",
				},
			},
		},
		{
			Name:        "neo4j_delete_nodes",
			Description: "Delete nodes matched by label and conditions",
			Parameters: []base.Parameter{
				{Name: "label", Description: "Node label to match"},
				{Name: "match", Description: "Equality conditions selecting the nodes"},
				{Name: "detach", Description: "Also delete attached relationships (default true)"},
			},
			Returns: "Write summary with nodes and relationships deleted",
			Examples: []base.Example{
				{
					Text: "Query: remove a person and their relationships",
					Code: "neo4j_delete_nodes(label='Person', match={'name': '{{name}}'}, detach=True)",
				},
			},
		},
		{
			Name:        "neo4j_create_relationship",
			Description: "Create a typed relationship between two matched nodes",
			Parameters: []base.Parameter{
				{Name: "from_label", Description: "Label of the source node"},
				{Name: "from_match", Description: "Equality conditions selecting the source node"},
				{Name: "rel_type", Description: "Relationship type, e.g. KNOWS or PURCHASED"},
				{Name: "to_label", Description: "Label of the target node"},
				{Name: "to_match", Description: "Equality conditions selecting the target node"},
				{Name: "rel_properties", Description: "Optional properties stored on the relationship"},
			},
			Returns: "Write summary with the number of relationships created",
			Examples: []base.Example{
				{
					Text: "Query: record a purchase",
					Code: "neo4j_create_relationship(from_label='Person', from_match={'email': '{{email}}'}, rel_type='PURCHASED', to_label='Product', to_match={'sku': '{{sku}}'}, rel_properties={'at': '{{timestamp}}'})",
				},
			},
		},
		{
			Name:        "neo4j_find_path",
			Description: "Find the shortest path between two matched nodes",
			Parameters: []base.Parameter{
				{Name: "from_label", Description: "Label of the start node"},
				{Name: "from_match", Description: "Equality conditions selecting the start node"},
				{Name: "to_label", Description: "Label of the end node"},
				{Name: "to_match", Description: "Equality conditions selecting the end node"},
				{Name: "max_depth", Description: "Maximum hops to search (default 5)"},
			},
			Returns: "List of paths with their node properties, relationship types, and length",
			Examples: []base.Example{
				{
					Text: "Query: how are two people connected",
					Code: "neo4j_find_path(from_label='Person', from_match={'name': '{{from}}'}, to_label='Person', to_match={'name': '{{to}}'}, max_depth=4)",
				},
			},
		},
		{
			Name:        "neo4j_batch_create_nodes",
			Description: "Create multiple nodes with one label in a single transaction",
			Parameters: []base.Parameter{
				{Name: "label", Description: "Label applied to every node"},
				{Name: "nodes", Description: "List of property maps, one per node"},
			},
			Returns: "Write summary with the number of nodes created",
			Examples: []base.Example{
				{
					Text: "Query: bulk-load products",
					Code: "neo4j_batch_create_nodes(label='Product', nodes={{products}})",
				},
			},
		},
		{
			Name:        "neo4j_create_index",
			Description: "Create an index on a node property if it does not exist",
			Parameters: []base.Parameter{
				{Name: "label", Description: "Node label the index applies to"},
				{Name: "property", Description: "Property to index"},
			},
			Returns: "Write summary with the number of indexes added",
			Examples: []base.Example{
				{
					Text: "Query: index person emails",
					Code: "neo4j_create_index(label='Person', property='email')",
				},
			},
		},
		{
			Name:        "neo4j_create_constraint",
			Description: "Create a UNIQUE or EXISTS constraint on a node property",
			Parameters: []base.Parameter{
				{Name: "label", Description: "Node label the constraint applies to"},
				{Name: "property", Description: "Property to constrain"},
				{Name: "constraint_type", Description: "UNIQUE (default) or EXISTS"},
			},
			Returns: "Write summary with the number of constraints added",
			Examples: []base.Example{
				{
					Text: "Query: enforce unique emails",
					Code: "neo4j_create_constraint(label='Person', property='email', constraint_type='UNIQUE')",
				},
			},
		},
		{
			Name:        "neo4j_stats",
			Description: "Report node and relationship counts, per label and per relationship type",
			Parameters:  []base.Parameter{},
			Returns:     "Map with total_nodes, total_relationships, labels, and relationship_types",
			Examples: []base.Example{
				{
					Text: "Query: how big is the graph",
					Code: "neo4j_stats()",
				},
			},
		},
	}
}
