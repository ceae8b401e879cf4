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

import (
	"context"
	"io"
	"log"
	"os"
	"testing"

	neo4jdriver "github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nl2flow/platform/modules/base"
)

func testModule(t *testing.T) *Neo4jModule {
	t.Helper()

	m := New(&base.ModuleConfig{
		Name:     "test-neo4j",
		TaskType: "neo4j",
	})
	m.logger = log.New(io.Discard, "", 0)
	return m
}

func TestNew(t *testing.T) {
	m := New(&base.ModuleConfig{Name: "social-graph"})
	require.NotNil(t, m)
	assert.Nil(t, m.driver)
}

func TestName(t *testing.T) {
	m := New(&base.ModuleConfig{Name: "social-graph"})
	assert.Equal(t, "social-graph", m.Name())

	assert.Equal(t, "neo4j", New(nil).Name())
	assert.Equal(t, "neo4j", New(&base.ModuleConfig{}).Name())
}

func TestMetadata(t *testing.T) {
	m := testModule(t)
	meta := m.Metadata()

	assert.Equal(t, "Neo4j", meta.Name)
	assert.Equal(t, "neo4j", meta.TaskType)
	assert.Equal(t, base.DefaultVersion, meta.Version)
	assert.Contains(t, meta.Keywords, "cypher")
	assert.Contains(t, meta.Dependencies, "github.com/neo4j/neo4j-go-driver/v5")
}

func TestDocumentationSurface(t *testing.T) {
	m := testModule(t)

	notes := m.UsageNotes()
	assert.NotEmpty(t, notes)

	methods := m.Methods()
	wantNames := []string{
		"neo4j_query",
		"neo4j_write",
		"neo4j_create_node",
		"neo4j_find_nodes",
		"neo4j_update_nodes",
		"neo4j_delete_nodes",
		"neo4j_create_relationship",
		"neo4j_find_path",
		"neo4j_batch_create_nodes",
		"neo4j_create_index",
		"neo4j_create_constraint",
		"neo4j_stats",
	}
	require.Len(t, methods, len(wantNames))
	for i, want := range wantNames {
		assert.Equal(t, want, methods[i].Name)
		assert.NotEmpty(t, methods[i].Description)
		assert.NotEmpty(t, methods[i].Returns)
	}

	doc := base.Describe(m)
	assert.Equal(t, "neo4j", doc.Metadata.TaskType)
	assert.Len(t, doc.Methods, len(wantNames))
}

func TestValidateGraphName(t *testing.T) {
	for _, name := range []string{"Person", "KNOWS", "user_name", "_internal", "Order", "n1"} {
		assert.NoError(t, validateGraphName(name), "name %q", name)
	}

	for _, name := range []string{"", "9lives", "has-dash", "a b", "name)--", "x.y", "Person;"} {
		assert.Error(t, validateGraphName(name), "name %q", name)
	}
}

func TestBuildFindCypher(t *testing.T) {
	cypher, params, err := buildFindCypher("Person", nil, 0)
	require.NoError(t, err)
	assert.Equal(t, "MATCH (n:Person) RETURN n", cypher)
	assert.Empty(t, params)

	cypher, params, err = buildFindCypher("User", map[string]interface{}{
		"status": "active",
		"age":    30,
	}, 10)
	require.NoError(t, err)
	assert.Equal(t, "MATCH (n:User) WHERE n.age = $age AND n.status = $status RETURN n LIMIT 10", cypher)
	assert.Equal(t, map[string]interface{}{"age": 30, "status": "active"}, params)
}

func TestBuildFindCypherValidation(t *testing.T) {
	_, _, err := buildFindCypher("Bad Label", nil, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid label")

	_, _, err = buildFindCypher("User", map[string]interface{}{"bad-prop": 1}, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid property name")
}

func TestBuildUpdateCypher(t *testing.T) {
	cypher, params, err := buildUpdateCypher("User",
		map[string]interface{}{"email": "a@b.c"},
		map[string]interface{}{"status": "inactive", "name": "Alice"})
	require.NoError(t, err)
	assert.Equal(t,
		"MATCH (n:User) WHERE n.email = $match_email SET n.name = $update_name, n.status = $update_status",
		cypher)
	assert.Equal(t, map[string]interface{}{
		"match_email":   "a@b.c",
		"update_name":   "Alice",
		"update_status": "inactive",
	}, params)
}

func TestBuildUpdateCypherRequiresInput(t *testing.T) {
	_, _, err := buildUpdateCypher("User", nil, map[string]interface{}{"a": 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "match properties")

	_, _, err = buildUpdateCypher("User", map[string]interface{}{"a": 1}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "update properties")
}

func TestBuildDeleteCypher(t *testing.T) {
	cypher, params, err := buildDeleteCypher("Person", map[string]interface{}{"name": "Alice"}, true)
	require.NoError(t, err)
	assert.Equal(t, "MATCH (n:Person) WHERE n.name = $name DETACH DELETE n", cypher)
	assert.Equal(t, map[string]interface{}{"name": "Alice"}, params)

	cypher, _, err = buildDeleteCypher("Person", map[string]interface{}{"name": "Alice"}, false)
	require.NoError(t, err)
	assert.Equal(t, "MATCH (n:Person) WHERE n.name = $name DELETE n", cypher)
}

func TestBuildDeleteCypherRequiresMatch(t *testing.T) {
	_, _, err := buildDeleteCypher("Person", nil, true)
	require.Error(t, err)
}

func TestBuildRelationshipCypher(t *testing.T) {
	cypher, params, err := buildRelationshipCypher(
		"Person", map[string]interface{}{"email": "a@b.c"},
		"PURCHASED",
		"Product", map[string]interface{}{"sku": "X1"},
		map[string]interface{}{"at": "2024-01-01"})
	require.NoError(t, err)
	assert.Equal(t,
		"MATCH (a:Person), (b:Product) WHERE a.email = $from_email AND b.sku = $to_sku CREATE (a)-[r:PURCHASED $rel_props]->(b)",
		cypher)
	assert.Equal(t, "a@b.c", params["from_email"])
	assert.Equal(t, "X1", params["to_sku"])
	assert.Equal(t, map[string]interface{}{"at": "2024-01-01"}, params["rel_props"])
}

func TestBuildRelationshipCypherDefaultsProps(t *testing.T) {
	_, params, err := buildRelationshipCypher(
		"Person", map[string]interface{}{"id": 1},
		"KNOWS",
		"Person", map[string]interface{}{"id": 2},
		nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{}, params["rel_props"])
}

func TestBuildRelationshipCypherValidation(t *testing.T) {
	_, _, err := buildRelationshipCypher(
		"Person", map[string]interface{}{"id": 1},
		"HAS SPACE",
		"Person", map[string]interface{}{"id": 2},
		nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid relationship type")

	_, _, err = buildRelationshipCypher(
		"Person", nil,
		"KNOWS",
		"Person", map[string]interface{}{"id": 2},
		nil)
	require.Error(t, err)
}

func TestBuildPathCypher(t *testing.T) {
	cypher, params, err := buildPathCypher(
		"Person", map[string]interface{}{"name": "Alice"},
		"Person", map[string]interface{}{"name": "Bob"},
		0)
	require.NoError(t, err)
	assert.Equal(t,
		"MATCH (start:Person), (end:Person) WHERE start.name = $from_name AND end.name = $to_name MATCH path = shortestPath((start)-[*..5]-(end)) RETURN path",
		cypher)
	assert.Equal(t, "Alice", params["from_name"])
	assert.Equal(t, "Bob", params["to_name"])

	cypher, _, err = buildPathCypher(
		"Person", map[string]interface{}{"name": "Alice"},
		"Person", map[string]interface{}{"name": "Bob"},
		3)
	require.NoError(t, err)
	assert.Contains(t, cypher, "[*..3]")
}

func TestNodeProps(t *testing.T) {
	props, err := nodeProps(neo4jdriver.Node{
		Props: map[string]interface{}{"name": "Alice"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice", props["name"])

	props, err = nodeProps(neo4jdriver.Node{})
	require.NoError(t, err)
	assert.NotNil(t, props)
	assert.Empty(t, props)

	_, err = nodeProps("not a node")
	require.Error(t, err)
}

func TestConnectRequiresConfig(t *testing.T) {
	m := New(nil)
	err := m.Connect(context.Background())
	require.Error(t, err)

	var modErr *base.ModuleError
	require.ErrorAs(t, err, &modErr)
	assert.Equal(t, "Connect", modErr.Operation)
}

func TestOperationsWithoutConnect(t *testing.T) {
	m := testModule(t)
	ctx := context.Background()
	match := map[string]interface{}{"id": 1}

	ops := map[string]func() error{
		"Query": func() error { _, err := m.Query(ctx, "RETURN 1", nil); return err },
		"Write": func() error { _, err := m.Write(ctx, "CREATE (n:T)", nil); return err },
		"CreateNode": func() error {
			_, err := m.CreateNode(ctx, "T", map[string]interface{}{"a": 1})
			return err
		},
		"FindNodes":   func() error { _, err := m.FindNodes(ctx, "T", nil, 0); return err },
		"UpdateNodes": func() error { _, err := m.UpdateNodes(ctx, "T", match, match); return err },
		"DeleteNodes": func() error { _, err := m.DeleteNodes(ctx, "T", match, true); return err },
		"CreateRelationship": func() error {
			_, err := m.CreateRelationship(ctx, "T", match, "REL", "T", match, nil)
			return err
		},
		"FindPath": func() error { _, err := m.FindPath(ctx, "T", match, "T", match, 0); return err },
		"BatchCreateNodes": func() error {
			_, err := m.BatchCreateNodes(ctx, "T", []map[string]interface{}{{"a": 1}})
			return err
		},
		"CreateIndex":      func() error { _, err := m.CreateIndex(ctx, "T", "a"); return err },
		"CreateConstraint": func() error { _, err := m.CreateConstraint(ctx, "T", "a", "UNIQUE"); return err },
		"Stats":            func() error { _, err := m.Stats(ctx); return err },
	}

	for name, op := range ops {
		err := op()
		require.Error(t, err, "operation %s", name)
		assert.Contains(t, err.Error(), "driver not connected", "operation %s", name)
	}
}

func TestBatchCreateNodesEmptyInput(t *testing.T) {
	m := testModule(t)

	summary, err := m.BatchCreateNodes(context.Background(), "Product", nil)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.NodesCreated)
}

func TestCreateConstraintRejectsUnknownType(t *testing.T) {
	m := testModule(t)

	_, err := m.CreateConstraint(context.Background(), "Person", "email", "FOREIGN_KEY")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported constraint type")
}

func TestCloseWithoutConnect(t *testing.T) {
	m := testModule(t)
	assert.NoError(t, m.Close(context.Background()))
}

func TestHealthCheckWithoutConnect(t *testing.T) {
	m := testModule(t)

	status, err := m.HealthCheck(context.Background())
	require.NoError(t, err)
	assert.False(t, status.Healthy)
	assert.Equal(t, "driver not connected", status.Error)
}

func skipIfNoNeo4j(t *testing.T) string {
	t.Helper()
	uri := os.Getenv("NEO4J_TEST_URI")
	if uri == "" {
		t.Skip("NEO4J_TEST_URI not set; skipping integration test")
	}
	return uri
}

func TestIntegrationRoundTrip(t *testing.T) {
	uri := skipIfNoNeo4j(t)

	m := New(&base.ModuleConfig{
		Name:          "integration-neo4j",
		TaskType:      "neo4j",
		ConnectionURL: uri,
		Credentials: map[string]string{
			"username": os.Getenv("NEO4J_TEST_USER"),
			"password": os.Getenv("NEO4J_TEST_PASSWORD"),
		},
	})
	m.logger = log.New(io.Discard, "", 0)

	ctx := context.Background()
	require.NoError(t, m.Connect(ctx))
	defer m.Close(ctx)

	label := "NlfIntegration"
	defer m.DeleteNodes(ctx, label, map[string]interface{}{"suite": "round-trip"}, true)

	created, err := m.CreateNode(ctx, label, map[string]interface{}{
		"name": "alice", "suite": "round-trip",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", created["name"])

	_, err = m.CreateNode(ctx, label, map[string]interface{}{
		"name": "bob", "suite": "round-trip",
	})
	require.NoError(t, err)

	summary, err := m.CreateRelationship(ctx,
		label, map[string]interface{}{"name": "alice"},
		"KNOWS",
		label, map[string]interface{}{"name": "bob"},
		nil)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.RelationshipsCreated)

	nodes, err := m.FindNodes(ctx, label, map[string]interface{}{"suite": "round-trip"}, 0)
	require.NoError(t, err)
	assert.Len(t, nodes, 2)

	paths, err := m.FindPath(ctx,
		label, map[string]interface{}{"name": "alice"},
		label, map[string]interface{}{"name": "bob"},
		3)
	require.NoError(t, err)
	require.NotEmpty(t, paths)
	assert.Equal(t, 1, paths[0].Length)
	assert.Contains(t, paths[0].RelationshipTypes, "KNOWS")

	summary, err = m.UpdateNodes(ctx, label,
		map[string]interface{}{"name": "alice"},
		map[string]interface{}{"status": "verified"})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.PropertiesSet)

	stats, err := m.Stats(ctx)
	require.NoError(t, err)
	assert.NotNil(t, stats["labels"])

	status, err := m.HealthCheck(ctx)
	require.NoError(t, err)
	assert.True(t, status.Healthy)
}
