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
	"fmt"
	"log"
	"os"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/config"

	"nl2flow/platform/modules/base"
)

const (
	// DefaultDatabase is the database used when none is configured
	DefaultDatabase = "neo4j"
	// DefaultMaxPoolSize is the default connection pool size
	DefaultMaxPoolSize = 50
	// DefaultMaxConnLifetime is the default connection lifetime
	DefaultMaxConnLifetime = time.Hour
	// DefaultAcquisitionTimeout bounds waiting for a pooled connection
	DefaultAcquisitionTimeout = 60 * time.Second
	// DefaultPathDepth caps shortest-path searches when no depth is given
	DefaultPathDepth = 5
)

// graphNamePattern matches valid Cypher labels, relationship types, and
// property names. Labels cannot be bound as query parameters, so anything
// interpolated into Cypher text must match this pattern.
var graphNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Neo4jModule drives a Neo4j graph database for generated flows. It provides
// parameterized Cypher execution plus structured helpers for nodes,
// relationships, path finding, and schema management.
type Neo4jModule struct {
	config   *base.ModuleConfig
	driver   neo4j.DriverWithContext
	database string
	logger   *log.Logger
}

var _ base.Module = (*Neo4jModule)(nil)

// WriteSummary reports the counters of a write transaction
type WriteSummary struct {
	NodesCreated         int `json:"nodes_created"`
	NodesDeleted         int `json:"nodes_deleted"`
	RelationshipsCreated int `json:"relationships_created"`
	RelationshipsDeleted int `json:"relationships_deleted"`
	PropertiesSet        int `json:"properties_set"`
	LabelsAdded          int `json:"labels_added"`
	LabelsRemoved        int `json:"labels_removed"`
	IndexesAdded         int `json:"indexes_added"`
	IndexesRemoved       int `json:"indexes_removed"`
	ConstraintsAdded     int `json:"constraints_added"`
	ConstraintsRemoved   int `json:"constraints_removed"`
}

// PathInfo describes one path returned by a shortest-path search
type PathInfo struct {
	Nodes             []map[string]interface{} `json:"nodes"`
	RelationshipTypes []string                 `json:"relationship_types"`
	Length            int                      `json:"length"`
}

// New creates a Neo4j module bound to the given configuration. The driver is
// not created until Connect.
func New(cfg *base.ModuleConfig) *Neo4jModule {
	return &Neo4jModule{
		config: cfg,
		logger: log.New(os.Stdout, "[NLF_NEO4J] ", log.LstdFlags),
	}
}

// Connect creates the driver and verifies connectivity. The connection URL
// accepts the bolt://, neo4j://, bolt+s://, and neo4j+s:// schemes.
func (m *Neo4jModule) Connect(ctx context.Context) error {
	if m.config == nil {
		return base.NewModuleError("neo4j", "Connect", "module config is required", nil)
	}

	uri := m.config.ConnectionURL
	if uri == "" {
		uri = "bolt://localhost:7687"
	}

	username := m.config.Credential("username")
	if username == "" {
		username = "neo4j"
	}
	password := m.config.Credential("password")

	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""),
		func(c *config.Config) {
			c.MaxConnectionPoolSize = m.config.IntOption("max_pool_size", DefaultMaxPoolSize)
			c.MaxConnectionLifetime = durationOption(m.config, "max_connection_lifetime", DefaultMaxConnLifetime)
			c.ConnectionAcquisitionTimeout = durationOption(m.config, "acquisition_timeout", DefaultAcquisitionTimeout)
		})
	if err != nil {
		return base.NewModuleError(m.Name(), "Connect", "failed to create driver", err)
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return base.NewModuleError(m.Name(), "Connect", "connectivity verification failed", err)
	}

	m.driver = driver
	m.database = m.config.StringOption("database", DefaultDatabase)
	m.logger.Printf("Connected to Neo4j: %s (database=%s)", m.Name(), m.database)

	return nil
}

// Close shuts down the driver. Safe to call on an unconnected module.
func (m *Neo4jModule) Close(ctx context.Context) error {
	if m.driver == nil {
		return nil
	}

	err := m.driver.Close(ctx)
	m.driver = nil
	if err != nil {
		return base.NewModuleError(m.Name(), "Close", "failed to close driver", err)
	}

	m.logger.Printf("Disconnected from Neo4j: %s", m.Name())
	return nil
}

// HealthCheck verifies the server is reachable and reports round-trip latency
func (m *Neo4jModule) HealthCheck(ctx context.Context) (*base.HealthStatus, error) {
	if m.driver == nil {
		return &base.HealthStatus{
			Healthy:   false,
			Error:     "driver not connected",
			Timestamp: time.Now(),
		}, nil
	}

	start := time.Now()
	err := m.driver.VerifyConnectivity(ctx)
	latency := time.Since(start)

	if err != nil {
		return &base.HealthStatus{
			Healthy:   false,
			Latency:   latency,
			Timestamp: time.Now(),
			Error:     err.Error(),
		}, nil
	}

	return &base.HealthStatus{
		Healthy:   true,
		Latency:   latency,
		Timestamp: time.Now(),
		Details: map[string]string{
			"database": m.database,
		},
	}, nil
}

// Query executes a read Cypher statement with $name parameters and returns
// the records as maps keyed by the RETURN aliases. Node and relationship
// values come back as driver types; use the structured helpers when only
// properties are needed.
func (m *Neo4jModule) Query(ctx context.Context, cypher string, params map[string]interface{}) ([]map[string]interface{}, error) {
	if m.driver == nil {
		return nil, base.NewModuleError(m.Name(), "Query", "driver not connected", nil)
	}

	ctx, cancel := m.config.WithTimeout(ctx)
	defer cancel()

	session := m.driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: m.database,
		AccessMode:   neo4j.AccessModeRead,
	})
	defer session.Close(ctx)

	start := time.Now()
	result, err := session.Run(ctx, cypher, params)
	if err != nil {
		return nil, base.NewModuleError(m.Name(), "Query", "query execution failed", err)
	}

	records := make([]map[string]interface{}, 0)
	for result.Next(ctx) {
		records = append(records, result.Record().AsMap())
	}
	if err := result.Err(); err != nil {
		return nil, base.NewModuleError(m.Name(), "Query", "result iteration failed", err)
	}

	m.logger.Printf("Cypher query executed: %d records in %v", len(records), time.Since(start))
	return records, nil
}

// Write executes a Cypher write statement in a managed transaction and
// returns the transaction counters.
func (m *Neo4jModule) Write(ctx context.Context, cypher string, params map[string]interface{}) (*WriteSummary, error) {
	if m.driver == nil {
		return nil, base.NewModuleError(m.Name(), "Write", "driver not connected", nil)
	}

	ctx, cancel := m.config.WithTimeout(ctx)
	defer cancel()

	session := m.driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: m.database,
		AccessMode:   neo4j.AccessModeWrite,
	})
	defer session.Close(ctx)

	start := time.Now()
	summary, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		result, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		return result.Consume(ctx)
	})
	if err != nil {
		return nil, base.NewModuleError(m.Name(), "Write", "write transaction failed", err)
	}

	counters := summary.(neo4j.ResultSummary).Counters()
	m.logger.Printf("Cypher write executed in %v", time.Since(start))

	return &WriteSummary{
		NodesCreated:         counters.NodesCreated(),
		NodesDeleted:         counters.NodesDeleted(),
		RelationshipsCreated: counters.RelationshipsCreated(),
		RelationshipsDeleted: counters.RelationshipsDeleted(),
		PropertiesSet:        counters.PropertiesSet(),
		LabelsAdded:          counters.LabelsAdded(),
		LabelsRemoved:        counters.LabelsRemoved(),
		IndexesAdded:         counters.IndexesAdded(),
		IndexesRemoved:       counters.IndexesRemoved(),
		ConstraintsAdded:     counters.ConstraintsAdded(),
		ConstraintsRemoved:   counters.ConstraintsRemoved(),
	}, nil
}

// CreateNode creates one node and returns its stored properties
func (m *Neo4jModule) CreateNode(ctx context.Context, label string, properties map[string]interface{}) (map[string]interface{}, error) {
	if err := validateGraphName(label); err != nil {
		return nil, base.NewModuleError(m.Name(), "CreateNode", "invalid label", err)
	}

	cypher := fmt.Sprintf("CREATE (n:%s $props) RETURN n", label)
	rows, err := m.Query(ctx, cypher, map[string]interface{}{"props": properties})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, base.NewModuleError(m.Name(), "CreateNode", "node was not returned", nil)
	}

	return nodeProps(rows[0]["n"])
}

// FindNodes finds nodes by label and equality conditions on properties. A
// positive limit caps the result size.
func (m *Neo4jModule) FindNodes(ctx context.Context, label string, properties map[string]interface{}, limit int) ([]map[string]interface{}, error) {
	cypher, params, err := buildFindCypher(label, properties, limit)
	if err != nil {
		return nil, base.NewModuleError(m.Name(), "FindNodes", "failed to build statement", err)
	}

	rows, err := m.Query(ctx, cypher, params)
	if err != nil {
		return nil, err
	}

	nodes := make([]map[string]interface{}, 0, len(rows))
	for _, row := range rows {
		props, err := nodeProps(row["n"])
		if err != nil {
			return nil, base.NewModuleError(m.Name(), "FindNodes", "unexpected result shape", err)
		}
		nodes = append(nodes, props)
	}
	return nodes, nil
}

// UpdateNodes sets properties on nodes matched by label and equality
// conditions, returning the write counters.
func (m *Neo4jModule) UpdateNodes(ctx context.Context, label string, match, update map[string]interface{}) (*WriteSummary, error) {
	cypher, params, err := buildUpdateCypher(label, match, update)
	if err != nil {
		return nil, base.NewModuleError(m.Name(), "UpdateNodes", "failed to build statement", err)
	}
	return m.Write(ctx, cypher, params)
}

// DeleteNodes deletes nodes matched by label and equality conditions. With
// detach set, attached relationships are removed too; without it the delete
// fails on nodes that still have relationships.
func (m *Neo4jModule) DeleteNodes(ctx context.Context, label string, match map[string]interface{}, detach bool) (*WriteSummary, error) {
	cypher, params, err := buildDeleteCypher(label, match, detach)
	if err != nil {
		return nil, base.NewModuleError(m.Name(), "DeleteNodes", "failed to build statement", err)
	}
	return m.Write(ctx, cypher, params)
}

// CreateRelationship creates a typed relationship between the first nodes
// matched on each side.
func (m *Neo4jModule) CreateRelationship(ctx context.Context, fromLabel string, fromMatch map[string]interface{}, relType string, toLabel string, toMatch, relProperties map[string]interface{}) (*WriteSummary, error) {
	cypher, params, err := buildRelationshipCypher(fromLabel, fromMatch, relType, toLabel, toMatch, relProperties)
	if err != nil {
		return nil, base.NewModuleError(m.Name(), "CreateRelationship", "failed to build statement", err)
	}
	return m.Write(ctx, cypher, params)
}

// FindPath finds the shortest path between two matched nodes, searching up
// to maxDepth hops (DefaultPathDepth when maxDepth is not positive).
func (m *Neo4jModule) FindPath(ctx context.Context, fromLabel string, fromMatch map[string]interface{}, toLabel string, toMatch map[string]interface{}, maxDepth int) ([]PathInfo, error) {
	cypher, params, err := buildPathCypher(fromLabel, fromMatch, toLabel, toMatch, maxDepth)
	if err != nil {
		return nil, base.NewModuleError(m.Name(), "FindPath", "failed to build statement", err)
	}

	rows, err := m.Query(ctx, cypher, params)
	if err != nil {
		return nil, err
	}

	paths := make([]PathInfo, 0, len(rows))
	for _, row := range rows {
		path, ok := row["path"].(neo4j.Path)
		if !ok {
			return nil, base.NewModuleError(m.Name(), "FindPath", "unexpected result shape", nil)
		}

		info := PathInfo{
			Nodes:             make([]map[string]interface{}, 0, len(path.Nodes)),
			RelationshipTypes: make([]string, 0, len(path.Relationships)),
			Length:            len(path.Relationships),
		}
		for _, node := range path.Nodes {
			info.Nodes = append(info.Nodes, node.Props)
		}
		for _, rel := range path.Relationships {
			info.RelationshipTypes = append(info.RelationshipTypes, rel.Type)
		}
		paths = append(paths, info)
	}
	return paths, nil
}

// BatchCreateNodes creates multiple nodes with one label in a single
// transaction. More efficient than repeated CreateNode calls for bulk data.
func (m *Neo4jModule) BatchCreateNodes(ctx context.Context, label string, nodes []map[string]interface{}) (*WriteSummary, error) {
	if err := validateGraphName(label); err != nil {
		return nil, base.NewModuleError(m.Name(), "BatchCreateNodes", "invalid label", err)
	}
	if len(nodes) == 0 {
		return &WriteSummary{}, nil
	}

	cypher := fmt.Sprintf("UNWIND $nodes AS nodeData CREATE (n:%s) SET n = nodeData", label)
	return m.Write(ctx, cypher, map[string]interface{}{"nodes": nodes})
}

// CreateIndex creates an index on a node property if it does not exist yet
func (m *Neo4jModule) CreateIndex(ctx context.Context, label, property string) (*WriteSummary, error) {
	if err := validateGraphName(label); err != nil {
		return nil, base.NewModuleError(m.Name(), "CreateIndex", "invalid label", err)
	}
	if err := validateGraphName(property); err != nil {
		return nil, base.NewModuleError(m.Name(), "CreateIndex", "invalid property name", err)
	}

	cypher := fmt.Sprintf("CREATE INDEX IF NOT EXISTS FOR (n:%s) ON (n.%s)", label, property)
	return m.Write(ctx, cypher, nil)
}

// CreateConstraint creates a UNIQUE or EXISTS constraint on a node property
func (m *Neo4jModule) CreateConstraint(ctx context.Context, label, property, constraintType string) (*WriteSummary, error) {
	if err := validateGraphName(label); err != nil {
		return nil, base.NewModuleError(m.Name(), "CreateConstraint", "invalid label", err)
	}
	if err := validateGraphName(property); err != nil {
		return nil, base.NewModuleError(m.Name(), "CreateConstraint", "invalid property name", err)
	}

	var requirement string
	switch strings.ToUpper(constraintType) {
	case "", "UNIQUE":
		requirement = "IS UNIQUE"
	case "EXISTS":
		requirement = "IS NOT NULL"
	default:
		return nil, base.NewModuleError(m.Name(), "CreateConstraint",
			fmt.Sprintf("unsupported constraint type %q (want UNIQUE or EXISTS)", constraintType), nil)
	}

	cypher := fmt.Sprintf("CREATE CONSTRAINT IF NOT EXISTS FOR (n:%s) REQUIRE n.%s %s",
		label, property, requirement)
	return m.Write(ctx, cypher, nil)
}

// Stats reports node and relationship counts, per label and per type
func (m *Neo4jModule) Stats(ctx context.Context) (map[string]interface{}, error) {
	if m.driver == nil {
		return nil, base.NewModuleError(m.Name(), "Stats", "driver not connected", nil)
	}

	stats := make(map[string]interface{})

	rows, err := m.Query(ctx, "MATCH (n) RETURN count(n) AS count", nil)
	if err != nil {
		return nil, err
	}
	stats["total_nodes"] = countValue(rows)

	rows, err = m.Query(ctx, "MATCH ()-[r]->() RETURN count(r) AS count", nil)
	if err != nil {
		return nil, err
	}
	stats["total_relationships"] = countValue(rows)

	rows, err = m.Query(ctx, "MATCH (n) UNWIND labels(n) AS label RETURN label, count(*) AS count", nil)
	if err != nil {
		return nil, err
	}
	labels := make(map[string]int64)
	for _, row := range rows {
		if name, ok := row["label"].(string); ok {
			labels[name] = asInt64(row["count"])
		}
	}
	stats["labels"] = labels

	rows, err = m.Query(ctx, "MATCH ()-[r]->() RETURN type(r) AS type, count(*) AS count", nil)
	if err != nil {
		return nil, err
	}
	relTypes := make(map[string]int64)
	for _, row := range rows {
		if name, ok := row["type"].(string); ok {
			relTypes[name] = asInt64(row["count"])
		}
	}
	stats["relationship_types"] = relTypes

	return stats, nil
}

// Name returns the configured instance name, or "neo4j" when unnamed
func (m *Neo4jModule) Name() string {
	if m.config == nil || m.config.Name == "" {
		return "neo4j"
	}
	return m.config.Name
}

// validateGraphName rejects labels, relationship types, and property names
// that could break out of the Cypher text they are interpolated into.
func validateGraphName(name string) error {
	if name == "" {
		return fmt.Errorf("name must not be empty")
	}
	if !graphNamePattern.MatchString(name) {
		return fmt.Errorf("invalid name %q: must start with a letter and contain only letters, digits, and underscores", name)
	}
	return nil
}

// sortedPropertyKeys validates property names and returns them in a stable
// order so generated Cypher is deterministic.
func sortedPropertyKeys(properties map[string]interface{}) ([]string, error) {
	keys := make([]string, 0, len(properties))
	for key := range properties {
		if err := validateGraphName(key); err != nil {
			return nil, fmt.Errorf("invalid property name: %w", err)
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

// propertyConditions renders "alias.key = $prefix_key" equality conditions
// in stable order and collects the prefixed parameters.
func propertyConditions(alias, prefix string, properties map[string]interface{}, params map[string]interface{}) ([]string, error) {
	keys, err := sortedPropertyKeys(properties)
	if err != nil {
		return nil, err
	}

	conditions := make([]string, len(keys))
	for i, key := range keys {
		paramName := key
		if prefix != "" {
			paramName = prefix + "_" + key
		}
		conditions[i] = fmt.Sprintf("%s.%s = $%s", alias, key, paramName)
		params[paramName] = properties[key]
	}
	return conditions, nil
}

func buildFindCypher(label string, properties map[string]interface{}, limit int) (string, map[string]interface{}, error) {
	if err := validateGraphName(label); err != nil {
		return "", nil, fmt.Errorf("invalid label: %w", err)
	}

	params := make(map[string]interface{})
	cypher := fmt.Sprintf("MATCH (n:%s)", label)

	if len(properties) > 0 {
		conditions, err := propertyConditions("n", "", properties, params)
		if err != nil {
			return "", nil, err
		}
		cypher += " WHERE " + strings.Join(conditions, " AND ")
	}

	cypher += " RETURN n"
	if limit > 0 {
		cypher += fmt.Sprintf(" LIMIT %d", limit)
	}

	return cypher, params, nil
}

func buildUpdateCypher(label string, match, update map[string]interface{}) (string, map[string]interface{}, error) {
	if err := validateGraphName(label); err != nil {
		return "", nil, fmt.Errorf("invalid label: %w", err)
	}
	if len(match) == 0 {
		return "", nil, fmt.Errorf("match properties are required")
	}
	if len(update) == 0 {
		return "", nil, fmt.Errorf("update properties are required")
	}

	params := make(map[string]interface{})
	conditions, err := propertyConditions("n", "match", match, params)
	if err != nil {
		return "", nil, err
	}

	updateKeys, err := sortedPropertyKeys(update)
	if err != nil {
		return "", nil, err
	}
	assignments := make([]string, len(updateKeys))
	for i, key := range updateKeys {
		assignments[i] = fmt.Sprintf("n.%s = $update_%s", key, key)
		params["update_"+key] = update[key]
	}

	cypher := fmt.Sprintf("MATCH (n:%s) WHERE %s SET %s",
		label, strings.Join(conditions, " AND "), strings.Join(assignments, ", "))
	return cypher, params, nil
}

func buildDeleteCypher(label string, match map[string]interface{}, detach bool) (string, map[string]interface{}, error) {
	if err := validateGraphName(label); err != nil {
		return "", nil, fmt.Errorf("invalid label: %w", err)
	}
	if len(match) == 0 {
		return "", nil, fmt.Errorf("match properties are required")
	}

	params := make(map[string]interface{})
	conditions, err := propertyConditions("n", "", match, params)
	if err != nil {
		return "", nil, err
	}

	deleteCmd := "DELETE"
	if detach {
		deleteCmd = "DETACH DELETE"
	}

	cypher := fmt.Sprintf("MATCH (n:%s) WHERE %s %s n",
		label, strings.Join(conditions, " AND "), deleteCmd)
	return cypher, params, nil
}

func buildRelationshipCypher(fromLabel string, fromMatch map[string]interface{}, relType, toLabel string, toMatch, relProperties map[string]interface{}) (string, map[string]interface{}, error) {
	if err := validateGraphName(fromLabel); err != nil {
		return "", nil, fmt.Errorf("invalid source label: %w", err)
	}
	if err := validateGraphName(toLabel); err != nil {
		return "", nil, fmt.Errorf("invalid target label: %w", err)
	}
	if err := validateGraphName(relType); err != nil {
		return "", nil, fmt.Errorf("invalid relationship type: %w", err)
	}
	if len(fromMatch) == 0 || len(toMatch) == 0 {
		return "", nil, fmt.Errorf("match properties are required on both sides")
	}

	params := make(map[string]interface{})
	fromConditions, err := propertyConditions("a", "from", fromMatch, params)
	if err != nil {
		return "", nil, err
	}
	toConditions, err := propertyConditions("b", "to", toMatch, params)
	if err != nil {
		return "", nil, err
	}

	if relProperties == nil {
		relProperties = map[string]interface{}{}
	}
	params["rel_props"] = relProperties

	cypher := fmt.Sprintf("MATCH (a:%s), (b:%s) WHERE %s AND %s CREATE (a)-[r:%s $rel_props]->(b)",
		fromLabel, toLabel,
		strings.Join(fromConditions, " AND "), strings.Join(toConditions, " AND "),
		relType)
	return cypher, params, nil
}

func buildPathCypher(fromLabel string, fromMatch map[string]interface{}, toLabel string, toMatch map[string]interface{}, maxDepth int) (string, map[string]interface{}, error) {
	if err := validateGraphName(fromLabel); err != nil {
		return "", nil, fmt.Errorf("invalid source label: %w", err)
	}
	if err := validateGraphName(toLabel); err != nil {
		return "", nil, fmt.Errorf("invalid target label: %w", err)
	}
	if len(fromMatch) == 0 || len(toMatch) == 0 {
		return "", nil, fmt.Errorf("match properties are required on both sides")
	}
	if maxDepth <= 0 {
		maxDepth = DefaultPathDepth
	}

	params := make(map[string]interface{})
	fromConditions, err := propertyConditions("start", "from", fromMatch, params)
	if err != nil {
		return "", nil, err
	}
	toConditions, err := propertyConditions("end", "to", toMatch, params)
	if err != nil {
		return "", nil, err
	}

	cypher := fmt.Sprintf(
		"MATCH (start:%s), (end:%s) WHERE %s AND %s MATCH path = shortestPath((start)-[*..%d]-(end)) RETURN path",
		fromLabel, toLabel,
		strings.Join(fromConditions, " AND "), strings.Join(toConditions, " AND "),
		maxDepth)
	return cypher, params, nil
}

// nodeProps extracts the property map from a returned node value
func nodeProps(value interface{}) (map[string]interface{}, error) {
	node, ok := value.(neo4j.Node)
	if !ok {
		return nil, fmt.Errorf("expected a node, got %T", value)
	}
	if node.Props == nil {
		return map[string]interface{}{}, nil
	}
	return node.Props, nil
}

func countValue(rows []map[string]interface{}) int64 {
	if len(rows) == 0 {
		return 0
	}
	return asInt64(rows[0]["count"])
}

func asInt64(value interface{}) int64 {
	if n, ok := value.(int64); ok {
		return n
	}
	return 0
}

func durationOption(cfg *base.ModuleConfig, key string, fallback time.Duration) time.Duration {
	if seconds := cfg.IntOption(key, 0); seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	return fallback
}
