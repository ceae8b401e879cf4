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

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"nl2flow/platform/modules/base"
)

const (
	// DefaultConnectTimeout is the default connection timeout
	DefaultConnectTimeout = 10 * time.Second
	// DefaultMaxPoolSize is the default maximum connection pool size
	DefaultMaxPoolSize = 100
	// DefaultMinPoolSize is the default minimum connection pool size
	DefaultMinPoolSize = 10
)

// MongoModule drives MongoDB document databases for generated flows. It
// provides CRUD operations, aggregation pipelines, and connection management
// for MongoDB 4.0+ deployments.
type MongoModule struct {
	config   *base.ModuleConfig
	client   *mongo.Client
	database *mongo.Database
	logger   *log.Logger
	dbName   string
}

var _ base.Module = (*MongoModule)(nil)

// SortSpec orders query results on one field. Order is 1 for ascending and
// -1 for descending, following MongoDB's sort document convention.
type SortSpec struct {
	Field string
	Order int
}

// FindOptions narrows and pages a Find operation
type FindOptions struct {
	Projection map[string]interface{}
	Sort       []SortSpec
	Limit      int64
	Skip       int64
}

// UpdateResult reports the outcome of an update operation
type UpdateResult struct {
	MatchedCount  int64
	ModifiedCount int64
	UpsertedID    string
}

// New creates a MongoDB module bound to the given configuration. The client
// is not built until Connect.
func New(cfg *base.ModuleConfig) *MongoModule {
	return &MongoModule{
		config: cfg,
		logger: log.New(os.Stdout, "[NLF_MONGODB] ", log.LstdFlags),
	}
}

// Connect builds the MongoDB client, verifies connectivity with a ping, and
// binds the configured database.
func (m *MongoModule) Connect(ctx context.Context) error {
	if m.config == nil {
		return base.NewModuleError("mongodb", "Connect", "module config is required", nil)
	}

	dbName := m.config.StringOption("database", "")
	if dbName == "" {
		return base.NewModuleError(m.Name(), "Connect", "database option is required", nil)
	}

	uri := m.buildURI()
	clientOpts := options.Client().ApplyURI(uri)

	clientOpts.SetMaxPoolSize(uint64(m.config.IntOption("max_pool_size", DefaultMaxPoolSize)))
	clientOpts.SetMinPoolSize(uint64(m.config.IntOption("min_pool_size", DefaultMinPoolSize)))

	connectTimeout := durationOption(m.config, "connect_timeout", DefaultConnectTimeout)
	clientOpts.SetConnectTimeout(connectTimeout)

	if d := durationOption(m.config, "server_selection_timeout", 0); d > 0 {
		clientOpts.SetServerSelectionTimeout(d)
	}

	if rp := m.config.StringOption("read_preference", ""); rp != "" {
		switch strings.ToLower(rp) {
		case "primary":
			clientOpts.SetReadPreference(readpref.Primary())
		case "primarypreferred":
			clientOpts.SetReadPreference(readpref.PrimaryPreferred())
		case "secondary":
			clientOpts.SetReadPreference(readpref.Secondary())
		case "secondarypreferred":
			clientOpts.SetReadPreference(readpref.SecondaryPreferred())
		case "nearest":
			clientOpts.SetReadPreference(readpref.Nearest())
		}
	}

	clientOpts.SetAppName(m.config.StringOption("app_name", "NL2Flow-MongoDB-Module"))
	clientOpts.SetRetryWrites(true)
	clientOpts.SetRetryReads(true)

	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, clientOpts)
	if err != nil {
		return base.NewModuleError(m.Name(), "Connect", "failed to connect to MongoDB", err)
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	defer pingCancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return base.NewModuleError(m.Name(), "Connect", "failed to ping MongoDB", err)
	}

	m.client = client
	m.dbName = dbName
	m.database = client.Database(dbName)

	m.logger.Printf("Connected to MongoDB: %s (database=%s, max_pool=%d)",
		m.Name(), dbName, m.config.IntOption("max_pool_size", DefaultMaxPoolSize))

	return nil
}

// buildURI constructs the MongoDB connection URI from the module config. A
// configured ConnectionURL wins; otherwise the URI is assembled from host,
// port, credentials, and the common option set.
func (m *MongoModule) buildURI() string {
	if m.config.ConnectionURL != "" {
		return m.config.ConnectionURL
	}

	host := m.config.StringOption("host", "localhost")
	port := m.config.IntOption("port", 27017)

	// Replica set deployments list every member in the hosts option
	hosts := m.config.StringOption("hosts", fmt.Sprintf("%s:%d", host, port))

	var uri string
	username := m.config.Credential("username")
	password := m.config.Credential("password")
	if username != "" && password != "" {
		uri = fmt.Sprintf("mongodb://%s:%s@%s", username, password, hosts)
	} else {
		uri = fmt.Sprintf("mongodb://%s", hosts)
	}

	params := []string{}
	if authDB := m.config.StringOption("auth_database", ""); authDB != "" {
		params = append(params, "authSource="+authDB)
	}
	if rs := m.config.StringOption("replica_set", ""); rs != "" {
		params = append(params, "replicaSet="+rs)
	}
	if m.config.BoolOption("tls", false) {
		params = append(params, "tls=true")
		if m.config.BoolOption("tls_insecure", false) {
			params = append(params, "tlsInsecure=true")
		}
	}
	if m.config.BoolOption("direct_connection", false) {
		params = append(params, "directConnection=true")
	}

	if len(params) > 0 {
		uri += "/?" + strings.Join(params, "&")
	}

	return uri
}

// Close disconnects the MongoDB client. Safe to call on an unconnected module.
func (m *MongoModule) Close(ctx context.Context) error {
	if m.client == nil {
		return nil
	}

	disconnectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := m.client.Disconnect(disconnectCtx); err != nil {
		return base.NewModuleError(m.Name(), "Close", "failed to disconnect", err)
	}

	m.client = nil
	m.database = nil
	m.logger.Printf("Disconnected from MongoDB: %s", m.Name())
	return nil
}

// HealthCheck verifies the MongoDB connection is healthy
func (m *MongoModule) HealthCheck(ctx context.Context) (*base.HealthStatus, error) {
	if m.client == nil {
		return &base.HealthStatus{
			Healthy:   false,
			Error:     "client not connected",
			Timestamp: time.Now(),
		}, nil
	}

	start := time.Now()
	err := m.client.Ping(ctx, readpref.Primary())
	latency := time.Since(start)

	if err != nil {
		return &base.HealthStatus{
			Healthy:   false,
			Latency:   latency,
			Timestamp: time.Now(),
			Error:     err.Error(),
		}, nil
	}

	details := map[string]string{"database": m.dbName}

	var serverStatus bson.M
	if err := m.database.RunCommand(ctx, bson.D{{Key: "serverStatus", Value: 1}}).Decode(&serverStatus); err == nil {
		if version, ok := serverStatus["version"].(string); ok {
			details["mongodb_version"] = version
		}
		if connections, ok := serverStatus["connections"].(bson.M); ok {
			if current, ok := connections["current"].(int32); ok {
				details["current_connections"] = fmt.Sprintf("%d", current)
			}
		}
	}

	return &base.HealthStatus{
		Healthy:   true,
		Latency:   latency,
		Details:   details,
		Timestamp: time.Now(),
	}, nil
}

// ListCollections lists the collection names in the bound database
func (m *MongoModule) ListCollections(ctx context.Context) ([]string, error) {
	if m.client == nil {
		return nil, base.NewModuleError(m.Name(), "ListCollections", "client not connected", nil)
	}

	opCtx, cancel := m.config.WithTimeout(ctx)
	defer cancel()

	names, err := m.database.ListCollectionNames(opCtx, bson.M{})
	if err != nil {
		return nil, base.NewModuleError(m.Name(), "ListCollections", "failed to list collections", err)
	}
	return names, nil
}

// InsertOne inserts a single document and returns its ID as a hex string
func (m *MongoModule) InsertOne(ctx context.Context, collection string, document map[string]interface{}) (string, error) {
	if m.client == nil {
		return "", base.NewModuleError(m.Name(), "InsertOne", "client not connected", nil)
	}

	opCtx, cancel := m.config.WithTimeout(ctx)
	defer cancel()

	result, err := m.database.Collection(collection).InsertOne(opCtx, toBSONValue(document))
	if err != nil {
		return "", base.NewModuleError(m.Name(), "InsertOne", "insert failed", err)
	}

	id := idToString(result.InsertedID)
	m.logger.Printf("Inserted 1 document into %s (id=%s)", collection, id)
	return id, nil
}

// InsertMany inserts multiple documents in one operation and returns their
// IDs as hex strings.
func (m *MongoModule) InsertMany(ctx context.Context, collection string, documents []map[string]interface{}) ([]string, error) {
	if m.client == nil {
		return nil, base.NewModuleError(m.Name(), "InsertMany", "client not connected", nil)
	}
	if len(documents) == 0 {
		return []string{}, nil
	}

	docs := make([]interface{}, len(documents))
	for i, doc := range documents {
		docs[i] = toBSONValue(doc)
	}

	opCtx, cancel := m.config.WithTimeout(ctx)
	defer cancel()

	result, err := m.database.Collection(collection).InsertMany(opCtx, docs)
	if err != nil {
		return nil, base.NewModuleError(m.Name(), "InsertMany", "batch insert failed", err)
	}

	ids := make([]string, len(result.InsertedIDs))
	for i, id := range result.InsertedIDs {
		ids[i] = idToString(id)
	}

	m.logger.Printf("Inserted %d documents into %s", len(ids), collection)
	return ids, nil
}

// FindOne returns the first document matching the filter, or nil when no
// document matches.
func (m *MongoModule) FindOne(ctx context.Context, collection string, filter map[string]interface{}, projection map[string]interface{}) (map[string]interface{}, error) {
	if m.client == nil {
		return nil, base.NewModuleError(m.Name(), "FindOne", "client not connected", nil)
	}

	opts := options.FindOne()
	if projection != nil {
		opts.SetProjection(projection)
	}

	opCtx, cancel := m.config.WithTimeout(ctx)
	defer cancel()

	var doc bson.M
	err := m.database.Collection(collection).FindOne(opCtx, toBSONFilter(filter), opts).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, base.NewModuleError(m.Name(), "FindOne", "find failed", err)
	}

	return bsonToMap(doc), nil
}

// Find returns the documents matching the filter, honoring projection, sort,
// limit, and skip from opts.
func (m *MongoModule) Find(ctx context.Context, collection string, filter map[string]interface{}, findOpts *FindOptions) ([]map[string]interface{}, error) {
	if m.client == nil {
		return nil, base.NewModuleError(m.Name(), "Find", "client not connected", nil)
	}

	opts := options.Find()
	if findOpts != nil {
		if findOpts.Projection != nil {
			opts.SetProjection(findOpts.Projection)
		}
		if len(findOpts.Sort) > 0 {
			sortDoc := bson.D{}
			for _, s := range findOpts.Sort {
				sortDoc = append(sortDoc, bson.E{Key: s.Field, Value: s.Order})
			}
			opts.SetSort(sortDoc)
		}
		if findOpts.Limit > 0 {
			opts.SetLimit(findOpts.Limit)
		}
		if findOpts.Skip > 0 {
			opts.SetSkip(findOpts.Skip)
		}
	}

	opCtx, cancel := m.config.WithTimeout(ctx)
	defer cancel()

	start := time.Now()
	cursor, err := m.database.Collection(collection).Find(opCtx, toBSONFilter(filter), opts)
	if err != nil {
		return nil, base.NewModuleError(m.Name(), "Find", "find failed", err)
	}
	defer func() { _ = cursor.Close(opCtx) }()

	results, err := decodeCursor(opCtx, cursor)
	if err != nil {
		return nil, base.NewModuleError(m.Name(), "Find", "failed to decode results", err)
	}

	m.logger.Printf("Find on %s: %d documents in %v", collection, len(results), time.Since(start))
	return results, nil
}

// UpdateOne updates the first document matching the filter
func (m *MongoModule) UpdateOne(ctx context.Context, collection string, filter, update map[string]interface{}, upsert bool) (*UpdateResult, error) {
	return m.update(ctx, "UpdateOne", collection, filter, update, upsert, false)
}

// UpdateMany updates every document matching the filter
func (m *MongoModule) UpdateMany(ctx context.Context, collection string, filter, update map[string]interface{}, upsert bool) (*UpdateResult, error) {
	return m.update(ctx, "UpdateMany", collection, filter, update, upsert, true)
}

func (m *MongoModule) update(ctx context.Context, op, collection string, filter, update map[string]interface{}, upsert, many bool) (*UpdateResult, error) {
	if m.client == nil {
		return nil, base.NewModuleError(m.Name(), op, "client not connected", nil)
	}
	if len(update) == 0 {
		return nil, base.NewModuleError(m.Name(), op, "update document is required", nil)
	}

	opts := options.Update().SetUpsert(upsert)

	opCtx, cancel := m.config.WithTimeout(ctx)
	defer cancel()

	coll := m.database.Collection(collection)
	var result *mongo.UpdateResult
	var err error
	if many {
		result, err = coll.UpdateMany(opCtx, toBSONFilter(filter), toBSONValue(update), opts)
	} else {
		result, err = coll.UpdateOne(opCtx, toBSONFilter(filter), toBSONValue(update), opts)
	}
	if err != nil {
		return nil, base.NewModuleError(m.Name(), op, "update failed", err)
	}

	ur := &UpdateResult{
		MatchedCount:  result.MatchedCount,
		ModifiedCount: result.ModifiedCount,
	}
	if result.UpsertedCount > 0 {
		ur.UpsertedID = idToString(result.UpsertedID)
	}

	m.logger.Printf("%s on %s: matched=%d modified=%d", op, collection, ur.MatchedCount, ur.ModifiedCount)
	return ur, nil
}

// DeleteOne deletes the first document matching the filter and returns the
// deleted count.
func (m *MongoModule) DeleteOne(ctx context.Context, collection string, filter map[string]interface{}) (int64, error) {
	return m.delete(ctx, "DeleteOne", collection, filter, false)
}

// DeleteMany deletes every document matching the filter and returns the
// deleted count.
func (m *MongoModule) DeleteMany(ctx context.Context, collection string, filter map[string]interface{}) (int64, error) {
	return m.delete(ctx, "DeleteMany", collection, filter, true)
}

func (m *MongoModule) delete(ctx context.Context, op, collection string, filter map[string]interface{}, many bool) (int64, error) {
	if m.client == nil {
		return 0, base.NewModuleError(m.Name(), op, "client not connected", nil)
	}
	if len(filter) == 0 && !many {
		return 0, base.NewModuleError(m.Name(), op, "filter is required", nil)
	}

	opCtx, cancel := m.config.WithTimeout(ctx)
	defer cancel()

	coll := m.database.Collection(collection)
	var result *mongo.DeleteResult
	var err error
	if many {
		result, err = coll.DeleteMany(opCtx, toBSONFilter(filter))
	} else {
		result, err = coll.DeleteOne(opCtx, toBSONFilter(filter))
	}
	if err != nil {
		return 0, base.NewModuleError(m.Name(), op, "delete failed", err)
	}

	m.logger.Printf("%s on %s: deleted=%d", op, collection, result.DeletedCount)
	return result.DeletedCount, nil
}

// Aggregate runs an aggregation pipeline and returns the resulting documents.
// Each pipeline entry is one stage, e.g. {"$match": {...}} or {"$group": {...}}.
func (m *MongoModule) Aggregate(ctx context.Context, collection string, pipeline []map[string]interface{}, allowDiskUse bool) ([]map[string]interface{}, error) {
	if m.client == nil {
		return nil, base.NewModuleError(m.Name(), "Aggregate", "client not connected", nil)
	}
	if len(pipeline) == 0 {
		return nil, base.NewModuleError(m.Name(), "Aggregate", "pipeline is required", nil)
	}

	stages := make(mongo.Pipeline, 0, len(pipeline))
	for _, stage := range pipeline {
		bsonStage := bson.D{}
		for k, v := range stage {
			bsonStage = append(bsonStage, bson.E{Key: k, Value: toBSONValue(v)})
		}
		stages = append(stages, bsonStage)
	}

	opts := options.Aggregate()
	if allowDiskUse {
		opts.SetAllowDiskUse(true)
	}

	opCtx, cancel := m.config.WithTimeout(ctx)
	defer cancel()

	cursor, err := m.database.Collection(collection).Aggregate(opCtx, stages, opts)
	if err != nil {
		return nil, base.NewModuleError(m.Name(), "Aggregate", "aggregation failed", err)
	}
	defer func() { _ = cursor.Close(opCtx) }()

	results, err := decodeCursor(opCtx, cursor)
	if err != nil {
		return nil, base.NewModuleError(m.Name(), "Aggregate", "failed to decode results", err)
	}

	m.logger.Printf("Aggregate on %s: %d stages, %d documents", collection, len(pipeline), len(results))
	return results, nil
}

// CountDocuments counts the documents matching the filter
func (m *MongoModule) CountDocuments(ctx context.Context, collection string, filter map[string]interface{}) (int64, error) {
	if m.client == nil {
		return 0, base.NewModuleError(m.Name(), "CountDocuments", "client not connected", nil)
	}

	opCtx, cancel := m.config.WithTimeout(ctx)
	defer cancel()

	count, err := m.database.Collection(collection).CountDocuments(opCtx, toBSONFilter(filter))
	if err != nil {
		return 0, base.NewModuleError(m.Name(), "CountDocuments", "count failed", err)
	}
	return count, nil
}

// Distinct returns the distinct values of a field across matching documents
func (m *MongoModule) Distinct(ctx context.Context, collection, field string, filter map[string]interface{}) ([]interface{}, error) {
	if m.client == nil {
		return nil, base.NewModuleError(m.Name(), "Distinct", "client not connected", nil)
	}
	if field == "" {
		return nil, base.NewModuleError(m.Name(), "Distinct", "field is required", nil)
	}

	opCtx, cancel := m.config.WithTimeout(ctx)
	defer cancel()

	values, err := m.database.Collection(collection).Distinct(opCtx, field, toBSONFilter(filter))
	if err != nil {
		return nil, base.NewModuleError(m.Name(), "Distinct", "distinct failed", err)
	}

	results := make([]interface{}, len(values))
	for i, v := range values {
		results[i] = fromBSONValue(v)
	}
	return results, nil
}

// Name returns the configured instance name, or "mongodb" when unnamed
func (m *MongoModule) Name() string {
	if m.config == nil || m.config.Name == "" {
		return "mongodb"
	}
	return m.config.Name
}

// toBSONFilter converts a plain filter map to a BSON filter. Hex strings in
// _id positions are promoted to ObjectIDs so flows can filter by the string
// IDs the module hands back.
func toBSONFilter(filter map[string]interface{}) bson.M {
	if filter == nil {
		return bson.M{}
	}

	result := bson.M{}
	for k, v := range filter {
		if k == "_id" {
			if hex, ok := v.(string); ok {
				if oid, err := primitive.ObjectIDFromHex(hex); err == nil {
					result[k] = oid
					continue
				}
			}
		}
		result[k] = toBSONValue(v)
	}
	return result
}

// toBSONValue converts plain Go values to BSON-compatible values, handling
// the extended-JSON style {"$oid": ...} and {"$date": ...} wrappers.
func toBSONValue(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		if oid, ok := val["$oid"].(string); ok && len(val) == 1 {
			if objectID, err := primitive.ObjectIDFromHex(oid); err == nil {
				return objectID
			}
		}
		if date, ok := val["$date"].(string); ok && len(val) == 1 {
			if t, err := time.Parse(time.RFC3339, date); err == nil {
				return t
			}
		}
		result := bson.M{}
		for k, v := range val {
			result[k] = toBSONValue(v)
		}
		return result
	case []interface{}:
		result := make([]interface{}, len(val))
		for i, item := range val {
			result[i] = toBSONValue(item)
		}
		return result
	default:
		return val
	}
}

// decodeCursor decodes all documents from a cursor
func decodeCursor(ctx context.Context, cursor *mongo.Cursor) ([]map[string]interface{}, error) {
	results := make([]map[string]interface{}, 0)

	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		results = append(results, bsonToMap(doc))
	}

	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return results, nil
}

// bsonToMap converts a BSON document to a plain Go map
func bsonToMap(doc bson.M) map[string]interface{} {
	result := make(map[string]interface{})
	for k, v := range doc {
		result[k] = fromBSONValue(v)
	}
	return result
}

// fromBSONValue converts BSON types to JSON-serializable Go types. ObjectIDs
// become hex strings so results round-trip through flow variables.
func fromBSONValue(v interface{}) interface{} {
	switch val := v.(type) {
	case primitive.ObjectID:
		return val.Hex()
	case primitive.DateTime:
		return val.Time()
	case primitive.Binary:
		return val.Data
	case bson.M:
		return bsonToMap(val)
	case bson.A:
		result := make([]interface{}, len(val))
		for i, item := range val {
			result[i] = fromBSONValue(item)
		}
		return result
	case primitive.D:
		result := make(map[string]interface{})
		for _, elem := range val {
			result[elem.Key] = fromBSONValue(elem.Value)
		}
		return result
	default:
		return val
	}
}

// idToString renders an inserted or upserted ID as a string
func idToString(id interface{}) string {
	if oid, ok := id.(primitive.ObjectID); ok {
		return oid.Hex()
	}
	return fmt.Sprintf("%v", id)
}

// durationOption reads a duration-formatted string option ("5m", "90s")
func durationOption(cfg *base.ModuleConfig, key string, defaultValue time.Duration) time.Duration {
	if val := cfg.StringOption(key, ""); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultValue
}
