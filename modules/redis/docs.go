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

package redis

import "nl2flow/platform/modules/base"

// Metadata identifies the Redis module in the catalog
func (m *RedisModule) Metadata() base.Metadata {
	return base.NewMetadata(
		"Redis",
		"redis",
		"Redis key-value store with string and counter operations, TTL management, and pattern-based key scanning",
	).WithKeywords(
		"redis", "cache", "key-value", "kv-store", "ttl", "counter",
		"in-memory", "expiry",
	).WithDependencies("github.com/go-redis/redis/v8")
}

// UsageNotes returns operational guidance for generated flows
func (m *RedisModule) UsageNotes() []string {
	return []string{
		"Supports redis:// and rediss:// connection URLs or individual host/port/db options",
		"Connection pool defaults to 100 connections with 10 idle (pool_size and min_idle_conns options)",
		"redis_get distinguishes a missing key from an empty value via the exists flag",
		"Non-string values are JSON-encoded on redis_set; decode them in the flow after redis_get",
		"TTL of 0 on redis_set means the key never expires",
		"redis_ttl follows Redis conventions: -1 means no expiry, -2 means the key does not exist",
		"redis_keys uses SCAN rather than KEYS, so listing is safe on large databases",
		"Key listing is capped at 100 keys unless a higher limit is passed",
		"redis_increment starts missing keys at zero and is atomic across clients",
	}
}

// Methods returns the documented method surface in presentation order
func (m *RedisModule) Methods() []base.MethodInfo {
	return []base.MethodInfo{
		{
			Name:        "redis_get",
			Description: "Retrieve the string value stored under a key",
			Parameters: []base.Parameter{
				{Name: "key", Description: "str (required) - Key to read"},
			},
			Returns: "map - value, and exists flag distinguishing missing keys from empty values",
			Examples: []base.Example{
				{Text: "Get the value of key {{key}}", Code: "redis_get(key='{{key}}')"},
				{Text: "Read cached session {{session_id}}", Code: "redis_get(key='session:{{session_id}}')"},
			},
		},
		{
			Name:        "redis_set",
			Description: "Store a value under a key with an optional TTL",
			Parameters: []base.Parameter{
				{Name: "key", Description: "str (required) - Key to write"},
				{Name: "value", Description: "any (required) - Value to store; non-strings are JSON-encoded"},
				{Name: "ttl", Description: "int (optional) - Expiry in seconds (0 = never expires)"},
			},
			Returns: "None - Raises on failure",
			Examples: []base.Example{
				{Text: "Cache value {{value}} under key {{key}}", Code: "redis_set(key='{{key}}', value='{{value}}')"},
				{Text: "Cache session {{session_id}} for one hour", Code: "redis_set(key='session:{{session_id}}', value={{session}}, ttl=3600)"},
			},
		},
		{
			Name:        "redis_delete",
			Description: "Delete one or more keys and return how many existed",
			Parameters: []base.Parameter{
				{Name: "keys", Description: "list[str] (required) - Keys to delete"},
			},
			Returns: "int - Number of keys that were deleted",
			Examples: []base.Example{
				{Text: "Delete key {{key}}", Code: "redis_delete(keys=['{{key}}'])"},
				{Text: "Invalidate session and profile caches for user {{user_id}}", Code: "redis_delete(keys=['session:{{user_id}}', 'profile:{{user_id}}'])"},
			},
		},
		{
			Name:        "redis_exists",
			Description: "Check whether a key exists",
			Parameters: []base.Parameter{
				{Name: "key", Description: "str (required) - Key to check"},
			},
			Returns: "bool - True when the key exists",
			Examples: []base.Example{
				{Text: "Check whether key {{key}} exists", Code: "redis_exists(key='{{key}}')"},
			},
		},
		{
			Name:        "redis_expire",
			Description: "Set a TTL on an existing key",
			Parameters: []base.Parameter{
				{Name: "key", Description: "str (required) - Key to expire"},
				{Name: "ttl", Description: "int (required) - Expiry in seconds"},
			},
			Returns: "bool - True when the TTL was set, False when the key does not exist",
			Examples: []base.Example{
				{Text: "Expire key {{key}} after {{seconds}} seconds", Code: "redis_expire(key='{{key}}', ttl={{seconds}})"},
			},
		},
		{
			Name:        "redis_ttl",
			Description: "Get the remaining time to live of a key in seconds",
			Parameters: []base.Parameter{
				{Name: "key", Description: "str (required) - Key to inspect"},
			},
			Returns: "int - Remaining seconds; -1 means no expiry, -2 means missing key",
			Examples: []base.Example{
				{Text: "Get remaining TTL of key {{key}}", Code: "redis_ttl(key='{{key}}')"},
			},
		},
		{
			Name:        "redis_increment",
			Description: "Atomically add a delta to the integer stored at a key",
			Parameters: []base.Parameter{
				{Name: "key", Description: "str (required) - Counter key"},
				{Name: "delta", Description: "int (optional) - Amount to add (default 1)"},
			},
			Returns: "int - New counter value",
			Examples: []base.Example{
				{Text: "Increment page view counter for {{page}}", Code: "redis_increment(key='views:{{page}}')"},
				{Text: "Add {{amount}} to counter {{counter}}", Code: "redis_increment(key='{{counter}}', delta={{amount}})"},
			},
		},
		{
			Name:        "redis_keys",
			Description: "List keys matching a glob pattern using non-blocking SCAN",
			Parameters: []base.Parameter{
				{Name: "pattern", Description: "str (optional) - Glob pattern (default '*')"},
				{Name: "limit", Description: "int (optional) - Maximum keys to return (default 100)"},
			},
			Returns: "list[str] - Matching keys",
			Examples: []base.Example{
				{Text: "List all session keys", Code: "redis_keys(pattern='session:*')"},
				{Text: "List up to {{limit}} keys", Code: "redis_keys(limit={{limit}})"},
			},
		},
		{
			Name:        "redis_stats",
			Description: "Report database size and connection pool statistics",
			Parameters:  []base.Parameter{},
			Returns:     "map - db_size plus pool hit/miss/connection counters",
			Examples: []base.Example{
				{Text: "Get cache statistics", Code: "redis_stats()"},
			},
		},
	}
}
