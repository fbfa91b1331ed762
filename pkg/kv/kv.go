// Package kv defines the key-value store contract redbiom is built on.
//
// The store exposes a small subset of Redis semantics: string-keyed hashes
// and sets, key existence checks, and a full flush. Two implementations are
// provided: an embedded BadgerDB store (pkg/kv/badgerkv) and an HTTP client
// for a Webdis gateway in front of a Redis server (pkg/kv/webdis).
//
// Keys must not contain NUL bytes. Values are stored verbatim.
package kv

import "context"

// Store is the key-value interface all redbiom operations run against.
//
// All methods are safe for concurrent use. Implementations return
// infrastructure errors wrapped with %w; absence of a key, field, or
// member is never an error.
type Store interface {
	// HSet stores field=value in the hash at key, creating the hash if needed.
	HSet(ctx context.Context, key, field, value string) error

	// HSetMulti stores every field=value pair in the hash at key atomically.
	HSetMulti(ctx context.Context, key string, fields map[string]string) error

	// HGet returns the value of field in the hash at key. The boolean
	// reports whether the field was present.
	HGet(ctx context.Context, key, field string) (string, bool, error)

	// HMGet returns the values of the requested fields that are present
	// in the hash at key. Absent fields are omitted from the result.
	HMGet(ctx context.Context, key string, fields ...string) (map[string]string, error)

	// HGetAll returns every field=value pair in the hash at key.
	// A missing key yields an empty map.
	HGetAll(ctx context.Context, key string) (map[string]string, error)

	// HLen returns the number of fields in the hash at key.
	HLen(ctx context.Context, key string) (int, error)

	// SAdd adds the members to the set at key.
	SAdd(ctx context.Context, key string, members ...string) error

	// SMembers returns all members of the set at key, in unspecified order.
	SMembers(ctx context.Context, key string) ([]string, error)

	// SCard returns the cardinality of the set at key.
	SCard(ctx context.Context, key string) (int, error)

	// SIsMember reports whether member is in the set at key.
	SIsMember(ctx context.Context, key, member string) (bool, error)

	// Exists reports whether any hash field or set member exists at key.
	Exists(ctx context.Context, key string) (bool, error)

	// FlushAll removes every key from the store.
	FlushAll(ctx context.Context) error

	// Close releases resources held by the store.
	Close() error
}
