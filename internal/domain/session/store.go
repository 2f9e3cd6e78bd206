package session

import (
	"context"
	"errors"
)

// KVStore is the outbound port C2 is built on: a bucket-scoped, raw-bytes
// key-value store. Sessions layer the "session:{id}:{user-key}" keyspace
// convention and the TypedValue encoding on top of it; KVStore itself
// knows nothing about sessions. Implementations: in-memory (default) and
// modernc.org/sqlite-backed (durable), see internal/adapter/outbound/kv.
//
// This interface is defined in the domain package to avoid circular
// imports, matching this codebase's other outbound-port interfaces.
type KVStore interface {
	// Get returns the raw bytes stored at bucket/key, or ok=false if absent.
	Get(ctx context.Context, bucket, key string) (value []byte, ok bool, err error)

	// Set stores value at bucket/key, creating bucket/key implicitly if
	// this is the first write under that bucket.
	Set(ctx context.Context, bucket, key string, value []byte) error

	// Delete removes bucket/key. Deleting an absent key is not an error.
	Delete(ctx context.Context, bucket, key string) error

	// Exists reports whether bucket/key is present, without paying the
	// cost of reading its value.
	Exists(ctx context.Context, bucket, key string) (bool, error)

	// HasPrefix reports whether any key under bucket starts with prefix.
	// Used to implement "a session exists iff the store contains at least
	// one key under prefix session:{id}:".
	HasPrefix(ctx context.Context, bucket, prefix string) (bool, error)

	// Close releases any resources held by the store (background cleanup
	// goroutines, open database handles).
	Close() error
}

// ErrNoSuchSession is returned by Open when no key exists under the
// session's prefix.
var ErrNoSuchSession = errors.New("session: no such session")

// ErrTerminated is returned by Get/Set against a session whose termination
// flag is set.
var ErrTerminated = errors.New("session: terminated")
