// Package kv provides outbound implementations of session.KVStore: an
// in-memory store for development/testing, and a modernc.org/sqlite-backed
// store for durable deployments.
package kv

import (
	"context"
	"strings"
	"sync"

	"github.com/Sentinel-Gate/Sentinelgate/internal/domain/session"
)

// MemoryStore is an in-memory session.KVStore, bucket-scoped and
// thread-safe. Suitable for development and single-process deployments;
// state does not survive a restart.
type MemoryStore struct {
	mu      sync.RWMutex
	buckets map[string]map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{buckets: make(map[string]map[string][]byte)}
}

func (m *MemoryStore) Get(ctx context.Context, bucket, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.buckets[bucket]
	if !ok {
		return nil, false, nil
	}
	v, ok := b[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *MemoryStore) Set(ctx context.Context, bucket, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.buckets[bucket]
	if !ok {
		b = make(map[string][]byte)
		m.buckets[bucket] = b
	}
	b[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, bucket, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b, ok := m.buckets[bucket]; ok {
		delete(b, key)
	}
	return nil
}

func (m *MemoryStore) Exists(ctx context.Context, bucket, key string) (bool, error) {
	_, ok, err := m.Get(ctx, bucket, key)
	return ok, err
}

func (m *MemoryStore) HasPrefix(ctx context.Context, bucket, prefix string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.buckets[bucket]
	if !ok {
		return false, nil
	}
	for k := range b {
		if strings.HasPrefix(k, prefix) {
			return true, nil
		}
	}
	return false, nil
}

// Close is a no-op: MemoryStore holds no resources beyond its map.
func (m *MemoryStore) Close() error { return nil }

// Size returns the number of keys stored across all buckets, for test
// assertions.
func (m *MemoryStore) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, b := range m.buckets {
		n += len(b)
	}
	return n
}

// DeletePrefix removes every key under bucket starting with prefix. Used by
// a durable store's reclamation sweep and exposed here too so callers can
// reclaim a terminated-then-deleted session's user-space keys explicitly
// rather than waiting on a background sweeper.
func (m *MemoryStore) DeletePrefix(ctx context.Context, bucket, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.buckets[bucket]
	if !ok {
		return nil
	}
	for k := range b {
		if strings.HasPrefix(k, prefix) {
			delete(b, k)
		}
	}
	return nil
}

var _ session.KVStore = (*MemoryStore)(nil)
