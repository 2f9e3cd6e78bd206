package session

import (
	"context"
	"strings"
	"sync"
	"testing"
)

// memStore is a minimal in-memory KVStore for exercising Session without
// pulling in the adapter package.
type memStore struct {
	mu   sync.RWMutex
	data map[string]map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string]map[string][]byte)}
}

func (m *memStore) Get(ctx context.Context, bucket, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.data[bucket]
	if !ok {
		return nil, false, nil
	}
	v, ok := b[key]
	return v, ok, nil
}

func (m *memStore) Set(ctx context.Context, bucket, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.data[bucket]
	if !ok {
		b = make(map[string][]byte)
		m.data[bucket] = b
	}
	b[key] = append([]byte(nil), value...)
	return nil
}

func (m *memStore) Delete(ctx context.Context, bucket, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b, ok := m.data[bucket]; ok {
		delete(b, key)
	}
	return nil
}

func (m *memStore) Exists(ctx context.Context, bucket, key string) (bool, error) {
	_, ok, err := m.Get(ctx, bucket, key)
	return ok, err
}

func (m *memStore) HasPrefix(ctx context.Context, bucket, prefix string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.data[bucket]
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

func (m *memStore) Close() error { return nil }

var _ KVStore = (*memStore)(nil)

func TestGenerateSessionID(t *testing.T) {
	ids := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id, err := GenerateSessionID()
		if err != nil {
			t.Fatalf("GenerateSessionID() error = %v", err)
		}
		if len(id) != 64 {
			t.Errorf("GenerateSessionID() len = %d, want 64", len(id))
		}
		if ids[id] {
			t.Errorf("GenerateSessionID() generated duplicate ID: %s", id)
		}
		ids[id] = true
		for _, c := range id {
			if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
				t.Errorf("GenerateSessionID() contains non-hex character: %c", c)
			}
		}
	}
}

func TestOpenNoSuchSession(t *testing.T) {
	store := newMemStore()
	ctx := context.Background()
	if _, err := Open(ctx, store, "default", "missing"); err != ErrNoSuchSession {
		t.Errorf("Open() error = %v, want ErrNoSuchSession", err)
	}
}

func TestNewThenOpen(t *testing.T) {
	store := newMemStore()
	ctx := context.Background()
	id := "sess-1"

	s := New(store, "default", id)
	if err := s.Set(ctx, "foo", StringValue("bar")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	reopened, err := Open(ctx, store, "default", id)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	v, ok, err := reopened.Get(ctx, "foo")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !ok {
		t.Fatal("Get() ok = false, want true")
	}
	got, err := v.AsStringVal()
	if err != nil {
		t.Fatalf("AsStringVal() error = %v", err)
	}
	if got != "bar" {
		t.Errorf("Get() = %q, want %q", got, "bar")
	}
}

func TestGetMissingKeyIsNotAnError(t *testing.T) {
	store := newMemStore()
	ctx := context.Background()
	s := New(store, "default", "sess-2")
	_ = s.Set(ctx, "present", StringValue("x"))

	_, ok, err := s.Get(ctx, "absent")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if ok {
		t.Error("Get() ok = true for absent key, want false")
	}
}

func TestTerminateBlocksReadsAndWrites(t *testing.T) {
	store := newMemStore()
	ctx := context.Background()
	s := New(store, "default", "sess-3")
	_ = s.Set(ctx, "foo", StringValue("bar"))

	if err := s.Terminate(ctx, "client disconnected"); err != nil {
		t.Fatalf("Terminate() error = %v", err)
	}

	terminated, err := s.IsTerminated(ctx)
	if err != nil {
		t.Fatalf("IsTerminated() error = %v", err)
	}
	if !terminated {
		t.Fatal("IsTerminated() = false after Terminate()")
	}

	if _, _, err := s.Get(ctx, "foo"); err != ErrTerminated {
		t.Errorf("Get() after Terminate() error = %v, want ErrTerminated", err)
	}
	if err := s.Set(ctx, "foo", StringValue("baz")); err != ErrTerminated {
		t.Errorf("Set() after Terminate() error = %v, want ErrTerminated", err)
	}
}

func TestDeleteClearsTerminationFlagOnly(t *testing.T) {
	store := newMemStore()
	ctx := context.Background()
	s := New(store, "default", "sess-4")
	_ = s.Set(ctx, "foo", StringValue("bar"))
	_ = s.Terminate(ctx, "done")

	if err := s.Delete(ctx); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	terminated, err := s.IsTerminated(ctx)
	if err != nil {
		t.Fatalf("IsTerminated() error = %v", err)
	}
	if terminated {
		t.Error("IsTerminated() = true after Delete(), want false")
	}

	// user-space key survives Delete: only the sweeper reclaims it.
	v, ok, err := s.Get(ctx, "foo")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !ok {
		t.Fatal("Get() ok = false, want true (user-space key survives Delete)")
	}
	got, _ := v.AsStringVal()
	if got != "bar" {
		t.Errorf("Get() = %q, want %q", got, "bar")
	}
}

func TestBindIdentityWritesClaims(t *testing.T) {
	store := newMemStore()
	ctx := context.Background()
	s := New(store, "default", "sess-5")

	claims := map[string]string{"sub": "user-123", "scope": "tools:read"}
	if err := s.BindIdentity(ctx, claims); err != nil {
		t.Fatalf("BindIdentity() error = %v", err)
	}

	for k, want := range claims {
		got, ok, err := s.Claim(ctx, k)
		if err != nil {
			t.Fatalf("Claim(%q) error = %v", k, err)
		}
		if !ok {
			t.Fatalf("Claim(%q) ok = false", k)
		}
		if got != want {
			t.Errorf("Claim(%q) = %q, want %q", k, got, want)
		}
	}
}

func TestTypedValueWrongKindAccess(t *testing.T) {
	v := I64Value(42)
	if _, err := v.AsStringVal(); err != ErrWrongValueKind {
		t.Errorf("AsStringVal() on AsI64 error = %v, want ErrWrongValueKind", err)
	}
}

func TestTypedValueEncodeDecodeRoundTrip(t *testing.T) {
	tests := []TypedValue{
		StringValue("hello"),
		BytesValue([]byte{1, 2, 3}),
		I64Value(-7),
		BoolValue(true),
		F64Value(3.25),
	}
	for _, v := range tests {
		decoded, err := DecodeTypedValue(v.Encode())
		if err != nil {
			t.Fatalf("DecodeTypedValue() error = %v", err)
		}
		if decoded.Kind != v.Kind {
			t.Errorf("decoded kind = %v, want %v", decoded.Kind, v.Kind)
		}
	}
}

func TestDecodeTypedValueUnknownKind(t *testing.T) {
	if _, err := DecodeTypedValue([]byte{0xFF, 1, 2}); err != ErrUnknownValueKind {
		t.Errorf("DecodeTypedValue() error = %v, want ErrUnknownValueKind", err)
	}
}
