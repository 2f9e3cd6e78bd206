package kv

import (
	"context"
	"testing"
)

func openTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := OpenSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("OpenSQLiteStore() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore_SetGet(t *testing.T) {
	ctx := context.Background()
	store := openTestSQLiteStore(t)

	if err := store.Set(ctx, "default", "session:abc:foo", []byte("bar")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	v, ok, err := store.Get(ctx, "default", "session:abc:foo")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !ok {
		t.Fatal("Get() ok = false, want true")
	}
	if string(v) != "bar" {
		t.Errorf("Get() = %q, want %q", v, "bar")
	}
}

func TestSQLiteStore_SetOverwritesExistingKey(t *testing.T) {
	ctx := context.Background()
	store := openTestSQLiteStore(t)

	_ = store.Set(ctx, "default", "k", []byte("first"))
	if err := store.Set(ctx, "default", "k", []byte("second")); err != nil {
		t.Fatalf("Set() (overwrite) error = %v", err)
	}

	v, _, _ := store.Get(ctx, "default", "k")
	if string(v) != "second" {
		t.Errorf("Get() = %q, want %q", v, "second")
	}
}

func TestSQLiteStore_HasPrefixEscapesLikeMetacharacters(t *testing.T) {
	ctx := context.Background()
	store := openTestSQLiteStore(t)

	// A literal "%" or "_" in a session id must not act as a SQL wildcard.
	if err := store.Set(ctx, "default", "session:100%:foo", []byte("v")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	has, err := store.HasPrefix(ctx, "default", "session:100%:")
	if err != nil {
		t.Fatalf("HasPrefix() error = %v", err)
	}
	if !has {
		t.Error("HasPrefix() = false, want true for exact literal match")
	}

	has, err = store.HasPrefix(ctx, "default", "session:100x:")
	if err != nil {
		t.Fatalf("HasPrefix() error = %v", err)
	}
	if has {
		t.Error("HasPrefix() = true, want false: \"%\" must not match as a wildcard")
	}
}

func TestSQLiteStore_DeleteAndExists(t *testing.T) {
	ctx := context.Background()
	store := openTestSQLiteStore(t)

	_ = store.Set(ctx, "default", "k", []byte("v"))
	if err := store.Delete(ctx, "default", "k"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	exists, err := store.Exists(ctx, "default", "k")
	if err != nil {
		t.Fatalf("Exists() error = %v", err)
	}
	if exists {
		t.Error("Exists() = true after Delete(), want false")
	}
}

func TestSQLiteStore_DeletePrefix(t *testing.T) {
	ctx := context.Background()
	store := openTestSQLiteStore(t)

	_ = store.Set(ctx, "default", "session:s1:foo", []byte("a"))
	_ = store.Set(ctx, "default", "session:s1:bar", []byte("b"))
	_ = store.Set(ctx, "default", "session:s2:foo", []byte("c"))

	if err := store.DeletePrefix(ctx, "default", "session:s1:"); err != nil {
		t.Fatalf("DeletePrefix() error = %v", err)
	}

	if _, ok, _ := store.Get(ctx, "default", "session:s1:foo"); ok {
		t.Error("session:s1:foo survived DeletePrefix()")
	}
	if _, ok, _ := store.Get(ctx, "default", "session:s2:foo"); !ok {
		t.Error("unrelated session key was deleted")
	}
}

func TestSQLiteStore_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dsn := "file:kv_reopen_test?mode=memory&cache=shared"

	store1, err := OpenSQLiteStore(dsn)
	if err != nil {
		t.Fatalf("OpenSQLiteStore() error = %v", err)
	}
	if err := store1.Set(ctx, "default", "k", []byte("persisted")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	store2, err := OpenSQLiteStore(dsn)
	if err != nil {
		t.Fatalf("OpenSQLiteStore() (reopen) error = %v", err)
	}
	defer func() {
		_ = store1.Close()
		_ = store2.Close()
	}()

	v, ok, err := store2.Get(ctx, "default", "k")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !ok || string(v) != "persisted" {
		t.Errorf("Get() = (%q, %v), want (\"persisted\", true)", v, ok)
	}
}
