package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/jmhart/crewlog/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	store, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestPutGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Put(ctx, "groups", "g_1", []byte(`{"name":"Chores"}`)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	doc, err := store.Get(ctx, "groups", "g_1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(doc.Body) != `{"name":"Chores"}` {
		t.Errorf("body = %s", doc.Body)
	}
	if doc.Version != 1 {
		t.Errorf("version = %d, want 1", doc.Version)
	}

	// Upsert bumps the version.
	if err := store.Put(ctx, "groups", "g_1", []byte(`{"name":"Chores v2"}`)); err != nil {
		t.Fatalf("second Put failed: %v", err)
	}
	doc, err = store.Get(ctx, "groups", "g_1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if doc.Version != 2 {
		t.Errorf("version after upsert = %d, want 2", doc.Version)
	}
}

func TestGetNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Get(context.Background(), "groups", "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestPutRejectsInvalidJSON(t *testing.T) {
	store := newTestStore(t)

	if err := store.Put(context.Background(), "groups", "g_1", []byte(`{broken`)); err == nil {
		t.Error("expected error for invalid JSON body")
	}
}

func TestCheckAndPut(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// Version 0 means "create".
	if err := store.CheckAndPut(ctx, "groups", "g_1", []byte(`{"v":1}`), 0); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// Creating again conflicts.
	err := store.CheckAndPut(ctx, "groups", "g_1", []byte(`{"v":1}`), 0)
	if !errors.Is(err, storage.ErrConflict) {
		t.Errorf("duplicate create error = %v, want ErrConflict", err)
	}

	// Update at the right version succeeds.
	if err := store.CheckAndPut(ctx, "groups", "g_1", []byte(`{"v":2}`), 1); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	// Update at a stale version conflicts.
	err = store.CheckAndPut(ctx, "groups", "g_1", []byte(`{"v":3}`), 1)
	if !errors.Is(err, storage.ErrConflict) {
		t.Errorf("stale update error = %v, want ErrConflict", err)
	}

	doc, err := store.Get(ctx, "groups", "g_1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(doc.Body) != `{"v":2}` {
		t.Errorf("stale write went through: body = %s", doc.Body)
	}
	if doc.Version != 2 {
		t.Errorf("version = %d, want 2", doc.Version)
	}
}

func TestQueryEq(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	docs := map[string]string{
		"g_1": `{"code":"ABCDEF","name":"One"}`,
		"g_2": `{"code":"QRSTUV","name":"Two"}`,
		"g_3": `{"code":"ABCDEF","name":"Three"}`,
	}
	for id, body := range docs {
		if err := store.Put(ctx, "groups", id, []byte(body)); err != nil {
			t.Fatalf("Put %s failed: %v", id, err)
		}
	}

	got, err := store.QueryEq(ctx, "groups", "code", "ABCDEF")
	if err != nil {
		t.Fatalf("QueryEq failed: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("matches = %d, want 2", len(got))
	}

	got, err = store.QueryEq(ctx, "groups", "code", "NOPE22")
	if err != nil {
		t.Fatalf("QueryEq failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("matches = %d, want 0", len(got))
	}
}

func TestListAndDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"g_1", "g_2"} {
		if err := store.Put(ctx, "groups", id, []byte(`{}`)); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
	}
	if err := store.Put(ctx, "identities", "dev_1", []byte(`{}`)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	docs, err := store.List(ctx, "groups")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(docs) != 2 {
		t.Errorf("groups = %d, want 2 (collections are isolated)", len(docs))
	}

	if err := store.Delete(ctx, "groups", "g_1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.Get(ctx, "groups", "g_1"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("error after delete = %v, want ErrNotFound", err)
	}

	// Deleting an absent id is a no-op.
	if err := store.Delete(ctx, "groups", "g_1"); err != nil {
		t.Errorf("second Delete failed: %v", err)
	}
}
