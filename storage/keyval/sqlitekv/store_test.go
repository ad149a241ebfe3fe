package sqlitekv

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
)

func TestStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "stride.db")

	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	if _, ok, err := store.Load(ctx, "research_users"); ok || err != nil {
		t.Fatalf("Load() on empty store = %v, %v", ok, err)
	}

	val := []byte(`[{"id":"s1"}]`)
	if err := store.Save(ctx, "research_users", val); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, ok, err := store.Load(ctx, "research_users")
	if err != nil || !ok {
		t.Fatalf("Load() = %v, %v", ok, err)
	}
	if !bytes.Equal(got, val) {
		t.Errorf("Load() = %s, want %s", got, val)
	}

	// upsert replaces the value in place
	if err := store.Save(ctx, "research_users", []byte(`[]`)); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, _, _ = store.Load(ctx, "research_users")
	if !bytes.Equal(got, []byte(`[]`)) {
		t.Errorf("Load() after upsert = %s", got)
	}

	if err := store.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	// values survive reopening the file
	store, err = Open(path)
	if err != nil {
		t.Fatalf("Open() after Close() error = %v", err)
	}
	defer store.Close()

	got, ok, err = store.Load(ctx, "research_users")
	if err != nil || !ok {
		t.Fatalf("Load() after reopen = %v, %v", ok, err)
	}
	if !bytes.Equal(got, []byte(`[]`)) {
		t.Errorf("Load() after reopen = %s", got)
	}
}
