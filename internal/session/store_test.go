package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	if _, err := store.Get(ctx, KeyToken); !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound got %v", err)
	}

	if err := store.Set(ctx, KeyToken, "tok"); err != nil {
		t.Fatalf("set: %v", err)
	}
	value, err := store.Get(ctx, KeyToken)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if value != "tok" {
		t.Fatalf("expected %q got %q", "tok", value)
	}

	if err := store.Set(ctx, KeyToken, "tok2"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if value, _ := store.Get(ctx, KeyToken); value != "tok2" {
		t.Fatalf("expected overwritten value got %q", value)
	}

	if err := store.Delete(ctx, KeyToken); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(ctx, KeyToken); !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound after delete got %v", err)
	}
	if err := store.Delete(ctx, KeyToken); err != nil {
		t.Fatalf("second delete should be a no-op: %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	exerciseStore(t, store)
}

func TestFileStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	if err := store.Set(context.Background(), KeySession, `{"userId":1}`); err != nil {
		t.Fatalf("set: %v", err)
	}

	reopened, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	value, err := reopened.Get(context.Background(), KeySession)
	if err != nil {
		t.Fatalf("get after reopen: %v", err)
	}
	if value != `{"userId":1}` {
		t.Fatalf("unexpected persisted value %q", value)
	}
}

func TestFileStoreTreatsCorruptFileAsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte("not json at all"), 0o600); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	if _, err := store.Get(context.Background(), KeyToken); !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound got %v", err)
	}
	if err := store.Set(context.Background(), KeyToken, "tok"); err != nil {
		t.Fatalf("set over corrupt file: %v", err)
	}
}

func TestSQLiteStore(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "session.db"))
	if err != nil {
		t.Fatalf("new sqlite store: %v", err)
	}
	defer store.Close()

	exerciseStore(t, store)
}

func TestRedisStore(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	defer client.Close()

	exerciseStore(t, NewRedisStore(client, "test:session"))

	// Keys must live under the configured prefix.
	store := NewRedisStore(client, "test:session")
	if err := store.Set(context.Background(), KeyToken, "tok"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if !srv.Exists("test:session:" + KeyToken) {
		t.Fatal("expected prefixed redis key")
	}
}
