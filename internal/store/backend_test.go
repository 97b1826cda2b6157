package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"minesweeper_webapp/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Shared contract check for the real backends. Runs only when the
// matching env var points at a live instance.
func testDocumentStoreRoundTrip(t *testing.T, s DocumentStore, key string) {
	t.Helper()
	ctx := context.Background()

	if err := s.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}

	doc := domain.NewGameDocument()
	doc.EnsurePlayer("carol", "carol")
	doc.Shared.MoveCount = 3

	if err := s.Save(ctx, key, doc, 0); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.Save(ctx, key, doc, 0); !errors.Is(err, ErrVersionConflict) {
		t.Fatalf("re-create of existing key: expected conflict, got %v", err)
	}

	loaded, version, err := s.Load(ctx, key)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if version != 1 {
		t.Fatalf("expected version 1, got %d", version)
	}
	if _, ok := loaded.Player("carol"); !ok || loaded.Shared.MoveCount != 3 {
		t.Fatalf("document did not survive the round trip: %+v", loaded.Shared)
	}

	loaded.Shared.MoveCount = 4
	if err := s.Save(ctx, key, loaded, version); err != nil {
		t.Fatalf("save at current version: %v", err)
	}
	if err := s.Save(ctx, key, loaded, version); !errors.Is(err, ErrVersionConflict) {
		t.Fatalf("stale save: expected conflict, got %v", err)
	}

	final, version, err := s.Load(ctx, key)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if version != 2 || final.Shared.MoveCount != 4 {
		t.Fatalf("expected version 2 with move count 4, got %d / %d", version, final.Shared.MoveCount)
	}
}

func TestRedisStoreRoundTrip(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set; skipping integration test")
	}

	s := NewRedisStore(addr, os.Getenv("REDIS_PASSWORD"), 0)
	defer s.Close()

	testDocumentStoreRoundTrip(t, s, fmt.Sprintf("it-redis-%d", time.Now().UnixNano()))
}

func TestPostgresStoreRoundTrip(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set; skipping integration test")
	}

	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer pool.Close()

	migDir := filepath.Join("..", "migrations")
	files, err := os.ReadDir(migDir)
	if err != nil {
		t.Fatalf("read migrations dir: %v", err)
	}
	for _, f := range files {
		b, err := os.ReadFile(filepath.Join(migDir, f.Name()))
		if err != nil {
			t.Fatalf("read %s: %v", f.Name(), err)
		}
		if _, err := pool.Exec(context.Background(), string(b)); err != nil {
			t.Fatalf("apply %s: %v", f.Name(), err)
		}
	}

	s := NewPostgresStore(pool)
	testDocumentStoreRoundTrip(t, s, fmt.Sprintf("it-pg-%d", time.Now().UnixNano()))
}
