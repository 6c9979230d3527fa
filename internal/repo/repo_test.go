package repo_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"watchcommander/internal/db"
	"watchcommander/internal/events"
	"watchcommander/internal/migrate"
	"watchcommander/internal/repo"
)

func newStore(t *testing.T) repo.SaveStore {
	t.Helper()
	conn, err := db.Open(db.Config{Workspace: t.TempDir()})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	if err := migrate.Migrate(context.Background(), conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return repo.SaveStore{
		DB:     conn,
		Events: events.Writer{Now: func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }},
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	if err := migrate.Migrate(ctx, store.DB); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
	v, err := migrate.Version(ctx, store.DB)
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	latest, _ := migrate.Latest()
	if v != latest || v == 0 {
		t.Fatalf("expected version %d, got %d", latest, v)
	}
}

func TestSaveStoreRoundTrip(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	if _, ok, err := store.Get(ctx, "camp"); err != nil || ok {
		t.Fatalf("expected no save, got ok=%v err=%v", ok, err)
	}
	first := []byte(`{"commanderName":"Reyes","day":1,"budget":100000}`)
	second := []byte(`{"commanderName":"Reyes","day":2,"budget":98800}`)
	if err := store.Set(ctx, "camp", first); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.Set(ctx, "camp", second); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	data, ok, err := store.Get(ctx, "camp")
	if err != nil || !ok || string(data) != string(second) {
		t.Fatalf("get: ok=%v err=%v data=%s", ok, err, data)
	}
	info, err := store.Info(ctx, "camp")
	if err != nil || info.Day != 2 || info.Bytes != len(second) {
		t.Fatalf("info: %+v err=%v", info, err)
	}

	if err := store.Remove(ctx, "camp"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "camp"); ok {
		t.Fatalf("save still present after remove")
	}
	if _, err := store.Info(ctx, "camp"); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := store.Remove(ctx, "camp"); err != nil {
		t.Fatalf("removing a missing save should be a no-op: %v", err)
	}
}

func TestJournal(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	for _, doc := range []string{`{"day":1}`, `{"day":2}`, `{"day":3}`} {
		if err := store.Set(ctx, "camp", []byte(doc)); err != nil {
			t.Fatalf("set: %v", err)
		}
	}
	if err := store.Set(ctx, "other", []byte(`{"day":9}`)); err != nil {
		t.Fatalf("set other: %v", err)
	}
	if err := store.Remove(ctx, "camp"); err != nil {
		t.Fatalf("remove: %v", err)
	}

	all, err := store.Journal(ctx, 0, 0, "camp", "")
	if err != nil {
		t.Fatalf("journal: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(all))
	}
	if all[0].Type != events.TypeCampaignRemoved || all[1].Day != 3 || all[3].Day != 1 {
		t.Fatalf("unexpected order: %+v", all)
	}
	if all[1].TS != "2024-01-01T00:00:00Z" {
		t.Fatalf("unexpected ts %q", all[1].TS)
	}

	page, err := store.Journal(ctx, 2, all[1].ID, "camp", events.TypeCampaignSaved)
	if err != nil {
		t.Fatalf("journal page: %v", err)
	}
	if len(page) != 2 || page[0].Day != 2 || page[1].Day != 1 {
		t.Fatalf("unexpected page: %+v", page)
	}
}
