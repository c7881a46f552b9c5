package clientstate

import (
	"context"
	"path/filepath"
	"testing"
)

func testDB(t *testing.T) (*DB, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "state.db")
	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, path
}

func TestSchemaCreation(t *testing.T) {
	db, _ := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM client_state`).Scan(&count); err != nil {
		t.Fatalf("client_state table missing: %v", err)
	}
}

func TestGetMissing(t *testing.T) {
	db, _ := testDB(t)
	v, ok, err := db.Get(context.Background(), "nope")
	if err != nil {
		t.Fatal(err)
	}
	if ok || v != "" {
		t.Errorf("Get missing = %q, %v", v, ok)
	}
}

func TestSetOverwrites(t *testing.T) {
	db, _ := testDB(t)
	ctx := context.Background()
	if err := db.Set(ctx, "k", "one"); err != nil {
		t.Fatal(err)
	}
	if err := db.Set(ctx, "k", "two"); err != nil {
		t.Fatal(err)
	}
	v, ok, err := db.Get(ctx, "k")
	if err != nil || !ok || v != "two" {
		t.Errorf("Get = %q, %v, %v", v, ok, err)
	}
}

func TestDirectorySurvivesReopen(t *testing.T) {
	db, path := testDB(t)
	ctx := context.Background()
	if err := SetDirectory(ctx, db, "/home/me/notes"); err != nil {
		t.Fatal(err)
	}
	db.Close()

	reopened, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()

	dir, err := Directory(ctx, reopened)
	if err != nil {
		t.Fatal(err)
	}
	if dir != "/home/me/notes" {
		t.Errorf("dir = %q", dir)
	}
}

func TestMemory(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	if dir, _ := Directory(ctx, m); dir != "" {
		t.Errorf("fresh store dir = %q", dir)
	}
	_ = SetDirectory(ctx, m, "/tmp/x")
	if dir, _ := Directory(ctx, m); dir != "/tmp/x" {
		t.Errorf("dir = %q", dir)
	}
}
