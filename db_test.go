package main

import (
	"database/sql"
	"testing"
	"testing/fstest"

	"github.com/robalobadob/wordle/apps/activity-server/assets"
)

func memDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := memDB(t)
	for i := 0; i < 2; i++ {
		if err := migrate(db, assets.Migrations); err != nil {
			t.Fatalf("migrate run %d: %v", i+1, err)
		}
	}
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM _migrations`).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("_migrations rows = %d, want 1", n)
	}
	if _, err := db.Exec(`INSERT INTO kv(key, value) VALUES ('k', x'00')`); err != nil {
		t.Fatalf("kv table missing: %v", err)
	}
}

func TestMigrateRollsBackBadFile(t *testing.T) {
	db := memDB(t)
	fsys := fstest.MapFS{
		"sql/001_ok.sql":  {Data: []byte(`CREATE TABLE a (id INTEGER);`)},
		"sql/002_bad.sql": {Data: []byte(`CREATE TABLE b (id INTEGER); NOT SQL;`)},
	}
	if err := migrate(db, fsys); err == nil {
		t.Fatal("expected an error from the broken migration")
	}
	var n int
	_ = db.QueryRow(`SELECT COUNT(*) FROM _migrations`).Scan(&n)
	if n != 1 {
		t.Fatalf("_migrations rows = %d, want 1", n)
	}
}
