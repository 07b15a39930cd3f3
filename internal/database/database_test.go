package database

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestOpenMemoryRunsMigrations(t *testing.T) {
	db, err := Open(MemoryPath)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	for _, table := range []string{"people", "categories", "tasks", "task_ratings", "task_preferences", "completed_tasks", "ledger_archives"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		if err != nil {
			t.Errorf("table %s missing: %v", table, err)
		}
	}

	v, err := SchemaVersion(db)
	if err != nil {
		t.Fatalf("schema version: %v", err)
	}
	if v != 2 {
		t.Errorf("schema version = %d, want 2", v)
	}
}

func TestTaskUpdateTouchesUpdatedAt(t *testing.T) {
	db, err := Open(MemoryPath)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	_, err = db.Exec(`INSERT INTO tasks (id, name, points, created_at, updated_at)
		VALUES ('vacuum', 'Pasar la aspiradora', 25, '2020-01-01 00:00:00', '2020-01-01 00:00:00')`)
	if err != nil {
		t.Fatalf("insert task: %v", err)
	}
	if _, err := db.Exec(`UPDATE tasks SET points = 30 WHERE id = 'vacuum'`); err != nil {
		t.Fatalf("update task: %v", err)
	}

	var updated time.Time
	if err := db.QueryRow(`SELECT updated_at FROM tasks WHERE id = 'vacuum'`).Scan(&updated); err != nil {
		t.Fatalf("read updated_at: %v", err)
	}
	if !updated.After(time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("updated_at = %v, want refreshed by trigger", updated)
	}
}

func TestForeignKeysEnforced(t *testing.T) {
	db, err := Open(MemoryPath)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	_, err = db.Exec(`INSERT INTO task_ratings (task_id, person_name, points) VALUES ('ghost', 'Alba', 10)`)
	if err == nil {
		t.Fatal("rating for a missing task should violate the foreign key")
	}
	if !strings.Contains(strings.ToLower(err.Error()), "foreign key") {
		t.Errorf("err = %v, want foreign key violation", err)
	}
}

func TestReopenFileIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "choreboard.db")

	db, err := Open(path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO people (name) VALUES ('Alba')`); err != nil {
		t.Fatalf("insert person: %v", err)
	}
	db.Close()

	db, err = Open(path)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	defer db.Close()

	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM people`).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Errorf("people = %d, want 1 after reopening", n)
	}
}

func TestDSN(t *testing.T) {
	if got := dsn(MemoryPath); got != "file::memory:?_pragma=foreign_keys(1)" {
		t.Errorf("memory dsn = %q", got)
	}
	got := dsn("choreboard.db")
	for _, p := range filePragmas {
		if !strings.Contains(got, "_pragma="+p) {
			t.Errorf("dsn %q missing %s", got, p)
		}
	}
}
