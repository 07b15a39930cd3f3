package store

import (
	"database/sql"
	"testing"

	"github.com/dukerupert/choreboard/internal/database"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// seedCatalog creates a category and two tasks, one of them uncategorized.
func seedCatalog(t *testing.T, db *sql.DB) {
	t.Helper()
	if _, err := NewCategoryStore(db).Create("cocina", "Cocina", "🍳", "#F97316"); err != nil {
		t.Fatalf("create category: %v", err)
	}
	cocina := "cocina"
	ts := NewTaskStore(db)
	if _, err := ts.Create("wash-dishes", "Fregar los platos", "Lavar todos los platos", 25, &cocina); err != nil {
		t.Fatalf("create task: %v", err)
	}
	if _, err := ts.Create("vacuum", "Pasar la aspiradora", "", 25, nil); err != nil {
		t.Fatalf("create task: %v", err)
	}
}

func countRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}
