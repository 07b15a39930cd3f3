package seed

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/dukerupert/choreboard/internal/database"
	"github.com/dukerupert/choreboard/internal/store"
)

func newTestSeeder(t *testing.T) (*Seeder, *store.TaskStore, *store.PersonStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	people := store.NewPersonStore(db)
	tasks := store.NewTaskStore(db)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewSeeder(people, store.NewCategoryStore(db), tasks, logger), tasks, people
}

func TestDefaultCatalog(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("default catalog: %v", err)
	}
	if len(c.Tasks) != 10 {
		t.Errorf("tasks = %d, want 10", len(c.Tasks))
	}
	for _, task := range c.Tasks {
		if task.Points != 25 {
			t.Errorf("task %s points = %d, want 25", task.ID, task.Points)
		}
	}
	if strings.Join(c.Roster, ",") != "Alba,David" {
		t.Errorf("roster = %v, want [Alba David]", c.Roster)
	}
}

func TestParseRejectsUnknownCategory(t *testing.T) {
	data := []byte(`
categories:
  - id: cocina
    name: Cocina
tasks:
  - id: iron
    name: Planchar
    points: 20
    category: plancha
`)
	if _, err := Parse(data); err == nil {
		t.Fatal("expected error for unknown category")
	}
}

func TestParseRejectsZeroPoints(t *testing.T) {
	data := []byte(`
tasks:
  - id: iron
    name: Planchar
    points: 0
`)
	if _, err := Parse(data); err == nil {
		t.Fatal("expected error for zero points")
	}
}

func TestRunSeedsEmptyDatabaseOnce(t *testing.T) {
	s, tasks, people := newTestSeeder(t)
	c, err := Default()
	if err != nil {
		t.Fatalf("default catalog: %v", err)
	}

	res, err := s.Run(c, nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Tasks != 10 || res.Categories != 4 || res.People != 2 {
		t.Errorf("result = %+v, want 10 tasks, 4 categories, 2 people", res)
	}

	task, err := tasks.GetByID("grocery-shopping")
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if !task.Categorized || task.Category.Name != "Compras" {
		t.Errorf("category = %+v, want Compras", task.Category)
	}

	res, err = s.Run(c, nil)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if res.Tasks != 0 || res.People != 0 {
		t.Errorf("second run result = %+v, want nothing inserted", res)
	}
	n, _ := tasks.Count()
	if n != 10 {
		t.Errorf("tasks = %d, want 10", n)
	}

	names, _ := people.Names()
	if strings.Join(names, ",") != "Alba,David" {
		t.Errorf("roster = %v", names)
	}
}

func TestRunRosterOverride(t *testing.T) {
	s, _, people := newTestSeeder(t)
	c, _ := Default()

	if _, err := s.Run(c, []string{"Carmen"}); err != nil {
		t.Fatalf("run: %v", err)
	}
	names, _ := people.Names()
	if len(names) != 1 || names[0] != "Carmen" {
		t.Errorf("roster = %v, want [Carmen]", names)
	}
}
