// Package seed loads the default household catalog into an empty database.
package seed

import (
	_ "embed"
	"fmt"
	"log/slog"

	"gopkg.in/yaml.v3"

	"github.com/dukerupert/choreboard/internal/store"
)

//go:embed catalog.yaml
var defaultCatalog []byte

type Category struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	Emoji string `yaml:"emoji"`
	Color string `yaml:"color"`
}

type Task struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Points      int    `yaml:"points"`
	Category    string `yaml:"category"`
}

// Catalog is the seed file layout.
type Catalog struct {
	Roster     []string   `yaml:"roster"`
	Categories []Category `yaml:"categories"`
	Tasks      []Task     `yaml:"tasks"`
}

// Default returns the embedded catalog.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Parse decodes a catalog and checks that every task category exists.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	known := make(map[string]bool, len(c.Categories))
	for _, cat := range c.Categories {
		known[cat.ID] = true
	}
	for _, t := range c.Tasks {
		if t.ID == "" || t.Name == "" {
			return nil, fmt.Errorf("catalog task missing id or name")
		}
		if t.Points < 1 {
			return nil, fmt.Errorf("catalog task %s: points must be at least 1", t.ID)
		}
		if t.Category != "" && !known[t.Category] {
			return nil, fmt.Errorf("catalog task %s: unknown category %q", t.ID, t.Category)
		}
	}
	return &c, nil
}

// Result reports what a seed run inserted.
type Result struct {
	People     int
	Categories int
	Tasks      int
}

type Seeder struct {
	people     *store.PersonStore
	categories *store.CategoryStore
	tasks      *store.TaskStore
	logger     *slog.Logger
}

func NewSeeder(people *store.PersonStore, categories *store.CategoryStore, tasks *store.TaskStore, logger *slog.Logger) *Seeder {
	return &Seeder{people: people, categories: categories, tasks: tasks, logger: logger}
}

// Run makes sure the roster exists and, only when the task table is empty,
// inserts the catalog's categories and tasks. A roster passed in overrides
// the catalog's own.
func (s *Seeder) Run(c *Catalog, roster []string) (Result, error) {
	var res Result

	if len(roster) == 0 {
		roster = c.Roster
	}
	before, err := s.people.Names()
	if err != nil {
		return res, err
	}
	if err := s.people.EnsureRoster(roster); err != nil {
		return res, fmt.Errorf("ensure roster: %w", err)
	}
	after, err := s.people.Names()
	if err != nil {
		return res, err
	}
	res.People = len(after) - len(before)

	n, err := s.tasks.Count()
	if err != nil {
		return res, err
	}
	if n > 0 {
		s.logger.Debug("catalog already present, skipping seed", "tasks", n)
		return res, nil
	}

	for _, cat := range c.Categories {
		existing, err := s.categories.GetByID(cat.ID)
		if err != nil {
			return res, err
		}
		if existing != nil {
			continue
		}
		if _, err := s.categories.Create(cat.ID, cat.Name, cat.Emoji, cat.Color); err != nil {
			return res, fmt.Errorf("seed category %s: %w", cat.ID, err)
		}
		res.Categories++
	}

	for _, t := range c.Tasks {
		var categoryID *string
		if t.Category != "" {
			id := t.Category
			categoryID = &id
		}
		if _, err := s.tasks.Create(t.ID, t.Name, t.Description, t.Points, categoryID); err != nil {
			return res, fmt.Errorf("seed task %s: %w", t.ID, err)
		}
		res.Tasks++
	}

	s.logger.Info("catalog seeded", "people", res.People, "categories", res.Categories, "tasks", res.Tasks)
	return res, nil
}
