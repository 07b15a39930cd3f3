package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/choreboard/internal/model"
)

var personPalette = []string{"#EC4899", "#3B82F6", "#10B981", "#F59E0B", "#8B5CF6", "#EF4444"}

type PersonStore struct {
	db *sql.DB
}

func NewPersonStore(db *sql.DB) *PersonStore {
	return &PersonStore{db: db}
}

const personCols = `name, color, avatar_emoji, sort_order, created_at`

func scanPerson(s scanner) (*model.Person, error) {
	var p model.Person
	if err := s.Scan(&p.Name, &p.Color, &p.AvatarEmoji, &p.SortOrder, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// EnsureRoster inserts any roster names that are missing, keeping the
// roster order as sort order. Existing people are left untouched.
func (s *PersonStore) EnsureRoster(names []string) error {
	return withTx(s.db, func(tx *sql.Tx) error {
		for i, name := range names {
			_, err := tx.Exec(
				`INSERT INTO people (name, color, sort_order) VALUES (?, ?, ?) ON CONFLICT(name) DO NOTHING`,
				name, personPalette[i%len(personPalette)], i,
			)
			if err != nil {
				return fmt.Errorf("insert person %q: %w", name, err)
			}
		}
		return nil
	})
}

func (s *PersonStore) List() ([]model.Person, error) {
	rows, err := s.db.Query(`SELECT ` + personCols + ` FROM people ORDER BY sort_order ASC, name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list people: %w", err)
	}
	defer rows.Close()

	var people []model.Person
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, fmt.Errorf("scan person: %w", err)
		}
		people = append(people, *p)
	}
	return people, rows.Err()
}

func (s *PersonStore) GetByName(name string) (*model.Person, error) {
	row := s.db.QueryRow(`SELECT `+personCols+` FROM people WHERE name = ?`, name)
	p, err := scanPerson(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get person: %w", err)
	}
	return p, nil
}

// Names returns the roster in display order.
func (s *PersonStore) Names() ([]string, error) {
	people, err := s.List()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(people))
	for _, p := range people {
		names = append(names, p.Name)
	}
	return names, nil
}
