package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/choreboard/internal/model"
)

type TaskStore struct {
	db *sql.DB
}

func NewTaskStore(db *sql.DB) *TaskStore {
	return &TaskStore{db: db}
}

const taskSelect = `SELECT t.id, t.name, t.description, t.points, t.category_id, t.created_at, t.updated_at,
	c.name, c.emoji, c.color, c.created_at
	FROM tasks t LEFT JOIN categories c ON c.id = t.category_id`

// scanTask resolves the category once: a joined row yields Categorized,
// a NULL or dangling category_id yields model.Uncategorized.
func scanTask(s scanner) (*model.Task, error) {
	var t model.Task
	var categoryID, catName, catEmoji, catColor sql.NullString
	var catCreated sql.NullTime

	err := s.Scan(
		&t.ID, &t.Name, &t.Description, &t.Points, &categoryID, &t.CreatedAt, &t.UpdatedAt,
		&catName, &catEmoji, &catColor, &catCreated,
	)
	if err != nil {
		return nil, err
	}

	if categoryID.Valid && catName.Valid {
		t.CategoryID = &categoryID.String
		t.Category = model.Category{
			ID:        categoryID.String,
			Name:      catName.String,
			Emoji:     catEmoji.String,
			Color:     catColor.String,
			CreatedAt: catCreated.Time,
		}
		t.Categorized = true
	} else {
		t.Category = model.Uncategorized
	}
	return &t, nil
}

func nullString(s *string) sql.NullString {
	if s == nil || *s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func (s *TaskStore) List() ([]model.Task, error) {
	rows, err := s.db.Query(taskSelect + ` ORDER BY c.name IS NULL, c.name ASC, t.name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

func (s *TaskStore) GetByID(id string) (*model.Task, error) {
	row := s.db.QueryRow(taskSelect+` WHERE t.id = ?`, id)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

func (s *TaskStore) Create(id, name, description string, points int, categoryID *string) (*model.Task, error) {
	_, err := s.db.Exec(
		`INSERT INTO tasks (id, name, description, points, category_id) VALUES (?, ?, ?, ?, ?)`,
		id, name, description, points, nullString(categoryID),
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	return s.GetByID(id)
}

func (s *TaskStore) Update(id, name, description string, points int, categoryID *string) (*model.Task, error) {
	_, err := s.db.Exec(
		`UPDATE tasks SET name = ?, description = ?, points = ?, category_id = ? WHERE id = ?`,
		name, description, points, nullString(categoryID), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return s.GetByID(id)
}

// Delete removes the task with its ratings and preferences. Ledger entries
// keep their denormalized task name.
func (s *TaskStore) Delete(id string) error {
	_, err := s.db.Exec(`DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

func (s *TaskStore) Count() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM tasks`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count tasks: %w", err)
	}
	return n, nil
}
