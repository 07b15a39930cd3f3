package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dukerupert/choreboard/internal/model"
	"github.com/dukerupert/choreboard/internal/points"
)

var (
	ErrMissingIdentifier = errors.New("person, task id and task name are required")
	ErrInvalidPoints     = errors.New("points must be at least 1")
)

// LedgerStore is the append-only record of completed tasks.
type LedgerStore struct {
	db *sql.DB
}

func NewLedgerStore(db *sql.DB) *LedgerStore {
	return &LedgerStore{db: db}
}

const completedCols = `id, task_id, person_name, task_name, points, extra_points, completed_at`

func scanCompleted(s scanner) (*model.CompletedTask, error) {
	var c model.CompletedTask
	err := s.Scan(&c.ID, &c.TaskID, &c.PersonName, &c.TaskName, &c.Points, &c.ExtraPoints, &c.CompletedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func validateCompletion(personName string, c model.Completion) error {
	if strings.TrimSpace(personName) == "" || strings.TrimSpace(c.TaskID) == "" || strings.TrimSpace(c.TaskName) == "" {
		return ErrMissingIdentifier
	}
	if c.Points < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidPoints, c.Points)
	}
	return nil
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func insertCompleted(e execer, personName string, c model.Completion) (int64, error) {
	result, err := e.Exec(
		`INSERT INTO completed_tasks (task_id, person_name, task_name, points) VALUES (?, ?, ?, ?)`,
		c.TaskID, personName, c.TaskName, c.Points,
	)
	if err != nil {
		return 0, fmt.Errorf("insert completed task: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// Complete appends one entry with extra_points = 0. Repeated completions of
// the same task are independent entries.
func (s *LedgerStore) Complete(personName, taskID, taskName string, p int) (*model.CompletedTask, error) {
	c := model.Completion{TaskID: taskID, TaskName: taskName, Points: p}
	if err := validateCompletion(personName, c); err != nil {
		return nil, err
	}
	id, err := insertCompleted(s.db, personName, c)
	if err != nil {
		return nil, err
	}
	return s.GetByID(id)
}

// CompleteMany appends one entry per completion in a single transaction:
// either every entry is written or none is.
func (s *LedgerStore) CompleteMany(personName string, completions []model.Completion) ([]model.CompletedTask, error) {
	for _, c := range completions {
		if err := validateCompletion(personName, c); err != nil {
			return nil, err
		}
	}

	var ids []int64
	err := withTx(s.db, func(tx *sql.Tx) error {
		for _, c := range completions {
			id, err := insertCompleted(tx, personName, c)
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]model.CompletedTask, 0, len(ids))
	for _, id := range ids {
		c, err := s.GetByID(id)
		if err != nil {
			return nil, err
		}
		if c != nil {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (s *LedgerStore) GetByID(id int64) (*model.CompletedTask, error) {
	row := s.db.QueryRow(`SELECT `+completedCols+` FROM completed_tasks WHERE id = ?`, id)
	c, err := scanCompleted(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get completed task: %w", err)
	}
	return c, nil
}

// List returns every entry, newest first.
func (s *LedgerStore) List() ([]model.CompletedTask, error) {
	return s.list(`SELECT ` + completedCols + ` FROM completed_tasks ORDER BY completed_at DESC, id DESC`)
}

func (s *LedgerStore) ListByPerson(personName string) ([]model.CompletedTask, error) {
	return s.list(
		`SELECT `+completedCols+` FROM completed_tasks WHERE person_name = ? ORDER BY completed_at DESC, id DESC`,
		personName,
	)
}

func (s *LedgerStore) list(query string, args ...any) ([]model.CompletedTask, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list completed tasks: %w", err)
	}
	defer rows.Close()

	var entries []model.CompletedTask
	for rows.Next() {
		c, err := scanCompleted(rows)
		if err != nil {
			return nil, fmt.Errorf("scan completed task: %w", err)
		}
		entries = append(entries, *c)
	}
	return entries, rows.Err()
}

// SetExtraPoints overwrites the adjustment of one entry. It returns nil, nil
// when the entry does not exist.
func (s *LedgerStore) SetExtraPoints(id int64, extra int) (*model.CompletedTask, error) {
	if err := points.ValidateExtraPoints(extra); err != nil {
		return nil, err
	}
	result, err := s.db.Exec(`UPDATE completed_tasks SET extra_points = ? WHERE id = ?`, extra, id)
	if err != nil {
		return nil, fmt.Errorf("update extra points: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return nil, nil
	}
	return s.GetByID(id)
}

func (s *LedgerStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM completed_tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete completed task: %w", err)
	}
	return nil
}

// ResetResult reports how many rows a reset removed.
type ResetResult struct {
	Completions int64 `json:"completions"`
	Ratings     int64 `json:"ratings"`
}

// Reset deletes every ledger entry and every rating in one transaction.
// Catalog, people and preferences are kept.
func (s *LedgerStore) Reset() (ResetResult, error) {
	var res ResetResult
	err := withTx(s.db, func(tx *sql.Tx) error {
		r, err := tx.Exec(`DELETE FROM completed_tasks`)
		if err != nil {
			return fmt.Errorf("delete completed tasks: %w", err)
		}
		res.Completions, _ = r.RowsAffected()

		r, err = tx.Exec(`DELETE FROM task_ratings`)
		if err != nil {
			return fmt.Errorf("delete ratings: %w", err)
		}
		res.Ratings, _ = r.RowsAffected()
		return nil
	})
	return res, err
}
