package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/choreboard/internal/model"
	"github.com/dukerupert/choreboard/internal/points"
)

type RatingStore struct {
	db *sql.DB
}

func NewRatingStore(db *sql.DB) *RatingStore {
	return &RatingStore{db: db}
}

const ratingCols = `id, task_id, person_name, points, created_at`

func scanRating(s scanner) (*model.Rating, error) {
	var r model.Rating
	if err := s.Scan(&r.ID, &r.TaskID, &r.PersonName, &r.Points, &r.CreatedAt); err != nil {
		return nil, err
	}
	return &r, nil
}

const upsertRating = `INSERT INTO task_ratings (task_id, person_name, points) VALUES (?, ?, ?)
	ON CONFLICT(task_id, person_name) DO UPDATE SET points = excluded.points, created_at = CURRENT_TIMESTAMP`

// Upsert stores person's rating for the task, replacing any earlier one.
func (s *RatingStore) Upsert(taskID, personName string, p int) (*model.Rating, error) {
	if err := points.ValidateRating(p); err != nil {
		return nil, err
	}
	if _, err := s.db.Exec(upsertRating, taskID, personName, p); err != nil {
		return nil, fmt.Errorf("upsert rating: %w", err)
	}
	return s.Get(taskID, personName)
}

// UpsertMany stores several ratings from one person atomically. Every value
// is validated before anything is written.
func (s *RatingStore) UpsertMany(personName string, byTask map[string]int) error {
	for taskID, p := range byTask {
		if err := points.ValidateRating(p); err != nil {
			return fmt.Errorf("task %s: %w", taskID, err)
		}
	}
	return withTx(s.db, func(tx *sql.Tx) error {
		for taskID, p := range byTask {
			if _, err := tx.Exec(upsertRating, taskID, personName, p); err != nil {
				return fmt.Errorf("upsert rating for %s: %w", taskID, err)
			}
		}
		return nil
	})
}

func (s *RatingStore) Get(taskID, personName string) (*model.Rating, error) {
	row := s.db.QueryRow(
		`SELECT `+ratingCols+` FROM task_ratings WHERE task_id = ? AND person_name = ?`,
		taskID, personName,
	)
	r, err := scanRating(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get rating: %w", err)
	}
	return r, nil
}

func (s *RatingStore) ListByTask(taskID string) ([]model.Rating, error) {
	return s.list(`SELECT `+ratingCols+` FROM task_ratings WHERE task_id = ? ORDER BY person_name ASC`, taskID)
}

func (s *RatingStore) List() ([]model.Rating, error) {
	return s.list(`SELECT ` + ratingCols + ` FROM task_ratings ORDER BY task_id ASC, person_name ASC`)
}

func (s *RatingStore) list(query string, args ...any) ([]model.Rating, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}
	defer rows.Close()

	var ratings []model.Rating
	for rows.Next() {
		r, err := scanRating(rows)
		if err != nil {
			return nil, fmt.Errorf("scan rating: %w", err)
		}
		ratings = append(ratings, *r)
	}
	return ratings, rows.Err()
}

// GroupByTask indexes ratings by task id.
func GroupByTask(ratings []model.Rating) map[string][]model.Rating {
	out := make(map[string][]model.Rating)
	for _, r := range ratings {
		out[r.TaskID] = append(out[r.TaskID], r)
	}
	return out
}
