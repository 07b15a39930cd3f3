package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/choreboard/internal/classify"
	"github.com/dukerupert/choreboard/internal/model"
	"github.com/dukerupert/choreboard/internal/points"
)

type PreferenceStore struct {
	db *sql.DB
}

func NewPreferenceStore(db *sql.DB) *PreferenceStore {
	return &PreferenceStore{db: db}
}

const preferenceCols = `id, task_id, person_name, preference, points_modifier, created_at`

func scanPreference(s scanner) (*model.TaskPreference, error) {
	var p model.TaskPreference
	var pref string
	if err := s.Scan(&p.ID, &p.TaskID, &p.PersonName, &pref, &p.PointsModifier, &p.CreatedAt); err != nil {
		return nil, err
	}
	p.Preference = model.Preference(pref)
	return &p, nil
}

// points_modifier is always written from the enum, never from callers.
const upsertPreference = `INSERT INTO task_preferences (task_id, person_name, preference, points_modifier) VALUES (?, ?, ?, ?)
	ON CONFLICT(task_id, person_name) DO UPDATE SET
		preference = excluded.preference,
		points_modifier = excluded.points_modifier,
		created_at = CURRENT_TIMESTAMP`

func (s *PreferenceStore) Upsert(taskID, personName string, pref model.Preference) (*model.TaskPreference, error) {
	if err := points.ValidatePreference(pref); err != nil {
		return nil, err
	}
	if _, err := s.db.Exec(upsertPreference, taskID, personName, string(pref), pref.Modifier()); err != nil {
		return nil, fmt.Errorf("upsert preference: %w", err)
	}
	return s.Get(taskID, personName)
}

// Delete declassifies the task for the person. Missing rows are not an error.
func (s *PreferenceStore) Delete(taskID, personName string) error {
	_, err := s.db.Exec(`DELETE FROM task_preferences WHERE task_id = ? AND person_name = ?`, taskID, personName)
	if err != nil {
		return fmt.Errorf("delete preference: %w", err)
	}
	return nil
}

// Apply persists a board move. It returns the stored preference, or nil
// when the task was moved back to unassigned.
func (s *PreferenceStore) Apply(c classify.Change) (*model.TaskPreference, error) {
	if c.Delete {
		return nil, s.Delete(c.TaskID, c.Person)
	}
	return s.Upsert(c.TaskID, c.Person, c.Preference)
}

// ReplaceForPerson atomically swaps the person's whole board for byTask.
// Tasks missing from byTask end up unassigned.
func (s *PreferenceStore) ReplaceForPerson(personName string, byTask map[string]model.Preference) error {
	for taskID, pref := range byTask {
		if err := points.ValidatePreference(pref); err != nil {
			return fmt.Errorf("task %s: %w", taskID, err)
		}
	}
	return withTx(s.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM task_preferences WHERE person_name = ?`, personName); err != nil {
			return fmt.Errorf("clear preferences: %w", err)
		}
		for taskID, pref := range byTask {
			if _, err := tx.Exec(upsertPreference, taskID, personName, string(pref), pref.Modifier()); err != nil {
				return fmt.Errorf("insert preference for %s: %w", taskID, err)
			}
		}
		return nil
	})
}

func (s *PreferenceStore) Get(taskID, personName string) (*model.TaskPreference, error) {
	row := s.db.QueryRow(
		`SELECT `+preferenceCols+` FROM task_preferences WHERE task_id = ? AND person_name = ?`,
		taskID, personName,
	)
	p, err := scanPreference(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get preference: %w", err)
	}
	return p, nil
}

func (s *PreferenceStore) ListByPerson(personName string) ([]model.TaskPreference, error) {
	return s.list(`SELECT `+preferenceCols+` FROM task_preferences WHERE person_name = ? ORDER BY task_id ASC`, personName)
}

func (s *PreferenceStore) ListByTask(taskID string) ([]model.TaskPreference, error) {
	return s.list(`SELECT `+preferenceCols+` FROM task_preferences WHERE task_id = ? ORDER BY person_name ASC`, taskID)
}

func (s *PreferenceStore) List() ([]model.TaskPreference, error) {
	return s.list(`SELECT ` + preferenceCols + ` FROM task_preferences ORDER BY task_id ASC, person_name ASC`)
}

func (s *PreferenceStore) list(query string, args ...any) ([]model.TaskPreference, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list preferences: %w", err)
	}
	defer rows.Close()

	var prefs []model.TaskPreference
	for rows.Next() {
		p, err := scanPreference(rows)
		if err != nil {
			return nil, fmt.Errorf("scan preference: %w", err)
		}
		prefs = append(prefs, *p)
	}
	return prefs, rows.Err()
}

// GroupPreferencesByTask indexes preferences by task id.
func GroupPreferencesByTask(prefs []model.TaskPreference) map[string][]model.TaskPreference {
	out := make(map[string][]model.TaskPreference)
	for _, p := range prefs {
		out[p.TaskID] = append(out[p.TaskID], p)
	}
	return out
}
