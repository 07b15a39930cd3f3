// Package classify models the drag-and-drop board on which a person sorts
// catalog tasks into difficulty buckets.
package classify

import (
	"errors"
	"fmt"

	"github.com/dukerupert/choreboard/internal/model"
	"github.com/dukerupert/choreboard/internal/points"
)

// State is where a task sits on a board: Unassigned or one of the five
// preference buckets.
type State string

const Unassigned State = "unassigned"

var ErrUnknownTask = errors.New("task is not on the board")

// ParseState accepts "unassigned" or any preference value.
func ParseState(s string) (State, error) {
	st := State(s)
	if st == Unassigned {
		return st, nil
	}
	if err := points.ValidatePreference(model.Preference(s)); err != nil {
		return "", err
	}
	return st, nil
}

// Change is the persistence action produced by a move.
type Change struct {
	TaskID     string           `json:"task_id"`
	Person     string           `json:"person"`
	Preference model.Preference `json:"preference,omitempty"`
	Delete     bool             `json:"delete"`
}

// Classify turns a drop of taskID onto target into the change to persist:
// an upsert for a bucket, a delete for Unassigned.
func Classify(taskID, person string, target State) (Change, error) {
	if target == Unassigned {
		return Change{TaskID: taskID, Person: person, Delete: true}, nil
	}
	pref := model.Preference(target)
	if err := points.ValidatePreference(pref); err != nil {
		return Change{}, err
	}
	return Change{TaskID: taskID, Person: person, Preference: pref}, nil
}

// Board holds one person's classification of every catalog task.
type Board struct {
	Person string
	order  []string
	tasks  map[string]model.Task
	states map[string]State
}

// NewBoard places every task in the person's bucket for it, or Unassigned.
// Preferences of other people are ignored.
func NewBoard(person string, tasks []model.Task, prefs []model.TaskPreference) *Board {
	b := &Board{
		Person: person,
		order:  make([]string, 0, len(tasks)),
		tasks:  make(map[string]model.Task, len(tasks)),
		states: make(map[string]State, len(tasks)),
	}
	for _, t := range tasks {
		b.order = append(b.order, t.ID)
		b.tasks[t.ID] = t
		b.states[t.ID] = Unassigned
	}
	for _, p := range prefs {
		if p.PersonName != person {
			continue
		}
		if _, ok := b.states[p.TaskID]; ok && p.Preference.Valid() {
			b.states[p.TaskID] = State(p.Preference)
		}
	}
	return b
}

// State returns where taskID currently sits.
func (b *Board) State(taskID string) (State, bool) {
	st, ok := b.states[taskID]
	return st, ok
}

// Move drops taskID onto target and returns the change to persist.
// Moving a task to the state it is already in still yields a change, which
// is idempotent when applied.
func (b *Board) Move(taskID string, target State) (Change, error) {
	if _, ok := b.states[taskID]; !ok {
		return Change{}, fmt.Errorf("%w: %s", ErrUnknownTask, taskID)
	}
	c, err := Classify(taskID, b.Person, target)
	if err != nil {
		return Change{}, err
	}
	b.states[taskID] = target
	return c, nil
}

// Assignments returns the classified tasks only, as stored for the person.
func (b *Board) Assignments() map[string]model.Preference {
	out := make(map[string]model.Preference)
	for id, st := range b.states {
		if st != Unassigned {
			out[id] = model.Preference(st)
		}
	}
	return out
}

// Column is one drop zone with the tasks it holds, in catalog order.
type Column struct {
	State    State        `json:"state"`
	Label    string       `json:"label"`
	Emoji    string       `json:"emoji"`
	Modifier int          `json:"modifier"`
	Tasks    []model.Task `json:"tasks"`
}

// Columns lists the Unassigned column followed by the five buckets.
func (b *Board) Columns() []Column {
	cols := make([]Column, 0, len(model.Buckets)+1)
	cols = append(cols, Column{State: Unassigned, Label: "Sin clasificar", Emoji: "📋", Tasks: []model.Task{}})
	for _, bk := range model.Buckets {
		cols = append(cols, Column{
			State:    State(bk.Value),
			Label:    bk.Label,
			Emoji:    bk.Emoji,
			Modifier: bk.Modifier,
			Tasks:    []model.Task{},
		})
	}

	pos := make(map[State]int, len(cols))
	for i, c := range cols {
		pos[c.State] = i
	}
	for _, id := range b.order {
		i := pos[b.states[id]]
		cols[i].Tasks = append(cols[i].Tasks, b.tasks[id])
	}
	return cols
}
