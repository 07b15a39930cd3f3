package model

import "time"

// CompletedTask is one ledger entry. Points is frozen at completion time;
// only ExtraPoints may change afterwards.
type CompletedTask struct {
	ID          int64     `json:"id"`
	TaskID      string    `json:"task_id"`
	PersonName  string    `json:"person_name"`
	TaskName    string    `json:"task_name"`
	Points      int       `json:"points"`
	ExtraPoints int       `json:"extra_points"`
	CompletedAt time.Time `json:"completed_at"`
}

// Total is the entry's contribution to the scoreboard.
func (c CompletedTask) Total() int {
	return c.Points + c.ExtraPoints
}

// Completion is the input for appending a ledger entry.
type Completion struct {
	TaskID   string `json:"task_id"`
	TaskName string `json:"task_name"`
	Points   int    `json:"points"`
}
