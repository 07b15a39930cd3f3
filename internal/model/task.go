package model

import "time"

type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Emoji     string    `json:"emoji"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
}

// Uncategorized is the category reported for tasks whose category_id is NULL.
var Uncategorized = Category{
	ID:    "",
	Name:  "Sin categoría",
	Emoji: "📝",
	Color: "#6B7280",
}

// Task is a catalog entry. Category is always set: either the joined row or
// Uncategorized, with Categorized telling the two apart.
type Task struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Points      int       `json:"points"`
	CategoryID  *string   `json:"category_id"`
	Category    Category  `json:"category"`
	Categorized bool      `json:"categorized"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DefaultPoints is the base value used when nobody has rated the task.
func (t Task) DefaultPoints() int {
	return t.Points
}
