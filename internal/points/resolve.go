package points

import "github.com/dukerupert/choreboard/internal/model"

// Quote is the point value offered to one person for one task.
type Quote struct {
	TaskID   string `json:"task_id"`
	Person   string `json:"person,omitempty"`
	Base     int    `json:"base_points"`
	Modifier int    `json:"modifier"`
	Final    int    `json:"final_points"`
}

// FinalPoints floors base+modifier at 1.
func FinalPoints(base, modifier int) int {
	return max(1, base+modifier)
}

// Resolve computes the quote for person. An empty person gets no modifier.
func Resolve(task model.Task, ratings []model.Rating, prefs []model.TaskPreference, person string) Quote {
	base := BasePoints(task.DefaultPoints(), ratings)
	mod := 0
	if person != "" {
		mod = ModifierFor(person, prefs)
	}
	return Quote{
		TaskID:   task.ID,
		Person:   person,
		Base:     base,
		Modifier: mod,
		Final:    FinalPoints(base, mod),
	}
}
