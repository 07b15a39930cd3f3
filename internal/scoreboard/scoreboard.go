package scoreboard

import (
	"math"

	"github.com/dukerupert/choreboard/internal/model"
)

// Standing is one person's line on the scoreboard.
type Standing struct {
	Rank        int    `json:"rank"`
	Person      string `json:"person"`
	Total       int    `json:"total"`
	Completions int    `json:"completions"`
}

// Compute totals the ledger per roster member and ranks them by total,
// highest first. Equal totals share a rank and keep roster order. Every
// roster member appears even without entries. Entries for people outside
// the roster are ignored.
func Compute(roster []string, entries []model.CompletedTask) []Standing {
	standings := make([]Standing, len(roster))
	index := make(map[string]int, len(roster))
	for i, name := range roster {
		standings[i] = Standing{Person: name}
		index[name] = i
	}

	for _, e := range entries {
		i, ok := index[e.PersonName]
		if !ok {
			continue
		}
		standings[i].Total += e.Total()
		standings[i].Completions++
	}

	// Stable insertion sort keeps roster order among equal totals.
	for i := 1; i < len(standings); i++ {
		for j := i; j > 0 && standings[j].Total > standings[j-1].Total; j-- {
			standings[j], standings[j-1] = standings[j-1], standings[j]
		}
	}

	for i := range standings {
		if i > 0 && standings[i].Total == standings[i-1].Total {
			standings[i].Rank = standings[i-1].Rank
		} else {
			standings[i].Rank = i + 1
		}
	}
	return standings
}

// Total returns the score of one person.
func Total(person string, entries []model.CompletedTask) int {
	total := 0
	for _, e := range entries {
		if e.PersonName == person {
			total += e.Total()
		}
	}
	return total
}

const recentLimit = 5

// PersonStats summarizes one person's activity.
type PersonStats struct {
	Person        string                `json:"person"`
	Completed     int                   `json:"completed"`
	TotalPoints   int                   `json:"total_points"`
	AveragePoints float64               `json:"average_points"`
	Recent        []model.CompletedTask `json:"recent"`
}

// ForPerson expects entries newest first, as the ledger lists them.
func ForPerson(person string, entries []model.CompletedTask) PersonStats {
	stats := PersonStats{Person: person, Recent: []model.CompletedTask{}}
	for _, e := range entries {
		if e.PersonName != person {
			continue
		}
		stats.Completed++
		stats.TotalPoints += e.Total()
		if len(stats.Recent) < recentLimit {
			stats.Recent = append(stats.Recent, e)
		}
	}
	if stats.Completed > 0 {
		stats.AveragePoints = round1(float64(stats.TotalPoints) / float64(stats.Completed))
	}
	return stats
}

// CatalogStats summarizes the task catalog.
type CatalogStats struct {
	Tasks         int     `json:"tasks"`
	Categories    int     `json:"categories"`
	AveragePoints float64 `json:"average_points"`
}

// ForCatalog counts distinct categories among categorized tasks only.
func ForCatalog(tasks []model.Task) CatalogStats {
	stats := CatalogStats{Tasks: len(tasks)}
	if len(tasks) == 0 {
		return stats
	}
	seen := make(map[string]bool)
	sum := 0
	for _, t := range tasks {
		sum += t.DefaultPoints()
		if t.Categorized {
			seen[t.Category.ID] = true
		}
	}
	stats.Categories = len(seen)
	stats.AveragePoints = round1(float64(sum) / float64(len(tasks)))
	return stats
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
