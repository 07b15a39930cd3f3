package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/choreboard/internal/model"
	"github.com/dukerupert/choreboard/internal/points"
	"github.com/dukerupert/choreboard/internal/scoreboard"
	"github.com/dukerupert/choreboard/internal/store"
)

// BoardHandler serves the read-side views: full state, scoreboard and stats.
// Totals are computed from the ledger on every request.
type BoardHandler struct {
	taskStore       *store.TaskStore
	ratingStore     *store.RatingStore
	preferenceStore *store.PreferenceStore
	ledgerStore     *store.LedgerStore
	peopleStore     *store.PersonStore
	logger          *slog.Logger
}

func NewBoardHandler(ts *store.TaskStore, rs *store.RatingStore, prs *store.PreferenceStore, ls *store.LedgerStore, ps *store.PersonStore, logger *slog.Logger) *BoardHandler {
	return &BoardHandler{
		taskStore:       ts,
		ratingStore:     rs,
		preferenceStore: prs,
		ledgerStore:     ls,
		peopleStore:     ps,
		logger:          logger,
	}
}

type personView struct {
	model.Person
	Total int `json:"total"`
}

type taskView struct {
	model.Task
	BasePoints     int `json:"base_points"`
	Modifier       int `json:"modifier"`
	FinalPoints    int `json:"final_points"`
	PreferencesSum int `json:"preferences_sum"`
	RatingsCount   int `json:"ratings_count"`
}

// State returns people with totals, tasks with resolved points and the
// ledger. With ?person= the task points are personalized.
func (h *BoardHandler) State(w http.ResponseWriter, r *http.Request) {
	person := personParam(r)
	if person != "" {
		name, ok := requirePerson(w, h.peopleStore, h.logger, person)
		if !ok {
			return
		}
		person = name
	}

	people, err := h.peopleStore.List()
	if err != nil {
		serverError(w, h.logger, "failed to list people", err)
		return
	}
	tasks, err := h.taskStore.List()
	if err != nil {
		serverError(w, h.logger, "failed to list tasks", err)
		return
	}
	ratings, err := h.ratingStore.List()
	if err != nil {
		serverError(w, h.logger, "failed to list ratings", err)
		return
	}
	prefs, err := h.preferenceStore.List()
	if err != nil {
		serverError(w, h.logger, "failed to list preferences", err)
		return
	}
	entries, err := h.ledgerStore.List()
	if err != nil {
		serverError(w, h.logger, "failed to list completed tasks", err)
		return
	}

	peopleOut := make([]personView, 0, len(people))
	for _, p := range people {
		peopleOut = append(peopleOut, personView{Person: p, Total: scoreboard.Total(p.Name, entries)})
	}

	ratingsByTask := store.GroupByTask(ratings)
	prefsByTask := store.GroupPreferencesByTask(prefs)
	tasksOut := make([]taskView, 0, len(tasks))
	for _, t := range tasks {
		q := points.Resolve(t, ratingsByTask[t.ID], prefsByTask[t.ID], person)
		tasksOut = append(tasksOut, taskView{
			Task:           t,
			BasePoints:     q.Base,
			Modifier:       q.Modifier,
			FinalPoints:    q.Final,
			PreferencesSum: points.PreferencesSum(prefsByTask[t.ID]),
			RatingsCount:   len(ratingsByTask[t.ID]),
		})
	}

	if entries == nil {
		entries = []model.CompletedTask{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"people":          peopleOut,
		"tasks":           tasksOut,
		"completed_tasks": entries,
	})
}

func (h *BoardHandler) Scoreboard(w http.ResponseWriter, r *http.Request) {
	roster, err := h.peopleStore.Names()
	if err != nil {
		serverError(w, h.logger, "failed to list people", err)
		return
	}
	entries, err := h.ledgerStore.List()
	if err != nil {
		serverError(w, h.logger, "failed to list completed tasks", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"standings": scoreboard.Compute(roster, entries)})
}

func (h *BoardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	roster, err := h.peopleStore.Names()
	if err != nil {
		serverError(w, h.logger, "failed to list people", err)
		return
	}
	tasks, err := h.taskStore.List()
	if err != nil {
		serverError(w, h.logger, "failed to list tasks", err)
		return
	}
	entries, err := h.ledgerStore.List()
	if err != nil {
		serverError(w, h.logger, "failed to list completed tasks", err)
		return
	}

	people := make([]scoreboard.PersonStats, 0, len(roster))
	for _, name := range roster {
		people = append(people, scoreboard.ForPerson(name, entries))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"people":  people,
		"catalog": scoreboard.ForCatalog(tasks),
	})
}
