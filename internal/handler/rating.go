package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/choreboard/internal/points"
	"github.com/dukerupert/choreboard/internal/store"
	"github.com/dukerupert/choreboard/internal/websocket"
)

type RatingHandler struct {
	taskStore   *store.TaskStore
	ratingStore *store.RatingStore
	peopleStore *store.PersonStore
	hub         *websocket.Hub
	logger      *slog.Logger
}

func NewRatingHandler(ts *store.TaskStore, rs *store.RatingStore, ps *store.PersonStore, hub *websocket.Hub, logger *slog.Logger) *RatingHandler {
	return &RatingHandler{taskStore: ts, ratingStore: rs, peopleStore: ps, hub: hub, logger: logger}
}

func (h *RatingHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

// Rate stores one person's effort rating for a task, replacing any earlier
// rating by the same person.
func (h *RatingHandler) Rate(w http.ResponseWriter, r *http.Request) {
	task, ok := requireTask(w, h.taskStore, h.logger, r.PathValue("id"))
	if !ok {
		return
	}

	var req struct {
		Person string `json:"person"`
		Points int    `json:"points"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	name, ok := requirePerson(w, h.peopleStore, h.logger, req.Person)
	if !ok {
		return
	}
	req.Person = name
	if err := points.ValidateRating(req.Points); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	rating, err := h.ratingStore.Upsert(task.ID, req.Person, req.Points)
	if err != nil {
		writeStoreError(w, h.logger, "failed to save rating", err)
		return
	}
	ratings, err := h.ratingStore.ListByTask(task.ID)
	if err != nil {
		serverError(w, h.logger, "failed to list ratings", err)
		return
	}

	base := points.BasePoints(task.DefaultPoints(), ratings)
	h.broadcast(websocket.NewMessage(websocket.EntityRating, websocket.ActionUpdated, task.ID,
		map[string]any{"base_points": base}).ForPerson(req.Person))
	writeOK(w, http.StatusOK, map[string]any{"rating": rating, "base_points": base})
}

// RateMany stores a person's ratings for several tasks at once. Either all
// are saved or none.
func (h *RatingHandler) RateMany(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Person  string         `json:"person"`
		Ratings map[string]int `json:"ratings"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	name, ok := requirePerson(w, h.peopleStore, h.logger, req.Person)
	if !ok {
		return
	}
	req.Person = name
	if len(req.Ratings) == 0 {
		writeError(w, http.StatusBadRequest, "ratings are required")
		return
	}
	for taskID := range req.Ratings {
		if _, ok := requireTask(w, h.taskStore, h.logger, taskID); !ok {
			return
		}
	}

	if err := h.ratingStore.UpsertMany(req.Person, req.Ratings); err != nil {
		writeStoreError(w, h.logger, "failed to save ratings", err)
		return
	}

	h.broadcast(websocket.NewMessage(websocket.EntityRating, websocket.ActionUpdated, "", nil).ForPerson(req.Person))
	writeOK(w, http.StatusOK, map[string]any{"count": len(req.Ratings)})
}
