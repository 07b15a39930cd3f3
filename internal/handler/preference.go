package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/choreboard/internal/classify"
	"github.com/dukerupert/choreboard/internal/model"
	"github.com/dukerupert/choreboard/internal/store"
	"github.com/dukerupert/choreboard/internal/websocket"
)

type PreferenceHandler struct {
	taskStore       *store.TaskStore
	preferenceStore *store.PreferenceStore
	peopleStore     *store.PersonStore
	hub             *websocket.Hub
	logger          *slog.Logger
}

func NewPreferenceHandler(ts *store.TaskStore, prs *store.PreferenceStore, ps *store.PersonStore, hub *websocket.Hub, logger *slog.Logger) *PreferenceHandler {
	return &PreferenceHandler{taskStore: ts, preferenceStore: prs, peopleStore: ps, hub: hub, logger: logger}
}

func (h *PreferenceHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

func (h *PreferenceHandler) Buckets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, model.Buckets)
}

func (h *PreferenceHandler) loadBoard(person string) (*classify.Board, error) {
	tasks, err := h.taskStore.List()
	if err != nil {
		return nil, err
	}
	prefs, err := h.preferenceStore.ListByPerson(person)
	if err != nil {
		return nil, err
	}
	return classify.NewBoard(person, tasks, prefs), nil
}

// Board returns the person's classification board as columns.
func (h *PreferenceHandler) Board(w http.ResponseWriter, r *http.Request) {
	person := personParam(r)
	name, ok := requirePerson(w, h.peopleStore, h.logger, person)
	if !ok {
		return
	}
	person = name
	b, err := h.loadBoard(person)
	if err != nil {
		serverError(w, h.logger, "failed to load board", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"person":  person,
		"columns": b.Columns(),
	})
}

// Classify moves one task on the person's board. state is a bucket value or
// "unassigned".
func (h *PreferenceHandler) Classify(w http.ResponseWriter, r *http.Request) {
	taskID := r.PathValue("task_id")
	var req struct {
		Person string `json:"person"`
		State  string `json:"state"`
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
	if _, ok := requireTask(w, h.taskStore, h.logger, taskID); !ok {
		return
	}
	target, err := classify.ParseState(req.State)
	if err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	change, err := classify.Classify(taskID, req.Person, target)
	if err != nil {
		writeStoreError(w, h.logger, "failed to classify task", err)
		return
	}
	pref, err := h.preferenceStore.Apply(change)
	if err != nil {
		writeStoreError(w, h.logger, "failed to save preference", err)
		return
	}

	action := websocket.ActionUpdated
	if change.Delete {
		action = websocket.ActionDeleted
	}
	h.broadcast(websocket.NewMessage(websocket.EntityPreference, action, taskID, nil).ForPerson(req.Person))
	writeOK(w, http.StatusOK, map[string]any{"change": change, "preference": pref})
}

// SaveBoard replaces the person's whole board in one transaction. Tasks
// missing from the request become unassigned.
func (h *PreferenceHandler) SaveBoard(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Person      string            `json:"person"`
		Preferences map[string]string `json:"preferences"`
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

	tasks, err := h.taskStore.List()
	if err != nil {
		serverError(w, h.logger, "failed to list tasks", err)
		return
	}
	// Start from an empty board so unnamed tasks end up unassigned.
	b := classify.NewBoard(req.Person, tasks, nil)
	for taskID, value := range req.Preferences {
		target, err := classify.ParseState(value)
		if err != nil {
			writeError(w, http.StatusBadRequest, validationMessage(err))
			return
		}
		if _, err := b.Move(taskID, target); err != nil {
			writeError(w, http.StatusNotFound, "task not found: "+taskID)
			return
		}
	}

	assignments := b.Assignments()
	if err := h.preferenceStore.ReplaceForPerson(req.Person, assignments); err != nil {
		writeStoreError(w, h.logger, "failed to save board", err)
		return
	}

	h.broadcast(websocket.NewMessage(websocket.EntityPreference, websocket.ActionUpdated, "", nil).ForPerson(req.Person))
	writeOK(w, http.StatusOK, map[string]any{"count": len(assignments), "columns": b.Columns()})
}
