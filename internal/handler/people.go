package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/choreboard/internal/model"
	"github.com/dukerupert/choreboard/internal/store"
)

type PeopleHandler struct {
	peopleStore *store.PersonStore
	logger      *slog.Logger
}

func NewPeopleHandler(ps *store.PersonStore, logger *slog.Logger) *PeopleHandler {
	return &PeopleHandler{peopleStore: ps, logger: logger}
}

func (h *PeopleHandler) List(w http.ResponseWriter, r *http.Request) {
	people, err := h.peopleStore.List()
	if err != nil {
		serverError(w, h.logger, "failed to list people", err)
		return
	}
	if people == nil {
		people = []model.Person{}
	}
	writeJSON(w, http.StatusOK, people)
}

// requirePerson resolves name against the roster and returns the stored
// name, so padded input never creates a second person. It writes 400 for an
// empty name and 404 for a name outside the roster, returning false once the
// response has been written.
func requirePerson(w http.ResponseWriter, ps *store.PersonStore, logger *slog.Logger, name string) (string, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		writeError(w, http.StatusBadRequest, "person is required")
		return "", false
	}
	p, err := ps.GetByName(name)
	if err != nil {
		serverError(w, logger, "failed to get person", err)
		return "", false
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "person not found")
		return "", false
	}
	return p.Name, true
}

// requireTask loads the task or writes 404.
func requireTask(w http.ResponseWriter, ts *store.TaskStore, logger *slog.Logger, id string) (*model.Task, bool) {
	t, err := ts.GetByID(id)
	if err != nil {
		serverError(w, logger, "failed to get task", err)
		return nil, false
	}
	if t == nil {
		writeError(w, http.StatusNotFound, "task not found")
		return nil, false
	}
	return t, true
}
