package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dukerupert/choreboard/internal/model"
	"github.com/dukerupert/choreboard/internal/points"
	"github.com/dukerupert/choreboard/internal/scoreboard"
	"github.com/dukerupert/choreboard/internal/store"
	"github.com/dukerupert/choreboard/internal/websocket"
)

// Archiver saves the ledger somewhere safe before a reset.
type Archiver interface {
	Enabled() bool
	Archive(ctx context.Context) (*model.LedgerArchive, error)
}

type LedgerHandler struct {
	taskStore       *store.TaskStore
	ratingStore     *store.RatingStore
	preferenceStore *store.PreferenceStore
	ledgerStore     *store.LedgerStore
	peopleStore     *store.PersonStore
	archiver        Archiver
	hub             *websocket.Hub
	logger          *slog.Logger
}

func NewLedgerHandler(ts *store.TaskStore, rs *store.RatingStore, prs *store.PreferenceStore, ls *store.LedgerStore, ps *store.PersonStore, archiver Archiver, hub *websocket.Hub, logger *slog.Logger) *LedgerHandler {
	return &LedgerHandler{
		taskStore:       ts,
		ratingStore:     rs,
		preferenceStore: prs,
		ledgerStore:     ls,
		peopleStore:     ps,
		archiver:        archiver,
		hub:             hub,
		logger:          logger,
	}
}

func (h *LedgerHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

type completionItem struct {
	TaskID string `json:"task_id"`
	// Points overrides the resolved value when set.
	Points *int `json:"points"`
}

// resolveCompletion turns a request item into a ledger row, freezing the
// person's resolved points unless the client sent its own.
func (h *LedgerHandler) resolveCompletion(w http.ResponseWriter, person string, item completionItem) (model.Completion, bool) {
	task, ok := requireTask(w, h.taskStore, h.logger, item.TaskID)
	if !ok {
		return model.Completion{}, false
	}
	c := model.Completion{TaskID: task.ID, TaskName: task.Name}
	if item.Points != nil {
		c.Points = *item.Points
		return c, true
	}
	q, err := quote(h.ratingStore, h.preferenceStore, *task, person)
	if err != nil {
		serverError(w, h.logger, "failed to resolve points", err)
		return model.Completion{}, false
	}
	c.Points = q.Final
	return c, true
}

func (h *LedgerHandler) personTotal(person string) (int, error) {
	entries, err := h.ledgerStore.ListByPerson(person)
	if err != nil {
		return 0, err
	}
	return scoreboard.Total(person, entries), nil
}

func (h *LedgerHandler) List(w http.ResponseWriter, r *http.Request) {
	var (
		entries []model.CompletedTask
		err     error
	)
	if person := personParam(r); person != "" {
		entries, err = h.ledgerStore.ListByPerson(person)
	} else {
		entries, err = h.ledgerStore.List()
	}
	if err != nil {
		serverError(w, h.logger, "failed to list completed tasks", err)
		return
	}
	if entries == nil {
		entries = []model.CompletedTask{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *LedgerHandler) Complete(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Person string `json:"person"`
		completionItem
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
	c, ok := h.resolveCompletion(w, req.Person, req.completionItem)
	if !ok {
		return
	}

	entry, err := h.ledgerStore.Complete(req.Person, c.TaskID, c.TaskName, c.Points)
	if err != nil {
		writeStoreError(w, h.logger, "failed to complete task", err)
		return
	}
	total, err := h.personTotal(req.Person)
	if err != nil {
		serverError(w, h.logger, "failed to compute total", err)
		return
	}

	h.broadcast(websocket.NewMessage(websocket.EntityCompletion, websocket.ActionCreated, strconv.FormatInt(entry.ID, 10),
		map[string]any{"points": entry.Points, "total": total}).ForPerson(req.Person))
	writeOK(w, http.StatusCreated, map[string]any{"completion": entry, "total": total})
}

// CompleteMany records several completions for one person. Either all are
// recorded or none.
func (h *LedgerHandler) CompleteMany(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Person string           `json:"person"`
		Tasks  []completionItem `json:"tasks"`
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
	if len(req.Tasks) == 0 {
		writeError(w, http.StatusBadRequest, "tasks are required")
		return
	}

	completions := make([]model.Completion, 0, len(req.Tasks))
	for _, item := range req.Tasks {
		c, ok := h.resolveCompletion(w, req.Person, item)
		if !ok {
			return
		}
		completions = append(completions, c)
	}

	entries, err := h.ledgerStore.CompleteMany(req.Person, completions)
	if err != nil {
		writeStoreError(w, h.logger, "failed to complete tasks", err)
		return
	}
	total, err := h.personTotal(req.Person)
	if err != nil {
		serverError(w, h.logger, "failed to compute total", err)
		return
	}

	h.broadcast(websocket.NewMessage(websocket.EntityCompletion, websocket.ActionCreated, "",
		map[string]any{"count": len(entries), "total": total}).ForPerson(req.Person))
	writeOK(w, http.StatusCreated, map[string]any{"completions": entries, "total": total})
}

func (h *LedgerHandler) SetExtraPoints(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var req struct {
		ExtraPoints *int `json:"extra_points"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.ExtraPoints == nil {
		writeError(w, http.StatusBadRequest, "extra_points is required")
		return
	}

	entry, err := h.ledgerStore.SetExtraPoints(id, *req.ExtraPoints)
	if err != nil {
		writeStoreError(w, h.logger, "failed to update extra points", err)
		return
	}
	if entry == nil {
		writeError(w, http.StatusNotFound, "completed task not found")
		return
	}

	h.broadcast(websocket.NewMessage(websocket.EntityCompletion, websocket.ActionUpdated, strconv.FormatInt(id, 10),
		map[string]any{"extra_points": entry.ExtraPoints}).ForPerson(entry.PersonName))
	writeOK(w, http.StatusOK, map[string]any{
		"completion": entry,
		"message":    points.ExtraPointsMessage(entry.ExtraPoints),
	})
}

func (h *LedgerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	existing, err := h.ledgerStore.GetByID(id)
	if err != nil {
		serverError(w, h.logger, "failed to get completed task", err)
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "completed task not found")
		return
	}

	if err := h.ledgerStore.Delete(id); err != nil {
		serverError(w, h.logger, "failed to delete completed task", err)
		return
	}

	h.broadcast(websocket.NewMessage(websocket.EntityCompletion, websocket.ActionDeleted, strconv.FormatInt(id, 10), nil).ForPerson(existing.PersonName))
	writeOK(w, http.StatusOK, nil)
}

// Reset wipes the ledger and all ratings. When archive storage is
// configured the ledger is uploaded first, and a failed upload aborts the
// reset.
func (h *LedgerHandler) Reset(w http.ResponseWriter, r *http.Request) {
	var archived *model.LedgerArchive
	if h.archiver != nil && h.archiver.Enabled() {
		a, err := h.archiver.Archive(r.Context())
		if err != nil {
			serverError(w, h.logger, "failed to archive ledger, nothing was reset", err)
			return
		}
		archived = a
	}

	res, err := h.ledgerStore.Reset()
	if err != nil {
		serverError(w, h.logger, "failed to reset", err)
		return
	}
	h.logger.Info("ledger reset", "completions", res.Completions, "ratings", res.Ratings)

	h.broadcast(websocket.NewMessage(websocket.EntityLedger, websocket.ActionReset, "", nil))
	writeOK(w, http.StatusOK, map[string]any{"deleted": res, "archive": archived})
}
