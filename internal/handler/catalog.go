package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/choreboard/internal/model"
	"github.com/dukerupert/choreboard/internal/points"
	"github.com/dukerupert/choreboard/internal/store"
	"github.com/dukerupert/choreboard/internal/websocket"
)

type CatalogHandler struct {
	taskStore       *store.TaskStore
	categoryStore   *store.CategoryStore
	ratingStore     *store.RatingStore
	preferenceStore *store.PreferenceStore
	peopleStore     *store.PersonStore
	hub             *websocket.Hub
	logger          *slog.Logger
}

func NewCatalogHandler(ts *store.TaskStore, cs *store.CategoryStore, rs *store.RatingStore, prs *store.PreferenceStore, ps *store.PersonStore, hub *websocket.Hub, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		taskStore:       ts,
		categoryStore:   cs,
		ratingStore:     rs,
		preferenceStore: prs,
		peopleStore:     ps,
		hub:             hub,
		logger:          logger,
	}
}

func (h *CatalogHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

type categoryRequest struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Emoji string `json:"emoji"`
	Color string `json:"color"`
}

func (req *categoryRequest) normalize() string {
	req.ID = strings.TrimSpace(req.ID)
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return "name is required"
	}
	if req.Color != "" && !hexColorRegexp.MatchString(req.Color) {
		return "color must be a hex color (e.g. #FF0000)"
	}
	return ""
}

func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.categoryStore.List()
	if err != nil {
		serverError(w, h.logger, "failed to list categories", err)
		return
	}
	if cats == nil {
		cats = []model.Category{}
	}
	writeJSON(w, http.StatusOK, cats)
}

func (h *CatalogHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := req.normalize(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	if !slugRegexp.MatchString(req.ID) {
		writeError(w, http.StatusBadRequest, "id must be a lowercase slug (e.g. cocina)")
		return
	}

	existing, err := h.categoryStore.GetByID(req.ID)
	if err != nil {
		serverError(w, h.logger, "failed to get category", err)
		return
	}
	if existing != nil {
		writeError(w, http.StatusConflict, "a category with that id already exists")
		return
	}

	cat, err := h.categoryStore.Create(req.ID, req.Name, req.Emoji, req.Color)
	if err != nil {
		serverError(w, h.logger, "failed to create category", err)
		return
	}

	h.broadcast(websocket.NewMessage(websocket.EntityCategory, websocket.ActionCreated, cat.ID, nil))
	writeOK(w, http.StatusCreated, map[string]any{"category": cat})
}

func (h *CatalogHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	existing, err := h.categoryStore.GetByID(id)
	if err != nil {
		serverError(w, h.logger, "failed to get category", err)
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "category not found")
		return
	}

	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Emoji == "" {
		req.Emoji = existing.Emoji
	}
	if req.Color == "" {
		req.Color = existing.Color
	}
	if msg := req.normalize(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	cat, err := h.categoryStore.Update(id, req.Name, req.Emoji, req.Color)
	if err != nil {
		serverError(w, h.logger, "failed to update category", err)
		return
	}

	h.broadcast(websocket.NewMessage(websocket.EntityCategory, websocket.ActionUpdated, id, nil))
	writeOK(w, http.StatusOK, map[string]any{"category": cat})
}

func (h *CatalogHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	existing, err := h.categoryStore.GetByID(id)
	if err != nil {
		serverError(w, h.logger, "failed to get category", err)
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "category not found")
		return
	}

	if err := h.categoryStore.Delete(id); err != nil {
		serverError(w, h.logger, "failed to delete category", err)
		return
	}

	h.broadcast(websocket.NewMessage(websocket.EntityCategory, websocket.ActionDeleted, id, nil))
	writeOK(w, http.StatusOK, nil)
}

type taskRequest struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Points      int     `json:"points"`
	CategoryID  *string `json:"category_id"`
}

// validateTask checks the fields and that the category exists. It returns a
// status and message when the request must be rejected.
func (h *CatalogHandler) validateTask(req *taskRequest) (int, string, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Description = strings.TrimSpace(req.Description)
	if req.Name == "" {
		return http.StatusBadRequest, "name is required", nil
	}
	if req.Points < 1 {
		return http.StatusBadRequest, "points must be at least 1", nil
	}
	if req.CategoryID != nil {
		id := strings.TrimSpace(*req.CategoryID)
		if id == "" {
			req.CategoryID = nil
			return 0, "", nil
		}
		req.CategoryID = &id
		cat, err := h.categoryStore.GetByID(id)
		if err != nil {
			return 0, "", err
		}
		if cat == nil {
			return http.StatusBadRequest, "unknown category", nil
		}
	}
	return 0, "", nil
}

func (h *CatalogHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.taskStore.List()
	if err != nil {
		serverError(w, h.logger, "failed to list tasks", err)
		return
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (h *CatalogHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.ID = strings.TrimSpace(req.ID)
	if !slugRegexp.MatchString(req.ID) {
		writeError(w, http.StatusBadRequest, "id must be a lowercase slug (e.g. wash-dishes)")
		return
	}
	status, msg, err := h.validateTask(&req)
	if err != nil {
		serverError(w, h.logger, "failed to validate task", err)
		return
	}
	if status != 0 {
		writeError(w, status, msg)
		return
	}

	existing, err := h.taskStore.GetByID(req.ID)
	if err != nil {
		serverError(w, h.logger, "failed to get task", err)
		return
	}
	if existing != nil {
		writeError(w, http.StatusConflict, "a task with that id already exists")
		return
	}

	task, err := h.taskStore.Create(req.ID, req.Name, req.Description, req.Points, req.CategoryID)
	if err != nil {
		serverError(w, h.logger, "failed to create task", err)
		return
	}

	h.broadcast(websocket.NewMessage(websocket.EntityTask, websocket.ActionCreated, task.ID, nil))
	writeOK(w, http.StatusCreated, map[string]any{"task": task})
}

// GetTask returns the task with its ratings, preferences and base points.
func (h *CatalogHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	task, ok := requireTask(w, h.taskStore, h.logger, r.PathValue("id"))
	if !ok {
		return
	}
	ratings, err := h.ratingStore.ListByTask(task.ID)
	if err != nil {
		serverError(w, h.logger, "failed to list ratings", err)
		return
	}
	prefs, err := h.preferenceStore.ListByTask(task.ID)
	if err != nil {
		serverError(w, h.logger, "failed to list preferences", err)
		return
	}
	if ratings == nil {
		ratings = []model.Rating{}
	}
	if prefs == nil {
		prefs = []model.TaskPreference{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"task":            task,
		"base_points":     points.BasePoints(task.DefaultPoints(), ratings),
		"preferences_sum": points.PreferencesSum(prefs),
		"ratings":         ratings,
		"preferences":     prefs,
	})
}

func (h *CatalogHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	existing, ok := requireTask(w, h.taskStore, h.logger, r.PathValue("id"))
	if !ok {
		return
	}

	var req taskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	status, msg, err := h.validateTask(&req)
	if err != nil {
		serverError(w, h.logger, "failed to validate task", err)
		return
	}
	if status != 0 {
		writeError(w, status, msg)
		return
	}

	task, err := h.taskStore.Update(existing.ID, req.Name, req.Description, req.Points, req.CategoryID)
	if err != nil {
		serverError(w, h.logger, "failed to update task", err)
		return
	}

	h.broadcast(websocket.NewMessage(websocket.EntityTask, websocket.ActionUpdated, task.ID, nil))
	writeOK(w, http.StatusOK, map[string]any{"task": task})
}

func (h *CatalogHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	existing, ok := requireTask(w, h.taskStore, h.logger, r.PathValue("id"))
	if !ok {
		return
	}

	if err := h.taskStore.Delete(existing.ID); err != nil {
		serverError(w, h.logger, "failed to delete task", err)
		return
	}

	h.broadcast(websocket.NewMessage(websocket.EntityTask, websocket.ActionDeleted, existing.ID, nil))
	writeOK(w, http.StatusOK, nil)
}

// Quote resolves the points a person would earn for the task right now.
// Without ?person= the quote carries no modifier.
func (h *CatalogHandler) Quote(w http.ResponseWriter, r *http.Request) {
	task, ok := requireTask(w, h.taskStore, h.logger, r.PathValue("id"))
	if !ok {
		return
	}
	person := personParam(r)
	if person != "" {
		name, ok := requirePerson(w, h.peopleStore, h.logger, person)
		if !ok {
			return
		}
		person = name
	}

	q, err := quote(h.ratingStore, h.preferenceStore, *task, person)
	if err != nil {
		serverError(w, h.logger, "failed to resolve points", err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

// quote loads the task's ratings and preferences and resolves its points.
func quote(rs *store.RatingStore, ps *store.PreferenceStore, task model.Task, person string) (points.Quote, error) {
	ratings, err := rs.ListByTask(task.ID)
	if err != nil {
		return points.Quote{}, err
	}
	prefs, err := ps.ListByTask(task.ID)
	if err != nil {
		return points.Quote{}, err
	}
	return points.Resolve(task, ratings, prefs, person), nil
}
