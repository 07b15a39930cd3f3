package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/choreboard/internal/archive"
	"github.com/dukerupert/choreboard/internal/handler"
	"github.com/dukerupert/choreboard/internal/middleware"
	"github.com/dukerupert/choreboard/internal/store"
	ws "github.com/dukerupert/choreboard/internal/websocket"
)

type Options struct {
	// ResetRateLimit is the number of resets allowed per client per hour.
	ResetRateLimit int
	Archive        archive.Config
}

type Server struct {
	db          *sql.DB
	hub         *ws.Hub
	peopleH     *handler.PeopleHandler
	catalogH    *handler.CatalogHandler
	ratingH     *handler.RatingHandler
	preferenceH *handler.PreferenceHandler
	ledgerH     *handler.LedgerHandler
	boardH      *handler.BoardHandler
	rateLimiter *middleware.RateLimiter
	archiver    *archive.Archiver
	resetLimit  int
	logger      *slog.Logger
}

func New(db *sql.DB, opts Options, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	peopleStore := store.NewPersonStore(db)
	categoryStore := store.NewCategoryStore(db)
	taskStore := store.NewTaskStore(db)
	ratingStore := store.NewRatingStore(db)
	preferenceStore := store.NewPreferenceStore(db)
	ledgerStore := store.NewLedgerStore(db)
	archiveStore := store.NewArchiveStore(db)

	archiver := archive.NewArchiver(opts.Archive, archiveStore, ledgerStore, ratingStore, logger)

	resetLimit := opts.ResetRateLimit
	if resetLimit <= 0 {
		resetLimit = 3
	}

	return &Server{
		db:          db,
		hub:         hub,
		peopleH:     handler.NewPeopleHandler(peopleStore, logger.With("component", "people")),
		catalogH:    handler.NewCatalogHandler(taskStore, categoryStore, ratingStore, preferenceStore, peopleStore, hub, logger.With("component", "catalog")),
		ratingH:     handler.NewRatingHandler(taskStore, ratingStore, peopleStore, hub, logger.With("component", "rating")),
		preferenceH: handler.NewPreferenceHandler(taskStore, preferenceStore, peopleStore, hub, logger.With("component", "preference")),
		ledgerH:     handler.NewLedgerHandler(taskStore, ratingStore, preferenceStore, ledgerStore, peopleStore, archiver, hub, logger.With("component", "ledger")),
		boardH:      handler.NewBoardHandler(taskStore, ratingStore, preferenceStore, ledgerStore, peopleStore, logger.With("component", "board")),
		rateLimiter: middleware.NewRateLimiter(),
		archiver:    archiver,
		resetLimit:  resetLimit,
		logger:      logger,
	}
}

// Hub returns the websocket hub.
func (s *Server) Hub() *ws.Hub {
	return s.hub
}

// StartBackground runs periodic rate limiter cleanup until ctx is done.
func (s *Server) StartBackground(ctx context.Context) {
	go s.rateLimiter.RunCleanup(ctx, 10*time.Minute)
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub, s.logger.With("component", "websocket")))

	mux.HandleFunc("GET /api/state", s.boardH.State)
	mux.HandleFunc("GET /api/scoreboard", s.boardH.Scoreboard)
	mux.HandleFunc("GET /api/stats", s.boardH.Stats)
	mux.HandleFunc("GET /api/people", s.peopleH.List)

	// Catalog
	mux.HandleFunc("GET /api/categories", s.catalogH.ListCategories)
	mux.HandleFunc("POST /api/categories", s.catalogH.CreateCategory)
	mux.HandleFunc("PUT /api/categories/{id}", s.catalogH.UpdateCategory)
	mux.HandleFunc("DELETE /api/categories/{id}", s.catalogH.DeleteCategory)
	mux.HandleFunc("GET /api/tasks", s.catalogH.ListTasks)
	mux.HandleFunc("POST /api/tasks", s.catalogH.CreateTask)
	mux.HandleFunc("GET /api/tasks/{id}", s.catalogH.GetTask)
	mux.HandleFunc("PUT /api/tasks/{id}", s.catalogH.UpdateTask)
	mux.HandleFunc("DELETE /api/tasks/{id}", s.catalogH.DeleteTask)
	mux.HandleFunc("GET /api/tasks/{id}/quote", s.catalogH.Quote)

	// Ratings
	mux.HandleFunc("POST /api/tasks/{id}/ratings", s.ratingH.Rate)
	mux.HandleFunc("POST /api/ratings", s.ratingH.RateMany)

	// Preferences
	mux.HandleFunc("GET /api/preferences", s.preferenceH.Board)
	mux.HandleFunc("GET /api/preferences/buckets", s.preferenceH.Buckets)
	mux.HandleFunc("PUT /api/preferences", s.preferenceH.SaveBoard)
	mux.HandleFunc("PUT /api/preferences/{task_id}", s.preferenceH.Classify)

	// Ledger
	mux.HandleFunc("GET /api/completions", s.ledgerH.List)
	mux.HandleFunc("POST /api/completions", s.ledgerH.Complete)
	mux.HandleFunc("POST /api/completions/batch", s.ledgerH.CompleteMany)
	mux.HandleFunc("PUT /api/completions/{id}/extra-points", s.ledgerH.SetExtraPoints)
	mux.HandleFunc("DELETE /api/completions/{id}", s.ledgerH.Delete)
	mux.Handle("POST /api/reset", s.rateLimited(s.resetLimit, time.Hour, http.HandlerFunc(s.ledgerH.Reset)))

	return middleware.RequestLogger(s.logger.With("component", "http"))(mux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK
	if err := s.db.PingContext(r.Context()); err != nil {
		s.logger.Error("health check", "error", err)
		status = "unavailable"
		code = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"status": status})
}

func (s *Server) rateLimited(limit int, window time.Duration, h http.Handler) http.Handler {
	return middleware.RateLimit(s.rateLimiter, middleware.ByIP, limit, window)(h)
}
