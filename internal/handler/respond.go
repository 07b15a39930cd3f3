package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/dukerupert/choreboard/internal/classify"
	"github.com/dukerupert/choreboard/internal/points"
	"github.com/dukerupert/choreboard/internal/store"
)

var (
	slugRegexp     = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)
	hexColorRegexp = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeOK answers a mutation with {"success": true} plus fields.
func writeOK(w http.ResponseWriter, status int, fields map[string]any) {
	body := map[string]any{"success": true}
	for k, v := range fields {
		body[k] = v
	}
	writeJSON(w, status, body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "error": msg})
}

// serverError logs err and answers 500 with a generic message.
func serverError(w http.ResponseWriter, logger *slog.Logger, msg string, err error) {
	logger.Error(msg, "error", err)
	writeError(w, http.StatusInternalServerError, msg)
}

// isValidation reports whether err is a user input error.
func isValidation(err error) bool {
	return errors.Is(err, points.ErrRatingRange) ||
		errors.Is(err, points.ErrUnknownPreference) ||
		errors.Is(err, points.ErrExtraPointsRange) ||
		errors.Is(err, store.ErrMissingIdentifier) ||
		errors.Is(err, store.ErrInvalidPoints) ||
		errors.Is(err, classify.ErrUnknownTask)
}

// writeStoreError maps validation errors to 400 and everything else to 500.
func writeStoreError(w http.ResponseWriter, logger *slog.Logger, msg string, err error) {
	if isValidation(err) {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}
	serverError(w, logger, msg, err)
}

func validationMessage(err error) string {
	switch {
	case errors.Is(err, points.ErrRatingRange):
		return points.ErrRatingRange.Error()
	case errors.Is(err, points.ErrUnknownPreference):
		return "preference must be one of odio, me_cuesta, indiferente, no_me_cuesta, me_gusta"
	case errors.Is(err, points.ErrExtraPointsRange):
		return points.ErrExtraPointsRange.Error()
	}
	return err.Error()
}

func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func parseIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

func personParam(r *http.Request) string {
	return strings.TrimSpace(r.URL.Query().Get("person"))
}
