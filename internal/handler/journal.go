package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sakif/foodlog/internal/service"
)

// JournalHandler serves the meal and activity logs of the authenticated user.
type JournalHandler struct {
	journal *service.JournalService
	logger  *slog.Logger
}

func NewJournalHandler(journal *service.JournalService, logger *slog.Logger) *JournalHandler {
	return &JournalHandler{journal: journal, logger: logger}
}

// HandleLogMeal handles POST /api/meals.
func (h *JournalHandler) HandleLogMeal(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	var in service.MealInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}
	rec, err := h.journal.LogMeal(r.Context(), uid, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

// HandleDeleteMeal handles DELETE /api/meals/{id}.
func (h *JournalHandler) HandleDeleteMeal(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	if err := h.journal.DeleteMeal(r.Context(), uid, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleListActivities handles GET /api/activities?date=.
func (h *JournalHandler) HandleListActivities(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	acts, err := h.journal.ListActivities(r.Context(), uid, r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, acts)
}

// HandleLogActivity handles POST /api/activities.
func (h *JournalHandler) HandleLogActivity(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	var in service.ActivityInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}
	act, err := h.journal.LogActivity(r.Context(), uid, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, act)
}

// HandleDeleteActivity handles DELETE /api/activities/{id}.
func (h *JournalHandler) HandleDeleteActivity(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	if err := h.journal.DeleteActivity(r.Context(), uid, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
