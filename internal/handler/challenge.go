package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sakif/foodlog/internal/model"
	"github.com/sakif/foodlog/internal/service"
)

// ChallengeHandler serves challenges, joins and check-ins.
//
// Duplicate joins and check-ins answer 200 with accepted=false and a reason;
// they are informational, not errors.
type ChallengeHandler struct {
	challenges *service.ChallengeService
	logger     *slog.Logger
}

func NewChallengeHandler(challenges *service.ChallengeService, logger *slog.Logger) *ChallengeHandler {
	return &ChallengeHandler{challenges: challenges, logger: logger}
}

// HandleList handles GET /api/challenges (active today).
func (h *ChallengeHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.challenges.ListActive(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// HandleCreate handles POST /api/challenges.
func (h *ChallengeHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in service.ChallengeInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}
	c, err := h.challenges.CreateChallenge(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// HandleStatus handles GET /api/challenges/{id}: the challenge as seen by the caller.
func (h *ChallengeHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	status, err := h.challenges.Status(r.Context(), chi.URLParam(r, "id"), uid, "")
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// HandleJoin handles POST /api/challenges/{id}/join.
func (h *ChallengeHandler) HandleJoin(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	result, err := h.challenges.Join(r.Context(), chi.URLParam(r, "id"), uid)
	if err != nil {
		writeError(w, err)
		return
	}
	status := http.StatusOK
	if result.Accepted {
		status = http.StatusCreated
	}
	writeJSON(w, status, result)
}

type checkinRequest struct {
	Note string `json:"note"`
}

// HandleCheckin handles POST /api/challenges/{id}/checkin for today.
// The body is optional.
func (h *ChallengeHandler) HandleCheckin(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	var req checkinRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.challenges.CheckInForUser(r.Context(), chi.URLParam(r, "id"), uid, "", req.Note)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HandleListCheckins handles GET /api/challenges/{id}/checkins?date=&mine=true.
func (h *ChallengeHandler) HandleListCheckins(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	filter := model.CheckinFilter{Date: q.Get("date")}
	if q.Get("mine") == "true" {
		filter.UserID = uid
	}

	checkins, err := h.challenges.ListCheckins(r.Context(), chi.URLParam(r, "id"), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, checkins)
}
