package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/foodlog/internal/service"
)

// ReportHandler serves the daily and range nutrition reports.
//
// When a report cannot be built the response is 503 with error
// "unavailable"; a partially computed report is never sent.
type ReportHandler struct {
	nutrition *service.NutritionService
	trends    *service.TrendService
	logger    *slog.Logger
}

func NewReportHandler(nutrition *service.NutritionService, trends *service.TrendService, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{nutrition: nutrition, trends: trends, logger: logger}
}

// HandleDaily handles GET /api/reports/daily?date=.
func (h *ReportHandler) HandleDaily(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	summary, err := h.nutrition.DailySummary(r.Context(), uid, r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// HandleRange handles GET /api/reports/range?start_date=&end_date=.
func (h *ReportHandler) HandleRange(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	report, err := h.trends.RangeReport(r.Context(), uid, q.Get("start_date"), q.Get("end_date"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
