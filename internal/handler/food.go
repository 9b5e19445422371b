package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sakif/foodlog/internal/service"
)

// FoodHandler serves the nutrient catalog.
type FoodHandler struct {
	catalog *service.CatalogService
	logger  *slog.Logger
}

func NewFoodHandler(catalog *service.CatalogService, logger *slog.Logger) *FoodHandler {
	return &FoodHandler{catalog: catalog, logger: logger}
}

// HandleSearch handles GET /api/foods?q=.
func (h *FoodHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	foods, err := h.catalog.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, foods)
}

// HandleGet handles GET /api/foods/{id}.
func (h *FoodHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	food, err := h.catalog.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, food)
}

// HandleCreate handles POST /api/foods.
func (h *FoodHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in service.FoodInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}
	food, err := h.catalog.Create(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, food)
}

// HandleUpdate handles PUT /api/foods/{id}.
func (h *FoodHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var in service.FoodInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}
	food, err := h.catalog.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, food)
}
