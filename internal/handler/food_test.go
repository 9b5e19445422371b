package handler_test

import (
	"net/http"
	"testing"

	"github.com/sakif/foodlog/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFoodHandler(t *testing.T) {
	api := newTestAPI(t)

	t.Run("create", func(t *testing.T) {
		rr := api.do(http.MethodPost, "/api/foods",
			`{"name":"Oats","category":"grain","caloriesPer100g":389,"proteinPer100g":16.9}`, "u1")
		require.Equal(t, http.StatusCreated, rr.Code)

		food := decode[model.NutrientFact](t, rr)
		assert.NotEmpty(t, food.ID)
		assert.Equal(t, 389.0, food.CaloriesPer100g)
		require.NotNil(t, food.ProteinPer100g)
		assert.Nil(t, food.CarbsPer100g, "omitted macros stay missing")
	})

	t.Run("create without calories", func(t *testing.T) {
		rr := api.do(http.MethodPost, "/api/foods", `{"name":"Air"}`, "u1")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "validation_error", errorType(t, rr))
	})

	t.Run("unknown field", func(t *testing.T) {
		rr := api.do(http.MethodPost, "/api/foods", `{"name":"Oats","calories":389}`, "u1")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		rr := api.do(http.MethodPost, "/api/foods", `{"name":`, "u1")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("get and update", func(t *testing.T) {
		id := api.createFood(t, `{"name":"Milk","category":"dairy","caloriesPer100g":64}`)

		rr := api.do(http.MethodGet, "/api/foods/"+id, "", "u1")
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "Milk", decode[model.NutrientFact](t, rr).Name)

		rr = api.do(http.MethodPut, "/api/foods/"+id,
			`{"name":"Whole Milk","category":"dairy","caloriesPer100g":61,"fatPer100g":3.3}`, "u1")
		require.Equal(t, http.StatusOK, rr.Code)
		updated := decode[model.NutrientFact](t, rr)
		assert.Equal(t, "Whole Milk", updated.Name)
		assert.Equal(t, 61.0, updated.CaloriesPer100g)
	})

	t.Run("get missing", func(t *testing.T) {
		rr := api.do(http.MethodGet, "/api/foods/nope", "", "u1")
		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, "not_found", errorType(t, rr))
	})

	t.Run("search", func(t *testing.T) {
		rr := api.do(http.MethodGet, "/api/foods?q=MILK", "", "u1")
		require.Equal(t, http.StatusOK, rr.Code)
		foods := decode[[]model.NutrientFact](t, rr)
		require.Len(t, foods, 1)
		assert.Equal(t, "Whole Milk", foods[0].Name)
	})

	t.Run("blank search is empty", func(t *testing.T) {
		rr := api.do(http.MethodGet, "/api/foods?q=", "", "u1")
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Empty(t, decode[[]model.NutrientFact](t, rr))
	})
}
