package handler_test

import (
	"net/http"
	"testing"

	"github.com/sakif/foodlog/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportHandler_Daily(t *testing.T) {
	api := newTestAPI(t)
	eggs := api.createFood(t, `{"name":"Eggs","caloriesPer100g":155,"proteinPer100g":13,"carbsPer100g":1.1,"fatPer100g":11}`)
	soup := api.createFood(t, `{"name":"Soup","caloriesPer100g":40}`)

	for _, body := range []string{
		`{"foodId":"` + eggs + `","mealType":"breakfast","servingSize":100,"recordedAt":"2024-03-10T08:00:00Z"}`,
		`{"foodId":"` + soup + `","mealType":"lunch","servingSize":250,"recordedAt":"2024-03-10T12:30:00Z"}`,
		`{"foodId":"` + soup + `","mealType":"lunch","servingSize":250,"recordedAt":"2024-03-11T12:30:00Z"}`,
	} {
		rr := api.do(http.MethodPost, "/api/meals", body, "u1")
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	}

	rr := api.do(http.MethodGet, "/api/reports/daily?date=2024-03-10", "", "u1")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	summary := decode[model.DailySummary](t, rr)
	assert.Equal(t, "2024-03-10", summary.Date)
	assert.Equal(t, 255.0, summary.TotalCalories)
	assert.Equal(t, 13.0, summary.TotalProtein, "soup has no macros and adds none")
	require.Len(t, summary.TopFoods, 2)
	assert.Equal(t, "Eggs", summary.TopFoods[0].Name)
	assert.Len(t, summary.Meals[model.Lunch].Records, 1)

	rr = api.do(http.MethodGet, "/api/reports/daily?date=yesterday", "", "u1")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestReportHandler_Range(t *testing.T) {
	api := newTestAPI(t)
	apple := api.createFood(t, `{"name":"Apple","category":"fruit","caloriesPer100g":52,"proteinPer100g":0.3,"carbsPer100g":14,"fatPer100g":0.2}`)
	for _, at := range []string{"2024-03-01T10:00:00Z", "2024-03-03T10:00:00Z"} {
		rr := api.do(http.MethodPost, "/api/meals", `{"foodId":"`+apple+`","mealType":"snack","servingSize":100,"recordedAt":"`+at+`"}`, "u1")
		require.Equal(t, http.StatusCreated, rr.Code)
	}

	rr := api.do(http.MethodGet, "/api/reports/range?start_date=2024-03-01&end_date=2024-03-07", "", "u1")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	report := decode[model.RangeReport](t, rr)
	assert.Equal(t, []string{"2024-03-01", "2024-03-03"}, report.Dates)
	assert.Equal(t, 52.0, report.AverageCaloriesPerDay)
	assert.Equal(t, "Apple", report.MostConsumedFood)
	assert.Equal(t, []model.CategoryCount{{Category: "fruit", Count: 2}}, report.FoodCategories)

	rr = api.do(http.MethodGet, "/api/reports/range?start_date=2024-03-07&end_date=2024-03-01", "", "u1")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestReportHandler_Unavailable(t *testing.T) {
	api := newTestAPI(t)
	api.db.Close()

	for _, path := range []string{
		"/api/reports/daily?date=2024-03-10",
		"/api/reports/range?start_date=2024-03-01&end_date=2024-03-07",
	} {
		rr := api.do(http.MethodGet, path, "", "u1")
		assert.Equal(t, http.StatusServiceUnavailable, rr.Code, path)
		assert.Equal(t, "unavailable", errorType(t, rr), path)
	}
}

func TestReportHandler_MealsWithNumericOffsets(t *testing.T) {
	api := newTestAPI(t)
	oats := api.createFood(t, `{"name":"Oats","category":"grain","caloriesPer100g":389}`)

	for _, at := range []string{"2024-03-01T12:00:00-05:00", "2024-03-01T23:30:00-05:00", "2024-03-01T08:00:00+05:30"} {
		rr := api.do(http.MethodPost, "/api/meals", `{"foodId":"`+oats+`","mealType":"lunch","servingSize":100,"recordedAt":"`+at+`"}`, "u1")
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	}

	rr := api.do(http.MethodGet, "/api/reports/daily?date=2024-03-01", "", "u1")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	summary := decode[model.DailySummary](t, rr)
	assert.Equal(t, 3*389.0, summary.TotalCalories, "each meal counts on its local date")

	rr = api.do(http.MethodGet, "/api/reports/daily?date=2024-03-02", "", "u1")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Zero(t, decode[model.DailySummary](t, rr).TotalCalories)

	rr = api.do(http.MethodGet, "/api/reports/range?start_date=2024-02-28&end_date=2024-03-03", "", "u1")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, []string{"2024-03-01"}, decode[model.RangeReport](t, rr).Dates)
}
