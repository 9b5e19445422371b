package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/sakif/foodlog/internal/apperror"
	"github.com/sakif/foodlog/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTrends(store *fakeStore, sampleCap int) *TrendService {
	svc := NewTrendService(store, store, sampleCap, testLogger())
	svc.now = fixedClock("2024-03-10")
	return svc
}

func TestRangeReport_SparseDays(t *testing.T) {
	store := newFakeStore()
	meal := addFood(t, store, "Meal", "dinner", 100)
	addMeal(t, store, "u1", meal.ID, model.Lunch, "2024-03-01", 100, 1200)
	addMeal(t, store, "u1", meal.ID, model.Dinner, "2024-03-01", 100, 800)
	addMeal(t, store, "u1", meal.ID, model.Dinner, "2024-03-03", 100, 1800)

	report, err := newTestTrends(store, 0).RangeReport(context.Background(), "u1", "2024-03-01", "2024-03-03")
	require.NoError(t, err)

	assert.Equal(t, []string{"2024-03-01", "2024-03-03"}, report.Dates, "days without data are omitted")
	assert.Equal(t, []float64{2000, 1800}, report.DailyCalories)
	assert.Equal(t, 1900.0, report.AverageCaloriesPerDay)
	assert.Equal(t, 2, report.TotalDays)
	assert.Equal(t, 1200.0, report.MealDistribution[model.Lunch])
	assert.Equal(t, 2600.0, report.MealDistribution[model.Dinner])
	assert.Equal(t, 0.0, report.MealDistribution[model.Breakfast])
}

func TestRangeReport_Empty(t *testing.T) {
	report, err := newTestTrends(newFakeStore(), 0).RangeReport(context.Background(), "u1", "2024-03-01", "2024-03-07")
	require.NoError(t, err)

	assert.Empty(t, report.Dates)
	assert.Empty(t, report.DailyCalories)
	assert.Zero(t, report.AverageCaloriesPerDay)
	assert.Zero(t, report.TotalDays)
	assert.Equal(t, NoDataFood, report.MostConsumedFood)
	assert.Empty(t, report.FoodCategories)
	assert.Zero(t, report.NutrientSampleSize)
}

func TestRangeReport_DefaultRange(t *testing.T) {
	report, err := newTestTrends(newFakeStore(), 0).RangeReport(context.Background(), "u1", "", "")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-04", report.StartDate)
	assert.Equal(t, "2024-03-10", report.EndDate)
}

func TestRangeReport_InvalidRange(t *testing.T) {
	svc := newTestTrends(newFakeStore(), 0)

	_, err := svc.RangeReport(context.Background(), "u1", "2024-03-10", "2024-03-01")
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = svc.RangeReport(context.Background(), "u1", "2024-13-01", "")
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestRangeReport_NutrientAveragesUseCappedSample(t *testing.T) {
	store := newFakeStore()
	// One food without macros first, then foods whose protein is 1..12.
	plain := addFood(t, store, "Plain", "", 50)
	addMeal(t, store, "u1", plain.ID, model.Snack, "2024-03-01", 100, 50)
	for i := 1; i <= 12; i++ {
		f := addFood(t, store, fmt.Sprintf("Food %02d", i), "", 100, float64(i), 10, 2)
		addMeal(t, store, "u1", f.ID, model.Lunch, "2024-03-02", 250, 250)
	}

	t.Run("default cap of ten", func(t *testing.T) {
		report, err := newTestTrends(store, 0).RangeReport(context.Background(), "u1", "2024-03-01", "2024-03-02")
		require.NoError(t, err)
		assert.Equal(t, DefaultNutrientSampleCap, report.NutrientSampleSize)
		// Mean of 1..10, per 100g, serving size ignored.
		assert.Equal(t, 5.5, report.NutrientAverages.Protein)
		assert.Equal(t, 10.0, report.NutrientAverages.Carbs)
		assert.Equal(t, 2.0, report.NutrientAverages.Fat)
	})

	t.Run("configured cap", func(t *testing.T) {
		report, err := newTestTrends(store, 3).RangeReport(context.Background(), "u1", "2024-03-01", "2024-03-02")
		require.NoError(t, err)
		assert.Equal(t, 3, report.NutrientSampleSize)
		assert.Equal(t, 2.0, report.NutrientAverages.Protein)
	})

	t.Run("cap larger than population", func(t *testing.T) {
		report, err := newTestTrends(store, 100).RangeReport(context.Background(), "u1", "2024-03-01", "2024-03-02")
		require.NoError(t, err)
		assert.Equal(t, 12, report.NutrientSampleSize)
		assert.Equal(t, 6.5, report.NutrientAverages.Protein)
	})
}

func TestRangeReport_MostConsumedFoodByRecordCount(t *testing.T) {
	store := newFakeStore()
	cake := addFood(t, store, "Cake", "sweets", 400)
	apple := addFood(t, store, "Apple", "fruit", 52)
	addMeal(t, store, "u1", cake.ID, model.Snack, "2024-03-01", 300, 1200)
	addMeal(t, store, "u1", apple.ID, model.Snack, "2024-03-01", 100, 52)
	addMeal(t, store, "u1", apple.ID, model.Snack, "2024-03-02", 100, 52)

	report, err := newTestTrends(store, 0).RangeReport(context.Background(), "u1", "2024-03-01", "2024-03-02")
	require.NoError(t, err)
	assert.Equal(t, "Apple", report.MostConsumedFood, "count wins over calories")
}

func TestRangeReport_MostConsumedFoodTieIsLexicographic(t *testing.T) {
	store := newFakeStore()
	zucchini := addFood(t, store, "Zucchini", "veg", 17)
	bean := addFood(t, store, "Bean", "veg", 30)
	addMeal(t, store, "u1", zucchini.ID, model.Dinner, "2024-03-01", 100, 17)
	addMeal(t, store, "u1", bean.ID, model.Dinner, "2024-03-01", 100, 30)

	report, err := newTestTrends(store, 0).RangeReport(context.Background(), "u1", "2024-03-01", "2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, "Bean", report.MostConsumedFood)
}

func TestRangeReport_CategoryHistogram(t *testing.T) {
	store := newFakeStore()
	cats := []string{"fruit", "veg", "grain", "dairy", "meat", "sweets", "drinks"}
	foods := make(map[string]string)
	for _, c := range cats {
		foods[c] = addFood(t, store, "food-"+c, c, 100).ID
	}
	uncategorised := addFood(t, store, "Mystery", "", 100)

	// veg ×3, other ×2, then one each of the rest in order.
	for i := 0; i < 3; i++ {
		addMeal(t, store, "u1", foods["veg"], model.Lunch, "2024-03-01", 100, 100)
	}
	addMeal(t, store, "u1", uncategorised.ID, model.Lunch, "2024-03-01", 100, 100)
	addMeal(t, store, "u1", "deleted-food", model.Lunch, "2024-03-01", 100, 100)
	for _, c := range []string{"fruit", "grain", "dairy", "meat", "sweets", "drinks"} {
		addMeal(t, store, "u1", foods[c], model.Lunch, "2024-03-01", 100, 100)
	}

	report, err := newTestTrends(store, 0).RangeReport(context.Background(), "u1", "2024-03-01", "2024-03-01")
	require.NoError(t, err)

	assert.Equal(t, []model.CategoryCount{
		{Category: "veg", Count: 3},
		{Category: OtherCategory, Count: 2},
		{Category: "fruit", Count: 1},
		{Category: "grain", Count: 1},
		{Category: "dairy", Count: 1},
		{Category: "meat", Count: 1},
	}, report.FoodCategories)
}

func TestRangeReport_Unavailable(t *testing.T) {
	store := newFakeStore()
	store.failWith = errStoreDown

	report, err := newTestTrends(store, 0).RangeReport(context.Background(), "u1", "2024-03-01", "2024-03-07")
	assert.Nil(t, report)
	assert.ErrorIs(t, err, apperror.ErrUnavailable)
}

func TestRangeReport_AverageRoundedToWholeCalories(t *testing.T) {
	store := newFakeStore()
	f := addFood(t, store, "F", "", 100)
	addMeal(t, store, "u1", f.ID, model.Lunch, "2024-03-01", 100, 1000)
	addMeal(t, store, "u1", f.ID, model.Lunch, "2024-03-02", 100, 1001)

	report, err := newTestTrends(store, 0).RangeReport(context.Background(), "u1", "2024-03-01", "2024-03-02")
	require.NoError(t, err)
	assert.Equal(t, 1001.0, report.AverageCaloriesPerDay)
}

func TestRangeReport_JoinsCatalogOnceWithDistinctIDs(t *testing.T) {
	store := newFakeStore()
	rice := addFood(t, store, "Rice", "grain", 130)
	beans := addFood(t, store, "Beans", "legume", 120)
	addMeal(t, store, "u1", rice.ID, model.Lunch, "2024-03-01", 100, 130)
	addMeal(t, store, "u1", beans.ID, model.Lunch, "2024-03-01", 100, 120)
	addMeal(t, store, "u1", rice.ID, model.Dinner, "2024-03-02", 100, 130)

	_, err := newTestTrends(store, 0).RangeReport(context.Background(), "u1", "2024-03-01", "2024-03-02")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{rice.ID, beans.ID}}, store.foodLookups)
}

func TestRangeReport_ZeroMacrosCountTowardNutrientSample(t *testing.T) {
	store := newFakeStore()
	chicken := addFood(t, store, "Chicken", "meat", 165, 31, 0, 4)
	water := addFood(t, store, "Sparkling water", "drinks", 0, 0, 0, 0)
	addMeal(t, store, "u1", chicken.ID, model.Dinner, "2024-03-01", 200, 330)
	addMeal(t, store, "u1", water.ID, model.Snack, "2024-03-01", 300, 0)

	report, err := newTestTrends(store, 0).RangeReport(context.Background(), "u1", "2024-03-01", "2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, 2, report.NutrientSampleSize)
	assert.Equal(t, 15.5, report.NutrientAverages.Protein)
	assert.Equal(t, 0.0, report.NutrientAverages.Carbs)
	assert.Equal(t, 2.0, report.NutrientAverages.Fat)
}
