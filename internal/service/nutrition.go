package service

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/sakif/foodlog/internal/apperror"
	"github.com/sakif/foodlog/internal/model"
	"github.com/sakif/foodlog/internal/repository"
)

const (
	// TopFoodsLimit is how many foods the daily calorie ranking keeps.
	TopFoodsLimit = 5

	// UnknownFoodName labels records whose catalog entry no longer exists.
	UnknownFoodName = "unknown food"
)

// NutritionService is the DailyNutritionAggregator.
type NutritionService struct {
	catalog *CatalogService
	meals   repository.ConsumptionRepository
	logger  *slog.Logger
	now     func() time.Time
}

func NewNutritionService(foods repository.FoodRepository, meals repository.ConsumptionRepository, logger *slog.Logger) *NutritionService {
	return &NutritionService{
		catalog: NewCatalogService(foods, logger),
		meals:   meals,
		logger:  logger,
		now:     time.Now,
	}
}

// DailySummary builds the nutrition report for userID on date (YYYY-MM-DD,
// empty means today).
//
// Calories always come from each record's snapshot. Macros come from the
// current catalog entry and only when protein, carbs and fat are all present;
// otherwise the record contributes zero to every macro.
//
// If the event log or catalog cannot be read, no summary is returned and the
// error wraps apperror.ErrUnavailable.
func (s *NutritionService) DailySummary(ctx context.Context, userID, date string) (*model.DailySummary, error) {
	if date == "" {
		date = s.now().Format(model.DateLayout)
	}
	day, err := parseDay("date", date)
	if err != nil {
		return nil, err
	}

	records, err := s.meals.ListConsumptionByDay(ctx, userID, day)
	if err != nil {
		s.logger.Error("failed to read consumption records",
			slog.String("user_id", userID),
			slog.String("date", day),
			slog.String("error", err.Error()),
		)
		return nil, apperror.Unavailable("daily summary", err)
	}

	foods, err := joinFoods(ctx, s.catalog, records)
	if err != nil {
		s.logger.Error("failed to join nutrient catalog",
			slog.String("user_id", userID),
			slog.String("date", day),
			slog.String("error", err.Error()),
		)
		return nil, apperror.Unavailable("daily summary", err)
	}

	return buildDailySummary(userID, day, records, foods), nil
}

func buildDailySummary(userID, day string, records []model.ConsumptionRecord, foods map[string]*model.NutrientFact) *model.DailySummary {
	summary := &model.DailySummary{
		UserID:   userID,
		Date:     day,
		Meals:    make(map[model.MealType]model.MealBreakdown, len(model.MealTypes)),
		TopFoods: []model.FoodCalories{},
	}
	for _, mt := range model.MealTypes {
		summary.Meals[mt] = model.MealBreakdown{Records: []model.MealLine{}}
	}

	ranking := newCalorieRanking()

	for _, rec := range records {
		food := foods[rec.FoodID]
		line := model.MealLine{Record: rec, FoodName: foodName(food)}
		if food.HasMacros() {
			line.Protein = *food.ProteinPer100g * rec.ServingSize / 100
			line.Carbs = *food.CarbsPer100g * rec.ServingSize / 100
			line.Fat = *food.FatPer100g * rec.ServingSize / 100
		}

		mt := mealBucket(rec.MealType)
		bucket := summary.Meals[mt]
		bucket.Calories += rec.CaloriesConsumed
		bucket.Protein += line.Protein
		bucket.Carbs += line.Carbs
		bucket.Fat += line.Fat
		bucket.Records = append(bucket.Records, line)
		summary.Meals[mt] = bucket

		summary.TotalCalories += rec.CaloriesConsumed
		summary.TotalProtein += line.Protein
		summary.TotalCarbs += line.Carbs
		summary.TotalFat += line.Fat

		ranking.add(line.FoodName, rec.CaloriesConsumed)
	}

	summary.TopFoods = ranking.top(TopFoodsLimit)
	return summary
}

// calorieRanking accumulates calories per food name and remembers the order
// in which names were first seen, which is the tie-break of the ranking.
type calorieRanking struct {
	order  []string
	totals map[string]float64
}

func newCalorieRanking() *calorieRanking {
	return &calorieRanking{totals: make(map[string]float64)}
}

func (r *calorieRanking) add(name string, calories float64) {
	if _, ok := r.totals[name]; !ok {
		r.order = append(r.order, name)
	}
	r.totals[name] += calories
}

func (r *calorieRanking) top(n int) []model.FoodCalories {
	ranked := make([]model.FoodCalories, 0, len(r.order))
	for _, name := range r.order {
		ranked = append(ranked, model.FoodCalories{Name: name, Calories: r.totals[name]})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Calories > ranked[j].Calories
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// joinFoods looks up the catalog entries referenced by records in one batch.
func joinFoods(ctx context.Context, catalog *CatalogService, records []model.ConsumptionRecord) (map[string]*model.NutrientFact, error) {
	if len(records) == 0 {
		return map[string]*model.NutrientFact{}, nil
	}
	ids := make([]string, len(records))
	for i, rec := range records {
		ids[i] = rec.FoodID
	}
	return catalog.GetMany(ctx, ids)
}

// mealBucket maps a stored meal type onto one of the four buckets.
// Anything unrecognised is counted as a snack.
func mealBucket(mt model.MealType) model.MealType {
	if parsed, ok := model.ParseMealType(string(mt)); ok {
		return parsed
	}
	return model.Snack
}

func foodName(food *model.NutrientFact) string {
	if food == nil || food.Name == "" {
		return UnknownFoodName
	}
	return food.Name
}
