package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/sakif/foodlog/internal/apperror"
	"github.com/sakif/foodlog/internal/model"
	"github.com/sakif/foodlog/internal/repository"
)

const (
	// DefaultNutrientSampleCap is how many fully described records feed the
	// range nutrient averages when no cap is configured.
	DefaultNutrientSampleCap = 10

	// DefaultRangeDays is the length of the range used when no dates are given.
	DefaultRangeDays = 7

	// TopCategoriesLimit is how many bars the category histogram keeps.
	TopCategoriesLimit = 6

	// OtherCategory collects records whose food has no category.
	OtherCategory = "other"

	// NoDataFood is the most consumed food of a range without records.
	NoDataFood = "no data"
)

// TrendService is the RangeTrendAggregator.
type TrendService struct {
	catalog   *CatalogService
	meals     repository.ConsumptionRepository
	sampleCap int
	logger    *slog.Logger
	now       func() time.Time
}

// NewTrendService creates a TrendService. sampleCap bounds how many records
// the nutrient averages look at; values ≤ 0 select DefaultNutrientSampleCap.
func NewTrendService(foods repository.FoodRepository, meals repository.ConsumptionRepository, sampleCap int, logger *slog.Logger) *TrendService {
	if sampleCap <= 0 {
		sampleCap = DefaultNutrientSampleCap
	}
	return &TrendService{
		catalog:   NewCatalogService(foods, logger),
		meals:     meals,
		sampleCap: sampleCap,
		logger:    logger,
		now:       time.Now,
	}
}

// RangeReport builds the trend report for userID over [startDate, endDate].
//
// Both dates are inclusive YYYY-MM-DD strings. An empty endDate means today
// and an empty startDate means six days before endDate. Days without records
// are left out of the series, and the per-day average divides by the number
// of days that do have records.
func (s *TrendService) RangeReport(ctx context.Context, userID, startDate, endDate string) (*model.RangeReport, error) {
	start, end, err := s.resolveRange(startDate, endDate)
	if err != nil {
		return nil, err
	}

	records, err := s.meals.ListConsumptionByRange(ctx, userID, start, end)
	if err != nil {
		s.logger.Error("failed to read consumption records",
			slog.String("user_id", userID),
			slog.String("start", start),
			slog.String("end", end),
			slog.String("error", err.Error()),
		)
		return nil, apperror.Unavailable("range report", err)
	}

	foods, err := joinFoods(ctx, s.catalog, records)
	if err != nil {
		s.logger.Error("failed to join nutrient catalog",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		return nil, apperror.Unavailable("range report", err)
	}

	report := buildRangeReport(records, foods, s.sampleCap)
	report.UserID = userID
	report.StartDate = start
	report.EndDate = end
	return report, nil
}

func (s *TrendService) resolveRange(startDate, endDate string) (string, string, error) {
	end := endDate
	if end == "" {
		end = s.now().Format(model.DateLayout)
	}
	end, err := parseDay("end_date", end)
	if err != nil {
		return "", "", err
	}

	start := startDate
	if start == "" {
		t, _ := time.Parse(model.DateLayout, end)
		start = t.AddDate(0, 0, -(DefaultRangeDays - 1)).Format(model.DateLayout)
	}
	start, err = parseDay("start_date", start)
	if err != nil {
		return "", "", err
	}

	if start > end {
		return "", "", apperror.ValidationFailed("start_date",
			fmt.Sprintf("start date %s is after end date %s", start, end))
	}
	return start, end, nil
}

func buildRangeReport(records []model.ConsumptionRecord, foods map[string]*model.NutrientFact, sampleCap int) *model.RangeReport {
	report := &model.RangeReport{
		Dates:            []string{},
		DailyCalories:    []float64{},
		MealDistribution: make(map[model.MealType]float64, len(model.MealTypes)),
		FoodCategories:   []model.CategoryCount{},
	}
	for _, mt := range model.MealTypes {
		report.MealDistribution[mt] = 0
	}

	daily := make(map[string]float64)
	foodCounts := make(map[string]int)
	categories := newCategoryHistogram()

	var (
		sample              int
		protein, carbs, fat float64
	)

	for _, rec := range records {
		food := foods[rec.FoodID]

		daily[rec.RecordedOn()] += rec.CaloriesConsumed
		report.MealDistribution[mealBucket(rec.MealType)] += rec.CaloriesConsumed
		foodCounts[foodName(food)]++
		categories.add(foodCategory(food))

		// Per-100g densities of the first sampleCap fully described records.
		if sample < sampleCap && food.HasMacros() {
			protein += *food.ProteinPer100g
			carbs += *food.CarbsPer100g
			fat += *food.FatPer100g
			sample++
		}
	}

	for day := range daily {
		report.Dates = append(report.Dates, day)
	}
	sort.Strings(report.Dates)

	var total float64
	for _, day := range report.Dates {
		report.DailyCalories = append(report.DailyCalories, daily[day])
		total += daily[day]
	}
	report.TotalDays = len(report.Dates)
	if report.TotalDays > 0 {
		report.AverageCaloriesPerDay = math.Round(total / float64(report.TotalDays))
	}

	if sample > 0 {
		report.NutrientAverages = model.NutrientAverages{
			Protein: roundTo1(protein / float64(sample)),
			Carbs:   roundTo1(carbs / float64(sample)),
			Fat:     roundTo1(fat / float64(sample)),
		}
	}
	report.NutrientSampleSize = sample

	report.MostConsumedFood = mostConsumed(foodCounts)
	report.FoodCategories = categories.top(TopCategoriesLimit)
	return report
}

// mostConsumed returns the name with the highest record count.
// Ties go to the lexicographically smallest name so the result does not
// depend on record order.
func mostConsumed(counts map[string]int) string {
	best, bestCount := NoDataFood, 0
	for name, n := range counts {
		if n > bestCount || (n == bestCount && name < best) {
			best, bestCount = name, n
		}
	}
	return best
}

type categoryHistogram struct {
	order  []string
	counts map[string]int
}

func newCategoryHistogram() *categoryHistogram {
	return &categoryHistogram{counts: make(map[string]int)}
}

func (h *categoryHistogram) add(category string) {
	if _, ok := h.counts[category]; !ok {
		h.order = append(h.order, category)
	}
	h.counts[category]++
}

// top sorts by count descending; equal counts keep first-seen order.
func (h *categoryHistogram) top(n int) []model.CategoryCount {
	out := make([]model.CategoryCount, 0, len(h.order))
	for _, c := range h.order {
		out = append(out, model.CategoryCount{Category: c, Count: h.counts[c]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func foodCategory(food *model.NutrientFact) string {
	if food == nil || food.Category == "" {
		return OtherCategory
	}
	return food.Category
}

func roundTo1(v float64) float64 {
	return math.Round(v*10) / 10
}
