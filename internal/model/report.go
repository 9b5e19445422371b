package model

// Reports are built once by the aggregators and returned by value.
// Nothing mutates them afterwards; serialisation happens at the HTTP/CLI boundary.

// MealLine is one consumption record inside a meal bucket, with its join applied.
type MealLine struct {
	Record   ConsumptionRecord `json:"record"`
	FoodName string            `json:"foodName"`
	Protein  float64           `json:"protein"`
	Carbs    float64           `json:"carbs"`
	Fat      float64           `json:"fat"`
}

// MealBreakdown is the per-meal part of a DailySummary.
type MealBreakdown struct {
	Calories float64    `json:"calories"`
	Protein  float64    `json:"protein"`
	Carbs    float64    `json:"carbs"`
	Fat      float64    `json:"fat"`
	Records  []MealLine `json:"records"`
}

// FoodCalories is one entry of the top-foods ranking.
type FoodCalories struct {
	Name     string  `json:"name"`
	Calories float64 `json:"calories"`
}

// DailySummary is the nutrition report for one user and one day.
type DailySummary struct {
	UserID        string                     `json:"userId"`
	Date          string                     `json:"date"`
	TotalCalories float64                    `json:"totalCalories"`
	TotalProtein  float64                    `json:"totalProtein"`
	TotalCarbs    float64                    `json:"totalCarbs"`
	TotalFat      float64                    `json:"totalFat"`
	Meals         map[MealType]MealBreakdown `json:"meals"`
	TopFoods      []FoodCalories             `json:"topFoods"`
}

// NutrientAverages holds sampled per-100g macro averages for a range.
type NutrientAverages struct {
	Protein float64 `json:"protein"`
	Carbs   float64 `json:"carbs"`
	Fat     float64 `json:"fat"`
}

// CategoryCount is one bar of the category histogram.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// RangeReport is the trend report for one user over an inclusive date range.
// Dates and DailyCalories have the same length and order; days without data are absent.
type RangeReport struct {
	UserID                string               `json:"userId"`
	StartDate             string               `json:"startDate"`
	EndDate               string               `json:"endDate"`
	Dates                 []string             `json:"dates"`
	DailyCalories         []float64            `json:"dailyCalories"`
	AverageCaloriesPerDay float64              `json:"averageCaloriesPerDay"`
	TotalDays             int                  `json:"totalDays"`
	MealDistribution      map[MealType]float64 `json:"mealDistribution"`
	NutrientAverages      NutrientAverages     `json:"nutrientAverages"`
	NutrientSampleSize    int                  `json:"nutrientSampleSize"`
	MostConsumedFood      string               `json:"mostConsumedFood"`
	FoodCategories        []CategoryCount      `json:"foodCategories"`
}

// ActionReason explains why a challenge action was or was not applied.
type ActionReason string

const (
	ReasonAccepted              ActionReason = "accepted"
	ReasonAlreadyJoined         ActionReason = "already_joined"
	ReasonAlreadyCheckedInToday ActionReason = "already_checked_in_today"
	ReasonNotJoined             ActionReason = "not_joined"
)

// ChallengeActionResult is the outcome of a join or check-in.
// Duplicate actions are reported here with Accepted=false, not as errors.
type ChallengeActionResult struct {
	Accepted           bool         `json:"accepted"`
	Reason             ActionReason `json:"reason"`
	ParticipationID    string       `json:"participationId,omitempty"`
	Progress           float64      `json:"progress"`
	ProgressPercentage float64      `json:"progressPercentage"`
}

// ChallengeStatus is the per-user view of a challenge.
type ChallengeStatus struct {
	Challenge          Challenge      `json:"challenge"`
	Participation      *Participation `json:"participation,omitempty"`
	ParticipantCount   int            `json:"participantCount"`
	ProgressPercentage float64        `json:"progressPercentage"`
	TodayProgress      float64        `json:"todayProgress"`
	TodayCompleted     bool           `json:"todayCompleted"`
	Completed          bool           `json:"completed"`
}
