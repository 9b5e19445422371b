package model

import (
	"strings"
	"time"
)

// DateLayout is the calendar-day format used for dates in storage and on the wire.
const DateLayout = "2006-01-02"

// MealType is the bucket a consumption record is assigned to.
type MealType string

const (
	Breakfast MealType = "breakfast"
	Lunch     MealType = "lunch"
	Dinner    MealType = "dinner"
	Snack     MealType = "snack"
)

// MealTypes lists the meal buckets in display order.
var MealTypes = []MealType{Breakfast, Lunch, Dinner, Snack}

// ParseMealType normalises s (case-insensitive) and reports whether it names a meal bucket.
func ParseMealType(s string) (MealType, bool) {
	mt := MealType(strings.ToLower(strings.TrimSpace(s)))
	switch mt {
	case Breakfast, Lunch, Dinner, Snack:
		return mt, true
	}
	return "", false
}

// ConsumptionRecord is one logged food intake event.
//
// CaloriesConsumed is a snapshot computed when the record is written and is never
// recomputed. Macros are NOT snapshotted: reports join the current catalog entry,
// so editing a food later changes historical macro breakdowns but not calories.
type ConsumptionRecord struct {
	ID               string    `json:"id"               db:"id"`
	UserID           string    `json:"userId"           db:"user_id"`
	FoodID           string    `json:"foodId"           db:"food_id"`
	MealType         MealType  `json:"mealType"         db:"meal_type"`
	ServingSize      float64   `json:"servingSize"      db:"serving_size"` // grams
	CaloriesConsumed float64   `json:"caloriesConsumed" db:"calories_consumed"`
	RecordedAt       time.Time `json:"recordedAt"       db:"recorded_at"`
}

// RecordedOn is the calendar date of the record, in the location of RecordedAt.
func (r ConsumptionRecord) RecordedOn() string {
	return r.RecordedAt.Format(DateLayout)
}

// ActivityRecord is one logged physical activity.
type ActivityRecord struct {
	ID             string    `json:"id"             db:"id"`
	UserID         string    `json:"userId"         db:"user_id"`
	ActivityType   string    `json:"activityType"   db:"activity_type"`
	Duration       int       `json:"duration"       db:"duration"` // minutes
	CaloriesBurned float64   `json:"caloriesBurned" db:"calories_burned"`
	Date           string    `json:"date"           db:"activity_date"` // YYYY-MM-DD
	Notes          string    `json:"notes"          db:"notes"`
	CreatedAt      time.Time `json:"createdAt"      db:"created_at"`
}
