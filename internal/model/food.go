// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data, similar to classes in other languages,
// but without inheritance. Go favours composition over inheritance.
package model

import "time"

// NutrientFact is one entry of the nutrient catalog, with values per 100 grams.
//
// WHY *float64 FOR THE MACROS?
// Calories are mandatory for every food, but protein/carbs/fat may be unknown.
// A nil pointer means "missing", which is different from a measured zero.
// The aggregators only apply macros when all three are present (see HasMacros).
type NutrientFact struct {
	ID              string    `json:"id"              db:"id"`
	Name            string    `json:"name"            db:"name"`
	Category        string    `json:"category"        db:"category"` // empty when uncategorised
	CaloriesPer100g float64   `json:"caloriesPer100g" db:"calories_per_100g"`
	ProteinPer100g  *float64  `json:"proteinPer100g"  db:"protein_per_100g"`
	CarbsPer100g    *float64  `json:"carbsPer100g"    db:"carbs_per_100g"`
	FatPer100g      *float64  `json:"fatPer100g"      db:"fat_per_100g"`
	CreatedAt       time.Time `json:"createdAt"       db:"created_at"`
	UpdatedAt       time.Time `json:"updatedAt"       db:"updated_at"`
}

// HasMacros reports whether protein, carbs and fat are all present.
func (f *NutrientFact) HasMacros() bool {
	return f != nil && f.ProteinPer100g != nil && f.CarbsPer100g != nil && f.FatPer100g != nil
}

// CaloriesFor returns the calories contained in servingGrams of this food.
func (f *NutrientFact) CaloriesFor(servingGrams float64) float64 {
	return f.CaloriesPer100g * servingGrams / 100
}

// Float64 returns a pointer to v. Handy for building NutrientFact literals.
func Float64(v float64) *float64 {
	return &v
}
