package service

import (
	"context"
	"testing"

	"github.com/sakif/foodlog/internal/apperror"
	"github.com/sakif/foodlog/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// addFood stores a catalog entry directly. Pass three macros for a fully
// described food, or none for one with missing macros.
func addFood(t *testing.T, store *fakeStore, name, category string, kcal float64, macros ...float64) *model.NutrientFact {
	t.Helper()
	food := &model.NutrientFact{Name: name, Category: category, CaloriesPer100g: kcal}
	if len(macros) == 3 {
		food.ProteinPer100g = model.Float64(macros[0])
		food.CarbsPer100g = model.Float64(macros[1])
		food.FatPer100g = model.Float64(macros[2])
	}
	require.NoError(t, store.CreateFood(context.Background(), food))
	return food
}

func TestCatalogService_Create(t *testing.T) {
	tests := []struct {
		name      string
		input     FoodInput
		wantErr   bool
		wantField string
	}{
		{
			name:  "complete food",
			input: FoodInput{Name: " Oats ", Category: "grain", CaloriesPer100g: model.Float64(389), ProteinPer100g: model.Float64(16.9), CarbsPer100g: model.Float64(66.3), FatPer100g: model.Float64(6.9)},
		},
		{
			name:  "macros optional",
			input: FoodInput{Name: "Stew", CaloriesPer100g: model.Float64(120)},
		},
		{
			name:      "name required",
			input:     FoodInput{Name: "  ", CaloriesPer100g: model.Float64(1)},
			wantErr:   true,
			wantField: "name",
		},
		{
			name:      "calories required",
			input:     FoodInput{Name: "Air"},
			wantErr:   true,
			wantField: "caloriesPer100g",
		},
		{
			name:      "negative calories",
			input:     FoodInput{Name: "Ice", CaloriesPer100g: model.Float64(-1)},
			wantErr:   true,
			wantField: "caloriesPer100g",
		},
		{
			name:      "negative macro",
			input:     FoodInput{Name: "Odd", CaloriesPer100g: model.Float64(1), FatPer100g: model.Float64(-2)},
			wantErr:   true,
			wantField: "fatPer100g",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewCatalogService(newFakeStore(), testLogger())

			food, err := svc.Create(context.Background(), tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, apperror.ErrValidation)
				var appErr *apperror.AppError
				require.ErrorAs(t, err, &appErr)
				assert.Equal(t, tt.wantField, appErr.Field)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, food.ID)
			assert.Equal(t, *tt.input.CaloriesPer100g, food.CaloriesPer100g)
		})
	}
}

func TestCatalogService_CreateTrimsName(t *testing.T) {
	svc := NewCatalogService(newFakeStore(), testLogger())

	food, err := svc.Create(context.Background(), FoodInput{Name: "  Rice  ", CaloriesPer100g: model.Float64(130)})
	require.NoError(t, err)
	assert.Equal(t, "Rice", food.Name)
	assert.False(t, food.HasMacros())
}

func TestCatalogService_Get(t *testing.T) {
	store := newFakeStore()
	svc := NewCatalogService(store, testLogger())
	apple := addFood(t, store, "Apple", "fruit", 52)

	got, err := svc.Get(context.Background(), apple.ID)
	require.NoError(t, err)
	assert.Equal(t, "Apple", got.Name)

	_, err = svc.Get(context.Background(), "ghost")
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = svc.Get(context.Background(), "")
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestCatalogService_GetMany(t *testing.T) {
	store := newFakeStore()
	svc := NewCatalogService(store, testLogger())
	apple := addFood(t, store, "Apple", "fruit", 52)

	foods, err := svc.GetMany(context.Background(), []string{apple.ID, apple.ID, "", "ghost"})
	require.NoError(t, err)
	assert.Len(t, foods, 1)
	assert.Equal(t, "Apple", foods[apple.ID].Name)
}

func TestCatalogService_Search(t *testing.T) {
	store := newFakeStore()
	svc := NewCatalogService(store, testLogger())
	addFood(t, store, "Greek Yogurt", "dairy", 59)
	addFood(t, store, "yogurt drink", "dairy", 70)
	addFood(t, store, "Apple", "fruit", 52)

	foods, err := svc.Search(context.Background(), "YOGURT")
	require.NoError(t, err)
	require.Len(t, foods, 2)
	assert.Equal(t, "Greek Yogurt", foods[0].Name)
	assert.Equal(t, "yogurt drink", foods[1].Name)

	blank, err := svc.Search(context.Background(), "   ")
	require.NoError(t, err)
	assert.Empty(t, blank)

	store.failWith = errStoreDown
	_, err = svc.Search(context.Background(), "apple")
	assert.ErrorIs(t, err, errStoreDown)
}

func TestCatalogService_Update(t *testing.T) {
	store := newFakeStore()
	svc := NewCatalogService(store, testLogger())
	rice := addFood(t, store, "Rice", "grain", 130)

	updated, err := svc.Update(context.Background(), rice.ID, FoodInput{
		Name:            "Rice",
		Category:        "grain",
		CaloriesPer100g: model.Float64(135),
		ProteinPer100g:  model.Float64(2.7),
		CarbsPer100g:    model.Float64(28),
		FatPer100g:      model.Float64(0.3),
	})
	require.NoError(t, err)
	assert.Equal(t, 135.0, updated.CaloriesPer100g)
	assert.True(t, updated.HasMacros())

	_, err = svc.Update(context.Background(), "ghost", FoodInput{Name: "x", CaloriesPer100g: model.Float64(1)})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
