// Package service contains the business logic of the food log.
//
// The layers are the same everywhere in this repository:
//
//	Handler / CLI  → parses input, renders output
//	Service        → validates, enforces rules, builds reports
//	Repository     → reads/writes the event log and catalog
//
// Every service takes repository interfaces and a *slog.Logger through its
// constructor, so tests run against in-memory fakes. The acting user is always
// an explicit userID argument; nothing here reads an ambient session.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/foodlog/internal/apperror"
	"github.com/sakif/foodlog/internal/model"
	"github.com/sakif/foodlog/internal/repository"
)

const MaxFoodNameLength = 200

// FoodInput carries the writable fields of a catalog entry.
// nil macros are stored as missing.
type FoodInput struct {
	Name            string   `json:"name"`
	Category        string   `json:"category"`
	CaloriesPer100g *float64 `json:"caloriesPer100g"`
	ProteinPer100g  *float64 `json:"proteinPer100g"`
	CarbsPer100g    *float64 `json:"carbsPer100g"`
	FatPer100g      *float64 `json:"fatPer100g"`
}

// CatalogService is the NutrientCatalog: lookup and maintenance of food facts.
type CatalogService struct {
	repo   repository.FoodRepository
	logger *slog.Logger
}

func NewCatalogService(repo repository.FoodRepository, logger *slog.Logger) *CatalogService {
	return &CatalogService{repo: repo, logger: logger}
}

// Get returns one food by id, or apperror.ErrNotFound.
func (s *CatalogService) Get(ctx context.Context, id string) (*model.NutrientFact, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "food ID is required")
	}
	return s.repo.GetFood(ctx, id)
}

// GetMany returns the foods found for ids, keyed by id.
// Duplicate and blank ids are dropped before the lookup.
func (s *CatalogService) GetMany(ctx context.Context, ids []string) (map[string]*model.NutrientFact, error) {
	seen := make(map[string]struct{}, len(ids))
	unique := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	return s.repo.GetFoods(ctx, unique)
}

// Search matches food names by case-insensitive substring, ordered by name.
// A blank query returns an empty result rather than the whole catalog.
func (s *CatalogService) Search(ctx context.Context, query string) ([]model.NutrientFact, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []model.NutrientFact{}, nil
	}

	foods, err := s.repo.SearchFoods(ctx, query)
	if err != nil {
		s.logger.Error("failed to search foods",
			slog.String("query", query),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("searching foods: %w", err)
	}
	return foods, nil
}

// Create validates and stores a new catalog entry.
func (s *CatalogService) Create(ctx context.Context, in FoodInput) (*model.NutrientFact, error) {
	food := &model.NutrientFact{}
	if err := applyFoodInput(food, in); err != nil {
		return nil, err
	}

	if err := s.repo.CreateFood(ctx, food); err != nil {
		s.logger.Error("failed to create food",
			slog.String("name", food.Name),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating food: %w", err)
	}

	s.logger.Info("food created",
		slog.String("id", food.ID),
		slog.String("name", food.Name),
		slog.Bool("has_macros", food.HasMacros()),
	)
	return food, nil
}

// Update replaces the fields of an existing catalog entry.
// Past consumption records keep their calorie snapshot; their macros follow the new values.
func (s *CatalogService) Update(ctx context.Context, id string, in FoodInput) (*model.NutrientFact, error) {
	food, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyFoodInput(food, in); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateFood(ctx, food); err != nil {
		s.logger.Error("failed to update food",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating food: %w", err)
	}

	s.logger.Info("food updated", slog.String("id", food.ID))
	return food, nil
}

func applyFoodInput(food *model.NutrientFact, in FoodInput) error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return apperror.ValidationFailed("name", "food name is required")
	}
	if len(name) > MaxFoodNameLength {
		return apperror.ValidationFailed("name",
			fmt.Sprintf("food name must be %d characters or less", MaxFoodNameLength))
	}
	if in.CaloriesPer100g == nil {
		return apperror.ValidationFailed("caloriesPer100g", "calories per 100g is required")
	}
	if *in.CaloriesPer100g < 0 {
		return apperror.ValidationFailed("caloriesPer100g", "calories per 100g must not be negative")
	}
	for field, v := range map[string]*float64{
		"proteinPer100g": in.ProteinPer100g,
		"carbsPer100g":   in.CarbsPer100g,
		"fatPer100g":     in.FatPer100g,
	} {
		if v != nil && *v < 0 {
			return apperror.ValidationFailed(field, field+" must not be negative")
		}
	}

	food.Name = name
	food.Category = strings.TrimSpace(in.Category)
	food.CaloriesPer100g = *in.CaloriesPer100g
	food.ProteinPer100g = in.ProteinPer100g
	food.CarbsPer100g = in.CarbsPer100g
	food.FatPer100g = in.FatPer100g
	return nil
}
