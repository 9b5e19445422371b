package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sakif/foodlog/internal/apperror"
	"github.com/sakif/foodlog/internal/model"
	"github.com/sakif/foodlog/internal/repository"
)

const (
	DefaultActivityListLimit = 20
	MaxActivityTypeLength    = 100
)

// MealInput is one food intake to log.
type MealInput struct {
	FoodID      string    `json:"foodId"`
	MealType    string    `json:"mealType"`
	ServingSize float64   `json:"servingSize"` // grams
	RecordedAt  time.Time `json:"recordedAt"`  // zero means now
}

// ActivityInput is one physical activity to log.
type ActivityInput struct {
	ActivityType   string  `json:"activityType"`
	Duration       int     `json:"duration"` // minutes
	CaloriesBurned float64 `json:"caloriesBurned"`
	Date           string  `json:"date"` // YYYY-MM-DD
	Notes          string  `json:"notes"`
}

// JournalService writes to the event log: consumption and activity records.
type JournalService struct {
	foods      repository.FoodRepository
	meals      repository.ConsumptionRepository
	activities repository.ActivityRepository
	logger     *slog.Logger
	now        func() time.Time
}

func NewJournalService(
	foods repository.FoodRepository,
	meals repository.ConsumptionRepository,
	activities repository.ActivityRepository,
	logger *slog.Logger,
) *JournalService {
	return &JournalService{
		foods:      foods,
		meals:      meals,
		activities: activities,
		logger:     logger,
		now:        time.Now,
	}
}

// LogMeal records a food intake for userID.
//
// The calorie value is computed once, here, from the current catalog entry
// and stored with the record. Later catalog edits never change it.
func (s *JournalService) LogMeal(ctx context.Context, userID string, in MealInput) (*model.ConsumptionRecord, error) {
	if userID == "" {
		return nil, apperror.ValidationFailed("userId", "user ID is required")
	}
	foodID := strings.TrimSpace(in.FoodID)
	if foodID == "" {
		return nil, apperror.ValidationFailed("foodId", "food ID is required")
	}
	mealType, ok := model.ParseMealType(in.MealType)
	if !ok {
		return nil, apperror.ValidationFailed("mealType",
			fmt.Sprintf("meal type must be one of breakfast, lunch, dinner, snack; got %q", in.MealType))
	}
	if in.ServingSize < 0 {
		return nil, apperror.ValidationFailed("servingSize", "serving size must not be negative")
	}

	food, err := s.foods.GetFood(ctx, foodID)
	if err != nil {
		return nil, err
	}

	recordedAt := in.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = s.now()
	}

	rec := &model.ConsumptionRecord{
		UserID:           userID,
		FoodID:           food.ID,
		MealType:         mealType,
		ServingSize:      in.ServingSize,
		CaloriesConsumed: food.CaloriesFor(in.ServingSize),
		RecordedAt:       recordedAt,
	}
	if err := s.meals.CreateConsumption(ctx, rec); err != nil {
		s.logger.Error("failed to log meal",
			slog.String("user_id", userID),
			slog.String("food_id", foodID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("logging meal: %w", err)
	}

	s.logger.Info("meal logged",
		slog.String("id", rec.ID),
		slog.String("user_id", userID),
		slog.String("meal_type", string(mealType)),
		slog.Float64("calories", rec.CaloriesConsumed),
	)
	return rec, nil
}

// DeleteMeal removes one of userID's consumption records.
// Another user's record is reported as not found.
func (s *JournalService) DeleteMeal(ctx context.Context, userID, id string) error {
	rec, err := s.meals.GetConsumption(ctx, id)
	if err != nil {
		return err
	}
	if rec.UserID != userID {
		return apperror.NotFound("meal record", id)
	}

	if err := s.meals.DeleteConsumption(ctx, id); err != nil {
		return fmt.Errorf("deleting meal: %w", err)
	}
	s.logger.Info("meal deleted", slog.String("id", id), slog.String("user_id", userID))
	return nil
}

// LogActivity records a physical activity for userID.
func (s *JournalService) LogActivity(ctx context.Context, userID string, in ActivityInput) (*model.ActivityRecord, error) {
	if userID == "" {
		return nil, apperror.ValidationFailed("userId", "user ID is required")
	}
	activityType := strings.TrimSpace(in.ActivityType)
	if activityType == "" {
		return nil, apperror.ValidationFailed("activityType", "activity type is required")
	}
	if len(activityType) > MaxActivityTypeLength {
		return nil, apperror.ValidationFailed("activityType",
			fmt.Sprintf("activity type must be %d characters or less", MaxActivityTypeLength))
	}
	if in.Duration <= 0 {
		return nil, apperror.ValidationFailed("duration", "duration must be a positive number of minutes")
	}
	if in.CaloriesBurned < 0 {
		return nil, apperror.ValidationFailed("caloriesBurned", "calories burned must not be negative")
	}
	date, err := parseDay("date", in.Date)
	if err != nil {
		return nil, err
	}

	act := &model.ActivityRecord{
		UserID:         userID,
		ActivityType:   activityType,
		Duration:       in.Duration,
		CaloriesBurned: in.CaloriesBurned,
		Date:           date,
		Notes:          strings.TrimSpace(in.Notes),
	}
	if err := s.activities.CreateActivity(ctx, act); err != nil {
		s.logger.Error("failed to log activity",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("logging activity: %w", err)
	}

	s.logger.Info("activity logged",
		slog.String("id", act.ID),
		slog.String("user_id", userID),
		slog.String("type", activityType),
	)
	return act, nil
}

// ListActivities returns userID's activities on date, newest first,
// or the most recent ones when date is empty.
func (s *JournalService) ListActivities(ctx context.Context, userID, date string) ([]model.ActivityRecord, error) {
	var (
		acts []model.ActivityRecord
		err  error
	)
	if strings.TrimSpace(date) == "" {
		acts, err = s.activities.ListRecentActivities(ctx, userID,
			repository.ListOptions{Limit: DefaultActivityListLimit})
	} else {
		day, perr := parseDay("date", date)
		if perr != nil {
			return nil, perr
		}
		acts, err = s.activities.ListActivitiesByDay(ctx, userID, day)
	}
	if err != nil {
		s.logger.Error("failed to list activities",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing activities: %w", err)
	}
	return acts, nil
}

// DeleteActivity removes one of userID's activity records.
func (s *JournalService) DeleteActivity(ctx context.Context, userID, id string) error {
	act, err := s.activities.GetActivity(ctx, id)
	if err != nil {
		return err
	}
	if act.UserID != userID {
		return apperror.NotFound("activity", id)
	}

	if err := s.activities.DeleteActivity(ctx, id); err != nil {
		return fmt.Errorf("deleting activity: %w", err)
	}
	s.logger.Info("activity deleted", slog.String("id", id), slog.String("user_id", userID))
	return nil
}

// parseDay validates a YYYY-MM-DD date and returns it in canonical form.
func parseDay(field, s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", apperror.ValidationFailed(field, field+" is required")
	}
	t, err := time.Parse(model.DateLayout, s)
	if err != nil {
		return "", apperror.ValidationFailed(field,
			fmt.Sprintf("%s must be a date in YYYY-MM-DD format; got %q", field, s))
	}
	return t.Format(model.DateLayout), nil
}
