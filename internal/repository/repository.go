// Package repository declares the storage interfaces the services depend on.
//
// Services take these interfaces, never a concrete *sqlite.DB, so tests can
// swap in in-memory fakes and a different backend only touches the composition root.
package repository

import (
	"context"

	"github.com/sakif/foodlog/internal/model"
)

type ListOptions struct {
	Limit  int
	Offset int
}

// FoodRepository stores the nutrient catalog.
type FoodRepository interface {
	CreateFood(ctx context.Context, food *model.NutrientFact) error
	GetFood(ctx context.Context, id string) (*model.NutrientFact, error)
	// GetFoods returns the entries found for ids, keyed by id. Unknown ids are omitted.
	GetFoods(ctx context.Context, ids []string) (map[string]*model.NutrientFact, error)
	// SearchFoods matches name by case-insensitive substring, ordered by name.
	SearchFoods(ctx context.Context, substring string) ([]model.NutrientFact, error)
	UpdateFood(ctx context.Context, food *model.NutrientFact) error
}

// ConsumptionRepository is the consumption part of the event log.
// Listings are ordered by recorded_at ascending.
type ConsumptionRepository interface {
	CreateConsumption(ctx context.Context, rec *model.ConsumptionRecord) error
	GetConsumption(ctx context.Context, id string) (*model.ConsumptionRecord, error)
	DeleteConsumption(ctx context.Context, id string) error
	ListConsumptionByDay(ctx context.Context, userID, day string) ([]model.ConsumptionRecord, error)
	ListConsumptionByRange(ctx context.Context, userID, startDay, endDay string) ([]model.ConsumptionRecord, error)
}

// ActivityRepository is the activity part of the event log.
type ActivityRepository interface {
	CreateActivity(ctx context.Context, act *model.ActivityRecord) error
	GetActivity(ctx context.Context, id string) (*model.ActivityRecord, error)
	DeleteActivity(ctx context.Context, id string) error
	ListActivitiesByDay(ctx context.Context, userID, day string) ([]model.ActivityRecord, error)
	ListRecentActivities(ctx context.Context, userID string, opts ListOptions) ([]model.ActivityRecord, error)
}

// ChallengeRepository stores challenges, participations and check-ins.
type ChallengeRepository interface {
	CreateChallenge(ctx context.Context, c *model.Challenge) error
	GetChallenge(ctx context.Context, id string) (*model.Challenge, error)
	ListActiveChallenges(ctx context.Context, day string) ([]model.ChallengeSummary, error)
	CountParticipants(ctx context.Context, challengeID string) (int, error)

	// CreateParticipation inserts p unless (ChallengeID, UserID) already exists.
	// It reports false, and fills p from the stored row, when it already existed.
	CreateParticipation(ctx context.Context, p *model.Participation) (bool, error)
	GetParticipation(ctx context.Context, id string) (*model.Participation, error)
	FindParticipation(ctx context.Context, challengeID, userID string) (*model.Participation, error)

	CheckinExists(ctx context.Context, participationID, day string) (bool, error)
	// RecordCheckin inserts the check-in and adds its value to the participation's
	// progress in one transaction. A second check-in for the same day returns
	// an apperror.ErrConflict and changes nothing. It returns the new progress.
	RecordCheckin(ctx context.Context, c *model.Checkin) (float64, error)
	SumCheckinValues(ctx context.Context, participationID, day string) (float64, error)
	ListCheckins(ctx context.Context, challengeID string, filter model.CheckinFilter) ([]model.Checkin, error)
}
