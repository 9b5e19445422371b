package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sakif/foodlog/internal/apperror"
	"github.com/sakif/foodlog/internal/model"
	"github.com/sakif/foodlog/internal/repository"
)

// fakeStore is an in-memory implementation of every repository interface.
// failWith, when set, makes every read return that error, which is how the
// tests simulate an unavailable event log or catalog.
type fakeStore struct {
	mu       sync.Mutex
	nextID   int
	failWith error

	foods          map[string]*model.NutrientFact
	consumption    []model.ConsumptionRecord
	activities     []model.ActivityRecord
	challenges     map[string]*model.Challenge
	participations map[string]*model.Participation
	checkins       []model.Checkin

	// foodLookups records the ids of every GetFoods call.
	foodLookups [][]string
}

var (
	_ repository.FoodRepository        = (*fakeStore)(nil)
	_ repository.ConsumptionRepository = (*fakeStore)(nil)
	_ repository.ActivityRepository    = (*fakeStore)(nil)
	_ repository.ChallengeRepository   = (*fakeStore)(nil)
)

var errStoreDown = errors.New("database is locked")

func newFakeStore() *fakeStore {
	return &fakeStore{
		foods:          make(map[string]*model.NutrientFact),
		challenges:     make(map[string]*model.Challenge),
		participations: make(map[string]*model.Participation),
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func fixedClock(day string) func() time.Time {
	t, err := time.Parse(model.DateLayout, day)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return t.Add(12 * time.Hour) }
}

func (f *fakeStore) id(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s-%d", prefix, f.nextID)
}

// ---- foods ----

func (f *fakeStore) CreateFood(_ context.Context, food *model.NutrientFact) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	food.ID = f.id("food")
	stored := *food
	f.foods[food.ID] = &stored
	return nil
}

func (f *fakeStore) GetFood(_ context.Context, id string) (*model.NutrientFact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	food, ok := f.foods[id]
	if !ok {
		return nil, apperror.NotFound("food", id)
	}
	out := *food
	return &out, nil
}

func (f *fakeStore) GetFoods(_ context.Context, ids []string) (map[string]*model.NutrientFact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.foodLookups = append(f.foodLookups, append([]string(nil), ids...))
	if f.failWith != nil {
		return nil, f.failWith
	}
	out := make(map[string]*model.NutrientFact)
	for _, id := range ids {
		if food, ok := f.foods[id]; ok {
			c := *food
			out[id] = &c
		}
	}
	return out, nil
}

func (f *fakeStore) SearchFoods(_ context.Context, substring string) ([]model.NutrientFact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	out := []model.NutrientFact{}
	for _, food := range f.foods {
		if strings.Contains(strings.ToLower(food.Name), strings.ToLower(substring)) {
			out = append(out, *food)
		}
	}
	sort.Slice(out, func(i, j int) bool { return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name) })
	return out, nil
}

func (f *fakeStore) UpdateFood(_ context.Context, food *model.NutrientFact) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.foods[food.ID]; !ok {
		return apperror.NotFound("food", food.ID)
	}
	stored := *food
	f.foods[food.ID] = &stored
	return nil
}

// ---- consumption ----

func (f *fakeStore) CreateConsumption(_ context.Context, rec *model.ConsumptionRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec.ID = f.id("meal")
	f.consumption = append(f.consumption, *rec)
	return nil
}

func (f *fakeStore) GetConsumption(_ context.Context, id string) (*model.ConsumptionRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, rec := range f.consumption {
		if rec.ID == id {
			out := rec
			return &out, nil
		}
	}
	return nil, apperror.NotFound("meal record", id)
}

func (f *fakeStore) DeleteConsumption(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, rec := range f.consumption {
		if rec.ID == id {
			f.consumption = append(f.consumption[:i], f.consumption[i+1:]...)
			return nil
		}
	}
	return apperror.NotFound("meal record", id)
}

func (f *fakeStore) ListConsumptionByDay(ctx context.Context, userID, day string) ([]model.ConsumptionRecord, error) {
	return f.ListConsumptionByRange(ctx, userID, day, day)
}

// ListConsumptionByRange keeps insertion order, which the tests use as the
// recorded_at order.
func (f *fakeStore) ListConsumptionByRange(_ context.Context, userID, start, end string) ([]model.ConsumptionRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	out := []model.ConsumptionRecord{}
	for _, rec := range f.consumption {
		day := rec.RecordedOn()
		if rec.UserID == userID && day >= start && day <= end {
			out = append(out, rec)
		}
	}
	return out, nil
}

// ---- activities ----

func (f *fakeStore) CreateActivity(_ context.Context, act *model.ActivityRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	act.ID = f.id("act")
	f.activities = append(f.activities, *act)
	return nil
}

func (f *fakeStore) GetActivity(_ context.Context, id string) (*model.ActivityRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, act := range f.activities {
		if act.ID == id {
			out := act
			return &out, nil
		}
	}
	return nil, apperror.NotFound("activity", id)
}

func (f *fakeStore) DeleteActivity(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, act := range f.activities {
		if act.ID == id {
			f.activities = append(f.activities[:i], f.activities[i+1:]...)
			return nil
		}
	}
	return apperror.NotFound("activity", id)
}

func (f *fakeStore) ListActivitiesByDay(_ context.Context, userID, day string) ([]model.ActivityRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.ActivityRecord{}
	for i := len(f.activities) - 1; i >= 0; i-- {
		if act := f.activities[i]; act.UserID == userID && act.Date == day {
			out = append(out, act)
		}
	}
	return out, nil
}

func (f *fakeStore) ListRecentActivities(_ context.Context, userID string, opts repository.ListOptions) ([]model.ActivityRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.ActivityRecord{}
	for i := len(f.activities) - 1; i >= 0; i-- {
		if act := f.activities[i]; act.UserID == userID {
			out = append(out, act)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

// ---- challenges ----

func (f *fakeStore) CreateChallenge(_ context.Context, c *model.Challenge) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c.ID = f.id("ch")
	stored := *c
	f.challenges[c.ID] = &stored
	return nil
}

func (f *fakeStore) GetChallenge(_ context.Context, id string) (*model.Challenge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.challenges[id]
	if !ok {
		return nil, apperror.NotFound("challenge", id)
	}
	out := *c
	return &out, nil
}

func (f *fakeStore) ListActiveChallenges(_ context.Context, day string) ([]model.ChallengeSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.ChallengeSummary{}
	for _, c := range f.challenges {
		if c.ActiveOn(day) {
			out = append(out, model.ChallengeSummary{Challenge: *c, ParticipantCount: f.countLocked(c.ID)})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ParticipantCount != out[j].ParticipantCount {
			return out[i].ParticipantCount > out[j].ParticipantCount
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (f *fakeStore) countLocked(challengeID string) int {
	n := 0
	for _, p := range f.participations {
		if p.ChallengeID == challengeID {
			n++
		}
	}
	return n
}

func (f *fakeStore) CountParticipants(_ context.Context, challengeID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.countLocked(challengeID), nil
}

func (f *fakeStore) CreateParticipation(_ context.Context, p *model.Participation) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.participations {
		if existing.ChallengeID == p.ChallengeID && existing.UserID == p.UserID {
			*p = *existing
			return false, nil
		}
	}
	p.ID = f.id("part")
	p.Progress = 0
	stored := *p
	f.participations[p.ID] = &stored
	return true, nil
}

func (f *fakeStore) GetParticipation(_ context.Context, id string) (*model.Participation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.participations[id]
	if !ok {
		return nil, apperror.NotFound("participation", id)
	}
	out := *p
	return &out, nil
}

func (f *fakeStore) FindParticipation(_ context.Context, challengeID, userID string) (*model.Participation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.participations {
		if p.ChallengeID == challengeID && p.UserID == userID {
			out := *p
			return &out, nil
		}
	}
	return nil, apperror.NotFound("participation", challengeID+"/"+userID)
}

func (f *fakeStore) CheckinExists(_ context.Context, participationID, day string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.checkins {
		if c.ParticipationID == participationID && c.CheckinDate == day {
			return true, nil
		}
	}
	return false, nil
}

// RecordCheckin enforces the same one-per-day rule as the storage constraint.
func (f *fakeStore) RecordCheckin(_ context.Context, c *model.Checkin) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.checkins {
		if existing.ParticipationID == c.ParticipationID && existing.CheckinDate == c.CheckinDate {
			return 0, apperror.Conflict("checkin", c.ParticipationID+"@"+c.CheckinDate)
		}
	}
	p, ok := f.participations[c.ParticipationID]
	if !ok {
		return 0, apperror.NotFound("participation", c.ParticipationID)
	}
	c.ID = f.id("ck")
	c.UserID = p.UserID
	f.checkins = append(f.checkins, *c)
	p.Progress += c.CheckinValue
	return p.Progress, nil
}

func (f *fakeStore) SumCheckinValues(_ context.Context, participationID, day string) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var sum float64
	for _, c := range f.checkins {
		if c.ParticipationID == participationID && c.CheckinDate == day {
			sum += c.CheckinValue
		}
	}
	return sum, nil
}

func (f *fakeStore) ListCheckins(_ context.Context, challengeID string, filter model.CheckinFilter) ([]model.Checkin, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Checkin{}
	for _, c := range f.checkins {
		p := f.participations[c.ParticipationID]
		if p == nil || p.ChallengeID != challengeID {
			continue
		}
		if filter.Date != "" && c.CheckinDate != filter.Date {
			continue
		}
		if filter.UserID != "" && p.UserID != filter.UserID {
			continue
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CheckinDate != out[j].CheckinDate {
			return out[i].CheckinDate > out[j].CheckinDate
		}
		return out[i].UserID < out[j].UserID
	})
	return out, nil
}
