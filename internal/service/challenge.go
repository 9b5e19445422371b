package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sakif/foodlog/internal/apperror"
	"github.com/sakif/foodlog/internal/model"
	"github.com/sakif/foodlog/internal/repository"
)

const MaxChallengeTitleLength = 200

// ChallengeInput describes a new challenge.
type ChallengeInput struct {
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	StartDate    string  `json:"startDate"`    // YYYY-MM-DD
	DurationDays int     `json:"durationDays"` // end date = start date + duration
	TargetValue  float64 `json:"targetValue"`
	Unit         string  `json:"unit"`
}

// ChallengeService is the ChallengeProgressTracker.
//
// Participation state goes NotJoined → Joined(progress=0) → ... and
// "completed" is only ever derived from progress and target. Duplicate joins
// and check-ins are not errors: they come back as a ChallengeActionResult with
// Accepted=false and a Reason.
type ChallengeService struct {
	repo   repository.ChallengeRepository
	logger *slog.Logger
	now    func() time.Time
}

func NewChallengeService(repo repository.ChallengeRepository, logger *slog.Logger) *ChallengeService {
	return &ChallengeService{repo: repo, logger: logger, now: time.Now}
}

func (s *ChallengeService) today() string {
	return s.now().Format(model.DateLayout)
}

// CreateChallenge validates and stores a new challenge.
func (s *ChallengeService) CreateChallenge(ctx context.Context, in ChallengeInput) (*model.Challenge, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apperror.ValidationFailed("title", "title is required")
	}
	if len(title) > MaxChallengeTitleLength {
		return nil, apperror.ValidationFailed("title",
			fmt.Sprintf("title must be %d characters or less", MaxChallengeTitleLength))
	}
	description := strings.TrimSpace(in.Description)
	if description == "" {
		return nil, apperror.ValidationFailed("description", "description is required")
	}
	unit := strings.TrimSpace(in.Unit)
	if unit == "" {
		return nil, apperror.ValidationFailed("unit", "unit is required")
	}
	if in.DurationDays <= 0 {
		return nil, apperror.ValidationFailed("durationDays", "duration must be a positive number of days")
	}
	if in.TargetValue <= 0 {
		return nil, apperror.ValidationFailed("targetValue", "target value must be positive")
	}
	start, err := parseDay("startDate", in.StartDate)
	if err != nil {
		return nil, err
	}
	startTime, _ := time.Parse(model.DateLayout, start)

	c := &model.Challenge{
		Title:       title,
		Description: description,
		StartDate:   start,
		EndDate:     startTime.AddDate(0, 0, in.DurationDays).Format(model.DateLayout),
		TargetValue: in.TargetValue,
		Unit:        unit,
	}
	if err := s.repo.CreateChallenge(ctx, c); err != nil {
		s.logger.Error("failed to create challenge",
			slog.String("title", title),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating challenge: %w", err)
	}

	s.logger.Info("challenge created",
		slog.String("id", c.ID),
		slog.String("start", c.StartDate),
		slog.String("end", c.EndDate),
	)
	return c, nil
}

// Get returns one challenge.
func (s *ChallengeService) Get(ctx context.Context, id string) (*model.Challenge, error) {
	return s.repo.GetChallenge(ctx, id)
}

// ListActive returns the challenges running on day (empty means today),
// most participants first.
func (s *ChallengeService) ListActive(ctx context.Context, day string) ([]model.ChallengeSummary, error) {
	if day == "" {
		day = s.today()
	}
	day, err := parseDay("date", day)
	if err != nil {
		return nil, err
	}

	list, err := s.repo.ListActiveChallenges(ctx, day)
	if err != nil {
		s.logger.Error("failed to list challenges", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing challenges: %w", err)
	}
	return list, nil
}

// Join adds userID to a challenge. Joining twice is a no-op that reports
// ReasonAlreadyJoined with the existing progress.
func (s *ChallengeService) Join(ctx context.Context, challengeID, userID string) (*model.ChallengeActionResult, error) {
	if userID == "" {
		return nil, apperror.ValidationFailed("userId", "user ID is required")
	}
	challenge, err := s.repo.GetChallenge(ctx, challengeID)
	if err != nil {
		return nil, err
	}

	p := &model.Participation{ChallengeID: challenge.ID, UserID: userID}
	created, err := s.repo.CreateParticipation(ctx, p)
	if err != nil {
		s.logger.Error("failed to join challenge",
			slog.String("challenge_id", challengeID),
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("joining challenge: %w", err)
	}

	result := &model.ChallengeActionResult{
		Accepted:           created,
		Reason:             model.ReasonAccepted,
		ParticipationID:    p.ID,
		Progress:           p.Progress,
		ProgressPercentage: ProgressPercentage(p, challenge),
	}
	if !created {
		result.Reason = model.ReasonAlreadyJoined
	}

	s.logger.Info("challenge join",
		slog.String("challenge_id", challengeID),
		slog.String("user_id", userID),
		slog.String("reason", string(result.Reason)),
	)
	return result, nil
}

// CheckIn records one check-in for participationID on date (empty means today).
//
// A second check-in for the same day is rejected with
// ReasonAlreadyCheckedInToday and progress is left unchanged. The existence
// pre-check only avoids a failed write on the common path; the storage
// uniqueness constraint is what settles concurrent requests.
func (s *ChallengeService) CheckIn(ctx context.Context, participationID, date, note string) (*model.ChallengeActionResult, error) {
	p, err := s.repo.GetParticipation(ctx, participationID)
	if err != nil {
		return nil, err
	}
	challenge, err := s.repo.GetChallenge(ctx, p.ChallengeID)
	if err != nil {
		return nil, err
	}
	return s.checkIn(ctx, p, challenge, date, note)
}

// CheckInForUser resolves userID's participation in challengeID and checks in.
// A user who has not joined gets ReasonNotJoined.
func (s *ChallengeService) CheckInForUser(ctx context.Context, challengeID, userID, date, note string) (*model.ChallengeActionResult, error) {
	challenge, err := s.repo.GetChallenge(ctx, challengeID)
	if err != nil {
		return nil, err
	}

	p, err := s.repo.FindParticipation(ctx, challenge.ID, userID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return &model.ChallengeActionResult{Reason: model.ReasonNotJoined}, nil
		}
		return nil, fmt.Errorf("finding participation: %w", err)
	}
	return s.checkIn(ctx, p, challenge, date, note)
}

func (s *ChallengeService) checkIn(ctx context.Context, p *model.Participation, challenge *model.Challenge, date, note string) (*model.ChallengeActionResult, error) {
	if date == "" {
		date = s.today()
	}
	day, err := parseDay("date", date)
	if err != nil {
		return nil, err
	}

	rejected := func() *model.ChallengeActionResult {
		s.logger.Info("check-in rejected",
			slog.String("participation_id", p.ID),
			slog.String("date", day),
			slog.String("reason", string(model.ReasonAlreadyCheckedInToday)),
		)
		return &model.ChallengeActionResult{
			Reason:             model.ReasonAlreadyCheckedInToday,
			ParticipationID:    p.ID,
			Progress:           p.Progress,
			ProgressPercentage: ProgressPercentage(p, challenge),
		}
	}

	exists, err := s.repo.CheckinExists(ctx, p.ID, day)
	if err != nil {
		return nil, fmt.Errorf("checking existing check-in: %w", err)
	}
	if exists {
		return rejected(), nil
	}

	progress, err := s.repo.RecordCheckin(ctx, &model.Checkin{
		ParticipationID: p.ID,
		UserID:          p.UserID,
		CheckinDate:     day,
		CheckinValue:    model.CheckinValue,
		Note:            strings.TrimSpace(note),
	})
	if err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			// Lost the race to a concurrent check-in for the same day.
			if fresh, ferr := s.repo.GetParticipation(ctx, p.ID); ferr == nil {
				p = fresh
			}
			return rejected(), nil
		}
		s.logger.Error("failed to record check-in",
			slog.String("participation_id", p.ID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("recording check-in: %w", err)
	}

	p.Progress = progress
	s.logger.Info("check-in accepted",
		slog.String("participation_id", p.ID),
		slog.String("date", day),
		slog.Float64("progress", progress),
	)
	return &model.ChallengeActionResult{
		Accepted:           true,
		Reason:             model.ReasonAccepted,
		ParticipationID:    p.ID,
		Progress:           progress,
		ProgressPercentage: ProgressPercentage(p, challenge),
	}, nil
}

// ProgressPercentage is progress / target × 100, or 0 when the target is not positive.
func ProgressPercentage(p *model.Participation, c *model.Challenge) float64 {
	if p == nil || c == nil || c.TargetValue <= 0 {
		return 0
	}
	return p.Progress / c.TargetValue * 100
}

// TodayCompleted reports whether the check-ins of participationID on today add
// up to the challenge target. The target is the cumulative one: a single day
// only reaches it when the target is at most one day's check-in value.
func (s *ChallengeService) TodayCompleted(ctx context.Context, p *model.Participation, c *model.Challenge, today string) (bool, float64, error) {
	sum, err := s.repo.SumCheckinValues(ctx, p.ID, today)
	if err != nil {
		return false, 0, fmt.Errorf("summing today's check-ins: %w", err)
	}
	return sum >= c.TargetValue, sum, nil
}

// Status is userID's view of a challenge on today (empty means today).
func (s *ChallengeService) Status(ctx context.Context, challengeID, userID, today string) (*model.ChallengeStatus, error) {
	if today == "" {
		today = s.today()
	}
	today, err := parseDay("date", today)
	if err != nil {
		return nil, err
	}

	challenge, err := s.repo.GetChallenge(ctx, challengeID)
	if err != nil {
		return nil, err
	}
	count, err := s.repo.CountParticipants(ctx, challenge.ID)
	if err != nil {
		return nil, fmt.Errorf("counting participants: %w", err)
	}

	status := &model.ChallengeStatus{Challenge: *challenge, ParticipantCount: count}

	p, err := s.repo.FindParticipation(ctx, challenge.ID, userID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return status, nil
		}
		return nil, fmt.Errorf("finding participation: %w", err)
	}

	status.Participation = p
	status.ProgressPercentage = ProgressPercentage(p, challenge)
	status.Completed = challenge.TargetValue > 0 && p.Progress >= challenge.TargetValue
	status.TodayCompleted, status.TodayProgress, err = s.TodayCompleted(ctx, p, challenge, today)
	if err != nil {
		return nil, err
	}
	return status, nil
}

// ListCheckins lists a challenge's check-ins, newest day first then by user.
func (s *ChallengeService) ListCheckins(ctx context.Context, challengeID string, filter model.CheckinFilter) ([]model.Checkin, error) {
	if _, err := s.repo.GetChallenge(ctx, challengeID); err != nil {
		return nil, err
	}
	if filter.Date != "" {
		day, err := parseDay("date", filter.Date)
		if err != nil {
			return nil, err
		}
		filter.Date = day
	}

	checkins, err := s.repo.ListCheckins(ctx, challengeID, filter)
	if err != nil {
		s.logger.Error("failed to list check-ins",
			slog.String("challenge_id", challengeID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing check-ins: %w", err)
	}
	return checkins, nil
}
