package model

import "time"

// Challenge is a group health challenge with a cumulative target.
type Challenge struct {
	ID          string    `json:"id"          db:"id"`
	Title       string    `json:"title"       db:"title"`
	Description string    `json:"description" db:"description"`
	StartDate   string    `json:"startDate"   db:"start_date"` // YYYY-MM-DD, inclusive
	EndDate     string    `json:"endDate"     db:"end_date"`   // YYYY-MM-DD, inclusive
	TargetValue float64   `json:"targetValue" db:"target_value"`
	Unit        string    `json:"unit"        db:"unit"`
	CreatedAt   time.Time `json:"createdAt"   db:"created_at"`
}

// ActiveOn reports whether day (YYYY-MM-DD) falls inside the challenge window.
// The layout sorts lexically, so plain string comparison is enough.
func (c *Challenge) ActiveOn(day string) bool {
	return c.StartDate <= day && day <= c.EndDate
}

// ChallengeSummary is a challenge together with its participant count.
type ChallengeSummary struct {
	Challenge
	ParticipantCount int `json:"participantCount"`
}

// Participation links one user to one challenge and carries the progress accumulator.
// There is at most one Participation per (ChallengeID, UserID).
type Participation struct {
	ID          string    `json:"id"          db:"id"`
	ChallengeID string    `json:"challengeId" db:"challenge_id"`
	UserID      string    `json:"userId"      db:"user_id"`
	Progress    float64   `json:"progress"    db:"progress"`
	JoinedAt    time.Time `json:"joinedAt"    db:"joined_at"`
}

// CheckinValue is the fixed amount a single check-in adds to progress.
const CheckinValue = 1

// Checkin is a dated assertion that the user did the challenge's action that day.
type Checkin struct {
	ID              string    `json:"id"              db:"id"`
	ParticipationID string    `json:"participationId" db:"participation_id"`
	UserID          string    `json:"userId"          db:"-"` // filled by joins for listings
	CheckinDate     string    `json:"checkinDate"     db:"checkin_date"`
	CheckinValue    float64   `json:"checkinValue"    db:"checkin_value"`
	Note            string    `json:"note"            db:"note"`
	CreatedAt       time.Time `json:"createdAt"       db:"created_at"`
}

// CheckinFilter narrows a challenge's check-in listing. Zero values mean "any".
type CheckinFilter struct {
	Date   string
	UserID string
}
