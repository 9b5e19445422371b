package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/foodlog/internal/apperror"
	"github.com/sakif/foodlog/internal/model"
	"github.com/sakif/foodlog/internal/repository"
)

var _ repository.ChallengeRepository = (*DB)(nil)

const challengeColumns = `id, title, description, start_date, end_date, target_value, unit, created_at`

// CreateChallenge inserts a new challenge definition.
func (db *DB) CreateChallenge(ctx context.Context, c *model.Challenge) error {
	c.ID = xid.New().String()
	c.CreatedAt = storedTime(time.Now())

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO challenges (`+challengeColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Title, c.Description, c.StartDate, c.EndDate, c.TargetValue, c.Unit, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating challenge: %w", err)
	}
	return nil
}

// GetChallenge retrieves a challenge by ID.
func (db *DB) GetChallenge(ctx context.Context, id string) (*model.Challenge, error) {
	var c model.Challenge
	err := db.conn.QueryRowContext(ctx,
		`SELECT `+challengeColumns+` FROM challenges WHERE id = ?`, id,
	).Scan(&c.ID, &c.Title, &c.Description, &c.StartDate, &c.EndDate, &c.TargetValue, &c.Unit, &c.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("challenge", id)
		}
		return nil, fmt.Errorf("sqlite: getting challenge %s: %w", id, err)
	}
	return &c, nil
}

// ListActiveChallenges returns challenges running on day, most popular first.
func (db *DB) ListActiveChallenges(ctx context.Context, day string) ([]model.ChallengeSummary, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT c.id, c.title, c.description, c.start_date, c.end_date,
		        c.target_value, c.unit, c.created_at, COUNT(p.id) AS participant_count
		 FROM challenges c
		 LEFT JOIN participations p ON p.challenge_id = c.id
		 WHERE c.start_date <= ? AND c.end_date >= ?
		 GROUP BY c.id
		 ORDER BY participant_count DESC, c.created_at, c.id`,
		day, day,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing active challenges: %w", err)
	}
	defer rows.Close()

	summaries := make([]model.ChallengeSummary, 0)
	for rows.Next() {
		var s model.ChallengeSummary
		if err := rows.Scan(
			&s.ID, &s.Title, &s.Description, &s.StartDate, &s.EndDate,
			&s.TargetValue, &s.Unit, &s.CreatedAt, &s.ParticipantCount,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning challenge row: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating challenges: %w", err)
	}
	return summaries, nil
}

// CountParticipants returns how many users joined a challenge.
func (db *DB) CountParticipants(ctx context.Context, challengeID string) (int, error) {
	var n int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM participations WHERE challenge_id = ?`, challengeID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("sqlite: counting participants of %s: %w", challengeID, err)
	}
	return n, nil
}

const participationColumns = `id, challenge_id, user_id, progress, joined_at`

// CreateParticipation joins a user to a challenge.
//
// INSERT ... ON CONFLICT DO NOTHING makes the join idempotent even when two
// requests race: the UNIQUE (challenge_id, user_id) constraint decides the
// winner and the loser simply reads the existing row back.
func (db *DB) CreateParticipation(ctx context.Context, p *model.Participation) (bool, error) {
	id := xid.New().String()
	joinedAt := storedTime(time.Now())

	result, err := db.conn.ExecContext(ctx,
		`INSERT INTO participations (`+participationColumns+`)
		 VALUES (?, ?, ?, 0, ?)
		 ON CONFLICT (challenge_id, user_id) DO NOTHING`,
		id, p.ChallengeID, p.UserID, joinedAt,
	)
	if err != nil {
		return false, fmt.Errorf("sqlite: creating participation: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}

	if rowsAffected == 0 {
		existing, err := db.FindParticipation(ctx, p.ChallengeID, p.UserID)
		if err != nil {
			return false, err
		}
		*p = *existing
		return false, nil
	}

	p.ID = id
	p.Progress = 0
	p.JoinedAt = joinedAt
	return true, nil
}

// GetParticipation retrieves a participation by ID.
func (db *DB) GetParticipation(ctx context.Context, id string) (*model.Participation, error) {
	return db.scanParticipation(db.conn.QueryRowContext(ctx,
		`SELECT `+participationColumns+` FROM participations WHERE id = ?`, id), id)
}

// FindParticipation retrieves the participation of userID in challengeID.
func (db *DB) FindParticipation(ctx context.Context, challengeID, userID string) (*model.Participation, error) {
	return db.scanParticipation(db.conn.QueryRowContext(ctx,
		`SELECT `+participationColumns+` FROM participations
		 WHERE challenge_id = ? AND user_id = ?`, challengeID, userID),
		challengeID+"/"+userID)
}

func (db *DB) scanParticipation(row *sql.Row, key string) (*model.Participation, error) {
	var p model.Participation
	if err := row.Scan(&p.ID, &p.ChallengeID, &p.UserID, &p.Progress, &p.JoinedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("participation", key)
		}
		return nil, fmt.Errorf("sqlite: getting participation %s: %w", key, err)
	}
	return &p, nil
}

// CheckinExists reports whether a participation already checked in on day.
func (db *DB) CheckinExists(ctx context.Context, participationID, day string) (bool, error) {
	var n int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM checkins WHERE participation_id = ? AND checkin_date = ?`,
		participationID, day,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking checkin %s@%s: %w", participationID, day, err)
	}
	return n > 0, nil
}

// RecordCheckin writes the check-in row and the progress increment atomically.
//
// Both statements run in one transaction. If the UNIQUE
// (participation_id, checkin_date) constraint rejects the insert, the
// transaction rolls back and progress is untouched, so two concurrent
// check-ins for the same day can never both count.
func (db *DB) RecordCheckin(ctx context.Context, c *model.Checkin) (float64, error) {
	c.ID = xid.New().String()
	c.CreatedAt = storedTime(time.Now())

	var progress float64
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO checkins (id, participation_id, checkin_date, checkin_value, note, created_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			c.ID, c.ParticipationID, c.CheckinDate, c.CheckinValue, c.Note, c.CreatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return apperror.Conflict("checkin", c.ParticipationID+"@"+c.CheckinDate)
			}
			return fmt.Errorf("sqlite: inserting checkin: %w", err)
		}

		result, err := tx.ExecContext(ctx,
			`UPDATE participations SET progress = progress + ? WHERE id = ?`,
			c.CheckinValue, c.ParticipationID,
		)
		if err != nil {
			return fmt.Errorf("sqlite: incrementing progress: %w", err)
		}
		if n, err := result.RowsAffected(); err != nil {
			return fmt.Errorf("sqlite: checking rows affected: %w", err)
		} else if n == 0 {
			return apperror.NotFound("participation", c.ParticipationID)
		}

		if err := tx.QueryRowContext(ctx,
			`SELECT progress FROM participations WHERE id = ?`, c.ParticipationID,
		).Scan(&progress); err != nil {
			return fmt.Errorf("sqlite: reading progress: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return progress, nil
}

// SumCheckinValues totals the check-in values of a participation on one day.
func (db *DB) SumCheckinValues(ctx context.Context, participationID, day string) (float64, error) {
	var total sql.NullFloat64
	err := db.conn.QueryRowContext(ctx,
		`SELECT SUM(checkin_value) FROM checkins WHERE participation_id = ? AND checkin_date = ?`,
		participationID, day,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sqlite: summing checkins %s@%s: %w", participationID, day, err)
	}
	return total.Float64, nil
}

// ListCheckins lists a challenge's check-ins, newest day first, then by user.
func (db *DB) ListCheckins(ctx context.Context, challengeID string, filter model.CheckinFilter) ([]model.Checkin, error) {
	query := `SELECT ck.id, ck.participation_id, p.user_id, ck.checkin_date,
	                 ck.checkin_value, ck.note, ck.created_at
	          FROM checkins ck
	          JOIN participations p ON p.id = ck.participation_id
	          WHERE p.challenge_id = ?`
	args := []any{challengeID}

	if filter.Date != "" {
		query += ` AND ck.checkin_date = ?`
		args = append(args, filter.Date)
	}
	if filter.UserID != "" {
		query += ` AND p.user_id = ?`
		args = append(args, filter.UserID)
	}
	query += ` ORDER BY ck.checkin_date DESC, p.user_id ASC`

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing checkins: %w", err)
	}
	defer rows.Close()

	checkins := make([]model.Checkin, 0)
	for rows.Next() {
		var c model.Checkin
		if err := rows.Scan(
			&c.ID, &c.ParticipationID, &c.UserID, &c.CheckinDate,
			&c.CheckinValue, &c.Note, &c.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning checkin row: %w", err)
		}
		checkins = append(checkins, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating checkins: %w", err)
	}
	return checkins, nil
}
