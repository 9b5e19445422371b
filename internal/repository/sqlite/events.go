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

var (
	_ repository.ConsumptionRepository = (*DB)(nil)
	_ repository.ActivityRepository    = (*DB)(nil)
)

const consumptionColumns = `id, user_id, food_id, meal_type, serving_size, calories_consumed, recorded_at`

// CreateConsumption appends a consumption record to the event log.
// The caller has already computed the calorie snapshot.
func (db *DB) CreateConsumption(ctx context.Context, rec *model.ConsumptionRecord) error {
	rec.ID = xid.New().String()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO consumption_records (`+consumptionColumns+`, recorded_on)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.UserID,
		rec.FoodID,
		string(rec.MealType),
		rec.ServingSize,
		rec.CaloriesConsumed,
		storedTime(rec.RecordedAt),
		rec.RecordedOn(),
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating consumption record: %w", err)
	}
	return nil
}

// GetConsumption retrieves a single consumption record by ID.
func (db *DB) GetConsumption(ctx context.Context, id string) (*model.ConsumptionRecord, error) {
	var rec model.ConsumptionRecord
	err := db.conn.QueryRowContext(ctx,
		`SELECT `+consumptionColumns+` FROM consumption_records WHERE id = ?`, id,
	).Scan(
		&rec.ID, &rec.UserID, &rec.FoodID, &rec.MealType,
		&rec.ServingSize, &rec.CaloriesConsumed, &rec.RecordedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("meal record", id)
		}
		return nil, fmt.Errorf("sqlite: getting consumption record %s: %w", id, err)
	}
	return &rec, nil
}

// DeleteConsumption removes a consumption record by its ID.
func (db *DB) DeleteConsumption(ctx context.Context, id string) error {
	return db.deleteByID(ctx, "consumption_records", "meal record", id)
}

// ListConsumptionByDay returns a user's records for one calendar day, oldest first.
func (db *DB) ListConsumptionByDay(ctx context.Context, userID, day string) ([]model.ConsumptionRecord, error) {
	return db.listConsumption(ctx,
		`WHERE user_id = ? AND recorded_on = ?`, userID, day)
}

// ListConsumptionByRange returns a user's records for an inclusive day range, oldest first.
func (db *DB) ListConsumptionByRange(ctx context.Context, userID, startDay, endDay string) ([]model.ConsumptionRecord, error) {
	return db.listConsumption(ctx,
		`WHERE user_id = ? AND recorded_on BETWEEN ? AND ?`, userID, startDay, endDay)
}

func (db *DB) listConsumption(ctx context.Context, where string, args ...any) ([]model.ConsumptionRecord, error) {
	// rowid breaks ties between records written in the same instant,
	// keeping "first encountered" stable for the reports.
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+consumptionColumns+`
		 FROM consumption_records `+where+`
		 ORDER BY recorded_at, rowid`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing consumption records: %w", err)
	}
	defer rows.Close()

	records := make([]model.ConsumptionRecord, 0)
	for rows.Next() {
		var rec model.ConsumptionRecord
		if err := rows.Scan(
			&rec.ID, &rec.UserID, &rec.FoodID, &rec.MealType,
			&rec.ServingSize, &rec.CaloriesConsumed, &rec.RecordedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning consumption row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating consumption records: %w", err)
	}
	return records, nil
}

const activityColumns = `id, user_id, activity_type, duration, calories_burned, activity_date, notes, created_at`

// CreateActivity appends an activity record to the event log.
func (db *DB) CreateActivity(ctx context.Context, act *model.ActivityRecord) error {
	act.ID = xid.New().String()
	act.CreatedAt = storedTime(time.Now())

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO activity_records (`+activityColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		act.ID,
		act.UserID,
		act.ActivityType,
		act.Duration,
		act.CaloriesBurned,
		act.Date,
		act.Notes,
		act.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating activity record: %w", err)
	}
	return nil
}

// GetActivity retrieves a single activity record by ID.
func (db *DB) GetActivity(ctx context.Context, id string) (*model.ActivityRecord, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+activityColumns+` FROM activity_records WHERE id = ?`, id)

	act, err := scanActivity(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("activity", id)
		}
		return nil, fmt.Errorf("sqlite: getting activity %s: %w", id, err)
	}
	return act, nil
}

// DeleteActivity removes an activity record by its ID.
func (db *DB) DeleteActivity(ctx context.Context, id string) error {
	return db.deleteByID(ctx, "activity_records", "activity", id)
}

// ListActivitiesByDay returns a user's activities on one day, newest first.
func (db *DB) ListActivitiesByDay(ctx context.Context, userID, day string) ([]model.ActivityRecord, error) {
	return db.listActivities(ctx,
		`WHERE user_id = ? AND activity_date = ?
		 ORDER BY created_at DESC`,
		userID, day)
}

// ListRecentActivities returns a user's latest activities, by activity date then creation time.
func (db *DB) ListRecentActivities(ctx context.Context, userID string, opts repository.ListOptions) ([]model.ActivityRecord, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	return db.listActivities(ctx,
		`WHERE user_id = ?
		 ORDER BY activity_date DESC, created_at DESC
		 LIMIT ? OFFSET ?`,
		userID, limit, offset)
}

func (db *DB) listActivities(ctx context.Context, tail string, args ...any) ([]model.ActivityRecord, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+activityColumns+` FROM activity_records `+tail, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing activities: %w", err)
	}
	defer rows.Close()

	acts := make([]model.ActivityRecord, 0)
	for rows.Next() {
		act, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning activity row: %w", err)
		}
		acts = append(acts, *act)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating activities: %w", err)
	}
	return acts, nil
}

func scanActivity(s rowScanner) (*model.ActivityRecord, error) {
	var a model.ActivityRecord
	if err := s.Scan(
		&a.ID, &a.UserID, &a.ActivityType, &a.Duration,
		&a.CaloriesBurned, &a.Date, &a.Notes, &a.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &a, nil
}

// deleteByID deletes one row and maps "nothing deleted" to NotFound.
// table is always a constant from this package, never user input.
func (db *DB) deleteByID(ctx context.Context, table, resource, id string) error {
	result, err := db.conn.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, table), id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting %s %s: %w", resource, id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound(resource, id)
	}
	return nil
}
