package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/foodlog/internal/apperror"
	"github.com/sakif/foodlog/internal/model"
	"github.com/sakif/foodlog/internal/repository"
)

// compile-time check that *DB implements repository.FoodRepository
var _ repository.FoodRepository = (*DB)(nil)

const foodColumns = `id, name, category, calories_per_100g,
	protein_per_100g, carbs_per_100g, fat_per_100g, created_at, updated_at`

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanFood(s rowScanner) (*model.NutrientFact, error) {
	var (
		f                   model.NutrientFact
		protein, carbs, fat sql.NullFloat64
	)
	if err := s.Scan(
		&f.ID, &f.Name, &f.Category, &f.CaloriesPer100g,
		&protein, &carbs, &fat, &f.CreatedAt, &f.UpdatedAt,
	); err != nil {
		return nil, err
	}
	f.ProteinPer100g = floatPtr(protein)
	f.CarbsPer100g = floatPtr(carbs)
	f.FatPer100g = floatPtr(fat)
	return &f, nil
}

// CreateFood inserts a new catalog entry. ID and timestamps are filled in place.
func (db *DB) CreateFood(ctx context.Context, food *model.NutrientFact) error {
	food.ID = xid.New().String()
	now := storedTime(time.Now())
	food.CreatedAt = now
	food.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO foods (`+foodColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		food.ID,
		food.Name,
		food.Category,
		food.CaloriesPer100g,
		nullFloat(food.ProteinPer100g),
		nullFloat(food.CarbsPer100g),
		nullFloat(food.FatPer100g),
		food.CreatedAt,
		food.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating food: %w", err)
	}
	return nil
}

// GetFood retrieves a single catalog entry by ID.
func (db *DB) GetFood(ctx context.Context, id string) (*model.NutrientFact, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+foodColumns+` FROM foods WHERE id = ?`, id)

	food, err := scanFood(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("food", id)
		}
		return nil, fmt.Errorf("sqlite: getting food %s: %w", id, err)
	}
	return food, nil
}

// GetFoods looks up many catalog entries in one query.
// The result only contains ids that exist; callers treat absence as a lost join.
func (db *DB) GetFoods(ctx context.Context, ids []string) (map[string]*model.NutrientFact, error) {
	foods := make(map[string]*model.NutrientFact, len(ids))
	if len(ids) == 0 {
		return foods, nil
	}

	// One "?" per id. The values still go through parameter binding.
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+foodColumns+` FROM foods WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: getting foods: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		food, err := scanFood(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning food row: %w", err)
		}
		foods[food.ID] = food
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating foods: %w", err)
	}
	return foods, nil
}

// SearchFoods returns foods whose name contains substring, ignoring case, ordered by name.
//
// SQLite's LIKE is case-insensitive for ASCII. LIKE metacharacters in the
// user's input are escaped so "50%" matches literally.
func (db *DB) SearchFoods(ctx context.Context, substring string) ([]model.NutrientFact, error) {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(substring)

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+foodColumns+`
		 FROM foods
		 WHERE name LIKE ? ESCAPE '\'
		 ORDER BY name COLLATE NOCASE, id`,
		"%"+escaped+"%",
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: searching foods: %w", err)
	}
	defer rows.Close()

	foods := make([]model.NutrientFact, 0)
	for rows.Next() {
		food, err := scanFood(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning food row: %w", err)
		}
		foods = append(foods, *food)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating foods: %w", err)
	}
	return foods, nil
}

// UpdateFood overwrites a catalog entry. Existing consumption records keep their
// calorie snapshot, but their macros follow the new values.
func (db *DB) UpdateFood(ctx context.Context, food *model.NutrientFact) error {
	food.UpdatedAt = storedTime(time.Now())

	result, err := db.conn.ExecContext(ctx,
		`UPDATE foods
		 SET name = ?, category = ?, calories_per_100g = ?,
		     protein_per_100g = ?, carbs_per_100g = ?, fat_per_100g = ?, updated_at = ?
		 WHERE id = ?`,
		food.Name,
		food.Category,
		food.CaloriesPer100g,
		nullFloat(food.ProteinPer100g),
		nullFloat(food.CarbsPer100g),
		nullFloat(food.FatPer100g),
		food.UpdatedAt,
		food.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating food %s: %w", food.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("food", food.ID)
	}
	return nil
}
