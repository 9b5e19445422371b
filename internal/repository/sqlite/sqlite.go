// Package sqlite implements the repository interfaces using SQLite as the storage backend.
//
// WHY SQLITE?
// SQLite is an embedded database: it lives inside your Go binary as a single file.
// The food log is a single-user-per-row, append-mostly event log; one file is plenty.
// Tests use ":memory:" for a fresh database per test.
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// modernc.org/sqlite is a pure Go translation of the SQLite C code, so no C compiler
// needed, cross-compiles everywhere Go does.
//
// The pattern is always:
//  1. sql.Open(driverName, dataSourceName) → creates a pool
//  2. db.QueryContext / db.ExecContext     → runs queries
//  3. rows.Scan(&field1, &field2)          → reads results into Go variables
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	// Named import: besides registering the "sqlite" driver, we need the
	// driver's *Error type to recognise UNIQUE constraint violations.
	moderncsqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// DB wraps a sql.DB connection pool and implements every repository interface:
// FoodRepository, ConsumptionRepository, ActivityRepository and ChallengeRepository.
type DB struct {
	conn *sql.DB
}

// New creates a new SQLite database connection and runs migrations.
//
// dbPath examples:
//   - "data/foodlog.db"  → file-based database (persistent)
//   - ":memory:"         → in-memory database (tests)
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dataSourceName(dbPath))
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Every connection to ":memory:" is a separate, empty database.
	// Pin the pool to one connection so all queries see the same data.
	if dbPath == ":memory:" {
		conn.SetMaxOpenConns(1)
	}

	// Ping verifies the connection actually works.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// dataSourceName adds the per-connection settings to dbPath.
//
// database/sql opens connections lazily, so a PRAGMA run with db.Exec only
// reaches one of them. Query parameters are applied by the driver to every
// connection it opens:
//   - busy_timeout: writers wait up to 5s for the lock instead of failing with SQLITE_BUSY.
//   - foreign_keys: off by default in SQLite; participations and check-ins reference their parents.
//   - journal_mode=WAL: readers (report queries) run while a check-in is being written.
//   - _time_format=sqlite: times are written as "2006-01-02 15:04:05-07:00", which the
//     driver parses back. The default time.Time.String() form does not round-trip.
//   - _txlock=immediate: transactions take the write lock at BEGIN, so the busy
//     timeout applies there rather than failing a read-to-write upgrade.
func dataSourceName(dbPath string) string {
	params := url.Values{}
	params.Add("_pragma", "busy_timeout(5000)")
	params.Add("_pragma", "foreign_keys(1)")
	params.Add("_pragma", "journal_mode(WAL)")
	params.Set("_time_format", "sqlite")
	params.Set("_txlock", "immediate")

	sep := "?"
	if strings.Contains(dbPath, "?") {
		sep = "&"
	}
	return dbPath + sep + params.Encode()
}

// storedTime normalises t to UTC before it is written, so timestamp columns
// sort chronologically as text whatever offset the caller used.
func storedTime(t time.Time) time.Time {
	return t.UTC()
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping checks that the database is reachable. Used by the health endpoint.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// migrate runs all database migrations.
//
// CREATE TABLE IF NOT EXISTS is idempotent, so this runs on every start.
func (db *DB) migrate() error {
	// Nutrient catalog. Macros are nullable: NULL means "unknown",
	// which the reports treat differently from a measured 0.
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS foods (
			id                TEXT PRIMARY KEY,
			name              TEXT NOT NULL,
			category          TEXT NOT NULL DEFAULT '',
			calories_per_100g REAL NOT NULL,
			protein_per_100g  REAL,
			carbs_per_100g    REAL,
			fat_per_100g      REAL,
			created_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_foods_name ON foods(name COLLATE NOCASE);
	`)
	if err != nil {
		return fmt.Errorf("creating foods table: %w", err)
	}

	// Consumption event log.
	// recorded_on is the calendar day of recorded_at, fixed at write time,
	// so day and range queries never depend on how SQLite parses timestamps.
	// food_id deliberately has no foreign key: reports LEFT JOIN the catalog.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS consumption_records (
			id                TEXT PRIMARY KEY,
			user_id           TEXT NOT NULL,
			food_id           TEXT NOT NULL,
			meal_type         TEXT NOT NULL,
			serving_size      REAL NOT NULL,
			calories_consumed REAL NOT NULL,
			recorded_at       DATETIME NOT NULL,
			recorded_on       TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_consumption_user_day
			ON consumption_records(user_id, recorded_on);
	`)
	if err != nil {
		return fmt.Errorf("creating consumption_records table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS activity_records (
			id              TEXT PRIMARY KEY,
			user_id         TEXT NOT NULL,
			activity_type   TEXT NOT NULL,
			duration        INTEGER NOT NULL CHECK (duration > 0),
			calories_burned REAL NOT NULL CHECK (calories_burned >= 0),
			activity_date   TEXT NOT NULL,
			notes           TEXT NOT NULL DEFAULT '',
			created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_activity_user_day
			ON activity_records(user_id, activity_date);
	`)
	if err != nil {
		return fmt.Errorf("creating activity_records table: %w", err)
	}

	// Challenges. The two UNIQUE constraints are what make "one participation
	// per user" and "one check-in per participation per day" hold under
	// concurrent requests; the services only pre-check for a friendlier path.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS challenges (
			id           TEXT PRIMARY KEY,
			title        TEXT NOT NULL,
			description  TEXT NOT NULL DEFAULT '',
			start_date   TEXT NOT NULL,
			end_date     TEXT NOT NULL,
			target_value REAL NOT NULL,
			unit         TEXT NOT NULL DEFAULT '',
			created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS participations (
			id           TEXT PRIMARY KEY,
			challenge_id TEXT NOT NULL REFERENCES challenges(id),
			user_id      TEXT NOT NULL,
			progress     REAL NOT NULL DEFAULT 0,
			joined_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (challenge_id, user_id)
		);

		CREATE TABLE IF NOT EXISTS checkins (
			id               TEXT PRIMARY KEY,
			participation_id TEXT NOT NULL REFERENCES participations(id),
			checkin_date     TEXT NOT NULL,
			checkin_value    REAL NOT NULL DEFAULT 1,
			note             TEXT NOT NULL DEFAULT '',
			created_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (participation_id, checkin_date)
		);
	`)
	if err != nil {
		return fmt.Errorf("creating challenge tables: %w", err)
	}

	return nil
}

// withTx runs fn inside a transaction, committing on success and rolling back
// on any error (or panic).
func (db *DB) withTx(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
		if err != nil {
			tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing transaction: %w", err)
	}
	return nil
}

// isUniqueViolation reports whether err is a UNIQUE (or PRIMARY KEY) constraint failure.
func isUniqueViolation(err error) bool {
	var sqliteErr *moderncsqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	code := sqliteErr.Code()
	return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
}

// nullFloat converts an optional value into something database/sql can bind.
func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

// floatPtr is the inverse of nullFloat.
func floatPtr(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}
