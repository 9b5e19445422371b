package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/sakif/foodlog/internal/config"
	sqliteRepo "github.com/sakif/foodlog/internal/repository/sqlite"
	"github.com/sakif/foodlog/internal/service"
)

// app carries the global flags and opens the services per command.
type app struct {
	dbPath  string
	userID  string
	verbose bool
}

// services is everything a command may need, over one open database.
type services struct {
	catalog    *service.CatalogService
	journal    *service.JournalService
	nutrition  *service.NutritionService
	trends     *service.TrendService
	challenges *service.ChallengeService
}

func newRootCmd() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:           "foodlog",
		Short:         "foodlog tracks meals, activities and health challenges",
		Long:          "foodlog logs meals and activities, builds daily and range nutrition reports, and tracks challenge check-ins.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&a.dbPath, "db", "", "Path to SQLite database (default $DB_PATH or "+config.DefaultDBPath+")")
	cmd.PersistentFlags().StringVar(&a.userID, "user", "", "User ID to act as (default $FOODLOG_USER)")
	cmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Log debug output to stderr")

	cmd.AddCommand(
		newFoodCmd(a),
		newMealCmd(a),
		newActivityCmd(a),
		newReportCmd(a),
		newChallengeCmd(a),
		newTokenCmd(a),
	)
	return cmd
}

// logger returns an slog.Logger rendered by charmbracelet/log on stderr.
func (a *app) logger(cmd *cobra.Command) *slog.Logger {
	level := log.WarnLevel
	if a.verbose {
		level = log.DebugLevel
	}
	handler := log.NewWithOptions(cmd.ErrOrStderr(), log.Options{
		Level:           level,
		ReportTimestamp: a.verbose,
		Prefix:          "foodlog",
	})
	return slog.New(handler)
}

// user returns the acting user, which every journal, report and challenge
// command requires.
func (a *app) user() (string, error) {
	if a.userID != "" {
		return a.userID, nil
	}
	if v := os.Getenv("FOODLOG_USER"); v != "" {
		return v, nil
	}
	return "", fmt.Errorf("--user is required (or set FOODLOG_USER)")
}

// withServices loads configuration, opens the database and runs fn.
func (a *app) withServices(cmd *cobra.Command, fn func(*services) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	path := cfg.DBPath
	if a.dbPath != "" {
		path = a.dbPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sqliteRepo.New(path)
	if err != nil {
		return err
	}
	defer db.Close()

	logger := a.logger(cmd)
	logger.Debug("database opened", slog.String("path", path))
	return fn(&services{
		catalog:    service.NewCatalogService(db, logger),
		journal:    service.NewJournalService(db, db, db, logger),
		nutrition:  service.NewNutritionService(db, db, logger),
		trends:     service.NewTrendService(db, db, cfg.NutrientSampleCap, logger),
		challenges: service.NewChallengeService(db, logger),
	})
}

func printJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Fprintln(w, string(b))
	return nil
}

// optionalFloat returns nil unless the flag was set, so unset macros stay missing.
func optionalFloat(cmd *cobra.Command, name string, v float64) *float64 {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	return &v
}
