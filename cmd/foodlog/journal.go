package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sakif/foodlog/internal/model"
	"github.com/sakif/foodlog/internal/service"
)

func newMealCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "meal",
		Short: "Log meals",
	}

	var (
		in service.MealInput
		at string
	)
	logCmd := &cobra.Command{
		Use:   "log <food-id>",
		Short: "Log a serving of a catalog food",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := a.user()
			if err != nil {
				return err
			}
			in.FoodID = args[0]
			if at != "" {
				t, err := time.ParseInLocation("2006-01-02 15:04", at, time.Local)
				if err != nil {
					return fmt.Errorf("invalid --at %q (expected YYYY-MM-DD HH:MM)", at)
				}
				in.RecordedAt = t
			}
			return a.withServices(cmd, func(s *services) error {
				rec, err := s.journal.LogMeal(cmd.Context(), userID, in)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Logged %s: %.0fg, %.0f kcal (%s)\n", rec.MealType, rec.ServingSize, rec.CaloriesConsumed, rec.ID)
				return nil
			})
		},
	}
	logCmd.Flags().StringVar(&in.MealType, "meal", string(model.Snack), "Meal type: breakfast|lunch|dinner|snack")
	logCmd.Flags().Float64Var(&in.ServingSize, "grams", 100, "Serving size in grams")
	logCmd.Flags().StringVar(&at, "at", "", "Time eaten, YYYY-MM-DD HH:MM (default now)")

	cmd.AddCommand(logCmd)
	return cmd
}

func newActivityCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Log and list physical activities",
	}

	var in service.ActivityInput
	addCmd := &cobra.Command{
		Use:   "add <type>",
		Short: "Log an activity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := a.user()
			if err != nil {
				return err
			}
			in.ActivityType = args[0]
			if in.Date == "" {
				in.Date = time.Now().Format(model.DateLayout)
			}
			return a.withServices(cmd, func(s *services) error {
				act, err := s.journal.LogActivity(cmd.Context(), userID, in)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Logged %s on %s: %d min, %.0f kcal (%s)\n", act.ActivityType, act.Date, act.Duration, act.CaloriesBurned, act.ID)
				return nil
			})
		},
	}
	addCmd.Flags().IntVar(&in.Duration, "minutes", 0, "Duration in minutes")
	addCmd.Flags().Float64Var(&in.CaloriesBurned, "calories", 0, "Calories burned")
	addCmd.Flags().StringVar(&in.Date, "date", "", "Date YYYY-MM-DD (default today)")
	addCmd.Flags().StringVar(&in.Notes, "notes", "", "Free-form notes")

	var date string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List activities for a day, or the most recent ones",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := a.user()
			if err != nil {
				return err
			}
			return a.withServices(cmd, func(s *services) error {
				acts, err := s.journal.ListActivities(cmd.Context(), userID, date)
				if err != nil {
					return err
				}
				if len(acts) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No activities")
					return nil
				}
				for _, act := range acts {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d min\t%.0f kcal\t%s\n", act.Date, act.ActivityType, act.Duration, act.CaloriesBurned, act.Notes)
				}
				return nil
			})
		},
	}
	listCmd.Flags().StringVar(&date, "date", "", "Date YYYY-MM-DD (default: most recent)")

	cmd.AddCommand(addCmd, listCmd)
	return cmd
}
