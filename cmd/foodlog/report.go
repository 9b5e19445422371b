package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sakif/foodlog/internal/model"
)

func newReportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Nutrition reports",
	}

	var asJSON bool
	cmd.PersistentFlags().BoolVar(&asJSON, "json", false, "Print the report as JSON")

	var date string
	daily := &cobra.Command{
		Use:   "daily",
		Short: "Totals, per-meal breakdown and top foods for one day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := a.user()
			if err != nil {
				return err
			}
			return a.withServices(cmd, func(s *services) error {
				summary, err := s.nutrition.DailySummary(cmd.Context(), userID, date)
				if err != nil {
					return err
				}
				if asJSON {
					return printJSON(cmd.OutOrStdout(), summary)
				}
				printDaily(cmd, summary)
				return nil
			})
		},
	}
	daily.Flags().StringVar(&date, "date", "", "Date YYYY-MM-DD (default today)")

	var start, end string
	rangeCmd := &cobra.Command{
		Use:   "range",
		Short: "Trends over a date range (default the last 7 days)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := a.user()
			if err != nil {
				return err
			}
			return a.withServices(cmd, func(s *services) error {
				report, err := s.trends.RangeReport(cmd.Context(), userID, start, end)
				if err != nil {
					return err
				}
				if asJSON {
					return printJSON(cmd.OutOrStdout(), report)
				}
				printRange(cmd, report)
				return nil
			})
		},
	}
	rangeCmd.Flags().StringVar(&start, "from", "", "Start date YYYY-MM-DD (default end minus 6 days)")
	rangeCmd.Flags().StringVar(&end, "to", "", "End date YYYY-MM-DD (default today)")

	cmd.AddCommand(daily, rangeCmd)
	return cmd
}

func printDaily(cmd *cobra.Command, s *model.DailySummary) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Date: %s\n", s.Date)
	fmt.Fprintf(out, "Calories: %.0f kcal\n", s.TotalCalories)
	fmt.Fprintf(out, "Macros: P %.1fg | C %.1fg | F %.1fg\n", s.TotalProtein, s.TotalCarbs, s.TotalFat)
	for _, mt := range model.MealTypes {
		m := s.Meals[mt]
		fmt.Fprintf(out, "  %-9s %6.0f kcal  (%d items)\n", mt, m.Calories, len(m.Records))
	}
	if len(s.TopFoods) > 0 {
		fmt.Fprintln(out, "Top foods:")
		for i, f := range s.TopFoods {
			fmt.Fprintf(out, "  %d. %s  %.0f kcal\n", i+1, f.Name, f.Calories)
		}
	}
}

func printRange(cmd *cobra.Command, r *model.RangeReport) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Range: %s to %s (%d days with data)\n", r.StartDate, r.EndDate, r.TotalDays)
	for i, d := range r.Dates {
		fmt.Fprintf(out, "  %s  %6.0f kcal\n", d, r.DailyCalories[i])
	}
	fmt.Fprintf(out, "Average: %.0f kcal/day\n", r.AverageCaloriesPerDay)
	fmt.Fprintf(out, "Most consumed: %s\n", r.MostConsumedFood)
	if r.NutrientSampleSize > 0 {
		fmt.Fprintf(out, "Nutrient averages per 100g (%d foods): P %.1fg | C %.1fg | F %.1fg\n",
			r.NutrientSampleSize, r.NutrientAverages.Protein, r.NutrientAverages.Carbs, r.NutrientAverages.Fat)
	}
	for _, c := range r.FoodCategories {
		fmt.Fprintf(out, "  %-12s %d\n", c.Category, c.Count)
	}
}
