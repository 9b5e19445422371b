package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sakif/foodlog/internal/model"
	"github.com/sakif/foodlog/internal/service"
)

func newFoodCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "food",
		Short: "Search and maintain the food catalog",
	}
	cmd.AddCommand(newFoodSearchCmd(a), newFoodAddCmd(a))
	return cmd
}

func newFoodSearchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Find foods whose name contains query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withServices(cmd, func(s *services) error {
				foods, err := s.catalog.Search(cmd.Context(), strings.Join(args, " "))
				if err != nil {
					return err
				}
				if len(foods) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No foods found")
					return nil
				}
				for _, f := range foods {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%.0f kcal/100g\t%s\n", f.ID, f.Name, f.CaloriesPer100g, macroLine(&f))
				}
				return nil
			})
		},
	}
}

func newFoodAddCmd(a *app) *cobra.Command {
	var in service.FoodInput
	var calories, protein, carbs, fat float64
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a food to the catalog",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Name = strings.Join(args, " ")
			in.CaloriesPer100g = optionalFloat(cmd, "calories", calories)
			in.ProteinPer100g = optionalFloat(cmd, "protein", protein)
			in.CarbsPer100g = optionalFloat(cmd, "carbs", carbs)
			in.FatPer100g = optionalFloat(cmd, "fat", fat)
			return a.withServices(cmd, func(s *services) error {
				food, err := s.catalog.Create(cmd.Context(), in)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added food %s (%s)\n", food.Name, food.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&in.Category, "category", "", "Food category")
	cmd.Flags().Float64Var(&calories, "calories", 0, "Calories per 100g (required)")
	cmd.Flags().Float64Var(&protein, "protein", 0, "Protein g per 100g")
	cmd.Flags().Float64Var(&carbs, "carbs", 0, "Carbs g per 100g")
	cmd.Flags().Float64Var(&fat, "fat", 0, "Fat g per 100g")
	return cmd
}

func macroLine(f *model.NutrientFact) string {
	if !f.HasMacros() {
		return "macros: n/a"
	}
	return fmt.Sprintf("P %.1fg | C %.1fg | F %.1fg", *f.ProteinPer100g, *f.CarbsPer100g, *f.FatPer100g)
}
