package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sakif/foodlog/internal/model"
	"github.com/sakif/foodlog/internal/service"
)

func newChallengeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "challenge",
		Short: "Create, join and check in to challenges",
	}
	cmd.AddCommand(
		newChallengeCreateCmd(a),
		newChallengeListCmd(a),
		newChallengeJoinCmd(a),
		newChallengeCheckinCmd(a),
		newChallengeStatusCmd(a),
	)
	return cmd
}

func newChallengeCreateCmd(a *app) *cobra.Command {
	var in service.ChallengeInput
	cmd := &cobra.Command{
		Use:   "create <title>",
		Short: "Create a challenge",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Title = args[0]
			return a.withServices(cmd, func(s *services) error {
				c, err := s.challenges.CreateChallenge(cmd.Context(), in)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created challenge %s (%s), %s to %s\n", c.Title, c.ID, c.StartDate, c.EndDate)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&in.Description, "description", "", "Description")
	cmd.Flags().StringVar(&in.StartDate, "start", "", "Start date YYYY-MM-DD")
	cmd.Flags().IntVar(&in.DurationDays, "days", 0, "Duration in days")
	cmd.Flags().Float64Var(&in.TargetValue, "target", 0, "Target value")
	cmd.Flags().StringVar(&in.Unit, "unit", "days", "Unit of the target")
	return cmd
}

func newChallengeListCmd(a *app) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List active challenges, most participants first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withServices(cmd, func(s *services) error {
				list, err := s.challenges.ListActive(cmd.Context(), date)
				if err != nil {
					return err
				}
				if len(list) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No active challenges")
					return nil
				}
				for _, c := range list {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s..%s\t%d participants\n", c.ID, c.Title, c.StartDate, c.EndDate, c.ParticipantCount)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Date YYYY-MM-DD (default today)")
	return cmd
}

func newChallengeJoinCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "join <challenge-id>",
		Short: "Join a challenge",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := a.user()
			if err != nil {
				return err
			}
			return a.withServices(cmd, func(s *services) error {
				res, err := s.challenges.Join(cmd.Context(), args[0], userID)
				if err != nil {
					return err
				}
				printAction(cmd, res)
				return nil
			})
		},
	}
}

func newChallengeCheckinCmd(a *app) *cobra.Command {
	var note, date string
	cmd := &cobra.Command{
		Use:   "checkin <challenge-id>",
		Short: "Check in to a joined challenge (once per day)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := a.user()
			if err != nil {
				return err
			}
			return a.withServices(cmd, func(s *services) error {
				res, err := s.challenges.CheckInForUser(cmd.Context(), args[0], userID, date, note)
				if err != nil {
					return err
				}
				printAction(cmd, res)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&note, "note", "", "Optional note")
	cmd.Flags().StringVar(&date, "date", "", "Check-in date YYYY-MM-DD (default today)")
	return cmd
}

func newChallengeStatusCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "status <challenge-id>",
		Short: "Show your progress in a challenge",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := a.user()
			if err != nil {
				return err
			}
			return a.withServices(cmd, func(s *services) error {
				st, err := s.challenges.Status(cmd.Context(), args[0], userID, "")
				if err != nil {
					return err
				}
				if asJSON {
					return printJSON(cmd.OutOrStdout(), st)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%s (%s to %s), %d participants\n", st.Challenge.Title, st.Challenge.StartDate, st.Challenge.EndDate, st.ParticipantCount)
				if st.Participation == nil {
					fmt.Fprintln(out, "Not joined")
					return nil
				}
				fmt.Fprintf(out, "Progress: %.0f / %.0f %s (%.1f%%)\n", st.Participation.Progress, st.Challenge.TargetValue, st.Challenge.Unit, st.ProgressPercentage)
				fmt.Fprintf(out, "Today: %.0f, completed today: %t, completed: %t\n", st.TodayProgress, st.TodayCompleted, st.Completed)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print status as JSON")
	return cmd
}

func printAction(cmd *cobra.Command, res *model.ChallengeActionResult) {
	if res.Accepted {
		fmt.Fprintf(cmd.OutOrStdout(), "OK: progress %.0f (%.1f%%)\n", res.Progress, res.ProgressPercentage)
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Not applied: %s\n", res.Reason)
}
