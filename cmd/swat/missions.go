package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"watchcommander/internal/app"
	"watchcommander/internal/domain"
	"watchcommander/internal/engine"
	"watchcommander/internal/session"
)

func missionCmd() *cobra.Command {
	m := &cobra.Command{
		Use:     "mission",
		Aliases: []string{"missions"},
		Short:   "Briefings and deployments",
	}
	m.AddCommand(missionListCmd())
	m.AddCommand(&cobra.Command{
		Use:   "generate",
		Short: "Request a briefing from dispatch",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCampaign(cmd.Context(), func(ctx context.Context, s *session.Session) error {
				return s.GenerateMission(ctx)
			})
		},
	})
	m.AddCommand(&cobra.Command{
		Use:   "custom <description>",
		Short: "Turn a description into a mission",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCampaign(cmd.Context(), func(ctx context.Context, s *session.Session) error {
				return s.CreateCustomMission(ctx, strings.Join(args, " "))
			})
		},
	})
	m.AddCommand(&cobra.Command{
		Use:   "assign <mission-id> <officer-id>...",
		Short: "Deploy officers on a mission",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCampaign(cmd.Context(), func(ctx context.Context, s *session.Session) error {
				return s.AssignOfficersToMission(ctx, args[0], args[1:])
			})
		},
	})
	m.AddCommand(&cobra.Command{
		Use:   "decline <mission-id>",
		Short: "Turn a mission down",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCampaign(cmd.Context(), func(ctx context.Context, s *session.Session) error {
				return s.DeclineMission(ctx, args[0])
			})
		},
	})
	m.AddCommand(missionEventCmd())
	m.AddCommand(missionDecideCmd())
	m.AddCommand(&cobra.Command{
		Use:   "clear-result",
		Short: "Dismiss the last mission debrief",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCampaign(cmd.Context(), func(ctx context.Context, s *session.Session) error {
				return s.ClearMissionResult(ctx)
			})
		},
	})
	return m
}

func missionListCmd() *cobra.Command {
	var history bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List missions and open events",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd.Context(), func(ctx context.Context, rt *app.Runtime) error {
				st := rt.Session.State()
				missions := st.ActiveMissions
				if history {
					missions = append(append([]domain.Mission{}, st.CompletedMissions...), st.FailedMissions...)
				}
				if viper.GetBool("json") {
					return printJSON(map[string]any{"missions": missions, "events": st.CurrentMissionEvents})
				}
				printMissions(missions)
				if !history && len(st.CurrentMissionEvents) > 0 {
					fmt.Println()
					printMissionEvents(st.CurrentMissionEvents)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&history, "history", false, "show completed and failed missions")
	return cmd
}

func missionEventCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "event <mission-id>",
		Short: "Advance a deployed mission to its next event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withOutcome(cmd.Context(), func(ctx context.Context, s *session.Session) (*domain.MissionEvent, error) {
				if err := s.GenerateMissionEvent(ctx, args[0]); err != nil {
					return nil, err
				}
				for _, ev := range s.State().CurrentMissionEvents {
					if ev.MissionID == args[0] && !ev.Resolved {
						return &ev, nil
					}
				}
				return nil, nil
			}, func(ev *domain.MissionEvent) {
				if ev == nil {
					return
				}
				printMissionEvents([]domain.MissionEvent{*ev})
				fmt.Println()
			})
		},
	}
}

func missionDecideCmd() *cobra.Command {
	var directive string
	cmd := &cobra.Command{
		Use:   "decide <event-id> [option-id]",
		Short: "Answer a mission event",
		Long:  "Pick one of the event's options, or 'custom' with --directive to give your own order. Events without options only need the event id.",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			option := ""
			if len(args) == 2 {
				option = args[1]
			}
			return withOutcome(cmd.Context(), func(ctx context.Context, s *session.Session) (engine.DecisionOutcome, error) {
				return s.MakeDecision(ctx, args[0], option, directive)
			}, func(out engine.DecisionOutcome) {
				if !out.MissionComplete {
					fmt.Println("The operation continues. Run 'swat mission event' for the next development.")
					return
				}
				verdict := "failed"
				if out.Success {
					verdict = "succeeded"
				}
				fmt.Printf("%s %s.\n", out.Mission.Title, verdict)
				if len(out.Casualties) > 0 {
					fmt.Printf("Killed in action: %s\n", strings.Join(out.Casualties, ", "))
				}
				if len(out.Injuries) > 0 {
					fmt.Printf("Injured: %s\n", strings.Join(out.Injuries, ", "))
				}
				fmt.Println()
			})
		},
	}
	cmd.Flags().StringVar(&directive, "directive", "", "order for the custom option")
	return cmd
}

func dayCmd() *cobra.Command {
	d := &cobra.Command{Use: "day", Short: "Shift rotation"}
	d.AddCommand(&cobra.Command{
		Use:   "advance",
		Short: "End the shift",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withOutcome(cmd.Context(), func(ctx context.Context, s *session.Session) (engine.DayReport, error) {
				return s.AdvanceDay(ctx)
			}, func(r engine.DayReport) {
				fmt.Printf("Day %d begins. Payroll %s, city funding %s, events %s, net %s.\n",
					r.Day, domain.FormatMoney(r.Payroll), domain.FormatMoney(r.CityFunding),
					domain.FormatMoney(r.EventBudget), domain.FormatMoney(r.NetBudget))
				if r.ExpiredOffers > 0 {
					fmt.Printf("%d unanswered briefings expired.\n", r.ExpiredOffers)
				}
				if len(r.Recovered) > 0 {
					fmt.Printf("Back on duty: %s\n", strings.Join(r.Recovered, ", "))
				}
				fmt.Println()
			})
		},
	})
	return d
}

func eventCmd() *cobra.Command {
	e := &cobra.Command{
		Use:     "event",
		Aliases: []string{"events"},
		Short:   "Community events",
	}
	e.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List community events",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd.Context(), func(ctx context.Context, rt *app.Runtime) error {
				events := rt.Session.State().AvailableEvents
				if viper.GetBool("json") {
					return printJSON(events)
				}
				printCommunityEvents(events)
				return nil
			})
		},
	})
	e.AddCommand(&cobra.Command{
		Use:   "generate",
		Short: "Request a community event",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCampaign(cmd.Context(), func(ctx context.Context, s *session.Session) error {
				return s.GenerateCommunityEvent(ctx)
			})
		},
	})
	e.AddCommand(&cobra.Command{
		Use:   "schedule <event-id> <officer-id>...",
		Short: "Send officers to a community event",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCampaign(cmd.Context(), func(ctx context.Context, s *session.Session) error {
				return s.ScheduleEvent(ctx, args[0], args[1:])
			})
		},
	})
	e.AddCommand(&cobra.Command{
		Use:   "cancel <event-id>",
		Short: "Cancel a scheduled community event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCampaign(cmd.Context(), func(ctx context.Context, s *session.Session) error {
				return s.CancelEvent(ctx, args[0])
			})
		},
	})
	return e
}

func randomCmd() *cobra.Command {
	r := &cobra.Command{Use: "random", Short: "Random events"}
	r.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the pending random event",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd.Context(), func(ctx context.Context, rt *app.Runtime) error {
				ev := rt.Session.State().PendingRandomEvent
				if viper.GetBool("json") {
					return printJSON(ev)
				}
				if ev == nil || ev.Resolved {
					fmt.Println("Nothing pending.")
					return nil
				}
				fmt.Printf("%s (%s)\n%s\n", ev.Title, ev.Type, ev.Description)
				for _, c := range ev.Choices {
					fmt.Printf("  %s: %s (risk %d%%)\n", c.ID, c.Label, c.Risk)
				}
				return nil
			})
		},
	})
	r.AddCommand(&cobra.Command{
		Use:   "generate",
		Short: "Draw a random event",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCampaign(cmd.Context(), func(ctx context.Context, s *session.Session) error {
				return s.GenerateRandomEvent(ctx)
			})
		},
	})
	r.AddCommand(&cobra.Command{
		Use:   "resolve [choice-id]",
		Short: "Answer the pending random event",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			choice := ""
			if len(args) == 1 {
				choice = args[0]
			}
			return withOutcome(cmd.Context(), func(ctx context.Context, s *session.Session) (engine.RandomOutcome, error) {
				return s.ResolveRandomEvent(ctx, choice)
			}, func(out engine.RandomOutcome) {
				if out.Backfired {
					fmt.Println("It backfired.")
				}
				fmt.Printf("Budget %+d, reputation %+d, morale %+d\n\n",
					out.Effects.BudgetChange, out.Effects.ReputationChange, out.Effects.MoraleChange)
			})
		},
	})
	r.AddCommand(&cobra.Command{
		Use:   "dismiss",
		Short: "Ignore the pending random event",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCampaign(cmd.Context(), func(ctx context.Context, s *session.Session) error {
				return s.DismissRandomEvent(ctx)
			})
		},
	})
	return r
}
