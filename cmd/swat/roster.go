package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"watchcommander/internal/app"
	"watchcommander/internal/domain"
	"watchcommander/internal/session"
)

func officerCmd() *cobra.Command {
	o := &cobra.Command{
		Use:     "officer",
		Aliases: []string{"officers"},
		Short:   "Manage the roster",
	}
	o.AddCommand(officerListCmd())
	o.AddCommand(officerRecruitCmd())
	o.AddCommand(officerDismissCmd())
	o.AddCommand(&cobra.Command{
		Use:   "rehire",
		Short: "Bring back the last dismissed officer",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCampaign(cmd.Context(), func(ctx context.Context, s *session.Session) error {
				return s.RehireLastOfficer(ctx)
			})
		},
	})
	o.AddCommand(&cobra.Command{
		Use:   "honor <officer-id>",
		Short: "Move a fallen officer to the memorial",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCampaign(cmd.Context(), func(ctx context.Context, s *session.Session) error {
				return s.HonorFallen(ctx, args[0])
			})
		},
	})
	o.AddCommand(&cobra.Command{
		Use:   "eulogy <officer-id>",
		Short: "Write a eulogy for a fallen officer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withOutcome(cmd.Context(), func(ctx context.Context, s *session.Session) (string, error) {
				return s.GenerateEulogy(ctx, args[0])
			}, func(text string) { fmt.Printf("%s\n\n", text) })
		},
	})
	o.AddCommand(&cobra.Command{
		Use:   "gear <officer-id> <armor|weapon|utility>",
		Short: "Upgrade one gear track",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			track, ok := domain.ParseGearTrack(args[1])
			if !ok {
				return fmt.Errorf("unknown gear track %q", args[1])
			}
			return withCampaign(cmd.Context(), func(ctx context.Context, s *session.Session) error {
				return s.UpgradeGear(ctx, args[0], track)
			})
		},
	})
	return o
}

func officerListCmd() *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List officers",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd.Context(), func(ctx context.Context, rt *app.Runtime) error {
				var officers []domain.Officer
				for _, o := range rt.Session.State().Officers {
					if status == "" || string(o.Status) == status {
						officers = append(officers, o)
					}
				}
				if viper.GetBool("json") {
					return printJSON(officers)
				}
				printOfficers(officers)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "status filter (Available, On Mission, Injured, KIA, ...)")
	return cmd
}

func officerRecruitCmd() *cobra.Command {
	var specialization string
	cmd := &cobra.Command{
		Use:   "recruit",
		Short: "Recruit an officer",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCampaign(cmd.Context(), func(ctx context.Context, s *session.Session) error {
				return s.RecruitOfficer(ctx, specialization)
			})
		},
	}
	cmd.Flags().StringVar(&specialization, "specialization", "", "preferred specialization (Assault, Sniper, Breacher, Medic, Negotiator, Tech Specialist)")
	return cmd
}

func officerDismissCmd() *cobra.Command {
	var reason string
	cmd := &cobra.Command{
		Use:   "dismiss <officer-id>",
		Short: "Dismiss an officer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withOutcome(cmd.Context(), func(ctx context.Context, s *session.Session) (string, error) {
				return s.DismissOfficer(ctx, args[0], reason)
			}, func(line string) { fmt.Printf("%q\n\n", line) })
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "", "reason given to the officer")
	return cmd
}

func moraleCmd() *cobra.Command {
	m := &cobra.Command{Use: "morale", Short: "Morale events"}
	m.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List morale events",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd.Context(), func(ctx context.Context, rt *app.Runtime) error {
				events := rt.Session.State().MoraleEvents
				if viper.GetBool("json") {
					return printJSON(events)
				}
				printMoraleEvents(events)
				return nil
			})
		},
	})
	m.AddCommand(&cobra.Command{
		Use:   "host <event-id>",
		Short: "Spend budget on a morale event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCampaign(cmd.Context(), func(ctx context.Context, s *session.Session) error {
				return s.HostMoraleEvent(ctx, args[0])
			})
		},
	})
	return m
}
