package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"watchcommander/internal/app"
	"watchcommander/internal/db"
	"watchcommander/internal/domain"
	"watchcommander/internal/session"
)

func suspectCmd() *cobra.Command {
	s := &cobra.Command{
		Use:     "suspect",
		Aliases: []string{"suspects"},
		Short:   "Custody, interrogation and trials",
	}
	s.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List suspects",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd.Context(), func(ctx context.Context, rt *app.Runtime) error {
				suspects := rt.Session.State().SuspectsInCustody
				if viper.GetBool("json") {
					return printJSON(suspects)
				}
				printSuspects(suspects)
				return nil
			})
		},
	})
	s.AddCommand(suspectInterrogateCmd())
	s.AddCommand(suspectConcludeCmd())
	s.AddCommand(&cobra.Command{
		Use:   "trial <suspect-id>",
		Short: "Take a charged suspect to court",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withOutcome(cmd.Context(), func(ctx context.Context, s *session.Session) (domain.TrialOutcome, error) {
				return s.ProcessTrial(ctx, args[0])
			}, func(out domain.TrialOutcome) {
				fmt.Printf("Verdict: %s. %s\n\n", out.Verdict, out.Sentence)
			})
		},
	})
	for _, c := range []struct {
		use, short string
		run        func(*session.Session) func(context.Context, string) error
	}{
		{"charge", "File charges", func(s *session.Session) func(context.Context, string) error { return s.ChargeSuspect }},
		{"release", "Release a suspect", func(s *session.Session) func(context.Context, string) error { return s.ReleaseSuspect }},
		{"archive", "Archive a closed case", func(s *session.Session) func(context.Context, string) error { return s.ArchiveSuspect }},
		{"ci", "Turn a suspect into a confidential informant", func(s *session.Session) func(context.Context, string) error { return s.RecruitCI }},
		{"nemesis", "Let a released suspect return as a nemesis", func(s *session.Session) func(context.Context, string) error { return s.CreateNemesis }},
	} {
		run := c.run
		s.AddCommand(&cobra.Command{
			Use:   c.use + " <suspect-id>",
			Short: c.short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withCampaign(cmd.Context(), func(ctx context.Context, s *session.Session) error {
					return run(s)(ctx, args[0])
				})
			},
		})
	}
	return s
}

// Interrogations span several CLI invocations, so the transcript is kept
// next to the database until the interrogation is concluded.
func transcriptPath(suspectID string) string {
	return filepath.Join(filepath.Dir(db.Path(workspace())), "transcripts", suspectID+".json")
}

func loadTranscript(suspectID string) ([]domain.InterrogationMessage, error) {
	data, err := os.ReadFile(transcriptPath(suspectID))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var history []domain.InterrogationMessage
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, fmt.Errorf("transcript for %s: %w", suspectID, err)
	}
	return history, nil
}

func saveTranscript(suspectID string, history []domain.InterrogationMessage) error {
	path := transcriptPath(suspectID)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(history, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func suspectInterrogateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "interrogate <suspect-id> <question>",
		Short: "Put one question to a suspect",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			question := strings.Join(args[1:], " ")
			history, err := loadTranscript(id)
			if err != nil {
				return err
			}
			return withOutcome(cmd.Context(), func(ctx context.Context, s *session.Session) (string, error) {
				reply, err := s.InterrogateSuspect(ctx, id, history, question)
				if err != nil {
					return "", err
				}
				history = append(history,
					domain.InterrogationMessage{Role: "Commander", Text: question},
					domain.InterrogationMessage{Role: "Suspect", Text: reply},
				)
				return reply, saveTranscript(id, history)
			}, func(reply string) { fmt.Printf("%q\n\n", reply) })
		},
	}
}

func suspectConcludeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "conclude <suspect-id>",
		Short: "Conclude the interrogation and act on what was learned",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			history, err := loadTranscript(id)
			if err != nil {
				return err
			}
			return withOutcome(cmd.Context(), func(ctx context.Context, s *session.Session) (domain.InterrogationResult, error) {
				res, err := s.ResolveInterrogation(ctx, id, history)
				if err != nil {
					return res, err
				}
				if err := os.Remove(transcriptPath(id)); err != nil && !errors.Is(err, os.ErrNotExist) {
					return res, err
				}
				return res, nil
			}, func(res domain.InterrogationResult) {
				if res.Success {
					fmt.Printf("The suspect talked: %s\n", res.Intel)
				} else {
					fmt.Println("The suspect gave up nothing.")
				}
				if m := res.UnlockedMission; m != nil {
					fmt.Printf("New lead: %s (%s)\n", m.Title, m.Location)
				}
				fmt.Println()
			})
		},
	}
}

func nemesisCmd() *cobra.Command {
	n := &cobra.Command{
		Use:     "nemesis",
		Aliases: []string{"nemeses"},
		Short:   "Recurring antagonists",
	}
	n.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List nemeses",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd.Context(), func(ctx context.Context, rt *app.Runtime) error {
				nemeses := rt.Session.State().Nemeses
				if viper.GetBool("json") {
					return printJSON(nemeses)
				}
				printNemeses(nemeses)
				return nil
			})
		},
	})
	n.AddCommand(&cobra.Command{
		Use:   "strike <nemesis-id>",
		Short: "Put a nemesis operation on the board",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCampaign(cmd.Context(), func(ctx context.Context, s *session.Session) error {
				return s.TriggerNemesisMission(ctx, args[0])
			})
		},
	})
	return n
}
