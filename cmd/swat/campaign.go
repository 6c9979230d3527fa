package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"watchcommander/internal/app"
	"watchcommander/internal/config"
	"watchcommander/internal/domain"
	"watchcommander/internal/migrate"
	"watchcommander/internal/server"
	"watchcommander/internal/session"
)

func configCmd() *cobra.Command {
	cfg := &cobra.Command{
		Use:   "config",
		Short: "Manage swat.yml",
		Long:  "swat.yml holds the chat model endpoint, the campaign economy and the server settings. Every key is optional; missing keys use the defaults printed by 'swat config init'.",
	}
	cfg.AddCommand(configInitCmd())
	cfg.AddCommand(configShowCmd())
	cfg.AddCommand(configValidateCmd())
	return cfg
}

func configInitCmd() *cobra.Command {
	var force bool
	var saveKey string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default swat.yml and a server secret to .env",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.Path(workspace())
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists; use --force to overwrite", path)
			}
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return err
			}
			if err := os.WriteFile(path, []byte(config.GenerateDefault(saveKey)), 0o644); err != nil {
				return err
			}
			envPath := filepath.Join(workspace(), ".env")
			if err := setEnvValue(envPath, "SWAT_SERVER_JWT_SECRET", uuid.NewString()); err != nil {
				return err
			}
			fmt.Printf("Wrote %s and %s\n", path, envPath)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing swat.yml")
	cmd.Flags().StringVar(&saveKey, "save-key", config.DefaultSaveKey, "campaign save key")
	return cmd
}

func configShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective config",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			cfg.LLM.APIKey = redact(cfg.LLM.APIKey)
			cfg.Server.JWTSecret = redact(cfg.Server.JWTSecret)
			return printJSONOrTable(cfg)
		},
	}
}

func configValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate swat.yml",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := loadConfig()
			if viper.GetBool("json") {
				return printJSON(map[string]any{"ok": err == nil, "error": fmt.Sprint(err)})
			}
			if err != nil {
				return err
			}
			fmt.Println("config OK")
			return nil
		},
	}
}

func redact(s string) string {
	if s == "" {
		return ""
	}
	return "****"
}

func newCmd() *cobra.Command {
	var commander, squad string
	cmd := &cobra.Command{
		Use:   "new",
		Short: "Start a new campaign, replacing the current one",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd.Context(), func(ctx context.Context, s *session.Session) error {
				return s.StartNewGame(ctx, commander, squad)
			})
		},
	}
	cmd.Flags().StringVar(&commander, "commander", "", "commander name")
	cmd.Flags().StringVar(&squad, "squad", "", "squad name")
	_ = cmd.MarkFlagRequired("commander")
	_ = cmd.MarkFlagRequired("squad")
	return cmd
}

func resetCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Discard the campaign and its save",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("this deletes the saved campaign; pass --yes to confirm")
			}
			return withSession(cmd.Context(), func(ctx context.Context, s *session.Session) error {
				return s.ResetGame(ctx)
			})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm")
	return cmd
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the campaign at a glance",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd.Context(), func(ctx context.Context, rt *app.Runtime) error {
				snap := rt.Session.Snapshot()
				if viper.GetBool("json") {
					return printJSON(snap)
				}
				if err := printSummary(snap); err != nil {
					return err
				}
				st := snap.State
				if len(st.Officers) > 0 {
					fmt.Println("\nRoster:")
					printOfficers(st.Officers)
				}
				if len(st.ActiveMissions) > 0 {
					fmt.Println("\nMissions:")
					printMissions(st.ActiveMissions)
				}
				if r := st.LastMissionResult; r != nil {
					verdict := "FAILED"
					if r.Success {
						verdict = "SUCCESS"
					}
					fmt.Printf("\nLast mission: %s %s - %s\n", r.Mission.Title, verdict, r.Outcome)
				}
				if ev := st.PendingRandomEvent; ev != nil && !ev.Resolved {
					fmt.Printf("\nPending: %s - %s (swat random resolve)\n", ev.Title, ev.Description)
				}
				return nil
			})
		},
	}
}

func exportCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the campaign save file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd.Context(), func(ctx context.Context, rt *app.Runtime) error {
				data, err := rt.Session.ExportSave()
				if err != nil {
					return err
				}
				if out == "" || out == "-" {
					_, err := os.Stdout.Write(append(data, '\n'))
					return err
				}
				if err := os.WriteFile(out, data, 0o644); err != nil {
					return err
				}
				fmt.Printf("Saved day %d to %s\n", rt.Session.State().Day, out)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	return cmd
}

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the campaign with a save file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			return withSession(cmd.Context(), func(ctx context.Context, s *session.Session) error {
				return s.ImportSave(ctx, data)
			})
		},
	}
}

func logCmd() *cobra.Command {
	log := &cobra.Command{
		Use:   "log",
		Short: "Campaign log and save journal",
		Long:  "tail shows the in-game log the squad keeps; journal lists every time the campaign was saved or removed.",
	}
	log.AddCommand(logTailCmd())
	log.AddCommand(logJournalCmd())
	return log
}

func logTailCmd() *cobra.Command {
	var n int
	var typ string
	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Show the latest game log entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd.Context(), func(ctx context.Context, rt *app.Runtime) error {
				var entries []domain.LogEntry
				for _, e := range rt.Session.State().GameLog {
					if typ != "" && !strings.EqualFold(string(e.Type), typ) {
						continue
					}
					entries = append(entries, e)
					if len(entries) == n {
						break
					}
				}
				if viper.GetBool("json") {
					return printJSON(entries)
				}
				printGameLog(entries)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&n, "n", 20, "number of entries")
	cmd.Flags().StringVar(&typ, "type", "", "entry type filter (Info, Warning, Error, Success, Mission)")
	return cmd
}

func logJournalCmd() *cobra.Command {
	var n int
	var evtType string
	var cursor int64
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "List save history",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd.Context(), func(ctx context.Context, rt *app.Runtime) error {
				items, err := rt.Store.Journal(ctx, n, cursor, rt.SaveKey(), evtType)
				if err != nil {
					return err
				}
				return printJSONOrTable(items)
			})
		},
	}
	cmd.Flags().IntVar(&n, "n", 20, "number of entries")
	cmd.Flags().StringVar(&evtType, "type", "", "event type filter (campaign.saved, campaign.removed)")
	cmd.Flags().Int64Var(&cursor, "before", 0, "only entries older than this id")
	return cmd
}

func stateCmd() *cobra.Command {
	st := &cobra.Command{Use: "state", Short: "Inspect the stored campaign"}
	st.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Check the schema version and the campaign invariants",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd.Context(), func(ctx context.Context, rt *app.Runtime) error {
				version, err := migrate.Version(ctx, rt.DB)
				if err != nil {
					return err
				}
				latest, err := migrate.Latest()
				if err != nil {
					return err
				}
				invErr := domain.CheckInvariants(rt.Session.State())
				if viper.GetBool("json") {
					return printJSON(map[string]any{
						"schema_version": version,
						"schema_latest":  latest,
						"ok":             invErr == nil,
						"error":          fmt.Sprint(invErr),
					})
				}
				fmt.Printf("schema version %d (latest %d)\n", version, latest)
				if invErr != nil {
					return invErr
				}
				fmt.Println("campaign OK")
				return nil
			})
		},
	})
	return st
}

func tokenCmd() *cobra.Command {
	var subject string
	var ttl time.Duration
	var roles []string
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			token, err := server.SignToken(cfg.Server.JWTSecret, subject, roles, ttl)
			if err != nil {
				return err
			}
			if viper.GetBool("json") {
				return printJSON(map[string]string{"token": token})
			}
			fmt.Println(token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "commander", "token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime (0 never expires)")
	cmd.Flags().StringSliceVar(&roles, "role", nil, "role claim (repeatable)")
	return cmd
}

func setEnvValue(path, key, value string) error {
	var lines []string
	seen := false
	f, err := os.Open(path)
	if err == nil {
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			line := scanner.Text()
			if strings.HasPrefix(line, key+"=") {
				lines = append(lines, fmt.Sprintf("%s=%s", key, value))
				seen = true
			} else {
				lines = append(lines, line)
			}
		}
		if err := scanner.Err(); err != nil {
			f.Close()
			return err
		}
		f.Close()
	} else if !os.IsNotExist(err) {
		return err
	}
	if !seen {
		lines = append(lines, fmt.Sprintf("%s=%s", key, value))
	}
	content := strings.Join(lines, "\n")
	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	return os.WriteFile(path, []byte(content), 0o600)
}
