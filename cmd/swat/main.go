package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"watchcommander/internal/app"
	"watchcommander/internal/config"
	"watchcommander/internal/domain"
	"watchcommander/internal/session"
)

var rootCmd = &cobra.Command{
	Use:   "swat",
	Short: "SWAT Watch Commander",
	Long: `Run a SWAT unit one shift at a time.
- Campaign: the commander, the squad, the budget and the city's opinion of you; saved in .swat/swat.db after every change.
- Officers: recruit, equip, rest and bury them; payroll is paid at the end of every day.
- Missions: dispatch sends a limited number of briefings per day; deploy officers, then answer each event until the mission ends.
- Custody: successful missions can bring in a suspect to interrogate, charge, try, release or turn into an informant.
- Day: 'swat day advance' closes the shift, settles money, expires offers and rotates the roster.
Generated content comes from the chat model configured in swat.yml (see 'swat config init').`,
	SilenceUsage: true,
}

func main() {
	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	registerCommands()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func initConfig() {
	// A workspace .env fills in secrets such as SWAT_LLM_API_KEY; real
	// environment variables win.
	_ = godotenv.Load(filepath.Join(workspace(), ".env"))
	viper.SetEnvPrefix("SWAT")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().StringP("workspace", "w", ".", "workspace directory")
	rootCmd.PersistentFlags().Bool("json", false, "output JSON")
	rootCmd.PersistentFlags().String("log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json)")
	_ = viper.BindPFlag("workspace", rootCmd.PersistentFlags().Lookup("workspace"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	_ = viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log-format", rootCmd.PersistentFlags().Lookup("log-format"))
}

func registerCommands() {
	rootCmd.AddCommand(configCmd())
	rootCmd.AddCommand(newCmd())
	rootCmd.AddCommand(resetCmd())
	rootCmd.AddCommand(statusCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(officerCmd())
	rootCmd.AddCommand(moraleCmd())
	rootCmd.AddCommand(missionCmd())
	rootCmd.AddCommand(dayCmd())
	rootCmd.AddCommand(eventCmd())
	rootCmd.AddCommand(randomCmd())
	rootCmd.AddCommand(suspectCmd())
	rootCmd.AddCommand(nemesisCmd())
	rootCmd.AddCommand(logCmd())
	rootCmd.AddCommand(stateCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(tokenCmd())
}

func workspace() string {
	if w := viper.GetString("workspace"); w != "" {
		return w
	}
	return "."
}

func newLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	if lvl, err := logrus.ParseLevel(viper.GetString("log-level")); err == nil {
		log.SetLevel(lvl)
	}
	if viper.GetString("log-format") == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	return log
}

// loadConfig reads swat.yml (defaults when absent) and applies SWAT_*
// environment overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadOptional(workspace())
	if err != nil {
		return nil, err
	}
	for key, dst := range map[string]*string{
		"campaign.save_key": &cfg.Campaign.SaveKey,
		"llm.provider":      &cfg.LLM.Provider,
		"llm.url":           &cfg.LLM.URL,
		"llm.model":         &cfg.LLM.Model,
		"llm.api_key":       &cfg.LLM.APIKey,
		"server.jwt_secret": &cfg.Server.JWTSecret,
	} {
		if v := strings.TrimSpace(viper.GetString(key)); v != "" {
			*dst = v
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func withRuntime(ctx context.Context, fn func(context.Context, *app.Runtime) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	rt, err := app.Open(ctx, workspace(), cfg, newLogger(), app.Options{})
	if err != nil {
		return err
	}
	defer rt.Close()
	return fn(ctx, rt)
}

// withSession runs one commander action and prints the resulting campaign.
func withSession(ctx context.Context, fn func(context.Context, *session.Session) error) error {
	return withRuntime(ctx, func(ctx context.Context, rt *app.Runtime) error {
		if err := fn(ctx, rt.Session); err != nil {
			return err
		}
		// Suspect capture finishes in the background; wait so it is saved
		// before the process exits.
		rt.Session.Wait()
		return printSummary(rt.Session.Snapshot())
	})
}

// withCampaign is withSession for actions that need a commander in charge.
func withCampaign(ctx context.Context, fn func(context.Context, *session.Session) error) error {
	return withSession(ctx, func(ctx context.Context, s *session.Session) error {
		if err := requireCommander(s.State()); err != nil {
			return err
		}
		return fn(ctx, s)
	})
}

func requireCommander(st domain.GameState) error {
	if st.CommanderName == "" {
		return fmt.Errorf("no campaign in progress; start one with swat new")
	}
	return nil
}

func printJSONOrTable(v any) error {
	if viper.GetBool("json") {
		return printJSON(v)
	}
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// withOutcome runs an action that returns a result worth showing before the
// campaign summary.
func withOutcome[T any](ctx context.Context, fn func(context.Context, *session.Session) (T, error), show func(T)) error {
	return withRuntime(ctx, func(ctx context.Context, rt *app.Runtime) error {
		if err := requireCommander(rt.Session.State()); err != nil {
			return err
		}
		out, err := fn(ctx, rt.Session)
		if err != nil {
			return err
		}
		rt.Session.Wait()
		snap := rt.Session.Snapshot()
		if viper.GetBool("json") {
			return printJSON(map[string]any{"result": out, "snapshot": snap})
		}
		show(out)
		return printSummary(snap)
	})
}
