// Package app wires the workspace database, the generation gateway and the
// session together for the CLI and the HTTP server.
package app

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sirupsen/logrus"

	"watchcommander/internal/config"
	"watchcommander/internal/db"
	"watchcommander/internal/events"
	"watchcommander/internal/gateway"
	"watchcommander/internal/metrics"
	"watchcommander/internal/migrate"
	"watchcommander/internal/repo"
	"watchcommander/internal/session"
)

// Runtime is an open workspace.
type Runtime struct {
	Config  *config.Config
	DB      *sql.DB
	Store   repo.SaveStore
	Metrics *metrics.Collector
	Session *session.Session
	Log     logrus.FieldLogger
}

// Options overrides parts of the wiring. Generator replaces the HTTP chat
// client; tests use it to script replies.
type Options struct {
	Generator gateway.Generator
	Metrics   *metrics.Collector
}

// Open opens the workspace database, applies pending migrations and restores
// the campaign stored under the configured save key.
func Open(ctx context.Context, workspace string, cfg *config.Config, log logrus.FieldLogger, opts Options) (*Runtime, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	conn, err := db.Open(db.Config{Workspace: workspace})
	if err != nil {
		return nil, err
	}
	if err := migrate.Migrate(ctx, conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	rt, err := wire(ctx, conn, cfg, log, opts)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return rt, nil
}

func wire(ctx context.Context, conn *sql.DB, cfg *config.Config, log logrus.FieldLogger, opts Options) (*Runtime, error) {
	m := opts.Metrics
	if m == nil {
		m = metrics.NewCollector("swat")
	}
	gen := opts.Generator
	if gen == nil {
		gen = gateway.NewChatClient(cfg.LLM, log)
	}
	gw := gateway.New(gen, gateway.Options{
		Logger:      log,
		Metrics:     m,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout(),
	})
	store := repo.SaveStore{DB: conn, Events: events.Writer{}}
	s, err := session.Open(ctx, session.Options{
		Config:  cfg,
		Gateway: gw,
		Store:   store,
		Logger:  log,
		Metrics: m,
	})
	if err != nil {
		return nil, err
	}
	return &Runtime{
		Config:  cfg,
		DB:      conn,
		Store:   store,
		Metrics: m,
		Session: s,
		Log:     log,
	}, nil
}

// SaveKey is the key the campaign is stored under.
func (r *Runtime) SaveKey() string {
	if r.Config.Campaign.SaveKey == "" {
		return config.DefaultSaveKey
	}
	return r.Config.Campaign.SaveKey
}

// Close stops the session and closes the database.
func (r *Runtime) Close() error {
	r.Session.Close()
	return r.DB.Close()
}
