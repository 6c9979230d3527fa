package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"watchcommander/internal/app"
	"watchcommander/internal/server"
)

func serveCmd() *cobra.Command {
	var addr, basePath, schedule string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start HTTP API server",
		Long:  "Serves the commander actions over HTTP. When server.jwt_secret is set every call needs a bearer token from 'swat token'. With a shift schedule the day advances on its own.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd.Context(), func(ctx context.Context, rt *app.Runtime) error {
				cfg := rt.Config
				if !cmd.Flags().Changed("addr") && cfg.Server.Addr != "" {
					addr = cfg.Server.Addr
				}
				if !cmd.Flags().Changed("base-path") && cfg.Server.BasePath != "" {
					basePath = cfg.Server.BasePath
				}
				if !cmd.Flags().Changed("shift-schedule") {
					schedule = cfg.Server.ShiftSchedule
				}
				if schedule != "" {
					if err := rt.Session.StartShiftClock(schedule); err != nil {
						return err
					}
				}
				handler, err := server.New(server.Config{
					Session:  rt.Session,
					Journal:  rt.Store,
					SaveKey:  rt.SaveKey(),
					Metrics:  rt.Metrics,
					BasePath: basePath,
					Auth:     server.AuthConfig{JWTSecret: cfg.Server.JWTSecret},
					Logger:   rt.Log,
				})
				if err != nil {
					return err
				}
				srv := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}
				go func() {
					<-ctx.Done()
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					srv.Shutdown(shutdownCtx)
				}()
				rt.Log.WithField("addr", addr).Info("serving")
				fmt.Printf("Serving Watch Commander API on http://%s%s (OpenAPI at /openapi.json, Swagger UI at /docs, metrics at /metrics)\n", addr, basePath)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "listen address")
	cmd.Flags().StringVar(&basePath, "base-path", "/v0", "API base path")
	cmd.Flags().StringVar(&schedule, "shift-schedule", "", "cron schedule for automatic day advances (e.g. \"@every 30m\")")
	return cmd
}
