package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"vestra/internal/database"
	"vestra/internal/middleware"
	"vestra/internal/router"

	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the admin HTTP API and, if enabled, the ROI scheduler",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer closeDB(db)

			if migrate {
				if err := database.AutoMigrate(db); err != nil {
					return err
				}
				if err := database.SeedAdmin(db, &cfg.Admin); err != nil {
					return err
				}
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			engine := newEngine(db)
			roi := newRoiScheduler(cfg, db, engine)
			limiter := middleware.NewInMemoryRateLimiter(100, time.Minute)
			go limiter.Cleanup(ctx, time.Minute)

			if cfg.Scheduler.Enabled {
				slog.Info("roi scheduler enabled", "interval", cfg.Scheduler.Interval, "rate", cfg.Scheduler.MonthlyRoiRate.String())
				go roi.Run(ctx, cfg.Scheduler.Interval)
			}

			srv := &http.Server{
				Addr:         ":" + cfg.Server.Port,
				Handler:      router.Setup(cfg, db, router.Deps{Engine: engine, Roi: roi, Limiter: limiter}),
				ReadTimeout:  cfg.Server.ReadTimeout,
				WriteTimeout: cfg.Server.WriteTimeout,
			}
			errCh := make(chan error, 1)
			go func() {
				slog.Info("server listening", "addr", srv.Addr)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err, ok := <-errCh:
				if ok {
					return err
				}
			case <-ctx.Done():
			}

			slog.Info("shutting down")
			shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
			defer stop()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return err
			}
			slog.Info("server stopped")
			return nil
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", true, "run migrations and admin seed before serving")
	return cmd
}
