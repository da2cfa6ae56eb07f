package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"vestra/config"
	"vestra/internal/auth"
	"vestra/internal/common"
	"vestra/internal/database"
	"vestra/internal/repository"
	"vestra/internal/scheduler"
	"vestra/internal/settlement"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var (
	cfgFile   string
	logLevel  string
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:   "vestra",
	Short: "Investment platform settlement engine",
	Long: `vestra settles approved deposits, withdrawals and monthly interest
against investor balances, and serves the back-office admin API.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml, json or toml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (console, json)")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(roiCmd())
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	cancel()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads configuration and installs the global logger.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logFormat != "" {
		cfg.Logging.Format = logFormat
	}
	if err := common.SetupLogger(cfg.Logging.Level, cfg.Logging.Format); err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return cfg, nil
}

func openDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	return db, nil
}

func newEngine(db *gorm.DB) *settlement.Engine {
	return settlement.NewEngine(
		repository.NewLedgerRepository(db),
		auth.NewGuard(repository.NewUserRepository(db)),
	)
}

func newRoiScheduler(cfg *config.Config, db *gorm.DB, engine *settlement.Engine) *scheduler.RoiScheduler {
	return scheduler.NewRoiScheduler(
		engine,
		repository.NewInvestmentRepository(db),
		cfg.Scheduler.MonthlyRoiRate,
		cfg.Scheduler.RetryAttempts,
	)
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			slog.Warn("close database", "error", err)
		}
	}
}
