package main

import (
	"log/slog"

	"vestra/internal/database"

	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the ledger schema and seed the first operator",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer closeDB(db)

			if err := database.AutoMigrate(db); err != nil {
				return err
			}
			if err := database.SeedAdmin(db, &cfg.Admin); err != nil {
				return err
			}
			slog.Info("migrations applied", "driver", cfg.Database.Driver)
			return nil
		},
	}
}
