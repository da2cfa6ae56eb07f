package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
)

func roiCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roi",
		Short: "Interest accrual commands",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "run",
		Short: "Credit the current month's interest to every active investment once",
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

			sum, err := newRoiScheduler(cfg, db, newEngine(db)).RunOnce(cmd.Context())
			if err != nil {
				return err
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(sum)
		},
	})
	return cmd
}
