package main

import (
	"github.com/spf13/cobra"

	"github.com/edgard/slackchat/internal/database"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations and exit",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, log, err := loadRuntime()
			if err != nil {
				return err
			}

			db, _, err := openStore(cfg, log)
			if err != nil {
				return err
			}
			defer database.CloseDB(db)

			log.Info("Database is up to date", "driver", cfg.Database.Driver)
			return nil
		},
	}
}
