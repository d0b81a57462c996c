package main

import (
	"fmt"

	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/config"
	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/logging"
	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/repository"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func NewMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Creates the tables in a local PostgreSQL database.",
		Long: `Creates or updates the tables used by the server. The hosted schema and
its row-level policies stay authoritative; this is for local development.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			db, err := repository.InitDB(cfg.Database, logger)
			if err != nil {
				return fmt.Errorf("could not connect to db: %w", err)
			}
			if err := repository.Migrate(db); err != nil {
				return fmt.Errorf("could not migrate db: %w", err)
			}
			logger.Info("database migrated", zap.String("scoped_role", cfg.Database.ScopedRole))
			return nil
		},
	}
}
