package cli

import (
	"context"

	"github.com/spf13/cobra"

	"matha-service/internal/config"
	"matha-service/internal/infra/postgres"
	"matha-service/internal/logger"
)

// NewMigrateCmd applies database migrations.
func NewMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run postgres schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrations(cmd.Context(), *configPath)
		},
	}
}

func runMigrations(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		return err
	}
	defer log.Sync()

	applied, err := postgres.Migrate(ctx, cfg.Postgres.URL)
	if err != nil {
		return err
	}
	if len(applied) == 0 {
		log.Info("schema up to date")
		return nil
	}
	log.Info("migrations applied", "migrations", applied)
	return nil
}
