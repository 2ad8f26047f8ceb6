package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"orgstructure/internal/config"
	"orgstructure/internal/db"
	"orgstructure/internal/logging"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "server",
		Short:        "Organization structure service",
		SilenceUsage: true,
	}
	cmd.AddCommand(newServeCmd(), newMigrateCmd(), newSeedCmd(), newDumpCmd())
	return cmd
}

// app is the shared runtime every command starts from.
type app struct {
	cfg    config.Config
	logger *zap.Logger
	db     *gorm.DB
}

func bootstrap() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("logger error: %w", err)
	}

	conn, err := db.Connect(cfg.Database, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("database connection error: %w", err)
	}

	return &app{cfg: cfg, logger: logger, db: conn}, nil
}

func (a *app) migrate(ctx context.Context) error {
	if err := db.Migrate(ctx, a.db, a.logger); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func (a *app) close() {
	if err := db.Close(a.db); err != nil {
		a.logger.Warn("close database", zap.Error(err))
	}
	_ = a.logger.Sync()
}
