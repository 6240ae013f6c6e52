package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/orders-intake/internal/common"
	repo "github.com/joseph-ayodele/orders-intake/internal/repository"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the orders table and indexes if they do not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := common.LoadConfig()
			logger := newLogger(cfg.Server.Debug)
			if cfg.Database.DSN == "" {
				logger.Error("missing DB_URL environment variable")
				return common.NewAppError("CONFIG_ERROR", "DB_URL is required", common.ErrInvalidInput)
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			store, err := repo.Open(ctx, dbConfig(cfg), logger)
			if err != nil {
				logger.Error("failed to open database", "error", err)
				return err
			}
			defer store.Close(logger)

			return repo.Migrate(ctx, store, logger)
		},
	}
}
