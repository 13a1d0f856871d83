package cli

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ptpcell/placement-backend/internal/config"
	"github.com/ptpcell/placement-backend/internal/database"
	"github.com/ptpcell/placement-backend/internal/logger"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// Execute runs the operator CLI.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "placementctl",
		Short:        "Operator tooling for the placement backend",
		SilenceUsage: true,
	}

	cmd.AddCommand(newMigrateCmd())
	cmd.AddCommand(newAdminCmd())
	cmd.AddCommand(newStudentsCmd())
	cmd.AddCommand(newAlumniCmd())
	return cmd
}

// env is what every database-backed subcommand starts from.
type env struct {
	cfg  *config.Config
	log  zerolog.Logger
	pool *pgxpool.Pool
}

func connect(ctx context.Context) (*env, error) {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("connect to PostgreSQL: %w", err)
	}
	return &env{cfg: cfg, log: log, pool: pool}, nil
}

func (e *env) Close() {
	e.pool.Close()
}
