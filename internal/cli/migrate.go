package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/noetic-labs/noesis/internal/config"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations (postgres provider only)",
	RunE: func(cmd *cobra.Command, args []string) error {
		dbURL := config.DatabaseURL()
		if dbURL == "" {
			return fmt.Errorf("DATABASE_URL is required")
		}

		ctx := context.Background()
		pool, err := pgxpool.New(ctx, dbURL)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer pool.Close()

		if err := pool.Ping(ctx); err != nil {
			return fmt.Errorf("ping database: %w", err)
		}

		sqlFile := filepath.Join(config.MigrationsPath(), "001_initial.sql")
		sql, err := os.ReadFile(sqlFile)
		if err != nil {
			return fmt.Errorf("read migration file: %w", err)
		}
		if _, err := pool.Exec(ctx, string(sql)); err != nil {
			return fmt.Errorf("execute migration: %w", err)
		}

		fmt.Println("migrations applied")
		return nil
	},
}
