package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/noetic-labs/noesis/internal/domain"
)

// Provider constants
const (
	ProviderPostgres = "postgres"
	ProviderSQLite   = "sqlite"
	ProviderMemory   = "memory"
)

// Open creates a triple log for the configured provider.
// Returns an error if the provider is unknown or its settings are missing.
func Open(ctx context.Context, provider, databaseURL, sqlitePath string) (domain.TripleLog, error) {
	switch provider {
	case ProviderPostgres:
		if databaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for the postgres provider")
		}
		pool, err := pgxpool.New(ctx, databaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("ping database: %w", err)
		}
		return NewPostgresLog(pool), nil

	case ProviderSQLite:
		if sqlitePath == "" {
			return nil, fmt.Errorf("SQLITE_PATH is required for the sqlite provider")
		}
		return NewSQLiteLog(sqlitePath)

	case ProviderMemory:
		return NewMemoryLog(), nil

	default:
		return nil, fmt.Errorf("unknown store provider: %s (valid options: postgres, sqlite, memory)", provider)
	}
}
