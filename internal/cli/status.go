package cli

import (
	"context"
	"fmt"

	"github.com/noetic-labs/noesis/internal/config"
	"github.com/noetic-labs/noesis/internal/store"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the configured store and how many triples it holds",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		log, err := store.Open(ctx, config.StoreProvider(), config.DatabaseURL(), config.SQLitePath())
		if err != nil {
			return fmt.Errorf("open triple log: %w", err)
		}
		defer func() { _ = log.Close() }()

		count, err := log.Count(ctx)
		if err != nil {
			return fmt.Errorf("count triples: %w", err)
		}

		fmt.Printf("provider: %s\n", config.StoreProvider())
		fmt.Printf("triples:  %d\n", count)
		return nil
	},
}
