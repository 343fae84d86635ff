package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/noetic-labs/noesis/internal/api"
	"github.com/noetic-labs/noesis/internal/config"
	"github.com/noetic-labs/noesis/internal/store"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP service",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger()
		if err != nil {
			return fmt.Errorf("build logger: %w", err)
		}
		defer func() { _ = logger.Sync() }()

		ctx := context.Background()

		primary, err := store.Open(ctx, config.StoreProvider(), config.DatabaseURL(), config.SQLitePath())
		if err != nil {
			return fmt.Errorf("open triple log: %w", err)
		}
		logger.Info("triple log opened", zap.String("provider", config.StoreProvider()))

		app, err := api.NewApp(primary, logger)
		if err != nil {
			return fmt.Errorf("wire application: %w", err)
		}
		defer func() { _ = app.Log().Close() }()

		if err := app.Knowledge.Restore(ctx); err != nil {
			return fmt.Errorf("restore rule registry: %w", err)
		}

		app.Audit.Start()

		addr := config.ServerAddr()
		srv := &http.Server{
			Addr:    addr,
			Handler: app.Router,
		}

		// Graceful shutdown
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		go func() {
			logger.Info("server starting", zap.String("addr", addr))
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Fatal("server failed", zap.Error(err))
			}
		}()

		<-quit
		logger.Info("shutting down server")

		app.Audit.Stop()

		shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}

		logger.Info("server stopped")
		return nil
	},
}
