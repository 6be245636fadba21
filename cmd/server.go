package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	app "daybook/internal"
	"daybook/internal/config"
	"daybook/internal/observability"
	"daybook/internal/storage"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the daybook API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return ServerMain(ctx, cfg, provider)
	},
}

func ServerMain(ctx context.Context, cfg *config.Config, storageProvider storage.Provider) error {
	if cfg == nil {
		return errors.New("config not initialized")
	}
	if storageProvider == nil {
		return errors.New("storage provider is nil")
	}

	enabled, err := observability.InitSentry(cfg.Sentry)
	if err != nil {
		slog.Warn("Sentry initialization failed", "error", err)
	} else if enabled {
		slog.Info("Sentry error reporting enabled", "environment", cfg.Sentry.Environment)
		defer observability.FlushSentry()
	}

	d := newDomain(cfg, storageProvider)
	defer d.Close()

	services, err := newServices(cfg, storageProvider, d)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           app.HTTPServer(cfg, services),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Starting daybook server", "listen", cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
