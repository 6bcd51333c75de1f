package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"
)

// runServer serves until ctx is cancelled (Ctrl+C) or the listener fails.
// beforeShutdown runs first so long lived streams can be closed.
func runServer(ctx context.Context, server *http.Server, beforeShutdown func(context.Context) error) error {
	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("Shutting down server...")
		// Give server 5 seconds to shut down gracefully
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if beforeShutdown != nil {
			if err := beforeShutdown(shutdownCtx); err != nil {
				slog.Warn("Pre-shutdown hook failed", "err", err)
			}
		}
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown failed", "err", err)
			return err
		}
		slog.Info("Server stopped")
		return nil
	case err := <-serverErr:
		return err
	}
}
