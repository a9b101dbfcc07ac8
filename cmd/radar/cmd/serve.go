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

	"github.com/Farouk858/product-radar/api"
	"github.com/Farouk858/product-radar/cache"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API.",
	RunE: func(cmd *cobra.Command, args []string) error {
		slog.Info("radar API starting",
			"host", cfg.Server.Host,
			"port", cfg.Server.Port,
			"mode", cfg.Server.Mode,
			"engine", cfg.Engine.Mode,
		)

		rt, err := newRuntime(cfg)
		if err != nil {
			return err
		}
		defer rt.Close()

		router := api.NewRouter(cfg, api.Deps{
			Scanner:    rt.radar,
			Cache:      cache.New(cfg.Cache.MaxEntries, cfg.Cache.MaxAge),
			Pool:       rt.pool(),
			EngineName: rt.engine.Name(),
			StartTime:  time.Now(),
		})

		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		srv := &http.Server{
			Addr:    addr,
			Handler: router,
		}

		errCh := make(chan error, 1)
		go func() {
			slog.Info("HTTP server listening", "addr", addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()

		ctx, stop := signal.NotifyContext(runContext(cmd), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		select {
		case err := <-errCh:
			return fmt.Errorf("HTTP server: %w", err)
		case <-ctx.Done():
			slog.Info("shutdown signal received")
		}

		// Give in-flight requests 5 seconds to complete.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("HTTP server forced shutdown", "error", err)
		} else {
			slog.Info("HTTP server drained gracefully")
		}
		return nil
	},
}
