package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/dukerupert/houseboard/internal/config"
	"github.com/dukerupert/houseboard/internal/database"
	"github.com/dukerupert/houseboard/internal/logging"
	"github.com/dukerupert/houseboard/internal/server"
	"github.com/dukerupert/houseboard/internal/wizardworld"
)

func newServeCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the house board web server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Port = port
			}
			return serve(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "Port to listen on (overrides config)")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	logger := logging.Setup(cfg.Log.Level, cfg.Log.Format)

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	srv := server.New(db, wizardworld.NewClient(cfg.UpstreamURL), server.Config{
		SessionTTL:     cfg.SessionTTL,
		TraitRateLimit: cfg.TraitRateLimit,
	}, logger)

	// The catalog is fetched once, in the background; the board shows a
	// loading state until it arrives.
	srv.Loader().Start(ctx)

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.CleanupSchedule, srv.CleanupSessions); err != nil {
		return fmt.Errorf("schedule session cleanup %q: %w", cfg.CleanupSchedule, err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("houseboard running", "addr", "http://localhost:"+cfg.Port, "upstream", cfg.UpstreamURL)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
