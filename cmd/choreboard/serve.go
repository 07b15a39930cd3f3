package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/dukerupert/choreboard/internal/database"
	"github.com/dukerupert/choreboard/internal/seed"
	"github.com/dukerupert/choreboard/internal/server"
	"github.com/dukerupert/choreboard/internal/store"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	Long: `Start the HTTP API and websocket hub. On first start the database is
seeded with the default chore catalog.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.db.Close()

	version, err := database.SchemaVersion(e.db)
	if err != nil {
		return err
	}
	e.logger.Info("database ready", "path", e.cfg.DBPath, "schema_version", version)

	catalog, err := seed.Default()
	if err != nil {
		return err
	}
	seeder := seed.NewSeeder(store.NewPersonStore(e.db), store.NewCategoryStore(e.db), store.NewTaskStore(e.db), e.logger.With("component", "seed"))
	if _, err := seeder.Run(catalog, e.cfg.Roster); err != nil {
		return fmt.Errorf("seed database: %w", err)
	}

	if !e.cfg.Archive.Enabled() {
		e.logger.Warn("archive storage not configured, resets will not be archived")
	}

	srv := server.New(e.db, server.Options{
		ResetRateLimit: e.cfg.Reset.RateLimit,
		Archive:        archiveConfig(e.cfg),
	}, e.logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	srv.StartBackground(ctx)

	httpServer := &http.Server{
		Addr:         ":" + e.cfg.Port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		e.logger.Info("choreboard listening", "addr", "http://localhost:"+e.cfg.Port, "db", e.cfg.DBPath)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	e.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
