package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/dukerupert/choreboard/internal/archive"
	"github.com/dukerupert/choreboard/internal/config"
	"github.com/dukerupert/choreboard/internal/database"
	"github.com/dukerupert/choreboard/internal/logging"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "choreboard",
	Short: "Household chore scoring",
	Long: `choreboard keeps a catalog of household chores, lets each person rate
and classify them, and awards points for every completion.

Run 'choreboard serve' to start the HTTP server.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ./choreboard.yaml)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(scoreboardCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(archivesCmd)
}

// env bundles what every subcommand needs.
type env struct {
	cfg    *config.Config
	db     *sql.DB
	logger *slog.Logger
}

func setup() (*env, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger := logging.Setup(cfg.Log.Level, cfg.Log.Format)

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return &env{cfg: cfg, db: db, logger: logger}, nil
}

func archiveConfig(cfg *config.Config) archive.Config {
	return archive.Config{
		Endpoint:   cfg.Archive.Endpoint,
		Bucket:     cfg.Archive.Bucket,
		Region:     cfg.Archive.Region,
		AccessKey:  cfg.Archive.AccessKey,
		SecretKey:  cfg.Archive.SecretKey,
		Passphrase: cfg.Archive.Passphrase,
	}
}
