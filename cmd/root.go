package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"equipment-tracker/internal/platform/db"
	"equipment-tracker/internal/platform/logger"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "equipment-tracker",
	Short: "Lab equipment checkout and check-in tracker",
	Long: "Tracks which student or faculty member holds each piece of lab equipment\n" +
		"and where it is. Run `serve` for the HTTP API.",
	SilenceUsage: true,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", db.DefaultConfigPath, "path to config.yaml")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(statsCmd)
}

// loadConfig reads .env then the YAML config, and builds the process logger.
func loadConfig() (*db.Config, *zap.Logger, error) {
	db.LoadEnv()
	cfg, err := db.LoadConfig(configPath)
	if err != nil {
		return nil, nil, err
	}
	log, err := logger.New(cfg.Mode, cfg.Log.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("build logger: %w", err)
	}
	return cfg, log, nil
}
