package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/avelez/scoping-agent/internal/config"
	"github.com/avelez/scoping-agent/internal/observability"
	"github.com/avelez/scoping-agent/internal/server"
)

var (
	servePort       int
	serveConfigPath string
	serveDataDir    string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the scoping API server",
	Long:  `Start an HTTP server that accepts scoping jobs and runs them within the request lifecycle.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on")
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "Path to config.json file")
	serveCmd.Flags().StringVar(&serveDataDir, "data-dir", ".", "Root directory of the local object store")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := config.Load(serveConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, closeLog := observability.SetupLogger(cfg.ActivityLogPath+".log", slog.LevelInfo)
	defer func() { _ = closeLog() }()

	orch, cleanup, err := buildOrchestrator(ctx, cfg, serveDataDir, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	return server.New(servePort, orch, cfg, logger).Start()
}
