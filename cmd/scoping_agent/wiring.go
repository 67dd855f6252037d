package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/avelez/scoping-agent/internal/activitylog"
	"github.com/avelez/scoping-agent/internal/classification"
	"github.com/avelez/scoping-agent/internal/config"
	"github.com/avelez/scoping-agent/internal/enrichment"
	"github.com/avelez/scoping-agent/internal/extraction"
	"github.com/avelez/scoping-agent/internal/llm"
	"github.com/avelez/scoping-agent/internal/pipeline"
	"github.com/avelez/scoping-agent/internal/reporting"
	"github.com/avelez/scoping-agent/internal/scoring"
	"github.com/avelez/scoping-agent/internal/storage"
	"github.com/avelez/scoping-agent/internal/warehouse"
)

// buildOrchestrator wires the pipeline from config. The returned cleanup
// closes the model client and the warehouse pool.
func buildOrchestrator(ctx context.Context, cfg *config.Config, dataDir string, logger *slog.Logger) (*pipeline.Orchestrator, func(), error) {
	if cfg.APIKey == "" {
		return nil, nil, fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}

	model, err := llm.NewGeminiClient(ctx, cfg.ClassifierModel, cfg.APIKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create model client: %w", err)
	}

	var wh warehouse.Client
	var pg *warehouse.PostgresClient
	if cfg.WarehouseDSN != "" {
		pg, err = warehouse.Connect(ctx, cfg.WarehouseDSN)
		if err != nil {
			_ = model.Close()
			return nil, nil, fmt.Errorf("failed to connect to warehouse: %w", err)
		}
		wh = pg
	} else {
		logger.Warn("warehouse.disabled", "reason", "no DSN configured; estimates will use default rates")
	}

	store := storage.NewLocalStore(dataDir)
	orch := pipeline.New(
		store,
		extraction.New(logger),
		enrichment.New(wh, cfg, logger),
		classification.New(model, cfg, logger),
		scoring.New(cfg, logger),
		reporting.New(logger),
		activitylog.NewFileSink(cfg.ActivityLogPath),
		cfg,
		logger,
	)

	cleanup := func() {
		_ = model.Close()
		if pg != nil {
			pg.Close()
		}
	}
	return orch, cleanup, nil
}
