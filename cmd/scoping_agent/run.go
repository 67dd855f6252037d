package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/avelez/scoping-agent/internal/config"
	"github.com/avelez/scoping-agent/internal/observability"
	"github.com/avelez/scoping-agent/internal/types"
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Run one scoping job end-to-end",
	Long: `Runs the full scoping pipeline for one job: extraction -> historical enrichment -> complexity classification -> aggregation -> report generation.

Configuration can be loaded from a JSON file using --config. Command-line arguments override config file values.`,
	RunE: runScopingCmd,
}

var (
	runConfigPath    string
	runJobIDs        []string
	runInputPath     string
	runInstructions  string
	runDataDir       string
	runTranslatorPct float64
	runReviewerPct   float64
	runPMPct         float64
	runVerbose       bool
)

func init() {
	runCommand.Flags().StringVar(&runConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	runCommand.Flags().StringSliceVarP(&runJobIDs, "job-id", "j", nil, "Job identifier (repeatable for multi-job batches)")
	runCommand.Flags().StringVarP(&runInputPath, "input", "i", "", "Object-store prefix holding the job's documents")
	runCommand.Flags().StringVar(&runInstructions, "instructions", "", "Client instructions passed to enrichment and classification")
	runCommand.Flags().StringVar(&runDataDir, "data-dir", ".", "Root directory of the local object store")
	runCommand.Flags().Float64Var(&runTranslatorPct, "translator-pct", 0.6, "Fraction of hours allocated to translators")
	runCommand.Flags().Float64Var(&runReviewerPct, "reviewer-pct", 0.3, "Fraction of hours allocated to reviewers")
	runCommand.Flags().Float64Var(&runPMPct, "pm-pct", 0.1, "Fraction of hours allocated to project management")
	runCommand.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "Print detailed debug information")

	rootCmd.AddCommand(runCommand)
}

func runScopingCmd(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := config.Load(runConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	level := slog.LevelInfo
	if runVerbose {
		level = slog.LevelDebug
	}
	logger, closeLog := observability.SetupLogger(cfg.ActivityLogPath+".log", level)
	defer func() { _ = closeLog() }()

	orch, cleanup, err := buildOrchestrator(ctx, cfg, runDataDir, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	spec := types.JobSpec{
		JobIDs:        runJobIDs,
		InputPath:     runInputPath,
		Instructions:  runInstructions,
		TranslatorPct: runTranslatorPct,
		ReviewerPct:   runReviewerPct,
		PMPct:         runPMPct,
	}

	rec, err := orch.Run(ctx, spec)
	if err != nil {
		return fmt.Errorf("job %s failed: %w", rec.ID, err)
	}

	est := rec.Estimate
	fmt.Fprintf(os.Stdout, "Job %s complete: %d documents, %d words\n", rec.ID, len(est.Documents), est.TotalWords)
	fmt.Fprintf(os.Stdout, "Total hours: %.2f (translator %.2f / reviewer %.2f / PM %.2f)\n",
		est.TotalHours, est.RoleHours.Translator, est.RoleHours.Reviewer, est.RoleHours.PM)
	fmt.Fprintf(os.Stdout, "Turnaround: %.2f hours (%.2f calendar days)\n", est.TATHours, est.CalendarDays)
	fmt.Fprintf(os.Stdout, "Artifacts:\n  %s\n", strings.Join(artifactList(rec.Artifacts), "\n  "))
	return nil
}

func artifactList(artifacts map[string]string) []string {
	out := make([]string, 0, len(artifacts))
	for _, locator := range artifacts {
		out = append(out, locator)
	}
	sort.Strings(out)
	return out
}
