// Package pipeline drives the scoping job lifecycle: a state machine from
// RECEIVED through COMPLETE, with FAILED reachable from any non-terminal
// state. Per-document failures never fail the job; only an invalid spec, an
// unreachable input location, zero extractable documents, or the job timeout
// do.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/avelez/scoping-agent/internal/activitylog"
	"github.com/avelez/scoping-agent/internal/classification"
	"github.com/avelez/scoping-agent/internal/config"
	"github.com/avelez/scoping-agent/internal/enrichment"
	"github.com/avelez/scoping-agent/internal/extraction"
	"github.com/avelez/scoping-agent/internal/reporting"
	"github.com/avelez/scoping-agent/internal/scoring"
	"github.com/avelez/scoping-agent/internal/storage"
	"github.com/avelez/scoping-agent/internal/types"
)

// Orchestrator runs one scoping job end to end.
type Orchestrator struct {
	store      storage.ObjectStore
	extractor  *extraction.Extractor
	enricher   *enrichment.Enricher
	classifier *classification.Classifier
	aggregator *scoring.Aggregator
	reporter   *reporting.Generator
	sink       activitylog.Sink
	cfg        *config.Config
	logger     *slog.Logger

	// now is swapped in tests to fix transition timestamps.
	now func() time.Time
}

// New wires an Orchestrator from its collaborators.
func New(
	store storage.ObjectStore,
	extractor *extraction.Extractor,
	enricher *enrichment.Enricher,
	classifier *classification.Classifier,
	aggregator *scoring.Aggregator,
	reporter *reporting.Generator,
	sink activitylog.Sink,
	cfg *config.Config,
	logger *slog.Logger,
) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		store:      store,
		extractor:  extractor,
		enricher:   enricher,
		classifier: classifier,
		aggregator: aggregator,
		reporter:   reporter,
		sink:       sink,
		cfg:        cfg,
		logger:     logger,
		now:        time.Now,
	}
}

// Run executes one job. It always returns the job record, terminal in either
// COMPLETE or FAILED; the error is non-nil exactly when the job failed.
func (o *Orchestrator) Run(ctx context.Context, spec types.JobSpec) (*types.JobRecord, error) {
	rec := types.NewJobRecord(spec, o.now())
	o.logger.Info("job.received", "job", rec.ID, "job_ids", spec.JobIDs, "input", spec.InputPath)

	if err := spec.Validate(); err != nil {
		return rec, o.fail(ctx, rec, err)
	}

	ctx, cancel := context.WithTimeout(ctx, o.cfg.JobTimeout)
	defer cancel()

	// Extraction.
	if err := o.advance(rec, types.StateExtracting); err != nil {
		return rec, o.fail(ctx, rec, err)
	}
	paths, err := o.store.List(ctx, spec.InputPath)
	if err != nil {
		return rec, o.fail(ctx, rec, types.NewJobError(types.KindExtraction, fmt.Sprintf("input location %q is not accessible", spec.InputPath), err))
	}
	if len(paths) == 0 {
		return rec, o.fail(ctx, rec, types.NewJobError(types.KindExtraction, fmt.Sprintf("no documents found under %q", spec.InputPath), nil))
	}
	outcomes := make([]types.DocumentOutcome, len(paths))
	if err := o.extractAll(ctx, paths, outcomes); err != nil {
		return rec, o.fail(ctx, rec, err)
	}

	// Enrichment.
	if err := o.advance(rec, types.StateEnriching); err != nil {
		return rec, o.fail(ctx, rec, err)
	}
	if err := o.enrichAll(ctx, spec, outcomes); err != nil {
		return rec, o.fail(ctx, rec, err)
	}

	// Classification.
	if err := o.advance(rec, types.StateClassifying); err != nil {
		return rec, o.fail(ctx, rec, err)
	}
	if err := o.classifyAll(ctx, spec, outcomes); err != nil {
		return rec, o.fail(ctx, rec, err)
	}
	rec.Outcomes = outcomes

	// Aggregation.
	if err := o.advance(rec, types.StateAggregating); err != nil {
		return rec, o.fail(ctx, rec, err)
	}
	est, err := o.aggregator.Aggregate(spec, outcomes)
	if err != nil {
		return rec, o.fail(ctx, rec, err)
	}
	rec.Estimate = est

	// Reporting.
	if err := o.advance(rec, types.StateReporting); err != nil {
		return rec, o.fail(ctx, rec, err)
	}
	artifacts, err := o.reporter.Generate(spec, outcomes, est, o.now())
	if err != nil {
		return rec, o.fail(ctx, rec, err)
	}
	rec.Artifacts = make(map[string]string, len(artifacts))
	for name, data := range artifacts {
		locator, err := o.store.Put(ctx, path.Join(o.cfg.OutputDir, rec.ID.String(), name), data)
		if err != nil {
			return rec, o.fail(ctx, rec, types.NewJobError(types.KindReport, fmt.Sprintf("failed to persist artifact %s", name), err))
		}
		rec.Artifacts[name] = locator
	}

	if err := o.advance(rec, types.StateComplete); err != nil {
		return rec, o.fail(ctx, rec, err)
	}
	o.appendActivity(ctx, rec)
	o.logger.Info("job.complete", "job", rec.ID, "documents", len(outcomes), "total_hours", est.TotalHours)
	return rec, nil
}

// extractAll fetches and extracts every document concurrently, writing each
// result into its own pre-allocated slot.
func (o *Orchestrator) extractAll(ctx context.Context, paths []string, outcomes []types.DocumentOutcome) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(int(o.cfg.ClassifierConcurrency))
	for i, p := range paths {
		g.Go(func() error {
			data, err := o.store.Fetch(gctx, p)
			if err != nil {
				if gctx.Err() != nil {
					return o.timeoutErr(gctx)
				}
				// A single unreadable object is a per-document failure.
				outcomes[i] = types.DocumentOutcome{Record: types.DocumentRecord{
					Path:   p,
					Status: types.ExtractionFailed,
					Error:  fmt.Sprintf("fetch failed: %v", err),
				}}
				return nil
			}
			outcomes[i] = types.DocumentOutcome{Record: o.extractor.Extract(p, data)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return o.timeoutErr(ctx)
}

// enrichAll looks up historical matches for every extracted document.
// Warehouse failures are absorbed inside the enricher.
func (o *Orchestrator) enrichAll(ctx context.Context, spec types.JobSpec, outcomes []types.DocumentOutcome) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(int(o.cfg.ClassifierConcurrency))
	for i := range outcomes {
		if !outcomes[i].Record.Extracted() {
			continue
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				return o.timeoutErr(gctx)
			}
			outcomes[i].Matches = o.enricher.Enrich(gctx, outcomes[i].Record, spec.Instructions)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return o.timeoutErr(ctx)
}

// classifyAll runs the external classification calls, bounded by a counting
// semaphore to respect the model's rate limits.
func (o *Orchestrator) classifyAll(ctx context.Context, spec types.JobSpec, outcomes []types.DocumentOutcome) error {
	sem := semaphore.NewWeighted(o.cfg.ClassifierConcurrency)
	g, gctx := errgroup.WithContext(ctx)
	for i := range outcomes {
		if !outcomes[i].Record.Extracted() {
			continue
		}
		g.Go(func() error {
			if err := sem.Acquire(gctx, 1); err != nil {
				return o.timeoutErr(gctx)
			}
			defer sem.Release(1)
			outcomes[i].Assessment = o.classifier.Classify(gctx, outcomes[i].Record, spec.Instructions)
			outcomes[i].Classified = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return o.timeoutErr(ctx)
}

func (o *Orchestrator) advance(rec *types.JobRecord, to types.JobState) error {
	if err := rec.Advance(to, o.now()); err != nil {
		return types.NewJobError(types.KindAggregation, "state machine violation", err)
	}
	o.logger.Info("job.state", "job", rec.ID, "state", to)
	return nil
}

// timeoutErr maps an expired job deadline to the timeout error kind.
func (o *Orchestrator) timeoutErr(ctx context.Context) error {
	if err := ctx.Err(); errors.Is(err, context.DeadlineExceeded) {
		return types.NewJobError(types.KindTimeout, "job timed out before completing", err)
	} else if err != nil {
		return types.NewJobError(types.KindTimeout, "job was cancelled", err)
	}
	return nil
}

// fail finalizes the record in the FAILED state and writes the activity-log
// entry. In-flight document tasks have already been abandoned by the caller.
func (o *Orchestrator) fail(ctx context.Context, rec *types.JobRecord, err error) error {
	rec.Fail(err, o.now())
	o.appendActivity(ctx, rec)
	o.logger.Error("job.failed", "job", rec.ID, "kind", rec.FailureKind, "err", err)
	return err
}

// appendActivity writes the terminal activity record. Sink failures are
// logged, never propagated.
func (o *Orchestrator) appendActivity(ctx context.Context, rec *types.JobRecord) {
	if o.sink == nil {
		return
	}
	// The job context may already be expired; the log write gets its own
	// short deadline.
	logCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := o.sink.Append(logCtx, activitylog.FromJobRecord(rec)); err != nil {
		o.logger.Warn("activitylog.append_failed", "job", rec.ID, "err", err)
	}
}
