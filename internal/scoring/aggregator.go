// Package scoring merges extraction metrics, historical data, and complexity
// assessments into a single job-level estimate. The computation is pure: no
// clocks, no external calls, no dependence on input ordering.
package scoring

import (
	"log/slog"
	"math"
	"sort"

	"github.com/avelez/scoping-agent/internal/config"
	"github.com/avelez/scoping-agent/internal/types"
)

// Aggregator computes JobEstimates from per-document outcomes.
type Aggregator struct {
	cfg    *config.Config
	logger *slog.Logger
}

// New creates an Aggregator.
func New(cfg *config.Config, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{cfg: cfg, logger: logger}
}

// Aggregate produces the job estimate from all per-document outcomes. It
// fails only when not a single document yielded extractable content; failed
// documents otherwise contribute a flagged, conservatively priced estimate so
// the total is never silently understated.
func (a *Aggregator) Aggregate(spec types.JobSpec, outcomes []types.DocumentOutcome) (*types.JobEstimate, error) {
	extracted := 0
	for _, o := range outcomes {
		if o.Record.Extracted() {
			extracted++
		}
	}
	if extracted == 0 {
		return nil, types.NewJobError(types.KindAggregation, "no document yielded extractable content", nil)
	}

	// Sorting by path fixes the iteration order regardless of the order
	// in which concurrent document tasks completed.
	sorted := make([]types.DocumentOutcome, len(outcomes))
	copy(sorted, outcomes)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Record.Path < sorted[j].Record.Path })

	est := &types.JobEstimate{}
	var weightedMultiplier float64
	for _, o := range sorted {
		de := a.estimateDocument(o)
		est.Documents = append(est.Documents, de)
		est.TotalWords += de.WordCount
		est.TotalHours += de.Hours
		weightedMultiplier += float64(de.WordCount) * de.Multiplier
	}
	if est.TotalWords > 0 {
		est.ComplexityScore = weightedMultiplier / float64(est.TotalWords)
	}

	est.RoleHours = types.RoleHours{
		Translator: est.TotalHours * spec.TranslatorPct,
		Reviewer:   est.TotalHours * spec.ReviewerPct,
		PM:         est.TotalHours * spec.PMPct,
	}

	for _, role := range types.Roles() {
		est.TATHours += est.RoleHours.Get(role) / a.cfg.RoleParallelism
	}
	est.CalendarDays = est.TATHours / a.cfg.WorkingHoursDay
	est.Headcount = a.headcount(est.TotalWords, est.CalendarDays)

	a.logger.Info("aggregation.ok",
		"documents", len(sorted),
		"total_words", est.TotalWords,
		"total_hours", est.TotalHours,
		"tat_hours", est.TATHours,
		"complexity_score", est.ComplexityScore,
	)
	return est, nil
}

// estimateDocument prices one document. Documents that failed extraction or
// classification are flagged and priced with the most conservative
// multiplier; failed extraction additionally falls back to a byte-size word
// proxy.
func (a *Aggregator) estimateDocument(o types.DocumentOutcome) types.DocumentEstimate {
	de := types.DocumentEstimate{Path: o.Record.Path}

	switch {
	case !o.Record.Extracted():
		de.WordCount = o.Record.Metadata.ByteSize / a.cfg.FallbackBytesPer
		de.Multiplier = a.cfg.Multiplier(types.TierSpecialized)
		de.Flagged = true
		de.FlagReason = "extraction failed; word count estimated from byte size"
	case !o.Classified || o.Assessment.Failed:
		de.WordCount = o.Record.Metadata.WordCount
		de.Multiplier = a.cfg.Multiplier(types.TierSpecialized)
		de.Flagged = true
		de.FlagReason = "classification failed; conservative tier assumed"
	default:
		de.WordCount = o.Record.Metadata.WordCount
		de.Multiplier = a.cfg.Multiplier(o.Assessment.Tier)
	}

	de.EffectiveRate = a.effectiveRate(o.Matches)
	de.Hours = float64(de.WordCount) / de.EffectiveRate * de.Multiplier
	return de
}

// effectiveRate is the similarity-weighted average of the matches' measured
// throughput rates, falling back to the configured default when no usable
// match exists.
func (a *Aggregator) effectiveRate(matches []types.HistoricalMatch) float64 {
	var weighted, weights float64
	for _, m := range matches {
		rate := m.ThroughputRate()
		if rate <= 0 || m.Similarity <= 0 {
			continue
		}
		weighted += m.Similarity * rate
		weights += m.Similarity
	}
	if weights == 0 {
		return a.cfg.DefaultRateWPH
	}
	return weighted / weights
}

// headcount sizes the linguist team from total volume and the calendar
// window, using per-role daily word capacities.
func (a *Aggregator) headcount(totalWords int, calendarDays float64) types.Headcount {
	if totalWords == 0 || calendarDays <= 0 {
		return types.Headcount{Translators: 1, Reviewers: 1}
	}
	wordsPerDay := float64(totalWords) / calendarDays
	hc := types.Headcount{
		Translators: int(math.Ceil(wordsPerDay / float64(a.cfg.TranslatorDailyWords))),
		Reviewers:   int(math.Ceil(wordsPerDay / float64(a.cfg.ReviewerDailyWords))),
	}
	if hc.Translators < 1 {
		hc.Translators = 1
	}
	if hc.Reviewers < 1 {
		hc.Reviewers = 1
	}
	return hc
}
