// Package enrichment looks up comparable past projects for a document and
// ranks them by similarity. An empty result is a valid outcome; aggregation
// falls back to configured default rates.
package enrichment

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/avelez/scoping-agent/internal/config"
	"github.com/avelez/scoping-agent/internal/retryutil"
	"github.com/avelez/scoping-agent/internal/types"
	"github.com/avelez/scoping-agent/internal/warehouse"
)

// Enricher ranks historical projects against a document.
type Enricher struct {
	client warehouse.Client
	cfg    *config.Config
	logger *slog.Logger
}

// New creates an Enricher backed by the given warehouse client.
func New(client warehouse.Client, cfg *config.Config, logger *slog.Logger) *Enricher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Enricher{client: client, cfg: cfg, logger: logger}
}

// Enrich returns the top-K most similar historical matches for the document,
// most-similar first. Warehouse failures after retries are absorbed: the
// document proceeds with zero matches and the default-rate fallback.
func (e *Enricher) Enrich(ctx context.Context, doc types.DocumentRecord, instructions string) []types.HistoricalMatch {
	if e.client == nil {
		return nil
	}

	filters := warehouse.Filters{
		SourceLang: doc.Metadata.Language,
	}

	var rows []types.HistoricalMatch
	err := retryutil.Do(ctx, e.cfg.ClassifierMaxRetries, func() error {
		var qerr error
		rows, qerr = e.client.QueryHistorical(ctx, filters)
		return qerr
	})
	if err != nil {
		e.logger.Warn("enrichment.query_failed", "path", doc.Path, "err", err)
		return nil
	}
	if len(rows) == 0 {
		// Retry without the language filter so sparse history still
		// contributes volume-comparable projects.
		if filters.SourceLang != "" {
			if rows, err = e.client.QueryHistorical(ctx, warehouse.Filters{}); err != nil {
				e.logger.Warn("enrichment.query_failed", "path", doc.Path, "err", err)
				return nil
			}
		}
		if len(rows) == 0 {
			return nil
		}
	}

	matches := e.Rank(doc, instructions, rows)
	e.logger.Info("enrichment.ok", "path", doc.Path, "candidates", len(rows), "matches", len(matches))
	return matches
}

// Rank scores, orders, and truncates candidate rows against a document. The
// ordering is deterministic: descending similarity with project ID as the
// tie-break.
func (e *Enricher) Rank(doc types.DocumentRecord, instructions string, rows []types.HistoricalMatch) []types.HistoricalMatch {
	ranked := make([]types.HistoricalMatch, 0, len(rows))
	for _, row := range rows {
		row.Similarity = e.similarity(doc, instructions, row)
		ranked = append(ranked, row)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Similarity != ranked[j].Similarity {
			return ranked[i].Similarity > ranked[j].Similarity
		}
		return ranked[i].ProjectID < ranked[j].ProjectID
	})
	if len(ranked) > e.cfg.TopK {
		ranked = ranked[:e.cfg.TopK]
	}
	return ranked
}

// similarity combines domain-label match, language-pair match, and
// word-count proximity. Word-count proximity uses relative difference so the
// metric is scale-invariant.
func (e *Enricher) similarity(doc types.DocumentRecord, instructions string, match types.HistoricalMatch) float64 {
	var domain float64
	if match.Domain != "" && strings.Contains(strings.ToLower(instructions), strings.ToLower(match.Domain)) {
		domain = 1
	}

	var language float64
	if doc.Metadata.Language != "" && strings.EqualFold(doc.Metadata.Language, match.SourceLang) {
		language = 1
	}

	volume := volumeSimilarity(doc.Metadata.WordCount, match.WordCount)

	return e.cfg.DomainWeight*domain + e.cfg.LanguageWeight*language + e.cfg.VolumeWeight*volume
}

// volumeSimilarity is 1 for identical counts and decays toward 0 as the
// relative difference grows.
func volumeSimilarity(a, b int) float64 {
	if a <= 0 || b <= 0 {
		return 0
	}
	fa, fb := float64(a), float64(b)
	return 1 - math.Abs(fa-fb)/math.Max(fa, fb)
}
