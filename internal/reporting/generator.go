// Package reporting renders the three scoping artifacts from a finished
// estimate: a detailed per-document CSV, a PM-facing planning workbook, and a
// full machine-readable analysis. Rendering is pure: no external calls, so
// artifacts can be regenerated from the same inputs at any time.
package reporting

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/avelez/scoping-agent/internal/types"
)

// Artifact file names, keyed by purpose in the job record's artifact map.
const (
	ArtifactDetailedCSV = "detailed_estimate.csv"
	ArtifactPMWorkbook  = "pm_planning.xlsx"
	ArtifactAnalysis    = "analysis.json"
)

// Generator renders report artifacts.
type Generator struct {
	logger *slog.Logger
}

// New creates a Generator.
func New(logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{logger: logger}
}

// Generate renders all three artifacts. The returned map is keyed by
// artifact file name. The caller supplies the generation timestamp so
// identical inputs render identical artifacts.
func (g *Generator) Generate(spec types.JobSpec, outcomes []types.DocumentOutcome, est *types.JobEstimate, generatedAt time.Time) (map[string][]byte, error) {
	if est == nil {
		return nil, types.NewJobError(types.KindReport, "cannot render report without an estimate", nil)
	}

	artifacts := make(map[string][]byte, 3)

	detailed, err := g.renderDetailedCSV(outcomes, est)
	if err != nil {
		return nil, types.NewJobError(types.KindReport, "failed to render detailed estimate", err)
	}
	artifacts[ArtifactDetailedCSV] = detailed

	workbook, err := g.renderPMWorkbook(spec, est)
	if err != nil {
		return nil, types.NewJobError(types.KindReport, "failed to render planning workbook", err)
	}
	artifacts[ArtifactPMWorkbook] = workbook

	analysis, err := g.renderAnalysis(spec, outcomes, est, generatedAt)
	if err != nil {
		return nil, types.NewJobError(types.KindReport, "failed to render analysis", err)
	}
	artifacts[ArtifactAnalysis] = analysis

	g.logger.Info("report.ok", "artifacts", len(artifacts), "documents", len(est.Documents))
	return artifacts, nil
}

// renderDetailedCSV writes one row per document with the signals a reviewer
// needs to sanity-check the estimate.
func (g *Generator) renderDetailedCSV(outcomes []types.DocumentOutcome, est *types.JobEstimate) ([]byte, error) {
	byPath := make(map[string]types.DocumentOutcome, len(outcomes))
	for _, o := range outcomes {
		byPath[o.Record.Path] = o
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	header := []string{
		"document", "format", "status", "language", "word_count",
		"domain", "tier", "confidence", "effective_rate_wph",
		"multiplier", "hours", "top_match", "flags",
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, de := range est.Documents {
		o := byPath[de.Path]
		row := []string{
			sanitizeCell(de.Path),
			string(o.Record.Format),
			string(o.Record.Status),
			o.Record.Metadata.Language,
			strconv.Itoa(de.WordCount),
			sanitizeCell(o.Assessment.Domain),
			string(o.Assessment.Tier),
			formatFloat(o.Assessment.Confidence),
			formatFloat(de.EffectiveRate),
			formatFloat(de.Multiplier),
			formatFloat(de.Hours),
			topMatch(o.Matches),
			sanitizeCell(documentFlags(o, de)),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// renderAnalysis serializes every intermediate signal of the run so the
// estimate can be audited or re-derived without re-invoking any service.
func (g *Generator) renderAnalysis(spec types.JobSpec, outcomes []types.DocumentOutcome, est *types.JobEstimate, generatedAt time.Time) ([]byte, error) {
	type documentAnalysis struct {
		Record     types.DocumentRecord       `json:"record"`
		Matches    []types.HistoricalMatch    `json:"historical_matches"`
		Assessment types.ComplexityAssessment `json:"assessment"`
		Classified bool                       `json:"classified"`
	}
	payload := struct {
		JobIDs      []string           `json:"job_ids"`
		GeneratedAt string             `json:"generated_at"`
		Spec        types.JobSpec      `json:"spec"`
		Documents   []documentAnalysis `json:"documents"`
		Estimate    *types.JobEstimate `json:"estimate"`
	}{
		JobIDs:      spec.JobIDs,
		GeneratedAt: generatedAt.UTC().Format(time.RFC3339),
		Spec:        spec,
		Estimate:    est,
	}
	for _, de := range est.Documents {
		for _, o := range outcomes {
			if o.Record.Path == de.Path {
				payload.Documents = append(payload.Documents, documentAnalysis{
					Record:     o.Record,
					Matches:    o.Matches,
					Assessment: o.Assessment,
					Classified: o.Classified,
				})
				break
			}
		}
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, err
	}
	if err := validateAnalysis(data); err != nil {
		return nil, err
	}
	return data, nil
}

func topMatch(matches []types.HistoricalMatch) string {
	if len(matches) == 0 {
		return ""
	}
	m := matches[0]
	return fmt.Sprintf("%s (%.2f)", m.ProjectID, m.Similarity)
}

func documentFlags(o types.DocumentOutcome, de types.DocumentEstimate) string {
	flags := append([]string(nil), o.Record.Flags...)
	if de.Flagged {
		flags = append(flags, de.FlagReason)
	}
	return strings.Join(flags, "; ")
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// sanitizeCell neutralizes spreadsheet formula injection for values that end
// up in cells a PM will open in Excel.
func sanitizeCell(v string) string {
	if v == "" {
		return v
	}
	switch v[0] {
	case '=', '+', '-', '@':
		return "'" + v
	}
	return v
}
