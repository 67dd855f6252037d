// Package classification assesses document complexity with an external
// reasoning model. Output is validated against a closed vocabulary; the
// component degrades to a conservative assessment rather than blocking a job.
package classification

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/avelez/scoping-agent/internal/config"
	"github.com/avelez/scoping-agent/internal/llm"
	"github.com/avelez/scoping-agent/internal/retryutil"
	"github.com/avelez/scoping-agent/internal/types"
)

// Domains is the closed domain vocabulary. Labels outside this set returned
// by the model are coerced to the "unclassified" sentinel.
var Domains = []string{
	"legal",
	"medical",
	"technical",
	"financial",
	"marketing",
	"gaming",
	"e-commerce",
	"general",
}

func validDomain(label string) bool {
	for _, d := range Domains {
		if d == label {
			return true
		}
	}
	return false
}

// Classifier wraps the external reasoning call behind retries and schema
// validation.
type Classifier struct {
	client llm.Client
	cfg    *config.Config
	logger *slog.Logger
}

// New creates a Classifier.
func New(client llm.Client, cfg *config.Config, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{client: client, cfg: cfg, logger: logger}
}

// modelAssessment is the fixed output schema requested from the model.
type modelAssessment struct {
	Domain                string   `json:"domain"`
	Tier                  string   `json:"complexity_tier"`
	TerminologyHeavy      bool     `json:"terminology_heavy"`
	ToneSensitive         bool     `json:"tone_sensitive"`
	IdiomsPresent         bool     `json:"idioms_present"`
	FormattingTags        bool     `json:"formatting_tags"`
	Confidence            float64  `json:"confidence"`
	QualityConsiderations []string `json:"quality_considerations"`
	SourcingCriteria      string   `json:"sourcing_criteria"`
}

// Classify assesses one document. Transient model failures are retried with
// exponential backoff; on exhaustion the conservative assessment is returned
// with Failed set, never an error.
func (c *Classifier) Classify(ctx context.Context, doc types.DocumentRecord, instructions string) types.ComplexityAssessment {
	prompt := c.buildPrompt(doc, instructions)

	var raw string
	err := retryutil.Do(ctx, c.cfg.ClassifierMaxRetries, func() error {
		callCtx, cancel := context.WithTimeout(ctx, c.cfg.ClassifierTimeout)
		defer cancel()
		var gerr error
		raw, gerr = c.client.GenerateJSON(callCtx, prompt)
		return gerr
	})
	if err != nil {
		c.logger.Warn("classification.exhausted", "path", doc.Path, "err", err)
		return types.ConservativeAssessment()
	}

	assessment, err := parseAssessment(raw)
	if err != nil {
		c.logger.Warn("classification.unparseable", "path", doc.Path, "err", err)
		return types.ConservativeAssessment()
	}

	c.logger.Info("classification.ok",
		"path", doc.Path,
		"domain", assessment.Domain,
		"tier", assessment.Tier,
		"confidence", assessment.Confidence,
	)
	return assessment
}

// parseAssessment decodes the model output and coerces it into the closed
// vocabulary. An out-of-vocabulary domain becomes "unclassified"; an invalid
// tier invalidates the whole assessment since the tier drives cost.
func parseAssessment(raw string) (types.ComplexityAssessment, error) {
	cleaned := llm.CleanJSONBlock(raw)
	if err := validateAssessmentJSON(cleaned); err != nil {
		return types.ComplexityAssessment{}, err
	}
	var m modelAssessment
	if err := json.Unmarshal([]byte(cleaned), &m); err != nil {
		return types.ComplexityAssessment{}, fmt.Errorf("failed to decode assessment: %w", err)
	}

	domain := strings.ToLower(strings.TrimSpace(m.Domain))
	if !validDomain(domain) {
		domain = types.DomainUnclassified
	}

	tier := types.Tier(strings.ToLower(strings.TrimSpace(m.Tier)))
	if !types.ValidTier(tier) {
		return types.ComplexityAssessment{}, fmt.Errorf("invalid complexity tier %q", m.Tier)
	}

	confidence := m.Confidence
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	return types.ComplexityAssessment{
		Domain: domain,
		Tier:   tier,
		Flags: types.LinguisticFlags{
			TerminologyHeavy: m.TerminologyHeavy,
			ToneSensitive:    m.ToneSensitive,
			IdiomsPresent:    m.IdiomsPresent,
			FormattingTags:   m.FormattingTags,
		},
		Confidence:            confidence,
		QualityConsiderations: m.QualityConsiderations,
		SourcingCriteria:      strings.TrimSpace(m.SourcingCriteria),
	}, nil
}

// buildPrompt assembles the classification prompt, truncating document text
// to keep the request within the model's context budget.
func (c *Classifier) buildPrompt(doc types.DocumentRecord, instructions string) string {
	text := doc.Text
	if len(text) > c.cfg.MaxPromptChars {
		text = text[:c.cfg.MaxPromptChars]
	}

	var sb strings.Builder
	sb.WriteString("You are a localization project analyst. Assess the translation complexity of the document below.\n\n")
	sb.WriteString("Respond with a single JSON object, no prose, with exactly these fields:\n")
	sb.WriteString(`{"domain": one of [`)
	sb.WriteString(strings.Join(quoted(Domains), ", "))
	sb.WriteString("],\n")
	sb.WriteString(` "complexity_tier": one of ["low", "medium", "high", "specialized"],` + "\n")
	sb.WriteString(` "terminology_heavy": bool, "tone_sensitive": bool, "idioms_present": bool, "formatting_tags": bool,` + "\n")
	sb.WriteString(` "confidence": number in [0,1],` + "\n")
	sb.WriteString(` "quality_considerations": array of short strings,` + "\n")
	sb.WriteString(` "sourcing_criteria": short string describing the linguist profile required}` + "\n\n")

	if instructions != "" {
		sb.WriteString("Client instructions:\n")
		sb.WriteString(instructions)
		sb.WriteString("\n\n")
	}
	fmt.Fprintf(&sb, "Document: %s (format: %s, %d words", doc.Path, doc.Format, doc.Metadata.WordCount)
	if doc.Metadata.Language != "" {
		fmt.Fprintf(&sb, ", language: %s", doc.Metadata.Language)
	}
	sb.WriteString(")\n\n")
	sb.WriteString("Document text:\n")
	sb.WriteString(text)
	return sb.String()
}

func quoted(labels []string) []string {
	out := make([]string, len(labels))
	for i, l := range labels {
		out[i] = fmt.Sprintf("%q", l)
	}
	return out
}
