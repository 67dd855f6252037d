package types

// Tier is the ordinal complexity classification of a document. It drives a
// monotonically increasing effort multiplier in the aggregator.
type Tier string

const (
	TierLow         Tier = "low"
	TierMedium      Tier = "medium"
	TierHigh        Tier = "high"
	TierSpecialized Tier = "specialized"
)

// Tiers lists the complexity tiers in ascending order.
func Tiers() []Tier {
	return []Tier{TierLow, TierMedium, TierHigh, TierSpecialized}
}

// ValidTier reports whether t belongs to the closed tier vocabulary.
func ValidTier(t Tier) bool {
	switch t {
	case TierLow, TierMedium, TierHigh, TierSpecialized:
		return true
	}
	return false
}

// DomainUnclassified is the sentinel used when the classifier returns a label
// outside the closed domain vocabulary.
const DomainUnclassified = "unclassified"

// LinguisticFlags mark requirements the assignment team must staff for.
type LinguisticFlags struct {
	TerminologyHeavy bool `json:"terminology_heavy"`
	ToneSensitive    bool `json:"tone_sensitive"`
	IdiomsPresent    bool `json:"idioms_present"`
	FormattingTags   bool `json:"formatting_tags"`
}

// ComplexityAssessment is the validated output of one classifier call for one
// document. When the classifier fails after retries, Failed is set and the
// assessment carries the most conservative tier with zero confidence so the
// document still appears in the report.
type ComplexityAssessment struct {
	Domain     string          `json:"domain"`
	Tier       Tier            `json:"tier"`
	Flags      LinguisticFlags `json:"flags"`
	Confidence float64         `json:"confidence"`
	Failed     bool            `json:"failed,omitempty"`

	QualityConsiderations []string `json:"quality_considerations,omitempty"`
	SourcingCriteria      string   `json:"sourcing_criteria,omitempty"`
}

// ConservativeAssessment is the fallback applied when classification retries
// exhaust: highest complexity, lowest confidence, flagged as failed.
func ConservativeAssessment() ComplexityAssessment {
	return ComplexityAssessment{
		Domain:     DomainUnclassified,
		Tier:       TierSpecialized,
		Confidence: 0,
		Failed:     true,
	}
}
