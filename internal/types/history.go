package types

// HistoricalMatch is a previously completed project used as reference data for
// throughput estimation. Matches are read-only: the pipeline never mutates
// them, only ranks and weights them.
type HistoricalMatch struct {
	ProjectID  string  `json:"project_id"`
	Domain     string  `json:"domain"`
	SourceLang string  `json:"source_lang"`
	TargetLang string  `json:"target_lang"`
	WordCount  int     `json:"word_count"`
	TATHours   float64 `json:"tat_hours"`

	TranslatorHours float64 `json:"translator_hours"`
	ReviewerHours   float64 `json:"reviewer_hours"`
	PMHours         float64 `json:"pm_hours"`

	// Similarity to the current document, in [0,1]. Filled in by the
	// enricher, not the warehouse.
	Similarity float64 `json:"similarity"`
}

// TotalRoleHours sums the per-role effort of the historical project.
func (m *HistoricalMatch) TotalRoleHours() float64 {
	return m.TranslatorHours + m.ReviewerHours + m.PMHours
}

// ThroughputRate returns the measured words-per-hour rate of the historical
// project across all roles, or 0 when the record carries no effort hours.
func (m *HistoricalMatch) ThroughputRate() float64 {
	total := m.TotalRoleHours()
	if total <= 0 {
		return 0
	}
	return float64(m.WordCount) / total
}
