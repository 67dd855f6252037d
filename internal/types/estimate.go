package types

// RoleHours carries effort hours split across the three staffing roles.
// A struct (not a map) keeps JSON output and comparisons deterministic.
type RoleHours struct {
	Translator float64 `json:"translator"`
	Reviewer   float64 `json:"reviewer"`
	PM         float64 `json:"pm"`
}

// Get returns the hours attributed to a role.
func (r RoleHours) Get(role string) float64 {
	switch role {
	case RoleTranslator:
		return r.Translator
	case RoleReviewer:
		return r.Reviewer
	case RolePM:
		return r.PM
	}
	return 0
}

// Headcount is the suggested staffing level derived from volume and turnaround.
type Headcount struct {
	Translators int `json:"translators"`
	Reviewers   int `json:"reviewers"`
}

// DocumentEstimate is the per-document line item inside a JobEstimate.
type DocumentEstimate struct {
	Path          string  `json:"path"`
	WordCount     int     `json:"word_count"`
	EffectiveRate float64 `json:"effective_rate_wph"`
	Multiplier    float64 `json:"complexity_multiplier"`
	Hours         float64 `json:"hours"`

	// Flagged marks documents whose estimate was produced on the
	// conservative fallback path (failed extraction or classification).
	Flagged    bool   `json:"flagged,omitempty"`
	FlagReason string `json:"flag_reason,omitempty"`
}

// JobEstimate is the aggregate output of the scoring step. It is derived
// deterministically from the document records, assessments and historical
// matches; rendering reports from it is a pure function.
type JobEstimate struct {
	ComplexityScore float64            `json:"complexity_score"`
	TotalWords      int                `json:"total_words"`
	TotalHours      float64            `json:"total_hours"`
	TATHours        float64            `json:"tat_hours"`
	CalendarDays    float64            `json:"calendar_days"`
	RoleHours       RoleHours          `json:"role_hours"`
	Headcount       Headcount          `json:"headcount"`
	Documents       []DocumentEstimate `json:"documents"`
}
