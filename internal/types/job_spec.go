// Package types defines the shared data model for the scoping pipeline.
package types

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
)

// AllocationEpsilon is the tolerance when checking that role fractions sum to 1.0.
const AllocationEpsilon = 1e-6

// JobSpec is the raw job specification submitted by a caller. It names the
// documents to analyze, carries free-text instructions for the linguists, and
// splits the effort budget across the three roles.
type JobSpec struct {
	JobIDs       []string `json:"job_ids" validate:"required,min=1,dive,required"`
	InputPath    string   `json:"input_path" validate:"required"`
	Instructions string   `json:"instructions,omitempty"`

	TranslatorPct float64 `json:"translator_pct" validate:"gte=0,lte=1"`
	ReviewerPct   float64 `json:"reviewer_pct" validate:"gte=0,lte=1"`
	PMPct         float64 `json:"pm_pct" validate:"gte=0,lte=1"`
}

var specValidator = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the spec at ingestion time. A spec that fails validation is
// job-fatal: no pipeline component runs after a validation error.
func (s *JobSpec) Validate() error {
	if err := specValidator.Struct(s); err != nil {
		return NewJobError(KindValidation, fmt.Sprintf("invalid job spec: %v", err), err)
	}
	for _, id := range s.JobIDs {
		if strings.TrimSpace(id) == "" {
			return NewJobError(KindValidation, "job IDs must be non-empty", nil)
		}
	}
	sum := s.TranslatorPct + s.ReviewerPct + s.PMPct
	if math.Abs(sum-1.0) > AllocationEpsilon {
		return NewJobError(KindValidation,
			fmt.Sprintf("role allocation fractions must sum to 1.0, got %.6f", sum), nil)
	}
	return nil
}

// Roles in allocation order. Kept as a fixed slice so every consumer iterates
// the same way and output remains deterministic.
const (
	RoleTranslator = "translator"
	RoleReviewer   = "reviewer"
	RolePM         = "pm"
)

// Roles lists the staffing roles in canonical order.
func Roles() []string {
	return []string{RoleTranslator, RoleReviewer, RolePM}
}

// Fraction returns the allocation fraction for a role.
func (s *JobSpec) Fraction(role string) float64 {
	switch role {
	case RoleTranslator:
		return s.TranslatorPct
	case RoleReviewer:
		return s.ReviewerPct
	case RolePM:
		return s.PMPct
	}
	return 0
}
