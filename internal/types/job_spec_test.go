package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSpec() JobSpec {
	return JobSpec{
		JobIDs:        []string{"JOB-1001"},
		InputPath:     "jobs/JOB-1001",
		TranslatorPct: 0.6,
		ReviewerPct:   0.3,
		PMPct:         0.1,
	}
}

func TestJobSpecValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*JobSpec)
		wantErr bool
	}{
		{"valid spec", func(*JobSpec) {}, false},
		{"no job IDs", func(s *JobSpec) { s.JobIDs = nil }, true},
		{"empty job ID", func(s *JobSpec) { s.JobIDs = []string{""} }, true},
		{"fractions do not sum to one", func(s *JobSpec) { s.PMPct = 0.2 }, true},
		{"negative fraction", func(s *JobSpec) { s.TranslatorPct = -0.1; s.PMPct = 0.8 }, true},
		{"fraction above one", func(s *JobSpec) { s.TranslatorPct = 1.1; s.ReviewerPct = 0; s.PMPct = -0.1 }, true},
		{"different valid split", func(s *JobSpec) { s.TranslatorPct = 0.5; s.ReviewerPct = 0.4; s.PMPct = 0.1 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := validSpec()
			tt.mutate(&spec)
			err := spec.Validate()
			if tt.wantErr {
				require.Error(t, err)
				var jobErr *JobError
				require.True(t, errors.As(err, &jobErr))
				assert.Equal(t, KindValidation, jobErr.Kind)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestJobSpecFraction(t *testing.T) {
	spec := validSpec()
	assert.Equal(t, 0.6, spec.Fraction(RoleTranslator))
	assert.Equal(t, 0.3, spec.Fraction(RoleReviewer))
	assert.Equal(t, 0.1, spec.Fraction(RolePM))
	assert.Equal(t, 0.0, spec.Fraction("unknown"))
}
