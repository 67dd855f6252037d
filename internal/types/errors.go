package types

import (
	"errors"
	"fmt"
)

// ErrorKind classifies pipeline failures. Per-document kinds (extraction,
// enrichment, classification) are absorbed into document records and never
// fail the job; the remaining kinds are job-fatal.
type ErrorKind string

const (
	KindValidation     ErrorKind = "validation"
	KindExtraction     ErrorKind = "extraction"
	KindEnrichment     ErrorKind = "enrichment"
	KindClassification ErrorKind = "classification"
	KindAggregation    ErrorKind = "aggregation"
	KindReport         ErrorKind = "report"
	KindTimeout        ErrorKind = "timeout"
)

// JobFatal reports whether an error of this kind halts the whole job.
func (k ErrorKind) JobFatal() bool {
	switch k {
	case KindValidation, KindAggregation, KindReport, KindTimeout:
		return true
	}
	return false
}

// JobError is the structured failure carried out of the pipeline. The Kind is
// surfaced verbatim in the API error response.
type JobError struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *JobError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s error: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
}

func (e *JobError) Unwrap() error {
	return e.Cause
}

// NewJobError constructs a JobError.
func NewJobError(kind ErrorKind, message string, cause error) *JobError {
	return &JobError{Kind: kind, Message: message, Cause: cause}
}

// KindOf extracts the taxonomy kind from an error chain. Errors that were not
// produced by the pipeline map to the aggregation kind, which signals an
// internal invariant violation.
func KindOf(err error) ErrorKind {
	var je *JobError
	if errors.As(err, &je) {
		return je.Kind
	}
	return KindAggregation
}
