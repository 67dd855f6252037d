// Package activitylog emits the one append-only record written per job at its
// terminal state. The central spreadsheet sink lives outside this module; a
// JSON-lines file sink is provided for local operation and tests.
package activitylog

import (
	"context"
	"time"

	"github.com/avelez/scoping-agent/internal/types"
)

// Record is the activity-log entry for one finished job.
type Record struct {
	JobIDs     []string          `json:"job_ids"`
	State      types.JobState    `json:"state"`
	StartedAt  time.Time         `json:"started_at"`
	FinishedAt time.Time         `json:"finished_at"`
	Documents  int               `json:"documents"`
	Artifacts  map[string]string `json:"artifacts,omitempty"`
	Error      string            `json:"error,omitempty"`
}

// Sink appends activity-log records. Append failures must not fail the job;
// callers log and continue.
type Sink interface {
	Append(ctx context.Context, rec Record) error
}

// FromJobRecord builds the activity record for a terminal job record.
func FromJobRecord(r *types.JobRecord) Record {
	return Record{
		JobIDs:     r.Spec.JobIDs,
		State:      r.State,
		StartedAt:  r.StartedAt(),
		FinishedAt: r.FinishedAt(),
		Documents:  len(r.Outcomes),
		Artifacts:  r.Artifacts,
		Error:      r.Failure,
	}
}
