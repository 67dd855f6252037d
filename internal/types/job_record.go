package types

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// JobState is a stage of the job lifecycle. Transitions are monotonic along
// the pipeline order; FAILED is terminal and reachable from any non-terminal
// state.
type JobState string

const (
	StateReceived    JobState = "RECEIVED"
	StateExtracting  JobState = "EXTRACTING"
	StateEnriching   JobState = "ENRICHING"
	StateClassifying JobState = "CLASSIFYING"
	StateAggregating JobState = "AGGREGATING"
	StateReporting   JobState = "REPORTING"
	StateComplete    JobState = "COMPLETE"
	StateFailed      JobState = "FAILED"
)

var stateOrder = map[JobState]int{
	StateReceived:    0,
	StateExtracting:  1,
	StateEnriching:   2,
	StateClassifying: 3,
	StateAggregating: 4,
	StateReporting:   5,
	StateComplete:    6,
}

// Terminal reports whether no further transitions are allowed.
func (s JobState) Terminal() bool {
	return s == StateComplete || s == StateFailed
}

// DocumentOutcome pairs one document's record with its enrichment and
// classification results. Outcomes are append-only and keyed by document path.
type DocumentOutcome struct {
	Record     DocumentRecord       `json:"record"`
	Matches    []HistoricalMatch    `json:"matches,omitempty"`
	Assessment ComplexityAssessment `json:"assessment"`

	// Classified is false until the classifier stage has run for this
	// document; a failed classification still counts as classified.
	Classified bool `json:"classified"`
}

// JobRecord is the lifecycle record of one scoping job. It is created at job
// start and mutated only by the orchestrator.
type JobRecord struct {
	ID          uuid.UUID         `json:"id"`
	Spec        JobSpec           `json:"spec"`
	State       JobState          `json:"state"`
	Transitions []StateTransition `json:"transitions"`
	Outcomes    []DocumentOutcome `json:"outcomes,omitempty"`
	Estimate    *JobEstimate      `json:"estimate,omitempty"`
	Failure     string            `json:"failure,omitempty"`
	FailureKind ErrorKind         `json:"failure_kind,omitempty"`
	Artifacts   map[string]string `json:"artifacts,omitempty"`
}

// StateTransition records when a state was entered.
type StateTransition struct {
	State JobState  `json:"state"`
	At    time.Time `json:"at"`
}

// NewJobRecord creates a record in the RECEIVED state.
func NewJobRecord(spec JobSpec, now time.Time) *JobRecord {
	return &JobRecord{
		ID:          uuid.New(),
		Spec:        spec,
		State:       StateReceived,
		Transitions: []StateTransition{{State: StateReceived, At: now}},
	}
}

// Advance moves the record to the next state. Moves that skip backwards or
// leave a terminal state are rejected so the audit trail stays monotonic.
func (r *JobRecord) Advance(to JobState, now time.Time) error {
	if r.State.Terminal() {
		return fmt.Errorf("job %s is terminal in state %s", r.ID, r.State)
	}
	if to != StateFailed {
		cur, ok := stateOrder[r.State]
		next, ok2 := stateOrder[to]
		if !ok || !ok2 || next <= cur {
			return fmt.Errorf("illegal transition %s -> %s", r.State, to)
		}
	}
	r.State = to
	r.Transitions = append(r.Transitions, StateTransition{State: to, At: now})
	return nil
}

// Fail transitions the record to FAILED and stores the cause.
func (r *JobRecord) Fail(err error, now time.Time) {
	if r.State.Terminal() {
		return
	}
	r.State = StateFailed
	r.FailureKind = KindOf(err)
	r.Failure = err.Error()
	r.Transitions = append(r.Transitions, StateTransition{State: StateFailed, At: now})
}

// StartedAt returns the timestamp of the first transition.
func (r *JobRecord) StartedAt() time.Time {
	if len(r.Transitions) == 0 {
		return time.Time{}
	}
	return r.Transitions[0].At
}

// FinishedAt returns the timestamp of the last transition.
func (r *JobRecord) FinishedAt() time.Time {
	if len(r.Transitions) == 0 {
		return time.Time{}
	}
	return r.Transitions[len(r.Transitions)-1].At
}
