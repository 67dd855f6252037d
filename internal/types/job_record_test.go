package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobRecordAdvance(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	rec := NewJobRecord(validSpec(), now)
	require.Equal(t, StateReceived, rec.State)

	states := []JobState{
		StateExtracting, StateEnriching, StateClassifying,
		StateAggregating, StateReporting, StateComplete,
	}
	for i, s := range states {
		require.NoError(t, rec.Advance(s, now.Add(time.Duration(i+1)*time.Minute)))
		assert.Equal(t, s, rec.State)
	}

	// One transition per state, RECEIVED included.
	assert.Len(t, rec.Transitions, len(states)+1)
	assert.Equal(t, now, rec.StartedAt())
	assert.Equal(t, now.Add(6*time.Minute), rec.FinishedAt())

	// Terminal states reject further moves.
	assert.Error(t, rec.Advance(StateFailed, now))
}

func TestJobRecordAdvanceRejectsBackward(t *testing.T) {
	now := time.Now()
	rec := NewJobRecord(validSpec(), now)
	require.NoError(t, rec.Advance(StateExtracting, now))
	require.NoError(t, rec.Advance(StateEnriching, now))

	assert.Error(t, rec.Advance(StateExtracting, now))
	assert.Error(t, rec.Advance(StateEnriching, now))
}

func TestJobRecordAdvanceAllowsSkipToFailed(t *testing.T) {
	now := time.Now()
	rec := NewJobRecord(validSpec(), now)
	require.NoError(t, rec.Advance(StateFailed, now))
	assert.True(t, rec.State.Terminal())
}

func TestJobRecordFail(t *testing.T) {
	now := time.Now()
	rec := NewJobRecord(validSpec(), now)
	require.NoError(t, rec.Advance(StateExtracting, now))

	rec.Fail(NewJobError(KindTimeout, "job timed out", nil), now.Add(time.Minute))

	assert.Equal(t, StateFailed, rec.State)
	assert.Equal(t, KindTimeout, rec.FailureKind)
	assert.Contains(t, rec.Failure, "timed out")

	// A second failure does not overwrite the first.
	rec.Fail(NewJobError(KindReport, "later", nil), now.Add(2*time.Minute))
	assert.Equal(t, KindTimeout, rec.FailureKind)
}
