package activitylog

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelez/scoping-agent/internal/types"
)

func TestFileSinkAppendsOneLinePerRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "history.jsonl")
	sink := NewFileSink(path)

	recs := []Record{
		{JobIDs: []string{"JOB-1"}, State: types.StateComplete, Documents: 3},
		{JobIDs: []string{"JOB-2"}, State: types.StateFailed, Error: "validation error: bad split"},
	}
	for _, rec := range recs {
		require.NoError(t, sink.Append(context.Background(), rec))
	}

	f, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	var got []Record
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var r Record
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &r))
		got = append(got, r)
	}
	require.NoError(t, scanner.Err())

	require.Len(t, got, 2)
	assert.Equal(t, []string{"JOB-1"}, got[0].JobIDs)
	assert.Equal(t, types.StateComplete, got[0].State)
	assert.Equal(t, 3, got[0].Documents)
	assert.Equal(t, types.StateFailed, got[1].State)
	assert.Contains(t, got[1].Error, "bad split")
}

func TestFromJobRecord(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	rec := types.NewJobRecord(types.JobSpec{
		JobIDs:        []string{"JOB-9"},
		InputPath:     "jobs/JOB-9",
		TranslatorPct: 0.6, ReviewerPct: 0.3, PMPct: 0.1,
	}, now)
	require.NoError(t, rec.Advance(types.StateExtracting, now.Add(time.Second)))
	rec.Outcomes = []types.DocumentOutcome{{}, {}}
	rec.Artifacts = map[string]string{"analysis.json": "/tmp/analysis.json"}
	rec.Fail(types.NewJobError(types.KindTimeout, "deadline", nil), now.Add(time.Minute))

	entry := FromJobRecord(rec)

	assert.Equal(t, []string{"JOB-9"}, entry.JobIDs)
	assert.Equal(t, types.StateFailed, entry.State)
	assert.Equal(t, now, entry.StartedAt)
	assert.Equal(t, now.Add(time.Minute), entry.FinishedAt)
	assert.Equal(t, 2, entry.Documents)
	assert.Contains(t, entry.Error, "deadline")
	assert.Equal(t, "/tmp/analysis.json", entry.Artifacts["analysis.json"])
}
