package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelez/scoping-agent/internal/activitylog"
	"github.com/avelez/scoping-agent/internal/classification"
	"github.com/avelez/scoping-agent/internal/config"
	"github.com/avelez/scoping-agent/internal/enrichment"
	"github.com/avelez/scoping-agent/internal/extraction"
	"github.com/avelez/scoping-agent/internal/reporting"
	"github.com/avelez/scoping-agent/internal/scoring"
	"github.com/avelez/scoping-agent/internal/types"
	"github.com/avelez/scoping-agent/internal/warehouse"
)

// memStore is an in-memory ObjectStore.
type memStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	puts    map[string][]byte
	listErr error
}

func newMemStore() *memStore {
	return &memStore{objects: map[string][]byte{}, puts: map[string][]byte{}}
}

func (s *memStore) List(_ context.Context, prefix string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	var paths []string
	for p := range s.objects {
		if strings.HasPrefix(p, prefix) {
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)
	return paths, nil
}

func (s *memStore) Fetch(_ context.Context, path string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[path]
	if !ok {
		return nil, fmt.Errorf("no such object %s", path)
	}
	return data, nil
}

func (s *memStore) Put(_ context.Context, path string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.puts[path] = data
	return "mem://" + path, nil
}

type memWarehouse struct {
	rows []types.HistoricalMatch
}

func (w *memWarehouse) QueryHistorical(_ context.Context, _ warehouse.Filters) ([]types.HistoricalMatch, error) {
	return w.rows, nil
}

// scriptedModel returns canned responses keyed by a substring of the prompt,
// with a default for everything else.
type scriptedModel struct {
	mu        sync.Mutex
	byMarker  map[string]string
	errMarker string
	fallback  string
	calls     int
}

func (m *scriptedModel) GenerateJSON(_ context.Context, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.errMarker != "" && strings.Contains(prompt, m.errMarker) {
		return "", errors.New("model rejected the request")
	}
	for marker, resp := range m.byMarker {
		if strings.Contains(prompt, marker) {
			return resp, nil
		}
	}
	return m.fallback, nil
}

func (m *scriptedModel) Close() error { return nil }

type memSink struct {
	mu   sync.Mutex
	recs []activitylog.Record
}

func (s *memSink) Append(_ context.Context, rec activitylog.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs = append(s.recs, rec)
	return nil
}

const mediumResponse = `{"domain": "e-commerce", "complexity_tier": "medium", "confidence": 0.9}`

func newTestOrchestrator(store *memStore, model *scriptedModel, sink *memSink, cfg *config.Config) *Orchestrator {
	wh := &memWarehouse{}
	return New(
		store,
		extraction.New(nil),
		enrichment.New(wh, cfg, nil),
		classification.New(model, cfg, nil),
		scoring.New(cfg, nil),
		reporting.New(nil),
		sink,
		cfg,
		nil,
	)
}

func testSpec() types.JobSpec {
	return types.JobSpec{
		JobIDs:        []string{"JOB-1"},
		InputPath:     "jobs/JOB-1",
		TranslatorPct: 0.6,
		ReviewerPct:   0.3,
		PMPct:         0.1,
	}
}

func TestRunHappyPath(t *testing.T) {
	store := newMemStore()
	store.objects["jobs/JOB-1/strings.csv"] = []byte("copy\nWelcome to the store, browse our full catalog today\n")
	store.objects["jobs/JOB-1/terms.csv"] = []byte("copy\nAll purchases are final unless required by law\n")
	sink := &memSink{}
	model := &scriptedModel{fallback: mediumResponse}

	orch := newTestOrchestrator(store, model, sink, config.Default())
	rec, err := orch.Run(context.Background(), testSpec())
	require.NoError(t, err)

	assert.Equal(t, types.StateComplete, rec.State)
	require.NotNil(t, rec.Estimate)
	assert.Len(t, rec.Estimate.Documents, 2)
	assert.Greater(t, rec.Estimate.TotalHours, 0.0)

	// All three artifacts persisted with locators recorded.
	require.Len(t, rec.Artifacts, 3)
	for name, locator := range rec.Artifacts {
		assert.Contains(t, locator, rec.ID.String())
		assert.Contains(t, locator, name)
	}
	assert.Len(t, store.puts, 3)

	// States visited in pipeline order.
	var visited []types.JobState
	for _, tr := range rec.Transitions {
		visited = append(visited, tr.State)
	}
	assert.Equal(t, []types.JobState{
		types.StateReceived, types.StateExtracting, types.StateEnriching,
		types.StateClassifying, types.StateAggregating, types.StateReporting,
		types.StateComplete,
	}, visited)

	// Exactly one activity record, for the terminal state.
	require.Len(t, sink.recs, 1)
	assert.Equal(t, types.StateComplete, sink.recs[0].State)
	assert.Equal(t, 2, sink.recs[0].Documents)
}

func TestRunInvalidSpecFailsBeforeAnyWork(t *testing.T) {
	store := newMemStore()
	sink := &memSink{}
	orch := newTestOrchestrator(store, &scriptedModel{fallback: mediumResponse}, sink, config.Default())

	spec := testSpec()
	spec.PMPct = 0.5 // fractions no longer sum to 1

	rec, err := orch.Run(context.Background(), spec)
	require.Error(t, err)

	assert.Equal(t, types.StateFailed, rec.State)
	assert.Equal(t, types.KindValidation, rec.FailureKind)
	// No state beyond RECEIVED was entered.
	assert.Len(t, rec.Transitions, 2)
	require.Len(t, sink.recs, 1)
	assert.Equal(t, types.StateFailed, sink.recs[0].State)
}

func TestRunInaccessibleInputFails(t *testing.T) {
	store := newMemStore()
	store.listErr = errors.New("bucket unreachable")
	orch := newTestOrchestrator(store, &scriptedModel{fallback: mediumResponse}, &memSink{}, config.Default())

	rec, err := orch.Run(context.Background(), testSpec())
	require.Error(t, err)
	assert.Equal(t, types.StateFailed, rec.State)
	assert.Equal(t, types.KindExtraction, rec.FailureKind)
}

func TestRunNoDocumentsFails(t *testing.T) {
	orch := newTestOrchestrator(newMemStore(), &scriptedModel{fallback: mediumResponse}, &memSink{}, config.Default())

	rec, err := orch.Run(context.Background(), testSpec())
	require.Error(t, err)
	assert.Equal(t, types.StateFailed, rec.State)
}

func TestRunAllDocumentsUnextractableFails(t *testing.T) {
	store := newMemStore()
	store.objects["jobs/JOB-1/a.pdf"] = []byte("not a pdf")
	store.objects["jobs/JOB-1/b.docx"] = []byte("not a zip")

	orch := newTestOrchestrator(store, &scriptedModel{fallback: mediumResponse}, &memSink{}, config.Default())
	rec, err := orch.Run(context.Background(), testSpec())
	require.Error(t, err)

	assert.Equal(t, types.StateFailed, rec.State)
	assert.Equal(t, types.KindAggregation, rec.FailureKind)
	// The job got as far as aggregation before failing.
	assert.Equal(t, types.StateFailed, rec.Transitions[len(rec.Transitions)-1].State)
}

func TestRunSurvivesSingleClassificationFailure(t *testing.T) {
	store := newMemStore()
	store.objects["jobs/JOB-1/good.csv"] = []byte("copy\nSeasonal sale starts next week across all regions\n")
	store.objects["jobs/JOB-1/also-good.csv"] = []byte("copy\nFree shipping on orders over fifty dollars\n")
	store.objects["jobs/JOB-1/poison.csv"] = []byte("copy\nLegacy clause pending legal review\n")

	cfg := config.Default()
	cfg.ClassifierMaxRetries = 0
	model := &scriptedModel{fallback: mediumResponse, errMarker: "poison.csv"}

	orch := newTestOrchestrator(store, model, &memSink{}, cfg)
	rec, err := orch.Run(context.Background(), testSpec())
	require.NoError(t, err)

	assert.Equal(t, types.StateComplete, rec.State)
	require.Len(t, rec.Estimate.Documents, 3)

	flagged := map[string]bool{}
	for _, de := range rec.Estimate.Documents {
		flagged[de.Path] = de.Flagged
	}
	assert.False(t, flagged["jobs/JOB-1/good.csv"])
	assert.False(t, flagged["jobs/JOB-1/also-good.csv"])
	assert.True(t, flagged["jobs/JOB-1/poison.csv"], "failed classification must surface as a flagged estimate, not a dropped document")
}

func TestRunTimesOut(t *testing.T) {
	store := newMemStore()
	store.objects["jobs/JOB-1/strings.csv"] = []byte("copy\nWelcome to the store\n")

	cfg := config.Default()
	cfg.JobTimeout = time.Nanosecond
	cfg.ClassifierMaxRetries = 0

	orch := newTestOrchestrator(store, &scriptedModel{fallback: mediumResponse}, &memSink{}, cfg)
	rec, err := orch.Run(context.Background(), testSpec())
	require.Error(t, err)

	assert.Equal(t, types.StateFailed, rec.State)
	assert.Equal(t, types.KindTimeout, rec.FailureKind)
	assert.Nil(t, rec.Estimate, "a timed-out job must not be reported as complete")
}

func TestRunFixedClockTransitions(t *testing.T) {
	store := newMemStore()
	store.objects["jobs/JOB-1/strings.csv"] = []byte("copy\nWelcome to the store, browse our catalog\n")

	orch := newTestOrchestrator(store, &scriptedModel{fallback: mediumResponse}, &memSink{}, config.Default())
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	orch.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	rec, err := orch.Run(context.Background(), testSpec())
	require.NoError(t, err)

	for i := 1; i < len(rec.Transitions); i++ {
		assert.True(t, rec.Transitions[i].At.After(rec.Transitions[i-1].At),
			"transition timestamps must be monotonic")
	}
}
