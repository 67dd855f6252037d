package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelez/scoping-agent/internal/types"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 5, cfg.TopK)
	assert.Equal(t, 250.0, cfg.DefaultRateWPH)
	assert.InDelta(t, 1.0, cfg.DomainWeight+cfg.LanguageWeight+cfg.VolumeWeight, 1e-9)
}

func TestTierMultipliersMonotonic(t *testing.T) {
	cfg := Default()
	prev := 0.0
	for _, tier := range types.Tiers() {
		m := cfg.Multiplier(tier)
		assert.Greater(t, m, prev, "multiplier for %s must exceed lower tiers", tier)
		prev = m
	}
}

func TestMultiplierUnknownTierIsConservative(t *testing.T) {
	cfg := Default()
	assert.Equal(t, cfg.Multiplier(types.TierSpecialized), cfg.Multiplier(types.Tier("bogus")))
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"top_k": 3,
		"default_rate_wph": 300,
		"classifier_timeout_sec": 20
	}`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.TopK)
	assert.Equal(t, 300.0, cfg.DefaultRateWPH)
	assert.Equal(t, 20*time.Second, cfg.ClassifierTimeout)
	// Untouched fields keep defaults.
	assert.Equal(t, Default().WorkingHoursDay, cfg.WorkingHoursDay)
	assert.Equal(t, Default().TierMultipliers, cfg.TierMultipliers)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}

func TestValidateRejectsNonMonotonicMultipliers(t *testing.T) {
	cfg := Default()
	cfg.TierMultipliers[types.TierHigh] = 0.5
	assert.Error(t, cfg.Validate())
}
