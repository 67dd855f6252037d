// Package config provides configuration loading and defaults for the scoping
// pipeline. Similarity weights, throughput rates and tier multipliers are
// deliberately configuration rather than constants: no single "correct"
// formula exists, so deployments tune them against their own history.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/avelez/scoping-agent/internal/types"
)

// Config holds every tunable of the pipeline. All fields are optional in the
// JSON file; zero values are filled from Default().
type Config struct {
	// Historical enrichment
	TopK             int     `json:"top_k,omitempty"`
	DomainWeight     float64 `json:"domain_weight,omitempty"`
	LanguageWeight   float64 `json:"language_weight,omitempty"`
	VolumeWeight     float64 `json:"volume_weight,omitempty"`
	DefaultRateWPH   float64 `json:"default_rate_wph,omitempty"`
	FallbackBytesPer int     `json:"fallback_bytes_per_word,omitempty"`

	// Scoring
	TierMultipliers map[types.Tier]float64 `json:"tier_multipliers,omitempty"`
	RoleParallelism float64                `json:"role_parallelism,omitempty"`
	WorkingHoursDay float64                `json:"working_hours_per_day,omitempty"`

	// Headcount (words per person per day)
	TranslatorDailyWords int `json:"translator_daily_words,omitempty"`
	ReviewerDailyWords   int `json:"reviewer_daily_words,omitempty"`

	// Classification
	ClassifierModel       string        `json:"classifier_model,omitempty"`
	ClassifierTimeout     time.Duration `json:"-"`
	ClassifierMaxRetries  uint64        `json:"classifier_max_retries,omitempty"`
	ClassifierConcurrency int64         `json:"classifier_concurrency,omitempty"`
	MaxPromptChars        int           `json:"max_prompt_chars,omitempty"`

	// Orchestration
	JobTimeout time.Duration `json:"-"`

	// JSON-friendly duration mirrors (seconds).
	ClassifierTimeoutSec int `json:"classifier_timeout_sec,omitempty"`
	JobTimeoutSec        int `json:"job_timeout_sec,omitempty"`

	// Collaborators
	WarehouseDSN    string `json:"warehouse_dsn,omitempty"`
	OutputDir       string `json:"output_dir,omitempty"`
	ActivityLogPath string `json:"activity_log_path,omitempty"`
	APIKey          string `json:"api_key,omitempty"`
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		TopK:             5,
		DomainWeight:     0.4,
		LanguageWeight:   0.3,
		VolumeWeight:     0.3,
		DefaultRateWPH:   250,
		FallbackBytesPer: 6,
		TierMultipliers: map[types.Tier]float64{
			types.TierLow:         1.0,
			types.TierMedium:      1.2,
			types.TierHigh:        1.5,
			types.TierSpecialized: 2.0,
		},
		RoleParallelism:       1.0,
		WorkingHoursDay:       8,
		TranslatorDailyWords:  3000,
		ReviewerDailyWords:    4000,
		ClassifierModel:       "gemini-2.0-flash",
		ClassifierTimeout:     45 * time.Second,
		ClassifierMaxRetries:  3,
		ClassifierConcurrency: 4,
		MaxPromptChars:        12000,
		JobTimeout:            10 * time.Minute,
		OutputDir:             "outputs",
		ActivityLogPath:       filepath.Join("logs", "scoping_history.jsonl"),
	}
}

// Load reads a JSON config file and merges it over the defaults. Environment
// variables fill credentials that should not live in the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
		cfg.fillZeroes()
	}

	if cfg.ClassifierTimeoutSec > 0 {
		cfg.ClassifierTimeout = time.Duration(cfg.ClassifierTimeoutSec) * time.Second
	}
	if cfg.JobTimeoutSec > 0 {
		cfg.JobTimeout = time.Duration(cfg.JobTimeoutSec) * time.Second
	}

	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.WarehouseDSN == "" {
		cfg.WarehouseDSN = os.Getenv("WAREHOUSE_DSN")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// fillZeroes re-applies defaults to fields the JSON file left unset.
func (c *Config) fillZeroes() {
	d := Default()
	if c.TopK <= 0 {
		c.TopK = d.TopK
	}
	if c.DomainWeight == 0 && c.LanguageWeight == 0 && c.VolumeWeight == 0 {
		c.DomainWeight, c.LanguageWeight, c.VolumeWeight = d.DomainWeight, d.LanguageWeight, d.VolumeWeight
	}
	if c.DefaultRateWPH <= 0 {
		c.DefaultRateWPH = d.DefaultRateWPH
	}
	if c.FallbackBytesPer <= 0 {
		c.FallbackBytesPer = d.FallbackBytesPer
	}
	if len(c.TierMultipliers) == 0 {
		c.TierMultipliers = d.TierMultipliers
	}
	if c.RoleParallelism <= 0 {
		c.RoleParallelism = d.RoleParallelism
	}
	if c.WorkingHoursDay <= 0 {
		c.WorkingHoursDay = d.WorkingHoursDay
	}
	if c.TranslatorDailyWords <= 0 {
		c.TranslatorDailyWords = d.TranslatorDailyWords
	}
	if c.ReviewerDailyWords <= 0 {
		c.ReviewerDailyWords = d.ReviewerDailyWords
	}
	if c.ClassifierModel == "" {
		c.ClassifierModel = d.ClassifierModel
	}
	if c.ClassifierMaxRetries == 0 {
		c.ClassifierMaxRetries = d.ClassifierMaxRetries
	}
	if c.ClassifierConcurrency <= 0 {
		c.ClassifierConcurrency = d.ClassifierConcurrency
	}
	if c.MaxPromptChars <= 0 {
		c.MaxPromptChars = d.MaxPromptChars
	}
	if c.OutputDir == "" {
		c.OutputDir = d.OutputDir
	}
	if c.ActivityLogPath == "" {
		c.ActivityLogPath = d.ActivityLogPath
	}
}

// Validate checks cross-field invariants of the configuration.
func (c *Config) Validate() error {
	if c.TopK <= 0 {
		return fmt.Errorf("config error: 'top_k' must be positive")
	}
	if c.DefaultRateWPH <= 0 {
		return fmt.Errorf("config error: 'default_rate_wph' must be positive")
	}
	prev := 0.0
	for _, tier := range types.Tiers() {
		m, ok := c.TierMultipliers[tier]
		if !ok {
			return fmt.Errorf("config error: missing multiplier for tier %q", tier)
		}
		if m < prev {
			return fmt.Errorf("config error: tier multipliers must be monotonically increasing, %q breaks the order", tier)
		}
		prev = m
	}
	if c.WorkingHoursDay <= 0 || c.WorkingHoursDay > 24 {
		return fmt.Errorf("config error: 'working_hours_per_day' must be in (0, 24]")
	}
	if c.RoleParallelism <= 0 {
		return fmt.Errorf("config error: 'role_parallelism' must be positive")
	}
	return nil
}

// Multiplier returns the effort multiplier for a tier. An unknown tier maps
// to the most conservative multiplier.
func (c *Config) Multiplier(tier types.Tier) float64 {
	if m, ok := c.TierMultipliers[tier]; ok {
		return m
	}
	return c.TierMultipliers[types.TierSpecialized]
}
