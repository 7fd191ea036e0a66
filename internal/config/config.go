// Package config defines the engine configuration and its defaults.
package config

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/okian/finno/internal/domain/model"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// ShutdownTimeout bounds graceful HTTP shutdown.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// WorkerCount bounds concurrent feature extraction during training.
	WorkerCount int `koanf:"worker_count"`

	// RetrainQueueSize bounds pending retrain jobs.
	RetrainQueueSize int `koanf:"retrain_queue_size"`

	// DedupeSize bounds the remembered idempotency keys of added
	// transactions. Zero keeps every key.
	DedupeSize int `koanf:"dedupe_size"`

	// DemoUsers and DemoTransactionsPerUser size the synthetic population
	// the engine boots with.
	DemoUsers               int `koanf:"demo_users"`
	DemoTransactionsPerUser int `koanf:"demo_transactions_per_user"`

	// Seed drives every random draw: synthetic data, labels, boosting and
	// clustering.
	Seed int64 `koanf:"seed"`

	// TrackedCategories are forecast per week.
	TrackedCategories []string `koanf:"tracked_categories"`

	// ForecastHorizonWeeks is the default forecast horizon.
	ForecastHorizonWeeks int `koanf:"forecast_horizon_weeks"`

	GBDTRounds              int     `koanf:"gbdt_rounds"`
	GBDTLearningRate        float64 `koanf:"gbdt_learning_rate"`
	GBDTMaxLeaves           int     `koanf:"gbdt_max_leaves"`
	GBDTMinLeafSamples      int     `koanf:"gbdt_min_leaf_samples"`
	GBDTFeatureFraction     float64 `koanf:"gbdt_feature_fraction"`
	GBDTEarlyStoppingRounds int     `koanf:"gbdt_early_stopping_rounds"`
	GBDTValidationFraction  float64 `koanf:"gbdt_validation_fraction"`

	// ClusterMaxK caps the number of cohorts.
	ClusterMaxK int `koanf:"cluster_max_k"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:                "info",
		LogFormat:               "text",
		Addr:                    ":8080",
		ShutdownTimeout:         10 * time.Second,
		WorkerCount:             runtime.NumCPU(),
		RetrainQueueSize:        16,
		DedupeSize:              10000,
		DemoUsers:               20,
		DemoTransactionsPerUser: 50,
		Seed:                    42,
		TrackedCategories:       []string{"income", "food", "transport", "shopping"},
		ForecastHorizonWeeks:    4,
		GBDTRounds:              100,
		GBDTLearningRate:        0.05,
		GBDTMaxLeaves:           31,
		GBDTMinLeafSamples:      2,
		GBDTFeatureFraction:     0.9,
		GBDTEarlyStoppingRounds: 10,
		GBDTValidationFraction:  0,
		ClusterMaxK:             3,
	}
}

// Categories returns TrackedCategories as domain categories.
func (c *Config) Categories() []model.Category {
	out := make([]model.Category, 0, len(c.TrackedCategories))
	for _, s := range c.TrackedCategories {
		out = append(out, model.Category(strings.ToLower(strings.TrimSpace(s))))
	}
	return out
}

// Validate reports the first invalid setting wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	checks := []struct {
		ok  bool
		msg string
	}{
		{c.Addr != "", "addr must not be empty"},
		{c.LogFormat == "text" || c.LogFormat == "json", "log_format must be text or json"},
		{c.ShutdownTimeout > 0, "shutdown_timeout must be positive"},
		{c.WorkerCount >= 1, "worker_count must be at least 1"},
		{c.RetrainQueueSize >= 1, "retrain_queue_size must be at least 1"},
		{c.DedupeSize >= 0, "dedupe_size must not be negative"},
		{c.DemoUsers >= 0, "demo_users must not be negative"},
		{c.DemoTransactionsPerUser >= 0, "demo_transactions_per_user must not be negative"},
		{len(c.TrackedCategories) > 0, "tracked_categories must not be empty"},
		{c.ForecastHorizonWeeks >= 1, "forecast_horizon_weeks must be at least 1"},
		{c.GBDTRounds >= 1, "gbdt_rounds must be at least 1"},
		{c.GBDTLearningRate > 0 && c.GBDTLearningRate <= 1, "gbdt_learning_rate must be in (0,1]"},
		{c.GBDTMaxLeaves >= 2, "gbdt_max_leaves must be at least 2"},
		{c.GBDTMinLeafSamples >= 1, "gbdt_min_leaf_samples must be at least 1"},
		{c.GBDTFeatureFraction > 0 && c.GBDTFeatureFraction <= 1, "gbdt_feature_fraction must be in (0,1]"},
		{c.GBDTEarlyStoppingRounds >= 0, "gbdt_early_stopping_rounds must not be negative"},
		{c.GBDTValidationFraction >= 0 && c.GBDTValidationFraction < 1, "gbdt_validation_fraction must be in [0,1)"},
		{c.ClusterMaxK >= 1, "cluster_max_k must be at least 1"},
	}
	for _, check := range checks {
		if !check.ok {
			return fmt.Errorf("%w: %s", ErrInvalidConfig, check.msg)
		}
	}
	for _, cat := range c.Categories() {
		if !cat.Valid() {
			return fmt.Errorf("%w: unknown tracked category %q", ErrInvalidConfig, cat)
		}
	}
	return nil
}
