package app

import (
	"time"

	"github.com/okian/finno/internal/adapters/repository"
	"github.com/okian/finno/internal/config"
	"github.com/okian/finno/internal/domain/cohort"
	"github.com/okian/finno/internal/domain/forecast"
	"github.com/okian/finno/internal/domain/scoring"
	"github.com/okian/finno/pkg/logger"
)

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithLogger sets a custom logger for the engine.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithStore replaces the default in-memory ledger store.
func WithStore(s repository.Store) Option {
	return func(e *Engine) {
		if s != nil {
			e.store = s
		}
	}
}

// WithWorkerCount bounds concurrent feature extraction during training.
func WithWorkerCount(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workerCount = n
		}
	}
}

// WithQueueSize sets the retrain queue capacity.
func WithQueueSize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.queueSize = n
		}
	}
}

// WithDedupeSize bounds the idempotency keys remembered for added
// transactions. Zero keeps every key.
func WithDedupeSize(n int) Option {
	return func(e *Engine) {
		if n >= 0 {
			e.dedupeSize = n
		}
	}
}

// WithSeed seeds the synthetic population and the reference labels.
func WithSeed(seed int64) Option {
	return func(e *Engine) {
		e.seed = seed
	}
}

// WithDemoPopulation sizes the synthetic population loaded into an empty
// store on Start. Zero users disables it.
func WithDemoPopulation(users, perUser int) Option {
	return func(e *Engine) {
		if users >= 0 && perUser >= 0 {
			e.demoUsers = users
			e.demoPerUser = perUser
		}
	}
}

// WithHorizon sets the default forecast horizon in weeks.
func WithHorizon(weeks int) Option {
	return func(e *Engine) {
		if weeks > 0 {
			e.horizon = weeks
		}
	}
}

// WithScoringOptions forwards options to the health scorer trainer.
func WithScoringOptions(opts ...scoring.Option) Option {
	return func(e *Engine) {
		e.scoringOpts = append(e.scoringOpts, opts...)
	}
}

// WithForecastOptions forwards options to the forecaster.
func WithForecastOptions(opts ...forecast.Option) Option {
	return func(e *Engine) {
		e.forecastOpts = append(e.forecastOpts, opts...)
	}
}

// WithCohortOptions forwards options to the clusterer.
func WithCohortOptions(opts ...cohort.Option) Option {
	return func(e *Engine) {
		e.cohortOpts = append(e.cohortOpts, opts...)
	}
}

// WithClock overrides time.Now, used for synthetic timestamps and for
// transactions added without one.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// FromConfig maps a validated Config onto engine options.
func FromConfig(cfg *config.Config) []Option {
	return []Option{
		WithWorkerCount(cfg.WorkerCount),
		WithQueueSize(cfg.RetrainQueueSize),
		WithDedupeSize(cfg.DedupeSize),
		WithSeed(cfg.Seed),
		WithDemoPopulation(cfg.DemoUsers, cfg.DemoTransactionsPerUser),
		WithHorizon(cfg.ForecastHorizonWeeks),
		WithScoringOptions(
			scoring.WithRounds(cfg.GBDTRounds),
			scoring.WithLearningRate(cfg.GBDTLearningRate),
			scoring.WithMaxLeaves(cfg.GBDTMaxLeaves),
			scoring.WithMinLeafSamples(cfg.GBDTMinLeafSamples),
			scoring.WithFeatureFraction(cfg.GBDTFeatureFraction),
			scoring.WithEarlyStopping(cfg.GBDTEarlyStoppingRounds),
			scoring.WithValidationFraction(cfg.GBDTValidationFraction),
			scoring.WithSeed(cfg.Seed),
		),
		WithForecastOptions(forecast.WithTrackedCategories(cfg.Categories())),
		WithCohortOptions(
			cohort.WithMaxK(cfg.ClusterMaxK),
			cohort.WithSeed(cfg.Seed),
		),
	}
}
