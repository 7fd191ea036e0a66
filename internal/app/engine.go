// Package app ties the ledger store, the trained models and the retrain
// pipeline together behind the operations the HTTP API serves.
package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/finno/internal/adapters/mq/queue"
	"github.com/okian/finno/internal/adapters/mq/worker"
	"github.com/okian/finno/internal/adapters/repository"
	"github.com/okian/finno/internal/domain/cohort"
	"github.com/okian/finno/internal/domain/dedupe"
	"github.com/okian/finno/internal/domain/features"
	"github.com/okian/finno/internal/domain/forecast"
	"github.com/okian/finno/internal/domain/model"
	"github.com/okian/finno/internal/domain/scoring"
	"github.com/okian/finno/internal/synth"
	"github.com/okian/finno/pkg/logger"
	"github.com/okian/finno/pkg/metrics"
	"golang.org/x/sync/errgroup"
)

const (
	defaultQueueSize   = 16
	defaultDedupeSize  = 10000
	defaultSeed        = 42
	defaultDemoUsers   = 20
	defaultDemoPerUser = 50
	stopTimeout        = 5 * time.Second
)

// Engine serves inference from the latest Snapshot and retrains in the
// background when ledgers change.
type Engine struct {
	mu sync.RWMutex
	// trainMu serialises training passes.
	trainMu  sync.Mutex
	snapshot atomic.Pointer[Snapshot]

	store   repository.Store
	deduper dedupe.Deduper
	queue   *queue.InMemoryQueue
	worker  *worker.RetrainWorker
	cancel  context.CancelFunc

	// Configuration
	workerCount  int
	queueSize    int
	dedupeSize   int
	seed         int64
	demoUsers    int
	demoPerUser  int
	horizon      int
	scoringOpts  []scoring.Option
	forecastOpts []forecast.Option
	cohortOpts   []cohort.Option
	now          func() time.Time

	started bool
	logger  logger.Logger
}

// New constructs an Engine. Nothing is trained until Start.
func New(opts ...Option) *Engine {
	e := &Engine{
		workerCount: runtime.NumCPU(),
		queueSize:   defaultQueueSize,
		dedupeSize:  defaultDedupeSize,
		seed:        defaultSeed,
		demoUsers:   defaultDemoUsers,
		demoPerUser: defaultDemoPerUser,
		horizon:     forecast.DefaultHorizon,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.store == nil {
		e.store = repository.NewMemoryStore()
	}
	if e.logger == nil {
		e.logger = logger.Get().Named("engine")
	}
	e.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(e.dedupeSize))
	return e
}

// Start loads the demo population into an empty store, trains the first
// snapshot and starts the retrain worker.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.started {
		return nil
	}
	e.logger.Info(ctx, "starting engine...")

	if err := e.bootstrap(ctx); err != nil {
		return err
	}
	if err := e.Retrain(ctx, "startup"); err != nil {
		return fmt.Errorf("initial training: %w", err)
	}

	e.queue = queue.NewInMemoryQueue(queue.WithCapacity(e.queueSize))
	e.worker = worker.NewRetrainWorker(e.queue, e, worker.WithLogger(e.logger.Named("retrain")))
	workerCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	e.cancel = cancel
	go e.worker.Run(workerCtx)

	e.started = true
	users, txs := e.store.Count(ctx)
	e.logger.Info(ctx, "engine started",
		logger.Int("users", users),
		logger.Int("transactions", txs),
		logger.Int("workers", e.workerCount),
		logger.Int("queueSize", e.queueSize),
	)
	return nil
}

// Stop closes the retrain queue and waits for the worker to exit.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.started {
		return
	}
	ctx := context.Background()
	e.logger.Info(ctx, "stopping engine...")

	_ = e.queue.Close()
	shutdownCtx, cancel := context.WithTimeout(ctx, stopTimeout)
	defer cancel()
	if err := e.worker.Shutdown(shutdownCtx); err != nil {
		e.logger.Warn(ctx, "retrain worker did not stop cleanly", logger.Error(err))
	}
	e.cancel()

	e.started = false
	e.logger.Info(ctx, "engine stopped")
}

// bootstrap fills an empty store with the synthetic demo population.
func (e *Engine) bootstrap(ctx context.Context) error {
	if users, _ := e.store.Count(ctx); users > 0 || e.demoUsers == 0 {
		return nil
	}
	gen := synth.New(e.seed, synth.WithNow(e.now()))
	for _, u := range gen.Population(e.demoUsers, e.demoPerUser) {
		if err := e.store.AddUser(ctx, u.ID, u.Transactions); err != nil {
			return fmt.Errorf("load demo user %s: %w", u.ID, err)
		}
	}
	e.logger.Info(ctx, "loaded synthetic population",
		logger.Int("users", e.demoUsers),
		logger.Int("transactionsPerUser", e.demoPerUser),
	)
	return nil
}

// Retrain trains every model on the current ledgers and publishes a new
// snapshot. It is a no-op when the ledgers have not changed since the
// current snapshot.
func (e *Engine) Retrain(ctx context.Context, reason string) error {
	e.trainMu.Lock()
	defer e.trainMu.Unlock()

	ids, ledgers, version := e.store.Population(ctx)
	if cur := e.snapshot.Load(); cur != nil && cur.Version == version {
		e.logger.Debug(ctx, "snapshot up to date", logger.String("reason", reason))
		metrics.RecordTrainingRun("skipped")
		return nil
	}
	if len(ids) == 0 {
		e.logger.Warn(ctx, "no users to train on", logger.String("reason", reason))
		metrics.RecordTrainingRun("skipped")
		return nil
	}

	start := time.Now()
	snap, err := e.train(ctx, ids, ledgers, version)
	if err != nil {
		metrics.RecordTrainingRun("error")
		metrics.RecordErrorByComponent("engine", "training")
		return err
	}
	snap.TrainedAt = e.now()
	e.snapshot.Store(snap)

	took := time.Since(start)
	untrained := snap.Forecaster.Untrained()
	metrics.RecordTrainingDuration("total", took)
	metrics.RecordTrainingRun("success")
	metrics.UpdateTrainingPopulation(len(ids))
	metrics.UpdateUntrainedCategories(len(untrained))
	metrics.UpdateSnapshot(version, snap.TrainedAt)

	if len(untrained) > 0 {
		e.logger.Debug(ctx, "forecast categories left untrained",
			logger.Any("categories", untrained),
			logger.Int("forecastUsers", snap.Forecaster.Users()),
		)
	}
	e.logger.Info(ctx, "snapshot published",
		logger.String("reason", reason),
		logger.Int64("version", int64(version)),
		logger.Int("users", len(ids)),
		logger.Int("trees", snap.Scorer.Trees()),
		logger.Int("clusters", snap.Cohorts.K),
		logger.Duration("took", took),
	)
	return nil
}

// train builds a snapshot. The three models are independent and fitted
// concurrently over shared, read-only feature rows.
func (e *Engine) train(ctx context.Context, ids []string, ledgers [][]model.Transaction, version uint64) (*Snapshot, error) {
	rows, err := e.extract(ctx, ledgers)
	if err != nil {
		return nil, fmt.Errorf("extract features: %w", err)
	}
	snap := newSnapshot(version, ids, rows)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		start := time.Now()
		labels := scoring.Labels(rows, rand.New(rand.NewSource(e.seed)))
		m, err := scoring.Fit(gctx, rows, labels, e.scoringOpts...)
		if err != nil {
			return fmt.Errorf("train scorer: %w", err)
		}
		snap.Scorer = m
		metrics.RecordTrainingDuration("scoring", time.Since(start))
		return nil
	})
	g.Go(func() error {
		start := time.Now()
		m, err := forecast.Train(gctx, ledgers, e.forecastOpts...)
		if err != nil {
			return fmt.Errorf("train forecaster: %w", err)
		}
		snap.Forecaster = m
		metrics.RecordTrainingDuration("forecast", time.Since(start))
		return nil
	})
	g.Go(func() error {
		start := time.Now()
		snap.Cohorts = cohort.Cluster(rows, e.cohortOpts...)
		metrics.RecordTrainingDuration("cohort", time.Since(start))
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snap, nil
}

// extract computes feature rows with at most workerCount goroutines. Rows
// are written by index so the result does not depend on scheduling.
func (e *Engine) extract(ctx context.Context, ledgers [][]model.Transaction) ([]features.Vector, error) {
	rows := make([]features.Vector, len(ledgers))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workerCount)
	for i, txs := range ledgers {
		i, txs := i, txs
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rows[i] = features.Extract(txs)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return rows, nil
}

// Snapshot returns the current snapshot, or nil before the first training.
func (e *Engine) Snapshot() *Snapshot {
	return e.snapshot.Load()
}

func (e *Engine) current() (*Snapshot, error) {
	snap := e.snapshot.Load()
	if snap == nil {
		return nil, ErrNotTrained
	}
	return snap, nil
}

// ResolveUser maps a numeric user reference onto a known user id, wrapping
// around the population size. Negative references wrap from the end.
func (e *Engine) ResolveUser(ctx context.Context, n int) (string, error) {
	users := e.store.Users(ctx)
	if len(users) == 0 {
		return "", ErrUnknownUser
	}
	i := ((n % len(users)) + len(users)) % len(users)
	return users[i], nil
}

func (e *Engine) ledger(ctx context.Context, userID string) ([]model.Transaction, error) {
	txs, err := e.store.Transactions(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownUser, userID)
	}
	return txs, err
}

// GetStats returns engine statistics for monitoring.
func (e *Engine) GetStats() map[string]interface{} {
	e.mu.RLock()
	defer e.mu.RUnlock()

	ctx := context.Background()
	users, txs := e.store.Count(ctx)
	stats := map[string]interface{}{
		"started":      e.started,
		"workerCount":  e.workerCount,
		"queueSize":    e.queueSize,
		"dedupeKeys":   e.deduper.Size(),
		"users":        users,
		"transactions": txs,
		"storeVersion": e.store.Version(ctx),
	}
	if e.started {
		stats["retrainQueueLength"] = e.queue.Len(ctx)
	}
	if snap := e.snapshot.Load(); snap != nil {
		stats["snapshotVersion"] = snap.Version
		stats["trainedAt"] = snap.TrainedAt
		stats["trees"] = snap.Scorer.Trees()
		stats["clusters"] = snap.Cohorts.K
		stats["forecastCategories"] = snap.Forecaster.Trained()
	}
	return stats
}
