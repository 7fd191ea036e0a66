package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/okian/finno/internal/adapters/mq/queue"
	"github.com/okian/finno/internal/adapters/repository"
	"github.com/okian/finno/internal/domain/enrich"
	"github.com/okian/finno/internal/domain/forecast"
	"github.com/okian/finno/internal/domain/model"
	"github.com/okian/finno/internal/domain/recommend"
	"github.com/okian/finno/internal/domain/scoring"
	"github.com/okian/finno/internal/domain/types"
	"github.com/okian/finno/pkg/logger"
	"github.com/okian/finno/pkg/metrics"
)

// recentTransactions is how many of the latest transactions the dashboard shows.
const recentTransactions = 5

// FallbackForecast is charted when a user has too little history to forecast.
var FallbackForecast = []float64{2300000, 2400000, 2200000, 2300000}

// Transactions returns the user's ledger.
func (e *Engine) Transactions(ctx context.Context, userID string) ([]model.Transaction, error) {
	return e.ledger(ctx, userID)
}

// explain scores txs against the snapshot and records latency and fallbacks.
func (e *Engine) explain(ctx context.Context, snap *Snapshot, userID string, txs []model.Transaction) (scoring.Explanation, error) {
	start := time.Now()
	exp, err := snap.Scorer.Explain(txs)
	metrics.RecordScoringLatency(float64(time.Since(start).Microseconds()) / 1000)
	if err != nil {
		metrics.RecordErrorByComponent("engine", "scoring")
		return scoring.Explanation{}, fmt.Errorf("explain %s: %w", userID, err)
	}
	if exp.Fallback {
		metrics.RecordFallbackExplanation()
		e.logger.Warn(ctx, "attribution degenerate, using fallback contributions",
			logger.String("userID", userID),
			logger.Float64("score", exp.Score),
		)
	}
	return exp, nil
}

// HealthScore returns the user's score with per-feature contributions.
func (e *Engine) HealthScore(ctx context.Context, userID string) (types.HealthScore, error) {
	snap, err := e.current()
	if err != nil {
		return types.HealthScore{}, err
	}
	txs, err := e.ledger(ctx, userID)
	if err != nil {
		return types.HealthScore{}, err
	}
	exp, err := e.explain(ctx, snap, userID, txs)
	if err != nil {
		return types.HealthScore{}, err
	}
	return types.HealthScore{
		UserID:       userID,
		Score:        types.Round1(exp.Score),
		BaseValue:    exp.BaseValue,
		Explanations: exp.Contributions,
		Fallback:     exp.Fallback,
	}, nil
}

// Dashboard summarises the user's totals and score.
func (e *Engine) Dashboard(ctx context.Context, userID string) (types.Dashboard, error) {
	snap, err := e.current()
	if err != nil {
		return types.Dashboard{}, err
	}
	txs, err := e.ledger(ctx, userID)
	if err != nil {
		return types.Dashboard{}, err
	}
	exp, err := e.explain(ctx, snap, userID, txs)
	if err != nil {
		return types.Dashboard{}, err
	}

	income, expenses := model.Totals(txs)
	balance := income - expenses
	recent := txs[max(0, len(txs)-recentTransactions):]
	return types.Dashboard{
		UserID:             userID,
		HealthScore:        types.Round1(exp.Score),
		CurrentBalance:     balance,
		MonthlyIncome:      income,
		MonthlyExpenses:    expenses,
		SavingsRate:        types.Round1(float64(balance) / float64(max(income, 1)) * 100),
		RecentTransactions: recent,
	}, nil
}

// Forecast projects the user's tracked categories horizon weeks ahead.
// A non-positive horizon uses the engine default.
func (e *Engine) Forecast(ctx context.Context, userID string, horizon int) (map[model.Category]float64, error) {
	snap, err := e.current()
	if err != nil {
		return nil, err
	}
	txs, err := e.ledger(ctx, userID)
	if err != nil {
		return nil, err
	}
	return e.forecast(snap, txs, horizon), nil
}

func (e *Engine) forecast(snap *Snapshot, txs []model.Transaction, horizon int) map[model.Category]float64 {
	if horizon <= 0 {
		horizon = e.horizon
	}
	out := snap.Forecaster.Forecast(txs, horizon)
	if len(out) == 0 {
		metrics.RecordForecastEmpty()
	}
	return out
}

// Insights returns the forecast chart and the per-category breakdown.
func (e *Engine) Insights(ctx context.Context, userID string) (types.Insights, error) {
	snap, err := e.current()
	if err != nil {
		return types.Insights{}, err
	}
	txs, err := e.ledger(ctx, userID)
	if err != nil {
		return types.Insights{}, err
	}

	chart := types.ForecastChart{Weeks: weekLabels(e.horizon)}
	projected := e.forecast(snap, txs, e.horizon)
	for _, c := range snap.Forecaster.Tracked() {
		if amount, ok := projected[c]; ok {
			chart.Categories = append(chart.Categories, c)
			chart.Amounts = append(chart.Amounts, amount)
		}
	}
	if len(chart.Amounts) == 0 {
		chart.Amounts = append([]float64(nil), FallbackForecast...)
		chart.Fallback = true
	}

	var breakdown types.Breakdown
	spend := model.SpendByCategory(txs)
	for _, c := range model.Categories {
		if amount, ok := spend[c]; ok {
			breakdown.Labels = append(breakdown.Labels, c)
			breakdown.Amounts = append(breakdown.Amounts, amount)
		}
	}
	return types.Insights{UserID: userID, Forecast: chart, CategoryBreakdown: breakdown}, nil
}

func weekLabels(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = "Week " + strconv.Itoa(i+1)
	}
	return out
}

// Simulate applies an intervention to the user's ledger.
func (e *Engine) Simulate(ctx context.Context, userID string, iv forecast.Intervention) (forecast.Simulation, error) {
	txs, err := e.ledger(ctx, userID)
	if err != nil {
		return forecast.Simulation{}, err
	}
	return forecast.Simulate(txs, iv), nil
}

// Recommend generates recommendations for the user. Nil goals use the
// default goals.
func (e *Engine) Recommend(ctx context.Context, userID string, goals []model.Goal) ([]model.Recommendation, error) {
	snap, err := e.current()
	if err != nil {
		return nil, err
	}
	txs, err := e.ledger(ctx, userID)
	if err != nil {
		return nil, err
	}
	exp, err := e.explain(ctx, snap, userID, txs)
	if err != nil {
		return nil, err
	}

	in := recommend.Input{
		Transactions: txs,
		HealthScore:  exp.Score,
		Forecast:     e.forecast(snap, txs, e.horizon),
		Goals:        goals,
	}
	if i, ok := snap.IndexOf(userID); ok {
		if label, ok := snap.Cohorts.Label(i); ok {
			in.CohortSize = len(snap.Cohorts.Members(label))
		}
	}
	recs := recommend.Generate(in)
	metrics.RecordRecommendations(len(recs))
	return recs, nil
}

// Cohort describes the cluster the user was assigned to in the current
// snapshot.
func (e *Engine) Cohort(ctx context.Context, userID string) (types.CohortSummary, error) {
	snap, err := e.current()
	if err != nil {
		return types.CohortSummary{}, err
	}
	i, ok := snap.IndexOf(userID)
	if !ok {
		return types.CohortSummary{}, fmt.Errorf("%w: %s", ErrUnknownUser, userID)
	}
	label, ok := snap.Cohorts.Label(i)
	if !ok {
		return types.CohortSummary{}, ErrNoCohort
	}

	members := snap.Cohorts.Members(label)
	peers := make([]string, 0, len(members))
	for _, m := range members {
		if m != i {
			peers = append(peers, snap.Users[m])
		}
	}
	return types.CohortSummary{
		UserID:   userID,
		Label:    label,
		Clusters: snap.Cohorts.K,
		Size:     len(members),
		Peers:    peers,
		Centroid: snap.Cohorts.Centroids[label].Map(),
	}, nil
}

// Enrich parses free text into a transaction dated now.
func (e *Engine) Enrich(raw string) model.Transaction {
	return enrich.Enrich(raw, e.now())
}

// AddTransaction appends tx to the user's ledger and schedules a retrain.
// When RawText is set, fields left empty are filled in by enrichment, and
// a missing timestamp defaults to now. A client supplied ID is an
// idempotency key: repeating it returns ErrDuplicateTransaction.
func (e *Engine) AddTransaction(ctx context.Context, userID string, tx model.Transaction) (model.Transaction, error) {
	if tx.Timestamp.IsZero() {
		tx.Timestamp = e.now()
	}
	if tx.RawText != "" {
		tx = fillFromText(tx)
	}
	if tx.Intent == "" {
		tx.Intent = model.IntentOther
	}

	var key string
	if tx.ID != "" {
		key = userID + "/" + tx.ID
		if e.deduper.SeenAndRecord(ctx, key) {
			metrics.RecordDuplicateWrite()
			return model.Transaction{}, fmt.Errorf("%w: %s", ErrDuplicateTransaction, tx.ID)
		}
	}

	added, err := e.store.Append(ctx, userID, tx)
	if err != nil {
		if key != "" {
			e.deduper.Unrecord(ctx, key)
		}
		if errors.Is(err, repository.ErrNotFound) {
			return model.Transaction{}, fmt.Errorf("%w: %s", ErrUnknownUser, userID)
		}
		return model.Transaction{}, err
	}

	e.mu.RLock()
	q := e.queue
	e.mu.RUnlock()
	if q != nil {
		job := queue.Job{Reason: "transaction_added", UserID: userID, At: e.now()}
		switch err := q.Enqueue(ctx, job); {
		case err == nil:
		case errors.Is(err, queue.ErrQueueFull):
			e.logger.Debug(ctx, "retrain already pending", logger.String("userID", userID))
		default:
			e.logger.Warn(ctx, "retrain not scheduled", logger.String("userID", userID), logger.Error(err))
		}
	}
	return added, nil
}

func fillFromText(tx model.Transaction) model.Transaction {
	parsed := enrich.Enrich(tx.RawText, tx.Timestamp)
	if tx.Amount == 0 {
		tx.Amount = parsed.Amount
	}
	if tx.Category == "" {
		tx.Category = parsed.Category
	}
	if tx.Intent == "" {
		tx.Intent = parsed.Intent
	}
	if tx.Recipient == "" {
		tx.Recipient = parsed.Recipient
	}
	return tx
}
