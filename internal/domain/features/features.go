// Package features turns a user's transactions into the fixed-length numeric
// vector consumed by the health scorer and the cohort clusterer.
package features

import (
	"math"
	"sort"
	"time"

	"github.com/okian/finno/internal/domain/model"
	"gonum.org/v1/gonum/stat"
)

// Size is the number of features in a Vector.
const Size = 8

// Feature indexes into a Vector.
const (
	TotalIncome = iota
	TotalExpenses
	DebtToIncomeRatio
	SavingsRate
	ExpenseVolatility
	CategoryDiversity
	TransactionFrequency
	AvgTransactionAmount
)

// Names holds the feature names in Vector order.
var Names = [Size]string{
	"total_income",
	"total_expenses",
	"debt_to_income_ratio",
	"savings_rate",
	"expense_volatility",
	"category_diversity",
	"transaction_frequency",
	"avg_transaction_amount",
}

const hoursPerDay = 24

// Vector is an ordered feature tuple for one user.
type Vector [Size]float64

// Map returns the vector keyed by feature name.
func (v Vector) Map() map[string]float64 {
	out := make(map[string]float64, Size)
	for i, name := range Names {
		out[name] = v[i]
	}
	return out
}

// Extract derives the feature vector from txs. An empty list yields the zero
// vector.
func Extract(txs []model.Transaction) Vector {
	var v Vector
	if len(txs) == 0 {
		return v
	}

	income, expenses := model.Totals(txs)
	v[TotalIncome] = float64(income)
	v[TotalExpenses] = float64(expenses)

	denom := math.Max(float64(income), 1)
	v[DebtToIncomeRatio] = float64(expenses) / denom
	v[SavingsRate] = math.Max(0, float64(income-expenses)/denom)
	v[ExpenseVolatility] = dailyExpenseVolatility(txs)

	seen := make(map[model.Category]struct{})
	var sum float64
	first, last := txs[0].Timestamp, txs[0].Timestamp
	for _, t := range txs {
		seen[t.Category] = struct{}{}
		sum += float64(t.Amount)
		if t.Timestamp.Before(first) {
			first = t.Timestamp
		}
		if t.Timestamp.After(last) {
			last = t.Timestamp
		}
	}
	v[CategoryDiversity] = float64(len(seen))

	span := int(last.Sub(first).Hours()/hoursPerDay) + 1
	v[TransactionFrequency] = float64(len(txs)) / float64(max(span, 1))
	v[AvgTransactionAmount] = sum / float64(len(txs))

	return v
}

// dailyExpenseVolatility is the sample standard deviation of per-day expense
// totals, or zero with fewer than two expense days.
func dailyExpenseVolatility(txs []model.Transaction) float64 {
	daily := make(map[time.Time]float64)
	for _, t := range txs {
		if t.IsIncome() {
			continue
		}
		daily[Day(t.Timestamp)] += float64(t.Amount)
	}
	if len(daily) < 2 {
		return 0
	}
	days := make([]time.Time, 0, len(daily))
	for day := range daily {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	totals := make([]float64, len(days))
	for i, day := range days {
		totals[i] = daily[day]
	}
	return stat.StdDev(totals, nil)
}

// Day truncates ts to its calendar date, keeping the date as seen in the
// timestamp's own location.
func Day(ts time.Time) time.Time {
	y, m, d := ts.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
