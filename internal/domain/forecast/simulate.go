package forecast

import (
	"fmt"
	"math"

	"github.com/okian/finno/internal/domain/model"
	"github.com/okian/finno/pkg/money"
	"github.com/shopspring/decimal"
)

// SimulationConfidence is the fixed confidence of an arithmetic simulation.
const SimulationConfidence = 0.85

// Intervention reduces spending in one category by a percentage.
type Intervention struct {
	Category         model.Category `json:"category"`
	ReductionPercent float64        `json:"reduction_percent"`
}

// Simulation is the projected effect of an intervention on the user's
// totals. Amounts are exact decimals in minor units.
type Simulation struct {
	Intervention        Intervention    `json:"intervention"`
	CurrentIncome       decimal.Decimal `json:"current_income"`
	CurrentExpenses     decimal.Decimal `json:"current_expenses"`
	CurrentSavings      decimal.Decimal `json:"current_savings"`
	ReductionAmount     decimal.Decimal `json:"reduction_amount"`
	NewExpenses         decimal.Decimal `json:"new_expenses"`
	NewSavings          decimal.Decimal `json:"new_savings"`
	SavingsIncrease     decimal.Decimal `json:"savings_increase"`
	SavingsRateIncrease float64         `json:"savings_rate_increase"`
	Confidence          float64         `json:"confidence"`
	Summary             string          `json:"summary"`
}

// Simulate applies iv to txs. The reduction percent is clamped to [0,100];
// a category the user never spent on has no effect.
func Simulate(txs []model.Transaction, iv Intervention) Simulation {
	if math.IsNaN(iv.ReductionPercent) {
		iv.ReductionPercent = 0
	}
	iv.ReductionPercent = max(0, min(100, iv.ReductionPercent))

	income, expenses := model.Totals(txs)
	var spent int64
	if iv.Category != model.CategoryIncome {
		spent = model.SpendByCategory(txs)[iv.Category]
	}

	s := Simulation{
		Intervention:    iv,
		CurrentIncome:   money.FromMinor(income),
		CurrentExpenses: money.FromMinor(expenses),
		Confidence:      SimulationConfidence,
	}
	s.CurrentSavings = s.CurrentIncome.Sub(s.CurrentExpenses)
	s.ReductionAmount = money.Percent(money.FromMinor(spent), iv.ReductionPercent)
	s.NewExpenses = s.CurrentExpenses.Sub(s.ReductionAmount)
	s.NewSavings = s.CurrentIncome.Sub(s.NewExpenses)
	s.SavingsIncrease = s.NewSavings.Sub(s.CurrentSavings)
	s.SavingsRateIncrease = money.Ratio(s.SavingsIncrease, s.CurrentIncome)
	s.Summary = fmt.Sprintf(
		"Cutting %s spending by %g%% saves an extra %s/month and lifts the savings rate by %.1f points (confidence %.0f%%, arithmetic simulation).",
		iv.Category, iv.ReductionPercent, money.FormatVND(s.SavingsIncrease), s.SavingsRateIncrease, SimulationConfidence*100,
	)
	return s
}
