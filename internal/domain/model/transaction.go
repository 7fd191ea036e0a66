// Package model contains domain models passed between layers.
package model

import "time"

// Category classifies what a transaction was spent on. CategoryIncome is
// reserved: every other category counts as an expense.
type Category string

// Known categories.
const (
	CategoryIncome        Category = "income"
	CategoryFood          Category = "food"
	CategoryTransport     Category = "transport"
	CategoryShopping      Category = "shopping"
	CategoryBills         Category = "bills"
	CategoryHealth        Category = "health"
	CategoryEducation     Category = "education"
	CategoryEntertainment Category = "entertainment"
	CategoryTransfer      Category = "transfer"
	CategoryWithdrawal    Category = "withdrawal"
	CategoryOther         Category = "other"
)

// Categories lists every known category in a stable order.
var Categories = []Category{
	CategoryIncome,
	CategoryFood,
	CategoryTransport,
	CategoryShopping,
	CategoryBills,
	CategoryHealth,
	CategoryEducation,
	CategoryEntertainment,
	CategoryTransfer,
	CategoryWithdrawal,
	CategoryOther,
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Intent describes why money moved.
type Intent string

// Known intents.
const (
	IntentTransfer   Intent = "transfer"
	IntentPayment    Intent = "payment"
	IntentPurchase   Intent = "purchase"
	IntentWithdrawal Intent = "withdrawal"
	IntentSalary     Intent = "salary"
	IntentOther      Intent = "other"
)

// Transaction is an enriched transaction record. Amount is in minor
// currency units and never negative.
type Transaction struct {
	ID        string    `json:"id,omitempty"`
	Amount    int64     `json:"amount"`
	Category  Category  `json:"category"`
	Intent    Intent    `json:"intent"`
	Recipient string    `json:"recipient"`
	Timestamp time.Time `json:"timestamp_reference"`
	RawText   string    `json:"raw_text,omitempty"`
}

// IsIncome reports whether the transaction is income rather than an expense.
func (t Transaction) IsIncome() bool {
	return t.Category == CategoryIncome
}

// Goal is a user-selected objective that steers recommendations.
type Goal string

// Known goals.
const (
	GoalSavings          Goal = "savings"
	GoalExpenseReduction Goal = "expense_reduction"
	GoalInvestment       Goal = "investment"
	GoalDebtManagement   Goal = "debt_management"
)

// DefaultGoals is used when a caller does not pick any goal.
var DefaultGoals = []Goal{GoalSavings, GoalExpenseReduction}

// Recommendation is a single suggested action. It is built per request and
// never stored.
type Recommendation struct {
	Action         string  `json:"action"`
	ExpectedImpact string  `json:"expected_impact"`
	Reason         string  `json:"reason"`
	Confidence     float64 `json:"confidence"`
}

// Totals splits a transaction list into income and expense sums.
func Totals(txs []Transaction) (income, expenses int64) {
	for _, t := range txs {
		if t.IsIncome() {
			income += t.Amount
		} else {
			expenses += t.Amount
		}
	}
	return income, expenses
}

// SpendByCategory sums amounts per category, income included.
func SpendByCategory(txs []Transaction) map[Category]int64 {
	out := make(map[Category]int64)
	for _, t := range txs {
		out[t.Category] += t.Amount
	}
	return out
}

// TopExpenseCategory returns the non-income category with the largest total.
// Ties resolve to the category listed first in Categories, and unknown
// categories sort after known ones by name. ok is false when there is no
// expense category at all.
func TopExpenseCategory(txs []Transaction) (cat Category, total int64, ok bool) {
	spend := SpendByCategory(txs)
	delete(spend, CategoryIncome)
	if len(spend) == 0 {
		return "", 0, false
	}
	best := Category("")
	for c, v := range spend {
		if best == "" || v > spend[best] || (v == spend[best] && categoryBefore(c, best)) {
			best = c
		}
	}
	return best, spend[best], true
}

func categoryBefore(a, b Category) bool {
	ia, ib := categoryIndex(a), categoryIndex(b)
	if ia != ib {
		return ia < ib
	}
	return a < b
}

func categoryIndex(c Category) int {
	for i, known := range Categories {
		if c == known {
			return i
		}
	}
	return len(Categories)
}
