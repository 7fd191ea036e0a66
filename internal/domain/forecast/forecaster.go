// Package forecast projects weekly per-category spending with ARIMA(1,1,1)
// models and simulates the effect of spending interventions.
package forecast

import (
	"context"
	"fmt"

	"github.com/okian/finno/internal/domain/model"
)

// Model holds one fitted ARIMA per tracked category. Categories whose fit
// failed or lacked data are reported by Untrained and never forecast.
type Model struct {
	tracked []model.Category
	params  map[model.Category]arima
	weeks   int
	users   int
}

// Train aggregates the weekly series of every user with enough history and
// fits a model per tracked category. A population with no usable user
// yields a model with every category untrained.
func Train(ctx context.Context, population [][]model.Transaction, opts ...Option) (*Model, error) {
	m := &Model{
		tracked: DefaultTracked,
		params:  make(map[model.Category]arima),
	}
	for _, opt := range opts {
		opt(m)
	}

	var users [][]Week
	for _, txs := range population {
		weeks := Weekly(txs, m.tracked)
		if len(weeks) >= minWeeks {
			users = append(users, weeks)
		}
	}
	m.users = len(users)
	if len(users) == 0 {
		return m, nil
	}

	combined := average(users, m.tracked)
	m.weeks = len(combined)
	if len(combined) < minWeeks {
		return m, nil
	}
	for _, c := range m.tracked {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("fit %s: %w", c, err)
		}
		p, err := fitARIMA(column(combined, c))
		if err != nil {
			continue
		}
		m.params[c] = p
	}
	return m, nil
}

// Forecast projects the user's own weekly series horizon weeks ahead and
// returns the mean projected amount per trained category, floored at zero.
// The projection starts from the user's last observed week, not from the
// end of the population series the coefficients were fitted on.
// Fewer than four weeks of history yields an empty map.
func (m *Model) Forecast(txs []model.Transaction, horizon int) map[model.Category]float64 {
	out := make(map[model.Category]float64)
	if m == nil || len(m.params) == 0 {
		return out
	}
	if horizon <= 0 {
		horizon = DefaultHorizon
	}
	weeks := Weekly(txs, m.tracked)
	if len(weeks) < minWeeks {
		return out
	}
	for _, c := range m.tracked {
		p, ok := m.params[c]
		if !ok {
			continue
		}
		sum := 0.0
		for _, v := range p.project(column(weeks, c), horizon) {
			sum += v
		}
		out[c] = max(0, sum/float64(horizon))
	}
	return out
}

// Tracked returns the categories the model was configured for.
func (m *Model) Tracked() []model.Category {
	if m == nil {
		return nil
	}
	return append([]model.Category(nil), m.tracked...)
}

// Trained returns the categories with a fitted model, in tracked order.
func (m *Model) Trained() []model.Category {
	if m == nil {
		return nil
	}
	var out []model.Category
	for _, c := range m.tracked {
		if _, ok := m.params[c]; ok {
			out = append(out, c)
		}
	}
	return out
}

// Untrained returns the tracked categories without a fitted model.
func (m *Model) Untrained() []model.Category {
	if m == nil {
		return nil
	}
	var out []model.Category
	for _, c := range m.tracked {
		if _, ok := m.params[c]; !ok {
			out = append(out, c)
		}
	}
	return out
}

// Coefficients returns the fitted AR and MA coefficients of category c.
func (m *Model) Coefficients(c model.Category) (phi, theta float64, ok bool) {
	if m == nil {
		return 0, 0, false
	}
	p, ok := m.params[c]
	return p.Phi, p.Theta, ok
}

// Users is the number of users with enough weekly history to contribute.
func (m *Model) Users() int {
	if m == nil {
		return 0
	}
	return m.users
}

// Weeks is the length of the aggregated training series.
func (m *Model) Weeks() int {
	if m == nil {
		return 0
	}
	return m.weeks
}
