package forecast

import "github.com/okian/finno/internal/domain/model"

// DefaultHorizon is the forecast horizon in weeks used when none is given.
const DefaultHorizon = 4

// minWeeks is the shortest weekly series a user or category may have.
const minWeeks = 4

// DefaultTracked lists the categories forecast when none are configured.
var DefaultTracked = []model.Category{
	model.CategoryIncome,
	model.CategoryFood,
	model.CategoryTransport,
	model.CategoryShopping,
}

// Option applies a configuration option to the forecaster.
type Option func(*Model)

// WithTrackedCategories sets the categories to model. Empty input keeps
// the defaults; duplicates are dropped.
func WithTrackedCategories(categories []model.Category) Option {
	return func(m *Model) {
		if len(categories) == 0 {
			return
		}
		seen := make(map[model.Category]struct{}, len(categories))
		tracked := make([]model.Category, 0, len(categories))
		for _, c := range categories {
			if _, dup := seen[c]; dup {
				continue
			}
			seen[c] = struct{}{}
			tracked = append(tracked, c)
		}
		m.tracked = tracked
	}
}
