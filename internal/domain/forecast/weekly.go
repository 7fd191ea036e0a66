package forecast

import (
	"sort"
	"time"

	"github.com/okian/finno/internal/domain/features"
	"github.com/okian/finno/internal/domain/model"
)

const daysPerWeek = 7

// Week is one row of a weekly series: the Monday the week starts on and the
// summed amount per tracked category.
type Week struct {
	Start  time.Time
	Totals map[model.Category]float64
}

// WeekStart returns the Monday of the calendar week containing ts.
func WeekStart(ts time.Time) time.Time {
	day := features.Day(ts)
	offset := (int(day.Weekday()) + daysPerWeek - 1) % daysPerWeek
	return day.AddDate(0, 0, -offset)
}

// Weekly buckets txs into Monday-start weeks. Only weeks holding at least
// one transaction appear, in chronological order, and every tracked
// category is present in each row.
func Weekly(txs []model.Transaction, tracked []model.Category) []Week {
	index := make(map[time.Time]int)
	var weeks []Week
	for _, t := range txs {
		start := WeekStart(t.Timestamp)
		i, ok := index[start]
		if !ok {
			i = len(weeks)
			index[start] = i
			row := Week{Start: start, Totals: make(map[model.Category]float64, len(tracked))}
			for _, c := range tracked {
				row.Totals[c] = 0
			}
			weeks = append(weeks, row)
		}
		if _, want := weeks[i].Totals[t.Category]; want {
			weeks[i].Totals[t.Category] += float64(t.Amount)
		}
	}
	sort.Slice(weeks, func(a, b int) bool { return weeks[a].Start.Before(weeks[b].Start) })
	return weeks
}

// column extracts one category's values from weekly rows.
func column(weeks []Week, c model.Category) []float64 {
	out := make([]float64, len(weeks))
	for i, w := range weeks {
		out[i] = w.Totals[c]
	}
	return out
}

// average merges several users' weekly rows by calendar week, taking the
// mean over the users that have a row for that week.
func average(users [][]Week, tracked []model.Category) []Week {
	sums := make(map[time.Time]map[model.Category]float64)
	counts := make(map[time.Time]int)
	for _, weeks := range users {
		for _, w := range weeks {
			if sums[w.Start] == nil {
				sums[w.Start] = make(map[model.Category]float64, len(tracked))
			}
			for _, c := range tracked {
				sums[w.Start][c] += w.Totals[c]
			}
			counts[w.Start]++
		}
	}

	out := make([]Week, 0, len(sums))
	for start, totals := range sums {
		n := float64(counts[start])
		row := Week{Start: start, Totals: make(map[model.Category]float64, len(tracked))}
		for _, c := range tracked {
			row.Totals[c] = totals[c] / n
		}
		out = append(out, row)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Start.Before(out[b].Start) })
	return out
}
