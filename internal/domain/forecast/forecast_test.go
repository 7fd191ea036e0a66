package forecast_test

import (
	"context"
	"testing"
	"time"

	"github.com/okian/finno/internal/domain/forecast"
	"github.com/okian/finno/internal/domain/model"
	"github.com/shopspring/decimal"
	. "github.com/smartystreets/goconvey/convey"
)

// monday is 2024-01-01, a Monday.
var monday = time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

func weeklyUser(weeks int, food func(w int) int64) []model.Transaction {
	var txs []model.Transaction
	for w := 0; w < weeks; w++ {
		start := monday.AddDate(0, 0, 7*w)
		txs = append(txs,
			model.Transaction{Amount: 3_750_000, Category: model.CategoryIncome, Timestamp: start},
			model.Transaction{Amount: food(w), Category: model.CategoryFood, Timestamp: start.AddDate(0, 0, 2)},
			model.Transaction{Amount: 150_000, Category: model.CategoryTransport, Timestamp: start.AddDate(0, 0, 4)},
			model.Transaction{Amount: 90_000, Category: model.CategoryBills, Timestamp: start.AddDate(0, 0, 6)},
		)
	}
	return txs
}

func TestWeekly(t *testing.T) {
	Convey("Given timestamps across a week boundary", t, func() {
		Convey("Then weeks start on Monday", func() {
			sunday := time.Date(2024, 1, 7, 23, 0, 0, 0, time.UTC)
			So(forecast.WeekStart(sunday), ShouldEqual, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
			So(forecast.WeekStart(sunday.Add(2*time.Hour)), ShouldEqual, time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC))
		})
	})

	Convey("Given transactions with a gap week", t, func() {
		txs := []model.Transaction{
			{Amount: 300, Category: model.CategoryFood, Timestamp: monday.AddDate(0, 0, 14)},
			{Amount: 100, Category: model.CategoryFood, Timestamp: monday},
			{Amount: 200, Category: model.CategoryFood, Timestamp: monday.AddDate(0, 0, 3)},
			{Amount: 999, Category: model.CategoryBills, Timestamp: monday},
		}
		weeks := forecast.Weekly(txs, forecast.DefaultTracked)

		Convey("Then only weeks with transactions form rows in order", func() {
			So(len(weeks), ShouldEqual, 2)
			So(weeks[0].Start.Before(weeks[1].Start), ShouldBeTrue)
			So(weeks[0].Totals[model.CategoryFood], ShouldEqual, 300.0)
			So(weeks[1].Totals[model.CategoryFood], ShouldEqual, 300.0)
		})

		Convey("Then tracked categories are zero-filled and others dropped", func() {
			So(len(weeks[0].Totals), ShouldEqual, len(forecast.DefaultTracked))
			So(weeks[0].Totals[model.CategoryShopping], ShouldEqual, 0.0)
			_, ok := weeks[0].Totals[model.CategoryBills]
			So(ok, ShouldBeFalse)
		})
	})
}

func TestForecast(t *testing.T) {
	Convey("Given a population with ten weeks of history", t, func() {
		var pop [][]model.Transaction
		for u := 0; u < 6; u++ {
			u := u
			pop = append(pop, weeklyUser(10, func(w int) int64 {
				return 700_000 + int64(w%3)*40_000 + int64(u)*10_000
			}))
		}
		pop = append(pop, weeklyUser(2, func(int) int64 { return 1 }))

		m, err := forecast.Train(context.Background(), pop)
		So(err, ShouldBeNil)

		Convey("Then users with short history are skipped", func() {
			So(m.Users(), ShouldEqual, 6)
			So(m.Weeks(), ShouldEqual, 10)
		})

		Convey("Then tracked categories with data are trained", func() {
			So(m.Trained(), ShouldContain, model.CategoryFood)
			So(m.Trained(), ShouldContain, model.CategoryIncome)
			So(len(m.Trained())+len(m.Untrained()), ShouldEqual, len(m.Tracked()))
		})

		Convey("When forecasting a user with enough history", func() {
			out := m.Forecast(pop[0], 0)

			Convey("Then every trained category has a non-negative amount", func() {
				So(len(out), ShouldEqual, len(m.Trained()))
				for _, v := range out {
					So(v, ShouldBeGreaterThanOrEqualTo, 0.0)
				}
				So(out[model.CategoryIncome], ShouldAlmostEqual, 3_750_000.0, 1.0)
			})
		})

		Convey("When forecasting a user with collapsing spending", func() {
			txs := weeklyUser(5, func(w int) int64 { return int64(2_000_000 - 450_000*w) })
			out := m.Forecast(txs, 4)

			Convey("Then projections never go negative", func() {
				for _, v := range out {
					So(v, ShouldBeGreaterThanOrEqualTo, 0.0)
				}
			})
		})

		Convey("When forecasting a user with three weeks", func() {
			out := m.Forecast(weeklyUser(3, func(int) int64 { return 500_000 }), 4)

			Convey("Then the result is empty", func() {
				So(out, ShouldBeEmpty)
			})
		})
	})

	Convey("Given a nil model", t, func() {
		var m *forecast.Model

		Convey("Then forecasts are empty", func() {
			So(m.Forecast(weeklyUser(8, func(int) int64 { return 1 }), 4), ShouldBeEmpty)
		})
	})

	Convey("Given a population without enough history", t, func() {
		m, err := forecast.Train(context.Background(), [][]model.Transaction{weeklyUser(2, func(int) int64 { return 1 })})

		Convey("Then every category is untrained", func() {
			So(err, ShouldBeNil)
			So(m.Trained(), ShouldBeEmpty)
			So(m.Untrained(), ShouldResemble, forecast.DefaultTracked)
		})
	})

	Convey("Given custom tracked categories", t, func() {
		m, err := forecast.Train(context.Background(),
			[][]model.Transaction{weeklyUser(6, func(int) int64 { return 1 })},
			forecast.WithTrackedCategories([]model.Category{model.CategoryBills, model.CategoryBills}),
		)

		Convey("Then only those are modelled", func() {
			So(err, ShouldBeNil)
			So(m.Tracked(), ShouldResemble, []model.Category{model.CategoryBills})
		})
	})
}

func TestSimulate(t *testing.T) {
	Convey("Given income of 15,000,000 and 800,000 spent on food", t, func() {
		txs := []model.Transaction{
			{Amount: 15_000_000, Category: model.CategoryIncome, Timestamp: monday},
			{Amount: 500_000, Category: model.CategoryFood, Timestamp: monday},
			{Amount: 300_000, Category: model.CategoryFood, Timestamp: monday},
			{Amount: 1_200_000, Category: model.CategoryBills, Timestamp: monday},
		}

		Convey("When food is cut by 15%", func() {
			s := forecast.Simulate(txs, forecast.Intervention{Category: model.CategoryFood, ReductionPercent: 15})

			Convey("Then savings rise by exactly 120,000", func() {
				So(s.SavingsIncrease.Equal(decimal.NewFromInt(120_000)), ShouldBeTrue)
				So(s.ReductionAmount.Equal(decimal.NewFromInt(120_000)), ShouldBeTrue)
				So(s.CurrentSavings.Equal(decimal.NewFromInt(13_000_000)), ShouldBeTrue)
				So(s.NewExpenses.Equal(decimal.NewFromInt(1_880_000)), ShouldBeTrue)
				So(s.SavingsRateIncrease, ShouldAlmostEqual, 0.8, 1e-9)
				So(s.Confidence, ShouldEqual, 0.85)
				So(s.Summary, ShouldContainSubstring, "120,000 VND")
			})
		})

		Convey("When the reduction is zero", func() {
			s := forecast.Simulate(txs, forecast.Intervention{Category: model.CategoryFood})

			Convey("Then nothing changes", func() {
				So(s.SavingsIncrease.IsZero(), ShouldBeTrue)
				So(s.NewSavings.Equal(s.CurrentSavings), ShouldBeTrue)
			})
		})

		Convey("When the category was never spent on", func() {
			s := forecast.Simulate(txs, forecast.Intervention{Category: model.CategoryHealth, ReductionPercent: 50})

			Convey("Then the effect is zero", func() {
				So(s.SavingsIncrease.IsZero(), ShouldBeTrue)
			})
		})

		Convey("When the percent is out of range", func() {
			s := forecast.Simulate(txs, forecast.Intervention{Category: model.CategoryFood, ReductionPercent: 250})

			Convey("Then it is clamped to 100", func() {
				So(s.Intervention.ReductionPercent, ShouldEqual, 100.0)
				So(s.SavingsIncrease.Equal(decimal.NewFromInt(800_000)), ShouldBeTrue)
			})
		})
	})

	Convey("Given no income", t, func() {
		txs := []model.Transaction{{Amount: 800_000, Category: model.CategoryFood, Timestamp: monday}}

		Convey("Then the savings rate increase is zero", func() {
			s := forecast.Simulate(txs, forecast.Intervention{Category: model.CategoryFood, ReductionPercent: 15})
			So(s.SavingsRateIncrease, ShouldEqual, 0.0)
			So(s.SavingsIncrease.Equal(decimal.NewFromInt(120_000)), ShouldBeTrue)
		})
	})
}
