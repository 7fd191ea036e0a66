package features_test

import (
	"math"
	"testing"
	"time"

	"github.com/okian/finno/internal/domain/features"
	"github.com/okian/finno/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

var base = time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC)

func tx(amount int64, cat model.Category, day int) model.Transaction {
	return model.Transaction{
		Amount:    amount,
		Category:  cat,
		Intent:    model.IntentPurchase,
		Timestamp: base.AddDate(0, 0, day),
	}
}

func TestExtract(t *testing.T) {
	Convey("Given no transactions", t, func() {
		v := features.Extract(nil)

		Convey("Then every feature is zero", func() {
			So(v, ShouldResemble, features.Vector{})
		})
	})

	Convey("Given a user earning 15,000,000 and spending 9,000,000", t, func() {
		txs := []model.Transaction{
			tx(15_000_000, model.CategoryIncome, 0),
			tx(3_000_000, model.CategoryFood, 1),
			tx(2_000_000, model.CategoryTransport, 8),
			tx(2_000_000, model.CategoryShopping, 15),
			tx(2_000_000, model.CategoryBills, 22),
		}
		v := features.Extract(txs)

		Convey("Then totals and ratios follow the income split", func() {
			So(v[features.TotalIncome], ShouldEqual, 15e6)
			So(v[features.TotalExpenses], ShouldEqual, 9e6)
			So(v[features.SavingsRate], ShouldAlmostEqual, 0.4, 1e-12)
			So(v[features.DebtToIncomeRatio], ShouldAlmostEqual, 0.6, 1e-12)
		})

		Convey("Then diversity counts distinct categories, income included", func() {
			So(v[features.CategoryDiversity], ShouldEqual, 5.0)
		})

		Convey("Then frequency uses the inclusive day span", func() {
			So(v[features.TransactionFrequency], ShouldAlmostEqual, 5.0/23.0, 1e-12)
		})

		Convey("Then the average is over every transaction", func() {
			So(v[features.AvgTransactionAmount], ShouldEqual, 4.8e6)
		})

		Convey("Then volatility is the sample std-dev of daily expense totals", func() {
			// daily totals 3M, 2M, 2M, 2M: mean 2.25M, sample variance 0.25e12
			So(v[features.ExpenseVolatility], ShouldAlmostEqual, 500_000, 1e-6)
		})
	})

	Convey("Given expenses on a single day", t, func() {
		txs := []model.Transaction{
			tx(100, model.CategoryFood, 0),
			tx(900, model.CategoryShopping, 0),
			tx(5_000, model.CategoryIncome, 3),
		}
		v := features.Extract(txs)

		Convey("Then volatility is zero", func() {
			So(v[features.ExpenseVolatility], ShouldEqual, 0.0)
		})
	})

	Convey("Given expenses and no income", t, func() {
		txs := []model.Transaction{tx(700, model.CategoryFood, 0), tx(300, model.CategoryFood, 1)}
		v := features.Extract(txs)

		Convey("Then the ratio divides by one and savings clamp at zero", func() {
			So(v[features.DebtToIncomeRatio], ShouldEqual, 1000.0)
			So(v[features.SavingsRate], ShouldEqual, 0.0)
		})
	})

	Convey("Given arbitrary inputs", t, func() {
		inputs := [][]model.Transaction{
			nil,
			{tx(0, model.CategoryFood, 0)},
			{tx(1, model.CategoryIncome, 0), tx(0, model.CategoryIncome, 0)},
			{tx(5, model.CategoryOther, -40), tx(1<<40, model.CategoryIncome, 40)},
		}

		Convey("Then every feature is finite and ratios are non-negative", func() {
			for _, in := range inputs {
				v := features.Extract(in)
				for _, x := range v {
					So(math.IsNaN(x) || math.IsInf(x, 0), ShouldBeFalse)
				}
				So(v[features.DebtToIncomeRatio], ShouldBeGreaterThanOrEqualTo, 0)
				So(v[features.SavingsRate], ShouldBeGreaterThanOrEqualTo, 0)
			}
		})
	})
}

func TestVectorMap(t *testing.T) {
	Convey("Given a vector", t, func() {
		v := features.Vector{1, 2, 3, 4, 5, 6, 7, 8}

		Convey("Then Map keys every value by its feature name", func() {
			m := v.Map()
			So(len(m), ShouldEqual, features.Size)
			So(m["total_income"], ShouldEqual, 1.0)
			So(m["avg_transaction_amount"], ShouldEqual, 8.0)
		})
	})
}

func TestStandardizer(t *testing.T) {
	Convey("Given rows with one constant feature", t, func() {
		rows := []features.Vector{
			{1, 10, 5},
			{3, 20, 5},
			{5, 30, 5},
		}
		s := features.FitStandardizer(rows)

		Convey("Then fitted rows have zero mean and unit population variance", func() {
			out := s.TransformAll(rows)
			var mean, sq float64
			for _, r := range out {
				mean += r[0]
				sq += r[0] * r[0]
			}
			So(mean/3, ShouldAlmostEqual, 0, 1e-12)
			So(sq/3, ShouldAlmostEqual, 1, 1e-12)
		})

		Convey("Then the constant feature maps to zero", func() {
			So(s.Transform(rows[0])[2], ShouldEqual, 0.0)
			So(s.Scale[2], ShouldEqual, 1.0)
		})

		Convey("Then unseen vectors reuse the fitted statistics", func() {
			So(s.Transform(features.Vector{7})[0], ShouldAlmostEqual, 4/math.Sqrt(8.0/3.0), 1e-12)
		})
	})

	Convey("Given no rows", t, func() {
		s := features.FitStandardizer(nil)

		Convey("Then Transform is the identity", func() {
			v := features.Vector{1, 2, 3}
			So(s.Transform(v), ShouldResemble, v)
		})
	})
}
