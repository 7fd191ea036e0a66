package model_test

import (
	"testing"

	"github.com/okian/finno/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestTotals(t *testing.T) {
	Convey("Given a mix of income and expenses", t, func() {
		txs := []model.Transaction{
			{Amount: 15_000_000, Category: model.CategoryIncome},
			{Amount: 800_000, Category: model.CategoryFood},
			{Amount: 200_000, Category: model.CategoryFood},
			{Amount: 500_000, Category: model.CategoryTransport},
		}

		Convey("Then totals split by income flag", func() {
			income, expenses := model.Totals(txs)
			So(income, ShouldEqual, int64(15_000_000))
			So(expenses, ShouldEqual, int64(1_500_000))
		})

		Convey("Then spend is grouped by category", func() {
			spend := model.SpendByCategory(txs)
			So(spend[model.CategoryFood], ShouldEqual, int64(1_000_000))
			So(spend[model.CategoryIncome], ShouldEqual, int64(15_000_000))
		})

		Convey("Then the top expense category ignores income", func() {
			cat, total, ok := model.TopExpenseCategory(txs)
			So(ok, ShouldBeTrue)
			So(cat, ShouldEqual, model.CategoryFood)
			So(total, ShouldEqual, int64(1_000_000))
		})
	})

	Convey("Given tied expense categories", t, func() {
		txs := []model.Transaction{
			{Amount: 300, Category: model.CategoryShopping},
			{Amount: 300, Category: model.CategoryTransport},
			{Amount: 300, Category: model.Category("pets")},
		}

		Convey("Then the earlier listed category wins", func() {
			cat, _, _ := model.TopExpenseCategory(txs)
			So(cat, ShouldEqual, model.CategoryTransport)
		})
	})

	Convey("Given only income", t, func() {
		txs := []model.Transaction{{Amount: 1, Category: model.CategoryIncome}}

		Convey("Then there is no top expense category", func() {
			_, _, ok := model.TopExpenseCategory(txs)
			So(ok, ShouldBeFalse)
		})
	})
}

func TestCategory(t *testing.T) {
	Convey("Given category values", t, func() {
		Convey("Then known categories are valid", func() {
			for _, c := range model.Categories {
				So(c.Valid(), ShouldBeTrue)
			}
			So(model.Category("pets").Valid(), ShouldBeFalse)
		})

		Convey("Then only income counts as income", func() {
			So(model.Transaction{Category: model.CategoryIncome}.IsIncome(), ShouldBeTrue)
			So(model.Transaction{Category: model.CategoryTransfer}.IsIncome(), ShouldBeFalse)
		})
	})
}
