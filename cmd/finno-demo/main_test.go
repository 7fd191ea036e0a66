package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/okian/finno/internal/domain/model"
	"github.com/okian/finno/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.InitWithWriter(&bytes.Buffer{}, logger.FormatText); err != nil {
		panic(err)
	}
}

func TestRun(t *testing.T) {
	convey.Convey("Given a small synthetic population", t, func() {
		opts := demoOptions{
			users:     6,
			perUser:   30,
			seed:      3,
			show:      10,
			category:  string(model.CategoryFood),
			reduction: 20,
			goals:     "savings, investment",
		}

		convey.Convey("When the demo runs", func() {
			var out bytes.Buffer
			err := run(context.Background(), &out, opts)

			convey.Convey("Then every section is printed", func() {
				convey.So(err, convey.ShouldBeNil)
				text := out.String()
				convey.So(text, convey.ShouldContainSubstring, "=== Financial health ===")
				convey.So(text, convey.ShouldContainSubstring, "SAVINGS %")
				convey.So(text, convey.ShouldContainSubstring, "Spending by category")
				convey.So(text, convey.ShouldContainSubstring, "Cut food by 20%")
				convey.So(text, convey.ShouldContainSubstring, "Recommendations")
			})
		})

		convey.Convey("When no users are requested", func() {
			opts.users = 0
			err := run(context.Background(), &bytes.Buffer{}, opts)

			convey.Convey("Then it fails before training", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})
	})
}

func TestParseGoals(t *testing.T) {
	convey.Convey("Goals are split on commas and trimmed", t, func() {
		convey.So(parseGoals(" savings, ,debt_management "), convey.ShouldResemble,
			[]model.Goal{model.GoalSavings, model.GoalDebtManagement})
		convey.So(parseGoals(""), convey.ShouldBeNil)
	})
}
