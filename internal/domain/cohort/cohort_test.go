package cohort_test

import (
	"testing"

	"github.com/okian/finno/internal/domain/cohort"
	"github.com/okian/finno/internal/domain/features"
	. "github.com/smartystreets/goconvey/convey"
)

func vec(income, expenses float64) features.Vector {
	var v features.Vector
	v[features.TotalIncome] = income
	v[features.TotalExpenses] = expenses
	return v
}

func TestCluster(t *testing.T) {
	Convey("Given a single user", t, func() {
		a := cohort.Cluster([]features.Vector{vec(1, 1)})

		Convey("Then no assignment is produced", func() {
			So(a.Empty(), ShouldBeTrue)
			So(a.K, ShouldEqual, 0)
			_, ok := a.Label(0)
			So(ok, ShouldBeFalse)
		})
	})

	Convey("Given two users", t, func() {
		a := cohort.Cluster([]features.Vector{vec(1, 1), vec(9, 9)})

		Convey("Then k is capped at the population size", func() {
			So(a.K, ShouldEqual, 2)
			So(len(a.Labels), ShouldEqual, 2)
			So(a.Labels[0], ShouldNotEqual, a.Labels[1])
		})
	})

	Convey("Given three well separated groups", t, func() {
		var vs []features.Vector
		for i := 0; i < 4; i++ {
			d := float64(i) * 0.01
			vs = append(vs, vec(1+d, 1+d), vec(50+d, 10+d), vec(100+d, 90+d))
		}
		a := cohort.Cluster(vs)

		Convey("Then every user gets a label in range", func() {
			So(a.K, ShouldEqual, 3)
			So(len(a.Labels), ShouldEqual, len(vs))
			for _, l := range a.Labels {
				So(l, ShouldBeBetweenOrEqual, 0, 2)
			}
		})

		Convey("Then each group shares a label", func() {
			for i := 3; i < len(vs); i++ {
				So(a.Labels[i], ShouldEqual, a.Labels[i%3])
			}
			So(len(a.Members(a.Labels[0])), ShouldEqual, 4)
			So(a.Labels[0], ShouldNotEqual, a.Labels[1])
			So(a.Labels[1], ShouldNotEqual, a.Labels[2])
		})

		Convey("Then clustering is deterministic", func() {
			So(cohort.Cluster(vs).Labels, ShouldResemble, a.Labels)
		})
	})

	Convey("Given identical users", t, func() {
		vs := []features.Vector{vec(5, 5), vec(5, 5), vec(5, 5), vec(5, 5)}
		a := cohort.Cluster(vs, cohort.WithMaxK(2))

		Convey("Then labels stay in range and inertia is zero", func() {
			So(a.K, ShouldEqual, 2)
			for _, l := range a.Labels {
				So(l, ShouldBeBetweenOrEqual, 0, 1)
			}
			So(a.Inertia, ShouldEqual, 0.0)
		})
	})
}
