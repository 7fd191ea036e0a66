package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a private registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{1, 5, 10}),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then its metrics live on that registry", func() {
				So(manager, ShouldNotBeNil)
				manager.fallbackExplanations.Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				names := map[string]bool{}
				for _, f := range families {
					names[f.GetName()] = true
				}
				So(names["test_unit_fallback_explanations_total"], ShouldBeTrue)
			})
		})

		Convey("When the same registry is reused", func() {
			registry := prometheus.NewRegistry()
			NewManager(WithPrometheusRegistry(registry))

			Convey("Then registering twice panics", func() {
				So(func() { NewManager(WithPrometheusRegistry(registry)) }, ShouldPanic)
			})
		})
	})
}

func TestRecording(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When counting fallbacks and empty forecasts", func() {
			before := testutil.ToFloat64(globalManager.fallbackExplanations)
			emptyBefore := testutil.ToFloat64(globalManager.forecastEmpty)
			dupBefore := testutil.ToFloat64(globalManager.duplicateWrites)
			RecordFallbackExplanation()
			RecordForecastEmpty()
			RecordDuplicateWrite()

			Convey("Then the counters move by one", func() {
				So(testutil.ToFloat64(globalManager.fallbackExplanations), ShouldEqual, before+1)
				So(testutil.ToFloat64(globalManager.forecastEmpty), ShouldEqual, emptyBefore+1)
				So(testutil.ToFloat64(globalManager.duplicateWrites), ShouldEqual, dupBefore+1)
			})
		})

		Convey("When setting gauges", func() {
			UpdateTrainingPopulation(20)
			UpdateLedgerSize(3, 150)
			UpdateRetrainQueueDepth(2)
			UpdateSnapshot(7, time.Unix(1_700_000_000, 0))

			Convey("Then they hold the latest value", func() {
				So(testutil.ToFloat64(globalManager.trainingPopulation), ShouldEqual, 20.0)
				So(testutil.ToFloat64(globalManager.ledgerTransactions), ShouldEqual, 150.0)
				So(testutil.ToFloat64(globalManager.retrainQueueDepth), ShouldEqual, 2.0)
				So(testutil.ToFloat64(globalManager.snapshotVersion), ShouldEqual, 7.0)
				So(testutil.ToFloat64(globalManager.snapshotLastUnix), ShouldEqual, 1_700_000_000.0)
			})
		})

		Convey("When recording labelled metrics", func() {
			RecordTrainingRun("ok")
			RecordErrorByComponent("api", "bad_request")
			RecordHTTPRequest("/api/dashboard", "GET", "200")

			Convey("Then the labelled children exist", func() {
				So(testutil.ToFloat64(globalManager.trainingRuns.WithLabelValues("ok")), ShouldBeGreaterThanOrEqualTo, 1.0)
				So(testutil.ToFloat64(globalManager.errorsByComponent.WithLabelValues("api", "bad_request")), ShouldBeGreaterThanOrEqualTo, 1.0)
				So(testutil.ToFloat64(globalManager.httpRequests.WithLabelValues("/api/dashboard", "GET", "200")), ShouldBeGreaterThanOrEqualTo, 1.0)
			})
		})

		Convey("When recording observations", func() {
			Convey("Then nothing panics", func() {
				So(func() {
					RecordTrainingDuration("scoring", 120*time.Millisecond)
					RecordScoringLatency(0.4)
					RecordRecommendations(3)
					RecordHTTPRequestDuration("/api/dashboard", "GET", "200", 12)
					RecordRetrainEnqueued()
					RecordRetrainDropped()
					RecordRetrainCoalesced(2)
					RecordRetrainCoalesced(0)
					UpdateRetrainQueueCapacity(16)
					UpdateUntrainedCategories(1)
				}, ShouldNotPanic)
			})
		})

		Convey("Then the registry is the custom one", func() {
			So(GetRegistry(), ShouldEqual, customRegistry)
		})
	})
}
