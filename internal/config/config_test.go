package config_test

import (
	"errors"
	"runtime"
	"testing"

	"github.com/okian/finno/internal/config"
	"github.com/okian/finno/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU())
			convey.So(cfg.RetrainQueueSize, convey.ShouldEqual, 16)
			convey.So(cfg.DedupeSize, convey.ShouldEqual, 10000)
			convey.So(cfg.DemoUsers, convey.ShouldEqual, 20)
			convey.So(cfg.DemoTransactionsPerUser, convey.ShouldEqual, 50)
			convey.So(cfg.Seed, convey.ShouldEqual, int64(42))
			convey.So(cfg.GBDTRounds, convey.ShouldEqual, 100)
			convey.So(cfg.GBDTLearningRate, convey.ShouldEqual, 0.05)
			convey.So(cfg.GBDTMaxLeaves, convey.ShouldEqual, 31)
			convey.So(cfg.ClusterMaxK, convey.ShouldEqual, 3)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("Then tracked categories map to domain categories", func() {
			convey.So(cfg.Categories(), convey.ShouldResemble, []model.Category{
				model.CategoryIncome, model.CategoryFood, model.CategoryTransport, model.CategoryShopping,
			})
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given invalid settings", t, func() {
		cases := []struct {
			name   string
			mutate func(*config.Config)
			msg    string
		}{
			{"empty addr", func(c *config.Config) { c.Addr = "" }, "addr"},
			{"zero workers", func(c *config.Config) { c.WorkerCount = 0 }, "worker_count"},
			{"zero queue", func(c *config.Config) { c.RetrainQueueSize = 0 }, "retrain_queue_size"},
			{"negative dedupe", func(c *config.Config) { c.DedupeSize = -1 }, "dedupe_size"},
			{"learning rate above one", func(c *config.Config) { c.GBDTLearningRate = 1.5 }, "gbdt_learning_rate"},
			{"single leaf", func(c *config.Config) { c.GBDTMaxLeaves = 1 }, "gbdt_max_leaves"},
			{"zero feature fraction", func(c *config.Config) { c.GBDTFeatureFraction = 0 }, "gbdt_feature_fraction"},
			{"full validation split", func(c *config.Config) { c.GBDTValidationFraction = 1 }, "gbdt_validation_fraction"},
			{"unknown category", func(c *config.Config) { c.TrackedCategories = []string{"pets"} }, "pets"},
			{"no categories", func(c *config.Config) { c.TrackedCategories = nil }, "tracked_categories"},
			{"xml logs", func(c *config.Config) { c.LogFormat = "xml" }, "log_format"},
		}

		convey.Convey("Then each is rejected with ErrInvalidConfig", func() {
			for _, tc := range cases {
				cfg := config.New()
				tc.mutate(cfg)
				err := cfg.Validate()
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, tc.msg)
			}
		})
	})
}
