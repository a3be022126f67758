package logger_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/futura/kpigate/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLoggerInit(t *testing.T) {
	Convey("Given an initialized global logger", t, func() {
		err := logger.Init()
		So(err, ShouldBeNil)

		Convey("Then Get returns a usable logger", func() {
			l := logger.Get()
			So(l, ShouldNotBeNil)
			// Must not panic.
			l.Info(context.Background(), "test message", logger.String("k", "v"))
		})

		Convey("Then Named returns a scoped logger", func() {
			l := logger.Named("orchestrator")
			So(l, ShouldNotBeNil)
			l.Debug(context.Background(), "scoped message", logger.Int("n", 1))
		})

		Convey("Then Sync is a no-op", func() {
			So(logger.Sync(), ShouldBeNil)
		})
	})
}

func TestSetLevelString(t *testing.T) {
	Convey("Given the global level var", t, func() {
		So(logger.Init(), ShouldBeNil)

		Convey("When setting known levels", func() {
			for _, lvl := range []string{"debug", "info", "warn", "warning", "error", "", " INFO "} {
				So(logger.SetLevelString(lvl), ShouldBeNil)
			}
		})

		Convey("When setting an unknown level", func() {
			So(logger.SetLevelString("chatty"), ShouldNotBeNil)
		})

		Convey("When setting a level directly", func() {
			logger.SetLevel(slog.LevelWarn)
			// Restore default for other tests.
			So(logger.SetLevelString("info"), ShouldBeNil)
		})
	})
}

func TestFieldConstructors(t *testing.T) {
	Convey("Given the field constructors", t, func() {
		So(logger.String("a", "b").Key, ShouldEqual, "a")
		So(logger.Int("n", 3).Value, ShouldEqual, 3)
		So(logger.Int64("n64", 4).Value, ShouldEqual, int64(4))
		So(logger.Float64("f", 1.5).Value, ShouldEqual, 1.5)
		So(logger.Bool("ok", true).Value, ShouldEqual, true)
		So(logger.Any("x", nil).Key, ShouldEqual, "x")
		So(logger.Error(nil).Key, ShouldEqual, "error")
	})
}
