package config_test

import (
	"context"
	"errors"
	"testing"

	"github.com/futura/kpigate/internal/config"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLoadDefaults(t *testing.T) {
	Convey("Given no file or environment overrides", t, func() {
		t.Setenv("KPIGATE_CONFIG", "")

		cfg, err := config.Load(context.Background())

		Convey("Then defaults are returned", func() {
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":8090")
			So(cfg.LogLevel, ShouldEqual, "info")
			So(cfg.DefaultWindowDays, ShouldEqual, 180)
			So(cfg.UpstreamTimeoutMS, ShouldEqual, 20_000)
			So(cfg.CoalesceRequests, ShouldBeFalse)
		})
	})
}

func TestLoadEnvOverrides(t *testing.T) {
	Convey("Given environment overrides", t, func() {
		t.Setenv("KPIGATE_CONFIG", "")
		t.Setenv("KPIGATE_ADDR", ":7070")
		t.Setenv("KPIGATE_DEFAULT_WINDOW_DAYS", "30")
		t.Setenv("KPIGATE_UPSTREAM_URL", "http://oracle.internal/score")
		t.Setenv("KPIGATE_COALESCE_REQUESTS", "true")

		cfg, err := config.Load(context.Background())

		Convey("Then env values take precedence over defaults", func() {
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":7070")
			So(cfg.DefaultWindowDays, ShouldEqual, 30)
			So(cfg.UpstreamURL, ShouldEqual, "http://oracle.internal/score")
			So(cfg.CoalesceRequests, ShouldBeTrue)
		})
	})
}

func TestLoadValidation(t *testing.T) {
	Convey("Given an invalid configuration", t, func() {
		t.Setenv("KPIGATE_CONFIG", "")

		Convey("When the consistency window default is negative", func() {
			t.Setenv("KPIGATE_DEFAULT_WINDOW_DAYS", "-1")

			_, err := config.Load(context.Background())

			Convey("Then an invalid-config error is returned", func() {
				So(err, ShouldNotBeNil)
				So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
			})
		})

		Convey("When the oracle latency range is inverted", func() {
			t.Setenv("KPIGATE_ORACLE_LATENCY_MIN_MS", "200")
			t.Setenv("KPIGATE_ORACLE_LATENCY_MAX_MS", "100")

			_, err := config.Load(context.Background())

			Convey("Then an invalid-config error is returned", func() {
				So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
			})
		})
	})
}

func TestLoadMissingFile(t *testing.T) {
	Convey("Given a config file path that does not exist", t, func() {
		t.Setenv("KPIGATE_CONFIG", "/nonexistent/kpigate.yaml")

		_, err := config.Load(context.Background())

		Convey("Then a load error is returned", func() {
			So(err, ShouldNotBeNil)
			So(errors.Is(err, config.ErrLoadConfig), ShouldBeTrue)
		})
	})
}
