package metrics_test

import (
	"testing"

	"github.com/futura/kpigate/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestGlobalManager(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("Then the custom registry is available", func() {
			So(metrics.GetRegistry(), ShouldNotBeNil)
		})

		Convey("Then recording functions do not panic", func() {
			So(func() {
				metrics.RecordCacheLookup("hit")
				metrics.RecordCacheLookup("miss")
				metrics.RecordCacheWrite()
				metrics.RecordDegradedServe()
				metrics.RecordUpstreamCall()
				metrics.RecordUpstreamFailure("timeout")
				metrics.RecordUpstreamLatency(12.5)
				metrics.RecordNormalizationNudge()
				metrics.RecordInvalidPayload()
				metrics.UpdateStoreEntries(3)
				metrics.RecordStoreError("get")
				metrics.RecordCoalescedRefresh()
				metrics.RecordHTTPRequest("score", "POST", "200")
				metrics.RecordHTTPRequestDuration("score", "POST", "200", 4.2)
				metrics.RecordErrorByEndpoint("score", "POST", "client_error")
				metrics.RecordErrorByType("client_error", "medium")
				metrics.RecordErrorLatency("http", "client_error", 1.1)
				metrics.UpdateSystemMemoryUsage(1 << 20)
				metrics.UpdateSystemGoroutineCount(12)
				metrics.RecordSystemGCPauseTime(0.3)
			}, ShouldNotPanic)
		})

		Convey("Then recorded metrics are gatherable", func() {
			families, err := metrics.GetRegistry().Gather()
			So(err, ShouldBeNil)
			So(len(families), ShouldBeGreaterThan, 0)
		})
	})
}

func TestNewManager(t *testing.T) {
	Convey("Given a manager on a private registry", t, func() {
		reg := prometheus.NewRegistry()
		m := metrics.NewManager(
			metrics.WithPrometheusRegistry(reg),
			metrics.WithNamespace("test"),
			metrics.WithSubsystem("unit"),
			metrics.WithHistogramBuckets([]float64{1, 10, 100}),
		)

		Convey("Then it registers its metrics on that registry", func() {
			So(m, ShouldNotBeNil)
			families, err := reg.Gather()
			So(err, ShouldBeNil)
			// Counters with no observations are not gathered; gauges are.
			So(families, ShouldNotBeNil)
		})
	})
}
