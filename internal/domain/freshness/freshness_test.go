package freshness_test

import (
	"testing"
	"time"

	"github.com/futura/kpigate/internal/domain/freshness"
	"github.com/futura/kpigate/internal/domain/kpi"
	. "github.com/smartystreets/goconvey/convey"
)

func validPayload() kpi.Payload {
	return kpi.Payload{
		AwarenessScore:       kpi.Score(61.23),
		RelevanceScore:       kpi.Score(54.17),
		DifferentiationScore: kpi.Score(47.81),
		EsteemScore:          kpi.Score(58.92),
	}
}

func invalidPayload() kpi.Payload {
	return kpi.Payload{
		AwarenessScore: kpi.Score(61.23),
		RelevanceScore: kpi.Score(54.17),
	}
}

func TestEvaluate(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	Convey("Given an evaluator with a fixed clock", t, func() {
		e := freshness.NewEvaluator(
			freshness.WithClock(func() time.Time { return now }),
		)

		Convey("When no entry exists", func() {
			state := e.Evaluate(freshness.Snapshot{Exists: false}, freshness.ModePinned)
			So(state, ShouldEqual, freshness.StateMiss)
		})

		Convey("When the entry is within its window and valid", func() {
			snap := freshness.Snapshot{
				Exists:          true,
				Payload:         validPayload(),
				LastRefreshedAt: now.Add(-24 * time.Hour),
				WindowDays:      180,
			}
			So(e.Evaluate(snap, freshness.ModePinned), ShouldEqual, freshness.StateHit)
		})

		Convey("When the entry is aged exactly to the window boundary", func() {
			snap := freshness.Snapshot{
				Exists:          true,
				Payload:         validPayload(),
				LastRefreshedAt: now.Add(-180 * 24 * time.Hour),
				WindowDays:      180,
			}
			So(e.Evaluate(snap, freshness.ModePinned), ShouldEqual, freshness.StateHit)
		})

		Convey("When the entry is infinitesimally past the boundary", func() {
			snap := freshness.Snapshot{
				Exists:          true,
				Payload:         validPayload(),
				LastRefreshedAt: now.Add(-180*24*time.Hour - time.Nanosecond),
				WindowDays:      180,
			}
			So(e.Evaluate(snap, freshness.ModePinned), ShouldEqual, freshness.StateStale)
		})

		Convey("When the entry is fresh but invalid", func() {
			snap := freshness.Snapshot{
				Exists:          true,
				Payload:         invalidPayload(),
				LastRefreshedAt: now.Add(-time.Hour),
				WindowDays:      180,
			}
			So(e.Evaluate(snap, freshness.ModePinned), ShouldEqual, freshness.StateInvalid)
		})

		Convey("When the entry is both stale and invalid, staleness wins", func() {
			snap := freshness.Snapshot{
				Exists:          true,
				Payload:         invalidPayload(),
				LastRefreshedAt: now.Add(-365 * 24 * time.Hour),
				WindowDays:      180,
			}
			So(e.Evaluate(snap, freshness.ModePinned), ShouldEqual, freshness.StateStale)
		})

		Convey("When the mode is live, a fresh valid entry still forces refresh", func() {
			snap := freshness.Snapshot{
				Exists:          true,
				Payload:         validPayload(),
				LastRefreshedAt: now.Add(-time.Minute),
				WindowDays:      180,
			}
			So(e.Evaluate(snap, freshness.ModeLive), ShouldEqual, freshness.StateStale)
		})

		Convey("When the mode is live with no entry, it is still a miss", func() {
			So(e.Evaluate(freshness.Snapshot{Exists: false}, freshness.ModeLive), ShouldEqual, freshness.StateMiss)
		})
	})

	Convey("Given a custom validity predicate", t, func() {
		e := freshness.NewEvaluator(
			freshness.WithClock(func() time.Time { return now }),
			freshness.WithValidity(func(*kpi.Payload) bool { return false }),
		)

		snap := freshness.Snapshot{
			Exists:          true,
			Payload:         validPayload(),
			LastRefreshedAt: now.Add(-time.Hour),
			WindowDays:      180,
		}

		Convey("Then the predicate overrides the benchmark rule", func() {
			So(e.Evaluate(snap, freshness.ModePinned), ShouldEqual, freshness.StateInvalid)
		})
	})
}

func TestStateString(t *testing.T) {
	Convey("Given every state", t, func() {
		So(freshness.StateMiss.String(), ShouldEqual, "miss")
		So(freshness.StateHit.String(), ShouldEqual, "hit")
		So(freshness.StateStale.String(), ShouldEqual, "stale")
		So(freshness.StateInvalid.String(), ShouldEqual, "invalid")
		So(freshness.StateDegraded.String(), ShouldEqual, "degraded")
		So(freshness.State(99).String(), ShouldEqual, "unknown")
	})
}

func TestParseMode(t *testing.T) {
	Convey("Given mode strings", t, func() {
		m, ok := freshness.ParseMode("")
		So(ok, ShouldBeTrue)
		So(m, ShouldEqual, freshness.ModePinned)

		m, ok = freshness.ParseMode("pinned")
		So(ok, ShouldBeTrue)
		So(m, ShouldEqual, freshness.ModePinned)

		m, ok = freshness.ParseMode("live")
		So(ok, ShouldBeTrue)
		So(m, ShouldEqual, freshness.ModeLive)

		_, ok = freshness.ParseMode("experimental")
		So(ok, ShouldBeFalse)
	})
}

func TestNeedsRefresh(t *testing.T) {
	Convey("Given each state", t, func() {
		So(freshness.NeedsRefresh(freshness.StateMiss), ShouldBeTrue)
		So(freshness.NeedsRefresh(freshness.StateStale), ShouldBeTrue)
		So(freshness.NeedsRefresh(freshness.StateInvalid), ShouldBeTrue)
		So(freshness.NeedsRefresh(freshness.StateHit), ShouldBeFalse)
		So(freshness.NeedsRefresh(freshness.StateDegraded), ShouldBeFalse)
	})
}
