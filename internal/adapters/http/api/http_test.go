package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/futura/kpigate/internal/adapters/http/api"
	service "github.com/futura/kpigate/internal/app"
	"github.com/futura/kpigate/internal/domain/freshness"
	"github.com/futura/kpigate/internal/domain/kpi"
	. "github.com/smartystreets/goconvey/convey"
)

// stubScorer returns a scripted result and remembers the request it saw.
type stubScorer struct {
	result service.Result
	err    error
	got    service.Request
	calls  int
}

func (s *stubScorer) Score(_ context.Context, req service.Request) (service.Result, error) {
	s.calls++
	s.got = req
	return s.result, s.err
}

type stubStats struct{}

func (stubStats) GetStats() map[string]interface{} {
	return map[string]interface{}{"started": true, "storeEntries": 3}
}

func scoredResult() service.Result {
	return service.Result{
		Payload: kpi.Payload{
			Category:             "software",
			MarketPosition:       "leader",
			PriceTier:            "premium",
			TargetAudience:       "businesses",
			AwarenessScore:       kpi.Score(61.24),
			RelevanceScore:       kpi.Score(54.17),
			DifferentiationScore: kpi.Score(47.83),
			EsteemScore:          kpi.Score(58.91),
			DemandScore:          kpi.Score(72.44),
			MomentumScore:        kpi.Score(33.28),
			OverallScore:         kpi.Score(54.81),
		},
		Status:          freshness.StateMiss,
		StabilityKey:    "ab54d286f1e3ab54d286f1e3ab54d286f1e3ab54d286f1e3ab54d286f1e3abcd",
		LastRefreshedAt: time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
	}
}

func newTestMux(scorer api.Scorer, opts ...api.ServerOption) *http.ServeMux {
	mux := http.NewServeMux()
	server := api.NewServer(scorer, stubStats{}, opts...)
	server.Register(context.Background(), mux)
	return mux
}

func postScore(mux *http.ServeMux, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/v1/score", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestHandleScore(t *testing.T) {
	Convey("Given a score endpoint over a healthy scorer", t, func() {
		scorer := &stubScorer{result: scoredResult()}
		mux := newTestMux(scorer)

		Convey("When a full request is posted", func() {
			rec := postScore(mux, `{
				"brand_url": "https://www.example.com",
				"brand_name": "Example",
				"market": "us",
				"sector": "software",
				"seed": 7,
				"stability_mode": "pinned",
				"consistency_window_days": 90,
				"overrides": {"demand_score": 80.5}
			}`)

			Convey("Then the response carries the KPI fields and replay metadata", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				var got map[string]any
				So(json.Unmarshal(rec.Body.Bytes(), &got), ShouldBeNil)
				So(got["cache_status"], ShouldEqual, "miss")
				So(got["stability_key"], ShouldEqual, scorer.result.StabilityKey)
				So(got["awareness_score"], ShouldEqual, 61.24)
				So(got["overall_score"], ShouldEqual, 54.81)
				So(got["category"], ShouldEqual, "software")
				So(got["last_refreshed_at"], ShouldEqual, "2026-03-14T09:26:53Z")
			})

			Convey("Then caching headers mirror the result", func() {
				So(rec.Header().Get("ETag"), ShouldEqual, `"`+scorer.result.StabilityKey+`"`)
				So(rec.Header().Get("Last-Modified"), ShouldEqual, "Sat, 14 Mar 2026 09:26:53 GMT")
			})

			Convey("Then the wire request is mapped onto the scorer", func() {
				So(scorer.got.BrandURL, ShouldEqual, "https://www.example.com")
				So(scorer.got.Market, ShouldEqual, "us")
				So(*scorer.got.Seed, ShouldEqual, 7)
				So(scorer.got.StabilityMode, ShouldEqual, freshness.ModePinned)
				So(scorer.got.ConsistencyWindowDays, ShouldEqual, 90)
				So(scorer.got.Overrides["demand_score"], ShouldEqual, 80.5)
			})
		})

		Convey("When stability_mode is omitted", func() {
			rec := postScore(mux, `{"brand_url": "example.com"}`)

			Convey("Then it defaults to pinned", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(scorer.got.StabilityMode, ShouldEqual, freshness.ModePinned)
			})
		})

		Convey("When the method is not POST", func() {
			req := httptest.NewRequest(http.MethodGet, "/v1/score", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			So(rec.Code, ShouldEqual, http.StatusNotFound)
			So(scorer.calls, ShouldEqual, 0)
		})
	})
}

func TestHandleScoreBadRequests(t *testing.T) {
	Convey("Given a score endpoint", t, func() {
		scorer := &stubScorer{result: scoredResult()}
		mux := newTestMux(scorer)

		cases := []struct {
			name string
			body string
		}{
			{"malformed JSON", `{"brand_url": `},
			{"missing brand_url", `{"brand_name": "Example"}`},
			{"unknown stability_mode", `{"brand_url": "example.com", "stability_mode": "eventually"}`},
			{"negative window", `{"brand_url": "example.com", "consistency_window_days": -5}`},
		}
		for _, tc := range cases {
			Convey("When the body has "+tc.name, func() {
				rec := postScore(mux, tc.body)

				Convey("Then a 400 bad_request is returned without scoring", func() {
					So(rec.Code, ShouldEqual, http.StatusBadRequest)
					var got map[string]any
					So(json.Unmarshal(rec.Body.Bytes(), &got), ShouldBeNil)
					So(got["code"], ShouldEqual, "bad_request")
					So(scorer.calls, ShouldEqual, 0)
				})
			})
		}

		Convey("When the body exceeds the configured cap", func() {
			small := newTestMux(scorer, api.WithMaxBodyBytes(16))
			rec := postScore(small, `{"brand_url": "a-domain-well-past-sixteen-bytes.example.com"}`)

			So(rec.Code, ShouldEqual, http.StatusBadRequest)
			So(scorer.calls, ShouldEqual, 0)
		})
	})
}

func TestHandleScoreErrorMapping(t *testing.T) {
	Convey("Given a scorer that fails", t, func() {
		cases := []struct {
			name       string
			err        error
			wantStatus int
			wantCode   string
		}{
			{"rejects the input", service.ErrBadInput, http.StatusBadRequest, "bad_request"},
			{"cannot reach the upstream", service.ErrUpstream, http.StatusServiceUnavailable, "upstream_unavailable"},
			{"returns an invalid payload", service.ErrPayloadInvalid, http.StatusServiceUnavailable, "invalid_payload"},
		}
		for _, tc := range cases {
			Convey("When the scorer "+tc.name, func() {
				mux := newTestMux(&stubScorer{err: tc.err})
				rec := postScore(mux, `{"brand_url": "example.com"}`)

				Convey("Then the error maps to the wire contract", func() {
					So(rec.Code, ShouldEqual, tc.wantStatus)
					var got map[string]any
					So(json.Unmarshal(rec.Body.Bytes(), &got), ShouldBeNil)
					So(got["code"], ShouldEqual, tc.wantCode)
					if tc.wantStatus == http.StatusServiceUnavailable {
						So(got["retryable"], ShouldEqual, true)
					}
				})
			})
		}
	})
}

func TestHandleHealthAndStats(t *testing.T) {
	Convey("Given the registered mux", t, func() {
		mux := newTestMux(&stubScorer{result: scoredResult()})

		Convey("When health is probed", func() {
			req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			So(rec.Code, ShouldEqual, http.StatusOK)
			var got map[string]string
			So(json.Unmarshal(rec.Body.Bytes(), &got), ShouldBeNil)
			So(got["status"], ShouldEqual, "ok")
		})

		Convey("When stats are requested", func() {
			req := httptest.NewRequest(http.MethodGet, "/stats", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			So(rec.Code, ShouldEqual, http.StatusOK)
			var got map[string]any
			So(json.Unmarshal(rec.Body.Bytes(), &got), ShouldBeNil)
			So(got["started"], ShouldEqual, true)
		})

		Convey("When metrics are scraped", func() {
			req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			So(rec.Code, ShouldEqual, http.StatusOK)
		})
	})
}

func TestRequestIDTagging(t *testing.T) {
	Convey("Given the metrics middleware", t, func() {
		mux := newTestMux(&stubScorer{result: scoredResult()})

		Convey("When the caller supplies a request id", func() {
			req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
			req.Header.Set("X-Request-Id", "trace-42")
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			So(rec.Header().Get("X-Request-Id"), ShouldEqual, "trace-42")
		})

		Convey("When no request id is supplied", func() {
			req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			Convey("Then one is generated", func() {
				So(rec.Header().Get("X-Request-Id"), ShouldNotBeEmpty)
				So(len(rec.Header().Get("X-Request-Id")), ShouldEqual, 36)
			})
		})
	})
}
