package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/okian/movestat/internal/adapters/http/api"
	"github.com/okian/movestat/internal/adapters/repository"
	"github.com/okian/movestat/internal/domain/aggregate"
	"github.com/okian/movestat/internal/domain/model"
	"github.com/okian/movestat/internal/domain/possession"
	"github.com/okian/movestat/internal/domain/types"
	"github.com/okian/movestat/internal/synth"
	. "github.com/smartystreets/goconvey/convey"
)

func records(matchID int64, adaDist float64) []aggregate.Record {
	roster, err := model.NewRoster(synth.Meta(matchID,
		synth.PlayerSpec{Trackable: 110, First: "Ada"},
		synth.PlayerSpec{Trackable: 220, Away: true, First: "Bo"},
	))
	if err != nil {
		panic(err)
	}
	return aggregate.NewRecords(matchID, roster, map[model.EntityID]*possession.PlayerMatchStat{
		"110": {
			Dist: possession.Partition{Total: adaDist, OffBall: adaDist, TeamNoPos: adaDist, TeamNoPosOffBall: adaDist},
			Time: possession.Partition{Total: 10, OffBall: 10, TeamNoPos: 10, TeamNoPosOffBall: 10},
		},
		"220": {
			Dist: possession.Partition{Total: 50, OffBall: 50, TeamNoPos: 50, TeamNoPosOffBall: 50},
			Time: possession.Partition{Total: 10, OffBall: 10, TeamNoPos: 10, TeamNoPosOffBall: 10},
		},
	})
}

func seededStore() *repository.MemoryStore {
	s := repository.NewMemoryStore()
	ctx := context.Background()
	if err := s.SaveMatch(ctx, 1, records(1, 100)); err != nil {
		panic(err)
	}
	if err := s.SaveMatch(ctx, 2, records(2, 20)); err != nil {
		panic(err)
	}
	return s
}

// failingStore fails every read.
type failingStore struct{ err error }

func (f failingStore) MatchRecords(context.Context, int64) ([]aggregate.Record, error) {
	return nil, f.err
}
func (f failingStore) Matches(context.Context) ([]int64, error)               { return nil, f.err }
func (f failingStore) Averages(context.Context) ([]aggregate.Averaged, error) { return nil, f.err }
func (f failingStore) TopN(context.Context, string, int) ([]types.Entry, error) {
	return nil, f.err
}
func (f failingStore) Count(context.Context) (types.StoreStats, error) {
	return types.StoreStats{}, f.err
}

func get(h http.Handler, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestServer_Register(t *testing.T) {
	Convey("Given a server over a seeded store", t, func() {
		h := api.NewServer(seededStore()).Handler()

		Convey("Then health reports ok", func() {
			w := get(h, "/healthz")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"ok"`)
		})

		Convey("Then metrics are exposed in the Prometheus text format", func() {
			get(h, "/healthz")
			w := get(h, "/metrics")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "movestat_pipeline_http_requests_total")
		})

		Convey("Then stats count matches, records and players", func() {
			w := get(h, "/stats")
			So(w.Code, ShouldEqual, http.StatusOK)
			var stats types.StoreStats
			So(json.NewDecoder(w.Body).Decode(&stats), ShouldBeNil)
			So(stats, ShouldResemble, types.StoreStats{Matches: 2, Records: 4, Players: 2})
		})

		Convey("Then matches are listed ascending", func() {
			w := get(h, "/matches")
			var ids []int64
			So(json.NewDecoder(w.Body).Decode(&ids), ShouldBeNil)
			So(ids, ShouldResemble, []int64{1, 2})
		})

		Convey("Then one match returns its records", func() {
			w := get(h, "/matches/2")
			So(w.Code, ShouldEqual, http.StatusOK)
			var recs []map[string]any
			So(json.NewDecoder(w.Body).Decode(&recs), ShouldBeNil)
			So(len(recs), ShouldEqual, 2)
			So(recs[0]["player_name"], ShouldEqual, "Ada")
			So(recs[0]["match_id"], ShouldEqual, 2)
		})

		Convey("Then an unknown match is 404", func() {
			So(get(h, "/matches/99").Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("Then a malformed match id is 400", func() {
			So(get(h, "/matches/abc").Code, ShouldEqual, http.StatusBadRequest)
			So(get(h, "/matches/1/x").Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("Then players are averaged across matches", func() {
			w := get(h, "/players")
			var avg []map[string]any
			So(json.NewDecoder(w.Body).Decode(&avg), ShouldBeNil)
			So(len(avg), ShouldEqual, 2)
			So(avg[0]["match_count"], ShouldEqual, 2)
			So(avg[0]["dist"].(map[string]any)["total"], ShouldEqual, 60)
		})

		Convey("Then unknown paths are 404", func() {
			So(get(h, "/unknown").Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("Then non-GET requests are 404", func() {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/players", strings.NewReader("{}")))
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestLeaderboardHandler_HandleGetLeaderboard(t *testing.T) {
	Convey("Given a leaderboard handler over a seeded store", t, func() {
		handler := api.NewLeaderboardHandler(seededStore(), 10)

		Convey("When requesting the top entries by distance", func() {
			w := httptest.NewRecorder()
			handler.HandleGetLeaderboard(w, httptest.NewRequest(http.MethodGet, "/leaderboard?metric=dist&limit=2", nil))

			Convey("Then players are ranked by averaged distance", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var entries []types.Entry
				So(json.NewDecoder(w.Body).Decode(&entries), ShouldBeNil)
				So(len(entries), ShouldEqual, 2)
				So(entries[0].Name, ShouldEqual, "Ada")
				So(entries[0].Value, ShouldEqual, 60)
				So(entries[0].Rank, ShouldEqual, 1)
				So(entries[1].Name, ShouldEqual, "Bo")
				So(entries[1].Rank, ShouldEqual, 2)
			})
		})

		Convey("When the metric is omitted it defaults to distance", func() {
			w := httptest.NewRecorder()
			handler.HandleGetLeaderboard(w, httptest.NewRequest(http.MethodGet, "/leaderboard?limit=1", nil))
			var entries []types.Entry
			So(json.NewDecoder(w.Body).Decode(&entries), ShouldBeNil)
			So(entries[0].Metric, ShouldEqual, "dist")
		})

		Convey("When no limit is specified", func() {
			w := httptest.NewRecorder()
			handler.HandleGetLeaderboard(w, httptest.NewRequest(http.MethodGet, "/leaderboard", nil))
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the limit exceeds the maximum", func() {
			w := httptest.NewRecorder()
			handler.HandleGetLeaderboard(w, httptest.NewRequest(http.MethodGet, "/leaderboard?limit=11", nil))
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(w.Body.String(), ShouldContainSubstring, "limit_exceeded")
		})

		Convey("When the metric is unknown", func() {
			w := httptest.NewRecorder()
			handler.HandleGetLeaderboard(w, httptest.NewRequest(http.MethodGet, "/leaderboard?metric=height&limit=1", nil))
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the store fails", func() {
			h := api.NewLeaderboardHandler(failingStore{err: errors.New("database error")}, 10)
			w := httptest.NewRecorder()
			h.HandleGetLeaderboard(w, httptest.NewRequest(http.MethodGet, "/leaderboard?limit=1", nil))
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
		})
	})
}

func TestStatsHandler_HandleStats(t *testing.T) {
	Convey("Given a stats handler over a failing store", t, func() {
		handler := api.NewStatsHandler(failingStore{err: errors.New("disk gone")})
		w := httptest.NewRecorder()
		handler.HandleStats(w, httptest.NewRequest(http.MethodGet, "/stats", nil))

		Convey("Then it returns an internal error with the cause", func() {
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
			So(w.Body.String(), ShouldContainSubstring, "disk gone")
		})
	})
}

func TestErrors(t *testing.T) {
	Convey("Given API errors", t, func() {
		cause := errors.New("boom")
		err := api.WrapKind("api.op", api.ErrBadRequest, cause)

		Convey("Then both the kind and the cause unwrap", func() {
			So(errors.Is(err, api.ErrBadRequest), ShouldBeTrue)
			So(errors.Is(err, cause), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "api.op: bad request: boom")
		})

		Convey("Then kind-only errors name the op", func() {
			So(api.NewKind("api.op", api.ErrNotFound).Error(), ShouldEqual, "api.op: not found")
		})
	})
}
