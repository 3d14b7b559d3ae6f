package main

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/movestat/internal/adapters/repository"
	"github.com/okian/movestat/internal/adapters/source"
	"github.com/okian/movestat/internal/config"
	"github.com/okian/movestat/internal/synth"
	"github.com/okian/movestat/pkg/logger"
	"github.com/okian/movestat/pkg/metrics"
	"github.com/smartystreets/goconvey/convey"
)

func writeMatches(t *testing.T, dir string, ids ...int64) {
	t.Helper()
	for _, id := range ids {
		cfg := synth.DefaultConfig()
		cfg.MatchID = id
		cfg.Seed = id
		cfg.PlayersPerSide = 3
		cfg.FramesPerPeriod = 80
		m, err := synth.Generate(context.Background(), cfg)
		if err != nil {
			t.Fatal(err)
		}
		if err := source.Write(context.Background(), dir, m); err != nil {
			t.Fatal(err)
		}
	}
}

func TestRun(t *testing.T) {
	if err := logger.Init(); err != nil {
		t.Fatal(err)
	}

	convey.Convey("Given a data directory with two matches", t, func() {
		dir := t.TempDir()
		writeMatches(t, dir, 11, 12)
		cfg := config.New()
		cfg.DataDir = dir
		cfg.WorkerCount = 2
		ctx := context.Background()

		convey.Convey("When running over every indexed match with a CSV output", func() {
			cfg.Output = filepath.Join(dir, "out", "stats.csv")
			convey.So(run(ctx, cfg), convey.ShouldBeNil)

			convey.Convey("Then one row per player and match is exported", func() {
				f, err := os.Open(cfg.Output)
				convey.So(err, convey.ShouldBeNil)
				defer f.Close()
				rows, err := csv.NewReader(f).ReadAll()
				convey.So(err, convey.ShouldBeNil)
				convey.So(len(rows), convey.ShouldEqual, 1+2*6)
			})

			convey.Convey("And averages are exported next to it", func() {
				_, err := os.Stat(filepath.Join(dir, "out", "stats_averages.csv"))
				convey.So(err, convey.ShouldBeNil)
			})
		})

		convey.Convey("When persisting to sqlite", func() {
			cfg.DBPath = filepath.Join(dir, "movestat.db")
			cfg.MatchIDs = []int64{12}
			convey.So(run(ctx, cfg), convey.ShouldBeNil)

			convey.Convey("Then the store holds the selected match", func() {
				store, err := repository.NewSQLiteStore(ctx, cfg.DBPath)
				convey.So(err, convey.ShouldBeNil)
				defer store.Close()
				ids, err := store.Matches(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(ids, convey.ShouldResemble, []int64{12})
			})
		})

		convey.Convey("When fail_fast is set and a match is missing", func() {
			cfg.FailFast = true
			cfg.WorkerCount = 1
			cfg.MatchIDs = []int64{404}
			convey.So(run(ctx, cfg), convey.ShouldNotBeNil)
		})

		convey.Convey("When the export extension is unsupported", func() {
			cfg.Output = filepath.Join(dir, "stats.txt")
			convey.So(run(ctx, cfg), convey.ShouldNotBeNil)
		})
	})
}

func TestConfigFromEnv(t *testing.T) {
	convey.Convey("Given movestat environment variables", t, func() {
		t.Setenv("MOVESTAT_DATA_DIR", "/data")
		t.Setenv("MOVESTAT_WORKER_COUNT", "4")
		t.Setenv("MOVESTAT_MATCH_IDS", "4039,3749")

		convey.Convey("Then configuration is loadable", func() {
			cfg, err := config.Load(context.Background())
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.DataDir, convey.ShouldEqual, "/data")
			convey.So(cfg.WorkerCount, convey.ShouldEqual, 4)
			convey.So(cfg.MatchIDs, convey.ShouldResemble, []int64{4039, 3749})
		})
	})
}

func TestInitMetrics(t *testing.T) {
	convey.Convey("Given a config with a metrics namespace", t, func() {
		cfg := config.New()
		cfg.MetricsNamespace = "fleet"
		initMetrics(cfg)
		convey.Reset(func() { metrics.Init() })

		convey.Convey("Then recorded metrics use that namespace", func() {
			metrics.RecordMatchProcessed()
			families, err := metrics.GetRegistry().Gather()
			convey.So(err, convey.ShouldBeNil)
			names := make([]string, 0, len(families))
			for _, f := range families {
				names = append(names, f.GetName())
			}
			convey.So(names, convey.ShouldContain, "fleet_pipeline_matches_processed_total")
		})
	})
}
