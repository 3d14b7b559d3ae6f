package main

import (
	"context"
	"testing"

	"github.com/okian/movestat/internal/adapters/source"
	"github.com/okian/movestat/internal/synth"
	"github.com/okian/movestat/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func TestGenerate(t *testing.T) {
	if err := logger.Init(); err != nil {
		t.Fatal(err)
	}

	convey.Convey("Given a synthetic match config", t, func() {
		dir := t.TempDir()
		cfg := synth.DefaultConfig()
		cfg.MatchID = 7
		cfg.PlayersPerSide = 2
		cfg.FramesPerPeriod = 20

		convey.Convey("When generating into a data directory", func() {
			convey.So(generate(context.Background(), dir, cfg), convey.ShouldBeNil)

			convey.Convey("Then the loader finds and reads it", func() {
				loader := source.NewLoader(dir)
				ids, err := loader.IDs(context.Background())
				convey.So(err, convey.ShouldBeNil)
				convey.So(ids, convey.ShouldResemble, []int64{7})

				m, err := loader.Load(context.Background(), 7)
				convey.So(err, convey.ShouldBeNil)
				convey.So(len(m.Meta.Players), convey.ShouldEqual, 4)
			})
		})

		convey.Convey("When the config is invalid", func() {
			cfg.PlayersPerSide = 0
			convey.So(generate(context.Background(), dir, cfg), convey.ShouldNotBeNil)
		})
	})
}
