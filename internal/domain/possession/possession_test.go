package possession_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/okian/movestat/internal/domain/kinematics"
	"github.com/okian/movestat/internal/domain/model"
	"github.com/okian/movestat/internal/domain/possession"
	"github.com/okian/movestat/internal/domain/reshape"
	"github.com/okian/movestat/internal/synth"
	. "github.com/smartystreets/goconvey/convey"
)

func testRoster() *model.Roster {
	r, err := model.NewRoster(synth.Meta(1,
		synth.PlayerSpec{Trackable: 110, First: "Ada"},
		synth.PlayerSpec{Trackable: 120, First: "Cy"},
		synth.PlayerSpec{Trackable: 220, Away: true, First: "Bo"},
	))
	if err != nil {
		panic(err)
	}
	return r
}

func motion(d, t float64, side model.Side) kinematics.Motion {
	return kinematics.Motion{Dist: d, Time: t, Side: side}
}

var approx = cmpopts.EquateApprox(0, 1e-9)

func TestEndToEndExample(t *testing.T) {
	Convey("Given the three-frame match where the player holds the ball first", t, func() {
		ctx := context.Background()
		roster := testRoster()
		frames := []model.RawFrame{
			synth.Frame(0, 1, "00:00.00").Holder(110, "home team").Player(110, 0, 0, 1).Build(),
			synth.Frame(1, 1, "00:00.10").Side("home team").Player(110, 3, 4, 1).Build(),
			synth.Frame(2, 1, "00:00.20").Side("home team").Player(110, 3, 4, 1).Build(),
		}
		table, err := reshape.Reshape(ctx, roster, frames)
		So(err, ShouldBeNil)
		e, err := kinematics.NewEstimator(kinematics.WithWindow(1))
		So(err, ShouldBeNil)
		steps, err := e.Estimate(ctx, table)
		So(err, ShouldBeNil)

		Convey("When attributing", func() {
			stats, err := possession.Attributor{}.Attribute(ctx, roster, steps)
			So(err, ShouldBeNil)

			Convey("Then the partition matches the worked example", func() {
				want := possession.Partition{
					Total: 5, OnBall: 5, OffBall: 0,
					TeamPos: 5, TeamPosOnBall: 5, TeamPosOffBall: 0,
					TeamNoPos: 0, TeamNoPosOffBall: 0,
				}
				So(cmp.Diff(want, stats["110"].Dist, approx), ShouldBeEmpty)

				wantTime := possession.Partition{
					Total: 0.2, OnBall: 0.1, OffBall: 0.1,
					TeamPos: 0.2, TeamPosOnBall: 0.1, TeamPosOffBall: 0.1,
				}
				So(cmp.Diff(wantTime, stats["110"].Time, approx), ShouldBeEmpty)
			})

			Convey("And unobserved roster players get zero stats", func() {
				So(len(stats), ShouldEqual, 3)
				So(stats["220"].Dist, ShouldResemble, possession.Partition{})
				So(stats["220"].Player.Side, ShouldEqual, model.SideAway)
			})
		})
	})
}

func TestAttributePartition(t *testing.T) {
	Convey("Given steps covering every possession situation", t, func() {
		ctx := context.Background()
		roster := testRoster()
		steps := []kinematics.Step{
			// Ada holds, home in possession.
			{Row: 0, Holder: "110", PossessionSide: model.SideHome, Motions: map[model.EntityID]kinematics.Motion{
				"110": motion(2, 0.1, model.SideHome),
				"120": motion(1, 0.1, model.SideHome),
				"220": motion(3, 0.1, model.SideAway),
			}},
			// Bo holds, away in possession.
			{Row: 1, Holder: "220", PossessionSide: model.SideAway, Motions: map[model.EntityID]kinematics.Motion{
				"110": motion(4, 0.1, model.SideHome),
				"220": motion(1.5, 0.1, model.SideAway),
			}},
			// Loose ball, nobody in possession.
			{Row: 2, Motions: map[model.EntityID]kinematics.Motion{
				"110": motion(0.5, 0.1, model.SideHome),
			}},
			// Home in possession but Cy tagged with the away group that frame.
			{Row: 3, PossessionSide: model.SideHome, Motions: map[model.EntityID]kinematics.Motion{
				"120":             motion(7, 0.1, model.SideAway),
				"group:home_team": motion(9, 0.1, model.SideHome),
			}},
		}

		Convey("When attributing", func() {
			stats, err := possession.Attributor{}.Attribute(ctx, roster, steps)
			So(err, ShouldBeNil)

			Convey("Then on-ball credit goes to the holder only", func() {
				So(stats["110"].Dist.OnBall, ShouldEqual, 2.0)
				So(stats["110"].Dist.OffBall, ShouldAlmostEqual, 4.5, 1e-12)
				So(stats["220"].Dist.OnBall, ShouldEqual, 1.5)
				So(stats["120"].Dist.OnBall, ShouldEqual, 0.0)
			})

			Convey("And team possession requires both the team and the frame side", func() {
				So(stats["110"].Dist.TeamPos, ShouldEqual, 2.0)
				So(stats["120"].Dist.TeamPos, ShouldEqual, 1.0)
				So(stats["120"].Dist.TeamNoPos, ShouldEqual, 7.0)
				So(stats["220"].Dist.TeamPos, ShouldEqual, 1.5)
				So(stats["220"].Dist.TeamNoPos, ShouldEqual, 3.0)
			})

			Convey("And non-roster entities are ignored", func() {
				_, ok := stats["group:home_team"]
				So(ok, ShouldBeFalse)
			})

			Convey("And every partition identity holds", func() {
				for _, s := range stats {
					for _, p := range []possession.Partition{s.Dist, s.Time} {
						So(p.OnBall+p.OffBall, ShouldAlmostEqual, p.Total, 1e-9)
						So(p.TeamPosOnBall+p.TeamPosOffBall, ShouldAlmostEqual, p.TeamPos, 1e-9)
						So(p.TeamPos+p.TeamNoPos, ShouldAlmostEqual, p.Total, 1e-9)
						So(p.TeamNoPosOffBall, ShouldEqual, p.TeamNoPos)
					}
				}
			})
		})

		Convey("When attributing twice", func() {
			first, err := possession.Attributor{}.Attribute(ctx, roster, steps)
			So(err, ShouldBeNil)
			second, err := possession.Attributor{}.Attribute(ctx, roster, steps)
			So(err, ShouldBeNil)

			Convey("Then accumulators are fresh for each call", func() {
				So(first["110"], ShouldNotPointTo, second["110"])
				So(cmp.Diff(first["110"], second["110"]), ShouldBeEmpty)
			})
		})

		Convey("When the context is cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := possession.Attributor{}.Attribute(cctx, roster, steps)
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})
	})
}

func TestSpeed(t *testing.T) {
	Convey("Given a player who was never off the ball", t, func() {
		s := &possession.PlayerMatchStat{
			Player: model.Player{Entity: "110"},
			Dist:   possession.Partition{Total: 6, OnBall: 6, TeamPos: 6, TeamPosOnBall: 6},
			Time:   possession.Partition{Total: 2, OnBall: 2, TeamPos: 2, TeamPosOnBall: 2},
		}

		Convey("When reading the off-ball speed", func() {
			_, err := s.Speed(possession.OffBall)

			Convey("Then the division is signalled as undefined", func() {
				So(errors.Is(err, possession.ErrDivisionUndefined), ShouldBeTrue)
				var de *possession.DivisionError
				So(errors.As(err, &de), ShouldBeTrue)
				So(de.Bucket, ShouldEqual, possession.OffBall)
				So(de.Player, ShouldEqual, model.EntityID("110"))
				So(err.Error(), ShouldContainSubstring, "speed_offball")
			})
		})

		Convey("When reading the defined speeds", func() {
			v, err := s.Speed(possession.Total)
			So(err, ShouldBeNil)
			So(v, ShouldEqual, 3.0)

			speeds := s.Speeds()
			So(len(speeds), ShouldEqual, len(possession.Buckets))
			So(*speeds[possession.OnBall], ShouldEqual, 3.0)
			So(speeds[possession.OffBall], ShouldBeNil)
			So(speeds[possession.TeamNoPos], ShouldBeNil)
		})
	})
}

func TestBucketFields(t *testing.T) {
	Convey("Given report column names", t, func() {
		So(possession.Total.Field("dist"), ShouldEqual, "dist")
		So(possession.TeamPosOffBall.Field("time"), ShouldEqual, "time_teampos_offball")

		m, b, err := possession.ParseField("speed_teamnopos_offball")
		So(err, ShouldBeNil)
		So(m, ShouldEqual, "speed")
		So(b, ShouldEqual, possession.TeamNoPosOffBall)

		m, b, err = possession.ParseField("dist")
		So(err, ShouldBeNil)
		So(m, ShouldEqual, "dist")
		So(b, ShouldEqual, possession.Total)

		_, _, err = possession.ParseField("pace_onball")
		So(err, ShouldNotBeNil)
	})
}
