package reconcile_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/okian/movestat/internal/domain/model"
	"github.com/okian/movestat/internal/domain/possession"
	"github.com/okian/movestat/internal/domain/reconcile"
	. "github.com/smartystreets/goconvey/convey"
)

func balanced() possession.Partition {
	return possession.Partition{
		Total: 10, OnBall: 2, OffBall: 8,
		TeamPos: 6, TeamPosOnBall: 2, TeamPosOffBall: 4,
		TeamNoPos: 4, TeamNoPosOffBall: 4,
	}
}

func TestCheck(t *testing.T) {
	ctx := context.Background()

	Convey("Given balanced stats", t, func() {
		stats := map[model.EntityID]*possession.PlayerMatchStat{
			"110": {Dist: balanced(), Time: balanced()},
			"220": {},
		}

		Convey("When checking", func() {
			So(reconcile.NewChecker(reconcile.DefaultTolerance).Check(ctx, stats), ShouldBeNil)
		})

		Convey("When a player's stat is missing", func() {
			stats["330"] = nil
			err := reconcile.NewChecker(reconcile.DefaultTolerance).Check(ctx, stats)

			Convey("Then it is a data error naming the player", func() {
				So(errors.Is(err, model.ErrData), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "player 330")
			})
		})

		Convey("When a sum drifts within tolerance", func() {
			p := balanced()
			p.OffBall += 0.5
			stats["110"].Dist = p
			So(reconcile.NewChecker(1).Check(ctx, stats), ShouldBeNil)
		})

		Convey("When a sum drifts beyond tolerance", func() {
			p := balanced()
			p.TeamPosOffBall = 7
			stats["110"].Time = p
			err := reconcile.NewChecker(1).Check(ctx, stats)

			Convey("Then the error names the player and the identity", func() {
				So(errors.Is(err, reconcile.ErrReconciliation), ShouldBeTrue)
				var re *reconcile.ReconciliationError
				So(errors.As(err, &re), ShouldBeTrue)
				So(re.Player, ShouldEqual, model.EntityID("110"))
				So(re.Metric, ShouldEqual, "time")
				So(re.Identity, ShouldEqual, reconcile.IdentityTeamPos)
				So(re.Discrepancy, ShouldEqual, 3.0)
				So(err.Error(), ShouldContainSubstring, "player 110")
			})
		})

		Convey("When the no-possession identity is off by any amount", func() {
			p := balanced()
			p.TeamNoPosOffBall = 4.0000001
			stats["110"].Dist = p
			err := reconcile.NewChecker(1).Check(ctx, stats)
			var re *reconcile.ReconciliationError
			So(errors.As(err, &re), ShouldBeTrue)
			So(re.Identity, ShouldEqual, reconcile.IdentityNoPosOffBall)
		})

		Convey("When a value is NaN", func() {
			p := balanced()
			p.OnBall = math.NaN()
			stats["110"].Dist = p
			So(errors.Is(reconcile.NewChecker(1).Check(ctx, stats), reconcile.ErrReconciliation), ShouldBeTrue)
		})

		Convey("When the tolerance is negative", func() {
			So(reconcile.NewChecker(-1).Tolerance, ShouldEqual, reconcile.DefaultTolerance)
		})

		Convey("When the context is cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			So(errors.Is(reconcile.NewChecker(1).Check(cctx, stats), context.Canceled), ShouldBeTrue)
		})
	})
}
