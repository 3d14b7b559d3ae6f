// Package reconcile verifies that each player's possession partition adds
// up to its totals.
package reconcile

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/okian/movestat/internal/domain/model"
	"github.com/okian/movestat/internal/domain/possession"
)

// DefaultTolerance is one unit of distance or time.
const DefaultTolerance = 1.0

// Identity names.
const (
	IdentityOnOff        = "total = onball + offball"
	IdentityTeamPos      = "teampos = teampos_onball + teampos_offball"
	IdentityTeamSplit    = "total = teampos + teamnopos"
	IdentityNoPosOffBall = "teamnopos_offball = teamnopos"
)

// Checker validates stats within Tolerance.
type Checker struct {
	Tolerance float64
}

// NewChecker returns a Checker with the given tolerance. A negative
// tolerance falls back to DefaultTolerance.
func NewChecker(tolerance float64) Checker {
	if tolerance < 0 {
		tolerance = DefaultTolerance
	}
	return Checker{Tolerance: tolerance}
}

// Check returns a *ReconciliationError for the first violation, visiting
// players in entity order. The teamnopos_offball identity is checked
// exactly. A nil stat is a DataError.
func (c Checker) Check(ctx context.Context, stats map[model.EntityID]*possession.PlayerMatchStat) error {
	ids := make([]model.EntityID, 0, len(stats))
	for id := range stats {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("reconcile: %w", err)
		}
		s := stats[id]
		if s == nil {
			return model.NewDataError(-1, "player %s has no stat", id)
		}
		if err := c.checkPartition(id, "dist", s.Dist); err != nil {
			return err
		}
		if err := c.checkPartition(id, "time", s.Time); err != nil {
			return err
		}
	}
	return nil
}

func (c Checker) checkPartition(id model.EntityID, metric string, p possession.Partition) error {
	checks := []struct {
		identity  string
		want, got float64
		tolerance float64
	}{
		{IdentityOnOff, p.Total, p.OnBall + p.OffBall, c.Tolerance},
		{IdentityTeamPos, p.TeamPos, p.TeamPosOnBall + p.TeamPosOffBall, c.Tolerance},
		{IdentityTeamSplit, p.Total, p.TeamPos + p.TeamNoPos, c.Tolerance},
		{IdentityNoPosOffBall, p.TeamNoPos, p.TeamNoPosOffBall, 0},
	}
	for _, ck := range checks {
		diff := math.Abs(ck.want - ck.got)
		if diff > ck.tolerance || math.IsNaN(diff) {
			return &ReconciliationError{
				Player:      id,
				Identity:    ck.identity,
				Metric:      metric,
				Want:        ck.want,
				Got:         ck.got,
				Discrepancy: diff,
			}
		}
	}
	return nil
}
