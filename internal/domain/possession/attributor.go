// Package possession partitions each player's distance and time by ball
// and team possession.
package possession

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/okian/movestat/internal/domain/kinematics"
	"github.com/okian/movestat/internal/domain/model"
)

const ctxCheckEvery = 4096

// Accumulator slots, scaled by d or t for each motion.
const (
	slotTotal = iota
	slotOnBall
	slotTeamPos
	slotTeamPosOnBall
	numSlots
)

// Attributor sums motions into PlayerMatchStats. The zero value is ready
// to use and holds no state between calls.
type Attributor struct{}

type accumulator struct {
	dist, time [numSlots]float64
}

// Attribute returns one fresh stat per roster player, keyed by entity.
// Players without any motion get an all-zero stat.
func (Attributor) Attribute(ctx context.Context, roster *model.Roster, steps []kinematics.Step) (map[model.EntityID]*PlayerMatchStat, error) {
	acc := make(map[model.EntityID]*accumulator, len(roster.Players))
	for _, p := range roster.Players {
		acc[p.Entity] = &accumulator{}
	}

	var gate [numSlots]float64
	for i := range steps {
		if i%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("attribute: %w", err)
			}
		}
		s := &steps[i]
		for e, m := range s.Motions {
			a, ok := acc[e]
			if !ok {
				continue
			}
			p, _ := roster.Player(e)
			onball := indicator(s.Holder == e)
			teampos := indicator(s.PossessionSide == p.Side && m.Side == p.Side)
			gate = [numSlots]float64{1, onball, teampos, teampos * onball}
			floats.AddScaled(a.dist[:], m.Dist, gate[:])
			floats.AddScaled(a.time[:], m.Time, gate[:])
		}
	}

	out := make(map[model.EntityID]*PlayerMatchStat, len(roster.Players))
	for _, p := range roster.Players {
		a := acc[p.Entity]
		out[p.Entity] = &PlayerMatchStat{
			Player: p,
			Dist:   partition(a.dist),
			Time:   partition(a.time),
		}
	}
	return out, nil
}

func partition(v [numSlots]float64) Partition {
	p := Partition{
		Total:         v[slotTotal],
		OnBall:        v[slotOnBall],
		TeamPos:       v[slotTeamPos],
		TeamPosOnBall: v[slotTeamPosOnBall],
	}
	p.complete()
	return p
}

func indicator(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
