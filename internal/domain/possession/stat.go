package possession

import (
	"fmt"

	"github.com/okian/movestat/internal/domain/model"
)

// Bucket names one cell of the possession partition.
type Bucket string

const (
	Total            Bucket = "total"
	OnBall           Bucket = "onball"
	OffBall          Bucket = "offball"
	TeamPos          Bucket = "teampos"
	TeamPosOnBall    Bucket = "teampos_onball"
	TeamPosOffBall   Bucket = "teampos_offball"
	TeamNoPos        Bucket = "teamnopos"
	TeamNoPosOffBall Bucket = "teamnopos_offball"
)

// Buckets lists every bucket in report order.
var Buckets = []Bucket{Total, OnBall, OffBall, TeamPos, TeamPosOnBall, TeamPosOffBall, TeamNoPos, TeamNoPosOffBall} //nolint:gochecknoglobals // fixed enumeration

// Field returns the report column for a metric prefix, e.g. "dist" or
// "dist_onball".
func (b Bucket) Field(metric string) string {
	if b == Total {
		return metric
	}
	return metric + "_" + string(b)
}

// ParseField splits a report column such as "speed_teampos_offball" into
// its metric and bucket.
func ParseField(field string) (metric string, b Bucket, err error) {
	for _, m := range []string{"dist", "time", "speed"} {
		if field == m {
			return m, Total, nil
		}
		for _, bk := range Buckets[1:] {
			if field == bk.Field(m) {
				return m, bk, nil
			}
		}
	}
	return "", "", fmt.Errorf("unknown field %q", field)
}

// Partition holds one metric split over the eight buckets.
type Partition struct {
	Total            float64 `json:"total"`
	OnBall           float64 `json:"onball"`
	OffBall          float64 `json:"offball"`
	TeamPos          float64 `json:"teampos"`
	TeamPosOnBall    float64 `json:"teampos_onball"`
	TeamPosOffBall   float64 `json:"teampos_offball"`
	TeamNoPos        float64 `json:"teamnopos"`
	TeamNoPosOffBall float64 `json:"teamnopos_offball"`
}

// Get returns the value of a bucket.
func (p Partition) Get(b Bucket) float64 {
	switch b {
	case OnBall:
		return p.OnBall
	case OffBall:
		return p.OffBall
	case TeamPos:
		return p.TeamPos
	case TeamPosOnBall:
		return p.TeamPosOnBall
	case TeamPosOffBall:
		return p.TeamPosOffBall
	case TeamNoPos:
		return p.TeamNoPos
	case TeamNoPosOffBall:
		return p.TeamNoPosOffBall
	default:
		return p.Total
	}
}

// Vector returns the buckets in Buckets order.
func (p Partition) Vector() []float64 {
	return []float64{p.Total, p.OnBall, p.OffBall, p.TeamPos, p.TeamPosOnBall, p.TeamPosOffBall, p.TeamNoPos, p.TeamNoPosOffBall}
}

// PartitionFromVector is the inverse of Vector.
func PartitionFromVector(v []float64) Partition {
	return Partition{
		Total: v[0], OnBall: v[1], OffBall: v[2],
		TeamPos: v[3], TeamPosOnBall: v[4], TeamPosOffBall: v[5],
		TeamNoPos: v[6], TeamNoPosOffBall: v[7],
	}
}

// complete derives the complement buckets from the summed ones.
func (p *Partition) complete() {
	p.OffBall = p.Total - p.OnBall
	p.TeamPosOffBall = p.TeamPos - p.TeamPosOnBall
	p.TeamNoPos = p.Total - p.TeamPos
	p.TeamNoPosOffBall = p.TeamNoPos
}

// PlayerMatchStat is one player's partitioned distance and time for a
// match. It is read-only once returned by an Attributor.
type PlayerMatchStat struct {
	Player model.Player
	Dist   Partition
	Time   Partition
}

// Speed returns Dist/Time for the bucket. A bucket with zero time returns
// a *DivisionError wrapping ErrDivisionUndefined.
func (s *PlayerMatchStat) Speed(b Bucket) (float64, error) {
	t := s.Time.Get(b)
	if t == 0 {
		return 0, &DivisionError{Player: s.Player.Entity, Bucket: b}
	}
	return s.Dist.Get(b) / t, nil
}

// Speeds returns every bucket's speed; undefined speeds are nil.
func (s *PlayerMatchStat) Speeds() map[Bucket]*float64 {
	out := make(map[Bucket]*float64, len(Buckets))
	for _, b := range Buckets {
		v, err := s.Speed(b)
		if err != nil {
			out[b] = nil
			continue
		}
		out[b] = &v
	}
	return out
}
