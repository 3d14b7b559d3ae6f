// Package aggregate turns per-match player stats into report records and
// averages them across matches.
package aggregate

import (
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/okian/movestat/internal/domain/model"
	"github.com/okian/movestat/internal/domain/possession"
)

// PlayerInfo identifies the player a row belongs to.
type PlayerInfo struct {
	PlayerID int64          `json:"player_id"`
	Entity   model.EntityID `json:"trackable_object"`
	Team     string         `json:"team"`
	Side     model.Side     `json:"side"`
	Name     string         `json:"player_name"`
}

// Metrics is the partitioned distance, time and speed of a row. A nil
// speed is undefined because its bucket has zero time.
type Metrics struct {
	Dist  possession.Partition           `json:"dist"`
	Time  possession.Partition           `json:"time"`
	Speed map[possession.Bucket]*float64 `json:"speed"`
}

// Value returns a report column such as "dist_offball" or "speed". It
// returns nil for an undefined speed.
func (m Metrics) Value(field string) (*float64, error) {
	metric, b, err := possession.ParseField(field)
	if err != nil {
		return nil, err
	}
	var v float64
	switch metric {
	case "dist":
		v = m.Dist.Get(b)
	case "time":
		v = m.Time.Get(b)
	default:
		return m.Speed[b], nil
	}
	return &v, nil
}

// Record is one player's result for one match.
type Record struct {
	MatchID int64 `json:"match_id"`
	PlayerInfo
	Metrics
}

// Averaged is one player's result averaged over MatchCount matches.
type Averaged struct {
	PlayerInfo
	MatchCount int `json:"match_count"`
	Metrics
}

// MetricFields lists the 24 metric columns in report order.
func MetricFields() []string {
	out := make([]string, 0, 3*len(possession.Buckets))
	for _, metric := range []string{"dist", "time", "speed"} {
		for _, b := range possession.Buckets {
			out = append(out, b.Field(metric))
		}
	}
	return out
}

// NewMetrics derives the speeds for a distance and time partition.
func NewMetrics(dist, time possession.Partition) Metrics {
	s := possession.PlayerMatchStat{Dist: dist, Time: time}
	return Metrics{Dist: dist, Time: time, Speed: s.Speeds()}
}

// NewRecords builds records in roster order. Roster players without a stat
// are skipped.
func NewRecords(matchID int64, roster *model.Roster, stats map[model.EntityID]*possession.PlayerMatchStat) []Record {
	out := make([]Record, 0, len(roster.Players))
	for _, p := range roster.Players {
		s, ok := stats[p.Entity]
		if !ok {
			continue
		}
		out = append(out, Record{
			MatchID: matchID,
			PlayerInfo: PlayerInfo{
				PlayerID: p.ID,
				Entity:   p.Entity,
				Team:     roster.Team(p.Side).ShortName,
				Side:     p.Side,
				Name:     p.DisplayName(),
			},
			Metrics: NewMetrics(s.Dist, s.Time),
		})
	}
	return out
}

// Average groups records by player id and divides the summed distance and
// time by the number of matches the player appeared in. A record with no
// tracked time is not an appearance and is left out. Speeds are
// recomputed from the averages. The result is ordered by player id.
func Average(records []Record) []Averaged {
	type sum struct {
		info       PlayerInfo
		dist, time []float64
		matches    int
	}
	byPlayer := make(map[int64]*sum)
	for i := range records {
		r := &records[i]
		if r.Time.Total <= 0 {
			continue
		}
		s, ok := byPlayer[r.PlayerID]
		if !ok {
			s = &sum{info: r.PlayerInfo, dist: make([]float64, len(possession.Buckets)), time: make([]float64, len(possession.Buckets))}
			byPlayer[r.PlayerID] = s
		}
		floats.Add(s.dist, r.Dist.Vector())
		floats.Add(s.time, r.Time.Vector())
		s.matches++
	}

	out := make([]Averaged, 0, len(byPlayer))
	for _, s := range byPlayer {
		n := 1 / float64(s.matches)
		floats.Scale(n, s.dist)
		floats.Scale(n, s.time)
		out = append(out, Averaged{
			PlayerInfo: s.info,
			MatchCount: s.matches,
			Metrics:    NewMetrics(possession.PartitionFromVector(s.dist), possession.PartitionFromVector(s.time)),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlayerID < out[j].PlayerID })
	return out
}

// CountUndefined counts nil speeds per bucket field across records.
func CountUndefined(records []Record) map[string]int {
	out := make(map[string]int)
	for i := range records {
		for b, v := range records[i].Speed {
			if v == nil {
				out[b.Field("speed")]++
			}
		}
	}
	return out
}
