package repository

import (
	"fmt"
	"sort"

	"github.com/okian/movestat/internal/domain/aggregate"
	"github.com/okian/movestat/internal/domain/types"
)

// rank orders players by an averaged metric. Players whose value is
// undefined are left out.
func rank(avg []aggregate.Averaged, metric string, n int) ([]types.Entry, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, n)
	}
	entries := make([]types.Entry, 0, len(avg))
	for i := range avg {
		a := &avg[i]
		v, err := a.Value(metric)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidMetric, metric)
		}
		if v == nil {
			continue
		}
		entries = append(entries, types.Entry{
			PlayerID:   a.PlayerID,
			Name:       a.Name,
			Team:       a.Team,
			Metric:     metric,
			Value:      *v,
			MatchCount: a.MatchCount,
		})
	}
	sortEntries(entries)
	assignRanksWithTies(entries)
	if len(entries) > n {
		entries = entries[:n]
	}
	return entries, nil
}

// sortEntries sorts by value descending, then player id ascending.
func sortEntries(entries []types.Entry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Value != entries[j].Value {
			return entries[i].Value > entries[j].Value
		}
		return entries[i].PlayerID < entries[j].PlayerID
	})
}

// assignRanksWithTies gives equal values the same rank; the next distinct
// value takes the following rank.
func assignRanksWithTies(entries []types.Entry) {
	current := 0
	for i := range entries {
		if i == 0 || entries[i].Value != entries[i-1].Value {
			current++
		}
		entries[i].Rank = current
	}
}

func countStats(matches int, records []aggregate.Record) types.StoreStats {
	players := make(map[int64]struct{})
	for i := range records {
		players[records[i].PlayerID] = struct{}{}
	}
	return types.StoreStats{Matches: matches, Records: len(records), Players: len(players)}
}
