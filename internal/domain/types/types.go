// Package types contains common types used across the application
package types

// Entry is one row of a player leaderboard for a single metric.
type Entry struct {
	Rank       int     `json:"rank"`
	PlayerID   int64   `json:"player_id"`
	Name       string  `json:"player_name"`
	Team       string  `json:"team"`
	Metric     string  `json:"metric"`
	Value      float64 `json:"value"`
	MatchCount int     `json:"match_count"`
}

// StoreStats summarizes what a result store holds.
type StoreStats struct {
	Matches int `json:"matches"`
	Records int `json:"records"`
	Players int `json:"players"`
}
