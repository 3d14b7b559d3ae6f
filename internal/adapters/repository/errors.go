package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound      = errors.New("match not found")
	ErrInvalidLimit  = errors.New("invalid leaderboard limit")
	ErrInvalidMetric = errors.New("invalid leaderboard metric")
	ErrEmptyMatch    = errors.New("match has no records")
)
