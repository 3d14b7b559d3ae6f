// Package repository persists per-match player records and serves
// cross-match views over them.
package repository

import (
	"context"

	"github.com/okian/movestat/internal/domain/aggregate"
	"github.com/okian/movestat/internal/domain/types"
)

// Store provides read/write access to computed match results.
type Store interface {
	// SaveMatch replaces every record of matchID.
	SaveMatch(ctx context.Context, matchID int64, records []aggregate.Record) error

	// MatchRecords returns the records of one match in roster order.
	// Returns ErrNotFound if the match is unknown.
	MatchRecords(ctx context.Context, matchID int64) ([]aggregate.Record, error)

	// Matches lists stored match ids ascending.
	Matches(ctx context.Context) ([]int64, error)

	// Averages returns per-player averages over all stored matches.
	Averages(ctx context.Context) ([]aggregate.Averaged, error)

	// TopN ranks players by their averaged metric, highest first.
	TopN(ctx context.Context, metric string, n int) ([]types.Entry, error)

	// Count summarizes the store contents.
	Count(ctx context.Context) (types.StoreStats, error)

	Close() error
}
