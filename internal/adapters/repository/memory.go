package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/okian/movestat/internal/domain/aggregate"
	"github.com/okian/movestat/internal/domain/types"
	"github.com/okian/movestat/pkg/metrics"
)

// MemoryStore keeps records in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	byMatch map[int64][]aggregate.Record
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byMatch: make(map[int64][]aggregate.Record)}
}

func (s *MemoryStore) SaveMatch(ctx context.Context, matchID int64, records []aggregate.Record) error {
	if len(records) == 0 {
		return fmt.Errorf("%w: %d", ErrEmptyMatch, matchID)
	}
	cp := make([]aggregate.Record, len(records))
	copy(cp, records)

	s.mu.Lock()
	s.byMatch[matchID] = cp
	n := s.recordCountLocked()
	s.mu.Unlock()

	metrics.UpdateStoredRecords(n)
	return nil
}

func (s *MemoryStore) MatchRecords(ctx context.Context, matchID int64) ([]aggregate.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	recs, ok := s.byMatch[matchID]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, matchID)
	}
	out := make([]aggregate.Record, len(recs))
	copy(out, recs)
	return out, nil
}

func (s *MemoryStore) Matches(ctx context.Context) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]int64, 0, len(s.byMatch))
	for id := range s.byMatch {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (s *MemoryStore) Averages(ctx context.Context) ([]aggregate.Averaged, error) {
	return aggregate.Average(s.all()), nil
}

func (s *MemoryStore) TopN(ctx context.Context, metric string, n int) ([]types.Entry, error) {
	return rank(aggregate.Average(s.all()), metric, n)
}

func (s *MemoryStore) Count(ctx context.Context) (types.StoreStats, error) {
	s.mu.RLock()
	matches := len(s.byMatch)
	s.mu.RUnlock()
	return countStats(matches, s.all()), nil
}

func (s *MemoryStore) Close() error { return nil }

// all returns every record ordered by match id.
func (s *MemoryStore) all() []aggregate.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]int64, 0, len(s.byMatch))
	for id := range s.byMatch {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	var out []aggregate.Record
	for _, id := range ids {
		out = append(out, s.byMatch[id]...)
	}
	return out
}

func (s *MemoryStore) recordCountLocked() int {
	n := 0
	for _, recs := range s.byMatch {
		n += len(recs)
	}
	return n
}
