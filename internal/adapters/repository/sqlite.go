package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/okian/movestat/internal/domain/aggregate"
	"github.com/okian/movestat/internal/domain/model"
	"github.com/okian/movestat/internal/domain/possession"
	"github.com/okian/movestat/internal/domain/types"
	"github.com/okian/movestat/pkg/logger"
	"github.com/okian/movestat/pkg/metrics"
)

// Speeds are derived on read and not stored.
const schema = `
CREATE TABLE IF NOT EXISTS player_match_stats (
	match_id          BIGINT NOT NULL,
	player_id         BIGINT NOT NULL,
	trackable_object  TEXT NOT NULL,
	team              TEXT,
	side              TEXT,
	player_name       TEXT,
	position          INTEGER NOT NULL,
	%s,
	created_at        TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (match_id, player_id)
);
CREATE INDEX IF NOT EXISTS idx_player_match_stats_player ON player_match_stats (player_id);
`

var identityColumns = []string{"match_id", "player_id", "trackable_object", "team", "side", "player_name", "position"} //nolint:gochecknoglobals // column order

// SQLiteStore keeps records in a SQLite database.
type SQLiteStore struct {
	db           *sql.DB
	logger       logger.Logger
	maxOpenConns int
}

// NewSQLiteStore opens (or creates) the database at path and ensures the
// schema exists. Use ":memory:" for a private in-memory database.
func NewSQLiteStore(ctx context.Context, path string, opts ...Option) (*SQLiteStore, error) {
	s := &SQLiteStore{
		logger:       logger.Get().Named("sqlite"),
		maxOpenConns: 1,
	}
	for _, opt := range opts {
		opt(s)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	db.SetMaxOpenConns(s.maxOpenConns)
	s.db = db

	cols := make([]string, 0, 16)
	for _, f := range valueColumns() {
		cols = append(cols, fmt.Sprintf("%-17s DOUBLE NOT NULL", f))
	}
	if _, err := db.ExecContext(ctx, fmt.Sprintf(schema, strings.Join(cols, ",\n\t"))); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	s.logger.Debug(ctx, "sqlite store ready", logger.String("path", path))
	return s, nil
}

// valueColumns are the dist and time columns, in MetricFields order.
func valueColumns() []string {
	return aggregate.MetricFields()[:2*len(possession.Buckets)]
}

func (s *SQLiteStore) SaveMatch(ctx context.Context, matchID int64, records []aggregate.Record) error {
	if len(records) == 0 {
		return fmt.Errorf("%w: %d", ErrEmptyMatch, matchID)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM player_match_stats WHERE match_id = ?`, matchID); err != nil {
		return fmt.Errorf("delete match %d: %w", matchID, err)
	}

	cols := append(append([]string(nil), identityColumns...), valueColumns()...)
	query := fmt.Sprintf(`INSERT INTO player_match_stats (%s) VALUES (%s)`,
		strings.Join(cols, ", "), strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", "))
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i := range records {
		r := &records[i]
		args := []any{matchID, r.PlayerID, string(r.Entity), r.Team, r.Side.String(), r.Name, i}
		for _, v := range r.Dist.Vector() {
			args = append(args, v)
		}
		for _, v := range r.Time.Vector() {
			args = append(args, v)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert player %d of match %d: %w", r.PlayerID, matchID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit match %d: %w", matchID, err)
	}

	if stats, err := s.Count(ctx); err == nil {
		metrics.UpdateStoredRecords(stats.Records)
	}
	return nil
}

func (s *SQLiteStore) MatchRecords(ctx context.Context, matchID int64) ([]aggregate.Record, error) {
	recs, err := s.query(ctx, `WHERE match_id = ?`, matchID)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, matchID)
	}
	return recs, nil
}

func (s *SQLiteStore) Matches(ctx context.Context) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT match_id FROM player_match_stats ORDER BY match_id`)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan match id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *SQLiteStore) Averages(ctx context.Context) ([]aggregate.Averaged, error) {
	recs, err := s.query(ctx, "")
	if err != nil {
		return nil, err
	}
	return aggregate.Average(recs), nil
}

func (s *SQLiteStore) TopN(ctx context.Context, metric string, n int) ([]types.Entry, error) {
	avg, err := s.Averages(ctx)
	if err != nil {
		return nil, err
	}
	return rank(avg, metric, n)
}

func (s *SQLiteStore) Count(ctx context.Context) (types.StoreStats, error) {
	var st types.StoreStats
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT match_id), COUNT(*), COUNT(DISTINCT player_id) FROM player_match_stats`,
	).Scan(&st.Matches, &st.Records, &st.Players)
	if err != nil {
		return types.StoreStats{}, fmt.Errorf("count: %w", err)
	}
	return st, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil && !errors.Is(err, sql.ErrConnDone) {
		return fmt.Errorf("close sqlite: %w", err)
	}
	return nil
}

func (s *SQLiteStore) query(ctx context.Context, where string, args ...any) ([]aggregate.Record, error) {
	cols := append(append([]string(nil), identityColumns...), valueColumns()...)
	q := fmt.Sprintf(`SELECT %s FROM player_match_stats %s ORDER BY match_id, position`, strings.Join(cols, ", "), where)
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var out []aggregate.Record
	for rows.Next() {
		var (
			r        aggregate.Record
			entity   string
			side     string
			position int
			team     sql.NullString
			name     sql.NullString
			dist     = make([]float64, len(possession.Buckets))
			tm       = make([]float64, len(possession.Buckets))
		)
		dest := []any{&r.MatchID, &r.PlayerID, &entity, &team, &side, &name, &position}
		for i := range dist {
			dest = append(dest, &dist[i])
		}
		for i := range tm {
			dest = append(dest, &tm[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		r.Entity = model.EntityID(entity)
		r.Team = team.String
		r.Side = model.ParseSide(side)
		r.Name = name.String
		r.Metrics = aggregate.NewMetrics(possession.PartitionFromVector(dist), possession.PartitionFromVector(tm))
		out = append(out, r)
	}
	return out, rows.Err()
}
