// Package reshape turns per-frame lists of tracked-object records into an
// indexed table keyed by frame and entity.
package reshape

import (
	"context"
	"fmt"
	"sort"

	"github.com/okian/movestat/internal/domain/model"
)

// ctxCheckEvery bounds how many frames are processed between ctx checks.
const ctxCheckEvery = 4096

// Row is one retained frame.
type Row struct {
	// Index is the row position after null-time frames were dropped.
	Index int
	// Source is the frame number reported by the data provider.
	Source  int64
	Period  int
	Clock   string
	Elapsed float64

	Observations map[model.EntityID]model.Observation
	// Players lists the distinct roster players observed, sorted.
	Players []model.EntityID

	// Holder is the possession holder, empty when nobody holds the ball.
	Holder         model.EntityID
	PossessionSide model.Side

	// DataLength is the number of raw records in the frame.
	DataLength int

	players map[model.EntityID]struct{}
}

// HasPlayer reports whether the roster player was observed in this row.
func (r *Row) HasPlayer(e model.EntityID) bool {
	_, ok := r.players[e]
	return ok
}

// NumPlayersCaptured is the number of distinct roster players observed.
func (r *Row) NumPlayersCaptured() int { return len(r.Players) }

// PeriodSpan is the half-open row range [Start, End) of one period.
type PeriodSpan struct {
	Period     int
	Start, End int
}

// Len is the number of rows in the span.
func (p PeriodSpan) Len() int { return p.End - p.Start }

// Table is the reshaped match.
type Table struct {
	Rows []Row
	// Dropped counts frames removed because their time was null.
	Dropped int

	entities map[model.EntityID]struct{}
}

// Entities lists every identity observed in any row, sorted.
func (t *Table) Entities() []model.EntityID {
	out := make([]model.EntityID, 0, len(t.entities))
	for e := range t.entities {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Periods splits the rows into contiguous runs of equal period, in order.
func (t *Table) Periods() []PeriodSpan {
	var spans []PeriodSpan
	for i := range t.Rows {
		p := t.Rows[i].Period
		if n := len(spans); n > 0 && spans[n-1].Period == p {
			spans[n-1].End = i + 1
			continue
		}
		spans = append(spans, PeriodSpan{Period: p, Start: i, End: i + 1})
	}
	return spans
}

// Reshape builds a Table from raw frames. Frames with a null time are
// dropped and the remaining rows are renumbered from zero.
func Reshape(ctx context.Context, roster *model.Roster, frames []model.RawFrame) (*Table, error) {
	t := &Table{
		Rows:     make([]Row, 0, len(frames)),
		entities: make(map[model.EntityID]struct{}),
	}
	for i := range frames {
		if i%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("reshape: %w", err)
			}
		}
		f := &frames[i]
		if f.Time == nil {
			t.Dropped++
			continue
		}
		row, err := buildRow(roster, f, len(t.Rows), i)
		if err != nil {
			return nil, err
		}
		for e := range row.Observations {
			t.entities[e] = struct{}{}
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func buildRow(roster *model.Roster, f *model.RawFrame, index, pos int) (Row, error) {
	elapsed, err := model.ParseClock(*f.Time)
	if err != nil {
		return Row{}, model.NewDataError(pos, "time %q: %v", *f.Time, err)
	}
	if f.Period == nil || (*f.Period != 1 && *f.Period != 2) {
		return Row{}, model.NewDataError(pos, "period must be 1 or 2")
	}

	row := Row{
		Index:        index,
		Source:       f.Frame,
		Period:       *f.Period,
		Clock:        *f.Time,
		Elapsed:      elapsed,
		Observations: make(map[model.EntityID]model.Observation, len(f.Data)),
		DataLength:   len(f.Data),
		players:      make(map[model.EntityID]struct{}),
	}
	if f.Possession.TrackableObject != nil {
		row.Holder = model.TrackableEntity(*f.Possession.TrackableObject)
	}
	if f.Possession.Group != nil {
		row.PossessionSide = model.ParseSide(*f.Possession.Group)
	}

	for j := range f.Data {
		obs, err := observe(roster, &f.Data[j])
		if err != nil {
			return Row{}, model.NewDataError(pos, "record %d: %v", j, err)
		}
		// Duplicate records of one identity collapse; the last one wins.
		row.Observations[obs.Entity] = obs
		if _, ok := roster.Player(obs.Entity); ok {
			row.players[obs.Entity] = struct{}{}
		}
	}

	row.Players = make([]model.EntityID, 0, len(row.players))
	for e := range row.players {
		row.Players = append(row.Players, e)
	}
	sort.Slice(row.Players, func(a, b int) bool { return row.Players[a] < row.Players[b] })
	return row, nil
}

func observe(roster *model.Roster, rec *model.RawObservation) (model.Observation, error) {
	var obs model.Observation
	switch {
	case rec.TrackableObject != nil:
		obs.Entity = model.TrackableEntity(*rec.TrackableObject)
	case rec.GroupName != nil && *rec.GroupName != "":
		obs.Entity = model.GroupEntity(*rec.GroupName)
	default:
		return obs, fmt.Errorf("record has neither trackable_object nor group_name")
	}

	if rec.X != nil && rec.Y != nil {
		obs.X, obs.Y = *rec.X, *rec.Y
		obs.HasPosition = true
	}
	if obs.Entity == roster.Ball && rec.Z != nil {
		z := *rec.Z
		obs.Z = &z
	}
	if rec.TrackID != nil {
		id := *rec.TrackID
		obs.TrackID = &id
	}

	obs.Side = roster.Side(obs.Entity)
	if rec.GroupName != nil {
		if s := model.ParseSide(*rec.GroupName); s != model.SideNone {
			obs.Side = s
		}
	}
	return obs, nil
}
