// Package kinematics estimates per-frame player displacement and elapsed
// time from a reshaped match table.
package kinematics

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/okian/movestat/internal/domain/continuity"
	"github.com/okian/movestat/internal/domain/model"
	"github.com/okian/movestat/internal/domain/reshape"
)

// DefaultWindow is the default window length in frames.
const DefaultWindow = 10

// TimeMode selects the time credited to one estimate.
type TimeMode string

const (
	// TimeModeWindow credits the full window duration per estimate.
	TimeModeWindow TimeMode = "window"
	// TimeModeFrame credits one frame duration per estimate. It is only
	// valid with a window of one frame.
	TimeModeFrame TimeMode = "frame"
)

// Motion is one player's displacement estimate at a row.
type Motion struct {
	// Dist is the window displacement divided by the window length.
	Dist float64
	Time float64
	// Side is the player's side tag at the starting row.
	Side model.Side
}

// Step carries the estimates for one starting row with its possession
// context.
type Step struct {
	Row            int
	Period         int
	Holder         model.EntityID
	PossessionSide model.Side
	Motions        map[model.EntityID]Motion
}

// Estimator computes Steps from a Table.
type Estimator struct {
	window        int
	frameDuration float64
	timeMode      TimeMode
	tracker       *continuity.Tracker
	observe       func(continuity.Decision)
}

// NewEstimator validates the options and returns an Estimator.
func NewEstimator(opts ...Option) (*Estimator, error) {
	e := &Estimator{
		window:        DefaultWindow,
		frameDuration: continuity.DefaultFrameDuration,
		timeMode:      TimeModeWindow,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.window < 1 {
		return nil, fmt.Errorf("%w: window %d", ErrInvalidWindow, e.window)
	}
	if e.frameDuration <= 0 {
		return nil, fmt.Errorf("%w: frame duration %v", ErrInvalidWindow, e.frameDuration)
	}
	if e.timeMode != TimeModeFrame && e.timeMode != TimeModeWindow {
		return nil, fmt.Errorf("%w: time mode %q", ErrInvalidWindow, e.timeMode)
	}
	if e.timeMode == TimeModeFrame && e.window != 1 {
		return nil, fmt.Errorf("%w: time mode %q needs window 1, got %d", ErrInvalidWindow, e.timeMode, e.window)
	}
	if e.tracker == nil {
		e.tracker = continuity.NewTracker(continuity.WithTimeBound(e.frameDuration, continuity.DefaultSlack))
	}
	return e, nil
}

// Window returns the configured window length.
func (e *Estimator) Window() int { return e.window }

// Estimate processes each period independently and concatenates the
// results in period order. The last Window rows of each period produce no
// step.
func (e *Estimator) Estimate(ctx context.Context, table *reshape.Table) ([]Step, error) {
	var steps []Step
	for _, span := range table.Periods() {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("estimate period %d: %w", span.Period, err)
		}
		for i := span.Start; i+e.window < span.End; i++ {
			steps = append(steps, e.step(&table.Rows[i], &table.Rows[i+e.window]))
		}
	}
	return steps, nil
}

func (e *Estimator) step(from, to *reshape.Row) Step {
	s := Step{
		Row:            from.Index,
		Period:         from.Period,
		Holder:         from.Holder,
		PossessionSide: from.PossessionSide,
		Motions:        make(map[model.EntityID]Motion),
	}
	t := e.frameDuration
	if e.timeMode == TimeModeWindow {
		t = float64(e.window) * e.frameDuration
	}
	for _, p := range from.Players {
		if !to.HasPlayer(p) {
			continue
		}
		a, b := from.Observations[p], to.Observations[p]
		if !a.HasPosition || !b.HasPosition {
			continue
		}
		d := e.tracker.Decide(continuity.SpanBetween(p, from, to))
		if e.observe != nil {
			e.observe(d)
		}
		if !d.Continuous {
			continue
		}
		disp := r2.Norm(r2.Sub(r2.Vec{X: b.X, Y: b.Y}, r2.Vec{X: a.X, Y: a.Y}))
		s.Motions[p] = Motion{
			Dist: disp / float64(e.window),
			Time: t,
			Side: a.Side,
		}
	}
	return s
}

// CountMotions totals the motions across steps.
func CountMotions(steps []Step) int {
	n := 0
	for i := range steps {
		n += len(steps[i].Motions)
	}
	return n
}
