// Package service runs the movement-stats pipeline for one match and for
// fleets of matches.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okian/movestat/internal/adapters/source"
	"github.com/okian/movestat/internal/domain/aggregate"
	"github.com/okian/movestat/internal/domain/continuity"
	"github.com/okian/movestat/internal/domain/kinematics"
	"github.com/okian/movestat/internal/domain/model"
	"github.com/okian/movestat/internal/domain/possession"
	"github.com/okian/movestat/internal/domain/reconcile"
	"github.com/okian/movestat/internal/domain/reshape"
	"github.com/okian/movestat/pkg/logger"
	"github.com/okian/movestat/pkg/metrics"
)

// Stage names used in logs and latency metrics.
const (
	StageRoster    = "roster"
	StageReshape   = "reshape"
	StageKinematic = "kinematics"
	StageAttribute = "possession"
	StageReconcile = "reconcile"
)

// Result is the outcome of one match.
type Result struct {
	MatchID       int64
	Roster        *model.Roster
	Stats         map[model.EntityID]*possession.PlayerMatchStat
	Records       []aggregate.Record
	FramesRead    int
	FramesDropped int
	Steps         int
	Motions       int
}

// Pipeline runs the stages for one match. It holds configuration only, so
// one Pipeline may serve concurrent matches.
type Pipeline struct {
	window        int
	frameDuration float64
	slack         float64
	timeMode      kinematics.TimeMode
	tolerance     float64

	estimator *kinematics.Estimator
	checker   reconcile.Checker
	logger    logger.Logger
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithWindow sets the estimation window in frames.
func WithWindow(w int) PipelineOption {
	return func(p *Pipeline) { p.window = w }
}

// WithFrameDuration sets the nominal seconds per frame.
func WithFrameDuration(seconds float64) PipelineOption {
	return func(p *Pipeline) { p.frameDuration = seconds }
}

// WithContinuitySlack sets the time-bound slack in seconds.
func WithContinuitySlack(seconds float64) PipelineOption {
	return func(p *Pipeline) { p.slack = seconds }
}

// WithTimeMode selects per-frame or per-window time credit.
func WithTimeMode(mode kinematics.TimeMode) PipelineOption {
	return func(p *Pipeline) { p.timeMode = mode }
}

// WithTolerance sets the reconciliation tolerance.
func WithTolerance(eps float64) PipelineOption {
	return func(p *Pipeline) { p.tolerance = eps }
}

// WithPipelineLogger sets the pipeline logger.
func WithPipelineLogger(l logger.Logger) PipelineOption {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewPipeline validates the options and builds a Pipeline.
func NewPipeline(opts ...PipelineOption) (*Pipeline, error) {
	p := &Pipeline{
		window:        kinematics.DefaultWindow,
		frameDuration: continuity.DefaultFrameDuration,
		slack:         continuity.DefaultSlack,
		timeMode:      kinematics.TimeModeWindow,
		tolerance:     reconcile.DefaultTolerance,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = logger.Get().Named("pipeline")
	}
	if p.slack < 0 {
		return nil, fmt.Errorf("%w: negative continuity slack %v", kinematics.ErrInvalidWindow, p.slack)
	}

	tracker := continuity.NewTracker(continuity.WithTimeBound(p.frameDuration, p.slack))
	est, err := kinematics.NewEstimator(
		kinematics.WithWindow(p.window),
		kinematics.WithFrameDuration(p.frameDuration),
		kinematics.WithTimeMode(p.timeMode),
		kinematics.WithTracker(tracker),
		kinematics.WithDecisionObserver(func(d continuity.Decision) {
			metrics.RecordContinuityDecision(d.Predicate)
		}),
	)
	if err != nil {
		return nil, err
	}
	p.estimator = est
	p.checker = reconcile.NewChecker(p.tolerance)
	return p, nil
}

// Run executes every stage for match. A DataError or ReconciliationError
// halts the match.
func (p *Pipeline) Run(ctx context.Context, match model.Match) (Result, error) {
	log := p.logger.With(logger.Int64("match_id", match.ID))
	res := Result{MatchID: match.ID, FramesRead: len(match.Frames)}

	var roster *model.Roster
	err := p.stage(ctx, log, StageRoster, func() (err error) {
		roster, err = model.NewRoster(match.Meta)
		return err
	})
	if err != nil {
		return res, err
	}
	res.Roster = roster

	var table *reshape.Table
	err = p.stage(ctx, log, StageReshape, func() (err error) {
		table, err = reshape.Reshape(ctx, roster, match.Frames)
		return err
	})
	if err != nil {
		return res, err
	}
	res.FramesDropped = table.Dropped
	metrics.RecordFrames(res.FramesRead, res.FramesDropped)

	var steps []kinematics.Step
	err = p.stage(ctx, log, StageKinematic, func() (err error) {
		steps, err = p.estimator.Estimate(ctx, table)
		return err
	})
	if err != nil {
		return res, err
	}
	res.Steps = len(steps)
	res.Motions = kinematics.CountMotions(steps)
	metrics.RecordMotions(res.Motions)

	err = p.stage(ctx, log, StageAttribute, func() (err error) {
		res.Stats, err = possession.Attributor{}.Attribute(ctx, roster, steps)
		return err
	})
	if err != nil {
		return res, err
	}

	err = p.stage(ctx, log, StageReconcile, func() error {
		return p.checker.Check(ctx, res.Stats)
	})
	if err != nil {
		if errors.Is(err, reconcile.ErrReconciliation) {
			metrics.RecordReconciliationFailure()
		}
		return res, err
	}

	res.Records = aggregate.NewRecords(match.ID, roster, res.Stats)
	for field, n := range aggregate.CountUndefined(res.Records) {
		for i := 0; i < n; i++ {
			metrics.RecordUndefinedSpeed(field)
		}
	}

	var dist float64
	for i := range res.Records {
		dist += res.Records[i].Dist.Total
	}
	log.Info(ctx, "match processed",
		logger.Int("frames", res.FramesRead),
		logger.Int("dropped", res.FramesDropped),
		logger.Int("motions", res.Motions),
		logger.Int("players", len(res.Records)),
		logger.Float64("dist", dist),
	)
	return res, nil
}

func (p *Pipeline) stage(ctx context.Context, log logger.Logger, name string, fn func() error) error {
	start := time.Now()
	err := fn()
	elapsed := time.Since(start)
	metrics.RecordStageLatency(name, float64(elapsed.Microseconds())/1000)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	log.Debug(ctx, "stage done", logger.String("stage", name), logger.Duration("elapsed", elapsed))
	return nil
}

// FailureReason classifies an error for metrics.
func FailureReason(err error) string {
	switch {
	case errors.Is(err, model.ErrData):
		return "data"
	case errors.Is(err, reconcile.ErrReconciliation):
		return "reconciliation"
	case errors.Is(err, source.ErrSourceMissing):
		return "source"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "other"
	}
}
