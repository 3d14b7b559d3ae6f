package service

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/movestat/internal/adapters/mq/queue"
	"github.com/okian/movestat/internal/adapters/mq/worker"
	"github.com/okian/movestat/internal/adapters/repository"
	"github.com/okian/movestat/internal/domain/aggregate"
	"github.com/okian/movestat/internal/domain/dedupe"
	"github.com/okian/movestat/internal/domain/model"
	"github.com/okian/movestat/pkg/logger"
	"github.com/okian/movestat/pkg/metrics"
)

// Loader supplies matches by id.
type Loader interface {
	Load(ctx context.Context, id int64) (model.Match, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context, id int64) (model.Match, error)

func (f LoaderFunc) Load(ctx context.Context, id int64) (model.Match, error) { return f(ctx, id) }

// Failure is a match that did not complete.
type Failure struct {
	MatchID int64
	Seq     int
	Err     error
}

// Report is the outcome of a fleet run.
type Report struct {
	RunID string
	// Results are the completed matches in submission order.
	Results  []Result
	Failures []Failure
	// Skipped lists match ids submitted more than once.
	Skipped  []int64
	Averages []aggregate.Averaged
	Elapsed  time.Duration
}

// Records concatenates the records of every completed match.
func (r *Report) Records() []aggregate.Record {
	var out []aggregate.Record
	for i := range r.Results {
		out = append(out, r.Results[i].Records...)
	}
	return out
}

// Service runs the pipeline over many matches with a bounded queue and a
// worker pool. Every match runs in isolation; only the final aggregation
// sees more than one match.
type Service struct {
	loader   Loader
	pipeline *Pipeline
	store    repository.Store

	workerCount int
	queueSize   int
	failFast    bool

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the match queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithFailFast aborts the run at the first failed match.
func WithFailFast(on bool) Option {
	return func(s *Service) { s.failFast = on }
}

// WithStore persists each completed match.
func WithStore(store repository.Store) Option {
	return func(s *Service) { s.store = store }
}

// WithPipeline replaces the default pipeline.
func WithPipeline(p *Pipeline) Option {
	return func(s *Service) {
		if p != nil {
			s.pipeline = p
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service reading matches from loader.
func New(loader Loader, opts ...Option) (*Service, error) {
	s := &Service{
		loader:      loader,
		workerCount: runtime.NumCPU(),
		queueSize:   64,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if s.pipeline == nil {
		p, err := NewPipeline()
		if err != nil {
			return nil, err
		}
		s.pipeline = p
	}
	return s, nil
}

type collector struct {
	mu       sync.Mutex
	results  []Result
	seqs     []int
	failures []Failure
}

func (c *collector) ok(seq int, r Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results = append(c.results, r)
	c.seqs = append(c.seqs, seq)
}

func (c *collector) fail(f Failure) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failures = append(c.failures, f)
}

// Run processes ids and returns the per-match results, failures and
// cross-match averages. Without fail-fast, failed matches are reported and
// left out of the averages. With fail-fast the first failure cancels the
// run and Run returns an error wrapping ErrAborted and the failure.
func (s *Service) Run(ctx context.Context, ids []int64) (Report, error) {
	start := time.Now()
	report := Report{RunID: uuid.NewString()}
	log := s.logger.With(logger.String("run_id", report.RunID))
	log.Info(ctx, "run started",
		logger.Int("matches", len(ids)),
		logger.Int("workers", s.workerCount),
		logger.Bool("fail_fast", s.failFast),
	)

	runCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	col := &collector{}
	q := queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	pool := worker.NewPool(s.workerCount, q, worker.ProcessorFunc(func(ctx context.Context, job queue.Job) error {
		res, err := s.runOne(ctx, job.MatchID)
		if err != nil {
			metrics.RecordMatchFailed(FailureReason(err))
			col.fail(Failure{MatchID: job.MatchID, Seq: job.Seq, Err: err})
			if s.failFast {
				cancel(fmt.Errorf("%w: match %d: %w", ErrAborted, job.MatchID, err))
			}
			return err
		}
		metrics.RecordMatchProcessed()
		col.ok(job.Seq, res)
		return nil
	}))
	pool.Start(runCtx)

	seen := dedupe.NewInMemoryDeduper()
	for seq, id := range ids {
		if seen.SeenAndRecord(runCtx, id) {
			log.Warn(ctx, "duplicate match id skipped", logger.Int64("match_id", id))
			report.Skipped = append(report.Skipped, id)
			continue
		}
		if err := q.EnqueueWait(runCtx, queue.Job{MatchID: id, Seq: seq}); err != nil {
			seen.Unrecord(runCtx, id)
			break
		}
	}
	_ = q.Close()
	pool.Wait()

	report.Failures = col.failures
	sort.Slice(report.Failures, func(i, j int) bool { return report.Failures[i].Seq < report.Failures[j].Seq })
	order := make([]int, len(col.results))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return col.seqs[order[a]] < col.seqs[order[b]] })
	for _, i := range order {
		report.Results = append(report.Results, col.results[i])
	}
	report.Averages = aggregate.Average(report.Records())
	report.Elapsed = time.Since(start)

	if cause := context.Cause(runCtx); cause != nil && runCtx.Err() != nil {
		log.Error(ctx, "run aborted", logger.Error(cause))
		return report, cause
	}
	log.Info(ctx, "run finished",
		logger.Int("completed", len(report.Results)),
		logger.Int("failed", len(report.Failures)),
		logger.Int("skipped", len(report.Skipped)),
		logger.Duration("elapsed", report.Elapsed),
	)
	return report, nil
}

func (s *Service) runOne(ctx context.Context, id int64) (Result, error) {
	match, err := s.loader.Load(ctx, id)
	if err != nil {
		return Result{}, fmt.Errorf("load: %w", err)
	}
	res, err := s.pipeline.Run(ctx, match)
	if err != nil {
		return res, err
	}
	if s.store != nil && len(res.Records) > 0 {
		if err := s.store.SaveMatch(ctx, id, res.Records); err != nil {
			return res, fmt.Errorf("save: %w", err)
		}
	}
	return res, nil
}
