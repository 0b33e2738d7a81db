// Package pipeline runs a full devrank analysis: collect history, classify
// changes, aggregate developers, rate them and assemble the report.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Sumatoshi-tech/devrank/pkg/devstats"
	"github.com/Sumatoshi-tech/devrank/pkg/gitlib"
	"github.com/Sumatoshi-tech/devrank/pkg/history"
	"github.com/Sumatoshi-tech/devrank/pkg/observability"
	"github.com/Sumatoshi-tech/devrank/pkg/rating"
	"github.com/Sumatoshi-tech/devrank/pkg/report"
	"github.com/Sumatoshi-tech/devrank/pkg/significance"
)

// Stage names used for spans and the stage-duration histogram.
const (
	StageWeights   = "weights"
	StageCollect   = "collect"
	StageClassify  = "classify"
	StageAggregate = "aggregate"
	StageRate      = "rate"
	StageReport    = "report"
)

// Config is the immutable input of one run.
type Config struct {
	Repository          string
	ToolVersion         string
	Significance        significance.Config
	CommitTypeWeighting bool
	Aggregation         devstats.Config
	Shards              int
	WeightSources       rating.Sources
}

// Runner executes analyses. The zero value is not usable; call New.
type Runner struct {
	logger  *slog.Logger
	tracer  trace.Tracer
	metrics *observability.AnalysisMetrics
	now     func() time.Time
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the run logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithTracer sets the tracer used for stage spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(r *Runner) {
		if tracer != nil {
			r.tracer = tracer
		}
	}
}

// WithMetrics records each run on am.
func WithMetrics(am *observability.AnalysisMetrics) Option {
	return func(r *Runner) { r.metrics = am }
}

// WithClock overrides the report timestamp source.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		if now != nil {
			r.now = now
		}
	}
}

// New creates a Runner.
func New(opts ...Option) *Runner {
	r := &Runner{
		logger: slog.New(slog.DiscardHandler),
		tracer: nooptrace.NewTracerProvider().Tracer("devrank"),
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// collectStatser is implemented by sources that report collection counters.
type collectStatser interface {
	Stats() gitlib.CollectStats
}

// run carries per-run state between stages.
type run struct {
	*Runner

	stats observability.RunStats
}

// Run executes every stage against src. Weights are resolved first so an
// invalid weight fails before any history is read.
func (r *Runner) Run(ctx context.Context, src history.Source, cfg Config) (rep *report.Report, err error) {
	started := time.Now()
	st := &run{Runner: r}

	ctx, span := r.tracer.Start(ctx, "devrank.run", trace.WithAttributes(attribute.String("repository", cfg.Repository)))

	defer func() {
		st.stats.Duration = time.Since(started)
		st.stats.Failed = err != nil
		r.metrics.RecordRun(ctx, st.stats)

		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}

		span.End()
	}()

	var (
		weights rating.Weights
		diag    rating.Diagnostics
	)

	err = st.stage(ctx, StageWeights, func(context.Context) error {
		var resolveErr error

		weights, diag, resolveErr = rating.Resolve(cfg.WeightSources, r.logger)

		return resolveErr
	})
	if err != nil {
		return nil, err
	}

	var snap *history.Snapshot

	err = st.stage(ctx, StageCollect, func(stageCtx context.Context) error {
		var collectErr error

		snap, collectErr = src.Collect(stageCtx)
		if snap == nil {
			snap = history.NewSnapshot()
		}

		return collectErr
	})
	if err != nil {
		return nil, err
	}

	st.recordCollect(src, snap)

	_ = st.stage(ctx, StageClassify, func(context.Context) error {
		classifier := significance.New(cfg.Significance, significance.WithLogger(r.logger))
		snap = significance.Annotate(snap, classifier, cfg.CommitTypeWeighting)

		return nil
	})

	st.recordClassify(snap)

	var agg devstats.ShardedResult

	err = st.stage(ctx, StageAggregate, func(stageCtx context.Context) error {
		var aggErr error

		agg, aggErr = devstats.AggregateWithExclusions(stageCtx, snap, cfg.Aggregation, cfg.Shards,
			devstats.WithLogger(r.logger))

		return aggErr
	})
	if err != nil {
		return nil, err
	}

	st.recordAggregate(cfg, agg)

	var (
		team    devstats.TeamStats
		ranking rating.Ranking
		summary rating.Summary
	)

	_ = st.stage(ctx, StageRate, func(stageCtx context.Context) error {
		team = devstats.ComputeTeam(agg.Developers)
		ranking = rating.RateContext(stageCtx, agg.Developers, weights, r.logger)
		summary = rating.Summarize(ranking)

		return nil
	})

	_ = st.stage(ctx, StageReport, func(context.Context) error {
		rep = report.Build(report.Input{
			Repository:          cfg.Repository,
			ToolVersion:         cfg.ToolVersion,
			GeneratedAt:         r.now(),
			Developers:          agg.Developers,
			ExcludedDevelopers:  cfg.Aggregation.Exclude,
			UnmatchedExclusions: agg.UnmatchedExclusions,
			Ranking:             ranking,
			Weights:             weights,
			Diagnostics:         diag,
			Team:                team,
			Summary:             summary,
		})

		return nil
	})

	r.logger.InfoContext(ctx, "analysis complete",
		"developers", len(agg.Developers),
		"commits", st.stats.Commits,
		"duration", time.Since(started).Round(time.Millisecond),
	)

	return rep, nil
}

// stage runs fn inside a span and records its duration.
func (st *run) stage(ctx context.Context, name string, fn func(context.Context) error) error {
	ctx, span := st.tracer.Start(ctx, "devrank."+name)
	defer span.End()

	started := time.Now()
	err := fn(ctx)
	elapsed := time.Since(started)

	st.stats.Stages = append(st.stats.Stages, observability.StageTiming{Stage: name, Duration: elapsed})
	st.logger.DebugContext(ctx, "stage finished", "stage", name, "duration", elapsed)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		return fmt.Errorf("%s: %w", name, err)
	}

	return nil
}

func (st *run) recordCollect(src history.Source, snap *history.Snapshot) {
	st.stats.Commits = len(snap.Commits)

	if cs, ok := src.(collectStatser); ok {
		s := cs.Stats()
		st.stats.BlobCacheHits = s.BlobCacheHits
		st.stats.BlobCacheMisses = s.BlobCacheMisses
	}
}

func (st *run) recordClassify(snap *history.Snapshot) {
	for _, changes := range snap.Changes {
		st.stats.FileChanges += len(changes)

		for _, fc := range changes {
			if fc.Substantial {
				st.stats.SubstantialChanges++
			}
		}
	}
}

func (st *run) recordAggregate(cfg Config, agg devstats.ShardedResult) {
	st.stats.Developers = len(agg.Developers)
	st.stats.ExcludedDevelopers = max(len(cfg.Aggregation.Exclude)-len(agg.UnmatchedExclusions), 0)

	for _, dev := range agg.Developers {
		st.stats.SubstantialCommits += dev.SubstantialCommits
	}
}
