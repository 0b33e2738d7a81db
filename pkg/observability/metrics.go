package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricRunsTotal        = "devrank.runs.total"
	metricRunDuration      = "devrank.run.duration.seconds"
	metricStageDuration    = "devrank.stage.duration.seconds"
	metricCommitsTotal     = "devrank.commits.total"
	metricSubstantialTotal = "devrank.commits.substantial.total"
	metricChangesTotal     = "devrank.changes.total"
	metricSubChangesTotal  = "devrank.changes.substantial.total"
	metricDevelopersTotal  = "devrank.developers.total"
	metricExcludedTotal    = "devrank.developers.excluded.total"
	metricCacheHitsTotal   = "devrank.blob_cache.hits.total"
	metricCacheMissesTotal = "devrank.blob_cache.misses.total"

	attrStage  = "stage"
	attrStatus = "status"

	statusOK    = "ok"
	statusError = "error"
)

// durationBucketBoundaries covers 10ms to 600s.
var durationBucketBoundaries = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600}

// metricBuilder accumulates instrument creation errors so a batch of
// instruments needs a single error check.
type metricBuilder struct {
	meter metric.Meter
	err   error
}

func newMetricBuilder(mt metric.Meter) *metricBuilder {
	return &metricBuilder{meter: mt}
}

func (b *metricBuilder) counter(name, desc, unit string) metric.Int64Counter {
	c, err := b.meter.Int64Counter(name, metric.WithDescription(desc), metric.WithUnit(unit))
	b.setErr(name, err)

	return c
}

func (b *metricBuilder) histogram(name, desc, unit string, bounds ...float64) metric.Float64Histogram {
	opts := []metric.Float64HistogramOption{
		metric.WithDescription(desc),
		metric.WithUnit(unit),
	}

	if len(bounds) > 0 {
		opts = append(opts, metric.WithExplicitBucketBoundaries(bounds...))
	}

	h, err := b.meter.Float64Histogram(name, opts...)
	b.setErr(name, err)

	return h
}

func (b *metricBuilder) setErr(name string, err error) {
	if err != nil && b.err == nil {
		b.err = fmt.Errorf("create %s: %w", name, err)
	}
}

// StageTiming is the wall time of one pipeline stage.
type StageTiming struct {
	Stage    string
	Duration time.Duration
}

// RunStats summarizes one analysis run.
type RunStats struct {
	Commits            int
	SubstantialCommits int
	FileChanges        int
	SubstantialChanges int
	Developers         int
	ExcludedDevelopers int
	BlobCacheHits      int64
	BlobCacheMisses    int64
	Stages             []StageTiming
	Duration           time.Duration
	Failed             bool
}

// AnalysisMetrics holds the run instruments.
type AnalysisMetrics struct {
	runs          metric.Int64Counter
	runDuration   metric.Float64Histogram
	stageDuration metric.Float64Histogram
	commits       metric.Int64Counter
	substantial   metric.Int64Counter
	changes       metric.Int64Counter
	subChanges    metric.Int64Counter
	developers    metric.Int64Counter
	excluded      metric.Int64Counter
	cacheHits     metric.Int64Counter
	cacheMisses   metric.Int64Counter
}

// NewAnalysisMetrics creates the run instruments on mt.
func NewAnalysisMetrics(mt metric.Meter) (*AnalysisMetrics, error) {
	b := newMetricBuilder(mt)

	am := &AnalysisMetrics{
		runs:          b.counter(metricRunsTotal, "Analysis runs by status", "{run}"),
		runDuration:   b.histogram(metricRunDuration, "End-to-end run duration", "s", durationBucketBoundaries...),
		stageDuration: b.histogram(metricStageDuration, "Per-stage duration", "s", durationBucketBoundaries...),
		commits:       b.counter(metricCommitsTotal, "Commits analyzed", "{commit}"),
		substantial:   b.counter(metricSubstantialTotal, "Commits classified as substantial", "{commit}"),
		changes:       b.counter(metricChangesTotal, "File changes classified", "{change}"),
		subChanges:    b.counter(metricSubChangesTotal, "File changes classified as substantial", "{change}"),
		developers:    b.counter(metricDevelopersTotal, "Developers rated", "{developer}"),
		excluded:      b.counter(metricExcludedTotal, "Developers removed by exclusion", "{developer}"),
		cacheHits:     b.counter(metricCacheHitsTotal, "Blob cache hits", "{hit}"),
		cacheMisses:   b.counter(metricCacheMissesTotal, "Blob cache misses", "{miss}"),
	}

	if b.err != nil {
		return nil, b.err
	}

	return am, nil
}

// RecordRun records one completed run. Safe to call on a nil receiver.
func (am *AnalysisMetrics) RecordRun(ctx context.Context, stats RunStats) {
	if am == nil {
		return
	}

	status := statusOK
	if stats.Failed {
		status = statusError
	}

	am.runs.Add(ctx, 1, metric.WithAttributes(attribute.String(attrStatus, status)))
	am.runDuration.Record(ctx, stats.Duration.Seconds())

	for _, st := range stats.Stages {
		am.stageDuration.Record(ctx, st.Duration.Seconds(), metric.WithAttributes(attribute.String(attrStage, st.Stage)))
	}

	am.commits.Add(ctx, int64(stats.Commits))
	am.substantial.Add(ctx, int64(stats.SubstantialCommits))
	am.changes.Add(ctx, int64(stats.FileChanges))
	am.subChanges.Add(ctx, int64(stats.SubstantialChanges))
	am.developers.Add(ctx, int64(stats.Developers))
	am.excluded.Add(ctx, int64(stats.ExcludedDevelopers))
	am.cacheHits.Add(ctx, stats.BlobCacheHits)
	am.cacheMisses.Add(ctx, stats.BlobCacheMisses)
}
