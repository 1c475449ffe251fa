package application

import (
	"context"
	"fmt"
	"log"
	"time"

	analytics "msb-report/internal/analytics/domain"
	ingestapp "msb-report/internal/ingest/application"
	ingest "msb-report/internal/ingest/domain"
	"msb-report/internal/observability/metrics"
	reportapp "msb-report/internal/report/application"
	report "msb-report/internal/report/domain"
)

// Source is one raw export ready to run: its name, its descriptor, and the
// fully uploaded file bytes.
type Source struct {
	Name       string
	Descriptor ingest.SourceDescriptor
	Data       []byte
}

// Options configures a run. Zero values mean union merge, auto aggregation
// mode, and the default report layout.
type Options struct {
	MergeMode analytics.MergeMode
	Mode      analytics.AggregationMode
	Report    reportapp.Options
}

// SourceResult reports one source's outcome. A failed source carries its
// error; the run continues with the others.
type SourceResult struct {
	Name       string
	Report     ingest.ParseReport
	Aggregates []analytics.DailyAggregate
	Err        error

	samples []ingest.Sample
}

// Samples returns the source's canonical samples when it succeeded.
func (r SourceResult) Samples() []ingest.Sample { return r.samples }

// Succeeded tells whether the source contributed data.
func (r SourceResult) Succeeded() bool { return r.Err == nil }

// RunResult is the full outcome of one batch run.
type RunResult struct {
	Sources  []SourceResult
	Merged   analytics.MergedTable
	Workbook *report.Workbook

	// HourlyProfile is the hour-of-day load profile over every usable
	// source's samples, rendered in the PDF summary.
	HourlyProfile []analytics.HourlyAggregate
}

// Pipeline runs the batch: per-source parse and aggregation (independent, no
// shared state), one merge point, then report assembly.
type Pipeline struct {
	options   Options
	assembler *reportapp.Assembler
	logger    *log.Logger
}

// NewPipeline constructs a pipeline, validating the configured modes.
func NewPipeline(options Options, logger *log.Logger) (*Pipeline, error) {
	if options.MergeMode == "" {
		options.MergeMode = analytics.MergeUnion
	}
	if !options.MergeMode.IsValid() {
		return nil, analytics.ErrInvalidMergeMode
	}
	if options.Mode == "" {
		options.Mode = analytics.ModeAuto
	}
	if !options.Mode.IsValid() {
		return nil, analytics.ErrInvalidAggregationMode
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Pipeline{
		options:   options,
		assembler: reportapp.NewAssembler(options.Report),
		logger:    logger,
	}, nil
}

// MergeMode exposes the active day-set policy.
func (p *Pipeline) MergeMode() analytics.MergeMode { return p.options.MergeMode }

// Run processes all sources with partial-result semantics: per-source
// failures are recorded and skipped, and the run fails only when zero
// sources produced data.
func (p *Pipeline) Run(ctx context.Context, sources []Source) (*RunResult, error) {
	started := time.Now()
	result, err := p.run(ctx, sources)
	outcome := metrics.ResultSuccess
	if err != nil {
		outcome = metrics.ResultError
	}
	metrics.ObservePipelineRun(outcome, time.Since(started))
	return result, err
}

func (p *Pipeline) run(ctx context.Context, sources []Source) (*RunResult, error) {
	if len(sources) == 0 {
		return nil, ErrNoSources
	}
	names := make(map[string]bool, len(sources))
	for _, source := range sources {
		if names[source.Name] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateSourceName, source.Name)
		}
		names[source.Name] = true
	}

	result := &RunResult{Sources: make([]SourceResult, 0, len(sources))}
	var series []analytics.DailySeries
	var assembled []reportapp.SourceData
	var allSamples []ingest.Sample
	maxDemand := make(map[time.Time]float64)
	demandSeen := make(map[time.Time]bool)

	for _, source := range sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sourceResult := p.runSource(source)
		result.Sources = append(result.Sources, sourceResult)
		if sourceResult.Err != nil {
			p.logger.Printf("source %s skipped: %v", source.Name, sourceResult.Err)
			continue
		}

		series = append(series, analytics.NewDailySeries(source.Name, sourceResult.Aggregates))
		assembled = append(assembled, reportapp.SourceData{Name: source.Name, Samples: sourceResult.samples})
		allSamples = append(allSamples, sourceResult.samples...)
		for _, aggregate := range sourceResult.Aggregates {
			if aggregate.SampleCount == 0 {
				continue
			}
			// First sighting of the day always records, so a negative daily
			// max is never floored at the map's zero value.
			if !demandSeen[aggregate.Day] || aggregate.MaxPowerKW > maxDemand[aggregate.Day] {
				maxDemand[aggregate.Day] = aggregate.MaxPowerKW
				demandSeen[aggregate.Day] = true
			}
		}
	}

	if len(series) == 0 {
		return result, ErrNoUsableSources
	}

	merged, err := analytics.Merge(series, p.options.MergeMode)
	if err != nil {
		return result, err
	}
	result.Merged = merged
	result.HourlyProfile = analytics.AggregateHourly(allSamples)
	result.Workbook = p.assembler.Assemble(reportapp.Input{
		Sources:     assembled,
		Merged:      merged,
		MaxDemandKW: maxDemand,
	})
	return result, nil
}

func (p *Pipeline) runSource(source Source) SourceResult {
	started := time.Now()
	sourceResult := SourceResult{Name: source.Name}

	samples, parseReport, err := ingestapp.ParseSource(source.Data, source.Descriptor)
	sourceResult.Report = parseReport
	for reason, count := range parseReport.DropReasons {
		metrics.AddRowsDropped(reason, count)
	}
	if err != nil {
		sourceResult.Err = fmt.Errorf("parse: %w", err)
		metrics.ObserveSourceParse(metrics.ResultError, time.Since(started))
		return sourceResult
	}

	aggregates, err := analytics.AggregateDaily(samples, p.options.Mode)
	if err != nil {
		sourceResult.Err = fmt.Errorf("aggregate: %w", err)
		metrics.ObserveSourceParse(metrics.ResultError, time.Since(started))
		return sourceResult
	}
	if len(aggregates) == 0 {
		sourceResult.Err = ErrSourceEmpty
		metrics.ObserveSourceParse(metrics.ResultError, time.Since(started))
		return sourceResult
	}

	sourceResult.Aggregates = aggregates
	sourceResult.samples = samples
	metrics.ObserveSourceParse(metrics.ResultSuccess, time.Since(started))
	return sourceResult
}
