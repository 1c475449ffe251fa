package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "msbreport_"

	resultSuccess = "success"
	resultError   = "error"
)

var (
	registerOnce sync.Once

	sourceParses     *prometheus.CounterVec
	sourceParseTime  *prometheus.HistogramVec
	rowsDropped      *prometheus.CounterVec
	pipelineRuns     *prometheus.CounterVec
	pipelineRunTime  *prometheus.HistogramVec
	reportExports    *prometheus.CounterVec
	reportExportTime *prometheus.HistogramVec
)

// Init registers the pipeline metrics once.
func Init() {
	registerOnce.Do(func() {
		sourceParses = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "source_parses_total",
				Help: "Total source parses by result",
			},
			[]string{"result"},
		)
		sourceParseTime = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "source_parse_seconds",
				Help:    "Source parse latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)
		rowsDropped = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "rows_dropped_total",
				Help: "Total dropped input rows by reason",
			},
			[]string{"reason"},
		)
		pipelineRuns = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "pipeline_runs_total",
				Help: "Total pipeline runs by result",
			},
			[]string{"result"},
		)
		pipelineRunTime = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "pipeline_run_seconds",
				Help:    "Pipeline run latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)
		reportExports = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "report_exports_total",
				Help: "Total report exports by format and result",
			},
			[]string{"format", "result"},
		)
		reportExportTime = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "report_export_seconds",
				Help:    "Report export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format", "result"},
		)

		prometheus.MustRegister(
			sourceParses,
			sourceParseTime,
			rowsDropped,
			pipelineRuns,
			pipelineRunTime,
			reportExports,
			reportExportTime,
		)
	})
}

// ObserveSourceParse records one source parse by result.
func ObserveSourceParse(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if sourceParses != nil {
		sourceParses.WithLabelValues(result).Inc()
	}
	if sourceParseTime != nil {
		sourceParseTime.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// AddRowsDropped adds dropped-row counts by reason.
func AddRowsDropped(reason string, count int) {
	if count <= 0 {
		return
	}
	if reason == "" {
		reason = "unknown"
	}
	if rowsDropped != nil {
		rowsDropped.WithLabelValues(reason).Add(float64(count))
	}
}

// ObservePipelineRun records one full pipeline run by result.
func ObservePipelineRun(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if pipelineRuns != nil {
		pipelineRuns.WithLabelValues(result).Inc()
	}
	if pipelineRunTime != nil {
		pipelineRunTime.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// ObserveExport records one report serialization by format and result.
func ObserveExport(format, result string, duration time.Duration) {
	if format == "" {
		format = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if reportExports != nil {
		reportExports.WithLabelValues(format, result).Inc()
	}
	if reportExportTime != nil {
		reportExportTime.WithLabelValues(format, result).Observe(duration.Seconds())
	}
}

// Exported constants for callers.
const (
	ResultSuccess = resultSuccess
	ResultError   = resultError
)
