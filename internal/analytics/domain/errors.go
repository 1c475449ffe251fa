package analytics

import "errors"

var (
	// ErrInvalidAggregationMode is returned when a forced mode is unsupported.
	ErrInvalidAggregationMode = errors.New("analytics: invalid aggregation mode")
	// ErrInvalidMergeMode is returned when the day-set merge mode is unsupported.
	ErrInvalidMergeMode = errors.New("analytics: invalid merge mode")
	// ErrNoSeries is returned when the merger receives no input series.
	ErrNoSeries = errors.New("analytics: no series to merge")
	// ErrDuplicateSeriesName is returned when two series share a name.
	ErrDuplicateSeriesName = errors.New("analytics: duplicate series name")
)
