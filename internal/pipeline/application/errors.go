package application

import "errors"

var (
	// ErrNoSources is returned when a run is invoked with no sources at all.
	ErrNoSources = errors.New("pipeline: no sources")
	// ErrDuplicateSourceName is returned when two sources share a name.
	ErrDuplicateSourceName = errors.New("pipeline: duplicate source name")
	// ErrNoUsableSources is returned when every source failed; the run has no
	// data to merge or report.
	ErrNoUsableSources = errors.New("pipeline: no source produced usable data")
	// ErrSourceEmpty marks a source whose rows all aggregated away.
	ErrSourceEmpty = errors.New("pipeline: source produced no daily aggregates")
)
