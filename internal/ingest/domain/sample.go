package ingest

import "time"

// Sample is one normalized meter observation. Timestamp is the naive local
// time of the source; no timezone conversion is applied anywhere downstream.
type Sample struct {
	Timestamp time.Time

	// PowerW is the signed instantaneous active power in watts; nil when the
	// raw field was non-numeric (missing, not dropped).
	PowerW *float64

	// EnergyWh is the cumulative register reading in watt-hours; nil when the
	// source has no register column or the field was non-numeric.
	EnergyWh *float64
}

// Drop reasons counted by the parse report.
const (
	DropShortRow      = "short_row"
	DropBadTimestamp  = "bad_timestamp"
	DropBadSplit      = "bad_datetime_split"
	DropUnreadableRow = "unreadable_row"
)

// ParseReport accounts for every data row seen while parsing one source.
type ParseReport struct {
	RowsTotal   int
	RowsDropped int
	DropReasons map[string]int
}

// Drop records one dropped row under a reason.
func (r *ParseReport) Drop(reason string) {
	r.RowsDropped++
	if r.DropReasons == nil {
		r.DropReasons = make(map[string]int)
	}
	r.DropReasons[reason]++
}
