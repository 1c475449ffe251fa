package analytics

import (
	"sort"
	"time"
)

// MergeMode is the day-set policy when combining sources.
type MergeMode string

const (
	// MergeUnion keeps every day any source saw; missing sources fill with 0,
	// so row totals can undercount partially covered days.
	MergeUnion MergeMode = "union"
	// MergeIntersection keeps only days every source saw, guaranteeing
	// comparable totals at the cost of dropping partial days.
	MergeIntersection MergeMode = "intersection"
)

// IsValid checks the mode is one of the supported values.
func (m MergeMode) IsValid() bool {
	switch m {
	case MergeUnion, MergeIntersection:
		return true
	default:
		return false
	}
}

// DailySeries is one source's day-keyed value series.
type DailySeries struct {
	Name   string
	Values map[time.Time]float64
}

// NewDailySeries builds a series from daily aggregates, preferring the
// register-delta energy figure and falling back to the power mean.
func NewDailySeries(name string, aggregates []DailyAggregate) DailySeries {
	values := make(map[time.Time]float64, len(aggregates))
	for _, a := range aggregates {
		if a.EnergyKWh != nil {
			values[a.Day] = *a.EnergyKWh
			continue
		}
		values[a.Day] = a.MeanPowerKW
	}
	return DailySeries{Name: name, Values: values}
}

// MergedRow is one calendar day across all sources. Values are ordered like
// the table's Sources; missing entries are explicit zeros under union mode.
type MergedRow struct {
	Day    time.Time
	Values []float64
	Total  float64
}

// MergedTable is the aligned cross-source result. Mode records which day-set
// policy produced it so callers never mix the two.
type MergedTable struct {
	Mode    MergeMode
	Sources []string
	Rows    []MergedRow

	// ColumnTotals sums each source column over all rows; GrandTotal sums the
	// row totals.
	ColumnTotals []float64
	GrandTotal   float64
}

// Merge aligns N day-keyed series on the chosen day set, sorted ascending by
// day, and computes row and column totals.
func Merge(series []DailySeries, mode MergeMode) (MergedTable, error) {
	if !mode.IsValid() {
		return MergedTable{}, ErrInvalidMergeMode
	}
	if len(series) == 0 {
		return MergedTable{}, ErrNoSeries
	}
	seen := make(map[string]bool, len(series))
	for _, s := range series {
		if seen[s.Name] {
			return MergedTable{}, ErrDuplicateSeriesName
		}
		seen[s.Name] = true
	}

	days := mergedDays(series, mode)

	table := MergedTable{
		Mode:         mode,
		Sources:      make([]string, len(series)),
		Rows:         make([]MergedRow, 0, len(days)),
		ColumnTotals: make([]float64, len(series)),
	}
	for i, s := range series {
		table.Sources[i] = s.Name
	}

	for _, day := range days {
		row := MergedRow{Day: day, Values: make([]float64, len(series))}
		for i, s := range series {
			value := s.Values[day] // zero-fill when absent
			row.Values[i] = value
			row.Total += value
			table.ColumnTotals[i] += value
		}
		table.GrandTotal += row.Total
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

func mergedDays(series []DailySeries, mode MergeMode) []time.Time {
	counts := make(map[time.Time]int)
	for _, s := range series {
		for day := range s.Values {
			counts[day]++
		}
	}

	days := make([]time.Time, 0, len(counts))
	for day, count := range counts {
		if mode == MergeIntersection && count < len(series) {
			continue
		}
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}
