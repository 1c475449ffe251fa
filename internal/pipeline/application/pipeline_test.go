package application

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"testing"
	"time"

	analytics "msb-report/internal/analytics/domain"
	ingest "msb-report/internal/ingest/domain"
	report "msb-report/internal/report/domain"
)

// meterCSV renders a raw export with two junk preamble rows and 96
// fifteen-minute samples per day at a constant raw power.
func meterCSV(days []string, watts float64) []byte {
	var b strings.Builder
	b.WriteString("Meter Export,,\nSerial 0042,,\n")
	b.WriteString("Date,Time,PSum\n")
	for _, day := range days {
		for i := 0; i < 96; i++ {
			minutes := i * 15
			fmt.Fprintf(&b, "%s,%02d:%02d:00,%g\n", day, minutes/60, minutes%60, watts)
		}
	}
	return []byte(b.String())
}

func meterSource(name string, watts float64) Source {
	timeCol := ingest.NameRef("Time")
	return Source{
		Name: name,
		Descriptor: ingest.SourceDescriptor{
			HeaderOffset: 2,
			DateColumn:   ingest.NameRef("Date"),
			TimeColumn:   &timeCol,
			PowerColumn:  ingest.NameRef("PSum"),
			Negate:       true,
		},
		Data: meterCSV([]string{"01/05/2024", "02/05/2024"}, watts),
	}
}

func quietLogger() *log.Logger { return log.New(discard{}, "", 0) }

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func almostEqual(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestRunThreeSourcesTwoDays(t *testing.T) {
	for _, mode := range []analytics.MergeMode{analytics.MergeUnion, analytics.MergeIntersection} {
		pipeline, err := NewPipeline(Options{MergeMode: mode}, quietLogger())
		if err != nil {
			t.Fatalf("new pipeline: %v", err)
		}

		sources := []Source{
			meterSource("MSB 1", -4000),
			meterSource("MSB 2", -4000),
			meterSource("MSB 3", -4000),
		}
		result, err := pipeline.Run(context.Background(), sources)
		if err != nil {
			t.Fatalf("run (%s): %v", mode, err)
		}

		// All three sources share both days, so union and intersection agree.
		if len(result.Merged.Rows) != 2 {
			t.Fatalf("merged rows = %d, want 2", len(result.Merged.Rows))
		}
		for _, row := range result.Merged.Rows {
			for i, value := range row.Values {
				if !almostEqual(value, 4.0) {
					t.Fatalf("source %d = %v, want 4.0 kW", i, value)
				}
			}
			if !almostEqual(row.Total, 12.0) {
				t.Fatalf("total = %v, want 12.0 kW", row.Total)
			}
		}

		for _, source := range result.Sources {
			if source.Err != nil {
				t.Fatalf("source %s: %v", source.Name, source.Err)
			}
			if source.Report.RowsTotal != 192 || source.Report.RowsDropped != 0 {
				t.Fatalf("source %s report = %+v", source.Name, source.Report)
			}
		}

		wantSheets := []string{"MSB 1", "MSB 2", "MSB 3", "Total MSB", "Load Apportioning"}
		sheets := result.Workbook.Sheets()
		if len(sheets) != len(wantSheets) {
			t.Fatalf("sheets = %d, want %d", len(sheets), len(wantSheets))
		}
		for i, name := range wantSheets {
			if sheets[i].Name != name {
				t.Fatalf("sheet %d = %q, want %q", i, sheets[i].Name, name)
			}
		}

		total := result.Workbook.Sheet("Total MSB")
		day1 := time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)
		if total.At(1, 0).Number != float64(report.DaySerial(day1)) {
			t.Fatalf("total sheet date = %v", total.At(1, 0).Number)
		}
		if total.At(1, 1).Number != 4 || total.At(1, 4).Number != 12 {
			t.Fatalf("total sheet row = %v ... %v", total.At(1, 1).Number, total.At(1, 4).Number)
		}

		// Constant load: every hour of the profile averages 4.0 kW.
		if len(result.HourlyProfile) != 24 {
			t.Fatalf("hourly profile hours = %d, want 24", len(result.HourlyProfile))
		}
		for _, hour := range result.HourlyProfile {
			if !almostEqual(hour.MeanPowerKW, 4.0) {
				t.Fatalf("hour %d mean = %v, want 4.0 kW", hour.Hour, hour.MeanPowerKW)
			}
		}
	}
}

func TestRunMaxDemandKeepsNegativePeaks(t *testing.T) {
	pipeline, err := NewPipeline(Options{}, quietLogger())
	if err != nil {
		t.Fatalf("new pipeline: %v", err)
	}

	// A source kept as-is: constant -4000 W, so the true daily max is -4 kW.
	source := meterSource("MSB 1", -4000)
	source.Descriptor.Negate = false

	result, err := pipeline.Run(context.Background(), []Source{source})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, aggregate := range result.Sources[0].Aggregates {
		if !almostEqual(aggregate.MaxPowerKW, -4.0) {
			t.Fatalf("daily max = %v, want -4.0 kW", aggregate.MaxPowerKW)
		}
	}

	sheet := result.Workbook.Sheet("Load Apportioning")
	demandCol := 2 + len(result.Merged.Sources)
	for r := range result.Merged.Rows {
		if got := sheet.At(2+r, demandCol).Number; !almostEqual(got, -4.0) {
			t.Fatalf("max demand row %d = %v, want the daily max -4.0", r, got)
		}
	}
}

func TestRunPartialResults(t *testing.T) {
	pipeline, err := NewPipeline(Options{}, quietLogger())
	if err != nil {
		t.Fatalf("new pipeline: %v", err)
	}

	broken := meterSource("MSB 2", -4000)
	broken.Data = []byte("Date,Time\ngarbage\n") // header misses the power column

	result, err := pipeline.Run(context.Background(), []Source{
		meterSource("MSB 1", -4000),
		broken,
	})
	if err != nil {
		t.Fatalf("one failed source must not fail the run: %v", err)
	}

	if result.Sources[0].Err != nil {
		t.Fatalf("MSB 1 should succeed: %v", result.Sources[0].Err)
	}
	if result.Sources[1].Err == nil {
		t.Fatalf("MSB 2 should carry its failure")
	}
	if len(result.Merged.Sources) != 1 || result.Merged.Sources[0] != "MSB 1" {
		t.Fatalf("merged sources = %v, want only MSB 1", result.Merged.Sources)
	}
	if result.Workbook.Sheet("MSB 2") != nil {
		t.Fatalf("failed source must not get a sheet")
	}
}

func TestRunNoUsableSources(t *testing.T) {
	pipeline, err := NewPipeline(Options{}, quietLogger())
	if err != nil {
		t.Fatalf("new pipeline: %v", err)
	}

	broken := meterSource("MSB 1", -4000)
	broken.Data = []byte("junk")
	result, err := pipeline.Run(context.Background(), []Source{broken})
	if !errors.Is(err, ErrNoUsableSources) {
		t.Fatalf("error = %v, want ErrNoUsableSources", err)
	}
	if result == nil || len(result.Sources) != 1 || result.Sources[0].Err == nil {
		t.Fatalf("per-source failure must still be reported")
	}
}

func TestRunValidation(t *testing.T) {
	pipeline, err := NewPipeline(Options{}, quietLogger())
	if err != nil {
		t.Fatalf("new pipeline: %v", err)
	}

	if _, err := pipeline.Run(context.Background(), nil); !errors.Is(err, ErrNoSources) {
		t.Fatalf("error = %v, want ErrNoSources", err)
	}
	dup := []Source{meterSource("MSB 1", -1), meterSource("MSB 1", -1)}
	if _, err := pipeline.Run(context.Background(), dup); !errors.Is(err, ErrDuplicateSourceName) {
		t.Fatalf("error = %v, want ErrDuplicateSourceName", err)
	}
	if _, err := NewPipeline(Options{MergeMode: "outer"}, nil); !errors.Is(err, analytics.ErrInvalidMergeMode) {
		t.Fatalf("error = %v, want ErrInvalidMergeMode", err)
	}
}

func TestRunIdempotent(t *testing.T) {
	sources := []Source{meterSource("MSB 1", -4000), meterSource("MSB 2", -2000)}

	run := func() *RunResult {
		pipeline, err := NewPipeline(Options{}, quietLogger())
		if err != nil {
			t.Fatalf("new pipeline: %v", err)
		}
		result, err := pipeline.Run(context.Background(), sources)
		if err != nil {
			t.Fatalf("run: %v", err)
		}
		return result
	}

	first, second := run(), run()
	if len(first.Merged.Rows) != len(second.Merged.Rows) {
		t.Fatalf("row counts differ: %d vs %d", len(first.Merged.Rows), len(second.Merged.Rows))
	}
	for i := range first.Merged.Rows {
		a, b := first.Merged.Rows[i], second.Merged.Rows[i]
		if !a.Day.Equal(b.Day) || a.Total != b.Total {
			t.Fatalf("row %d differs: %+v vs %+v", i, a, b)
		}
		for j := range a.Values {
			if a.Values[j] != b.Values[j] {
				t.Fatalf("row %d value %d differs", i, j)
			}
		}
	}

	for _, sheet := range first.Workbook.Sheets() {
		other := second.Workbook.Sheet(sheet.Name)
		if other == nil || other.RowCount() != sheet.RowCount() {
			t.Fatalf("sheet %s differs between runs", sheet.Name)
		}
		for row := 0; row < sheet.RowCount(); row++ {
			for col := 0; col < sheet.ColCount(row); col++ {
				if sheet.At(row, col) != other.At(row, col) {
					t.Fatalf("sheet %s cell (%d,%d) differs", sheet.Name, row, col)
				}
			}
		}
	}
}
