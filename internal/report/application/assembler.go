package application

import (
	"fmt"
	"math"
	"sort"
	"time"

	analytics "msb-report/internal/analytics/domain"
	ingest "msb-report/internal/ingest/domain"
	report "msb-report/internal/report/domain"
)

// Default sheet naming for the fixed output layout.
const (
	DefaultTotalSheetName        = "Total MSB"
	DefaultApportioningSheetName = "Load Apportioning"
	DefaultTotalColumnName       = "Total Building Load"
	DefaultRoundDecimals         = 3
)

// Options configures the output layout names and presentation rounding.
type Options struct {
	TotalSheetName        string
	ApportioningSheetName string
	TotalColumnName       string
	// RoundDecimals applies only here, as a presentation step; aggregates keep
	// full precision upstream.
	RoundDecimals int
}

// SourceData carries one source's canonical samples for its wide per-day sheet.
type SourceData struct {
	Name    string
	Samples []ingest.Sample
}

// Input is everything the assembler lays out. MaxDemandKW is handed in
// pre-computed (max across sources of the daily peak): the assembler is a
// pure layout transform.
type Input struct {
	Sources     []SourceData
	Merged      analytics.MergedTable
	MaxDemandKW map[time.Time]float64
}

// Assembler transforms merged aggregates into the fixed workbook layout.
type Assembler struct {
	options Options
}

// NewAssembler constructs an assembler with defaults filled in.
func NewAssembler(options Options) *Assembler {
	if options.TotalSheetName == "" {
		options.TotalSheetName = DefaultTotalSheetName
	}
	if options.ApportioningSheetName == "" {
		options.ApportioningSheetName = DefaultApportioningSheetName
	}
	if options.TotalColumnName == "" {
		options.TotalColumnName = DefaultTotalColumnName
	}
	if options.RoundDecimals <= 0 {
		options.RoundDecimals = DefaultRoundDecimals
	}
	return &Assembler{options: options}
}

// Assemble produces the workbook: one wide per-day sheet per source, the
// merged total sheet, and the apportioning sheet with live formula trailers.
func (a *Assembler) Assemble(input Input) *report.Workbook {
	workbook := &report.Workbook{}
	for _, source := range input.Sources {
		a.buildSourceSheet(workbook.AddSheet(source.Name), source.Samples)
	}
	a.buildTotalSheet(workbook.AddSheet(a.options.TotalSheetName), input.Merged)
	a.buildApportioningSheet(workbook.AddSheet(a.options.ApportioningSheetName), input.Merged, input.MaxDemandKW)
	return workbook
}

// buildSourceSheet lays one 4-column block per calendar day, left to right in
// ascending day order: time-of-day fraction, power (W), kW, blank spacer.
// Row 1 carries the sub-headers, row 2 the day serials (anchored at A2 for
// the first day), data rows start at row 3 in every block so blocks stay
// aligned.
func (a *Assembler) buildSourceSheet(sheet *report.Sheet, samples []ingest.Sample) {
	sheet.Set(0, 0, report.Text("UTC Offset (minutes)"))

	byDay := make(map[time.Time][]ingest.Sample)
	for _, s := range samples {
		day := truncateToDay(s.Timestamp)
		byDay[day] = append(byDay[day], s)
	}
	days := make([]time.Time, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	if len(days) > 0 {
		sheet.Set(1, 0, report.Number(float64(report.DaySerial(days[0]))))
	}

	col := 1
	for i, day := range days {
		sheet.Set(0, col, report.Text("Local Time Stamp"))
		sheet.Set(0, col+1, report.Text("Active Power (W)"))
		sheet.Set(0, col+2, report.Text("kW"))
		sheet.Set(0, col+3, report.Cell{})
		if i > 0 {
			sheet.Set(1, col, report.Number(float64(report.DaySerial(day))))
		}

		entries := byDay[day]
		sort.Slice(entries, func(x, y int) bool { return entries[x].Timestamp.Before(entries[y].Timestamp) })
		for r, entry := range entries {
			row := 2 + r
			sheet.Set(row, col, report.Number(report.TimeFraction(entry.Timestamp)))
			if entry.PowerW != nil {
				sheet.Set(row, col+1, report.Number(*entry.PowerW))
				sheet.Set(row, col+2, report.Number(a.round(*entry.PowerW/1000)))
			}
			sheet.Set(row, col+3, report.Cell{})
		}
		col += 4
	}
}

// buildTotalSheet lays the merged daily series: Date serial, one column per
// source, and the cross-source total.
func (a *Assembler) buildTotalSheet(sheet *report.Sheet, merged analytics.MergedTable) {
	sheet.Set(0, 0, report.Text("Date"))
	for i, name := range merged.Sources {
		sheet.Set(0, 1+i, report.Text(name))
	}
	sheet.Set(0, 1+len(merged.Sources), report.Text(a.options.TotalColumnName))

	for r, row := range merged.Rows {
		sheet.Set(1+r, 0, report.Number(float64(report.DaySerial(row.Day))))
		for i, value := range row.Values {
			sheet.Set(1+r, 1+i, report.Number(a.round(value)))
		}
		sheet.Set(1+r, 1+len(row.Values), report.Number(a.round(row.Total)))
	}
}

// buildApportioningSheet lays the per-day apportioning table and appends
// Average and Total trailer rows as live formulas over the exact data range,
// so the file keeps recalculating in a spreadsheet viewer.
func (a *Assembler) buildApportioningSheet(sheet *report.Sheet, merged analytics.MergedTable, maxDemand map[time.Time]float64) {
	sheet.Set(0, 0, report.Text("Date"))
	sheet.Set(0, 1, report.Text("Day"))
	for i, name := range merged.Sources {
		sheet.Set(0, 2+i, report.Text(name))
	}
	demandCol := 2 + len(merged.Sources)
	sheet.Set(0, demandCol, report.Text("Maximum Demand, kW"))

	// Data starts on spreadsheet row 3; row 2 stays blank in the target layout.
	const firstDataRow = 2
	for r, row := range merged.Rows {
		gridRow := firstDataRow + r
		sheet.Set(gridRow, 0, report.Number(float64(report.DaySerial(row.Day))))
		sheet.Set(gridRow, 1, report.Text(row.Day.Weekday().String()))
		for i, value := range row.Values {
			sheet.Set(gridRow, 2+i, report.Number(a.round(value)))
		}
		sheet.Set(gridRow, demandCol, report.Number(a.round(maxDemand[row.Day])))
	}

	if len(merged.Rows) == 0 {
		return
	}
	// 1-based spreadsheet rows of the first and last data rows.
	first := firstDataRow + 1
	last := firstDataRow + len(merged.Rows)
	averageRow := firstDataRow + len(merged.Rows)
	totalRow := averageRow + 1

	sheet.Set(averageRow, 1, report.Text("Average"))
	sheet.Set(totalRow, 1, report.Text("Total"))
	for col := 2; col <= demandCol; col++ {
		letter := columnName(col)
		sheet.Set(averageRow, col, report.Formula(fmt.Sprintf("AVERAGE(%s%d:%s%d)", letter, first, letter, last)))
		sheet.Set(totalRow, col, report.Formula(fmt.Sprintf("SUM(%s%d:%s%d)", letter, first, letter, last)))
	}
}

func (a *Assembler) round(value float64) float64 {
	factor := math.Pow10(a.options.RoundDecimals)
	return math.Round(value*factor) / factor
}

// columnName converts a 0-based column index to its spreadsheet letter.
func columnName(index int) string {
	n := index + 1
	var letters []byte
	for n > 0 {
		n--
		letters = append([]byte{byte('A' + n%26)}, letters...)
		n /= 26
	}
	return string(letters)
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
