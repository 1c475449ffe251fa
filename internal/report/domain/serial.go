package report

import "time"

// excelEpoch is the spreadsheet day-serial epoch (1899-12-30, which absorbs
// the historical leap-year-1900 offset).
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// DaySerial converts a calendar day to its spreadsheet serial number. The
// date components are taken as-is; the sample's naive local time never shifts
// the day.
func DaySerial(day time.Time) int {
	utc := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	return int(utc.Sub(excelEpoch).Hours() / 24)
}

// SerialToDay is the inverse of DaySerial.
func SerialToDay(serial int) time.Time {
	return excelEpoch.AddDate(0, 0, serial)
}

// TimeFraction converts a clock time to the spreadsheet fractional-day value
// (h/24 + m/1440 + s/86400).
func TimeFraction(t time.Time) float64 {
	return float64(t.Hour())/24 + float64(t.Minute())/1440 + float64(t.Second())/86400
}
