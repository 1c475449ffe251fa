package application

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding/charmap"

	ingest "msb-report/internal/ingest/domain"
)

// fallbackDateLayout covers the ISO exports some meters switch to.
const fallbackDateLayout = "2006-01-02"

// ParseSource reads one raw export and produces the ordered canonical samples
// plus a row-accounting report. Rows with an unparseable timestamp are dropped
// and counted; non-numeric power/energy fields become missing values on an
// otherwise valid sample. Configuration problems fail before any row is read.
func ParseSource(data []byte, desc ingest.SourceDescriptor) ([]ingest.Sample, ingest.ParseReport, error) {
	report := ingest.ParseReport{}

	if err := desc.Validate(); err != nil {
		return nil, report, err
	}

	decoded, err := decode(data, desc.EffectiveEncoding())
	if err != nil {
		return nil, report, fmt.Errorf("%w: %v", ingest.ErrFileUnreadable, err)
	}

	reader := csv.NewReader(bytes.NewReader(decoded))
	reader.Comma = desc.DelimiterRune()
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	for i := 0; i < desc.HeaderOffset; i++ {
		if _, err := reader.Read(); err != nil {
			return nil, report, fmt.Errorf("%w: offset %d past end of file", ingest.ErrMissingHeader, desc.HeaderOffset)
		}
	}

	header, err := reader.Read()
	if err != nil {
		return nil, report, fmt.Errorf("%w: no header row after offset %d", ingest.ErrMissingHeader, desc.HeaderOffset)
	}
	if max := desc.MaxFixedIndex(); max >= len(header) {
		return nil, report, fmt.Errorf("%w: need column index %d, header has %d columns", ingest.ErrHeaderTooShort, max, len(header))
	}

	columns, err := desc.ResolveColumns(header)
	if err != nil {
		return nil, report, err
	}

	layout := desc.DateTimeLayout()
	timeLayout := desc.TimeLayout
	if timeLayout == "" {
		timeLayout = ingest.DefaultTimeLayout
	}

	var samples []ingest.Sample
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			report.RowsTotal++
			report.Drop(ingest.DropUnreadableRow)
			continue
		}
		report.RowsTotal++

		if !rowCovers(record, columns) {
			report.Drop(ingest.DropShortRow)
			continue
		}

		dateText := strings.TrimSpace(record[columns.Date])
		var clockText string
		if columns.Time >= 0 {
			clockText = strings.TrimSpace(record[columns.Time])
		} else {
			parts := strings.SplitN(dateText, desc.DateTimeSeparator, 2)
			if len(parts) != 2 {
				report.Drop(ingest.DropBadSplit)
				continue
			}
			dateText = strings.TrimSpace(parts[0])
			clockText = strings.TrimSpace(parts[1])
		}

		timestamp, ok := parseTimestamp(dateText, clockText, layout, timeLayout)
		if !ok {
			report.Drop(ingest.DropBadTimestamp)
			continue
		}

		sample := ingest.Sample{Timestamp: timestamp}
		if columns.Power < len(record) {
			if value, ok := parseFloat(record[columns.Power]); ok {
				if desc.Negate {
					value = -value
				}
				sample.PowerW = &value
			}
		}
		if columns.Energy >= 0 && columns.Energy < len(record) {
			if value, ok := parseFloat(record[columns.Energy]); ok {
				sample.EnergyWh = &value
			}
		}
		samples = append(samples, sample)
	}

	if len(samples) == 0 {
		return nil, report, fmt.Errorf("%w: %d rows read, %d dropped", ingest.ErrNoValidRows, report.RowsTotal, report.RowsDropped)
	}
	return samples, report, nil
}

// parseTimestamp joins the date and clock texts with one space and parses
// them against the configured layout, falling back to the ISO date form.
func parseTimestamp(dateText, clockText, layout, timeLayout string) (time.Time, bool) {
	combined := dateText + " " + clockText
	if ts, err := time.Parse(layout, combined); err == nil {
		return ts, true
	}
	if ts, err := time.Parse(fallbackDateLayout+" "+timeLayout, combined); err == nil {
		return ts, true
	}
	return time.Time{}, false
}

func parseFloat(text string) (float64, bool) {
	value, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

// rowCovers checks the record reaches the timestamp columns. A record short
// of only the power or energy column still yields a sample with those values
// missing, the same treatment as a non-numeric field.
func rowCovers(record []string, columns ingest.ResolvedColumns) bool {
	needed := columns.Date
	if columns.Time > needed {
		needed = columns.Time
	}
	return needed < len(record)
}

// decode converts the raw bytes to UTF-8 text. Latin-1 decoding maps every
// byte to a valid rune, so high-byte device output never fails the read.
func decode(data []byte, encoding ingest.Encoding) ([]byte, error) {
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	switch encoding {
	case ingest.EncodingUTF8:
		return data, nil
	case ingest.EncodingLatin1:
		decoded, err := io.ReadAll(charmap.ISO8859_1.NewDecoder().Reader(bytes.NewReader(data)))
		if err != nil {
			return nil, err
		}
		return decoded, nil
	default:
		return nil, fmt.Errorf("%w: %q", ingest.ErrInvalidEncoding, encoding)
	}
}
