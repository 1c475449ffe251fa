package ingest

import "fmt"

// Encoding names the character encoding of a raw export.
type Encoding string

const (
	// EncodingLatin1 covers the single-byte exports most meters emit.
	EncodingLatin1 Encoding = "latin1"
	EncodingUTF8   Encoding = "utf8"
)

// IsValid checks the encoding is supported.
func (e Encoding) IsValid() bool {
	switch e {
	case EncodingLatin1, EncodingUTF8:
		return true
	default:
		return false
	}
}

// Default layouts for the day-first exports the meters produce.
const (
	DefaultDateLayout = "02/01/2006"
	DefaultTimeLayout = "15:04:05"
)

// SourceDescriptor describes how to interpret one raw meter export.
// It is built once per file before parsing and is immutable during the parse.
type SourceDescriptor struct {
	// HeaderOffset is the number of literal rows to skip before the header.
	HeaderOffset int `yaml:"header_offset"`
	// Delimiter is the field separator, comma when unset.
	Delimiter string `yaml:"delimiter"`
	// Encoding defaults to latin1.
	Encoding Encoding `yaml:"encoding"`

	DateColumn  ColumnRef  `yaml:"date_column"`
	TimeColumn  *ColumnRef `yaml:"time_column"`
	PowerColumn ColumnRef  `yaml:"power_column"`
	// EnergyColumn is the cumulative register column; nil when the source has none.
	EnergyColumn *ColumnRef `yaml:"energy_column"`

	// DateLayout and TimeLayout are Go reference layouts for the textual fields.
	DateLayout string `yaml:"date_layout"`
	TimeLayout string `yaml:"time_layout"`
	// DateTimeSeparator splits a combined date/time field when TimeColumn is nil.
	DateTimeSeparator string `yaml:"datetime_separator"`

	// Negate applies the export-convention sign flip to every power value.
	// It is a declared setting, never inferred from the data; the config layer
	// derives it from the sign convention, so it has no yaml key of its own.
	Negate bool `yaml:"-"`
}

// Validate rejects a descriptor before any file is read.
func (d SourceDescriptor) Validate() error {
	if d.HeaderOffset < 0 {
		return fmt.Errorf("ingest: negative header offset %d", d.HeaderOffset)
	}
	if len([]rune(d.Delimiter)) > 1 {
		return fmt.Errorf("ingest: delimiter must be a single rune, got %q", d.Delimiter)
	}
	if d.Encoding != "" && !d.Encoding.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidEncoding, d.Encoding)
	}
	if err := d.DateColumn.Validate(); err != nil {
		return fmt.Errorf("date column: %w", err)
	}
	if d.TimeColumn != nil {
		if err := d.TimeColumn.Validate(); err != nil {
			return fmt.Errorf("time column: %w", err)
		}
	} else if d.DateTimeSeparator == "" {
		return fmt.Errorf("ingest: either a time column or a datetime separator is required")
	}
	if err := d.PowerColumn.Validate(); err != nil {
		return fmt.Errorf("power column: %w", err)
	}
	if d.EnergyColumn != nil {
		if err := d.EnergyColumn.Validate(); err != nil {
			return fmt.Errorf("energy column: %w", err)
		}
	}
	return nil
}

// DelimiterRune returns the configured delimiter, comma when unset.
func (d SourceDescriptor) DelimiterRune() rune {
	runes := []rune(d.Delimiter)
	if len(runes) == 0 {
		return ','
	}
	return runes[0]
}

// EffectiveEncoding returns the configured encoding, latin1 when unset.
func (d SourceDescriptor) EffectiveEncoding() Encoding {
	if d.Encoding == "" {
		return EncodingLatin1
	}
	return d.Encoding
}

// DateTimeLayout joins the date and time layouts the way parsed fields are
// joined: with one space.
func (d SourceDescriptor) DateTimeLayout() string {
	date := d.DateLayout
	if date == "" {
		date = DefaultDateLayout
	}
	clock := d.TimeLayout
	if clock == "" {
		clock = DefaultTimeLayout
	}
	return date + " " + clock
}

// ResolvedColumns holds the indices a descriptor resolved against one header.
type ResolvedColumns struct {
	Date   int
	Time   int // -1 when the date column carries a combined date/time
	Power  int
	Energy int // -1 when the source has no register column
}

// ResolveColumns maps the descriptor's references against the header row and
// enforces pairwise distinctness of the Date/Time/Power mapping.
func (d SourceDescriptor) ResolveColumns(header []string) (ResolvedColumns, error) {
	resolved := ResolvedColumns{Time: -1, Energy: -1}

	date, err := d.DateColumn.Resolve(header)
	if err != nil {
		return resolved, fmt.Errorf("date column (%s): %w", d.DateColumn.String(), err)
	}
	resolved.Date = date

	if d.TimeColumn != nil {
		clock, err := d.TimeColumn.Resolve(header)
		if err != nil {
			return resolved, fmt.Errorf("time column (%s): %w", d.TimeColumn.String(), err)
		}
		resolved.Time = clock
	}

	power, err := d.PowerColumn.Resolve(header)
	if err != nil {
		return resolved, fmt.Errorf("power column (%s): %w", d.PowerColumn.String(), err)
	}
	resolved.Power = power

	if d.EnergyColumn != nil {
		energy, err := d.EnergyColumn.Resolve(header)
		if err != nil {
			return resolved, fmt.Errorf("energy column (%s): %w", d.EnergyColumn.String(), err)
		}
		resolved.Energy = energy
	}

	if resolved.Date == resolved.Power ||
		(resolved.Time >= 0 && (resolved.Time == resolved.Date || resolved.Time == resolved.Power)) {
		return resolved, fmt.Errorf("%w: date=%d time=%d power=%d",
			ErrDuplicateColumnMapping, resolved.Date, resolved.Time, resolved.Power)
	}
	return resolved, nil
}

// MaxFixedIndex returns the largest fixed index any reference demands, used to
// fail fast on headers shorter than the configuration requires.
func (d SourceDescriptor) MaxFixedIndex() int {
	max := d.DateColumn.MaxFixedIndex()
	if d.TimeColumn != nil {
		if i := d.TimeColumn.MaxFixedIndex(); i > max {
			max = i
		}
	}
	if i := d.PowerColumn.MaxFixedIndex(); i > max {
		max = i
	}
	if d.EnergyColumn != nil {
		if i := d.EnergyColumn.MaxFixedIndex(); i > max {
			max = i
		}
	}
	return max
}
