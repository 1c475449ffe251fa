package ingest

import "errors"

var (
	// ErrInvalidColumnLetter is returned when a column letter contains non A-Z characters.
	ErrInvalidColumnLetter = errors.New("ingest: invalid column letter")
	// ErrColumnNotFound is returned when no alias or letter resolves against the header.
	ErrColumnNotFound = errors.New("ingest: column not found")
	// ErrDuplicateColumnMapping is returned when two fields resolve to the same index.
	ErrDuplicateColumnMapping = errors.New("ingest: duplicate column mapping")
	// ErrEmptyColumnRef is returned when a column reference carries no selector.
	ErrEmptyColumnRef = errors.New("ingest: empty column reference")
	// ErrAmbiguousColumnRef is returned when a column reference carries more than one selector.
	ErrAmbiguousColumnRef = errors.New("ingest: ambiguous column reference")
	// ErrNegativeColumnIndex is returned when a fixed index is negative.
	ErrNegativeColumnIndex = errors.New("ingest: negative column index")
	// ErrFileUnreadable is returned when the raw input cannot be read or decoded.
	ErrFileUnreadable = errors.New("ingest: file unreadable")
	// ErrHeaderTooShort is returned when the header has fewer columns than a fixed index requires.
	ErrHeaderTooShort = errors.New("ingest: header too short")
	// ErrNoValidRows is returned when every data row was dropped.
	ErrNoValidRows = errors.New("ingest: no valid rows")
	// ErrMissingHeader is returned when the header offset points past the end of the file.
	ErrMissingHeader = errors.New("ingest: missing header row")
	// ErrInvalidEncoding is returned when the descriptor names an unsupported encoding.
	ErrInvalidEncoding = errors.New("ingest: invalid encoding")
)
