package ingest

import (
	"fmt"
	"strings"
)

// ColumnRef selects one column of a raw file by exactly one of:
// a fixed 0-based index, an Excel-style letter, or an ordered list of
// case-insensitive name aliases (first match wins).
type ColumnRef struct {
	Index   *int     `yaml:"index"`
	Letter  string   `yaml:"letter"`
	Aliases []string `yaml:"name"`
}

// IndexRef builds a fixed-index reference.
func IndexRef(index int) ColumnRef { return ColumnRef{Index: &index} }

// LetterRef builds an Excel-letter reference.
func LetterRef(letter string) ColumnRef { return ColumnRef{Letter: letter} }

// NameRef builds a name-alias reference.
func NameRef(aliases ...string) ColumnRef { return ColumnRef{Aliases: aliases} }

// Validate ensures the reference carries exactly one selector.
func (r ColumnRef) Validate() error {
	selectors := 0
	if r.Index != nil {
		selectors++
		if *r.Index < 0 {
			return ErrNegativeColumnIndex
		}
	}
	if r.Letter != "" {
		selectors++
		if _, err := LetterToIndex(r.Letter); err != nil {
			return err
		}
	}
	if len(r.Aliases) > 0 {
		selectors++
	}
	switch {
	case selectors == 0:
		return ErrEmptyColumnRef
	case selectors > 1:
		return ErrAmbiguousColumnRef
	}
	return nil
}

// Resolve maps the reference to a 0-based index within the header row.
// Alias matching is case-insensitive and exact; on duplicate header names the
// first literal occurrence wins.
func (r ColumnRef) Resolve(header []string) (int, error) {
	if err := r.Validate(); err != nil {
		return 0, err
	}
	if r.Index != nil {
		if *r.Index >= len(header) {
			return 0, fmt.Errorf("%w: index %d, header has %d columns", ErrHeaderTooShort, *r.Index, len(header))
		}
		return *r.Index, nil
	}
	if r.Letter != "" {
		index, err := LetterToIndex(r.Letter)
		if err != nil {
			return 0, err
		}
		if index >= len(header) {
			return 0, fmt.Errorf("%w: letter %s (index %d), header has %d columns", ErrHeaderTooShort, r.Letter, index, len(header))
		}
		return index, nil
	}
	for _, alias := range r.Aliases {
		for i, name := range header {
			if strings.EqualFold(strings.TrimSpace(name), strings.TrimSpace(alias)) {
				return i, nil
			}
		}
	}
	return 0, fmt.Errorf("%w: tried aliases %q", ErrColumnNotFound, r.Aliases)
}

// String renders the reference for error reporting.
func (r ColumnRef) String() string {
	switch {
	case r.Index != nil:
		return fmt.Sprintf("index %d", *r.Index)
	case r.Letter != "":
		return "letter " + r.Letter
	case len(r.Aliases) > 0:
		return fmt.Sprintf("aliases %v", r.Aliases)
	}
	return "empty"
}

// MaxFixedIndex returns the largest index the reference demands regardless of
// header content, or -1 when the reference resolves by name.
func (r ColumnRef) MaxFixedIndex() int {
	if r.Index != nil {
		return *r.Index
	}
	if r.Letter != "" {
		if index, err := LetterToIndex(r.Letter); err == nil {
			return index
		}
	}
	return -1
}

// LetterToIndex converts an Excel-style column letter to a 0-based index.
// Base-26 with A=1..Z=26 computed positionally: "BI" -> 2*26+9-1 = 60.
func LetterToIndex(letter string) (int, error) {
	if letter == "" {
		return 0, ErrInvalidColumnLetter
	}
	value := 0
	for _, c := range strings.ToUpper(letter) {
		if c < 'A' || c > 'Z' {
			return 0, fmt.Errorf("%w: %q", ErrInvalidColumnLetter, letter)
		}
		value = value*26 + int(c-'A') + 1
	}
	return value - 1, nil
}

// IndexToLetter converts a 0-based index to an Excel-style column letter.
func IndexToLetter(index int) (string, error) {
	if index < 0 {
		return "", ErrNegativeColumnIndex
	}
	n := index + 1
	var letters []byte
	for n > 0 {
		n--
		letters = append([]byte{byte('A' + n%26)}, letters...)
		n /= 26
	}
	return string(letters), nil
}

// UnmarshalYAML accepts either the mapping form {index|letter|name} or a bare
// scalar: an integer is a 0-based index, a string a single name alias. Letters
// always need the explicit key so header names like "PSum" cannot be misread
// as column letters.
func (r *ColumnRef) UnmarshalYAML(unmarshal func(any) error) error {
	var index int
	if err := unmarshal(&index); err == nil {
		r.Index = &index
		return nil
	}
	var name string
	if err := unmarshal(&name); err == nil {
		r.Aliases = []string{name}
		return nil
	}
	type plain ColumnRef
	var p plain
	if err := unmarshal(&p); err != nil {
		return err
	}
	*r = ColumnRef(p)
	return nil
}
