package ingest

import (
	"errors"
	"testing"
)

func TestLetterToIndex(t *testing.T) {
	cases := []struct {
		letter string
		index  int
	}{
		{"A", 0},
		{"Z", 25},
		{"AA", 26},
		{"BI", 60},
		{"bi", 60},
	}
	for _, c := range cases {
		index, err := LetterToIndex(c.letter)
		if err != nil {
			t.Fatalf("LetterToIndex(%q): %v", c.letter, err)
		}
		if index != c.index {
			t.Fatalf("LetterToIndex(%q) = %d, want %d", c.letter, index, c.index)
		}
	}
}

func TestLetterToIndexInvalid(t *testing.T) {
	for _, letter := range []string{"", "A1", "1A", "A B", "Ä", "-"} {
		if _, err := LetterToIndex(letter); !errors.Is(err, ErrInvalidColumnLetter) {
			t.Fatalf("LetterToIndex(%q) error = %v, want ErrInvalidColumnLetter", letter, err)
		}
	}
}

func TestLetterIndexRoundTrip(t *testing.T) {
	for index := 0; index <= 701; index++ {
		letter, err := IndexToLetter(index)
		if err != nil {
			t.Fatalf("IndexToLetter(%d): %v", index, err)
		}
		back, err := LetterToIndex(letter)
		if err != nil {
			t.Fatalf("LetterToIndex(%q): %v", letter, err)
		}
		if back != index {
			t.Fatalf("round trip %d -> %q -> %d", index, letter, back)
		}
	}
}

func TestColumnRefResolveAliases(t *testing.T) {
	header := []string{"Timestamp", "Active Power", "PSum", "kWh"}

	index, err := NameRef("psum", "Active Power").Resolve(header)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if index != 2 {
		t.Fatalf("first alias in priority order should win, got index %d", index)
	}

	if _, err := NameRef("Voltage", "Current").Resolve(header); !errors.Is(err, ErrColumnNotFound) {
		t.Fatalf("error = %v, want ErrColumnNotFound", err)
	}
}

func TestColumnRefResolveDuplicateHeaderNames(t *testing.T) {
	header := []string{"Date", "Value", "Value"}

	index, err := NameRef("Value").Resolve(header)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if index != 1 {
		t.Fatalf("duplicate names must resolve to the first occurrence, got %d", index)
	}

	// A letter reference still addresses the second occurrence positionally.
	index, err = LetterRef("C").Resolve(header)
	if err != nil {
		t.Fatalf("resolve letter: %v", err)
	}
	if index != 2 {
		t.Fatalf("letter C = index %d, want 2", index)
	}
}

func TestColumnRefValidate(t *testing.T) {
	if err := (ColumnRef{}).Validate(); !errors.Is(err, ErrEmptyColumnRef) {
		t.Fatalf("empty ref error = %v", err)
	}
	two := IndexRef(1)
	two.Letter = "B"
	if err := two.Validate(); !errors.Is(err, ErrAmbiguousColumnRef) {
		t.Fatalf("ambiguous ref error = %v", err)
	}
	if err := IndexRef(-1).Validate(); !errors.Is(err, ErrNegativeColumnIndex) {
		t.Fatalf("negative index error = %v", err)
	}
}

func TestResolveColumnsDistinctness(t *testing.T) {
	header := []string{"Date", "Time", "PSum"}
	cases := []SourceDescriptor{
		{DateColumn: IndexRef(0), TimeColumn: refPtr(IndexRef(0)), PowerColumn: IndexRef(2)},
		{DateColumn: IndexRef(0), TimeColumn: refPtr(IndexRef(1)), PowerColumn: IndexRef(1)},
		{DateColumn: IndexRef(2), TimeColumn: refPtr(IndexRef(1)), PowerColumn: IndexRef(2)},
	}
	for i, desc := range cases {
		if _, err := desc.ResolveColumns(header); !errors.Is(err, ErrDuplicateColumnMapping) {
			t.Fatalf("case %d: error = %v, want ErrDuplicateColumnMapping", i, err)
		}
	}
}

func TestResolveColumnsHeaderTooShort(t *testing.T) {
	desc := SourceDescriptor{
		DateColumn:  IndexRef(0),
		TimeColumn:  refPtr(IndexRef(1)),
		PowerColumn: LetterRef("BI"),
	}
	if _, err := desc.ResolveColumns([]string{"Date", "Time", "PSum"}); !errors.Is(err, ErrHeaderTooShort) {
		t.Fatalf("error = %v, want ErrHeaderTooShort", err)
	}
}

func refPtr(r ColumnRef) *ColumnRef { return &r }
