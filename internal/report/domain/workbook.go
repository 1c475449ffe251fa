package report

// CellKind discriminates the typed cell variants.
type CellKind int

const (
	CellBlank CellKind = iota
	CellNumber
	CellText
	CellFormula
)

// Cell is one typed spreadsheet cell. Formula holds the expression without a
// leading "=".
type Cell struct {
	Kind    CellKind
	Number  float64
	Text    string
	Formula string
}

// Number builds a numeric cell.
func Number(value float64) Cell { return Cell{Kind: CellNumber, Number: value} }

// Text builds a text cell.
func Text(value string) Cell { return Cell{Kind: CellText, Text: value} }

// Formula builds a live formula cell.
func Formula(expr string) Cell { return Cell{Kind: CellFormula, Formula: expr} }

// Sheet is an independent 2-D grid of typed cells, grown on demand.
type Sheet struct {
	Name string
	rows [][]Cell
}

// NewSheet creates an empty named sheet.
func NewSheet(name string) *Sheet { return &Sheet{Name: name} }

// Set places a cell at 0-based row/column, growing the grid as needed.
func (s *Sheet) Set(row, col int, cell Cell) {
	if row < 0 || col < 0 {
		return
	}
	for len(s.rows) <= row {
		s.rows = append(s.rows, nil)
	}
	for len(s.rows[row]) <= col {
		s.rows[row] = append(s.rows[row], Cell{})
	}
	s.rows[row][col] = cell
}

// At returns the cell at 0-based row/column; blank when never set.
func (s *Sheet) At(row, col int) Cell {
	if row < 0 || row >= len(s.rows) || col < 0 || col >= len(s.rows[row]) {
		return Cell{}
	}
	return s.rows[row][col]
}

// RowCount returns the number of rows the grid has grown to.
func (s *Sheet) RowCount() int { return len(s.rows) }

// ColCount returns the width of one row.
func (s *Sheet) ColCount(row int) int {
	if row < 0 || row >= len(s.rows) {
		return 0
	}
	return len(s.rows[row])
}

// Workbook is an ordered set of named sheets.
type Workbook struct {
	sheets []*Sheet
}

// AddSheet appends a new named sheet and returns it.
func (w *Workbook) AddSheet(name string) *Sheet {
	sheet := NewSheet(name)
	w.sheets = append(w.sheets, sheet)
	return sheet
}

// Sheets returns the sheets in order.
func (w *Workbook) Sheets() []*Sheet { return w.sheets }

// Sheet returns the named sheet, or nil.
func (w *Workbook) Sheet(name string) *Sheet {
	for _, s := range w.sheets {
		if s.Name == name {
			return s
		}
	}
	return nil
}
