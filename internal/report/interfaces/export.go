package interfaces

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	analytics "msb-report/internal/analytics/domain"
	report "msb-report/internal/report/domain"
)

// BuildWorkbookXLSX serializes the workbook model to XLSX bytes. Formula
// cells are written as formulas so trailer rows keep recalculating in a
// spreadsheet viewer.
func BuildWorkbookXLSX(workbook *report.Workbook) ([]byte, error) {
	if workbook == nil || len(workbook.Sheets()) == 0 {
		return nil, fmt.Errorf("report: empty workbook")
	}

	f := excelize.NewFile()
	for i, sheet := range workbook.Sheets() {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet.Name); err != nil {
				return nil, err
			}
		} else if _, err := f.NewSheet(sheet.Name); err != nil {
			return nil, err
		}

		for row := 0; row < sheet.RowCount(); row++ {
			for col := 0; col < sheet.ColCount(row); col++ {
				cell := sheet.At(row, col)
				if cell.Kind == report.CellBlank {
					continue
				}
				name, err := excelize.CoordinatesToCellName(col+1, row+1)
				if err != nil {
					return nil, err
				}
				switch cell.Kind {
				case report.CellNumber:
					if err := f.SetCellValue(sheet.Name, name, cell.Number); err != nil {
						return nil, err
					}
				case report.CellText:
					if err := f.SetCellValue(sheet.Name, name, cell.Text); err != nil {
						return nil, err
					}
				case report.CellFormula:
					if err := f.SetCellFormula(sheet.Name, name, cell.Formula); err != nil {
						return nil, err
					}
				}
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildSummaryPDF renders the merged daily series as a compact PDF table,
// followed by the hour-of-day load profile when one is available.
func BuildSummaryPDF(merged analytics.MergedTable, profile []analytics.HourlyAggregate) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Daily Load Summary")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Merge mode: %s", merged.Mode))
	pdf.Ln(8)

	colWidth := 40.0
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(30, 6, "Date", "1", 0, "C", false, 0, "")
	for _, name := range merged.Sources {
		pdf.CellFormat(colWidth, 6, name, "1", 0, "C", false, 0, "")
	}
	pdf.CellFormat(colWidth, 6, "Total", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	for _, row := range merged.Rows {
		pdf.CellFormat(30, 6, row.Day.Format("2006-01-02"), "1", 0, "C", false, 0, "")
		for _, value := range row.Values {
			pdf.CellFormat(colWidth, 6, fmt.Sprintf("%.3f", value), "1", 0, "R", false, 0, "")
		}
		pdf.CellFormat(colWidth, 6, fmt.Sprintf("%.3f", row.Total), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(30, 6, "Total", "1", 0, "C", false, 0, "")
	for _, total := range merged.ColumnTotals {
		pdf.CellFormat(colWidth, 6, fmt.Sprintf("%.3f", total), "1", 0, "R", false, 0, "")
	}
	pdf.CellFormat(colWidth, 6, fmt.Sprintf("%.3f", merged.GrandTotal), "1", 0, "R", false, 0, "")
	pdf.Ln(-1)

	if len(profile) > 0 {
		pdf.Ln(4)
		pdf.SetFont("Arial", "B", 10)
		pdf.Cell(0, 6, "Hourly Load Profile")
		pdf.Ln(8)
		pdf.CellFormat(30, 6, "Hour", "1", 0, "C", false, 0, "")
		pdf.CellFormat(colWidth, 6, "Mean kW", "1", 0, "C", false, 0, "")
		pdf.CellFormat(colWidth, 6, "Max kW", "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 10)
		for _, hour := range profile {
			pdf.CellFormat(30, 6, fmt.Sprintf("%02d:00", hour.Hour), "1", 0, "C", false, 0, "")
			pdf.CellFormat(colWidth, 6, fmt.Sprintf("%.3f", hour.MeanPowerKW), "1", 0, "R", false, 0, "")
			pdf.CellFormat(colWidth, 6, fmt.Sprintf("%.3f", hour.MaxPowerKW), "1", 0, "R", false, 0, "")
			pdf.Ln(-1)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
