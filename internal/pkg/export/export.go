// Package export renders tabular reports as spreadsheet or PDF documents.
package export

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"
)

const (
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypePDF  = "application/pdf"
)

var ErrEmptyHeaders = errors.New("export: table has no headers")

// Table is a titled grid of cells. Every row should have len(Headers) cells;
// short rows are padded and extra cells dropped.
type Table struct {
	Title    string
	Subtitle string
	Headers  []string
	Rows     [][]string
}

func (t Table) cells(row []string) []string {
	out := make([]string, len(t.Headers))
	copy(out, row)
	return out
}

// WriteXLSX renders the table onto a single sheet named after the title.
func WriteXLSX(t Table) ([]byte, error) {
	if len(t.Headers) == 0 {
		return nil, ErrEmptyHeaders
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := sheetName(t.Title)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	rowIdx := 1
	if t.Title != "" {
		if err := f.SetCellValue(sheet, "A1", t.Title); err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(sheet, "A1", "A1", bold); err != nil {
			return nil, err
		}
		rowIdx++
		if t.Subtitle != "" {
			if err := f.SetCellValue(sheet, "A2", t.Subtitle); err != nil {
				return nil, err
			}
			rowIdx++
		}
		rowIdx++
	}

	headerCell, err := excelize.CoordinatesToCellName(1, rowIdx)
	if err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(sheet, headerCell, &t.Headers); err != nil {
		return nil, fmt.Errorf("write headers: %w", err)
	}
	lastHeader, err := excelize.CoordinatesToCellName(len(t.Headers), rowIdx)
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheet, headerCell, lastHeader, bold); err != nil {
		return nil, err
	}

	for _, row := range t.Rows {
		rowIdx++
		cell, err := excelize.CoordinatesToCellName(1, rowIdx)
		if err != nil {
			return nil, err
		}
		values := t.cells(row)
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return nil, fmt.Errorf("write row %d: %w", rowIdx, err)
		}
	}

	lastCol, err := excelize.ColumnNumberToName(len(t.Headers))
	if err != nil {
		return nil, err
	}
	if err := f.SetColWidth(sheet, "A", lastCol, 18); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

// WritePDF renders the table in landscape A4 with a repeated header row.
func WritePDF(t Table) ([]byte, error) {
	if len(t.Headers) == 0 {
		return nil, ErrEmptyHeaders
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(true, 12)

	pageWidth, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	colWidth := (pageWidth - left - right) / float64(len(t.Headers))

	header := func() {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetFillColor(230, 230, 230)
		for _, h := range t.Headers {
			pdf.CellFormat(colWidth, 7, h, "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 9)
	}

	pdf.AddPage()
	if t.Title != "" {
		pdf.SetFont("Helvetica", "B", 14)
		pdf.Cell(0, 8, t.Title)
		pdf.Ln(9)
	}
	if t.Subtitle != "" {
		pdf.SetFont("Helvetica", "", 10)
		pdf.Cell(0, 6, t.Subtitle)
		pdf.Ln(8)
	}
	header()

	_, pageHeight := pdf.GetPageSize()
	for _, row := range t.Rows {
		if pdf.GetY()+7 > pageHeight-12 {
			pdf.AddPage()
			header()
		}
		for _, v := range t.cells(row) {
			pdf.CellFormat(colWidth, 6, v, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// sheetName trims a title to Excel's 31 character limit and strips the
// characters Excel rejects in sheet names.
func sheetName(title string) string {
	if title == "" {
		return "Report"
	}
	out := make([]rune, 0, 31)
	for _, r := range title {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			continue
		}
		out = append(out, r)
		if len(out) == 31 {
			break
		}
	}
	if len(out) == 0 {
		return "Report"
	}
	return string(out)
}
