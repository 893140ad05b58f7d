package export

import (
	"fmt"
	"io"

	"github.com/plumber-cd/ez-desk/internal/domain"
	"github.com/xuri/excelize/v2"
)

const summarySheet = "Summary"

// WriteXLSX writes a workbook with a Summary sheet followed by one sheet per
// record kind.
func WriteXLSX(book *domain.Book, w io.Writer) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("rename default sheet: %w", err)
	}
	summary := [][]string{{"Section", "Records", "Breakdown"}}
	for _, total := range book.Totals() {
		summary = append(summary, []string{total.Title, fmt.Sprint(total.Count), breakdown(book, total.Kind)})
	}
	if err := writeSheet(f, summarySheet, summary, header); err != nil {
		return err
	}

	for _, sec := range sections(book) {
		if _, err := f.NewSheet(sec.Title); err != nil {
			return fmt.Errorf("create sheet %s: %w", sec.Title, err)
		}
		rows := append([][]string{sec.Headers}, sec.Rows...)
		if err := writeSheet(f, sec.Title, rows, header); err != nil {
			return err
		}
	}

	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, rows [][]string, headerStyle int) error {
	width := 0
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := make([]any, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
		width = max(width, len(row))
	}
	if width == 0 {
		return nil
	}
	last, err := excelize.ColumnNumberToName(width)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last+"1", headerStyle); err != nil {
		return fmt.Errorf("style %s header: %w", sheet, err)
	}
	if err := f.SetColWidth(sheet, "A", last, 18); err != nil {
		return fmt.Errorf("size %s columns: %w", sheet, err)
	}
	return nil
}
