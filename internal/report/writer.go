// Package report shapes and writes the monthly sales-tax spreadsheets:
// column projection and business renames in columns.go, the formatted
// Excel output in writer.go.
package report

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"nnogcli/pkg/contracts/domain"
)

// SheetName is the fixed worksheet name of every monthly report.
const SheetName = "Sales Tax Report"

// headerFillColor matches the accounting team's report template.
const headerFillColor = "D7E4BC"

// maxColumnWidth caps auto-sized column widths.
const maxColumnWidth = 50

// Writer renders month reports as formatted .xlsx workbooks.
type Writer struct {
	logger *slog.Logger
}

// NewWriter creates a report writer.
func NewWriter(logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{logger: logger}
}

// OutputFilename returns the fixed per-month workbook name.
func OutputFilename(year, month int) string {
	return fmt.Sprintf("%d %02d Sales Tax - NNOGC PY d1-4.xlsx", year, month)
}

// WriteMonth writes one month report into outDir and returns the full
// path of the workbook.
func (w *Writer) WriteMonth(rep *domain.MonthReport, led *domain.Ledger, outDir string) (string, error) {
	headers, rows := BuildSheet(rep, led)
	outPath := filepath.Join(outDir, OutputFilename(rep.Year, rep.Month))

	w.logger.Info("Writing month report",
		slog.String("path", outPath),
		slog.Int("columns", len(headers)),
		slog.Int("rows", len(rows)))

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return "", fmt.Errorf("failed to rename sheet: %w", err)
	}

	headerCells := make([]interface{}, len(headers))
	for i, h := range headers {
		headerCells[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &headerCells); err != nil {
		return "", fmt.Errorf("failed to write header row: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return "", fmt.Errorf("failed to build cell reference: %w", err)
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return "", fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := w.formatHeader(f, headers); err != nil {
		return "", err
	}

	if err := f.SaveAs(outPath); err != nil {
		return "", fmt.Errorf("failed to save workbook: %w", err)
	}
	return outPath, nil
}

// formatHeader applies the bold filled header style, auto-sizes the
// columns from their header text, and sets the autofilter.
func (w *Writer) formatHeader(f *excelize.File, headers []string) error {
	styleID, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{headerFillColor}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	lastCol, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return fmt.Errorf("failed to resolve last column: %w", err)
	}

	if err := f.SetCellStyle(SheetName, "A1", lastCol+"1", styleID); err != nil {
		return fmt.Errorf("failed to style header row: %w", err)
	}

	for i, h := range headers {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return fmt.Errorf("failed to resolve column %d: %w", i+1, err)
		}
		width := float64(len(h) + 7)
		if width > maxColumnWidth {
			width = maxColumnWidth
		}
		if err := f.SetColWidth(SheetName, col, col, width); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}

	if err := f.AutoFilter(SheetName, fmt.Sprintf("A1:%s1", lastCol), nil); err != nil {
		return fmt.Errorf("failed to set autofilter: %w", err)
	}
	return nil
}
