// Package loader ingests the CSV and Excel source files for the refund
// pipeline. Spreadsheet inputs get sheet selection by name keyword and a
// header-row scan, because the accounting exports carry title and banner
// rows above the real header.
package loader

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/shakinm/xlsReader/xls"
	"github.com/xuri/excelize/v2"

	"nnogcli/internal/config"
)

var (
	// ErrFileNotFound means the source path does not exist.
	ErrFileNotFound = errors.New("file not found")
	// ErrUnsupportedFormat means the source extension is not CSV or Excel.
	ErrUnsupportedFormat = errors.New("unsupported file extension")
)

// Load reads a CSV or Excel file into a Table. For spreadsheets,
// sheetKeyword selects the sheet whose name contains it (first sheet
// otherwise) and the header row is located by scanning the first
// cfg.HeaderScanRows rows for any of cfg.HeaderKeywords.
func Load(path, sheetKeyword string, cfg config.LoaderConfig, logger *slog.Logger) (*Table, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("Loading source file", slog.String("path", path))

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}

	var (
		table *Table
		err   error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		table, err = loadCSV(path)
	case ".xlsx", ".xlsm":
		table, err = loadExcel(path, sheetKeyword, cfg, logger)
	case ".xls":
		table, err = loadXLS(path, sheetKeyword, cfg, logger)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}

	logger.Info("Source file loaded",
		slog.String("path", path),
		slog.Int("columns", len(table.Columns)),
		slog.Int("rows", len(table.Rows)))
	return table, nil
}

// loadCSV reads a CSV file, falling back to a latin-1 interpretation
// when the bytes are not valid UTF-8. The first record is the header.
func loadCSV(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	if !utf8.Valid(data) {
		data = decodeLatin1(data)
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(records) == 0 {
		return &Table{}, nil
	}

	return buildTable(records[0], records[1:]), nil
}

// loadExcel reads one sheet of an Excel workbook into a Table.
func loadExcel(path, sheetKeyword string, cfg config.LoaderConfig, logger *slog.Logger) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets: %s", path)
	}
	sheet := selectSheet(sheets, sheetKeyword)

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}

	headerRow := findHeaderRow(rows, cfg)
	logger.Info("Sheet selected",
		slog.String("sheet", sheet),
		slog.Int("header_row", headerRow),
		slog.Int("total_rows", len(rows)))

	if headerRow >= len(rows) {
		return &Table{}, nil
	}
	return buildTable(rows[headerRow], rows[headerRow+1:]), nil
}

// loadXLS reads one sheet of a legacy BIFF workbook into a Table. The
// accounting system still emits .xls, which excelize cannot parse, so
// this branch goes through xlsReader instead.
func loadXLS(path, sheetKeyword string, cfg config.LoaderConfig, logger *slog.Logger) (*Table, error) {
	workbook, err := xls.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open legacy workbook: %w", err)
	}

	count := workbook.GetNumberSheets()
	if count == 0 {
		return nil, fmt.Errorf("workbook has no sheets: %s", path)
	}

	target := 0
	if sheetKeyword != "" {
		lower := strings.ToLower(sheetKeyword)
		for i := 0; i < count; i++ {
			sh, err := workbook.GetSheet(i)
			if err != nil || sh == nil {
				continue
			}
			if strings.Contains(strings.ToLower(sh.GetName()), lower) {
				target = i
				break
			}
		}
	}

	sh, err := workbook.GetSheet(target)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %d: %w", target, err)
	}
	name := sh.GetName()

	var rows [][]string
	for i := 0; i <= int(sh.GetNumberRows()); i++ {
		r, err := sh.GetRow(i)
		if err != nil || r == nil {
			continue
		}
		var cells []string
		for _, col := range r.GetCols() {
			if col != nil {
				cells = append(cells, col.GetString())
			} else {
				cells = append(cells, "")
			}
		}
		rows = append(rows, cells)
	}

	headerRow := findHeaderRow(rows, cfg)
	logger.Info("Sheet selected",
		slog.String("sheet", name),
		slog.Int("header_row", headerRow),
		slog.Int("total_rows", len(rows)))

	if headerRow >= len(rows) {
		return &Table{}, nil
	}
	return buildTable(rows[headerRow], rows[headerRow+1:]), nil
}

// selectSheet picks the first sheet whose name contains the keyword,
// case-insensitive, defaulting to the first sheet.
func selectSheet(sheets []string, keyword string) string {
	if keyword == "" {
		return sheets[0]
	}
	lower := strings.ToLower(keyword)
	for _, s := range sheets {
		if strings.Contains(strings.ToLower(s), lower) {
			return s
		}
	}
	return sheets[0]
}

// findHeaderRow scans the first cfg.HeaderScanRows rows for a cell that
// matches one of the header keywords exactly (trimmed, lowercased).
// Defaults to row 0 when nothing matches.
func findHeaderRow(rows [][]string, cfg config.LoaderConfig) int {
	limit := len(rows)
	if cfg.HeaderScanRows > 0 && cfg.HeaderScanRows < limit {
		limit = cfg.HeaderScanRows
	}

	keywords := make(map[string]bool, len(cfg.HeaderKeywords))
	for _, k := range cfg.HeaderKeywords {
		keywords[strings.ToLower(strings.TrimSpace(k))] = true
	}

	for i := 0; i < limit; i++ {
		for _, cell := range rows[i] {
			if keywords[strings.ToLower(strings.TrimSpace(cell))] {
				return i
			}
		}
	}
	return 0
}

// buildTable normalizes the header labels and pads the data rows.
func buildTable(header []string, data [][]string) *Table {
	columns := make([]string, len(header))
	for i, c := range header {
		columns[i] = NormalizeLabel(c)
	}

	rows := make([][]string, 0, len(data))
	for _, r := range data {
		row := make([]string, len(r))
		copy(row, r)
		rows = append(rows, pad(row, len(columns)))
	}

	return &Table{Columns: columns, Rows: rows}
}

// decodeLatin1 reinterprets the bytes as ISO 8859-1. Every byte maps to
// the code point of the same value, so this never fails.
func decodeLatin1(data []byte) []byte {
	var buf bytes.Buffer
	buf.Grow(len(data) * 2)
	for _, b := range data {
		buf.WriteRune(rune(b))
	}
	return buf.Bytes()
}
