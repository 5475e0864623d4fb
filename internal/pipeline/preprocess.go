package pipeline

import (
	"log/slog"
	"strconv"
	"strings"
	"time"

	"nnogcli/internal/loader"
	"nnogcli/pkg/contracts/domain"
)

// dateFormats are tried in order when parsing invoice dates. Excel cells
// surface as formatted text, CSVs usually carry ISO or US layouts.
var dateFormats = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"01/02/2006",
	"1/2/2006",
	"01/02/06",
	"1/2/06",
	"2006/01/02",
	"01-02-2006",
	"2-Jan-06",
	"02-Jan-06",
	"Jan 2, 2006",
	"January 2, 2006",
}

// excelEpoch is day zero of the 1900 date system (serial 0 = 1899-12-30).
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// ParseDate parses an invoice date cell. Unparseable values report
// ok=false rather than an error; the pipeline treats them as null.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	// Unstyled Excel date cells come through as serial numbers.
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial > 0 && serial < 200000 {
		return excelEpoch.AddDate(0, 0, int(serial)), true
	}
	return time.Time{}, false
}

// CleanCurrency parses an accounting currency cell: "(1,234.50)" is
// -1234.50, "$" and thousands separators are stripped. Unparseable
// values report ok=false.
func CleanCurrency(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	s = strings.ReplaceAll(s, "(", "-")
	s = strings.ReplaceAll(s, ")", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "$", "")
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// NormalizeInvoice trims an invoice number and strips the trailing ".0"
// artifact left by numeric-typed spreadsheet imports.
func NormalizeInvoice(s string) string {
	return strings.TrimSuffix(strings.TrimSpace(s), ".0")
}

// ResolveColumns locates the well-known ledger columns in a loaded
// table. Missing columns come back as -1; each downstream stage
// degrades on its own when the column it needs is absent.
func ResolveColumns(t *loader.Table, logger *slog.Logger) domain.ColumnIndex {
	cols := domain.ColumnIndex{
		Date:     t.FindColumn("inv_date"),
		Gross:    t.FindColumn("gross_amt"),
		Invoice:  t.FindColumn("invoice_no"),
		Vendor:   t.FindExact("name_1", "vendor_name", "vendor"),
		Property: t.FindExact("property", "prop"),
		Billing:  t.FindExact("billing_cat", "bill_cat"),
	}

	if cols.Date < 0 {
		logger.Warn("Could not find transaction invoice date column",
			slog.Any("available", t.Columns))
	}
	if cols.Gross < 0 {
		logger.Warn("Could not find gross amount column")
	}
	if cols.Invoice < 0 {
		logger.Warn("Could not find invoice number column")
	}
	if cols.Property < 0 {
		logger.Warn("Could not find sort column", slog.String("key", "property"))
	}
	if cols.Billing < 0 {
		logger.Warn("Could not find sort column", slog.String("key", "billing"))
	}

	return cols
}

// PrepareLedger cleans the raw JIB table into a Ledger: currency and
// date parsing, invoice normalization, and dropping rows whose gross
// amount cannot be parsed.
func PrepareLedger(t *loader.Table, logger *slog.Logger) *domain.Ledger {
	if logger == nil {
		logger = slog.Default()
	}

	cols := ResolveColumns(t, logger)
	led := &domain.Ledger{Columns: t.Columns, Cols: cols}

	dropped := 0
	for _, row := range t.Rows {
		txn := domain.Transaction{Raw: row}

		if cols.Gross >= 0 {
			gross, ok := CleanCurrency(t.Cell(row, cols.Gross))
			if !ok {
				dropped++
				continue
			}
			txn.Gross = gross
		}
		if cols.Date >= 0 {
			txn.Date, txn.HasDate = ParseDate(t.Cell(row, cols.Date))
		}
		if cols.Invoice >= 0 {
			txn.InvoiceNo = NormalizeInvoice(t.Cell(row, cols.Invoice))
		}
		if cols.Vendor >= 0 {
			txn.Vendor = strings.TrimSpace(t.Cell(row, cols.Vendor))
		}
		if cols.Property >= 0 {
			txn.Property = strings.TrimSpace(t.Cell(row, cols.Property))
		}
		if cols.Billing >= 0 {
			txn.Billing = strings.TrimSpace(t.Cell(row, cols.Billing))
		}

		led.Rows = append(led.Rows, txn)
	}

	logger.Info("Ledger prepared",
		slog.Int("rows", len(led.Rows)),
		slog.Int("dropped_null_gross", dropped))
	return led
}

// PrepareImageRefs groups the invoice cross-reference table by invoice
// number, keeping the first non-empty filename per image slot.
func PrepareImageRefs(t *loader.Table, maxSlots int, logger *slog.Logger) *domain.ImageIndex {
	if logger == nil {
		logger = slog.Default()
	}

	var imgCols []int
	for i, c := range t.Columns {
		if strings.Contains(c, "related_file") {
			imgCols = append(imgCols, i)
		}
	}
	// maxSlots is a hard cap: zero disables image links entirely.
	if maxSlots >= 0 && len(imgCols) > maxSlots {
		imgCols = imgCols[:maxSlots]
	}

	index := &domain.ImageIndex{
		Slots:     len(imgCols),
		ByInvoice: make(map[string][]string),
	}
	if len(imgCols) == 0 {
		logger.Info("No image columns in use", slog.Int("max_slots", maxSlots))
		return index
	}

	invCol := t.FindColumn("invoice_no")
	if invCol < 0 {
		logger.Warn("Invoice number column not found in invoice reference file")
		return index
	}

	for _, row := range t.Rows {
		inv := NormalizeInvoice(t.Cell(row, invCol))
		if inv == "" {
			continue
		}
		files, ok := index.ByInvoice[inv]
		if !ok {
			files = make([]string, len(imgCols))
			index.ByInvoice[inv] = files
		}
		for slot, col := range imgCols {
			if files[slot] == "" {
				files[slot] = strings.TrimSpace(t.Cell(row, col))
			}
		}
	}

	logger.Info("Image references prepared",
		slog.Int("invoices", len(index.ByInvoice)),
		slog.Int("image_slots", index.Slots))
	return index
}
