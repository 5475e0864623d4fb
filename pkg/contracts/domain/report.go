package domain

import (
	"time"
)

// Transaction is a single cleaned ledger row from the JIB extract.
// Raw preserves the original cell values in source column order so the
// final report can carry every ledger column through unchanged.
type Transaction struct {
	Vendor    string    `json:"vendor"`
	InvoiceNo string    `json:"invoice_no"`
	Date      time.Time `json:"date"`
	HasDate   bool      `json:"has_date"`
	Gross     float64   `json:"gross"`
	Property  string    `json:"property"`
	Billing   string    `json:"billing"`
	Raw       []string  `json:"-"`
}

// ColumnIndex holds the resolved positions of the well-known ledger
// columns. A value of -1 means the column was not found in the source.
type ColumnIndex struct {
	Date     int
	Gross    int
	Invoice  int
	Vendor   int
	Property int
	Billing  int
}

// Ledger is the cleaned JIB extract: normalized column labels plus one
// Transaction per surviving source row.
type Ledger struct {
	Columns []string
	Cols    ColumnIndex
	Rows    []Transaction
}

// ImageIndex maps invoice numbers to their scanned image filenames,
// one entry per image slot. Slots is the number of related-file columns
// found in the cross-reference file (at most 4).
type ImageIndex struct {
	Slots     int
	ByInvoice map[string][]string
}

// Files returns the image filenames for an invoice, or a slice of empty
// strings when the invoice has no cross-reference entry.
func (ix *ImageIndex) Files(invoiceNo string) []string {
	if files, ok := ix.ByInvoice[invoiceNo]; ok {
		return files
	}
	return make([]string, ix.Slots)
}

// ReportRow is one output record of a monthly report.
type ReportRow struct {
	Txn      Transaction
	InvTotal float64
	// First marks the first row of this invoice number in sort order.
	// Only first rows carry hyperlink values and the tax filename.
	First  bool
	Seq    int
	Images []string
	// Links holds the rendered hyperlink formulas, four per image slot
	// (two storage roots times current and next quarter). Non-first rows
	// and empty image slots carry the "0" sentinel.
	Links       []string
	TaxFilename string
}

// MonthReport is the full result of processing one (month, year) pair.
type MonthReport struct {
	Month     int
	Year      int
	HasTotals bool
	// HasInvoice reports whether the source ledger carried an invoice
	// number column; without it sequence numbers fall back to a plain
	// row counter.
	HasInvoice  bool
	Rows        []ReportRow
	LinkHeaders []string
}

// InvoiceCount returns the number of distinct invoice numbers in the report.
func (r *MonthReport) InvoiceCount() int {
	seen := make(map[string]bool)
	for _, row := range r.Rows {
		seen[row.Txn.InvoiceNo] = true
	}
	return len(seen)
}

// RunRequest describes one invocation of the refund pipeline.
type RunRequest struct {
	LedgerPath string `json:"ledger_path" validate:"required"`
	ImagesPath string `json:"images_path" validate:"required"`
	OutputDir  string `json:"output_dir" validate:"required"`
	Year       int    `json:"year" validate:"required,gte=1900,lte=2100"`
	Months     []int  `json:"months" validate:"required,min=1,dive,gte=1,lte=12"`
}
