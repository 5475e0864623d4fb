package report

import (
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"nnogcli/pkg/contracts/domain"
)

func TestOutputFilename(t *testing.T) {
	assert.Equal(t, "2024 02 Sales Tax - NNOGC PY d1-4.xlsx", OutputFilename(2024, 2))
	assert.Equal(t, "2025 11 Sales Tax - NNOGC PY d1-4.xlsx", OutputFilename(2025, 11))
}

func TestWriteMonth(t *testing.T) {
	led := &domain.Ledger{
		Columns: []string{"name_1", "txn_invoice_no", "txn_gross_amt"},
		Cols:    domain.ColumnIndex{Date: -1, Gross: 2, Invoice: 1, Vendor: 0, Property: -1, Billing: -1},
	}
	rep := &domain.MonthReport{
		Month:       2,
		Year:        2024,
		HasTotals:   true,
		HasInvoice:  true,
		LinkHeaders: []string{"Dropbox Link Image 1 Q1"},
		Rows: []domain.ReportRow{
			{
				Txn: domain.Transaction{
					Vendor:    "ACME",
					InvoiceNo: "INV100",
					Gross:     2500,
					Raw:       []string{"ACME", "INV100", "2500"},
				},
				Seq:         1,
				First:       true,
				InvTotal:    2500,
				Links:       []string{"0"},
				TaxFilename: "S202402-001.pdf",
			},
		},
	}

	outDir := t.TempDir()
	w := NewWriter(slog.Default())

	path, err := w.WriteMonth(rep, led, outDir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(outDir, "2024 02 Sales Tax - NNOGC PY d1-4.xlsx"), path)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "For Sequence #", rows[0][0])
	assert.Equal(t, "Sequence #", rows[0][1])
	assert.Equal(t, "Name 1", rows[0][2])
	assert.Equal(t, "Txn Invoice No", rows[0][3])
	assert.Equal(t, "Txn Gross Amt", rows[0][4])

	assert.Equal(t, "1", rows[1][0])
	assert.Equal(t, "001", rows[1][1])
	assert.Equal(t, "INV100", rows[1][3])
	assert.Equal(t, "2500", rows[1][4])

	// Header style lands on every header cell.
	styleA1, err := f.GetCellStyle(SheetName, "A1")
	require.NoError(t, err)
	assert.NotZero(t, styleA1)

	width, err := f.GetColWidth(SheetName, "A")
	require.NoError(t, err)
	assert.InDelta(t, float64(len("For Sequence #")+7), width, 0.01)
}

func TestWriteMonthTypedDate(t *testing.T) {
	date := time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)
	led := &domain.Ledger{
		Columns: []string{"txn_inv_date", "txn_gross_amt"},
		Cols:    domain.ColumnIndex{Date: 0, Gross: 1, Invoice: -1, Vendor: -1, Property: -1, Billing: -1},
	}
	rep := &domain.MonthReport{
		Month: 2,
		Year:  2024,
		Rows: []domain.ReportRow{
			{
				Txn: domain.Transaction{Date: date, HasDate: true, Gross: 10, Raw: []string{"2024-02-15", "10"}},
				Seq: 1,
			},
		},
	}

	outDir := t.TempDir()
	path, err := NewWriter(nil).WriteMonth(rep, led, outDir)
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	// The date cell holds a serial number, not the raw string.
	raw, err := f.GetCellValue(SheetName, "C2", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.NotEqual(t, "2024-02-15", raw)
	assert.NotEmpty(t, raw)
}
