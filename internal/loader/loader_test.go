package loader

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"nnogcli/internal/config"
)

func testLoaderConfig() config.LoaderConfig {
	return config.LoaderConfig{
		HeaderKeywords:     []string{"owner", "txn gross amt", "vendor", "invoice #", "invoice no"},
		HeaderScanRows:     50,
		LedgerSheetKeyword: "JIB",
		ImagesSheetKeyword: "Combined",
	}
}

func TestLoadCSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ledger.csv")
	content := "Name 1,Txn Invoice #,Txn Gross Amt\nACME,INV100,\"2,500.00\"\nACME,INV101,100.00\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	table, err := Load(path, "", testLoaderConfig(), slog.Default())
	require.NoError(t, err)

	assert.Equal(t, []string{"name_1", "txn_invoice_no", "txn_gross_amt"}, table.Columns)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "2,500.00", table.Rows[0][2])
}

func TestLoadCSVLatin1Fallback(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ledger.csv")
	// "café" encoded as latin-1: the 0xE9 byte is not valid UTF-8.
	content := append([]byte("Vendor,Txn Gross Amt\ncaf"), 0xE9, ',', '1', '0', '\n')
	require.NoError(t, os.WriteFile(path, content, 0644))

	table, err := Load(path, "", testLoaderConfig(), slog.Default())
	require.NoError(t, err)

	require.Len(t, table.Rows, 1)
	assert.Equal(t, "café", table.Rows[0][0])
}

func TestLoadCSVRaggedRows(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ledger.csv")
	content := "Vendor,Txn Invoice #,Txn Gross Amt\nACME,INV1\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	table, err := Load(path, "", testLoaderConfig(), slog.Default())
	require.NoError(t, err)

	require.Len(t, table.Rows, 1)
	assert.Len(t, table.Rows[0], 3, "short rows are padded to the column count")
	assert.Equal(t, "", table.Rows[0][2])
}

func TestLoadExcelHeaderScan(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ledger.xlsx")

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", "NNOG JIB 2024"))
	// Banner rows above the real header, as the accounting export emits.
	require.NoError(t, f.SetSheetRow("NNOG JIB 2024", "A1", &[]interface{}{"Navajo Nation Oil & Gas"}))
	require.NoError(t, f.SetSheetRow("NNOG JIB 2024", "A2", &[]interface{}{"Run date: 2024-05-01"}))
	require.NoError(t, f.SetSheetRow("NNOG JIB 2024", "A3", &[]interface{}{"Owner", "Txn Invoice #", "Txn Gross Amt"}))
	require.NoError(t, f.SetSheetRow("NNOG JIB 2024", "A4", &[]interface{}{"NN", "INV100", "2500"}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	table, err := Load(path, "JIB", testLoaderConfig(), slog.Default())
	require.NoError(t, err)

	assert.Equal(t, []string{"owner", "txn_invoice_no", "txn_gross_amt"}, table.Columns)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "INV100", table.Rows[0][1])
}

func TestLoadExcelSheetKeyword(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "images.xlsx")

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", "Notes"))
	_, err := f.NewSheet("Combined IR")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Notes", "A1", &[]interface{}{"scratch"}))
	require.NoError(t, f.SetSheetRow("Combined IR", "A1", &[]interface{}{"Invoice No", "Related File 001"}))
	require.NoError(t, f.SetSheetRow("Combined IR", "A2", &[]interface{}{"INV100", "scan1.pdf"}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	table, err := Load(path, "combined", testLoaderConfig(), slog.Default())
	require.NoError(t, err)

	assert.Equal(t, []string{"invoice_no", "related_file_001"}, table.Columns)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "scan1.pdf", table.Rows[0][1])
}

func TestLoadExcelNoHeaderMatchDefaultsToFirstRow(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plain.xlsx")

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"ColA", "ColB"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{"1", "2"}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	table, err := Load(path, "", testLoaderConfig(), slog.Default())
	require.NoError(t, err)

	assert.Equal(t, []string{"cola", "colb"}, table.Columns)
	assert.Len(t, table.Rows, 1)
}

func TestLoadXLSRoutesToLegacyReader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ledger.xls")
	// A .xlsx payload under a .xls name must hit the BIFF branch, not
	// excelize: the OLE container check rejects it with a format hint.
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"Owner"}))
	// SaveAs rejects the .xls extension, so write the bytes directly.
	out, oerr := os.Create(path)
	require.NoError(t, oerr)
	require.NoError(t, f.Write(out))
	require.NoError(t, out.Close())
	require.NoError(t, f.Close())

	_, err := Load(path, "JIB", testLoaderConfig(), slog.Default())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnsupportedFormat)
	assert.Contains(t, err.Error(), "legacy workbook")
}

func TestLoadXLSCorruptFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ledger.xls")
	require.NoError(t, os.WriteFile(path, []byte("not a workbook"), 0644))

	_, err := Load(path, "", testLoaderConfig(), slog.Default())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "legacy workbook")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.csv"), "", testLoaderConfig(), slog.Default())
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestLoadUnsupportedExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ledger.txt")
	require.NoError(t, os.WriteFile(path, []byte("data"), 0644))

	_, err := Load(path, "", testLoaderConfig(), slog.Default())
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
