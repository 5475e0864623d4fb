package loader

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeLabel(t *testing.T) {
	tests := []struct {
		name  string
		label string
		want  string
	}{
		{name: "invoice hash", label: "Txn Invoice #", want: "txn_invoice_no"},
		{name: "gross amount", label: "Txn Gross Amt", want: "txn_gross_amt"},
		{name: "padded", label: "  Owner  ", want: "owner"},
		{name: "dotted", label: "Billing Cat.", want: "billing_cat_"},
		{name: "already canonical", label: "name_1", want: "name_1"},
		{name: "empty", label: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeLabel(tt.label))
		})
	}
}

func TestTableFindColumn(t *testing.T) {
	table := &Table{Columns: []string{"owner", "txn_invoice_no", "txn_inv_date", "txn_gross_amt"}}

	assert.Equal(t, 1, table.FindColumn("invoice_no"))
	assert.Equal(t, 2, table.FindColumn("inv_date"))
	assert.Equal(t, 3, table.FindColumn("gross_amt"))
	assert.Equal(t, -1, table.FindColumn("vendor"))
}

func TestTableFindExact(t *testing.T) {
	table := &Table{Columns: []string{"owner", "vendor_name", "vendor"}}

	// Candidate order wins over column order.
	assert.Equal(t, 2, table.FindExact("vendor", "vendor_name"))
	assert.Equal(t, 1, table.FindExact("name_1", "vendor_name", "vendor"))
	assert.Equal(t, -1, table.FindExact("name_1"))
}

func TestTableCell(t *testing.T) {
	table := &Table{Columns: []string{"a", "b"}}
	row := []string{"x"}

	assert.Equal(t, "x", table.Cell(row, 0))
	assert.Equal(t, "", table.Cell(row, 1), "short row yields empty cell")
	assert.Equal(t, "", table.Cell(row, -1))
}
