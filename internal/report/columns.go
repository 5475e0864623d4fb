package report

import (
	"fmt"
	"strings"
	"unicode"

	"nnogcli/pkg/contracts/domain"
)

// taxEntryColumns are appended empty for the operator to complete by
// hand after filing review.
var taxEntryColumns = []string{
	"UT + SJ Combined Sales Tax",
	"Utah State Sales Tax",
	"San Juan County Sales Tax",
	"Other local Utah tax",
	"Other entity collecting tax",
	"Sum of UT Tx Excl Chrgd by N.N.",
	"NNOGC Entity Tx Pd Amt",
	"Poley Team Notes",
}

// taxFilenameHeader labels the generated tax-commission image filename.
const taxFilenameHeader = "Filename of Image for the UT Tax Comm."

// headerStopWords stay lowercase inside title-cased headers.
var headerStopWords = map[string]bool{
	"the": true,
	"for": true,
	"by":  true,
}

// TitleCaseHeader formats a column label for the business-facing
// report: underscores become spaces and each word is capitalized except
// the stop words, which stay lowercase unless they lead the label.
func TitleCaseHeader(label string) string {
	words := strings.Fields(strings.ReplaceAll(label, "_", " "))
	for i, w := range words {
		if i == 0 || !headerStopWords[strings.ToLower(w)] {
			words[i] = capitalize(w)
		} else {
			words[i] = strings.ToLower(w)
		}
	}
	return strings.Join(words, " ")
}

// capitalize uppercases the first rune and lowercases the rest.
func capitalize(w string) string {
	runes := []rune(strings.ToLower(w))
	if len(runes) == 0 {
		return w
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// BuildSheet projects a month report into the final header row and data
// rows: the sequence pair, every original ledger column, the hyperlink
// columns, the tax-commission filename, then the empty tax-entry
// columns.
func BuildSheet(rep *domain.MonthReport, led *domain.Ledger) ([]string, [][]interface{}) {
	var headers []string
	headers = append(headers, "For Sequence #", "Sequence #")
	for i, col := range led.Columns {
		switch i {
		case led.Cols.Invoice:
			headers = append(headers, "Txn Invoice No")
		case led.Cols.Gross:
			headers = append(headers, "Txn Gross Amt")
		default:
			headers = append(headers, col)
		}
	}
	headers = append(headers, rep.LinkHeaders...)
	headers = append(headers, taxFilenameHeader)
	headers = append(headers, taxEntryColumns...)

	for i, h := range headers {
		headers[i] = TitleCaseHeader(h)
	}

	rows := make([][]interface{}, 0, len(rep.Rows))
	for _, row := range rep.Rows {
		cells := make([]interface{}, 0, len(headers))
		cells = append(cells, row.Seq, fmt.Sprintf("%03d", row.Seq))

		for i := range led.Columns {
			switch i {
			case led.Cols.Gross:
				cells = append(cells, row.Txn.Gross)
			case led.Cols.Date:
				if row.Txn.HasDate {
					cells = append(cells, row.Txn.Date)
				} else {
					cells = append(cells, rawCell(row.Txn.Raw, i))
				}
			case led.Cols.Invoice:
				cells = append(cells, row.Txn.InvoiceNo)
			default:
				cells = append(cells, rawCell(row.Txn.Raw, i))
			}
		}

		for _, link := range row.Links {
			cells = append(cells, link)
		}
		cells = append(cells, row.TaxFilename)
		for range taxEntryColumns {
			cells = append(cells, "")
		}

		rows = append(rows, cells)
	}

	return headers, rows
}

func rawCell(raw []string, i int) string {
	if i < 0 || i >= len(raw) {
		return ""
	}
	return raw[i]
}
