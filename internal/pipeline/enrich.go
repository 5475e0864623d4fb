package pipeline

import (
	"fmt"
	"log/slog"

	"nnogcli/internal/config"
	"nnogcli/pkg/contracts/domain"
)

// ZeroSentinel is written where a non-first row or an empty image slot
// would otherwise carry a hyperlink or filename.
const ZeroSentinel = "0"

// QuarterOf maps a month to its calendar quarter.
func QuarterOf(month int) int {
	return (month-1)/3 + 1
}

// NextQuarter returns the quarter following q, wrapping Q4 into Q1 of
// the next year.
func NextQuarter(q, year int) (int, int) {
	if q < 4 {
		return q + 1, year
	}
	return 1, year + 1
}

// HyperlinkFormula renders the Excel HYPERLINK formula for an image
// file inside a quarter directory. The filename doubles as the link text.
func HyperlinkFormula(dir, file string) string {
	return fmt.Sprintf(`=HYPERLINK("%s%s", "%s")`, dir, file, file)
}

// quarterDir builds the invoice-image directory for one storage root
// and quarter. These are Windows paths destined for Excel, so the
// separator is a literal backslash regardless of the host platform.
func quarterDir(root string, year, quarter int) string {
	return fmt.Sprintf("%s\\%d Q%d Invoices\\", root, year, quarter)
}

// Enrich assigns sequence numbers, hyperlink formulas and the
// tax-commission filename to a month report. Sequence numbers increment
// each time the invoice number changes against the previous row, which
// relies on the sort order BuildMonthReport established.
func Enrich(rep *domain.MonthReport, cfg config.ReportConfig, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}

	q := QuarterOf(rep.Month)
	nq, nqYear := NextQuarter(q, rep.Year)

	dirs := []string{
		quarterDir(cfg.DropboxRoot, rep.Year, q),
		quarterDir(cfg.DropboxRoot, nqYear, nq),
		quarterDir(cfg.SecondaryRoot, rep.Year, q),
		quarterDir(cfg.SecondaryRoot, nqYear, nq),
	}

	slots := 0
	if len(rep.Rows) > 0 {
		slots = len(rep.Rows[0].Images)
	}

	rep.LinkHeaders = nil
	for i := 1; i <= slots; i++ {
		rep.LinkHeaders = append(rep.LinkHeaders,
			fmt.Sprintf("Dropbox Link Image %d Q%d", i, q),
			fmt.Sprintf("Dropbox Link Image %d Q%d", i, nq),
			fmt.Sprintf("F Drive Link Image %d Q%d", i, q),
			fmt.Sprintf("F Drive Link Image %d Q%d", i, nq),
		)
	}

	seq := 0
	prevInvoice := ""
	for i := range rep.Rows {
		row := &rep.Rows[i]

		if rep.HasInvoice {
			if i == 0 || row.Txn.InvoiceNo != prevInvoice {
				seq++
			}
			prevInvoice = row.Txn.InvoiceNo
		} else {
			seq = i + 1
		}
		row.Seq = seq

		if row.First {
			row.TaxFilename = fmt.Sprintf("S%d%02d-%03d.pdf", rep.Year, rep.Month, seq)
		} else {
			row.TaxFilename = ZeroSentinel
		}

		row.Links = make([]string, 0, len(row.Images)*len(dirs))
		for _, file := range row.Images {
			for _, dir := range dirs {
				if row.First && file != "" {
					row.Links = append(row.Links, HyperlinkFormula(dir, file))
				} else {
					row.Links = append(row.Links, ZeroSentinel)
				}
			}
		}
	}

	logger.Info("Month report enriched",
		slog.Int("month", rep.Month),
		slog.Int("sequences", seq),
		slog.Int("quarter", q),
		slog.Int("next_quarter", nq))
}
