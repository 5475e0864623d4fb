package pipeline

import (
	"log/slog"
	"math"
	"sort"
	"strconv"
	"strings"

	"nnogcli/internal/config"
	"nnogcli/pkg/contracts/domain"
)

// BuildMonthReport runs the filter/aggregate/sort/merge stages for one
// (month, year) pair. A nil result means the month produced no rows and
// should be skipped; the reason is logged.
func BuildMonthReport(led *domain.Ledger, images *domain.ImageIndex, month, year int, cfg config.ReportConfig, logger *slog.Logger) *domain.MonthReport {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("Processing month", slog.Int("month", month), slog.Int("year", year))

	rows := filterByMonth(led, month, year, logger)
	if len(rows) == 0 {
		logger.Info("No data found for month, skipping",
			slog.Int("month", month), slog.Int("year", year))
		return nil
	}

	sortByKeys(rows, led.Cols)

	hasTotals := led.Cols.Invoice >= 0 && led.Cols.Gross >= 0
	totals := map[string]float64{}
	if hasTotals {
		totals = invoiceTotals(rows, cfg.AggregationMode)
		rows = applyThreshold(rows, totals, cfg.Threshold)
	} else {
		logger.Warn("Skipping aggregation and threshold filter due to missing columns")
	}

	if led.Cols.Invoice >= 0 {
		rows = dropExcludedPrefixes(rows, cfg.ExcludedPrefixes)
	}
	if led.Cols.Vendor >= 0 && hasTotals {
		rows = dropExcludedVendors(rows, totals, cfg.ExcludedVendors, cfg.VendorFloor)
	}

	if len(rows) == 0 {
		logger.Info("No transactions met the threshold for month",
			slog.Int("month", month),
			slog.Int("year", year),
			slog.Float64("threshold", cfg.Threshold))
		return nil
	}

	if hasTotals {
		sortByTotals(rows, totals, led.Cols)
	}

	report := &domain.MonthReport{
		Month:      month,
		Year:       year,
		HasTotals:  hasTotals,
		HasInvoice: led.Cols.Invoice >= 0,
	}

	seenInvoice := make(map[string]bool)
	for _, txn := range rows {
		first := true
		if led.Cols.Invoice >= 0 {
			first = !seenInvoice[txn.InvoiceNo]
			seenInvoice[txn.InvoiceNo] = true
		}
		report.Rows = append(report.Rows, domain.ReportRow{
			Txn:      txn,
			InvTotal: totals[txn.InvoiceNo],
			First:    first,
			Images:   images.Files(txn.InvoiceNo),
		})
	}

	logger.Info("Month report built",
		slog.Int("month", month),
		slog.Int("rows", len(report.Rows)),
		slog.Int("invoices", report.InvoiceCount()))
	return report
}

// filterByMonth keeps transactions dated exactly in (month, year). When
// the ledger has no date column every row passes, with a warning.
func filterByMonth(led *domain.Ledger, month, year int, logger *slog.Logger) []domain.Transaction {
	if led.Cols.Date < 0 {
		logger.Warn("Skipping date filtering due to missing column")
		out := make([]domain.Transaction, len(led.Rows))
		copy(out, led.Rows)
		return out
	}

	var out []domain.Transaction
	for _, txn := range led.Rows {
		if txn.HasDate && int(txn.Date.Month()) == month && txn.Date.Year() == year {
			out = append(out, txn)
		}
	}
	return out
}

// sortByKeys orders rows by vendor, invoice, property and billing
// category ascending, then gross amount descending. Missing key columns
// are skipped so the remaining keys still apply.
func sortByKeys(rows []domain.Transaction, cols domain.ColumnIndex) {
	sort.SliceStable(rows, func(i, j int) bool {
		return compareKeys(&rows[i], &rows[j], cols) < 0
	})
}

// compareKeys compares two transactions by the report sort key order.
func compareKeys(a, b *domain.Transaction, cols domain.ColumnIndex) int {
	if cols.Vendor >= 0 {
		if c := strings.Compare(a.Vendor, b.Vendor); c != 0 {
			return c
		}
	}
	if cols.Invoice >= 0 {
		if c := strings.Compare(a.InvoiceNo, b.InvoiceNo); c != 0 {
			return c
		}
	}
	if cols.Property >= 0 {
		if c := strings.Compare(a.Property, b.Property); c != 0 {
			return c
		}
	}
	if cols.Billing >= 0 {
		if c := strings.Compare(a.Billing, b.Billing); c != 0 {
			return c
		}
	}
	if cols.Gross >= 0 {
		// Largest to smallest.
		if a.Gross != b.Gross {
			if a.Gross > b.Gross {
				return -1
			}
			return 1
		}
	}
	return 0
}

// sortByTotals re-sorts by invoice total descending, ties broken by the
// original key order.
func sortByTotals(rows []domain.Transaction, totals map[string]float64, cols domain.ColumnIndex) {
	sort.SliceStable(rows, func(i, j int) bool {
		ti, tj := totals[rows[i].InvoiceNo], totals[rows[j].InvoiceNo]
		if ti != tj {
			return ti > tj
		}
		return compareKeys(&rows[i], &rows[j], cols) < 0
	})
}

// invoiceTotals computes the summed gross amount per invoice number.
// Composite mode counts identical invoice/vendor/property/billing/gross
// rows only once, matching ledger exports that duplicate rows per owner.
func invoiceTotals(rows []domain.Transaction, mode string) map[string]float64 {
	totals := make(map[string]float64)

	if mode == config.AggregationModeComposite {
		seen := make(map[string]bool)
		for _, txn := range rows {
			key := strings.Join([]string{
				txn.InvoiceNo,
				txn.Vendor,
				txn.Property,
				txn.Billing,
				strconv.FormatFloat(txn.Gross, 'f', -1, 64),
			}, "\x1f")
			if seen[key] {
				continue
			}
			seen[key] = true
			totals[txn.InvoiceNo] += txn.Gross
		}
		return totals
	}

	for _, txn := range rows {
		totals[txn.InvoiceNo] += txn.Gross
	}
	return totals
}

// applyThreshold keeps rows whose invoice total has absolute value at
// or above the refund threshold.
func applyThreshold(rows []domain.Transaction, totals map[string]float64, threshold float64) []domain.Transaction {
	var out []domain.Transaction
	for _, txn := range rows {
		if math.Abs(totals[txn.InvoiceNo]) >= threshold {
			out = append(out, txn)
		}
	}
	return out
}

// dropExcludedPrefixes removes journal and period-end entries by
// invoice-number prefix, case-insensitive.
func dropExcludedPrefixes(rows []domain.Transaction, prefixes []string) []domain.Transaction {
	var out []domain.Transaction
	for _, txn := range rows {
		upper := strings.ToUpper(txn.InvoiceNo)
		excluded := false
		for _, p := range prefixes {
			if strings.HasPrefix(upper, strings.ToUpper(p)) {
				excluded = true
				break
			}
		}
		if !excluded {
			out = append(out, txn)
		}
	}
	return out
}

// dropExcludedVendors removes rows from the excluded vendors when the
// invoice total stays under the floor. Vendor matching is substring
// containment on the uppercased name, as the accounting team's vendor
// labels vary between exports.
func dropExcludedVendors(rows []domain.Transaction, totals map[string]float64, vendors []string, floor float64) []domain.Transaction {
	var out []domain.Transaction
	for _, txn := range rows {
		if math.Abs(totals[txn.InvoiceNo]) < floor && vendorExcluded(txn.Vendor, vendors) {
			continue
		}
		out = append(out, txn)
	}
	return out
}

func vendorExcluded(vendor string, excluded []string) bool {
	upper := strings.ToUpper(vendor)
	for _, v := range excluded {
		if strings.Contains(upper, strings.ToUpper(v)) {
			return true
		}
	}
	return false
}
