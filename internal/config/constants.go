package config

// Aggregation modes for per-invoice totals.
const (
	// AggregationModeInvoice sums every ledger row sharing an invoice number.
	AggregationModeInvoice = "invoice"
	// AggregationModeComposite counts identical invoice/vendor/property/
	// billing/gross rows only once before summing. This reproduces the
	// dedup pass some exports need when the ledger repeats rows.
	AggregationModeComposite = "composite"
)

// MaxImageSlots is the most related-file columns the cross-reference
// file can contribute per invoice.
const MaxImageSlots = 4
