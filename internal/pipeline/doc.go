// Package pipeline implements the month-by-month transform that turns a
// raw JIB ledger extract into a refund-eligible invoice list.
//
// # Stages
//
// 1. Preprocess: currency and date cleaning, invoice normalization,
// image-reference deduplication.
//
// 2. Monthly filter/aggregate: exact month+year date filter, key sort,
// per-invoice totals, the dollar threshold, and the prefix and vendor
// exclusions.
//
// 3. Enrich: quarter arithmetic, hyperlink formulas for both storage
// roots, run-based sequence numbers, and the tax-commission filename.
//
// The Runner drives the stages for each requested month sequentially;
// an empty or failed month is logged and skipped without aborting the
// remaining months.
//
// # Degraded modes
//
// Every stage checks that the columns it needs were found in the
// source. A missing column logs a warning and degrades that stage: no
// date column means no date filter, no invoice column turns sequence
// numbers into a plain row counter, and so on.
package pipeline
