package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"nnogcli/internal/audit"
	"nnogcli/internal/config"
	"nnogcli/internal/loader"
	"nnogcli/internal/report"
	"nnogcli/internal/validation"
	"nnogcli/pkg/contracts/domain"
)

// Runner orchestrates one end-to-end refund report run: load both
// sources once, then process the requested months sequentially. A month
// that fails or comes up empty is logged and skipped; later months
// still run.
type Runner struct {
	cfg      *config.Config
	logger   *slog.Logger
	writer   *report.Writer
	store    *audit.Store
	validate *validator.Validate
}

// NewRunner creates a Runner. The audit store may be nil, in which case
// run history is not recorded.
func NewRunner(cfg *config.Config, logger *slog.Logger, store *audit.Store) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		cfg:      cfg,
		logger:   logger,
		writer:   report.NewWriter(logger),
		store:    store,
		validate: validator.New(),
	}
}

// Run executes the pipeline for every month in the request. Load
// failures abort the whole run before any month is processed.
func (r *Runner) Run(ctx context.Context, req *domain.RunRequest) error {
	if err := r.validate.Struct(req); err != nil {
		return fmt.Errorf("invalid run request: %w", err)
	}

	runID := uuid.NewString()
	r.logger.Info("Starting refund report run",
		slog.String("run_id", runID),
		slog.String("ledger", req.LedgerPath),
		slog.String("images", req.ImagesPath),
		slog.String("output_dir", req.OutputDir),
		slog.Int("year", req.Year),
		slog.Any("months", req.Months))

	ledgerTable, err := loader.Load(req.LedgerPath, r.cfg.Loader.LedgerSheetKeyword, r.cfg.Loader, r.logger)
	if err != nil {
		return fmt.Errorf("failed to load ledger: %w", err)
	}
	imagesTable, err := loader.Load(req.ImagesPath, r.cfg.Loader.ImagesSheetKeyword, r.cfg.Loader, r.logger)
	if err != nil {
		return fmt.Errorf("failed to load invoice reference: %w", err)
	}

	fv := validation.NewFileValidator(r.logger)
	if err := fv.ValidateOutputDirectory(req.OutputDir); err != nil {
		return err
	}

	ledger := PrepareLedger(ledgerTable, r.logger)
	images := PrepareImageRefs(imagesTable, r.cfg.Report.ImageSlots, r.logger)

	written := 0
	for _, month := range req.Months {
		if err := ctx.Err(); err != nil {
			return err
		}

		rep := BuildMonthReport(ledger, images, month, req.Year, r.cfg.Report, r.logger)
		if rep == nil {
			continue
		}
		Enrich(rep, r.cfg.Report, r.logger)

		outPath, err := r.writer.WriteMonth(rep, ledger, req.OutputDir)
		if err != nil {
			r.logger.Error("Failed to write month report",
				slog.Int("month", month),
				slog.String("error", err.Error()))
			continue
		}
		written++

		r.recordRun(ctx, runID, rep, outPath)
		r.logger.Info("Finished month",
			slog.Int("month", month),
			slog.String("path", outPath))
	}

	r.logger.Info("Refund report run complete",
		slog.String("run_id", runID),
		slog.Int("months_requested", len(req.Months)),
		slog.Int("reports_written", written))
	return nil
}

// recordRun persists one month's outcome. Audit failures are logged and
// never abort the run.
func (r *Runner) recordRun(ctx context.Context, runID string, rep *domain.MonthReport, outPath string) {
	if r.store == nil {
		return
	}
	rec := audit.RunRecord{
		RunID:        runID,
		Month:        rep.Month,
		Year:         rep.Year,
		RowCount:     len(rep.Rows),
		InvoiceCount: rep.InvoiceCount(),
		OutputPath:   outPath,
		CreatedAt:    time.Now().UTC(),
	}
	if err := r.store.RecordRun(ctx, rec); err != nil {
		r.logger.Warn("Failed to record run in audit store",
			slog.Int("month", rep.Month),
			slog.String("error", err.Error()))
	}
}
