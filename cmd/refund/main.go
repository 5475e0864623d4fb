package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"nnogcli/internal/audit"
	"nnogcli/internal/config"
	"nnogcli/internal/infrastructure"
	"nnogcli/internal/pipeline"
	"nnogcli/internal/validation"
	"nnogcli/pkg/contracts/domain"
)

type options struct {
	jibPath    string
	imagesPath string
	outDir     string
	monthSpec  string
	yearArg    string
	noPrompt   bool
	history    bool
}

func main() {
	var opts options
	flag.StringVar(&opts.jibPath, "jib", "", "path to the JIB ledger extract (CSV or Excel)")
	flag.StringVar(&opts.imagesPath, "images", "", "path to the invoice image cross-reference file")
	flag.StringVar(&opts.outDir, "out", "", "output directory for the monthly reports")
	flag.StringVar(&opts.monthSpec, "months", "", "months to process, e.g. '4', '1-3' or '1,2,6'")
	flag.StringVar(&opts.yearArg, "year", "", "4-digit year to process")
	flag.BoolVar(&opts.noPrompt, "no-prompt", false, "disable interactive prompts and the exit pause")
	flag.BoolVar(&opts.history, "history", false, "print the recorded runs for the year and exit")
	flag.Parse()

	_ = godotenv.Load()

	in := bufio.NewReader(os.Stdin)
	code := run(in, &opts)

	// Keep the console window open so the operator can read the output
	// when the tool was launched by double-click.
	if !opts.noPrompt {
		fmt.Print("Press Enter to exit...")
		_, _ = in.ReadString('\n')
	}
	os.Exit(code)
}

// run executes the whole tool and converts any panic into a logged
// error so the exit prompt still shows.
func run(in *bufio.Reader, opts *options) (code int) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Unhandled error during run",
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())))
			code = 1
		}
	}()

	paths, err := config.GetPaths()
	if err != nil {
		slog.Error("Failed to initialize paths", "error", err)
		return 1
	}
	if err := paths.EnsureDirectories(); err != nil {
		slog.Error("Failed to create required directories", "error", err)
		return 1
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Warn("Failed to load config, using defaults", "error", err)
		cfg, err = config.Default()
		if err != nil {
			slog.Error("Failed to apply default config", "error", err)
			return 1
		}
		cfg.Logging.FilePath = paths.GetLogPath("refund.log")
	}
	if !filepath.IsAbs(cfg.Logging.FilePath) {
		cfg.Logging.FilePath = filepath.Join(paths.ExecutableDir, cfg.Logging.FilePath)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}
	defer infrastructure.CloseLogFile()

	fmt.Println("--- Sales Tax Refund Generator ---")

	if opts.history {
		return showHistory(in, opts, cfg, paths, logger)
	}

	monthSpec := promptValue(in, opts.monthSpec, "Enter Month(s) (e.g., '1-3'): ", opts.noPrompt)
	yearArg := promptValue(in, opts.yearArg, "Enter Year (e.g., 2023): ", opts.noPrompt)
	jibPath := cleanPath(promptValue(in, opts.jibPath, "Enter JIB Path: ", opts.noPrompt))
	imagesPath := cleanPath(promptValue(in, opts.imagesPath, "Enter Invoice Ref Path: ", opts.noPrompt))
	outDir := cleanPath(promptValue(in, opts.outDir, "Enter Output Path: ", opts.noPrompt))

	year, err := strconv.Atoi(strings.TrimSpace(yearArg))
	if err != nil {
		logger.Error("Invalid year", slog.String("input", yearArg))
		return 1
	}

	months := pipeline.ParseMonths(monthSpec, logger)
	if len(months) == 0 {
		logger.Warn("No valid months to process", slog.String("input", monthSpec))
		return 0
	}

	fv := validation.NewFileValidator(logger)
	if err := fv.ValidateInputFile(jibPath); err != nil {
		logger.Error("Ledger file validation failed", slog.String("error", err.Error()))
		return 1
	}
	if err := fv.ValidateInputFile(imagesPath); err != nil {
		logger.Error("Invoice reference validation failed", slog.String("error", err.Error()))
		return 1
	}

	auditPath := auditPathFor(cfg, paths)
	store, err := audit.Open(auditPath)
	if err != nil {
		logger.Warn("Audit store unavailable, run history disabled",
			slog.String("path", auditPath),
			slog.String("error", err.Error()))
		store = nil
	} else {
		defer store.Close()
	}

	runner := pipeline.NewRunner(cfg, logger, store)
	req := &domain.RunRequest{
		LedgerPath: jibPath,
		ImagesPath: imagesPath,
		OutputDir:  outDir,
		Year:       year,
		Months:     months,
	}

	if err := runner.Run(context.Background(), req); err != nil {
		logger.Error("Run failed", slog.String("error", err.Error()))
		return 1
	}

	fmt.Printf("ALL DONE! Files are in: %s\n", outDir)
	return 0
}

// showHistory prints the audit trail for one year so the operator can
// see which months were already produced.
func showHistory(in *bufio.Reader, opts *options, cfg *config.Config, paths *config.Paths, logger *slog.Logger) int {
	yearArg := promptValue(in, opts.yearArg, "Enter Year (e.g., 2023): ", opts.noPrompt)
	year, err := strconv.Atoi(strings.TrimSpace(yearArg))
	if err != nil {
		logger.Error("Invalid year", slog.String("input", yearArg))
		return 1
	}

	store, err := audit.Open(auditPathFor(cfg, paths))
	if err != nil {
		logger.Error("Failed to open audit store", slog.String("error", err.Error()))
		return 1
	}
	defer store.Close()

	runs, err := store.ListRuns(context.Background(), year)
	if err != nil {
		logger.Error("Failed to read run history", slog.String("error", err.Error()))
		return 1
	}

	printHistory(os.Stdout, year, runs)
	return 0
}

// printHistory renders the recorded runs, newest first.
func printHistory(w io.Writer, year int, runs []audit.RunRecord) {
	if len(runs) == 0 {
		fmt.Fprintf(w, "No recorded runs for %d.\n", year)
		return
	}
	fmt.Fprintf(w, "Recorded runs for %d:\n", year)
	for _, r := range runs {
		fmt.Fprintf(w, "  %s  %d-%02d  rows=%d invoices=%d  %s\n",
			r.CreatedAt.Format("2006-01-02 15:04"),
			r.Year, r.Month, r.RowCount, r.InvoiceCount, r.OutputPath)
	}
}

// auditPathFor resolves the audit database path against the executable
// directory when the configured path is relative.
func auditPathFor(cfg *config.Config, paths *config.Paths) string {
	auditPath := cfg.Paths.AuditFile
	if !filepath.IsAbs(auditPath) {
		auditPath = filepath.Join(paths.ExecutableDir, auditPath)
	}
	return auditPath
}

// promptValue returns the flag value when set, otherwise asks on the
// console. With prompts disabled the flag value is used as-is.
func promptValue(in *bufio.Reader, flagValue, label string, noPrompt bool) string {
	if strings.TrimSpace(flagValue) != "" || noPrompt {
		return flagValue
	}
	fmt.Print(label)
	line, err := in.ReadString('\n')
	if err != nil {
		return flagValue
	}
	return strings.TrimSpace(line)
}

// cleanPath removes quotes and extra whitespace from user input paths,
// which Windows "Copy as path" wraps in double quotes.
func cleanPath(path string) string {
	s := strings.TrimSpace(path)
	s = strings.ReplaceAll(s, `"`, "")
	s = strings.ReplaceAll(s, "'", "")
	return s
}
