package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/insightdelivered/card-statement-parser/internal/api"
	"github.com/insightdelivered/card-statement-parser/internal/config"
	"github.com/insightdelivered/card-statement-parser/internal/extractor"
	"github.com/insightdelivered/card-statement-parser/internal/failure"
	"github.com/insightdelivered/card-statement-parser/internal/logger"
	"github.com/insightdelivered/card-statement-parser/internal/metrics"
	"github.com/insightdelivered/card-statement-parser/internal/normalizer"
	"github.com/insightdelivered/card-statement-parser/internal/parser"
	"github.com/insightdelivered/card-statement-parser/internal/pipeline"
	"github.com/insightdelivered/card-statement-parser/internal/writer"
)

const version = "1.0.0"

func main() {
	// CLI flags
	serveFlag := flag.Bool("serve", false, "Run the HTTP service instead of converting files")
	passwordFlag := flag.String("password", "", "Statement PDF password")
	issuerFlag := flag.String("issuer", "", "Card issuer layout, e.g. hdfc (auto-detected if omitted)")
	formatFlag := flag.String("format", writer.FormatJSON, "Output format: json, csv or xlsx")
	outputFlag := flag.String("output", "", "Output file path (defaults to input filename with the format's extension; - for stdout)")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	helpFlag := flag.Bool("help", false, "Show usage help")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Credit Card Statement Parser
by Insight Delivered

Decrypts password-protected credit card statement PDFs and extracts the
statement summary and transactions as JSON or CSV.

Usage:
  card-statement-parser [flags] <statement.pdf> [statement2.pdf ...]
  card-statement-parser --serve

Flags:
`)
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # Parse a statement to statement.json
  card-statement-parser --password=RAHU1985 statement.pdf

  # CSV to stdout
  card-statement-parser --password=RAHU1985 --format=csv --output=- statement.pdf

  # Spreadsheet with summary and transactions sheets
  card-statement-parser --password=RAHU1985 --format=xlsx statement.pdf

  # Run the HTTP service (POST /parse-statement/)
  card-statement-parser --serve

Supported Issuers:
  %s
`, strings.Join(issuerNames(), ", "))
	}

	flag.Parse()

	if *versionFlag {
		fmt.Printf("card-statement-parser v%s\n", version)
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		fatalf("Failed to load config: %v\n", err)
	}

	if *serveFlag {
		serve(cfg)
		return
	}

	if *helpFlag || flag.NArg() == 0 {
		flag.Usage()
		os.Exit(0)
	}

	if *passwordFlag == "" {
		fatalf("--password is required\n")
	}

	out, ext, err := writer.New(*formatFlag)
	if err != nil {
		fatalf("%v\n", err)
	}

	svc, err := newService(cfg, nil, zap.NewNop())
	if err != nil {
		fatalf("%v\n", err)
	}

	inputFiles := flag.Args()
	if *outputFlag != "" && *outputFlag != "-" && len(inputFiles) > 1 {
		fatalf("--output can only be used with a single input file\n")
	}

	for _, inputPath := range inputFiles {
		if err := processFile(svc, inputPath, *passwordFlag, *issuerFlag, out, ext, *outputFlag); err != nil {
			fmt.Fprintf(os.Stderr, "Error processing %s: %v\n", inputPath, err)
			os.Exit(1)
		}
	}
}

func newService(cfg *config.Config, m *metrics.Metrics, log *zap.Logger) (*pipeline.Service, error) {
	norm, err := normalizer.New(cfg.Statement.Currency)
	if err != nil {
		return nil, fmt.Errorf("STATEMENT_CURRENCY: %w", err)
	}
	opts := extractor.Options{PdftotextFallback: cfg.Statement.PdftotextFallback}
	return pipeline.NewService(norm, opts, m, log), nil
}

func processFile(svc *pipeline.Service, inputPath, password, issuer string, out writer.Writer, ext, outputPath string) error {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("input file not readable: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Processing: %s\n", inputPath)

	result, err := svc.Parse(context.Background(), pipeline.Upload{
		Filename: inputPath,
		Data:     data,
		Password: password,
		Issuer:   issuer,
	})
	if err != nil {
		if msg := failure.Message(err, ""); msg != "" {
			return fmt.Errorf("%s failure: %s", failure.KindOf(err), msg)
		}
		return err
	}

	fmt.Fprintf(os.Stderr, "  Found %d transaction(s)\n", len(result.Transactions))

	if outputPath == "-" {
		return out.Write(os.Stdout, result)
	}

	outPath := outputPath
	if outPath == "" {
		outPath = strings.TrimSuffix(inputPath, filepath.Ext(inputPath)) + ext
	}

	if err := writer.WriteFile(outPath, out, result); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "  Output: %s\n", outPath)
	fmt.Fprintf(os.Stderr, "  Card: %s ending %s (%s)\n", result.CardName, result.CardLast4Digits, result.NameOnCard)
	fmt.Fprintln(os.Stderr, "  Done.")
	return nil
}

func serve(cfg *config.Config) {
	if err := logger.Init(cfg.Logger.Level); err != nil {
		fatalf("Failed to initialize logger: %v\n", err)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting card statement parser",
		zap.String("version", version),
		zap.Strings("issuers", issuerNames()),
	)

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	svc, err := newService(cfg, m, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to build service", zap.Error(err))
	}

	handler := api.NewHandler(svc, appLogger, version)
	app := api.SetupRouter(handler, cfg.Server, m, appLogger)

	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		appLogger.Error("Server forced to shutdown", zap.Error(err))
	}
	appLogger.Info("Server exited")
}

func issuerNames() []string {
	issuers := parser.Issuers()
	names := make([]string, len(issuers))
	for i, issuer := range issuers {
		names[i] = string(issuer)
	}
	return names
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format, args...)
	os.Exit(1)
}
