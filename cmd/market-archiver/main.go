package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/trade-engine/market-archiver/internal/config"
	"github.com/trade-engine/market-archiver/internal/domain"
	"github.com/trade-engine/market-archiver/internal/metadata"
	"github.com/trade-engine/market-archiver/internal/pipeline"
	"github.com/trade-engine/market-archiver/internal/publisher"
	"github.com/trade-engine/market-archiver/internal/services"
)

func main() {
	os.Exit(run())
}

func run() int {
	source := flag.String("source", "", "Source directory with data files (required)")
	accountID := flag.String("account-id", "", "Cloudflare account ID")
	accessKey := flag.String("access-key", "", "R2 access key ID")
	secretKey := flag.String("secret-key", "", "R2 secret access key")
	bucket := flag.String("bucket", "", "R2 bucket name (default from config)")
	noCompress := flag.Bool("no-compress", false, "Skip whole-file compression")
	dryRun := flag.Bool("dry-run", false, "Discover and report only; no uploads")
	configPath := flag.String("config", "config.yml", "Path to configuration file")
	flag.Parse()

	// Credentials may come from a .env file instead of flags.
	_ = godotenv.Load()
	applyEnvFallback(accountID, "R2_ACCOUNT_ID")
	applyEnvFallback(accessKey, "R2_ACCESS_KEY_ID")
	applyEnvFallback(secretKey, "R2_SECRET_ACCESS_KEY")

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		return 1
	}
	if *bucket == "" {
		*bucket = cfg.Upload.Bucket
	}

	logger, err := createLogger(cfg.Application.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		return 1
	}
	defer logger.Sync()

	if *source == "" {
		fmt.Fprintln(os.Stderr, "missing required flag: --source")
		flag.Usage()
		return 1
	}
	if !*dryRun && (*accountID == "" || *accessKey == "" || *secretKey == "") {
		fmt.Fprintln(os.Stderr, "missing credentials: --account-id, --access-key and --secret-key are required (or set R2_* in the environment)")
		return 1
	}

	scanner := services.NewFileScanner(logger, cfg.Vocabulary.Exchanges)
	scan, err := scanner.Scan(*source)
	if err != nil {
		logger.Error("Scan failed", zap.Error(err))
		return 1
	}
	if len(scan.Files) == 0 {
		logger.Error("No data files found", zap.String("source", *source))
		return 1
	}

	fmt.Printf("Found %d files to process (%d skipped as unrecognized)\n",
		len(scan.Files), scan.Skipped)

	normalizer := config.NewNormalizer(cfg.Vocabulary)
	if *dryRun {
		renderDryRun(scan.Files, normalizer, !*noCompress)
		return 0
	}

	if !confirm(os.Stdin) {
		fmt.Println("Upload cancelled")
		return 0
	}

	ctx := context.Background()
	store, err := publisher.NewR2Store(ctx, publisher.R2Options{
		AccountID:         *accountID,
		AccessKey:         *accessKey,
		SecretKey:         *secretKey,
		Bucket:            *bucket,
		RequestsPerSecond: cfg.Upload.RequestsPerSecond,
	}, logger)
	if err != nil {
		logger.Error("Cannot reach remote storage", zap.Error(err))
		return 1
	}

	pub := publisher.New(store, logger)
	pipe := pipeline.New(cfg, logger, pub, !*noCompress)

	summary, err := pipe.Run(ctx, scan.Files)
	summary.Skipped = scan.Skipped
	if err != nil {
		logger.Error("Batch finished with a fatal error", zap.Error(err))
		renderSummary(summary)
		return 1
	}

	renderSummary(summary)
	logger.Info("Upload complete",
		zap.Int("processed", summary.Processed),
		zap.Int("discovered", summary.Discovered),
		zap.Int("failed", summary.Failed))
	return 0
}

func applyEnvFallback(value *string, env string) {
	if *value == "" {
		*value = os.Getenv(env)
	}
}

// confirm gates destructive runs behind an explicit yes.
func confirm(in *os.File) bool {
	fmt.Print("Proceed with upload? (yes/no): ")
	reader := bufio.NewReader(in)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(line), "yes")
}

func renderDryRun(files []domain.RawFileDescriptor, normalizer *config.Normalizer, compress bool) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("DRY RUN")
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"File", "Asset", "Timeframe", "Target Key"})

	for _, raw := range files {
		canonical := normalizer.Canonicalize(raw)
		key := "(unresolvable quarter)"
		if quarter, err := metadata.Quarter(canonical.StartDate); err == nil {
			key = publisher.DataKey(canonical.Asset, canonical.Timeframe, quarter, compress)
		}
		t.AppendRow(table.Row{raw.Filename, canonical.Asset, canonical.Timeframe, key})
	}
	t.Render()
}

func renderSummary(summary domain.BatchSummary) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("UPLOAD SUMMARY")
	t.SetStyle(table.StyleRounded)
	t.AppendRows([]table.Row{
		{"Discovered", summary.Discovered},
		{"Processed", fmt.Sprintf("%d/%d", summary.Processed, summary.Discovered)},
		{"Failed", summary.Failed},
		{"Skipped (unparsable)", summary.Skipped},
	})
	t.Render()
}

func createLogger(level string) (*zap.Logger, error) {
	var cfg zap.Config

	switch level {
	case "debug":
		cfg = zap.NewDevelopmentConfig()
	case "info":
		cfg = zap.NewProductionConfig()
	case "warn":
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		cfg = zap.NewProductionConfig()
	}

	return cfg.Build()
}
