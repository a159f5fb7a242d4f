package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/joseph-ayodele/cadastre-extractor/constants"
	"github.com/joseph-ayodele/cadastre-extractor/internal/common"
	"github.com/joseph-ayodele/cadastre-extractor/internal/core"
	"github.com/joseph-ayodele/cadastre-extractor/internal/core/geo"
	"github.com/joseph-ayodele/cadastre-extractor/internal/core/merge"
	"github.com/joseph-ayodele/cadastre-extractor/internal/core/pipeline"
	"github.com/joseph-ayodele/cadastre-extractor/internal/entity"
	"github.com/joseph-ayodele/cadastre-extractor/internal/export"
	"github.com/joseph-ayodele/cadastre-extractor/internal/extract"
	"github.com/joseph-ayodele/cadastre-extractor/internal/ingest"
	"github.com/joseph-ayodele/cadastre-extractor/internal/llm/provider"
	"github.com/joseph-ayodele/cadastre-extractor/internal/ocr"
	repo "github.com/joseph-ayodele/cadastre-extractor/internal/repository"
	"github.com/joseph-ayodele/cadastre-extractor/internal/tables"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		in      = flag.String("in", "", "directory of cadastral documents to process (required)")
		out     = flag.String("out", "", "output directory (optional, defaults to <in>/export)")
		verbose = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	if *in == "" {
		printError("Error: --in is required\n")
		os.Exit(1)
	}
	if *out == "" {
		*out = filepath.Join(*in, "export")
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *in, *out, logger); err != nil {
		logger.Error("batch.failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *common.Config, in, out string, logger *slog.Logger) error {
	start := time.Now()

	shutdown, err := common.InitTracing(ctx, cfg.Telemetry, logger)
	if err != nil {
		logger.Warn("telemetry.disabled", "error", err)
	}
	defer func() {
		sctx, cancel := common.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		shutdown(sctx)
	}()

	runID := uuid.New().String()
	ctx = common.WithRunID(ctx, runID)
	logger = logger.With("run_id", runID)

	// Optional run ledger
	var (
		db       *sqlx.DB
		runsRepo repo.RunRepository
		docsRepo repo.DocumentRepository
		recsRepo repo.RecordRepository
	)
	if cfg.Store.DSN != "" {
		db, err = repo.Open(ctx, repo.Config{DSN: cfg.Store.DSN, MaxOpenConns: cfg.Store.MaxOpenConns}, logger)
		if err != nil {
			return common.WrapError(err, "open ledger")
		}
		defer repo.Close(db, logger)
		runsRepo = repo.NewRunRepository(db, logger)
		docsRepo = repo.NewDocumentRepository(db, logger)
		recsRepo = repo.NewRecordRepository(db, logger)
		if err := runsRepo.Start(ctx, runID); err != nil {
			return err
		}
	}

	pipe, err := newPipeline(cfg, logger)
	if err != nil {
		return err
	}
	owners, err := provider.NewChain(cfg.LLM, logger)
	if err != nil {
		return err
	}

	ocrCfg := ocr.Config{
		TesseractLang:    cfg.OCR.TesseractLang,
		TessdataDir:      cfg.OCR.TessdataDir,
		DPI:              cfg.OCR.DPI,
		MaxPages:         cfg.OCR.MaxPages,
		ArtifactCacheDir: cfg.OCR.ArtifactCacheDir,
	}
	processor := core.NewProcessor(
		logger,
		pipe,
		tables.NewTabulaExtractor(cfg.OCR.MaxPages, logger),
		extract.NewOCRAdapter(ocr.NewExtractor(ocrCfg, nil, logger), logger),
		ocr.NewRenderer(ocrCfg, nil, logger),
		owners,
		docsRepo,
		cfg.Pipeline.Workers,
	)

	logger.Info("batch.ingest.start", "dir", in)
	docs, stats, err := ingest.NewFSIngestor(logger).IngestDirectory(ctx, in, true)
	if err != nil {
		finishRun(runsRepo, runID, constants.DocumentStatusFailed, entity.BatchStats{}, logger)
		return common.WrapError(err, "ingest")
	}
	logger.Info("batch.ingest.ok",
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"succeeded", stats.Succeeded,
		"failed", stats.Failed,
		"deduplicated", stats.Deduplicated)

	var ready []ingest.Document
	for _, d := range docs {
		if d.Err == "" {
			ready = append(ready, d)
		}
	}

	batches, summary, err := processor.ProcessAll(ctx, ready)
	if err != nil {
		finishRun(runsRepo, runID, constants.DocumentStatusFailed, entity.BatchStats{}, logger)
		return err
	}

	records, batchStats, err := pipe.RunBatch(ctx, batches)
	if err != nil {
		finishRun(runsRepo, runID, constants.DocumentStatusFailed, batchStats, logger)
		return err
	}

	artifacts, err := export.NewService(logger).Write(ctx, out, runID, records, cfg.Export.XLSX)
	if err != nil {
		finishRun(runsRepo, runID, constants.DocumentStatusFailed, batchStats, logger)
		return common.WrapError(err, "export")
	}

	if recsRepo != nil {
		if err := recsRepo.SaveRun(ctx, runID, records); err != nil {
			logger.Error("batch.ledger.records_failed", "error", err)
		}
	}
	finishRun(runsRepo, runID, constants.DocumentStatusDone, batchStats, logger)

	logger.Info("batch.ok",
		"documents", len(ready),
		"processed", summary.Processed,
		"failed", summary.Failed,
		"records", len(records),
		"cross_duplicates", batchStats.CrossDuplicates,
		"rejected_invalid", batchStats.RejectedInvalid,
		"csv", artifacts.CSV,
		"xlsx", artifacts.XLSX,
		"elapsed_ms", time.Since(start).Milliseconds())

	fmt.Printf("Batch processing complete!\n")
	fmt.Printf("- Run: %s\n", runID)
	fmt.Printf("- Documents processed: %d\n", summary.Processed)
	fmt.Printf("- Failures: %d\n", summary.Failed)
	fmt.Printf("- Records: %d\n", len(records))
	fmt.Printf("- Output: %s\n", artifacts.CSV)
	if artifacts.XLSX != "" {
		fmt.Printf("- Workbook: %s\n", artifacts.XLSX)
	}
	return nil
}

func newPipeline(cfg *common.Config, logger *slog.Logger) (*pipeline.Pipeline, error) {
	policy, err := geo.ParsePolicy(cfg.Pipeline.GeoPolicy)
	if err != nil {
		return nil, err
	}
	return pipeline.New(pipeline.Config{
		Merge: merge.Config{
			MaxRawOwners:            cfg.Pipeline.MaxRawOwners,
			OwnerHardCap:            cfg.Pipeline.OwnerHardCap,
			MaxCombinations:         cfg.Pipeline.MaxCombinations,
			SingleOwnerRowThreshold: cfg.Pipeline.SingleOwnerRowThreshold,
			SparseOwnerRatio:        cfg.Pipeline.SparseOwnerRatio,
			DenseOwnerRatio:         cfg.Pipeline.DenseOwnerRatio,
		},
		Geo:        geo.Config{Policy: policy, FillBlanks: cfg.Pipeline.GeoFillBlanks},
		FillFields: cfg.Pipeline.FillFields,
	}, logger)
}

// finishRun closes the ledger row of the run; ledger errors never fail the batch.
func finishRun(runs repo.RunRepository, runID string, status constants.DocumentStatus, stats entity.BatchStats, logger *slog.Logger) {
	if runs == nil {
		return
	}
	ctx, cancel := common.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := runs.Finish(ctx, runID, status, stats); err != nil {
		logger.Error("batch.ledger.finish_failed", "status", string(status), "error", err)
	}
}
