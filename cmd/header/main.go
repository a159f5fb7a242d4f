package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/joseph-ayodele/cadastre-extractor/internal/common"
	"github.com/joseph-ayodele/cadastre-extractor/internal/extract"
	"github.com/joseph-ayodele/cadastre-extractor/internal/ocr"
	"github.com/joseph-ayodele/cadastre-extractor/internal/tables"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if len(os.Args) != 2 {
		logger.Error("usage", "cmd", "header <document.pdf|png|jpg>")
		os.Exit(2)
	}
	path := os.Args[1]
	cfg := common.LoadConfig()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	ocrx := ocr.NewExtractor(ocr.Config{
		TesseractLang:    cfg.OCR.TesseractLang,
		TessdataDir:      cfg.OCR.TessdataDir,
		DPI:              cfg.OCR.DPI,
		ArtifactCacheDir: cfg.OCR.ArtifactCacheDir,
	}, nil, logger)

	start := time.Now()
	loc, err := extract.NewOCRAdapter(ocrx, logger).Locate(ctx, path)
	if err != nil {
		logger.Error("header location failed", "path", path, "error", err, "duration_ms", time.Since(start).Milliseconds())
	} else {
		logger.Info("header location OK",
			"department", loc.Department,
			"commune", loc.Commune,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}

	start = time.Now()
	tbs, err := tables.NewTabulaExtractor(cfg.OCR.MaxPages, logger).Extract(ctx, path)
	if err != nil {
		logger.Error("table extraction failed", "path", path, "error", err)
		os.Exit(1)
	}
	rows := tables.ToRawRows(tbs)
	logger.Info("table extraction OK",
		"tables", len(tbs),
		"rows", len(rows),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	for i, r := range rows {
		logger.Info("row",
			"i", i,
			"section", r.Section,
			"plot_number", r.PlotNumber,
			"designation", r.Designation,
			"area", r.AreaHa+"/"+r.AreaA+"/"+r.AreaCa,
		)
	}
}
