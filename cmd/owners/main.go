package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joseph-ayodele/cadastre-extractor/internal/common"
	"github.com/joseph-ayodele/cadastre-extractor/internal/llm/provider"
	"github.com/joseph-ayodele/cadastre-extractor/internal/ocr"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if len(os.Args) < 2 {
		logger.Error("usage: owners <document> [times]")
		os.Exit(2)
	}
	path := os.Args[1]
	times := 1
	if len(os.Args) >= 3 {
		if n, err := strconv.Atoi(os.Args[2]); err == nil && n > 0 {
			times = n
		}
	}

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	chain, err := provider.NewChain(cfg.LLM, logger)
	if err != nil {
		logger.Error("build vision chain", "error", err)
		os.Exit(1)
	}
	renderer := ocr.NewRenderer(ocr.Config{
		DPI:              cfg.OCR.DPI,
		MaxPages:         cfg.OCR.MaxPages,
		ArtifactCacheDir: cfg.OCR.ArtifactCacheDir,
	}, nil, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	pages, cleanup, err := renderer.RenderPages(ctx, path)
	if err != nil {
		logger.Error("render pages", "path", path, "error", err)
		os.Exit(1)
	}
	defer cleanup()

	// Repeated runs on the same pages show how stable the backend is.
	base := filepath.Base(path)
	for i := 1; i <= times; i++ {
		start := time.Now()
		total := 0
		for _, pg := range pages {
			owners, res := chain.ExtractPage(ctx, base, pg.Path, pg.Page)
			total += len(owners)
			for _, o := range owners {
				logger.Info("owner",
					"iter", i,
					"page", pg.Page,
					"variant", string(res.Variant),
					"surname", o.Surname,
					"given_name", o.GivenName,
					"right_type", o.RightType,
					"department", o.Department,
					"commune", o.Commune,
				)
			}
		}
		logger.Info("owners.run.ok", "iter", i, "pages", len(pages), "owners", total, "elapsed_ms", time.Since(start).Milliseconds())
	}
}
