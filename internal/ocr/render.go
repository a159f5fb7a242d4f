package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/joseph-ayodele/cadastre-extractor/constants"
)

// PageImage is one rendered page.
type PageImage struct {
	Page int
	Path string
}

// Renderer rasterizes PDF pages for the vision backends.
type Renderer struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewRenderer(cfg Config, runner Runner, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{cfg: cfg.withDefaults(), runner: defaultRunner(runner, logger), logger: logger}
}

// RenderPages returns one image per page in page order. Images pass through
// unchanged. Call cleanup once the images are no longer needed.
func (r *Renderer) RenderPages(ctx context.Context, path string) ([]PageImage, func(), error) {
	noop := func() {}
	switch constants.MapExtToFormat(filepath.Ext(path)) {
	case constants.IMAGE:
		return []PageImage{{Page: 1, Path: path}}, noop, nil
	case constants.PDF:
	default:
		return nil, noop, fmt.Errorf("unsupported extension: %q", filepath.Ext(path))
	}

	start := time.Now()
	if r.cfg.ArtifactCacheDir != "" {
		if err := os.MkdirAll(r.cfg.ArtifactCacheDir, 0o755); err != nil {
			return nil, noop, fmt.Errorf("artifact dir: %w", err)
		}
	}
	tmpDir, err := os.MkdirTemp(r.cfg.ArtifactCacheDir, "cad-pp-*")
	if err != nil {
		return nil, noop, err
	}
	cleanup := func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			r.logger.Warn("ocr.render.cleanup_error", "dir", tmpDir, "error", err)
		}
	}

	prefix := filepath.Join(tmpDir, "page")
	args := []string{"-r", strconv.Itoa(r.cfg.DPI), "-png"}
	if r.cfg.MaxPages > 0 {
		args = append(args, "-f", "1", "-l", strconv.Itoa(r.cfg.MaxPages))
	}
	args = append(args, path, prefix)

	// pdftoppm -r 200 -png <in.pdf> <tmp/page>
	_, errb, err := r.runner.Run(ctx, r.cfg.Pdftoppm, args...)
	if err != nil {
		cleanup()
		return nil, noop, fmt.Errorf("pdftoppm: %w: %s", err, truncate(string(errb), 512))
	}

	// pdftoppm zero-pads page numbers to a common width, so lexical order is page order
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if len(matches) == 0 {
		cleanup()
		return nil, noop, fmt.Errorf("no pages rendered")
	}

	pages := make([]PageImage, len(matches))
	for i, m := range matches {
		pages[i] = PageImage{Page: i + 1, Path: m}
	}
	r.logger.Info("ocr.render.ok",
		"path", path,
		"pages", len(pages),
		"dpi", r.cfg.DPI,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return pages, cleanup, nil
}
