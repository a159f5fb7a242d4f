// Package tables reads the parcel tables of cadastral PDFs.
package tables

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/tsawler/tabula/model"
	"github.com/tsawler/tabula/reader"
	tabtables "github.com/tsawler/tabula/tables"
	"github.com/tsawler/tabula/text"
)

// Table is one detected table. Rows are keyed by header label, or by column
// index ("0", "1", ...) when the table has no header row.
type Table struct {
	Page   int
	Header []string
	Rows   []map[string]string
}

// Extractor finds the tables of a document.
type Extractor interface {
	Extract(ctx context.Context, path string) ([]Table, error)
}

// Detector is the slice of tabula's detectors the extractor uses.
type Detector interface {
	Detect(page *model.Page) ([]*model.Table, error)
}

// PageSource yields the text fragments of one open PDF, page by page.
type PageSource interface {
	PageCount() (int, error)
	Fragments(page int) ([]text.TextFragment, error)
	Close() error
}

// pdfPages keeps a single tabula reader open for the whole document.
type pdfPages struct {
	r *reader.Reader
}

func openPDF(path string) (PageSource, error) {
	r, err := reader.Open(path)
	if err != nil {
		return nil, err
	}
	return &pdfPages{r: r}, nil
}

func (p *pdfPages) PageCount() (int, error) { return p.r.PageCount() }

// Fragments reads page n, counted from 1.
func (p *pdfPages) Fragments(n int) ([]text.TextFragment, error) {
	page, err := p.r.GetPage(n - 1)
	if err != nil {
		return nil, err
	}
	return p.r.ExtractTextFragments(page)
}

func (p *pdfPages) Close() error { return p.r.Close() }

// TabulaExtractor reads text fragments page by page with tabula and runs the
// geometric table detector over them.
type TabulaExtractor struct {
	open     func(path string) (PageSource, error)
	detector Detector
	maxPages int
	logger   *slog.Logger
}

func NewTabulaExtractor(maxPages int, logger *slog.Logger) *TabulaExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &TabulaExtractor{
		open:     openPDF,
		detector: tabtables.NewGeometricDetector(),
		maxPages: maxPages,
		logger:   logger,
	}
}

func (t *TabulaExtractor) Extract(ctx context.Context, path string) ([]Table, error) {
	start := time.Now()

	src, err := t.open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer func() {
		if err := src.Close(); err != nil {
			t.logger.Warn("tables.close.error", "path", path, "error", err)
		}
	}()

	n, err := src.PageCount()
	if err != nil {
		return nil, fmt.Errorf("page count: %w", err)
	}
	if t.maxPages > 0 && n > t.maxPages {
		n = t.maxPages
	}

	var out []Table
	for p := 1; p <= n; p++ {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		frags, err := src.Fragments(p)
		if err != nil {
			t.logger.Warn("tables.page.error", "path", path, "page", p, "error", err)
			continue
		}

		page := model.NewPage(0, 0)
		page.Number = p
		for _, f := range frags {
			page.RawText = append(page.RawText, model.TextFragment{
				Text:     f.Text,
				BBox:     model.BBox{X: f.X, Y: f.Y, Width: f.Width, Height: f.Height},
				FontSize: f.FontSize,
				FontName: f.FontName,
			})
		}

		found, err := t.detector.Detect(page)
		if err != nil {
			t.logger.Warn("tables.detect.error", "path", path, "page", p, "error", err)
			continue
		}
		for _, tb := range found {
			if tbl, ok := FromModel(p, tb); ok {
				out = append(out, tbl)
			}
		}
	}

	t.logger.Info("tables.extract.ok",
		"path", path,
		"pages", n,
		"tables", len(out),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}

// FromModel converts a tabula table. The first row becomes the header when it
// is flagged as such or reads like a parcel table header.
func FromModel(page int, tb *model.Table) (Table, bool) {
	if tb == nil || len(tb.Rows) == 0 {
		return Table{}, false
	}
	grid := make([][]string, 0, len(tb.Rows))
	for _, row := range tb.Rows {
		cells := make([]string, len(row))
		for i, c := range row {
			cells[i] = strings.TrimSpace(c.Text)
		}
		grid = append(grid, cells)
	}

	hasHeader := len(tb.Rows[0]) > 0 && tb.Rows[0][0].IsHeader
	if !hasHeader {
		hasHeader = LooksLikeHeader(grid[0])
	}
	return FromGrid(page, grid, hasHeader), true
}

// FromGrid builds a Table from plain cells.
func FromGrid(page int, grid [][]string, hasHeader bool) Table {
	tbl := Table{Page: page}
	body := grid
	if hasHeader && len(grid) > 0 {
		tbl.Header = grid[0]
		body = grid[1:]
	}
	for _, cells := range body {
		if allBlank(cells) {
			continue
		}
		row := make(map[string]string, len(cells))
		for i, v := range cells {
			key := strconv.Itoa(i)
			if hasHeader && i < len(tbl.Header) {
				key = headerKey(tbl.Header[i], i)
			}
			row[key] = v
		}
		tbl.Rows = append(tbl.Rows, row)
	}
	return tbl
}

// headerKey is the row key of column i; blank labels fall back to the index.
func headerKey(label string, i int) string {
	if strings.TrimSpace(label) == "" {
		return strconv.Itoa(i)
	}
	return label
}

func allBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
