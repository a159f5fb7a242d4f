package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"github.com/tsawler/tabula"

	"github.com/joseph-ayodele/cadastre-extractor/constants"
	"github.com/joseph-ayodele/cadastre-extractor/internal/entity"
	"github.com/joseph-ayodele/cadastre-extractor/internal/utils"
)

// Extractor reads the first-page text that carries the document location.
type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger

	// pdfText is the embedded-text reader tried before poppler; tabula by default.
	pdfText func(path string) (string, error)
}

func NewExtractor(cfg Config, runner Runner, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{
		cfg:     cfg.withDefaults(),
		runner:  defaultRunner(runner, logger),
		logger:  logger,
		pdfText: tabulaFirstPage,
	}
}

func tabulaFirstPage(path string) (string, error) {
	txt, _, err := tabula.Open(path).Pages(1).Text()
	return txt, err
}

// HeaderText returns the normalized text of the first page. PDFs are read
// from their text layer (tabula, then pdftotext); scanned PDFs and images
// go through tesseract.
func (e *Extractor) HeaderText(ctx context.Context, path string) (string, error) {
	start := time.Now()
	ext := constants.NormalizeExt(filepath.Ext(path))

	var (
		txt    string
		method string
		err    error
	)
	switch constants.MapExtToFormat(ext) {
	case constants.PDF:
		txt, method, err = e.pdfHeader(ctx, path)
	case constants.IMAGE:
		method = "image-ocr"
		txt, err = e.tesseract(ctx, path)
	default:
		return "", fmt.Errorf("unsupported extension: %q", ext)
	}
	if err != nil {
		e.logger.Warn("ocr.header.error", "path", path, "error", err)
		return "", err
	}

	txt = Normalize(txt)
	e.logger.Debug("ocr.header.ok",
		"path", path,
		"method", method,
		"text_len", len(txt),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return txt, nil
}

func (e *Extractor) pdfHeader(ctx context.Context, path string) (string, string, error) {
	if e.pdfText != nil {
		if txt, err := e.pdfText(path); err == nil && hasText(txt) {
			return txt, "pdf-tabula", nil
		}
	}

	// pdftotext -f 1 -l 1 -layout -enc UTF-8 <path> -
	out, _, err := e.runner.Run(ctx, e.cfg.Pdftotext, "-f", "1", "-l", "1", "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err == nil && hasText(string(out)) {
		return string(out), "pdf-text", nil
	}

	tmpDir, err := os.MkdirTemp(e.cfg.ArtifactCacheDir, "cad-hdr-*")
	if err != nil {
		return "", "", err
	}
	defer func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			e.logger.Warn("ocr.header.cleanup_error", "dir", tmpDir, "error", err)
		}
	}()

	// pdftoppm -f 1 -l 1 -r DPI -png -singlefile <in.pdf> <tmp/header>
	prefix := filepath.Join(tmpDir, "header")
	_, errb, err := e.runner.Run(ctx, e.cfg.Pdftoppm, "-f", "1", "-l", "1", "-r", strconv.Itoa(e.cfg.DPI), "-png", "-singlefile", path, prefix)
	if err != nil {
		return "", "", fmt.Errorf("pdftoppm: %w: %s", err, truncate(string(errb), 512))
	}
	txt, err := e.tesseract(ctx, prefix+".png")
	return txt, "pdf-ocr", err
}

func (e *Extractor) tesseract(ctx context.Context, path string) (string, error) {
	args := []string{path, "stdout", "-l", e.cfg.TesseractLang}
	if e.cfg.PSM > 0 {
		args = append(args, "--psm", strconv.Itoa(e.cfg.PSM))
	}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}

	// tesseract <file> stdout -l <lang>
	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w: %s", err, truncate(string(errb), 512))
	}
	return string(out), nil
}

// hasText reports whether s holds at least a few letters; scanned PDFs
// often have an empty or whitespace-only text layer.
func hasText(s string) bool {
	n := 0
	for _, r := range s {
		if r > ' ' {
			n++
			if n >= 16 {
				return true
			}
		}
	}
	return false
}

var (
	reDepartment = regexp.MustCompile(`\bDEP(?:ARTEMENT|T)?\.?\s*[:\-]?\s*(\d{1,3})\b`)
	reCommune    = regexp.MustCompile(`\bCOM(?:MUNE)?\.?\s*[:\-]?\s*(\d{1,3})\b`)
	reInsee      = regexp.MustCompile(`\b(?:CODE\s+)?INSEE\s*[:\-]?\s*(\d{5})\b`)
)

// ParseHeader finds the department and commune codes printed in a page
// header ("DEPARTEMENT : 25", "COMMUNE : 424 MONT DE NOIX", "INSEE 25424").
// Missing parts stay empty.
func ParseHeader(text string) entity.GeoRef {
	t := utils.FoldUpper(text)
	var ref entity.GeoRef
	if m := reDepartment.FindStringSubmatch(t); m != nil {
		ref.Department = utils.PadLeft(m[1], constants.DepartmentWidth, '0')
	}
	if m := reCommune.FindStringSubmatch(t); m != nil {
		ref.Commune = utils.PadLeft(m[1], constants.CommuneWidth, '0')
	}
	if ref.Department == "" || ref.Commune == "" {
		if m := reInsee.FindStringSubmatch(t); m != nil {
			if ref.Department == "" {
				ref.Department = m[1][:2]
			}
			if ref.Commune == "" {
				ref.Commune = m[1][2:]
			}
		}
	}
	return ref
}
