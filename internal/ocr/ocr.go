// Package ocr renders document pages to images and reads the location
// header of cadastral extracts with poppler and tesseract.
package ocr

import (
	"log/slog"
)

type Config struct {
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	TesseractLang string // default "fra"
	TessdataDir   string
	DPI           int // rasterization DPI, default 200
	MaxPages      int // 0 = no limit
	PSM           int // tesseract page segmentation mode; 0 = default

	ArtifactCacheDir string // parent of the per-document render dirs; "" = os temp dir
}

func (c Config) withDefaults() Config {
	if c.Pdftotext == "" {
		c.Pdftotext = "pdftotext"
	}
	if c.Pdftoppm == "" {
		c.Pdftoppm = "pdftoppm"
	}
	if c.Tesseract == "" {
		c.Tesseract = "tesseract"
	}
	if c.TesseractLang == "" {
		c.TesseractLang = "fra"
	}
	if c.DPI <= 0 {
		c.DPI = 200
	}
	return c
}

func defaultRunner(r Runner, logger *slog.Logger) Runner {
	if r != nil {
		return r
	}
	return execRunner{logger: logger}
}
