package extract

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/cadastre-extractor/internal/entity"
	"github.com/joseph-ayodele/cadastre-extractor/internal/ocr"
)

// HeaderTextReader is the part of ocr.Extractor the adapter needs.
type HeaderTextReader interface {
	HeaderText(ctx context.Context, path string) (string, error)
}

// OCRAdapter implements HeaderLocator over the first-page text.
type OCRAdapter struct {
	e      HeaderTextReader
	logger *slog.Logger
}

func NewOCRAdapter(e HeaderTextReader, logger *slog.Logger) *OCRAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &OCRAdapter{e: e, logger: logger}
}

func (a *OCRAdapter) Locate(ctx context.Context, path string) (entity.GeoRef, error) {
	txt, err := a.e.HeaderText(ctx, path)
	if err != nil {
		return entity.GeoRef{}, err
	}
	ref := ocr.ParseHeader(txt)
	a.logger.Debug("extract.header.located", "path", path, "reference", ref.String(), "valid", ref.Valid())
	return ref, nil
}
