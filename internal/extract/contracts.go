// Package extract holds the contracts between the batch processor and the
// collaborators that read a document: tables, header location, page images
// and owners.
package extract

import (
	"context"

	"github.com/joseph-ayodele/cadastre-extractor/internal/entity"
	"github.com/joseph-ayodele/cadastre-extractor/internal/llm"
	"github.com/joseph-ayodele/cadastre-extractor/internal/ocr"
	"github.com/joseph-ayodele/cadastre-extractor/internal/tables"
)

// TableExtractor is Stage 1: document -> parcel tables.
type TableExtractor interface {
	Extract(ctx context.Context, path string) ([]tables.Table, error)
}

// HeaderLocator reads the (department, commune) printed in the document header.
type HeaderLocator interface {
	Locate(ctx context.Context, path string) (entity.GeoRef, error)
}

// PageRenderer turns a document into page images for the vision backend.
type PageRenderer interface {
	RenderPages(ctx context.Context, path string) ([]ocr.PageImage, func(), error)
}

// OwnerReader is Stage 2: page image -> owner entries.
type OwnerReader interface {
	ExtractPage(ctx context.Context, document, imagePath string, page int) ([]entity.RawOwnerEntry, llm.ChainResult)
}
