// Package core drives a batch: it runs the collaborators of every document,
// consolidates each one and records the outcome in the run ledger.
package core

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/cadastre-extractor/constants"
	"github.com/joseph-ayodele/cadastre-extractor/internal/common"
	"github.com/joseph-ayodele/cadastre-extractor/internal/core/pipeline"
	"github.com/joseph-ayodele/cadastre-extractor/internal/entity"
	"github.com/joseph-ayodele/cadastre-extractor/internal/extract"
	"github.com/joseph-ayodele/cadastre-extractor/internal/ingest"
	"github.com/joseph-ayodele/cadastre-extractor/internal/repository"
	"github.com/joseph-ayodele/cadastre-extractor/internal/tables"
)

// Summary counts document outcomes of a batch.
type Summary struct {
	Processed int
	Failed    int
}

// Processor coordinates table extraction, header location, page rendering
// and owner extraction, then consolidates the document.
type Processor struct {
	logger   *slog.Logger
	pipeline *pipeline.Pipeline
	tables   extract.TableExtractor
	header   extract.HeaderLocator
	renderer extract.PageRenderer
	owners   extract.OwnerReader
	docsRepo repository.DocumentRepository // optional
	workers  int
}

func NewProcessor(
	logger *slog.Logger,
	pipe *pipeline.Pipeline,
	tableExtractor extract.TableExtractor,
	header extract.HeaderLocator,
	renderer extract.PageRenderer,
	owners extract.OwnerReader,
	docsRepo repository.DocumentRepository,
	workers int,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if workers <= 0 {
		workers = 1
	}
	return &Processor{
		logger:   logger,
		pipeline: pipe,
		tables:   tableExtractor,
		header:   header,
		renderer: renderer,
		owners:   owners,
		docsRepo: docsRepo,
		workers:  workers,
	}
}

// ProcessAll consolidates every document with at most `workers` in flight.
// Batches come back in input order. A failing document is logged and left
// out; a fatal error (common.IsFatal) stops the batch.
func (p *Processor) ProcessAll(ctx context.Context, docs []ingest.Document) ([]entity.DocumentBatch, Summary, error) {
	start := time.Now()
	results := make([]*entity.DocumentBatch, len(docs))
	var failed atomic.Int32

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, d := range docs {
		g.Go(func() error {
			b, err := p.ProcessDocument(gctx, i, d)
			if err != nil {
				if common.IsFatal(err) {
					return err
				}
				failed.Add(1)
				return nil
			}
			results[i] = &b
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		p.logger.Error("processor.batch.aborted", "run_id", common.RunIDFromContext(ctx), "error", err)
		return nil, Summary{}, err
	}

	out := make([]entity.DocumentBatch, 0, len(docs))
	for _, b := range results {
		if b != nil {
			out = append(out, *b)
		}
	}
	sum := Summary{Processed: len(out), Failed: int(failed.Load())}
	p.logger.Info("processor.batch.ok",
		"run_id", common.RunIDFromContext(ctx),
		"documents", len(docs),
		"processed", sum.Processed,
		"failed", sum.Failed,
		"workers", p.workers,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, sum, nil
}

// ProcessDocument runs every stage for one document and records the outcome.
func (p *Processor) ProcessDocument(ctx context.Context, position int, doc ingest.Document) (entity.DocumentBatch, error) {
	start := time.Now()
	runID := common.RunIDFromContext(ctx)
	ctx = common.WithDocument(ctx, doc.Name)

	var docID string
	if p.docsRepo != nil {
		id, err := p.docsRepo.Start(ctx, repository.NewDocument{
			RunID:      runID,
			Position:   position,
			SourcePath: doc.SourcePath,
			Name:       doc.Name,
			Format:     doc.Format,
			HashHex:    doc.HashHex,
		})
		if err != nil {
			p.logger.Warn("processor.ledger.unavailable", "document", doc.Name, "error", err)
		}
		docID = id
	}

	batch, err := p.run(ctx, docID, doc)
	if err != nil {
		p.logger.Error("processor.document.failed",
			"run_id", runID,
			"document", doc.Name,
			"error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		p.finishFailure(ctx, docID, err)
		return entity.DocumentBatch{Document: doc.Name}, err
	}

	if docID != "" {
		if err := p.docsRepo.FinishSuccess(ctx, docID, batch.Stats); err != nil {
			p.logger.Warn("processor.ledger.finish_failed", "document", doc.Name, "error", err)
		}
	}
	p.logger.Info("processor.document.ok",
		"run_id", runID,
		"document", doc.Name,
		"records", len(batch.Records),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return batch, nil
}

func (p *Processor) run(ctx context.Context, docID string, doc ingest.Document) (entity.DocumentBatch, error) {
	// 1) parcel tables (PDF only)
	var rows []entity.RawTableRow
	if doc.Format == constants.PDF && p.tables != nil {
		found, err := p.tables.Extract(ctx, doc.SourcePath)
		if err != nil {
			return entity.DocumentBatch{}, fmt.Errorf("%w: tables: %v", common.ErrExtraction, err)
		}
		rows = tables.ToRawRows(found)
		p.setStatus(ctx, docID, constants.DocumentStatusTablesOK)
	}

	// 2) header location, advisory only
	var header entity.GeoRef
	if p.header != nil {
		ref, err := p.header.Locate(ctx, doc.SourcePath)
		if err != nil {
			p.logger.Warn("processor.header.unavailable", "document", doc.Name, "error", err)
		} else {
			header = ref
		}
	}

	// 3) owners, page by page; records pair owners with rows, so a document
	// without rows never reaches the vision backends
	var owners []entity.RawOwnerEntry
	if len(rows) == 0 {
		p.logger.Info("processor.owners.skipped", "document", doc.Name, "format", doc.Format, "reason", "no table rows")
	} else {
		found, err := p.readOwners(ctx, doc)
		if err != nil {
			return entity.DocumentBatch{}, err
		}
		owners = found
		p.setStatus(ctx, docID, constants.DocumentStatusOwnersOK)
	}

	// 4) consolidation
	return p.pipeline.RunDocument(ctx, pipeline.DocumentInput{
		Document: doc.Name,
		Rows:     rows,
		Owners:   owners,
		Header:   header,
	})
}

func (p *Processor) readOwners(ctx context.Context, doc ingest.Document) ([]entity.RawOwnerEntry, error) {
	if p.renderer == nil || p.owners == nil {
		return nil, nil
	}
	pages, cleanup, err := p.renderer.RenderPages(ctx, doc.SourcePath)
	if err != nil {
		return nil, fmt.Errorf("%w: render: %v", common.ErrExtraction, err)
	}
	defer cleanup()

	var owners []entity.RawOwnerEntry
	for _, pg := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		found, res := p.owners.ExtractPage(ctx, doc.Name, pg.Path, pg.Page)
		p.logger.Debug("processor.page.owners",
			"document", doc.Name,
			"page", pg.Page,
			"owners", len(found),
			"variant", string(res.Variant),
			"attempts", res.Attempts,
		)
		owners = append(owners, found...)
	}
	return owners, nil
}

func (p *Processor) setStatus(ctx context.Context, docID string, status constants.DocumentStatus) {
	if docID == "" {
		return
	}
	if err := p.docsRepo.SetStatus(ctx, docID, status); err != nil {
		p.logger.Warn("processor.ledger.status_failed", "document_id", docID, "status", status, "error", err)
	}
}

func (p *Processor) finishFailure(ctx context.Context, docID string, cause error) {
	if docID == "" {
		return
	}
	// the batch context may already be cancelled; the ledger write must still land
	ctx = context.WithoutCancel(ctx)
	if err := p.docsRepo.FinishFailure(ctx, docID, cause.Error()); err != nil {
		p.logger.Warn("processor.ledger.finish_failed", "document_id", docID, "error", err)
	}
}
