// Package pipeline sequences the consolidation stages for one document and
// for a whole batch.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/joseph-ayodele/cadastre-extractor/constants"
	"github.com/joseph-ayodele/cadastre-extractor/internal/common"
	"github.com/joseph-ayodele/cadastre-extractor/internal/core/dedupe"
	"github.com/joseph-ayodele/cadastre-extractor/internal/core/geo"
	"github.com/joseph-ayodele/cadastre-extractor/internal/core/identifier"
	"github.com/joseph-ayodele/cadastre-extractor/internal/core/merge"
	"github.com/joseph-ayodele/cadastre-extractor/internal/core/normalize"
	"github.com/joseph-ayodele/cadastre-extractor/internal/entity"
	"github.com/joseph-ayodele/cadastre-extractor/internal/utils"
)

const tracerName = "github.com/joseph-ayodele/cadastre-extractor/internal/core/pipeline"

// Config configures a Pipeline.
type Config struct {
	Merge merge.Config
	Geo   geo.Config
	// FillFields are forward-filled down a document when blank.
	FillFields []string
}

// DefaultFillFields are propagated when Config.FillFields is empty.
var DefaultFillFields = []string{FieldPrefix, FieldAreaHa, FieldAreaA, FieldAreaCa}

// DocumentInput is everything the collaborators produced for one document.
type DocumentInput struct {
	Document string
	Rows     []entity.RawTableRow
	Owners   []entity.RawOwnerEntry
	// Header is the location printed in the document header, if any.
	Header entity.GeoRef
}

// Pipeline runs the consolidation stages. It holds no per-document state and
// is safe for concurrent use.
type Pipeline struct {
	cfg        Config
	merger     *merge.Merger
	normalizer *normalize.Normalizer
	filter     *geo.Filter
	tracer     trace.Tracer
	log        *slog.Logger
}

// New builds a Pipeline.
func New(cfg Config, logger *slog.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(cfg.FillFields) == 0 {
		cfg.FillFields = DefaultFillFields
	}
	for _, f := range cfg.FillFields {
		if !KnownField(f) {
			return nil, fmt.Errorf("%w: unknown fill field %q", common.ErrInvalidInput, f)
		}
	}
	return &Pipeline{
		cfg:        cfg,
		merger:     merge.New(cfg.Merge, nil, logger),
		normalizer: normalize.New(logger),
		filter:     geo.New(cfg.Geo, logger),
		tracer:     otel.Tracer(tracerName),
		log:        logger,
	}, nil
}

// RunDocument consolidates one document: merge, normalize, assign
// identifiers, forward-fill, drop structurally incomplete rows, filter
// geography, deduplicate and refresh identifiers.
func (p *Pipeline) RunDocument(ctx context.Context, in DocumentInput) (entity.DocumentBatch, error) {
	start := time.Now()
	ctx, span := p.tracer.Start(ctx, "pipeline.document",
		trace.WithAttributes(attribute.String("document", in.Document)))
	defer span.End()

	dc := NewDocumentContext(in.Document, p.cfg.FillFields)
	p.log.Info("pipeline.document.start",
		"run_id", common.RunIDFromContext(ctx),
		"document", in.Document,
		"rows", len(in.Rows),
		"owners", len(in.Owners),
	)

	merged := p.merger.Merge(in.Document, in.Owners, in.Rows)
	dc.Stats.RawOwners = merged.RawOwners
	dc.Stats.ValidOwners = merged.Decision.ValidOwners
	dc.Stats.TableRows = len(in.Rows)
	dc.Stats.Strategy = string(merged.Applied)
	dc.Stats.Merged = len(merged.Records)
	records := merged.Records

	p.normalizer.Records(records)

	if err := assignAll(records); err != nil {
		span.RecordError(err)
		return entity.DocumentBatch{Document: in.Document}, err
	}

	for i := range records {
		dc.ForwardFill(&records[i])
	}

	records = dropIncomplete(records, &dc.Stats)

	filtered := p.filter.Apply(in.Document, records, in.Header)
	dc.Stats.DroppedContaminated = filtered.Dropped
	records = filtered.Records

	records, dc.Stats.Duplicates = dedupe.Records(records)

	if err := assignAll(records); err != nil {
		span.RecordError(err)
		return entity.DocumentBatch{Document: in.Document}, err
	}
	dc.Stats.Kept = len(records)

	span.SetAttributes(
		attribute.String("strategy", dc.Stats.Strategy),
		attribute.Int("records", dc.Stats.Kept),
		attribute.Int("dropped_contaminated", dc.Stats.DroppedContaminated),
	)
	p.log.Info("pipeline.document.done",
		"document", in.Document,
		"strategy", dc.Stats.Strategy,
		"merged", dc.Stats.Merged,
		"dropped_structural", dc.Stats.DroppedStructural,
		"dropped_contaminated", dc.Stats.DroppedContaminated,
		"duplicates", dc.Stats.Duplicates,
		"kept", dc.Stats.Kept,
		"reference", filtered.Reference.String(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return entity.DocumentBatch{Document: in.Document, Records: records, Stats: dc.Stats}, nil
}

// RunBatch concatenates document batches in order, deduplicates across
// documents, rejects rows whose department or commune are not numeric codes
// of the right width and applies the fixed-width export format.
func (p *Pipeline) RunBatch(ctx context.Context, batches []entity.DocumentBatch) ([]entity.NormalizedRecord, entity.BatchStats, error) {
	start := time.Now()
	_, span := p.tracer.Start(ctx, "pipeline.batch",
		trace.WithAttributes(attribute.Int("documents", len(batches))))
	defer span.End()

	var stats entity.BatchStats
	stats.Documents = len(batches)

	var all []entity.NormalizedRecord
	for _, b := range batches {
		all = append(all, b.Records...)
	}
	stats.Concatenated = len(all)

	all, stats.CrossDuplicates = dedupe.Records(all)

	out := make([]entity.NormalizedRecord, 0, len(all))
	for _, r := range all {
		if utils.IsDigits(r.Department) {
			r.Department = identifier.Department(r.Department)
		}
		if utils.IsDigits(r.Commune) {
			r.Commune = identifier.Commune(r.Commune)
		}
		if err := ValidateRecord(r); err != nil {
			stats.RejectedInvalid++
			p.log.Debug("pipeline.batch.rejected",
				"document", r.SourceDocument,
				"department", r.Department,
				"commune", r.Commune,
				"error", err,
			)
			continue
		}
		if err := identifier.Format(&r); err != nil {
			span.RecordError(err)
			return nil, stats, err
		}
		out = append(out, r)
	}
	stats.Exported = len(out)

	p.log.Info("pipeline.batch.done",
		"run_id", common.RunIDFromContext(ctx),
		"documents", stats.Documents,
		"concatenated", stats.Concatenated,
		"cross_duplicates", stats.CrossDuplicates,
		"rejected_invalid", stats.RejectedInvalid,
		"exported", stats.Exported,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, stats, nil
}

// ValidateRecord checks the final geographic codes of a record.
func ValidateRecord(r entity.NormalizedRecord) error {
	return common.NewValidator().
		Field("department", r.Department, common.Required, common.Numeric, common.ExactLength(constants.DepartmentWidth)).
		Field("commune", r.Commune, common.Required, common.Numeric, common.ExactLength(constants.CommuneWidth)).
		Error()
}

func assignAll(records []entity.NormalizedRecord) error {
	for i := range records {
		if err := identifier.Assign(&records[i]); err != nil {
			return err
		}
	}
	return nil
}

// dropIncomplete removes rows without a plot number or a section.
func dropIncomplete(records []entity.NormalizedRecord, stats *entity.DocumentStats) []entity.NormalizedRecord {
	out := records[:0]
	for _, r := range records {
		if r.PlotNumber == "" || r.Section == "" {
			stats.DroppedStructural++
			continue
		}
		out = append(out, r)
	}
	return out
}
