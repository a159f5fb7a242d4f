package repository

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/joseph-ayodele/cadastre-extractor/constants"
	"github.com/joseph-ayodele/cadastre-extractor/internal/common"
	"github.com/joseph-ayodele/cadastre-extractor/internal/entity"
)

// DocumentRow is one document of a run.
type DocumentRow struct {
	ID         string `db:"id"`
	RunID      string `db:"run_id"`
	Position   int    `db:"position"`
	SourcePath string `db:"source_path"`
	Name       string `db:"name"`
	Format     string `db:"format"`
	HashHex    string `db:"hash_hex"`
	Status     string `db:"status"`
	entity.DocumentStats
	ErrorMessage string `db:"error_message"`
	StartedAt    string `db:"started_at"`
	FinishedAt   string `db:"finished_at"`
}

// NewDocument describes a document about to be processed.
type NewDocument struct {
	RunID      string
	Position   int
	SourcePath string
	Name       string
	Format     string
	HashHex    string
}

type DocumentRepository interface {
	Start(ctx context.Context, doc NewDocument) (string, error)
	SetStatus(ctx context.Context, id string, status constants.DocumentStatus) error
	FinishSuccess(ctx context.Context, id string, stats entity.DocumentStats) error
	FinishFailure(ctx context.Context, id string, message string) error
	ListByRun(ctx context.Context, runID string) ([]DocumentRow, error)
}

type documentRepo struct {
	db  *sqlx.DB
	log *slog.Logger
}

func NewDocumentRepository(db *sqlx.DB, log *slog.Logger) DocumentRepository {
	if log == nil {
		log = slog.Default()
	}
	return &documentRepo{db: db, log: log}
}

func (r *documentRepo) Start(ctx context.Context, doc NewDocument) (string, error) {
	id := uuid.New().String()
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO documents (id, run_id, position, source_path, name, format, hash_hex, status, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		id, doc.RunID, doc.Position, doc.SourcePath, doc.Name, doc.Format, doc.HashHex,
		string(constants.DocumentStatusRunning), now())
	if err != nil {
		r.log.Error("repository.document.start_failed", "document", doc.Name, "error", err)
		return "", storeError("start document", err)
	}
	r.log.Debug("repository.document.started", "document_id", id, "document", doc.Name, "format", doc.Format)
	return id, nil
}

func (r *documentRepo) SetStatus(ctx context.Context, id string, status constants.DocumentStatus) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`UPDATE documents SET status = ? WHERE id = ?`), string(status), id)
	if err != nil {
		r.log.Error("repository.document.status_failed", "document_id", id, "status", status, "error", err)
		return storeError("set document status", err)
	}
	return expectOne(res, id)
}

func (r *documentRepo) FinishSuccess(ctx context.Context, id string, s entity.DocumentStats) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE documents SET
			status = ?, raw_owners = ?, valid_owners = ?, table_rows = ?, strategy = ?, merged = ?,
			dropped_structural = ?, dropped_contaminated = ?, duplicates = ?, kept = ?, finished_at = ?
		WHERE id = ?`),
		string(constants.DocumentStatusDone), s.RawOwners, s.ValidOwners, s.TableRows, s.Strategy, s.Merged,
		s.DroppedStructural, s.DroppedContaminated, s.Duplicates, s.Kept, now(), id)
	if err != nil {
		r.log.Error("repository.document.finish_failed", "document_id", id, "error", err)
		return storeError("finish document", err)
	}
	r.log.Debug("repository.document.done", "document_id", id, "kept", s.Kept)
	return expectOne(res, id)
}

func (r *documentRepo) FinishFailure(ctx context.Context, id string, message string) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE documents SET status = ?, error_message = ?, finished_at = ? WHERE id = ?`),
		string(constants.DocumentStatusFailed), message, now(), id)
	if err != nil {
		r.log.Error("repository.document.finish_failed", "document_id", id, "error", err)
		return storeError("fail document", err)
	}
	r.log.Warn("repository.document.failed", "document_id", id, "error", message)
	return expectOne(res, id)
}

func (r *documentRepo) ListByRun(ctx context.Context, runID string) ([]DocumentRow, error) {
	var rows []DocumentRow
	err := r.db.SelectContext(ctx, &rows, r.db.Rebind(`
		SELECT id, run_id, position, source_path, name, format, hash_hex, status,
			raw_owners, valid_owners, table_rows, strategy, merged, dropped_structural,
			dropped_contaminated, duplicates, kept, error_message, started_at, finished_at
		FROM documents WHERE run_id = ? ORDER BY position`), runID)
	if err != nil {
		return nil, storeError("list documents", err)
	}
	return rows, nil
}

// storeError classifies a database failure; errors.Is matches both
// common.ErrStore and the driver error.
func storeError(op string, err error) error {
	return common.NewAppError("STORE_ERROR", op, fmt.Errorf("%w: %w", common.ErrStore, err))
}

type rowsAffected interface {
	RowsAffected() (int64, error)
}

func expectOne(res rowsAffected, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return storeError("rows affected", err)
	}
	if n == 0 {
		return fmt.Errorf("document %s: %w", id, common.ErrNotFound)
	}
	return nil
}
