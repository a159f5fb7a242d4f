package repository

import (
	"context"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/joseph-ayodele/cadastre-extractor/internal/entity"
)

type recordRow struct {
	RunID    string `db:"run_id"`
	Position int    `db:"position"`
	entity.NormalizedRecord
}

const insertRecord = `
	INSERT INTO records (run_id, position, department, commune, prefix, section, plot_number,
		area_ha, area_a, area_ca, right_type, designation, surname, given_name, registry_number,
		street, postal_code, city, unique_id, source_document)
	VALUES (:run_id, :position, :department, :commune, :prefix, :section, :plot_number,
		:area_ha, :area_a, :area_ca, :right_type, :designation, :surname, :given_name, :registry_number,
		:street, :postal_code, :city, :unique_id, :source_document)`

type RecordRepository interface {
	// SaveRun stores the exported records of a run in export order.
	SaveRun(ctx context.Context, runID string, records []entity.NormalizedRecord) error
	ListByRun(ctx context.Context, runID string) ([]entity.NormalizedRecord, error)
}

type recordRepository struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func NewRecordRepository(db *sqlx.DB, logger *slog.Logger) RecordRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &recordRepository{db: db, logger: logger}
}

func (r *recordRepository) SaveRun(ctx context.Context, runID string, records []entity.NormalizedRecord) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return storeError("begin", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareNamedContext(ctx, insertRecord)
	if err != nil {
		return storeError("prepare insert", err)
	}
	defer stmt.Close()

	for i, rec := range records {
		if _, err := stmt.ExecContext(ctx, recordRow{RunID: runID, Position: i, NormalizedRecord: rec}); err != nil {
			r.logger.Error("repository.records.insert_failed", "run_id", runID, "position", i, "error", err)
			return storeError("insert record", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return storeError("commit", err)
	}
	r.logger.Info("repository.records.saved", "run_id", runID, "rows", len(records))
	return nil
}

func (r *recordRepository) ListByRun(ctx context.Context, runID string) ([]entity.NormalizedRecord, error) {
	var rows []recordRow
	err := r.db.SelectContext(ctx, &rows, r.db.Rebind(`
		SELECT * FROM records WHERE run_id = ? ORDER BY position`), runID)
	if err != nil {
		return nil, storeError("list records", err)
	}
	out := make([]entity.NormalizedRecord, len(rows))
	for i, row := range rows {
		out[i] = row.NormalizedRecord
	}
	return out, nil
}
