package repository

import (
	"context"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/joseph-ayodele/cadastre-extractor/constants"
	"github.com/joseph-ayodele/cadastre-extractor/internal/entity"
)

// RunRow is one batch run.
type RunRow struct {
	RunID      string `db:"run_id"`
	Status     string `db:"status"`
	StartedAt  string `db:"started_at"`
	FinishedAt string `db:"finished_at"`
	entity.BatchStats
}

type RunRepository interface {
	Start(ctx context.Context, runID string) error
	Finish(ctx context.Context, runID string, status constants.DocumentStatus, stats entity.BatchStats) error
	Get(ctx context.Context, runID string) (*RunRow, error)
}

type runRepo struct {
	db  *sqlx.DB
	log *slog.Logger
}

func NewRunRepository(db *sqlx.DB, log *slog.Logger) RunRepository {
	if log == nil {
		log = slog.Default()
	}
	return &runRepo{db: db, log: log}
}

func (r *runRepo) Start(ctx context.Context, runID string) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`INSERT INTO runs (run_id, status, started_at) VALUES (?, ?, ?)`),
		runID, string(constants.DocumentStatusRunning), now())
	if err != nil {
		r.log.Error("repository.run.start_failed", "run_id", runID, "error", err)
		return storeError("start run", err)
	}
	return nil
}

func (r *runRepo) Finish(ctx context.Context, runID string, status constants.DocumentStatus, s entity.BatchStats) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE runs SET status = ?, finished_at = ?, documents = ?, concatenated = ?,
			cross_duplicates = ?, rejected_invalid = ?, exported = ?
		WHERE run_id = ?`),
		string(status), now(), s.Documents, s.Concatenated, s.CrossDuplicates, s.RejectedInvalid, s.Exported, runID)
	if err != nil {
		r.log.Error("repository.run.finish_failed", "run_id", runID, "error", err)
		return storeError("finish run", err)
	}
	r.log.Info("repository.run.finished", "run_id", runID, "status", status, "exported", s.Exported)
	return expectOne(res, runID)
}

func (r *runRepo) Get(ctx context.Context, runID string) (*RunRow, error) {
	var row RunRow
	err := r.db.GetContext(ctx, &row, r.db.Rebind(`
		SELECT run_id, status, started_at, finished_at, documents, concatenated,
			cross_duplicates, rejected_invalid, exported
		FROM runs WHERE run_id = ?`), runID)
	if err != nil {
		return nil, storeError("get run", err)
	}
	return &row, nil
}
