package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/joseph-ayodele/cadastre-extractor/constants"
	"github.com/joseph-ayodele/cadastre-extractor/internal/common"
	"github.com/joseph-ayodele/cadastre-extractor/internal/entity"
)

func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := Open(context.Background(), Config{DSN: filepath.Join(t.TempDir(), "ledger.db")}, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { Close(db, nil) })
	return db
}

func TestDocumentLifecycle(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	docs := NewDocumentRepository(db, nil)

	okID, err := docs.Start(ctx, NewDocument{RunID: "run1", Position: 0, SourcePath: "/in/a.pdf", Name: "a.pdf", Format: constants.PDF})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	badID, err := docs.Start(ctx, NewDocument{RunID: "run1", Position: 1, SourcePath: "/in/b.png", Name: "b.png", Format: constants.IMAGE})
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	if err := docs.SetStatus(ctx, okID, constants.DocumentStatusTablesOK); err != nil {
		t.Fatalf("status: %v", err)
	}
	stats := entity.DocumentStats{RawOwners: 3, ValidOwners: 2, TableRows: 5, Strategy: "multi_owner", Merged: 10, Kept: 8}
	if err := docs.FinishSuccess(ctx, okID, stats); err != nil {
		t.Fatalf("finish: %v", err)
	}
	if err := docs.FinishFailure(ctx, badID, "tesseract missing"); err != nil {
		t.Fatalf("fail: %v", err)
	}

	rows, err := docs.ListByRun(ctx, "run1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0].Status != string(constants.DocumentStatusDone) || rows[0].DocumentStats != stats {
		t.Errorf("rows[0] = %+v", rows[0])
	}
	if rows[1].Status != string(constants.DocumentStatusFailed) || rows[1].ErrorMessage != "tesseract missing" {
		t.Errorf("rows[1] = %+v", rows[1])
	}

	err = docs.SetStatus(ctx, "missing", constants.DocumentStatusDone)
	if !errors.Is(err, common.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestRecordsRoundTripInOrder(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewRecordRepository(db, nil)

	in := []entity.NormalizedRecord{
		{Department: "25", Commune: "424", Section: "0000A", PlotNumber: "0090", Surname: "MARTIN", UniqueID: "254240000A0090", SourceDocument: "a.pdf"},
		{Department: "05", Commune: "007", Section: "00ZC", PlotNumber: "0003", Surname: "DUPONT", UniqueID: "05007000ZC0003", SourceDocument: "b.pdf"},
	}
	if err := repo.SaveRun(ctx, "run1", in); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := repo.ListByRun(ctx, "run1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != len(in) {
		t.Fatalf("records = %d, want %d", len(got), len(in))
	}
	for i := range in {
		if got[i] != in[i] {
			t.Errorf("record %d = %+v, want %+v", i, got[i], in[i])
		}
	}

	if err := repo.SaveRun(ctx, "run1", in[:1]); !errors.Is(err, common.ErrStore) {
		t.Errorf("duplicate position: err = %v, want ErrStore", err)
	}
}

func TestRunLifecycle(t *testing.T) {
	ctx := context.Background()
	runs := NewRunRepository(openTestDB(t), nil)

	if err := runs.Start(ctx, "run1"); err != nil {
		t.Fatalf("start: %v", err)
	}
	stats := entity.BatchStats{Documents: 2, Concatenated: 12, CrossDuplicates: 1, RejectedInvalid: 1, Exported: 10}
	if err := runs.Finish(ctx, "run1", constants.DocumentStatusDone, stats); err != nil {
		t.Fatalf("finish: %v", err)
	}
	got, err := runs.Get(ctx, "run1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != string(constants.DocumentStatusDone) || got.BatchStats != stats || got.FinishedAt == "" {
		t.Errorf("run = %+v", got)
	}
}

func TestIsPostgres(t *testing.T) {
	tests := map[string]bool{
		"postgres://u:p@localhost/db": true,
		"postgresql://localhost/db":   true,
		"ledger.db":                   false,
		":memory:":                    false,
	}
	for dsn, want := range tests {
		if got := IsPostgres(dsn); got != want {
			t.Errorf("IsPostgres(%q) = %v, want %v", dsn, got, want)
		}
	}
}
