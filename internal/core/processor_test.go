package core

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/joseph-ayodele/cadastre-extractor/constants"
	"github.com/joseph-ayodele/cadastre-extractor/internal/common"
	"github.com/joseph-ayodele/cadastre-extractor/internal/core/merge"
	"github.com/joseph-ayodele/cadastre-extractor/internal/core/pipeline"
	"github.com/joseph-ayodele/cadastre-extractor/internal/entity"
	"github.com/joseph-ayodele/cadastre-extractor/internal/ingest"
	"github.com/joseph-ayodele/cadastre-extractor/internal/llm"
	"github.com/joseph-ayodele/cadastre-extractor/internal/ocr"
	"github.com/joseph-ayodele/cadastre-extractor/internal/repository"
	"github.com/joseph-ayodele/cadastre-extractor/internal/tables"
)

type fakeTables struct {
	byPath map[string][]tables.Table
	err    map[string]error
}

func (f fakeTables) Extract(_ context.Context, path string) ([]tables.Table, error) {
	return f.byPath[path], f.err[path]
}

type fakeHeader struct{ ref entity.GeoRef }

func (f fakeHeader) Locate(context.Context, string) (entity.GeoRef, error) { return f.ref, nil }

type fakeRenderer struct {
	mu       sync.Mutex
	cleaned  int
	failPath string
}

func (f *fakeRenderer) RenderPages(_ context.Context, path string) ([]ocr.PageImage, func(), error) {
	if path == f.failPath {
		return nil, func() {}, errors.New("pdftoppm missing")
	}
	cleanup := func() {
		f.mu.Lock()
		f.cleaned++
		f.mu.Unlock()
	}
	return []ocr.PageImage{{Page: 1, Path: path + "-1.png"}}, cleanup, nil
}

type fakeOwners struct {
	byDoc map[string][]entity.RawOwnerEntry
}

func (f fakeOwners) ExtractPage(_ context.Context, document, _ string, page int) ([]entity.RawOwnerEntry, llm.ChainResult) {
	owners := f.byDoc[document]
	return owners, llm.ChainResult{Variant: llm.VariantStrict, Attempts: 1, Owners: len(owners), Won: len(owners) > 1}
}

func parcelTable(plots ...string) []tables.Table {
	grid := [][]string{{"Section", "N° plan", "Lieu-dit", "HA", "A", "CA"}}
	for _, p := range plots {
		grid = append(grid, []string{"A", p, "LE BOURG", "", "10", "98"})
	}
	return []tables.Table{tables.FromGrid(1, grid, true)}
}

func newTestPipeline(t *testing.T) *pipeline.Pipeline {
	t.Helper()
	p, err := pipeline.New(pipeline.Config{Merge: merge.DefaultConfig()}, nil)
	if err != nil {
		t.Fatalf("pipeline: %v", err)
	}
	return p
}

func doc(name string) ingest.Document {
	return ingest.Document{SourcePath: "/in/" + name, Name: name, Format: constants.MapExtToFormat(filepath.Ext(name))}
}

func TestProcessAll(t *testing.T) {
	martin := entity.RawOwnerEntry{Surname: "MARTIN", GivenName: "Jean", Department: "25", Commune: "424"}
	dupont := entity.RawOwnerEntry{Surname: "DUPONT", GivenName: "Marie", Department: "26", Commune: "001"}

	ft := fakeTables{
		byPath: map[string][]tables.Table{
			"/in/a.pdf": parcelTable("90", "91"),
			"/in/c.pdf": parcelTable("5"),
			"/in/d.pdf": parcelTable("7"),
		},
		err: map[string]error{"/in/b.pdf": errors.New("corrupt xref")},
	}
	fo := fakeOwners{byDoc: map[string][]entity.RawOwnerEntry{
		"a.pdf": {martin},
		"c.pdf": {dupont},
		"d.pdf": {martin},
	}}
	renderer := &fakeRenderer{failPath: "/in/d.pdf"}

	for _, workers := range []int{1, 4} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			db, err := repository.Open(context.Background(), repository.Config{DSN: filepath.Join(t.TempDir(), "l.db")}, nil)
			if err != nil {
				t.Fatal(err)
			}
			defer repository.Close(db, nil)
			docsRepo := repository.NewDocumentRepository(db, nil)

			p := NewProcessor(nil, newTestPipeline(t), ft, fakeHeader{}, renderer, fo, docsRepo, workers)
			ctx := common.WithRunID(context.Background(), "run-1")
			docs := []ingest.Document{doc("a.pdf"), doc("b.pdf"), doc("c.pdf"), doc("d.pdf")}

			batches, sum, err := p.ProcessAll(ctx, docs)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if sum.Processed != 2 || sum.Failed != 2 {
				t.Fatalf("summary = %+v", sum)
			}
			if batches[0].Document != "a.pdf" || batches[1].Document != "c.pdf" {
				t.Fatalf("order = %s, %s", batches[0].Document, batches[1].Document)
			}
			if len(batches[0].Records) != 2 || batches[0].Records[0].UniqueID != "254240000A0090" {
				t.Errorf("a.pdf records = %+v", batches[0].Records)
			}
			if batches[1].Records[0].Geo() != (entity.GeoRef{Department: "26", Commune: "001"}) {
				t.Errorf("c.pdf geo = %+v", batches[1].Records[0].Geo())
			}

			rows, err := docsRepo.ListByRun(ctx, "run-1")
			if err != nil {
				t.Fatal(err)
			}
			want := []constants.DocumentStatus{
				constants.DocumentStatusDone,
				constants.DocumentStatusFailed,
				constants.DocumentStatusDone,
				constants.DocumentStatusFailed,
			}
			if len(rows) != len(want) {
				t.Fatalf("ledger rows = %d", len(rows))
			}
			for i, w := range want {
				if rows[i].Status != string(w) {
					t.Errorf("ledger[%d] = %s, want %s", i, rows[i].Status, w)
				}
			}
			if rows[0].Kept != 2 {
				t.Errorf("ledger kept = %d", rows[0].Kept)
			}
		})
	}
}

func TestProcessDocumentImageSkipsTables(t *testing.T) {
	ft := fakeTables{err: map[string]error{"/in/scan.png": errors.New("must not be called")}}
	fo := fakeOwners{byDoc: map[string][]entity.RawOwnerEntry{
		"scan.png": {{Surname: "MARTIN", Department: "25", Commune: "424"}},
	}}
	// rendering the image would fail the document
	renderer := &fakeRenderer{failPath: "/in/scan.png"}
	p := NewProcessor(nil, newTestPipeline(t), ft, nil, renderer, fo, nil, 1)

	b, err := p.ProcessDocument(context.Background(), 0, doc("scan.png"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Stats.TableRows != 0 || b.Stats.RawOwners != 0 {
		t.Errorf("stats = %+v", b.Stats)
	}
	if len(b.Records) != 0 {
		t.Errorf("records = %+v", b.Records)
	}
}

func TestProcessDocumentWithoutRowsSkipsOwners(t *testing.T) {
	ft := fakeTables{byPath: map[string][]tables.Table{
		"/in/empty.pdf": {tables.FromGrid(1, [][]string{{"Section", "N° plan", "Lieu-dit"}}, true)},
	}}
	fo := fakeOwners{byDoc: map[string][]entity.RawOwnerEntry{
		"empty.pdf": {{Surname: "MARTIN", Department: "25", Commune: "424"}},
	}}
	renderer := &fakeRenderer{failPath: "/in/empty.pdf"}
	p := NewProcessor(nil, newTestPipeline(t), ft, nil, renderer, fo, nil, 1)

	b, err := p.ProcessDocument(context.Background(), 0, doc("empty.pdf"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Stats.TableRows != 0 || b.Stats.RawOwners != 0 || len(b.Records) != 0 {
		t.Errorf("stats = %+v, records = %d", b.Stats, len(b.Records))
	}
}

func TestProcessDocumentExtractionErrorIsNotFatal(t *testing.T) {
	ft := fakeTables{err: map[string]error{"/in/b.pdf": errors.New("corrupt")}}
	p := NewProcessor(nil, newTestPipeline(t), ft, nil, &fakeRenderer{}, fakeOwners{}, nil, 1)

	_, err := p.ProcessDocument(context.Background(), 0, doc("b.pdf"))
	if !errors.Is(err, common.ErrExtraction) || common.IsFatal(err) {
		t.Fatalf("err = %v", err)
	}
}
