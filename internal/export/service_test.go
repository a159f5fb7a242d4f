package export

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/cadastre-extractor/internal/entity"
)

func sampleRecords() []entity.NormalizedRecord {
	return []entity.NormalizedRecord{
		{
			Department: "05", Commune: "007", Section: "00ZC", PlotNumber: "0003",
			AreaHa: "1", AreaA: "20", AreaCa: "50", RightType: "PP",
			Designation: "LES PRES; BAS", Surname: "MARTIN", GivenName: "Jean",
			UniqueID: "05007000ZC0003", SourceDocument: "a.pdf",
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := NewService(nil).WriteCSV(&buf, sampleRecords()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b := buf.Bytes()
	if !bytes.HasPrefix(b, utf8BOM) {
		t.Fatal("missing BOM")
	}
	lines := strings.Split(strings.TrimRight(string(b[len(utf8BOM):]), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(lines))
	}
	if lines[0] != strings.Join(entity.ExportColumns, ";") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "05;007;") {
		t.Errorf("row = %q", lines[1])
	}
	if !strings.Contains(lines[1], `"LES PRES; BAS"`) {
		t.Errorf("separator inside a field must be quoted: %q", lines[1])
	}
}

func TestWriteArtifacts(t *testing.T) {
	dir := t.TempDir()
	out, err := NewService(nil).Write(context.Background(), dir, "run1", sampleRecords(), true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(out.CSV); err != nil {
		t.Errorf("csv: %v", err)
	}

	f, err := excelize.OpenFile(out.XLSX)
	if err != nil {
		t.Fatalf("open xlsx: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows(sheet)
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[1][0] != "05" || rows[1][16] != "05007000ZC0003" {
		t.Errorf("row = %v", rows[1])
	}
}

func TestWriteCSVOnly(t *testing.T) {
	out, err := NewService(nil).Write(context.Background(), t.TempDir(), "run2", nil, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.XLSX != "" {
		t.Errorf("xlsx = %q, want none", out.XLSX)
	}
}
