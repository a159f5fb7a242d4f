package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/joseph-ayodele/cadastre-extractor/constants"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestIngestDirectory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "b.pdf"), "doc b")
	writeFile(t, filepath.Join(root, "a.PNG"), "doc a")
	writeFile(t, filepath.Join(root, "sub", "c.jpeg"), "doc c")
	writeFile(t, filepath.Join(root, "copy-of-b.pdf"), "doc b")
	writeFile(t, filepath.Join(root, "notes.txt"), "ignored")
	writeFile(t, filepath.Join(root, ".hidden.pdf"), "hidden")
	writeFile(t, filepath.Join(root, ".cache", "d.pdf"), "hidden dir")

	docs, stats, err := NewFSIngestor(nil).IngestDirectory(context.Background(), root, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"a.PNG", "b.pdf", "c.jpeg"}
	if len(docs) != len(want) {
		t.Fatalf("docs = %+v, want %v", docs, want)
	}
	for i, name := range want {
		if docs[i].Name != name {
			t.Errorf("docs[%d] = %s, want %s", i, docs[i].Name, name)
		}
	}
	if docs[0].Format != constants.IMAGE || docs[1].Format != constants.PDF {
		t.Errorf("formats = %s, %s", docs[0].Format, docs[1].Format)
	}
	if len(docs[1].HashHex) != 64 {
		t.Errorf("hash = %q", docs[1].HashHex)
	}
	if stats.Matched != 4 || stats.Deduplicated != 1 || stats.Succeeded != 3 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestIngestPathRejectsUnsupported(t *testing.T) {
	p := filepath.Join(t.TempDir(), "notes.txt")
	writeFile(t, p, "x")
	if _, err := NewFSIngestor(nil).IngestPath(context.Background(), p); err == nil {
		t.Fatal("expected error")
	}
}

func TestIngestDirectoryRequiresRoot(t *testing.T) {
	if _, _, err := NewFSIngestor(nil).IngestDirectory(context.Background(), " ", true); err == nil {
		t.Fatal("expected error")
	}
}
