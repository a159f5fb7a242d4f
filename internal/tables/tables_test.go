package tables

import (
	"context"
	"errors"
	"testing"

	"github.com/tsawler/tabula/model"
	"github.com/tsawler/tabula/text"
)

type fakePages struct {
	pages  int
	failOn int
	read   []int
	closed int
}

func (f *fakePages) PageCount() (int, error) { return f.pages, nil }

func (f *fakePages) Fragments(n int) ([]text.TextFragment, error) {
	f.read = append(f.read, n)
	if n == f.failOn {
		return nil, errors.New("bad content stream")
	}
	return []text.TextFragment{{Text: "12", X: 10, Y: 20, Width: 8, Height: 10}}, nil
}

func (f *fakePages) Close() error {
	f.closed++
	return nil
}

// parcelDetector returns one parcel table per page that carries fragments.
type parcelDetector struct{}

func (parcelDetector) Detect(page *model.Page) ([]*model.Table, error) {
	if len(page.RawText) == 0 {
		return nil, nil
	}
	tb := model.NewTable(2, 2)
	tb.Rows[0][0].Text, tb.Rows[0][1].Text = "Section", "N° plan"
	tb.Rows[1][0].Text, tb.Rows[1][1].Text = "A", page.RawText[0].Text
	return []*model.Table{tb}, nil
}

func TestExtractOpensDocumentOnce(t *testing.T) {
	src := &fakePages{pages: 4, failOn: 2}
	opens := 0
	ext := NewTabulaExtractor(3, nil)
	ext.detector = parcelDetector{}
	ext.open = func(string) (PageSource, error) {
		opens++
		return src, nil
	}

	got, err := ext.Extract(context.Background(), "/in/a.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opens != 1 || src.closed != 1 {
		t.Errorf("opens = %d, closes = %d, want 1 and 1", opens, src.closed)
	}
	if len(src.read) != 3 {
		t.Errorf("pages read = %v, want the first 3", src.read)
	}
	if len(got) != 2 || got[0].Page != 1 || got[1].Page != 3 {
		t.Fatalf("tables = %+v", got)
	}
	if got[0].Rows[0]["N° plan"] != "12" {
		t.Errorf("row = %+v", got[0].Rows[0])
	}
}

func TestExtractOpenError(t *testing.T) {
	ext := NewTabulaExtractor(0, nil)
	ext.open = func(string) (PageSource, error) { return nil, errors.New("not a PDF") }

	if _, err := ext.Extract(context.Background(), "/in/a.pdf"); err == nil {
		t.Fatal("expected error")
	}
}
