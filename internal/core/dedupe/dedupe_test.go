package dedupe

import (
	"reflect"
	"testing"

	"github.com/joseph-ayodele/cadastre-extractor/internal/entity"
)

func sample() []entity.NormalizedRecord {
	return []entity.NormalizedRecord{
		{Surname: "MARTIN", GivenName: "Jean", Section: "A", PlotNumber: "90", Department: "25", Commune: "424", SourceDocument: "a.pdf"},
		{Surname: " martin ", GivenName: "JEAN", Section: "a", PlotNumber: "90", Department: "25", Commune: "424", SourceDocument: "b.pdf"},
		{Surname: "MARTIN", GivenName: "Jean", Section: "A", PlotNumber: "91", Department: "25", Commune: "424"},
		{},
		{Designation: "LES PRES"},
		{Surname: "MARTIN", GivenName: "Jean", Section: "A", PlotNumber: "90", Department: "25", Commune: "424", RightType: "US"},
	}
}

func TestRecords(t *testing.T) {
	out, removed := Records(sample())
	if len(out) != 3 || removed != 3 {
		t.Fatalf("kept=%d removed=%d", len(out), removed)
	}
	if out[0].SourceDocument != "a.pdf" {
		t.Fatal("first occurrence must win")
	}
	if out[2].RightType != "US" {
		t.Fatal("right type is part of the key")
	}
}

func TestRecordsIdempotent(t *testing.T) {
	once, _ := Records(sample())
	twice, removed := Records(once)
	if removed != 0 || !reflect.DeepEqual(once, twice) {
		t.Fatalf("second pass changed the set: removed=%d", removed)
	}
}

func TestKeyComparesFixedWidthCodes(t *testing.T) {
	short := entity.NormalizedRecord{Surname: "MARTIN", Section: "A", PlotNumber: "90", Department: "5", Commune: "24"}
	padded := entity.NormalizedRecord{Surname: "MARTIN", Section: "0000A", PlotNumber: "0090", Department: "05", Commune: "024"}
	if Key(short) != Key(padded) {
		t.Fatalf("keys differ:\n%s\n%s", Key(short), Key(padded))
	}

	other := padded
	other.PlotNumber = "0091"
	if Key(other) == Key(padded) {
		t.Fatal("different plots must not share a key")
	}

	out, removed := Records([]entity.NormalizedRecord{short, padded})
	if len(out) != 1 || removed != 1 {
		t.Fatalf("kept=%d removed=%d", len(out), removed)
	}
}
