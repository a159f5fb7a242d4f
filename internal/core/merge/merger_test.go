package merge

import (
	"fmt"
	"testing"

	"github.com/joseph-ayodele/cadastre-extractor/internal/entity"
)

func rows(n int) []entity.RawTableRow {
	out := make([]entity.RawTableRow, n)
	for i := range out {
		out[i] = entity.RawTableRow{Section: "A", PlotNumber: fmt.Sprint(i + 1)}
	}
	return out
}

func owner(surname, given string) entity.RawOwnerEntry {
	return entity.RawOwnerEntry{Surname: surname, GivenName: given, Department: "25", Commune: "424"}
}

func TestMergeSingleOwnerFiveRows(t *testing.T) {
	m := New(DefaultConfig(), nil, nil)
	res := m.Merge("doc.pdf", []entity.RawOwnerEntry{owner("MARTIN", "Jean")}, rows(5))

	if res.Applied != StrategySingle {
		t.Fatalf("applied = %s, want single", res.Applied)
	}
	if len(res.Records) != 5 {
		t.Fatalf("records = %d, want 5", len(res.Records))
	}
	for i, r := range res.Records {
		if r.Surname != "MARTIN" || r.GivenName != "Jean" || r.SourceDocument != "doc.pdf" {
			t.Fatalf("record %d = %+v", i, r)
		}
		if r.PlotNumber != fmt.Sprint(i+1) {
			t.Fatalf("record %d plot = %q", i, r.PlotNumber)
		}
	}
}

func TestMergeCombinationGuard(t *testing.T) {
	m := New(DefaultConfig(), nil, nil)
	owners := []entity.RawOwnerEntry{
		owner("MARTIN", "Jean"),
		owner("DURAND", "Paul"),
		owner("BERNARD", "Luc"),
	}
	res := m.Merge("doc.pdf", owners, rows(40))

	if res.Decision.Strategy != StrategyMulti {
		t.Fatalf("detected = %s, want multi", res.Decision.Strategy)
	}
	if res.Applied != StrategySingle {
		t.Fatalf("applied = %s, want single fallback", res.Applied)
	}
	if len(res.Records) != 40 {
		t.Fatalf("records = %d, want 40", len(res.Records))
	}
}

func TestMergeCartesianRowsOuter(t *testing.T) {
	m := New(DefaultConfig(), nil, nil)
	owners := []entity.RawOwnerEntry{
		owner("MARTIN", "Jean"),
		owner("DURAND", "Paul"),
		owner("BERNARD", "Luc"),
	}
	res := m.Merge("doc.pdf", owners, rows(4))

	if res.Applied != StrategyMulti || len(res.Records) != 12 {
		t.Fatalf("applied=%s records=%d", res.Applied, len(res.Records))
	}
	if res.Records[0].PlotNumber != "1" || res.Records[2].PlotNumber != "1" || res.Records[3].PlotNumber != "2" {
		t.Fatal("rows must be the outer loop")
	}
	if res.Records[0].Surname != "MARTIN" || res.Records[1].Surname != "DURAND" {
		t.Fatal("owners must keep their order")
	}
}

func TestMergeNoValidOwner(t *testing.T) {
	m := New(DefaultConfig(), nil, nil)
	res := m.Merge("doc.pdf", []entity.RawOwnerEntry{owner("CHEMIN DU BOIS", "")}, rows(3))
	if res.Applied != StrategyParcelOnly || len(res.Records) != 3 {
		t.Fatalf("applied=%s records=%d", res.Applied, len(res.Records))
	}
	if res.Records[0].Surname != "" {
		t.Fatal("parcel-only records carry no owner")
	}
}

func TestMergeOwnerCap(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxCombinations = 10000
	m := New(cfg, nil, nil)

	var owners []entity.RawOwnerEntry
	for i := 0; i < 60; i++ {
		o := entity.RawOwnerEntry{Surname: fmt.Sprintf("DUPONT%c%c", 'A'+i/26, 'A'+i%26), GivenName: "Jean"}
		if i%2 == 0 {
			o.Department, o.Commune = "25", "424"
		}
		owners = append(owners, o)
	}
	res := m.Merge("doc.pdf", owners, rows(2))
	if len(res.Owners) != 20 {
		t.Fatalf("owners = %d, want 20", len(res.Owners))
	}
	for _, o := range res.Owners {
		if !o.HasGeography() {
			t.Fatalf("owner %s has no geography", o.Surname)
		}
	}
	if len(res.Records) != 40 {
		t.Fatalf("records = %d, want 40", len(res.Records))
	}
}

func TestDetectOwnershipType(t *testing.T) {
	cfg := DefaultConfig()
	valid := func(entries ...entity.RawOwnerEntry) []Owner {
		return Collapse(entries)
	}
	cases := []struct {
		name   string
		owners []Owner
		rows   int
		want   Strategy
		reason string
	}{
		{"none", nil, 10, StrategyParcelOnly, "no valid owner"},
		{"dual right", valid(
			entity.RawOwnerEntry{Surname: "MARTIN", GivenName: "Jean", RightType: "usufruitier"},
			entity.RawOwnerEntry{Surname: "DURAND", GivenName: "Paul", RightType: "nu-propriétaire"},
		), 200, StrategyMulti, "usufruct and bare ownership"},
		{"shared surname", valid(
			entity.RawOwnerEntry{Surname: "MARTIN", GivenName: "Jean"},
			entity.RawOwnerEntry{Surname: "MARTIN", GivenName: "Marie"},
		), 200, StrategyMulti, "given names share a surname"},
		{"few owners many rows", valid(
			entity.RawOwnerEntry{Surname: "MARTIN", GivenName: "Jean"},
			entity.RawOwnerEntry{Surname: "DURAND", GivenName: "Paul"},
		), 60, StrategySingle, "few owners for many rows"},
		{"sparse", valid(
			entity.RawOwnerEntry{Surname: "MARTIN", GivenName: "Jean"},
			entity.RawOwnerEntry{Surname: "DURAND", GivenName: "Paul"},
		), 45, StrategySingle, "sparse owner ratio"},
		{"dense", valid(
			entity.RawOwnerEntry{Surname: "MARTIN", GivenName: "Jean"},
			entity.RawOwnerEntry{Surname: "DURAND", GivenName: "Paul"},
		), 4, StrategyMulti, "dense owner ratio"},
		{"default", valid(
			entity.RawOwnerEntry{Surname: "MARTIN", GivenName: "Jean"},
			entity.RawOwnerEntry{Surname: "DURAND", GivenName: "Paul"},
		), 10, StrategyMulti, "default"},
		{"repeated reads are not few owners", valid(
			entity.RawOwnerEntry{Surname: "MARTIN", GivenName: "Jean"},
			entity.RawOwnerEntry{Surname: "DURAND", GivenName: "Paul"},
			entity.RawOwnerEntry{Surname: "MARTIN", GivenName: "Jean"},
			entity.RawOwnerEntry{Surname: "DURAND", GivenName: "Paul"},
		), 60, StrategyMulti, "default"},
		{"repeated reads raise the ratio", valid(
			entity.RawOwnerEntry{Surname: "DURAND", GivenName: "Paul"},
			entity.RawOwnerEntry{Surname: "MARTIN", GivenName: "Jean"},
			entity.RawOwnerEntry{Surname: "DURAND", GivenName: "Paul"},
		), 45, StrategyMulti, "default"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			d := DetectOwnershipType(cfg, c.owners, c.rows)
			if d.Strategy != c.want || d.Reason != c.reason {
				t.Fatalf("got %s (%s), want %s (%s)", d.Strategy, d.Reason, c.want, c.reason)
			}
		})
	}
}

func TestDetectOwnershipTypeCountsEntries(t *testing.T) {
	owners := Collapse([]entity.RawOwnerEntry{
		{Surname: "MARTIN", GivenName: "Jean"},
		{Surname: "MARTIN", GivenName: "Jean"},
		{Surname: "MARTIN", GivenName: "Jean"},
	})
	d := DetectOwnershipType(DefaultConfig(), owners, 10)
	if d.ValidOwners != 3 || d.UniqueSurnames != 1 {
		t.Fatalf("decision = %+v, want 3 entries of 1 surname", d)
	}
	if d.Strategy != StrategySingle {
		t.Errorf("strategy = %s, want single", d.Strategy)
	}

	bare := []Owner{{RawOwnerEntry: entity.RawOwnerEntry{Surname: "MARTIN"}}}
	if d := DetectOwnershipType(DefaultConfig(), bare, 10); d.ValidOwners != 1 {
		t.Errorf("zero count owner = %d entries, want 1", d.ValidOwners)
	}
}

func TestCollapseAndPickSingle(t *testing.T) {
	owners := Collapse([]entity.RawOwnerEntry{
		{Surname: "MARTIN", GivenName: "Jean"},
		{Surname: "DURAND", GivenName: "Paul"},
		{Surname: "durand", GivenName: "paul"},
	})
	if len(owners) != 2 || owners[1].Count != 2 {
		t.Fatalf("collapse = %+v", owners)
	}
	if got := PickSingle(owners); got.Surname != "DURAND" {
		t.Fatalf("most frequent = %s", got.Surname)
	}

	withEntity := append(owners, Owner{RawOwnerEntry: entity.RawOwnerEntry{Surname: "COMMUNE DE PONTARLIER"}, Count: 1})
	if got := PickSingle(withEntity); got.Surname != "COMMUNE DE PONTARLIER" {
		t.Fatalf("legal entity should win, got %s", got.Surname)
	}
}
