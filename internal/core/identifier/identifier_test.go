package identifier

import (
	"errors"
	"testing"

	"github.com/joseph-ayodele/cadastre-extractor/internal/common"
	"github.com/joseph-ayodele/cadastre-extractor/internal/entity"
)

func TestGenerate(t *testing.T) {
	cases := []struct {
		name                                    string
		department, commune, section, plot, pre string
		want                                    string
	}{
		{"reference", "25", "424", "A", "90", "", "254240000A0090"},
		{"with prefix", "25", "424", "AB", "90", "302", "25424302AB0090"},
		{"short prefix zero fill", "25", "424", "A", "7", "1", "254241000A0007"},
		{"prefix truncates section", "25", "424", "ABC", "7", "302", "25424302AB0007"},
		{"long prefix", "25", "424", "B", "7", "12345", "254241230B0007"},
		{"defaults", "", "", "", "", "", "000000000A0001"},
		{"padding", "5", "7", "ZC", "3", "", "05007000ZC0003"},
		{"long plot keeps last digits", "25", "424", "A", "123456", "", "254240000A3456"},
		{"long codes truncated", "2501", "42499", "A", "1", "", "254240000A0001"},
		{"long section keeps first", "25", "424", "ABCDEFG", "1", "", "25424ABCDE0001"},
		{"lowercase accented section", "25", "424", "é", "1", "", "254240000E0001"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := Generate(c.department, c.commune, c.section, c.plot, c.pre)
			if err != nil {
				t.Fatalf("Generate: %v", err)
			}
			if got != c.want {
				t.Fatalf("Generate = %q, want %q", got, c.want)
			}
			if len(got) != 14 {
				t.Fatalf("len = %d", len(got))
			}
		})
	}
}

func TestGenerateAlwaysFourteen(t *testing.T) {
	values := []string{"", "0", "25", "2A", "XX", "COMMUNE", "12345678", "n°42", "  ", "é-ç"}
	for _, d := range values {
		for _, c := range values {
			for _, s := range values {
				for _, p := range values {
					id, err := Generate(d, c, s, p, p)
					if err != nil {
						t.Fatalf("Generate(%q,%q,%q,%q): %v", d, c, s, p, err)
					}
					if !Valid(id) {
						t.Fatalf("Generate(%q,%q,%q,%q) = %q is not valid", d, c, s, p, id)
					}
				}
			}
		}
	}
}

func TestSectionBlockWidth(t *testing.T) {
	for _, pre := range []string{"", "1", "12", "123", "1234"} {
		for _, sec := range []string{"", "A", "AB", "ABCDEF"} {
			p, s := SectionBlock(pre, sec)
			if len(p)+len(s) != 5 {
				t.Fatalf("SectionBlock(%q,%q) = (%q,%q)", pre, sec, p, s)
			}
		}
	}
}

func TestEnforceRejectsNonAlnum(t *testing.T) {
	_, err := enforce("25424 000A0090")
	if !errors.Is(err, common.ErrIdentifierInvariant) {
		t.Fatalf("want ErrIdentifierInvariant, got %v", err)
	}
	if !common.IsFatal(err) {
		t.Fatal("identifier invariant errors must be fatal")
	}
	id, err := enforce("2542")
	if err != nil || id != "25420000000000" {
		t.Fatalf("enforce short = %q, %v", id, err)
	}
}

func TestFormat(t *testing.T) {
	r := entity.NormalizedRecord{Department: "5", Commune: "7", Section: "A", PlotNumber: "90"}
	if err := Format(&r); err != nil {
		t.Fatal(err)
	}
	if r.Department != "05" || r.Commune != "007" || r.Prefix != "" || r.Section != "0000A" || r.PlotNumber != "0090" {
		t.Fatalf("Format fields = %+v", r)
	}
	if r.UniqueID != "050070000A0090" {
		t.Fatalf("UniqueID = %q", r.UniqueID)
	}
}
