package llm

import (
	"errors"
	"testing"

	"github.com/joseph-ayodele/cadastre-extractor/internal/common"
)

func TestParseOwners(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		lenient     bool
		wantSurname []string
		wantErr     bool
	}{
		{
			name:        "canonical",
			raw:         `{"owners":[{"surname":"MARTIN","given_name":"Paul","department":"25"}]}`,
			wantSurname: []string{"MARTIN"},
		},
		{
			name:        "fenced french keys",
			raw:         "```json\n{\"proprietaires\":[{\"Nom\":\"DUPONT\",\"Prénom\":\"Marie\",\"Code postal\":25000}]}\n```",
			wantSurname: []string{"DUPONT"},
		},
		{
			name:        "bare array with prose",
			raw:         `Here are the owners: [{"nom":"LEROY"},{"nom":"PETIT"}] done`,
			wantSurname: []string{"LEROY", "PETIT"},
		},
		{
			name:        "single object",
			raw:         `{"surname":"BLANC","city":"BESANCON"}`,
			wantSurname: []string{"BLANC"},
		},
		{
			name:    "missing surname strict",
			raw:     `{"owners":[{"surname":"MARTIN"},{"given_name":"Paul"}]}`,
			wantErr: true,
		},
		{
			name:        "missing surname lenient",
			raw:         `{"owners":[{"surname":"MARTIN"},{"given_name":"Paul"}]}`,
			lenient:     true,
			wantSurname: []string{"MARTIN"},
		},
		{
			name:        "long department lenient",
			raw:         `{"owners":[{"surname":"MARTIN","department":"25 - DOUBS"}]}`,
			lenient:     true,
			wantSurname: []string{"MARTIN"},
		},
		{
			name:    "not json",
			raw:     "no owners on this page",
			wantErr: true,
		},
		{
			name:    "no owners key",
			raw:     `{"parcels":[]}`,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseOwners([]byte(tt.raw), tt.lenient, nil)
			if tt.wantErr {
				if !errors.Is(err, common.ErrExtraction) {
					t.Fatalf("err = %v, want ErrExtraction", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tt.wantSurname) {
				t.Fatalf("owners = %d, want %d", len(got), len(tt.wantSurname))
			}
			for i, s := range tt.wantSurname {
				if got[i].Surname != s {
					t.Errorf("owners[%d].Surname = %q, want %q", i, got[i].Surname, s)
				}
			}
		})
	}
}

func TestNormalizeOwnersJSONCoercesValues(t *testing.T) {
	raw := `{"owners":[{"Nom":"DUPONT","code_postal":25000,"droit":null,"extra":"x"}]}`
	doc, dropped, err := NormalizeOwnersJSON([]byte(raw), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `{"owners":[{"postal_code":"25000","surname":"DUPONT"}]}`
	if string(doc) != want {
		t.Errorf("doc = %s, want %s", doc, want)
	}
	if len(dropped) != 1 || dropped[0] != "extra(unknown)" {
		t.Errorf("dropped = %v", dropped)
	}
}

func TestDropInvalidOwnersKeepsDepartmentCode(t *testing.T) {
	doc := []byte(`{"owners":[{"surname":"MARTIN","department":"25 - DOUBS"},{"surname":"N/A"}]}`)
	got, dropped, err := DropInvalidOwners(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `{"owners":[{"department":"25","surname":"MARTIN"}]}`
	if string(got) != want {
		t.Errorf("got %s, want %s", got, want)
	}
	if len(dropped) != 1 {
		t.Errorf("dropped = %v", dropped)
	}
}
