// Package dedupe removes logical duplicate records.
package dedupe

import (
	"strings"

	"github.com/joseph-ayodele/cadastre-extractor/internal/core/identifier"
	"github.com/joseph-ayodele/cadastre-extractor/internal/entity"
	"github.com/joseph-ayodele/cadastre-extractor/internal/utils"
)

// Key returns the composite natural key of a record: surname, given name,
// section, plot number, department, commune, registry number and right.
// Codes are compared at their fixed export width, so "90" and "0090" match.
func Key(r entity.NormalizedRecord) string {
	parts := []string{
		r.Surname,
		r.GivenName,
		r.Section,
		r.PlotNumber,
		r.Department,
		r.Commune,
		r.RegistryNumber,
		r.RightType,
	}
	for i, p := range parts {
		parts[i] = strings.ToUpper(strings.TrimSpace(p))
	}
	parts[2] = strings.TrimLeft(parts[2], "0")
	if utils.HasDigit(parts[3]) {
		parts[3] = identifier.PlotNumber(parts[3])
	}
	if utils.IsDigits(parts[4]) {
		parts[4] = identifier.Department(parts[4])
	}
	if utils.IsDigits(parts[5]) {
		parts[5] = identifier.Commune(parts[5])
	}
	return strings.Join(parts, "|")
}

const emptyKey = "|||||||"

// Records keeps the first occurrence of every key and drops records whose
// key is entirely empty. It returns the kept records and the number removed.
func Records(records []entity.NormalizedRecord) ([]entity.NormalizedRecord, int) {
	seen := make(map[string]struct{}, len(records))
	out := make([]entity.NormalizedRecord, 0, len(records))
	for _, r := range records {
		k := Key(r)
		if k == emptyKey {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, r)
	}
	return out, len(records) - len(out)
}
