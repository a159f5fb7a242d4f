package constants

import (
	"strings"
)

// Right is a canonical droit réel code as printed on cadastral extracts.
type Right string

const (
	FullOwnership Right = "PP"    // pleine propriété
	Usufruct      Right = "US"    // usufruit
	BareOwnership Right = "NP"    // nue-propriété
	Undivided     Right = "IND"   // indivision
	Manager       Right = "GE"    // gérant / mandataire
	Emphyteutic   Right = "EM"    // emphytéote
	OtherRight    Right = "AUTRE" // anything unrecognised
)

var allRights = []Right{
	FullOwnership,
	Usufruct,
	BareOwnership,
	Undivided,
	Manager,
	Emphyteutic,
	OtherRight,
}

// RightsAsStringSlice returns every canonical right code.
func RightsAsStringSlice() []string {
	result := make([]string, len(allRights))
	for i, r := range allRights {
		result[i] = string(r)
	}
	return result
}

// CanonicalizeRight maps a free-text right label to its canonical code.
// Input is expected upper-cased without diacritics; lower-case input is folded here.
func CanonicalizeRight(input string) (Right, bool) {
	if input == "" {
		return OtherRight, false
	}

	normalized := strings.ToUpper(strings.TrimSpace(input))
	normalized = strings.NewReplacer("É", "E", "È", "E", "Ê", "E", ".", "", "_", " ").Replace(normalized)
	normalized = strings.Join(strings.Fields(normalized), " ")

	// synonyms map
	synonyms := map[string]Right{
		"PROPRIETAIRE":       FullOwnership,
		"PLEINE PROPRIETE":   FullOwnership,
		"PLEIN PROPRIETAIRE": FullOwnership,
		"P":                  FullOwnership,
		"USUFRUIT":           Usufruct,
		"USUFRUITIER":        Usufruct,
		"USUFRUITIERE":       Usufruct,
		"U":                  Usufruct,
		"NU PROPRIETAIRE":    BareOwnership,
		"NU-PROPRIETAIRE":    BareOwnership,
		"NUE PROPRIETE":      BareOwnership,
		"NUE-PROPRIETE":      BareOwnership,
		"NUE PROPRIETAIRE":   BareOwnership,
		"INDIVISION":         Undivided,
		"INDIVISAIRE":        Undivided,
		"EN INDIVISION":      Undivided,
		"GERANT":             Manager,
		"MANDATAIRE":         Manager,
		"GESTIONNAIRE":       Manager,
		"EMPHYTEOTE":         Emphyteutic,
	}

	if r, ok := synonyms[normalized]; ok {
		return r, true
	}

	// check if it matches any canonical code
	for _, r := range allRights {
		if normalized == string(r) {
			return r, true
		}
	}

	return OtherRight, false
}
