package constants

import "strings"

// placeholders are values the extractors emit for "nothing here".
// "XX" is not listed: it is handled as a malformed code, not a blank.
var placeholders = map[string]struct{}{
	"":              {},
	"-":             {},
	"--":            {},
	"N/A":           {},
	"NA":            {},
	"N.A.":          {},
	"NULL":          {},
	"NONE":          {},
	"NIL":           {},
	"?":             {},
	"...":           {},
	"/":             {},
	"INCONNU":       {},
	"NON RENSEIGNE": {},
	"NON RENSEIGNÉ": {},
}

// IsPlaceholder reports whether s is blank or a known placeholder token.
func IsPlaceholder(s string) bool {
	_, ok := placeholders[strings.ToUpper(strings.TrimSpace(s))]
	return ok
}
