package llm

import (
	"fmt"
	"strings"

	"github.com/joseph-ayodele/cadastre-extractor/constants"
)

// PromptVariant is one entry of the extraction chain, ordered from most to
// least directive.
type PromptVariant string

const (
	VariantStrict     PromptVariant = "strict"
	VariantTableFocus PromptVariant = "table_focus"
	VariantFreeForm   PromptVariant = "free_form"
)

// DefaultVariants is the chain order.
var DefaultVariants = []PromptVariant{VariantStrict, VariantTableFocus, VariantFreeForm}

// ParseVariants maps configuration names to variants, skipping unknown ones.
func ParseVariants(names []string) []PromptVariant {
	var out []PromptVariant
	for _, n := range names {
		switch v := PromptVariant(strings.ToLower(strings.TrimSpace(n))); v {
		case VariantStrict, VariantTableFocus, VariantFreeForm:
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return DefaultVariants
	}
	return out
}

// BuildSystemPrompt composes the system message for a variant.
func BuildSystemPrompt(v PromptVariant) string {
	parts := []string{
		"You read French cadastral extracts (relevé de propriété, matrice cadastrale).",
		"Return ONLY JSON of the form {\"owners\": [...]} matching the provided JSON Schema.",
		"Each owner has: surname, given_name, street, postal_code, city, registry_number, right_type, department, commune.",
		"department is the 2-digit department code and commune the 3-digit commune code printed in the page header.",
		"right_type is the droit réel label exactly as printed (e.g. PP, US, NP, propriétaire, usufruitier).",
		"Known right codes: " + strings.Join(constants.RightsAsStringSlice(), ", ") + ".",
		"Never output null. If a field is not present, omit it. Never invent owners.",
	}
	switch v {
	case VariantStrict:
		parts = append(parts,
			"Only report people or legal entities listed in the owner block (PROPRIETAIRE / TITULAIRE DE DROITS).",
			"Ignore lieu-dit names, street names and parcel designations: they are not owners.",
		)
	case VariantTableFocus:
		parts = append(parts,
			"The owners are listed in a table above the parcel table; read it row by row.",
			"Split the printed name into surname (uppercase) and given_name.",
		)
	case VariantFreeForm:
		parts = append(parts,
			"The layout may be irregular. Report every owner name you can read anywhere on the page together with any address printed next to it.",
		)
	}
	return strings.Join(parts, " ")
}

// BuildUserPrompt describes the attached page.
func BuildUserPrompt(req VisionRequest) string {
	var b strings.Builder
	if req.Document != "" {
		fmt.Fprintf(&b, "Document: %s\n", req.Document)
	}
	if req.Page > 0 {
		fmt.Fprintf(&b, "Page: %d\n", req.Page)
	}
	b.WriteString("The page image is attached. Extract the owners.")
	return b.String()
}
