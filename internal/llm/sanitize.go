package llm

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/cadastre-extractor/internal/common"
	"github.com/joseph-ayodele/cadastre-extractor/internal/utils"
)

// ownerArrayKeys are the top-level keys models use for the owner list.
var ownerArrayKeys = []string{"owners", "proprietes", "proprietaires", "titulaires", "results"}

// keySynonyms maps folded, underscored keys to the canonical owner keys.
var keySynonyms = map[string]string{
	"surname":             "surname",
	"nom":                 "surname",
	"nom_famille":         "surname",
	"nom_de_famille":      "surname",
	"last_name":           "surname",
	"lastname":            "surname",
	"family_name":         "surname",
	"name":                "surname",
	"given_name":          "given_name",
	"prenom":              "given_name",
	"prenoms":             "given_name",
	"first_name":          "given_name",
	"firstname":           "given_name",
	"street":              "street",
	"adresse":             "street",
	"address":             "street",
	"voie":                "street",
	"rue":                 "street",
	"postal_code":         "postal_code",
	"code_postal":         "postal_code",
	"cp":                  "postal_code",
	"zip":                 "postal_code",
	"postcode":            "postal_code",
	"city":                "city",
	"ville":               "city",
	"localite":            "city",
	"town":                "city",
	"registry_number":     "registry_number",
	"compte":              "registry_number",
	"numero_compte":       "registry_number",
	"num_compte":          "registry_number",
	"compte_proprietaire": "registry_number",
	"numero_majic":        "registry_number",
	"majic":               "registry_number",
	"right_type":          "right_type",
	"droit":               "right_type",
	"droit_reel":          "right_type",
	"droits":              "right_type",
	"right":               "right_type",
	"department":          "department",
	"departement":         "department",
	"dept":                "department",
	"dep":                 "department",
	"commune":             "commune",
	"code_commune":        "commune",
}

// NormalizeOwnersJSON turns raw model output into the canonical
// {"owners":[...]} document:
// - strips code fences and text around the JSON value
// - accepts owners / proprietes / proprietaires arrays or a bare array
// - renames French and English key synonyms
// - coerces numbers to strings and drops nulls, blanks and unknown keys
func NormalizeOwnersJSON(raw []byte, logger *slog.Logger) ([]byte, []string, error) {
	if logger == nil {
		logger = slog.Default()
	}
	body := extractJSON(stripCodeFences(string(raw)))
	if body == "" {
		return nil, nil, fmt.Errorf("%w: empty model output", common.ErrExtraction)
	}

	var top any
	if err := json.Unmarshal([]byte(body), &top); err != nil {
		return nil, nil, fmt.Errorf("%w: decode: %v", common.ErrExtraction, err)
	}

	items, err := ownerItems(top)
	if err != nil {
		return nil, nil, err
	}

	dropped := make([]string, 0, 4)
	owners := make([]map[string]string, 0, len(items))
	for i, it := range items {
		m, ok := it.(map[string]any)
		if !ok {
			dropped = append(dropped, fmt.Sprintf("owners[%d](type)", i))
			continue
		}
		o := make(map[string]string, len(m))
		for k, v := range m {
			canon, known := keySynonyms[normalizeKey(k)]
			if !known {
				dropped = append(dropped, k+"(unknown)")
				continue
			}
			s, ok := coerceString(v)
			if !ok {
				dropped = append(dropped, k+"(type)")
				continue
			}
			if s == "" {
				continue
			}
			// keep the first non-empty value when two synonyms collide
			if _, exists := o[canon]; !exists {
				o[canon] = s
			}
		}
		owners = append(owners, o)
	}

	out, err := json.Marshal(map[string]any{"owners": owners})
	if err != nil {
		return nil, dropped, fmt.Errorf("sanitize: encode: %w", err)
	}
	if len(dropped) > 0 {
		logger.Debug("llm.owners.normalize_sanitize", "dropped", dropped)
	}
	return out, dropped, nil
}

func ownerItems(top any) ([]any, error) {
	switch t := top.(type) {
	case []any:
		return t, nil
	case map[string]any:
		for _, k := range ownerArrayKeys {
			if v, ok := t[k]; ok {
				if arr, ok := v.([]any); ok {
					return arr, nil
				}
				if v == nil {
					return nil, nil
				}
			}
		}
		// a single owner object
		if _, ok := t["nom"]; ok {
			return []any{t}, nil
		}
		if _, ok := t["surname"]; ok {
			return []any{t}, nil
		}
		return nil, fmt.Errorf("%w: no owners array", common.ErrExtraction)
	default:
		return nil, fmt.Errorf("%w: unexpected top-level JSON %T", common.ErrExtraction, top)
	}
}

func normalizeKey(k string) string {
	k = strings.ToLower(utils.Fold(strings.TrimSpace(k)))
	return strings.NewReplacer(" ", "_", "-", "_", "'", "").Replace(k)
}

func coerceString(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", true
	case string:
		s := strings.TrimSpace(t)
		if strings.EqualFold(s, "null") {
			return "", true
		}
		return s, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case bool:
		return "", true
	default:
		return "", false
	}
}

// extractJSON returns the outermost JSON object or array in s.
func extractJSON(s string) string {
	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return ""
	}
	closer := byte('}')
	if s[start] == '[' {
		closer = ']'
	}
	end := strings.LastIndexByte(s, closer)
	if end <= start {
		return ""
	}
	return s[start : end+1]
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		parts := strings.SplitN(s, "\n", 2)
		if len(parts) == 2 {
			s = parts[1]
		}
		s = strings.TrimPrefix(s, "json")
		s = strings.TrimSpace(strings.TrimSuffix(s, "```"))
	}
	return s
}
