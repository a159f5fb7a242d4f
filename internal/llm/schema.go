package llm

// BuildOwnersJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a generic map.
// It is sent to the model as an output constraint and used locally to validate.
func BuildOwnersJSONSchema() map[string]any {
	str := func() map[string]any { return map[string]any{"type": "string"} }
	owner := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"surname":         map[string]any{"type": "string", "minLength": 1},
			"given_name":      str(),
			"street":          str(),
			"postal_code":     str(),
			"city":            str(),
			"registry_number": str(),
			"right_type":      str(),
			"department":      map[string]any{"type": "string", "maxLength": 3},
			"commune":         str(),
		},
		"required": []string{"surname"},
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"owners": map[string]any{"type": "array", "items": owner},
		},
		"required": []string{"owners"},
	}
}
