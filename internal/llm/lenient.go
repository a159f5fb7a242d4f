package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/joseph-ayodele/cadastre-extractor/constants"
	"github.com/joseph-ayodele/cadastre-extractor/internal/utils"
)

// DropInvalidOwners removes owner entries that would fail the schema (no
// surname, placeholder surname, over-long department) so the rest of the
// document can still validate. doc must already be normalized.
func DropInvalidOwners(doc []byte) ([]byte, []string, error) {
	var d struct {
		Owners []map[string]string `json:"owners"`
	}
	if err := json.Unmarshal(doc, &d); err != nil {
		return nil, nil, err
	}

	var dropped []string
	kept := make([]map[string]string, 0, len(d.Owners))
	for i, o := range d.Owners {
		surname := strings.TrimSpace(o["surname"])
		if surname == "" || constants.IsPlaceholder(surname) {
			dropped = append(dropped, fmt.Sprintf("owners[%d](surname)", i))
			continue
		}
		if dep, ok := o["department"]; ok && len(dep) > 3 {
			// "25 - DOUBS" style labels: keep the code, drop the rest
			if code := utils.DigitsOnly(dep); len(code) >= 1 && len(code) <= 3 {
				o["department"] = code
			} else {
				delete(o, "department")
				dropped = append(dropped, fmt.Sprintf("owners[%d].department", i))
			}
		}
		kept = append(kept, o)
	}

	b, err := json.Marshal(map[string]any{"owners": kept})
	if err != nil {
		return nil, nil, err
	}
	return b, dropped, nil
}
