package llm

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/cadastre-extractor/internal/common"
	"github.com/joseph-ayodele/cadastre-extractor/internal/entity"
)

// ParseOwners turns raw model output into owner entries. With lenient set,
// entries that break the schema are dropped instead of failing the page.
func ParseOwners(raw []byte, lenient bool, logger *slog.Logger) ([]entity.RawOwnerEntry, error) {
	if logger == nil {
		logger = slog.Default()
	}

	doc, _, err := NormalizeOwnersJSON(raw, logger)
	if err != nil {
		return nil, err
	}

	// Validate strictly first.
	if err := ValidateOwnersJSON(doc); err != nil {
		if !lenient {
			return nil, fmt.Errorf("%w: schema validation failed: %v", common.ErrExtraction, err)
		}
		cleaned, dropped, sErr := DropInvalidOwners(doc)
		if sErr != nil {
			return nil, fmt.Errorf("%w: sanitize failed: %v", common.ErrExtraction, sErr)
		}
		if vErr := ValidateOwnersJSON(cleaned); vErr != nil {
			return nil, fmt.Errorf("%w: schema validation failed: %v", common.ErrExtraction, vErr)
		}
		logger.Warn("llm.owners.lenient_sanitize_applied", "dropped", dropped)
		doc = cleaned
	}

	var out OwnersDocument
	if err := json.Unmarshal(doc, &out); err != nil {
		return nil, fmt.Errorf("%w: unmarshal owners: %v", common.ErrExtraction, err)
	}
	return out.Owners, nil
}
