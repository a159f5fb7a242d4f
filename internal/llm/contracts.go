package llm

import (
	"context"

	"github.com/joseph-ayodele/cadastre-extractor/internal/entity"
)

// VisionRequest is one page image sent to a vision model with a prompt variant.
type VisionRequest struct {
	Document    string
	Page        int
	ImagePath   string
	MediaType   string // image/png, image/jpeg
	ImageBase64 string
	Variant     PromptVariant
}

// OwnerExtractor is the vision backend the chain depends on. It returns the
// raw model text, which is expected to hold an owners JSON object.
type OwnerExtractor interface {
	ExtractOwners(ctx context.Context, req VisionRequest) ([]byte, error)
	Name() string
}

// OwnersDocument is the canonical JSON shape after sanitizing.
type OwnersDocument struct {
	Owners []entity.RawOwnerEntry `json:"owners"`
}
