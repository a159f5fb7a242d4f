package pipeline

import (
	"strings"

	"github.com/joseph-ayodele/cadastre-extractor/internal/entity"
)

// Field names accepted by forward-fill.
const (
	FieldPrefix      = "prefix"
	FieldSection     = "section"
	FieldDesignation = "designation"
	FieldAreaHa      = "area_ha"
	FieldAreaA       = "area_a"
	FieldAreaCa      = "area_ca"
	FieldRightType   = "right_type"
)

var fieldAccessors = map[string]func(*entity.NormalizedRecord) *string{
	FieldPrefix:      func(r *entity.NormalizedRecord) *string { return &r.Prefix },
	FieldSection:     func(r *entity.NormalizedRecord) *string { return &r.Section },
	FieldDesignation: func(r *entity.NormalizedRecord) *string { return &r.Designation },
	FieldAreaHa:      func(r *entity.NormalizedRecord) *string { return &r.AreaHa },
	FieldAreaA:       func(r *entity.NormalizedRecord) *string { return &r.AreaA },
	FieldAreaCa:      func(r *entity.NormalizedRecord) *string { return &r.AreaCa },
	FieldRightType:   func(r *entity.NormalizedRecord) *string { return &r.RightType },
}

// KnownField reports whether name can be forward-filled.
func KnownField(name string) bool {
	_, ok := fieldAccessors[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// DocumentContext is the short-lived state of one document pass. A new one
// is created for every document so nothing carries over between documents.
type DocumentContext struct {
	Document string
	Stats    entity.DocumentStats

	fields []string
	last   map[string]string
}

// NewDocumentContext returns a fresh context for document.
func NewDocumentContext(document string, fillFields []string) *DocumentContext {
	fields := make([]string, 0, len(fillFields))
	for _, f := range fillFields {
		fields = append(fields, strings.ToLower(strings.TrimSpace(f)))
	}
	return &DocumentContext{
		Document: document,
		fields:   fields,
		last:     make(map[string]string, len(fields)),
	}
}

// ForwardFill copies the last non-blank value of every fill field into r
// where r's value is blank, and remembers r's non-blank values.
func (dc *DocumentContext) ForwardFill(r *entity.NormalizedRecord) {
	for _, name := range dc.fields {
		get, ok := fieldAccessors[name]
		if !ok {
			continue
		}
		v := get(r)
		if strings.TrimSpace(*v) == "" {
			*v = dc.last[name]
			continue
		}
		dc.last[name] = *v
	}
}
