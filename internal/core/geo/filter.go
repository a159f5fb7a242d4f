// Package geo removes records whose department/commune disagree with the
// document's reference location.
package geo

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/joseph-ayodele/cadastre-extractor/constants"
	"github.com/joseph-ayodele/cadastre-extractor/internal/common"
	"github.com/joseph-ayodele/cadastre-extractor/internal/entity"
)

// Policy selects how the reference location is established.
type Policy string

const (
	// PolicyMajority uses the most frequent populated pair; ties go to the first seen.
	PolicyMajority Policy = "majority"
	// PolicyFirstValid uses the first well-formed pair in document order.
	PolicyFirstValid Policy = "first_valid"
)

// ParsePolicy maps a configuration value to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyMajority:
		return PolicyMajority, nil
	case PolicyFirstValid:
		return PolicyFirstValid, nil
	default:
		return "", fmt.Errorf("%w: unknown geo policy %q", common.ErrInvalidInput, s)
	}
}

// Config configures a Filter.
type Config struct {
	Policy Policy
	// FillBlanks overwrites blank or placeholder locations with the reference.
	FillBlanks bool
}

// Result is the outcome of filtering one document.
type Result struct {
	Records   []entity.NormalizedRecord
	Reference entity.GeoRef
	Dropped   int
	Filled    int
}

// Filter enforces geographic consistency within one document.
type Filter struct {
	cfg Config
	log *slog.Logger
}

// New builds a Filter.
func New(cfg Config, logger *slog.Logger) *Filter {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Policy == "" {
		cfg.Policy = PolicyMajority
	}
	return &Filter{cfg: cfg, log: logger}
}

// Policy returns the configured reference policy.
func (f *Filter) Policy() Policy { return f.cfg.Policy }

// Reference returns the reference location of records under policy.
// PolicyFirstValid only accepts well-formed pairs (2 and 3 digits).
// PolicyMajority votes over every populated pair, so a document dominated by
// a malformed pair elects it and its well-formed minority is dropped.
func Reference(records []entity.NormalizedRecord, policy Policy) (entity.GeoRef, bool) {
	counts := map[entity.GeoRef]int{}
	var order []entity.GeoRef
	for _, r := range records {
		g := r.Geo()
		if policy == PolicyFirstValid {
			if g.Valid() {
				return g, true
			}
			continue
		}
		if constants.IsPlaceholder(g.Department) || constants.IsPlaceholder(g.Commune) {
			continue
		}
		if counts[g] == 0 {
			order = append(order, g)
		}
		counts[g]++
	}
	if len(order) == 0 {
		return entity.GeoRef{}, false
	}
	best := order[0]
	for _, g := range order[1:] {
		if counts[g] > counts[best] {
			best = g
		}
	}
	return best, true
}

// Apply filters the records of one document. header is the location read
// from the document header, used as the reference when no row carries one.
func (f *Filter) Apply(document string, records []entity.NormalizedRecord, header entity.GeoRef) Result {
	ref, ok := Reference(records, f.cfg.Policy)
	if ok && header.Valid() && header != ref {
		f.log.Warn("geo.header.mismatch",
			"document", document,
			"header", header.String(),
			"reference", ref.String(),
			"policy", string(f.cfg.Policy),
		)
	}
	if !ok {
		if !header.Valid() {
			f.log.Debug("geo.reference.none", "document", document, "records", len(records))
			return Result{Records: records}
		}
		ref = header
	}

	res := Result{Reference: ref, Records: make([]entity.NormalizedRecord, 0, len(records))}
	for _, r := range records {
		depBlank := constants.IsPlaceholder(r.Department)
		comBlank := constants.IsPlaceholder(r.Commune)
		if (!depBlank && r.Department != ref.Department) || (!comBlank && r.Commune != ref.Commune) {
			res.Dropped++
			f.log.Debug("geo.contamination.row",
				"document", document,
				"location", r.Geo().String(),
				"reference", ref.String(),
				"section", r.Section,
				"plot_number", r.PlotNumber,
			)
			continue
		}
		if f.cfg.FillBlanks && (depBlank || comBlank) {
			r.Department, r.Commune = ref.Department, ref.Commune
			res.Filled++
		}
		res.Records = append(res.Records, r)
	}

	if res.Dropped > 0 {
		f.log.Info("geo.contamination.dropped",
			"document", document,
			"dropped", res.Dropped,
			"kept", len(res.Records),
			"reference", ref.String(),
			"policy", string(f.cfg.Policy),
		)
	}
	return res
}
