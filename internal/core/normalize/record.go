package normalize

import (
	"log/slog"
	"strings"

	"github.com/joseph-ayodele/cadastre-extractor/internal/entity"
	"github.com/joseph-ayodele/cadastre-extractor/internal/utils"
)

// Normalizer applies every field rule to a merged record.
type Normalizer struct {
	log *slog.Logger
}

// New builds a Normalizer.
func New(logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{log: logger}
}

// Record normalizes r in place.
func (n *Normalizer) Record(r *entity.NormalizedRecord) {
	r.AreaHa = ParseArea(r.AreaHa)
	r.AreaA = ParseArea(r.AreaA)
	r.AreaCa = ParseArea(r.AreaCa)

	r.Surname, r.GivenName = SplitName(r.Surname, r.GivenName)

	if street := CleanAddress(r.Street); street == "" && strings.TrimSpace(r.Street) != "" {
		n.log.Debug("normalize.address.rejected",
			"document", r.SourceDocument,
			"street", r.Street,
		)
		r.Street = ""
	} else {
		r.Street = street
	}
	r.PostalCode = PostalCode(r.PostalCode)
	r.City = City(r.City)

	prefix, section := SeparateGluedPrefix(r.Prefix, r.Section)
	r.Prefix = Prefix(prefix)
	r.Section = Section(section)
	r.PlotNumber = PlotNumber(r.PlotNumber)

	r.Department, r.Commune = Geography(r.Department, r.Commune)
	r.RightType = RightType(r.RightType)
	r.RegistryNumber = RegistryNumber(r.RegistryNumber)
	r.Designation = utils.CollapseSpaces(r.Designation)
}

// Records normalizes every record of a slice in place.
func (n *Normalizer) Records(records []entity.NormalizedRecord) {
	for i := range records {
		n.Record(&records[i])
	}
}
