package merge

import (
	"log/slog"
	"strings"

	"github.com/joseph-ayodele/cadastre-extractor/internal/core/classify"
	"github.com/joseph-ayodele/cadastre-extractor/internal/entity"
	"github.com/joseph-ayodele/cadastre-extractor/internal/utils"
)

// Owner is a distinct owner entry with the number of times it was read.
type Owner struct {
	entity.RawOwnerEntry
	Count int
}

// Result is the output of merging one document.
type Result struct {
	Records  []entity.NormalizedRecord
	Decision Decision
	// Strategy actually applied; differs from Decision.Strategy after a
	// combination-guard fallback.
	Applied   Strategy
	RawOwners int
	Owners    []Owner
}

// Merger pairs owners with table rows.
type Merger struct {
	cfg        Config
	classifier *classify.Classifier
	log        *slog.Logger
}

// New builds a Merger. A nil classifier uses the default policy.
func New(cfg Config, classifier *classify.Classifier, logger *slog.Logger) *Merger {
	if logger == nil {
		logger = slog.Default()
	}
	if classifier == nil {
		classifier = classify.New(logger)
	}
	return &Merger{cfg: cfg.withDefaults(), classifier: classifier, log: logger}
}

// Merge builds the raw merged records of one document.
func (m *Merger) Merge(document string, owners []entity.RawOwnerEntry, rows []entity.RawTableRow) Result {
	distinct := Collapse(owners)
	valid := make([]Owner, 0, len(distinct))
	for _, o := range distinct {
		if m.classifier.IsRealOwner(o.Surname, o.GivenName) {
			valid = append(valid, o)
		}
	}

	d := DetectOwnershipType(m.cfg, valid, len(rows))
	res := Result{Decision: d, Applied: d.Strategy, RawOwners: len(owners)}

	switch d.Strategy {
	case StrategyParcelOnly:
		res.Records = pair(document, nil, rows)
	case StrategySingle:
		o := PickSingle(valid)
		res.Owners = []Owner{o}
		res.Records = pair(document, res.Owners, rows)
	default:
		selected := m.limitOwners(document, len(owners), valid)
		if len(selected)*len(rows) > m.cfg.MaxCombinations {
			o := PickSingle(selected)
			m.log.Warn("merge.combination_guard",
				"document", document,
				"owners", len(selected),
				"rows", len(rows),
				"max_combinations", m.cfg.MaxCombinations,
				"kept_owner", o.Surname,
			)
			res.Applied = StrategySingle
			res.Owners = []Owner{o}
		} else {
			res.Owners = selected
		}
		res.Records = pair(document, res.Owners, rows)
	}

	m.log.Info("merge.strategy",
		"document", document,
		"strategy", string(d.Strategy),
		"applied", string(res.Applied),
		"reason", d.Reason,
		"raw_owners", len(owners),
		"distinct_owners", len(distinct),
		"valid_owners", d.ValidOwners,
		"unique_surnames", d.UniqueSurnames,
		"rows", len(rows),
		"records", len(res.Records),
	)
	return res
}

// limitOwners applies the raw-owner filter and the hard cap.
func (m *Merger) limitOwners(document string, rawCount int, valid []Owner) []Owner {
	if rawCount <= m.cfg.MaxRawOwners {
		return valid
	}
	located := make([]Owner, 0, len(valid))
	for _, o := range valid {
		if o.HasGeography() {
			located = append(located, o)
		}
	}
	if len(located) == 0 {
		located = valid
	}
	if len(located) > m.cfg.OwnerHardCap {
		located = located[:m.cfg.OwnerHardCap]
	}
	m.log.Warn("merge.owner_cap",
		"document", document,
		"raw_owners", rawCount,
		"valid_owners", len(valid),
		"kept", len(located),
	)
	return located
}

// Collapse merges owner entries that repeat the same surname, given name,
// registry number and right, keeping the first occurrence and counting repeats.
func Collapse(owners []entity.RawOwnerEntry) []Owner {
	out := make([]Owner, 0, len(owners))
	index := make(map[string]int, len(owners))
	for _, o := range owners {
		key := strings.Join([]string{
			utils.FoldUpper(o.Surname),
			utils.FoldUpper(o.GivenName),
			utils.FoldUpper(o.RegistryNumber),
			utils.FoldUpper(o.RightType),
		}, "|")
		if i, ok := index[key]; ok {
			out[i].Count++
			continue
		}
		index[key] = len(out)
		out = append(out, Owner{RawOwnerEntry: o, Count: 1})
	}
	return out
}

// PickSingle returns the first legal-entity owner, or else the most frequent
// one; ties go to the earliest.
func PickSingle(owners []Owner) Owner {
	if len(owners) == 0 {
		return Owner{}
	}
	for _, o := range owners {
		if classify.IsLegalEntity(o.Surname) {
			return o
		}
	}
	best := owners[0]
	for _, o := range owners[1:] {
		if o.Count > best.Count {
			best = o
		}
	}
	return best
}

// pair builds rows x owners records, rows outer. With no owners every row
// yields one record with blank owner fields.
func pair(document string, owners []Owner, rows []entity.RawTableRow) []entity.NormalizedRecord {
	if len(owners) == 0 {
		out := make([]entity.NormalizedRecord, 0, len(rows))
		for _, row := range rows {
			out = append(out, build(document, row, entity.RawOwnerEntry{}))
		}
		return out
	}
	out := make([]entity.NormalizedRecord, 0, len(rows)*len(owners))
	for _, row := range rows {
		for _, o := range owners {
			out = append(out, build(document, row, o.RawOwnerEntry))
		}
	}
	return out
}

func build(document string, row entity.RawTableRow, o entity.RawOwnerEntry) entity.NormalizedRecord {
	return entity.NormalizedRecord{
		Department:     o.Department,
		Commune:        o.Commune,
		Prefix:         row.Prefix,
		Section:        row.Section,
		PlotNumber:     row.PlotNumber,
		AreaHa:         row.AreaHa,
		AreaA:          row.AreaA,
		AreaCa:         row.AreaCa,
		RightType:      o.RightType,
		Designation:    row.Designation,
		Surname:        o.Surname,
		GivenName:      o.GivenName,
		RegistryNumber: o.RegistryNumber,
		Street:         o.Street,
		PostalCode:     o.PostalCode,
		City:           o.City,
		SourceDocument: document,
	}
}
