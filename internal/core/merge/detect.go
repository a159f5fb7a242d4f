// Package merge pairs owner entries with table rows.
package merge

import (
	"github.com/joseph-ayodele/cadastre-extractor/constants"
	"github.com/joseph-ayodele/cadastre-extractor/internal/utils"
)

// Strategy is the pairing strategy chosen for a document.
type Strategy string

const (
	StrategySingle     Strategy = "single_owner"
	StrategyMulti      Strategy = "multi_owner"
	StrategyParcelOnly Strategy = "parcel_only"
)

// Config holds the merge thresholds.
type Config struct {
	MaxRawOwners            int
	OwnerHardCap            int
	MaxCombinations         int
	SingleOwnerRowThreshold int
	SingleOwnerMaxValid     int
	SparseOwnerRatio        float64
	DenseOwnerRatio         float64
	MultiOwnerMinSurnames   int
}

// DefaultConfig returns the standard thresholds.
func DefaultConfig() Config {
	return Config{
		MaxRawOwners:            constants.MaxRawOwners,
		OwnerHardCap:            constants.OwnerHardCap,
		MaxCombinations:         constants.MaxCombinations,
		SingleOwnerRowThreshold: constants.SingleOwnerRowThreshold,
		SingleOwnerMaxValid:     constants.SingleOwnerMaxValid,
		SparseOwnerRatio:        constants.SparseOwnerRatio,
		DenseOwnerRatio:         constants.DenseOwnerRatio,
		MultiOwnerMinSurnames:   constants.MultiOwnerMinSurnames,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MaxRawOwners <= 0 {
		c.MaxRawOwners = d.MaxRawOwners
	}
	if c.OwnerHardCap <= 0 {
		c.OwnerHardCap = d.OwnerHardCap
	}
	if c.MaxCombinations <= 0 {
		c.MaxCombinations = d.MaxCombinations
	}
	if c.SingleOwnerRowThreshold <= 0 {
		c.SingleOwnerRowThreshold = d.SingleOwnerRowThreshold
	}
	if c.SingleOwnerMaxValid <= 0 {
		c.SingleOwnerMaxValid = d.SingleOwnerMaxValid
	}
	if c.SparseOwnerRatio <= 0 {
		c.SparseOwnerRatio = d.SparseOwnerRatio
	}
	if c.DenseOwnerRatio <= 0 {
		c.DenseOwnerRatio = d.DenseOwnerRatio
	}
	if c.MultiOwnerMinSurnames <= 0 {
		c.MultiOwnerMinSurnames = d.MultiOwnerMinSurnames
	}
	return c
}

// Decision explains the chosen strategy.
type Decision struct {
	Strategy       Strategy
	Reason         string
	ValidOwners    int
	UniqueSurnames int
	RightTypes     int
	Rows           int
}

// DetectOwnershipType chooses a pairing strategy from classifier-accepted
// owners and the structured rows of one document. Owner thresholds and the
// owner/row ratio count every valid entry read, repeats included; an Owner
// with a zero Count stands for one entry.
func DetectOwnershipType(cfg Config, valid []Owner, rows int) Decision {
	cfg = cfg.withDefaults()

	entries := 0
	surnames := map[string]map[string]struct{}{}
	rights := map[string]struct{}{}
	for _, o := range valid {
		entries += max(o.Count, 1)
		s := utils.FoldUpper(o.Surname)
		if surnames[s] == nil {
			surnames[s] = map[string]struct{}{}
		}
		if g := utils.FoldUpper(o.GivenName); g != "" {
			surnames[s][g] = struct{}{}
		}
		if r, ok := constants.CanonicalizeRight(utils.FoldUpper(o.RightType)); ok {
			rights[string(r)] = struct{}{}
		}
	}

	d := Decision{
		ValidOwners:    entries,
		UniqueSurnames: len(surnames),
		RightTypes:     len(rights),
		Rows:           rows,
	}

	_, usufruct := rights[string(constants.Usufruct)]
	_, bare := rights[string(constants.BareOwnership)]
	ratio := 0.0
	if rows > 0 {
		ratio = float64(entries) / float64(rows)
	}

	switch {
	case len(valid) == 0:
		d.Strategy, d.Reason = StrategyParcelOnly, "no valid owner"
	case usufruct && bare:
		d.Strategy, d.Reason = StrategyMulti, "usufruct and bare ownership"
	case sharedSurname(surnames):
		d.Strategy, d.Reason = StrategyMulti, "given names share a surname"
	case len(surnames) >= cfg.MultiOwnerMinSurnames && entries >= cfg.MultiOwnerMinSurnames:
		d.Strategy, d.Reason = StrategyMulti, "distinct surnames"
	case entries <= cfg.SingleOwnerMaxValid && rows > cfg.SingleOwnerRowThreshold:
		d.Strategy, d.Reason = StrategySingle, "few owners for many rows"
	case rows > 0 && ratio < cfg.SparseOwnerRatio:
		d.Strategy, d.Reason = StrategySingle, "sparse owner ratio"
	case len(valid) == 1:
		d.Strategy, d.Reason = StrategySingle, "single valid owner"
	case ratio >= cfg.DenseOwnerRatio:
		d.Strategy, d.Reason = StrategyMulti, "dense owner ratio"
	default:
		d.Strategy, d.Reason = StrategyMulti, "default"
	}
	return d
}

func sharedSurname(surnames map[string]map[string]struct{}) bool {
	for _, given := range surnames {
		if len(given) >= 2 {
			return true
		}
	}
	return false
}
