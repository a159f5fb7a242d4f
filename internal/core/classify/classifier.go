// Package classify decides whether a name read by the vision service is a
// plausible owner or a misread place name or address fragment.
package classify

import (
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/joseph-ayodele/cadastre-extractor/constants"
	"github.com/joseph-ayodele/cadastre-extractor/internal/utils"
)

// Rule identifies the policy step that produced a verdict.
type Rule int

const (
	RuleParasitic Rule = iota + 1
	RuleLegalEntity
	RulePlaceLike
	RulePerson
	RuleBareSurname
	RuleConnector
	RuleDefault
)

func (r Rule) String() string {
	switch r {
	case RuleParasitic:
		return "parasitic"
	case RuleLegalEntity:
		return "legal_entity"
	case RulePlaceLike:
		return "place_like"
	case RulePerson:
		return "person"
	case RuleBareSurname:
		return "bare_surname"
	case RuleConnector:
		return "connector"
	default:
		return "default"
	}
}

// Verdict is the outcome of classifying one name pair.
type Verdict struct {
	Accepted bool
	Rule     Rule
	Reason   string
}

const legalEntityMinLength = 8

var (
	articlePrefixes = []string{"LE ", "LA ", "LES ", "DE ", "DU ", "AU ", "AUX "}

	// Lone words left over when a table header or place name is segmented as an owner.
	parasiticTokens = toSet(
		"LIEU DIT", "LIEUDIT", "LIEU-DIT", "SECTION", "PARCELLE", "PARCELLES", "CONTENANCE",
		"PROPRIETAIRE", "PROPRIETAIRES", "PROPRIETE", "NOM", "PRENOM", "ADRESSE", "DESIGNATION",
		"TOTAL", "NEANT", "DIVERS", "SUITE", "VOIR", "DES", "LES", "SUR", "SOUS", "EN", "AU",
		"AUX", "DU", "DE", "LA", "LE", "ET", "COMMUNE", "RELEVE", "MATRICE", "CADASTRE",
	)

	legalMarkers = toSet(
		"COMMUNE", "SCI", "SARL", "SAS", "SASU", "SA", "EURL", "EARL", "GAEC", "GFA", "GFR",
		"SCEA", "SCP", "SELARL", "SNC", "ASSOCIATION", "ASSOC", "SOCIETE", "STE", "DEPARTEMENT",
		"REGION", "ETAT", "SYNDICAT", "SYNDIC", "GROUPEMENT", "CONSORTS", "INDIVISION",
		"COPROPRIETE", "FONDATION", "MAIRIE", "ONF", "SAFER", "OFFICE", "CONGREGATION",
		"PAROISSE", "FABRIQUE", "COOPERATIVE", "MUTUELLE", "BANQUE", "CAISSE", "SYNDICALE",
		"COMMUNAUTE", "INTERCOMMUNAL", "HOSPICE", "CENTRE", "ETABLISSEMENT",
	)

	roadwayWords = toSet(
		"RUE", "AVENUE", "AV", "BOULEVARD", "BD", "CHEMIN", "CHE", "ROUTE", "RTE", "IMPASSE",
		"IMP", "ALLEE", "PLACE", "QUAI", "LOTISSEMENT", "HAMEAU", "LIEU", "SENTIER", "PASSAGE",
		"COURS", "FAUBOURG", "VOIE", "RUELLE", "CARREFOUR", "ROND-POINT", "RESIDENCE",
	)

	terrainWords = toSet(
		"BOIS", "COTE", "COTES", "VALLEE", "MONT", "MONTS", "COMBE", "COMBES", "PRE", "PRES",
		"CHAMP", "CHAMPS", "FORET", "ETANG", "ROCHE", "ROCHES", "CRET", "VIGNE", "VIGNES",
		"MOULIN", "CROIX", "VAL", "COLLINE", "PLATEAU", "SOURCE", "FONTAINE", "MARAIS",
		"PATURE", "PATURES", "FRICHE", "TERRE", "TERRES", "CLOS", "FOND", "FONDS", "RAVIN",
		"BUTTE", "VERGER", "PLAINE", "PLAINES", "BREUIL", "ESSART", "ESSARTS", "CHAUMES",
	)

	// Compound topographic forms such as "SOUS LA ROCHE" or "GRAND PRE".
	compoundPatterns = []*regexp.Regexp{
		regexp.MustCompile(`^(SUR|SOUS|DERRIERE|DEVANT|ENTRE|EN|PRES|VERS|A) `),
		regexp.MustCompile(` (SOUS|SUR|DESSOUS|DESSUS) `),
		regexp.MustCompile(`^(GRAND|GRANDE|GRANDS|PETIT|PETITE|PETITS|HAUT|HAUTE|HAUTS|BAS|BASSE) `),
	}

	connectorPattern = regexp.MustCompile(`^(MC|MAC)[A-Z]|^(MC|MAC) | (DE|DU|LE|LA) `)
)

// Classifier applies the ordered owner policy.
type Classifier struct {
	log *slog.Logger
}

// New builds a Classifier.
func New(logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{log: logger}
}

// IsRealOwner reports whether (surname, givenName) is a plausible owner.
func IsRealOwner(surname, givenName string) bool {
	return Evaluate(surname, givenName).Accepted
}

// IsRealOwner reports whether (surname, givenName) is a plausible owner.
func (c *Classifier) IsRealOwner(surname, givenName string) bool {
	return c.Classify(surname, givenName).Accepted
}

// Classify evaluates the pair and logs rejections at debug level.
func (c *Classifier) Classify(surname, givenName string) Verdict {
	v := Evaluate(surname, givenName)
	if !v.Accepted {
		c.log.Debug("classify.rejected",
			"surname", surname,
			"given_name", givenName,
			"rule", v.Rule.String(),
			"reason", v.Reason,
		)
	}
	return v
}

// Evaluate runs the ordered policy; the first matching rule decides.
func Evaluate(surname, givenName string) Verdict {
	s := utils.FoldUpper(surname)
	g := utils.FoldUpper(givenName)

	if s == "" {
		return Verdict{Rule: RuleParasitic, Reason: "empty surname"}
	}
	if _, ok := parasiticTokens[s]; ok {
		return Verdict{Rule: RuleParasitic, Reason: "parasitic token"}
	}
	for _, p := range articlePrefixes {
		if strings.HasPrefix(s, p) {
			return Verdict{Rule: RuleParasitic, Reason: "article prefix " + strings.TrimSpace(p)}
		}
	}

	if hasLegalMarker(s) && utf8.RuneCountInString(strings.TrimSpace(s+" "+g)) >= legalEntityMinLength {
		return Verdict{Accepted: true, Rule: RuleLegalEntity, Reason: "legal entity marker"}
	}

	if reason, ok := placeLike(s); ok {
		return Verdict{Rule: RulePlaceLike, Reason: reason}
	}

	if utf8.RuneCountInString(g) >= 2 && utf8.RuneCountInString(s) >= 3 {
		return Verdict{Accepted: true, Rule: RulePerson, Reason: "surname with given name"}
	}

	if g == "" && utf8.RuneCountInString(s) >= 5 && !utils.HasDigit(s) && !constants.IsPlaceholder(s) {
		return Verdict{Accepted: true, Rule: RuleBareSurname, Reason: "surname without given name"}
	}

	if utf8.RuneCountInString(s) >= 5 && connectorPattern.MatchString(s) {
		return Verdict{Accepted: true, Rule: RuleConnector, Reason: "surname connector"}
	}

	return Verdict{Rule: RuleDefault, Reason: "no accepting rule"}
}

// IsLegalEntity reports whether the name carries a company, association or
// public-body marker.
func IsLegalEntity(name string) bool {
	return hasLegalMarker(utils.FoldUpper(name))
}

// IsPlaceLike reports whether the name looks like an address or topographic term.
func IsPlaceLike(name string) bool {
	_, ok := placeLike(utils.FoldUpper(name))
	return ok
}

func hasLegalMarker(folded string) bool {
	for _, tok := range tokens(folded) {
		if _, ok := legalMarkers[tok]; ok {
			return true
		}
	}
	return false
}

func placeLike(folded string) (string, bool) {
	for _, tok := range tokens(folded) {
		if _, ok := roadwayWords[tok]; ok {
			return "roadway word " + tok, true
		}
		if _, ok := terrainWords[tok]; ok {
			return "terrain word " + tok, true
		}
	}
	for _, re := range compoundPatterns {
		if re.MatchString(folded) {
			return "topographic compound", true
		}
	}
	return "", false
}

// tokens splits on anything that is not a letter, digit or hyphen.
func tokens(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !(r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '-')
	})
}

func toSet(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
