// Package normalize cleans the individual fields of merged cadastral records.
package normalize

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/joseph-ayodele/cadastre-extractor/constants"
	"github.com/joseph-ayodele/cadastre-extractor/internal/core/classify"
	"github.com/joseph-ayodele/cadastre-extractor/internal/utils"
)

const (
	addressMinLength = 3
	addressMaxLength = 100
)

var (
	areaSpaces     = strings.NewReplacer(" ", "", "\u00a0", "", "\u202f", "", "\t", "")
	addressJunk    = strings.NewReplacer("*", "", "|", "", "_", "", `"`, "", "#", "", "~", "", "{", "", "}", "", "[", "", "]", "", "<", "", ">", "", ";", "", `\`, "", "`", "")
	gluedPrefixRe  = regexp.MustCompile(`^(\d+)\s?([A-Za-z]+)$`)
	postalDigitsRe = regexp.MustCompile(`\d{4,5}`)
)

// IsPlaceholder reports whether s is blank or a placeholder token.
func IsPlaceholder(s string) bool {
	return constants.IsPlaceholder(s)
}

// ParseArea reduces a printed area quantity to the digits of its integer part.
// "1 216,05" -> "1216", "10,98" -> "10", placeholders -> "".
func ParseArea(value string) string {
	if IsPlaceholder(value) {
		return ""
	}
	v := areaSpaces.Replace(strings.TrimSpace(value))
	v = strings.ReplaceAll(v, ",", ".")
	if i := strings.IndexByte(v, '.'); i >= 0 {
		v = v[:i]
	}
	if utils.IsDigits(v) {
		return v
	}
	return utils.DigitsOnly(v)
}

// SplitName separates a given name fused into the surname field. A given
// name glued to the surname ("JEANMARTIN" / "Jean") is only stripped when the
// remainder is at least as long as the given name and differs from it, so
// surnames such as JEANNOT or JEANJEAN survive.
func SplitName(surname, givenName string) (string, string) {
	s := utils.CollapseSpaces(surname)
	g := utils.CollapseSpaces(givenName)

	if g != "" {
		if len(s) <= len(g) || !strings.EqualFold(s[:len(g)], g) {
			return s, g
		}
		rest := strings.TrimSpace(s[len(g):])
		switch {
		case rest == "":
		case s[len(g)] == ' ':
			// "JEAN MARTIN" / "Jean" -> "MARTIN" / "Jean"
			return rest, g
		case utf8.RuneCountInString(rest) >= utf8.RuneCountInString(g) && !strings.EqualFold(rest, g):
			return rest, g
		}
		return s, g
	}
	if classify.IsLegalEntity(s) {
		return s, g
	}
	parts := strings.Fields(s)
	switch {
	case len(parts) > 2:
		return parts[len(parts)-1], strings.Join(parts[:len(parts)-1], " ")
	case len(parts) == 2:
		return parts[1], parts[0]
	default:
		return s, g
	}
}

// CleanAddress strips stray punctuation from a street address. It returns ""
// when the result holds no letter or falls outside 3..100 characters.
func CleanAddress(text string) string {
	out := utils.CollapseSpaces(addressJunk.Replace(text))
	n := utf8.RuneCountInString(out)
	if !utils.HasLetter(out) || n < addressMinLength || n > addressMaxLength {
		return ""
	}
	return out
}

// SeparateGluedPrefix splits "302AB" or "302 AB" into ("302", "AB") when no
// prefix is already set; otherwise the pair is returned unchanged.
func SeparateGluedPrefix(prefix, section string) (string, string) {
	if strings.TrimSpace(prefix) != "" {
		return prefix, section
	}
	m := gluedPrefixRe.FindStringSubmatch(strings.TrimSpace(section))
	if m == nil {
		return prefix, section
	}
	return m[1], strings.ToUpper(m[2])
}

// Section keeps the uppercased ASCII letters and digits of a section code.
func Section(s string) string {
	if IsPlaceholder(s) {
		return ""
	}
	return alnum(utils.FoldUpper(s))
}

// Prefix keeps the digits and letters of a prefix qualifier.
func Prefix(s string) string {
	if IsPlaceholder(s) {
		return ""
	}
	return alnum(utils.FoldUpper(s))
}

// PlotNumber keeps the digits of a plot number.
func PlotNumber(s string) string {
	if IsPlaceholder(s) {
		return ""
	}
	return utils.DigitsOnly(s)
}

// PostalCode returns a five-digit French postal code or "".
// Four-digit codes are assumed to have lost their leading zero.
func PostalCode(s string) string {
	m := postalDigitsRe.FindString(areaSpaces.Replace(s))
	switch len(m) {
	case 5:
		return m
	case 4:
		return "0" + m
	default:
		return ""
	}
}

// City uppercases and folds a city name; placeholders yield "".
func City(s string) string {
	if IsPlaceholder(s) {
		return ""
	}
	out := utils.FoldUpper(addressJunk.Replace(s))
	if !utils.HasLetter(out) {
		return ""
	}
	return out
}

// Geography cleans a department/commune pair. Numeric codes are left-padded;
// a five-digit INSEE commune code starting with the department is reduced to
// its commune part. Non-numeric values are kept uppercased so contamination
// remains visible to the geographic filter.
func Geography(department, commune string) (string, string) {
	dep := geoCode(department, constants.DepartmentWidth)
	com := strings.TrimSpace(commune)
	if c := areaSpaces.Replace(com); len(c) == constants.DepartmentWidth+constants.CommuneWidth && utils.IsDigits(c) {
		if dep == "" || strings.HasPrefix(c, dep) {
			if dep == "" {
				dep = c[:constants.DepartmentWidth]
			}
			com = c[constants.DepartmentWidth:]
		}
	}
	return dep, geoCode(com, constants.CommuneWidth)
}

func geoCode(s string, width int) string {
	if IsPlaceholder(s) {
		return ""
	}
	v := areaSpaces.Replace(strings.TrimSpace(s))
	if utils.IsDigits(v) {
		return utils.PadLeft(v, width, '0')
	}
	return utils.FoldUpper(v)
}

// RightType maps a right label to its canonical code, or keeps it uppercased.
func RightType(s string) string {
	if IsPlaceholder(s) {
		return ""
	}
	if r, ok := constants.CanonicalizeRight(s); ok {
		return string(r)
	}
	return utils.FoldUpper(s)
}

// RegistryNumber uppercases a registry code and removes inner spaces.
func RegistryNumber(s string) string {
	if IsPlaceholder(s) {
		return ""
	}
	return areaSpaces.Replace(strings.ToUpper(strings.TrimSpace(s)))
}

func alnum(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
