// Package identifier builds the fixed-width 14 character cadastral identifier:
// department(2) + commune(3) + prefix/section block(5) + plot number(4).
package identifier

import (
	"fmt"
	"strings"

	"github.com/joseph-ayodele/cadastre-extractor/constants"
	"github.com/joseph-ayodele/cadastre-extractor/internal/common"
	"github.com/joseph-ayodele/cadastre-extractor/internal/entity"
	"github.com/joseph-ayodele/cadastre-extractor/internal/utils"
)

// Generate returns the identifier for the given parts. Missing or malformed
// parts fall back to their defaults; the only error is an identifier that
// cannot be forced to 14 alphanumerics, which wraps common.ErrIdentifierInvariant.
func Generate(department, commune, section, plotNumber, prefix string) (string, error) {
	p, s := SectionBlock(prefix, section)
	id := Department(department) + Commune(commune) + p + s + PlotNumber(plotNumber)
	return enforce(id)
}

// Department returns the 2-digit department code, "00" when absent.
func Department(s string) string {
	return fixedDigits(s, constants.DepartmentWidth, constants.DefaultDepartment)
}

// Commune returns the 3-digit commune code, "000" when absent.
func Commune(s string) string {
	return fixedDigits(s, constants.CommuneWidth, constants.DefaultCommune)
}

// PlotNumber returns the last 4 digits of the plot number, zero-padded,
// "0001" when absent.
func PlotNumber(s string) string {
	d := utils.DigitsOnly(s)
	if d == "" {
		return constants.DefaultPlotNumber
	}
	if len(d) > constants.PlotNumberWidth {
		return d[len(d)-constants.PlotNumberWidth:]
	}
	return utils.PadLeft(d, constants.PlotNumberWidth, '0')
}

// SectionBlock returns the prefix and section parts of the 5 character block.
// With a prefix the block reads prefix, zero fill, section letters; the section
// is truncated when both do not fit. Without one the section is zero-padded on
// the left. The returned lengths always sum to 5.
func SectionBlock(prefix, section string) (string, string) {
	sec := alnumUpper(section)
	if sec == "" {
		sec = constants.DefaultSection
	}
	pre := alnumUpper(prefix)
	if len(pre) > constants.PrefixMaxWidth {
		pre = pre[:constants.PrefixMaxWidth]
	}

	room := constants.SectionBlockWidth - len(pre)
	if len(sec) > room {
		sec = sec[:room]
	}
	return pre, utils.PadLeft(sec, room, '0')
}

// Assign sets r.UniqueID from the record's current fields.
func Assign(r *entity.NormalizedRecord) error {
	id, err := Generate(r.Department, r.Commune, r.Section, r.PlotNumber, r.Prefix)
	if err != nil {
		return fmt.Errorf("assign identifier for %s: %w", r.SourceDocument, err)
	}
	r.UniqueID = id
	return nil
}

// Format rewrites the record's location fields to their fixed widths and
// refreshes its identifier. It runs once department and commune are known to
// be numeric.
func Format(r *entity.NormalizedRecord) error {
	r.Department = Department(r.Department)
	r.Commune = Commune(r.Commune)
	r.Prefix, r.Section = SectionBlock(r.Prefix, r.Section)
	r.PlotNumber = PlotNumber(r.PlotNumber)
	return Assign(r)
}

// enforce pads or truncates id to 14 characters and checks the result.
func enforce(id string) (string, error) {
	switch {
	case len(id) < constants.IdentifierLength:
		id += strings.Repeat("0", constants.IdentifierLength-len(id))
	case len(id) > constants.IdentifierLength:
		id = id[:constants.IdentifierLength]
	}
	if !Valid(id) {
		return "", common.NewAppError("IDENTIFIER_INVARIANT",
			fmt.Sprintf("identifier %q is not %d alphanumerics", id, constants.IdentifierLength),
			common.ErrIdentifierInvariant)
	}
	return id, nil
}

// Valid reports whether id is exactly 14 ASCII uppercase letters or digits.
func Valid(id string) bool {
	if len(id) != constants.IdentifierLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		if !(c >= 'A' && c <= 'Z' || c >= '0' && c <= '9') {
			return false
		}
	}
	return true
}

func fixedDigits(s string, width int, fallback string) string {
	d := utils.DigitsOnly(s)
	if d == "" {
		return fallback
	}
	if len(d) > width {
		return d[:width]
	}
	return utils.PadLeft(d, width, '0')
}

func alnumUpper(s string) string {
	folded := utils.FoldUpper(s)
	var b strings.Builder
	for i := 0; i < len(folded); i++ {
		c := folded[i]
		if c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' {
			b.WriteByte(c)
		}
	}
	return b.String()
}
