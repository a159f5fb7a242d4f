package tables

import (
	"strconv"
	"strings"

	"github.com/joseph-ayodele/cadastre-extractor/internal/entity"
	"github.com/joseph-ayodele/cadastre-extractor/internal/utils"
)

type column int

const (
	colUnknown column = iota
	colSection
	colPrefix
	colPlot
	colDesignation
	colHa
	colA
	colCa
	colArea
)

// headerKeywords is checked in order; the first matching keyword wins.
var headerKeywords = []struct {
	kw  string
	col column
}{
	{"SECTION", colSection},
	{"PREFIXE", colPrefix},
	{"PREF", colPrefix},
	{"PLAN", colPlot},
	{"NUMERO", colPlot},
	{"PARCELLE", colPlot},
	{"LIEU-DIT", colDesignation},
	{"LIEU DIT", colDesignation},
	{"DESIGNATION", colDesignation},
	{"ADRESSE", colDesignation},
	{"CONTENANCE", colArea},
	{"SURFACE", colArea},
}

// exact short labels of the area subcolumns
var areaUnits = map[string]column{"HA": colHa, "A": colA, "CA": colCa}

func classifyHeader(label string) column {
	l := utils.CollapseSpaces(utils.FoldUpper(label))
	l = strings.Trim(l, " .:")
	if c, ok := areaUnits[l]; ok {
		return c
	}
	// "CONTENANCE HA", "SURFACE (CA)"
	if f := strings.Fields(strings.NewReplacer("(", " ", ")", " ").Replace(l)); len(f) > 1 {
		if c, ok := areaUnits[f[len(f)-1]]; ok && (strings.Contains(l, "CONTENANCE") || strings.Contains(l, "SURFACE")) {
			return c
		}
	}
	for _, k := range headerKeywords {
		if strings.Contains(l, utils.FoldUpper(k.kw)) {
			return k.col
		}
	}
	return colUnknown
}

// LooksLikeHeader reports whether cells read like a parcel table header.
func LooksLikeHeader(cells []string) bool {
	hits := 0
	for _, c := range cells {
		if classifyHeader(c) != colUnknown {
			hits++
		}
	}
	return hits >= 2
}

// positional layouts used when a table has no header row
var (
	layout6 = []column{colSection, colPlot, colDesignation, colHa, colA, colCa}
	layout7 = []column{colPrefix, colSection, colPlot, colDesignation, colHa, colA, colCa}
)

// ToRawRows maps detected tables to raw parcel rows. Header labels are
// matched by accent-folded keywords; headerless tables fall back to column
// position. Rows without a plot number are skipped.
func ToRawRows(tables []Table) []entity.RawTableRow {
	var out []entity.RawTableRow
	for _, t := range tables {
		cols := mapColumns(t)
		if cols == nil {
			continue
		}
		for _, row := range t.Rows {
			r := entity.RawTableRow{Page: t.Page}
			for key, v := range row {
				set(&r, cols[key], strings.TrimSpace(v))
			}
			if r.PlotNumber == "" || !utils.HasDigit(r.PlotNumber) {
				continue
			}
			out = append(out, r)
		}
	}
	return out
}

func mapColumns(t Table) map[string]column {
	cols := make(map[string]column)
	if len(t.Header) > 0 {
		for i, h := range t.Header {
			cols[headerKey(h, i)] = classifyHeader(h)
		}
		found := false
		for _, c := range cols {
			if c == colSection || c == colPlot {
				found = true
			}
		}
		if found {
			return cols
		}
		// header present but unusable: use positions
		cols = make(map[string]column)
		for i, h := range t.Header {
			cols[headerKey(h, i)] = positional(len(t.Header), i)
		}
		return cols
	}
	width := 0
	for _, row := range t.Rows {
		if len(row) > width {
			width = len(row)
		}
	}
	if width < len(layout6) {
		return nil
	}
	for i := 0; i < width; i++ {
		cols[strconv.Itoa(i)] = positional(width, i)
	}
	return cols
}

func positional(width, i int) column {
	layout := layout6
	if width >= len(layout7) {
		layout = layout7
	}
	if i < len(layout) {
		return layout[i]
	}
	return colUnknown
}

func set(r *entity.RawTableRow, c column, v string) {
	switch c {
	case colSection:
		r.Section = v
	case colPrefix:
		r.Prefix = v
	case colPlot:
		r.PlotNumber = v
	case colDesignation:
		r.Designation = v
	case colHa:
		r.AreaHa = v
	case colA:
		r.AreaA = v
	case colCa:
		r.AreaCa = v
	case colArea:
		if r.AreaHa == "" {
			r.AreaHa = v
		}
	}
}
