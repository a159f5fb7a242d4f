package entity

// NormalizedRecord is the merged owner/parcel unit handed to export.
//
// After the pipeline has run: UniqueID is 14 characters, Department 2,
// Commune 3, len(Prefix)+len(Section) is 5 and PlotNumber is 4.
type NormalizedRecord struct {
	Department     string `json:"department" db:"department"`
	Commune        string `json:"commune" db:"commune"`
	Prefix         string `json:"prefix" db:"prefix"`
	Section        string `json:"section" db:"section"`
	PlotNumber     string `json:"plot_number" db:"plot_number"`
	AreaHa         string `json:"area_ha" db:"area_ha"`
	AreaA          string `json:"area_a" db:"area_a"`
	AreaCa         string `json:"area_ca" db:"area_ca"`
	RightType      string `json:"right_type" db:"right_type"`
	Designation    string `json:"designation" db:"designation"`
	Surname        string `json:"surname" db:"surname"`
	GivenName      string `json:"given_name" db:"given_name"`
	RegistryNumber string `json:"registry_number" db:"registry_number"`
	Street         string `json:"street" db:"street"`
	PostalCode     string `json:"postal_code" db:"postal_code"`
	City           string `json:"city" db:"city"`
	UniqueID       string `json:"unique_id" db:"unique_id"`
	SourceDocument string `json:"source_document" db:"source_document"`
}

// Geo returns the record's location pair.
func (r NormalizedRecord) Geo() GeoRef {
	return GeoRef{Department: r.Department, Commune: r.Commune}
}

// ExportColumns is the fixed column order of exported records.
var ExportColumns = []string{
	"departement",
	"commune",
	"prefixe",
	"section",
	"numero_plan",
	"contenance_ha",
	"contenance_a",
	"contenance_ca",
	"droit_reel",
	"designation",
	"nom",
	"prenom",
	"numero_majic",
	"voie",
	"code_postal",
	"ville",
	"id",
	"fichier_source",
}

// Row returns the record's values in ExportColumns order.
func (r NormalizedRecord) Row() []string {
	return []string{
		r.Department,
		r.Commune,
		r.Prefix,
		r.Section,
		r.PlotNumber,
		r.AreaHa,
		r.AreaA,
		r.AreaCa,
		r.RightType,
		r.Designation,
		r.Surname,
		r.GivenName,
		r.RegistryNumber,
		r.Street,
		r.PostalCode,
		r.City,
		r.UniqueID,
		r.SourceDocument,
	}
}

// GeoRef is a (department, commune) location.
type GeoRef struct {
	Department string `json:"department"`
	Commune    string `json:"commune"`
}

// Valid reports whether the pair is a 2-digit department and a 3-digit commune.
func (g GeoRef) Valid() bool {
	return len(g.Department) == 2 && len(g.Commune) == 3 &&
		allDigits(g.Department) && allDigits(g.Commune)
}

// IsZero reports whether both fields are empty.
func (g GeoRef) IsZero() bool {
	return g.Department == "" && g.Commune == ""
}

func (g GeoRef) String() string {
	return g.Department + "/" + g.Commune
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
