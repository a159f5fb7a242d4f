package entity

// RawTableRow is one structured row read from a cadastral table.
// Raw rows are never mutated once produced.
type RawTableRow struct {
	Section     string `json:"section"`
	Prefix      string `json:"prefix,omitempty"`
	PlotNumber  string `json:"plot_number"`
	Designation string `json:"designation,omitempty"`
	AreaHa      string `json:"area_ha,omitempty"`
	AreaA       string `json:"area_a,omitempty"`
	AreaCa      string `json:"area_ca,omitempty"`
	Page        int    `json:"page,omitempty"`
}

// RawOwnerEntry is one owner read by the vision service from a page image.
// Any field may be empty or wrong.
type RawOwnerEntry struct {
	Surname        string `json:"surname"`
	GivenName      string `json:"given_name,omitempty"`
	Street         string `json:"street,omitempty"`
	PostalCode     string `json:"postal_code,omitempty"`
	City           string `json:"city,omitempty"`
	RegistryNumber string `json:"registry_number,omitempty"`
	RightType      string `json:"right_type,omitempty"`
	Department     string `json:"department,omitempty"`
	Commune        string `json:"commune,omitempty"`
	Page           int    `json:"page,omitempty"`
}

// HasGeography reports whether both department and commune are populated.
func (o RawOwnerEntry) HasGeography() bool {
	return o.Department != "" && o.Commune != ""
}
