package constants

// Record merger thresholds. merge.Config overrides them per run.
const (
	// MaxRawOwners is the raw owner count above which owners without both
	// department and commune are discarded before pairing.
	MaxRawOwners = 50

	// OwnerHardCap bounds the owner list once MaxRawOwners is exceeded.
	OwnerHardCap = 20

	// MaxCombinations bounds owners x rows for the cartesian strategy.
	MaxCombinations = 100

	// SingleOwnerRowThreshold is the row count above which two or fewer
	// valid owners are treated as one owner for the whole document.
	SingleOwnerRowThreshold = 50

	// SingleOwnerMaxValid is the valid-owner ceiling paired with SingleOwnerRowThreshold.
	SingleOwnerMaxValid = 2

	// SparseOwnerRatio is the valid-owner/row ratio under which the single-owner strategy wins.
	SparseOwnerRatio = 0.05

	// DenseOwnerRatio is the valid-owner/row ratio at or above which the cartesian strategy
	// is chosen without further inspection.
	DenseOwnerRatio = 0.3

	// MultiOwnerMinSurnames is the distinct-surname count that signals several owners.
	MultiOwnerMinSurnames = 3
)

// Vision chain defaults.
const (
	// MinVisionOwners is the owner count a prompt variant must exceed to win the chain.
	MinVisionOwners = 1
)

// Fixed widths of the cadastral identifier and its parts.
const (
	IdentifierLength  = 14
	DepartmentWidth   = 2
	CommuneWidth      = 3
	SectionBlockWidth = 5
	PrefixMaxWidth    = 3
	PlotNumberWidth   = 4
	DefaultDepartment = "00"
	DefaultCommune    = "000"
	DefaultSection    = "A"
	DefaultPlotNumber = "0001"
)
