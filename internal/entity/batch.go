package entity

// DocumentBatch holds the records of exactly one source document.
type DocumentBatch struct {
	Document string             `json:"document"`
	Records  []NormalizedRecord `json:"records"`
	Stats    DocumentStats      `json:"stats"`
}

// DocumentStats are per-document diagnostic counters.
type DocumentStats struct {
	RawOwners           int    `json:"raw_owners" db:"raw_owners"`
	ValidOwners         int    `json:"valid_owners" db:"valid_owners"`
	TableRows           int    `json:"table_rows" db:"table_rows"`
	Strategy            string `json:"strategy" db:"strategy"`
	Merged              int    `json:"merged" db:"merged"`
	DroppedStructural   int    `json:"dropped_structural" db:"dropped_structural"`
	DroppedContaminated int    `json:"dropped_contaminated" db:"dropped_contaminated"`
	Duplicates          int    `json:"duplicates" db:"duplicates"`
	Kept                int    `json:"kept" db:"kept"`
}

// BatchStats are counters for a whole run.
type BatchStats struct {
	Documents       int `json:"documents" db:"documents"`
	Concatenated    int `json:"concatenated" db:"concatenated"`
	CrossDuplicates int `json:"cross_duplicates" db:"cross_duplicates"`
	RejectedInvalid int `json:"rejected_invalid" db:"rejected_invalid"`
	Exported        int `json:"exported" db:"exported"`
}
