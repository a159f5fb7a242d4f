package constants

// DocumentStatus is the canonical status for rows in the document run ledger.
type DocumentStatus string

// Stable values (store these exact strings in DB).
const (
	DocumentStatusRunning  DocumentStatus = "RUNNING"   // in progress
	DocumentStatusTablesOK DocumentStatus = "TABLES_OK" // stage 1 completed (table rows extracted)
	DocumentStatusOwnersOK DocumentStatus = "OWNERS_OK" // stage 2 completed (owner entries extracted)
	DocumentStatusDone     DocumentStatus = "DONE"      // records consolidated
	DocumentStatusFailed   DocumentStatus = "FAILED"    // terminal failure
)
