package models

import "time"

// Import audit actions.
const (
	AuditActionImport   = "IMPORT_BATCH"
	AuditActionValidate = "VALIDATE_EXTRACT"
)

// ImportAudit is one append-only audit entry summarizing a completed batch
// import. Entries are never updated or deleted.
type ImportAudit struct {
	ID        string    `db:"id" json:"id"`
	Actor     string    `db:"actor" json:"actor"`
	Action    string    `db:"action" json:"action"`
	FileName  string    `db:"file_name" json:"file_name,omitempty"`
	Total     int       `db:"total" json:"total"`
	New       int       `db:"new" json:"new"`
	Updated   int       `db:"updated" json:"updated"`
	Errors    int       `db:"errors" json:"errors"`
	Transfers int       `db:"transfers" json:"transfers"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
