package models

import "time"

// Student is a learner as reported by the ARGOS extract. The ID is the
// institutional identifier and is stable across extracts.
type Student struct {
	ID          string    `db:"id" json:"id"`
	FullName    string    `db:"full_name" json:"full_name"`
	ProgramCode string    `db:"program_code" json:"program_code"`
	ProgramName string    `db:"program_name" json:"program_name"`
	Email       string    `db:"email" json:"email,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Search      string
	ProgramCode string
	Page        int
	PageSize    int
	SortBy      string
	SortOrder   string
}
