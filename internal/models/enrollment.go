package models

import "time"

// Enrollment is the central fact: one student taking one course in one term.
// The natural key (student_id, course_id, term_id) is unique; course ids are
// upper-cased before key comparison.
//
// The snapshot columns capture course/program descriptive fields as they were
// first reported. Re-ingestion updates the grade and bumps the version but
// only fills snapshot fields that are still empty.
type Enrollment struct {
	ID        string   `db:"id" json:"id"`
	StudentID string   `db:"student_id" json:"student_id"`
	CourseID  string   `db:"course_id" json:"course_id"`
	TermID    string   `db:"term_id" json:"term_id"`
	Grade     *float64 `db:"grade" json:"grade,omitempty"`
	Version   int      `db:"version" json:"version"`

	// Snapshot fields, fill-only on update.
	AlphaPrefix  *string `db:"alpha_prefix" json:"alpha_prefix,omitempty"`
	CourseNumber *string `db:"course_number" json:"course_number,omitempty"`
	AlphaCode    *string `db:"alpha_code" json:"alpha_code,omitempty"`
	CourseName   *string `db:"course_name" json:"course_name,omitempty"`
	ProgramCode  *string `db:"program_code" json:"program_code,omitempty"`
	ProgramName  *string `db:"program_name" json:"program_name,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// HistoryRow is one line of a student's persisted enrollment history as
// consumed by the cross-reference engine. Code carries the alphanumeric
// course code used for blueprint matching; CourseID keeps the NRC (or the
// synthetic transfer identifier).
type HistoryRow struct {
	CourseID    string   `db:"course_id" json:"course_id"`
	Code        string   `db:"code" json:"code"`
	CourseName  string   `db:"course_name" json:"course_name"`
	Grade       *float64 `db:"grade" json:"grade,omitempty"`
	TermID      string   `db:"term_id" json:"term_id"`
	Version     int      `db:"version" json:"version"`
	ProgramCode *string  `db:"program_code" json:"program_code,omitempty"`
}

// ProgramHistoryRow extends HistoryRow with the owning student, for
// program-wide reconciliation batches.
type ProgramHistoryRow struct {
	HistoryRow
	StudentID   string `db:"student_id" json:"student_id"`
	StudentName string `db:"student_name" json:"student_name"`
}
