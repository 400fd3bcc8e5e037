package models

// CreditTotals rolls classified courses into per-state credit sums. All four
// states are always present, zero when absent.
type CreditTotals struct {
	Approved    int `json:"APPROVED"`
	Failed      int `json:"FAILED"`
	Transferred int `json:"TRANSFERRED"`
	Pending     int `json:"PENDING"`
}

// Add accumulates credits into the bucket for the given state.
func (t *CreditTotals) Add(state CourseState, credits int) {
	switch state {
	case CourseStateApproved:
		t.Approved += credits
	case CourseStateFailed:
		t.Failed += credits
	case CourseStateTransferred:
		t.Transferred += credits
	case CourseStatePending:
		t.Pending += credits
	}
}

// ApprovedOrTransferred is the credit mass that counts toward completion.
func (t CreditTotals) ApprovedOrTransferred() int {
	return t.Approved + t.Transferred
}

// StudentProgress summarizes one student's credit progress against a blueprint.
type StudentProgress struct {
	StudentID             string       `json:"student_id"`
	StudentName           string       `json:"student_name"`
	ProgramCode           string       `json:"program_code"`
	Totals                CreditTotals `json:"totals"`
	ApprovedOrTransferred int          `json:"approved_or_transferred"`
	TotalCredits          int          `json:"total_credits"`
	PercentComplete       float64      `json:"percent_complete"`
	PercentPending        float64      `json:"percent_pending"`
}

// ExcludedStudent identifies a student left out of a program report because
// no history row matched the blueprint's owning program.
type ExcludedStudent struct {
	StudentID   string `json:"student_id"`
	StudentName string `json:"student_name"`
}

// ProgramProgressReport is the program-wide rollup filtered by a minimum
// completion percentage.
type ProgramProgressReport struct {
	ProgramCode   string            `json:"program_code"`
	ProgramName   string            `json:"program_name"`
	BlueprintID   string            `json:"blueprint_id"`
	MinPercent    float64           `json:"min_percent"`
	TotalStudents int               `json:"total_students"`
	FilteredCount int               `json:"filtered_count"`
	MeanPercent   *float64          `json:"mean_percent,omitempty"`
	Students      []StudentProgress `json:"students"`
	Filtered      []StudentProgress `json:"filtered"`
	Excluded      []ExcludedStudent `json:"excluded_students,omitempty"`
}
