package models

// CourseState classifies a blueprint course against a student's history.
type CourseState string

// The four classification states.
const (
	CourseStateApproved    CourseState = "APPROVED"
	CourseStateFailed      CourseState = "FAILED"
	CourseStateTransferred CourseState = "TRANSFERRED"
	CourseStatePending     CourseState = "PENDING"
)

// PassingGrade is the approval threshold on the 0.0–5.0 scale.
const PassingGrade = 3.0

// Priority is the consolidation order when a course was attempted more than
// once: TRANSFERRED beats APPROVED beats FAILED. PENDING never competes; it
// only applies when no attempt exists.
func (s CourseState) Priority() int {
	switch s {
	case CourseStateTransferred:
		return 3
	case CourseStateApproved:
		return 2
	case CourseStateFailed:
		return 1
	default:
		return 0
	}
}

// ClassifiedCourse is a blueprint course with its resolved state and the
// authoritative grade/term. It is derived per call and never persisted.
type ClassifiedCourse struct {
	Code    string      `json:"code"`
	Name    string      `json:"name"`
	Credits int         `json:"credits"`
	State   CourseState `json:"state"`
	Grade   *float64    `json:"grade,omitempty"`
	TermID  *string     `json:"term_id,omitempty"`
}

// ClassifiedBlock mirrors one blueprint block after classification,
// preserving blueprint ordering.
type ClassifiedBlock struct {
	Period  int                `json:"period"`
	Courses []ClassifiedCourse `json:"courses"`
}
