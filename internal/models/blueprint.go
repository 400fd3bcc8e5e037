package models

import (
	"encoding/json"
	"fmt"
)

// CodeList holds the equivalent course-code aliases of a blueprint course.
// Blueprint JSON accepts either a single string or a list of strings.
type CodeList []string

// UnmarshalJSON accepts "ISOF V033" or ["ADMI 1070", "ADMI 2000"].
func (c *CodeList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*c = CodeList{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("codes must be a string or a list of strings")
	}
	*c = CodeList(many)
	return nil
}

// BlueprintCourse is one required course of a curriculum block.
type BlueprintCourse struct {
	Codes   CodeList `json:"codes"`
	Name    string   `json:"name"`
	Credits int      `json:"credits"`
}

// BlueprintBlock groups the courses of one academic period.
type BlueprintBlock struct {
	Period  int               `json:"period"`
	Courses []BlueprintCourse `json:"courses"`
}

// Blueprint is a normalized curriculum definition. Load-time validation
// guarantees that the course credit sum equals TotalCredits, so consumers
// never re-check it per student.
type Blueprint struct {
	ID           string           `json:"id,omitempty"`
	ProgramCode  string           `json:"program_code"`
	Name         string           `json:"name"`
	TotalCredits int              `json:"total_credits"`
	Blocks       []BlueprintBlock `json:"blocks"`
}

// BlueprintMeta is a catalog index entry for a registered blueprint.
type BlueprintMeta struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	File string `json:"file"`
}

// BlueprintSummary condenses a validation pass over a blueprint document.
type BlueprintSummary struct {
	ProgramCode     string `json:"program_code"`
	DeclaredCredits int    `json:"declared_credits"`
	CourseCreditSum int    `json:"course_credit_sum"`
	CourseCount     int    `json:"course_count"`
	Periods         []int  `json:"periods"`
}

// BlueprintValidation reports the outcome of validating a blueprint document.
type BlueprintValidation struct {
	Valid   bool             `json:"valid"`
	Errors  []string         `json:"errors,omitempty"`
	Summary BlueprintSummary `json:"summary"`
}
