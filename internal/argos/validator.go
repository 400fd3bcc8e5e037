package argos

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Canonical ARGOS column names (A–W layout). Header matching is
// case-insensitive; these are the names after normalization.
const (
	ColStudentID   = "ID_ESTUDIANTE"
	ColStudentName = "NOMBRE_ESTUDIANTE"
	ColRectory     = "RECTORIA"
	ColRectoryName = "DESCRIPCION_RECTORIA"
	ColCampus      = "SEDE"
	ColCampusName  = "DESCRIPCION_SEDE"
	ColFaculty     = "FACULTAD"
	ColFacultyName = "DESCRIPCION_FACULTAD"
	ColProgram     = "PROGRAMA"
	ColProgramName = "DESCRIPCION_PROGRAMA"
	ColLevel       = "NIVEL"
	ColLevelName   = "DESCRIPCION_NIVEL"
	ColShift       = "JORNADA"
	ColTerm        = "PERIODO"
	ColNRC         = "NRCS"
	ColAlpha       = "ALFA"
	ColNumber      = "NUMERI"
	ColCourseTitle = "DESCRIPCION"
	ColGrade       = "DEFINITIVA"
	ColSemAverage  = "PROMEDIO_SEM"
	ColCumAverage  = "PROM_ACU"
	ColGradeMethod = "FORMA_CAL"
	ColComment     = "COMENTARIO"
)

// Layout is the expected canonical column set of an ARGOS extract.
var Layout = []string{
	ColStudentID, ColStudentName, ColRectory, ColRectoryName,
	ColCampus, ColCampusName, ColFaculty, ColFacultyName,
	ColProgram, ColProgramName, ColLevel, ColLevelName,
	ColShift, ColTerm, ColNRC, ColAlpha, ColNumber, ColCourseTitle,
	ColGrade, ColSemAverage, ColCumAverage, ColGradeMethod, ColComment,
}

// criticalPositions pins the zero-based ordinals the merge engine depends on,
// independent of the nominal column check.
var criticalPositions = map[int]string{
	13: ColTerm,
	14: ColNRC,
	15: ColAlpha,
	16: ColNumber,
	17: ColCourseTitle,
	18: ColGrade,
}

// headerAliases rewrites frequent misspellings and legacy names to the
// canonical layout.
var headerAliases = map[string]string{
	"FACULTA":                 ColFaculty,
	"DESCRIPION":              ColCourseTitle,
	"DESCRIPCION_ASIGNATURA":  ColCourseTitle,
	"ALFA_NUMERI":             ColNRC,
	"NOMBRE":                  ColStudentName,
}

// Report is the outcome of validating one extract. The table is usable
// downstream only when the column, grade and term checks all pass; positional
// and duplicate findings are advisory.
type Report struct {
	ColumnsValid   bool     `json:"columns_valid"`
	MissingColumns []string `json:"missing_columns,omitempty"`
	PositionsValid bool     `json:"positions_valid"`
	PositionErrors []string `json:"position_errors,omitempty"`
	GradesValid    bool     `json:"grades_valid"`
	TermsValid     bool     `json:"terms_valid"`
	HasDuplicates  *bool    `json:"has_duplicates,omitempty"`
	TotalRows      int      `json:"total_rows"`
	Errors         []string `json:"errors,omitempty"`
}

// TableUsable reports whether ingestion may proceed.
func (r Report) TableUsable() bool {
	return len(r.Errors) == 0 && r.ColumnsValid && r.GradesValid && r.TermsValid
}

// Validator checks an extract against the fixed ARGOS layout and the
// field-level semantic rules. The valid sub-period codes are configuration.
type Validator struct {
	termPattern *regexp.Regexp
}

// NewValidator builds a validator for the given sub-period code enumeration.
func NewValidator(periodCodes []string) *Validator {
	quoted := make([]string, 0, len(periodCodes))
	for _, code := range periodCodes {
		quoted = append(quoted, regexp.QuoteMeta(strings.TrimSpace(code)))
	}
	pattern := regexp.MustCompile(`^20\d{2}(` + strings.Join(quoted, "|") + `)$`)
	return &Validator{termPattern: pattern}
}

// Validate runs the hybrid structural and semantic checks and returns the
// normalized table alongside the report. All failure modes are reported in
// the structure; Validate never panics on malformed input.
func (v *Validator) Validate(table RawTable) (RawTable, Report) {
	report := Report{TotalRows: len(table.Rows)}

	if len(table.Header) == 0 {
		report.Errors = append(report.Errors, "extract has no header row")
		return RawTable{}, report
	}

	normalized := RawTable{Header: normalizeHeader(table.Header), Rows: table.Rows}

	report.MissingColumns = missingColumns(normalized.Header)
	report.ColumnsValid = len(report.MissingColumns) == 0

	report.PositionErrors = positionErrors(normalized.Header)
	report.PositionsValid = len(report.PositionErrors) == 0

	report.GradesValid = v.checkGrades(normalized)
	report.TermsValid = v.checkTerms(normalized)
	report.HasDuplicates = duplicateFlag(normalized)

	return normalized, report
}

func normalizeHeader(header []string) []string {
	normalized := make([]string, len(header))
	for i, raw := range header {
		name := strings.ToUpper(strings.TrimSpace(raw))
		if canonical, ok := headerAliases[name]; ok {
			name = canonical
		}
		normalized[i] = name
	}
	return normalized
}

func missingColumns(header []string) []string {
	present := make(map[string]struct{}, len(header))
	for _, name := range header {
		present[name] = struct{}{}
	}
	var missing []string
	for _, want := range Layout {
		if _, ok := present[want]; !ok {
			missing = append(missing, want)
		}
	}
	return missing
}

func positionErrors(header []string) []string {
	var errs []string
	for idx, want := range criticalPositions {
		if idx >= len(header) {
			errs = append(errs, fmt.Sprintf("column missing at position %d (%s)", idx+1, want))
			continue
		}
		if header[idx] != want {
			errs = append(errs, fmt.Sprintf("position %d expected %q but found %q", idx+1, want, header[idx]))
		}
	}
	return errs
}

// checkGrades verifies that every non-null coerced grade falls in [0, 5].
// Values that cannot be coerced at all count as null here; the merge engine
// deals with them row by row.
func (v *Validator) checkGrades(table RawTable) bool {
	if table.columnIndex(ColGrade) < 0 {
		return false
	}
	for _, row := range table.Rows {
		grade, err := ParseGrade(table.Cell(row, ColGrade))
		if err != nil || grade == nil {
			continue
		}
		if *grade < 0 || *grade > 5 {
			return false
		}
	}
	return true
}

func (v *Validator) checkTerms(table RawTable) bool {
	if table.columnIndex(ColTerm) < 0 {
		return false
	}
	for _, row := range table.Rows {
		if !v.termPattern.MatchString(table.Cell(row, ColTerm)) {
			return false
		}
	}
	return true
}

// duplicateFlag reports repeated (student, NRC, term) triples. Nil when the
// key columns are not all present.
func duplicateFlag(table RawTable) *bool {
	for _, col := range []string{ColStudentID, ColNRC, ColTerm} {
		if table.columnIndex(col) < 0 {
			return nil
		}
	}
	seen := make(map[string]struct{}, len(table.Rows))
	dup := false
	for _, row := range table.Rows {
		key := table.Cell(row, ColStudentID) + "|" +
			strings.ToUpper(table.Cell(row, ColNRC)) + "|" +
			table.Cell(row, ColTerm)
		if _, ok := seen[key]; ok {
			dup = true
			break
		}
		seen[key] = struct{}{}
	}
	return &dup
}

var gradeNoise = regexp.MustCompile(`[^0-9.\-]`)

// ParseGrade coerces raw grade text to a float. Commas are accepted as the
// decimal mark and non-numeric noise is stripped first. An empty cell yields
// (nil, nil); text with digits that still fails to parse yields an error.
func ParseGrade(raw string) (*float64, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	cleaned = gradeNoise.ReplaceAllString(cleaned, "")
	if cleaned == "" || cleaned == "-" {
		return nil, nil
	}
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil, fmt.Errorf("unparseable grade %q", raw)
	}
	return &value, nil
}
