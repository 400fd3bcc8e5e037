package argos

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// RawTable is a two-dimensional extract with its header row, as read from an
// ARGOS workbook before any validation.
type RawTable struct {
	Header []string
	Rows   [][]string
}

// ReadExtract reads the first sheet of an ARGOS .xlsx workbook into a raw
// table. Fully blank rows are skipped. maxRows bounds the data rows accepted
// (0 means unbounded).
func ReadExtract(r io.Reader, maxRows int) (RawTable, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return RawTable{}, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return RawTable{}, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return RawTable{}, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return RawTable{}, fmt.Errorf("sheet %q is empty", sheet)
	}

	table := RawTable{Header: rows[0]}
	for _, row := range rows[1:] {
		if blankRow(row) {
			continue
		}
		table.Rows = append(table.Rows, row)
	}
	if maxRows > 0 && len(table.Rows) > maxRows {
		return RawTable{}, fmt.Errorf("extract has %d rows, limit is %d", len(table.Rows), maxRows)
	}
	return table, nil
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// Cell returns the trimmed cell under the canonical column name, or "" when
// the column is absent or the row is short. The table must be normalized.
func (t RawTable) Cell(row []string, column string) string {
	idx := t.columnIndex(column)
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func (t RawTable) columnIndex(column string) int {
	for i, h := range t.Header {
		if h == column {
			return i
		}
	}
	return -1
}

// Row is one extract line mapped onto the canonical ARGOS columns.
type Row struct {
	StudentID   string
	StudentName string
	ProgramCode string
	ProgramName string
	FacultyCode string
	FacultyName string
	TermID      string
	NRC         string
	Alpha       string
	Number      string
	CourseTitle string
	GradeRaw    string
	Comment     string
}

// ExtractRows maps a normalized table onto typed rows for the merge engine.
func ExtractRows(table RawTable) []Row {
	rows := make([]Row, 0, len(table.Rows))
	for _, raw := range table.Rows {
		rows = append(rows, Row{
			StudentID:   table.Cell(raw, ColStudentID),
			StudentName: table.Cell(raw, ColStudentName),
			ProgramCode: table.Cell(raw, ColProgram),
			ProgramName: table.Cell(raw, ColProgramName),
			FacultyCode: table.Cell(raw, ColFaculty),
			FacultyName: table.Cell(raw, ColFacultyName),
			TermID:      table.Cell(raw, ColTerm),
			NRC:         table.Cell(raw, ColNRC),
			Alpha:       table.Cell(raw, ColAlpha),
			Number:      table.Cell(raw, ColNumber),
			CourseTitle: table.Cell(raw, ColCourseTitle),
			GradeRaw:    table.Cell(raw, ColGrade),
			Comment:     table.Cell(raw, ColComment),
		})
	}
	return rows
}
