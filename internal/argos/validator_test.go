package argos

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var defaultPeriodCodes = []string{"05", "07", "13", "16", "18", "23", "25", "28"}

func sampleHeader() []string {
	header := make([]string, len(Layout))
	copy(header, Layout)
	return header
}

// sampleRow builds a full-width row with the given term, NRC and grade.
func sampleRow(studentID, nrc, term, grade string) []string {
	row := make([]string, len(Layout))
	row[0] = studentID
	row[1] = "Ada Lovelace"
	row[8] = "ISOF"
	row[9] = "Ingenieria de Software"
	row[13] = term
	row[14] = nrc
	row[15] = "ISOF"
	row[16] = "V033"
	row[17] = "Analisis y Diseno de Software"
	row[18] = grade
	return row
}

func TestValidateAcceptsWellFormedExtract(t *testing.T) {
	v := NewValidator(defaultPeriodCodes)
	table := RawTable{
		Header: sampleHeader(),
		Rows: [][]string{
			sampleRow("948997", "50439", "202507", "4,5"),
			sampleRow("948997", "50440", "202513", "2.9"),
		},
	}

	normalized, report := v.Validate(table)
	assert.True(t, report.ColumnsValid)
	assert.True(t, report.PositionsValid)
	assert.True(t, report.GradesValid)
	assert.True(t, report.TermsValid)
	require.NotNil(t, report.HasDuplicates)
	assert.False(t, *report.HasDuplicates)
	assert.Equal(t, 2, report.TotalRows)
	assert.True(t, report.TableUsable())
	assert.Equal(t, "50439", normalized.Cell(normalized.Rows[0], ColNRC))
}

func TestValidateNormalizesHeaderAliases(t *testing.T) {
	header := sampleHeader()
	header[6] = " faculta "
	header[17] = "descripcion_asignatura"
	v := NewValidator(defaultPeriodCodes)

	normalized, report := v.Validate(RawTable{Header: header})
	assert.True(t, report.ColumnsValid, "aliases must map onto the canonical layout")
	assert.Equal(t, ColFaculty, normalized.Header[6])
	assert.Equal(t, ColCourseTitle, normalized.Header[17])
}

func TestValidateReportsMissingColumns(t *testing.T) {
	header := sampleHeader()
	header[18] = "NOTA_FINAL"
	v := NewValidator(defaultPeriodCodes)

	_, report := v.Validate(RawTable{Header: header})
	assert.False(t, report.ColumnsValid)
	assert.Contains(t, report.MissingColumns, ColGrade)
	assert.False(t, report.TableUsable())
}

func TestValidateReportsPositionErrors(t *testing.T) {
	header := sampleHeader()
	// Swap two positionally critical columns: both names remain present, so
	// the nominal check passes while the positional check must not.
	header[13], header[14] = header[14], header[13]
	v := NewValidator(defaultPeriodCodes)

	_, report := v.Validate(RawTable{Header: header})
	assert.True(t, report.ColumnsValid)
	assert.False(t, report.PositionsValid)
	assert.Len(t, report.PositionErrors, 2)
}

func TestValidateGradeBounds(t *testing.T) {
	v := NewValidator(defaultPeriodCodes)
	table := RawTable{
		Header: sampleHeader(),
		Rows: [][]string{
			sampleRow("948997", "50439", "202507", "6,0"),
		},
	}

	_, report := v.Validate(table)
	assert.False(t, report.GradesValid, "6,0 normalizes to 6.0 and must fail the whole table")
	assert.False(t, report.TableUsable())
}

func TestValidateGradeTreatsUnparseableAsNull(t *testing.T) {
	v := NewValidator(defaultPeriodCodes)
	table := RawTable{
		Header: sampleHeader(),
		Rows: [][]string{
			sampleRow("948997", "50439", "202507", "EQUIVALENCIA"),
			sampleRow("948997", "50440", "202507", ""),
		},
	}

	_, report := v.Validate(table)
	assert.True(t, report.GradesValid, "null and uncoercible grades pass the coarse bound check")
}

func TestValidateTermFormat(t *testing.T) {
	cases := []struct {
		term  string
		valid bool
	}{
		{"202507", true},
		{"202528", true},
		{"202599", false},
		{"20257", false},
		{"199905", false},
		{"ABCDEF", false},
	}
	v := NewValidator(defaultPeriodCodes)
	for _, tc := range cases {
		table := RawTable{Header: sampleHeader(), Rows: [][]string{sampleRow("1", "50439", tc.term, "3.0")}}
		_, report := v.Validate(table)
		assert.Equal(t, tc.valid, report.TermsValid, "term %q", tc.term)
	}
}

func TestValidateFlagsDuplicatesButStaysUsable(t *testing.T) {
	v := NewValidator(defaultPeriodCodes)
	table := RawTable{
		Header: sampleHeader(),
		Rows: [][]string{
			sampleRow("S1", "1111", "202507", "4.5"),
			sampleRow("S1", "1111", "202507", "3.9"),
		},
	}

	_, report := v.Validate(table)
	require.NotNil(t, report.HasDuplicates)
	assert.True(t, *report.HasDuplicates)
	assert.True(t, report.TableUsable(), "duplicates are advisory, ingestion may proceed")
}

func TestValidateEmptyHeaderFails(t *testing.T) {
	v := NewValidator(defaultPeriodCodes)
	_, report := v.Validate(RawTable{})
	assert.False(t, report.TableUsable())
	assert.NotEmpty(t, report.Errors)
}

func TestParseGrade(t *testing.T) {
	cases := []struct {
		raw  string
		want *float64
		err  bool
	}{
		{"4,5", ptrFloat(4.5), false},
		{"3.0", ptrFloat(3.0), false},
		{" 2,75 ", ptrFloat(2.75), false},
		{"4.5 aprobado", ptrFloat(4.5), false},
		{"", nil, false},
		{"-", nil, false},
		{"N/A", nil, false},
		{"4..5", nil, true},
	}
	for _, tc := range cases {
		got, err := ParseGrade(tc.raw)
		if tc.err {
			assert.Error(t, err, "raw %q", tc.raw)
			continue
		}
		require.NoError(t, err, "raw %q", tc.raw)
		if tc.want == nil {
			assert.Nil(t, got, "raw %q", tc.raw)
		} else {
			require.NotNil(t, got, "raw %q", tc.raw)
			assert.InDelta(t, *tc.want, *got, 1e-9, "raw %q", tc.raw)
		}
	}
}

func ptrFloat(v float64) *float64 {
	return &v
}
