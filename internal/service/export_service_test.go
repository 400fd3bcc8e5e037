package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sia-project/sia-api/internal/models"
	appErrors "github.com/sia-project/sia-api/pkg/errors"
	"github.com/sia-project/sia-api/pkg/export"
)

func exportFixtureView() *CurriculumView {
	term := "202505"
	return &CurriculumView{
		Student:     &models.Student{ID: "1001", FullName: "Ana Prueba"},
		BlueprintID: "isof-virtual",
		Blocks: []models.ClassifiedBlock{
			{Period: 1, Courses: []models.ClassifiedCourse{
				{Code: "ISOF V003", Name: "Cálculo Diferencial", Credits: 3, State: models.CourseStateApproved, Grade: gradePtr(4.5), TermID: &term},
				{Code: "ISOF V004", Name: "Lógica de Programación", Credits: 3, State: models.CourseStatePending},
			}},
		},
	}
}

func TestExportServiceCurriculumCSV(t *testing.T) {
	svc := NewExportService(export.NewCSVExporter(), export.NewPDFExporter(), nil)

	file, err := svc.Curriculum(exportFixtureView(), "csv")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", file.ContentType)
	assert.Equal(t, "curriculum_1001.csv", file.FileName)

	content := string(file.Content)
	lines := strings.Split(strings.TrimSpace(content), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "PERIODO")
	assert.Contains(t, lines[0], "ESTADO")
	assert.Contains(t, content, "ISOF V003")
	assert.Contains(t, content, "4.5")
	assert.Contains(t, content, "202505")
	assert.Contains(t, content, string(models.CourseStatePending))
}

func TestExportServiceCurriculumDefaultsToCSV(t *testing.T) {
	svc := NewExportService(export.NewCSVExporter(), export.NewPDFExporter(), nil)

	file, err := svc.Curriculum(exportFixtureView(), "")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", file.ContentType)
}

func TestExportServiceCurriculumPDF(t *testing.T) {
	svc := NewExportService(export.NewCSVExporter(), export.NewPDFExporter(), nil)

	file, err := svc.Curriculum(exportFixtureView(), "pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.Equal(t, "curriculum_1001.pdf", file.FileName)
	assert.True(t, strings.HasPrefix(string(file.Content), "%PDF"))
}

func TestExportServiceProgressCSV(t *testing.T) {
	svc := NewExportService(export.NewCSVExporter(), export.NewPDFExporter(), nil)
	report := &models.ProgramProgressReport{
		ProgramCode: "ISOF",
		MinPercent:  50,
		Filtered: []models.StudentProgress{
			{
				StudentID:       "1001",
				StudentName:     "Ana Prueba",
				Totals:          models.CreditTotals{Approved: 60, Transferred: 10, Failed: 3, Pending: 67},
				PercentComplete: 50,
			},
		},
	}

	file, err := svc.Progress(report, "csv")
	require.NoError(t, err)
	assert.Equal(t, "progress_isof.csv", file.FileName)

	content := string(file.Content)
	assert.Contains(t, content, "ID_ESTUDIANTE")
	assert.Contains(t, content, "Ana Prueba")
	assert.Contains(t, content, "50.00")
}

func TestExportServiceUnsupportedFormat(t *testing.T) {
	svc := NewExportService(export.NewCSVExporter(), export.NewPDFExporter(), nil)

	_, err := svc.Curriculum(exportFixtureView(), "xlsx")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
