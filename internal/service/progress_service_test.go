package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sia-project/sia-api/internal/models"
	appErrors "github.com/sia-project/sia-api/pkg/errors"
)

type fakeStudentReader struct {
	students map[string]*models.Student
}

func (f *fakeStudentReader) GetByID(_ context.Context, id string) (*models.Student, error) {
	return f.students[id], nil
}

type fakeHistoryReader struct {
	byStudent map[string][]models.HistoryRow
	byProgram map[string][]models.ProgramHistoryRow
}

func (f *fakeHistoryReader) StudentHistory(_ context.Context, studentID string) ([]models.HistoryRow, error) {
	return f.byStudent[studentID], nil
}

func (f *fakeHistoryReader) ProgramHistory(_ context.Context, programCode string) ([]models.ProgramHistoryRow, error) {
	return f.byProgram[programCode], nil
}

type fakeBlueprintResolver struct {
	blueprints map[string]models.Blueprint
	byProgram  map[string]models.Blueprint
}

func (f *fakeBlueprintResolver) Resolve(id string) (models.Blueprint, error) {
	bp, ok := f.blueprints[id]
	if !ok {
		return models.Blueprint{}, appErrors.Clone(appErrors.ErrBlueprintNotFound, "")
	}
	return bp, nil
}

func (f *fakeBlueprintResolver) ForProgram(code string) (models.Blueprint, error) {
	bp, ok := f.byProgram[code]
	if !ok {
		return models.Blueprint{}, appErrors.Clone(appErrors.ErrUnknownProgram, "")
	}
	return bp, nil
}

type fakeReportCache struct {
	values map[string][]byte
	sets   int
	hits   int
}

func (f *fakeReportCache) Get(_ context.Context, key string, dest interface{}) error {
	if _, ok := f.values[key]; !ok {
		return appErrors.ErrCacheMiss
	}
	f.hits++
	return nil
}

func (f *fakeReportCache) Set(_ context.Context, key string, _ interface{}, _ time.Duration) error {
	if f.values == nil {
		f.values = map[string][]byte{}
	}
	f.values[key] = []byte("cached")
	f.sets++
	return nil
}

func progressBlueprint() models.Blueprint {
	return models.Blueprint{
		ID:           "bp-140",
		ProgramCode:  "ISOF",
		Name:         "Ingeniería de Software",
		TotalCredits: 140,
		Blocks: []models.BlueprintBlock{
			{Period: 1, Courses: []models.BlueprintCourse{
				{Codes: models.CodeList{"ISOF V003"}, Name: "Introducción", Credits: 70},
				{Codes: models.CodeList{"ISOF V013"}, Name: "Objetos", Credits: 70},
			}},
		},
	}
}

func strField(s string) *string { return &s }

func newProgressFixture(history *fakeHistoryReader) (*ProgressService, *fakeReportCache) {
	students := &fakeStudentReader{students: map[string]*models.Student{
		"948997": {ID: "948997", FullName: "Ada Lovelace", ProgramCode: "ISOF"},
	}}
	resolver := &fakeBlueprintResolver{
		blueprints: map[string]models.Blueprint{"bp-140": progressBlueprint()},
		byProgram:  map[string]models.Blueprint{"ISOF": progressBlueprint()},
	}
	cache := &fakeReportCache{}
	svc := NewProgressService(students, history, resolver, NewCrossrefService("", nil), cache, time.Minute, nil)
	return svc, cache
}

func TestSummarizeAlwaysCarriesAllStates(t *testing.T) {
	svc, _ := newProgressFixture(&fakeHistoryReader{})
	totals := svc.Summarize([]models.ClassifiedBlock{
		{Period: 1, Courses: []models.ClassifiedCourse{
			{State: models.CourseStateApproved, Credits: 3},
			{State: models.CourseStateTransferred, Credits: 2},
			{State: models.CourseStatePending, Credits: 4},
		}},
	})
	assert.Equal(t, 3, totals.Approved)
	assert.Equal(t, 0, totals.Failed)
	assert.Equal(t, 2, totals.Transferred)
	assert.Equal(t, 4, totals.Pending)
	assert.Equal(t, 5, totals.ApprovedOrTransferred())
}

func TestStudentCurriculumHalfwayCompletion(t *testing.T) {
	history := &fakeHistoryReader{byStudent: map[string][]models.HistoryRow{
		"948997": {
			{CourseID: "50439", Code: "ISOF V003", Grade: gradePtr(4.0), TermID: "202507"},
		},
	}}
	svc, _ := newProgressFixture(history)

	view, err := svc.StudentCurriculum(context.Background(), "948997", "bp-140")
	require.NoError(t, err)
	assert.Equal(t, "bp-140", view.BlueprintID)
	assert.Equal(t, 70, view.Progress.ApprovedOrTransferred)
	assert.InDelta(t, 50.0, view.Progress.PercentComplete, 1e-9)
	assert.InDelta(t, 50.0, view.Progress.PercentPending, 1e-9)
}

func TestStudentCurriculumUnknownStudent(t *testing.T) {
	svc, _ := newProgressFixture(&fakeHistoryReader{})
	_, err := svc.StudentCurriculum(context.Background(), "nadie", "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestProgramReportFiltersAndAverages(t *testing.T) {
	history := &fakeHistoryReader{byProgram: map[string][]models.ProgramHistoryRow{
		"ISOF": {
			{HistoryRow: models.HistoryRow{CourseID: "1", Code: "ISOF V003", Grade: gradePtr(4.0), TermID: "202507", ProgramCode: strField("ISOF")}, StudentID: "A", StudentName: "Alta"},
			{HistoryRow: models.HistoryRow{CourseID: "2", Code: "ISOF V013", Grade: gradePtr(3.5), TermID: "202507", ProgramCode: strField("ISOF")}, StudentID: "A", StudentName: "Alta"},
			{HistoryRow: models.HistoryRow{CourseID: "3", Code: "ISOF V003", Grade: gradePtr(3.2), TermID: "202507", ProgramCode: strField("ISOF")}, StudentID: "B", StudentName: "Media"},
		},
	}}
	svc, cache := newProgressFixture(history)

	report, err := svc.ProgramReport(context.Background(), "isof", 60, "")
	require.NoError(t, err)

	assert.Equal(t, "ISOF", report.ProgramCode)
	assert.Equal(t, 2, report.TotalStudents)
	assert.Equal(t, 1, report.FilteredCount)
	require.Len(t, report.Filtered, 1)
	assert.Equal(t, "A", report.Filtered[0].StudentID)
	assert.InDelta(t, 100.0, report.Filtered[0].PercentComplete, 1e-9)
	require.NotNil(t, report.MeanPercent)
	assert.InDelta(t, 100.0, *report.MeanPercent, 1e-9)
	assert.Equal(t, 1, cache.sets)
}

func TestProgramReportExcludesForeignProgramHistory(t *testing.T) {
	history := &fakeHistoryReader{byProgram: map[string][]models.ProgramHistoryRow{
		"ISOF": {
			{HistoryRow: models.HistoryRow{CourseID: "1", Code: "ISOF V003", Grade: gradePtr(4.0), TermID: "202507", ProgramCode: strField("ADMI")}, StudentID: "C", StudentName: "Cambiada"},
		},
	}}
	svc, _ := newProgressFixture(history)

	report, err := svc.ProgramReport(context.Background(), "ISOF", 0, "")
	require.NoError(t, err)
	assert.Equal(t, 0, report.TotalStudents)
	assert.Nil(t, report.MeanPercent)
	require.Len(t, report.Excluded, 1)
	assert.Equal(t, "C", report.Excluded[0].StudentID)
}

func TestProgramReportServedFromCache(t *testing.T) {
	history := &fakeHistoryReader{byProgram: map[string][]models.ProgramHistoryRow{}}
	svc, cache := newProgressFixture(history)

	_, err := svc.ProgramReport(context.Background(), "ISOF", 0, "bp-140")
	require.NoError(t, err)
	_, err = svc.ProgramReport(context.Background(), "ISOF", 0, "bp-140")
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets)
	assert.Equal(t, 1, cache.hits)
}

func TestProgramReportRejectsBadThreshold(t *testing.T) {
	svc, _ := newProgressFixture(&fakeHistoryReader{})
	_, err := svc.ProgramReport(context.Background(), "ISOF", 120, "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestProgramReportUnknownProgram(t *testing.T) {
	svc, _ := newProgressFixture(&fakeHistoryReader{})
	_, err := svc.ProgramReport(context.Background(), "NADA", 0, "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnknownProgram.Code, appErrors.FromError(err).Code)
}

func TestBuildProgressGuardsZeroCredits(t *testing.T) {
	svc, _ := newProgressFixture(&fakeHistoryReader{})
	bp := models.Blueprint{ID: "bp-0", ProgramCode: "X", TotalCredits: 0}
	progress := svc.buildProgress("S", "Sin Malla", "X", bp, nil)
	assert.Equal(t, 0, progress.TotalCredits)
	assert.Equal(t, 0.0, progress.PercentComplete)
}
