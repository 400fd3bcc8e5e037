package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sia-project/sia-api/internal/models"
	appErrors "github.com/sia-project/sia-api/pkg/errors"
)

type blueprintResolver interface {
	Resolve(id string) (models.Blueprint, error)
	ForProgram(programCode string) (models.Blueprint, error)
}

type studentReader interface {
	GetByID(ctx context.Context, id string) (*models.Student, error)
}

type historyReader interface {
	StudentHistory(ctx context.Context, studentID string) ([]models.HistoryRow, error)
	ProgramHistory(ctx context.Context, programCode string) ([]models.ProgramHistoryRow, error)
}

type reportCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

type reportMetrics interface {
	ObserveReportBuild(duration time.Duration)
}

// CurriculumView is a student's blueprint mapped against their history, with
// the credit rollup attached.
type CurriculumView struct {
	Student     *models.Student          `json:"student"`
	BlueprintID string                   `json:"blueprint_id"`
	Blocks      []models.ClassifiedBlock `json:"blocks"`
	Progress    models.StudentProgress   `json:"progress"`
}

// ProgressService derives credit progress from classified curricula: one
// student at a time or a whole program with filtering and caching.
type ProgressService struct {
	students   studentReader
	history    historyReader
	blueprints blueprintResolver
	crossref   *CrossrefService
	cache      reportCache
	cacheTTL   time.Duration
	metrics    reportMetrics
	logger     *zap.Logger
}

// NewProgressService constructs a ProgressService. cache may be nil.
func NewProgressService(students studentReader, history historyReader, blueprints blueprintResolver, crossref *CrossrefService, cache reportCache, cacheTTL time.Duration, logger *zap.Logger) *ProgressService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProgressService{
		students:   students,
		history:    history,
		blueprints: blueprints,
		crossref:   crossref,
		cache:      cache,
		cacheTTL:   cacheTTL,
		logger:     logger,
	}
}

// WithMetrics attaches a report-build duration observer.
func (s *ProgressService) WithMetrics(metrics reportMetrics) *ProgressService {
	s.metrics = metrics
	return s
}

// Summarize rolls classified blocks into per-state credit totals.
func (s *ProgressService) Summarize(blocks []models.ClassifiedBlock) models.CreditTotals {
	var totals models.CreditTotals
	for _, block := range blocks {
		for _, course := range block.Courses {
			totals.Add(course.State, course.Credits)
		}
	}
	return totals
}

// StudentCurriculum maps one student against a blueprint. An empty
// blueprintID resolves through the student's program.
func (s *ProgressService) StudentCurriculum(ctx context.Context, studentID, blueprintID string) (*CurriculumView, error) {
	student, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if student == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}

	bp, err := s.resolveBlueprint(blueprintID, student.ProgramCode)
	if err != nil {
		return nil, err
	}

	history, err := s.history.StudentHistory(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load history")
	}

	blocks := s.crossref.Map(bp, history)
	progress := s.buildProgress(student.ID, student.FullName, student.ProgramCode, bp, blocks)

	return &CurriculumView{
		Student:     student,
		BlueprintID: bp.ID,
		Blocks:      blocks,
		Progress:    progress,
	}, nil
}

// StudentHistory returns the persisted enrollment history of one student.
func (s *ProgressService) StudentHistory(ctx context.Context, studentID string) ([]models.HistoryRow, error) {
	student, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if student == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	history, err := s.history.StudentHistory(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load history")
	}
	return history, nil
}

// ProgramReport cross-references every student of a program and filters by a
// minimum completion percentage. Reports are cached per (program, blueprint,
// threshold) and invalidated by imports.
func (s *ProgressService) ProgramReport(ctx context.Context, programCode string, minPercent float64, blueprintID string) (*models.ProgramProgressReport, error) {
	programCode = strings.ToUpper(strings.TrimSpace(programCode))
	if programCode == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "program code required")
	}
	if minPercent < 0 || minPercent > 100 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "minPercent must be between 0 and 100")
	}

	key := fmt.Sprintf("progress:program:%s:%s:%.2f", programCode, blueprintID, minPercent)
	if s.cache != nil {
		var cached models.ProgramProgressReport
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return &cached, nil
		}
	}

	bp, err := s.resolveBlueprint(blueprintID, programCode)
	if err != nil {
		return nil, err
	}

	rows, err := s.history.ProgramHistory(ctx, programCode)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load program history")
	}

	start := time.Now()
	report := s.buildProgramReport(programCode, minPercent, bp, rows)
	if s.metrics != nil {
		s.metrics.ObserveReportBuild(time.Since(start))
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, report, s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache program report", zap.String("key", key), zap.Error(err))
		}
	}
	return report, nil
}

func (s *ProgressService) buildProgramReport(programCode string, minPercent float64, bp models.Blueprint, rows []models.ProgramHistoryRow) *models.ProgramProgressReport {
	type studentRows struct {
		name    string
		rows    []models.HistoryRow
		matched bool
	}

	grouped := make(map[string]*studentRows)
	var order []string
	for _, row := range rows {
		entry, ok := grouped[row.StudentID]
		if !ok {
			entry = &studentRows{name: row.StudentName}
			grouped[row.StudentID] = entry
			order = append(order, row.StudentID)
		}
		entry.rows = append(entry.rows, row.HistoryRow)
		if row.ProgramCode == nil || strings.EqualFold(strings.TrimSpace(*row.ProgramCode), bp.ProgramCode) {
			entry.matched = true
		}
	}
	sort.Strings(order)

	report := &models.ProgramProgressReport{
		ProgramCode: programCode,
		ProgramName: bp.Name,
		BlueprintID: bp.ID,
		MinPercent:  minPercent,
		Students:    []models.StudentProgress{},
		Filtered:    []models.StudentProgress{},
	}

	for _, studentID := range order {
		entry := grouped[studentID]
		if !entry.matched {
			report.Excluded = append(report.Excluded, models.ExcludedStudent{
				StudentID:   studentID,
				StudentName: entry.name,
			})
			continue
		}
		blocks := s.crossref.Map(bp, entry.rows)
		progress := s.buildProgress(studentID, entry.name, programCode, bp, blocks)
		report.Students = append(report.Students, progress)
		if progress.PercentComplete >= minPercent {
			report.Filtered = append(report.Filtered, progress)
		}
	}

	report.TotalStudents = len(report.Students)
	report.FilteredCount = len(report.Filtered)
	if len(report.Filtered) > 0 {
		sum := 0.0
		for _, p := range report.Filtered {
			sum += p.PercentComplete
		}
		mean := sum / float64(len(report.Filtered))
		report.MeanPercent = &mean
	}
	return report
}

func (s *ProgressService) buildProgress(studentID, studentName, programCode string, bp models.Blueprint, blocks []models.ClassifiedBlock) models.StudentProgress {
	totals := s.Summarize(blocks)

	totalCredits := bp.TotalCredits
	if totalCredits <= 0 {
		totalCredits = totals.Approved + totals.Failed + totals.Transferred + totals.Pending
	}
	percent := 0.0
	if totalCredits > 0 {
		percent = float64(totals.ApprovedOrTransferred()) * 100.0 / float64(totalCredits)
	}

	return models.StudentProgress{
		StudentID:             studentID,
		StudentName:           studentName,
		ProgramCode:           programCode,
		Totals:                totals,
		ApprovedOrTransferred: totals.ApprovedOrTransferred(),
		TotalCredits:          totalCredits,
		PercentComplete:       percent,
		PercentPending:        100.0 - percent,
	}
}

func (s *ProgressService) resolveBlueprint(blueprintID, programCode string) (models.Blueprint, error) {
	if strings.TrimSpace(blueprintID) != "" {
		return s.blueprints.Resolve(blueprintID)
	}
	return s.blueprints.ForProgram(programCode)
}
