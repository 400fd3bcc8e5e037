package service

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/sia-project/sia-api/internal/argos"
	"github.com/sia-project/sia-api/internal/models"
	"github.com/sia-project/sia-api/internal/repository"
	appErrors "github.com/sia-project/sia-api/pkg/errors"
)

type mergeRunner interface {
	InTx(ctx context.Context, fn func(store repository.MergeStore) error) error
}

type auditWriter interface {
	Insert(ctx context.Context, audit *models.ImportAudit) error
	Recent(ctx context.Context, limit int) ([]models.ImportAudit, error)
}

type cacheInvalidator interface {
	DeleteByPattern(ctx context.Context, pattern string) error
}

type ingestMetrics interface {
	ObserveIngestBatch(counters models.ImportAudit)
}

// ImportSummary is the outcome of one batch import.
type ImportSummary struct {
	Total     int          `json:"total"`
	New       int          `json:"new"`
	Updated   int          `json:"updated"`
	Errors    int          `json:"errors"`
	Transfers int          `json:"transfers"`
	Report    argos.Report `json:"report"`
}

// IngestService validates ARGOS extracts and merges them into persistent
// state. A whole batch is one transaction, but each row runs under its own
// savepoint: row-level problems are counted and skipped while every other
// row still commits.
type IngestService struct {
	validator      *argos.Validator
	merges         mergeRunner
	audits         auditWriter
	cache          cacheInvalidator
	metrics        ingestMetrics
	transferPrefix string
	maxRows        int
	logger         *zap.Logger
}

// NewIngestService constructs an IngestService. cache and metrics may be nil;
// an empty transferPrefix falls back to the default.
func NewIngestService(validator *argos.Validator, merges mergeRunner, audits auditWriter, cache cacheInvalidator, metrics ingestMetrics, transferPrefix string, maxRows int, logger *zap.Logger) *IngestService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IngestService{
		validator:      validator,
		merges:         merges,
		audits:         audits,
		cache:          cache,
		metrics:        metrics,
		transferPrefix: transferPrefix,
		maxRows:        maxRows,
		logger:         logger,
	}
}

// ValidateExtract runs the structural and semantic checks without touching
// enrollment state. The run is still audited.
func (s *IngestService) ValidateExtract(ctx context.Context, r io.Reader, fileName, actor string) (*argos.Report, error) {
	_, report := s.readAndValidate(r)

	audit := &models.ImportAudit{
		Actor:    actor,
		Action:   models.AuditActionValidate,
		FileName: fileName,
		Total:    report.TotalRows,
	}
	if err := s.audits.Insert(ctx, audit); err != nil {
		s.logger.Warn("failed to audit validation run", zap.Error(err))
	}
	return report, nil
}

// Import validates the extract and, when usable, merges every row. The
// returned summary carries the validation report either way; an unusable
// table is refused with no state change.
func (s *IngestService) Import(ctx context.Context, r io.Reader, fileName, actor string) (*ImportSummary, error) {
	table, report := s.readAndValidate(r)

	summary := &ImportSummary{Total: report.TotalRows, Report: *report}
	if !report.TableUsable() {
		return summary, appErrors.Clone(appErrors.ErrExtractInvalid, "")
	}

	rows := argos.ExtractRows(table)
	err := s.merges.InTx(ctx, func(store repository.MergeStore) error {
		for _, row := range rows {
			row := row
			if err := store.Savepoint(ctx, func() error {
				return s.mergeRow(ctx, store, row, summary)
			}); err != nil {
				summary.Errors++
				s.logger.Warn("row merge failed",
					zap.String("student_id", strings.TrimSpace(row.StudentID)),
					zap.String("nrc", strings.TrimSpace(row.NRC)),
					zap.Error(err))
			}
		}
		audit := &models.ImportAudit{
			Actor:     actor,
			Action:    models.AuditActionImport,
			FileName:  fileName,
			Total:     summary.Total,
			New:       summary.New,
			Updated:   summary.Updated,
			Errors:    summary.Errors,
			Transfers: summary.Transfers,
		}
		return store.InsertImportAudit(ctx, audit)
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "import batch failed")
	}

	if s.cache != nil {
		if err := s.cache.DeleteByPattern(ctx, "progress:program:*"); err != nil {
			s.logger.Warn("failed to invalidate progress cache", zap.Error(err))
		}
	}
	if s.metrics != nil {
		s.metrics.ObserveIngestBatch(models.ImportAudit{
			Total:     summary.Total,
			New:       summary.New,
			Updated:   summary.Updated,
			Errors:    summary.Errors,
			Transfers: summary.Transfers,
		})
	}

	s.logger.Info("import batch merged",
		zap.String("file", fileName),
		zap.Int("total", summary.Total),
		zap.Int("new", summary.New),
		zap.Int("updated", summary.Updated),
		zap.Int("errors", summary.Errors),
		zap.Int("transfers", summary.Transfers))
	return summary, nil
}

// RecentImports lists the latest audit entries, newest first.
func (s *IngestService) RecentImports(ctx context.Context, limit int) ([]models.ImportAudit, error) {
	audits, err := s.audits.Recent(ctx, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list imports")
	}
	return audits, nil
}

// readAndValidate never fails outright: an unreadable workbook comes back as
// a report with a single error, so callers hand out the same report shape for
// every kind of rejection.
func (s *IngestService) readAndValidate(r io.Reader) (argos.RawTable, *argos.Report) {
	table, err := argos.ReadExtract(r, s.maxRows)
	if err != nil {
		report := argos.Report{Errors: []string{fmt.Sprintf("unreadable extract: %v", err)}}
		return argos.RawTable{}, &report
	}
	normalized, report := s.validator.Validate(table)
	return normalized, &report
}

// mergeRow merges one extract line. Incomplete keys and unparseable grades
// are counted as row errors and skipped; storage failures surface to the
// caller's savepoint scope.
func (s *IngestService) mergeRow(ctx context.Context, store repository.MergeStore, row argos.Row, summary *ImportSummary) error {
	studentID := strings.TrimSpace(row.StudentID)
	nrc := strings.ToUpper(strings.TrimSpace(row.NRC))
	termID := strings.TrimSpace(row.TermID)
	if studentID == "" || nrc == "" || termID == "" {
		summary.Errors++
		return nil
	}

	isTransfer := models.MatchesTransferPrefix(s.transferPrefix, nrc)

	grade, err := argos.ParseGrade(row.GradeRaw)
	if err != nil && !isTransfer {
		summary.Errors++
		return nil
	}

	student := &models.Student{
		ID:          studentID,
		FullName:    row.StudentName,
		ProgramCode: row.ProgramCode,
		ProgramName: row.ProgramName,
	}
	if err := store.UpsertStudent(ctx, student); err != nil {
		return err
	}

	alphaCode := models.BuildAlphaCode(row.Alpha, row.Number)
	course := &models.Course{ID: nrc, Name: row.CourseTitle}
	if alphaCode != "" {
		course.AlphaCode = &alphaCode
	}
	if row.ProgramCode != "" {
		code := row.ProgramCode
		course.ProgramCode = &code
	}
	if err := store.UpsertCourse(ctx, course); err != nil {
		return err
	}

	if err := store.EnsureTerm(ctx, buildTerm(termID)); err != nil {
		return err
	}

	enrollment := &models.Enrollment{
		StudentID: studentID,
		CourseID:  nrc,
		TermID:    termID,
		Grade:     grade,
	}
	if row.Alpha != "" {
		v := row.Alpha
		enrollment.AlphaPrefix = &v
	}
	if row.Number != "" {
		v := row.Number
		enrollment.CourseNumber = &v
	}
	if alphaCode != "" {
		enrollment.AlphaCode = &alphaCode
	}
	if row.CourseTitle != "" {
		v := row.CourseTitle
		enrollment.CourseName = &v
	}
	if row.ProgramCode != "" {
		v := row.ProgramCode
		enrollment.ProgramCode = &v
	}
	if row.ProgramName != "" {
		v := row.ProgramName
		enrollment.ProgramName = &v
	}

	result, err := store.UpsertEnrollment(ctx, enrollment)
	if err != nil {
		return err
	}
	switch result {
	case repository.UpsertInserted:
		summary.New++
	case repository.UpsertUpdated:
		summary.Updated++
	}
	if isTransfer {
		summary.Transfers++
	}
	return nil
}

// buildTerm splits a validated "YYYYSS" term id into its parts. The format
// was already checked, so parse failures only happen on permissive callers
// and degrade to zero values.
func buildTerm(termID string) models.Term {
	term := models.Term{ID: termID}
	if len(termID) == 6 {
		if year, err := strconv.Atoi(termID[:4]); err == nil {
			term.Year = year
		}
		term.Subperiod = termID[4:]
	}
	return term
}
