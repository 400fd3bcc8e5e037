package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/sia-project/sia-api/internal/models"
)

// UpsertResult distinguishes a first sighting from a refresh.
type UpsertResult string

const (
	UpsertInserted UpsertResult = "inserted"
	UpsertUpdated  UpsertResult = "updated"
)

// MergeStore is the write surface a batch import runs against. Every call
// within one InTx closure shares the same transaction.
type MergeStore interface {
	UpsertStudent(ctx context.Context, student *models.Student) error
	UpsertCourse(ctx context.Context, course *models.Course) error
	EnsureTerm(ctx context.Context, term models.Term) error
	UpsertEnrollment(ctx context.Context, enrollment *models.Enrollment) (UpsertResult, error)
	InsertImportAudit(ctx context.Context, audit *models.ImportAudit) error
	Savepoint(ctx context.Context, fn func() error) error
}

// MergeRepository owns the transactional merge of extract rows into the
// students, courses, terms and enrollments tables.
type MergeRepository struct {
	db *sqlx.DB
}

// NewMergeRepository creates a new merge repository.
func NewMergeRepository(db *sqlx.DB) *MergeRepository {
	return &MergeRepository{db: db}
}

// InTx runs fn against a MergeStore bound to a single transaction. The
// transaction commits only when fn returns nil; any error rolls everything
// back, so a failed batch leaves no partial state behind.
func (r *MergeRepository) InTx(ctx context.Context, fn func(store MergeStore) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin merge tx: %w", err)
	}
	if err := fn(&mergeStore{db: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback: %v)", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit merge tx: %w", err)
	}
	return nil
}

// Store returns a MergeStore over the bare connection, for callers that do
// not need transactional grouping. Savepoint requires a transaction and is
// only usable on stores handed out by InTx.
func (r *MergeRepository) Store() MergeStore {
	return &mergeStore{db: r.db}
}

// mergeStore works against either *sqlx.DB or *sqlx.Tx.
type mergeStore struct {
	db    sqlx.ExtContext
	spSeq int
}

// Savepoint scopes fn to a savepoint so a failed row is discarded without
// poisoning the surrounding transaction. Postgres aborts the whole
// transaction on any statement error otherwise, which would turn one bad row
// into a lost batch. Only meaningful inside InTx.
func (s *mergeStore) Savepoint(ctx context.Context, fn func() error) error {
	s.spSeq++
	name := fmt.Sprintf("merge_row_%d", s.spSeq)
	if _, err := s.db.ExecContext(ctx, "SAVEPOINT "+name); err != nil {
		return fmt.Errorf("savepoint %s: %w", name, err)
	}
	if err := fn(); err != nil {
		if _, rbErr := s.db.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+name); rbErr != nil {
			return fmt.Errorf("%w (rollback to savepoint %s: %v)", err, name, rbErr)
		}
		return err
	}
	if _, err := s.db.ExecContext(ctx, "RELEASE SAVEPOINT "+name); err != nil {
		return fmt.Errorf("release savepoint %s: %w", name, err)
	}
	return nil
}

// UpsertStudent creates the student on first sighting. On conflict the name
// and program fields are refreshed only with non-blank incoming values.
func (s *mergeStore) UpsertStudent(ctx context.Context, student *models.Student) error {
	student.ID = strings.TrimSpace(student.ID)
	if student.ID == "" {
		return fmt.Errorf("upsert student: empty id")
	}
	now := time.Now().UTC()
	if student.CreatedAt.IsZero() {
		student.CreatedAt = now
	}
	student.UpdatedAt = now
	const query = `INSERT INTO students (id, full_name, program_code, program_name, email, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        ON CONFLICT (id) DO UPDATE SET
            full_name = COALESCE(NULLIF(EXCLUDED.full_name, ''), students.full_name),
            program_code = COALESCE(NULLIF(EXCLUDED.program_code, ''), students.program_code),
            program_name = COALESCE(NULLIF(EXCLUDED.program_name, ''), students.program_name),
            updated_at = EXCLUDED.updated_at`
	if _, err := s.db.ExecContext(ctx, query,
		student.ID, student.FullName, student.ProgramCode, student.ProgramName,
		student.Email, student.CreatedAt, student.UpdatedAt); err != nil {
		return fmt.Errorf("upsert student %s: %w", student.ID, err)
	}
	return nil
}

// UpsertCourse restates the catalog entry: on conflict every descriptive
// field is overwritten with the incoming value.
func (s *mergeStore) UpsertCourse(ctx context.Context, course *models.Course) error {
	course.ID = strings.ToUpper(strings.TrimSpace(course.ID))
	if course.ID == "" {
		return fmt.Errorf("upsert course: empty id")
	}
	now := time.Now().UTC()
	if course.CreatedAt.IsZero() {
		course.CreatedAt = now
	}
	course.UpdatedAt = now
	const query = `INSERT INTO courses (id, name, credits, alpha_code, program_code, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        ON CONFLICT (id) DO UPDATE SET
            name = EXCLUDED.name,
            credits = EXCLUDED.credits,
            alpha_code = EXCLUDED.alpha_code,
            program_code = EXCLUDED.program_code,
            updated_at = EXCLUDED.updated_at`
	if _, err := s.db.ExecContext(ctx, query,
		course.ID, course.Name, course.Credits, course.AlphaCode, course.ProgramCode,
		course.CreatedAt, course.UpdatedAt); err != nil {
		return fmt.Errorf("upsert course %s: %w", course.ID, err)
	}
	return nil
}

// EnsureTerm records the academic period if it is not known yet.
func (s *mergeStore) EnsureTerm(ctx context.Context, term models.Term) error {
	term.ID = strings.TrimSpace(term.ID)
	if term.ID == "" {
		return fmt.Errorf("ensure term: empty id")
	}
	if term.CreatedAt.IsZero() {
		term.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO terms (id, year, subperiod, created_at)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (id) DO NOTHING`
	if _, err := s.db.ExecContext(ctx, query, term.ID, term.Year, term.Subperiod, term.CreatedAt); err != nil {
		return fmt.Errorf("ensure term %s: %w", term.ID, err)
	}
	return nil
}

// UpsertEnrollment merges one extract row into the enrollment fact. A first
// sighting inserts version 1 with the snapshot verbatim; a re-sighting
// replaces the grade, bumps the version and fills only the snapshot fields
// that are still empty.
func (s *mergeStore) UpsertEnrollment(ctx context.Context, enrollment *models.Enrollment) (UpsertResult, error) {
	enrollment.StudentID = strings.TrimSpace(enrollment.StudentID)
	enrollment.CourseID = strings.ToUpper(strings.TrimSpace(enrollment.CourseID))
	enrollment.TermID = strings.TrimSpace(enrollment.TermID)
	if enrollment.StudentID == "" || enrollment.CourseID == "" || enrollment.TermID == "" {
		return "", fmt.Errorf("upsert enrollment: incomplete natural key")
	}
	now := time.Now().UTC()

	var existingID string
	err := sqlx.GetContext(ctx, s.db, &existingID,
		`SELECT id FROM enrollments WHERE student_id = $1 AND course_id = $2 AND term_id = $3`,
		enrollment.StudentID, enrollment.CourseID, enrollment.TermID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("lookup enrollment: %w", err)
	}

	if errors.Is(err, sql.ErrNoRows) {
		if enrollment.ID == "" {
			enrollment.ID = uuid.NewString()
		}
		enrollment.Version = 1
		enrollment.CreatedAt = now
		enrollment.UpdatedAt = now
		const insert = `INSERT INTO enrollments (id, student_id, course_id, term_id, grade, version,
                alpha_prefix, course_number, alpha_code, course_name, program_code, program_name,
                created_at, updated_at)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
		if _, err := s.db.ExecContext(ctx, insert,
			enrollment.ID, enrollment.StudentID, enrollment.CourseID, enrollment.TermID,
			enrollment.Grade, enrollment.Version,
			enrollment.AlphaPrefix, enrollment.CourseNumber, enrollment.AlphaCode,
			enrollment.CourseName, enrollment.ProgramCode, enrollment.ProgramName,
			enrollment.CreatedAt, enrollment.UpdatedAt); err != nil {
			return "", fmt.Errorf("insert enrollment: %w", err)
		}
		return UpsertInserted, nil
	}

	enrollment.ID = existingID
	enrollment.UpdatedAt = now
	const update = `UPDATE enrollments SET
            grade = $1,
            version = version + 1,
            alpha_prefix = COALESCE(alpha_prefix, $2),
            course_number = COALESCE(course_number, $3),
            alpha_code = COALESCE(alpha_code, $4),
            course_name = COALESCE(course_name, $5),
            program_code = COALESCE(program_code, $6),
            program_name = COALESCE(program_name, $7),
            updated_at = $8
        WHERE id = $9`
	if _, err := s.db.ExecContext(ctx, update,
		enrollment.Grade,
		enrollment.AlphaPrefix, enrollment.CourseNumber, enrollment.AlphaCode,
		enrollment.CourseName, enrollment.ProgramCode, enrollment.ProgramName,
		enrollment.UpdatedAt, existingID); err != nil {
		return "", fmt.Errorf("update enrollment %s: %w", existingID, err)
	}
	return UpsertUpdated, nil
}

// InsertImportAudit appends one audit entry. Audit rows are immutable.
func (s *mergeStore) InsertImportAudit(ctx context.Context, audit *models.ImportAudit) error {
	if audit.ID == "" {
		audit.ID = uuid.NewString()
	}
	if audit.CreatedAt.IsZero() {
		audit.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO import_audits (id, actor, action, file_name, total, new, updated, errors, transfers, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	if _, err := s.db.ExecContext(ctx, query,
		audit.ID, audit.Actor, audit.Action, audit.FileName,
		audit.Total, audit.New, audit.Updated, audit.Errors, audit.Transfers,
		audit.CreatedAt); err != nil {
		return fmt.Errorf("insert import audit: %w", err)
	}
	return nil
}
