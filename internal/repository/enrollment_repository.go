package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/sia-project/sia-api/internal/models"
)

// EnrollmentRepository reads persisted enrollment history for the
// cross-reference and reporting paths.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository creates a new enrollment repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// StudentHistory returns every enrollment of one student. The code column
// prefers the enrollment snapshot alpha code, then the catalog one, and
// falls back to the raw course id so transfer rows stay matchable by prefix.
func (r *EnrollmentRepository) StudentHistory(ctx context.Context, studentID string) ([]models.HistoryRow, error) {
	const query = `SELECT e.course_id,
            COALESCE(NULLIF(e.alpha_code, ''), NULLIF(c.alpha_code, ''), e.course_id) AS code,
            COALESCE(NULLIF(e.course_name, ''), c.name, '') AS course_name,
            e.grade, e.term_id, e.version, e.program_code
        FROM enrollments e
        LEFT JOIN courses c ON c.id = e.course_id
        WHERE e.student_id = $1
        ORDER BY e.term_id, e.course_id`
	var rows []models.HistoryRow
	if err := r.db.SelectContext(ctx, &rows, query, studentID); err != nil {
		return nil, fmt.Errorf("student history %s: %w", studentID, err)
	}
	return rows, nil
}

// ProgramHistory returns the enrollment history of every student reported
// under the given program code, for program-wide reconciliation.
func (r *EnrollmentRepository) ProgramHistory(ctx context.Context, programCode string) ([]models.ProgramHistoryRow, error) {
	const query = `SELECT e.course_id,
            COALESCE(NULLIF(e.alpha_code, ''), NULLIF(c.alpha_code, ''), e.course_id) AS code,
            COALESCE(NULLIF(e.course_name, ''), c.name, '') AS course_name,
            e.grade, e.term_id, e.version, e.program_code,
            s.id AS student_id, s.full_name AS student_name
        FROM enrollments e
        JOIN students s ON s.id = e.student_id
        LEFT JOIN courses c ON c.id = e.course_id
        WHERE s.program_code = $1
        ORDER BY s.id, e.term_id, e.course_id`
	var rows []models.ProgramHistoryRow
	if err := r.db.SelectContext(ctx, &rows, query, programCode); err != nil {
		return nil, fmt.Errorf("program history %s: %w", programCode, err)
	}
	return rows, nil
}

// CountByStudent returns the number of persisted enrollments of a student.
func (r *EnrollmentRepository) CountByStudent(ctx context.Context, studentID string) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM enrollments WHERE student_id = $1`, studentID); err != nil {
		return 0, fmt.Errorf("count enrollments %s: %w", studentID, err)
	}
	return count, nil
}
