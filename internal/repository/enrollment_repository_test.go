package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func newEnrollmentRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestEnrollmentRepositoryStudentHistory(t *testing.T) {
	db, mock, cleanup := newEnrollmentRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	rows := sqlmock.NewRows([]string{"course_id", "code", "course_name", "grade", "term_id", "version", "program_code"}).
		AddRow("50439", "ISOF V033", "Análisis y Diseño de Software", 4.5, "202507", 1, "ISOF").
		AddRow("TRANSF-0001", "TRANSF-0001", "Precálculo", nil, "202405", 1, "ISOF")
	mock.ExpectQuery(regexp.QuoteMeta("WHERE e.student_id = $1")).
		WithArgs("948997").
		WillReturnRows(rows)

	history, err := repo.StudentHistory(context.Background(), "948997")
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.Equal(t, "ISOF V033", history[0].Code)
	require.Nil(t, history[1].Grade)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryProgramHistory(t *testing.T) {
	db, mock, cleanup := newEnrollmentRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	rows := sqlmock.NewRows([]string{"course_id", "code", "course_name", "grade", "term_id", "version", "program_code", "student_id", "student_name"}).
		AddRow("50439", "ISOF V033", "Análisis y Diseño de Software", 3.2, "202507", 2, "ISOF", "948997", "Ada Lovelace")
	mock.ExpectQuery(regexp.QuoteMeta("WHERE s.program_code = $1")).
		WithArgs("ISOF").
		WillReturnRows(rows)

	history, err := repo.ProgramHistory(context.Background(), "ISOF")
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Equal(t, "948997", history[0].StudentID)
	require.Equal(t, 2, history[0].Version)
	require.NoError(t, mock.ExpectationsWereMet())
}
