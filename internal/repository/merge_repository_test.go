package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/sia-project/sia-api/internal/models"
)

func newMergeRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

func TestMergeStoreUpsertEnrollmentInsertsFirstSighting(t *testing.T) {
	db, mock, cleanup := newMergeRepoMock(t)
	defer cleanup()
	store := NewMergeRepository(db).Store()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM enrollments WHERE student_id = $1 AND course_id = $2 AND term_id = $3")).
		WithArgs("948997", "50439", "202507").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO enrollments")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	enrollment := &models.Enrollment{
		StudentID: " 948997 ",
		CourseID:  "50439",
		TermID:    "202507",
		Grade:     floatPtr(4.5),
		AlphaCode: strPtr("ISOF V033"),
	}
	result, err := store.UpsertEnrollment(context.Background(), enrollment)
	require.NoError(t, err)
	require.Equal(t, UpsertInserted, result)
	require.Equal(t, 1, enrollment.Version)
	require.NotEmpty(t, enrollment.ID)
	require.Equal(t, "948997", enrollment.StudentID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMergeStoreUpsertEnrollmentUpdatesExisting(t *testing.T) {
	db, mock, cleanup := newMergeRepoMock(t)
	defer cleanup()
	store := NewMergeRepository(db).Store()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM enrollments WHERE student_id = $1 AND course_id = $2 AND term_id = $3")).
		WithArgs("948997", "50439", "202507").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("enr-1"))
	mock.ExpectExec(regexp.QuoteMeta("version = version + 1")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	enrollment := &models.Enrollment{
		StudentID: "948997",
		CourseID:  "50439",
		TermID:    "202507",
		Grade:     floatPtr(3.9),
	}
	result, err := store.UpsertEnrollment(context.Background(), enrollment)
	require.NoError(t, err)
	require.Equal(t, UpsertUpdated, result)
	require.Equal(t, "enr-1", enrollment.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMergeStoreUpsertEnrollmentUppercasesCourseID(t *testing.T) {
	db, mock, cleanup := newMergeRepoMock(t)
	defer cleanup()
	store := NewMergeRepository(db).Store()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM enrollments")).
		WithArgs("948997", "TRANSF-0001", "202507").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO enrollments")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	enrollment := &models.Enrollment{StudentID: "948997", CourseID: "transf-0001", TermID: "202507"}
	_, err := store.UpsertEnrollment(context.Background(), enrollment)
	require.NoError(t, err)
	require.Equal(t, "TRANSF-0001", enrollment.CourseID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMergeStoreUpsertEnrollmentRejectsIncompleteKey(t *testing.T) {
	db, _, cleanup := newMergeRepoMock(t)
	defer cleanup()
	store := NewMergeRepository(db).Store()

	_, err := store.UpsertEnrollment(context.Background(), &models.Enrollment{StudentID: "948997"})
	require.Error(t, err)
}

func TestMergeStoreUpsertCourseOverwrites(t *testing.T) {
	db, mock, cleanup := newMergeRepoMock(t)
	defer cleanup()
	store := NewMergeRepository(db).Store()

	mock.ExpectExec(regexp.QuoteMeta("name = EXCLUDED.name")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	course := &models.Course{ID: " 50439 ", Name: "Análisis y Diseño de Software", AlphaCode: strPtr("ISOF V033")}
	require.NoError(t, store.UpsertCourse(context.Background(), course))
	require.Equal(t, "50439", course.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMergeStoreUpsertStudentKeepsExistingOnBlank(t *testing.T) {
	db, mock, cleanup := newMergeRepoMock(t)
	defer cleanup()
	store := NewMergeRepository(db).Store()

	mock.ExpectExec(regexp.QuoteMeta("COALESCE(NULLIF(EXCLUDED.full_name, ''), students.full_name)")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	student := &models.Student{ID: "948997", FullName: ""}
	require.NoError(t, store.UpsertStudent(context.Background(), student))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMergeRepositoryInTxCommits(t *testing.T) {
	db, mock, cleanup := newMergeRepoMock(t)
	defer cleanup()
	repo := NewMergeRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO terms")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.InTx(context.Background(), func(store MergeStore) error {
		return store.EnsureTerm(context.Background(), models.Term{ID: "202507", Year: 2025, Subperiod: "07"})
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMergeStoreSavepointReleasesOnSuccess(t *testing.T) {
	db, mock, cleanup := newMergeRepoMock(t)
	defer cleanup()
	repo := NewMergeRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("SAVEPOINT merge_row_1").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO terms")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("RELEASE SAVEPOINT merge_row_1").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.InTx(context.Background(), func(store MergeStore) error {
		return store.Savepoint(context.Background(), func() error {
			return store.EnsureTerm(context.Background(), models.Term{ID: "202507", Year: 2025, Subperiod: "07"})
		})
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMergeStoreSavepointRollsBackFailedRowAndKeepsTx(t *testing.T) {
	db, mock, cleanup := newMergeRepoMock(t)
	defer cleanup()
	repo := NewMergeRepository(db)

	sentinel := context.Canceled
	mock.ExpectBegin()
	mock.ExpectExec("SAVEPOINT merge_row_1").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("ROLLBACK TO SAVEPOINT merge_row_1").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("SAVEPOINT merge_row_2").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO terms")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("RELEASE SAVEPOINT merge_row_2").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.InTx(context.Background(), func(store MergeStore) error {
		if err := store.Savepoint(context.Background(), func() error {
			return sentinel
		}); err == nil {
			t.Fatal("expected the first row to fail")
		}
		return store.Savepoint(context.Background(), func() error {
			return store.EnsureTerm(context.Background(), models.Term{ID: "202507", Year: 2025, Subperiod: "07"})
		})
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMergeRepositoryInTxRollsBackOnError(t *testing.T) {
	db, mock, cleanup := newMergeRepoMock(t)
	defer cleanup()
	repo := NewMergeRepository(db)

	mock.ExpectBegin()
	mock.ExpectRollback()

	sentinel := context.Canceled
	err := repo.InTx(context.Background(), func(store MergeStore) error {
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)
	require.NoError(t, mock.ExpectationsWereMet())
}
