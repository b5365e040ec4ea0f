package data

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	lockCourseSQL  = `SELECT \* FROM ` + "`courses`" + ` WHERE id = \? .*FOR UPDATE`
	heldSQL        = regexp.QuoteMeta("SELECT count(*) FROM `enrollments` WHERE user_id = ? AND course_id = ? AND status IN (?,?)")
	usageSQL       = regexp.QuoteMeta("SELECT package_type, COUNT(*) AS total FROM `enrollments` WHERE course_id = ? AND status IN (?,?)")
	insertSQL      = regexp.QuoteMeta("INSERT INTO `enrollments`")
	enrollmentCols = []string{"id", "user_id", "course_id", "package_type", "status", "amount", "created_at", "updated_at"}
)

func setupEnrollmentRepo(t *testing.T) (*EnrollmentRepo, sqlmock.Sqlmock) {
	db, mock := setupTestDB(t)
	return NewEnrollmentRepo(&Data{db: db, cache: NewCacheClient(nil)}, log.DefaultLogger), mock
}

func courseRow(entryQuota, bundleQuota int) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(courseColumns).
		AddRow("c1", "Go", "ENTRY", entryQuota+bundleQuota, entryQuota, bundleQuota, now, now)
}

func TestEnrollmentRepo_GetUsage(t *testing.T) {
	repo, mock := setupEnrollmentRepo(t)

	// one approved ENTRY enrollment in a {30, 15, 15} course
	mock.ExpectQuery(usageSQL).
		WillReturnRows(sqlmock.NewRows([]string{"package_type", "total"}).AddRow("ENTRY", 1))

	usage, err := repo.GetUsage(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), usage.Entry)
	assert.Equal(t, int64(0), usage.Bundle)
	assert.Equal(t, int64(1), usage.Used(PackageIntermediate))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepo_ReserveSeat_Success(t *testing.T) {
	repo, mock := setupEnrollmentRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(lockCourseSQL).WillReturnRows(courseRow(15, 2))
	mock.ExpectQuery(heldSQL).WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(0))
	mock.ExpectQuery(usageSQL).
		WillReturnRows(sqlmock.NewRows([]string{"package_type", "total"}).AddRow("BUNDLE", 1))
	mock.ExpectExec(insertSQL).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	e := &Enrollment{ID: "e1", UserID: "u1", CourseID: "c1", PackageType: PackageBundle}
	require.NoError(t, repo.ReserveSeat(context.Background(), e))
	assert.Equal(t, StatusPending, e.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// The bucket check and the insert run under the course row lock, so the second of two
// BUNDLE submissions for the last seat sees the first one and is refused.
func TestEnrollmentRepo_ReserveSeat_LastBundleSeatTakenOnce(t *testing.T) {
	repo, mock := setupEnrollmentRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(lockCourseSQL).WillReturnRows(courseRow(15, 2))
	mock.ExpectQuery(heldSQL).WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(0))
	mock.ExpectQuery(usageSQL).
		WillReturnRows(sqlmock.NewRows([]string{"package_type", "total"}).AddRow("BUNDLE", 1))
	mock.ExpectExec(insertSQL).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	mock.ExpectBegin()
	mock.ExpectQuery(lockCourseSQL).WillReturnRows(courseRow(15, 2))
	mock.ExpectQuery(heldSQL).WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(0))
	mock.ExpectQuery(usageSQL).
		WillReturnRows(sqlmock.NewRows([]string{"package_type", "total"}).AddRow("BUNDLE", 2))
	mock.ExpectRollback()

	ctx := context.Background()
	require.NoError(t, repo.ReserveSeat(ctx, &Enrollment{ID: "e1", UserID: "u1", CourseID: "c1", PackageType: PackageBundle}))
	err := repo.ReserveSeat(ctx, &Enrollment{ID: "e2", UserID: "u2", CourseID: "c1", PackageType: PackageBundle})
	assert.ErrorIs(t, err, ErrClassClosed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepo_ReserveSeat_Rejections(t *testing.T) {
	t.Run("course not found", func(t *testing.T) {
		repo, mock := setupEnrollmentRepo(t)
		mock.ExpectBegin()
		mock.ExpectQuery(lockCourseSQL).WillReturnRows(sqlmock.NewRows(courseColumns))
		mock.ExpectRollback()

		err := repo.ReserveSeat(context.Background(), &Enrollment{ID: "e1", UserID: "u1", CourseID: "c1", PackageType: PackageEntry})
		assert.ErrorIs(t, err, ErrCourseNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("already enrolled", func(t *testing.T) {
		repo, mock := setupEnrollmentRepo(t)
		mock.ExpectBegin()
		mock.ExpectQuery(lockCourseSQL).WillReturnRows(courseRow(15, 15))
		mock.ExpectQuery(heldSQL).WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(1))
		mock.ExpectRollback()

		err := repo.ReserveSeat(context.Background(), &Enrollment{ID: "e1", UserID: "u1", CourseID: "c1", PackageType: PackageEntry})
		assert.ErrorIs(t, err, ErrAlreadyEnrolled)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("entry bucket shared with intermediate", func(t *testing.T) {
		repo, mock := setupEnrollmentRepo(t)
		mock.ExpectBegin()
		mock.ExpectQuery(lockCourseSQL).WillReturnRows(courseRow(2, 15))
		mock.ExpectQuery(heldSQL).WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(0))
		mock.ExpectQuery(usageSQL).
			WillReturnRows(sqlmock.NewRows([]string{"package_type", "total"}).
				AddRow("ENTRY", 1).AddRow("INTERMEDIATE", 1))
		mock.ExpectRollback()

		err := repo.ReserveSeat(context.Background(), &Enrollment{ID: "e1", UserID: "u1", CourseID: "c1", PackageType: PackageIntermediate})
		assert.ErrorIs(t, err, ErrClassClosed)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestEnrollmentRepo_TransitionStatus(t *testing.T) {
	now := time.Now()

	t.Run("pending to approved", func(t *testing.T) {
		repo, mock := setupEnrollmentRepo(t)
		mock.ExpectExec(regexp.QuoteMeta("UPDATE `enrollments` SET")).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `enrollments` WHERE id = ?")).
			WillReturnRows(sqlmock.NewRows(enrollmentCols).
				AddRow("e1", "u1", "c1", "ENTRY", "APPROVED", 0, now, now))

		e, err := repo.TransitionStatus(context.Background(), "e1", StatusPending, StatusApproved, "admin-1")
		require.NoError(t, err)
		assert.Equal(t, StatusApproved, e.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("already approved", func(t *testing.T) {
		repo, mock := setupEnrollmentRepo(t)
		mock.ExpectExec(regexp.QuoteMeta("UPDATE `enrollments` SET")).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `enrollments` WHERE id = ?")).
			WillReturnRows(sqlmock.NewRows(enrollmentCols).
				AddRow("e1", "u1", "c1", "ENTRY", "APPROVED", 0, now, now))

		e, err := repo.TransitionStatus(context.Background(), "e1", StatusPending, StatusCancelled, "u1")
		assert.ErrorIs(t, err, ErrInvalidTransition)
		assert.Equal(t, StatusApproved, e.Status)
	})

	t.Run("missing", func(t *testing.T) {
		repo, mock := setupEnrollmentRepo(t)
		mock.ExpectExec(regexp.QuoteMeta("UPDATE `enrollments` SET")).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `enrollments` WHERE id = ?")).
			WillReturnRows(sqlmock.NewRows(enrollmentCols))

		_, err := repo.TransitionStatus(context.Background(), "e404", StatusPending, StatusApproved, "admin-1")
		assert.ErrorIs(t, err, ErrEnrollmentNotFound)
	})
}

func TestEnrollmentRepo_HasApprovedEnrollment(t *testing.T) {
	repo, mock := setupEnrollmentRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT count(*) FROM `enrollments` WHERE user_id = ? AND course_id = ? AND status = ?")).
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(1))

	ok, err := repo.HasApprovedEnrollment(context.Background(), "u1", "c1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEnrollmentRepo_ApprovedPairs(t *testing.T) {
	repo, mock := setupEnrollmentRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT user_id, course_id FROM `enrollments`")).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "course_id"}).AddRow("u1", "c1"))

	pairs := []UserCourse{{UserID: "u1", CourseID: "c1"}, {UserID: "u1", CourseID: "c2"}}
	found, err := repo.ApprovedPairs(context.Background(), pairs)
	require.NoError(t, err)
	assert.True(t, found[pairs[0]])
	assert.False(t, found[pairs[1]])

	empty, err := repo.ApprovedPairs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestEnrollmentRepo_ListPendingBefore(t *testing.T) {
	repo, mock := setupEnrollmentRepo(t)
	old := time.Now().Add(-72 * time.Hour)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `enrollments` WHERE status = ? AND created_at < ? ORDER BY created_at")).
		WillReturnRows(sqlmock.NewRows(enrollmentCols).
			AddRow("e1", "u1", "c1", "BUNDLE", "PENDING", 0, old, old))

	list, err := repo.ListPendingBefore(context.Background(), time.Now().Add(-48*time.Hour), 100)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, PackageBundle, list[0].PackageType)
}
