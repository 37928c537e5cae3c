package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/class-scheduler-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func mustTenant(t *testing.T) models.Tenant {
	tenant, err := models.NewTenant("center-1")
	require.NoError(t, err)
	return tenant
}

var sessionColumns = []string{"id", "center_id", "class_id", "start_time", "end_time", "room_name", "status", "created_at", "updated_at"}

func TestScopedQueryAlwaysStartsWithTenant(t *testing.T) {
	q, err := newScopedQuery(mustTenant(t), "cs.center_id")
	require.NoError(t, err)
	q.where("cs.room_name = $%d", "Room A").raw("cs.status <> 'CANCELLED'")

	assert.Equal(t, "WHERE cs.center_id = $1 AND cs.room_name = $2 AND cs.status <> 'CANCELLED'", q.clause())
	assert.Equal(t, []interface{}{"center-1", "Room A"}, q.args)
	assert.Equal(t, 3, q.next())

	_, err = newScopedQuery(models.Tenant{}, "center_id")
	assert.ErrorIs(t, err, models.ErrMissingTenant)
}

func TestClassSessionRepositoryListActiveInRoom(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClassSessionRepository(db)

	from := time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)
	now := time.Now()

	rows := sqlmock.NewRows(sessionColumns).
		AddRow("s1", "center-1", "class-1", from.Add(9*time.Hour), from.Add(10*time.Hour), "Room A", "SCHEDULED", now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM class_sessions cs WHERE cs.center_id = $1 AND cs.room_name = $2 AND cs.start_time < $3 AND cs.end_time > $4 AND cs.status <> 'CANCELLED'")).
		WithArgs("center-1", "Room A", to, from).
		WillReturnRows(rows)

	sessions, err := repo.ListActiveInRoom(context.Background(), mustTenant(t), "Room A", from, to)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "Room A", sessions[0].Room())
	assert.Equal(t, models.SessionStatusScheduled, sessions[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassSessionRepositoryListActiveForTeacher(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClassSessionRepository(db)

	from := time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)
	now := time.Now()

	rows := sqlmock.NewRows(append(append([]string{}, sessionColumns...), "teacher_id")).
		AddRow("s1", "center-1", "class-1", from.Add(9*time.Hour), from.Add(10*time.Hour), nil, "SCHEDULED", now, now, "teacher-1")
	mock.ExpectQuery(regexp.QuoteMeta("JOIN classes c ON c.id = cs.class_id WHERE cs.center_id = $1 AND c.teacher_id = $2")).
		WithArgs("center-1", "teacher-1", to, from).
		WillReturnRows(rows)

	sessions, err := repo.ListActiveForTeacher(context.Background(), mustTenant(t), "teacher-1", from, to)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	require.NotNil(t, sessions[0].TeacherID)
	assert.Equal(t, "teacher-1", *sessions[0].TeacherID)
	assert.Nil(t, sessions[0].RoomName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassSessionRepositoryListWithFilters(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClassSessionRepository(db)

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 1, 31, 23, 59, 59, 0, time.UTC)
	now := time.Now()

	rows := sqlmock.NewRows(append(append([]string{}, sessionColumns...), "class_name", "course_id", "course_name", "teacher_id", "teacher_name", "student_count")).
		AddRow("s1", "center-1", "class-1", start.Add(9*time.Hour), start.Add(10*time.Hour), "Room A", "SCHEDULED", now, now, "Algebra", "course-1", "Math", "teacher-1", "Ada", 12)
	mock.ExpectQuery(`LEFT JOIN teachers t ON t.id = c.teacher_id\s+WHERE cs.center_id = \$1 AND cs.start_time >= \$2 AND cs.start_time < \$3 AND cs.class_id = \$4 ORDER BY cs.start_time ASC`).
		WithArgs("center-1", start, end, "class-1").
		WillReturnRows(rows)

	sessions, err := repo.List(context.Background(), mustTenant(t), models.ClassSessionFilter{Start: start, End: end, ClassID: "class-1"})
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "Algebra", sessions[0].ClassName)
	assert.Equal(t, 12, sessions[0].StudentCount)
	assert.Equal(t, "Ada", *sessions[0].TeacherName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassSessionRepositoryListDistinctRooms(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClassSessionRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT DISTINCT cs.room_name FROM class_sessions cs WHERE cs.center_id = $1")).
		WithArgs("center-1").
		WillReturnRows(sqlmock.NewRows([]string{"room_name"}).AddRow("Room A").AddRow("Room B"))

	rooms, err := repo.ListDistinctRooms(context.Background(), mustTenant(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"Room A", "Room B"}, rooms)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassSessionRepositoryBulkCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClassSessionRepository(db)

	start := time.Date(2026, 1, 26, 9, 0, 0, 0, time.UTC)
	sessions := []models.ClassSession{
		{ClassID: "class-1", StartTime: start, EndTime: start.Add(time.Hour)},
		{ClassID: "class-2", StartTime: start, EndTime: start.Add(time.Hour)},
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO class_sessions")).
		WithArgs(sqlmock.AnyArg(), "center-1", "class-1", start, start.Add(time.Hour), nil, "SCHEDULED", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO class_sessions")).
		WithArgs(sqlmock.AnyArg(), "center-1", "class-2", start, start.Add(time.Hour), nil, "SCHEDULED", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.BulkCreate(context.Background(), mustTenant(t), sessions))
	for _, s := range sessions {
		assert.NotEmpty(t, s.ID)
		assert.Equal(t, "center-1", s.CenterID)
		assert.Equal(t, models.SessionStatusScheduled, s.Status)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassSessionRepositoryBulkCreateRollsBack(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClassSessionRepository(db)

	start := time.Date(2026, 1, 26, 9, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO class_sessions")).WillReturnError(errors.New("duplicate key"))
	mock.ExpectRollback()

	err := repo.BulkCreate(context.Background(), mustTenant(t), []models.ClassSession{{ClassID: "class-1", StartTime: start, EndTime: start.Add(time.Hour)}})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassSessionRepositoryUpdateMissingRow(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClassSessionRepository(db)

	start := time.Date(2026, 1, 26, 9, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE class_sessions SET start_time = $3, end_time = $4, room_name = $5, status = $6, updated_at = $7 WHERE center_id = $1 AND id = $2")).
		WithArgs("center-1", "missing", start, start.Add(time.Hour), nil, "SCHEDULED", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), mustTenant(t), &models.ClassSession{ID: "missing", StartTime: start, EndTime: start.Add(time.Hour), Status: models.SessionStatusScheduled})
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassSessionRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClassSessionRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM class_sessions WHERE center_id = $1 AND id = $2")).
		WithArgs("center-1", "s1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), mustTenant(t), "s1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassSessionRepositoryRejectsZeroTenant(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClassSessionRepository(db)

	_, err := repo.FindByID(context.Background(), models.Tenant{}, "s1")
	assert.ErrorIs(t, err, models.ErrMissingTenant)
	assert.ErrorIs(t, repo.Create(context.Background(), models.Tenant{}, &models.ClassSession{}), models.ErrMissingTenant)
	assert.NoError(t, mock.ExpectationsWereMet())
}
