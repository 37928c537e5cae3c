package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassRepositoryFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM classes WHERE center_id = $1 AND id = $2")).
		WithArgs("center-1", "missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), mustTenant(t), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassRepositoryListTeachers(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id AS class_id, teacher_id FROM classes WHERE center_id = $1 AND id = ANY($2)")).
		WithArgs("center-1", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"class_id", "teacher_id"}).AddRow("class-1", "teacher-1").AddRow("class-2", nil))

	teachers, err := repo.ListTeachers(context.Background(), mustTenant(t), []string{"class-1", "class-2"})
	require.NoError(t, err)
	require.Len(t, teachers, 2)
	assert.Equal(t, "teacher-1", *teachers[0].TeacherID)
	assert.Nil(t, teachers[1].TeacherID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassRepositoryListTeachersEmptyInput(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	teachers, err := repo.ListTeachers(context.Background(), mustTenant(t), nil)
	require.NoError(t, err)
	assert.Empty(t, teachers)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassRepositoryListStudentIDs(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT student_id FROM class_students WHERE center_id = $1 AND class_id = $2")).
		WithArgs("center-1", "class-1").
		WillReturnRows(sqlmock.NewRows([]string{"student_id"}).AddRow("st-1").AddRow("st-2"))

	ids, err := repo.ListStudentIDs(context.Background(), mustTenant(t), "class-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"st-1", "st-2"}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleTemplateRepositoryListByCenter(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleTemplateRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM class_schedules WHERE center_id = $1 ORDER BY")).
		WithArgs("center-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "center_id", "class_id", "day_of_week", "start_time", "end_time", "room_name"}).
			AddRow("tpl-1", "center-1", "class-1", 1, "09:00", "10:00", "Room A"))

	templates, err := repo.ListByCenter(context.Background(), mustTenant(t))
	require.NoError(t, err)
	require.Len(t, templates, 1)
	assert.Equal(t, 1, templates[0].DayOfWeek)
	assert.Equal(t, "Room A", *templates[0].RoomName)
	assert.NoError(t, mock.ExpectationsWereMet())
}
